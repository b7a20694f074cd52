// stormalertd is the alerting daemon: it evaluates alert rules against
// periodic system snapshots, dispatches notifications, and serves the
// HTTP control API.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/robert1948/localstorm-sub001/internal/alerting"
	"github.com/robert1948/localstorm-sub001/internal/api"
	"github.com/robert1948/localstorm-sub001/internal/conf"
	"github.com/robert1948/localstorm-sub001/internal/datastore"
	"github.com/robert1948/localstorm-sub001/internal/datastore/entities"
	"github.com/robert1948/localstorm-sub001/internal/datastore/repository"
	"github.com/robert1948/localstorm-sub001/internal/logger"
	"github.com/robert1948/localstorm-sub001/internal/metrics"
	"github.com/robert1948/localstorm-sub001/internal/monitor"
	"github.com/robert1948/localstorm-sub001/internal/notify"
	"github.com/robert1948/localstorm-sub001/internal/telemetry"
)

var version = "dev"

func main() {
	var configPath string

	root := &cobra.Command{
		Use:     "stormalertd",
		Short:   "Alerting and notification daemon",
		Version: version,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(configPath)
		},
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to config file")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	settings, err := conf.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	log := logger.NewSlogLogger(os.Stderr, logger.ParseLevel(settings.Log.Level), nil)
	log.Info("stormalertd starting", logger.String("version", version))

	if err := telemetry.Init(&settings.Sentry, version, log); err != nil {
		log.Error("telemetry init failed", logger.Error(err))
	}
	defer telemetry.Flush(2 * time.Second)

	db, err := datastore.Open(settings.Database.Path)
	if err != nil {
		return err
	}
	repo := repository.New(db)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := seedDefaultRules(ctx, repo, log); err != nil {
		return fmt.Errorf("seeding default rules: %w", err)
	}

	registry := prometheus.NewRegistry()
	recorder := metrics.NewRecorder(registry)

	provider := monitor.NewSystemProvider("/", func(probeCtx context.Context) bool {
		sqlDB, dbErr := db.DB()
		if dbErr != nil {
			return false
		}
		return sqlDB.PingContext(probeCtx) == nil
	})

	engine := alerting.NewEngine(alerting.Options{
		MonitorInterval:    settings.Monitor.Interval.Std(),
		EscalationInterval: settings.Monitor.EscalationInterval.Std(),
		HistoryCapacity:    settings.Monitor.HistoryCapacity,
		Audit:              newAuditLog(log),
		History:            repository.NewHistorySink(repo),
		Metrics:            recorder,
	}, provider, log)

	if err := loadRules(ctx, repo, engine); err != nil {
		return fmt.Errorf("loading rules: %w", err)
	}
	if err := buildChannels(settings, engine, log); err != nil {
		return err
	}

	datastore.StartRetentionCleanup(ctx, repo, settings.Monitor.HistoryRetentionDays, log)

	if err := engine.Start(ctx); err != nil {
		return err
	}
	defer engine.Stop()

	ctrl := api.NewController(engine, repo, log)
	server := api.NewServer(settings.HTTP.Listen, ctrl, registry, log)

	serveErr := make(chan error, 1)
	go func() { serveErr <- server.Start() }()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown failed", logger.Error(err))
	}
	log.Info("stormalertd stopped")
	return nil
}

// seedDefaultRules inserts each built-in rule missing from the database.
// Existing rows win so operator edits survive restarts.
func seedDefaultRules(ctx context.Context, repo repository.Repository, log logger.Logger) error {
	for _, rule := range alerting.DefaultRules() {
		_, err := repo.GetRuleByName(ctx, rule.Name)
		if err == nil {
			continue
		}
		if !errors.Is(err, repository.ErrRuleNotFound) {
			return err
		}
		if err := repo.SaveRule(ctx, entities.FromRule(&rule, true)); err != nil {
			return err
		}
		log.Info("seeded default rule", logger.String("rule", rule.Name))
	}
	return nil
}

// loadRules registers every persisted rule with the engine.
func loadRules(ctx context.Context, repo repository.Repository, engine *alerting.Engine) error {
	rows, err := repo.ListRules(ctx, repository.RuleFilter{})
	if err != nil {
		return err
	}
	for i := range rows {
		if err := engine.AddRule(rows[i].ToRule()); err != nil {
			return err
		}
	}
	return nil
}

// buildChannels registers the configured notification channels, plus a
// default log channel when none are configured.
func buildChannels(settings *conf.Settings, engine *alerting.Engine, log logger.Logger) error {
	if len(settings.Channels) == 0 {
		return engine.AddChannel(alerting.Channel{
			Name:    "log",
			Enabled: true,
			Adapter: notify.NewLogAdapter("log", log),
		})
	}
	for i := range settings.Channels {
		ch, err := notify.BuildChannel(&settings.Channels[i], log)
		if err != nil {
			return err
		}
		if err := engine.AddChannel(ch); err != nil {
			return err
		}
	}
	return nil
}

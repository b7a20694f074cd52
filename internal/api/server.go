// Package api exposes the HTTP control surface: alert queries and
// lifecycle actions, rule management, channel toggles, health and
// Prometheus metrics.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/robert1948/localstorm-sub001/internal/alerting"
	"github.com/robert1948/localstorm-sub001/internal/datastore/repository"
	"github.com/robert1948/localstorm-sub001/internal/logger"
)

// Controller handles the API routes against the live engine and the
// persistent repository.
type Controller struct {
	engine *alerting.Engine
	repo   repository.Repository
	log    logger.Logger
}

// NewController wires a controller. repo may be nil, in which case the
// rule and history endpoints operate on in-memory state only.
func NewController(engine *alerting.Engine, repo repository.Repository, log logger.Logger) *Controller {
	return &Controller{engine: engine, repo: repo, log: log}
}

// Server is the HTTP front end.
type Server struct {
	echo *echo.Echo
	addr string
	log  logger.Logger
}

// NewServer builds the echo instance and registers all routes. gatherer
// backs the /metrics endpoint; pass nil to omit it.
func NewServer(addr string, ctrl *Controller, gatherer prometheus.Gatherer, log logger.Logger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	if gatherer != nil {
		e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}

	v1 := e.Group("/api/v1")
	v1.GET("/alerts", ctrl.ListAlerts)
	v1.GET("/alerts/stats", ctrl.GetStatistics)
	v1.GET("/alerts/:id", ctrl.GetAlert)
	v1.POST("/alerts/:id/acknowledge", ctrl.AcknowledgeAlert)
	v1.POST("/alerts/:id/resolve", ctrl.ResolveAlert)
	v1.GET("/history", ctrl.ListHistory)

	v1.GET("/rules", ctrl.ListRules)
	v1.POST("/rules", ctrl.SaveRule)
	v1.GET("/rules/:name", ctrl.GetRule)
	v1.DELETE("/rules/:name", ctrl.DeleteRule)
	v1.POST("/rules/:name/enable", ctrl.enableRule(true))
	v1.POST("/rules/:name/disable", ctrl.enableRule(false))

	v1.GET("/channels", ctrl.ListChannels)
	v1.POST("/channels/:name/enable", ctrl.enableChannel(true))
	v1.POST("/channels/:name/disable", ctrl.enableChannel(false))

	return &Server{echo: e, addr: addr, log: log}
}

// Echo exposes the underlying router, used by tests.
func (s *Server) Echo() *echo.Echo { return s.echo }

// Start blocks serving HTTP until Shutdown or a listener error.
func (s *Server) Start() error {
	s.log.Info("http server listening", logger.String("addr", s.addr))
	if err := s.echo.Start(s.addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// requestTimeout bounds repository calls made from handlers.
const requestTimeout = 10 * time.Second

func requestContext(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), requestTimeout)
}

package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/robert1948/localstorm-sub001/internal/alerting"
	"github.com/robert1948/localstorm-sub001/internal/datastore/entities"
	"github.com/robert1948/localstorm-sub001/internal/datastore/repository"
	"github.com/robert1948/localstorm-sub001/internal/logger"
)

// ListRules returns the registered rules, optionally filtered by type,
// enabled flag or tag.
func (ct *Controller) ListRules(c echo.Context) error {
	filter := alerting.RuleFilter{
		Type: alerting.AlertType(c.QueryParam("type")),
		Tag:  c.QueryParam("tag"),
	}
	if raw := c.QueryParam("enabled"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid enabled value"})
		}
		filter.Enabled = &v
	}
	rules := ct.engine.Rules().ListRules(filter)
	return c.JSON(http.StatusOK, map[string]any{"rules": rules, "total": len(rules)})
}

// GetRule returns a single rule by name.
func (ct *Controller) GetRule(c echo.Context) error {
	rule, ok := ct.engine.Rules().GetRule(c.Param("name"))
	if !ok {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "rule not found"})
	}
	return c.JSON(http.StatusOK, rule)
}

// SaveRule creates or replaces a rule. The rule becomes live in the
// engine immediately and is persisted when a repository is configured.
func (ct *Controller) SaveRule(c echo.Context) error {
	var rule alerting.AlertRule
	if err := c.Bind(&rule); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if err := ct.engine.AddRule(rule); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	if ct.repo != nil {
		ctx, cancel := requestContext(c)
		defer cancel()
		if err := ct.repo.SaveRule(ctx, entities.FromRule(&rule, false)); err != nil {
			ct.log.Error("rule persist failed",
				logger.String("rule", rule.Name), logger.Error(err))
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "rule persist failed"})
		}
	}
	return c.JSON(http.StatusCreated, rule)
}

// DeleteRule removes a rule from the engine and the repository.
func (ct *Controller) DeleteRule(c echo.Context) error {
	name := c.Param("name")
	removed := ct.engine.RemoveRule(name)
	if ct.repo != nil {
		ctx, cancel := requestContext(c)
		defer cancel()
		dbRemoved, err := ct.repo.DeleteRuleByName(ctx, name)
		if err != nil {
			ct.log.Error("rule delete failed", logger.String("rule", name), logger.Error(err))
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "rule delete failed"})
		}
		removed = removed || dbRemoved
	}
	if !removed {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "rule not found"})
	}
	return c.NoContent(http.StatusNoContent)
}

func (ct *Controller) enableRule(enabled bool) echo.HandlerFunc {
	return func(c echo.Context) error {
		name := c.Param("name")
		if !ct.engine.Rules().SetEnabled(name, enabled) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "rule not found"})
		}
		if ct.repo != nil {
			ctx, cancel := requestContext(c)
			defer cancel()
			if _, err := ct.repo.SetRuleEnabled(ctx, name, enabled); err != nil &&
				!errors.Is(err, repository.ErrRuleNotFound) {
				ct.log.Error("rule toggle persist failed",
					logger.String("rule", name), logger.Error(err))
			}
		}
		return c.JSON(http.StatusOK, map[string]any{"name": name, "enabled": enabled})
	}
}

type channelView struct {
	Name      string `json:"name"`
	Enabled   bool   `json:"enabled"`
	RateLimit int    `json:"rate_limit_seconds"`
}

// ListChannels returns the configured notification channels.
func (ct *Controller) ListChannels(c echo.Context) error {
	var out []channelView
	for _, ch := range ct.engine.Channels().List() {
		out = append(out, channelView{Name: ch.Name, Enabled: ch.Enabled, RateLimit: ch.RateLimitSec})
	}
	return c.JSON(http.StatusOK, map[string]any{"channels": out, "total": len(out)})
}

func (ct *Controller) enableChannel(enabled bool) echo.HandlerFunc {
	return func(c echo.Context) error {
		name := c.Param("name")
		if !ct.engine.Channels().SetEnabled(name, enabled) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "channel not found"})
		}
		return c.JSON(http.StatusOK, map[string]any{"name": name, "enabled": enabled})
	}
}

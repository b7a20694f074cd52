package api

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/robert1948/localstorm-sub001/internal/alerting"
	"github.com/robert1948/localstorm-sub001/internal/datastore/repository"
	"github.com/robert1948/localstorm-sub001/internal/logger"
)

// ListAlerts returns active alerts, newest first. Query parameters
// severity, type, status, rule and tag narrow the result.
func (ct *Controller) ListAlerts(c echo.Context) error {
	filter := alerting.AlertFilter{
		Severity: alerting.Severity(c.QueryParam("severity")),
		Type:     alerting.AlertType(c.QueryParam("type")),
		Status:   alerting.Status(c.QueryParam("status")),
		RuleName: c.QueryParam("rule"),
		Tag:      c.QueryParam("tag"),
	}
	alerts := ct.engine.ListActiveAlerts(filter)
	return c.JSON(http.StatusOK, map[string]any{
		"alerts": alerts,
		"total":  len(alerts),
	})
}

// GetAlert returns one alert by ID, active or historical.
func (ct *Controller) GetAlert(c echo.Context) error {
	alert, ok := ct.engine.GetAlert(c.Param("id"))
	if !ok {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "alert not found"})
	}
	return c.JSON(http.StatusOK, alert)
}

type acknowledgeRequest struct {
	Actor string `json:"actor"`
}

// AcknowledgeAlert transitions an active alert to acknowledged.
func (ct *Controller) AcknowledgeAlert(c echo.Context) error {
	id := c.Param("id")
	var req acknowledgeRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if !ct.engine.AcknowledgeAlert(id, req.Actor) {
		return c.JSON(http.StatusConflict, map[string]string{"error": "alert not active or not found"})
	}
	alert, _ := ct.engine.GetAlert(id)
	return c.JSON(http.StatusOK, alert)
}

// ResolveAlert transitions an alert to resolved and moves it to history.
func (ct *Controller) ResolveAlert(c echo.Context) error {
	id := c.Param("id")
	if !ct.engine.ResolveAlert(id) {
		return c.JSON(http.StatusConflict, map[string]string{"error": "alert not resolvable or not found"})
	}
	alert, _ := ct.engine.GetAlert(id)
	return c.JSON(http.StatusOK, alert)
}

// GetStatistics returns engine-wide alert counts.
func (ct *Controller) GetStatistics(c echo.Context) error {
	return c.JSON(http.StatusOK, ct.engine.GetStatistics())
}

// ListHistory returns the persisted alert trail when a repository is
// configured, falling back to the in-memory ring otherwise.
func (ct *Controller) ListHistory(c echo.Context) error {
	if ct.repo == nil {
		return c.JSON(http.StatusOK, map[string]any{"history": ct.engine.History()})
	}
	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid limit"})
		}
		limit = n
	}
	ctx, cancel := requestContext(c)
	defer cancel()
	rows, err := ct.repo.ListHistory(ctx, repository.HistoryFilter{
		RuleName: c.QueryParam("rule"),
		Status:   c.QueryParam("status"),
		Limit:    limit,
	})
	if err != nil {
		ct.log.Error("history query failed", logger.Error(err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "history query failed"})
	}
	return c.JSON(http.StatusOK, map[string]any{"history": rows, "total": len(rows)})
}

package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"bidmonitor/internal/metrics"
	"bidmonitor/internal/service"
)

type LastRunProvider interface {
	LastRun() (service.RunSummary, bool)
}

// MonitorHandler exposes the last run summary and the Prometheus registry.
type MonitorHandler struct {
	Runs    LastRunProvider
	Metrics *metrics.Metrics
}

func (h *MonitorHandler) Register(r *gin.Engine) {
	r.GET("/runs/last", h.lastRun)
	r.GET("/metrics", h.metrics)
}

// @Summary Prometheus metrics
// @Tags monitor
// @Produce plain
// @Success 200 {string} string
// @Router /metrics [get]
func (h *MonitorHandler) metrics(c *gin.Context) {
	h.Metrics.Handler().ServeHTTP(c.Writer, c.Request)
}

// @Summary Last run summary
// @Tags monitor
// @Success 200 {object} apiResponse
// @Failure 404 {object} apiResponse
// @Router /runs/last [get]
func (h *MonitorHandler) lastRun(c *gin.Context) {
	if h.Runs == nil {
		Error(c, http.StatusNotFound, "no run recorded", nil)
		return
	}
	summary, ok := h.Runs.LastRun()
	if !ok {
		Error(c, http.StatusNotFound, "no run recorded", nil)
		return
	}
	Ok(c, summary, map[string]any{"match_rate": summary.MatchRate()})
}

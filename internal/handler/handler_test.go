package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"bidmonitor/internal/metrics"
	"bidmonitor/internal/service"
)

type fixedRuns struct {
	summary service.RunSummary
	ok      bool
}

func (f fixedRuns) LastRun() (service.RunSummary, bool) { return f.summary, f.ok }

func newEngine(h ...interface{ Register(*gin.Engine) }) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	for _, item := range h {
		item.Register(r)
	}
	return r
}

func TestHealthz(t *testing.T) {
	r := newEngine(&HealthHandler{})
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("code=%d", rec.Code)
	}
}

func TestReadyzWithoutDB(t *testing.T) {
	r := newEngine(&HealthHandler{})
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("code=%d", rec.Code)
	}
}

func TestLastRun(t *testing.T) {
	r := newEngine(&MonitorHandler{
		Runs:    fixedRuns{summary: service.RunSummary{Status: "ok", ReferenceItems: 4, Matched: 1}, ok: true},
		Metrics: metrics.New(),
	})
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/runs/last", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("code=%d", rec.Code)
	}
	var body struct {
		Data service.RunSummary `json:"data"`
		Meta map[string]float64 `json:"meta"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Data.Matched != 1 || body.Meta["match_rate"] != 0.25 {
		t.Fatalf("body=%+v", body)
	}
}

func TestLastRunMissing(t *testing.T) {
	r := newEngine(&MonitorHandler{Runs: fixedRuns{}, Metrics: metrics.New()})
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/runs/last", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("code=%d", rec.Code)
	}
	var body struct {
		Code int            `json:"code"`
		Meta map[string]any `json:"meta"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Code != http.StatusNotFound || body.Meta["path"] != "/runs/last" {
		t.Fatalf("body=%+v", body)
	}
}

func TestMetricsRoute(t *testing.T) {
	r := newEngine(&MonitorHandler{Metrics: metrics.New()})
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "bid_monitor_matches_total") {
		t.Fatalf("code=%d", rec.Code)
	}
}

func TestSwaggerDocListsRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	RegisterDocs(r)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/swagger/doc.json", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("code=%d", rec.Code)
	}
	var doc struct {
		Info  map[string]any            `json:"info"`
		Paths map[string]map[string]any `json:"paths"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &doc); err != nil {
		t.Fatalf("decode: %v", err)
	}
	for _, path := range []string{"/healthz", "/readyz", "/runs/last", "/metrics"} {
		if _, ok := doc.Paths[path]["get"]; !ok {
			t.Fatalf("doc missing GET %s", path)
		}
	}
	if doc.Info["title"] != "Bid Monitor API" {
		t.Fatalf("info=%v", doc.Info)
	}
}

package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ecociel/taskview/lib/domain"
	"github.com/ecociel/taskview/lib/index"
	"github.com/ecociel/taskview/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

func newTestHandler() http.Handler {
	idx := index.New(0)
	idx.Apply(domain.Event{Type: domain.EventTaskSucceeded, TaskID: "a", Hostname: "w1", Timestamp: 1,
		Fields: map[string]any{"name": "add"}})
	reg := prometheus.NewRegistry()
	return newHandler(idx, metrics.NewPromMetrics(reg), reg)
}

func serve(h http.Handler, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestHandler_Healthz(t *testing.T) {
	rec := serve(newTestHandler(), "/healthz")
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestHandler_Metrics(t *testing.T) {
	h := newTestHandler()
	serve(h, "/tasks/datatable?draw=1&start=0&length=10&order[0][column]=0&order[0][dir]=asc")

	rec := serve(h, "/metrics")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "taskview_queries_total 1") {
		t.Errorf("expected served query in exposition, got:\n%s", rec.Body.String())
	}
}

func TestHandler_Tasks(t *testing.T) {
	rec := serve(newTestHandler(), "/tasks/a")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var row map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &row); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if row["name"] != "add" {
		t.Errorf("expected name add, got %v", row["name"])
	}
}

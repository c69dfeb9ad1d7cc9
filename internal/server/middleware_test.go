package server

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestLoggingEmitsEnrichmentFields(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		AddLogField(r.Context(), "gtin", "9506000134352")
		AddLogField(r.Context(), "empty", "")
		w.WriteHeader(http.StatusTeapot)
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/resolve", nil)
	RequestID(Logging(logger)(h)).ServeHTTP(rec, req)

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("decode log line: %v (%s)", err, buf.String())
	}
	if line["msg"] != "request completed" {
		t.Fatalf("msg = %v", line["msg"])
	}
	if line["gtin"] != "9506000134352" {
		t.Errorf("gtin field = %v, want enrichment emitted", line["gtin"])
	}
	if _, present := line["empty"]; present {
		t.Error("empty enrichment values must be dropped")
	}
	if line["status"] != float64(http.StatusTeapot) {
		t.Errorf("status = %v", line["status"])
	}
	if line["request_id"] == "" || line["request_id"] == nil {
		t.Error("request_id missing from completion line")
	}
}

func TestAddLogFieldWithoutMiddleware(t *testing.T) {
	// Must be a silent no-op when the enrichment map is absent.
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	AddLogField(req.Context(), "gtin", "9506000134352")
}

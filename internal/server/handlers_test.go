package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/tracefirst/digilink/internal/assistant"
	"github.com/tracefirst/digilink/internal/catalog"
	"github.com/tracefirst/digilink/internal/controller"
	"github.com/tracefirst/digilink/internal/resolver"
	"github.com/tracefirst/digilink/internal/settings"
)

func newTestServer(t *testing.T, provider assistant.AnswerProvider) *Server {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(testWriter{t}, &slog.HandlerOptions{Level: slog.LevelError}))
	cat := catalog.NewDemo()
	engine := resolver.NewEngine(cat,
		resolver.WithSleep(func(ctx context.Context, d time.Duration) error { return ctx.Err() }),
		resolver.WithLogger(logger))
	session := assistant.NewSession(provider, logger)

	h := NewHandler(nil, session, cat, logger)
	ctrl := controller.New(engine, settings.NewMemory(),
		controller.WithLogger(logger),
		controller.WithLocatorClearer(h.ClearLocator),
		controller.WithAssistantCloser(session.Close))
	h.Bind(ctrl)

	if err := ctrl.Start(context.Background(), ""); err != nil {
		t.Fatalf("controller start: %v", err)
	}

	return New(0, logger, h)
}

type testWriter struct{ t *testing.T }

func (w testWriter) Write(p []byte) (int, error) {
	w.t.Log(strings.TrimSpace(string(p)))
	return len(p), nil
}

func do(t *testing.T, srv *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	srv.Router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, into any) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(into); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t, nil)
	rec := do(t, srv, http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("missing X-Request-ID header")
	}
}

func TestResolveSuccess(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := do(t, srv, http.MethodPost, "/api/resolve", `{"gtin":"9506000134352"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}

	var body sessionResponse
	decode(t, rec, &body)
	if body.Session.Mode != controller.ModeProduct {
		t.Errorf("mode = %q, want PRODUCT", body.Session.Mode)
	}
	if body.Session.Product == nil || body.Session.Product.GTIN != "9506000134352" {
		t.Errorf("product = %+v", body.Session.Product)
	}
	if body.Locator != "/?gtin=9506000134352" {
		t.Errorf("locator = %q", body.Locator)
	}
}

func TestResolveNotFoundStaysOnScan(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := do(t, srv, http.MethodPost, "/api/resolve", `{"gtin":"0000000000000"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var body sessionResponse
	decode(t, rec, &body)
	if body.Session.Mode != controller.ModeScan {
		t.Errorf("mode = %q, want SCAN", body.Session.Mode)
	}
	if body.Session.Err == "" {
		t.Error("expected a user-visible error message")
	}
	if body.Locator != "" {
		t.Errorf("locator = %q, want empty on failure", body.Locator)
	}
}

func TestBackClearsLocator(t *testing.T) {
	srv := newTestServer(t, nil)

	do(t, srv, http.MethodPost, "/api/resolve", `{"gtin":"9506000134352"}`)
	rec := do(t, srv, http.MethodPost, "/api/back", "")

	var body sessionResponse
	decode(t, rec, &body)
	if body.Session.Mode != controller.ModeScan {
		t.Errorf("mode = %q, want SCAN", body.Session.Mode)
	}
	if body.Locator != "" {
		t.Errorf("locator = %q, want cleared", body.Locator)
	}
	if body.Session.GTINInput != "" {
		t.Errorf("gtin input = %q, want cleared", body.Session.GTINInput)
	}
}

func TestSettingsSaveRoundTrip(t *testing.T) {
	srv := newTestServer(t, nil)

	do(t, srv, http.MethodPost, "/api/settings/open", "")
	rec := do(t, srv, http.MethodPut, "/api/settings",
		`{"base_url":"https://resolver.example.com","use_mock_data":false}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}

	var body sessionResponse
	decode(t, rec, &body)
	if body.Session.Mode != controller.ModeScan {
		t.Errorf("mode = %q, want SCAN after save", body.Session.Mode)
	}
	if body.Config.BaseURL != "https://resolver.example.com" || body.Config.UseMockData {
		t.Errorf("config = %+v", body.Config)
	}

	// Live mode is now active: resolution must fail naming the endpoint.
	rec = do(t, srv, http.MethodPost, "/api/resolve", `{"gtin":"9506000134352"}`)
	decode(t, rec, &body)
	if !strings.Contains(body.Session.Err, "https://resolver.example.com") {
		t.Errorf("err = %q, want endpoint named", body.Session.Err)
	}
}

func TestSettingsSaveRejectsEmptyBaseURL(t *testing.T) {
	srv := newTestServer(t, nil)
	rec := do(t, srv, http.MethodPut, "/api/settings", `{"base_url":"","use_mock_data":true}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestProductsListing(t *testing.T) {
	srv := newTestServer(t, nil)
	rec := do(t, srv, http.MethodGet, "/api/products", "")

	var body struct {
		Products []productSummary `json:"products"`
	}
	decode(t, rec, &body)
	if len(body.Products) != 2 {
		t.Fatalf("got %d products, want 2", len(body.Products))
	}
	if body.Products[1].Brand != "Verde Gustooooo" {
		t.Errorf("second product = %+v", body.Products[1])
	}
}

func TestAssistantRequiresProduct(t *testing.T) {
	srv := newTestServer(t, nil)
	rec := do(t, srv, http.MethodPost, "/api/assistant/open", "")
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}
}

func TestAssistantFlow(t *testing.T) {
	provider := assistant.AnswerFunc(func(ctx context.Context, prompt string) (string, error) {
		return "It contains milk and pine nuts.", nil
	})
	srv := newTestServer(t, provider)

	do(t, srv, http.MethodPost, "/api/resolve", `{"gtin":"9506000134352"}`)

	rec := do(t, srv, http.MethodPost, "/api/assistant/open", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("open status = %d", rec.Code)
	}
	var opened struct {
		Transcript []assistant.Turn `json:"transcript"`
	}
	decode(t, rec, &opened)
	if len(opened.Transcript) != 1 {
		t.Fatalf("transcript has %d turns, want greeting only", len(opened.Transcript))
	}

	rec = do(t, srv, http.MethodPost, "/api/assistant/ask", `{"question":"any allergens?"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("ask status = %d, body = %s", rec.Code, rec.Body)
	}
	var asked struct {
		Turn       assistant.Turn   `json:"turn"`
		Transcript []assistant.Turn `json:"transcript"`
	}
	decode(t, rec, &asked)
	if asked.Turn.Text != "It contains milk and pine nuts." {
		t.Errorf("turn = %+v", asked.Turn)
	}
	if len(asked.Transcript) != 3 {
		t.Errorf("transcript has %d turns, want 3", len(asked.Transcript))
	}

	// Empty question: silent rejection, transcript untouched.
	rec = do(t, srv, http.MethodPost, "/api/assistant/ask", `{"question":"   "}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("empty ask status = %d, want 400", rec.Code)
	}
	rec = do(t, srv, http.MethodGet, "/api/assistant/transcript", "")
	decode(t, rec, &asked)
	if len(asked.Transcript) != 3 {
		t.Errorf("transcript has %d turns after empty ask, want 3", len(asked.Transcript))
	}
}

func TestBackDiscardsAssistantTranscript(t *testing.T) {
	provider := assistant.AnswerFunc(func(ctx context.Context, prompt string) (string, error) {
		return "Yes.", nil
	})
	srv := newTestServer(t, provider)

	do(t, srv, http.MethodPost, "/api/resolve", `{"gtin":"9506000134352"}`)
	do(t, srv, http.MethodPost, "/api/assistant/open", "")
	do(t, srv, http.MethodPost, "/api/back", "")

	var body struct {
		Transcript []assistant.Turn `json:"transcript"`
	}
	rec := do(t, srv, http.MethodGet, "/api/assistant/transcript", "")
	decode(t, rec, &body)
	if len(body.Transcript) != 0 {
		t.Errorf("transcript has %d turns after back, want none", len(body.Transcript))
	}

	// The conversation belonged to the departed product.
	rec = do(t, srv, http.MethodPost, "/api/assistant/ask", `{"question":"still there?"}`)
	if rec.Code != http.StatusConflict {
		t.Errorf("ask status after back = %d, want 409", rec.Code)
	}
}

func TestSettingsFromProductViewIsNoop(t *testing.T) {
	srv := newTestServer(t, nil)

	do(t, srv, http.MethodPost, "/api/resolve", `{"gtin":"9506000134352"}`)
	do(t, srv, http.MethodPost, "/api/settings/open", "")
	rec := do(t, srv, http.MethodPost, "/api/settings/cancel", "")

	var body sessionResponse
	decode(t, rec, &body)
	if body.Session.Mode != controller.ModeProduct {
		t.Errorf("mode = %q, want PRODUCT preserved", body.Session.Mode)
	}
	if body.Session.Product == nil {
		t.Error("product lost while settings events were ignored")
	}
}

func TestAssistantAskBeforeOpen(t *testing.T) {
	srv := newTestServer(t, nil)
	rec := do(t, srv, http.MethodPost, "/api/assistant/ask", `{"question":"q"}`)
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}
}

package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/tracefirst/digilink/internal/assistant"
	"github.com/tracefirst/digilink/internal/catalog"
	"github.com/tracefirst/digilink/internal/controller"
	"github.com/tracefirst/digilink/internal/resolver"
	"github.com/tracefirst/digilink/internal/settings"
)

// Handler adapts the controller and assistant session to HTTP.
type Handler struct {
	ctrl    *controller.Controller
	session *assistant.Session
	catalog catalog.Catalog
	logger  *slog.Logger

	// locator is the shareable launch reference for the currently resolved
	// product, cleared when the user navigates back.
	locatorMu sync.Mutex
	locator   string
}

// NewHandler creates the HTTP handler set. The controller may be nil at
// construction and supplied later with Bind; this lets the controller take
// the handler's locator clearer as a dependency.
func NewHandler(ctrl *controller.Controller, session *assistant.Session, cat catalog.Catalog, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{ctrl: ctrl, session: session, catalog: cat, logger: logger}
}

// Bind attaches the controller. Must be called before the handler serves
// requests.
func (h *Handler) Bind(ctrl *controller.Controller) {
	h.ctrl = ctrl
}

// Routes mounts all endpoints on r.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/healthz", h.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Get("/session", h.handleSession)
		r.Get("/products", h.handleProducts)
		r.Post("/resolve", h.handleResolve)
		r.Post("/quick-select", h.handleQuickSelect)
		r.Post("/back", h.handleBack)
		r.Post("/settings/open", h.handleSettingsOpen)
		r.Post("/settings/cancel", h.handleSettingsCancel)
		r.Put("/settings", h.handleSettingsSave)
		r.Post("/assistant/open", h.handleAssistantOpen)
		r.Post("/assistant/ask", h.handleAssistantAsk)
		r.Get("/assistant/transcript", h.handleAssistantTranscript)
	})
}

// ClearLocator resets the shareable locator. Wired as the controller's
// locator clearer so a reload after Back starts at SCAN.
func (h *Handler) ClearLocator() {
	h.locatorMu.Lock()
	defer h.locatorMu.Unlock()
	h.locator = ""
}

func (h *Handler) setLocator(gtin string) {
	h.locatorMu.Lock()
	defer h.locatorMu.Unlock()
	h.locator = "/?gtin=" + gtin
}

func (h *Handler) currentLocator() string {
	h.locatorMu.Lock()
	defer h.locatorMu.Unlock()
	return h.locator
}

type sessionResponse struct {
	Session controller.ViewSession  `json:"session"`
	Config  settings.ResolverConfig `json:"config"`
	Locator string                  `json:"locator,omitempty"`
}

func (h *Handler) sessionBody() sessionResponse {
	return sessionResponse{
		Session: h.ctrl.Session(),
		Config:  h.ctrl.Config(),
		Locator: h.currentLocator(),
	}
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) handleSession(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.sessionBody())
}

type productSummary struct {
	GTIN  string `json:"gtin"`
	Name  string `json:"name"`
	Brand string `json:"brand"`
	Image string `json:"image"`
}

func (h *Handler) handleProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "listing products failed")
		return
	}
	out := make([]productSummary, 0, len(products))
	for _, p := range products {
		out = append(out, productSummary{GTIN: p.GTIN, Name: p.Name, Brand: p.Brand, Image: p.Image})
	}
	writeJSON(w, http.StatusOK, map[string]any{"products": out})
}

type resolveRequest struct {
	GTIN string `json:"gtin"`
}

func (h *Handler) handleResolve(w http.ResponseWriter, r *http.Request) {
	var req resolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	AddLogField(r.Context(), "gtin", req.GTIN)
	if req.GTIN != "" {
		h.ctrl.SetInput(req.GTIN)
	}
	h.finishResolve(w, r, h.ctrl.Submit(r.Context()))
}

func (h *Handler) handleQuickSelect(w http.ResponseWriter, r *http.Request) {
	var req resolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.GTIN == "" {
		writeError(w, http.StatusBadRequest, "gtin is required")
		return
	}
	AddLogField(r.Context(), "gtin", req.GTIN)
	h.finishResolve(w, r, h.ctrl.QuickSelect(r.Context(), req.GTIN))
}

// finishResolve folds a submit outcome into an HTTP response. Resolution
// failures are part of the view state, not transport errors; only the
// in-flight rejection surfaces as a non-200.
func (h *Handler) finishResolve(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, controller.ErrResolveInFlight) {
		writeError(w, http.StatusConflict, "a resolution is already in flight")
		return
	}
	var rerr *resolver.Error
	if err != nil && !errors.As(err, &rerr) {
		writeError(w, http.StatusInternalServerError, "resolution failed")
		return
	}

	snap := h.ctrl.Session()
	AddLogField(r.Context(), "view_mode", string(snap.Mode))
	if snap.Mode == controller.ModeProduct && snap.Product != nil {
		h.setLocator(snap.Product.GTIN)
	}
	writeJSON(w, http.StatusOK, h.sessionBody())
}

func (h *Handler) handleBack(w http.ResponseWriter, r *http.Request) {
	h.ctrl.Back()
	writeJSON(w, http.StatusOK, h.sessionBody())
}

func (h *Handler) handleSettingsOpen(w http.ResponseWriter, r *http.Request) {
	h.ctrl.OpenSettings()
	writeJSON(w, http.StatusOK, h.sessionBody())
}

func (h *Handler) handleSettingsCancel(w http.ResponseWriter, r *http.Request) {
	h.ctrl.CancelSettings()
	writeJSON(w, http.StatusOK, h.sessionBody())
}

func (h *Handler) handleSettingsSave(w http.ResponseWriter, r *http.Request) {
	var cfg settings.ResolverConfig
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if cfg.BaseURL == "" {
		writeError(w, http.StatusBadRequest, "base_url is required")
		return
	}

	err := h.ctrl.SaveSettings(r.Context(), cfg)
	if errors.Is(err, controller.ErrConfigPersist) {
		// The state machine has already moved on; persistence failure is
		// surfaced distinctly rather than silently discarded.
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"error":   "saving configuration failed",
			"session": h.ctrl.Session(),
		})
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "saving configuration failed")
		return
	}
	writeJSON(w, http.StatusOK, h.sessionBody())
}

func (h *Handler) handleAssistantOpen(w http.ResponseWriter, r *http.Request) {
	snap := h.ctrl.Session()
	if snap.Product == nil {
		writeError(w, http.StatusConflict, "no product resolved")
		return
	}
	h.session.Open(snap.Product)
	writeJSON(w, http.StatusOK, map[string]any{"transcript": h.session.Transcript()})
}

type askRequest struct {
	Question string `json:"question"`
}

func (h *Handler) handleAssistantAsk(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	turn, err := h.session.Ask(r.Context(), req.Question)
	switch {
	case errors.Is(err, assistant.ErrEmptyQuestion):
		writeError(w, http.StatusBadRequest, "question is empty")
		return
	case errors.Is(err, assistant.ErrNotOpen):
		writeError(w, http.StatusConflict, "assistant session is not open")
		return
	case errors.Is(err, assistant.ErrTranscriptDiscarded):
		writeError(w, http.StatusGone, "assistant session was closed")
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, "assistant failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"turn":       turn,
		"transcript": h.session.Transcript(),
	})
}

func (h *Handler) handleAssistantTranscript(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"transcript": h.session.Transcript()})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"order-ledger/internal/app"

	"github.com/go-chi/chi/v5"
)

// Options configures the HTTP handler.
type Options struct {
	AllowedOrigins string
	JWTSecret      string
	JWTTTL         time.Duration
	// SecureCookies sets the Secure flag on the auth cookie. Disable only for plain-HTTP local development.
	SecureCookies bool
	// Hub receives order updates for the /api/events feed. Nil disables the feed.
	Hub *Hub
}

// Handler holds the ApplicationService, the chi router, and the auth settings.
type Handler struct {
	svc           app.ApplicationService
	router        chi.Router
	jwtSecret     []byte
	jwtTTL        time.Duration
	secureCookies bool
	hub           *Hub
}

// NewHandler creates and wires the chi router with all routes.
func NewHandler(svc app.ApplicationService, opts Options) http.Handler {
	if opts.JWTTTL <= 0 {
		opts.JWTTTL = time.Hour
	}
	h := &Handler{
		svc:           svc,
		jwtSecret:     []byte(opts.JWTSecret),
		jwtTTL:        opts.JWTTTL,
		secureCookies: opts.SecureCookies,
		hub:           opts.Hub,
	}

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Logger)
	r.Use(Recoverer)
	r.Use(CORS(opts.AllowedOrigins))

	// ── Public ────────────────────────────────────────────────────────────────
	r.Get("/api/health", h.health)
	r.With(RequestBodyLimit(1 << 20)).Post("/api/auth/login", h.login)
	r.Post("/api/auth/logout", h.logout)

	// ── Event feed (browsers cannot set headers on websocket upgrades) ───────
	r.With(h.authenticate(true)).Get("/api/events", h.events)

	// ── Protected API routes (return 401 JSON if unauthenticated) ────────────
	r.Group(func(r chi.Router) {
		r.Use(h.RequireAuth)
		r.Use(h.RequireActiveUser)
		r.Use(RequestBodyLimit(1 << 20)) // 1 MB

		r.Get("/api/auth/me", h.me)

		r.Get("/api/dashboard", h.apiDashboard)
		r.Get("/api/schemas/{form}", h.apiSchema)

		r.Get("/api/orders", h.apiListOrders)
		r.Post("/api/orders", h.apiCreateOrder)
		r.Get("/api/orders/export.xlsx", h.apiExportOrders)
		r.Get("/api/orders/{id}", h.apiGetOrder)
		r.Post("/api/orders/{id}/dispatches", h.apiRecordDispatch)
		r.Post("/api/orders/{id}/payments", h.apiRecordPayment)
		r.Post("/api/orders/{id}/cancel", h.apiCancelOrder)
	})

	h.router = r
	return r
}

// health returns service status.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	type response struct {
		Status string `json:"status"`
		Events int    `json:"event_clients"`
	}
	resp := response{Status: "ok"}
	if h.hub != nil {
		resp.Events = h.hub.ClientCount()
	}
	writeJSON(w, resp)
}

// orderID extracts the {id} URL parameter.
func orderID(r *http.Request) string {
	return chi.URLParam(r, "id")
}

// decodeJSON decodes the request body into v and returns false + writes an appropriate
// error response on failure. Returns HTTP 413 when the body exceeds the size limit set
// by RequestBodyLimit middleware; HTTP 400 for all other decode errors.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			writeError(w, r, "request body too large", "REQUEST_TOO_LARGE", http.StatusRequestEntityTooLarge)
			return false
		}
		writeError(w, r, "invalid JSON body: "+err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return false
	}
	return true
}

// Package handler exposes the order form's JSON API: the service catalog,
// price previews, and order submission.
package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/pragerfoto/mentor-order-api/internal/catalog"
	"github.com/pragerfoto/mentor-order-api/internal/order"
	"github.com/pragerfoto/mentor-order-api/internal/pricing"
)

// maxBodyBytes caps request bodies; order drafts are small.
const maxBodyBytes = 1 << 20

// Handler serves the form API. Each submission request gets its own
// submitter, mirroring the one-draft-per-session ownership model.
type Handler struct {
	engine      pricing.Engine
	relay       order.Relay
	sendTimeout time.Duration
	now         func() time.Time
}

// Option customizes a Handler.
type Option func(*Handler)

// WithClock replaces the pricing clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(h *Handler) { h.now = now }
}

// New constructs a Handler.
func New(engine pricing.Engine, relay order.Relay, sendTimeout time.Duration, opts ...Option) *Handler {
	h := &Handler{
		engine:      engine,
		relay:       relay,
		sendTimeout: sendTimeout,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Routes returns the API router.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/services", h.listServices)
	r.Post("/quote", h.quote)
	r.Post("/orders", h.placeOrder)
	return r
}

// listServices returns the catalog in display order.
func (h *Handler) listServices(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, encodeServices(catalog.All()))
}

// quote prices a selection without submitting anything. The form calls this
// on every change, so it accepts partial drafts.
func (h *Handler) quote(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "A kérés törzse nem olvasható.")
		return
	}

	req, err := decodeQuoteRequest(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Érvénytelen kérés.")
		return
	}

	d := order.NewDraft()
	d.SelectedServices = req.Selected
	d.ParticipantCount = req.Participants
	d.Normalize()

	selected, err := d.Selected()
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			writeError(w, http.StatusUnprocessableEntity, "Ismeretlen szolgáltatás.")
			return
		}
		h.serverError(w, r, err)
		return
	}

	q := h.engine.Quote(selected, d.ParticipantCount, h.now())
	writeJSON(w, http.StatusOK, encodeQuote(q, d.ParticipantCount))
}

// placeOrder runs the full submission: validate, price, relay send.
func (h *Handler) placeOrder(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "A kérés törzse nem olvasható.")
		return
	}

	draft, err := decodeDraft(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Érvénytelen kérés.")
		return
	}

	sub := order.NewSubmitter(h.relay, h.engine, h.sendTimeout, order.WithClock(h.now))
	res, err := sub.Submit(r.Context(), draft)

	if !res.FieldErrors.OK() {
		writeJSON(w, http.StatusUnprocessableEntity, encodeFieldErrors(res.FieldErrors))
		return
	}

	if err != nil {
		lg := zctx.From(r.Context())

		if errors.Is(err, catalog.ErrNotFound) {
			writeError(w, http.StatusUnprocessableEntity, "Ismeretlen szolgáltatás.")
			return
		}

		var cfgErr *order.ConfigurationError
		if errors.As(err, &cfgErr) {
			// Operator detail goes to the logs only.
			lg.Error("order delivery misconfigured", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "Szerver konfigurációs hiba.")
			return
		}

		var relayErr *order.RelayError
		var transportErr *order.TransportError
		if errors.As(err, &relayErr) || errors.As(err, &transportErr) {
			lg.Error("order delivery failed",
				zap.String("reference", res.Order.Reference),
				zap.Error(err),
			)
			writeError(w, http.StatusBadGateway, res.Message)
			return
		}

		h.serverError(w, r, err)
		return
	}

	zctx.From(r.Context()).Info("order delivered",
		zap.String("reference", res.Order.Reference),
		zap.String("final_total", res.Order.Quote.FinalTotal.String()),
	)
	writeJSON(w, http.StatusOK, encodeOrderResult(&res))
}

func (h *Handler) serverError(w http.ResponseWriter, r *http.Request, err error) {
	zctx.From(r.Context()).Error("request failed", zap.Error(err))
	writeError(w, http.StatusInternalServerError, "Belső szerverhiba történt.")
}

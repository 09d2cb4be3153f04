package promotion

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"grubmarket/internal/auth"
	"grubmarket/internal/httpx"
	"grubmarket/internal/logger"
	"grubmarket/internal/models"
)

// Handler exposes the promotion service over HTTP. The caller wraps the
// routes in the owner role guard.
type Handler struct {
	service *Service
	logger  *logger.Logger
}

// NewHandler creates a promotion handler.
func NewHandler(service *Service, log *logger.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  log,
	}
}

// Register mounts the promotion routes.
func (h *Handler) Register(r chi.Router) {
	r.Post("/payments", h.createPayment)
	r.Get("/payments", h.listPayments)
}

func (h *Handler) createPayment(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFrom(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "missing bearer token")
		return
	}

	var req models.CreatePaymentRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid JSON format")
		return
	}

	p, err := h.service.CreatePayment(r.Context(), actor, &req)
	if err != nil {
		h.writeDomainError(w, err, "payment_creation_failed")
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, p)
}

func (h *Handler) listPayments(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFrom(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "missing bearer token")
		return
	}

	payments, err := h.service.ListPayments(r.Context(), actor)
	if err != nil {
		h.writeDomainError(w, err, "payment_list_failed")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]interface{}{"payments": payments})
}

func (h *Handler) writeDomainError(w http.ResponseWriter, err error, action string) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.WriteError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrNotOwner):
		httpx.WriteError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, ErrInvalidInput):
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
	default:
		h.logger.Error(action, "Unexpected promotion failure", logger.GenerateRequestID(), err, nil)
		httpx.WriteError(w, http.StatusInternalServerError, "internal server error")
	}
}

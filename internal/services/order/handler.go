package order

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"grubmarket/internal/auth"
	"grubmarket/internal/httpx"
	"grubmarket/internal/logger"
	"grubmarket/internal/models"
)

// Handler exposes the order service over HTTP. All routes require an
// authenticated actor.
type Handler struct {
	service *Service
	logger  *logger.Logger
}

// NewHandler creates an order handler.
func NewHandler(service *Service, log *logger.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  log,
	}
}

// Register mounts the order routes.
func (h *Handler) Register(r chi.Router) {
	r.Post("/orders", h.createOrder)
	r.Get("/orders", h.listOrders)
	r.Get("/orders/{id}", h.getOrder)
	r.Get("/orders/{id}/status", h.getOrderStatus)
	r.Patch("/orders/{id}/status", h.editOrder)
	r.Post("/orders/{id}/take", h.takeOrder)
}

func (h *Handler) createOrder(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFrom(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "missing bearer token")
		return
	}

	var req models.CreateOrderRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid JSON format")
		return
	}

	resp, err := h.service.Create(r.Context(), actor, &req)
	if err != nil {
		h.writeDomainError(w, r, err, "order_creation_failed")
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, resp)
}

func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFrom(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "missing bearer token")
		return
	}

	var status *models.OrderStatus
	if raw := r.URL.Query().Get("status"); raw != "" {
		parsed, err := models.ParseOrderStatus(raw)
		if err != nil {
			httpx.WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		status = &parsed
	}

	orders, err := h.service.List(r.Context(), actor, status)
	if err != nil {
		h.writeDomainError(w, r, err, "order_list_failed")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]interface{}{"orders": orders})
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFrom(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "missing bearer token")
		return
	}
	orderID, err := orderIDParam(r)
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid order id")
		return
	}

	o, err := h.service.Get(r.Context(), actor, orderID)
	if err != nil {
		h.writeDomainError(w, r, err, "order_get_failed")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, o)
}

func (h *Handler) getOrderStatus(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFrom(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "missing bearer token")
		return
	}
	orderID, err := orderIDParam(r)
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid order id")
		return
	}

	status, err := h.service.Status(r.Context(), actor, orderID)
	if err != nil {
		h.writeDomainError(w, r, err, "order_status_failed")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]models.OrderStatus{"status": status})
}

func (h *Handler) editOrder(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFrom(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "missing bearer token")
		return
	}
	orderID, err := orderIDParam(r)
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid order id")
		return
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid JSON format")
		return
	}
	status, err := models.ParseOrderStatus(req.Status)
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.service.Edit(r.Context(), actor, orderID, status); err != nil {
		h.writeDomainError(w, r, err, "order_edit_failed")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (h *Handler) takeOrder(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFrom(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "missing bearer token")
		return
	}
	orderID, err := orderIDParam(r)
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid order id")
		return
	}

	if err := h.service.Take(r.Context(), actor, orderID); err != nil {
		h.writeDomainError(w, r, err, "order_take_failed")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// writeDomainError maps domain error kinds onto HTTP status codes.
func (h *Handler) writeDomainError(w http.ResponseWriter, r *http.Request, err error, action string) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.WriteError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrUnauthorized):
		httpx.WriteError(w, http.StatusForbidden, "not authorized")
	case errors.Is(err, ErrOrderTaken):
		httpx.WriteError(w, http.StatusConflict, err.Error())
	case errors.Is(err, ErrInvalidInput):
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
	default:
		h.logger.Error(action, "Unexpected order domain failure", logger.GenerateRequestID(), err, map[string]interface{}{
			"path": r.URL.Path,
		})
		httpx.WriteError(w, http.StatusInternalServerError, "internal server error")
	}
}

func orderIDParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

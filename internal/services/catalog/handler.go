package catalog

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

// Handler exposes the catalog service over HTTP. Browsing is public; every
// mutation requires an authenticated owner.
type Handler struct {
	service *Service
	logger  *logger.Logger
}

// NewHandler creates a catalog handler.
func NewHandler(service *Service, log *logger.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  log,
	}
}

// RegisterPublic mounts the browsing routes.
func (h *Handler) RegisterPublic(r chi.Router) {
	r.Get("/restaurants", h.listRestaurants)
	r.Get("/restaurants/search", h.searchRestaurants)
	r.Get("/restaurants/{id}", h.getRestaurant)
	r.Get("/categories", h.listCategories)
	r.Get("/categories/{slug}", h.categoryBySlug)
}

// RegisterOwner mounts the mutation routes. The caller wraps them in the
// owner role guard.
func (h *Handler) RegisterOwner(r chi.Router) {
	r.Post("/restaurants", h.createRestaurant)
	r.Get("/restaurants/mine", h.myRestaurants)
	r.Patch("/restaurants/{id}", h.editRestaurant)
	r.Delete("/restaurants/{id}", h.deleteRestaurant)
	r.Post("/dishes", h.createDish)
	r.Patch("/dishes/{id}", h.editDish)
	r.Delete("/dishes/{id}", h.deleteDish)
}

func (h *Handler) listRestaurants(w http.ResponseWriter, r *http.Request) {
	page, err := h.service.ListRestaurants(r.Context(), pageParam(r))
	if err != nil {
		h.writeDomainError(w, err, "restaurant_list_failed")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, page)
}

func (h *Handler) searchRestaurants(w http.ResponseWriter, r *http.Request) {
	page, err := h.service.SearchRestaurants(r.Context(), r.URL.Query().Get("query"), pageParam(r))
	if err != nil {
		h.writeDomainError(w, err, "restaurant_search_failed")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, page)
}

func (h *Handler) getRestaurant(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid restaurant id")
		return
	}
	rest, err := h.service.GetRestaurant(r.Context(), id)
	if err != nil {
		h.writeDomainError(w, err, "restaurant_get_failed")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, rest)
}

func (h *Handler) listCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.service.ListCategories(r.Context())
	if err != nil {
		h.writeDomainError(w, err, "category_list_failed")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]interface{}{"categories": categories})
}

func (h *Handler) categoryBySlug(w http.ResponseWriter, r *http.Request) {
	page, err := h.service.CategoryBySlug(r.Context(), chi.URLParam(r, "slug"), pageParam(r))
	if err != nil {
		h.writeDomainError(w, err, "category_get_failed")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, page)
}

func (h *Handler) createRestaurant(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFrom(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "missing bearer token")
		return
	}

	var req models.CreateRestaurantRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid JSON format")
		return
	}

	rest, err := h.service.CreateRestaurant(r.Context(), actor, &req)
	if err != nil {
		h.writeDomainError(w, err, "restaurant_creation_failed")
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, rest)
}

func (h *Handler) myRestaurants(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFrom(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "missing bearer token")
		return
	}

	restaurants, err := h.service.MyRestaurants(r.Context(), actor)
	if err != nil {
		h.writeDomainError(w, err, "restaurant_list_failed")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]interface{}{"restaurants": restaurants})
}

func (h *Handler) editRestaurant(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFrom(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "missing bearer token")
		return
	}
	id, err := idParam(r)
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid restaurant id")
		return
	}

	var req models.EditRestaurantRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid JSON format")
		return
	}

	rest, err := h.service.EditRestaurant(r.Context(), actor, id, &req)
	if err != nil {
		h.writeDomainError(w, err, "restaurant_edit_failed")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, rest)
}

func (h *Handler) deleteRestaurant(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFrom(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "missing bearer token")
		return
	}
	id, err := idParam(r)
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid restaurant id")
		return
	}

	if err := h.service.DeleteRestaurant(r.Context(), actor, id); err != nil {
		h.writeDomainError(w, err, "restaurant_delete_failed")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (h *Handler) createDish(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFrom(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "missing bearer token")
		return
	}

	var req models.CreateDishRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid JSON format")
		return
	}

	d, err := h.service.CreateDish(r.Context(), actor, &req)
	if err != nil {
		h.writeDomainError(w, err, "dish_creation_failed")
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, d)
}

func (h *Handler) editDish(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFrom(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "missing bearer token")
		return
	}
	id, err := idParam(r)
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid dish id")
		return
	}

	var req models.EditDishRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid JSON format")
		return
	}

	d, err := h.service.EditDish(r.Context(), actor, id, &req)
	if err != nil {
		h.writeDomainError(w, err, "dish_edit_failed")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, d)
}

func (h *Handler) deleteDish(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFrom(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "missing bearer token")
		return
	}
	id, err := idParam(r)
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid dish id")
		return
	}

	if err := h.service.DeleteDish(r.Context(), actor, id); err != nil {
		h.writeDomainError(w, err, "dish_delete_failed")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (h *Handler) writeDomainError(w http.ResponseWriter, err error, action string) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.WriteError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrNotOwner):
		httpx.WriteError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, ErrHasOrders):
		httpx.WriteError(w, http.StatusConflict, err.Error())
	case errors.Is(err, ErrInvalidInput):
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
	default:
		h.logger.Error(action, "Unexpected catalog failure", logger.GenerateRequestID(), err, nil)
		httpx.WriteError(w, http.StatusInternalServerError, "internal server error")
	}
}

func idParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

func pageParam(r *http.Request) int {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

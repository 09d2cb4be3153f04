package user

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"grubmarket/internal/auth"
	"grubmarket/internal/httpx"
	"grubmarket/internal/logger"
	"grubmarket/internal/models"
)

// Handler exposes the account service over HTTP.
type Handler struct {
	service *Service
	logger  *logger.Logger
}

// NewHandler creates a user handler.
func NewHandler(service *Service, log *logger.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  log,
	}
}

// RegisterPublic mounts the routes that need no authentication.
func (h *Handler) RegisterPublic(r chi.Router) {
	r.Post("/users", h.createAccount)
	r.Post("/users/login", h.login)
	r.Post("/users/verify", h.verifyEmail)
}

// RegisterProtected mounts the routes that require an authenticated actor.
func (h *Handler) RegisterProtected(r chi.Router) {
	r.Get("/users/me", h.profile)
	r.Patch("/users/me", h.editProfile)
}

func (h *Handler) createAccount(w http.ResponseWriter, r *http.Request) {
	var req models.CreateAccountRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid JSON format")
		return
	}

	u, err := h.service.CreateAccount(r.Context(), &req)
	if err != nil {
		h.writeDomainError(w, err, "account_creation_failed")
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, u)
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid JSON format")
		return
	}

	resp, err := h.service.Login(r.Context(), &req)
	if err != nil {
		h.writeDomainError(w, err, "login_failed")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) verifyEmail(w http.ResponseWriter, r *http.Request) {
	var req models.VerifyEmailRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid JSON format")
		return
	}

	if err := h.service.VerifyEmail(r.Context(), req.Code); err != nil {
		h.writeDomainError(w, err, "email_verification_failed")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (h *Handler) profile(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFrom(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "missing bearer token")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, actor)
}

func (h *Handler) editProfile(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFrom(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "missing bearer token")
		return
	}

	var req models.EditProfileRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid JSON format")
		return
	}

	u, err := h.service.EditProfile(r.Context(), actor, &req)
	if err != nil {
		h.writeDomainError(w, err, "profile_edit_failed")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, u)
}

func (h *Handler) writeDomainError(w http.ResponseWriter, err error, action string) {
	switch {
	case errors.Is(err, ErrEmailTaken):
		httpx.WriteError(w, http.StatusConflict, err.Error())
	case errors.Is(err, ErrInvalidCredentials):
		httpx.WriteError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, ErrNotFound):
		httpx.WriteError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrVerificationNotFound):
		httpx.WriteError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrInvalidInput):
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
	default:
		h.logger.Error(action, "Unexpected account failure", logger.GenerateRequestID(), err, nil)
		httpx.WriteError(w, http.StatusInternalServerError, "internal server error")
	}
}

package users

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/chirper/chirper/internal/auth"
	"github.com/chirper/chirper/internal/platform/httpx"
	"github.com/chirper/chirper/internal/rbac"
)

// Handler exposes the user CRUD endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

// MountRoutes registers user routes. Registration stays open; everything
// else requires the matching user action on the caller's token.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/", h.create)

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAnyAction(rbac.ActionUserRead, rbac.ActionUserWrite))
		r.Get("/", h.list)
		r.Get("/{userID}", h.get)
	})

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireActions(rbac.ActionUserWrite))
		r.Put("/{userID}", h.update)
		r.Delete("/{userID}", h.remove)
	})
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	u, err := h.service.Create(r.Context(), req)
	if err != nil {
		if !httpx.IsUniqueViolation(err) {
			h.logError("create user", err)
		}
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, u)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.List(r.Context())
	if err != nil {
		h.logError("list users", err)
		httpx.RespondError(w, err)
		return
	}
	if list == nil {
		list = []User{}
	}
	httpx.JSON(w, http.StatusOK, list)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	u, err := h.service.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			httpx.RespondError(w, httpx.ErrNotFound)
			return
		}
		h.logError("get user", err)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, u)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var req UpdateUserRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	u, err := h.service.Update(r.Context(), id, req)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			httpx.RespondError(w, httpx.ErrNotFound)
			return
		}
		if !httpx.IsUniqueViolation(err) {
			h.logError("update user", err)
		}
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, u)
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		if errors.Is(err, ErrUserNotFound) {
			httpx.RespondError(w, httpx.ErrNotFound)
			return
		}
		h.logError("delete user", err)
		httpx.RespondError(w, err)
		return
	}
	httpx.NoContent(w)
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return 0, false
	}
	return id, true
}

func (h *Handler) logError(msg string, err error) {
	if h.logger != nil {
		h.logger.Error(msg, slog.Any("error", err))
	}
}

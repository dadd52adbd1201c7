package tweets

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

// Handler exposes the tweet CRUD endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

// MountRoutes registers tweet routes. Reads accept either tweet action;
// writes require tweet:write.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAnyAction(rbac.ActionTweetRead, rbac.ActionTweetWrite))
		r.Get("/", h.list)
		r.Get("/{tweetID}", h.get)
	})

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireActions(rbac.ActionTweetWrite))
		r.Post("/", h.create)
		r.Put("/{tweetID}", h.update)
		r.Delete("/{tweetID}", h.remove)
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.List(r.Context())
	if err != nil {
		h.logError("list tweets", err)
		httpx.RespondError(w, err)
		return
	}
	if list == nil {
		list = []Tweet{}
	}
	httpx.JSON(w, http.StatusOK, list)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	t, err := h.service.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrTweetNotFound) {
			httpx.RespondError(w, httpx.ErrNotFound)
			return
		}
		h.logError("get tweet", err)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, t)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}
	t, err := h.service.Create(r.Context(), req)
	if err != nil {
		h.respondMutationError(w, "create tweet", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, t)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	req, ok := h.decode(w, r)
	if !ok {
		return
	}
	t, err := h.service.Update(r.Context(), id, req)
	if err != nil {
		h.respondMutationError(w, "update tweet", err)
		return
	}
	httpx.JSON(w, http.StatusOK, t)
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.respondMutationError(w, "delete tweet", err)
		return
	}
	httpx.NoContent(w)
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request) (TweetRequest, bool) {
	var req TweetRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return TweetRequest{}, false
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return TweetRequest{}, false
	}
	return req, true
}

func (h *Handler) respondMutationError(w http.ResponseWriter, msg string, err error) {
	if errors.Is(err, ErrTweetNotFound) || errors.Is(err, ErrAuthorNotFound) {
		httpx.RespondError(w, httpx.ErrNotFound)
		return
	}
	h.logError(msg, err)
	httpx.RespondError(w, err)
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "tweetID"), 10, 64)
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

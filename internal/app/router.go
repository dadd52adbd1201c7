package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/chirper/chirper/internal/audit"
	"github.com/chirper/chirper/internal/auth"
	"github.com/chirper/chirper/internal/observability"
	"github.com/chirper/chirper/internal/rbac"
	"github.com/chirper/chirper/internal/tweets"
	"github.com/chirper/chirper/internal/users"
	"github.com/chirper/chirper/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger        *slog.Logger
	Config        *Config
	Codec         *auth.TokenCodec
	AuthHandler   *auth.Handler
	UsersHandler  *users.Handler
	TweetsHandler *tweets.Handler
	RBACHandler   *rbac.Handler
	AuditHandler  *audit.Handler
	JobHandler    *jobs.Handler
	Metrics       *observability.Metrics
}

// NewRouter constructs the chi.Router with the full route tree.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Codec:   params.Codec,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/oauth", params.AuthHandler.MountRoutes)
	r.Route("/users", params.UsersHandler.MountRoutes)
	r.Route("/tweets", params.TweetsHandler.MountRoutes)

	r.Route("/rbac", func(r chi.Router) {
		r.Use(auth.RequireActions(rbac.ActionRBACAdmin))
		params.RBACHandler.MountRoutes(r)
	})

	r.Route("/audit", func(r chi.Router) {
		r.Use(auth.RequireActions(rbac.ActionAuditRead))
		params.AuditHandler.MountRoutes(r)
	})

	if params.JobHandler != nil {
		r.Route("/jobs", params.JobHandler.MountRoutes)
	}

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}

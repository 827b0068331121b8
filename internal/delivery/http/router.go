package http

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"vibeconnect/internal/delivery/http/controllers"
	"vibeconnect/internal/delivery/http/middleware"
	"vibeconnect/internal/domain"
)

// RouterConfig carries everything the router needs.
type RouterConfig struct {
	Events   *controllers.EventController
	Users    *controllers.UserController
	Verifier domain.TokenVerifier
	Registry *prometheus.Registry

	// UploadDir, when non-empty, is served under /uploads/events/ so
	// locally stored images are reachable. Empty in s3 mode.
	UploadDir string
}

// NewRouter initializes the HTTP router with all application routes.
// The engine itself enforces roles; middleware only establishes identity.
func NewRouter(cfg RouterConfig) *http.ServeMux {
	mux := http.NewServeMux()
	requireAuth := middleware.RequireAuth(cfg.Verifier)
	optionalAuth := middleware.OptionalAuth(cfg.Verifier)

	// Events
	mux.HandleFunc("GET /events", optionalAuth(cfg.Events.ListEvents))
	mux.HandleFunc("GET /events/liked", requireAuth(cfg.Events.ListLikedEvents))
	mux.HandleFunc("GET /events/{eventID}", optionalAuth(cfg.Events.GetEvent))
	mux.HandleFunc("POST /events", requireAuth(cfg.Events.CreateEvent))
	mux.HandleFunc("PUT /events/{eventID}", requireAuth(cfg.Events.UpdateEvent))
	mux.HandleFunc("DELETE /events/{eventID}", requireAuth(cfg.Events.DeleteEvent))
	mux.HandleFunc("PATCH /events/{eventID}/view", optionalAuth(cfg.Events.IncrementView))
	mux.HandleFunc("PATCH /events/{eventID}/like", requireAuth(cfg.Events.ToggleLike))

	// Auth + users
	mux.HandleFunc("POST /auth/signup", cfg.Users.SignUp)
	mux.HandleFunc("POST /auth/login", cfg.Users.Login)
	mux.HandleFunc("GET /users/{userID}", cfg.Users.GetUser)
	mux.HandleFunc("PUT /users/{userID}", requireAuth(cfg.Users.UpdateUser))

	// Locally stored images
	if cfg.UploadDir != "" {
		mux.Handle("GET /uploads/events/", http.StripPrefix("/uploads/events/", http.FileServer(http.Dir(cfg.UploadDir))))
	}

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	// Metrics
	if cfg.Registry != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(cfg.Registry, promhttp.HandlerOpts{}))
	}

	return mux
}

package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/taskmanager/taskmanager-go/internal/middleware"
	"github.com/taskmanager/taskmanager-go/internal/service"
)

// RouterConfig holds what NewRouter wires together.
type RouterConfig struct {
	Logger *slog.Logger
	Auth   *service.AuthService
	Users  *service.UserService
	Tasks  *service.TaskService

	// AuthRateLimit and AuthRateBurst limit signup and login per client IP.
	AuthRateLimit float64
	AuthRateBurst int
}

// NewRouter builds the API routes. Background work started for the router,
// such as rate limiter cleanup, stops when ctx is cancelled.
func NewRouter(ctx context.Context, cfg RouterConfig) http.Handler {
	users := NewUserHandler(cfg.Auth, cfg.Users)
	tasks := NewTaskHandler(cfg.Tasks)
	authed := func(h middleware.SessionHandlerFunc) http.HandlerFunc {
		return middleware.Authenticated(cfg.Auth, h)
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(chimw.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Route("/users", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.RateLimit(ctx, cfg.AuthRateLimit, cfg.AuthRateBurst))
			r.Post("/", users.HandleSignup)
			r.Post("/login", users.HandleLogin)
		})

		r.Post("/logout", authed(users.HandleLogout))
		r.Post("/logoutAll", authed(users.HandleLogoutAll))

		r.Get("/me", authed(users.HandleMe))
		r.Patch("/me", authed(users.HandleUpdateMe))
		r.Delete("/me", authed(users.HandleDeleteMe))

		r.Post("/me/avatar", authed(users.HandleUploadAvatar))
		r.Delete("/me/avatar", authed(users.HandleDeleteAvatar))
		r.Get("/{id}/avatar", users.HandleGetAvatar)
	})

	r.Route("/tasks", func(r chi.Router) {
		r.Post("/", authed(tasks.HandleCreate))
		r.Get("/", authed(tasks.HandleList))
		r.Get("/{id}", authed(tasks.HandleGet))
		r.Patch("/{id}", authed(tasks.HandleUpdate))
		r.Delete("/{id}", authed(tasks.HandleDelete))
	})

	return r
}

package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// RouterOptions configure the cross-cutting parts of the router.
type RouterOptions struct {
	AllowedOrigins []string
	RequestTimeout time.Duration
	// LoginLimiter throttles /api/login; nil disables throttling.
	LoginLimiter   *RateLimiter
	DebugEndpoints bool
}

// NewRouter mounts the API on a chi router.
func NewRouter(h *Handler, opts RouterOptions) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(accessLog(h.logger))
	r.Use(middleware.Recoverer)
	r.Use(h.metrics.InstrumentHandler)
	if opts.RequestTimeout > 0 {
		r.Use(middleware.Timeout(opts.RequestTimeout))
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(h.sessions.Resolve)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", h.metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Post("/register", h.register)
		r.Group(func(r chi.Router) {
			if opts.LoginLimiter != nil {
				r.Use(opts.LoginLimiter.Handler)
			}
			r.Post("/login", h.login)
		})
		r.Post("/logout", h.logout)
		r.Get("/check-auth", h.checkAuth)

		r.Post("/submit-application", h.submitApplication)
		r.Post("/upload-file", h.uploadFile)
		r.Get("/get-application", h.getApplication)
		r.Get("/get-application/{id}", h.getApplicationByID)
		r.Get("/get-all-applications", h.listApplications)
		r.Put("/update-application/{id}", h.updateApplication)
		r.Delete("/delete-application/{id}", h.deleteApplication)

		r.Route("/admin", func(r chi.Router) {
			r.Post("/create-student", h.createStudent)
			r.Get("/users", h.listUsers)
			r.Post("/reset-password/{id}", h.resetPassword)
		})

		if opts.DebugEndpoints {
			r.Get("/debug/current-user", h.debugCurrentUser)
		}
	})

	return r
}

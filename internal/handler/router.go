package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/taskly/taskly-go/internal/middleware"
	"github.com/taskly/taskly-go/internal/service"
)

// Deps carries everything NewRouter wires into the route table.
type Deps struct {
	Auth  *service.AuthService
	Users *service.UserService
	Tasks *service.TaskService

	CORSOrigins []string

	// AuthRateLimit is requests per second per client IP on register and
	// login; zero disables limiting.
	AuthRateLimit float64
	AuthRateBurst int
}

// NewRouter builds the HTTP route table. Each route is declared once.
func NewRouter(d Deps) http.Handler {
	users := NewUserHandler(d.Auth, d.Users)
	tasks := NewTaskHandler(d.Tasks)

	origins := d.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logger)
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.RateLimit(d.AuthRateLimit, d.AuthRateBurst))
		r.Post("/users", users.HandleRegister)
		r.Post("/users/login", users.HandleLogin)
	})

	r.Get("/users/{id}/avatar", users.HandleGetAvatar)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Authenticate(d.Auth))

		r.Post("/users/logout", users.HandleLogout)
		r.Post("/users/logoutAll", users.HandleLogoutAll)
		r.Get("/users/me", users.HandleMe)
		r.Patch("/users/me", users.HandleUpdateMe)
		r.Delete("/users/me", users.HandleDeleteMe)
		r.Post("/users/me/avatar", users.HandleUploadAvatar)
		r.Delete("/users/me/avatar", users.HandleDeleteAvatar)

		r.Post("/tasks", tasks.HandleCreate)
		r.Get("/tasks", tasks.HandleList)
		r.Get("/tasks/{id}", tasks.HandleGet)
		r.Patch("/tasks/{id}", tasks.HandleUpdate)
		r.Delete("/tasks/{id}", tasks.HandleDelete)
	})

	return r
}

package httpapi

import (
	"net/http"
	"time"

	"simahasiswa-backend-go/internal/config"
	"simahasiswa-backend-go/internal/services"
	"simahasiswa-backend-go/internal/session"
	"simahasiswa-backend-go/internal/store"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
)

type Server struct {
	Config  config.Config
	Tokens  services.TokenService
	Session *session.Session
	Store   *store.RecordStore
}

func NewServer(cfg config.Config, sess *session.Session, records *store.RecordStore) *Server {
	tokens := services.TokenService{
		Secret:     []byte(cfg.JWTSecret),
		Issuer:     cfg.JWTIssuer,
		AccessTTL:  time.Duration(cfg.AccessTTLSeconds) * time.Second,
		RefreshTTL: time.Duration(cfg.RefreshTTLSeconds) * time.Second,
	}
	return &Server{
		Config:  cfg,
		Tokens:  tokens,
		Session: sess,
		Store:   records,
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(RequestLogger)
	if len(s.Config.CorsOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   s.Config.CorsOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
			AllowCredentials: false,
			MaxAge:           300,
		}))
	}

	r.Route("/api", func(api chi.Router) {
		api.Post("/auth/register", s.Register)
		api.Post("/auth/login", s.Login)
		api.Post("/auth/reset", s.ResetPassword)
		api.Post("/auth/refresh", s.Refresh)
		api.Post("/auth/logout", s.Logout)

		api.Route("/me", func(me chi.Router) {
			me.Use(WithAuth(s.Tokens))
			me.Get("/", s.Me)
			me.Put("/profile", s.UpdateProfile)
		})

		api.Route("/students", func(students chi.Router) {
			students.Use(WithAuth(s.Tokens))
			students.Get("/", s.ListStudents)
			students.Post("/", s.CreateStudent)
			students.Put("/{studentId}", s.UpdateStudent)
			students.Delete("/{studentId}", s.DeleteStudent)
		})

		api.Route("/admin", func(admin chi.Router) {
			admin.Use(WithAuth(s.Tokens))
			admin.Use(RequireRole("admin"))
			admin.Get("/health", s.Health)
		})
	})

	r.Get("/ws/students", s.StudentsSocket)
	return r
}

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sydscene/sydscene/internal/chizap"
	"github.com/sydscene/sydscene/internal/config"
	"github.com/sydscene/sydscene/internal/middleware"
	"github.com/sydscene/sydscene/pkg/controller"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func NewRouter(cfg *config.Config, db *gorm.DB, lg *zap.Logger) http.Handler {
	c := controller.NewController(db)

	mux := chi.NewRouter()

	mux.Use(chimiddleware.Recoverer)
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         86400,
	}))
	mux.Use(chimiddleware.RealIP)
	mux.Use(middleware.InjectLogger(lg))
	mux.Use(chizap.ChizapWithConfig(lg, &chizap.Config{
		TimeFormat: time.RFC3339,
		UTC:        true,
		SkipPaths:  []string{"/api/health"},
	}))

	mux.Route("/api", func(r chi.Router) {
		r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
		})

		r.Route("/events", func(r chi.Router) {
			r.Get("/", c.ListEvents)
			r.Get("/{eventID}", c.GetEvent)
		})

		r.Post("/email-capture", c.CaptureEmail)

		r.Route("/dashboard", func(r chi.Router) {
			r.Use(middleware.RequireToken(cfg.Server.AdminToken))
			r.Get("/events", c.ListDashboardEvents)
			r.Patch("/events/{eventID}/import", c.ImportEvent)
		})
	})

	return mux
}

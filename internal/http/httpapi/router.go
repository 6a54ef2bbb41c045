package httpapi

import (
	"net/http"
	"os"

	"server/internal/http/handlers"
	"server/internal/infra"
	"server/internal/middleware"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

func NewRouter(app *handlers.App, cfg *infra.Config, log infra.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(
		chimw.RealIP,
		chimw.Recoverer,
		middleware.RequestID,
		middleware.Logger(log),
		middleware.CORS(cfg.CORSAllowedOrigins),
		middleware.Locale("en"),
	)

	r.Get("/v1/healthz", app.Health)

	r.Route("/api", func(r chi.Router) {
		r.Post("/predictions", app.CreatePrediction)
		r.Post("/refine", app.RefinePrompt)
	})

	// Browser form. Served only when the directory exists so API-only deploys
	// work without it.
	if info, err := os.Stat(cfg.StaticDir); err == nil && info.IsDir() {
		r.Handle("/*", http.FileServer(http.Dir(cfg.StaticDir)))
	}

	return r
}

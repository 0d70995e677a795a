package routes

import (
	"net/http"

	"github.com/bitelog/bite/internal/app"
	"github.com/bitelog/bite/internal/handler"
	"github.com/bitelog/bite/internal/middleware"
	"github.com/bitelog/bite/internal/storage"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const AnalyzeFoodPhoto = "analyze-food-photo"

func SetupRoutes(app *app.App) http.Handler {
	// Handlers
	foodPhoto := handler.NewFoodPhotoHandler(app.FoodPhotoService, app.Cfg.MaxPhotoBytes)

	// Limited per IP, authenticated, then limited per user
	var chain []func(http.Handler) http.Handler
	if app.IPLimiter != nil {
		chain = append(chain, middleware.RateLimit(app.IPLimiter))
	}
	chain = append(chain, middleware.RequireBearer(app.Identity))
	if app.UserLimiter != nil {
		chain = append(chain, middleware.RateLimit(app.UserLimiter))
	}
	analyze := middleware.Chain(http.HandlerFunc(foodPhoto.Analyze), chain...)

	functions := NewFunctionRouter()
	functions.Register(AnalyzeFoodPhoto, analyze)

	mux := http.NewServeMux()

	// Functions
	mux.Handle("POST /"+AnalyzeFoodPhoto, analyze)
	mux.Handle("/functions/v1/", functions)

	// Operations
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	mux.Handle("GET /metrics", promhttp.Handler())

	// Photos, when stored on local disk
	if local, ok := app.Storage.(*storage.LocalStorage); ok {
		mux.Handle("GET /storage/", http.StripPrefix("/storage/", local.Handler(app.Cfg.StorageCacheControl)))
	}

	// Global middleware - executed in order (top to bottom)
	return middleware.Chain(
		mux,
		middleware.RequestLogging,
		middleware.CORS,
	)
}

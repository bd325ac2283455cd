package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/okeefe/typeduel/internal/api/middleware"
	"github.com/okeefe/typeduel/internal/ws"
)

// RouterConfig holds configuration for the HTTP router
type RouterConfig struct {
	Logger         *slog.Logger
	SocketHandler  *ws.Handler
	AllowedOrigins []string
}

// NewRouter creates the HTTP router with the websocket endpoint, health
// check and common middleware configured.
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	recoveryMiddleware := middleware.Recovery(cfg.Logger)
	loggingMiddleware := middleware.Logging(cfg.Logger)

	r.Use(recoveryMiddleware)
	r.Use(loggingMiddleware)

	// The websocket endpoint handles its own upgrade; origin checks for it
	// live in the ws package rather than the CORS layer.
	r.Handle("/ws", cfg.SocketHandler)

	r.HandleFunc("/healthz", healthHandler).Methods(http.MethodGet)

	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	c := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
	})

	return c.Handler(r)
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

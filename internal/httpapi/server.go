package httpapi

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"chatd/pkg/types"
)

// Service defines the methods required by the HTTP API layer.
type Service interface {
	Chat(ctx context.Context, req types.ChatRequest) (string, error)
	ChatStream(ctx context.Context, req types.ChatRequest, onToken func(string) error) error
	ModelLoaded() bool
}

// NewMux builds the router: POST /chat, GET /health, GET /metrics, plus the
// optional swagger mount.
func NewMux(svc Service) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	// Permissive cross-origin policy: any origin, method, header, with
	// credentials. Suitable only for local single-user deployment.
	r.Use(cors.Handler(cors.Options{
		AllowOriginFunc:  func(r *http.Request, origin string) bool { return true },
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}))
	r.Use(MetricsMiddleware)
	// Security headers
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			next.ServeHTTP(w, r)
		})
	})

	r.Post("/chat", chatHandler(svc))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		// Always 200: readiness lives in the payload, so health-check tooling
		// can tell "process alive" from "model ready".
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(types.HealthResponse{
			Status:      "ok",
			ModelLoaded: svc.ModelLoaded(),
		}); err != nil {
			writeJSONError(w, http.StatusInternalServerError, "failed to encode response")
			return
		}
	})

	// Prometheus metrics endpoint
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	MountSwagger(r)

	return r
}

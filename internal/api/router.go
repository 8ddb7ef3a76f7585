/**
 * @description
 * This file sets up the HTTP router for the brand-service using the chi
 * router. It wires the public webhook and health endpoints, the Prometheus
 * metrics endpoint, and the authenticated API surface, including the
 * admin-only order fulfillment route.
 *
 * @dependencies
 * - github.com/go-chi/chi/v5: The HTTP router.
 * - github.com/go-chi/cors: CORS middleware.
 * - github.com/prometheus/client_golang/prometheus/promhttp: Metrics endpoint.
 */

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/brandforge/brand-service/internal/app"
)

// NewRouter creates and configures the service's HTTP router.
func NewRouter(service *app.Service, jwksURL string) *chi.Mux {
	r := chi.NewRouter()
	handlers := NewHandlers(service)

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	r.Handle("/metrics", promhttp.Handler())

	// Gateway webhooks authenticate via payload reconciliation against known
	// payment IDs, not via user tokens.
	r.Post("/webhooks/payments", handlers.PaymentWebhookHandler)

	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(jwksURL))

		r.Get("/account/limits", handlers.GetLimitsHandler)

		r.Post("/generate/logo-names", handlers.GenerateLogoNamesHandler)
		r.Post("/generate/design", handlers.GenerateDesignHandler)

		r.Post("/orders", handlers.CreateOrderHandler)
		r.Get("/orders", handlers.ListOrdersHandler)

		r.Post("/subscriptions/checkout", handlers.SubscriptionCheckoutHandler)
		r.Get("/subscriptions/status", handlers.SubscriptionStatusHandler)

		r.Group(func(r chi.Router) {
			r.Use(handlers.AdminOnly)
			r.Patch("/orders/{id}/status", handlers.UpdateOrderStatusHandler)
		})
	})

	return r
}

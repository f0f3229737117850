package handler

import (
	"net/http"

	"stylemart-be/internal/logger"
	"stylemart-be/internal/metrics"
	"stylemart-be/internal/middleware"
	"stylemart-be/internal/utils"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

type RouterConfig struct {
	Tokens     middleware.TokenParser
	Limiter    *middleware.RateLimiter
	Metrics    *metrics.Metrics
	CORSOrigin string
}

func NewRouter(h *Handler, cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(logger.RequestIDMiddleware)
	r.Use(logger.LoggingMiddleware)
	r.Use(chimw.Recoverer)
	r.Use(middleware.CORS(cfg.CORSOrigin))
	if cfg.Metrics != nil {
		r.Use(middleware.Metrics(cfg.Metrics))
	}
	r.Use(middleware.AuthMiddleware(cfg.Tokens))
	if cfg.Limiter != nil {
		r.Use(cfg.Limiter.Middleware)
	}

	r.Get("/health", h.Health)
	if cfg.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", cfg.Metrics.Handler())
	}

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.Register)
		r.Post("/login", h.Login)
	})

	r.Route("/cart", func(r chi.Router) {
		r.Use(middleware.RequireAuth)

		r.Get("/", h.GetCart)
		r.Post("/add", h.AddToCart)
		r.Put("/update/{itemId}", h.UpdateCartItem)
		r.Delete("/remove/{itemId}", h.RemoveFromCart)
	})

	r.Route("/addresses", func(r chi.Router) {
		r.Post("/validate", h.ValidateAddress)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)

			r.Get("/", h.ListAddresses)
			r.Post("/", h.CreateAddress)
			r.Put("/{addressId}", h.UpdateAddress)
			r.Delete("/{addressId}", h.DeleteAddress)
		})
	})

	r.Route("/orders", func(r chi.Router) {
		r.Use(middleware.RequireAuth)

		r.Post("/checkout", h.Checkout)
		r.Get("/", h.ListOrders)
		r.Get("/number/{orderNumber}", h.GetOrderByNumber)
		r.Get("/{orderId}", h.GetOrder)
		r.Put("/{orderId}/status", h.UpdateOrderStatus)
	})

	r.Route("/admin", func(r chi.Router) {
		r.Use(middleware.RequireRole(utils.RoleAdmin))

		r.Get("/orders", h.AdminListOrders)
		r.Put("/orders/{orderId}/status", h.AdminUpdateOrderStatus)
		r.Put("/orders/{orderId}/payment-status", h.AdminUpdatePaymentStatus)
	})

	return r
}

package server

import (
	"cartify/internal/config"
	"cartify/internal/handler"
	"cartify/internal/middleware"

	"github.com/labstack/echo/v4"
)

type Handlers struct {
	Cart     *handler.CartHandler
	Checkout *handler.CheckoutHandler
	Order    *handler.OrderHandler
	Health   *handler.HealthHandler
}

func RegisterRoutes(e *echo.Echo, cfg config.Config, h Handlers) {
	auth := middleware.AuthJWT(cfg)

	h.Health.RegisterRoutes(e)
	h.Cart.RegisterRoutes(e, auth)
	h.Checkout.RegisterRoutes(e, auth, middleware.UserRateLimit(cfg.CheckoutRateLimit, 1))
	h.Order.RegisterRoutes(e, auth)
}

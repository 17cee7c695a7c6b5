package server

import (
	"storefront/internal/config"
	"storefront/internal/handler"

	"github.com/labstack/echo/v4"
)

type Handlers struct {
	Auth    *handler.AuthHandler
	Product *handler.ProductHandler
	Cart    *handler.CartHandler
}

func RegisterRoutes(e *echo.Echo, cfg config.Config, h Handlers) {
	h.Auth.RegisterRoutes(e)
	h.Product.RegisterRoutes(e)
	h.Cart.RegisterRoutes(e, cfg)
}

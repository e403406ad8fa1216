package server

import (
	"app/internal/config"
	"app/internal/handler"

	"github.com/labstack/echo/v4"
)

// 全ハンドラーの束
type Handlers struct {
	Auth       *handler.AuthHandler
	Product    *handler.ProductHandler
	Payment    *handler.PaymentHandler
	Promotion  *handler.PromotionHandler
	AdminOrder *handler.AdminOrderHandler
}

func RegisterRoutes(e *echo.Echo, cfg config.Config, h Handlers) {
	h.Auth.RegisterRoutes(e)
	h.Product.RegisterRoutes(e)
	h.Payment.RegisterRoutes(e, cfg)
	h.Promotion.RegisterRoutes(e, cfg)
	h.AdminOrder.RegisterRoutes(e, cfg)
}

package server

import (
	"app/internal/config"
	"app/internal/handler"

	"github.com/labstack/echo/v4"
)

// 全ハンドラのルート登録をまとめる
func RegisterRoutes(
	e *echo.Echo,
	cfg config.Config,
	authH *handler.AuthHandler,
	productH *handler.ProductHandler,
	cartH *handler.CartHandler,
	orderH *handler.OrderHandler,
	adminProductH *handler.AdminProductHandler,
	adminOrderH *handler.AdminOrderHandler,
) {
	authH.RegisterRoutes(e, cfg)
	productH.RegisterRoutes(e)
	cartH.RegisterRoutes(e, cfg)
	orderH.RegisterRoutes(e, cfg)
	adminProductH.RegisterRoutes(e, cfg)
	adminOrderH.RegisterRoutes(e, cfg)
}

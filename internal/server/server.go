package server

import (
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
)

// Echoインスタンス生成。共通ミドルウェアはここで。
func New() *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	e.Use(echomw.Logger())
	e.Use(echomw.Recover())

	return e
}

func Start(e *echo.Echo, addr string) error {
	return e.Start(addr)
}

package server

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"storefront/internal/config"
	"storefront/internal/middleware"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
)

const shutdownTimeout = 10 * time.Second

func New(cfg config.Config, h Handlers, logger *slog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(echomw.Recover())
	e.Use(middleware.RequestLogger(logger))

	RegisterRoutes(e, cfg, h)
	return e
}

// ctxが終わるまで待ってからシャットダウン
func Start(ctx context.Context, e *echo.Echo, addr string) error {
	//SSEなどの長いリクエストもctxと一緒に終わらせる
	e.Server.BaseContext = func(net.Listener) context.Context { return ctx }

	errCh := make(chan error, 1)
	go func() {
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

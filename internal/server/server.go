package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"cartify/internal/config"
	"cartify/internal/middleware"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
)

// New はミドルウェアとルートを載せたechoを返す
func New(cfg config.Config, log zerolog.Logger, h Handlers) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(echomw.Recover())
	e.Use(echomw.RequestIDWithConfig(echomw.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(middleware.RequestLogger(log))

	RegisterRoutes(e, cfg, h)
	return e
}

// Start はctxが終わるまで動かして、終わったらgracefulに止める
func Start(ctx context.Context, e *echo.Echo, addr string, log zerolog.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("http server started")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	//処理中の注文確定が終わるのを待つ
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()
	log.Info().Msg("http server shutting down")
	return e.Shutdown(shutdownCtx)
}

// Package server exposes the support bot as a small upload-and-ask web API.
package server

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"support-bot/internal/botlog"
	"support-bot/internal/config"
	"support-bot/internal/embedding"
	"support-bot/internal/qa"
	"support-bot/internal/telemetry"
)

// Server wires the bot behind an echo HTTP front end.
type Server struct {
	echo    *echo.Echo
	handler *BotHandler
	cfg     *config.Config
}

// New builds the server (middleware, error handler, health and metrics
// routes, the /api group) and indexes the configured document so the bot is
// ready before the listener opens.
func New(ctx context.Context, cfg *config.Config, embedder embedding.Embedder, answerer qa.Answerer, lg *botlog.Logger, metrics *telemetry.Metrics) (*Server, error) {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())

	baseLogger := log.New(log.Writer(), "[HTTP] ", log.LstdFlags)
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		code := http.StatusInternalServerError
		msg := err.Error()
		if he, ok := err.(*echo.HTTPError); ok {
			code = he.Code
			if he.Message != nil {
				msg = fmt.Sprint(he.Message)
			}
		}
		req := c.Request()
		baseLogger.Printf("%d %s %s from %s: %v", code, req.Method, req.URL.Path, c.RealIP(), err)
		if !c.Response().Committed {
			_ = c.JSON(code, map[string]interface{}{"error": msg})
		}
	}
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Content-Type"},
	}))

	e.GET("/healthz", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	h := NewBotHandler(cfg, embedder, answerer, lg, metrics)
	if err := h.Reload(ctx, cfg.Document.Path); err != nil {
		return nil, err
	}
	h.Register(e.Group("/api"))

	return &Server{echo: e, handler: h, cfg: cfg}, nil
}

// Start serves until the listener fails.
func (s *Server) Start() error {
	return s.echo.Start(s.cfg.Server.Address)
}

// Echo exposes the underlying echo instance for tests.
func (s *Server) Echo() *echo.Echo { return s.echo }

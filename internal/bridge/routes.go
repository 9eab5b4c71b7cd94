package bridge

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *Server) registerRoutes() {
	// Observability endpoints
	s.echo.GET("/health/live", s.handleLiveness)
	s.echo.GET("/health/ready", s.handleReadiness)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Shell state: a debug view plus the theme write path
	s.echo.GET("/shell/state", s.handleShellState)
	s.echo.POST("/shell/theme", s.handleSetTheme)

	// Native host connection
	s.echo.GET("/host/ws", s.handleHostWS)
}

package bridge

import (
	"context"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/divyanshu-patil/appshell/internal/config"
	"github.com/divyanshu-patil/appshell/internal/domain"
	apperrors "github.com/divyanshu-patil/appshell/internal/errors"
	"github.com/divyanshu-patil/appshell/internal/store"
)

// StateSource provides the store snapshot for the debug endpoint.
type StateSource interface {
	Snapshot() store.State
}

// ContextSource provides the currently published context values and the
// theme write path.
type ContextSource interface {
	Theme() domain.ThemeContext
	Dimensions() domain.DimensionsContext
	SetTheme(pref domain.ThemePreference)
}

// Server hosts the bridge WebSocket endpoint and the observability routes.
type Server struct {
	echo     *echo.Echo
	config   *config.Config
	bridge   *HostBridge
	states   StateSource
	contexts ContextSource
}

func NewServer(cfg *config.Config, hostBridge *HostBridge, states StateSource, contexts ContextSource) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(apperrors.Middleware())

	srv := &Server{
		echo:     e,
		config:   cfg,
		bridge:   hostBridge,
		states:   states,
		contexts: contexts,
	}

	srv.registerRoutes()
	return srv
}

func (s *Server) Start() error {
	return s.echo.Start(fmt.Sprintf(":%s", s.config.Port))
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// ServeHTTP exposes the underlying handler, mainly for tests.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.echo.ServeHTTP(w, r)
}

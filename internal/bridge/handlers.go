package bridge

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/divyanshu-patil/appshell/internal/domain"
	apperrors "github.com/divyanshu-patil/appshell/internal/errors"
	"github.com/divyanshu-patil/appshell/internal/store"
	"github.com/divyanshu-patil/appshell/internal/version"
)

// The host process connects from the same device; origin checks do not
// apply.
var upgrader = websocket.Upgrader{
	CheckOrigin: func(*http.Request) bool { return true },
}

func (s *Server) handleLiveness(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"status":  "ok",
		"version": version.Get(),
	})
}

func (s *Server) handleReadiness(c echo.Context) error {
	if !s.bridge.Connected() {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "waiting_for_host"})
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

type themeStateResponse struct {
	Theme       string                 `json:"theme"`
	Preferences domain.ThemePreference `json:"preferences"`
	Colors      domain.Palette         `json:"colors"`
}

type shellStateResponse struct {
	State      store.State          `json:"state"`
	Theme      themeStateResponse   `json:"theme"`
	Dimensions domain.DeviceMetrics `json:"dimensions"`
}

func (s *Server) handleShellState(c echo.Context) error {
	themeCtx := s.contexts.Theme()
	dims := s.contexts.Dimensions()

	return c.JSON(http.StatusOK, shellStateResponse{
		State: s.states.Snapshot(),
		Theme: themeStateResponse{
			Theme:       themeCtx.Theme,
			Preferences: themeCtx.Preferences,
			Colors:      themeCtx.Colors,
		},
		Dimensions: domain.DeviceMetrics{
			Width:     dims.Width,
			Height:    dims.Height,
			Scale:     dims.Scale,
			FontScale: dims.FontScale,
		},
	})
}

func (s *Server) handleSetTheme(c echo.Context) error {
	var pref domain.ThemePreference
	if err := c.Bind(&pref); err != nil {
		return apperrors.ValidationError("malformed theme preference")
	}

	switch pref.CurrentTheme {
	case domain.PreferenceLight, domain.PreferenceDark, domain.PreferenceAutomatic:
	default:
		return apperrors.ValidationError("unknown theme").WithContext("currentTheme", pref.CurrentTheme)
	}
	switch pref.DarkLevel {
	case "", domain.ThemeDark, domain.ThemeBlack:
	default:
		return apperrors.ValidationError("unknown dark level").WithContext("darkLevel", pref.DarkLevel)
	}

	s.contexts.SetTheme(pref)

	themeCtx := s.contexts.Theme()
	return c.JSON(http.StatusOK, themeStateResponse{
		Theme:       themeCtx.Theme,
		Preferences: themeCtx.Preferences,
		Colors:      themeCtx.Colors,
	})
}

func (s *Server) handleHostWS(c echo.Context) error {
	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		slog.Warn("Host upgrade failed", "error", err)
		return err
	}

	s.bridge.HandleConn(conn)
	return nil
}

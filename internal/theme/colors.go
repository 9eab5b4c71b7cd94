package theme

import (
	_ "embed"
	"log/slog"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/divyanshu-patil/appshell/internal/domain"
)

//go:embed palettes.yaml
var palettesYAML []byte

var (
	palettesOnce sync.Once
	palettes     map[string]domain.Palette
)

// Colors returns the palette for the given active theme identifier.
// Unknown identifiers fall back to the light palette.
func Colors(theme string) domain.Palette {
	palettesOnce.Do(loadPalettes)

	if p, ok := palettes[theme]; ok {
		return p
	}
	return palettes[domain.ThemeLight]
}

func loadPalettes() {
	if err := yaml.Unmarshal(palettesYAML, &palettes); err != nil {
		// Embedded data; a parse failure is a build defect.
		slog.Error("Failed to parse embedded palettes", "error", err)
		palettes = map[string]domain.Palette{}
	}
}

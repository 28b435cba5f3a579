package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/creasty/defaults"
	"go.uber.org/zap"
	"gopkg.in/yaml.v2"

	"github.com/playerlock/playerlock/internal/domain"
)

// fileConfig mirrors the recognized keys of the on-disk YAML file.
type fileConfig struct {
	ArtSize    int    `yaml:"art-size" default:"64"`
	Position   string `yaml:"position" default:"top-center"`
	ShowHidden bool   `yaml:"show-hidden"`
}

// Config holds the settings the module reads. Immutable after Load.
type Config struct {
	// ArtSize is the album art edge length in pixels; 0 disables art
	ArtSize int
	// Position places the control surface within each window
	Position domain.Position
	// ShowHidden keeps the controls visible while the lock screen is in
	// its hidden idle state
	ShowHidden bool
}

// Load reads the configuration from path. A missing or empty path yields
// the defaults; a malformed file is an error.
func Load(path string, logger *zap.Logger) (*Config, error) {
	var fc fileConfig
	if err := defaults.Set(&fc); err != nil {
		return nil, fmt.Errorf("failed to apply defaults: %w", err)
	}

	if path != "" {
		path = expandHome(os.ExpandEnv(path))
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			logger.Info("No configuration file found, using defaults",
				zap.String("path", path))
		case err != nil:
			return nil, fmt.Errorf("failed to read config file: %w", err)
		default:
			if err := yaml.Unmarshal(data, &fc); err != nil {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
		}
	}

	if fc.ArtSize < 0 {
		logger.Warn("Negative art-size, disabling album art",
			zap.Int("art-size", fc.ArtSize))
		fc.ArtSize = 0
	}

	cfg := &Config{
		ArtSize:    fc.ArtSize,
		Position:   ParsePosition(fc.Position, logger),
		ShowHidden: fc.ShowHidden,
	}

	logger.Info("Configuration loaded",
		zap.Int("artSize", cfg.ArtSize),
		zap.String("position", cfg.Position.String()),
		zap.Bool("showHidden", cfg.ShowHidden))

	return cfg, nil
}

var positionValues = map[string]domain.Position{
	"top-left":      domain.PositionTopLeft,
	"top-center":    domain.PositionTopCenter,
	"top-right":     domain.PositionTopRight,
	"bottom-left":   domain.PositionBottomLeft,
	"bottom-center": domain.PositionBottomCenter,
	"bottom-right":  domain.PositionBottomRight,
	"above-clock":   domain.PositionAboveClock,
	"under-clock":   domain.PositionUnderClock,
}

// warnedPositions tracks unknown position strings that have already been
// reported, so each bad value is warned about once per process.
var warnedPositions sync.Map

// ParsePosition maps a position string to its placement. Unknown values
// fall back to top-center with a single warning per distinct value.
func ParsePosition(s string, logger *zap.Logger) domain.Position {
	if pos, ok := positionValues[s]; ok {
		return pos
	}
	if _, seen := warnedPositions.LoadOrStore(s, struct{}{}); !seen {
		logger.Warn("Unknown position, falling back to top-center",
			zap.String("position", s))
	}
	return domain.PositionTopCenter
}

func expandHome(path string) string {
	if len(path) > 0 && path[0] == '~' {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}

package config

import (
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/playerlock/playerlock/internal/domain"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("", zap.NewNop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.ArtSize != 64 {
		t.Errorf("ArtSize: expected 64, got %d", cfg.ArtSize)
	}
	if cfg.Position != domain.PositionTopCenter {
		t.Errorf("Position: expected top-center, got %v", cfg.Position)
	}
	if cfg.ShowHidden {
		t.Error("ShowHidden: expected false")
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	content := "art-size: 32\nposition: bottom-right\nshow-hidden: true\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path, zap.NewNop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.ArtSize != 32 {
		t.Errorf("ArtSize: expected 32, got %d", cfg.ArtSize)
	}
	if cfg.Position != domain.PositionBottomRight {
		t.Errorf("Position: expected bottom-right, got %v", cfg.Position)
	}
	if !cfg.ShowHidden {
		t.Error("ShowHidden: expected true")
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yml"), zap.NewNop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.ArtSize != 64 {
		t.Errorf("ArtSize: expected 64, got %d", cfg.ArtSize)
	}
}

func TestLoadMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	if err := os.WriteFile(path, []byte("art-size: [oops\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path, zap.NewNop()); err == nil {
		t.Fatal("expected an error for a malformed file")
	}
}

func TestLoadNegativeArtSizeDisablesArt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	if err := os.WriteFile(path, []byte("art-size: -8\n"), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path, zap.NewNop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.ArtSize != 0 {
		t.Errorf("ArtSize: expected 0, got %d", cfg.ArtSize)
	}
}

// TestParsePosition covers every recognized value plus the fallback.
func TestParsePosition(t *testing.T) {
	tests := []struct {
		value string
		want  domain.Position
	}{
		{"top-left", domain.PositionTopLeft},
		{"top-center", domain.PositionTopCenter},
		{"top-right", domain.PositionTopRight},
		{"bottom-left", domain.PositionBottomLeft},
		{"bottom-center", domain.PositionBottomCenter},
		{"bottom-right", domain.PositionBottomRight},
		{"above-clock", domain.PositionAboveClock},
		{"under-clock", domain.PositionUnderClock},
		{"middle-of-nowhere", domain.PositionTopCenter},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			if got := ParsePosition(tt.value, zap.NewNop()); got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

// TestParsePositionWarnsOnce verifies an unknown value is warned about
// exactly once per process, no matter how often it is parsed.
func TestParsePositionWarnsOnce(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	logger := zap.New(core)

	// Values unique to this test so prior parses cannot interfere with
	// the once-per-value accounting.
	const bad = "warn-once-probe"
	const alsoBad = "warn-once-probe-2"

	for i := 0; i < 3; i++ {
		if got := ParsePosition(bad, logger); got != domain.PositionTopCenter {
			t.Fatalf("expected top-center fallback, got %v", got)
		}
	}
	ParsePosition(alsoBad, logger)
	ParsePosition(alsoBad, logger)

	warned := map[string]int{}
	for _, entry := range logs.All() {
		for _, field := range entry.Context {
			if field.Key == "position" {
				warned[field.String]++
			}
		}
	}

	if warned[bad] != 1 {
		t.Errorf("expected exactly 1 warning for %q, got %d", bad, warned[bad])
	}
	if warned[alsoBad] != 1 {
		t.Errorf("expected exactly 1 warning for %q, got %d", alsoBad, warned[alsoBad])
	}
}

package main

import (
	"context"
	"fmt"
	"time"

	"fyne.io/fyne/v2"
	fyneapp "fyne.io/fyne/v2/app"
	"github.com/kbinani/screenshot"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"github.com/playerlock/playerlock/internal/artwork"
	"github.com/playerlock/playerlock/internal/bridge"
	"github.com/playerlock/playerlock/internal/config"
	"github.com/playerlock/playerlock/internal/domain"
	"github.com/playerlock/playerlock/internal/player"
	"github.com/playerlock/playerlock/internal/toolkit/fynekit"
	"github.com/playerlock/playerlock/internal/widget"
)

// AppOptions is the dependency graph of the daemon. Kept as a package
// variable so tests can validate it without starting anything.
var AppOptions = fx.Options(
	fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
		return &fxevent.ZapLogger{Logger: log}
	}),

	fx.Provide(
		newLogger,
		newConfig,
		player.NewDiscovery,
		newSource,
		newEvents,
		newFetcher,
		newToolkit,
		widget.NewController,
		bridge.New,
	),

	fx.Invoke(registerHooks),
)

// newLogger creates a new zap logger instance
func newLogger() (*zap.Logger, error) {
	return zap.NewProduction()
}

func newConfig(logger *zap.Logger) (*config.Config, error) {
	return config.Load(configPath, logger)
}

func newSource(d *player.Discovery) domain.Source {
	return d
}

func newEvents(d *player.Discovery) bridge.PlayerEvents {
	return d
}

func newFetcher(logger *zap.Logger) domain.Fetcher {
	return artwork.NewArtFetcher(logger)
}

func newToolkit(logger *zap.Logger) domain.Toolkit {
	return fynekit.NewToolkit(logger)
}

// registerHooks ties the module lifecycle to the fx application
func registerHooks(lc fx.Lifecycle, b *bridge.Bridge) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			b.OnActivation(ctx)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return b.OnUnload(ctx)
		},
	})
}

// run starts the module, opens one lock window per display and blocks in
// the toolkit's event loop until the last window closes.
func run() error {
	var (
		b      *bridge.Bridge
		logger *zap.Logger
	)
	app := fx.New(AppOptions, fx.Populate(&b, &logger))

	startCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := app.Start(startCtx); err != nil {
		return err
	}

	ui := fyneapp.New()
	windows := buildLockWindows(ui, logger)

	for _, lw := range windows {
		lw := lw
		lw.Window().SetOnClosed(func() { b.OnWindowDestroy(lw) })
	}
	go tickClocks(windows)

	if len(windows) > 0 {
		b.OnFocusChange(windows[0], nil)
		for _, lw := range windows[1:] {
			lw.Window().Show()
		}
		windows[0].Window().ShowAndRun()
	}

	stopCtx, cancelStop := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelStop()
	return app.Stop(stopCtx)
}

// buildLockWindows opens one window per active display
func buildLockWindows(ui fyne.App, logger *zap.Logger) []*fynekit.LockWindow {
	n := screenshot.NumActiveDisplays()
	if n <= 0 {
		logger.Warn("No active displays detected, falling back to a single 1920x1080 window")
		return []*fynekit.LockWindow{fynekit.NewLockWindow(ui, "display-0", 1920, 1080)}
	}

	windows := make([]*fynekit.LockWindow, 0, n)
	for i := 0; i < n; i++ {
		bounds := screenshot.GetDisplayBounds(i)
		logger.Info("Display detected",
			zap.Int("index", i),
			zap.Int("width", bounds.Dx()),
			zap.Int("height", bounds.Dy()))
		windows = append(windows,
			fynekit.NewLockWindow(ui, fmt.Sprintf("display-%d", i), bounds.Dx(), bounds.Dy()))
	}
	return windows
}

// tickClocks keeps the demo windows' clocks current
func tickClocks(windows []*fynekit.LockWindow) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()
	for range ticker.C {
		now := time.Now().Format("15:04")
		for _, lw := range windows {
			lw.SetClock(now)
		}
	}
}

// Package main is the entry point for the tetratipd tooltip daemon.
package main

import (
	"context"
	"errors"
	"flag"
	"image"
	"log/slog"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/diamondburned/gotk4-adwaita/pkg/adw"
	"github.com/diamondburned/gotk4/pkg/glib/v2"
	"github.com/diamondburned/gotk4/pkg/gtk/v4"

	"github.com/jmylchreest/tetratip/internal/config"
	"github.com/jmylchreest/tetratip/internal/daemon"
	"github.com/jmylchreest/tetratip/internal/dbus"
	"github.com/jmylchreest/tetratip/internal/display"
	"github.com/jmylchreest/tetratip/internal/popup"
	"github.com/jmylchreest/tetratip/internal/tooltip"
)

const (
	appID   = "io.github.jmylchreest.tetratipd"
	appName = "tetratipd"

	// mainLoopTimeout bounds how long a D-Bus call waits for the GTK main loop.
	mainLoopTimeout = 5 * time.Second
)

var (
	// Build-time variables
	version = "dev"
)

func main() {
	// Parse command line flags
	configPath := flag.String("config", "", "Path to config file (default: ~/.config/tetratip/tetratip.toml)")
	showVersion := flag.Bool("version", false, "Show version and exit")
	flag.Parse()

	if *showVersion {
		println("tetratipd version", version)
		os.Exit(0)
	}

	path := *configPath
	if path == "" {
		p, err := config.Path()
		if err != nil {
			slog.Error("failed to get config path", "error", err)
			os.Exit(1)
		}
		path = p
	}

	cfg, err := config.Load(path)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Set up structured logging
	logLevel := new(slog.LevelVar)
	logLevel.Set(cfg.Log.SlogLevel())
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	os.Exit(run(path, cfg, logLevel, logger))
}

// run starts the daemon and returns the process exit status.
func run(path string, cfg *config.Config, logLevel *slog.LevelVar, logger *slog.Logger) int {
	logger.Info("starting tetratipd", "version", version, "config", path)

	// Create the libadwaita application
	app := adw.NewApplication(appID, 0)

	// Shared state between GTK main loop and signal handlers
	var (
		controller    *tooltip.Controller
		dbusServer    *dbus.TooltipServer
		configWatcher *daemon.ConfigWatcher
		running       atomic.Bool
	)

	stop := func() {
		if configWatcher != nil {
			configWatcher.Stop()
		}
		if dbusServer != nil {
			_ = dbusServer.Stop()
		}
		if controller != nil {
			controller.Close()
		}
	}

	// Set up signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		logger.Info("received signal, shutting down", "signal", sig)
		cancel()

		// Stop components in GTK main loop context
		glib.IdleAdd(func() {
			if running.Load() {
				stop()
				app.Quit()
			}
		})
	}()

	// Handle application activation
	app.ConnectActivate(func() {
		if running.Load() {
			logger.Warn("application already running")
			return
		}
		running.Store(true)

		display.ApplyStyles(nil, logger)

		screen, err := display.NewScreen(cfg.Display.CursorSize)
		if err != nil {
			logger.Error("failed to query screen", "error", err)
			app.Quit()
			return
		}

		controller, err = tooltip.NewController(tooltip.Options{
			Config:     cfg.Tooltip.PopupConfig(),
			Compositor: display.NewCompositor(&app.Application, cfg.Display.Namespace, screen, logger),
			Clock:      display.MainLoopClock{},
			Screen:     screen,
			Logger:     logger,
			OnClosed: func(id string) {
				if dbusServer == nil {
					return
				}
				if err := dbusServer.EmitPopupClosed(id); err != nil {
					logger.Warn("failed to emit closed signal", "id", id, "error", err)
				}
			},
		})
		if err != nil {
			logger.Error("failed to create tooltip controller", "error", err)
			app.Quit()
			return
		}

		if cfg.DBus.Enabled {
			dbusServer = dbus.NewTooltipServer(cfg.DBus.Name, &mainLoopHandler{
				controller: controller,
				logger:     logger,
			}, logger)
			dbusServer.SetServerInfo(dbus.ServerInfo{
				Name:    appName,
				Vendor:  "tetratip",
				Version: version,
			})
			if err := dbusServer.Start(); err != nil {
				logger.Error("failed to start D-Bus server", "error", err)
				controller.Close()
				app.Quit()
				return
			}
		}

		// Start config watcher for hot-reload
		configWatcher, err = daemon.NewConfigWatcher(path, logger)
		if err != nil {
			logger.Warn("failed to create config watcher", "error", err)
		} else {
			configWatcher.SetReloadCallback(func(newConfig *config.Config) {
				// Apply config changes in GTK main loop
				glib.IdleAdd(func() {
					controller.SetConfig(newConfig.Tooltip.PopupConfig())
					logLevel.Set(newConfig.Log.SlogLevel())
					if newConfig.DBus != cfg.DBus || newConfig.Display != cfg.Display {
						logger.Info("display and dbus changes apply after restart")
					}
					cfg = newConfig
				})
			})
			configWatcher.SetErrorCallback(func(err error) {
				logger.Warn("keeping previous configuration", "error", err)
			})
			if err := configWatcher.Start(ctx, cfg); err != nil {
				logger.Warn("failed to start config watcher", "error", err)
			}
		}

		logger.Info("tetratipd ready", "dbus", cfg.DBus.Enabled, "name", cfg.DBus.Name)

		// Keep the application alive between tooltips
		keepAliveWindow := gtk.NewWindow()
		keepAliveWindow.SetApplication(&app.Application)
		keepAliveWindow.SetDefaultSize(1, 1)
		keepAliveWindow.SetDecorated(false)
		keepAliveWindow.SetVisible(false)
	})

	// Handle shutdown
	app.ConnectShutdown(func() {
		logger.Info("application shutting down")
		if running.Load() {
			stop()
		}
		running.Store(false)
	})

	// Run the application
	status := app.Run(os.Args[:1])
	if status != 0 {
		logger.Error("application exited with error", "status", status)
		return status
	}

	logger.Info("tetratipd stopped")
	return 0
}

// mainLoopHandler serves D-Bus requests by running them on the GTK main loop.
type mainLoopHandler struct {
	controller *tooltip.Controller
	logger     *slog.Logger
}

type showResult struct {
	id  string
	err error
}

func (h *mainLoopHandler) Show(req *dbus.ShowRequest) (string, error) {
	// Decode off the main loop
	img, err := req.Image()
	if err != nil {
		h.logger.Warn("ignoring tooltip image", "error", err)
	}

	done := make(chan showResult, 1)
	glib.IdleAdd(func() {
		id, err := h.show(req, img)
		done <- showResult{id: id, err: err}
	})

	select {
	case res := <-done:
		return res.id, res.err
	case <-time.After(mainLoopTimeout):
		return "", errors.New("main loop did not respond")
	}
}

func (h *mainLoopHandler) show(req *dbus.ShowRequest, img image.Image) (string, error) {
	spot := tooltip.NewSpot(req.Area)
	h.controller.SetTitle(spot, req.Title)
	h.controller.SetText(spot, req.Text)
	h.controller.SetImage(spot, img)

	var (
		w   *popup.Window
		err error
	)
	switch req.Mode {
	case dbus.ModePoint:
		w, err = h.controller.ShowAt(spot, image.Point{})
	case dbus.ModeAvoid:
		w, err = h.controller.ShowAvoiding(spot, spot.Anchor())
	default:
		w, err = h.controller.Show(spot)
	}

	// The popup owns its rendered frame, the association is no longer needed
	h.controller.SetTitle(spot, "")
	h.controller.SetText(spot, "")
	h.controller.SetImage(spot, nil)

	if err != nil {
		return "", err
	}
	return w.ID(), nil
}

func (h *mainLoopHandler) Hide() {
	glib.IdleAdd(func() {
		h.controller.Hide()
	})
}

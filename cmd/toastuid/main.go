// Package main is the entry point for the toastuid notification daemon.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmylchreest/toastui/internal/audio"
	"github.com/jmylchreest/toastui/internal/center"
	"github.com/jmylchreest/toastui/internal/clock"
	"github.com/jmylchreest/toastui/internal/config"
	"github.com/jmylchreest/toastui/internal/daemon"
	"github.com/jmylchreest/toastui/internal/dbus"
	"github.com/jmylchreest/toastui/internal/model"
	"github.com/jmylchreest/toastui/internal/server"
	"github.com/jmylchreest/toastui/internal/surface"
	"github.com/jmylchreest/toastui/internal/theme"
)

var (
	// Build-time variables
	version = "dev"
)

func main() {
	showVersion := flag.Bool("version", false, "Show version and exit")
	configPath := flag.String("config", "", "Path to config file (default: ~/.config/toastui/toastuid.toml)")
	listen := flag.String("listen", "", "Override the HTTP listen address")
	verbose := flag.Bool("v", false, "Enable debug logging")
	flag.Parse()

	if *showVersion {
		fmt.Println("toastuid version", version)
		os.Exit(0)
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	if err := run(logger, *configPath, *listen); err != nil {
		logger.Error("toastuid failed", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger, configPath, listen string) error {
	logger.Info("starting toastuid", "version", version)

	if configPath == "" {
		configPath = config.DaemonConfigPath()
	}
	cfg, err := config.LoadDaemonConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if listen != "" {
		cfg.Server.Listen = listen
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case sig := <-sigCh:
			logger.Info("received signal, shutting down", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	loop := clock.NewLoop(logger)
	loop.Start(ctx)
	defer loop.Stop()

	c := center.New(surface.NewDocument(), loop, cfg, logger)
	c.EnsureSurface()

	themes := theme.NewLoader(cfg.Theme.Name, config.ThemesDir(), logger)
	srv := server.New(c, themes, cfg, logger)

	notifier := daemon.NewInternalNotifier(daemon.PosterFunc(func(message string, sev model.Severity, duration time.Duration) {
		c.Notify(message, sev, duration)
	}), loop, logger)

	var audioManager *audio.Manager
	if cfg.Audio.Enabled {
		audioManager = audio.NewManager(cfg, logger)
		audioManager.SetErrorCallback(notifier.NotifyAudioError)
		if err := audioManager.Start(ctx); err != nil {
			logger.Warn("failed to start audio", "error", err)
		}
		defer audioManager.Stop()
		defer c.Subscribe(audioManager.HandleEvent)()
	}

	switch {
	case cfg.Mirror.DBus:
		mirror := dbus.NewMirror(cfg.Mirror.AppName, c, logger)
		if err := mirror.Connect(); err != nil {
			logger.Warn("D-Bus mirror unavailable", "error", err)
			break
		}
		defer func() { _ = mirror.Close() }()
		defer c.Subscribe(mirror.HandleEvent)()
	case cfg.Bridge.DBus:
		bridge := dbus.NewBridge(c, logger)
		info := dbus.DefaultServerInfo()
		info.Version = version
		bridge.SetServerInfo(info)
		if err := bridge.Start(); err != nil {
			logger.Warn("D-Bus bridge unavailable", "error", err)
			break
		}
		defer func() { _ = bridge.Stop() }()
		defer c.Subscribe(bridge.HandleEvent)()
	}

	watcher := daemon.NewConfigWatcher(configPath, config.ThemesDir(), logger)
	watcher.SetReloadCallback(func(newCfg *config.DaemonConfig) {
		if listen != "" {
			newCfg.Server.Listen = listen
		}
		if newCfg.Theme.Name != themes.Current().Name {
			themes.Load(newCfg.Theme.Name)
		}
		c.UpdateConfig(newCfg)
		srv.UpdateConfig(newCfg)
		if audioManager != nil {
			audioManager.UpdateConfig(newCfg)
		}
		notifier.NotifyConfigReloaded()
	})
	watcher.SetErrorCallback(notifier.NotifyConfigError)
	// Any stylesheet may be imported by the current one, so every change
	// reloads it.
	watcher.SetThemeCallback(func(path string) {
		logger.Debug("stylesheet changed", "path", path)
		themes.Reload()
		notifier.NotifyThemeReloaded(themes.Current().Name)
	})
	if err := watcher.Start(ctx, cfg); err != nil {
		logger.Warn("config hot reload disabled", "error", err)
	} else {
		defer watcher.Stop()
	}

	notifier.NotifyStartup(version)

	err = srv.ListenAndServe(ctx)
	logger.Info("toastuid stopped")
	return err
}

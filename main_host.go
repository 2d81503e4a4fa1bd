//go:build !tinygo

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"golang.org/x/sync/errgroup"

	"kiosk/app"
	"kiosk/hal"
	"kiosk/internal/buildinfo"
	"kiosk/internal/config"
	"kiosk/internal/storage"
	"kiosk/kiosk/voice"
)

func main() {
	if err := run(); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	var (
		headless   hal.HeadlessConfig
		configPath string
		storePath  string
		backend    string
		logLevel   string
	)
	flag.BoolVar(&headless.Enabled, "headless", false, "Run without a window.")
	flag.IntVar(&headless.Hz, "hz", 1000, "Tick rate in headless mode.")
	flag.Uint64Var(&headless.Ticks, "ticks", 0, "Stop after N ticks in headless mode (0 = run forever).")
	flag.StringVar(&configPath, "config", config.DefaultPath(), "TOML config file.")
	flag.StringVar(&storePath, "store", "", "Override store.path.")
	flag.StringVar(&backend, "backend", "", "Override store.backend (memory|json|sqlite).")
	flag.StringVar(&logLevel, "log-level", "", "Override log.level.")
	flag.Parse()

	cfg, err := config.Load(configPath, config.Default(config.DefaultStorePath()))
	if err != nil {
		return err
	}
	if storePath != "" {
		cfg.Store.Path = storePath
	}
	if backend != "" {
		cfg.Store.Backend = config.StoreBackend(backend)
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	s, closeStore, err := storage.Open(cfg.Store)
	if err != nil {
		return err
	}
	defer closeStore()

	deps := app.Deps{Store: s, Notices: new(app.Mailbox)}
	if cfg.VoiceEnabled() {
		c := voice.NewHTTPClient(cfg.Voice.URL)
		c.HTTP.Timeout = cfg.Voice.Timeout.Std()
		deps.Voice = c
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var k *app.Kiosk
	newApp := app.Stepper(cfg, deps, func(ready *app.Kiosk) { k = ready })
	opts := hal.HostOptions{LogLevel: cfg.Log.Level}
	log := hal.NewHostLogger(opts)
	log.WriteLineString(fmt.Sprintf("kiosk %s: %s store at %s", buildinfo.Long(), cfg.Store.Backend, cfg.Store.Path))

	g, gctx := errgroup.WithContext(ctx)
	if dir := storage.WatchDir(cfg.Store); dir != "" {
		g.Go(func() error { return app.WatchStore(gctx, dir, deps.Notices, log) })
	}

	if headless.Enabled {
		g.Go(func() error {
			defer cancel()
			return hal.RunHeadless(gctx, opts, newApp, headless)
		})
	} else {
		// The window must own the main goroutine.
		err := hal.RunWindow(opts, newApp)
		cancel()
		if err != nil {
			_ = g.Wait()
			return err
		}
	}

	err = g.Wait()
	if k != nil {
		k.Close()
	}
	return err
}

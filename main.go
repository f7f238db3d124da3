package main

import (
	"context"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/fmuoria/resume-admin/internal/api"
	"github.com/fmuoria/resume-admin/internal/client"
	"github.com/fmuoria/resume-admin/internal/config"
	"github.com/fmuoria/resume-admin/internal/dashboard"
	"github.com/fmuoria/resume-admin/internal/gui"
	"github.com/fmuoria/resume-admin/internal/live"
	"github.com/fmuoria/resume-admin/internal/notify"
	"github.com/fmuoria/resume-admin/internal/session"
	"github.com/fmuoria/resume-admin/internal/store"
)

func main() {
	configPath := flag.String("config", "", "path to the JSON config file")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	setupLogging(cfg)
	if err != nil {
		log.Warn().Err(err).Msg("failed to load config, using defaults")
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	st := openStore(cfg.StorePath)

	sess := session.NewContext(st)
	gate := session.NewGate(sess)
	prefs := session.NewPreferences(st)

	cl := client.New(cfg.APIURL, sess.Token, client.WithUnauthorizedHandler(gate.SignOut))
	notifier := notify.New()

	board := dashboard.New(cl, notifier, dashboard.Options{
		PageSize:     cfg.PageSize,
		DownloadsDir: cfg.DownloadsDir,
		ExportDir:    cfg.ExportDir,
	})

	sub := live.New(live.Options{
		BaseURL:        cfg.APIURL,
		Token:          sess.Token,
		Health:         cl,
		HealthInterval: cfg.HealthInterval(),
	})

	// The mailbox-connect flow redirects the browser back to this receiver
	callback := api.NewServer(func(r api.MailboxResult) {
		kind := notify.Success
		if !r.Success {
			kind = notify.Error
		}
		notifier.Show(kind, r.Notification(), notify.PushDelay)
	})
	if addr, err := callback.Start(cfg.CallbackAddr); err != nil {
		log.Error().Err(err).Str("addr", cfg.CallbackAddr).Msg("mailbox callback receiver unavailable")
	} else {
		log.Info().Str("addr", addr).Msg("mailbox callback receiver listening")
	}

	log.Info().Str("api", cfg.APIURL).Msg("starting resume admin")
	gui.NewApp(gui.Deps{
		Config:    cfg,
		Session:   sess,
		Gate:      gate,
		Prefs:     prefs,
		Client:    cl,
		Dashboard: board,
		Live:      sub,
		Notifier:  notifier,
	}).Run()

	sub.Stop()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := callback.Shutdown(ctx); err != nil {
		log.Warn().Err(err).Msg("callback receiver shutdown")
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		cfg, err := config.LoadFrom(path)
		if err != nil {
			return config.DefaultConfig(), err
		}
		cfg.ApplyEnv()
		if cfg.StorePath == "" {
			cfg.StorePath = filepath.Join(filepath.Dir(path), "state.json")
		}
		return cfg, nil
	}

	cfg, err := config.Load()
	if err != nil {
		return config.DefaultConfig(), err
	}
	return cfg, nil
}

// openStore falls back to memory so the app still runs, without persistence
func openStore(path string) store.Store {
	if path == "" {
		log.Warn().Msg("no state store path configured, session will not persist")
		return store.NewMemoryStore()
	}
	fs, err := store.Open(path)
	if err != nil {
		log.Error().Err(err).Str("path", path).Msg("failed to open state store, session will not persist")
		return store.NewMemoryStore()
	}
	return fs
}

func setupLogging(cfg *config.Config) {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.LogLevel))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339

	if cfg.LogFormat == "console" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
}

// volcanoweb serves an interactive volcano plot for uploaded differential
// expression tables.
//
// Usage:
//
//	volcanoweb [--dev] [--config path] [--addr :8080]
//
// Flags:
//
//	--dev     With session.backend=redis, use an in-process miniredis
//	--config  Path to volcanoweb.yaml (empty: built-in defaults)
//	--addr    Override server.addr from config
//
// Environment:
//
//	VOLCANO_ADDR, VOLCANO_REDIS_ADDR, VOLCANO_LOG_LEVEL
package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"volcanoweb/internal/config"
	"volcanoweb/internal/declutter"
	"volcanoweb/internal/render"
	"volcanoweb/internal/session"
	"volcanoweb/internal/web"
)

func main() {
	dev := flag.Bool("dev", false, "dev mode: in-process miniredis for the redis session backend")
	configPath := flag.String("config", "", "path to config file")
	addrOverride := flag.String("addr", "", "listen address override (e.g. :3000)")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Str("config", *configPath).Msg("config load failed")
	}
	if *addrOverride != "" {
		cfg.Server.Addr = *addrOverride
	}
	setupLogging(cfg.Log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := session.Setup(ctx, cfg.Session, *dev)
	if err != nil {
		log.Fatal().Err(err).Msg("session store setup failed")
	}
	defer store.Close()

	var dc declutter.Declutterer = declutter.NewRings()
	if cfg.Plot.Declutter == "none" {
		dc = declutter.None{}
	}
	renderer := render.New(render.Options{
		Width:     cfg.Plot.Width,
		Height:    cfg.Plot.Height,
		Title:     cfg.Plot.Title,
		Declutter: dc,
	})

	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      web.NewRouter(cfg, store, renderer),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().
			Str("addr", cfg.Server.Addr).
			Str("session", cfg.Session.Backend).
			Bool("dev", *dev).
			Str("config", *configPath).
			Msg("volcanoweb started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown error")
	}
	log.Info().Msg("stopped")
}

func setupLogging(cfg config.LogConfig) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		log.Warn().Str("level", cfg.Level).Msg("unknown log level, using info")
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	if cfg.Format == "json" {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	}
}

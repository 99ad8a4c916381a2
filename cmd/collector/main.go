package main

import (
	"context"
	"flag"
	"net/http"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/bilal/solar-monitor/internal/collector"
	"github.com/bilal/solar-monitor/internal/config"
	"github.com/bilal/solar-monitor/internal/logger"
	"github.com/bilal/solar-monitor/internal/metrics"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

func main() {
	configPath := flag.String("config", "", "path to config file, empty for defaults")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}
	logger.Init(cfg.Logging)

	store, err := collector.NewStore(cfg.Collector.LogDir, time.Local)
	if err != nil {
		log.Fatal().Err(err).Msg("log store")
	}
	abs, _ := filepath.Abs(store.Dir())
	log.Info().Str("log_dir", abs).Msg("solar power monitor collector starting")

	m := metrics.NewCollector()
	mux := collector.NewServer(store, m).Routes()
	mux.Handle("/metrics", promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{}))

	srv := &http.Server{
		Addr:              cfg.Collector.Listen,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("collector shutdown failed")
		}
	}()

	log.Info().Str("addr", cfg.Collector.Listen).Msg("collector listening")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("collector stopped")
	}
	log.Info().Msg("collector stopped cleanly")
}

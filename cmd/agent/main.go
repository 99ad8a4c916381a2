package main

import (
	"context"
	"flag"
	"os/signal"
	"syscall"
	"time"

	"github.com/bilal/solar-monitor/internal/clock"
	"github.com/bilal/solar-monitor/internal/communicator"
	"github.com/bilal/solar-monitor/internal/config"
	"github.com/bilal/solar-monitor/internal/decision"
	"github.com/bilal/solar-monitor/internal/health"
	"github.com/bilal/solar-monitor/internal/link"
	"github.com/bilal/solar-monitor/internal/logger"
	"github.com/bilal/solar-monitor/internal/metrics"
	"github.com/bilal/solar-monitor/internal/monitor"
	"github.com/bilal/solar-monitor/internal/power"
	"github.com/bilal/solar-monitor/internal/retry"
	"github.com/bilal/solar-monitor/internal/telemetry"

	"github.com/rs/zerolog/log"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file, empty for defaults")
	sleepMinutes := flag.Int("sleep", 0, "enter deep sleep for this many minutes and exit")
	flag.Parse()

	// Load config
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Init logger
	logger.Init(cfg.Logging)
	log.Info().Str("device", cfg.Agent.DeviceID).Str("transport", cfg.Agent.Transport).Msg("starting solar monitor agent")

	// Context for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if *sleepMinutes > 0 {
		if err := power.NewSleeper(cfg.Power).EnterDeepSleep(ctx, *sleepMinutes); err != nil {
			log.Fatal().Err(err).Msg("deep sleep failed")
		}
		return
	}

	startup := retry.Policy{
		MaxAttempts: cfg.Link.ConnectAttempts,
		Min:         time.Duration(cfg.Link.RetryMinMs) * time.Millisecond,
		Max:         time.Duration(cfg.Link.RetryMaxMs) * time.Millisecond,
		Factor:      2,
		Jitter:      true,
	}

	//------------------------------------------
	// CONNECT LINK
	//------------------------------------------
	prober := link.HostProber(&link.PingProber{
		Host:       cfg.Link.ProbeHost,
		Count:      cfg.Link.ProbeCount,
		Timeout:    cfg.Link.ProbeTimeout(),
		Privileged: cfg.Link.Privileged,
	})
	linkMgr := link.NewManager(&link.NetlinkAssociator{Interface: cfg.Link.Interface}, prober, startup)
	if _, err := linkMgr.Connect(ctx); err != nil {
		log.Fatal().Err(err).Str("interface", cfg.Link.Interface).Msg("link never came up")
	}

	//------------------------------------------
	// SYNC CLOCK
	//------------------------------------------
	clk := clock.New(cfg.Clock.Zone())
	syncPolicy := startup
	syncPolicy.MaxAttempts = cfg.Clock.SyncAttempts
	ntpSource := &clock.NTPSource{Server: cfg.Clock.NTPServer, Timeout: cfg.Clock.Timeout()}
	if err := clk.Sync(ctx, ntpSource, syncPolicy); err != nil {
		log.Fatal().Err(err).Str("server", cfg.Clock.NTPServer).Msg("time never synced")
	}

	//------------------------------------------
	// START HEALTH SERVER
	//------------------------------------------
	agentMetrics := metrics.NewAgent()
	healthSrv := health.New(cfg.Health.Listen, agentMetrics.Registry)
	healthSrv.SetRunning(true)

	go func() {
		if err := healthSrv.Serve(); err != nil {
			log.Error().Err(err).Msg("health server stopped")
		}
	}()
	log.Info().Str("addr", cfg.Health.Listen).Msg("health endpoint running")

	//------------------------------------------
	// START COMMUNICATOR
	//------------------------------------------
	transport, err := communicator.NewTransport(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("transport setup failed")
	}
	comm := communicator.New(transport, linkMgr, communicator.PolicyFrom(cfg.Agent))

	//------------------------------------------
	// START MONITOR
	//------------------------------------------
	sampler := telemetry.NewSampler(cfg.Agent.DeviceID, clk,
		&telemetry.WirelessSignal{Interface: cfg.Link.Interface},
		telemetry.SystemMemory{})

	mon := monitor.New(decision.NewEngine(cfg.Agent.Interval()), cfg.Agent.Tick(), monitor.Deps{
		Link:     linkMgr,
		Sampler:  sampler,
		Reporter: comm,
		Health:   healthSrv,
		Metrics:  agentMetrics,
	})

	done := make(chan struct{})
	go func() {
		mon.Run(ctx)
		close(done)
	}()

	//------------------------------------------
	// WAIT FOR SHUTDOWN SIGNAL
	//------------------------------------------
	<-ctx.Done()
	log.Warn().Msg("shutdown signal received")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	select {
	case <-done:
	case <-shutdownCtx.Done():
		log.Warn().Msg("monitor shutdown timeout")
	}

	log.Info().Msg("stopping communicator...")
	if err := comm.Close(); err != nil {
		log.Error().Err(err).Msg("communicator close failed")
	}

	healthSrv.SetRunning(false)
	if err := healthSrv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("health server shutdown failed")
	}

	log.Info().Msg("agent stopped cleanly")
}

package monitor

import (
	"context"
	"time"

	"github.com/bilal/solar-monitor/internal/communicator"
	"github.com/bilal/solar-monitor/internal/decision"
	"github.com/bilal/solar-monitor/internal/health"
	"github.com/bilal/solar-monitor/internal/link"
	"github.com/bilal/solar-monitor/internal/logger"
	"github.com/bilal/solar-monitor/internal/metrics"
	"github.com/bilal/solar-monitor/internal/telemetry"
	"github.com/rs/zerolog"
)

type Link interface {
	IsConnected() bool
	Refresh(ctx context.Context) link.State
	Reconnect(ctx context.Context) link.State
}

type Sampler interface {
	Sample() telemetry.Record
}

type Reporter interface {
	Report(ctx context.Context, rec telemetry.Record) communicator.Outcome
}

// State is owned by the monitor goroutine.
type State struct {
	Link       link.State
	LastReport time.Time
	Attempts   uint64
	Delivered  uint64
	Skipped    uint64
	Reconnects uint64
}

type Deps struct {
	Link     Link
	Sampler  Sampler
	Reporter Reporter
	Health   *health.Server // optional
	Metrics  *metrics.Agent // optional
}

type Monitor struct {
	engine *decision.Engine
	tick   time.Duration
	deps   Deps
	now    func() time.Time
	state  State
	log    zerolog.Logger
}

func New(engine *decision.Engine, tick time.Duration, deps Deps) *Monitor {
	return &Monitor{
		engine: engine,
		tick:   tick,
		deps:   deps,
		now:    time.Now,
		log:    logger.Component("monitor"),
	}
}

func (m *Monitor) State() State { return m.state }

// Start sends the startup report. The schedule starts from here whatever the
// outcome.
func (m *Monitor) Start(ctx context.Context) {
	now := m.now()
	m.state.Link = link.Disconnected
	if m.deps.Link.IsConnected() {
		m.state.Link = link.Connected
	}
	m.report(ctx, now)
	m.state.LastReport = now
	m.publish()
}

// Tick runs one polling cycle: report when due, reconnect when down.
func (m *Monitor) Tick(ctx context.Context) {
	now := m.now()
	m.state.Link = m.deps.Link.Refresh(ctx)

	plan := m.engine.Evaluate(decision.Snapshot{
		Now:        now,
		LastReport: m.state.LastReport,
		Link:       m.state.Link,
	})

	switch {
	case plan.Report:
		if m.report(ctx, now) {
			m.state.LastReport = now
		}
	case plan.ReportDue:
		m.state.Skipped++
		if m.deps.Metrics != nil {
			m.deps.Metrics.ReportSkipped()
		}
		m.log.Warn().Dur("overdue", plan.Elapsed-m.engine.Interval()).Msg("report due but link is down")
	}

	if plan.Reconnect {
		m.log.Warn().Msg("link disconnected, reconnecting")
		m.state.Reconnects++
		if m.deps.Metrics != nil {
			m.deps.Metrics.ReconnectAttempt()
		}
		m.state.Link = m.deps.Link.Reconnect(ctx)
	}

	m.publish()
}

// report returns whether an exchange was attempted.
func (m *Monitor) report(ctx context.Context, now time.Time) bool {
	rec := m.deps.Sampler.Sample()
	out := m.deps.Reporter.Report(ctx, rec)
	if !out.Attempted {
		return false
	}

	m.state.Attempts++
	if out.Success() {
		m.state.Delivered++
	}
	if m.deps.Metrics != nil {
		m.deps.Metrics.ObserveReport(out.Reason.String(), out.Latency, now)
	}
	if m.deps.Health != nil {
		m.deps.Health.SetLastReport(now, out.Reason.String())
	}
	return true
}

func (m *Monitor) publish() {
	up := m.state.Link == link.Connected
	if m.deps.Metrics != nil {
		m.deps.Metrics.SetLinkUp(up)
	}
	if m.deps.Health != nil {
		m.deps.Health.SetLinkUp(up)
	}
}

// Run sends the startup report then ticks until ctx is done.
func (m *Monitor) Run(ctx context.Context) {
	m.log.Info().
		Dur("interval", m.engine.Interval()).
		Dur("tick", m.tick).
		Msg("monitor started")

	m.Start(ctx)

	ticker := time.NewTicker(m.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.log.Info().
				Uint64("attempts", m.state.Attempts).
				Uint64("delivered", m.state.Delivered).
				Msg("monitor stopping")
			return

		case <-ticker.C:
			m.Tick(ctx)
		}
	}
}

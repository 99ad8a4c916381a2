package link

import (
	"context"
	"fmt"

	"github.com/bilal/solar-monitor/internal/retry"
	"github.com/rs/zerolog/log"
)

// Prober checks that the network is actually usable.
type Prober interface {
	Probe(ctx context.Context) error
}

// Associator brings the local link up. It may be a no-op when the OS owns
// association.
type Associator interface {
	Associate(ctx context.Context) error
}

// Manager owns the link state. It is not safe for concurrent use, the
// scheduler goroutine is its only caller once Connect has returned.
type Manager struct {
	prober     Prober
	associator Associator
	policy     retry.Policy

	state      State
	reconnects uint64
	lastErr    error
}

func NewManager(associator Associator, prober Prober, policy retry.Policy) *Manager {
	return &Manager{
		prober:     prober,
		associator: associator,
		policy:     policy,
	}
}

// Connect blocks until the link is usable or the retry policy gives up.
func (m *Manager) Connect(ctx context.Context) (int, error) {
	log.Info().Int("max_attempts", m.policy.MaxAttempts).Msg("connecting link")
	attempts, err := retry.Do(ctx, m.policy, "link connect", m.attempt)
	if err != nil {
		m.state = Disconnected
		return attempts, err
	}
	m.state = Connected
	log.Info().Int("attempts", attempts).Msg("link connected")
	return attempts, nil
}

func (m *Manager) attempt(ctx context.Context) error {
	if err := m.associator.Associate(ctx); err != nil {
		m.lastErr = err
		return fmt.Errorf("associate: %w", err)
	}
	if err := m.prober.Probe(ctx); err != nil {
		m.lastErr = err
		return fmt.Errorf("probe: %w", err)
	}
	m.lastErr = nil
	return nil
}

func (m *Manager) IsConnected() bool { return m.state == Connected }

func (m *Manager) State() State { return m.state }

// Refresh probes once and updates the cached state.
func (m *Manager) Refresh(ctx context.Context) State {
	err := m.prober.Probe(ctx)
	next := Connected
	if err != nil {
		next = Disconnected
	}
	if next != m.state {
		ev := log.Info()
		if next == Disconnected {
			ev = log.Warn().Err(err)
		}
		ev.Str("from", m.state.String()).Str("to", next.String()).Msg("link state changed")
	}
	m.lastErr = err
	m.state = next
	return next
}

// Reconnect makes one best-effort attempt and reports the resulting state.
// Failure is not an error, callers poll again on the next tick.
func (m *Manager) Reconnect(ctx context.Context) State {
	m.reconnects++
	if err := m.attempt(ctx); err != nil {
		log.Debug().Err(err).Uint64("reconnects", m.reconnects).Msg("reconnect attempt failed")
		m.state = Disconnected
		return m.state
	}
	log.Info().Uint64("reconnects", m.reconnects).Msg("link reconnected")
	m.state = Connected
	return m.state
}

func (m *Manager) Reconnects() uint64 { return m.reconnects }

func (m *Manager) LastError() error { return m.lastErr }

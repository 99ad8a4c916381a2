package link

import (
	"context"
	"fmt"
	"time"

	"github.com/go-ping/ping"
)

// PingProber treats the link as up when at least one ICMP echo comes back.
type PingProber struct {
	Host       string
	Count      int
	Timeout    time.Duration
	Privileged bool
}

func (p *PingProber) Probe(ctx context.Context) error {
	pinger, err := ping.NewPinger(p.Host)
	if err != nil {
		return fmt.Errorf("ping %s: %w", p.Host, err)
	}

	pinger.Count = p.Count
	if pinger.Count < 1 {
		pinger.Count = 1
	}
	pinger.Timeout = p.Timeout
	if pinger.Timeout <= 0 {
		pinger.Timeout = 2 * time.Second
	}
	pinger.SetPrivileged(p.Privileged)

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			pinger.Stop()
		case <-done:
		}
	}()

	if err := pinger.Run(); err != nil {
		return fmt.Errorf("ping %s: %w", p.Host, err)
	}
	stats := pinger.Statistics()
	if stats.PacketsRecv == 0 {
		return fmt.Errorf("ping %s: no reply (loss %.0f%%)", p.Host, stats.PacketLoss)
	}
	return nil
}

// ChainProber requires every prober to pass.
type ChainProber []Prober

func (c ChainProber) Probe(ctx context.Context) error {
	for _, p := range c {
		if err := p.Probe(ctx); err != nil {
			return err
		}
	}
	return nil
}

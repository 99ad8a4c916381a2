package decision

import (
	"time"

	"github.com/bilal/solar-monitor/internal/link"
)

// Snapshot is what the scheduler knows at the start of a tick.
type Snapshot struct {
	Now        time.Time
	LastReport time.Time
	Link       link.State
}

// Plan is what the tick should do.
type Plan struct {
	ReportDue bool // interval elapsed
	Report    bool // due and link usable
	Reconnect bool
	Elapsed   time.Duration
}

type Engine struct {
	interval time.Duration
}

func NewEngine(interval time.Duration) *Engine {
	return &Engine{interval: interval}
}

func (e *Engine) Interval() time.Duration { return e.interval }

// Evaluate never queues missed cycles: however overdue, a due report is one
// report.
func (e *Engine) Evaluate(s Snapshot) Plan {
	elapsed := s.Now.Sub(s.LastReport)
	connected := s.Link == link.Connected
	due := elapsed >= e.interval

	return Plan{
		ReportDue: due,
		Report:    due && connected,
		Reconnect: !connected,
		Elapsed:   elapsed,
	}
}

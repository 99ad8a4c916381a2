package communicator

import (
	"context"
	"fmt"
	"time"
)

// Reason is the closed set of report outcomes. New causes are appended,
// existing values never change meaning.
type Reason int

const (
	ReasonNone Reason = iota
	ReasonLinkDown
	ReasonEncode
	ReasonConnection
	ReasonTimeout
	ReasonDNS
	ReasonRefused
	ReasonTLS
	ReasonStatus
)

var reasonNames = map[Reason]string{
	ReasonNone:       "none",
	ReasonLinkDown:   "link_down",
	ReasonEncode:     "encode",
	ReasonConnection: "connection",
	ReasonTimeout:    "timeout",
	ReasonDNS:        "dns",
	ReasonRefused:    "refused",
	ReasonTLS:        "tls",
	ReasonStatus:     "status",
}

func (r Reason) String() string {
	if s, ok := reasonNames[r]; ok {
		return s
	}
	return fmt.Sprintf("reason(%d)", int(r))
}

// Failure is the error carried by an unsuccessful Outcome.
type Failure struct {
	Reason Reason
	Err    error
}

func (f *Failure) Error() string {
	if f.Err == nil {
		return f.Reason.String()
	}
	return f.Reason.String() + ": " + f.Err.Error()
}

func (f *Failure) Unwrap() error { return f.Err }

// Response is what a transport got back. Status 0 means the transport has no
// status line (broker ack) and the message was accepted.
type Response struct {
	Status int
	Body   []byte
}

// Transport performs exactly one exchange per call.
type Transport interface {
	Send(ctx context.Context, correlationID string, payload []byte) (Response, error)
	Name() string
	Close() error
}

// Outcome of one Report call.
type Outcome struct {
	Attempted     bool
	Status        int
	Body          string
	Reason        Reason
	Err           error
	CorrelationID string
	Latency       time.Duration
}

func (o Outcome) Success() bool { return o.Attempted && o.Reason == ReasonNone }

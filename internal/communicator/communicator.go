package communicator

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"net"
	"syscall"
	"time"

	"github.com/bilal/solar-monitor/internal/telemetry"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// LinkGate is consulted before every report.
type LinkGate interface {
	IsConnected() bool
}

type Policy struct {
	// Timeout bounds one exchange. Zero waits as long as the transport does.
	Timeout time.Duration
	// AcceptAnyStatus counts every HTTP status as delivered, not only 2xx.
	AcceptAnyStatus bool
	// ClassifyFailures tells timeouts, DNS, refused and TLS failures apart.
	// When false every transport failure is ReasonConnection.
	ClassifyFailures bool
}

// Communicator sends one telemetry record per call.
type Communicator struct {
	transport Transport
	link      LinkGate
	policy    Policy
	newID     func() string
}

func New(t Transport, link LinkGate, p Policy) *Communicator {
	return &Communicator{
		transport: t,
		link:      link,
		policy:    p,
		newID:     func() string { return uuid.New().String() },
	}
}

// Report skips when the link is down, otherwise performs a single exchange
// and classifies it. It never retries.
func (c *Communicator) Report(ctx context.Context, rec telemetry.Record) Outcome {
	if !c.link.IsConnected() {
		log.Warn().Msg("link not connected, cannot send report")
		return Outcome{Reason: ReasonLinkDown, Err: &Failure{Reason: ReasonLinkDown}}
	}

	payload, err := rec.Marshal()
	if err != nil {
		log.Error().Err(err).Msg("marshal telemetry failed")
		return Outcome{Reason: ReasonEncode, Err: &Failure{Reason: ReasonEncode, Err: err}}
	}

	out := Outcome{Attempted: true, CorrelationID: c.newID()}
	log.Debug().
		Str("transport", c.transport.Name()).
		Str("correlation", out.CorrelationID).
		RawJSON("payload", payload).
		Msg("sending report")

	if c.policy.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.policy.Timeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := c.transport.Send(ctx, out.CorrelationID, payload)
	out.Latency = time.Since(start)
	out.Status = resp.Status
	out.Body = string(resp.Body)
	out.Reason, out.Err = Classify(resp, err, c.policy)

	if out.Reason == ReasonNone {
		log.Info().
			Int("code", out.Status).
			Str("response", out.Body).
			Dur("latency", out.Latency).
			Str("correlation", out.CorrelationID).
			Msg("report sent")
		return out
	}

	ev := log.Warn().Err(out.Err).Str("reason", out.Reason.String()).Int("code", out.Status)
	switch out.Reason {
	case ReasonConnection, ReasonRefused, ReasonDNS:
		ev = ev.Str("hint", "check server URL and network")
	case ReasonTimeout:
		ev = ev.Str("hint", "server may be slow or unreachable")
	}
	ev.Str("correlation", out.CorrelationID).Msg("report failed")
	return out
}

func (c *Communicator) Close() error { return c.transport.Close() }

// Classify maps a transport result to a Reason. The returned error is a
// *Failure when the reason is not ReasonNone.
func Classify(resp Response, err error, p Policy) (Reason, error) {
	if err != nil {
		reason := ReasonConnection
		if p.ClassifyFailures {
			reason = classifyError(err)
		}
		return reason, &Failure{Reason: reason, Err: err}
	}
	if statusDelivered(resp.Status, p.AcceptAnyStatus) {
		return ReasonNone, nil
	}
	return ReasonStatus, &Failure{Reason: ReasonStatus, Err: fmt.Errorf("bad status: %d", resp.Status)}
}

func statusDelivered(status int, acceptAny bool) bool {
	if status < 0 {
		return false
	}
	if acceptAny || status == 0 {
		return true
	}
	return status >= 200 && status < 300
}

func classifyError(err error) Reason {
	var (
		dnsErr     *net.DNSError
		netErr     net.Error
		certErr    *tls.CertificateVerificationError
		authErr    x509.UnknownAuthorityError
		hostErr    x509.HostnameError
		invalidErr x509.CertificateInvalidError
		recordErr  tls.RecordHeaderError
	)
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return ReasonTimeout
	case errors.As(err, &dnsErr):
		return ReasonDNS
	case errors.Is(err, syscall.ECONNREFUSED):
		return ReasonRefused
	case errors.As(err, &certErr), errors.As(err, &authErr), errors.As(err, &hostErr),
		errors.As(err, &invalidErr), errors.As(err, &recordErr):
		return ReasonTLS
	case errors.As(err, &netErr) && netErr.Timeout():
		return ReasonTimeout
	}
	return ReasonConnection
}

//go:build !linux

package link

import (
	"context"
	"errors"
)

var errNoNetlink = errors.New("netlink not supported on this platform")

// NetlinkAssociator is a no-op outside Linux.
type NetlinkAssociator struct {
	Interface string
}

func (a *NetlinkAssociator) Associate(ctx context.Context) error { return ctx.Err() }

type RouteProber struct{}

// HostProber is p alone, there is no route table to consult.
func HostProber(p Prober) Prober { return p }

func (RouteProber) Probe(context.Context) error { return errNoNetlink }

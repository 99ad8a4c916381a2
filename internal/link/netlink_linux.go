//go:build linux

package link

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/rs/zerolog/log"
	"github.com/vishvananda/netlink"
)

// NetlinkAssociator sets the interface administratively up. Association with
// the access point itself is left to the OS supplicant.
type NetlinkAssociator struct {
	Interface string
}

func (a *NetlinkAssociator) Associate(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	l, err := netlink.LinkByName(a.Interface)
	if err != nil {
		return fmt.Errorf("link %s: %w", a.Interface, err)
	}
	if l.Attrs().Flags&net.FlagUp != 0 {
		return nil
	}
	if err := netlink.LinkSetUp(l); err != nil {
		return fmt.Errorf("link %s up: %w", a.Interface, err)
	}
	log.Info().Str("interface", a.Interface).Msg("interface set up")
	return nil
}

// RouteProber fails while there is no IPv4 default route.
type RouteProber struct{}

func (RouteProber) Probe(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := DefaultRoute()
	return err
}

// HostProber checks the default route before handing over to p.
func HostProber(p Prober) Prober { return ChainProber{RouteProber{}, p} }

// DefaultRoute returns the current IPv4 default route.
func DefaultRoute() (*netlink.Route, error) {
	routes, err := netlink.RouteList(nil, netlink.FAMILY_V4)
	if err != nil {
		return nil, err
	}

	for _, r := range routes {
		if r.Dst == nil { // means default route: 0.0.0.0/0
			r := r
			return &r, nil
		}
	}
	return nil, errors.New("no default route found")
}

// Package dns provides the pluggable name resolution used by the connector,
// including a static-override wrapper for pinning hostnames to fixed
// addresses without touching the URL's port.
package dns

import (
	"context"
	"net"
	"net/netip"
)

// Resolver resolves a hostname to a set of addresses. The standard library
// resolver (via net.DefaultResolver) is wrapped by NewSystemResolver; tests
// and embedders can supply their own for DNS-over-HTTPS, hosts-file
// overrides, service discovery, and so on.
type Resolver interface {
	Resolve(ctx context.Context, host string) ([]netip.Addr, error)
}

type systemResolver struct {
	r *net.Resolver
}

// NewSystemResolver wraps r (or net.DefaultResolver, if r is nil) as a
// Resolver.
func NewSystemResolver(r *net.Resolver) Resolver {
	if r == nil {
		r = net.DefaultResolver
	}
	return &systemResolver{r: r}
}

func (s *systemResolver) Resolve(ctx context.Context, host string) ([]netip.Addr, error) {
	addrs, err := s.r.LookupNetIP(ctx, "ip", host)
	if err != nil {
		return nil, err
	}
	return addrs, nil
}

// overrideResolver pins a fixed set of hostnames to fixed address lists.
// Overridden lookups never reach the wrapped Resolver at all; names not
// present in the override table fall through to it unchanged. The port a
// caller eventually dials is always the one from the request URL — an
// override replaces only the address, never the port.
type overrideResolver struct {
	base      Resolver
	overrides map[string][]netip.Addr
}

// WithOverrides wraps base so that any lookup for a host in overrides is
// answered from the table instead of performing real resolution.
func WithOverrides(base Resolver, overrides map[string][]netip.Addr) Resolver {
	return &overrideResolver{base: base, overrides: overrides}
}

func (o *overrideResolver) Resolve(ctx context.Context, host string) ([]netip.Addr, error) {
	if addrs, ok := o.overrides[host]; ok {
		return addrs, nil
	}
	return o.base.Resolve(ctx, host)
}

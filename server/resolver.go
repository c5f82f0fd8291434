package server

import (
	"context"
	"net"
)

// Resolver is the reverse-DNS boundary a session uses to turn a peer's IP
// into a hostname before completing registration.
type Resolver interface {
	// ReverseLookup returns candidate names for ip. The session uses the
	// first one and falls back to the IP string itself on error or an
	// empty result.
	ReverseLookup(ctx context.Context, ip string) ([]string, error)
}

// netResolver is the production Resolver, backed by the standard
// resolver's PTR lookup.
type netResolver struct {
	resolver *net.Resolver
}

// NewResolver builds a Resolver using the process's default net.Resolver.
func NewResolver() Resolver {
	return netResolver{resolver: net.DefaultResolver}
}

func (r netResolver) ReverseLookup(ctx context.Context, ip string) ([]string, error) {
	names, err := r.resolver.LookupAddr(ctx, ip)
	if err != nil {
		return nil, err
	}
	for i, n := range names {
		names[i] = trimTrailingDot(n)
	}
	return names, nil
}

func trimTrailingDot(s string) string {
	if len(s) > 0 && s[len(s)-1] == '.' {
		return s[:len(s)-1]
	}
	return s
}

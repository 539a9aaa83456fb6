package netutil

import (
	"fmt"
	"net"
)

// ParseCIDRs parses the admin allow list. Unlike a silent skip, a bad entry
// is an error: a typo here would otherwise widen or close the gate unnoticed.
func ParseCIDRs(cidrs []string) ([]*net.IPNet, error) {
	out := make([]*net.IPNet, 0, len(cidrs))
	for _, s := range cidrs {
		_, n, err := net.ParseCIDR(s)
		if err != nil {
			return nil, fmt.Errorf("parse cidr %q: %w", s, err)
		}
		out = append(out, n)
	}
	return out, nil
}

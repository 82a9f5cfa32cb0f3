package ratelimit

import (
	"fmt"
	"net"
	"net/http"
	"strings"
)

// TrustedProxies decides when forwarded headers may name the client.
// A nil *TrustedProxies trusts no one.
type TrustedProxies struct {
	networks []*net.IPNet
}

// NewTrustedProxies parses CIDRs or bare IPs. A bare IP is a single-host network.
func NewTrustedProxies(entries []string) (*TrustedProxies, error) {
	tp := &TrustedProxies{}
	for _, entry := range entries {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		_, network, err := net.ParseCIDR(entry)
		if err != nil {
			ip := net.ParseIP(entry)
			if ip == nil {
				return nil, fmt.Errorf("invalid trusted proxy %q", entry)
			}
			bits := 128
			if ip.To4() != nil {
				ip, bits = ip.To4(), 32
			}
			network = &net.IPNet{IP: ip, Mask: net.CIDRMask(bits, bits)}
		}
		tp.networks = append(tp.networks, network)
	}
	return tp, nil
}

// IsTrusted reports whether ip is inside a trusted network.
func (tp *TrustedProxies) IsTrusted(ip net.IP) bool {
	if tp == nil || ip == nil {
		return false
	}
	for _, network := range tp.networks {
		if network.Contains(ip) {
			return true
		}
	}
	return false
}

// ClientIP returns the address rate limits are keyed on. Forwarded headers are only read
// when the direct peer is trusted. X-Forwarded-For is walked from the right and the first
// hop that is not itself a trusted proxy wins; X-Real-IP is the fallback.
func (tp *TrustedProxies) ClientIP(r *http.Request) string {
	peer := parseRemoteAddr(r.RemoteAddr)
	if peer == nil {
		return strings.TrimSpace(r.RemoteAddr)
	}
	if !tp.IsTrusted(peer) {
		return peer.String()
	}

	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		hops := strings.Split(xff, ",")
		for i := len(hops) - 1; i >= 0; i-- {
			ip := net.ParseIP(strings.TrimSpace(hops[i]))
			if ip == nil {
				break
			}
			if !tp.IsTrusted(ip) {
				return ip.String()
			}
		}
	}
	if ip := net.ParseIP(strings.TrimSpace(r.Header.Get("X-Real-IP"))); ip != nil {
		return ip.String()
	}
	return peer.String()
}

func parseRemoteAddr(addr string) net.IP {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return net.ParseIP(strings.TrimSpace(addr))
	}
	return net.ParseIP(host)
}

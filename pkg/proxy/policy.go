package proxy

import (
	"fmt"
	"net"
	"net/url"
	"strings"
)

// checkRequest validates a target URL against the protocol rules:
// http/https only, well-known ports only, and never the scrambler's own
// endpoint (which would loop forever).
func checkRequest(target *url.URL, ownHost, ownPath string, anyPort bool) error {
	if target.Hostname() == hostOnly(ownHost) && target.Path == ownPath {
		return fmt.Errorf("the scrambler cannot scramble itself")
	}

	if target.Scheme != "http" && target.Scheme != "https" {
		return fmt.Errorf("unsupported URL scheme: %q", target.Scheme)
	}

	port := target.Port()
	switch {
	case anyPort:
	case port == "":
	case target.Scheme == "http" && port == "80":
	case target.Scheme == "https" && port == "443":
	default:
		return fmt.Errorf("invalid port for URL scheme %q: %s", target.Scheme, port)
	}

	return nil
}

// allowed decides whether target may be scrambled. The default URL is
// always allowed; honeypot mode confines browsing to the serving host;
// otherwise the allowlist (serving host plus configured hosts) applies.
func allowed(target *url.URL, targetRaw, defaultURL, ownHost string, honeypot bool, allowlist []string) bool {
	if targetRaw == defaultURL {
		return true
	}

	hostname := target.Hostname()
	if honeypot {
		return hostname == hostOnly(ownHost)
	}

	if hostname == hostOnly(ownHost) {
		return true
	}
	for _, h := range allowlist {
		if strings.EqualFold(hostname, strings.TrimSpace(h)) {
			return true
		}
	}
	return false
}

// hostOnly strips any port from a host:port pair.
func hostOnly(host string) string {
	if h, _, err := net.SplitHostPort(host); err == nil {
		return h
	}
	return strings.Trim(host, "[]")
}

package discovery

import (
	"errors"
	"net"
	"net/url"
	"strings"
	"syscall"
)

var (
	// ErrInvalidURL is returned when the site URL cannot be parsed.
	ErrInvalidURL = errors.New("invalid URL format")
	// ErrInvalidScheme is returned for schemes other than http and https.
	ErrInvalidScheme = errors.New("only http and https URLs are allowed")
	// ErrEmptyHost is returned when the URL has no host.
	ErrEmptyHost = errors.New("URL must have a host")
	// ErrPrivateHost is returned when the site resolves to a private or loopback address.
	ErrPrivateHost = errors.New("private and loopback hosts are not allowed")
)

// BlockedCIDRs contains private/internal IP ranges the crawler never dials.
var BlockedCIDRs = []string{
	"10.0.0.0/8",
	"172.16.0.0/12",
	"192.168.0.0/16",
	"127.0.0.0/8",
	"100.64.0.0/10",  // Carrier-grade NAT
	"169.254.0.0/16", // Link-local, cloud metadata
	"0.0.0.0/8",      // This network
	"::1/128",        // IPv6 loopback
	"fc00::/7",       // IPv6 private
	"fe80::/10",      // IPv6 link-local
}

var blockedNetworks []*net.IPNet

func init() {
	for _, cidr := range BlockedCIDRs {
		_, network, err := net.ParseCIDR(cidr)
		if err == nil {
			blockedNetworks = append(blockedNetworks, network)
		}
	}
}

// ParseSiteURL parses a user-supplied site address. A missing scheme
// defaults to https. Hostnames that obviously point at the local machine
// or a private network are rejected unless allowPrivate is set.
func ParseSiteURL(raw string, allowPrivate bool) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, ErrInvalidURL
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return nil, ErrInvalidURL
	}

	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, ErrInvalidScheme
	}

	host := parsed.Hostname()
	if host == "" {
		return nil, ErrEmptyHost
	}

	if !allowPrivate {
		if isLocalhostHostname(host) {
			return nil, ErrPrivateHost
		}
		if ip := net.ParseIP(host); ip != nil && isBlockedIP(ip) {
			return nil, ErrPrivateHost
		}
	}

	return &url.URL{Scheme: parsed.Scheme, Host: strings.ToLower(parsed.Host)}, nil
}

// dialControl rejects connections to blocked addresses after DNS
// resolution, so redirects and rebinding cannot reach internal hosts.
func dialControl(network, address string, _ syscall.RawConn) error {
	host, _, err := net.SplitHostPort(address)
	if err != nil {
		return err
	}
	if ip := net.ParseIP(host); ip != nil && isBlockedIP(ip) {
		return ErrPrivateHost
	}
	return nil
}

// isLocalhostHostname checks if hostname is localhost variant.
func isLocalhostHostname(host string) bool {
	host = strings.ToLower(host)
	return host == "localhost" ||
		strings.HasSuffix(host, ".localhost") ||
		strings.HasSuffix(host, ".local") ||
		strings.HasSuffix(host, ".internal")
}

// isBlockedIP checks if IP is in any blocked CIDR range.
func isBlockedIP(ip net.IP) bool {
	for _, network := range blockedNetworks {
		if network.Contains(ip) {
			return true
		}
	}
	return false
}

// sameSite reports whether two hosts belong to the same site, treating
// the www. prefix as insignificant.
func sameSite(a, b string) bool {
	return strings.TrimPrefix(strings.ToLower(a), "www.") == strings.TrimPrefix(strings.ToLower(b), "www.")
}

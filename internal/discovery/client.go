package discovery

import (
	"errors"
	"net"
	"net/http"
	"time"
)

const (
	// DialTimeout is the connection timeout.
	DialTimeout = 2 * time.Second
	// TLSHandshakeTimeout is the TLS negotiation timeout.
	TLSHandshakeTimeout = 2 * time.Second
	// maxRedirects bounds redirect chains per fetch.
	maxRedirects = 5
)

var errTooManyRedirects = errors.New("too many redirects")

// NewHTTPClient creates an HTTP client configured for crawling.
// Per-request deadlines come from the caller's context. Unless
// allowPrivate is set, connections to private and loopback addresses are
// refused at dial time.
func NewHTTPClient(allowPrivate bool) *http.Client {
	dialer := &net.Dialer{
		Timeout:   DialTimeout,
		KeepAlive: 30 * time.Second,
	}
	if !allowPrivate {
		dialer.Control = dialControl
	}

	return &http.Client{
		Transport: &http.Transport{
			Proxy:                 http.ProxyFromEnvironment,
			DialContext:           dialer.DialContext,
			TLSHandshakeTimeout:   TLSHandshakeTimeout,
			ResponseHeaderTimeout: 3 * time.Second,
			MaxIdleConns:          50,
			MaxIdleConnsPerHost:   10,
			IdleConnTimeout:       30 * time.Second,
		},
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return errTooManyRedirects
			}
			if req.URL.Scheme != "http" && req.URL.Scheme != "https" {
				return http.ErrUseLastResponse
			}
			return nil
		},
	}
}

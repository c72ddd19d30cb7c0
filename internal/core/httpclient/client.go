// Package httpclient configures the HTTP client used to call upstream services.
package httpclient

import (
	"net"
	"net/http"
	"time"
)

type userAgentTransport struct {
	base http.RoundTripper
	ua   string
}

func (t *userAgentTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	if r.Header.Get("User-Agent") == "" {
		r = r.Clone(r.Context())
		r.Header.Set("User-Agent", t.ua)
	}
	return t.base.RoundTrip(r)
}

// NewOutbound creates a new outbound http client. timeout bounds a whole request
// including the body read; userAgent is set on requests that carry none.
func NewOutbound(timeout time.Duration, userAgent string) *http.Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	var transport http.RoundTripper = &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           (&net.Dialer{Timeout: 10 * time.Second, KeepAlive: 30 * time.Second}).DialContext,
		MaxIdleConns:          16,
		MaxIdleConnsPerHost:   4,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
	if userAgent != "" {
		transport = &userAgentTransport{base: transport, ua: userAgent}
	}
	return &http.Client{
		Transport: transport,
		Timeout:   timeout,
	}
}

package connection

import (
	"net"
	"net/http"
	"time"
)

const DefaultUserAgent = "Rizzle"

// Doer is the part of *http.Client used by the gateway and the player. Tests substitute their own.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Metadata is what every outbound request carries for the session. LicenseToken is empty until login completes.
type Metadata struct {
	SessionID    string
	AccountToken string
	LicenseToken string
}

// Decorate sets the headers and cookies the gateway expects on req.
func Decorate(req *http.Request, userAgent string, md Metadata) {
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}

	req.Header.Set("Accept", "*/*")
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Connection", "keep-alive")
	req.Header.Set("DNT", "1")

	if md.SessionID != "" {
		req.AddCookie(&http.Cookie{Name: "sid", Value: md.SessionID})
	}
	if md.AccountToken != "" {
		req.AddCookie(&http.Cookie{Name: "arl", Value: md.AccountToken})
	}
	if md.LicenseToken != "" {
		req.Header.Set("X-License-Token", md.LicenseToken)
	}
}

// NewHTTPClient returns a client for the gateway and the CDN. A zero timeout means none; streams are long lived,
// so the timeout should only be set by callers that know their downloads are short.
func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Transport: NewTransport(),
		Timeout:   timeout,
	}
}

func NewTransport() *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          16,
		MaxIdleConnsPerHost:   4,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		ResponseHeaderTimeout: 30 * time.Second,
	}
}

// CloseIdle releases the idle connections of doer when it supports it.
func CloseIdle(doer Doer) {
	if c, ok := doer.(interface{ CloseIdleConnections() }); ok {
		c.CloseIdleConnections()
	}
}

// Package network provides the shared HTTP clients used for catalog retrieval and stream validation.
package network

import (
	"net/http"
	"time"
)

// Client is the HTTP client shared by the catalog and listing fetchers.
// Per-request deadlines are carried by contexts, the client timeout is only a backstop.
var Client = &http.Client{
	Timeout:   time.Minute,
	Transport: newTransport(),
}

func newTransport() *http.Transport {
	t := http.DefaultTransport.(*http.Transport).Clone()
	t.MaxIdleConns = 100
	t.MaxIdleConnsPerHost = 16
	t.MaxConnsPerHost = 32
	t.IdleConnTimeout = 30 * time.Second
	t.ResponseHeaderTimeout = 30 * time.Second
	t.ExpectContinueTimeout = time.Second
	return t
}

// NewClient returns a client with the given timeout.
// When fingerprint is set, HTTPS requests are sent with a Chrome TLS Client Hello.
func NewClient(timeout time.Duration, fingerprint bool) *http.Client {
	if !fingerprint {
		return &http.Client{Timeout: timeout, Transport: Client.Transport}
	}

	return &http.Client{
		Timeout:   timeout,
		Transport: NewFingerprintTransport(timeout),
	}
}

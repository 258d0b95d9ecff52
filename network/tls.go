package network

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	utls "github.com/refraction-networking/utls"
	"golang.org/x/net/http2"
)

// FingerprintTransport is an http.RoundTripper that performs TLS handshakes with
// a Chrome 120 Client Hello. HTTP/2 is tried first, servers that refuse it are
// retried over HTTP/1.1. Plain HTTP requests use the shared transport.
type FingerprintTransport struct {
	dialTimeout time.Duration

	h2Once sync.Once
	h2     *http2.Transport
	h1     *http.Transport
}

// NewFingerprintTransport creates a transport whose dials give up after dialTimeout.
func NewFingerprintTransport(dialTimeout time.Duration) *FingerprintTransport {
	t := &FingerprintTransport{dialTimeout: dialTimeout}
	t.h1 = &http.Transport{
		DialTLSContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
			return t.dial(ctx, network, addr, []string{"http/1.1"})
		},
		MaxIdleConnsPerHost: 4,
		IdleConnTimeout:     30 * time.Second,
	}
	return t
}

func (t *FingerprintTransport) h2Transport() *http2.Transport {
	t.h2Once.Do(func() {
		t.h2 = &http2.Transport{
			DialTLSContext: func(ctx context.Context, network, addr string, _ *tls.Config) (net.Conn, error) {
				return t.dial(ctx, network, addr, nil)
			},
		}
	})
	return t.h2
}

// RoundTrip implements http.RoundTripper.
func (t *FingerprintTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.URL.Scheme != "https" {
		return Client.Transport.RoundTrip(req)
	}

	resp, err := t.h2Transport().RoundTrip(req)
	if err == nil {
		return resp, nil
	}

	if req.Body != nil && req.GetBody == nil {
		return nil, err
	}

	retry := req.Clone(req.Context())
	if req.GetBody != nil {
		body, bodyErr := req.GetBody()
		if bodyErr != nil {
			return nil, bodyErr
		}
		retry.Body = body
	}

	return t.h1.RoundTrip(retry)
}

// dial opens a TCP connection and completes a Chrome-like handshake.
// A nil protos keeps the Client Hello's own ALPN list of h2 and http/1.1.
func (t *FingerprintTransport) dial(ctx context.Context, network, addr string, protos []string) (net.Conn, error) {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		host = addr
	}

	dialer := &net.Dialer{Timeout: t.dialTimeout}
	conn, err := dialer.DialContext(ctx, network, addr)
	if err != nil {
		return nil, err
	}

	tlsConn := utls.UClient(conn, &utls.Config{
		ServerName: host,
		MinVersion: tls.VersionTLS12,
		NextProtos: protos,
	}, utls.HelloChrome_120)

	if err := tlsConn.HandshakeContext(ctx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("tls handshake: %w", err)
	}

	return tlsConn, nil
}

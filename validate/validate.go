// Package validate checks that captured playlist URLs are reachable from outside the browser.
package validate

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/samber/lo"
	"github.com/streamcap/streamcap/constant"
	"github.com/streamcap/streamcap/log"
	"github.com/streamcap/streamcap/network"
	"github.com/streamcap/streamcap/stream"
	"golang.org/x/sync/errgroup"
)

// Validator issues one short request per captured URL, presenting the embed page as referer.
type Validator struct {
	Client      *http.Client
	Timeout     time.Duration
	Concurrency int
	UserAgent   string
}

// New returns a validator. With fingerprint set, HTTPS checks use a Chrome TLS handshake.
func New(timeout time.Duration, concurrency int, fingerprint bool) *Validator {
	return &Validator{
		Client:      network.NewClient(timeout, fingerprint),
		Timeout:     timeout,
		Concurrency: concurrency,
		UserAgent:   constant.UserAgent,
	}
}

// Accepts reports whether a status proves the resource exists.
// A 403 counts: some origins refuse direct fetches yet serve the real player.
func Accepts(status int) bool {
	return status == http.StatusOK || status == http.StatusForbidden
}

// Check requests target as if sent from referer and returns the response status.
// A non-nil error means the URL is rejected.
func (v *Validator) Check(ctx context.Context, target, referer string) (int, error) {
	if v.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, v.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return 0, err
	}

	req.Header.Set("User-Agent", v.UserAgent)
	if referer != "" {
		req.Header.Set("Referer", referer)
		if origin := Origin(referer); origin != "" {
			req.Header.Set("Origin", origin)
		}
	}

	client := v.Client
	if client == nil {
		client = network.Client
	}

	resp, err := client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	if !Accepts(resp.StatusCode) {
		return resp.StatusCode, fmt.Errorf("status %d", resp.StatusCode)
	}
	return resp.StatusCode, nil
}

// Origin derives scheme://host from a URL, or "" when it has neither.
func Origin(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ""
	}
	return u.Scheme + "://" + u.Host
}

// Resolve turns a successful capture into an entry.
//
// Accepted URLs are kept in capture order as validated when at least one of
// them answered 200. A 403 shows the resource exists but not that it plays
// without the embed page, so a capture accepted only through 403s, like one
// with no accepted URL at all, is kept whole as unvalidated.
func (v *Validator) Resolve(ctx context.Context, result stream.CaptureResult) stream.Entry {
	statuses := make([]int, len(result.URLs))
	entry := log.With(map[string]any{"candidate": result.Candidate.Name})

	var g errgroup.Group
	g.SetLimit(max(v.Concurrency, 1))
	for i, u := range result.URLs {
		g.Go(func() error {
			status, err := v.Check(ctx, u, result.Candidate.EntryURL)
			if err != nil {
				entry.Debugf("rejected %s: %v", u, err)
				return nil
			}
			statuses[i] = status
			return nil
		})
	}
	_ = g.Wait()

	if lo.Contains(statuses, http.StatusOK) {
		valid := lo.Filter(result.URLs, func(_ string, i int) bool { return Accepts(statuses[i]) })
		return stream.Entry{Candidate: result.Candidate, URLs: valid, Status: stream.StatusValidated}
	}

	entry.Info("no captured URL confirmed, keeping capture unvalidated")
	return Unvalidated(result)
}

// Unvalidated keeps a capture as is.
func Unvalidated(result stream.CaptureResult) stream.Entry {
	return stream.Entry{
		Candidate: result.Candidate,
		URLs:      append([]string(nil), result.URLs...),
		Status:    stream.StatusUnvalidated,
	}
}

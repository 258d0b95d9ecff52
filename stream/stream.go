// Package stream holds the values that flow through a capture run.
package stream

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/samber/mo"
)

// Source tells where a candidate was discovered.
type Source string

const (
	SourceCatalog Source = "catalog"
	SourceLive    Source = "live"
)

// Candidate is one discoverable stream source awaiting capture.
// Candidates are values and are never mutated once built.
type Candidate struct {
	Identity    string
	Name        string
	EntryURL    string
	Category    string
	RawCategory string
	ScheduledAt mo.Option[time.Time]
	Poster      mo.Option[string]
	AlwaysLive  bool
	LiveNow     bool
	Source      Source
}

// Identity derives the stable key of a candidate from its name, category and entry URL.
func Identity(name, category, entryURL string) string {
	h := sha256.New()
	h.Write([]byte(strings.ToLower(strings.TrimSpace(name))))
	h.Write([]byte{0})
	h.Write([]byte(category))
	h.Write([]byte{0})
	h.Write([]byte(entryURL))
	return hex.EncodeToString(h.Sum(nil))[:16]
}

// DedupeKey is the (name, category) pair under which candidates collapse in the playlist.
func (c Candidate) DedupeKey() string {
	return strings.ToLower(strings.TrimSpace(c.Name)) + "\x00" + c.Category
}

// Unix returns the scheduled start as epoch seconds, zero when unscheduled.
func (c Candidate) Unix() int64 {
	if t, ok := c.ScheduledAt.Get(); ok {
		return t.Unix()
	}
	return 0
}

// Phase is one sweep of the capture scheduler.
type Phase string

const (
	PhaseInitial Phase = "initial"
	PhaseRetry   Phase = "retry"
)

// CaptureResult is the outcome of one attempt against one candidate.
type CaptureResult struct {
	Candidate Candidate
	// URLs are distinct, in discovery order. The first one is preferred.
	URLs  []string
	Phase Phase
	// Err is kept for diagnostics only.
	Err error
}

// Succeeded reports whether at least one URL was observed.
func (r CaptureResult) Succeeded() bool {
	return len(r.URLs) > 0
}

// Status describes how much an entry's URLs can be trusted.
type Status string

const (
	StatusValidated   Status = "validated"
	StatusUnvalidated Status = "fallback-unvalidated"
	StatusSynthesized Status = "synthesized"
)

// Entry is a candidate joined with at least one usable URL.
type Entry struct {
	Candidate Candidate
	URLs      []string
	Status    Status
}

// Primary returns the URL written as the playable address.
func (e Entry) Primary() string {
	if len(e.URLs) == 0 {
		return ""
	}
	return e.URLs[0]
}

// Package capture runs candidates through two capture sweeps: a fast one over
// everything, then a patient one over what the first sweep missed.
package capture

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/samber/lo"
	"github.com/streamcap/streamcap/log"
	"github.com/streamcap/streamcap/stream"
	"golang.org/x/sync/errgroup"
)

// Capturer discovers playlist URLs for one candidate within wait.
type Capturer interface {
	Capture(ctx context.Context, c stream.Candidate, wait time.Duration) ([]string, error)
}

// Phase bounds one sweep.
type Phase struct {
	Wait        time.Duration
	Concurrency int
}

// Scheduler drives the initial and retry sweeps.
type Scheduler struct {
	Capturer Capturer
	Initial  Phase
	Retry    Phase
	// OnResult, when set, is called once per finished attempt. Calls may be concurrent.
	OnResult func(stream.CaptureResult)
	// Fatal, when set, marks attempt errors that no other candidate can
	// escape, such as a browser that never started. The first one stops
	// both sweeps and is reported in Report.Err.
	Fatal func(error) bool
}

// DefaultInitial and DefaultRetry trade throughput for patience.
var (
	DefaultInitial = Phase{Wait: 8 * time.Second, Concurrency: 3}
	DefaultRetry   = Phase{Wait: 15 * time.Second, Concurrency: 2}
)

// Report holds the attempts of both sweeps, each in input order.
type Report struct {
	Initial []stream.CaptureResult
	Retry   []stream.CaptureResult
	// Err is the first fatal attempt error. The results are incomplete when it is set.
	Err error
}

// Captured returns every successful attempt, in input order.
func (r Report) Captured() []stream.CaptureResult {
	var out []stream.CaptureResult
	r.walk(func(res stream.CaptureResult) {
		if res.Succeeded() {
			out = append(out, res)
		}
	})
	return out
}

// Failed returns the candidates that captured nothing in either sweep, in input order.
func (r Report) Failed() []stream.Candidate {
	var out []stream.Candidate
	r.walk(func(res stream.CaptureResult) {
		if !res.Succeeded() {
			out = append(out, res.Candidate)
		}
	})
	return out
}

// Final returns the last attempt of every candidate, in input order.
func (r Report) Final() []stream.CaptureResult {
	out := make([]stream.CaptureResult, 0, len(r.Initial))
	r.walk(func(res stream.CaptureResult) {
		out = append(out, res)
	})
	return out
}

// walk visits the final attempt of every candidate. The retry sweep lists the
// initial misses in their original order, so they pair up positionally.
func (r Report) walk(visit func(stream.CaptureResult)) {
	k := 0
	for _, res := range r.Initial {
		if !res.Succeeded() && k < len(r.Retry) {
			res = r.Retry[k]
			k++
		}
		visit(res)
	}
}

// Run performs the initial sweep over candidates and, once it has fully
// drained, the retry sweep over exactly the candidates it left empty.
func (s *Scheduler) Run(ctx context.Context, candidates []stream.Candidate) Report {
	var report Report

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var mu sync.Mutex
	abort := func(err error) {
		mu.Lock()
		defer mu.Unlock()
		if report.Err == nil {
			report.Err = err
			log.Errorf("Capture aborted: %v", err)
		}
		cancel()
	}

	report.Initial = s.sweep(ctx, candidates, stream.PhaseInitial, s.Initial, abort)

	misses := lo.FilterMap(report.Initial, func(res stream.CaptureResult, _ int) (stream.Candidate, bool) {
		return res.Candidate, !res.Succeeded()
	})
	log.Infof("Initial sweep captured %d of %d, retrying %d", len(candidates)-len(misses), len(candidates), len(misses))

	if len(misses) > 0 && ctx.Err() == nil {
		report.Retry = s.sweep(ctx, misses, stream.PhaseRetry, s.Retry, abort)
	}

	return report
}

func (s *Scheduler) sweep(ctx context.Context, candidates []stream.Candidate, phase stream.Phase, bounds Phase, abort func(error)) []stream.CaptureResult {
	results := make([]stream.CaptureResult, len(candidates))

	var g errgroup.Group
	g.SetLimit(max(bounds.Concurrency, 1))

	for i, c := range candidates {
		results[i] = stream.CaptureResult{Candidate: c, Phase: phase}

		if ctx.Err() != nil {
			results[i].Err = ctx.Err()
			continue
		}

		g.Go(func() error {
			results[i] = s.attempt(ctx, c, phase, bounds.Wait)
			if err := results[i].Err; err != nil && s.Fatal != nil && s.Fatal(err) {
				abort(err)
			}
			if s.OnResult != nil {
				s.OnResult(results[i])
			}
			return nil
		})
	}

	_ = g.Wait()
	return results
}

// attempt isolates one candidate: errors and panics become an empty result.
func (s *Scheduler) attempt(ctx context.Context, c stream.Candidate, phase stream.Phase, wait time.Duration) (res stream.CaptureResult) {
	res = stream.CaptureResult{Candidate: c, Phase: phase}
	entry := log.With(map[string]any{"candidate": c.Name, "phase": phase})

	defer func() {
		if r := recover(); r != nil {
			res.URLs = nil
			res.Err = fmt.Errorf("capture panic: %v", r)
			entry.Error(res.Err)
		}
	}()

	if err := ctx.Err(); err != nil {
		res.Err = err
		return res
	}

	urls, err := s.Capturer.Capture(ctx, c, wait)
	res.URLs = lo.Uniq(lo.Compact(urls))
	res.Err = err

	switch {
	case res.Succeeded():
		entry.Infof("captured %s", res.URLs[0])
	case err != nil:
		entry.Debugf("nothing captured: %v", err)
	default:
		entry.Debug("nothing captured")
	}

	return res
}

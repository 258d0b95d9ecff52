// Package pipeline wires one run: catalog, capture, validation, fallback and playlist output.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/streamcap/streamcap/browser"
	"github.com/streamcap/streamcap/capture"
	"github.com/streamcap/streamcap/catalog"
	"github.com/streamcap/streamcap/fallback"
	"github.com/streamcap/streamcap/log"
	"github.com/streamcap/streamcap/playlist"
	"github.com/streamcap/streamcap/stream"
	"github.com/streamcap/streamcap/validate"
	"golang.org/x/sync/errgroup"
)

// resolveConcurrency bounds how many candidates are validated at once.
const resolveConcurrency = 4

// CatalogSource provides the upstream catalog.
type CatalogSource interface {
	Fetch(ctx context.Context) (*catalog.Response, error)
}

// Lister provides supplementary candidates. Failures are its own business.
type Lister interface {
	List(ctx context.Context) []stream.Candidate
}

// Stage names a step of a run for progress reporting.
type Stage string

const (
	StageCatalog  Stage = "catalog"
	StageCapture  Stage = "capture"
	StageValidate Stage = "validate"
	StageWrite    Stage = "write"
)

// Pipeline holds the collaborators of a run.
type Pipeline struct {
	Catalog     CatalogSource
	Live        Lister
	Scheduler   *capture.Scheduler
	Validator   *validate.Validator
	Synthesizer *fallback.Synthesizer
	Renderer    *playlist.Renderer

	AlwaysLive []string
	Filter     string
	Sort       bool
	Output     string

	// OnStage, when set, is told when a step starts and how many items it covers.
	OnStage func(stage Stage, n int)
	Now     func() time.Time
}

// Summary reports the outcome of a run.
type Summary struct {
	Candidates      int           `json:"candidates" jsonschema:"description=Candidates scheduled for capture"`
	CapturedInitial int           `json:"captured_initial" jsonschema:"description=Candidates captured by the initial sweep"`
	CapturedRetry   int           `json:"captured_retry" jsonschema:"description=Candidates captured by the retry sweep"`
	Validated       int           `json:"validated" jsonschema:"description=Entries with a URL confirmed by a direct request"`
	Unvalidated     int           `json:"unvalidated" jsonschema:"description=Entries kept with their unconfirmed captured URLs"`
	Synthesized     int           `json:"synthesized" jsonschema:"description=Entries with a guessed URL"`
	Dropped         int           `json:"dropped" jsonschema:"description=Candidates left out of the playlist"`
	Written         int           `json:"written" jsonschema:"description=Entries written after deduplication"`
	Output          string        `json:"output,omitempty" jsonschema:"description=Path of the written playlist"`
	Elapsed         time.Duration `json:"elapsed" jsonschema:"description=Run duration in nanoseconds"`
}

// FatalCapture reports capture errors that end the run instead of a single
// candidate: without a browser every attempt would come back empty and the
// playlist would be rebuilt from guesses alone.
func FatalCapture(err error) bool {
	return errors.Is(err, browser.ErrLaunch)
}

// Resolved is the number of candidates that ended up with a playable URL.
func (s Summary) Resolved() int {
	return s.Validated + s.Unvalidated + s.Synthesized
}

func (p *Pipeline) stage(stage Stage, n int) {
	log.Infof("Stage %s: %d", stage, n)
	if p.OnStage != nil {
		p.OnStage(stage, n)
	}
}

func (p *Pipeline) now() time.Time {
	if p.Now != nil {
		return p.Now()
	}
	return time.Now()
}

// Run executes the pipeline. Only a catalog failure, cancellation or an output
// error is returned; every per-candidate problem is absorbed.
func (p *Pipeline) Run(ctx context.Context) (Summary, error) {
	started := time.Now()
	var summary Summary

	p.stage(StageCatalog, 0)
	raw, err := p.Catalog.Fetch(ctx)
	if err != nil {
		summary.Elapsed = time.Since(started)
		return summary, err
	}

	candidates := catalog.Filter(catalog.Normalize(raw, p.now(), p.AlwaysLive), p.Filter)
	if p.Live != nil {
		candidates = append(candidates, catalog.Filter(p.Live.List(ctx), p.Filter)...)
	}

	summary.Candidates = len(candidates)
	if len(candidates) == 0 {
		log.Info("No candidates, nothing to capture")
		summary.Elapsed = time.Since(started)
		return summary, nil
	}

	p.stage(StageCapture, len(candidates))
	report := p.Scheduler.Run(ctx, candidates)
	if report.Err != nil {
		summary.Elapsed = time.Since(started)
		return summary, fmt.Errorf("capture: %w", report.Err)
	}
	if err := ctx.Err(); err != nil {
		summary.Elapsed = time.Since(started)
		return summary, err
	}

	for _, res := range report.Initial {
		if res.Succeeded() {
			summary.CapturedInitial++
		}
	}
	for _, res := range report.Retry {
		if res.Succeeded() {
			summary.CapturedRetry++
		}
	}

	p.stage(StageValidate, summary.CapturedInitial+summary.CapturedRetry)
	entries := p.resolve(ctx, report.Final(), &summary)

	entries = playlist.Dedupe(entries)
	if p.Sort {
		entries = playlist.SortBySchedule(entries)
	}

	p.stage(StageWrite, len(entries))
	if err := playlist.Write(p.Output, p.Renderer.Render(entries)); err != nil {
		summary.Elapsed = time.Since(started)
		return summary, err
	}

	summary.Written = len(entries)
	summary.Output = p.Output
	summary.Elapsed = time.Since(started)
	return summary, nil
}

// resolve maps every final attempt to an entry, keeping input order.
// Failed attempts that cannot be synthesized are dropped.
func (p *Pipeline) resolve(ctx context.Context, final []stream.CaptureResult, summary *Summary) []stream.Entry {
	resolved := make([]*stream.Entry, len(final))

	var g errgroup.Group
	g.SetLimit(resolveConcurrency)
	for i, res := range final {
		g.Go(func() error {
			e, ok := p.entry(ctx, res)
			if ok {
				resolved[i] = &e
			}
			return nil
		})
	}
	_ = g.Wait()

	entries := make([]stream.Entry, 0, len(final))
	for i, e := range resolved {
		if e == nil {
			summary.Dropped++
			log.Infof("Dropped %s: nothing captured and no fallback", final[i].Candidate.Name)
			continue
		}

		switch e.Status {
		case stream.StatusValidated:
			summary.Validated++
		case stream.StatusUnvalidated:
			summary.Unvalidated++
		case stream.StatusSynthesized:
			summary.Synthesized++
		}
		entries = append(entries, *e)
	}
	return entries
}

func (p *Pipeline) entry(ctx context.Context, res stream.CaptureResult) (stream.Entry, bool) {
	if res.Succeeded() {
		if p.Validator == nil {
			return validate.Unvalidated(res), true
		}
		return p.Validator.Resolve(ctx, res), true
	}

	if p.Synthesizer == nil {
		return stream.Entry{}, false
	}
	return p.Synthesizer.Entry(res.Candidate).Get()
}

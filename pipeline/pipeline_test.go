package pipeline

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/samber/lo"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/streamcap/streamcap/browser"
	"github.com/streamcap/streamcap/capture"
	"github.com/streamcap/streamcap/catalog"
	"github.com/streamcap/streamcap/constant"
	"github.com/streamcap/streamcap/fallback"
	"github.com/streamcap/streamcap/filesystem"
	"github.com/streamcap/streamcap/playlist"
	"github.com/streamcap/streamcap/stream"
	"github.com/streamcap/streamcap/validate"
)

func init() {
	filesystem.SetMemMapFs()
}

var now = time.Unix(1_700_000_000, 0)

type stubCapturer struct {
	mu    sync.Mutex
	calls int
	urls  map[string][]string
	// err, when set, fails every attempt.
	err error
}

func (s *stubCapturer) Capture(_ context.Context, c stream.Candidate, _ time.Duration) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	if urls, ok := s.urls[c.EntryURL]; ok {
		return urls, nil
	}
	return nil, errors.New("no playlist request observed")
}

type stubLister []stream.Candidate

func (l stubLister) List(context.Context) []stream.Candidate { return l }

func catalogServer(status int, body string) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
}

func mediaServer() *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasPrefix(r.URL.Path, "/forbidden"):
			w.WriteHeader(http.StatusForbidden)
		case strings.HasPrefix(r.URL.Path, "/ok"):
			_, _ = w.Write([]byte("#EXTM3U"))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

func build(catalogURL string, capturer capture.Capturer, output string) *Pipeline {
	fast := capture.Phase{Wait: time.Millisecond, Concurrency: 3}
	return &Pipeline{
		Catalog:     catalog.NewClient(catalogURL),
		Scheduler:   &capture.Scheduler{Capturer: capturer, Initial: fast, Retry: fast, Fatal: FatalCapture},
		Validator:   validate.New(time.Second, 2, false),
		Synthesizer: fallback.New(""),
		Renderer:    playlist.NewRenderer("ppv-", false),
		AlwaysLive:  []string{constant.AlwaysLiveCategory},
		Output:      output,
		Now:         func() time.Time { return now },
	}
}

func read(path string) string {
	return string(lo.Must(filesystem.API().ReadFile(path)))
}

func TestRun(t *testing.T) {
	ctx := context.Background()

	Convey("Scenario: a started match whose playlist answers 403", t, func() {
		media := mediaServer()
		defer media.Close()

		cat := catalogServer(http.StatusOK, fmt.Sprintf(`{"streams":[{"category":"Football","streams":[
			{"name":"Match A","iframe":"https://ppv.to/embed/match-a","starts_at":%d}
		]}]}`, now.Unix()-60))
		defer cat.Close()

		capturer := &stubCapturer{urls: map[string][]string{
			"https://ppv.to/embed/match-a": {media.URL + "/forbidden/a.m3u8"},
		}}
		p := build(cat.URL, capturer, "/runs/match-a.m3u8")

		var stages []Stage
		p.OnStage = func(s Stage, _ int) { stages = append(stages, s) }

		summary, err := p.Run(ctx)
		So(err, ShouldBeNil)

		Convey("The entry is written under Live Now, tagged unvalidated, with the captured URL", func() {
			text := read("/runs/match-a.m3u8")
			So(text, ShouldContainSubstring, `group-title="PPVLand - Live Now" tvg-status="unvalidated"`)
			So(text, ShouldContainSubstring, "\n"+media.URL+"/forbidden/a.m3u8\n")
		})

		Convey("The summary counts it", func() {
			So(summary.Candidates, ShouldEqual, 1)
			So(summary.CapturedInitial, ShouldEqual, 1)
			So(summary.Unvalidated, ShouldEqual, 1)
			So(summary.Written, ShouldEqual, 1)
			So(summary.Resolved(), ShouldEqual, 1)
			So(summary.Output, ShouldEqual, "/runs/match-a.m3u8")
		})

		Convey("Every stage is reported", func() {
			So(stages, ShouldResemble, []Stage{StageCatalog, StageCapture, StageValidate, StageWrite})
		})
	})

	Convey("Scenario: two entries with the same name and category", t, func() {
		media := mediaServer()
		defer media.Close()

		cat := catalogServer(http.StatusOK, `{"streams":[{"category":"Darts","streams":[
			{"name":"Final","iframe":"https://ppv.to/embed/final-1"},
			{"name":"final ","iframe":"https://ppv.to/embed/final-2"}
		]}]}`)
		defer cat.Close()

		capturer := &stubCapturer{urls: map[string][]string{
			"https://ppv.to/embed/final-1": {media.URL + "/ok/1.m3u8"},
			"https://ppv.to/embed/final-2": {media.URL + "/ok/2.m3u8"},
		}}

		summary, err := build(cat.URL, capturer, "/runs/dupes.m3u8").Run(ctx)
		So(err, ShouldBeNil)

		Convey("Exactly one record is written, the first encountered", func() {
			text := read("/runs/dupes.m3u8")
			So(strings.Count(text, "#EXTINF"), ShouldEqual, 1)
			So(text, ShouldContainSubstring, media.URL+"/ok/1.m3u8")
			So(text, ShouldNotContainSubstring, media.URL+"/ok/2.m3u8")
			So(summary.Validated, ShouldEqual, 2)
			So(summary.Written, ShouldEqual, 1)
		})
	})

	Convey("Scenario: the catalog answers 500", t, func() {
		cat := catalogServer(http.StatusInternalServerError, "")
		defer cat.Close()

		capturer := &stubCapturer{}
		summary, err := build(cat.URL, capturer, "/runs/broken.m3u8").Run(ctx)

		Convey("The run fails without capturing or writing anything", func() {
			So(errors.Is(err, catalog.ErrUnavailable), ShouldBeTrue)
			So(capturer.calls, ShouldEqual, 0)
			So(summary.Written, ShouldEqual, 0)
			So(lo.Must(filesystem.API().Exists("/runs/broken.m3u8")), ShouldBeFalse)
		})
	})

	Convey("Scenario: candidates nothing was captured for", t, func() {
		cat := catalogServer(http.StatusOK, `{"streams":[{"category":"Basketball","streams":[
			{"name":"Finals","iframe":"https://ppv.to/live/nba-finals/77"},
			{"name":"Preseason","iframe":"https://ppv.to/watch?id=abc"}
		]}]}`)
		defer cat.Close()

		capturer := &stubCapturer{}
		summary, err := build(cat.URL, capturer, "/runs/synth.m3u8").Run(ctx)
		So(err, ShouldBeNil)

		Convey("Both sweeps were tried", func() {
			So(capturer.calls, ShouldEqual, 4)
		})

		Convey("The matching one gets a tagged guess, the other is absent", func() {
			text := read("/runs/synth.m3u8")
			So(text, ShouldContainSubstring, `tvg-status="synthesized"`)
			So(text, ShouldContainSubstring, "https://gg.poocloud.in/nba-finals/index.m3u8")
			So(text, ShouldNotContainSubstring, "Preseason")
			So(summary.Synthesized, ShouldEqual, 1)
			So(summary.Dropped, ShouldEqual, 1)
		})
	})

	Convey("Scenario: an empty catalog", t, func() {
		cat := catalogServer(http.StatusOK, `{"streams":[]}`)
		defer cat.Close()

		capturer := &stubCapturer{}
		summary, err := build(cat.URL, capturer, "/runs/empty.m3u8").Run(ctx)

		Convey("The run ends cleanly without output", func() {
			So(err, ShouldBeNil)
			So(summary.Candidates, ShouldEqual, 0)
			So(capturer.calls, ShouldEqual, 0)
			So(lo.Must(filesystem.API().Exists("/runs/empty.m3u8")), ShouldBeFalse)
		})
	})

	Convey("Scenario: a live listing, a filter and disabled validation", t, func() {
		cat := catalogServer(http.StatusOK, `{"streams":[{"category":"Ice Hockey","streams":[
			{"name":"Rangers vs Bruins","iframe":"https://ppv.to/embed/nhl-1"},
			{"name":"Oilers vs Flames","iframe":"https://ppv.to/embed/nhl-2"}
		]}]}`)
		defer cat.Close()

		capturer := &stubCapturer{urls: map[string][]string{
			"https://ppv.to/embed/nhl-1":           {"https://cdn.example/nhl-1.m3u8"},
			"https://sharkstreams.net/p?channel=9": {"https://cdn.example/ch9.m3u8"},
		}}
		p := build(cat.URL, capturer, "/runs/live.m3u8")
		p.Validator = nil
		p.Filter = "rangers"
		p.Live = stubLister{
			{Name: "Rangers TV", EntryURL: "https://sharkstreams.net/p?channel=9", Category: constant.LiveNow},
			{Name: "Other", EntryURL: "https://sharkstreams.net/p?channel=1", Category: constant.LiveNow},
		}

		summary, err := p.Run(ctx)
		So(err, ShouldBeNil)

		Convey("Only matching candidates from both sources run, catalog first", func() {
			So(summary.Candidates, ShouldEqual, 2)
			text := read("/runs/live.m3u8")
			So(strings.Index(text, "Rangers vs Bruins"), ShouldBeLessThan, strings.Index(text, "Rangers TV"))
			So(text, ShouldNotContainSubstring, "Oilers")
		})

		Convey("Captures are kept unvalidated", func() {
			So(summary.Unvalidated, ShouldEqual, 2)
			So(summary.Validated, ShouldEqual, 0)
		})
	})

	Convey("Scenario: the browser never starts", t, func() {
		cat := catalogServer(http.StatusOK, `{"streams":[{"category":"Basketball","streams":[
			{"name":"Finals","iframe":"https://ppv.to/live/nba-finals/77"},
			{"name":"Semis","iframe":"https://ppv.to/live/nba-semis/78"}
		]}]}`)
		defer cat.Close()

		path := "/runs/previous.m3u8"
		lo.Must0(filesystem.API().WriteFile(path, []byte("#EXTM3U\nPREVIOUS GOOD\n"), 0o644))

		capturer := &stubCapturer{err: fmt.Errorf("%w: chromium not found", browser.ErrLaunch)}
		summary, err := build(cat.URL, capturer, path).Run(ctx)

		Convey("The run fails with the launch error", func() {
			So(errors.Is(err, browser.ErrLaunch), ShouldBeTrue)
			So(summary.Written, ShouldEqual, 0)
			So(summary.Synthesized, ShouldEqual, 0)
		})

		Convey("No guess-only playlist replaces the previous one", func() {
			So(read(path), ShouldEqual, "#EXTM3U\nPREVIOUS GOOD\n")
		})

		Convey("Nothing is retried", func() {
			So(capturer.calls, ShouldBeLessThanOrEqualTo, 2)
		})
	})
}

func TestFatalCapture(t *testing.T) {
	Convey("FatalCapture", t, func() {
		Convey("A wrapped launch failure ends the run", func() {
			So(FatalCapture(fmt.Errorf("acquire: %w", browser.ErrLaunch)), ShouldBeTrue)
		})

		Convey("Per-candidate failures do not", func() {
			So(FatalCapture(errors.New("navigation timeout")), ShouldBeFalse)
			So(FatalCapture(context.DeadlineExceeded), ShouldBeFalse)
		})

		Convey("FromConfig wires it into the scheduler", func() {
			p := FromConfig(&stubCapturer{})
			So(p.Scheduler.Fatal, ShouldNotBeNil)
			So(p.Scheduler.Fatal(browser.ErrLaunch), ShouldBeTrue)
		})
	})
}

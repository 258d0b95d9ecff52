package browser

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-rod/rod/lib/launcher"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/streamcap/streamcap/stream"
)

// embedSite serves pages whose scripts request playlists the way embed players do.
type embedSite struct {
	*httptest.Server
	images atomic.Int32
	xhr    atomic.Int32
}

const playerPage = `<!doctype html><html><head><script>
fetch('/first.m3u8');
setTimeout(() => fetch('/second.m3u8'), 1500);
</script></head><body><img src="/poster.png">player</body></html>`

const stalledHead = `<!doctype html><html><head><script>
fetch('/stalled.m3u8');
</script></head><body>`

func newEmbedSite() *embedSite {
	site := &embedSite{}
	mux := http.NewServeMux()
	mux.HandleFunc("/player", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(playerPage))
	})
	mux.HandleFunc("/stalled", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(stalledHead))
		w.(http.Flusher).Flush()
		select {
		case <-time.After(5 * time.Second):
		case <-r.Context().Done():
		}
	})
	mux.HandleFunc("/poster.png", func(w http.ResponseWriter, r *http.Request) {
		site.images.Add(1)
		w.Header().Set("Content-Type", "image/png")
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		site.xhr.Add(1)
		w.Header().Set("Content-Type", "application/vnd.apple.mpegurl")
		_, _ = w.Write([]byte("#EXTM3U\n"))
	})
	site.Server = httptest.NewServer(mux)
	return site
}

func refusedURL() string {
	srv := httptest.NewServer(http.NotFoundHandler())
	target := srv.URL + "/gone"
	srv.Close()
	return target
}

func TestInterceptorCapture(t *testing.T) {
	bin, ok := launcher.LookPath()
	if !ok {
		t.Skip("no Chromium installed")
	}

	opts := DefaultOptions()
	opts.Bin = bin
	opts.PoolSize = 1
	opts.Interact = false
	opts.NavigationTimeout = 800 * time.Millisecond

	pool := NewPool(opts)
	defer func() { _ = pool.Close() }()
	if _, err := pool.launch(); err != nil {
		t.Skipf("Chromium does not start here: %v", err)
	}

	interceptor := NewInterceptor(opts)
	site := newEmbedSite()
	defer site.Close()

	ctx := context.Background()

	Convey("Given a page that requests a playlist while it loads", t, func() {
		session, err := pool.Acquire(ctx)
		So(err, ShouldBeNil)
		defer session.Close()

		Convey("First-match mode returns the early request without waiting the budget", func() {
			started := time.Now()
			urls, err := interceptor.Capture(ctx, session, site.URL+"/player", 6*time.Second, false)

			So(err, ShouldBeNil)
			So(urls, ShouldResemble, []string{site.URL + "/first.m3u8"})
			So(time.Since(started), ShouldBeLessThan, 4*time.Second)
		})

		Convey("All mode waits the full budget and keeps discovery order", func() {
			started := time.Now()
			urls, err := interceptor.Capture(ctx, session, site.URL+"/player", 3*time.Second, true)

			So(err, ShouldBeNil)
			So(time.Since(started), ShouldBeGreaterThanOrEqualTo, 3*time.Second)
			So(urls, ShouldResemble, []string{site.URL + "/first.m3u8", site.URL + "/second.m3u8"})
		})

		Convey("Images are blocked while fetch requests go through", func() {
			before := site.images.Load()
			_, err := interceptor.Capture(ctx, session, site.URL+"/player", 2*time.Second, false)

			So(err, ShouldBeNil)
			So(site.images.Load(), ShouldEqual, before)
			So(site.xhr.Load(), ShouldBeGreaterThan, 0)
		})

		Convey("A later capture on the same page only sees its own traffic", func() {
			_, err := interceptor.Capture(ctx, session, site.URL+"/player", 2*time.Second, false)
			So(err, ShouldBeNil)

			urls, _ := interceptor.Capture(ctx, session, site.URL+"/stalled", 2*time.Second, false)
			So(urls, ShouldResemble, []string{site.URL + "/stalled.m3u8"})
		})
	})

	Convey("Given a page whose load never completes", t, func() {
		session, err := pool.Acquire(ctx)
		So(err, ShouldBeNil)
		defer session.Close()

		urls, err := interceptor.Capture(ctx, session, site.URL+"/stalled", 2*time.Second, false)

		Convey("The navigation timeout is not fatal and the request from the head is kept", func() {
			So(err, ShouldBeNil)
			So(urls, ShouldResemble, []string{site.URL + "/stalled.m3u8"})
		})
	})

	Convey("Given a target that refuses connections", t, func() {
		session, err := pool.Acquire(ctx)
		So(err, ShouldBeNil)

		urls, err := interceptor.Capture(ctx, session, refusedURL(), 500*time.Millisecond, false)

		Convey("Nothing is captured and the navigation error is returned", func() {
			So(urls, ShouldBeEmpty)
			So(err, ShouldNotBeNil)
		})

		Convey("The only slot is held until the session closes", func() {
			short, cancel := context.WithTimeout(ctx, 200*time.Millisecond)
			defer cancel()
			_, err := pool.Acquire(short)
			So(err, ShouldEqual, context.DeadlineExceeded)
		})

		Convey("Closing frees the slot, also when closed twice", func() {
			session.Close()
			session.Close()

			short, cancel := context.WithTimeout(ctx, 2*time.Second)
			defer cancel()
			again, err := pool.Acquire(short)
			So(err, ShouldBeNil)
			again.Close()
		})

		session.Close()
	})
}

func TestEngineReleasesSlots(t *testing.T) {
	bin, ok := launcher.LookPath()
	if !ok {
		t.Skip("no Chromium installed")
	}

	opts := DefaultOptions()
	opts.Bin = bin
	opts.PoolSize = 1
	opts.Interact = false
	opts.NavigationTimeout = 800 * time.Millisecond

	engine := NewEngine(opts)
	defer func() { _ = engine.Close() }()
	if _, err := engine.Pool.launch(); err != nil {
		t.Skipf("Chromium does not start here: %v", err)
	}

	Convey("Given a single slot and failing targets", t, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
		defer cancel()

		Convey("Consecutive failed captures never starve the pool", func() {
			for i := range 3 {
				c := stream.Candidate{Name: fmt.Sprintf("dead-%d", i), EntryURL: refusedURL()}
				urls, err := engine.Capture(ctx, c, 300*time.Millisecond)
				So(urls, ShouldBeEmpty)
				So(err, ShouldNotBeNil)
			}
			So(ctx.Err(), ShouldBeNil)
		})
	})
}

func TestPoolLaunchFailure(t *testing.T) {
	Convey("Given a browser binary that does not exist", t, func() {
		opts := DefaultOptions()
		opts.Bin = "/nonexistent/chromium"
		opts.PoolSize = 1
		pool := NewPool(opts)
		defer func() { _ = pool.Close() }()

		ctx := context.Background()
		_, first := pool.Acquire(ctx)
		_, second := pool.Acquire(ctx)

		Convey("Every acquisition fails with the cached launch error", func() {
			So(errors.Is(first, ErrLaunch), ShouldBeTrue)
			So(second, ShouldEqual, first)
		})

		Convey("A failed acquisition does not keep the slot", func() {
			short, cancel := context.WithTimeout(ctx, time.Second)
			defer cancel()
			_, err := pool.Acquire(short)
			So(errors.Is(err, ErrLaunch), ShouldBeTrue)
		})
	})
}

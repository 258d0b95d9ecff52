package catalog

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/streamcap/streamcap/constant"
)

func serve(status int, body string) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
}

func TestFetch(t *testing.T) {
	Convey("Given a catalog server", t, func() {
		ctx := context.Background()

		Convey("A 200 with a valid document should decode", func() {
			srv := serve(http.StatusOK, `{"streams":[{"category":"Football","streams":[
				{"name":"Match A","iframe":"https://ppv.to/embed/a/1","starts_at":1700000000,"always_live":0},
				{"name":"Channel","iframe":"https://ppv.to/embed/c/2","starts_at":null,"always_live":true}
			]}]}`)
			defer srv.Close()

			resp, err := NewClient(srv.URL).Fetch(ctx)
			So(err, ShouldBeNil)
			So(resp.Streams, ShouldHaveLength, 1)
			So(resp.Streams[0].Streams[0].StartsAt, ShouldEqual, Epoch(1700000000))
			So(bool(resp.Streams[0].Streams[0].AlwaysLive), ShouldBeFalse)
			So(bool(resp.Streams[0].Streams[1].AlwaysLive), ShouldBeTrue)
			So(resp.Streams[0].Streams[1].StartsAt, ShouldEqual, Epoch(0))
		})

		Convey("A 500 should be unavailable", func() {
			srv := serve(http.StatusInternalServerError, "oops")
			defer srv.Close()

			_, err := NewClient(srv.URL).Fetch(ctx)
			So(errors.Is(err, ErrUnavailable), ShouldBeTrue)
		})

		Convey("A broken body should be malformed", func() {
			srv := serve(http.StatusOK, `{"streams":[`)
			defer srv.Close()

			_, err := NewClient(srv.URL).Fetch(ctx)
			So(errors.Is(err, ErrMalformed), ShouldBeTrue)
		})

		Convey("An unreachable server should be unavailable", func() {
			srv := serve(http.StatusOK, "{}")
			url := srv.URL
			srv.Close()

			_, err := NewClient(url).Fetch(ctx)
			So(errors.Is(err, ErrUnavailable), ShouldBeTrue)
		})

		Convey("The request should carry a browser user agent", func() {
			var agent string
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				agent = r.UserAgent()
				_, _ = w.Write([]byte(`{"streams":[]}`))
			}))
			defer srv.Close()

			_, err := NewClient(srv.URL).Fetch(ctx)
			So(err, ShouldBeNil)
			So(agent, ShouldEqual, constant.UserAgent)
		})
	})
}

func TestNormalize(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	alwaysLive := []string{constant.AlwaysLiveCategory}

	Convey("Given a catalog", t, func() {
		raw := &Response{Streams: []Group{
			{Category: "Football", Streams: []Item{
				{Name: "Match A", Iframe: "https://ppv.to/embed/match-a/1", StartsAt: Epoch(now.Unix() - 60)},
				{Name: "Match B", Iframe: "https://ppv.to/embed/match-b/2", StartsAt: Epoch(now.Unix() + 3600), Poster: "https://img/b.png"},
				{Name: "Flagged", Iframe: "https://ppv.to/embed/flagged/3", StartsAt: Epoch(now.Unix() - 60), AlwaysLive: true},
				{Name: "No entry"},
			}},
			{Category: "24/7 Streams", Streams: []Item{
				{Name: "Channel", Iframe: "https://ppv.to/embed/channel/4", StartsAt: Epoch(now.Unix() - 600)},
			}},
			{Streams: []Item{
				{Iframe: "https://ppv.to/embed/anon/5"},
			}},
		}}

		candidates := Normalize(raw, now, alwaysLive)

		Convey("Streams without an entry URL are skipped", func() {
			So(candidates, ShouldHaveLength, 5)
		})

		Convey("A started stream moves to Live Now", func() {
			So(candidates[0].Category, ShouldEqual, constant.LiveNow)
			So(candidates[0].RawCategory, ShouldEqual, "Football")
			So(candidates[0].LiveNow, ShouldBeTrue)
		})

		Convey("An upcoming stream keeps its category and poster", func() {
			So(candidates[1].Category, ShouldEqual, "Football")
			So(candidates[1].Poster.OrEmpty(), ShouldEqual, "https://img/b.png")
			So(candidates[1].ScheduledAt.IsPresent(), ShouldBeTrue)
		})

		Convey("An always-live flag keeps the category regardless of start", func() {
			So(candidates[2].Category, ShouldEqual, "Football")
			So(candidates[2].LiveNow, ShouldBeFalse)
		})

		Convey("An always-live category keeps the category regardless of start", func() {
			So(candidates[3].Category, ShouldEqual, "24/7 Streams")
			So(candidates[3].AlwaysLive, ShouldBeTrue)
		})

		Convey("Missing fields get defaults", func() {
			So(candidates[4].Name, ShouldEqual, constant.UnnamedEvent)
			So(candidates[4].Category, ShouldEqual, constant.MiscCategory)
			So(candidates[4].ScheduledAt.IsAbsent(), ShouldBeTrue)
		})

		Convey("Every candidate carries an identity", func() {
			for _, c := range candidates {
				So(c.Identity, ShouldNotBeEmpty)
			}
		})
	})

	Convey("A nil catalog yields no candidates", t, func() {
		So(Normalize(nil, now, alwaysLive), ShouldBeEmpty)
	})
}

func TestFilter(t *testing.T) {
	Convey("Given candidates", t, func() {
		raw := &Response{Streams: []Group{{Category: "Basketball", Streams: []Item{
			{Name: "Lakers vs Celtics", Iframe: "https://x/1"},
			{Name: "Knicks vs Heat", Iframe: "https://x/2"},
		}}}}
		candidates := Normalize(raw, time.Unix(0, 0), nil)

		Convey("An empty query keeps all", func() {
			So(Filter(candidates, " "), ShouldHaveLength, 2)
		})

		Convey("A fuzzy query narrows by name", func() {
			got := Filter(candidates, "lkrs")
			So(got, ShouldHaveLength, 1)
			So(got[0].Name, ShouldEqual, "Lakers vs Celtics")
		})

		Convey("A query can match the category", func() {
			So(Filter(candidates, "basket"), ShouldHaveLength, 2)
		})
	})
}

package browser

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/streamcap/streamcap/log"
	"github.com/streamcap/streamcap/util"
)

const (
	clickTimeout = 2 * time.Second
	maxFrames    = 16
)

const playVideos = `() => {
	document.querySelectorAll('video').forEach(v => {
		v.muted = true;
		const p = v.play();
		if (p && p.catch) p.catch(() => {});
	});
}`

// Driver nudges players that do not start on their own.
// It never reports failure, it can only make a capture more likely.
type Driver struct {
	SettleDelay time.Duration
	MaxDepth    int
	Hosts       []string
	Selectors   []string
}

// NewDriver builds a driver from the interaction options.
func NewDriver(opts Options) *Driver {
	return &Driver{
		SettleDelay: opts.SettleDelay,
		MaxDepth:    opts.FrameDepth,
		Hosts:       opts.FrameHosts,
		Selectors:   PlaySelectors,
	}
}

type frame struct {
	page  *rod.Page
	depth int
}

// Interact walks the page's embeds up to MaxDepth and clicks the innermost players.
func (d *Driver) Interact(ctx context.Context, page *rod.Page) {
	defer func() {
		if r := recover(); r != nil {
			log.Debugf("interaction aborted: %v", r)
		}
	}()

	if d.SettleDelay > 0 {
		timer := time.NewTimer(d.SettleDelay)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			return
		}
	}

	var stack util.Stack[frame]
	stack.Push(frame{page: page.Context(ctx), depth: 0})

	for visited := 0; stack.Len() > 0 && visited < maxFrames; visited++ {
		if ctx.Err() != nil {
			return
		}

		current := stack.Pop()
		children := d.children(current)
		if len(children) == 0 {
			d.poke(current.page)
			continue
		}
		for _, child := range children {
			stack.Push(child)
		}
	}
}

func (d *Driver) children(f frame) []frame {
	if f.depth >= d.MaxDepth {
		return nil
	}

	elements, err := f.page.Elements("iframe")
	if err != nil {
		return nil
	}

	var out []frame
	for _, el := range elements {
		src, err := el.Attribute("src")
		if err != nil || src == nil || !d.Allowed(*src) {
			continue
		}

		inner, err := el.Frame()
		if err != nil {
			continue
		}
		out = append(out, frame{page: inner, depth: f.depth + 1})
	}
	return out
}

// poke clicks the first play control found, or the body, and asks every video to play.
func (d *Driver) poke(page *rod.Page) {
	clicked := false
	for _, selector := range d.Selectors {
		has, el, err := page.Has(selector)
		if err != nil || !has {
			continue
		}
		if err := el.Timeout(clickTimeout).Click(proto.InputMouseButtonLeft, 1); err == nil {
			clicked = true
			break
		}
	}

	if !clicked {
		if has, body, err := page.Has("body"); err == nil && has {
			_ = body.Timeout(clickTimeout).Click(proto.InputMouseButtonLeft, 1)
		}
	}

	_, _ = page.Eval(playVideos)
}

// Allowed reports whether an embed src points at a host worth descending into.
// Relative sources stay on the parent's host and are always allowed; an empty
// host list allows every http(s) embed.
func (d *Driver) Allowed(src string) bool {
	src = strings.TrimSpace(src)
	if src == "" {
		return false
	}

	u, err := url.Parse(src)
	if err != nil {
		return false
	}

	switch u.Scheme {
	case "", "http", "https":
	default:
		return false
	}

	host := strings.ToLower(u.Hostname())
	if host == "" {
		return u.Scheme == "" && u.Path != ""
	}
	if len(d.Hosts) == 0 {
		return true
	}

	for _, h := range d.Hosts {
		h = strings.ToLower(strings.TrimPrefix(h, "."))
		if host == h || strings.HasSuffix(host, "."+h) {
			return true
		}
	}
	return false
}

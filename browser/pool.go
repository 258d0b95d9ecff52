// Package browser renders embed pages in headless Chromium and watches their network traffic.
package browser

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"
	"github.com/streamcap/streamcap/log"
	"github.com/streamcap/streamcap/where"
	"golang.org/x/sync/semaphore"
)

// ErrLaunch is returned by every acquisition once the browser failed to start.
var ErrLaunch = errors.New("browser launch failed")

// blockedResources are never needed to reveal a playlist request.
var blockedResources = []proto.NetworkResourceType{
	proto.NetworkResourceTypeImage,
	proto.NetworkResourceTypeStylesheet,
	proto.NetworkResourceTypeFont,
	proto.NetworkResourceTypeMedia,
}

// Pool hands out at most PoolSize pages of one shared browser.
// The browser is launched by the first acquisition.
type Pool struct {
	opts  Options
	slots *semaphore.Weighted

	mu        sync.Mutex
	launched  bool
	launchErr error
	launcher  *launcher.Launcher
	browser   *rod.Browser
	incognito *rod.Browser
}

// NewPool returns an idle pool. Nothing is started until Acquire.
func NewPool(opts Options) *Pool {
	opts = opts.withDefaults()
	return &Pool{
		opts:  opts,
		slots: semaphore.NewWeighted(int64(opts.PoolSize)),
	}
}

func (p *Pool) launch() (*rod.Browser, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.launched {
		return p.incognito, p.launchErr
	}
	p.launched = true

	bin, err := ResolveBin(p.opts.Bin)
	if err != nil {
		p.launchErr = fmt.Errorf("%w: %w", ErrLaunch, err)
		log.Error(p.launchErr)
		return nil, p.launchErr
	}

	l := launcher.New().
		Bin(bin).
		Headless(p.opts.Headless).
		NoSandbox(true).
		Set("disable-blink-features", "AutomationControlled").
		Set("disable-features", "IsolateOrigins,site-per-process").
		Set("autoplay-policy", "no-user-gesture-required").
		Set(flags.Flag("mute-audio"))

	controlURL, err := l.Launch()
	if err != nil {
		p.launchErr = fmt.Errorf("%w: %w", ErrLaunch, err)
		log.Error(p.launchErr)
		return nil, p.launchErr
	}
	p.launcher = l

	b := rod.New().ControlURL(controlURL).Context(context.Background())
	if err := b.Connect(); err != nil {
		l.Kill()
		p.launchErr = fmt.Errorf("%w: connect: %w", ErrLaunch, err)
		log.Error(p.launchErr)
		return nil, p.launchErr
	}
	p.browser = b

	incognito, err := b.Incognito()
	if err != nil {
		p.launchErr = fmt.Errorf("%w: incognito context: %w", ErrLaunch, err)
		log.Error(p.launchErr)
		return nil, p.launchErr
	}
	p.incognito = incognito

	log.Infof("Browser launched with %d page slots", p.opts.PoolSize)
	return p.incognito, nil
}

// Acquire blocks until a slot is free and returns a fresh page in it.
// The returned session must be closed on every path.
func (p *Pool) Acquire(ctx context.Context) (*Session, error) {
	if err := p.slots.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	release := func() { p.slots.Release(1) }

	b, err := p.launch()
	if err != nil {
		release()
		return nil, err
	}

	page, err := b.Page(proto.TargetCreateTarget{})
	if err != nil {
		release()
		return nil, fmt.Errorf("open page: %w", err)
	}

	s := &Session{page: page, release: release}

	if p.opts.UserAgent != "" {
		if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: p.opts.UserAgent}); err != nil {
			log.Debugf("user agent override: %v", err)
		}
	}

	if p.opts.BlockResources {
		router := page.HijackRequests()
		for _, kind := range blockedResources {
			if err := router.Add("*", kind, func(h *rod.Hijack) {
				h.Response.Fail(proto.NetworkErrorReasonBlockedByClient)
			}); err != nil {
				log.Debugf("block %s: %v", kind, err)
			}
		}
		go router.Run()
		s.router = router
	}

	return s, nil
}

// Close shuts the browser down. Sessions still open become unusable.
func (p *Pool) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var err error
	if p.browser != nil {
		err = p.browser.Close()
		p.browser = nil
		p.incognito = nil
	}
	if p.launcher != nil {
		p.launcher.Kill()
		p.launcher.Cleanup()
		p.launcher = nil
	}
	return err
}

// ResolveBin returns the Chromium executable to launch: bin when set, a
// system installation when one is found, otherwise a browser downloaded
// into the application's cache directory.
func ResolveBin(bin string) (string, error) {
	if bin != "" {
		return bin, nil
	}
	if found, ok := launcher.LookPath(); ok {
		return found, nil
	}

	b := launcher.NewBrowser()
	b.RootDir = where.Browser()
	log.Infof("No local browser found, downloading into %s", b.RootDir)
	return b.Get()
}

// Session is one page holding one pool slot.
type Session struct {
	page    *rod.Page
	router  *rod.HijackRouter
	release func()
	once    sync.Once
}

// Page returns the session's page.
func (s *Session) Page() *rod.Page {
	return s.page
}

// Close tears the page down and frees the slot. It is safe to call more than once.
func (s *Session) Close() {
	s.once.Do(func() {
		if s.router != nil {
			if err := s.router.Stop(); err != nil {
				log.Debugf("stop router: %v", err)
			}
		}
		if s.page != nil {
			if err := s.page.Close(); err != nil {
				log.Debugf("close page: %v", err)
			}
		}
		if s.release != nil {
			s.release()
		}
	})
}

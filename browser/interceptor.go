package browser

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-rod/rod/lib/proto"
	"github.com/streamcap/streamcap/log"
)

// Interceptor extracts playlist URLs from the traffic of a rendered page.
type Interceptor struct {
	Pattern           string
	NavigationTimeout time.Duration
	// Driver is optional. When set it runs alongside the wait.
	Driver *Driver
}

// NewInterceptor builds an interceptor from the capture options.
func NewInterceptor(opts Options) *Interceptor {
	opts = opts.withDefaults()
	i := &Interceptor{
		Pattern:           opts.Pattern,
		NavigationTimeout: opts.NavigationTimeout,
	}
	if opts.Interact {
		i.Driver = NewDriver(opts)
	}
	return i
}

// Capture loads target in the session's page and returns the distinct matching
// URLs seen as requests or responses, in discovery order.
//
// Listening starts before navigation. A failed or slow navigation is not fatal:
// its error is returned alongside whatever was captured. The wait budget starts
// once navigation settles; unless all is set, the first match ends it early.
func (i *Interceptor) Capture(ctx context.Context, s *Session, target string, wait time.Duration, all bool) ([]string, error) {
	page := s.Page()
	found := newCollector(i.Pattern)

	listenCtx, unsubscribe := context.WithCancel(ctx)
	listen := page.Context(listenCtx).EachEvent(
		func(e *proto.NetworkRequestWillBeSent) {
			if e.Request != nil {
				found.Add(e.Request.URL)
			}
		},
		func(e *proto.NetworkResponseReceived) {
			if e.Response != nil {
				found.Add(e.Response.URL)
			}
		},
	)

	listening := make(chan struct{})
	go func() {
		defer close(listening)
		listen()
	}()
	defer func() {
		unsubscribe()
		<-listening
	}()

	navErr := i.navigate(ctx, s, target)
	if navErr != nil {
		log.Debugf("navigation to %s: %v", target, navErr)
	}

	waitCtx, stop := context.WithTimeout(ctx, wait)
	defer stop()

	var interacting sync.WaitGroup
	if i.Driver != nil {
		interacting.Add(1)
		go func() {
			defer interacting.Done()
			i.Driver.Interact(waitCtx, page)
		}()
	}

	if all {
		<-waitCtx.Done()
	} else {
		select {
		case <-found.Found():
		case <-waitCtx.Done():
		}
	}

	stop()
	interacting.Wait()

	urls := found.URLs()
	if len(urls) == 0 && navErr != nil {
		return nil, navErr
	}
	return urls, nil
}

func (i *Interceptor) navigate(ctx context.Context, s *Session, target string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("navigate: %v", r)
		}
	}()

	page := s.Page().Context(ctx).Timeout(i.NavigationTimeout)
	defer page.CancelTimeout()

	loaded := page.WaitNavigation(proto.PageLifecycleEventNameDOMContentLoaded)
	if err := page.Navigate(target); err != nil {
		return fmt.Errorf("navigate: %w", err)
	}
	loaded()

	if err := page.GetContext().Err(); err != nil {
		return fmt.Errorf("navigate: %w", err)
	}
	return nil
}

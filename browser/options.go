package browser

import "time"

// Options configures the rendering browser and the capture of a single page.
type Options struct {
	Headless bool
	// Bin is an explicit Chromium path. When empty one is looked up or downloaded.
	Bin       string
	PoolSize  int
	UserAgent string

	NavigationTimeout time.Duration
	// Pattern is the substring identifying a media playlist URL.
	Pattern        string
	BlockResources bool
	// CollectAll keeps listening for the full wait and returns every match.
	CollectAll bool

	Interact    bool
	SettleDelay time.Duration
	FrameDepth  int
	FrameHosts  []string
}

// PlaySelectors are tried in order when a frame has no explorable embed.
var PlaySelectors = []string{
	".vjs-big-play-button",
	".jw-icon-display",
	"button[aria-label*=Play]",
	".play-button",
	"video",
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		Headless:          true,
		PoolSize:          3,
		NavigationTimeout: 15 * time.Second,
		Pattern:           ".m3u8",
		BlockResources:    true,
		Interact:          true,
		SettleDelay:       1500 * time.Millisecond,
		FrameDepth:        3,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.PoolSize <= 0 {
		o.PoolSize = d.PoolSize
	}
	if o.NavigationTimeout <= 0 {
		o.NavigationTimeout = d.NavigationTimeout
	}
	if o.Pattern == "" {
		o.Pattern = d.Pattern
	}
	if o.SettleDelay < 0 {
		o.SettleDelay = 0
	}
	if o.FrameDepth < 0 {
		o.FrameDepth = 0
	}
	return o
}

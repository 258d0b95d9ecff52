package pipeline

import (
	"github.com/spf13/viper"
	"github.com/streamcap/streamcap/browser"
	"github.com/streamcap/streamcap/capture"
	"github.com/streamcap/streamcap/catalog"
	"github.com/streamcap/streamcap/config"
	"github.com/streamcap/streamcap/constant"
	"github.com/streamcap/streamcap/fallback"
	"github.com/streamcap/streamcap/key"
	"github.com/streamcap/streamcap/live"
	"github.com/streamcap/streamcap/network"
	"github.com/streamcap/streamcap/playlist"
	"github.com/streamcap/streamcap/validate"
)

// BrowserOptions reads the capture settings.
func BrowserOptions() browser.Options {
	opts := browser.DefaultOptions()
	opts.Headless = viper.GetBool(key.CaptureHeadless)
	opts.Bin = viper.GetString(key.CaptureBrowserBin)
	opts.PoolSize = viper.GetInt(key.CapturePoolSize)
	opts.UserAgent = constant.BrowserUserAgent
	opts.NavigationTimeout = config.Millis(key.CaptureNavigationTimeout)
	opts.Pattern = viper.GetString(key.CapturePattern)
	opts.BlockResources = viper.GetBool(key.CaptureBlockResources)
	opts.CollectAll = viper.GetBool(key.CaptureAllURLs)
	opts.Interact = viper.GetBool(key.CaptureInteract)
	opts.FrameDepth = viper.GetInt(key.CaptureFrameDepth)
	opts.FrameHosts = viper.GetStringSlice(key.CaptureFrameHosts)
	return opts
}

// FromConfig assembles a pipeline from the loaded configuration around the given capturer.
func FromConfig(capturer capture.Capturer) *Pipeline {
	source := catalog.NewClient(viper.GetString(key.CatalogURL))
	source.HTTP = network.NewClient(config.Millis(key.CatalogTimeout), false)

	p := &Pipeline{
		Catalog: source,
		Scheduler: &capture.Scheduler{
			Capturer: capturer,
			Initial: capture.Phase{
				Wait:        config.Millis(key.CaptureInitialWait),
				Concurrency: viper.GetInt(key.CaptureInitialConcurrency),
			},
			Retry: capture.Phase{
				Wait:        config.Millis(key.CaptureRetryWait),
				Concurrency: viper.GetInt(key.CaptureRetryConcurrency),
			},
			Fatal: FatalCapture,
		},
		Renderer:   playlist.NewRenderer(viper.GetString(key.PlaylistIDPrefix), viper.GetBool(key.CaptureAllURLs)),
		AlwaysLive: viper.GetStringSlice(key.CatalogAlwaysLiveCategories),
		Sort:       viper.GetBool(key.PlaylistSort),
		Output:     viper.GetString(key.PlaylistPath),
	}

	if u := viper.GetString(key.LiveURL); u != "" {
		p.Live = live.NewScraper(u, viper.GetString(key.LiveSelector))
	}

	if viper.GetBool(key.ValidateEnable) {
		p.Validator = validate.New(
			config.Millis(key.ValidateTimeout),
			viper.GetInt(key.ValidateConcurrency),
			viper.GetBool(key.ValidateTLSFingerprint),
		)
	}

	if viper.GetBool(key.FallbackEnable) {
		p.Synthesizer = fallback.New(viper.GetString(key.FallbackTemplate))
	}

	return p
}

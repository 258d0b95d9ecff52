// Package key defines the canonical set of configuration identifiers used for centralized settings management.
package key

// Catalog Source - these keys locate and bound the upstream event catalog.
const (
	CatalogURL                  = "catalog.url"
	CatalogTimeout              = "catalog.timeout"
	CatalogAlwaysLiveCategories = "catalog.always_live_categories"
)

// Supplementary Listing - these keys configure the optional "Live Now" page scrape.
const (
	LiveURL      = "live.url"
	LiveSelector = "live.selector"
)

// Capture Engine - these keys govern the headless browser, the network interceptor and both scheduler phases.
const (
	CaptureHeadless           = "capture.headless"
	CaptureBrowserBin         = "capture.browser_bin"
	CapturePoolSize           = "capture.pool_size"
	CaptureInitialWait        = "capture.initial_wait"
	CaptureInitialConcurrency = "capture.initial_concurrency"
	CaptureRetryWait          = "capture.retry_wait"
	CaptureRetryConcurrency   = "capture.retry_concurrency"
	CaptureNavigationTimeout  = "capture.navigation_timeout"
	CapturePattern            = "capture.pattern"
	CaptureAllURLs            = "capture.all_urls"
	CaptureBlockResources     = "capture.block_resources"
	CaptureInteract           = "capture.interact"
	CaptureFrameDepth         = "capture.frame_depth"
	CaptureFrameHosts         = "capture.frame_hosts"
)

// Validation - these keys configure the reachability check of captured URLs.
const (
	ValidateEnable         = "validate.enable"
	ValidateTimeout        = "validate.timeout"
	ValidateConcurrency    = "validate.concurrency"
	ValidateTLSFingerprint = "validate.tls_fingerprint"
)

// Fallback Synthesis - these keys control guessed URLs for candidates that were never captured.
const (
	FallbackEnable   = "fallback.enable"
	FallbackTemplate = "fallback.template"
)

// Playlist Output - these keys shape the written channel list.
const (
	PlaylistPath     = "playlist.path"
	PlaylistSort     = "playlist.sort"
	PlaylistIDPrefix = "playlist.id_prefix"
	PlaylistPlayer   = "playlist.player"
)

// Iconography - these keys manage the visual rendering of UI symbols.
const (
	IconsVariant = "icons.variant"
)

// Logging Infrastructure - these keys manage the application's internal diagnostics.
const (
	LogsWrite = "logs.write"
	LogsLevel = "logs.level"
	LogsJson  = "logs.json"
)

// CLI Execution Environment - these settings govern terminal output.
const (
	CliColored = "cli.colored"
)

// Package config provides centralized management for application settings, defaults, and the Viper-based configuration engine.
package config

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"text/template"

	"github.com/samber/lo"
	"github.com/spf13/viper"
	"github.com/streamcap/streamcap/color"
	"github.com/streamcap/streamcap/constant"
	"github.com/streamcap/streamcap/key"
	"github.com/streamcap/streamcap/style"
)

// Field represents a configuration field definition.
type Field struct {
	Key         string
	Value       any
	Description string
}

// Pretty returns a colored string representation of the field for display.
func (f *Field) Pretty() string {
	var b strings.Builder
	lo.Must0(prettyTemplate.Execute(&b, f))
	return b.String()
}

// Env returns the environment variable name for this field.
func (f *Field) Env() string {
	env := strings.ToUpper(EnvKeyReplacer.Replace(f.Key))
	prefix := strings.ToUpper(constant.App + "_")
	if strings.HasPrefix(env, prefix) {
		return env
	}
	return prefix + env
}

// MarshalJSON customizes JSON output to include current and default values.
func (f *Field) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Key         string `json:"key"`
		Value       any    `json:"value"`
		Default     any    `json:"default"`
		Description string `json:"description"`
		Type        string `json:"type"`
	}{
		Key:         f.Key,
		Value:       viper.Get(f.Key),
		Default:     f.Value,
		Description: f.Description,
		Type:        f.typeName(),
	})
}

func (f *Field) typeName() string {
	switch f.Value.(type) {
	case string:
		return "string"
	case int:
		return "int"
	case bool:
		return "bool"
	case []string:
		return "[]string"
	default:
		return "unknown"
	}
}

// Default holds the map of all configuration fields.
var Default = make(map[string]Field)

// EnvExposed holds keys that are bound to environment variables.
var EnvExposed []string

// DefaultFrameHosts lists the player-hosting domains whose nested embeds are worth descending into.
var DefaultFrameHosts = []string{
	"ppv.to",
	"ppvs.su",
	"embedsports.top",
	"embedstreams.me",
	"streamed.su",
	"sharkstreams.net",
	"pooembed.top",
}

func init() {
	register := func(k string, v any, desc string) {
		if _, exists := Default[k]; exists {
			panic("Duplicate config key: " + k)
		}
		Default[k] = Field{Key: k, Value: v, Description: desc}
		EnvExposed = append(EnvExposed, k)
	}

	register(key.CatalogURL, "https://api.ppv.to/api/streams", "Catalog API returning streams grouped by category")
	register(key.CatalogTimeout, 20000, "Catalog request timeout in milliseconds")
	register(key.CatalogAlwaysLiveCategories, []string{constant.AlwaysLiveCategory}, "Categories whose streams are never moved to \"Live Now\"")

	register(key.LiveURL, "", "Page listing currently live channels.\nLeave empty to skip the supplementary scrape")
	register(key.LiveSelector, "a[href*='player.php?channel=']", "CSS selector of channel links on the live listing page")

	register(key.CaptureHeadless, true, "Run the browser without a window")
	register(key.CaptureBrowserBin, "", "Path to a Chromium binary.\nA browser is downloaded or looked up when empty")
	register(key.CapturePoolSize, 3, "Maximum number of pages rendered at once")
	register(key.CaptureInitialWait, 8000, "Milliseconds to wait for a playlist request in the initial phase")
	register(key.CaptureInitialConcurrency, 3, "Concurrent captures in the initial phase")
	register(key.CaptureRetryWait, 15000, "Milliseconds to wait for a playlist request in the retry phase")
	register(key.CaptureRetryConcurrency, 2, "Concurrent captures in the retry phase")
	register(key.CaptureNavigationTimeout, 15000, "Milliseconds allowed for a single page navigation")
	register(key.CapturePattern, ".m3u8", "Substring identifying a media playlist URL")
	register(key.CaptureAllURLs, false, "Collect every matching URL for the full wait and keep all of them in the playlist.\nOnly the first URL is kept otherwise")
	register(key.CaptureBlockResources, true, "Block images, stylesheets, fonts and media segments while rendering")
	register(key.CaptureInteract, true, "Click players and descend into nested embeds to trigger playback")
	register(key.CaptureFrameDepth, 3, "Maximum nested embed depth explored by the interaction driver")
	register(key.CaptureFrameHosts, DefaultFrameHosts, "Player hosting domains whose embedded frames are explored")

	register(key.ValidateEnable, true, "Check captured URLs with a direct request")
	register(key.ValidateTimeout, 5000, "Validation request timeout in milliseconds")
	register(key.ValidateConcurrency, 2, "Concurrent validation requests per candidate")
	register(key.ValidateTLSFingerprint, false, "Send validation requests with a Chrome TLS fingerprint")

	register(key.FallbackEnable, true, "Guess a playlist URL for candidates that were never captured")
	register(key.FallbackTemplate, "https://gg.poocloud.in/{id}/index.m3u8", "Template for guessed URLs, {id} is taken from the entry URL path")

	register(key.PlaylistPath, "playlist.m3u8", "Path of the written playlist")
	register(key.PlaylistSort, false, "Sort playlist entries by start time")
	register(key.PlaylistIDPrefix, "ppv-", "Prefix of generated tvg-id values")
	register(key.PlaylistPlayer, "", "Application that opens the playlist after run --play.\nThe system default handler is used when empty")

	register(key.IconsVariant, "emoji", "Icons variant.\nAvailable options are: emoji, plain, squares")
	register(key.LogsWrite, false, "Write logs")
	register(key.LogsLevel, "info", "Available options are: (from less to most verbose)\npanic, fatal, error, warn, info, debug, trace")
	register(key.LogsJson, false, "Use json format for logs")
	register(key.CliColored, true, "Enable colored CLI output")
}

var prettyTemplate = lo.Must(template.New("pretty").Funcs(template.FuncMap{
	"faint":    style.Faint,
	"bold":     style.Bold,
	"purple":   style.Fg(color.Purple),
	"blue":     style.Fg(color.Blue),
	"cyan":     style.Fg(color.Cyan),
	"value":    func(k string) any { return viper.Get(k) },
	"typename": func(v any) string { return reflect.TypeOf(v).String() },
	"hl": func(v any) string {
		switch value := v.(type) {
		case bool:
			b := strconv.FormatBool(value)
			if value {
				return style.Fg(color.Green)(b)
			}
			return style.Fg(color.Red)(b)
		case string:
			return style.Fg(color.Yellow)(value)
		default:
			return fmt.Sprint(value)
		}
	},
}).Parse(`{{ faint .Description }}
{{ blue "Key:" }}     {{ purple .Key }}
{{ blue "Env:" }}     {{ .Env }}
{{ blue "Value:" }}   {{ hl (value .Key) }}
{{ blue "Default:" }} {{ hl (.Value) }}
{{ blue "Type:" }}    {{ typename .Value }}`))

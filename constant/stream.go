package constant

// Category labels with fixed meaning across the pipeline.
const (
	// LiveNow is the effective category of every event whose start time has passed.
	LiveNow = "Live Now"

	// MiscCategory is assigned to catalog groups that carry no category label.
	MiscCategory = "Misc"

	// AlwaysLiveCategory is the upstream label of round-the-clock channels.
	AlwaysLiveCategory = "24/7 Streams"

	// UnnamedEvent replaces a missing stream name.
	UnnamedEvent = "Unnamed Event"
)

// PlaylistHeader opens every written playlist.
const PlaylistHeader = "#EXTM3U"

// ClientHintHeaders are emitted verbatim after every playlist record so players
// present the same origin the embed page would.
var ClientHintHeaders = []string{
	"#EXTVLCOPT:http-origin=https://ppv.to",
	"#EXTVLCOPT:http-referrer=https://ppv.to/",
	"#EXTVLCOPT:http-user-agent=" + UserAgent,
}

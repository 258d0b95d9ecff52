// Package fallback guesses a playlist URL for candidates no capture succeeded for.
package fallback

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/samber/mo"
	"github.com/streamcap/streamcap/stream"
	"github.com/streamcap/streamcap/util"
)

// DefaultPattern picks the path segment preceding a trailing numeric id.
var DefaultPattern = regexp.MustCompile(`/(?P<id>[A-Za-z0-9_-]+)/\d+/?$`)

// DefaultTemplate is the alternate host's historical playlist layout.
const DefaultTemplate = "https://gg.poocloud.in/{id}/index.m3u8"

// Synthesizer substitutes the id matched in an entry URL into Template.
type Synthesizer struct {
	Pattern  *regexp.Regexp
	Template string
}

// New returns a synthesizer using template, or the default one when empty.
func New(template string) *Synthesizer {
	if strings.TrimSpace(template) == "" {
		template = DefaultTemplate
	}
	return &Synthesizer{Pattern: DefaultPattern, Template: template}
}

// Synthesize returns the guessed URL, or None when the entry URL does not have the expected shape.
func (s *Synthesizer) Synthesize(c stream.Candidate) mo.Option[string] {
	u, err := url.Parse(c.EntryURL)
	if err != nil || u.Host == "" {
		return mo.None[string]()
	}

	id := util.ReGroups(s.Pattern, u.Path)["id"]
	if id == "" {
		return mo.None[string]()
	}

	return mo.Some(strings.ReplaceAll(s.Template, "{id}", id))
}

// Entry wraps a guessed URL. Such entries never went through a successful capture.
func (s *Synthesizer) Entry(c stream.Candidate) mo.Option[stream.Entry] {
	guess, ok := s.Synthesize(c).Get()
	if !ok {
		return mo.None[stream.Entry]()
	}
	return mo.Some(stream.Entry{Candidate: c, URLs: []string{guess}, Status: stream.StatusSynthesized})
}

package playlist

import (
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"
	"unicode"

	"github.com/samber/lo"
	"github.com/streamcap/streamcap/constant"
	"github.com/streamcap/streamcap/stream"
	"github.com/streamcap/streamcap/util"
)

const maxTrackID = 64

var (
	eastern  = lo.Must(time.LoadLocation("America/New_York"))
	mountain = lo.Must(time.LoadLocation("America/Denver"))
	london   = lo.Must(time.LoadLocation("Europe/London"))
)

// Renderer turns entries into playlist text.
type Renderer struct {
	Tables Tables
	// IDPrefix starts every track id.
	IDPrefix string
	// Headers follow every record line.
	Headers []string
	// AllURLs writes every URL of an entry instead of the primary one.
	AllURLs bool
}

// NewRenderer returns a renderer with the default tables and client-hint headers.
func NewRenderer(idPrefix string, allURLs bool) *Renderer {
	return &Renderer{
		Tables:   DefaultTables(),
		IDPrefix: idPrefix,
		Headers:  constant.ClientHintHeaders,
		AllURLs:  allURLs,
	}
}

// TrackID derives a stable identifier from a name.
func TrackID(prefix, name string) string {
	clean := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return unicode.ToLower(r)
		}
		return -1
	}, name)
	return util.Truncate(prefix+clean, maxTrackID)
}

// PrettyTime formats a start time for three audiences, or "" when unscheduled.
func PrettyTime(at time.Time) string {
	if at.IsZero() || at.Unix() <= 0 {
		return ""
	}
	return fmt.Sprintf("%s ET / %s MT / %s UK",
		at.In(eastern).Format("03:04 PM"),
		at.In(mountain).Format("03:04 PM"),
		at.In(london).Format("15:04"),
	)
}

// Title is the display title of a candidate.
func Title(c stream.Candidate) string {
	if when := PrettyTime(c.ScheduledAt.OrEmpty()); when != "" {
		return c.Name + " - " + when
	}
	return c.Name
}

func attr(s string) string {
	return strings.NewReplacer(`"`, "'", "\n", " ", "\r", " ").Replace(s)
}

// Render writes the header line and one record per entry, in order.
func (r *Renderer) Render(entries []stream.Entry) string {
	var b strings.Builder
	b.WriteString(constant.PlaylistHeader)
	b.WriteByte('\n')

	for _, e := range entries {
		c := e.Candidate
		logo := c.Poster.OrElse(r.Tables.Logo(c.Category))

		fmt.Fprintf(&b, `#EXTINF:-1 tvg-id="%s" tvg-name="%s" tvg-logo="%s" group-title="%s"`,
			TrackID(r.IDPrefix, c.Name), attr(c.Name), attr(logo), attr(r.Tables.Group(c.Category)))

		switch e.Status {
		case stream.StatusSynthesized:
			b.WriteString(` tvg-status="synthesized"`)
		case stream.StatusUnvalidated:
			b.WriteString(` tvg-status="unvalidated"`)
		}

		title := Title(c)
		if icon := r.Tables.Icon(c.Category); icon != "" {
			title = icon + " " + title
		}
		b.WriteString(",")
		b.WriteString(strings.ReplaceAll(title, "\n", " "))
		b.WriteByte('\n')

		for _, h := range r.Headers {
			b.WriteString(h)
			b.WriteByte('\n')
		}

		urls := []string{e.Primary()}
		if r.AllURLs {
			urls = e.URLs
		}
		for _, u := range urls {
			b.WriteString(u)
			b.WriteByte('\n')
		}
	}

	return b.String()
}

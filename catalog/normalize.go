package catalog

import (
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/streamcap/streamcap/constant"
	"github.com/streamcap/streamcap/stream"
)

// Normalize flattens the catalog into candidates, one per stream with an entry URL.
//
// A stream whose start time has passed is presented under the "Live Now"
// category unless it is always live, either by its own flag or because its
// category is listed in alwaysLiveCategories.
func Normalize(raw *Response, now time.Time, alwaysLiveCategories []string) []stream.Candidate {
	if raw == nil {
		return nil
	}

	var candidates []stream.Candidate
	for _, group := range raw.Streams {
		category := strings.TrimSpace(group.Category)
		if category == "" {
			category = constant.MiscCategory
		}
		alwaysLiveCategory := lo.Contains(alwaysLiveCategories, category)

		for _, item := range group.Streams {
			entry := strings.TrimSpace(item.Iframe)
			if entry == "" {
				continue
			}

			name := strings.TrimSpace(item.Name)
			if name == "" {
				name = constant.UnnamedEvent
			}

			c := stream.Candidate{
				Name:        name,
				EntryURL:    entry,
				RawCategory: category,
				Category:    category,
				AlwaysLive:  bool(item.AlwaysLive) || alwaysLiveCategory,
				Source:      stream.SourceCatalog,
			}

			if item.StartsAt > 0 {
				c.ScheduledAt = mo.Some(time.Unix(int64(item.StartsAt), 0))
			}
			if poster := strings.TrimSpace(item.Poster); poster != "" {
				c.Poster = mo.Some(poster)
			}

			c.LiveNow = item.StartsAt > 0 && int64(item.StartsAt) <= now.Unix() && !c.AlwaysLive
			if c.LiveNow {
				c.Category = constant.LiveNow
			}

			c.Identity = stream.Identity(c.Name, c.Category, c.EntryURL)
			candidates = append(candidates, c)
		}
	}

	return candidates
}

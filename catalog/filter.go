package catalog

import (
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/samber/lo"
	"github.com/streamcap/streamcap/stream"
)

// Filter keeps the candidates whose name or category fuzzily matches query.
// An empty query keeps everything.
func Filter(candidates []stream.Candidate, query string) []stream.Candidate {
	query = strings.TrimSpace(query)
	if query == "" {
		return candidates
	}

	return lo.Filter(candidates, func(c stream.Candidate, _ int) bool {
		return fuzzy.MatchNormalizedFold(query, c.Name) || fuzzy.MatchNormalizedFold(query, c.RawCategory)
	})
}

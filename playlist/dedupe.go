// Package playlist merges resolved entries and renders them as an M3U channel list.
package playlist

import (
	"sort"

	"github.com/streamcap/streamcap/stream"
)

// Dedupe keeps the first entry of every (name, category) pair.
// Applying it to its own output changes nothing.
func Dedupe(entries []stream.Entry) []stream.Entry {
	seen := make(map[string]struct{}, len(entries))
	out := make([]stream.Entry, 0, len(entries))
	for _, e := range entries {
		k := e.Candidate.DedupeKey()
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, e)
	}
	return out
}

// SortBySchedule orders entries by start time, unscheduled first, keeping ties in place.
func SortBySchedule(entries []stream.Entry) []stream.Entry {
	out := append([]stream.Entry(nil), entries...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Candidate.Unix() < out[j].Candidate.Unix()
	})
	return out
}

// Package live scrapes an optional "currently live" listing page for extra candidates.
package live

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/streamcap/streamcap/constant"
	"github.com/streamcap/streamcap/log"
	"github.com/streamcap/streamcap/network"
	"github.com/streamcap/streamcap/stream"
)

// Scraper lists channel pages linked from a live listing.
type Scraper struct {
	HTTP      *http.Client
	URL       string
	Selector  string
	UserAgent string
}

// NewScraper returns a Scraper for pageURL using the shared network client.
// An empty pageURL disables the scrape.
func NewScraper(pageURL, selector string) *Scraper {
	return &Scraper{
		HTTP:      network.Client,
		URL:       pageURL,
		Selector:  selector,
		UserAgent: constant.UserAgent,
	}
}

// List returns one "Live Now" candidate per distinct channel link.
// It never fails: any problem is logged and yields no candidates.
func (s *Scraper) List(ctx context.Context) []stream.Candidate {
	if s == nil || s.URL == "" {
		return nil
	}

	candidates, err := s.list(ctx)
	if err != nil {
		log.Warnf("live listing skipped: %v", err)
		return nil
	}

	log.Infof("Live listing found %d channels", len(candidates))
	return candidates
}

func (s *Scraper) list(ctx context.Context) ([]stream.Candidate, error) {
	base, err := url.Parse(s.URL)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", s.UserAgent)

	resp, err := s.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var candidates []stream.Candidate
	doc.Find(s.Selector).Each(func(_ int, sel *goquery.Selection) {
		href, exists := sel.Attr("href")
		if !exists || strings.TrimSpace(href) == "" {
			return
		}

		rel, err := url.Parse(strings.TrimSpace(href))
		if err != nil {
			return
		}
		abs := base.ResolveReference(rel)
		entry := abs.String()
		if seen[entry] {
			return
		}
		seen[entry] = true

		name := strings.Join(strings.Fields(sel.Text()), " ")
		if name == "" {
			name = channelName(abs)
		}

		candidates = append(candidates, stream.Candidate{
			Identity:    stream.Identity(name, constant.LiveNow, entry),
			Name:        name,
			EntryURL:    entry,
			Category:    constant.LiveNow,
			RawCategory: constant.LiveNow,
			LiveNow:     true,
			Source:      stream.SourceLive,
		})
	})

	return candidates, nil
}

func channelName(u *url.URL) string {
	if id := u.Query().Get("channel"); id != "" {
		return "Channel " + id
	}
	return "Channel " + strings.Trim(u.Path, "/")
}

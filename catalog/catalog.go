// Package catalog fetches the upstream event catalog and turns it into capture candidates.
package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/streamcap/streamcap/constant"
	"github.com/streamcap/streamcap/log"
	"github.com/streamcap/streamcap/network"
)

var (
	// ErrUnavailable is returned when the catalog could not be retrieved.
	ErrUnavailable = errors.New("catalog unavailable")
	// ErrMalformed is returned when the catalog body is not the expected JSON document.
	ErrMalformed = errors.New("catalog malformed")
)

// Response is the catalog document: streams grouped by category.
type Response struct {
	Streams []Group `json:"streams"`
}

// Group lists the streams of one upstream category.
type Group struct {
	Category string `json:"category"`
	Streams  []Item `json:"streams"`
}

// Item is one advertised stream. Every field is optional upstream.
type Item struct {
	Name       string `json:"name"`
	Iframe     string `json:"iframe"`
	Poster     string `json:"poster"`
	StartsAt   Epoch  `json:"starts_at"`
	AlwaysLive Flag   `json:"always_live"`
}

// Epoch is a unix timestamp in seconds that tolerates null, strings and floats.
type Epoch int64

func (e *Epoch) UnmarshalJSON(data []byte) error {
	data = bytes.Trim(data, `"`)
	if len(data) == 0 || string(data) == "null" {
		*e = 0
		return nil
	}

	f, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		*e = 0
		return nil
	}
	*e = Epoch(f)
	return nil
}

// Flag is a boolean that also accepts numbers, as some upstream rows send 0/1.
type Flag bool

func (f *Flag) UnmarshalJSON(data []byte) error {
	switch s := string(bytes.Trim(data, `"`)); s {
	case "true":
		*f = true
	case "", "null", "false", "0":
		*f = false
	default:
		n, err := strconv.ParseFloat(s, 64)
		*f = Flag(err == nil && n != 0)
	}
	return nil
}

// Client retrieves the catalog document.
type Client struct {
	HTTP      *http.Client
	URL       string
	UserAgent string
}

// NewClient returns a Client for url using the shared network client.
func NewClient(url string) *Client {
	return &Client{
		HTTP:      network.Client,
		URL:       url,
		UserAgent: constant.UserAgent,
	}
}

// Fetch downloads and decodes the catalog. Any failure is fatal to a run.
func (c *Client) Fetch(ctx context.Context) (*Response, error) {
	log.Infof("Fetching catalog from %s", c.URL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	req.Header.Set("User-Agent", c.UserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		log.Error(err)
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Errorf("Catalog returned status code %d", resp.StatusCode)
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	var response Response
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		log.Error(err)
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}

	log.Infof("Catalog lists %d categories", len(response.Streams))
	return &response, nil
}

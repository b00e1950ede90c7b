// Package threatintel implements the threat sources the pipeline correlates against.
//
// Sources:
//   - HTMLTableSource: fetches a web page and reads IP/description pairs from its table rows
//   - FileSource: reads a local "IP,description" list
//
// Every source returns a non-nil map, even on failure, so a broken feed
// degrades to "no matches" instead of stopping the run.
package threatintel

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"

	"github.com/xoelrdgz/logintel/internal/domain"
)

// maxPageSize caps how much of the response body is parsed.
const maxPageSize = 16 << 20

var ErrNoTable = errors.New("no table rows found")

// FetchError reports a failed threat source fetch.
type FetchError struct {
	Source string
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch threat intelligence from %s: %v", e.Source, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// HTMLTableConfig configures the HTML table source.
type HTMLTableConfig struct {
	URL       string        // Page holding the threat table
	Timeout   time.Duration // Whole-request timeout (default: 10s)
	UserAgent string        // Sent with the request when set
}

// HTMLTableSource scrapes IP/description pairs from an HTML table.
//
// Page layout:
//   - The first row of the page's tables is a header and is skipped
//   - Every following row with at least two td cells is an entry
//   - Cell 0 is the IP, cell 1 the description
type HTMLTableSource struct {
	url       string
	userAgent string
	client    *http.Client
}

func NewHTMLTableSource(config HTMLTableConfig) *HTMLTableSource {
	if config.Timeout <= 0 {
		config.Timeout = 10 * time.Second
	}
	return &HTMLTableSource{
		url:       config.URL,
		userAgent: config.UserAgent,
		client:    &http.Client{Timeout: config.Timeout},
	}
}

func (s *HTMLTableSource) Name() string {
	return s.url
}

// Fetch downloads the page and extracts the table.
// Any failure returns an empty map together with a *FetchError.
func (s *HTMLTableSource) Fetch(ctx context.Context) (*domain.ThreatMap, error) {
	empty := domain.NewThreatMap()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return empty, &FetchError{Source: s.url, Err: err}
	}
	req.Header.Set("Accept", "text/html")
	if s.userAgent != "" {
		req.Header.Set("User-Agent", s.userAgent)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return empty, &FetchError{Source: s.url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return empty, &FetchError{Source: s.url, Err: fmt.Errorf("unexpected status %s", resp.Status)}
	}

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, maxPageSize))
	if err != nil {
		return empty, &FetchError{Source: s.url, Err: err}
	}

	threats, err := ExtractThreatTable(doc)
	if err != nil {
		return empty, &FetchError{Source: s.url, Err: err}
	}

	log.Info().Str("source", s.url).Int("count", threats.Len()).Msgf("Scraped %d threat IPs", threats.Len())
	return threats, nil
}

// ExtractThreatTable reads the threat rows of an already parsed page.
func ExtractThreatTable(doc *goquery.Document) (*domain.ThreatMap, error) {
	threats := domain.NewThreatMap()

	rows := doc.Find("table tr")
	if rows.Length() == 0 {
		return threats, ErrNoTable
	}

	rows.Each(func(i int, row *goquery.Selection) {
		if i == 0 {
			return
		}
		cells := row.Find("td")
		if cells.Length() < 2 {
			return
		}
		ip := cellText(cells.Eq(0))
		if ip == "" {
			return
		}
		threats.Put(ip, cellText(cells.Eq(1)))
	})

	return threats, nil
}

// cellText returns the visible text of a cell with whitespace runs collapsed.
func cellText(cell *goquery.Selection) string {
	return strings.Join(strings.Fields(cell.Text()), " ")
}

package threatintel

import (
	"net/url"
	"strings"
	"time"

	"github.com/xoelrdgz/logintel/internal/ports"
)

// SourceConfig selects and configures a threat source.
type SourceConfig struct {
	URL       string
	Timeout   time.Duration
	UserAgent string
}

// NewSource picks the source implementation from the URL scheme:
// http and https scrape an HTML table, file:// or a bare path reads a local list.
func NewSource(config SourceConfig) ports.ThreatSource {
	u, err := url.Parse(config.URL)
	if err == nil {
		switch strings.ToLower(u.Scheme) {
		case "http", "https":
			return NewHTMLTableSource(HTMLTableConfig{
				URL:       config.URL,
				Timeout:   config.Timeout,
				UserAgent: config.UserAgent,
			})
		case "file":
			path := u.Path
			if u.Host != "" {
				path = u.Host + u.Path
			}
			return NewFileSource(path)
		}
	}
	return NewFileSource(config.URL)
}

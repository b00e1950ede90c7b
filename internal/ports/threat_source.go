package ports

import (
	"context"

	"github.com/xoelrdgz/logintel/internal/domain"
)

// ThreatSource supplies the IP -> description snapshot used for correlation.
//
// Implementations:
//   - HTMLTableSource: scrapes a table from a threat-intel web page
//   - FileSource: reads a local "IP,description" list
type ThreatSource interface {
	// Fetch returns the current snapshot.
	//
	// Contract:
	//   - MUST return a non-nil (possibly empty) map, even alongside an error
	//   - A partial map is acceptable; callers never treat it as fatal
	//   - SHOULD respect ctx cancellation
	Fetch(ctx context.Context) (*domain.ThreatMap, error)

	// Name identifies the source in logs.
	Name() string
}

// Package ports defines the interfaces between the correlation pipeline and
// its adapters (log input, threat sources, report output, observability).
//
// Dependencies flow inward: internal/app depends on these interfaces and
// internal/domain only; implementations live in internal/adapters/.
package ports

import (
	"context"

	"github.com/xoelrdgz/logintel/internal/domain"
)

// LogReader loads every record of an access log in file order.
type LogReader interface {
	// Read parses the file at path.
	//
	// Returns:
	//   - Records in file order; lines that do not match are skipped
	//   - An empty (non-nil) result and an error if the file cannot be opened or read
	Read(ctx context.Context, path string) (*domain.ParseResult, error)
}

// LineParser turns a single access-log line into a record.
type LineParser interface {
	Parse(line string) (domain.LogRecord, error)
	Format() string
}

package app

import "github.com/xoelrdgz/logintel/internal/domain"

// AggregateFailures counts failed-login responses per IP and keeps the IPs
// with at least domain.FailedLoginThreshold of them.
//
// A record is a failure when its status starts with "40" (400-409).
// IPs keep the order in which they first failed.
func AggregateFailures(records []domain.LogRecord) *domain.FailureCounts {
	counts := domain.NewFailureCounts()
	for _, r := range records {
		if r.IsFailure() {
			counts.Add(r.IP, 1)
		}
	}

	return counts.Filter(func(_ string, n int) bool {
		return n >= domain.FailedLoginThreshold
	})
}

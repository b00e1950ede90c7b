package app

import "github.com/xoelrdgz/logintel/internal/domain"

// CorrelateThreats joins the records against the threat map on IP.
// Every occurrence of a listed IP yields one entry, in record order.
func CorrelateThreats(records []domain.LogRecord, threats *domain.ThreatMap) []domain.MatchedThreat {
	matched := make([]domain.MatchedThreat, 0)
	if threats == nil || threats.Len() == 0 {
		return matched
	}

	for _, r := range records {
		if description, ok := threats.Lookup(r.IP); ok {
			matched = append(matched, domain.NewMatchedThreat(r, description))
		}
	}
	return matched
}

// CombineReport merges both results into the combined report unchanged.
func CombineReport(counts *domain.FailureCounts, matched []domain.MatchedThreat) domain.CombinedReport {
	if counts == nil {
		counts = domain.NewFailureCounts()
	}
	if matched == nil {
		matched = []domain.MatchedThreat{}
	}
	return domain.CombinedReport{
		FailedLogins:   counts,
		MatchedThreats: matched,
	}
}

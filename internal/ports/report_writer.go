package ports

import "github.com/xoelrdgz/logintel/internal/domain"

// ReportWriter persists the pipeline outputs.
//
// Every method opens, writes and closes its target before returning. A
// failure in one method has no effect on the others.
type ReportWriter interface {
	// WriteFailedLogins writes the structured document and the text listing.
	WriteFailedLogins(counts *domain.FailureCounts) error

	// WriteLogCSV writes all records under the header ip,date,method,status.
	WriteLogCSV(records []domain.LogRecord) error

	// WriteThreatIPs writes the fetched threat map.
	WriteThreatIPs(threats *domain.ThreatMap) error

	// WriteCombined writes the combined report.
	WriteCombined(report domain.CombinedReport) error
}

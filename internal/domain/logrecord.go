package domain

import "strings"

const (
	// FailedLoginThreshold is the minimum number of failure statuses before an IP is flagged.
	FailedLoginThreshold = 5

	// FailureStatusPrefix is matched against the status text, not its numeric class.
	// "400".."409" count, "410" and "429" do not.
	FailureStatusPrefix = "40"
)

// LogRecord is one access-log line reduced to the fields the reports carry.
// Timestamp stays in its raw log form.
type LogRecord struct {
	IP        string `json:"ip" csv:"ip"`
	Timestamp string `json:"date" csv:"date"`
	Method    string `json:"method" csv:"method"`
	Status    string `json:"status" csv:"status"`
}

// IsFailure reports whether the status counts towards failed logins.
func (r LogRecord) IsFailure() bool {
	return strings.HasPrefix(r.Status, FailureStatusPrefix)
}

// MatchedThreat is a log record whose IP appears in the threat map.
type MatchedThreat struct {
	IP          string `json:"ip"`
	Timestamp   string `json:"date"`
	Method      string `json:"method"`
	Status      string `json:"status"`
	Description string `json:"description"`
}

func NewMatchedThreat(r LogRecord, description string) MatchedThreat {
	return MatchedThreat{
		IP:          r.IP,
		Timestamp:   r.Timestamp,
		Method:      r.Method,
		Status:      r.Status,
		Description: description,
	}
}

// Record returns the log fields without the description.
func (m MatchedThreat) Record() LogRecord {
	return LogRecord{IP: m.IP, Timestamp: m.Timestamp, Method: m.Method, Status: m.Status}
}

// ParseResult is the output of reading one access log.
type ParseResult struct {
	Records   []LogRecord
	LinesRead int
	Skipped   int
}

// Empty reports whether no record was parsed.
func (p *ParseResult) Empty() bool {
	return p == nil || len(p.Records) == 0
}

// MaxLineLength bounds how much of a single log line is inspected.
const MaxLineLength = 8192

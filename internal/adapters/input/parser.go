package input

import (
	"errors"
	"regexp"

	"github.com/xoelrdgz/logintel/internal/domain"
)

var ErrNoMatch = errors.New("line does not match access log format")

// accessLogPattern extracts IP, timestamp, method and status from a
// common/combined log line:
//
//	<ip> - - [<timestamp>] "<method> <path> HTTP/<version>" <status> ...
//
// Text before the IP and after the status is ignored.
var accessLogPattern = regexp.MustCompile(
	`(?:^|[^\d.])(\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3}) - - \[(.*?)\] "(\w+) .*? HTTP/.*?" (\d{3})(?:\s|$)`,
)

// AccessLogParser matches access-log lines with a single regular expression.
// It is stateless and safe for concurrent use.
type AccessLogParser struct {
	re *regexp.Regexp
}

func NewAccessLogParser() *AccessLogParser {
	return &AccessLogParser{re: accessLogPattern}
}

func (p *AccessLogParser) Parse(line string) (domain.LogRecord, error) {
	if len(line) > domain.MaxLineLength {
		line = line[:domain.MaxLineLength]
	}

	if !p.Validate(line) {
		return domain.LogRecord{}, ErrNoMatch
	}

	m := p.re.FindStringSubmatch(line)
	if m == nil {
		return domain.LogRecord{}, ErrNoMatch
	}

	return domain.LogRecord{
		IP:        m[1],
		Timestamp: m[2],
		Method:    m[3],
		Status:    m[4],
	}, nil
}

func (p *AccessLogParser) Format() string {
	return "access"
}

// Validate is a cheap pre-check that rejects lines lacking the bracket and quote delimiters.
func (p *AccessLogParser) Validate(line string) bool {
	return containsByte(line, '[') &&
		containsByte(line, ']') &&
		containsByte(line, '"')
}

func containsByte(s string, c byte) bool {
	for i := 0; i < len(s); i++ {
		if s[i] == c {
			return true
		}
	}
	return false
}

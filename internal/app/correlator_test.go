package app

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xoelrdgz/logintel/internal/domain"
)

func TestCorrelateThreatsNoDedup(t *testing.T) {
	threats := domain.NewThreatMap()
	threats.Put("10.0.0.1", "known botnet")

	records := []domain.LogRecord{
		rec("10.0.0.1", "200"),
		rec("192.168.1.1", "200"),
		rec("10.0.0.1", "401"),
	}

	matched := CorrelateThreats(records, threats)
	require.Len(t, matched, 2)
	for i, want := range []domain.LogRecord{records[0], records[2]} {
		assert.Equal(t, want, matched[i].Record())
		assert.Equal(t, "known botnet", matched[i].Description)
	}
}

func TestCorrelateThreatsIsIntersection(t *testing.T) {
	threats := domain.NewThreatMap()
	threats.Put("10.0.0.1", "a")
	threats.Put("10.0.0.9", "never seen")
	threats.Put("10.0.0.3", "c")

	records := []domain.LogRecord{rec("10.0.0.3", "200"), rec("10.0.0.2", "200"), rec("10.0.0.1", "200"), rec("10.0.0.3", "404")}

	matched := CorrelateThreats(records, threats)

	ips := make([]string, 0, len(matched))
	for _, m := range matched {
		ips = append(ips, m.IP)
	}
	assert.Equal(t, []string{"10.0.0.3", "10.0.0.1", "10.0.0.3"}, ips)
	assert.Equal(t, "c", matched[0].Description)
	assert.Equal(t, "a", matched[1].Description)
}

func TestCorrelateThreatsEmpty(t *testing.T) {
	records := []domain.LogRecord{rec("10.0.0.1", "200")}

	assert.Empty(t, CorrelateThreats(records, domain.NewThreatMap()))
	assert.Empty(t, CorrelateThreats(records, nil))
	assert.Empty(t, CorrelateThreats(nil, domain.NewThreatMap()))
	assert.NotNil(t, CorrelateThreats(nil, nil))
}

func TestCombineReport(t *testing.T) {
	counts := domain.NewFailureCounts()
	counts.Set("192.168.1.10", 6)

	matched := []domain.MatchedThreat{
		domain.NewMatchedThreat(rec("10.0.0.1", "200"), "known botnet"),
	}

	report := CombineReport(counts, matched)
	assert.Same(t, counts, report.FailedLogins)
	assert.Equal(t, matched, report.MatchedThreats)

	data, err := json.Marshal(report)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"failed_logins": {"192.168.1.10": 6},
		"matched_threats": [
			{"ip": "10.0.0.1", "date": "10/Oct/2024:13:55:36 +0000", "method": "POST", "status": "200", "description": "known botnet"}
		]
	}`, string(data))
}

func TestCombineReportEmptyInputs(t *testing.T) {
	data, err := json.Marshal(CombineReport(nil, nil))
	require.NoError(t, err)
	assert.JSONEq(t, `{"failed_logins": {}, "matched_threats": []}`, string(data))
}

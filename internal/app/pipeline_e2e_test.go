package app_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xoelrdgz/logintel/internal/adapters/input"
	"github.com/xoelrdgz/logintel/internal/adapters/output"
	"github.com/xoelrdgz/logintel/internal/adapters/threatintel"
	"github.com/xoelrdgz/logintel/internal/app"
)

const sampleLog = "../../testdata/server_logs.txt"

func outputPaths(dir string) output.ReportPaths {
	return output.ReportPaths{
		FailedLoginsJSON: filepath.Join(dir, "failed_logins.json"),
		FailedLoginsText: filepath.Join(dir, "log_analysis.txt"),
		LogCSV:           filepath.Join(dir, "log_analysis.csv"),
		ThreatIPsJSON:    filepath.Join(dir, "threat_ips.json"),
		CombinedJSON:     filepath.Join(dir, "combined_security_data.json"),
	}
}

func TestPipelineEndToEnd(t *testing.T) {
	page, err := os.ReadFile("../../testdata/threat_table.html")
	require.NoError(t, err)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write(page)
	}))
	defer srv.Close()

	paths := outputPaths(t.TempDir())
	metrics := output.NewRunMetrics("logintel")

	pipeline := app.NewPipeline(app.PipelineConfig{
		LogPath:  sampleLog,
		Reader:   input.NewFileReader(input.NewAccessLogParser()),
		Source:   threatintel.NewSource(threatintel.SourceConfig{URL: srv.URL, Timeout: 2 * time.Second}),
		Writer:   output.NewFileReportWriter(paths),
		Observer: metrics,
	})

	summary := pipeline.Run(context.Background())

	require.Empty(t, summary.Errors)
	assert.False(t, summary.Halted)
	assert.Equal(t, 15, summary.LinesRead)
	assert.Equal(t, 14, summary.RecordsParsed)
	assert.Equal(t, 1, summary.LinesSkipped)

	failed, err := output.ReadFailedLogins(paths.FailedLoginsJSON)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"192.168.1.10": 6}, failed.ToMap())

	records, err := output.ReadLogCSV(paths.LogCSV)
	require.NoError(t, err)
	assert.Len(t, records, 14)
	assert.Equal(t, "192.168.1.10", records[0].IP)
	assert.Equal(t, "DELETE", records[13].Method)

	threats, err := output.ReadThreatIPs(paths.ThreatIPsJSON)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"10.0.0.1": "known botnet", "203.0.113.9": "scanner"}, threats.ToMap())

	combined, err := output.ReadCombined(paths.CombinedJSON)
	require.NoError(t, err)
	assert.Equal(t, failed.ToMap(), combined.FailedLogins.ToMap())
	require.Len(t, combined.MatchedThreats, 2)
	assert.Equal(t, "200", combined.MatchedThreats[0].Status)
	assert.Equal(t, "404", combined.MatchedThreats[1].Status)
	for _, m := range combined.MatchedThreats {
		assert.Equal(t, "10.0.0.1", m.IP)
		assert.Equal(t, "known botnet", m.Description)
	}
}

func TestPipelineEndToEndThreatSourceDown(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	paths := outputPaths(t.TempDir())
	pipeline := app.NewPipeline(app.PipelineConfig{
		LogPath: sampleLog,
		Reader:  input.NewFileReader(nil),
		Source:  threatintel.NewSource(threatintel.SourceConfig{URL: srv.URL}),
		Writer:  output.NewFileReportWriter(paths),
	})

	summary := pipeline.Run(context.Background())

	assert.False(t, summary.Halted)
	assert.True(t, summary.Failed(app.StageFetchThreats))
	assert.FileExists(t, paths.FailedLoginsJSON)
	assert.FileExists(t, paths.LogCSV)
	assert.NoFileExists(t, paths.ThreatIPsJSON)
	assert.NoFileExists(t, paths.CombinedJSON)
}

func TestPipelineEndToEndFileSource(t *testing.T) {
	list, err := filepath.Abs("../../testdata/malicious_ips.txt")
	require.NoError(t, err)

	paths := outputPaths(t.TempDir())
	pipeline := app.NewPipeline(app.PipelineConfig{
		LogPath: sampleLog,
		Reader:  input.NewFileReader(nil),
		Source:  threatintel.NewSource(threatintel.SourceConfig{URL: "file://" + list}),
		Writer:  output.NewFileReportWriter(paths),
	})

	summary := pipeline.Run(context.Background())

	require.Empty(t, summary.Errors)
	assert.Equal(t, 3, summary.Threats.Len())
	assert.Len(t, summary.MatchedThreats, 2)
}

func TestPipelineEndToEndMissingLog(t *testing.T) {
	dir := t.TempDir()
	paths := outputPaths(dir)

	pipeline := app.NewPipeline(app.PipelineConfig{
		LogPath: filepath.Join(dir, "absent.log"),
		Reader:  input.NewFileReader(nil),
		Source:  threatintel.NewSource(threatintel.SourceConfig{URL: "http://127.0.0.1:1/"}),
		Writer:  output.NewFileReportWriter(paths),
	})

	summary := pipeline.Run(context.Background())

	assert.True(t, summary.Halted)
	require.Len(t, summary.Errors, 1)
	var readErr *input.ReadError
	assert.ErrorAs(t, summary.Errors[0], &readErr)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

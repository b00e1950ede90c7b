// Package output provides the report, metrics and console adapters.
//
// This file implements ReportWriter on the local filesystem:
//   - Failed logins: indented JSON object plus a plain text listing
//   - Parsed records: CSV with header ip,date,method,status
//   - Threat map and combined report: indented JSON
//
// Every write truncates its target, and the file is closed before the
// method returns whether or not the write succeeded.
package output

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/gocarina/gocsv"
	"github.com/rs/zerolog/log"

	"github.com/xoelrdgz/logintel/internal/domain"
)

// jsonIndent matches the four-space layout of the published report files.
const jsonIndent = "    "

// WriteError reports a report file that could not be written.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

// ReportPaths names the output files.
type ReportPaths struct {
	FailedLoginsJSON string
	FailedLoginsText string
	LogCSV           string
	ThreatIPsJSON    string
	CombinedJSON     string
}

// FileReportWriter writes the reports to the paths it was built with.
type FileReportWriter struct {
	paths ReportPaths
	perm  os.FileMode
}

func NewFileReportWriter(paths ReportPaths) *FileReportWriter {
	return &FileReportWriter{paths: paths, perm: 0o644}
}

// Paths returns the configured output files.
func (w *FileReportWriter) Paths() ReportPaths {
	return w.paths
}

// WriteFailedLogins writes the JSON document first, then the text listing.
// A failure in the JSON file skips the text file.
func (w *FileReportWriter) WriteFailedLogins(counts *domain.FailureCounts) error {
	if err := w.writeJSON(w.paths.FailedLoginsJSON, counts); err != nil {
		return err
	}
	log.Info().Str("file", w.paths.FailedLoginsJSON).Msgf("Failed logins saved to %s.", w.paths.FailedLoginsJSON)

	err := writeFile(w.paths.FailedLoginsText, w.perm, func(bw *bufio.Writer) error {
		var werr error
		counts.Each(func(ip string, n int) {
			if werr == nil {
				_, werr = fmt.Fprintf(bw, "%s: %d failed attempts\n", ip, n)
			}
		})
		return werr
	})
	if err != nil {
		return err
	}
	log.Info().Str("file", w.paths.FailedLoginsText).Msgf("Log analysis saved to %s.", w.paths.FailedLoginsText)
	return nil
}

func (w *FileReportWriter) WriteLogCSV(records []domain.LogRecord) error {
	if records == nil {
		records = []domain.LogRecord{}
	}
	err := writeFile(w.paths.LogCSV, w.perm, func(bw *bufio.Writer) error {
		return gocsv.Marshal(&records, bw)
	})
	if err != nil {
		return err
	}
	log.Info().Str("file", w.paths.LogCSV).Int("rows", len(records)).Msgf("Log data written to %s.", w.paths.LogCSV)
	return nil
}

func (w *FileReportWriter) WriteThreatIPs(threats *domain.ThreatMap) error {
	if err := w.writeJSON(w.paths.ThreatIPsJSON, threats); err != nil {
		return err
	}
	log.Info().Str("file", w.paths.ThreatIPsJSON).Msgf("Threat intelligence data saved to %s.", w.paths.ThreatIPsJSON)
	return nil
}

func (w *FileReportWriter) WriteCombined(report domain.CombinedReport) error {
	if err := w.writeJSON(w.paths.CombinedJSON, report); err != nil {
		return err
	}
	log.Info().Str("file", w.paths.CombinedJSON).Msgf("Combined data saved to %s.", w.paths.CombinedJSON)
	return nil
}

func (w *FileReportWriter) writeJSON(path string, v interface{}) error {
	return writeFile(path, w.perm, func(bw *bufio.Writer) error {
		enc := json.NewEncoder(bw)
		enc.SetIndent("", jsonIndent)
		enc.SetEscapeHTML(false)
		return enc.Encode(v)
	})
}

// writeFile truncates path, lets fill write through a buffer and closes the
// file on every path. Errors come back as *WriteError.
func writeFile(path string, perm os.FileMode, fill func(bw *bufio.Writer) error) (err error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm)
	if err != nil {
		return &WriteError{Path: path, Err: err}
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = &WriteError{Path: path, Err: cerr}
		}
	}()

	bw := bufio.NewWriterSize(file, 64*1024)
	if err := fill(bw); err != nil {
		return &WriteError{Path: path, Err: err}
	}
	if err := bw.Flush(); err != nil {
		return &WriteError{Path: path, Err: err}
	}
	return nil
}

// ReadFailedLogins loads a failed-logins document written by WriteFailedLogins.
func ReadFailedLogins(path string) (*domain.FailureCounts, error) {
	counts := domain.NewFailureCounts()
	if err := readJSON(path, counts); err != nil {
		return nil, err
	}
	return counts, nil
}

// ReadLogCSV loads the records of a CSV written by WriteLogCSV.
func ReadLogCSV(path string) ([]domain.LogRecord, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	records := []domain.LogRecord{}
	if err := gocsv.Unmarshal(file, &records); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return records, nil
}

func ReadThreatIPs(path string) (*domain.ThreatMap, error) {
	threats := domain.NewThreatMap()
	if err := readJSON(path, threats); err != nil {
		return nil, err
	}
	return threats, nil
}

func ReadCombined(path string) (domain.CombinedReport, error) {
	var report domain.CombinedReport
	if err := readJSON(path, &report); err != nil {
		return domain.CombinedReport{}, err
	}
	if report.FailedLogins == nil {
		report.FailedLogins = domain.NewFailureCounts()
	}
	return report, nil
}

func readJSON(path string, v interface{}) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

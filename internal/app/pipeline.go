// Package app runs the log correlation pipeline.
//
// Stages run one after another, each consuming the in-memory result of the
// previous one:
//
//	read log -> aggregate failures -> write failed logins
//	         -> write CSV
//	         -> fetch threats -> write threat IPs
//	         -> correlate -> combine -> write combined report
//
// A failing stage is logged, recorded in the Summary and skipped over.
// Only an empty parse result stops the run.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/xoelrdgz/logintel/internal/domain"
	"github.com/xoelrdgz/logintel/internal/ports"
)

// Stage names used in StageError and metrics labels.
const (
	StageRead              = "read_log"
	StageWriteFailedLogins = "write_failed_logins"
	StageWriteCSV          = "write_csv"
	StageFetchThreats      = "fetch_threats"
	StageWriteThreatIPs    = "write_threat_ips"
	StageWriteCombined     = "write_combined"
)

// ErrNoRecords halts the run when the log yields no record.
var ErrNoRecords = errors.New("no log data parsed")

// StageError is a failure contained at a stage boundary.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// Summary is the outcome of one run.
type Summary struct {
	LinesRead      int
	RecordsParsed  int
	LinesSkipped   int
	FailedLogins   *domain.FailureCounts
	Threats        *domain.ThreatMap
	MatchedThreats []domain.MatchedThreat

	// Written lists the stages whose output reached disk.
	Written []string
	Errors  []*StageError
	Halted  bool

	Started  time.Time
	Duration time.Duration
}

// Failed reports whether the named stage recorded an error.
func (s *Summary) Failed(stage string) bool {
	for _, e := range s.Errors {
		if e.Stage == stage {
			return true
		}
	}
	return false
}

// PipelineConfig wires the pipeline to its adapters.
type PipelineConfig struct {
	LogPath  string
	Reader   ports.LogReader
	Source   ports.ThreatSource
	Writer   ports.ReportWriter
	Observer ports.RunObserver // optional
}

type Pipeline struct {
	logPath  string
	reader   ports.LogReader
	source   ports.ThreatSource
	writer   ports.ReportWriter
	observer ports.RunObserver
}

func NewPipeline(config PipelineConfig) *Pipeline {
	observer := config.Observer
	if observer == nil {
		observer = nopObserver{}
	}
	return &Pipeline{
		logPath:  config.LogPath,
		reader:   config.Reader,
		source:   config.Source,
		writer:   config.Writer,
		observer: observer,
	}
}

// Run executes every stage once. It never returns an error: failures are
// logged and collected in the Summary.
func (p *Pipeline) Run(ctx context.Context) *Summary {
	summary := &Summary{Started: time.Now()}
	defer func() {
		summary.Duration = time.Since(summary.Started)
	}()

	result, err := p.reader.Read(ctx, p.logPath)
	if err != nil {
		p.fail(summary, StageRead, err)
	}
	if result == nil {
		result = &domain.ParseResult{}
	}
	summary.LinesRead = result.LinesRead
	summary.RecordsParsed = len(result.Records)
	summary.LinesSkipped = result.Skipped
	p.observer.ObserveParse(result.LinesRead, len(result.Records))

	if result.Empty() {
		if err == nil {
			p.fail(summary, StageRead, ErrNoRecords)
		}
		summary.Halted = true
		summary.FailedLogins = domain.NewFailureCounts()
		summary.Threats = domain.NewThreatMap()
		summary.MatchedThreats = []domain.MatchedThreat{}
		p.observer.ObserveOutcome(0, 0, 0)
		log.Warn().Str("file", p.logPath).Msg("No log data parsed. Exiting.")
		return summary
	}
	records := result.Records

	failed := AggregateFailures(records)
	summary.FailedLogins = failed
	if failed.Len() > 0 {
		p.write(summary, StageWriteFailedLogins, func() error {
			return p.writer.WriteFailedLogins(failed)
		})
	} else {
		log.Info().Msgf("No IPs with %d or more failed attempts found.", domain.FailedLoginThreshold)
	}

	p.write(summary, StageWriteCSV, func() error {
		return p.writer.WriteLogCSV(records)
	})

	threats, err := p.source.Fetch(ctx)
	if err != nil {
		p.fail(summary, StageFetchThreats, err)
	}
	if threats == nil {
		threats = domain.NewThreatMap()
	}
	summary.Threats = threats
	if threats.Len() > 0 {
		p.write(summary, StageWriteThreatIPs, func() error {
			return p.writer.WriteThreatIPs(threats)
		})
	}

	matched := CorrelateThreats(records, threats)
	summary.MatchedThreats = matched
	if len(matched) > 0 {
		report := CombineReport(failed, matched)
		p.write(summary, StageWriteCombined, func() error {
			return p.writer.WriteCombined(report)
		})
	} else {
		log.Info().Msg("No matches between logs and threat intelligence data.")
	}

	p.observer.ObserveOutcome(failed.Len(), threats.Len(), len(matched))

	log.Info().
		Int("records", summary.RecordsParsed).
		Int("failed_ips", failed.Len()).
		Int("threats", threats.Len()).
		Int("matched", len(matched)).
		Int("errors", len(summary.Errors)).
		Msg("Analysis complete")

	return summary
}

func (p *Pipeline) write(summary *Summary, stage string, fn func() error) {
	if err := fn(); err != nil {
		p.fail(summary, stage, err)
		return
	}
	summary.Written = append(summary.Written, stage)
}

func (p *Pipeline) fail(summary *Summary, stage string, err error) {
	summary.Errors = append(summary.Errors, &StageError{Stage: stage, Err: err})
	p.observer.ObserveStageError(stage)
	log.Error().Err(err).Str("stage", stage).Msg("Stage failed")
}

type nopObserver struct{}

func (nopObserver) ObserveParse(int, int)        {}
func (nopObserver) ObserveStageError(string)     {}
func (nopObserver) ObserveOutcome(int, int, int) {}

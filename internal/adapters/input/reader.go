package input

import (
	"context"
	"fmt"

	"github.com/nxadm/tail"
	"github.com/rs/zerolog/log"

	"github.com/xoelrdgz/logintel/internal/domain"
	"github.com/xoelrdgz/logintel/internal/ports"
)

// ReadError reports that the log file could not be opened or read.
type ReadError struct {
	Path string
	Err  error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("read %s: %v", e.Path, e.Err)
}

func (e *ReadError) Unwrap() error {
	return e.Err
}

// FileReader reads a static access log once, start to end.
type FileReader struct {
	parser ports.LineParser
}

func NewFileReader(parser ports.LineParser) *FileReader {
	if parser == nil {
		parser = NewAccessLogParser()
	}
	return &FileReader{parser: parser}
}

// Read parses every line of path in file order. Non-matching lines are
// counted as skipped. On any open or read failure the records gathered so
// far are discarded and an empty result is returned with a *ReadError.
func (r *FileReader) Read(ctx context.Context, path string) (*domain.ParseResult, error) {
	result := &domain.ParseResult{}

	t, err := tail.TailFile(path, tail.Config{
		Follow:    false,
		ReOpen:    false,
		MustExist: true,
		Logger:    tail.DiscardingLogger,
	})
	if err != nil {
		return result, &ReadError{Path: path, Err: err}
	}

	var records []domain.LogRecord
	lines := 0
	skipped := 0

	for {
		select {
		case <-ctx.Done():
			_ = t.Stop()
			return result, &ReadError{Path: path, Err: ctx.Err()}
		case line, ok := <-t.Lines:
			if !ok {
				if err := t.Wait(); err != nil {
					return result, &ReadError{Path: path, Err: err}
				}
				result.Records = records
				result.LinesRead = lines
				result.Skipped = skipped

				log.Info().
					Str("file", path).
					Str("format", r.parser.Format()).
					Int("lines", lines).
					Int("records", len(records)).
					Int("skipped", skipped).
					Msgf("Parsed %d log entries", len(records))
				return result, nil
			}
			if line.Err != nil {
				_ = t.Stop()
				return result, &ReadError{Path: path, Err: line.Err}
			}

			lines++
			record, err := r.parser.Parse(line.Text)
			if err != nil {
				skipped++
				continue
			}
			records = append(records, record)
		}
	}
}

package threatintel

import (
	"bufio"
	"context"
	"fmt"
	"net/netip"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/xoelrdgz/logintel/internal/domain"
)

// DefaultDescription is used for list entries that carry only an IP.
const DefaultDescription = "known malicious"

// FileSource reads threat intelligence from a local list.
//
// File Format:
//   - "IP" or "IP,description" per line
//   - Lines starting with # and empty lines are ignored
//   - Lines whose IP does not parse are skipped
type FileSource struct {
	path string
}

func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

func (s *FileSource) Name() string {
	return s.path
}

// Fetch reads the whole list. A missing or unreadable file yields an empty
// map and a *FetchError.
func (s *FileSource) Fetch(ctx context.Context) (*domain.ThreatMap, error) {
	empty := domain.NewThreatMap()

	cleanPath := filepath.Clean(s.path)
	if strings.Contains(cleanPath, "..") {
		return empty, &FetchError{Source: s.path, Err: fmt.Errorf("path traversal detected in threat list path %q", s.path)}
	}

	file, err := os.Open(cleanPath)
	if err != nil {
		return empty, &FetchError{Source: s.path, Err: err}
	}
	defer file.Close()

	threats := domain.NewThreatMap()
	scanner := bufio.NewScanner(file)

	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return empty, &FetchError{Source: s.path, Err: ctx.Err()}
		default:
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		ipStr, description, _ := strings.Cut(line, ",")
		ipStr = strings.TrimSpace(ipStr)

		if _, err := netip.ParseAddr(ipStr); err != nil {
			log.Debug().Str("ip", ipStr).Msg("Invalid IP in threat list, skipping")
			continue
		}

		description = strings.TrimSpace(description)
		if description == "" {
			description = DefaultDescription
		}
		threats.Put(ipStr, description)
	}

	if err := scanner.Err(); err != nil {
		return empty, &FetchError{Source: s.path, Err: err}
	}

	log.Info().Str("file", s.path).Int("count", threats.Len()).Msg("Loaded threat list")
	return threats, nil
}

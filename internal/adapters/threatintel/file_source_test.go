package threatintel

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileSourceFetch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "malicious_ips.txt")
	content := `# threat list
10.0.0.1,known botnet
203.0.113.7

not-an-ip,ignored
192.0.2.44 , tor exit node
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	threats, err := NewFileSource(path).Fetch(context.Background())
	require.NoError(t, err)

	assert.Equal(t, map[string]string{
		"10.0.0.1":    "known botnet",
		"203.0.113.7": DefaultDescription,
		"192.0.2.44":  "tor exit node",
	}, threats.ToMap())
}

func TestFileSourceMissingFile(t *testing.T) {
	source := NewFileSource(filepath.Join(t.TempDir(), "nope.txt"))

	threats, err := source.Fetch(context.Background())
	require.Error(t, err)

	var fetchErr *FetchError
	assert.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, 0, threats.Len())
}

func TestFileSourcePathTraversal(t *testing.T) {
	threats, err := NewFileSource("../../etc/passwd").Fetch(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "path traversal")
	assert.Equal(t, 0, threats.Len())
}

func TestFileSourceCancelled(t *testing.T) {
	path := filepath.Join(t.TempDir(), "list.txt")
	require.NoError(t, os.WriteFile(path, []byte("10.0.0.1\n"), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	threats, err := NewFileSource(path).Fetch(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, threats.Len())
}

func TestNewSource(t *testing.T) {
	tests := []struct {
		url      string
		wantHTML bool
		wantName string
	}{
		{url: "http://127.0.0.1:8000/", wantHTML: true, wantName: "http://127.0.0.1:8000/"},
		{url: "https://intel.example.com/feed", wantHTML: true, wantName: "https://intel.example.com/feed"},
		{url: "file:///var/lib/logintel/threats.txt", wantName: "/var/lib/logintel/threats.txt"},
		{url: "./testdata/threats.txt", wantName: "./testdata/threats.txt"},
	}

	for _, tc := range tests {
		t.Run(tc.url, func(t *testing.T) {
			source := NewSource(SourceConfig{URL: tc.url, Timeout: time.Second})

			_, isHTML := source.(*HTMLTableSource)
			assert.Equal(t, tc.wantHTML, isHTML)
			assert.Equal(t, tc.wantName, source.Name())
		})
	}
}

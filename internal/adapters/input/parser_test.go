package input

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccessLogParser(t *testing.T) {
	parser := NewAccessLogParser()

	tests := []struct {
		name       string
		line       string
		wantErr    bool
		wantIP     string
		wantTime   string
		wantMethod string
		wantStatus string
	}{
		{
			name:       "login failure",
			line:       `10.0.0.1 - - [01/Jan/2024:00:00:00] "GET /login HTTP/1.1" 401 -`,
			wantIP:     "10.0.0.1",
			wantTime:   "01/Jan/2024:00:00:00",
			wantMethod: "GET",
			wantStatus: "401",
		},
		{
			name:       "combined format with zone and user agent",
			line:       `192.168.1.10 - - [28/Dec/2025:10:00:00 +0000] "POST /admin/login.php HTTP/1.1" 403 1234 "-" "Mozilla/5.0"`,
			wantIP:     "192.168.1.10",
			wantTime:   "28/Dec/2025:10:00:00 +0000",
			wantMethod: "POST",
			wantStatus: "403",
		},
		{
			name:       "query string and HTTP/2",
			line:       `172.16.0.1 - - [01/Jan/2025:00:00:00 +0000] "GET /search?q=a b HTTP/2.0" 200 999`,
			wantIP:     "172.16.0.1",
			wantTime:   "01/Jan/2025:00:00:00 +0000",
			wantMethod: "GET",
			wantStatus: "200",
		},
		{
			name:       "status at end of line",
			line:       `8.8.8.8 - - [01/Jan/2024:00:00:00] "DELETE /x HTTP/1.0" 500`,
			wantIP:     "8.8.8.8",
			wantTime:   "01/Jan/2024:00:00:00",
			wantMethod: "DELETE",
			wantStatus: "500",
		},
		{
			name:       "leading text before the ip",
			line:       `host=web1 10.1.2.3 - - [01/Jan/2024:00:00:00] "GET / HTTP/1.1" 404 12`,
			wantIP:     "10.1.2.3",
			wantTime:   "01/Jan/2024:00:00:00",
			wantMethod: "GET",
			wantStatus: "404",
		},
		{
			name:    "authenticated user is not the anonymous form",
			line:    `10.0.0.1 - frank [01/Jan/2024:00:00:00] "GET / HTTP/1.1" 200 1`,
			wantErr: true,
		},
		{
			name:    "ipv6 client",
			line:    `::1 - - [01/Jan/2024:00:00:00] "GET / HTTP/1.1" 200 1`,
			wantErr: true,
		},
		{
			name:    "hostname instead of ip",
			line:    `not.an.ip.address - - [28/Dec/2025:10:00:00 +0000] "GET / HTTP/1.1" 200 100`,
			wantErr: true,
		},
		{
			name:    "octet too long",
			line:    `1234.1.1.1 - - [01/Jan/2024:00:00:00] "GET / HTTP/1.1" 200 1`,
			wantErr: true,
		},
		{
			name:    "four digit status",
			line:    `10.0.0.1 - - [01/Jan/2024:00:00:00] "GET / HTTP/1.1" 4011 1`,
			wantErr: true,
		},
		{
			name:    "missing protocol",
			line:    `10.0.0.1 - - [01/Jan/2024:00:00:00] "GET /" 200 1`,
			wantErr: true,
		},
		{
			name:    "garbage",
			line:    "this is not a valid log line",
			wantErr: true,
		},
		{
			name:    "empty line",
			line:    "",
			wantErr: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			record, err := parser.Parse(tc.line)

			if tc.wantErr {
				assert.ErrorIs(t, err, ErrNoMatch)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.wantIP, record.IP)
			assert.Equal(t, tc.wantTime, record.Timestamp)
			assert.Equal(t, tc.wantMethod, record.Method)
			assert.Equal(t, tc.wantStatus, record.Status)
		})
	}
}

func TestAccessLogParserFormat(t *testing.T) {
	parser := NewAccessLogParser()
	assert.Equal(t, "access", parser.Format())
}

func TestAccessLogParserValidate(t *testing.T) {
	parser := NewAccessLogParser()

	assert.True(t, parser.Validate(`10.0.0.1 - - [01/Jan/2024:00:00:00] "GET / HTTP/1.1" 200 1`))
	assert.False(t, parser.Validate("not a valid log line"))
}

func BenchmarkAccessLogParser(b *testing.B) {
	parser := NewAccessLogParser()
	line := `192.168.1.10 - - [28/Dec/2025:10:00:00 +0000] "GET /admin/login.php HTTP/1.1" 401 1234 "-" "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"`

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		parser.Parse(line)
	}
}

package output

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/xoelrdgz/logintel/internal/app"
	"github.com/xoelrdgz/logintel/pkg/sanitize"
)

var (
	colorPrimary = lipgloss.Color("#00ff41")
	colorAmber   = lipgloss.Color("#ffb000")
	colorRed     = lipgloss.Color("#ff3333")
	colorMuted   = lipgloss.Color("#707070")
	colorBorder  = lipgloss.Color("#1a3a1a")

	titleStyle   = lipgloss.NewStyle().Foreground(colorPrimary).Bold(true)
	labelStyle   = lipgloss.NewStyle().Foreground(colorMuted).Width(16)
	valueStyle   = lipgloss.NewStyle().Bold(true)
	warnStyle    = lipgloss.NewStyle().Foreground(colorAmber)
	errorStyle   = lipgloss.NewStyle().Foreground(colorRed)
	sectionStyle = lipgloss.NewStyle().Foreground(colorMuted).MarginTop(1)
)

var boxStyle = lipgloss.NewStyle().
	Border(lipgloss.NormalBorder()).
	BorderForeground(colorBorder).
	Padding(0, 1)

// ConsoleSummary renders the end-of-run report for a terminal.
type ConsoleSummary struct {
	out     io.Writer
	paths   ReportPaths
	maxRows int
}

// NewConsoleSummary builds a summary printer. maxRows bounds each listing (default 10).
func NewConsoleSummary(out io.Writer, paths ReportPaths, maxRows int) *ConsoleSummary {
	if maxRows <= 0 {
		maxRows = 10
	}
	return &ConsoleSummary{out: out, paths: paths, maxRows: maxRows}
}

func (c *ConsoleSummary) Print(summary *app.Summary) error {
	_, err := fmt.Fprintln(c.out, c.Render(summary))
	return err
}

func (c *ConsoleSummary) Render(summary *app.Summary) string {
	var b strings.Builder

	status := titleStyle.Render("COMPLETE")
	switch {
	case summary.Halted:
		status = errorStyle.Render("HALTED")
	case len(summary.Errors) > 0:
		status = warnStyle.Render("COMPLETE WITH ERRORS")
	}
	b.WriteString(titleStyle.Render("LOGINTEL") + "  " + status + "\n")

	row := func(label string, value interface{}) {
		b.WriteString(labelStyle.Render(label) + valueStyle.Render(fmt.Sprint(value)) + "\n")
	}
	row("Lines read", summary.LinesRead)
	row("Records", summary.RecordsParsed)
	row("Skipped", summary.LinesSkipped)
	row("Failed IPs", summary.FailedLogins.Len())
	row("Threat entries", summary.Threats.Len())
	row("Matches", len(summary.MatchedThreats))
	row("Duration", summary.Duration.Round(time.Millisecond))

	if summary.FailedLogins.Len() > 0 {
		b.WriteString(sectionStyle.Render("FAILED LOGINS") + "\n")
		shown := 0
		summary.FailedLogins.Each(func(ip string, n int) {
			if shown < c.maxRows {
				b.WriteString(fmt.Sprintf("  %-16s %d failed attempts\n", sanitize.IP(ip), n))
			}
			shown++
		})
		c.more(&b, shown)
	}

	if len(summary.MatchedThreats) > 0 {
		b.WriteString(sectionStyle.Render("MATCHED THREATS") + "\n")
		for i, m := range summary.MatchedThreats {
			if i == c.maxRows {
				break
			}
			b.WriteString(fmt.Sprintf("  %-16s %-6s %s  %s\n",
				sanitize.IP(m.IP), sanitize.Display(m.Method, 8), sanitize.Display(m.Status, 3),
				errorStyle.Render(sanitize.Display(m.Description, 80))))
		}
		c.more(&b, len(summary.MatchedThreats))
	}

	if files := c.writtenFiles(summary.Written); len(files) > 0 {
		b.WriteString(sectionStyle.Render("WRITTEN") + "\n")
		for _, f := range files {
			b.WriteString("  " + sanitize.Display(f, 0) + "\n")
		}
	}

	if len(summary.Errors) > 0 {
		b.WriteString(sectionStyle.Render("ERRORS") + "\n")
		for _, e := range summary.Errors {
			b.WriteString("  " + errorStyle.Render(sanitize.Display(e.Error(), 160)) + "\n")
		}
	}

	return boxStyle.Render(strings.TrimRight(b.String(), "\n"))
}

func (c *ConsoleSummary) more(b *strings.Builder, total int) {
	if total > c.maxRows {
		b.WriteString(fmt.Sprintf("  ... and %d more\n", total-c.maxRows))
	}
}

func (c *ConsoleSummary) writtenFiles(stages []string) []string {
	var files []string
	for _, stage := range stages {
		switch stage {
		case app.StageWriteFailedLogins:
			files = append(files, c.paths.FailedLoginsJSON, c.paths.FailedLoginsText)
		case app.StageWriteCSV:
			files = append(files, c.paths.LogCSV)
		case app.StageWriteThreatIPs:
			files = append(files, c.paths.ThreatIPsJSON)
		case app.StageWriteCombined:
			files = append(files, c.paths.CombinedJSON)
		}
	}
	return files
}

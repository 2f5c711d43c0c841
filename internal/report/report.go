// Package report renders the end-of-run summary for the terminal.
package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/handiism/emoji-kitchen-dl/internal/download"
	"github.com/handiism/emoji-kitchen-dl/internal/model"
	"github.com/handiism/emoji-kitchen-dl/internal/resultlog"
	"github.com/olekukonko/tablewriter"
)

// DefaultFailureLimit is how many failures WriteFailures lists by default.
const DefaultFailureLimit = 20

// MaxMessageWidth is the width error messages are cut to in tables.
const MaxMessageWidth = 50

var (
	titleStyle = lipgloss.NewStyle().Bold(true)

	okBorder = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#95E1A3")).
			Padding(0, 2)

	warnBorder = okBorder.BorderForeground(lipgloss.Color("#FFE66D"))

	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#95E1A3"))
	skipStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFE66D"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#6C757D"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#4ECDC4"))
)

// Passed reports whether the batch meets threshold, a percentage.
func Passed(stats download.Stats, threshold float64) bool {
	return stats.SuccessRate() >= threshold
}

// Rate returns processed pairs per second.
func Rate(stats download.Stats) float64 {
	if stats.Duration <= 0 {
		return 0
	}
	return float64(stats.Processed()) / stats.Duration.Seconds()
}

// Summary renders stats as a bordered box. The border is yellow when any
// pair failed.
func Summary(stats download.Stats) string {
	body := strings.Join([]string{
		titleStyle.Render("Download Summary"),
		"",
		successStyle.Render(fmt.Sprintf("Successful downloads: %d", stats.Successes)),
		skipStyle.Render(fmt.Sprintf("Skipped (existing):   %d", stats.Skipped)),
		dimStyle.Render(fmt.Sprintf("Not found (404):      %d", stats.NotFound)),
		errorStyle.Render(fmt.Sprintf("Failed:               %d", stats.Failures)),
		"",
		infoStyle.Render(fmt.Sprintf("Total processed: %d/%d", stats.Processed(), stats.Total)),
		infoStyle.Render(fmt.Sprintf("Duration:        %s", stats.Duration.Round(100*time.Millisecond))),
		infoStyle.Render(fmt.Sprintf("Rate:            %.1f combinations/s", Rate(stats))),
		infoStyle.Render(fmt.Sprintf("Success rate:    %.1f%%", stats.SuccessRate())),
	}, "\n")

	if stats.Failures == 0 {
		return okBorder.Render(body)
	}
	return warnBorder.Render(body)
}

// Verdict renders the pass/fail line for threshold.
func Verdict(stats download.Stats, threshold float64) string {
	if Passed(stats, threshold) {
		return successStyle.Render(fmt.Sprintf("✓ PASSED (%.1f%% >= %.1f%%)", stats.SuccessRate(), threshold))
	}
	return errorStyle.Render(fmt.Sprintf("✗ FAILED (%.1f%% < %.1f%%)", stats.SuccessRate(), threshold))
}

// WriteFailures writes up to limit failures as a table. NotFound records are
// left out; they are expected answers, not faults. limit <= 0 means
// DefaultFailureLimit.
func WriteFailures(w io.Writer, failures []resultlog.DownloadResult, limit int) {
	if limit <= 0 {
		limit = DefaultFailureLimit
	}

	var shown []resultlog.DownloadResult
	total := 0
	for _, f := range failures {
		if f.ErrorType == model.KindNotFound {
			continue
		}
		total++
		if len(shown) < limit {
			shown = append(shown, f)
		}
	}
	if total == 0 {
		return
	}

	if total > len(shown) {
		fmt.Fprintln(w, errorStyle.Render(fmt.Sprintf("First %d of %d failures:", len(shown), total)))
	} else {
		fmt.Fprintln(w, errorStyle.Render("Failed downloads:"))
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Pair", "Kind", "Status", "Message"})
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetBorder(false)

	for _, f := range shown {
		status := "-"
		if f.StatusCode != nil {
			status = strconv.Itoa(*f.StatusCode)
		}
		table.Append([]string{
			f.Pair().String(),
			string(f.ErrorType),
			status,
			Truncate(f.ErrorMessage, MaxMessageWidth),
		})
	}
	table.Render()
}

// WriteBreakdown writes the per-kind failure counts, most frequent first.
func WriteBreakdown(w io.Writer, summary resultlog.Summary) {
	kinds := summary.Kinds()
	if len(kinds) == 0 {
		return
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Error", "Count"})
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetBorder(false)
	for _, k := range kinds {
		table.Append([]string{string(k), strconv.Itoa(summary.ErrorBreakdown[k])})
	}
	table.Render()
}

// WriteLogFiles lists where the session's logs were written.
func WriteLogFiles(w io.Writer, summary resultlog.Summary, summaryPath string) {
	fmt.Fprintln(w, dimStyle.Render("Logs:"))
	for _, p := range []string{summary.SuccessFile, summary.FailureFile, summaryPath, summary.DebugFile} {
		if p != "" {
			fmt.Fprintln(w, dimStyle.Render("  "+p))
		}
	}
}

// Truncate shortens s to at most n runes, marking the cut with "...".
func Truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 3 {
		return string(r[:n])
	}
	return string(r[:n-3]) + "..."
}

// Copyright (c) 2026 John Dewey

// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to
// deal in the Software without restriction, including without limitation the
// rights to use, copy, modify, merge, publish, distribute, sublicense, and/or
// sell copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:

// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.

// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING
// FROM, OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER
// DEALINGS IN THE SOFTWARE.

package cli

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/retr0h/romusha/internal/job"
)

// Theme colors for terminal UI rendering.
var (
	Purple = lipgloss.Color("99")
	Gray   = lipgloss.Color("245")
	White  = lipgloss.Color("15")
	Teal   = lipgloss.Color("#06ffa5")
)

// Reusable inline styles for compact key-value output.
var (
	labelStyle = lipgloss.NewStyle().Bold(true).Foreground(Purple)
	valueStyle = lipgloss.NewStyle().Foreground(Teal)

	// DimStyle is a muted style for secondary text.
	DimStyle = lipgloss.NewStyle().Foreground(Gray)
)

// Section represents a header with its corresponding rows.
type Section struct {
	Title   string
	Headers []string
	Rows    [][]string
}

// compactMaxColWidth is the maximum column width before truncation.
const compactMaxColWidth = 50

// PrintCompactTable renders a compact column-aligned table (kubectl-style).
// Headers are uppercase purple, data rows alternate teal and white, with a
// 2-space indent. Multi-line cells are flattened and long values are
// truncated with an ellipsis.
func PrintCompactTable(
	w io.Writer,
	sections []Section,
) {
	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(Purple)
	evenStyle := lipgloss.NewStyle().Foreground(Teal)
	oddStyle := lipgloss.NewStyle().Foreground(White)
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(Purple)

	const colGap = 2

	for _, section := range sections {
		if section.Title != "" {
			_, _ = fmt.Fprintf(w, "\n  %s:\n", titleStyle.Render(section.Title))
		} else {
			_, _ = fmt.Fprintln(w)
		}

		flatRows := make([][]string, len(section.Rows))
		for r, row := range section.Rows {
			flat := make([]string, len(row))
			for c, cell := range row {
				flat[c] = strings.Join(strings.Fields(cell), " ")
			}
			flatRows[r] = flat
		}

		widths := make([]int, len(section.Headers))
		for i, h := range section.Headers {
			widths[i] = len(h)
		}
		for _, row := range flatRows {
			for i, cell := range row {
				if i < len(widths) && len(cell) > widths[i] {
					widths[i] = len(cell)
				}
			}
		}
		for i := range widths {
			widths[i] = min(widths[i], compactMaxColWidth)
		}

		var hdr strings.Builder
		hdr.WriteString("  ")
		for i, h := range section.Headers {
			cell := strings.ToUpper(h)
			if i < len(section.Headers)-1 {
				cell = fmt.Sprintf("%-*s", widths[i]+colGap, cell)
			}
			hdr.WriteString(headerStyle.Render(cell))
		}
		_, _ = fmt.Fprintln(w, hdr.String())

		for r, row := range flatRows {
			rowStyle := evenStyle
			if r%2 != 0 {
				rowStyle = oddStyle
			}

			var line strings.Builder
			line.WriteString("  ")
			for i := range section.Headers {
				cell := ""
				if i < len(row) {
					cell = row[i]
				}
				if len(cell) > widths[i] {
					cell = cell[:widths[i]-1] + "…"
				}
				if i < len(section.Headers)-1 {
					cell = fmt.Sprintf("%-*s", widths[i]+colGap, cell)
				}
				line.WriteString(rowStyle.Render(cell))
			}
			_, _ = fmt.Fprintln(w, line.String())
		}
	}
}

// KVMinColWidth is the minimum visual width for each key-value column.
const KVMinColWidth = 20

// PrintKV prints labeled key-value pairs on a single indented line.
// Arguments alternate between labels and values: label1, val1, label2, val2, ...
func PrintKV(
	w io.Writer,
	pairs ...string,
) {
	if len(pairs)%2 != 0 || len(pairs) == 0 {
		return
	}

	rendered := make([]string, 0, len(pairs)/2)
	maxWidth := KVMinColWidth
	for i := 0; i < len(pairs); i += 2 {
		pair := labelStyle.Render(pairs[i]+":") + " " + valueStyle.Render(pairs[i+1])
		rendered = append(rendered, pair)
		maxWidth = max(maxWidth, lipgloss.Width(pair))
	}

	var line strings.Builder
	line.WriteString("  ")
	for i, pair := range rendered {
		line.WriteString(pair)
		if i < len(rendered)-1 {
			line.WriteString(strings.Repeat(" ", maxWidth-lipgloss.Width(pair)+4))
		}
	}
	_, _ = fmt.Fprintln(w, line.String())
}

// FormatAge formats a duration as a human-readable age string.
// Returns "3d 4h", "12h 30m", "45m", "30s" etc.
func FormatAge(
	d time.Duration,
) string {
	if d <= 0 {
		return ""
	}

	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60

	switch {
	case days > 0:
		return fmt.Sprintf("%dd %dh", days, hours)
	case hours > 0:
		return fmt.Sprintf("%dh %dm", hours, minutes)
	case minutes > 0:
		return fmt.Sprintf("%dm", minutes)
	default:
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
}

// FormatList joins list with ", ", or returns "None" when empty.
func FormatList(
	list []string,
) string {
	if len(list) == 0 {
		return "None"
	}

	return strings.Join(list, ", ")
}

// WorkerSection builds the `worker list` table, sorted by hostname.
func WorkerSection(
	regs []job.WorkerRegistration,
	now time.Time,
) Section {
	sorted := append([]job.WorkerRegistration(nil), regs...)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Hostname < sorted[j].Hostname
	})

	rows := make([][]string, 0, len(sorted))
	for _, reg := range sorted {
		platform := strings.TrimSpace(reg.Host.Platform + " " + reg.Host.PlatformVersion)

		rows = append(rows, []string{
			reg.Hostname,
			reg.Durable,
			strconv.Itoa(reg.MaxJobs),
			FormatList(reg.Jobs),
			platform,
			FormatAge(now.Sub(reg.StartedAt)),
			FormatAge(now.Sub(reg.RegisteredAt)),
		})
	}

	return Section{
		Title:   fmt.Sprintf("Workers (%d)", len(sorted)),
		Headers: []string{"hostname", "durable", "max jobs", "jobs", "platform", "age", "seen"},
		Rows:    rows,
	}
}

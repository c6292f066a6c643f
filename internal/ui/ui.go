// Package ui renders CLI output: styled when attached to a terminal,
// plain when piped.
package ui

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/stratec/assetsearch/internal/progress"
	"github.com/stratec/assetsearch/internal/search"
)

// Color palette, 256-color codes.
const (
	colorAccent   = "45"  // cyan accent for headers and hit labels
	colorGray     = "245" // secondary text
	colorDarkGray = "238" // separators
	colorRed      = "196" // errors
	colorYellow   = "220" // warnings
)

// Styles holds the render styles for one output stream.
type Styles struct {
	Header  lipgloss.Style
	Label   lipgloss.Style
	Dim     lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
}

func styledStyles() Styles {
	return Styles{
		Header:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(colorAccent)),
		Label:   lipgloss.NewStyle().Foreground(lipgloss.Color(colorAccent)),
		Dim:     lipgloss.NewStyle().Foreground(lipgloss.Color(colorGray)),
		Warning: lipgloss.NewStyle().Foreground(lipgloss.Color(colorYellow)),
		Error:   lipgloss.NewStyle().Foreground(lipgloss.Color(colorRed)),
	}
}

func plainStyles() Styles {
	return Styles{
		Header:  lipgloss.NewStyle(),
		Label:   lipgloss.NewStyle(),
		Dim:     lipgloss.NewStyle(),
		Warning: lipgloss.NewStyle(),
		Error:   lipgloss.NewStyle(),
	}
}

// Writer renders results and status lines to one stream.
type Writer struct {
	out    io.Writer
	styles Styles
}

// New creates a Writer, styled only when out is a terminal.
func New(out io.Writer) *Writer {
	styles := plainStyles()
	if f, ok := out.(*os.File); ok && isTerminal(f) {
		styles = styledStyles()
	}
	return &Writer{out: out, styles: styles}
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Hits renders shaped search results.
func (w *Writer) Hits(query string, hits []search.SearchHit) {
	if len(hits) == 0 {
		w.printf("%s\n", w.styles.Dim.Render(fmt.Sprintf("no results for %q", query)))
		return
	}

	w.printf("%s\n\n", w.styles.Header.Render(fmt.Sprintf("%d result(s) for %q", len(hits), query)))
	for i, h := range hits {
		w.printf("%2d. %s %s\n", i+1,
			w.styles.Label.Render(h.Text),
			w.styles.Dim.Render("["+h.Type+"]"))
		if h.Snippet != "" {
			w.printf("    %s\n", w.styles.Dim.Render(h.Snippet))
		}
	}
}

// Progress renders one snapshot of a bulk run.
func (w *Writer) Progress(snap progress.Snapshot) {
	state := "idle"
	if snap.Active {
		state = "running"
	}
	w.printf("%s %s\n",
		w.styles.Header.Render("Reindex:"),
		fmt.Sprintf("%s, %d%% (%d/%d)", state, snap.Percent, snap.TotalDone, snap.GrandTotal))

	for _, cat := range snap.Categories {
		bar := renderBar(cat.Done, cat.Total, 20)
		w.printf("  %-20s %s %s\n",
			cat.Label,
			w.styles.Label.Render(bar),
			w.styles.Dim.Render(fmt.Sprintf("%d/%d", cat.Done, cat.Total)))
	}
}

// Successf prints a formatted success line.
func (w *Writer) Successf(format string, args ...any) {
	w.printf("%s\n", w.styles.Header.Render(fmt.Sprintf(format, args...)))
}

// Warningf prints a formatted warning line.
func (w *Writer) Warningf(format string, args ...any) {
	w.printf("%s\n", w.styles.Warning.Render(fmt.Sprintf(format, args...)))
}

// Errorf prints a formatted error line.
func (w *Writer) Errorf(format string, args ...any) {
	w.printf("%s\n", w.styles.Error.Render(fmt.Sprintf(format, args...)))
}

// printf ignores write errors: console output is best-effort.
func (w *Writer) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(w.out, format, args...)
}

func renderBar(done, total int64, width int) string {
	if total <= 0 {
		return strings.Repeat("█", width)
	}
	filled := int(done * int64(width) / total)
	if filled > width {
		filled = width
	}
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

package ui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stratec/assetsearch/internal/progress"
	"github.com/stratec/assetsearch/internal/search"
)

func TestWriter_PlainWhenNotATerminal(t *testing.T) {
	// Given: a writer over a plain buffer
	var buf bytes.Buffer
	w := New(&buf)

	// When: rendering results
	w.Hits("release", []search.SearchHit{
		{ID: "s1", Type: "Software", Text: "Release 1.0", Snippet: "Production"},
	})

	// Then: the output carries no ANSI escapes
	out := buf.String()
	assert.NotContains(t, out, "\x1b[")
	assert.Contains(t, out, `1 result(s) for "release"`)
	assert.Contains(t, out, "Release 1.0")
	assert.Contains(t, out, "[Software]")
	assert.Contains(t, out, "Production")
}

func TestWriter_HitsEmpty(t *testing.T) {
	var buf bytes.Buffer
	New(&buf).Hits("nothing", nil)

	assert.Contains(t, buf.String(), `no results for "nothing"`)
}

func TestWriter_Progress(t *testing.T) {
	var buf bytes.Buffer
	New(&buf).Progress(progress.Snapshot{
		Active:     true,
		Percent:    50,
		TotalDone:  1,
		GrandTotal: 2,
		Categories: []progress.Category{
			{Label: "Software", Total: 2, Done: 1},
		},
	})

	out := buf.String()
	assert.Contains(t, out, "running, 50% (1/2)")
	assert.Contains(t, out, "Software")
	assert.Contains(t, out, "1/2")
}

func TestWriter_StatusLines(t *testing.T) {
	var buf bytes.Buffer
	w := New(&buf)

	w.Successf("indexed %d", 4)
	w.Warningf("degraded")
	w.Errorf("broken: %v", "io")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "indexed 4", lines[0])
	assert.Equal(t, "degraded", lines[1])
	assert.Equal(t, "broken: io", lines[2])
}

func TestRenderBar(t *testing.T) {
	assert.Equal(t, strings.Repeat("█", 4), renderBar(2, 2, 4))
	assert.Equal(t, "██░░", renderBar(1, 2, 4))
	assert.Equal(t, "░░░░", renderBar(0, 2, 4))
	// No totals yet renders as full, matching the 100-percent convention
	assert.Equal(t, strings.Repeat("█", 4), renderBar(0, 0, 4))
}

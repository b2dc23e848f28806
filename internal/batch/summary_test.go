package batch

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleSummary() *Summary {
	return &Summary{
		Mode: ModeMulti,
		Rows: []Row{
			{Unit: "lost.s01", Status: StatusCompleted, Title: "Lost", Year: 2004, TMDBID: 4607, Match: "search/exact", Placed: 2, RenamedTo: "Lost (2004)"},
			{Unit: "Broken", Status: StatusFailed, Error: "no candidate found"},
			{Unit: "Orphan", Status: StatusSkipped, Error: "no video files"},
		},
	}
}

func TestSummary_Counts(t *testing.T) {
	assert.Equal(t, Counts{Completed: 1, Failed: 1, Skipped: 1}, sampleSummary().Counts())
	assert.Equal(t, Counts{}, (&Summary{}).Counts())
}

func TestSummary_RenderTable(t *testing.T) {
	out := sampleSummary().RenderTable()
	assert.Contains(t, out, "Lost (2004)")
	assert.Contains(t, out, "4607")
	assert.Contains(t, out, "renamed to Lost (2004)")
	assert.Contains(t, out, "no candidate found")
	assert.Contains(t, out, "3 units")
	assert.Contains(t, out, "1 ok / 1 failed / 1 skipped")
	assert.Contains(t, out, "╭")
}

func TestSummary_RenderTSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, sampleSummary().RenderTSV(&buf))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, strings.Join(summaryHeaders, "\t"), lines[0])
	assert.Equal(t, "lost.s01\tcompleted\tLost (2004)\t4607\tsearch/exact\t2\t0\t\trenamed to Lost (2004)", lines[1])
	assert.Equal(t, "Orphan\tskipped\t\t\t\t0\t0\t\tno video files", lines[3])
}

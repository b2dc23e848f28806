package batch

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// Unit statuses.
const (
	StatusCompleted = "completed"
	StatusFailed    = "failed"
	StatusSkipped   = "skipped"
)

// Row is the outcome of one unit.
type Row struct {
	Unit          string `json:"unit"`
	Status        string `json:"status"`
	Title         string `json:"title,omitempty"`
	Year          int    `json:"year,omitempty"`
	TMDBID        int64  `json:"tmdb_id,omitempty"`
	Match         string `json:"match,omitempty"`
	Placed        int    `json:"placed"`
	Failed        int    `json:"failed"`
	SourceDeleted bool   `json:"source_deleted"`
	RenamedTo     string `json:"renamed_to,omitempty"`
	Error         string `json:"error,omitempty"`
}

// Summary is the report of one batch run.
type Summary struct {
	Mode     Mode          `json:"-"`
	Root     string        `json:"root"`
	Rows     []Row         `json:"rows"`
	Duration time.Duration `json:"duration_ns"`
}

// Counts tallies rows by status.
type Counts struct {
	Completed int `json:"completed"`
	Failed    int `json:"failed"`
	Skipped   int `json:"skipped"`
}

func (s *Summary) Counts() Counts {
	var c Counts
	for _, r := range s.Rows {
		switch r.Status {
		case StatusCompleted:
			c.Completed++
		case StatusFailed:
			c.Failed++
		case StatusSkipped:
			c.Skipped++
		}
	}
	return c
}

var summaryHeaders = []string{"Unit", "Status", "Title", "TMDB", "Match", "Placed", "Failed", "Deleted", "Note"}

func (r Row) cells() []string {
	title := r.Title
	if title != "" && r.Year > 0 {
		title = fmt.Sprintf("%s (%d)", r.Title, r.Year)
	}
	id := ""
	if r.TMDBID > 0 {
		id = strconv.FormatInt(r.TMDBID, 10)
	}
	note := r.Error
	if r.RenamedTo != "" {
		note = "renamed to " + r.RenamedTo
		if r.Error != "" {
			note += "; " + r.Error
		}
	}
	deleted := ""
	if r.SourceDeleted {
		deleted = "yes"
	}
	return []string{
		r.Unit, r.Status, title, id, r.Match,
		strconv.Itoa(r.Placed), strconv.Itoa(r.Failed), deleted, note,
	}
}

// RenderTable renders the summary as a rounded table with a totals footer.
func (s *Summary) RenderTable() string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.Style().Format.Footer = text.FormatDefault

	header := make(table.Row, len(summaryHeaders))
	for i, h := range summaryHeaders {
		header[i] = h
	}
	tw.AppendHeader(header)

	for _, r := range s.Rows {
		cells := r.cells()
		row := make(table.Row, len(cells))
		for i, c := range cells {
			row[i] = c
		}
		tw.AppendRow(row)
	}

	c := s.Counts()
	tw.AppendFooter(table.Row{
		fmt.Sprintf("%d units", len(s.Rows)),
		fmt.Sprintf("%d ok / %d failed / %d skipped", c.Completed, c.Failed, c.Skipped),
	})

	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 4, Align: text.AlignRight},
		{Number: 6, Align: text.AlignRight},
		{Number: 7, Align: text.AlignRight},
		{Number: 9, WidthMax: 60},
	})
	return tw.Render()
}

// RenderTSV writes one tab-separated line per row for non-terminal output.
func (s *Summary) RenderTSV(w io.Writer) error {
	if _, err := fmt.Fprintln(w, strings.Join(summaryHeaders, "\t")); err != nil {
		return err
	}
	for _, r := range s.Rows {
		cells := r.cells()
		for i, c := range cells {
			cells[i] = strings.ReplaceAll(c, "\t", " ")
		}
		if _, err := fmt.Fprintln(w, strings.Join(cells, "\t")); err != nil {
			return err
		}
	}
	return nil
}

// Package report renders resolution results for humans and machines: a
// three column table of input, resolved code, and canonical name, with a
// summary mode that keeps only the anomalies.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/econcoder/ccr/internal/coder"
)

// Namer supplies canonical display names for resolved codes.
type Namer interface {
	Name(code string) (string, bool)
}

// Row is one input with its resolution outcome. Name is the canonical
// display name of the resolved code, empty for unmatched input.
type Row struct {
	Input string `json:"input"`
	Code  string `json:"code,omitempty"`
	Name  string `json:"name,omitempty"`
}

// Anomalous reports whether the row is worth a second look: the input
// did not resolve at all, or it resolved through a spelling other than
// the canonical name.
func (r Row) Anomalous() bool {
	if r.Code == "" {
		return true
	}
	return coder.Normalize(r.Input) != coder.Normalize(r.Name)
}

// Report holds resolution rows in input order.
type Report struct {
	Rows []Row `json:"rows"`
}

// Build pairs each resolution with its canonical name.
func Build(results []coder.Resolution, names Namer) *Report {
	rows := make([]Row, 0, len(results))
	for _, res := range results {
		row := Row{Input: res.Input, Code: res.Code}
		if res.Code != "" {
			if name, ok := names.Name(res.Code); ok {
				row.Name = name
			}
		}
		rows = append(rows, row)
	}
	return &Report{Rows: rows}
}

// Summary returns a copy of the report holding only anomalous rows.
func (r *Report) Summary() *Report {
	out := &Report{}
	for _, row := range r.Rows {
		if row.Anomalous() {
			out.Rows = append(out.Rows, row)
		}
	}
	return out
}

// Unmatched counts the rows that did not resolve.
func (r *Report) Unmatched() int {
	n := 0
	for _, row := range r.Rows {
		if row.Code == "" {
			n++
		}
	}
	return n
}

// WriteText renders the report as an aligned text table.
func (r *Report) WriteText(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "INPUT\tCODE\tNAME")
	for _, row := range r.Rows {
		code, name := row.Code, row.Name
		if code == "" {
			code, name = "-", "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", row.Input, code, name)
	}
	return tw.Flush()
}

// WriteJSON renders the report as indented JSON.
func (r *Report) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

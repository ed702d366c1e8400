package history

import (
	"context"
	"fmt"
	"io"
	"sync"
	"text/tabwriter"
)

// TextView draws the table as plain text, one block per reload.
type TextView struct {
	Title string

	mu sync.Mutex
	w  io.Writer
}

// NewTextView creates a view writing to w.
func NewTextView(w io.Writer, title string) *TextView {
	return &TextView{Title: title, w: w}
}

// ReloadData implements View.
func (v *TextView) ReloadData(_ context.Context, t *Table) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	tw := tabwriter.NewWriter(v.w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "== %s (%d) ==\n", v.Title, t.Rows())
	for s := 0; s < t.Sections(); s++ {
		for i := 0; i < t.Rows(); i++ {
			c := t.Cell(i)
			fmt.Fprintf(tw, "%s\t%s\n", c.Title, c.Detail)
		}
	}
	return tw.Flush()
}

package app

import (
	"context"
	"fmt"
	"io"

	"github.com/specialistvlad/livegraph/internal/node"
)

// changePrinter is the display target of the CLI. It writes the displayed
// value each time its text form changes.
type changePrinter struct {
	w    io.Writer
	last string
	seen bool
}

func (p *changePrinter) Present(_ context.Context, v *node.Value) {
	text, _ := v.Format()
	if p.seen && text == p.last {
		return
	}
	p.last, p.seen = text, true
	fmt.Fprintf(p.w, "display: %s\n", text)
}

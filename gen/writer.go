package gen

import (
	"fmt"
	"strings"
)

// writer accumulates emitted source text with indentation tracking.
// Emitted text is already gofmt-shaped; nothing shells out afterwards.
type writer struct {
	sb    strings.Builder
	depth int
}

// p writes one indented line. The format always runs through Fprintf,
// so a literal percent in emitted code must be doubled.
func (w *writer) p(format string, args ...interface{}) {
	for i := 0; i < w.depth; i++ {
		w.sb.WriteByte('\t')
	}
	fmt.Fprintf(&w.sb, format, args...)
	w.sb.WriteByte('\n')
}

// nl writes a blank line.
func (w *writer) nl() {
	w.sb.WriteByte('\n')
}

func (w *writer) in()  { w.depth++ }
func (w *writer) out() { w.depth-- }

func (w *writer) String() string {
	return w.sb.String()
}

package diag

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
)

// Formatter renders diagnostics with the offending source line and a caret.
type Formatter struct {
	Filename string
	lines    []string
}

// NewFormatter returns a formatter for diagnostics produced from src.
func NewFormatter(filename, src string) *Formatter {
	return &Formatter{
		Filename: filename,
		lines:    strings.Split(src, "\n"),
	}
}

// Format writes d to w.
func (f *Formatter) Format(w io.Writer, d *Diagnostic) {
	header := d.Label()
	if f.Filename != "" && d.Pos.IsValid() {
		header = fmt.Sprintf("%s:%s: %s", f.Filename, d.Pos, header)
	} else if d.Pos.IsValid() {
		header = fmt.Sprintf("line %s: %s", d.Pos, header)
	}
	fmt.Fprintf(w, "%s: %s\n", header, d.Message)

	line, ok := f.sourceLine(d.Pos.Line)
	if !ok {
		return
	}
	gutter := fmt.Sprintf("%4d | ", d.Pos.Line)
	fmt.Fprintf(w, "%s%s\n", gutter, line)
	if d.Pos.Column <= 0 {
		return
	}
	pad := strings.Repeat(" ", runewidth.StringWidth(gutter)) + caretPad(line, d.Pos.Column)
	width := 1
	if d.Lexeme != "" {
		if lw := runewidth.StringWidth(d.Lexeme); lw > 1 {
			width = lw
		}
	}
	fmt.Fprintf(w, "%s%s\n", pad, strings.Repeat("^", width))
}

// FormatAll writes every diagnostic in list to w.
func (f *Formatter) FormatAll(w io.Writer, list []*Diagnostic) {
	for _, d := range list {
		f.Format(w, d)
	}
}

func (f *Formatter) sourceLine(n int) (string, bool) {
	if n <= 0 || n > len(f.lines) {
		return "", false
	}
	return strings.TrimRight(f.lines[n-1], "\r"), true
}

// caretPad returns the blank prefix that places a caret under the
// one-based rune column of line. Tabs are kept so terminals align them.
func caretPad(line string, column int) string {
	var b strings.Builder
	i := 1
	for _, r := range line {
		if i >= column {
			break
		}
		if r == '\t' {
			b.WriteByte('\t')
		} else {
			b.WriteString(strings.Repeat(" ", runewidth.RuneWidth(r)))
		}
		i++
	}
	return b.String()
}

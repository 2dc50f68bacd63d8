package diag

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

// Render writes every diagnostic in b to w, one per line, colored by
// severity when color is enabled on w's terminal. Grounded on how
// vovakirdan-surge's cmd/surge/main.go colors CLI output with
// fatih/color rather than hand-rolled ANSI codes.
func Render(w io.Writer, b *Bag) {
	errColor := color.New(color.FgRed, color.Bold)
	warnColor := color.New(color.FgYellow, color.Bold)
	infoColor := color.New(color.FgCyan)

	for _, d := range b.Items() {
		switch d.Severity {
		case SevError:
			errColor.Fprint(w, "error: ")
		case SevWarning:
			warnColor.Fprint(w, "warning: ")
		default:
			infoColor.Fprint(w, "note: ")
		}
		fmt.Fprintln(w, d.String())
	}
}

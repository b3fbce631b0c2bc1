package doctor

import (
	"fmt"
	"io"

	"github.com/Aman-CERP/layer/internal/ui"
)

// Printer writes a Report for humans.
type Printer struct {
	out    io.Writer
	styles ui.Styles
}

// NewPrinter creates a Printer.
func NewPrinter(out io.Writer, noColor bool) *Printer {
	return &Printer{out: out, styles: ui.GetStyles(noColor)}
}

// Print writes one line per entry, indented fixes, and the summary.
func (p *Printer) Print(rep *Report) {
	s := p.styles
	if rep.Empty() {
		_, _ = fmt.Fprintf(p.out, "No layered entries. Run %s or %s to get started.\n",
			s.Header.Render("layer add"), s.Header.Render("layer scan"))
		return
	}

	for _, d := range rep.Diagnoses {
		switch d.Kind {
		case KindLayered:
			_, _ = fmt.Fprintf(p.out, "  %s %s: layered\n", s.Layered.Render(ui.MarkLayered), d.Entry)
		case KindExposed:
			_, _ = fmt.Fprintf(p.out, "  %s %s: %s\n", s.Exposed.Render(ui.MarkExposed), d.Entry, s.Warning.Render(d.Message))
			_, _ = fmt.Fprintf(p.out, "    %s\n", s.Warning.Render("Fix: "+d.Fix))
			if len(d.Tracked) <= 3 {
				for _, f := range d.Tracked {
					_, _ = fmt.Fprintf(p.out, "    %s\n", s.Warning.Render("Tracked: "+f))
				}
			}
		case KindStale:
			_, _ = fmt.Fprintf(p.out, "  %s %s: %s\n", s.Stale.Render(ui.MarkStale), d.Entry, s.Stale.Render(d.Message))
			_, _ = fmt.Fprintf(p.out, "    %s\n", s.Dim.Render(d.Fix))
		case KindRedundant:
			_, _ = fmt.Fprintf(p.out, "  %s %s: %s\n", s.Dim.Render(ui.MarkIgnored), d.Entry, s.Dim.Render(d.Message))
			_, _ = fmt.Fprintf(p.out, "    %s\n", s.Dim.Render(d.Fix))
		}
	}

	_, _ = fmt.Fprintf(p.out, "\n  %s\n", rep.Summary())
}

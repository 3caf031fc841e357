package render

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

// Printer writes progress lines for a run
type Printer struct {
	out  io.Writer
	step lipgloss.Style
	done lipgloss.Style
	warn lipgloss.Style
}

// NewPrinter creates a printer. Colors are used only when out is a color terminal.
func NewPrinter(out io.Writer) *Printer {
	r := lipgloss.NewRenderer(out)
	return &Printer{
		out:  out,
		step: r.NewStyle().Faint(true),
		done: r.NewStyle().Foreground(lipgloss.Color("2")),
		warn: r.NewStyle().Foreground(lipgloss.Color("3")).Bold(true),
	}
}

func (p *Printer) Step(msg string) {
	fmt.Fprintln(p.out, p.step.Render("□ "+msg))
}

func (p *Printer) Done(msg string) {
	fmt.Fprintln(p.out, p.done.Render("✓ "+msg))
}

func (p *Printer) Warn(msg string) {
	fmt.Fprintln(p.out, p.warn.Render("! "+msg))
}

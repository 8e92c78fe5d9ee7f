package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15"))

	handStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14"))

	categoryStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))

	goodStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))

	badStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))

	dimStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// newTable returns a tabwriter with the column layout every listing uses.
func newTable(w io.Writer, headers ...string) *tabwriter.Writer {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for i, h := range headers {
		if i > 0 {
			fmt.Fprint(tw, "\t")
		}
		fmt.Fprint(tw, headerStyle.Render(h))
	}
	fmt.Fprintln(tw)
	return tw
}

// field prints one "label: value" line.
func field(w io.Writer, label string, value any) {
	fmt.Fprintf(w, "%s %v\n", headerStyle.Render(label+":"), value)
}

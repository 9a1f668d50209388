package main

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

const (
	colorBlue    lipgloss.Color = "#89b4fa"
	colorGreen   lipgloss.Color = "#a6e3a1"
	colorRed     lipgloss.Color = "#f38ba8"
	colorOverlay lipgloss.Color = "#6c7086"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(colorBlue).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	numberStyle = cellStyle.Align(lipgloss.Right)
	totalStyle  = numberStyle.Bold(true)
	dimStyle    = lipgloss.NewStyle().Foreground(colorOverlay)
	goodStyle   = lipgloss.NewStyle().Foreground(colorGreen)
	badStyle    = lipgloss.NewStyle().Foreground(colorRed)
)

// tableLayout describes how to lay out one table.
type tableLayout struct {
	headers []string
	rows    [][]string

	// numericFrom is the first right-aligned column; -1 for none.
	numericFrom int

	// lastRowTotal renders the last row in bold.
	lastRowTotal bool
}

func renderTable(w io.Writer, layout tableLayout) {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(dimStyle).
		Headers(layout.headers...).
		Rows(layout.rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case layout.lastRowTotal && row == len(layout.rows)-1:
				if layout.numericFrom >= 0 && col >= layout.numericFrom {
					return totalStyle
				}
				return cellStyle.Bold(true)
			case layout.numericFrom >= 0 && col >= layout.numericFrom:
				return numberStyle
			default:
				return cellStyle
			}
		})
	fmt.Fprintln(w, t.String())
}

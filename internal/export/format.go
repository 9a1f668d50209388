package export

import (
	"math"
	"strconv"

	"github.com/dustin/go-humanize"

	"github.com/mmynk/eventsplit/internal/calculator"
)

// FormatAmount renders a value for display: rounded to a whole number with
// thousands grouping ("30,000"). Halves round to even.
func FormatAmount(v float64) string {
	return humanize.Comma(int64(math.RoundToEven(v)))
}

// FormatCell renders a share for display; blank cells stay empty.
func FormatCell(c calculator.Cell) string {
	if !c.Assigned {
		return ""
	}
	return FormatAmount(c.Value)
}

// rawNumber writes a value without loss: no grouping, no fixed precision.
func rawNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func rawCell(c calculator.Cell) string {
	if !c.Assigned {
		return ""
	}
	return rawNumber(c.Value)
}

// DisplayRows renders the whole matrix, header included, with display
// formatting. Front ends that print tables use it.
func DisplayRows(m calculator.Matrix) [][]string {
	rows := make([][]string, 0, len(m.Rows)+1)
	rows = append(rows, m.Header())
	for _, r := range m.Rows {
		line := make([]string, 0, 3+len(r.Shares))
		line = append(line, r.Payer, r.Item, FormatAmount(r.Amount))
		for _, c := range r.Shares {
			line = append(line, FormatCell(c))
		}
		rows = append(rows, line)
	}
	return rows
}

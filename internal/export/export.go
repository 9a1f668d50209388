// Package export renders a settlement as CSV, XLSX or PDF.
package export

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"

	"github.com/mmynk/eventsplit/internal/calculator"
	"github.com/mmynk/eventsplit/internal/settle"
)

// Supported export formats.
const (
	FormatCSV   = "csv"
	FormatExcel = "xlsx"
	FormatPDF   = "pdf"
)

const (
	contentTypeCSV   = "text/csv; charset=utf-8"
	contentTypeExcel = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	contentTypePDF   = "application/pdf"

	// utf8BOM lets spreadsheet programs detect UTF-8 member names.
	utf8BOM = "\ufeff"
)

// ErrUnsupportedFormat is returned by Export for an unknown format.
var ErrUnsupportedFormat = errors.New("unsupported export format")

// Exporter renders settlements.
type Exporter struct {
	fontPath string
}

// Option configures an Exporter.
type Option func(*Exporter)

// WithPDFFont sets a TrueType font used for PDF output. Without it PDFs use
// a core font that cannot draw non-Latin names.
func WithPDFFont(path string) Option {
	return func(e *Exporter) {
		e.fontPath = path
	}
}

// New creates an Exporter.
func New(opts ...Option) *Exporter {
	e := &Exporter{}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Export renders st in the requested format and returns the bytes, a
// download file name and a content type.
func (e *Exporter) Export(format string, st settle.Settlement) ([]byte, string, string, error) {
	stem := strings.TrimSuffix(st.Event.SettlementFileName(), ".csv")

	switch strings.ToLower(format) {
	case FormatCSV, "":
		data, err := CSV(st.Matrix)
		if err != nil {
			return nil, "", "", err
		}
		return data, stem + ".csv", contentTypeCSV, nil

	case FormatExcel:
		data, err := e.excel(st)
		if err != nil {
			return nil, "", "", err
		}
		return data, stem + ".xlsx", contentTypeExcel, nil

	case FormatPDF:
		data, err := e.pdf(st)
		if err != nil {
			return nil, "", "", err
		}
		return data, stem + ".pdf", contentTypePDF, nil

	default:
		return nil, "", "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
}

// CSV writes the matrix as BOM-prefixed UTF-8 CSV. Numbers are written
// without rounding and blank cells as empty fields.
func CSV(m calculator.Matrix) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(utf8BOM)
	w := csv.NewWriter(&buf)

	if err := w.Write(m.Header()); err != nil {
		return nil, err
	}
	for _, r := range m.Rows {
		record := make([]string, 0, 3+len(r.Shares))
		record = append(record, r.Payer, r.Item, rawNumber(r.Amount))
		for _, c := range r.Shares {
			record = append(record, rawCell(c))
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (e *Exporter) excel(st settle.Settlement) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Settlement"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, err
	}
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	grouping := "#,##0"
	money, err := f.NewStyle(&excelize.Style{CustomNumFmt: &grouping})
	if err != nil {
		return nil, err
	}
	boldMoney, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}, CustomNumFmt: &grouping})
	if err != nil {
		return nil, err
	}

	m := st.Matrix
	for i, h := range m.Header() {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		f.SetCellValue(sheet, cell, h)
		f.SetCellStyle(sheet, cell, cell, bold)
	}

	for rIdx, r := range m.Rows {
		row := rIdx + 2
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), r.Payer)
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), r.Item)
		f.SetCellFloat(sheet, fmt.Sprintf("C%d", row), r.Amount, -1, 64)
		for i, c := range r.Shares {
			if !c.Assigned {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(i+4, row)
			if err != nil {
				return nil, err
			}
			f.SetCellFloat(sheet, cell, c.Value, -1, 64)
		}

		style := money
		if r.Total {
			style = boldMoney
			f.SetCellStyle(sheet, fmt.Sprintf("A%d", row), fmt.Sprintf("A%d", row), bold)
		}
		last, err := excelize.CoordinatesToCellName(3+len(r.Shares), row)
		if err != nil {
			return nil, err
		}
		f.SetCellStyle(sheet, fmt.Sprintf("C%d", row), last, style)
	}

	if len(st.Transfers) > 0 {
		const transfers = "Transfers"
		if _, err := f.NewSheet(transfers); err != nil {
			return nil, err
		}
		for i, h := range []string{"from", "to", "amount", "pay_to"} {
			cell, _ := excelize.CoordinatesToCellName(i+1, 1)
			f.SetCellValue(transfers, cell, h)
			f.SetCellStyle(transfers, cell, cell, bold)
		}
		for tIdx, t := range st.Transfers {
			row := tIdx + 2
			f.SetCellValue(transfers, fmt.Sprintf("A%d", row), t.From)
			f.SetCellValue(transfers, fmt.Sprintf("B%d", row), t.To)
			f.SetCellFloat(transfers, fmt.Sprintf("C%d", row), t.Amount, -1, 64)
			f.SetCellStyle(transfers, fmt.Sprintf("C%d", row), fmt.Sprintf("C%d", row), money)
			f.SetCellValue(transfers, fmt.Sprintf("D%d", row), t.PayTo)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (e *Exporter) pdf(st settle.Settlement) ([]byte, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")

	family := "Arial"
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	if e.fontPath != "" {
		family = "settlement"
		pdf.AddUTF8Font(family, "", e.fontPath)
		pdf.AddUTF8Font(family, "B", e.fontPath)
		tr = func(s string) string { return s }
	}
	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("failed to load pdf font: %w", err)
	}

	pdf.AddPage()
	pdf.SetFont(family, "B", 12)
	pdf.Cell(40, 10, tr(st.Event.Label()))
	pdf.Ln(10)

	rows := DisplayRows(st.Matrix)
	widths := columnWidths(len(rows[0]))

	pdf.SetFont(family, "B", 8)
	for i, h := range rows[0] {
		pdf.CellFormat(widths[i], 7, tr(h), "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	for rIdx, r := range rows[1:] {
		style := ""
		if st.Matrix.Rows[rIdx].Total {
			style = "B"
		}
		pdf.SetFont(family, style, 8)
		for i, v := range r {
			align := "R"
			if i < 2 {
				align = "L"
			}
			pdf.CellFormat(widths[i], 6, tr(v), "1", 0, align, false, 0, "")
		}
		pdf.Ln(-1)
	}

	if len(st.Transfers) > 0 {
		pdf.Ln(6)
		pdf.SetFont(family, "B", 10)
		pdf.Cell(40, 8, "Transfers")
		pdf.Ln(8)
		pdf.SetFont(family, "", 8)
		for _, t := range st.Transfers {
			line := fmt.Sprintf("%s -> %s  %s", t.From, t.To, FormatAmount(t.Amount))
			if t.PayTo != "" {
				line += "  (" + t.PayTo + ")"
			}
			pdf.CellFormat(0, 6, tr(line), "", 1, "L", false, 0, "")
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// columnWidths spreads the landscape page width over the columns, giving
// the item column extra room.
func columnWidths(n int) []float64 {
	const pageWidth = 277.0
	widths := make([]float64, n)
	if n == 0 {
		return widths
	}
	base := pageWidth / float64(n+1)
	for i := range widths {
		widths[i] = base
	}
	if n > 1 {
		widths[1] = base * 2
	}
	return widths
}

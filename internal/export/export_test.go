package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/mmynk/eventsplit/internal/calculator"
	"github.com/mmynk/eventsplit/internal/models"
	"github.com/mmynk/eventsplit/internal/settle"
)

func testSettlement() settle.Settlement {
	expenses := []models.Expense{
		{ID: "0001_X_30000", Payer: "A", Item: "X", Amount: 30000, Participants: []string{"A", "B", "C"}, SplitMode: models.SplitEqual},
		{ID: "0002_Y_100", Payer: "B", Item: "Y, with comma", Amount: 100, Participants: []string{"A", "B", "C"}, SplitMode: models.SplitEqual},
	}
	members := []models.Member{{Name: "A", PayTo: "Toss A"}, {Name: "B"}, {Name: "C"}}
	balances, transfers := calculator.CalculateBalances(expenses, members)
	return settle.Settlement{
		Event:     models.Event{ID: "2024-05-03_2024-05-05_MT", Title: "MT", Start: "2024-05-03", End: "2024-05-05"},
		Members:   members,
		Expenses:  expenses,
		Matrix:    calculator.ComputeMatrix(expenses, []string{"A", "B", "C"}),
		Balances:  balances,
		Transfers: transfers,
	}
}

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{30000, "30,000"},
		{10000, "10,000"},
		{3333.3333333333335, "3,333"},
		{999.5, "1,000"},
		{0.5, "0"},
		{1234567.89, "1,234,568"},
		{-2500, "-2,500"},
	}
	for _, tt := range tests {
		if got := FormatAmount(tt.in); got != tt.want {
			t.Errorf("FormatAmount(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
	if got := FormatCell(calculator.Cell{}); got != "" {
		t.Errorf("blank cell rendered as %q", got)
	}
	if got := FormatCell(calculator.Cell{Assigned: true}); got != "0" {
		t.Errorf("zero share rendered as %q", got)
	}
}

func TestCSV(t *testing.T) {
	m := calculator.ComputeMatrix([]models.Expense{
		{Payer: "A", Item: "X", Amount: 30000, Participants: []string{"A", "B", "C"}},
		{Payer: "B", Item: "Y", Amount: 10000, Participants: []string{"A", "B"}},
	}, []string{"A", "B", "C"})

	data, err := CSV(m)
	if err != nil {
		t.Fatalf("CSV failed: %v", err)
	}
	want := "\ufeffpayer,item,amount,A,B,C\n" +
		"A,X,30000,10000,10000,10000\n" +
		"B,Y,10000,5000,5000,\n" +
		"TOTAL,,40000,15000,15000,10000\n"
	if string(data) != want {
		t.Errorf("CSV =\n%q\nwant\n%q", data, want)
	}
}

func TestCSVKeepsFractionsAndQuotes(t *testing.T) {
	m := calculator.ComputeMatrix([]models.Expense{
		{Payer: "민우", Item: "치킨, 맥주", Amount: 100, Participants: []string{"민우", "B", "C"}},
	}, []string{"민우", "B", "C"})

	data, err := CSV(m)
	if err != nil {
		t.Fatalf("CSV failed: %v", err)
	}
	lines := strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
	if lines[1] != `민우,"치킨, 맥주",100,33.333333333333336,33.333333333333336,33.333333333333336` {
		t.Errorf("expense line = %q", lines[1])
	}
}

func TestCSVEmptyLedger(t *testing.T) {
	data, err := CSV(calculator.ComputeMatrix(nil, []string{"A"}))
	if err != nil {
		t.Fatalf("CSV failed: %v", err)
	}
	if string(data) != "\ufeffpayer,item,amount,A\nTOTAL,,0,0\n" {
		t.Errorf("CSV = %q", data)
	}
}

func TestExportFormats(t *testing.T) {
	st := testSettlement()
	e := New()

	tests := []struct {
		format      string
		filename    string
		contentType string
		magic       []byte
	}{
		{FormatCSV, "2024-05-03_2024-05-05_settlement.csv", contentTypeCSV, []byte("\ufeffpayer")},
		{FormatExcel, "2024-05-03_2024-05-05_settlement.xlsx", contentTypeExcel, []byte("PK")},
		{FormatPDF, "2024-05-03_2024-05-05_settlement.pdf", contentTypePDF, []byte("%PDF")},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			data, name, ct, err := e.Export(tt.format, st)
			if err != nil {
				t.Fatalf("Export failed: %v", err)
			}
			if name != tt.filename || ct != tt.contentType {
				t.Errorf("name, type = %q, %q", name, ct)
			}
			if !bytes.HasPrefix(data, tt.magic) {
				t.Errorf("output starts with %q", data[:min(len(data), 8)])
			}
		})
	}

	if _, _, _, err := e.Export("docx", st); err == nil {
		t.Error("expected error for unsupported format")
	}
}

func TestExcelContent(t *testing.T) {
	data, _, _, err := New().Export(FormatExcel, testSettlement())
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("OpenReader failed: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("Settlement", excelize.Options{RawCellValue: true})
	if err != nil {
		t.Fatalf("GetRows failed: %v", err)
	}
	if len(rows) != 4 {
		t.Fatalf("got %d rows, want 4", len(rows))
	}
	if strings.Join(rows[0], ",") != "payer,item,amount,A,B,C" {
		t.Errorf("header = %v", rows[0])
	}
	if rows[3][0] != calculator.TotalLabel || rows[3][2] != "30100" {
		t.Errorf("totals row = %v", rows[3])
	}
	if _, err := f.GetRows("Transfers"); err != nil {
		t.Errorf("missing transfers sheet: %v", err)
	}
}

func TestDisplayRows(t *testing.T) {
	rows := DisplayRows(testSettlement().Matrix)
	if got := strings.Join(rows[1], "|"); got != "A|X|30,000|10,000|10,000|10,000" {
		t.Errorf("row = %q", got)
	}
	if got := strings.Join(rows[3], "|"); got != "TOTAL||30,100|10,033|10,033|10,033" {
		t.Errorf("totals = %q", got)
	}
}

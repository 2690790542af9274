package export

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/frhd/quantum-kapital/pkg/models"
)

func f(v float64) *float64 { return &v }

func s(v string) *string { return &v }

func fixtureReport() Report {
	fundamentals := &models.FundamentalData{
		Symbol: "NVDA",
		Historical: []models.HistoricalFinancial{
			{Year: 2023, Revenue: f(60.92), NetIncome: f(29.76), EPS: f(1.19)},
			{Year: 2024, Revenue: f(130.50), NetIncome: f(72.88), EPS: f(2.94)},
		},
		CurrentMetrics: models.CurrentMetrics{
			Name:              s("NVIDIA Corporation"),
			Exchange:          s("NASDAQ"),
			MarketCap:         s("4.9T"),
			Price:             202.49,
			PERatio:           68.9,
			SharesOutstanding: 24804,
		},
	}

	baseline := models.FinancialProjection{
		Year: 2024, Revenue: 130.50, NetIncome: 72.88, EPS: 2.94,
	}
	year1 := models.YearlyProjection{
		Year: 2025,
		Bear: scenarioFixture(2025, 156.6, 3.49, 174.5, 209.4),
		Base: scenarioFixture(2025, 176.2, 3.97, 198.5, 238.2),
		Bull: scenarioFixture(2025, 195.8, 4.46, 223.0, 267.6),
	}
	results := &models.ProjectionResults{
		Baseline:    baseline,
		Projections: []models.YearlyProjection{year1},
		Cagr: models.ScenarioCagr{
			Bear: models.CagrMetrics{Revenue: f(20.0), SharePrice: f(-1.0)},
			Base: models.CagrMetrics{Revenue: f(35.0), SharePrice: f(7.8)},
			Bull: models.CagrMetrics{Revenue: f(50.0)},
		},
	}

	return Report{
		Symbol:       "NVDA",
		Fundamentals: fundamentals,
		Results:      results,
		Consensus: []models.ConsensusComparison{
			{Year: 2025, EPS: 3.97, AnalystEPS: 3.50, Diff: 0.47, DiffPercent: 13.4, Rating: models.ConsensusAbove},
		},
	}
}

func scenarioFixture(year int, revenue, eps, low, high float64) models.FinancialProjection {
	return models.FinancialProjection{
		Year:            year,
		Revenue:         revenue,
		NetIncome:       revenue * 0.5,
		EPS:             eps,
		SharePriceLow:   low,
		SharePriceHigh:  high,
		ValuationMethod: models.ValuationPE,
	}
}

func findRow(rows [][]string, first string) []string {
	for _, row := range rows {
		if len(row) > 0 && row[0] == first {
			return row
		}
	}
	return nil
}

func TestRowsLayout(t *testing.T) {
	rows := Rows(fixtureReport())

	if len(rows) == 0 || rows[0][0] != "Company Overview" {
		t.Fatal("sheet should start with the company overview section")
	}
	for _, header := range []string{"Historical Financials", "Year-by-Year Projections", "Final Year Target Summary", "Analyst Consensus"} {
		if findRow(rows, header) == nil {
			t.Errorf("missing section header %q", header)
		}
	}

	baseline := findRow(rows, "2024 (Baseline)")
	if baseline == nil {
		t.Fatal("missing baseline row")
	}
	if baseline[1] != "Actual" || baseline[2] != "$130.50B" {
		t.Errorf("unexpected baseline row: %v", baseline)
	}

	// Scenario triplet: Bear carries the year, Base and Bull leave it blank.
	for i, row := range rows {
		if len(row) > 1 && row[0] == "2025" && row[1] == "Bear" {
			if rows[i+1][1] != "Base" || rows[i+2][1] != "Bull" {
				t.Errorf("scenarios out of order at row %d", i)
			}
			if rows[i+1][0] != "" || rows[i+2][0] != "" {
				t.Error("only the Bear row should carry the year")
			}
			if row[6] != "$174.50-$209.40" {
				t.Errorf("unexpected price range cell: %q", row[6])
			}
			return
		}
	}
	t.Error("no Bear scenario row found for 2025")
}

func TestRowsHistoricalGrowth(t *testing.T) {
	rows := Rows(fixtureReport())
	row := findRow(rows, "2024")
	if row == nil {
		t.Fatal("missing 2024 historical row")
	}
	// 130.50 / 60.92 - 1 = 114.2%
	if row[4] != "114.2%" {
		t.Errorf("growth cell: got %q, want 114.2%%", row[4])
	}
}

func TestRowsUndefinedCagr(t *testing.T) {
	rows := Rows(fixtureReport())
	bull := findRow(rows, "Bull")
	if bull == nil {
		t.Fatal("missing Bull target row")
	}
	if bull[6] != "N/A" {
		t.Errorf("undefined price CAGR should render N/A, got %q", bull[6])
	}
	if bull[5] != "50.0%" {
		t.Errorf("revenue CAGR: got %q", bull[5])
	}
}

func TestRowsWithoutResults(t *testing.T) {
	r := fixtureReport()
	r.Results = nil
	r.Consensus = nil
	rows := Rows(r)

	if findRow(rows, "Year-by-Year Projections") != nil {
		t.Error("projection section should be omitted without results")
	}
	if findRow(rows, "Historical Financials") == nil {
		t.Error("historical section should still render")
	}
}

func TestSheetValues(t *testing.T) {
	vr := SheetValues(fixtureReport())
	if vr.Range != "NVDA!A1" {
		t.Errorf("range: got %q", vr.Range)
	}
	if vr.MajorDimension != "ROWS" {
		t.Errorf("majorDimension: got %q", vr.MajorDimension)
	}
	if len(vr.Values) == 0 {
		t.Error("expected values")
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	report := fixtureReport()
	if err := WriteCSV(&buf, report); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}

	reader := csv.NewReader(strings.NewReader(buf.String()))
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		t.Fatalf("parse generated CSV: %v", err)
	}

	// Separator rows become blank lines, which csv.Reader skips; every
	// data row must come back intact and in order.
	var want [][]string
	for _, row := range Rows(report) {
		if len(row) > 0 {
			want = append(want, row)
		}
	}
	if len(records) != len(want) {
		t.Fatalf("csv data rows: got %d, want %d", len(records), len(want))
	}
	for i, record := range records {
		if len(record) != len(want[i]) {
			t.Errorf("row %d: got %d cells, want %d", i, len(record), len(want[i]))
			continue
		}
		for j, cell := range record {
			if cell != want[i][j] {
				t.Errorf("row %d cell %d: got %q, want %q", i, j, cell, want[i][j])
			}
		}
	}
}

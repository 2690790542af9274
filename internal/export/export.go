// Package export renders projection results into spreadsheet-shaped rows.
// The same row layout feeds two targets: a ValueRange payload matching the
// Google Sheets values API contract, and a plain CSV file for local export.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/frhd/quantum-kapital/pkg/models"
)

// ValueRange is the spreadsheet values payload: a block of rows anchored at
// a range reference. Field names follow the Sheets values API wire format.
type ValueRange struct {
	Range          string     `json:"range"`
	MajorDimension string     `json:"majorDimension"`
	Values         [][]string `json:"values"`
}

// Report bundles everything one exported sheet is built from.
type Report struct {
	Symbol       string
	Fundamentals *models.FundamentalData
	Results      *models.ProjectionResults
	Consensus    []models.ConsensusComparison
}

// SheetValues renders the report into a ValueRange anchored at cell A1 of a
// sheet named after the ticker.
func SheetValues(r Report) ValueRange {
	return ValueRange{
		Range:          fmt.Sprintf("%s!A1", strings.ToUpper(r.Symbol)),
		MajorDimension: "ROWS",
		Values:         Rows(r),
	}
}

// WriteCSV writes the report rows as CSV. Separator rows come out as blank
// lines, which CSV readers skip; the data rows are preserved in order.
func WriteCSV(w io.Writer, r Report) error {
	cw := csv.NewWriter(w)
	for _, row := range Rows(r) {
		if len(row) == 0 {
			row = []string{""}
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Rows builds the sheet layout: company overview, historical financials,
// year-by-year projections with a baseline row, final year targets, and
// consensus annotations when available. Every cell is a plain string so the
// rows feed the values API payload and the CSV writer directly.
func Rows(r Report) [][]string {
	var rows [][]string

	rows = append(rows, overviewRows(r)...)
	rows = append(rows, historicalRows(r.Fundamentals)...)
	if r.Results != nil {
		rows = append(rows, projectionRows(r)...)
		rows = append(rows, targetRows(r)...)
	}
	if len(r.Consensus) > 0 {
		rows = append(rows, consensusRows(r.Consensus)...)
	}
	return rows
}

func overviewRows(r Report) [][]string {
	rows := [][]string{
		{"Company Overview"},
		{},
		{"Ticker:", strings.ToUpper(r.Symbol)},
	}

	if r.Fundamentals != nil {
		m := r.Fundamentals.CurrentMetrics
		if m.Name != nil {
			rows = append(rows, []string{"Company:", *m.Name})
		}
		if m.Exchange != nil {
			rows = append(rows, []string{"Exchange:", *m.Exchange})
		}
		if m.MarketCap != nil {
			rows = append(rows, []string{"Market Cap:", *m.MarketCap})
		}
		rows = append(rows,
			[]string{"Current Price:", fmt.Sprintf("$%.2f", m.Price)},
			[]string{"P/E Ratio:", fmt.Sprintf("%.2f", m.PERatio)},
			[]string{"Shares Outstanding:", fmt.Sprintf("%.0fM", m.SharesOutstanding)},
		)
		if m.DividendYield != nil {
			rows = append(rows, []string{"Dividend Yield:", fmt.Sprintf("%.2f%%", *m.DividendYield)})
		}
	}

	rows = append(rows, []string{})
	return rows
}

func historicalRows(data *models.FundamentalData) [][]string {
	if data == nil || len(data.Historical) == 0 {
		return nil
	}

	rows := [][]string{
		{"Historical Financials"},
		{"Year", "Revenue", "Net Income", "EPS", "Growth %"},
	}

	var prevRevenue *float64
	for _, h := range data.Historical {
		growth := ""
		if h.Revenue != nil && prevRevenue != nil && *prevRevenue != 0 {
			growth = fmt.Sprintf("%.1f%%", (*h.Revenue / *prevRevenue - 1) * 100)
		}
		rows = append(rows, []string{
			fmt.Sprintf("%d", h.Year),
			billions(h.Revenue),
			billions(h.NetIncome),
			dollars(h.EPS),
			growth,
		})
		if h.Revenue != nil {
			prevRevenue = h.Revenue
		}
	}

	rows = append(rows, []string{})
	return rows
}

func projectionRows(r Report) [][]string {
	res := r.Results
	rows := [][]string{
		{"Year-by-Year Projections"},
		{"Year", "Scenario", "Revenue", "Net Income", "EPS", "Valuation", "Share Price Range"},
	}

	b := res.Baseline
	rows = append(rows, []string{
		fmt.Sprintf("%d (Baseline)", b.Year),
		"Actual",
		fmt.Sprintf("$%.2fB", b.Revenue),
		fmt.Sprintf("$%.2fB", b.NetIncome),
		fmt.Sprintf("$%.2f", b.EPS),
		"",
		currentPrice(r.Fundamentals),
	})

	for _, yp := range res.Projections {
		rows = append(rows,
			scenarioRow(fmt.Sprintf("%d", yp.Year), "Bear", yp.Bear),
			scenarioRow("", "Base", yp.Base),
			scenarioRow("", "Bull", yp.Bull),
		)
	}

	rows = append(rows, []string{})
	return rows
}

func scenarioRow(year, label string, p models.FinancialProjection) []string {
	return []string{
		year,
		label,
		fmt.Sprintf("$%.2fB", p.Revenue),
		fmt.Sprintf("$%.2fB", p.NetIncome),
		fmt.Sprintf("$%.2f", p.EPS),
		string(p.ValuationMethod),
		fmt.Sprintf("$%.2f-$%.2f", p.SharePriceLow, p.SharePriceHigh),
	}
}

func targetRows(r Report) [][]string {
	res := r.Results
	if len(res.Projections) == 0 {
		return nil
	}
	final := res.Projections[len(res.Projections)-1]

	rows := [][]string{
		{"Final Year Target Summary"},
		{"Scenario", "Target Range", "Upside %", "Revenue Proj", "EPS Proj", "Revenue CAGR", "Price CAGR"},
		targetRow(r, "Bear", final.Bear, res.Cagr.Bear),
		targetRow(r, "Base", final.Base, res.Cagr.Base),
		targetRow(r, "Bull", final.Bull, res.Cagr.Bull),
		{},
	}
	return rows
}

func targetRow(r Report, label string, p models.FinancialProjection, cagr models.CagrMetrics) []string {
	upside := ""
	if r.Fundamentals != nil && r.Fundamentals.CurrentMetrics.Price > 0 {
		price := r.Fundamentals.CurrentMetrics.Price
		mid := (p.SharePriceLow + p.SharePriceHigh) / 2
		upside = fmt.Sprintf("%.1f%%", (mid/price-1)*100)
	}
	return []string{
		label,
		fmt.Sprintf("$%.2f-$%.2f", p.SharePriceLow, p.SharePriceHigh),
		upside,
		fmt.Sprintf("$%.2fB", p.Revenue),
		fmt.Sprintf("$%.2f", p.EPS),
		percent(cagr.Revenue),
		percent(cagr.SharePrice),
	}
}

func consensusRows(comparisons []models.ConsensusComparison) [][]string {
	rows := [][]string{
		{"Analyst Consensus"},
		{"Year", "Projected EPS", "Analyst EPS", "Diff", "Diff %", "Rating"},
	}
	for _, c := range comparisons {
		rows = append(rows, []string{
			fmt.Sprintf("%d", c.Year),
			fmt.Sprintf("$%.2f", c.EPS),
			fmt.Sprintf("$%.2f", c.AnalystEPS),
			fmt.Sprintf("$%.2f", c.Diff),
			fmt.Sprintf("%.1f%%", c.DiffPercent),
			c.Rating,
		})
	}
	return rows
}

func currentPrice(data *models.FundamentalData) string {
	if data == nil || data.CurrentMetrics.Price <= 0 {
		return ""
	}
	return fmt.Sprintf("$%.2f", data.CurrentMetrics.Price)
}

func billions(v *float64) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("$%.2fB", *v)
}

func dollars(v *float64) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("$%.2f", *v)
}

func percent(v *float64) string {
	if v == nil {
		return "N/A"
	}
	return fmt.Sprintf("%.1f%%", *v)
}

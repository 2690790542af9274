package alphavantage

// Alpha Vantage API response structures. All numeric fields arrive as strings.

// avOverview is the OVERVIEW endpoint response.
type avOverview struct {
	Symbol            string `json:"Symbol"`
	Name              string `json:"Name"`
	Exchange          string `json:"Exchange"`
	MarketCap         string `json:"MarketCapitalization"`
	PERatio           string `json:"PERatio"`
	SharesOutstanding string `json:"SharesOutstanding"`
	Week52High        string `json:"52WeekHigh"`
	DividendYield     string `json:"DividendYield"`
}

// avIncomeStatement is the INCOME_STATEMENT endpoint response.
type avIncomeStatement struct {
	Symbol        string           `json:"symbol"`
	AnnualReports []avAnnualReport `json:"annualReports"`
}

type avAnnualReport struct {
	FiscalDateEnding string `json:"fiscalDateEnding"` // "YYYY-MM-DD"
	TotalRevenue     string `json:"totalRevenue"`
	NetIncome        string `json:"netIncome"`
}

// avEarnings is the EARNINGS endpoint response.
type avEarnings struct {
	Symbol            string               `json:"symbol"`
	AnnualEarnings    []avAnnualEarning    `json:"annualEarnings"`
	QuarterlyEarnings []avQuarterlyEarning `json:"quarterlyEarnings"`
}

type avAnnualEarning struct {
	FiscalDateEnding string `json:"fiscalDateEnding"`
	ReportedEPS      string `json:"reportedEPS"`
}

type avQuarterlyEarning struct {
	FiscalDateEnding string `json:"fiscalDateEnding"`
	EstimatedEPS     string `json:"estimatedEPS"`
}

// avAPIError captures the error envelope Alpha Vantage returns with HTTP 200.
type avAPIError struct {
	ErrorMessage string `json:"Error Message"`
	Note         string `json:"Note"`
	Information  string `json:"Information"`
}

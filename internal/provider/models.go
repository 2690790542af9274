package provider

// ModelType identifies a standard data model that providers can serve.
// Each ModelType maps to a concrete structure in pkg/models.
type ModelType string

const (
	// ModelFundamentals is the full fundamentals bundle for a symbol:
	// historical financials, analyst estimates, and the market snapshot.
	// Fetch data type: *models.FundamentalData.
	ModelFundamentals ModelType = "Fundamentals"

	// ModelCompanyOverview is the company profile and live market snapshot
	// alone. Fetch data type: *models.CurrentMetrics.
	ModelCompanyOverview ModelType = "CompanyOverview"

	// ModelAnalystEstimates is the forward consensus estimates for a symbol.
	// Fetch data type: *models.AnalystEstimates.
	ModelAnalystEstimates ModelType = "AnalystEstimates"

	// ModelMarketNews is recent market or company news items.
	// Fetch data type: []models.NewsItem.
	ModelMarketNews ModelType = "MarketNews"
)

// AllModels returns every defined model type.
func AllModels() []ModelType {
	return []ModelType{
		ModelFundamentals,
		ModelCompanyOverview,
		ModelAnalystEstimates,
		ModelMarketNews,
	}
}

// ModelCategory groups model types for display in the status command.
func ModelCategory(m ModelType) string {
	switch m {
	case ModelFundamentals, ModelCompanyOverview:
		return "Equity / Fundamentals"
	case ModelAnalystEstimates:
		return "Equity / Estimates"
	case ModelMarketNews:
		return "News"
	default:
		return "Unknown"
	}
}

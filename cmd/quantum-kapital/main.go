// Quantum Kapital — forward projection engine for long-horizon investors.
//
// Main CLI entrypoint using cobra command framework.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/frhd/quantum-kapital/api"
	"github.com/frhd/quantum-kapital/internal/config"
	"github.com/frhd/quantum-kapital/internal/datasource"
	"github.com/frhd/quantum-kapital/internal/export"
	"github.com/frhd/quantum-kapital/internal/projection"
	"github.com/frhd/quantum-kapital/internal/provider"
	"github.com/frhd/quantum-kapital/internal/providers"
	"github.com/frhd/quantum-kapital/internal/providers/rssnews"
	"github.com/frhd/quantum-kapital/pkg/models"
)

// Build-time variables (set via -ldflags).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Global config
var cfg *config.Config

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "quantum-kapital",
	Short: "Quantum Kapital — Bear/Base/Bull projections for growth stocks",
	Long: `Quantum Kapital
A forward projection engine for long-horizon investors: compounds revenue
growth and margin drift over multi-year Bear/Base/Bull scenarios, values
each projected year on P/E or P/S multiples, and reconciles the results
against analyst consensus.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		configFile, _ := cmd.Flags().GetString("config")
		if configFile != "" {
			cfg, err = config.LoadFromFile(configFile)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		reg := provider.Global()
		if err := providers.RegisterAllToWithKey(reg, cfg.Provider.AlphaVantageKey); err != nil {
			return err
		}

		// Custom news feeds replace the stock set.
		if len(cfg.Datasource.NewsFeeds) > 0 {
			feeds := make([]rssnews.Feed, 0, len(cfg.Datasource.NewsFeeds))
			for _, url := range cfg.Datasource.NewsFeeds {
				feeds = append(feeds, rssnews.Feed{Name: url, URL: url})
			}
			custom := rssnews.NewWithFeeds(feeds)
			if err := custom.Init(nil); err != nil {
				return err
			}
			if err := reg.Register(custom); err != nil {
				return err
			}
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file path (default: ./config/config.yaml)")
	rootCmd.PersistentFlags().String("provider", "", "pin a data provider (alphavantage, stockanalysis, mockdata)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(projectCmd)
	rootCmd.AddCommand(fundamentalsCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(newsCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(statusCmd)
}

// fetchFundamentals honors the persistent --provider flag.
func fetchFundamentals(cmd *cobra.Command, symbol string) (*models.FundamentalData, error) {
	ctx, cancel := context.WithTimeout(cmd.Context(), 60*time.Second)
	defer cancel()

	ds := datasource.NewDefault()
	if name, _ := cmd.Flags().GetString("provider"); name != "" {
		return ds.FundamentalsFrom(ctx, name, symbol)
	}
	return ds.Fundamentals(ctx, symbol)
}

// assumptionsFromFlags overlays command flags onto the default set.
func assumptionsFromFlags(cmd *cobra.Command) models.ProjectionAssumptions {
	a := models.DefaultAssumptions()
	if cfg.Projection.DefaultYears > 0 {
		a.Years = cfg.Projection.DefaultYears
	}
	if v, _ := cmd.Flags().GetInt("years"); cmd.Flags().Changed("years") {
		a.Years = v
	}
	flagFloats := map[string]*float64{
		"bear-growth":   &a.BearRevenueGrowth,
		"base-growth":   &a.BaseRevenueGrowth,
		"bull-growth":   &a.BullRevenueGrowth,
		"bear-margin":   &a.BearMarginChange,
		"base-margin":   &a.BaseMarginChange,
		"bull-margin":   &a.BullMarginChange,
		"pe-low":        &a.PELow,
		"pe-high":       &a.PEHigh,
		"ps-low":        &a.PSLow,
		"ps-high":       &a.PSHigh,
		"shares-growth": &a.SharesGrowth,
	}
	for name, dst := range flagFloats {
		if cmd.Flags().Changed(name) {
			*dst, _ = cmd.Flags().GetFloat64(name)
		}
	}
	return a
}

func addAssumptionFlags(cmd *cobra.Command) {
	cmd.Flags().Int("years", 5, "projection horizon in years")
	cmd.Flags().Float64("bear-growth", 20.0, "bear revenue growth %/year")
	cmd.Flags().Float64("base-growth", 35.0, "base revenue growth %/year")
	cmd.Flags().Float64("bull-growth", 50.0, "bull revenue growth %/year")
	cmd.Flags().Float64("bear-margin", -0.5, "bear margin change pts/year")
	cmd.Flags().Float64("base-margin", 0.5, "base margin change pts/year")
	cmd.Flags().Float64("bull-margin", 1.0, "bull margin change pts/year")
	cmd.Flags().Float64("pe-low", 50.0, "low P/E multiple")
	cmd.Flags().Float64("pe-high", 60.0, "high P/E multiple")
	cmd.Flags().Float64("ps-low", 3.0, "low P/S multiple")
	cmd.Flags().Float64("ps-high", 8.0, "high P/S multiple")
	cmd.Flags().Float64("shares-growth", 0.0, "share count growth %/year (negative for buybacks)")
}

// --- Version Command ---

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("Quantum Kapital %s\n", version)
		fmt.Printf("  commit:  %s\n", commit)
		fmt.Printf("  built:   %s\n", date)
	},
}

// --- Project Command ---

var projectCmd = &cobra.Command{
	Use:   "project [symbol]",
	Short: "Run Bear/Base/Bull scenario projections for a stock",
	Long: `Project revenue, margins, EPS, and share price ranges over the chosen
horizon for all three scenarios, then compare projected EPS to analyst
consensus where estimates are available.

Examples:
  quantum-kapital project NVDA
  quantum-kapital project NVDA --years 10 --base-growth 40
  quantum-kapital project NVDA --provider mockdata`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		symbol := strings.ToUpper(args[0])

		fundamentals, err := fetchFundamentals(cmd, symbol)
		if err != nil {
			return err
		}

		assumptions := assumptionsFromFlags(cmd)
		results, err := projection.GenerateResults(fundamentals, assumptions)
		if err != nil {
			return err
		}

		printProjections(symbol, results)
		printConsensus(projection.ConsensusForResults(results, projection.DefaultConsensusThreshold).Base)
		return nil
	},
}

func init() {
	addAssumptionFlags(projectCmd)
}

func printProjections(symbol string, results *models.ProjectionResults) {
	b := results.Baseline
	fmt.Printf("Projections for %s (baseline FY%d)\n\n", symbol, b.Year)
	fmt.Printf("%-6s %-9s %12s %12s %10s %6s %20s\n",
		"Year", "Scenario", "Revenue", "Net Income", "EPS", "Val", "Price Range")
	fmt.Printf("%-6d %-9s %11.2fB %11.2fB %9.2f\n",
		b.Year, "Actual", b.Revenue, b.NetIncome, b.EPS)

	for _, yp := range results.Projections {
		printScenarioLine(fmt.Sprintf("%d", yp.Year), "Bear", yp.Bear)
		printScenarioLine("", "Base", yp.Base)
		printScenarioLine("", "Bull", yp.Bull)
	}

	fmt.Println("\nCAGR (revenue / share price):")
	fmt.Printf("  Bear: %s / %s\n", fmtPct(results.Cagr.Bear.Revenue), fmtPct(results.Cagr.Bear.SharePrice))
	fmt.Printf("  Base: %s / %s\n", fmtPct(results.Cagr.Base.Revenue), fmtPct(results.Cagr.Base.SharePrice))
	fmt.Printf("  Bull: %s / %s\n", fmtPct(results.Cagr.Bull.Revenue), fmtPct(results.Cagr.Bull.SharePrice))
}

func printScenarioLine(year, label string, p models.FinancialProjection) {
	fmt.Printf("%-6s %-9s %11.2fB %11.2fB %9.2f %6s %9.2f - %8.2f\n",
		year, label, p.Revenue, p.NetIncome, p.EPS, p.ValuationMethod, p.SharePriceLow, p.SharePriceHigh)
}

func printConsensus(comparisons []models.ConsensusComparison) {
	if len(comparisons) == 0 {
		return
	}
	fmt.Println("\nAnalyst consensus (base scenario EPS):")
	for _, c := range comparisons {
		fmt.Printf("  %d: projected %.2f vs consensus %.2f (%+.1f%%) — %s\n",
			c.Year, c.EPS, c.AnalystEPS, c.DiffPercent, c.Rating)
	}
}

func fmtPct(v *float64) string {
	if v == nil {
		return "N/A"
	}
	return fmt.Sprintf("%.1f%%", *v)
}

// --- Fundamentals Command ---

var fundamentalsCmd = &cobra.Command{
	Use:   "fundamentals [symbol]",
	Short: "Show historical financials and current metrics for a stock",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		symbol := strings.ToUpper(args[0])

		data, err := fetchFundamentals(cmd, symbol)
		if err != nil {
			return err
		}

		m := data.CurrentMetrics
		fmt.Printf("%s", symbol)
		if m.Name != nil {
			fmt.Printf(" — %s", *m.Name)
		}
		fmt.Println()
		fmt.Printf("  Price: $%.2f   P/E: %.1f   Shares: %.0fM", m.Price, m.PERatio, m.SharesOutstanding)
		if m.MarketCap != nil {
			fmt.Printf("   Market Cap: %s", *m.MarketCap)
		}
		fmt.Println()

		fmt.Printf("\n%-6s %12s %12s %10s\n", "Year", "Revenue", "Net Income", "EPS")
		for _, h := range data.Historical {
			fmt.Printf("%-6d %11sB %11sB %10s\n",
				h.Year, fmtOpt(h.Revenue), fmtOpt(h.NetIncome), fmtOpt(h.EPS))
		}

		if est := data.AnalystEstimates; est != nil && len(est.EPS) > 0 {
			fmt.Println("\nAnalyst EPS estimates:")
			for _, e := range est.EPS {
				fmt.Printf("  %d: %.2f\n", e.Year, e.Estimate)
			}
		}
		return nil
	},
}

func fmtOpt(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%.2f", *v)
}

// --- Export Command ---

var exportCmd = &cobra.Command{
	Use:   "export [symbol]",
	Short: "Export projections to a CSV file",
	Long: `Run scenario projections and write the full sheet layout (company
overview, historical financials, year-by-year projections, targets, and
consensus) to a CSV file.

Examples:
  quantum-kapital export NVDA --out nvda.csv
  quantum-kapital export NVDA --years 3 --out -`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		symbol := strings.ToUpper(args[0])
		out, _ := cmd.Flags().GetString("out")
		if out == "" {
			out = symbol + "_projections.csv"
		}

		fundamentals, err := fetchFundamentals(cmd, symbol)
		if err != nil {
			return err
		}

		assumptions := assumptionsFromFlags(cmd)
		results, err := projection.GenerateResults(fundamentals, assumptions)
		if err != nil {
			return err
		}

		report := export.Report{
			Symbol:       symbol,
			Fundamentals: fundamentals,
			Results:      results,
			Consensus:    projection.ConsensusForResults(results, projection.DefaultConsensusThreshold).Base,
		}

		if out == "-" {
			return export.WriteCSV(os.Stdout, report)
		}

		f, err := os.Create(out)
		if err != nil {
			return fmt.Errorf("create %s: %w", out, err)
		}
		defer f.Close()

		if err := export.WriteCSV(f, report); err != nil {
			return err
		}
		fmt.Printf("Wrote %s\n", out)
		return nil
	},
}

func init() {
	exportCmd.Flags().String("out", "", "output file path ('-' for stdout)")
	addAssumptionFlags(exportCmd)
}

// --- News Command ---

var newsCmd = &cobra.Command{
	Use:   "news",
	Short: "Show recent market news",
	RunE: func(cmd *cobra.Command, args []string) error {
		query, _ := cmd.Flags().GetString("query")
		limit, _ := cmd.Flags().GetInt("limit")
		if limit <= 0 {
			limit = cfg.Datasource.NewsLimit
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 60*time.Second)
		defer cancel()

		items, err := datasource.NewDefault().News(ctx, query, limit)
		if err != nil {
			return err
		}

		for _, item := range items {
			fmt.Printf("[%s] %s\n", item.Source, item.Title)
			if !item.PublishedAt.IsZero() {
				fmt.Printf("  %s", item.PublishedAt.Format("2006-01-02 15:04"))
			}
			if item.URL != "" {
				fmt.Printf("  %s", item.URL)
			}
			fmt.Println()
		}
		return nil
	},
}

func init() {
	newsCmd.Flags().String("query", "", "filter news by ticker or company name")
	newsCmd.Flags().Int("limit", 0, "max articles to show")
}

// --- Serve Command (API Server) ---

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		addr := fmt.Sprintf("%s:%d", cfg.API.Host, cfg.API.Port)
		fmt.Printf("Starting Quantum Kapital API server on %s\n", addr)
		return api.NewServer(cfg).ListenAndServe(addr)
	},
}

// --- Status Command ---

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show system status and configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println("═══════════════════════════════════════")
		fmt.Println("  Quantum Kapital — System Status")
		fmt.Println("═══════════════════════════════════════")
		fmt.Printf("  Version:     %s (%s)\n", version, commit)
		fmt.Printf("  API Server:  %s:%d\n", cfg.API.Host, cfg.API.Port)
		fmt.Println()

		fmt.Println("  Providers:")
		reg := provider.Global()
		for _, info := range reg.List() {
			fmt.Printf("    %-15s %s\n", info.Name, info.Description)
		}
		fmt.Println()

		fmt.Println("  Model coverage:")
		for model, names := range reg.ModelCoverage() {
			fmt.Printf("    %-22s %s\n", model, strings.Join(names, ", "))
		}
		fmt.Println()

		fmt.Println("  API Keys:")
		for _, k := range config.CheckAPIKeys(cfg) {
			status := "not set"
			if k.IsSet {
				status = fmt.Sprintf("set (%s: %s)", k.Source, k.Masked)
			}
			fmt.Printf("    %-25s %s\n", k.Name+":", status)
		}

		fmt.Println("═══════════════════════════════════════")
		return nil
	},
}

// Command quarterdash serves and inspects quarterly financial tables built
// from SEC EDGAR company-concept data.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/ishavarrier/quarterdash/api"
	"github.com/ishavarrier/quarterdash/internal/config"
	"github.com/ishavarrier/quarterdash/internal/edgar"
	"github.com/ishavarrier/quarterdash/internal/report"
	"github.com/ishavarrier/quarterdash/pkg/models"
)

// Build-time variables set via ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	cfgFile string
	cfg     *config.Config
	client  *edgar.Client
	svc     *report.Service
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "quarterdash",
		Short: "Quarterly financials from SEC EDGAR",
		Long: `quarterdash builds tidy quarterly financial tables (revenue, gross
profit, net income, operating cash flow, gross margin) from SEC EDGAR
XBRL company-concept data, with QoQ and YoY changes per quarter.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// .env is optional; real env vars still apply without it.
			_ = godotenv.Load()

			var err error
			if cfgFile != "" {
				cfg, err = config.LoadFromFile(cfgFile)
			} else {
				cfg, err = config.Load()
			}
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			client = edgar.NewClient(cfg.SEC.UserAgent)
			svc = report.NewService(client, cfg.Cache.TableTTL())
			return nil
		},
	}

	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file path")

	root.AddCommand(
		versionCmd(),
		companiesCmd(),
		resolveCmd(),
		tableCmd(),
		changesCmd(),
		filingsCmd(),
		serveCmd(),
		statusCmd(),
	)
	return root
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("quarterdash %s (commit %s, built %s)\n", version, commit, date)
		},
	}
}

func companiesCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "companies [query]",
		Short: "List or search the SEC company registry",
		Long: `Without a query, prints the default dashboard shortlist.
With a query, searches the registry by name, ticker, or CIK.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 60*time.Second)
			defer cancel()

			var companies []models.Company
			if len(args) == 1 {
				var err error
				companies, err = client.Search(ctx, args[0], limit)
				if err != nil {
					return err
				}
			} else {
				all, err := client.CompanyList(ctx)
				if err != nil {
					return err
				}
				byName := make(map[string]models.Company, len(all))
				for _, co := range all {
					byName[co.Name] = co
				}
				for _, name := range report.DefaultCompanies {
					if co, ok := byName[name]; ok {
						companies = append(companies, co)
					}
				}
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "CIK\tTICKER\tNAME")
			for _, co := range companies {
				fmt.Fprintf(w, "%s\t%s\t%s\n", co.CIK, co.Ticker, co.Name)
			}
			return w.Flush()
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 25, "maximum search results")
	return cmd
}

func resolveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <company>",
		Short: "Resolve a company to its CIK and revenue concept",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 60*time.Second)
			defer cancel()

			co, err := client.FindCompany(ctx, args[0])
			if err != nil {
				return err
			}
			tag := svc.ResolveRevenueTag(ctx, co.Name, co.CIK)
			fmt.Printf("Name:        %s\n", co.Name)
			fmt.Printf("Ticker:      %s\n", co.Ticker)
			fmt.Printf("CIK:         %s\n", co.CIK)
			fmt.Printf("Revenue tag: %s\n", tag)
			return nil
		},
	}
}

func tableCmd() *cobra.Command {
	var asCSV bool
	cmd := &cobra.Command{
		Use:   "table <company>",
		Short: "Print the quarterly financials table for a company",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
			defer cancel()

			co, err := client.FindCompany(ctx, args[0])
			if err != nil {
				return err
			}
			table, err := svc.Table(ctx, co.Name, co.CIK)
			if err != nil {
				return err
			}
			if table.Empty() {
				fmt.Printf("No quarterly financial data available for %s.\n", co.Name)
				return nil
			}

			if asCSV {
				return report.WriteCSV(os.Stdout, table)
			}
			printTable(table)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asCSV, "csv", false, "output as CSV")
	return cmd
}

func changesCmd() *cobra.Command {
	var quarter string
	cmd := &cobra.Command{
		Use:   "changes <company>",
		Short: "Show QoQ and YoY changes for one quarter",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
			defer cancel()

			co, err := client.FindCompany(ctx, args[0])
			if err != nil {
				return err
			}

			if quarter == "" {
				table, err := svc.Table(ctx, co.Name, co.CIK)
				if err != nil {
					return err
				}
				if table.Empty() {
					fmt.Printf("No quarterly financial data available for %s.\n", co.Name)
					return nil
				}
				quarter = table.Rows[0].Quarter
			}

			cs, err := svc.Changes(ctx, co.Name, co.CIK, quarter)
			if err != nil {
				return err
			}
			printChanges(co.Name, cs)
			return nil
		},
	}
	cmd.Flags().StringVar(&quarter, "quarter", "", "quarter label, e.g. CY2023Q2 (default: newest)")
	return cmd
}

func filingsCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "filings <company>",
		Short: "List a company's most recent SEC filings",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 60*time.Second)
			defer cancel()

			co, err := client.FindCompany(ctx, args[0])
			if err != nil {
				return err
			}
			filings, err := client.LatestFilings(ctx, co.CIK, limit)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "FILED\tFORM\tTITLE")
			for _, f := range filings {
				fmt.Fprintf(w, "%s\t%s\t%s\n", f.Filed.Format("2006-01-02"), f.FormType, f.Title)
			}
			return w.Flush()
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum filings to list")
	return cmd
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			addr := fmt.Sprintf("%s:%d", cfg.API.Host, cfg.API.Port)
			fmt.Printf("Starting quarterdash API on %s\n", addr)
			srv := api.NewServer(cfg, client, svc)
			return srv.ListenAndServe(addr)
		},
	}
}

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check configuration and EDGAR reachability",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Printf("User-Agent:  %s\n", cfg.SEC.UserAgent)
			fmt.Printf("Rate limit:  %d req/s\n", cfg.SEC.RatePerSec)
			fmt.Printf("Table TTL:   %s\n", cfg.Cache.TableTTL())

			ctx, cancel := context.WithTimeout(cmd.Context(), 60*time.Second)
			defer cancel()

			companies, err := client.CompanyList(ctx)
			if err != nil {
				fmt.Println("EDGAR:       unreachable")
				return err
			}
			fmt.Printf("EDGAR:       ok (%d companies in registry)\n", len(companies))
			return nil
		},
	}
}

// printTable writes the tidy table in aligned columns, newest quarter first.
func printTable(table *models.TidyTable) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(w, "DATE\tQUARTER\t%s\t\n", strings.Join(table.Columns, "\t"))
	for _, row := range table.Rows {
		fmt.Fprintf(w, "%s\t%s", row.Date.Format("2006-01-02"), row.Quarter)
		for _, col := range table.Columns {
			if v, ok := row.Metric(col); ok {
				fmt.Fprintf(w, "\t%s", formatMetric(col, v))
			} else {
				fmt.Fprint(w, "\tN/A")
			}
		}
		fmt.Fprintln(w, "\t")
	}
	w.Flush() //nolint:errcheck
}

// printChanges writes the change set for one quarter.
func printChanges(company string, cs *models.ChangeSet) {
	fmt.Printf("%s — %s\n\n", company, cs.Quarter)
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(w, "METRIC\tCURRENT\tQoQ\tYoY\t")
	order := []string{
		models.MetricRevenue,
		models.MetricGrossProfit,
		models.MetricNetIncome,
		models.MetricCashFlow,
		models.MetricGrossMargin,
	}
	for _, metric := range order {
		if _, ok := cs.Current[metric]; !ok {
			continue
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t\n",
			metric,
			formatMetric(metric, cs.Current[metric]),
			formatDelta(cs.QoQ, metric),
			formatDelta(cs.YoY, metric))
	}
	w.Flush() //nolint:errcheck
}

func formatMetric(metric string, v float64) string {
	if metric == models.MetricGrossMargin {
		return fmt.Sprintf("%.1f%%", v*100)
	}
	return fmt.Sprintf("%.0f", v)
}

func formatDelta(deltas map[string]float64, metric string) string {
	v, ok := deltas[metric]
	if !ok {
		return "N/A"
	}
	return fmt.Sprintf("%+.1f%%", v*100)
}

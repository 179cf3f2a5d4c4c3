package cmd

import (
	"fmt"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/rezonia/invoice-generator/pkg/config"
	"github.com/rezonia/invoice-generator/pkg/logger"
)

var (
	version = "1.0.0"

	// Global flags
	verbose      bool
	outputFormat string

	cfg *config.Config
	log *logger.Logger
)

var rootCmd = &cobra.Command{
	Use:   "invoice-generator",
	Short: "Generate hybrid electronic invoices (PDF with embedded structured data)",
	Long: `Invoice Generator produces archival PDF invoices that carry the same
invoice as a machine-readable XML dataset, readable by both humans and
accounting systems.

Conformance profiles:
  basic     - minimal mandatory field set
  en16931   - the European semantic model (default)
  extended  - en16931 plus buyer VAT identification

Examples:
  # Generate a document from invoice data
  invoice-generator generate invoice.json -o invoice.pdf

  # Generate at a specific profile
  invoice-generator generate invoice.json --profile extended -o invoice.pdf

  # Check an existing document
  invoice-generator validate invoice.pdf

  # Run the HTTP API
  invoice-generator serve --address :8080`,
	Version: version,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "format", "f", "table", "Output format (json, table)")

	cobra.OnInitialize(initConfig)
}

func initConfig() {
	var err error
	cfg, err = config.Load()
	if err != nil {
		cobra.CheckErr(err)
	}

	level := cfg.Log.Level
	if verbose {
		level = "debug"
	}
	log = logger.New(logger.Config{Env: cfg.App.Env, Level: level})
}

// parseRates converts configured VAT rate strings to decimals.
func parseRates(rates []string) ([]decimal.Decimal, error) {
	var parseErr error
	out := lo.Map(rates, func(s string, _ int) decimal.Decimal {
		d, err := decimal.NewFromString(s)
		if err != nil && parseErr == nil {
			parseErr = fmt.Errorf("invalid VAT rate %q: %w", s, err)
		}
		return d
	})
	if parseErr != nil {
		return nil, parseErr
	}
	return out, nil
}

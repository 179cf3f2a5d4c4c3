package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/rezonia/invoice-generator/pkg/invoicegen"
)

var (
	generateProfile  string
	generateRounding string
	generateOut      string
	generateStrict   bool
	generateICCPath  string
)

var generateCmd = &cobra.Command{
	Use:   "generate <invoice.json>",
	Short: "Generate a hybrid invoice document",
	Long: `Generate a hybrid invoice document from a JSON invoice description.

The invoice is validated, totals are computed per VAT rate, the structured
dataset is generated at the selected conformance profile and embedded into
the rendered PDF. The compliance report for the finished document is printed
alongside.

Examples:
  invoice-generator generate invoice.json -o invoice.pdf
  invoice-generator generate invoice.json --profile extended --rounding half-even
  invoice-generator generate invoice.json --icc-profile sRGB.icc --strict-archival`,
	Args: cobra.ExactArgs(1),
	RunE: runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.Flags().StringVar(&generateProfile, "profile", "", "Conformance profile (basic, en16931, extended)")
	generateCmd.Flags().StringVar(&generateRounding, "rounding", "", "Rounding policy (half-away-from-zero, half-even)")
	generateCmd.Flags().StringVarP(&generateOut, "out", "o", "", "Output file (default: input name with .pdf)")
	generateCmd.Flags().StringVar(&generateICCPath, "icc-profile", "", "Path to an sRGB ICC color profile")
	generateCmd.Flags().BoolVar(&generateStrict, "strict-archival", false, "Fail when archival prerequisites are missing")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	gen, err := buildGenerator()
	if err != nil {
		return err
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read invoice file: %w", err)
	}
	var inv invoicegen.Invoice
	if err := json.Unmarshal(data, &inv); err != nil {
		return fmt.Errorf("parse invoice file: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	result, err := gen.Generate(ctx, &inv)
	if err != nil {
		return err
	}

	out := generateOut
	if out == "" {
		out = strings.TrimSuffix(args[0], filepath.Ext(args[0])) + ".pdf"
	}
	if err := os.WriteFile(out, result.Document, 0o644); err != nil {
		return fmt.Errorf("write document: %w", err)
	}

	if outputFormat == "json" {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(map[string]any{
			"file":            out,
			"attachment_name": result.AttachmentName,
			"totals":          result.Invoice.Totals,
			"report":          result.Report,
		})
	}

	fmt.Printf("Wrote %s (%d bytes, dataset %s)\n", out, len(result.Document), result.AttachmentName)
	totals := result.Invoice.Totals
	fmt.Printf("  net %s  VAT %s  gross %s %s\n",
		totals.TotalNet, totals.TotalVAT, totals.TotalGross, result.Invoice.Currency)
	printReport(result.Report)
	return nil
}

func buildGenerator() (*invoicegen.Generator, error) {
	profileName := generateProfile
	if profileName == "" {
		profileName = cfg.Generator.Profile
	}
	profile, err := invoicegen.ParseProfile(profileName)
	if err != nil {
		return nil, err
	}

	rates, err := parseRates(cfg.Generator.AllowedVATRates)
	if err != nil {
		return nil, err
	}

	iccPath := generateICCPath
	if iccPath == "" {
		iccPath = cfg.Generator.ICCProfilePath
	}
	var icc []byte
	if iccPath != "" {
		if icc, err = os.ReadFile(iccPath); err != nil {
			return nil, fmt.Errorf("read ICC profile: %w", err)
		}
	}

	rounding := generateRounding
	if rounding == "" {
		rounding = cfg.Generator.Rounding
	}

	return invoicegen.New(invoicegen.Options{
		Profile:         profile,
		AllowedVATRates: rates,
		Rounding:        invoicegen.RoundingPolicy(rounding),
		CreatorTool:     cfg.Generator.CreatorTool,
		Producer:        cfg.Generator.Producer,
		AttachmentName:  cfg.Generator.AttachmentName,
		ICCProfile:      icc,
		StrictArchival:  generateStrict || cfg.Generator.StrictArchival,
		Logger:          log,
	})
}

func printReport(report *invoicegen.Report) {
	if report.Compliant {
		fmt.Println("  compliance: OK")
		return
	}
	fmt.Printf("  compliance: %d finding(s)\n", len(report.Violations))
	for _, v := range report.Violations {
		fmt.Printf("    - %s\n", v)
	}
}

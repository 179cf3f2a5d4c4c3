package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rezonia/invoice-generator/pkg/invoicegen"
)

var validateCmd = &cobra.Command{
	Use:   "validate [files...]",
	Short: "Check hybrid invoice documents for compliance",
	Long: `Run the compliance check on one or more finished documents.

Checks performed:
  - archival container structure (metadata, identification, output intent)
  - embedded structured dataset present and declared as an alternative
  - dataset well-formed, profile known, mandated fields present
  - declared totals arithmetically consistent

Examples:
  invoice-generator validate invoice.pdf
  invoice-generator validate out/*.pdf -f json`,
	Args: cobra.MinimumNArgs(1),
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

// fileReport pairs a file with its compliance report for output.
type fileReport struct {
	File   string             `json:"file"`
	Report *invoicegen.Report `json:"report"`
}

func runValidate(cmd *cobra.Command, args []string) error {
	gen, err := buildGenerator()
	if err != nil {
		return err
	}

	reports := make([]fileReport, 0, len(args))
	allCompliant := true

	for _, file := range args {
		data, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("read %s: %w", file, err)
		}
		report := gen.Validate(data)
		reports = append(reports, fileReport{File: file, Report: report})
		if !report.Compliant {
			allCompliant = false
		}
	}

	if outputFormat == "json" {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(reports); err != nil {
			return err
		}
	} else {
		for _, r := range reports {
			if r.Report.Compliant {
				fmt.Printf("✓ %s: COMPLIANT (%s)\n", r.File, r.Report.Profile)
				continue
			}
			fmt.Printf("✗ %s: NOT COMPLIANT\n", r.File)
			for _, v := range r.Report.Violations {
				fmt.Printf("  - %s\n", v)
			}
		}
	}

	if !allCompliant {
		return fmt.Errorf("compliance check failed for some files")
	}
	return nil
}

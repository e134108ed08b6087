package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/foodguard/backend/config"
	"github.com/foodguard/backend/internal/domain"
	"github.com/foodguard/backend/internal/infrastructure/barcode"
	"github.com/foodguard/backend/internal/usecase"
	"github.com/spf13/cobra"
)

// scanReport is printed for every barcode found in an image
type scanReport struct {
	Barcode   string                `json:"barcode"`
	Symbology domain.Symbology      `json:"symbology"`
	Product   *domain.ProductRecord `json:"product,omitempty"`
	Verdict   *domain.SafetyVerdict `json:"verdict,omitempty"`
	Error     string                `json:"error,omitempty"`
}

func newScanCommand() *cobra.Command {
	var allergies, conditions []string

	cmd := &cobra.Command{
		Use:   "scan IMAGE",
		Short: "Decode every barcode in a local image and look each product up",
		Long: `Decode every barcode in a PNG or JPEG image, resolve each one against
OpenFoodFacts and print the product details as JSON lines. When --allergies or
--conditions are given, each product is also checked against them.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			return runScan(cmd, data, domain.NewSensitivityProfile(allergies, conditions))
		},
	}

	flags := cmd.Flags()
	flags.StringSliceVar(&allergies, "allergies", nil, "allergies to check, comma separated")
	flags.StringSliceVar(&conditions, "conditions", nil, "health conditions to check, comma separated")
	return cmd
}

func runScan(cmd *cobra.Command, data []byte, profile *domain.SensitivityProfile) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	decoder := barcode.NewDecoder()
	decoder.SetMaxPixels(cfg.Upload.MaxPixels)
	symbols, err := decoder.Decode(data)
	if err != nil {
		return err
	}
	if len(symbols) == 0 {
		fmt.Fprintln(cmd.ErrOrStderr(), "No barcode detected in the image.")
		return nil
	}

	products, cleanup, err := newProductService(cfg)
	if err != nil {
		return err
	}
	defer cleanup.Close()

	matcher := usecase.NewSafetyMatcher(usecase.SafetyMatcherConfig{})
	for _, symbol := range symbols {
		product, err := products.Resolve(cmd.Context(), symbol.Value)
		report := buildReport(symbol, product, err, matcher, profile)
		if err := writeJSONLine(cmd.OutOrStdout(), report); err != nil {
			return err
		}
	}
	return nil
}

// buildReport describes one lookup, checking the product against profile when one is declared
func buildReport(symbol domain.DecodedSymbol, product *domain.ProductRecord, lookupErr error, matcher *usecase.SafetyMatcher, profile *domain.SensitivityProfile) scanReport {
	report := scanReport{Barcode: symbol.Value, Symbology: symbol.Symbology}

	switch {
	case errors.Is(lookupErr, domain.ErrProductNotFound):
		report.Error = "product not found"
		return report
	case lookupErr != nil:
		report.Error = lookupErr.Error()
		return report
	}

	report.Product = product
	if profile.IsEmpty() {
		return report
	}
	verdict, err := matcher.Match(product, profile)
	if err != nil {
		report.Error = err.Error()
		return report
	}
	report.Verdict = verdict
	return report
}

func writeJSONLine(w io.Writer, v interface{}) error {
	line, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(line))
	return err
}

package main

import (
	"fmt"

	"github.com/foodguard/backend/config"
	"github.com/spf13/cobra"
)

func newLookupCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "lookup BARCODE",
		Short: "Print the OpenFoodFacts record for a barcode",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			products, cleanup, err := newProductService(cfg)
			if err != nil {
				return err
			}
			defer cleanup.Close()

			product, err := products.Resolve(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return writeJSONLine(cmd.OutOrStdout(), product)
		},
	}
}

package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"
)

const version = "1.0.0"

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

// newRootCommand assembles the CLI. Every subcommand reads config.yaml and FOODGUARD_* variables.
func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "foodguard",
		Short:        "Check packaged food barcodes against allergies and health conditions",
		Version:      version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			// stdout carries JSON lines for scan and lookup
			log.SetOutput(cmd.ErrOrStderr())
		},
	}

	root.AddCommand(
		newServeCommand(),
		newScanCommand(),
		newLookupCommand(),
	)
	return root
}

func init() {
	// Set log flags for better debugging
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
}

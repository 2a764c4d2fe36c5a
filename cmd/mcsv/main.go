package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// metaFlag overrides the sidecar path; empty means <data>.mcsv.
var metaFlag string

func main() {
	rootCmd := &cobra.Command{
		Use:   "mcsv",
		Short: "Inspect and validate typed CSV files described by MetaCSV sidecars",
		Long: `mcsv reads a CSV file together with its MetaCSV sidecar (data.mcsv next
to data.csv by default) and decodes rows according to the declared dialect
and column types.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&metaFlag, "meta", "", "path to the MetaCSV sidecar (default: <data>.mcsv)")

	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(headCmd)
	rootCmd.AddCommand(typesCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

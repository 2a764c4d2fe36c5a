package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var typesCmd = &cobra.Command{
	Use:   "types <data.csv>",
	Short: "Print resolved column names and type labels",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rd, err := openReader(args[0])
		if err != nil {
			return err
		}
		defer rd.Close()

		names := rd.Header()
		labels := rd.TypeLabels()

		tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "COLUMN\tNAME\tTYPE")
		for i, name := range names {
			fmt.Fprintf(tw, "%d\t%s\t%s\n", i+1, name, labels[i])
		}
		return tw.Flush()
	},
}

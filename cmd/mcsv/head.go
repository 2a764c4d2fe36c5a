package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/metacsv/go-mcsv"
)

var (
	headCount int
	headTypes bool
)

func init() {
	headCmd.Flags().IntVarP(&headCount, "number", "n", 10, "number of rows to print")
	headCmd.Flags().BoolVar(&headTypes, "types", false, "print a type label row under the header")
}

var headCmd = &cobra.Command{
	Use:   "head <data.csv>",
	Short: "Print the first rows, decoded",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var opts []mcsv.ReaderOption
		if headTypes {
			opts = append(opts, mcsv.IncludeTypes())
		}
		rd, err := openReader(args[0], opts...)
		if err != nil {
			return err
		}
		defer rd.Close()

		tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, strings.Join(rd.Header(), "\t"))

		remaining := headCount
		if headTypes {
			// The label row does not count against -n.
			remaining++
		}
		for remaining > 0 {
			row, err := rd.Read()
			if err == io.EOF {
				break
			}
			var de *mcsv.DecodeError
			if errors.As(err, &de) {
				fmt.Fprintf(os.Stderr, "row %d: %v\n", de.Row, de)
				remaining--
				continue
			}
			if err != nil {
				return err
			}

			cells := make([]string, len(row))
			for i, v := range row {
				cells[i] = v.String()
			}
			fmt.Fprintln(tw, strings.Join(cells, "\t"))
			remaining--
		}
		return tw.Flush()
	},
}

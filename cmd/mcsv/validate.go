package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/metacsv/go-mcsv"
)

var validateCmd = &cobra.Command{
	Use:   "validate <data.csv>",
	Short: "Decode every row and report type conformance failures",
	Long: `Decode the whole file against its sidecar. Each row that fails to decode
is reported with its row number, column and declared type. The exit code is
non-zero when the file has structural problems (bad sidecar, bad quoting,
undecodable bytes) or when any row fails.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rd, err := openReader(args[0])
		if err != nil {
			return err
		}
		defer rd.Close()

		var rows, failures int
		for {
			_, err := rd.Read()
			if err == io.EOF {
				break
			}
			var de *mcsv.DecodeError
			if errors.As(err, &de) {
				failures++
				if de.Column == 0 {
					fmt.Printf("row %d: %v\n", de.Row, de.Err)
				} else {
					fmt.Printf("row %d, column %d (%s): %q is not a valid %s\n",
						de.Row, de.Column, de.Name, de.Value, de.Label)
				}
				continue
			}
			if err != nil {
				return err
			}
			rows++
		}

		if failures > 0 {
			return fmt.Errorf("%d of %d rows failed to decode", failures, rows+failures)
		}
		fmt.Printf("%s: %d rows OK\n", args[0], rows)
		return nil
	},
}

// openReader builds a typed reader over dataPath using the --meta flag or
// the default sidecar path.
func openReader(dataPath string, opts ...mcsv.ReaderOption) (*mcsv.Reader, error) {
	metaPath := metaFlag
	if metaPath == "" {
		metaPath = mcsv.ToMetaPath(dataPath)
	}
	return mcsv.OpenReader(dataPath, metaPath, opts...)
}

// Package mcsv interprets MetaCSV sidecar files and decodes the CSV data
// they describe into typed values.
//
// A MetaCSV sidecar is itself a small CSV file, conventionally named after
// the data file with an ".mcsv" extension, whose rows declare the data
// file's encoding and dialect and give each column a name and a type token
// such as "integer", "boolean/yes/no" or "date/YYYY-MM-dd".
//
// The package splits the work into four stages:
//
//   - LoadDescription parses a sidecar into a Description: the dialect, the
//     null marker and the declared column schema, with every type token
//     compiled eagerly so a bad declaration fails before any data is read.
//   - CompileType turns one type token into a FieldDescription; extra kinds
//     can be added with RegisterType.
//   - Reader and DictReader tokenize the data stream under the described
//     dialect and cast each cell with its column's rule, yielding Row
//     values lazily. Cast failures and arity mismatches are row-scoped
//     DecodeErrors; iteration continues on the next call.
//   - Writer, DictWriter and RenderDescription go the other way, formatting
//     typed rows back to text and serializing a Description back to
//     sidecar form.
//
// Typical use:
//
//	r, err := mcsv.OpenReader("sales.csv", "")
//	if err != nil {
//		// structural problem: missing sidecar, bad dialect, bad type token
//	}
//	defer r.Close()
//	for {
//		row, err := r.Read()
//		if err == io.EOF {
//			break
//		}
//		var de *mcsv.DecodeError
//		if errors.As(err, &de) {
//			// one bad row; keep reading
//			continue
//		}
//		if err != nil {
//			// fatal stream error
//		}
//		_ = row
//	}
package mcsv

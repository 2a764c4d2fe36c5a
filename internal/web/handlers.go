package web

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/metacsv/go-mcsv"
	"github.com/metacsv/go-mcsv/internal/logging"
)

// rowError is the JSON form of a row-scoped decode failure.
type rowError struct {
	Row     int    `json:"row"`
	Column  int    `json:"column,omitempty"`
	Name    string `json:"name,omitempty"`
	Value   string `json:"value,omitempty"`
	Label   string `json:"label,omitempty"`
	Message string `json:"message"`
}

func toRowError(de *mcsv.DecodeError) rowError {
	return rowError{
		Row:     de.Row,
		Column:  de.Column,
		Name:    de.Name,
		Value:   de.Value,
		Label:   de.Label,
		Message: de.Error(),
	}
}

// jsonValue renders a decoded value for a JSON response. Integers, floats
// and booleans keep their native JSON type; decimals and temporal values
// are strings so no precision is lost.
func jsonValue(v mcsv.Value) any {
	if v.IsNull() {
		return nil
	}
	switch v.Kind {
	case mcsv.DataBoolean:
		return v.Bool
	case mcsv.DataInteger:
		return v.Int
	case mcsv.DataFloat:
		return v.Float
	default:
		return v.String()
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"})
}

// errBadUpload marks request-shape problems: unparseable form, missing parts.
var errBadUpload = errors.New("bad upload")

// openUpload parses the multipart form and builds a reader over the "data"
// part, described by the optional "meta" part. Without a meta part every
// column decodes through the any passthrough.
func (s *Server) openUpload(w http.ResponseWriter, r *http.Request, opts ...mcsv.ReaderOption) (*mcsv.Reader, func(), error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Upload.MaxFileSize)
	if err := r.ParseMultipartForm(4 << 20); err != nil {
		return nil, nil, fmt.Errorf("%w: parse multipart form: %v", errBadUpload, err)
	}

	data, _, err := r.FormFile("data")
	if err != nil {
		return nil, nil, fmt.Errorf("%w: missing data file", errBadUpload)
	}

	desc, err := s.uploadDescription(r)
	if err != nil {
		data.Close()
		return nil, nil, err
	}

	rd, err := mcsv.NewReader(data, desc, opts...)
	if err != nil {
		data.Close()
		return nil, nil, err
	}
	return rd, func() { data.Close() }, nil
}

// uploadDescription loads the "meta" part if present, or returns the
// untyped default description.
func (s *Server) uploadDescription(r *http.Request) (*mcsv.Description, error) {
	meta, _, err := r.FormFile("meta")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return mcsv.NewDescription(), nil
		}
		return nil, fmt.Errorf("read meta file: %w", err)
	}
	defer meta.Close()
	return mcsv.LoadDescription(meta)
}

// handlePreview decodes up to limit rows and returns them typed.
//
//	POST /api/preview?mode=list|dict&limit=N&types=true|false
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	logger := logging.FromContext(r.Context())

	mode := r.URL.Query().Get("mode")
	if mode == "" {
		mode = "list"
	}
	if mode != "list" && mode != "dict" {
		respondError(w, r, fmt.Errorf("unknown mode %q", mode), http.StatusBadRequest)
		return
	}

	withTypes := true
	if q := r.URL.Query().Get("types"); q != "" {
		b, err := strconv.ParseBool(q)
		if err != nil {
			respondError(w, r, fmt.Errorf("bad types %q", q), http.StatusBadRequest)
			return
		}
		withTypes = b
	}

	limit := s.cfg.Upload.PreviewRows
	if q := r.URL.Query().Get("limit"); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil || n <= 0 {
			respondError(w, r, fmt.Errorf("bad limit %q", q), http.StatusBadRequest)
			return
		}
		if n < limit {
			limit = n
		}
	}

	rd, cleanup, err := s.openUpload(w, r)
	if err != nil {
		respondError(w, r, err, 0)
		return
	}
	defer cleanup()

	type previewResponse struct {
		Header    []string   `json:"header"`
		Types     []string   `json:"types,omitempty"`
		Mode      string     `json:"mode"`
		Rows      []any      `json:"rows"`
		Errors    []rowError `json:"errors,omitempty"`
		Truncated bool       `json:"truncated"`
	}
	resp := previewResponse{
		Header: rd.Header(),
		Mode:   mode,
		Rows:   []any{},
	}
	if withTypes {
		resp.Types = rd.TypeLabels()
	}

	for len(resp.Rows) < limit {
		row, err := rd.Read()
		if err == io.EOF {
			break
		}
		var de *mcsv.DecodeError
		if errors.As(err, &de) {
			resp.Errors = append(resp.Errors, toRowError(de))
			continue
		}
		if err != nil {
			respondError(w, r, err, 0)
			return
		}

		if mode == "dict" {
			m := make(map[string]any, len(row))
			for i, v := range row {
				m[resp.Header[i]] = jsonValue(v)
			}
			resp.Rows = append(resp.Rows, m)
		} else {
			cells := make([]any, len(row))
			for i, v := range row {
				cells[i] = jsonValue(v)
			}
			resp.Rows = append(resp.Rows, cells)
		}
	}
	// One more read tells whether the preview cut the stream short.
	if _, err := rd.Read(); err != io.EOF {
		resp.Truncated = true
	}

	logger.Info("preview served", "rows", len(resp.Rows), "errors", len(resp.Errors))
	writeJSON(w, resp)
}

// handleValidate decodes the whole stream and reports every row-scoped
// failure.
//
//	POST /api/validate
func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	logger := logging.FromContext(r.Context())

	rd, cleanup, err := s.openUpload(w, r)
	if err != nil {
		respondError(w, r, err, 0)
		return
	}
	defer cleanup()

	type validateResponse struct {
		Valid  bool       `json:"valid"`
		Rows   int        `json:"rows"`
		Header []string   `json:"header"`
		Types  []string   `json:"types"`
		Errors []rowError `json:"errors,omitempty"`
	}
	resp := validateResponse{
		Header: rd.Header(),
		Types:  rd.TypeLabels(),
	}

	for {
		_, err := rd.Read()
		if err == io.EOF {
			break
		}
		var de *mcsv.DecodeError
		if errors.As(err, &de) {
			resp.Errors = append(resp.Errors, toRowError(de))
			continue
		}
		if err != nil {
			respondError(w, r, err, 0)
			return
		}
		resp.Rows++
	}
	resp.Valid = len(resp.Errors) == 0

	logger.Info("validation served", "rows", resp.Rows, "errors", len(resp.Errors))
	writeJSON(w, resp)
}

// handleDescription parses an uploaded sidecar alone and returns the
// resolved dialect and column table.
//
//	POST /api/description
func (s *Server) handleDescription(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Upload.MaxFileSize)
	if err := r.ParseMultipartForm(4 << 20); err != nil {
		respondError(w, r, fmt.Errorf("parse multipart form: %w", err), http.StatusBadRequest)
		return
	}
	meta, _, err := r.FormFile("meta")
	if err != nil {
		respondError(w, r, errors.New("missing meta file"), http.StatusBadRequest)
		return
	}
	defer meta.Close()

	desc, err := mcsv.LoadDescription(meta)
	if err != nil {
		respondError(w, r, err, 0)
		return
	}
	writeJSON(w, describeJSON(desc))
}

type columnJSON struct {
	Index    int    `json:"index"`
	Name     string `json:"name,omitempty"`
	Type     string `json:"type"`
	DataType string `json:"datatype"`
}

type dialectJSON struct {
	Delimiter        string `json:"delimiter"`
	QuoteChar        string `json:"quote_char"`
	DoubleQuote      bool   `json:"double_quote"`
	EscapeChar       string `json:"escape_char,omitempty"`
	SkipInitialSpace bool   `json:"skip_initial_space"`
	LineTerminator   string `json:"line_terminator"`
	Encoding         string `json:"encoding"`
	BOM              bool   `json:"bom"`
}

type descriptionJSON struct {
	Dialect   dialectJSON  `json:"dialect"`
	NullValue string       `json:"null_value"`
	Columns   []columnJSON `json:"columns"`
}

func describeJSON(desc *mcsv.Description) descriptionJSON {
	d := desc.Dialect
	out := descriptionJSON{
		Dialect: dialectJSON{
			Delimiter:        string(d.Delimiter),
			QuoteChar:        string(d.QuoteChar),
			DoubleQuote:      d.DoubleQuote,
			SkipInitialSpace: d.SkipInitialSpace,
			LineTerminator:   d.LineTerminator,
			Encoding:         d.Encoding,
			BOM:              d.BOM,
		},
		NullValue: desc.NullValue,
		Columns:   []columnJSON{},
	}
	if d.EscapeChar != 0 {
		out.Dialect.EscapeChar = string(d.EscapeChar)
	}
	for _, c := range desc.Columns {
		out.Columns = append(out.Columns, columnJSON{
			Index:    c.Index,
			Name:     c.Name,
			Type:     c.Label(),
			DataType: c.Type().DataType().String(),
		})
	}
	return out
}

// handleIngest decodes the upload and bulk loads it into the named table.
//
//	POST /api/ingest/{table}
func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	logger := logging.FromContext(r.Context())

	if s.ingestor == nil {
		respondError(w, r, errors.New("no database configured"), http.StatusServiceUnavailable)
		return
	}
	table := chi.URLParam(r, "table")

	rd, cleanup, err := s.openUpload(w, r)
	if err != nil {
		respondError(w, r, err, 0)
		return
	}
	defer cleanup()

	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.Ingest.Timeout)
	defer cancel()

	res, err := s.ingestor.Ingest(ctx, table, rd)
	if err != nil {
		respondError(w, r, err, 0)
		return
	}

	logger.Info("ingest served", "table", table, "inserted", res.Inserted, "failed", len(res.Failed))
	writeJSON(w, res)
}

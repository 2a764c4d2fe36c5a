package web

// errors.go maps engine errors onto HTTP responses. Structural problems in
// the uploaded pair (bad sidecar, bad dialect, undecodable bytes) are client
// errors; anything else is a 500. The technical error is logged server-side
// with the request ID; the client gets a stable machine-readable code.

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/metacsv/go-mcsv"
)

// ErrorResponse is the JSON error envelope.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// classify maps an engine error to an HTTP status and a stable code.
func classify(err error) (int, string) {
	var le *mcsv.LoadError
	var de *mcsv.DialectError
	var se *mcsv.StreamError
	switch {
	case errors.Is(err, errBadUpload):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, mcsv.ErrNoMetaFile):
		return http.StatusBadRequest, "no_meta_file"
	case errors.As(err, &le):
		return http.StatusUnprocessableEntity, "load_error"
	case errors.As(err, &de):
		return http.StatusUnprocessableEntity, "dialect_error"
	case errors.As(err, &se):
		return http.StatusUnprocessableEntity, "stream_error"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

// respondError logs err and writes the JSON error envelope. A zero status
// lets the error's classification pick one.
func respondError(w http.ResponseWriter, r *http.Request, err error, status int) {
	var code string
	switch {
	case status == 0:
		status, code = classify(err)
	case status == http.StatusServiceUnavailable:
		code = "unavailable"
	case status >= http.StatusInternalServerError:
		code = "internal"
	default:
		code = "bad_request"
	}

	slog.Error("request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"error", err.Error(),
		"code", code,
		"request_id", middleware.GetReqID(r.Context()),
	)

	msg := err.Error()
	if code == "internal" {
		// Internal details stay in the log.
		msg = "internal server error"
	}
	writeJSONStatus(w, status, ErrorResponse{Error: msg, Code: code})
}

// writeJSONStatus writes v as JSON with the given status code.
func writeJSONStatus(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode error", "error", err)
	}
}

// writeJSON writes v as JSON with status 200.
func writeJSON(w http.ResponseWriter, v any) {
	writeJSONStatus(w, http.StatusOK, v)
}

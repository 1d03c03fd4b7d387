// Package httputil writes the JSON envelopes shared by every handler.
package httputil

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"strconv"

	"github.com/paulexconde/npsdash/pkg/fault"
	"go.uber.org/zap"
)

// ErrorResponse is the standard error envelope for all API errors.
type ErrorResponse struct {
	Error string `json:"error"`
}

// JSON writes data with the given status. Encoding failures are logged,
// the status line is already gone by then.
func JSON(w http.ResponseWriter, logger *zap.Logger, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Warn("JSON encode error", zap.Error(err))
	}
}

func OK(w http.ResponseWriter, logger *zap.Logger, data any) {
	JSON(w, logger, http.StatusOK, data)
}

func Error(w http.ResponseWriter, logger *zap.Logger, status int, message string) {
	JSON(w, logger, status, ErrorResponse{Error: message})
}

func BadRequest(w http.ResponseWriter, logger *zap.Logger, message string) {
	Error(w, logger, http.StatusBadRequest, message)
}

func NotFound(w http.ResponseWriter, logger *zap.Logger, message string) {
	Error(w, logger, http.StatusNotFound, message)
}

// InternalError logs the real error and answers with a generic message.
func InternalError(w http.ResponseWriter, logger *zap.Logger, err error) {
	logger.Error("Internal error", zap.Error(err))
	Error(w, logger, http.StatusInternalServerError, "internal server error")
}

// Fault maps an error from the service layer to a response: client faults
// are 400 with their message, fault.ErrNotFound is 404, anything else 500.
func Fault(w http.ResponseWriter, logger *zap.Logger, err error) {
	switch {
	case fault.IsClientError(err):
		BadRequest(w, logger, fault.ClientMessage(err))
	case errors.Is(err, fault.ErrNotFound):
		NotFound(w, logger, "not found")
	default:
		InternalError(w, logger, err)
	}
}

// MaxBodyBytes caps request bodies read by Decode.
const MaxBodyBytes = 1 << 20

// Decode reads JSON from the request body into dst.
// Returns false and writes a 400 response if parsing fails or the body is
// larger than MaxBodyBytes.
func Decode(w http.ResponseWriter, r *http.Request, logger *zap.Logger, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		BadRequest(w, logger, "invalid JSON: "+err.Error())
		return false
	}
	return true
}

// Attachment sends body as a download named filename.
func Attachment(w http.ResponseWriter, contentType, filename string, body []byte) error {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filename}))
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(http.StatusOK)
	_, err := w.Write(body)
	return err
}

package serializer

import (
	"time"

	"go.uber.org/zap"
)

var log = zap.NewNop()

// SetLogger wires the package logger; handlers route error details here so
// callers only ever see sanitized messages.
func SetLogger(l *zap.Logger) {
	if l != nil {
		log = l
	}
}

// Response is the success envelope shared by the generate and live endpoints.
// Warning is present only when fallback synthesis replaced the model output.
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Warning string      `json:"warning,omitempty"`
}

// ErrorResponse is the failure body for every endpoint except market-fit,
// which carries Details instead of Timestamp.
type ErrorResponse struct {
	Error     string `json:"error"`
	Timestamp string `json:"timestamp,omitempty"`
	Details   string `json:"details,omitempty"`
}

func OK(data interface{}) Response {
	return Response{Success: true, Data: data}
}

func OKWithWarning(data interface{}, warning string) Response {
	return Response{Success: true, Data: data, Warning: warning}
}

// Err builds a timestamped error body. The underlying error is logged, never
// exposed: no stack traces or driver messages leave the process.
func Err(msg string, err error) ErrorResponse {
	if err != nil {
		log.Error(msg, zap.Error(err))
	}
	return ErrorResponse{
		Error:     msg,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

// ErrWithDetails matches the market-fit endpoint's historical {error, details}
// body, which predates the timestamped envelope.
func ErrWithDetails(msg string, err error) ErrorResponse {
	out := ErrorResponse{Error: msg}
	if err != nil {
		log.Error(msg, zap.Error(err))
		out.Details = err.Error()
	}
	return out
}

package chi

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/kailas-cloud/mapdex/internal/domain"
)

// ErrorCode is the machine-readable code of an ErrorResponse.
type ErrorCode string

// Error codes.
const (
	CodeBadRequest             ErrorCode = "bad_request"
	CodeUnauthorized           ErrorCode = "unauthorized"
	CodeValidationFailed       ErrorCode = "validation_failed"
	CodeMalformedRecord        ErrorCode = "malformed_record"
	CodeInvalidFormat          ErrorCode = "invalid_format"
	CodeTooManyRows            ErrorCode = "too_many_rows"
	CodeNotFound               ErrorCode = "not_found"
	CodeMappingNotFound        ErrorCode = "mapping_not_found"
	CodeDatasetNotFound        ErrorCode = "dataset_not_found"
	CodeFieldNotFound          ErrorCode = "field_not_found"
	CodeAlreadyExists          ErrorCode = "already_exists"
	CodeAssistantUnavailable   ErrorCode = "assistant_unavailable"
	CodeAssistantProviderError ErrorCode = "assistant_provider_error"
	CodeInternalError          ErrorCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// defaultErrorHandlers is ordered: specific sentinels come before the
// generic ones they wrap (ErrMappingNotFound before ErrNotFound).
func defaultErrorHandlers() []errorHandler {
	return []errorHandler{
		sentinelHandler(domain.ErrMappingNotFound, http.StatusNotFound, CodeMappingNotFound),
		sentinelHandler(domain.ErrDatasetNotFound, http.StatusNotFound, CodeDatasetNotFound),
		sentinelHandler(domain.ErrFieldNotFound, http.StatusNotFound, CodeFieldNotFound),
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, CodeNotFound),
		sentinelHandler(domain.ErrAlreadyExists, http.StatusConflict, CodeAlreadyExists),
		sentinelHandler(domain.ErrMalformedRecord, http.StatusBadRequest, CodeMalformedRecord),
		sentinelHandler(domain.ErrInvalidSchema, http.StatusBadRequest, CodeValidationFailed),
		sentinelHandler(domain.ErrInvalidFormat, http.StatusBadRequest, CodeInvalidFormat),
		sentinelHandler(domain.ErrTooManyRows, http.StatusRequestEntityTooLarge, CodeTooManyRows),
		sentinelHandler(domain.ErrAssistantUnavailable, http.StatusServiceUnavailable, CodeAssistantUnavailable),
		sentinelHandler(domain.ErrAssistantProviderError, http.StatusBadGateway, CodeAssistantProviderError),
	}
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

// clientErrors carry details the caller supplied and may be echoed back.
var clientErrors = []error{
	domain.ErrMalformedRecord,
	domain.ErrInvalidSchema,
	domain.ErrInvalidFormat,
	domain.ErrTooManyRows,
}

// sentinels are reported by their own text only.
var sentinels = []error{
	domain.ErrMappingNotFound,
	domain.ErrDatasetNotFound,
	domain.ErrFieldNotFound,
	domain.ErrNotFound,
	domain.ErrAlreadyExists,
	domain.ErrAssistantUnavailable,
	domain.ErrAssistantProviderError,
}

// safeDomainMessage returns a client-facing message without exposing internals.
func safeDomainMessage(err error) string {
	var mre *domain.MalformedRecordError
	if errors.As(err, &mre) {
		return mre.Error()
	}
	for _, s := range clientErrors {
		if errors.Is(err, s) {
			return err.Error()
		}
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := s.requestLogger(r)
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			log.Debug("domain error", zap.Error(err))
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, CodeInternalError, "internal error")
}

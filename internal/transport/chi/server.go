package chi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/mapdex/internal/domain"
	"github.com/kailas-cloud/mapdex/internal/logger"
	"github.com/kailas-cloud/mapdex/internal/version"
	assistantuc "github.com/kailas-cloud/mapdex/internal/usecase/assistant"
	datasetuc "github.com/kailas-cloud/mapdex/internal/usecase/dataset"
	healthuc "github.com/kailas-cloud/mapdex/internal/usecase/health"
	mappinguc "github.com/kailas-cloud/mapdex/internal/usecase/mapping"
	validationuc "github.com/kailas-cloud/mapdex/internal/usecase/validation"
)

// DefaultMaxBodyBytes bounds request bodies when the server is built without a limit.
const DefaultMaxBodyBytes int64 = 32 << 20

// Services groups the usecases served over HTTP.
type Services struct {
	Mappings   *mappinguc.Service
	Datasets   *datasetuc.Service
	Validation *validationuc.Service
	Assistant  *assistantuc.Service
	Health     *healthuc.Service
}

// Server implements ServerInterface on top of the usecase services.
type Server struct {
	mappings      *mappinguc.Service
	datasets      *datasetuc.Service
	validation    *validationuc.Service
	assistant     *assistantuc.Service
	health        *healthuc.Service
	logger        *zap.Logger
	maxBodyBytes  int64
	errorHandlers []errorHandler
}

var _ ServerInterface = (*Server)(nil)

// NewServer creates an HTTP API server. maxBodyBytes <= 0 selects DefaultMaxBodyBytes.
func NewServer(svc Services, maxBodyBytes int64, log *zap.Logger) *Server {
	if maxBodyBytes <= 0 {
		maxBodyBytes = DefaultMaxBodyBytes
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{
		mappings:      svc.Mappings,
		datasets:      svc.Datasets,
		validation:    svc.Validation,
		assistant:     svc.Assistant,
		health:        svc.Health,
		logger:        log,
		maxBodyBytes:  maxBodyBytes,
		errorHandlers: defaultErrorHandlers(),
	}
}

// requestLogger prefers the per-request logger installed by WideEventMiddleware.
func (s *Server) requestLogger(r *http.Request) *zap.Logger {
	return logger.FromContextOr(r.Context(), s.logger)
}

// decode reads a JSON body of at most maxBodyBytes into v. It writes the
// error response itself and reports whether decoding succeeded.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any, useNumber bool) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, s.maxBodyBytes))
	if useNumber {
		dec.UseNumber()
	}
	if err := dec.Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, CodeBadRequest,
				fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit))
			return false
		}
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return false
	}
	return true
}

// HealthCheck handles GET /health. Only an unhealthy report answers 503.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	status := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, HealthResponse{
		Status:  string(report.Status),
		Checks:  checks,
		Version: version.String(),
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// CreateMapping handles POST /mappings.
func (s *Server) CreateMapping(w http.ResponseWriter, r *http.Request) {
	var req MappingRequest
	if !s.decode(w, r, &req, false) {
		return
	}

	draft, err := draftFromRequest(req)
	if err != nil {
		s.handleDomainError(w, r, fmt.Errorf("%w: %w", domain.ErrInvalidSchema, err))
		return
	}

	m, err := s.mappings.Create(r.Context(), draft)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, mappingToResponse(m))
}

// ImportMapping handles POST /mappings/import.
func (s *Server) ImportMapping(w http.ResponseWriter, r *http.Request) {
	var req ImportRequest
	if !s.decode(w, r, &req, true) {
		return
	}
	if req.Mapping == nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "mapping record is required")
		return
	}

	meta, fields := importRecords(req)
	m, err := s.mappings.Import(r.Context(), meta, fields)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, mappingToResponse(m))
}

// ListMappings handles GET /mappings.
func (s *Server) ListMappings(w http.ResponseWriter, r *http.Request) {
	ms, err := s.mappings.List(r.Context())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	items := make([]MappingResponse, len(ms))
	for i, m := range ms {
		items[i] = mappingToResponse(m)
	}
	writeJSON(w, http.StatusOK, MappingListResponse{Items: items, Total: len(items)})
}

// GetMapping handles GET /mappings/{mapping}.
func (s *Server) GetMapping(w http.ResponseWriter, r *http.Request, mapping string) {
	m, err := s.mappings.Get(r.Context(), mapping)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mappingToResponse(m))
}

// UpdateMapping handles PUT /mappings/{mapping}.
func (s *Server) UpdateMapping(w http.ResponseWriter, r *http.Request, mapping string) {
	var req MappingRequest
	if !s.decode(w, r, &req, false) {
		return
	}

	draft, err := draftFromRequest(req)
	if err != nil {
		s.handleDomainError(w, r, fmt.Errorf("%w: %w", domain.ErrInvalidSchema, err))
		return
	}

	m, err := s.mappings.Update(r.Context(), mapping, draft)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mappingToResponse(m))
}

// DeleteMapping handles DELETE /mappings/{mapping}.
func (s *Server) DeleteMapping(w http.ResponseWriter, r *http.Request, mapping string) {
	if err := s.mappings.Delete(r.Context(), mapping); err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ValidateRows handles POST /mappings/{mapping}/validate. A body with "row"
// answers a single-row result, a body with "rows" answers a report.
func (s *Server) ValidateRows(w http.ResponseWriter, r *http.Request, mapping string) {
	var req ValidateRequest
	if !s.decode(w, r, &req, false) {
		return
	}

	switch {
	case req.Rows != nil:
		rep, err := s.validation.ValidateRows(r.Context(), mapping, req.Rows)
		if err != nil {
			s.handleDomainError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, reportToResponse(rep))
	case req.Row != nil:
		errs, err := s.validation.ValidateRow(r.Context(), mapping, req.Row)
		if err != nil {
			s.handleDomainError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, RowValidationResponse{Valid: len(errs) == 0, Errors: fieldErrorsToDTO(errs)})
	default:
		writeError(w, http.StatusBadRequest, CodeBadRequest, `either "row" or "rows" is required`)
	}
}

// DescribeField handles POST /mappings/{mapping}/fields/{field}/describe.
func (s *Server) DescribeField(
	w http.ResponseWriter, r *http.Request, mapping, field string, params DescribeFieldParams,
) {
	describe := s.assistant.DescribeField
	if params.Apply != nil && *params.Apply {
		describe = s.assistant.DescribeAndApply
	}

	sug, err := describe(r.Context(), mapping, field)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, SuggestionResponse{
		MappingID:   sug.MappingID,
		FieldID:     sug.FieldID,
		Description: sug.Description,
		Applied:     sug.Applied,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

package chi

import (
	"fmt"
	"mime"
	"net/http"
	"strconv"

	"github.com/kailas-cloud/mapdex/internal/domain"
	domds "github.com/kailas-cloud/mapdex/internal/domain/dataset"
	"github.com/kailas-cloud/mapdex/internal/domain/export"
)

// CreateDataset handles POST /mappings/{mapping}/datasets.
func (s *Server) CreateDataset(w http.ResponseWriter, r *http.Request, mapping string) {
	var req DatasetRequest
	if !s.decode(w, r, &req, false) {
		return
	}

	d, err := s.datasets.Create(r.Context(), mapping, req.Name, req.Rows)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, datasetToResponse(d, true))
}

// ListDatasets handles GET /mappings/{mapping}/datasets. Rows are omitted.
func (s *Server) ListDatasets(w http.ResponseWriter, r *http.Request, mapping string) {
	ds, err := s.datasets.List(r.Context(), mapping)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	items := make([]DatasetResponse, len(ds))
	for i, d := range ds {
		items[i] = datasetToResponse(d, false)
	}
	writeJSON(w, http.StatusOK, DatasetListResponse{Items: items, Total: len(items)})
}

// GetDataset handles GET /datasets/{dataset}.
func (s *Server) GetDataset(w http.ResponseWriter, r *http.Request, dataset string) {
	d, err := s.datasets.Get(r.Context(), dataset)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, datasetToResponse(d, true))
}

// UpdateDataset handles PATCH /datasets/{dataset}.
func (s *Server) UpdateDataset(w http.ResponseWriter, r *http.Request, dataset string) {
	var req DatasetPatchRequest
	if !s.decode(w, r, &req, false) {
		return
	}

	u, err := domds.NewUpdate(req.Name, req.Rows)
	if err != nil {
		s.handleDomainError(w, r, fmt.Errorf("%w: %w", domain.ErrInvalidSchema, err))
		return
	}

	d, err := s.datasets.Update(r.Context(), dataset, u)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, datasetToResponse(d, true))
}

// DeleteDataset handles DELETE /datasets/{dataset}.
func (s *Server) DeleteDataset(w http.ResponseWriter, r *http.Request, dataset string) {
	if err := s.datasets.Delete(r.Context(), dataset); err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ValidateDataset handles GET /datasets/{dataset}/validation.
func (s *Server) ValidateDataset(w http.ResponseWriter, r *http.Request, dataset string) {
	rep, err := s.datasets.Validate(r.Context(), dataset)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, reportToResponse(rep))
}

// ExportDataset handles GET /datasets/{dataset}/export.
func (s *Server) ExportDataset(w http.ResponseWriter, r *http.Request, dataset string, params ExportDatasetParams) {
	f := export.CSVFormat
	if params.Format != nil && *params.Format != "" {
		f = export.Format(*params.Format)
	}

	a, err := s.datasets.Export(r.Context(), dataset, f)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", a.ContentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": a.Filename}))
	w.Header().Set("Content-Length", strconv.Itoa(len(a.Data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(a.Data)
}

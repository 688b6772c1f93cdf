package chi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/kailas-cloud/mapdex/internal/db/sqlite"
	"github.com/kailas-cloud/mapdex/internal/domain"
	datasetrepo "github.com/kailas-cloud/mapdex/internal/repository/dataset"
	mappingrepo "github.com/kailas-cloud/mapdex/internal/repository/mapping"
	assistantuc "github.com/kailas-cloud/mapdex/internal/usecase/assistant"
	datasetuc "github.com/kailas-cloud/mapdex/internal/usecase/dataset"
	healthuc "github.com/kailas-cloud/mapdex/internal/usecase/health"
	mappinguc "github.com/kailas-cloud/mapdex/internal/usecase/mapping"
	validationuc "github.com/kailas-cloud/mapdex/internal/usecase/validation"
)

// --- Mocks ---

type fakeCompleter struct {
	text    string
	err     error
	prompts []string
}

func (f *fakeCompleter) Complete(_ context.Context, _, prompt string) (domain.Completion, error) {
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return domain.Completion{}, f.err
	}
	return domain.Completion{Text: f.text}, nil
}

// --- Helpers ---

const testMaxRows = 3

func newTestAPI(t *testing.T, completer domain.Completer) http.Handler {
	t.Helper()
	store, err := sqlite.Open(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(store.Close)

	mapRepo := mappingrepo.New(store, "test:")
	mappings := mappinguc.New(mapRepo)
	validation := validationuc.New(mappings)
	srv := NewServer(Services{
		Mappings:   mappings,
		Datasets:   datasetuc.New(datasetrepo.New(store, "test:"), mappings, validation, testMaxRows),
		Validation: validation,
		Assistant:  assistantuc.New(mapRepo, completer),
		Health:     healthuc.New(store, nil),
	}, 1<<16, zap.NewNop())

	r := chi.NewRouter()
	r.Use(JSONRecoverer(zap.NewNop()))
	r.Use(chiMiddleware.RequestID)
	r.Use(WideEventMiddleware(zap.NewNop()))
	return HandlerWithOptions(srv, ChiServerOptions{BaseRouter: r})
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader = http.NoBody
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decodeBody[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rr.Body).Decode(&v); err != nil {
		t.Fatalf("decode %T: %v (body %q)", v, err, rr.Body.String())
	}
	return v
}

func expectError(t *testing.T, rr *httptest.ResponseRecorder, status int, code ErrorCode) ErrorResponse {
	t.Helper()
	if rr.Code != status {
		t.Fatalf("status = %d, want %d (body %s)", rr.Code, status, rr.Body.String())
	}
	resp := decodeBody[ErrorResponse](t, rr)
	if resp.Code != code {
		t.Errorf("code = %s, want %s (message %q)", resp.Code, code, resp.Message)
	}
	return resp
}

const productMapping = `{
	"name": "Products",
	"entity_type": "product",
	"fields": [
		{"id": "f-sku", "name": "sku", "label": "SKU", "type": "text", "required": true},
		{"id": "f-email", "name": "email", "label": "Contact", "type": "email"}
	]
}`

func createMapping(t *testing.T, h http.Handler) MappingResponse {
	t.Helper()
	rr := do(t, h, http.MethodPost, "/mappings", productMapping)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create mapping: %d %s", rr.Code, rr.Body.String())
	}
	return decodeBody[MappingResponse](t, rr)
}

func createDataset(t *testing.T, h http.Handler, mappingID, body string) DatasetResponse {
	t.Helper()
	rr := do(t, h, http.MethodPost, "/mappings/"+mappingID+"/datasets", body)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create dataset: %d %s", rr.Code, rr.Body.String())
	}
	return decodeBody[DatasetResponse](t, rr)
}

// --- Tests ---

func TestHealthCheck(t *testing.T) {
	h := newTestAPI(t, nil)
	rr := do(t, h, http.MethodGet, "/health", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	resp := decodeBody[HealthResponse](t, rr)
	if resp.Status != "ok" || resp.Checks["database"] != "ok" || resp.Version == "" {
		t.Errorf("got %+v", resp)
	}
	if rr.Header().Get("X-Request-ID") == "" {
		t.Error("missing X-Request-ID header")
	}
}

func TestMappingLifecycle(t *testing.T) {
	h := newTestAPI(t, nil)

	created := createMapping(t, h)
	if created.ID == "" || created.EntityType != "product" || len(created.Fields) != 2 {
		t.Fatalf("created = %+v", created)
	}
	if created.Fields[0].Name != "sku" || created.Fields[1].Order != 1 {
		t.Errorf("fields = %+v", created.Fields)
	}

	rr := do(t, h, http.MethodGet, "/mappings/"+created.ID, "")
	got := decodeBody[MappingResponse](t, rr)
	if got.Name != "Products" || got.Fields[1].Label != "Contact" {
		t.Errorf("get = %+v", got)
	}

	rr = do(t, h, http.MethodGet, "/mappings", "")
	list := decodeBody[MappingListResponse](t, rr)
	if list.Total != 1 || list.Items[0].ID != created.ID {
		t.Errorf("list = %+v", list)
	}

	rr = do(t, h, http.MethodPut, "/mappings/"+created.ID,
		`{"name": "Renamed", "fields": [{"id": "f-sku", "name": "sku"}]}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("update: %d %s", rr.Code, rr.Body.String())
	}
	updated := decodeBody[MappingResponse](t, rr)
	if updated.Name != "Renamed" || len(updated.Fields) != 1 || !updated.UpdatedAt.After(created.UpdatedAt) {
		t.Errorf("updated = %+v", updated)
	}
	if !updated.CreatedAt.Equal(created.CreatedAt) {
		t.Errorf("createdAt changed: %v -> %v", created.CreatedAt, updated.CreatedAt)
	}

	rr = do(t, h, http.MethodDelete, "/mappings/"+created.ID, "")
	if rr.Code != http.StatusNoContent {
		t.Fatalf("delete: %d", rr.Code)
	}
	expectError(t, do(t, h, http.MethodGet, "/mappings/"+created.ID, ""), http.StatusNotFound, CodeMappingNotFound)
}

func TestCreateMapping_Invalid(t *testing.T) {
	h := newTestAPI(t, nil)

	tests := []struct {
		name   string
		body   string
		status int
		code   ErrorCode
	}{
		{"malformed json", `{"name":`, http.StatusBadRequest, CodeBadRequest},
		{"missing name", `{"fields": []}`, http.StatusBadRequest, CodeValidationFailed},
		{"bad rule value", `{"name": "x", "fields": [{"name": "a", "validation_rules": [{"type": "min_length", "value": "-1"}]}]}`,
			http.StatusBadRequest, CodeValidationFailed},
		{"duplicate field names", `{"name": "x", "fields": [{"name": "a"}, {"name": "a"}]}`,
			http.StatusBadRequest, CodeValidationFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expectError(t, do(t, h, http.MethodPost, "/mappings", tt.body), tt.status, tt.code)
		})
	}
}

func TestCreateMapping_BodyTooLarge(t *testing.T) {
	h := newTestAPI(t, nil)
	body := `{"name": "` + strings.Repeat("x", 1<<17) + `"}`
	expectError(t, do(t, h, http.MethodPost, "/mappings", body), http.StatusRequestEntityTooLarge, CodeBadRequest)
}

func TestImportMapping(t *testing.T) {
	h := newTestAPI(t, nil)

	body := `{
		"mapping": {"id": "m-1", "name": "Imported", "entityType": "customer"},
		"fields": [
			{"id": "b", "name": "second", "sequence": "2"},
			{"id": "a", "name": "first", "order": 1, "is_required": "true"}
		]
	}`
	rr := do(t, h, http.MethodPost, "/mappings/import", body)
	if rr.Code != http.StatusCreated {
		t.Fatalf("import: %d %s", rr.Code, rr.Body.String())
	}
	m := decodeBody[MappingResponse](t, rr)
	if m.ID != "m-1" || m.EntityType != "customer" {
		t.Errorf("mapping = %+v", m)
	}
	if len(m.Fields) != 2 || m.Fields[0].Name != "first" || !m.Fields[0].Required {
		t.Errorf("fields = %+v", m.Fields)
	}

	expectError(t, do(t, h, http.MethodPost, "/mappings/import", body), http.StatusConflict, CodeAlreadyExists)

	resp := expectError(t, do(t, h, http.MethodPost, "/mappings/import",
		`{"mapping": {"id": "m-2", "name": "x"}, "fields": [{"id": "a"}]}`),
		http.StatusBadRequest, CodeMalformedRecord)
	if !strings.Contains(resp.Message, `field record #0 is missing "name"`) {
		t.Errorf("message = %q", resp.Message)
	}

	expectError(t, do(t, h, http.MethodPost, "/mappings/import", `{"fields": []}`),
		http.StatusBadRequest, CodeBadRequest)
}

func TestValidateRows(t *testing.T) {
	h := newTestAPI(t, nil)
	m := createMapping(t, h)
	path := "/mappings/" + m.ID + "/validate"

	rr := do(t, h, http.MethodPost, path, `{"row": {"sku": "A-1", "email": "nope"}}`)
	single := decodeBody[RowValidationResponse](t, rr)
	if single.Valid || len(single.Errors) != 1 {
		t.Fatalf("single = %+v", single)
	}
	if e := single.Errors[0]; e.FieldID != "f-email" || e.Errors[0] != "Contact must be a valid email address" {
		t.Errorf("error = %+v", e)
	}

	rr = do(t, h, http.MethodPost, path, `{"rows": [{"sku": "A-1"}, {"sku": ""}, {"sku": 0}]}`)
	rep := decodeBody[ReportResponse](t, rr)
	if rep.Total != 3 || rep.Valid != 2 || rep.Invalid != 1 {
		t.Errorf("report = %+v", rep)
	}
	if len(rep.InvalidRows) != 1 || rep.InvalidRows[0].Index != 1 ||
		rep.InvalidRows[0].Errors[0].Errors[0] != "SKU is required" {
		t.Errorf("invalid rows = %+v", rep.InvalidRows)
	}

	expectError(t, do(t, h, http.MethodPost, path, `{}`), http.StatusBadRequest, CodeBadRequest)
	expectError(t, do(t, h, http.MethodPost, path, `{"row": {"sku": ["nested"]}}`), http.StatusBadRequest, CodeBadRequest)
	expectError(t, do(t, h, http.MethodPost, "/mappings/missing/validate", `{"row": {}}`),
		http.StatusNotFound, CodeMappingNotFound)
}

func TestDatasetLifecycle(t *testing.T) {
	h := newTestAPI(t, nil)
	m := createMapping(t, h)

	d := createDataset(t, h, m.ID, `{"name": "Spring import", "rows": [
		{"sku": "A-1", "email": "a@b.com"},
		{"sku": "A-2", "email": null}
	]}`)
	if d.MappingID != m.ID || d.RowCount != 2 || d.Rows == nil || len(*d.Rows) != 2 {
		t.Fatalf("dataset = %+v", d)
	}

	rr := do(t, h, http.MethodGet, "/mappings/"+m.ID+"/datasets", "")
	list := decodeBody[DatasetListResponse](t, rr)
	if list.Total != 1 || list.Items[0].Rows != nil {
		t.Errorf("list = %+v", list)
	}

	rr = do(t, h, http.MethodPatch, "/datasets/"+d.ID, `{"rows": [{"sku": ""}]}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("patch: %d %s", rr.Code, rr.Body.String())
	}
	patched := decodeBody[DatasetResponse](t, rr)
	if patched.Name != "Spring import" || patched.RowCount != 1 || !patched.UpdatedAt.After(d.UpdatedAt) {
		t.Errorf("patched = %+v", patched)
	}

	rr = do(t, h, http.MethodGet, "/datasets/"+d.ID+"/validation", "")
	rep := decodeBody[ReportResponse](t, rr)
	if rep.Total != 1 || rep.Invalid != 1 {
		t.Errorf("report = %+v", rep)
	}

	expectError(t, do(t, h, http.MethodPatch, "/datasets/"+d.ID, `{}`), http.StatusBadRequest, CodeValidationFailed)

	if rr := do(t, h, http.MethodDelete, "/datasets/"+d.ID, ""); rr.Code != http.StatusNoContent {
		t.Fatalf("delete: %d", rr.Code)
	}
	expectError(t, do(t, h, http.MethodGet, "/datasets/"+d.ID, ""), http.StatusNotFound, CodeDatasetNotFound)
	expectError(t, do(t, h, http.MethodPatch, "/datasets/"+d.ID, `{"name": "x"}`),
		http.StatusNotFound, CodeDatasetNotFound)
}

func TestCreateDataset_Errors(t *testing.T) {
	h := newTestAPI(t, nil)
	m := createMapping(t, h)

	expectError(t, do(t, h, http.MethodPost, "/mappings/nope/datasets", `{"name": "x", "rows": []}`),
		http.StatusNotFound, CodeMappingNotFound)
	expectError(t, do(t, h, http.MethodPost, "/mappings/"+m.ID+"/datasets", `{"rows": []}`),
		http.StatusBadRequest, CodeValidationFailed)
	expectError(t, do(t, h, http.MethodPost, "/mappings/"+m.ID+"/datasets",
		`{"name": "big", "rows": [{}, {}, {}, {}]}`),
		http.StatusRequestEntityTooLarge, CodeTooManyRows)
}

func TestExportDataset(t *testing.T) {
	h := newTestAPI(t, nil)
	m := createMapping(t, h)
	d := createDataset(t, h, m.ID, `{"name": "Spring import", "rows": [
		{"sku": "A-1", "email": "a@b.com"},
		{"sku": "A-2"}
	]}`)

	rr := do(t, h, http.MethodGet, "/datasets/"+d.ID+"/export", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("export: %d %s", rr.Code, rr.Body.String())
	}
	if got := rr.Body.String(); got != "SKU,Contact\nA-1,a@b.com\nA-2,\n" {
		t.Errorf("csv = %q", got)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "text/csv; charset=utf-8" {
		t.Errorf("content type = %q", ct)
	}
	if cd := rr.Header().Get("Content-Disposition"); cd != "attachment; filename=Spring_import.csv" {
		t.Errorf("content disposition = %q", cd)
	}

	rr = do(t, h, http.MethodGet, "/datasets/"+d.ID+"/export?format=json", "")
	var rows []map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &rows); err != nil {
		t.Fatalf("json export: %v (%q)", err, rr.Body.String())
	}
	if len(rows) != 2 || rows[1]["email"] != nil || rows[0]["sku"] != "A-1" {
		t.Errorf("rows = %v", rows)
	}
	if !bytes.HasSuffix(rr.Body.Bytes(), []byte("]\n")) {
		t.Errorf("json export not newline terminated: %q", rr.Body.String())
	}

	expectError(t, do(t, h, http.MethodGet, "/datasets/"+d.ID+"/export?format=xml", ""),
		http.StatusBadRequest, CodeInvalidFormat)
	expectError(t, do(t, h, http.MethodGet, "/datasets/missing/export", ""),
		http.StatusNotFound, CodeDatasetNotFound)
}

func TestExportDataset_OrphanedByMappingDelete(t *testing.T) {
	h := newTestAPI(t, nil)
	m := createMapping(t, h)
	d := createDataset(t, h, m.ID, `{"name": "n", "rows": []}`)

	if rr := do(t, h, http.MethodDelete, "/mappings/"+m.ID, ""); rr.Code != http.StatusNoContent {
		t.Fatalf("delete mapping: %d", rr.Code)
	}
	if rr := do(t, h, http.MethodGet, "/datasets/"+d.ID, ""); rr.Code != http.StatusOK {
		t.Errorf("dataset should survive mapping delete, got %d", rr.Code)
	}
	expectError(t, do(t, h, http.MethodGet, "/datasets/"+d.ID+"/export", ""),
		http.StatusNotFound, CodeMappingNotFound)
}

func TestDescribeField(t *testing.T) {
	completer := &fakeCompleter{text: ` "Primary contact address for the product owner." `}
	h := newTestAPI(t, completer)
	m := createMapping(t, h)
	path := "/mappings/" + m.ID + "/fields/f-email/describe"

	rr := do(t, h, http.MethodPost, path, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("describe: %d %s", rr.Code, rr.Body.String())
	}
	sug := decodeBody[SuggestionResponse](t, rr)
	if sug.Description != "Primary contact address for the product owner." || sug.Applied {
		t.Errorf("suggestion = %+v", sug)
	}
	if len(completer.prompts) != 1 || !strings.Contains(completer.prompts[0], "Label: Contact") {
		t.Errorf("prompts = %q", completer.prompts)
	}

	rr = do(t, h, http.MethodPost, path+"?apply=true", "")
	if sug := decodeBody[SuggestionResponse](t, rr); !sug.Applied {
		t.Errorf("expected applied suggestion, got %+v", sug)
	}
	got := decodeBody[MappingResponse](t, do(t, h, http.MethodGet, "/mappings/"+m.ID, ""))
	if got.Fields[1].Description != "Primary contact address for the product owner." {
		t.Errorf("description not stored: %+v", got.Fields[1])
	}

	expectError(t, do(t, h, http.MethodPost, "/mappings/"+m.ID+"/fields/none/describe", ""),
		http.StatusNotFound, CodeFieldNotFound)
	expectError(t, do(t, h, http.MethodPost, path+"?apply=maybe", ""), http.StatusBadRequest, CodeBadRequest)

	completer.err = errors.Join(domain.ErrAssistantProviderError, errors.New("upstream 500"))
	resp := expectError(t, do(t, h, http.MethodPost, path, ""), http.StatusBadGateway, CodeAssistantProviderError)
	if strings.Contains(resp.Message, "upstream") {
		t.Errorf("provider detail leaked: %q", resp.Message)
	}
}

func TestDescribeField_Unavailable(t *testing.T) {
	h := newTestAPI(t, nil)
	m := createMapping(t, h)
	expectError(t, do(t, h, http.MethodPost, "/mappings/"+m.ID+"/fields/f-sku/describe", ""),
		http.StatusServiceUnavailable, CodeAssistantUnavailable)
}

func TestJSONRecoverer(t *testing.T) {
	h := JSONRecoverer(zap.NewNop())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	expectError(t, do(t, h, http.MethodGet, "/", ""), http.StatusInternalServerError, CodeInternalError)
}

func TestHandleDomainError_HidesInternalErrors(t *testing.T) {
	s := NewServer(Services{}, 0, nil)
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
	s.handleDomainError(rr, req, errors.New("dial tcp 10.0.0.1:6379: connection refused"))

	resp := expectError(t, rr, http.StatusInternalServerError, CodeInternalError)
	if resp.Message != "internal error" {
		t.Errorf("message = %q", resp.Message)
	}
}

package mapdex

import (
	"context"

	domds "github.com/kailas-cloud/mapdex/internal/domain/dataset"
	"github.com/kailas-cloud/mapdex/internal/domain/export"
	dommap "github.com/kailas-cloud/mapdex/internal/domain/mapping"
	domval "github.com/kailas-cloud/mapdex/internal/domain/validation"
	"github.com/kailas-cloud/mapdex/internal/domain/value"
	assistantuc "github.com/kailas-cloud/mapdex/internal/usecase/assistant"
	mappinguc "github.com/kailas-cloud/mapdex/internal/usecase/mapping"
)

type mockCompleter struct {
	fn func(ctx context.Context, system, prompt string) (string, error)
}

func (m *mockCompleter) Complete(ctx context.Context, system, prompt string) (string, error) {
	return m.fn(ctx, system, prompt)
}

// --- mapping usecase ---

type mockMappingUC struct {
	createFn func(ctx context.Context, d mappinguc.Draft) (dommap.Mapping, error)
	importFn func(ctx context.Context, meta dommap.Record, fields []dommap.Record) (dommap.Mapping, error)
	getFn    func(ctx context.Context, id string) (dommap.Mapping, error)
	listFn   func(ctx context.Context) ([]dommap.Mapping, error)
	updateFn func(ctx context.Context, id string, d mappinguc.Draft) (dommap.Mapping, error)
	deleteFn func(ctx context.Context, id string) error
}

func (m *mockMappingUC) Create(ctx context.Context, d mappinguc.Draft) (dommap.Mapping, error) {
	return m.createFn(ctx, d)
}

func (m *mockMappingUC) Import(
	ctx context.Context, meta dommap.Record, fields []dommap.Record,
) (dommap.Mapping, error) {
	return m.importFn(ctx, meta, fields)
}

func (m *mockMappingUC) Get(ctx context.Context, id string) (dommap.Mapping, error) {
	return m.getFn(ctx, id)
}

func (m *mockMappingUC) List(ctx context.Context) ([]dommap.Mapping, error) {
	return m.listFn(ctx)
}

func (m *mockMappingUC) Update(ctx context.Context, id string, d mappinguc.Draft) (dommap.Mapping, error) {
	return m.updateFn(ctx, id, d)
}

func (m *mockMappingUC) Delete(ctx context.Context, id string) error {
	return m.deleteFn(ctx, id)
}

// --- dataset usecase ---

type mockDatasetUC struct {
	createFn   func(ctx context.Context, mappingID, name string, rows []value.Row) (domds.Dataset, error)
	getFn      func(ctx context.Context, id string) (domds.Dataset, error)
	listFn     func(ctx context.Context, mappingID string) ([]domds.Dataset, error)
	updateFn   func(ctx context.Context, id string, u domds.Update) (domds.Dataset, error)
	deleteFn   func(ctx context.Context, id string) error
	validateFn func(ctx context.Context, id string) (domval.Report, error)
	exportFn   func(ctx context.Context, id string, f export.Format) (export.Artifact, error)
}

func (m *mockDatasetUC) Create(
	ctx context.Context, mappingID, name string, rows []value.Row,
) (domds.Dataset, error) {
	return m.createFn(ctx, mappingID, name, rows)
}

func (m *mockDatasetUC) Get(ctx context.Context, id string) (domds.Dataset, error) {
	return m.getFn(ctx, id)
}

func (m *mockDatasetUC) List(ctx context.Context, mappingID string) ([]domds.Dataset, error) {
	return m.listFn(ctx, mappingID)
}

func (m *mockDatasetUC) Update(ctx context.Context, id string, u domds.Update) (domds.Dataset, error) {
	return m.updateFn(ctx, id, u)
}

func (m *mockDatasetUC) Delete(ctx context.Context, id string) error {
	return m.deleteFn(ctx, id)
}

func (m *mockDatasetUC) Validate(ctx context.Context, id string) (domval.Report, error) {
	return m.validateFn(ctx, id)
}

func (m *mockDatasetUC) Export(ctx context.Context, id string, f export.Format) (export.Artifact, error) {
	return m.exportFn(ctx, id, f)
}

// --- validation usecase ---

type mockValidationUC struct {
	rowFn  func(ctx context.Context, mappingID string, row value.Row) ([]domval.Error, error)
	rowsFn func(ctx context.Context, mappingID string, rows []value.Row) (domval.Report, error)
}

func (m *mockValidationUC) ValidateRow(
	ctx context.Context, mappingID string, row value.Row,
) ([]domval.Error, error) {
	return m.rowFn(ctx, mappingID, row)
}

func (m *mockValidationUC) ValidateRows(
	ctx context.Context, mappingID string, rows []value.Row,
) (domval.Report, error) {
	return m.rowsFn(ctx, mappingID, rows)
}

// --- assistant usecase ---

type mockAssistantUC struct {
	describeFn func(ctx context.Context, mappingID, fieldID string) (assistantuc.Suggestion, error)
	applyFn    func(ctx context.Context, mappingID, fieldID string) (assistantuc.Suggestion, error)
}

func (m *mockAssistantUC) DescribeField(
	ctx context.Context, mappingID, fieldID string,
) (assistantuc.Suggestion, error) {
	return m.describeFn(ctx, mappingID, fieldID)
}

func (m *mockAssistantUC) DescribeAndApply(
	ctx context.Context, mappingID, fieldID string,
) (assistantuc.Suggestion, error) {
	return m.applyFn(ctx, mappingID, fieldID)
}

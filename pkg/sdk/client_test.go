package mapdex

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func newSQLiteClient(t *testing.T, opts ...Option) *Client {
	t.Helper()
	c, err := New(context.Background(), append([]Option{WithSQLite(":memory:")}, opts...)...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(c.Close)
	return c
}

func TestNew_NoStorage(t *testing.T) {
	if _, err := New(context.Background()); err == nil {
		t.Fatal("expected error when no storage configured")
	}
}

func TestCreateStore_Errors(t *testing.T) {
	ctx := context.Background()
	for _, cfg := range []*clientConfig{
		{driver: "unknown"},
		{driver: driverValkey, addrs: []string{""}},
		{driver: driverSQLite},
	} {
		if _, err := createStore(ctx, cfg); err == nil {
			t.Errorf("driver %q: expected error", cfg.driver)
		}
	}
}

func TestClientOptions(t *testing.T) {
	cfg := &clientConfig{}
	WithValkey("localhost:6379", "secret").apply(cfg)
	if cfg.driver != driverValkey || cfg.addrs[0] != "localhost:6379" || cfg.password != "secret" {
		t.Errorf("valkey cfg = %+v", cfg)
	}

	WithRedis("localhost:6380", "pass").apply(cfg)
	if cfg.driver != driverRedis || cfg.addrs[0] != "localhost:6380" {
		t.Errorf("redis cfg = %+v", cfg)
	}

	WithSQLite("/tmp/x.db").apply(cfg)
	WithKeyPrefix("tenant:").apply(cfg)
	WithMaxRows(10).apply(cfg)
	if cfg.driver != driverSQLite || cfg.path != "/tmp/x.db" || cfg.keyPrefix != "tenant:" || cfg.maxRows != 10 {
		t.Errorf("cfg = %+v", cfg)
	}

	logger := slog.Default()
	reg := prometheus.NewRegistry()
	WithLogger(logger).apply(cfg)
	WithPrometheus(reg).apply(cfg)
	if cfg.logger != logger || cfg.metricsReg != reg {
		t.Error("expected logger and registry to be set")
	}
}

func TestClient_Close_NilStore(t *testing.T) {
	c := &Client{}
	c.Close()
}

func TestClient_EndToEnd(t *testing.T) {
	ctx := context.Background()
	reg := prometheus.NewRegistry()
	c := newSQLiteClient(t, WithPrometheus(reg), WithMaxRows(5))

	if err := c.Ping(ctx); err != nil {
		t.Fatalf("ping: %v", err)
	}
	if h := c.Health(ctx); !h.Healthy() || h.Checks["database"] != "ok" {
		t.Errorf("health = %+v", h)
	}

	m, err := c.Mappings().Create(ctx, MappingInput{
		Name: "Products",
		Fields: []FieldInput{
			{Name: "sku", Label: "SKU", Required: true},
			{Name: "qty", Label: "Quantity", Type: FieldNumber,
				Rules: []Rule{{Kind: RuleMin, Value: "1"}}},
		},
	})
	if err != nil {
		t.Fatalf("create mapping: %v", err)
	}
	if len(m.Fields) != 2 || m.Fields[0].ID == "" || m.Fields[1].Order != 1 {
		t.Fatalf("mapping = %+v", m)
	}

	errs, err := c.Validate().Row(ctx, m.ID, Row{"sku": "A-1", "qty": 0})
	if err != nil {
		t.Fatalf("validate row: %v", err)
	}
	if len(errs) != 1 || errs[0].FieldName != "qty" || errs[0].Messages[0] != "Quantity must be at least 1" {
		t.Errorf("errs = %+v", errs)
	}

	rows := []Row{{"sku": "A-1", "qty": 3}, {"qty": "many"}}
	ds, err := c.Datasets().Create(ctx, m.ID, "Spring import", rows)
	if err != nil {
		t.Fatalf("create dataset: %v", err)
	}

	rep, err := c.Datasets().Validate(ctx, ds.ID)
	if err != nil {
		t.Fatalf("validate dataset: %v", err)
	}
	if rep.Total != 2 || rep.Invalid != 1 || rep.InvalidRows()[0].Index != 1 {
		t.Errorf("report = %+v", rep)
	}

	out, err := c.Datasets().Export(ctx, ds.ID, FormatCSV)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if string(out.Data) != "SKU,Quantity\nA-1,3\n,many\n" || out.Filename != "Spring_import.csv" {
		t.Errorf("export = %q (%s)", out.Data, out.Filename)
	}

	name := "Renamed"
	replaced := []Row{{"sku": "B-1", "qty": 2}}
	ds, err = c.Datasets().Update(ctx, ds.ID, DatasetUpdate{Name: &name, Rows: &replaced})
	if err != nil {
		t.Fatalf("update dataset: %v", err)
	}
	if ds.Name != "Renamed" || len(ds.Rows) != 1 || ds.Rows[0]["qty"] != json.Number("2") {
		t.Errorf("dataset = %+v", ds)
	}

	if _, err := c.Datasets().Create(ctx, m.ID, "big", make([]Row, 6)); !errors.Is(err, ErrTooManyRows) {
		t.Errorf("err = %v, want ErrTooManyRows", err)
	}
	if _, err := c.Datasets().Get(ctx, "missing"); !errors.Is(err, ErrDatasetNotFound) {
		t.Errorf("err = %v, want ErrDatasetNotFound", err)
	}

	ok := testutil.ToFloat64(c.obs.metrics.operations.WithLabelValues("dataset.create", statusOK))
	rejected := testutil.ToFloat64(c.obs.metrics.operations.WithLabelValues("dataset.create", statusRejected))
	if ok != 1 || rejected != 1 {
		t.Errorf("dataset.create ok=%v rejected=%v", ok, rejected)
	}
	if v := testutil.ToFloat64(c.obs.metrics.operations.WithLabelValues("dataset.get", statusNotFound)); v != 1 {
		t.Errorf("dataset.get not_found = %v", v)
	}
}

func TestClient_ImportAndJSONExport(t *testing.T) {
	ctx := context.Background()
	c := newSQLiteClient(t)

	m, err := c.Mappings().Import(ctx,
		map[string]any{"id": "m-1", "name": "Contacts", "entityType": "customer"},
		[]map[string]any{
			{"id": "f-2", "name": "email", "field_type": "EMAIL", "sequence": 2},
			{"id": "f-1", "name": "name", "required": true, "order": 1},
		})
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if m.Fields[0].Name != "name" || m.Fields[1].Type != FieldEmail {
		t.Errorf("fields = %+v", m.Fields)
	}

	if _, err := c.Mappings().Import(ctx, map[string]any{"name": "x"}, nil); !errors.Is(err, ErrMalformedRecord) {
		t.Errorf("err = %v, want ErrMalformedRecord", err)
	}

	ds, err := c.Datasets().Create(ctx, m.ID, "c", []Row{{"name": "<Ann>", "email": nil}})
	if err != nil {
		t.Fatalf("create dataset: %v", err)
	}
	out, err := c.Datasets().Export(ctx, ds.ID, FormatJSON)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	want := "[\n  {\n    \"name\": \"<Ann>\",\n    \"email\": null\n  }\n]\n"
	if string(out.Data) != want {
		t.Errorf("json = %q, want %q", out.Data, want)
	}
	if _, err := c.Datasets().Export(ctx, ds.ID, "xml"); !errors.Is(err, ErrInvalidFormat) {
		t.Errorf("err = %v, want ErrInvalidFormat", err)
	}
}

func TestClient_DescribeField(t *testing.T) {
	ctx := context.Background()

	c := newSQLiteClient(t)
	m, err := c.Mappings().Create(ctx, MappingInput{Name: "P", Fields: []FieldInput{{ID: "f", Name: "sku"}}})
	if err != nil {
		t.Fatalf("create mapping: %v", err)
	}
	if _, err := c.Mappings().DescribeField(ctx, m.ID, "f", false); !errors.Is(err, ErrAssistantUnavailable) {
		t.Errorf("err = %v, want ErrAssistantUnavailable", err)
	}

	completer := &mockCompleter{fn: func(_ context.Context, _, prompt string) (string, error) {
		if !bytes.Contains([]byte(prompt), []byte("Field name: sku")) {
			t.Errorf("prompt = %q", prompt)
		}
		return "Stock keeping unit.", nil
	}}
	c = newSQLiteClient(t, WithCompleter(completer))
	m, _ = c.Mappings().Create(ctx, MappingInput{Name: "P", Fields: []FieldInput{{ID: "f", Name: "sku"}}})

	sug, err := c.Mappings().DescribeField(ctx, m.ID, "f", true)
	if err != nil {
		t.Fatalf("describe: %v", err)
	}
	if !sug.Applied || sug.Description != "Stock keeping unit." {
		t.Errorf("suggestion = %+v", sug)
	}
	got, _ := c.Mappings().Get(ctx, m.ID)
	if got.Fields[0].Description != "Stock keeping unit." {
		t.Errorf("description not stored: %+v", got.Fields[0])
	}
}

func TestCompleterAdapter_Error(t *testing.T) {
	a := &completerAdapter{inner: &mockCompleter{fn: func(context.Context, string, string) (string, error) {
		return "", errors.New("quota")
	}}}
	if _, err := a.Complete(context.Background(), "s", "p"); !errors.Is(err, ErrAssistantProviderError) {
		t.Errorf("err = %v, want ErrAssistantProviderError", err)
	}
}

package mapping

import (
	"context"
	"testing"

	"github.com/kailas-cloud/mapdex/internal/db"
	dommap "github.com/kailas-cloud/mapdex/internal/domain/mapping"
	"github.com/kailas-cloud/mapdex/internal/domain/mapping/field"
	"github.com/kailas-cloud/mapdex/internal/domain/mapping/rule"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	hsetFn         func(ctx context.Context, key string, fields map[string]string) error
	hgetAllFn      func(ctx context.Context, key string) (map[string]string, error)
	hgetAllMultiFn func(ctx context.Context, keys []string) ([]map[string]string, error)
	getFn          func(ctx context.Context, key string) ([]byte, error)
	setFn          func(ctx context.Context, key string, value []byte) error
	delFn          func(ctx context.Context, key string) error
	existsFn       func(ctx context.Context, key string) (bool, error)
	scanFn         func(ctx context.Context, pattern string) ([]string, error)
}

func (m *mockStore) HSet(ctx context.Context, key string, fields map[string]string) error {
	if m.hsetFn != nil {
		return m.hsetFn(ctx, key, fields)
	}
	return nil
}

func (m *mockStore) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	if m.hgetAllFn != nil {
		return m.hgetAllFn(ctx, key)
	}
	return map[string]string{}, nil
}

func (m *mockStore) HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error) {
	if m.hgetAllMultiFn != nil {
		return m.hgetAllMultiFn(ctx, keys)
	}
	return nil, nil
}

func (m *mockStore) Get(ctx context.Context, key string) ([]byte, error) {
	if m.getFn != nil {
		return m.getFn(ctx, key)
	}
	return nil, db.ErrKeyNotFound
}

func (m *mockStore) Set(ctx context.Context, key string, value []byte) error {
	if m.setFn != nil {
		return m.setFn(ctx, key, value)
	}
	return nil
}

func (m *mockStore) Del(ctx context.Context, key string) error {
	if m.delFn != nil {
		return m.delFn(ctx, key)
	}
	return nil
}

func (m *mockStore) Exists(ctx context.Context, key string) (bool, error) {
	if m.existsFn != nil {
		return m.existsFn(ctx, key)
	}
	return false, nil
}

func (m *mockStore) Scan(ctx context.Context, pattern string) ([]string, error) {
	if m.scanFn != nil {
		return m.scanFn(ctx, pattern)
	}
	return nil, nil
}

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{}
	return New(ms, ""), ms
}

func testMapping(t *testing.T) dommap.Mapping {
	t.Helper()
	maxLen, err := rule.New(rule.MaxLength, "64", "")
	if err != nil {
		t.Fatalf("rule.New: %v", err)
	}
	return dommap.Reconstruct(dommap.Params{
		ID:         "m1",
		Name:       "Products",
		EntityType: "product",
		CreatedAt:  1700000000000,
		UpdatedAt:  1700000000500,
		Fields: []field.Field{
			field.Reconstruct(field.Params{
				ID: "f-size", Name: "size", Type: field.Select, Order: 1,
				Options: []field.Option{{Value: "s", Label: "Small"}},
			}),
			field.Reconstruct(field.Params{
				ID: "f-sku", Name: "sku", Label: "SKU", Required: true, Order: 0,
				Rules: []rule.Rule{maxLen},
			}),
		},
	})
}

package dataset

import (
	"context"
	"path"
	"sort"
	"testing"

	"github.com/kailas-cloud/mapdex/internal/db"
	domds "github.com/kailas-cloud/mapdex/internal/domain/dataset"
	"github.com/kailas-cloud/mapdex/internal/domain/value"
)

// mockStore implements the consumer interface for tests. Unset hooks fall
// back to an in-memory map.
type mockStore struct {
	data map[string][]byte

	getFn    func(ctx context.Context, key string) ([]byte, error)
	setFn    func(ctx context.Context, key string, value []byte) error
	delFn    func(ctx context.Context, key string) error
	existsFn func(ctx context.Context, key string) (bool, error)
	scanFn   func(ctx context.Context, pattern string) ([]string, error)
}

func (m *mockStore) Get(ctx context.Context, key string) ([]byte, error) {
	if m.getFn != nil {
		return m.getFn(ctx, key)
	}
	v, ok := m.data[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return v, nil
}

func (m *mockStore) Set(ctx context.Context, key string, value []byte) error {
	if m.setFn != nil {
		return m.setFn(ctx, key, value)
	}
	m.data[key] = append([]byte(nil), value...)
	return nil
}

func (m *mockStore) Del(ctx context.Context, key string) error {
	if m.delFn != nil {
		return m.delFn(ctx, key)
	}
	delete(m.data, key)
	return nil
}

func (m *mockStore) Exists(ctx context.Context, key string) (bool, error) {
	if m.existsFn != nil {
		return m.existsFn(ctx, key)
	}
	_, ok := m.data[key]
	return ok, nil
}

func (m *mockStore) Scan(ctx context.Context, pattern string) ([]string, error) {
	if m.scanFn != nil {
		return m.scanFn(ctx, pattern)
	}
	var keys []string
	for k := range m.data {
		if ok, _ := path.Match(pattern, k); ok {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{data: map[string][]byte{}}
	return New(ms, ""), ms
}

func testDataset(t *testing.T, id, mappingID string, createdAt int64) domds.Dataset {
	t.Helper()
	lit, err := value.NumberLiteral("2.50")
	if err != nil {
		t.Fatalf("NumberLiteral: %v", err)
	}
	rows := []value.Row{
		{"sku": value.String("A-1"), "price": lit, "active": value.Bool(true)},
		{"sku": value.String("B-2"), "note": value.Null()},
	}
	return domds.Reconstruct(id, mappingID, "import "+id, rows, createdAt, createdAt)
}

package completioncache

import (
	"context"
	"testing"

	"github.com/kailas-cloud/mapdex/internal/db"
	"github.com/kailas-cloud/mapdex/internal/domain"
)

type mockCompleter struct {
	result domain.Completion
	err    error
	calls  int
}

func (m *mockCompleter) Complete(_ context.Context, _, _ string) (domain.Completion, error) {
	m.calls++
	return m.result, m.err
}

// mockKVStore implements the consumer interface for tests.
type mockKVStore struct {
	getFn func(ctx context.Context, key string) ([]byte, error)
	setFn func(ctx context.Context, key string, value []byte) error
}

func (m *mockKVStore) Get(ctx context.Context, key string) ([]byte, error) {
	if m.getFn != nil {
		return m.getFn(ctx, key)
	}
	return nil, db.ErrKeyNotFound
}

func (m *mockKVStore) Set(ctx context.Context, key string, value []byte) error {
	if m.setFn != nil {
		return m.setFn(ctx, key, value)
	}
	return nil
}

// memKVStore is a map-backed store for round-trip tests.
type memKVStore map[string][]byte

func (m memKVStore) Get(_ context.Context, key string) ([]byte, error) {
	v, ok := m[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return v, nil
}

func (m memKVStore) Set(_ context.Context, key string, value []byte) error {
	m[key] = value
	return nil
}

func newTestCachedCompleter(t *testing.T, inner *mockCompleter) (*CachedCompleter, *mockKVStore) {
	t.Helper()
	ms := &mockKVStore{}
	return New(inner, ms, "mapdex:", "gpt-4o-mini", nil, nil), ms
}

package mapping

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/kailas-cloud/mapdex/internal/db"
	"github.com/kailas-cloud/mapdex/internal/domain"
	dommap "github.com/kailas-cloud/mapdex/internal/domain/mapping"
	"github.com/kailas-cloud/mapdex/internal/domain/mapping/field"
)

// store is the consumer interface for mappings (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Del(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	Scan(ctx context.Context, pattern string) ([]string, error)
}

// Repo implements usecase/mapping.Repository.
// Metadata lives in a hash, the field list in a separate JSON value.
type Repo struct {
	store  store
	prefix string
}

// New creates a mapping repository. An empty prefix uses domain.DefaultKeyPrefix.
func New(s store, prefix string) *Repo {
	if prefix == "" {
		prefix = domain.DefaultKeyPrefix
	}
	return &Repo{store: s, prefix: prefix}
}

// Create stores a mapping: HSET metadata then SET fields.
// On SET failure, rolls back the HSET via DEL.
func (r *Repo) Create(ctx context.Context, m dommap.Mapping) error {
	metaKey := r.metaKey(m.ID())
	exists, err := r.store.Exists(ctx, metaKey)
	if err != nil {
		return fmt.Errorf("check exists: %w", err)
	}
	if exists {
		return domain.ErrAlreadyExists
	}

	fieldsData, err := marshalFields(m.Fields())
	if err != nil {
		return err
	}

	if err := r.store.HSet(ctx, metaKey, mappingToHash(m)); err != nil {
		return fmt.Errorf("hset mapping %s: %w", m.ID(), err)
	}
	if err := r.store.Set(ctx, r.fieldsKey(m.ID()), fieldsData); err != nil {
		cleanupErr := r.store.Del(ctx, metaKey)
		return errors.Join(fmt.Errorf("set fields %s: %w", m.ID(), err), cleanupErr)
	}
	return nil
}

// Get retrieves a mapping by id. Fields are fetched separately and merged;
// the result is re-sorted by order.
func (r *Repo) Get(ctx context.Context, id string) (dommap.Mapping, error) {
	meta, err := r.store.HGetAll(ctx, r.metaKey(id))
	if err != nil {
		return dommap.Mapping{}, fmt.Errorf("hgetall mapping %s: %w", id, err)
	}
	if len(meta) == 0 {
		return dommap.Mapping{}, domain.ErrMappingNotFound
	}

	fields, err := r.loadFields(ctx, id)
	if err != nil {
		return dommap.Mapping{}, err
	}
	return mappingFromHash(meta, fields)
}

// List returns all mappings sorted by CreatedAt, then id.
func (r *Repo) List(ctx context.Context) ([]dommap.Mapping, error) {
	keys, err := r.store.Scan(ctx, r.metaKey("*"))
	if err != nil {
		return nil, fmt.Errorf("scan mappings: %w", err)
	}
	if len(keys) == 0 {
		return []dommap.Mapping{}, nil
	}

	results, err := r.store.HGetAllMulti(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("hgetall multi mappings: %w", err)
	}

	mappings := make([]dommap.Mapping, 0, len(results))
	for i, meta := range results {
		if len(meta) == 0 {
			continue
		}
		fields, err := r.loadFields(ctx, meta["id"])
		if err != nil {
			return nil, err
		}
		m, err := mappingFromHash(meta, fields)
		if err != nil {
			return nil, fmt.Errorf("parse mapping %s: %w", keys[i], err)
		}
		mappings = append(mappings, m)
	}

	sort.Slice(mappings, func(i, j int) bool {
		if mappings[i].CreatedAt() != mappings[j].CreatedAt() {
			return mappings[i].CreatedAt() < mappings[j].CreatedAt()
		}
		return mappings[i].ID() < mappings[j].ID()
	})
	return mappings, nil
}

// Update replaces the metadata and the field list of an existing mapping.
func (r *Repo) Update(ctx context.Context, m dommap.Mapping) error {
	metaKey := r.metaKey(m.ID())
	exists, err := r.store.Exists(ctx, metaKey)
	if err != nil {
		return fmt.Errorf("check exists: %w", err)
	}
	if !exists {
		return domain.ErrMappingNotFound
	}

	fieldsData, err := marshalFields(m.Fields())
	if err != nil {
		return err
	}
	if err := r.store.Set(ctx, r.fieldsKey(m.ID()), fieldsData); err != nil {
		return fmt.Errorf("set fields %s: %w", m.ID(), err)
	}
	if err := r.store.HSet(ctx, metaKey, mappingToHash(m)); err != nil {
		return fmt.Errorf("hset mapping %s: %w", m.ID(), err)
	}
	return nil
}

// Delete removes a mapping: DEL fields then DEL metadata (restore fields on error).
func (r *Repo) Delete(ctx context.Context, id string) error {
	metaKey := r.metaKey(id)
	exists, err := r.store.Exists(ctx, metaKey)
	if err != nil {
		return fmt.Errorf("check exists: %w", err)
	}
	if !exists {
		return domain.ErrMappingNotFound
	}

	fieldsBackup, err := r.store.Get(ctx, r.fieldsKey(id))
	if err != nil && !errors.Is(err, db.ErrKeyNotFound) {
		return fmt.Errorf("get fields %s: %w", id, err)
	}

	if err := r.store.Del(ctx, r.fieldsKey(id)); err != nil {
		return fmt.Errorf("del fields %s: %w", id, err)
	}
	if err := r.store.Del(ctx, metaKey); err != nil {
		var restoreErr error
		if fieldsBackup != nil {
			restoreErr = r.store.Set(ctx, r.fieldsKey(id), fieldsBackup)
		}
		return errors.Join(fmt.Errorf("del mapping %s: %w", id, err), restoreErr)
	}
	return nil
}

func (r *Repo) loadFields(ctx context.Context, id string) ([]field.Field, error) {
	data, err := r.store.Get(ctx, r.fieldsKey(id))
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return []field.Field{}, nil
		}
		return nil, fmt.Errorf("get fields %s: %w", id, err)
	}
	return unmarshalFields(data)
}

// Key patterns: {prefix}mapping:{id} (hash), {prefix}fields:{id} (JSON list).

func (r *Repo) metaKey(id string) string {
	return fmt.Sprintf("%smapping:%s", r.prefix, id)
}

func (r *Repo) fieldsKey(id string) string {
	return fmt.Sprintf("%sfields:%s", r.prefix, id)
}

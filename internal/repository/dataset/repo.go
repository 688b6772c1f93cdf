package dataset

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/kailas-cloud/mapdex/internal/db"
	"github.com/kailas-cloud/mapdex/internal/domain"
	domds "github.com/kailas-cloud/mapdex/internal/domain/dataset"
)

// store is the consumer interface for datasets (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Del(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	Scan(ctx context.Context, pattern string) ([]string, error)
}

// Repo implements usecase/dataset.Repository: a key-value store keyed by
// dataset id, value = the whole dataset as JSON.
type Repo struct {
	store  store
	prefix string
}

// New creates a dataset repository. An empty prefix uses domain.DefaultKeyPrefix.
func New(s store, prefix string) *Repo {
	if prefix == "" {
		prefix = domain.DefaultKeyPrefix
	}
	return &Repo{store: s, prefix: prefix}
}

// Create stores a new dataset.
func (r *Repo) Create(ctx context.Context, d domds.Dataset) error {
	key := r.key(d.ID())
	exists, err := r.store.Exists(ctx, key)
	if err != nil {
		return fmt.Errorf("check exists %s: %w", key, err)
	}
	if exists {
		return domain.ErrAlreadyExists
	}
	return r.put(ctx, d)
}

// Save overwrites an existing dataset.
func (r *Repo) Save(ctx context.Context, d domds.Dataset) error {
	return r.put(ctx, d)
}

// Get returns a dataset by id.
func (r *Repo) Get(ctx context.Context, id string) (domds.Dataset, error) {
	key := r.key(id)
	data, err := r.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return domds.Dataset{}, domain.ErrDatasetNotFound
		}
		return domds.Dataset{}, fmt.Errorf("get %s: %w", key, err)
	}
	return unmarshalDataset(data)
}

// List returns the datasets of a mapping (all datasets when mappingID is
// empty) sorted by CreatedAt, then id.
func (r *Repo) List(ctx context.Context, mappingID string) ([]domds.Dataset, error) {
	keys, err := r.store.Scan(ctx, r.key("*"))
	if err != nil {
		return nil, fmt.Errorf("scan datasets: %w", err)
	}

	out := make([]domds.Dataset, 0, len(keys))
	for _, key := range keys {
		data, err := r.store.Get(ctx, key)
		if err != nil {
			if errors.Is(err, db.ErrKeyNotFound) {
				continue // deleted between SCAN and GET
			}
			return nil, fmt.Errorf("get %s: %w", key, err)
		}
		d, err := unmarshalDataset(data)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", key, err)
		}
		if mappingID != "" && d.MappingID() != mappingID {
			continue
		}
		out = append(out, d)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt() != out[j].CreatedAt() {
			return out[i].CreatedAt() < out[j].CreatedAt()
		}
		return out[i].ID() < out[j].ID()
	})
	return out, nil
}

// Delete removes a dataset.
func (r *Repo) Delete(ctx context.Context, id string) error {
	key := r.key(id)
	exists, err := r.store.Exists(ctx, key)
	if err != nil {
		return fmt.Errorf("check exists %s: %w", key, err)
	}
	if !exists {
		return domain.ErrDatasetNotFound
	}
	if err := r.store.Del(ctx, key); err != nil {
		return fmt.Errorf("del %s: %w", key, err)
	}
	return nil
}

func (r *Repo) put(ctx context.Context, d domds.Dataset) error {
	data, err := marshalDataset(d)
	if err != nil {
		return err
	}
	key := r.key(d.ID())
	if err := r.store.Set(ctx, key, data); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

// Key pattern: {prefix}dataset:{id}

func (r *Repo) key(id string) string {
	return fmt.Sprintf("%sdataset:%s", r.prefix, id)
}

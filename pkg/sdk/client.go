package mapdex

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kailas-cloud/mapdex/internal/db"
	dbRedis "github.com/kailas-cloud/mapdex/internal/db/redis"
	dbSQLite "github.com/kailas-cloud/mapdex/internal/db/sqlite"
	"github.com/kailas-cloud/mapdex/internal/domain"
	domds "github.com/kailas-cloud/mapdex/internal/domain/dataset"
	"github.com/kailas-cloud/mapdex/internal/domain/export"
	dommap "github.com/kailas-cloud/mapdex/internal/domain/mapping"
	domval "github.com/kailas-cloud/mapdex/internal/domain/validation"
	"github.com/kailas-cloud/mapdex/internal/domain/value"
	datasetrepo "github.com/kailas-cloud/mapdex/internal/repository/dataset"
	mappingrepo "github.com/kailas-cloud/mapdex/internal/repository/mapping"
	assistantuc "github.com/kailas-cloud/mapdex/internal/usecase/assistant"
	datasetuc "github.com/kailas-cloud/mapdex/internal/usecase/dataset"
	healthuc "github.com/kailas-cloud/mapdex/internal/usecase/health"
	mappinguc "github.com/kailas-cloud/mapdex/internal/usecase/mapping"
	validationuc "github.com/kailas-cloud/mapdex/internal/usecase/validation"
)

const (
	defaultReadinessTimeout = 10 * time.Second
	defaultKeyPrefix        = "mapdex:"
)

// Usecase interfaces, narrowed so tests can substitute them.
type mappingUseCase interface {
	Create(ctx context.Context, d mappinguc.Draft) (dommap.Mapping, error)
	Import(ctx context.Context, meta dommap.Record, fields []dommap.Record) (dommap.Mapping, error)
	Get(ctx context.Context, id string) (dommap.Mapping, error)
	List(ctx context.Context) ([]dommap.Mapping, error)
	Update(ctx context.Context, id string, d mappinguc.Draft) (dommap.Mapping, error)
	Delete(ctx context.Context, id string) error
}

type datasetUseCase interface {
	Create(ctx context.Context, mappingID, name string, rows []value.Row) (domds.Dataset, error)
	Get(ctx context.Context, id string) (domds.Dataset, error)
	List(ctx context.Context, mappingID string) ([]domds.Dataset, error)
	Update(ctx context.Context, id string, u domds.Update) (domds.Dataset, error)
	Delete(ctx context.Context, id string) error
	Validate(ctx context.Context, id string) (domval.Report, error)
	Export(ctx context.Context, id string, f export.Format) (export.Artifact, error)
}

type validationUseCase interface {
	ValidateRow(ctx context.Context, mappingID string, row value.Row) ([]domval.Error, error)
	ValidateRows(ctx context.Context, mappingID string, rows []value.Row) (domval.Report, error)
}

type assistantUseCase interface {
	DescribeField(ctx context.Context, mappingID, fieldID string) (assistantuc.Suggestion, error)
	DescribeAndApply(ctx context.Context, mappingID, fieldID string) (assistantuc.Suggestion, error)
}

type healthUseCase interface {
	Check(ctx context.Context) healthuc.Report
}

// Client is the mapdex SDK entry point. It is safe for concurrent use.
type Client struct {
	store         db.Store
	mappingSvc    mappingUseCase
	datasetSvc    datasetUseCase
	validationSvc validationUseCase
	assistantSvc  assistantUseCase
	healthSvc     healthUseCase
	obs           *observer
}

// New creates a Client and connects to the configured storage.
// The provided context is used for the initial readiness check.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{keyPrefix: defaultKeyPrefix}
	for _, o := range opts {
		o.apply(cfg)
	}

	if cfg.driver == "" {
		return nil, errors.New("mapdex: storage required (use WithValkey, WithRedis or WithSQLite)")
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	store, err := createStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	if err := store.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("mapdex: database not ready: %w", err)
	}

	return wireClient(store, cfg, obs), nil
}

func createStore(ctx context.Context, cfg *clientConfig) (db.Store, error) {
	switch cfg.driver {
	case driverValkey, driverRedis:
		if len(cfg.addrs) == 0 || cfg.addrs[0] == "" {
			return nil, fmt.Errorf("mapdex: %s address required", cfg.driver)
		}
		s, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.addrs,
			Password: cfg.password,
		})
		if err != nil {
			return nil, fmt.Errorf("mapdex: create %s store: %w", cfg.driver, err)
		}
		return s, nil
	case driverSQLite:
		s, err := dbSQLite.Open(ctx, cfg.path)
		if err != nil {
			return nil, fmt.Errorf("mapdex: open sqlite store: %w", err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("mapdex: unknown driver %q", cfg.driver)
	}
}

func wireClient(store db.Store, cfg *clientConfig, obs *observer) *Client {
	mapRepo := mappingrepo.New(store, cfg.keyPrefix)
	dsRepo := datasetrepo.New(store, cfg.keyPrefix)

	mappingSvc := mappinguc.New(mapRepo)
	validationSvc := validationuc.New(mappingSvc)
	datasetSvc := datasetuc.New(dsRepo, mappingSvc, validationSvc, cfg.maxRows)

	// nil interface, not a typed nil adapter, when no completer is set
	var completer domain.Completer
	if cfg.completer != nil {
		completer = &completerAdapter{inner: cfg.completer}
	}

	return &Client{
		store:         store,
		mappingSvc:    mappingSvc,
		datasetSvc:    datasetSvc,
		validationSvc: validationSvc,
		assistantSvc:  assistantuc.New(mapRepo, completer),
		healthSvc:     healthuc.New(store, nil),
		obs:           obs,
	}
}

// Close releases all resources.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

// Ping checks database connectivity.
func (c *Client) Ping(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("ping", start, err) }()

	if err = c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Mappings returns the mapping service.
func (c *Client) Mappings() *MappingService {
	return &MappingService{svc: c.mappingSvc, assistant: c.assistantSvc, obs: c.obs}
}

// Datasets returns the dataset service.
func (c *Client) Datasets() *DatasetService {
	return &DatasetService{svc: c.datasetSvc, obs: c.obs}
}

// Validate returns the row validation service.
func (c *Client) Validate() *ValidationService {
	return &ValidationService{svc: c.validationSvc, obs: c.obs}
}

package main

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/vitrine/internal/config"
	dbPostgres "github.com/kailas-cloud/vitrine/internal/db/postgres"
	dbRedis "github.com/kailas-cloud/vitrine/internal/db/redis"
	"github.com/kailas-cloud/vitrine/internal/domain/search"
	"github.com/kailas-cloud/vitrine/internal/domain/search/result"
	"github.com/kailas-cloud/vitrine/internal/index"
	"github.com/kailas-cloud/vitrine/internal/index/redisearch"
	"github.com/kailas-cloud/vitrine/internal/index/solr"
	logpkg "github.com/kailas-cloud/vitrine/internal/logger"
	"github.com/kailas-cloud/vitrine/internal/metrics"
	exhibitrepo "github.com/kailas-cloud/vitrine/internal/repository/exhibit"
	homepagerepo "github.com/kailas-cloud/vitrine/internal/repository/homepage"
	pgrepo "github.com/kailas-cloud/vitrine/internal/repository/postgres"
	savedsearchrepo "github.com/kailas-cloud/vitrine/internal/repository/savedsearch"
	autocompleteuc "github.com/kailas-cloud/vitrine/internal/usecase/autocomplete"
	exhibituc "github.com/kailas-cloud/vitrine/internal/usecase/exhibit"
	healthuc "github.com/kailas-cloud/vitrine/internal/usecase/health"
	savedsearchuc "github.com/kailas-cloud/vitrine/internal/usecase/savedsearch"
)

// app is the composition root shared by every command.
type app struct {
	env    string
	cfg    config.Config
	logger *zap.Logger

	redis *dbRedis.Store // nil unless a Redis connection is configured
	sqlDB *sql.DB        // nil unless store.driver is postgres

	exhibitRepo exhibituc.Repository
	searchRepo  savedsearchuc.Repository
	pageRepo    exhibituc.HomePageRepository
	storePinger healthuc.StorePinger
}

func loadApp(cmd *cobra.Command) (*app, error) {
	env, _ := cmd.Flags().GetString("env")
	if env == "" {
		env = config.GetEnv()
	}

	cfg, err := config.Load(env)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := logpkg.New(env, cfg.Logging.Level)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}

	return &app{env: env, cfg: cfg, logger: logger}, nil
}

// openStores connects the entity store and, when configured, Redis for the
// index and response cache.
func (a *app) openStores(ctx context.Context) error {
	if len(a.cfg.Store.Redis.Addrs) > 0 && (a.cfg.Store.Driver == "redis" || a.cfg.Index.Backend == "redisearch") {
		store, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:      a.cfg.Store.Redis.Addrs,
			Username:   a.cfg.Store.Redis.Username,
			Password:   a.cfg.Store.Redis.Password,
			DB:         a.cfg.Store.Redis.DB,
			ClientName: "vitrine",
		})
		if err != nil {
			return fmt.Errorf("create redis store: %w", err)
		}
		timeout := time.Duration(a.cfg.Store.Redis.ReadinessTimeout) * time.Second
		if err := store.WaitForReady(ctx, timeout); err != nil {
			store.Close()
			return fmt.Errorf("redis not ready: %w", err)
		}
		a.redis = store
		a.logger.Info("Connected to Redis", zap.Strings("addrs", a.cfg.Store.Redis.Addrs))
	}

	switch a.cfg.Store.Driver {
	case "redis":
		a.exhibitRepo = exhibitrepo.New(a.redis)
		a.searchRepo = savedsearchrepo.New(a.redis)
		a.pageRepo = homepagerepo.New(a.redis)
		a.storePinger = a.redis
	case "postgres":
		conn, err := a.openPostgres(ctx)
		if err != nil {
			return err
		}
		a.exhibitRepo = pgrepo.NewExhibitRepo(conn)
		a.searchRepo = pgrepo.NewSavedSearchRepo(conn)
		a.pageRepo = pgrepo.NewHomePageRepo(conn)
		a.storePinger = sqlPinger{conn}
	default:
		return fmt.Errorf("unknown store driver %q", a.cfg.Store.Driver)
	}
	return nil
}

func (a *app) openPostgres(ctx context.Context) (*sql.DB, error) {
	conn, err := dbPostgres.Open(ctx, dbPostgres.Config{
		DSN:             a.cfg.Store.Postgres.DSN,
		MaxOpenConns:    a.cfg.Store.Postgres.MaxOpenConns,
		MaxIdleConns:    a.cfg.Store.Postgres.MaxOpenConns,
		ConnMaxLifetime: 30 * time.Minute,
	})
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	a.sqlDB = conn
	a.logger.Info("Connected to Postgres")
	return conn, nil
}

func (a *app) close() {
	if a.redis != nil {
		a.redis.Close()
	}
	if a.sqlDB != nil {
		_ = a.sqlDB.Close()
	}
	_ = a.logger.Sync()
}

// sqlPinger adapts *sql.DB to healthuc.StorePinger.
type sqlPinger struct {
	db *sql.DB
}

func (p sqlPinger) Ping(ctx context.Context) error {
	if err := p.db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping postgres: %w", err)
	}
	return nil
}

func (a *app) exhibitService() *exhibituc.Service {
	return exhibituc.New(a.exhibitRepo, a.searchRepo, a.pageRepo, a.logger)
}

func (a *app) searchService() *savedsearchuc.Service {
	return savedsearchuc.New(a.searchRepo, a.exhibitRepo, a.logger).
		WithReconciledCounter(metrics.SearchesReconciledTotal)
}

func (a *app) autocompleteService(idx search.Index) *autocompleteuc.Service {
	fields := a.fieldMap()
	projector := result.NewProjector(fields, a.cfg.Index.URLTemplate)
	return autocompleteuc.New(a.exhibitRepo, a.searchRepo, idx, projector, a.logger).
		WithPageSize(a.cfg.Autocomplete.PageSize).
		WithTimeout(a.cfg.IndexTimeout())
}

func (a *app) fieldMap() result.FieldMap {
	f := a.cfg.Index.Fields
	return result.FieldMap{
		Title:       f.Title,
		Description: f.Description,
		Thumbnail:   f.Thumbnail,
		URL:         f.URL,
	}
}

// buildIndex assembles the decorator chain: backend -> Cached -> Instrumented.
// The returned checker is the bare backend.
func (a *app) buildIndex(ctx context.Context) (search.Index, search.Checker, error) {
	backend := a.cfg.Index.Backend

	var base interface {
		search.Index
		search.Checker
	}
	switch backend {
	case "redisearch":
		if a.redis == nil {
			return nil, nil, fmt.Errorf("redisearch backend needs a redis connection")
		}
		rs := redisearch.New(a.redis, redisearch.Config{
			IndexName:   a.cfg.Index.RediSearch.Index,
			Prefix:      a.cfg.Index.RediSearch.Prefix,
			FacetFields: a.cfg.Index.RediSearch.FacetFields,
			Fields:      a.fieldMap(),
		}, a.logger)
		if a.cfg.Index.RediSearch.Create {
			if err := rs.EnsureIndex(ctx); err != nil {
				return nil, nil, fmt.Errorf("ensure index: %w", err)
			}
		}
		base = rs
	case "solr":
		base = solr.New(solr.Config{
			URL:     a.cfg.Index.Solr.URL,
			Core:    a.cfg.Index.Solr.Core,
			Timeout: a.cfg.IndexTimeout(),
			Retries: a.cfg.Index.Solr.Retries,
			IDField: a.cfg.Index.Fields.ID,
			Fields:  a.fieldMap(),
		}, a.logger)
	default:
		return nil, nil, fmt.Errorf("unknown index backend %q", backend)
	}

	var idx search.Index = base
	if ttl := time.Duration(a.cfg.Autocomplete.CacheTTLSec) * time.Second; ttl > 0 {
		if a.redis != nil {
			idx = index.NewCached(idx, a.redis, ttl, backend, metrics.AutocompleteCacheTotal, a.logger)
		} else {
			a.logger.Warn("Autocomplete cache disabled: no redis connection")
		}
	}
	idx = index.NewInstrumented(idx, backend, a.logger)

	a.logger.Info("Document index ready", zap.String("backend", backend))
	return idx, base, nil
}

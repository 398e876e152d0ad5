package commands

import (
	"context"
	"fmt"

	"github.com/wonny/claimlens/internal/dataset"
	"github.com/wonny/claimlens/internal/excess"
	"github.com/wonny/claimlens/internal/profile"
	"github.com/wonny/claimlens/internal/report"
	"github.com/wonny/claimlens/pkg/config"
	"github.com/wonny/claimlens/pkg/database"
	"github.com/wonny/claimlens/pkg/httputil"
	"github.com/wonny/claimlens/pkg/logger"
	"github.com/wonny/claimlens/pkg/redis"
)

// app bundles the dependencies shared by the analysis commands
type app struct {
	cfg     *config.Config
	log     *logger.Logger
	profile *profile.Profile
	db      *database.DB  // postgres 소스일 때만
	rc      *redis.Client // api, scheduler에서만
}

// newApp loads config, logger and profile
// ⭐ 모든 커맨드는 이 함수로 초기화
func newApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if verbose {
		cfg.LogLevel = "debug"
	}
	if sheetName != "" {
		cfg.Dataset.Sheet = sheetName
	}
	if datasetPath != "" {
		cfg.Dataset.Path = datasetPath
	}
	if profilePath != "" {
		cfg.Dataset.ProfilePath = profilePath
	}

	log := logger.New(cfg)

	p, err := profile.LoadOrDefault(cfg.Dataset.ProfilePath)
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}
	for _, w := range profile.Warn(p) {
		log.WithField("code", w.Code).Warn(w.Message)
	}

	// 프로파일의 데이터셋 경로는 환경변수/플래그가 없을 때만 사용
	if cfg.Dataset.Path == "" && !cfg.UsePostgres() {
		cfg.Dataset.Path = p.Dataset.Path
	}

	return &app{cfg: cfg, log: log, profile: p}, nil
}

// close releases the database pool if one was opened
func (a *app) close() {
	if a.db != nil {
		a.db.Close()
	}
}

// source returns the configured dataset source
func (a *app) source() (dataset.Source, error) {
	if err := a.cfg.RequireDataset(); err != nil {
		return nil, err
	}

	opts := a.profile.Dataset.Options()
	if a.cfg.Dataset.Sheet != "" {
		opts.Sheet = a.cfg.Dataset.Sheet
	}

	if a.cfg.UsePostgres() {
		if a.db == nil {
			db, err := database.New(a.cfg)
			if err != nil {
				return nil, fmt.Errorf("connect to database: %w", err)
			}
			a.db = db
		}
		return dataset.NewPostgresSource(a.db.Pool, a.cfg.Dataset.Table, opts, a.log.Zerolog()), nil
	}

	if dataset.IsURL(a.cfg.Dataset.Path) {
		client := httputil.New(a.cfg, a.log)
		if a.rc != nil && a.rc.Enabled() {
			client.WithRateLimiter(redis.NewRateLimiter(a.rc, "claimlens"), redis.DatasetDownloadLimit)
		}
		return dataset.NewHTTPSource(client, a.cfg.Dataset.Path, opts), nil
	}

	return dataset.NewFileSource(a.cfg.Dataset.Path, opts), nil
}

// load reads the dataset and applies the profile's derived columns
func (a *app) load(ctx context.Context) (*dataset.Dataset, error) {
	src, err := a.source()
	if err != nil {
		return nil, err
	}

	ds, err := src.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load dataset from %s: %w", src.Describe(), err)
	}

	if a.profile.Excess.Enabled && ds.HasColumn(a.profile.Columns.Excess) {
		if err := excess.Derive(ds, a.profile.Columns.Excess, a.profile.Excess.Target); err != nil {
			a.log.WithError(err).Warn("Excess amount not derived")
		}
	}

	a.log.WithFields(map[string]interface{}{
		"source":  src.Describe(),
		"rows":    ds.Len(),
		"columns": len(ds.Names()),
	}).Info("Dataset loaded")

	return ds, nil
}

// reportService wires the dataset source, redis cache and report builder
// 반환된 redis 클라이언트는 호출자가 닫아야 함
func (a *app) reportService() (*report.Service, *redis.Client, error) {
	rc, err := redis.New(a.cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to redis: %w", err)
	}
	if rc.Enabled() {
		a.log.Info("Connected to redis")
	}
	a.rc = rc

	src, err := a.source()
	if err != nil {
		_ = rc.Close()
		return nil, nil, err
	}

	cache := redis.NewCache(rc, "claimlens")
	builder := report.NewBuilder(a.log.Zerolog())

	svc, err := report.NewService(src, builder, cache, a.profile, a.cfg.Report.CacheTTL, a.log.Zerolog())
	if err != nil {
		_ = rc.Close()
		return nil, nil, err
	}
	return svc, rc, nil
}

package report

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/wonny/claimlens/internal/contracts"
	"github.com/wonny/claimlens/internal/dataset"
	"github.com/wonny/claimlens/internal/profile"
	"github.com/wonny/claimlens/pkg/redis"
)

// Service serves reports for one dataset source and profile.
// The dataset is loaded once and shared. Reports are cached in memory and in
// redis, both for ttl; an expired in-memory report falls back to redis so a
// refresh written by another process (the scheduler) is picked up.
// ⭐ SSOT: API, 스케줄러는 이 서비스로만 리포트에 접근
type Service struct {
	source  dataset.Source
	builder *Builder
	cache   *redis.Cache
	profile *profile.Profile
	ttl     time.Duration
	log     zerolog.Logger

	hash     string // 프로파일 해시
	cacheKey string // 프로파일 해시 + 소스 식별자

	mu       sync.Mutex
	ds       *dataset.Dataset
	latest   *contracts.Report
	latestAt time.Time
	now      func() time.Time
}

// NewService creates a report service
func NewService(source dataset.Source, builder *Builder, cache *redis.Cache, p *profile.Profile, ttl time.Duration, log zerolog.Logger) (*Service, error) {
	hash, err := profile.Hash(p)
	if err != nil {
		return nil, fmt.Errorf("hash profile: %w", err)
	}
	if ttl <= 0 {
		ttl = redis.TTLReport
	}
	return &Service{
		source:   source,
		builder:  builder,
		cache:    cache,
		profile:  p,
		ttl:      ttl,
		hash:     hash,
		cacheKey: CacheKey(hash, source.Describe()),
		now:      time.Now,
		log:      log.With().Str("component", "report.service").Logger(),
	}, nil
}

// CacheKey scopes cached results to a profile and a dataset source
// 같은 프로파일이라도 데이터셋이 다르면 다른 키
func CacheKey(profileHash, source string) string {
	sum := sha256.Sum256([]byte(source))
	return profileHash + ":" + hex.EncodeToString(sum[:8])
}

// Profile returns the analysis profile
func (s *Service) Profile() *profile.Profile {
	return s.profile
}

// ProfileHash returns the SHA-256 of the profile
func (s *Service) ProfileHash() string {
	return s.hash
}

// CacheKey returns the key under which this service caches results
func (s *Service) CacheKey() string {
	return s.cacheKey
}

// Cached returns a single analysis result from redis or computes and stores it.
// dest receives the result either way; the bool reports a cache hit.
func (s *Service) Cached(ctx context.Context, dest interface{}, fn func() (interface{}, error), analysis string, args ...string) (bool, error) {
	return s.cache.GetOrSet(ctx, redis.AnalysisKey(s.cacheKey, analysis, args...), dest, redis.TTLAnalysis, fn)
}

// Source describes the dataset source
func (s *Service) Source() string {
	return s.source.Describe()
}

// Dataset returns the loaded dataset, loading it on first use
func (s *Service) Dataset(ctx context.Context) (*dataset.Dataset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.datasetLocked(ctx)
}

func (s *Service) datasetLocked(ctx context.Context) (*dataset.Dataset, error) {
	if s.ds != nil {
		return s.ds, nil
	}

	start := time.Now()
	ds, err := s.source.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load dataset from %s: %w", s.source.Describe(), err)
	}
	s.ds = ds

	s.log.Info().
		Str("source", s.source.Describe()).
		Int("rows", ds.Len()).
		Int("columns", len(ds.Names())).
		Dur("elapsed", time.Since(start)).
		Msg("dataset loaded")

	return ds, nil
}

// GetOrBuild returns the latest report, from memory or redis when available.
// The second return value reports whether the report came from a cache.
func (s *Service) GetOrBuild(ctx context.Context) (*contracts.Report, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.latest != nil && s.now().Sub(s.latestAt) < s.ttl {
		return s.latest, true, nil
	}
	s.latest = nil

	var cached contracts.Report
	found, err := s.cache.Get(ctx, redis.ReportKey(s.cacheKey), &cached)
	if err != nil {
		s.log.Warn().Err(err).Msg("report cache read failed")
	}
	if found {
		// 메모리 유효기간은 redis에 저장된 리포트의 생성 시각 기준
		s.latest = &cached
		s.latestAt = cached.GeneratedAt
		return s.latest, true, nil
	}

	rep, err := s.buildLocked(ctx)
	if err != nil {
		return nil, false, err
	}
	return rep, false, nil
}

// Refresh reloads the dataset from the source and rebuilds the report
func (s *Service) Refresh(ctx context.Context) (*contracts.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ds = nil
	return s.buildLocked(ctx)
}

// buildLocked builds, stores and caches a report; s.mu must be held
func (s *Service) buildLocked(ctx context.Context) (*contracts.Report, error) {
	ds, err := s.datasetLocked(ctx)
	if err != nil {
		return nil, err
	}

	rep, err := s.builder.Build(ctx, ds, s.profile)
	if err != nil {
		return nil, err
	}
	s.latest = rep
	s.latestAt = s.now()

	// 캐시 실패는 리포트 실패가 아님
	if err := s.cache.Set(ctx, redis.ReportKey(s.cacheKey), rep, s.ttl); err != nil {
		s.log.Warn().Err(err).Msg("report cache write failed")
	}
	return rep, nil
}

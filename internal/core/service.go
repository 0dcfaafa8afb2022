package core

import (
	"context"
	"time"

	"github.com/JonMunkholm/bizsight/internal/auth"
	"github.com/JonMunkholm/bizsight/internal/cache"
	"github.com/JonMunkholm/bizsight/internal/config"
	"github.com/JonMunkholm/bizsight/internal/store"
)

// Service is the entry point for every BizSight operation. The HTTP server,
// the CLI and the Lambda handler all drive the same Service.
type Service struct {
	store   store.Store
	cache   cache.ProductCache
	tokens  *auth.Tokens
	limiter *UploadLimiter
	opts    Options
	now     func() time.Time
}

// Options are the Service settings taken from config.
type Options struct {
	TempDir           string
	MaxFileSize       int64
	PositionalHeaders bool
	ImportTimeout     time.Duration
	HistoryLimit      int
}

// NewService wires a Service from cfg. A nil cache disables caching.
func NewService(st store.Store, pc cache.ProductCache, cfg *config.Config) *Service {
	if pc == nil {
		pc = cache.Nop{}
	}
	return &Service{
		store:   st,
		cache:   pc,
		tokens:  auth.NewTokens(cfg.Auth.TokenSecret, cfg.Auth.TokenTTL),
		limiter: NewUploadLimiter(cfg.Upload.MaxConcurrent, cfg.Upload.MaxWaitTime),
		opts: Options{
			TempDir:           cfg.Upload.TempDir,
			MaxFileSize:       cfg.Upload.MaxFileSize,
			PositionalHeaders: cfg.Import.PositionalHeaders,
			ImportTimeout:     cfg.Upload.Timeout,
			HistoryLimit:      cfg.Import.HistoryLimit,
		},
		now: time.Now,
	}
}

// Tokens verifies and issues bearer tokens.
func (s *Service) Tokens() *auth.Tokens {
	return s.tokens
}

// Limiter exposes the import limiter for health reporting and shutdown.
func (s *Service) Limiter() *UploadLimiter {
	return s.limiter
}

// Ping checks the store is reachable.
func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// SetClock replaces the time source. Tests only.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// Package app is the composition root shared by the HTTP server and the CLI.
package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/commu-practical/helpmap/internal/config"
	"github.com/commu-practical/helpmap/internal/db"
	"github.com/commu-practical/helpmap/internal/db/goredis"
	"github.com/commu-practical/helpmap/internal/db/memory"
	dbRedis "github.com/commu-practical/helpmap/internal/db/redis"
	"github.com/commu-practical/helpmap/internal/repository/lock"
	"github.com/commu-practical/helpmap/internal/repository/noticecache"
	"github.com/commu-practical/helpmap/internal/repository/summarycache"
	"github.com/commu-practical/helpmap/internal/transport/bedrock"
	"github.com/commu-practical/helpmap/internal/transport/commu"
	"github.com/commu-practical/helpmap/internal/transport/geocoding"
	openaiGen "github.com/commu-practical/helpmap/internal/transport/openai"
	"github.com/commu-practical/helpmap/internal/usecase/area"
	healthuc "github.com/commu-practical/helpmap/internal/usecase/health"
	locationuc "github.com/commu-practical/helpmap/internal/usecase/location"
	noticeuc "github.com/commu-practical/helpmap/internal/usecase/notice"
	summaryuc "github.com/commu-practical/helpmap/internal/usecase/summary"
	"github.com/commu-practical/helpmap/internal/version"
)

// App holds the wired services.
type App struct {
	Store  db.Store
	Areas  *area.Service
	Health *healthuc.Service
}

// Close releases the store connection.
func (a *App) Close() {
	if a.Store != nil {
		a.Store.Close()
	}
}

// Build wires every component from cfg. The store must be reachable
// within the configured readiness timeout.
func Build(ctx context.Context, cfg config.Config, logger *zap.Logger) (*App, error) {
	store, err := NewStore(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("create store: %w", err)
	}
	readiness := time.Duration(cfg.Database.ReadinessTimeout) * time.Second
	if err := store.WaitForReady(ctx, readiness); err != nil {
		store.Close()
		return nil, fmt.Errorf("store not ready: %w", err)
	}

	generator, err := newGenerator(ctx, cfg.Summary)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("create generator: %w", err)
	}

	resolver := locationuc.New(cfg.Geocoding.CountryCodes, logger, geocodingProviders(cfg.Geocoding)...)

	commuClient := commu.NewClient(commu.Config{
		Endpoint:      cfg.Notices.Endpoint,
		BearerToken:   cfg.Notices.BearerToken,
		Timeout:       time.Duration(cfg.Notices.TimeoutSec) * time.Second,
		RetryAttempts: cfg.Notices.RetryAttempts,
		RetryDelay:    cfg.Notices.RetrySleep(),
		UserAgent:     version.UserAgentSuffix(),
		Logger:        logger,
	})
	notices := noticeuc.New(
		commuClient,
		noticecache.New(store, cfg.Notices.NoticeCacheTTL(), logger),
		noticeuc.Config{
			DefaultDistanceKm: cfg.Notices.DistanceKm,
			PageSize:          cfg.Notices.PageSize,
			RecentDays:        cfg.Notices.RecentDays,
		},
		logger,
	)

	summaries := summaryuc.New(
		summarycache.New(store, cfg.Summary.CacheTTL(), logger),
		lock.New(store, logger),
		generator,
		summaryuc.Config{
			Model:          cfg.Summary.ModelID,
			PromptVersion:  cfg.Summary.PromptVersion,
			LockWait:       cfg.Summary.LockWait(),
			RetryAttempts:  cfg.Summary.RetryAttempts,
			RetryDelay:     cfg.Summary.RetrySleep(),
			AttemptTimeout: cfg.Summary.Timeout(),
		},
		logger,
	)

	// Pass a nil interface, not a typed nil, when the provider has no probe.
	var checker healthuc.GeneratorChecker
	if hc, ok := generator.(healthuc.GeneratorChecker); ok {
		checker = hc
	}

	return &App{
		Store:  store,
		Areas:  area.New(resolver, notices, summaries, logger),
		Health: healthuc.New(store, checker),
	}, nil
}

// NewStore creates the cache/lock store for the configured driver.
func NewStore(cfg config.DatabaseConfig) (db.Store, error) {
	switch cfg.Driver {
	case "redis", "valkey":
		return dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Addrs,
			Password: cfg.Password,
			DB:       cfg.DB,
		})
	case "goredis":
		if len(cfg.Addrs) == 0 {
			return nil, fmt.Errorf("addrs is required")
		}
		return goredis.NewStore(goredis.Config{
			Addr:     cfg.Addrs[0],
			Password: cfg.Password,
			DB:       cfg.DB,
		})
	case "memory":
		return memory.NewStore(), nil
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
}

func newGenerator(ctx context.Context, cfg config.SummaryConfig) (summaryuc.Generator, error) {
	timeout := cfg.Timeout()
	switch cfg.Provider {
	case "openai":
		return openaiGen.NewGenerator(&openaiGen.Config{
			APIKey:      cfg.OpenAI.APIKey,
			BaseURL:     cfg.OpenAI.BaseURL,
			Model:       cfg.ModelID,
			MaxTokens:   cfg.MaxTokens,
			Temperature: *cfg.Temperature,
			Timeout:     timeout,
		}), nil
	case "bedrock":
		g, err := bedrock.NewGenerator(ctx, bedrock.Config{
			Region:          cfg.Bedrock.Region,
			AccessKeyID:     cfg.Bedrock.AccessKeyID,
			SecretAccessKey: cfg.Bedrock.SecretAccessKey,
			ModelID:         cfg.ModelID,
			MaxTokens:       cfg.MaxTokens,
			Temperature:     *cfg.Temperature,
			TopK:            cfg.TopK,
			Timeout:         timeout,
		})
		if err != nil {
			return nil, err
		}
		return g, nil
	default:
		return nil, fmt.Errorf("unknown summary provider %q", cfg.Provider)
	}
}

// geocodingProviders builds the provider chain; empty endpoints are skipped.
func geocodingProviders(cfg config.GeocodingConfig) []locationuc.Provider {
	base := geocoding.Config{
		UserAgent: cfg.UserAgent,
		Timeout:   time.Duration(cfg.TimeoutSec) * time.Second,
	}

	var providers []locationuc.Provider
	if cfg.Endpoint != "" {
		c := base
		c.Endpoint = cfg.Endpoint
		providers = append(providers, geocoding.NewNominatim(c))
	}
	if cfg.FallbackEndpoint != "" {
		c := base
		c.Endpoint = cfg.FallbackEndpoint
		providers = append(providers, geocoding.NewOpenMeteo(c))
	}
	return providers
}

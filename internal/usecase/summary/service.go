package summary

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/commu-practical/helpmap/internal/domain"
	"github.com/commu-practical/helpmap/internal/domain/notice"
	"github.com/commu-practical/helpmap/internal/logger"
)

// Texts returned in place of a generated summary.
const (
	NotEnoughData    = "Not enough recent help post data to produce a reliable area summary."
	EmptyResponse    = "Summary could not be generated from Bedrock response."
	BeingPrepared    = "Summary is being prepared. Please try again."
	GenerationFailed = "Bedrock summary unavailable right now. Check AWS credentials/model access and try again."
)

const (
	// lockExpiryHeadroom is added on top of the worst-case critical section.
	lockExpiryHeadroom = 2 * time.Second

	defaultAttemptTimeout = 30 * time.Second
)

// Config holds summary generation settings.
type Config struct {
	Model         string
	PromptVersion string
	RetryAttempts int
	RetryDelay    time.Duration
	// LockWait bounds how long a caller waits for another holder.
	LockWait time.Duration
	// AttemptTimeout bounds a single generator call.
	AttemptTimeout time.Duration
}

// lockTTL covers every generation attempt and the delays between them,
// so the lock cannot expire while its holder is still generating.
func (c Config) lockTTL() time.Duration {
	attempts := time.Duration(c.RetryAttempts)
	ttl := attempts*c.AttemptTimeout + (attempts-1)*c.RetryDelay + lockExpiryHeadroom
	return max(ttl, c.LockWait+lockExpiryHeadroom)
}

// Service produces cached, lock-guarded area summaries.
type Service struct {
	cache     Cache
	locker    Locker
	generator Generator
	cfg       Config
	logger    *zap.Logger
}

// New creates a summary service.
func New(cache Cache, locker Locker, generator Generator, cfg Config, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.RetryAttempts < 1 {
		cfg.RetryAttempts = 1
	}
	if cfg.LockWait < time.Second {
		cfg.LockWait = time.Second
	}
	if cfg.RetryDelay < 0 {
		cfg.RetryDelay = 0
	}
	if cfg.AttemptTimeout <= 0 {
		cfg.AttemptTimeout = defaultAttemptTimeout
	}
	return &Service{cache: cache, locker: locker, generator: generator, cfg: cfg, logger: log}
}

// Summarize returns a short summary of notices for town. It never fails:
// every error path maps to a fixed explanatory text.
func (s *Service) Summarize(ctx context.Context, notices []notice.Notice, town string) string {
	if len(notices) == 0 {
		return NotEnoughData
	}
	log := logger.FromContext(ctx, s.logger)

	payload := buildPayload(notices)
	key, err := cacheKey(town, s.cfg.Model, s.cfg.PromptVersion, payload)
	if err != nil {
		log.Error("Failed to derive summary key", zap.Error(err))
		return GenerationFailed
	}

	if cached, ok := s.cache.Get(ctx, key); ok {
		return cached
	}

	text, err := s.generateLocked(ctx, key, town, payload)
	switch {
	case err == nil:
		return text
	case errors.Is(err, domain.ErrLockTimeout):
		log.Info("Summary lock wait exceeded", zap.String("town", town))
		if cached, ok := s.cache.Get(ctx, key); ok {
			return cached
		}
		return BeingPrepared
	default:
		log.Error("Summary generation failed", zap.String("town", town), zap.Error(err))
		return GenerationFailed
	}
}

// generateLocked runs the critical section under the per-key lock.
func (s *Service) generateLocked(ctx context.Context, key, town string, payload []payloadNotice) (string, error) {
	lease, err := s.locker.Acquire(ctx, "lock:"+key, s.cfg.lockTTL(), s.cfg.LockWait)
	if err != nil {
		return "", err
	}
	defer lease.Release(ctx)

	if cached, ok := s.cache.Get(ctx, key); ok {
		return cached, nil
	}

	prompt, err := renderPrompt(town, payload)
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrGenerationFailure, err)
	}

	raw, err := s.generate(ctx, prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(raw) == "" {
		raw = EmptyResponse
	}

	summary := clean(raw)
	s.cache.Put(ctx, key, summary)
	return summary, nil
}

// generate calls the generator with bounded retries at a fixed delay.
func (s *Service) generate(ctx context.Context, prompt string) (string, error) {
	if s.generator == nil {
		return "", fmt.Errorf("%w: no generator configured", domain.ErrGenerationFailure)
	}

	var lastErr error
	for attempt := 1; attempt <= s.cfg.RetryAttempts; attempt++ {
		text, err := s.attempt(ctx, prompt)
		if err == nil {
			return text, nil
		}
		lastErr = err
		logger.FromContext(ctx, s.logger).Warn("Summary generation attempt failed",
			zap.String("provider", s.generator.Name()),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)

		if attempt < s.cfg.RetryAttempts {
			if err := sleep(ctx, s.cfg.RetryDelay); err != nil {
				lastErr = err
				break
			}
		}
	}
	return "", fmt.Errorf("%w: %w", domain.ErrGenerationFailure, lastErr)
}

// attempt runs one generator call within AttemptTimeout.
func (s *Service) attempt(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.AttemptTimeout)
	defer cancel()
	return s.generator.Generate(ctx, prompt)
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

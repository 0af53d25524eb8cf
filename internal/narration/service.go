package narration

import (
	"context"
	"fmt"
	"time"
	"unicode"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/tatianab/arena-of-gods/internal/combat"
	"github.com/tatianab/arena-of-gods/internal/models"
)

const (
	DefaultTimeout = 4 * time.Second
	DefaultRetries = 1
	DefaultBackoff = 500 * time.Millisecond

	varyChance = 0.3
)

var varyPrefixes = []string{
	"Once again, ",
	"In a fierce exchange, ",
	"Continuing the battle, ",
}

// Service narrates exchanges through a Generator, caching good outcomes and
// falling back to the local formula on any failure.
type Service struct {
	gen     Generator
	cache   *outcomeCache
	rng     combat.Source
	logger  *zap.Logger
	timeout time.Duration
	retries int
	backoff time.Duration
}

// Option configures a Service.
type Option func(*Service)

func WithTimeout(d time.Duration) Option { return func(s *Service) { s.timeout = d } }

func WithRetries(n int) Option { return func(s *Service) { s.retries = max(0, n) } }

func WithBackoff(d time.Duration) Option { return func(s *Service) { s.backoff = d } }

func WithCacheSize(n int) Option { return func(s *Service) { s.cache = newOutcomeCache(n) } }

func WithRand(rng combat.Source) Option { return func(s *Service) { s.rng = rng } }

func WithLogger(l *zap.Logger) Option { return func(s *Service) { s.logger = l } }

func NewService(gen Generator, opts ...Option) *Service {
	s := &Service{
		gen:     gen,
		cache:   newOutcomeCache(DefaultCacheSize),
		logger:  zap.NewNop(),
		timeout: DefaultTimeout,
		retries: DefaultRetries,
		backoff: DefaultBackoff,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.rng = lockSource(s.rng)
	return s
}

// CacheSize reports how many outcomes are cached.
func (s *Service) CacheSize() int {
	return s.cache.size()
}

func (s *Service) Resolve(ctx context.Context, cc models.CombatContext) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			res = s.fallback(cc, fmt.Errorf("narration panic: %v", r))
		}
	}()

	key := CacheKey(cc)
	if cached, ok := s.cache.lookup(key); ok {
		cached.Narrative = s.vary(cached.Narrative)
		s.logger.Debug("narration cache hit", zap.String("key", key))
		return Result{Outcome: cached, Cached: true}
	}

	prompt, err := BuildPrompt(cc)
	if err != nil {
		return s.fallback(cc, fmt.Errorf("build prompt: %w", err))
	}

	text, err := s.call(ctx, prompt)
	if err != nil {
		return s.fallback(cc, err)
	}

	outcome, err := ParseOutcome(text, cc.Attacker.Attributes)
	if err != nil {
		return s.fallback(cc, fmt.Errorf("parse Gemini response: %w", err))
	}

	s.cache.store(key, outcome)
	return Result{Outcome: outcome}
}

// call makes the remote request, retrying transient failures after a fixed
// backoff. Rate-limit and quota errors are returned immediately.
func (s *Service) call(ctx context.Context, prompt string) (string, error) {
	var lastErr error
	for attempt := 0; attempt <= s.retries; attempt++ {
		if attempt > 0 {
			s.logger.Info("retrying narration", zap.Int("attempt", attempt+1), zap.Error(lastErr))
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(s.backoff):
			}
		}

		text, err := s.attempt(ctx, prompt)
		if err == nil {
			return text, nil
		}
		if fastFail(err) || ctx.Err() != nil {
			return "", err
		}
		lastErr = err
	}
	return "", lastErr
}

func (s *Service) attempt(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.gen.Generate(ctx, prompt)
}

func (s *Service) fallback(cc models.CombatContext, err error) Result {
	s.logger.Warn("Gemini narration failed, using local formula",
		zap.String("attacker", cc.Attacker.ID),
		zap.String("defender", cc.Defender.ID),
		zap.Error(err))
	return Result{
		Outcome:      combat.Resolve(cc, s.rng),
		UsedFallback: true,
		Err:          err,
	}
}

// vary occasionally prefixes a cached narrative so repeats read differently.
func (s *Service) vary(narrative string) string {
	if narrative == "" || s.rng.Float64() >= varyChance {
		return narrative
	}
	prefix := varyPrefixes[s.rng.Intn(len(varyPrefixes))]
	r, size := utf8.DecodeRuneInString(narrative)
	return combat.Truncate(prefix+string(unicode.ToLower(r))+narrative[size:], models.MaxNarrativeLen)
}

var _ Provider = (*Service)(nil)
var _ Provider = (*Local)(nil)

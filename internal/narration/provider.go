// Package narration turns combat contexts into narrated outcomes, either
// through Gemini or through the local formula.
package narration

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/tatianab/arena-of-gods/internal/combat"
	"github.com/tatianab/arena-of-gods/internal/models"
)

// Provider resolves one exchange. Resolve always returns a usable outcome.
type Provider interface {
	Resolve(ctx context.Context, cc models.CombatContext) Result
}

// Result wraps an outcome with how it was produced.
type Result struct {
	Outcome      models.BattleOutcome
	UsedFallback bool
	Cached       bool
	Err          error // cause of the fallback, if any
}

// Local resolves every exchange with the local formula.
type Local struct {
	rng combat.Source
}

// NewLocal returns a local-only provider. A nil rng is seeded from the clock.
func NewLocal(rng combat.Source) *Local {
	return &Local{rng: lockSource(rng)}
}

func (l *Local) Resolve(_ context.Context, cc models.CombatContext) Result {
	return Result{Outcome: combat.Resolve(cc, l.rng), UsedFallback: true}
}

// lockedSource serializes draws from a source shared by concurrent battles.
type lockedSource struct {
	mu  sync.Mutex
	src combat.Source
}

func lockSource(src combat.Source) combat.Source {
	if src == nil {
		src = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if ls, ok := src.(*lockedSource); ok {
		return ls
	}
	return &lockedSource{src: src}
}

func (s *lockedSource) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.src.Float64()
}

func (s *lockedSource) Intn(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.src.Intn(n)
}

package narration

import (
	"fmt"
	"sync"

	"github.com/tatianab/arena-of-gods/internal/models"
)

// DefaultCacheSize bounds the number of remembered remote outcomes.
const DefaultCacheSize = 50

// CacheKey buckets the matchup by halved offensive and defensive stats so that
// near-identical fights share an outcome.
func CacheKey(cc models.CombatContext) string {
	atk := cc.Attacker.Attributes
	def := cc.Defender.Attributes
	return fmt.Sprintf("%s-%d-%d_vs_%s-%d",
		cc.Attacker.ID, atk.Strength/2, atk.Intelligence/2,
		cc.Defender.ID, def.Defense/2)
}

// outcomeCache never evicts; once full it stops accepting inserts and stops
// serving hits.
type outcomeCache struct {
	mu      sync.Mutex
	limit   int
	entries map[string]models.BattleOutcome
}

func newOutcomeCache(limit int) *outcomeCache {
	return &outcomeCache{limit: limit, entries: make(map[string]models.BattleOutcome)}
}

func (c *outcomeCache) lookup(key string) (models.BattleOutcome, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	o, ok := c.entries[key]
	if !ok || len(c.entries) >= c.limit {
		return models.BattleOutcome{}, false
	}
	return o, true
}

func (c *outcomeCache) store(key string, o models.BattleOutcome) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.entries) >= c.limit {
		return
	}
	c.entries[key] = o
}

func (c *outcomeCache) size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

package combat

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tatianab/arena-of-gods/internal/models"
)

// scripted replays fixed Float64 draws and always picks the first template.
type scripted struct {
	floats []float64
	calls  int
}

func (s *scripted) Float64() float64 {
	v := s.floats[s.calls%len(s.floats)]
	s.calls++
	return v
}

func (s *scripted) Intn(int) int { return 0 }

func contextFor(atk, def models.AttributeSet) models.CombatContext {
	return models.CombatContext{
		Attacker:    models.HeroSnapshot{ID: "brutus", Name: "Brutus", Attributes: atk, CurrentHealth: 50, MaxHealth: 50},
		Defender:    models.HeroSnapshot{ID: "lyra", Name: "Lyra", Attributes: def, CurrentHealth: 60, MaxHealth: 60},
		TurnNumber:  1,
		Environment: "forest",
	}
}

func TestResolveCriticalExample(t *testing.T) {
	atk := models.AttributeSet{Strength: 9, Defense: 1, Intelligence: 3, Accuracy: 8, Agility: 1, Stamina: 5}
	def := models.AttributeSet{Strength: 1, Defense: 3, Intelligence: 1, Accuracy: 1, Agility: 2, Stamina: 6}

	assert.Equal(t, 9, BaseDamage(atk))
	assert.Equal(t, 7, CalculatedDamage(atk, def))
	assert.InDelta(t, 0.9, HitChance(atk, def), 1e-9)

	rng := &scripted{floats: []float64{0.1, 0.1}}
	out := Resolve(contextFor(atk, def), rng)

	assert.True(t, out.AttackSuccess)
	assert.True(t, out.CriticalHit)
	assert.Equal(t, models.AttackMelee, out.AttackType)
	assert.Equal(t, 10, out.Damage)
	assert.Equal(t, "Brutus lands a critical hit on Lyra!", out.Narrative)
	assert.Equal(t, 2, rng.calls)
}

func TestResolveMiss(t *testing.T) {
	atk := models.AttributeSet{Strength: 9, Defense: 1, Intelligence: 3, Accuracy: 8, Agility: 1, Stamina: 5}
	def := models.AttributeSet{Strength: 1, Defense: 3, Intelligence: 1, Accuracy: 1, Agility: 2, Stamina: 6}

	rng := &scripted{floats: []float64{0.95}}
	out := Resolve(contextFor(atk, def), rng)

	assert.False(t, out.AttackSuccess)
	assert.False(t, out.CriticalHit)
	assert.Zero(t, out.Damage)
	assert.Equal(t, "Lyra dodges Brutus's attack", out.Narrative)
	assert.Equal(t, 1, rng.calls, "no critical draw after a miss")
}

func TestResolveNoCriticalDrawWhenIneligible(t *testing.T) {
	atk := models.AttributeSet{Strength: 4, Defense: 5, Intelligence: 9, Accuracy: 6, Agility: 6, Stamina: 6}
	def := models.AttributeSet{Strength: 7, Defense: 8, Intelligence: 5, Accuracy: 6, Agility: 5, Stamina: 8}

	rng := &scripted{floats: []float64{0.0}}
	out := Resolve(contextFor(atk, def), rng)

	assert.True(t, out.AttackSuccess)
	assert.False(t, out.CriticalHit)
	assert.Equal(t, models.AttackMagic, out.AttackType)
	// 9 - 8*0.4 = 5.8 -> 5
	assert.Equal(t, 5, out.Damage)
	assert.True(t, strings.HasPrefix(out.Narrative, "Brutus blasts Lyra"))
	assert.Equal(t, 1, rng.calls)
}

func TestCalculatedDamageFloor(t *testing.T) {
	weak := models.Baseline()
	wall := models.Baseline().With(models.Defense, 20)
	assert.Equal(t, models.MinDamage, CalculatedDamage(weak, wall))
}

func TestHitChanceClamped(t *testing.T) {
	sharp := models.Baseline().With(models.Accuracy, 30)
	slow := models.Baseline()
	assert.InDelta(t, 0.95, HitChance(sharp, slow), 1e-9)
	assert.InDelta(t, 0.3, HitChance(slow, sharp.With(models.Agility, 30)), 1e-9)
}

func TestResolveDamageBounds(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 2000; i++ {
		atk := randomAttributes(rng)
		def := randomAttributes(rng)
		out := Resolve(contextFor(atk, def), rng)

		require.NoError(t, out.Validate())
		if out.AttackSuccess {
			assert.GreaterOrEqual(t, out.Damage, models.MinDamage)
			assert.LessOrEqual(t, out.Damage, models.MaxDamage)
		} else {
			assert.Zero(t, out.Damage)
			assert.False(t, out.CriticalHit)
		}
	}
}

func TestDamageCappedAtThirty(t *testing.T) {
	atk := models.AttributeSet{Strength: 40, Defense: 1, Intelligence: 1, Accuracy: 10, Agility: 1, Stamina: 1}
	out := Resolve(contextFor(atk, models.Baseline()), &scripted{floats: []float64{0.0}})
	assert.Equal(t, models.MaxDamage, out.Damage)
}

func TestTruncate(t *testing.T) {
	long := strings.Repeat("é", 100)
	assert.Len(t, []rune(Truncate(long, 80)), 80)
	assert.Equal(t, "hit", Truncate("  hit  ", 80))
}

func randomAttributes(rng *rand.Rand) models.AttributeSet {
	return models.AttributeSet{
		Strength:     1 + rng.Intn(15),
		Defense:      1 + rng.Intn(15),
		Intelligence: 1 + rng.Intn(15),
		Accuracy:     1 + rng.Intn(15),
		Agility:      1 + rng.Intn(15),
		Stamina:      1 + rng.Intn(15),
	}
}

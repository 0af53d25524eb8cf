// Package combat holds the local outcome formula used whenever remote
// narration is unavailable.
package combat

import (
	"math"

	"github.com/tatianab/arena-of-gods/internal/models"
)

// Source is the randomness the formula draws from. *rand.Rand satisfies it.
type Source interface {
	Float64() float64
	Intn(n int) int
}

const (
	baseHitChance     = 0.6
	hitChancePerPoint = 0.05
	minHitChance      = 0.3
	maxHitChance      = 0.95
	defenseFactor     = 0.4
	critChance        = 0.15
	critMultiplier    = 1.5
	critThreshold     = 7
)

// BaseDamage is the attacker's stronger offensive stat.
func BaseDamage(attacker models.AttributeSet) int {
	return max(attacker.Strength, attacker.Intelligence)
}

// CalculatedDamage applies the defender's armor, floored at models.MinDamage.
func CalculatedDamage(attacker, defender models.AttributeSet) int {
	reduced := float64(BaseDamage(attacker)) - float64(defender.Defense)*defenseFactor
	return max(models.MinDamage, int(math.Floor(reduced)))
}

// HitChance is the probability that an attack lands.
func HitChance(attacker, defender models.AttributeSet) float64 {
	chance := baseHitChance + float64(attacker.Accuracy-defender.Agility)*hitChancePerPoint
	return math.Max(minHitChance, math.Min(maxHitChance, chance))
}

// CriticalEligible reports whether an attacker can roll a critical hit at all.
func CriticalEligible(attacker models.AttributeSet) bool {
	return attacker.Accuracy >= critThreshold &&
		(attacker.Strength >= critThreshold || attacker.Intelligence >= critThreshold)
}

// AttackTypeFor picks magic for casters and melee for everyone else.
func AttackTypeFor(attacker models.AttributeSet) models.AttackType {
	if attacker.Intelligence > attacker.Strength {
		return models.AttackMagic
	}
	return models.AttackMelee
}

// Resolve computes one exchange. It draws once for the hit and, only when the
// attacker qualifies, once more for the critical. Health is left untouched.
func Resolve(cc models.CombatContext, rng Source) models.BattleOutcome {
	atk := cc.Attacker.Attributes
	def := cc.Defender.Attributes

	damage := CalculatedDamage(atk, def)
	success := rng.Float64() < HitChance(atk, def)
	attackType := AttackTypeFor(atk)
	critical := success && CriticalEligible(atk) && rng.Float64() < critChance

	final := 0
	if success {
		final = damage
		if critical {
			final = int(math.Floor(float64(damage) * critMultiplier))
		}
	}
	final = min(final, models.MaxDamage)

	return models.BattleOutcome{
		Narrative:     narrate(cc, rng, success, critical, attackType),
		Damage:        final,
		AttackSuccess: success,
		CriticalHit:   critical,
		AttackType:    attackType,
	}
}

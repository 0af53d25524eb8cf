package models

import "fmt"

const (
	MinDamage       = 3
	MaxDamage       = 30
	MaxNarrativeLen = 80
)

// AttackType classifies how an exchange was fought.
type AttackType string

const (
	AttackMelee   AttackType = "melee"
	AttackRanged  AttackType = "ranged"
	AttackMagic   AttackType = "magic"
	AttackDefense AttackType = "defense"
)

// Valid reports whether t is one of the known attack types.
func (t AttackType) Valid() bool {
	switch t {
	case AttackMelee, AttackRanged, AttackMagic, AttackDefense:
		return true
	}
	return false
}

// BattleOutcome is the resolved result of one exchange.
type BattleOutcome struct {
	Narrative     string     `yaml:"narrative" json:"narrative"`
	Damage        int        `yaml:"damage" json:"damage"`
	AttackSuccess bool       `yaml:"attack_success" json:"attackSuccess"`
	CriticalHit   bool       `yaml:"critical_hit" json:"criticalHit"`
	AttackType    AttackType `yaml:"attack_type" json:"attackType"`
}

// Validate checks the outcome invariants. Remote outcomes are sanitized to
// damage in [3,30] even on a miss, so a miss only bounds damage from above.
func (o BattleOutcome) Validate() error {
	if o.Narrative == "" {
		return fmt.Errorf("empty narrative")
	}
	if len([]rune(o.Narrative)) > MaxNarrativeLen {
		return fmt.Errorf("narrative longer than %d characters", MaxNarrativeLen)
	}
	if o.Damage < 0 || o.Damage > MaxDamage {
		return fmt.Errorf("damage %d outside [0,%d]", o.Damage, MaxDamage)
	}
	if o.AttackSuccess && o.Damage < MinDamage {
		return fmt.Errorf("landed attack with damage %d below %d", o.Damage, MinDamage)
	}
	if o.CriticalHit && !o.AttackSuccess {
		return fmt.Errorf("critical hit on a missed attack")
	}
	if !o.AttackType.Valid() {
		return fmt.Errorf("unknown attack type %q", o.AttackType)
	}
	return nil
}

// EffectiveDamage is the health a defender loses from this outcome.
func (o BattleOutcome) EffectiveDamage() int {
	if !o.AttackSuccess {
		return 0
	}
	return o.Damage
}

package combat

import (
	"strings"

	"github.com/tatianab/arena-of-gods/internal/models"
)

// Placeholders: {a} attacker, {d} defender.
var (
	missTemplates = []string{
		"{d} dodges {a}'s attack",
		"{a} misses {d}",
		"{d} blocks {a}'s strike",
	}
	critTemplates = []string{
		"{a} lands a critical hit on {d}!",
		"{a} strikes {d} critically!",
		"{d} takes a brutal hit from {a}!",
	}
	magicTemplates = []string{
		"{a} blasts {d} with magic",
		"{a} casts a spell on {d}",
		"{d} takes magical damage from {a}",
	}
	meleeTemplates = []string{
		"{a} strikes {d}",
		"{a} hits {d} hard",
		"{d} takes damage from {a}",
	}
)

func narrate(cc models.CombatContext, rng Source, success, critical bool, attackType models.AttackType) string {
	var bucket []string
	switch {
	case !success:
		bucket = missTemplates
	case critical:
		bucket = critTemplates
	case attackType == models.AttackMagic:
		bucket = magicTemplates
	default:
		bucket = meleeTemplates
	}
	tmpl := bucket[rng.Intn(len(bucket))]
	r := strings.NewReplacer("{a}", displayName(cc.Attacker), "{d}", displayName(cc.Defender))
	return Truncate(r.Replace(tmpl), models.MaxNarrativeLen)
}

func displayName(h models.HeroSnapshot) string {
	if h.Name != "" {
		return h.Name
	}
	return h.ID
}

// Truncate trims s and cuts it to at most n runes.
func Truncate(s string, n int) string {
	r := []rune(strings.TrimSpace(s))
	if len(r) > n {
		r = r[:n]
	}
	return strings.TrimSpace(string(r))
}

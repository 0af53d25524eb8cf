package narration

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/tatianab/arena-of-gods/internal/combat"
	"github.com/tatianab/arena-of-gods/internal/models"
)

var (
	ErrNoJSON         = errors.New("no JSON object in response")
	ErrInvalidOutcome = errors.New("invalid outcome structure")
)

// ExtractObject returns the first balanced JSON object in text, skipping any
// prose or code fences around it.
func ExtractObject(text string) (string, bool) {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return "", false
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1], true
			}
		}
	}
	return "", false
}

// ParseOutcome validates and sanitizes a model response. The attacker's stats
// fill in an attack type the model left out or made up.
func ParseOutcome(text string, attacker models.AttributeSet) (models.BattleOutcome, error) {
	raw, ok := ExtractObject(text)
	if !ok {
		return models.BattleOutcome{}, ErrNoJSON
	}
	if !gjson.Valid(raw) {
		return models.BattleOutcome{}, fmt.Errorf("%w: malformed JSON", ErrInvalidOutcome)
	}

	fields := gjson.GetMany(raw, "narrative", "damage", "attackSuccess", "criticalHit", "attackType")
	narrative, damage, success, critical, attackType := fields[0], fields[1], fields[2], fields[3], fields[4]

	if narrative.Type != gjson.String || strings.TrimSpace(narrative.Str) == "" {
		return models.BattleOutcome{}, fmt.Errorf("%w: missing narrative", ErrInvalidOutcome)
	}
	if damage.Type != gjson.Number {
		return models.BattleOutcome{}, fmt.Errorf("%w: damage is not a number", ErrInvalidOutcome)
	}

	out := models.BattleOutcome{
		Narrative:     combat.Truncate(narrative.Str, models.MaxNarrativeLen),
		Damage:        clampDamage(damage.Num),
		AttackSuccess: true,
		AttackType:    models.AttackType(attackType.Str),
	}
	if success.Exists() {
		out.AttackSuccess = success.Bool()
	}
	out.CriticalHit = out.AttackSuccess && critical.Bool()
	if !out.AttackType.Valid() {
		out.AttackType = combat.AttackTypeFor(attacker)
	}
	return out, nil
}

func clampDamage(v float64) int {
	if math.IsNaN(v) {
		return models.MinDamage
	}
	v = math.Floor(v)
	v = math.Max(models.MinDamage, math.Min(models.MaxDamage, v))
	return int(v)
}

package models

import (
	"errors"
	"fmt"
)

// TeamSize is the number of heroes each player brings into the arena.
const TeamSize = 5

// HealthPerStamina converts stamina into maximum health.
const HealthPerStamina = 10

var (
	ErrStatBelowFloor = errors.New("attribute below 1")
	ErrTeamSize       = errors.New("team must have exactly five members")
	ErrDuplicateID    = errors.New("duplicate combatant id")
	ErrTeamDefeated   = errors.New("team has no living members")
)

// Stat names one of the six hero attributes.
type Stat string

const (
	Strength     Stat = "strength"
	Defense      Stat = "defense"
	Intelligence Stat = "intelligence"
	Accuracy     Stat = "accuracy"
	Agility      Stat = "agility"
	Stamina      Stat = "stamina"
)

// Stats lists the attributes in display order.
var Stats = []Stat{Strength, Defense, Intelligence, Accuracy, Agility, Stamina}

// ParseStat accepts a full stat name or its three letter abbreviation.
func ParseStat(s string) (Stat, error) {
	switch s {
	case "strength", "str", "STR":
		return Strength, nil
	case "defense", "def", "DEF":
		return Defense, nil
	case "intelligence", "int", "INT":
		return Intelligence, nil
	case "accuracy", "acc", "ACC":
		return Accuracy, nil
	case "agility", "agi", "AGI":
		return Agility, nil
	case "stamina", "sta", "STA":
		return Stamina, nil
	}
	return "", fmt.Errorf("unknown stat %q", s)
}

// AttributeSet is the six-stat record behind every hero.
type AttributeSet struct {
	Strength     int `yaml:"strength" json:"strength"`
	Defense      int `yaml:"defense" json:"defense"`
	Intelligence int `yaml:"intelligence" json:"intelligence"`
	Accuracy     int `yaml:"accuracy" json:"accuracy"`
	Agility      int `yaml:"agility" json:"agility"`
	Stamina      int `yaml:"stamina" json:"stamina"`
}

// Baseline is the starting allocation of a hero with no points spent.
func Baseline() AttributeSet {
	return AttributeSet{1, 1, 1, 1, 1, 1}
}

// Get returns the value of a single stat.
func (a AttributeSet) Get(s Stat) int {
	switch s {
	case Strength:
		return a.Strength
	case Defense:
		return a.Defense
	case Intelligence:
		return a.Intelligence
	case Accuracy:
		return a.Accuracy
	case Agility:
		return a.Agility
	case Stamina:
		return a.Stamina
	default:
		return 0
	}
}

// With returns a copy of a with stat s set to v.
func (a AttributeSet) With(s Stat, v int) AttributeSet {
	switch s {
	case Strength:
		a.Strength = v
	case Defense:
		a.Defense = v
	case Intelligence:
		a.Intelligence = v
	case Accuracy:
		a.Accuracy = v
	case Agility:
		a.Agility = v
	case Stamina:
		a.Stamina = v
	}
	return a
}

// Total is the sum of all six stats.
func (a AttributeSet) Total() int {
	return a.Strength + a.Defense + a.Intelligence + a.Accuracy + a.Agility + a.Stamina
}

// Validate reports the first stat below 1.
func (a AttributeSet) Validate() error {
	for _, s := range Stats {
		if a.Get(s) < 1 {
			return fmt.Errorf("%s=%d: %w", s, a.Get(s), ErrStatBelowFloor)
		}
	}
	return nil
}

// HeroProfile is a roster entry: identity, flavor and default attributes.
type HeroProfile struct {
	ID                string       `yaml:"id"`
	Name              string       `yaml:"name"`      // e.g. "Kael"
	FullName          string       `yaml:"full_name"` // e.g. "Kael the Vanguard"
	Overview          string       `yaml:"overview"`
	Appearance        string       `yaml:"appearance"`
	DefaultAttributes AttributeSet `yaml:"default_attributes"`
}

// Combatant is one hero instance with live health inside a battle.
type Combatant struct {
	ID            string       `yaml:"id"`
	Name          string       `yaml:"name"`
	FullName      string       `yaml:"full_name"`
	Overview      string       `yaml:"overview,omitempty"`
	Appearance    string       `yaml:"appearance,omitempty"`
	Attributes    AttributeSet `yaml:"attributes"`
	CurrentHealth int          `yaml:"current_health"`
	MaxHealth     int          `yaml:"max_health"`
}

// NewCombatant binds a hero profile to an allocated attribute set at full health.
func NewCombatant(hero HeroProfile, attrs AttributeSet) (Combatant, error) {
	if err := attrs.Validate(); err != nil {
		return Combatant{}, fmt.Errorf("hero %s: %w", hero.ID, err)
	}
	maxHealth := attrs.Stamina * HealthPerStamina
	return Combatant{
		ID:            hero.ID,
		Name:          hero.Name,
		FullName:      hero.FullName,
		Overview:      hero.Overview,
		Appearance:    hero.Appearance,
		Attributes:    attrs,
		CurrentHealth: maxHealth,
		MaxHealth:     maxHealth,
	}, nil
}

// Alive reports whether the combatant can still act or be targeted.
func (c *Combatant) Alive() bool {
	return c.CurrentHealth > 0
}

// ApplyDamage removes up to n health, never going below zero, and returns the
// amount actually removed.
func (c *Combatant) ApplyDamage(n int) int {
	if n <= 0 {
		return 0
	}
	if n > c.CurrentHealth {
		n = c.CurrentHealth
	}
	c.CurrentHealth -= n
	return n
}

// Snapshot captures the combatant for a single exchange.
func (c *Combatant) Snapshot() HeroSnapshot {
	return HeroSnapshot{
		ID:            c.ID,
		Name:          c.Name,
		FullName:      c.FullName,
		Overview:      c.Overview,
		Appearance:    c.Appearance,
		Attributes:    c.Attributes,
		CurrentHealth: c.CurrentHealth,
		MaxHealth:     c.MaxHealth,
	}
}

// Team is one player's ordered roster of combatants.
type Team struct {
	Owner   string      `yaml:"owner"`
	Members []Combatant `yaml:"members"`
}

// Alive reports whether at least one member still has health.
func (t *Team) Alive() bool {
	for i := range t.Members {
		if t.Members[i].Alive() {
			return true
		}
	}
	return false
}

// Living returns the members that can still be selected.
func (t *Team) Living() []*Combatant {
	var out []*Combatant
	for i := range t.Members {
		if t.Members[i].Alive() {
			out = append(out, &t.Members[i])
		}
	}
	return out
}

// Find returns the member with the given id.
func (t *Team) Find(id string) (*Combatant, bool) {
	for i := range t.Members {
		if t.Members[i].ID == id {
			return &t.Members[i], true
		}
	}
	return nil, false
}

// Validate checks the team is fit to enter battle.
func (t *Team) Validate() error {
	if len(t.Members) != TeamSize {
		return fmt.Errorf("%s has %d members: %w", t.Owner, len(t.Members), ErrTeamSize)
	}
	seen := make(map[string]bool, len(t.Members))
	for _, m := range t.Members {
		if seen[m.ID] {
			return fmt.Errorf("%s: %q: %w", t.Owner, m.ID, ErrDuplicateID)
		}
		seen[m.ID] = true
		if err := m.Attributes.Validate(); err != nil {
			return fmt.Errorf("%s: %s: %w", t.Owner, m.ID, err)
		}
		if m.MaxHealth != m.Attributes.Stamina*HealthPerStamina {
			return fmt.Errorf("%s: %s: max health %d does not match stamina %d", t.Owner, m.ID, m.MaxHealth, m.Attributes.Stamina)
		}
		if m.CurrentHealth < 0 || m.CurrentHealth > m.MaxHealth {
			return fmt.Errorf("%s: %s: health %d outside [0,%d]", t.Owner, m.ID, m.CurrentHealth, m.MaxHealth)
		}
	}
	if !t.Alive() {
		return fmt.Errorf("%s: %w", t.Owner, ErrTeamDefeated)
	}
	return nil
}

// Clone returns a deep copy so the battle never shares members with setup.
func (t *Team) Clone() Team {
	members := make([]Combatant, len(t.Members))
	copy(members, t.Members)
	return Team{Owner: t.Owner, Members: members}
}

// HeroSnapshot is the per-exchange view of a combatant sent to narration.
type HeroSnapshot struct {
	ID            string
	Name          string
	FullName      string
	Overview      string
	Appearance    string
	Attributes    AttributeSet
	CurrentHealth int
	MaxHealth     int
}

// CombatContext describes a single exchange.
type CombatContext struct {
	Attacker    HeroSnapshot
	Defender    HeroSnapshot
	TurnNumber  int
	Environment string
}

// Environments are the arena backdrops; flavor only.
var Environments = []string{"forest", "river", "volcanic_river", "plains", "fortress"}

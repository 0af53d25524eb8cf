// Package setup prepares a player's team before battle by distributing
// attribute points across the roster.
package setup

import (
	"errors"
	"fmt"

	"github.com/tatianab/arena-of-gods/internal/models"
)

var (
	ErrUnknownHero = errors.New("hero not in roster")
	ErrAtFloor     = errors.New("attribute is already at its floor")
	ErrNoCredits   = errors.New("no credits left")
	ErrUnknownStat = errors.New("unknown attribute")
)

// Unlimited is reported by Remaining when no budget applies.
const Unlimited = -1

type options struct {
	budget int
}

// Option configures an Allocator.
type Option func(*options)

// WithBudget starts every hero at its default attributes, which become the
// floor, and charges one credit per point added.
func WithBudget(n int) Option {
	return func(o *options) { o.budget = n }
}

// Allocator tracks one player's attribute choices for the whole roster.
type Allocator struct {
	owner     string
	heroes    []models.HeroProfile
	attrs     map[string]models.AttributeSet
	floors    map[string]models.AttributeSet
	budgeted  bool
	remaining int
}

// NewAllocator seeds every hero of the roster. Without a budget each hero
// starts with every attribute at 1 and points are free.
func NewAllocator(owner string, roster []models.HeroProfile, opts ...Option) (*Allocator, error) {
	o := options{budget: Unlimited}
	for _, opt := range opts {
		opt(&o)
	}
	if len(roster) != models.TeamSize {
		return nil, fmt.Errorf("roster has %d heroes: %w", len(roster), models.ErrTeamSize)
	}
	if o.budget < Unlimited {
		return nil, fmt.Errorf("invalid budget %d", o.budget)
	}

	a := &Allocator{
		owner:     owner,
		heroes:    append([]models.HeroProfile(nil), roster...),
		attrs:     make(map[string]models.AttributeSet, len(roster)),
		floors:    make(map[string]models.AttributeSet, len(roster)),
		budgeted:  o.budget != Unlimited,
		remaining: o.budget,
	}
	for _, h := range roster {
		if _, dup := a.attrs[h.ID]; dup {
			return nil, fmt.Errorf("%q: %w", h.ID, models.ErrDuplicateID)
		}
		start := models.Baseline()
		if a.budgeted {
			if err := h.DefaultAttributes.Validate(); err != nil {
				return nil, fmt.Errorf("hero %s: %w", h.ID, err)
			}
			start = h.DefaultAttributes
		}
		a.attrs[h.ID] = start
		a.floors[h.ID] = start
	}
	return a, nil
}

// Owner is the player the team is built for.
func (a *Allocator) Owner() string { return a.owner }

// Heroes returns the roster in selection order.
func (a *Allocator) Heroes() []models.HeroProfile {
	return append([]models.HeroProfile(nil), a.heroes...)
}

// Increment adds one point to a hero's stat.
func (a *Allocator) Increment(heroID string, stat models.Stat) error {
	cur, err := a.lookup(heroID, stat)
	if err != nil {
		return err
	}
	if a.budgeted && a.remaining == 0 {
		return ErrNoCredits
	}
	a.attrs[heroID] = cur.With(stat, cur.Get(stat)+1)
	if a.budgeted {
		a.remaining--
	}
	return nil
}

// Decrement removes one point from a hero's stat, refunding a credit in
// budget mode. A stat never drops below its floor.
func (a *Allocator) Decrement(heroID string, stat models.Stat) error {
	cur, err := a.lookup(heroID, stat)
	if err != nil {
		return err
	}
	if cur.Get(stat) <= a.floors[heroID].Get(stat) {
		return fmt.Errorf("%s %s: %w", heroID, stat, ErrAtFloor)
	}
	a.attrs[heroID] = cur.With(stat, cur.Get(stat)-1)
	if a.budgeted {
		a.remaining++
	}
	return nil
}

func (a *Allocator) lookup(heroID string, stat models.Stat) (models.AttributeSet, error) {
	cur, ok := a.attrs[heroID]
	if !ok {
		return cur, fmt.Errorf("%q: %w", heroID, ErrUnknownHero)
	}
	for _, s := range models.Stats {
		if s == stat {
			return cur, nil
		}
	}
	return cur, fmt.Errorf("%q: %w", stat, ErrUnknownStat)
}

// Remaining returns the unspent credits, or Unlimited.
func (a *Allocator) Remaining() int {
	return a.remaining
}

// Attributes returns a hero's current allocation.
func (a *Allocator) Attributes(heroID string) (models.AttributeSet, bool) {
	attrs, ok := a.attrs[heroID]
	return attrs, ok
}

// Team finalizes the allocation into five combatants at full health.
func (a *Allocator) Team() (models.Team, error) {
	team := models.Team{Owner: a.owner}
	for _, h := range a.heroes {
		c, err := models.NewCombatant(h, a.attrs[h.ID])
		if err != nil {
			return models.Team{}, err
		}
		team.Members = append(team.Members, c)
	}
	if err := team.Validate(); err != nil {
		return models.Team{}, err
	}
	return team, nil
}

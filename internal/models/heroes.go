package models

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed heroes.yaml
var heroesYAML []byte

var roster []HeroProfile

func init() {
	if err := yaml.Unmarshal(heroesYAML, &roster); err != nil {
		panic(fmt.Sprintf("parse embedded hero roster: %v", err))
	}
}

// Roster returns the playable heroes in selection order.
func Roster() []HeroProfile {
	out := make([]HeroProfile, len(roster))
	copy(out, roster)
	return out
}

// Hero looks up a roster entry by id.
func Hero(id string) (HeroProfile, bool) {
	for _, h := range roster {
		if h.ID == id {
			return h, true
		}
	}
	return HeroProfile{}, false
}

// DefaultTeam builds a team from the roster at default attributes.
func DefaultTeam(owner string) (Team, error) {
	team := Team{Owner: owner}
	for _, h := range roster {
		c, err := NewCombatant(h, h.DefaultAttributes)
		if err != nil {
			return Team{}, err
		}
		team.Members = append(team.Members, c)
	}
	return team, nil
}

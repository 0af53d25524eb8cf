package models

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRosterLoaded(t *testing.T) {
	heroes := Roster()
	require.Len(t, heroes, TeamSize)

	brutus, ok := Hero("brutus")
	require.True(t, ok)
	assert.Equal(t, "Brutus", brutus.Name)
	assert.Equal(t, "Brutus the Executioner", brutus.FullName)
	assert.Equal(t, AttributeSet{Strength: 9, Defense: 3, Intelligence: 3, Accuracy: 6, Agility: 4, Stamina: 5}, brutus.DefaultAttributes)

	for _, h := range heroes {
		assert.NoError(t, h.DefaultAttributes.Validate(), h.ID)
		assert.NotEmpty(t, h.Overview, h.ID)
	}
}

func TestNewCombatantMaxHealth(t *testing.T) {
	kael, _ := Hero("kael")
	c, err := NewCombatant(kael, kael.DefaultAttributes)
	require.NoError(t, err)
	assert.Equal(t, 80, c.MaxHealth)
	assert.Equal(t, c.MaxHealth, c.CurrentHealth)

	_, err = NewCombatant(kael, kael.DefaultAttributes.With(Agility, 0))
	assert.ErrorIs(t, err, ErrStatBelowFloor)
}

func TestApplyDamageFloorsAtZero(t *testing.T) {
	c := Combatant{ID: "x", Attributes: Baseline(), CurrentHealth: 10, MaxHealth: 10}

	assert.Equal(t, 7, c.ApplyDamage(7))
	assert.Equal(t, 3, c.CurrentHealth)
	assert.Equal(t, 3, c.ApplyDamage(30))
	assert.Equal(t, 0, c.CurrentHealth)
	assert.False(t, c.Alive())
	assert.Equal(t, 0, c.ApplyDamage(5))
	assert.Equal(t, 0, c.ApplyDamage(-4))
	assert.Equal(t, 0, c.CurrentHealth)
	assert.Equal(t, 10, c.MaxHealth)
}

func TestTeamValidate(t *testing.T) {
	team, err := DefaultTeam("Ana")
	require.NoError(t, err)
	require.NoError(t, team.Validate())

	short := team.Clone()
	short.Members = short.Members[:4]
	assert.ErrorIs(t, short.Validate(), ErrTeamSize)

	dup := team.Clone()
	dup.Members[1].ID = dup.Members[0].ID
	assert.ErrorIs(t, dup.Validate(), ErrDuplicateID)

	dead := team.Clone()
	for i := range dead.Members {
		dead.Members[i].CurrentHealth = 0
	}
	assert.ErrorIs(t, dead.Validate(), ErrTeamDefeated)

	bad := team.Clone()
	bad.Members[2].Attributes.Strength = 0
	assert.ErrorIs(t, bad.Validate(), ErrStatBelowFloor)
}

func TestTeamCloneIsDeep(t *testing.T) {
	team, err := DefaultTeam("Ana")
	require.NoError(t, err)

	clone := team.Clone()
	clone.Members[0].ApplyDamage(5)
	assert.Equal(t, team.Members[0].MaxHealth, team.Members[0].CurrentHealth)
}

func TestOutcomeValidate(t *testing.T) {
	ok := BattleOutcome{Narrative: "Kael strikes Lyra", Damage: 7, AttackSuccess: true, AttackType: AttackMelee}
	assert.NoError(t, ok.Validate())

	crit := ok
	crit.AttackSuccess = false
	crit.CriticalHit = true
	assert.Error(t, crit.Validate())

	low := ok
	low.Damage = 2
	assert.Error(t, low.Validate())

	miss := BattleOutcome{Narrative: "Lyra dodges Kael's attack", AttackType: AttackMelee}
	assert.NoError(t, miss.Validate())
	assert.Equal(t, 0, miss.EffectiveDamage())
}

func TestBattleRecordSaveLoad(t *testing.T) {
	dir := t.TempDir()
	team1, err := DefaultTeam("Ana")
	require.NoError(t, err)
	team2, err := DefaultTeam("Ben")
	require.NoError(t, err)
	team2.Members[0].CurrentHealth = 0

	rec := &BattleRecord{
		Teams:  [2]Team{team1, team2},
		Winner: "Ana",
		Log:    []string{"The battle begins...", "Ana has won the battle!"},
	}
	require.NoError(t, rec.Save(dir, "first"))

	got, err := LoadRecord(dir, "first")
	require.NoError(t, err)
	assert.Equal(t, "Ana", got.Winner)
	assert.Equal(t, rec.Log, got.Log)
	assert.Equal(t, 0, got.Teams[1].Members[0].CurrentHealth)

	require.NoError(t, os.MkdirAll(filepath.Join(dir, "junk"), 0755))
	names, err := ListRecords(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"first"}, names)

	none, err := ListRecords(filepath.Join(dir, "missing"))
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestLoadTeams(t *testing.T) {
	path := filepath.Join(t.TempDir(), "teams.yaml")
	var doc string
	for _, owner := range []string{"Ana", "Ben"} {
		doc += "- owner: " + owner + "\n  heroes:\n"
		for _, h := range Roster() {
			doc += "    - id: " + h.ID + "\n      attributes: {strength: 2, defense: 2, intelligence: 2, accuracy: 2, agility: 2, stamina: 3}\n"
		}
	}
	require.NoError(t, os.WriteFile(path, []byte(doc), 0644))

	teams, err := LoadTeams(path)
	require.NoError(t, err)
	assert.Equal(t, "Ben", teams[1].Owner)
	require.Len(t, teams[0].Members, TeamSize)
	assert.Equal(t, 30, teams[0].Members[0].MaxHealth)

	require.NoError(t, os.WriteFile(path, []byte("- owner: Ana\n  heroes:\n    - id: zeus\n- owner: Ben\n"), 0644))
	_, err = LoadTeams(path)
	assert.Error(t, err)
}

func TestParseStat(t *testing.T) {
	s, err := ParseStat("agi")
	require.NoError(t, err)
	assert.Equal(t, Agility, s)

	_, err = ParseStat("luck")
	assert.Error(t, err)
}

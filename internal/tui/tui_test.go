package tui

import (
	"context"
	"math/rand"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tatianab/arena-of-gods/internal/battle"
	"github.com/tatianab/arena-of-gods/internal/models"
	"github.com/tatianab/arena-of-gods/internal/narration"
	"github.com/tatianab/arena-of-gods/internal/setup"
)

func enter(t *testing.T, m model, text string) (model, tea.Cmd) {
	t.Helper()
	m.textInput.SetValue(text)
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	return next.(model), cmd
}

func TestSetupFlow(t *testing.T) {
	m := NewModel(context.Background(), Options{
		Provider: narration.NewLocal(rand.New(rand.NewSource(1))),
		Budget:   setup.Unlimited,
		SaveDir:  t.TempDir(),
	})

	m, _ = enter(t, m, "Alice")
	m, _ = enter(t, m, "")
	assert.Equal(t, [2]string{"Alice", "Player 2"}, m.names)
	require.Equal(t, stateSetup, m.state)

	m, _ = enter(t, m, "kael sta +4")
	attrs, _ := m.alloc.Attributes("kael")
	assert.Equal(t, 5, attrs.Stamina)

	m, _ = enter(t, m, "kael luck 2")
	assert.NotEmpty(t, m.notice)

	m, _ = enter(t, m, "done")
	require.Equal(t, stateSetup, m.state)
	assert.Equal(t, "Player 2", m.alloc.Owner())
	kael, _ := m.teams[0].Find("kael")
	assert.Equal(t, 50, kael.MaxHealth)

	m, cmd := enter(t, m, "default")
	require.Equal(t, stateBattle, m.state)
	require.NotNil(t, cmd)
	assert.Equal(t, "Player 2", m.snap.Teams[1].Owner)
}

func TestBattleRound(t *testing.T) {
	a, err := models.DefaultTeam("Alice")
	require.NoError(t, err)
	b, err := models.DefaultTeam("Bob")
	require.NoError(t, err)

	m := NewModel(context.Background(), Options{
		Provider: narration.NewLocal(rand.New(rand.NewSource(1))),
		Teams:    &[2]models.Team{a, b},
		SaveDir:  t.TempDir(),
	})
	next, _ := m.Update(m.Init()())
	m = next.(model)
	require.Equal(t, stateBattle, m.state)

	m, _ = enter(t, m, "1")
	assert.Equal(t, battle.SelectingTarget, m.snap.Phase)
	assert.Equal(t, "kael", m.snap.AttackerID)

	m, cmd := enter(t, m, "lyra")
	require.Equal(t, stateResolving, m.state)
	require.NotNil(t, cmd)

	next, _ = m.Update(cmd())
	m = next.(model)
	assert.Equal(t, stateBattle, m.state)
	assert.Equal(t, battle.PlayerTwo, m.snap.Current)
	assert.Equal(t, 2, m.snap.Turn)
}

func TestBadTargetKeepsBattleGoing(t *testing.T) {
	a, err := models.DefaultTeam("Alice")
	require.NoError(t, err)
	b, err := models.DefaultTeam("Bob")
	require.NoError(t, err)
	b.Members[1].CurrentHealth = 0 // lyra down

	m := NewModel(context.Background(), Options{
		Provider: narration.NewLocal(rand.New(rand.NewSource(1))),
		Teams:    &[2]models.Team{a, b},
		SaveDir:  t.TempDir(),
	})
	next, _ := m.Update(m.Init()())
	m = next.(model)
	m, _ = enter(t, m, "1")

	for _, target := range []string{"ghost", "lyra", "2"} {
		var cmd tea.Cmd
		m, cmd = enter(t, m, target)
		assert.Nil(t, cmd, target)
		assert.Equal(t, stateBattle, m.state, target)
		assert.NotEmpty(t, m.notice, target)
		assert.Equal(t, battle.SelectingTarget, m.snap.Phase, target)
		assert.Equal(t, "kael", m.snap.AttackerID, target)
	}

	// A rejection reported by the session itself is shown, not fatal.
	m.state = stateResolving
	next, _ = m.Update(roundDoneMsg{err: battle.ErrDefeated})
	m = next.(model)
	assert.Equal(t, stateBattle, m.state)
	assert.Equal(t, battle.ErrDefeated.Error(), m.notice)
	assert.NoError(t, m.err)

	m, cmd := enter(t, m, "brutus")
	require.NotNil(t, cmd)
	next, _ = m.Update(cmd())
	m = next.(model)
	assert.Equal(t, stateBattle, m.state)
	assert.Equal(t, battle.PlayerTwo, m.snap.Current)
}

func TestAdjust(t *testing.T) {
	a, err := setup.NewAllocator("Alice", models.Roster(), setup.WithBudget(3))
	require.NoError(t, err)

	require.NoError(t, adjust(a, "thea", models.Intelligence, 2))
	assert.ErrorIs(t, adjust(a, "thea", models.Intelligence, 2), setup.ErrNoCredits)
	assert.Zero(t, a.Remaining())
	require.NoError(t, adjust(a, "thea", models.Intelligence, -3))
	assert.ErrorIs(t, adjust(a, "thea", models.Intelligence, -1), setup.ErrAtFloor)
}

func TestHealthBar(t *testing.T) {
	assert.Equal(t, "[##########]", healthBar(60, 60))
	assert.Equal(t, "[#.........]", healthBar(1, 60))
	assert.Equal(t, "[..........]", healthBar(0, 60))
}

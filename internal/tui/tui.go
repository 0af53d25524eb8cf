package tui

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/tatianab/arena-of-gods/internal/battle"
	"github.com/tatianab/arena-of-gods/internal/models"
	"github.com/tatianab/arena-of-gods/internal/narration"
	"github.com/tatianab/arena-of-gods/internal/setup"
)

type sessionState int

const (
	stateNames sessionState = iota
	stateSetup
	stateBattle
	stateResolving
	stateEnded
	stateError
)

// Options wires the front end to the rest of the game.
type Options struct {
	Provider narration.Provider
	Teams    *[2]models.Team // skips naming and setup when set
	Budget   int             // setup.Unlimited for free allocation
	SaveDir  string
	Delay    time.Duration
	Logger   *zap.Logger
}

type model struct {
	state     sessionState
	ctx       context.Context
	opts      Options
	names     [2]string
	player    int
	alloc     *setup.Allocator
	teams     [2]models.Team
	session   *battle.Session
	snap      battle.State
	events    chan tea.Msg
	textInput textinput.Model
	viewport  viewport.Model
	gameLog   string
	notice    string
	err       error
	width     int
	height    int
}

var (
	userStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#EEEEEE")).
			Background(lipgloss.Color("#5F5F87")).
			Bold(true).
			PaddingLeft(1)

	gameStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF"))

	critStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF5F5F")).
			Bold(true)

	missStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			Italic(true)

	noticeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFAF00"))

	stateStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(lipgloss.Color("#3C3C3C")).
			PaddingLeft(2).
			Foreground(lipgloss.Color("#AAAAAA"))

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFA500")).
			Bold(true).
			Underline(true)

	activeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#5FD7FF")).
			Bold(true)

	deadStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#4E4E4E")).
			Strikethrough(true)
)

func NewModel(ctx context.Context, opts Options) model {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	ti := textinput.New()
	ti.Placeholder = "Player 1"
	ti.Focus()
	ti.CharLimit = 64
	ti.Width = 40

	m := model{
		state:     stateNames,
		ctx:       ctx,
		opts:      opts,
		events:    make(chan tea.Msg, 32),
		textInput: ti,
	}
	if opts.Teams != nil {
		m.teams = *opts.Teams
	}
	return m
}

func (m model) Init() tea.Cmd {
	if m.opts.Teams != nil {
		return func() tea.Msg { return teamsReadyMsg{} }
	}
	return textinput.Blink
}

type teamsReadyMsg struct{}

type exchangeMsg struct {
	ev battle.ExchangeEvent
}

type turnMsg struct {
	ev battle.TurnEvent
}

type endedMsg struct {
	winner battle.Player
}

type roundDoneMsg struct {
	err error
}

type errMsg struct {
	err error
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.abandon()
			return m, tea.Quit

		case tea.KeyEnter:
			input := strings.TrimSpace(m.textInput.Value())
			m.textInput.Reset()
			m.notice = ""
			switch m.state {
			case stateNames:
				return m.submitName(input)
			case stateSetup:
				return m.submitSetup(input)
			case stateBattle:
				return m.submitBattle(input)
			case stateEnded, stateError:
				return m, tea.Quit
			}
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.Width = int(float64(msg.Width) * 0.65)
		m.viewport.Height = max(msg.Height-8, 1)
		m.viewport.SetContent(m.renderLog())

	case teamsReadyMsg:
		return m.startBattle()

	case exchangeMsg:
		m.appendLog(m.renderExchange(msg.ev))
		m.snap = m.session.Snapshot()
		return m, m.listen()

	case turnMsg:
		m.appendLog(helpStyle.Render(fmt.Sprintf("Turn %d: %s to move.", msg.ev.Turn, m.snap.Teams[msg.ev.Player].Owner)))
		return m, m.listen()

	case endedMsg:
		m.appendLog(titleStyle.Render(fmt.Sprintf("%s has won the battle!", m.snap.Teams[msg.winner].Owner)))
		return m, nil

	case roundDoneMsg:
		m.snap = m.session.Snapshot()
		if rejectedSelection(msg.err) {
			m.notice = msg.err.Error()
			m.state = stateBattle
			return m, nil
		}
		if msg.err != nil && !errors.Is(msg.err, battle.ErrAborted) {
			m.err = msg.err
			m.state = stateError
			return m, nil
		}
		if m.snap.Ended {
			m.state = stateEnded
			m.saveRecord()
			return m, nil
		}
		m.state = stateBattle
		return m, nil

	case errMsg:
		m.err = msg.err
		m.state = stateError
		return m, nil
	}

	if m.state == stateNames || m.state == stateSetup || m.state == stateBattle {
		m.textInput, cmd = m.textInput.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m model) submitName(input string) (tea.Model, tea.Cmd) {
	if input == "" {
		input = fmt.Sprintf("Player %d", m.player+1)
	}
	m.names[m.player] = input
	if m.player == 0 {
		m.player = 1
		m.textInput.Placeholder = "Player 2"
		return m, nil
	}
	m.player = 0
	return m.beginSetup()
}

func (m model) beginSetup() (tea.Model, tea.Cmd) {
	var opts []setup.Option
	if m.opts.Budget != setup.Unlimited {
		opts = append(opts, setup.WithBudget(m.opts.Budget))
	}
	alloc, err := setup.NewAllocator(m.names[m.player], models.Roster(), opts...)
	if err != nil {
		return m, func() tea.Msg { return errMsg{err} }
	}
	m.alloc = alloc
	m.state = stateSetup
	m.textInput.Placeholder = "kael str +3"
	return m, nil
}

func (m model) submitSetup(input string) (tea.Model, tea.Cmd) {
	fields := strings.Fields(strings.ToLower(input))
	switch {
	case len(fields) == 1 && fields[0] == "done":
		team, err := m.alloc.Team()
		if err != nil {
			m.notice = err.Error()
			return m, nil
		}
		return m.teamReady(team)

	case len(fields) == 1 && fields[0] == "default":
		team, err := models.DefaultTeam(m.names[m.player])
		if err != nil {
			return m, func() tea.Msg { return errMsg{err} }
		}
		return m.teamReady(team)

	case len(fields) == 3:
		stat, err := models.ParseStat(fields[1])
		if err != nil {
			m.notice = err.Error()
			return m, nil
		}
		n, err := strconv.Atoi(fields[2])
		if err != nil {
			m.notice = fmt.Sprintf("bad amount %q", fields[2])
			return m, nil
		}
		if err := adjust(m.alloc, fields[0], stat, n); err != nil {
			m.notice = err.Error()
		}
		return m, nil
	}
	m.notice = "usage: <hero> <stat> <+n|-n>, default, or done"
	return m, nil
}

// adjust applies n single-point steps, stopping at the first refusal.
func adjust(a *setup.Allocator, hero string, stat models.Stat, n int) error {
	step := a.Increment
	if n < 0 {
		step, n = a.Decrement, -n
	}
	for i := 0; i < n; i++ {
		if err := step(hero, stat); err != nil {
			return err
		}
	}
	return nil
}

func (m model) teamReady(team models.Team) (tea.Model, tea.Cmd) {
	m.teams[m.player] = team
	if m.player == 0 {
		m.player = 1
		return m.beginSetup()
	}
	m.alloc = nil
	return m.startBattle()
}

func (m model) startBattle() (tea.Model, tea.Cmd) {
	session, err := battle.Start(m.teams[0], m.teams[1], m.opts.Provider,
		battle.WithExchangeDelay(m.opts.Delay),
		battle.WithLogger(m.opts.Logger.Named("battle")))
	if err != nil {
		return m, func() tea.Msg { return errMsg{err} }
	}

	events := m.events
	session.OnExchangeResolved(func(ev battle.ExchangeEvent) { events <- exchangeMsg{ev} })
	session.OnTurnChanged(func(ev battle.TurnEvent) { events <- turnMsg{ev} })
	session.OnBattleEnded(func(p battle.Player) { events <- endedMsg{p} })

	m.session = session
	m.snap = session.Snapshot()
	m.state = stateBattle
	m.textInput.Placeholder = "1-5 or hero id"
	if m.viewport.Width == 0 {
		m.viewport = viewport.New(int(float64(m.width)*0.65), max(m.height-8, 1))
	}
	for _, line := range session.Log() {
		m.appendLog(gameStyle.Render(line))
	}
	m.appendLog(helpStyle.Render("The arena: " + strings.ReplaceAll(m.snap.Environment, "_", " ")))
	return m, m.listen()
}

func (m model) submitBattle(input string) (tea.Model, tea.Cmd) {
	switch input {
	case "":
		return m, nil
	case "/quit":
		m.abandon()
		return m, tea.Quit
	case "/back":
		if err := m.session.CancelAttacker(); err != nil {
			m.notice = err.Error()
		}
		m.snap = m.session.Snapshot()
		return m, nil
	}

	side := m.snap.Current
	if m.snap.Phase == battle.SelectingTarget {
		side = side.Other()
	}
	id := m.resolveID(side, input)

	if m.snap.Phase == battle.SelectingAttacker {
		if err := m.session.SelectAttacker(id); err != nil {
			m.notice = err.Error()
		}
		m.snap = m.session.Snapshot()
		return m, nil
	}

	if err := targetable(m.snap.Teams[side], id); err != nil {
		m.notice = err.Error()
		return m, nil
	}

	m.appendLog(userStyle.Width(m.viewport.Width).Render(
		fmt.Sprintf("> %s sends %s against %s", m.snap.Teams[m.snap.Current].Owner, m.snap.AttackerID, id)))
	m.state = stateResolving
	session, ctx := m.session, m.ctx
	return m, func() tea.Msg {
		return roundDoneMsg{err: session.SelectTarget(ctx, id)}
	}
}

// targetable checks a target locally so typos never start a round.
func targetable(team models.Team, id string) error {
	c, ok := team.Find(id)
	if !ok {
		return fmt.Errorf("%q on %s's team: %w", id, team.Owner, battle.ErrUnknownCombatant)
	}
	if !c.Alive() {
		return fmt.Errorf("%q: %w", id, battle.ErrDefeated)
	}
	return nil
}

// rejectedSelection reports errors that leave the session untouched.
func rejectedSelection(err error) bool {
	return errors.Is(err, battle.ErrUnknownCombatant) ||
		errors.Is(err, battle.ErrDefeated) ||
		errors.Is(err, battle.ErrWrongPhase)
}

// resolveID maps a 1-based roster position to a hero id.
func (m model) resolveID(side battle.Player, input string) string {
	n, err := strconv.Atoi(input)
	members := m.snap.Teams[side].Members
	if err != nil || n < 1 || n > len(members) {
		return strings.ToLower(input)
	}
	return members[n-1].ID
}

func (m model) listen() tea.Cmd {
	events := m.events
	return func() tea.Msg { return <-events }
}

func (m *model) appendLog(line string) {
	m.gameLog += line + "\n"
	m.viewport.SetContent(m.renderLog())
	m.viewport.GotoBottom()
}

func (m *model) abandon() {
	if m.session == nil || m.state == stateEnded {
		return
	}
	m.session.Abort()
	m.saveRecord()
}

func (m *model) saveRecord() {
	rec := m.session.Record()
	name := time.Now().Format("20060102-150405")
	if err := rec.Save(m.opts.SaveDir, name); err != nil {
		m.opts.Logger.Warn("failed to save battle record", zap.Error(err))
		m.notice = "could not save battle: " + err.Error()
		return
	}
	m.opts.Logger.Info("battle record saved", zap.String("dir", m.opts.SaveDir), zap.String("name", name))
	m.notice = "battle saved as " + name
}

func (m model) View() string {
	var s string

	switch m.state {
	case stateNames:
		s = fmt.Sprintf(
			"Welcome to the Arena of Gods!\n\n%s\n\n%s",
			fmt.Sprintf("Name of player %d:", m.player+1),
			m.textInput.View(),
		)

	case stateSetup:
		s = lipgloss.JoinVertical(lipgloss.Left,
			m.renderSetup(),
			"\n"+m.textInput.View(),
			"\n"+noticeStyle.Render(m.notice),
			helpStyle.Render("Commands: <hero> <stat> <+n|-n>, default, done. Stats: str def int acc agi sta."),
		)

	case stateBattle, stateResolving, stateEnded:
		mainView := lipgloss.JoinHorizontal(lipgloss.Top,
			m.viewport.View(),
			m.renderState(),
		)
		s = lipgloss.JoinVertical(lipgloss.Left,
			mainView,
			"\n"+m.renderPrompt(),
			noticeStyle.Render(m.notice),
		)

	case stateError:
		s = fmt.Sprintf("\n  Error: %v\n\nPress Esc to quit.", m.err)
	}

	return "\n" + s + "\n"
}

func (m model) renderPrompt() string {
	owner := m.snap.Teams[m.snap.Current].Owner
	switch m.state {
	case stateResolving:
		return helpStyle.Render(fmt.Sprintf("%s and %s are locked in combat...", m.snap.AttackerID, m.snap.TargetID))
	case stateEnded:
		return titleStyle.Render(fmt.Sprintf("%s wins!", m.snap.Teams[m.snap.Winner].Owner)) +
			"\n" + helpStyle.Render("Press Enter to quit.")
	}
	var ask string
	if m.snap.Phase == battle.SelectingTarget {
		ask = fmt.Sprintf("%s, choose a target for %s:", owner, m.snap.AttackerID)
	} else {
		ask = fmt.Sprintf("%s, choose an attacker:", owner)
	}
	return ask + "\n" + m.textInput.View() + "\n" + helpStyle.Render("Commands: /back, /quit, or a number or hero id.")
}

func (m model) renderSetup() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("%s ASSEMBLES A TEAM", strings.ToUpper(m.alloc.Owner()))) + "\n\n")
	if r := m.alloc.Remaining(); r != setup.Unlimited {
		fmt.Fprintf(&b, "Credits left: %d\n\n", r)
	}
	for _, h := range m.alloc.Heroes() {
		a, _ := m.alloc.Attributes(h.ID)
		fmt.Fprintf(&b, "%-8s %-24s STR %2d  DEF %2d  INT %2d  ACC %2d  AGI %2d  STA %2d  HP %3d\n",
			h.ID, h.FullName, a.Strength, a.Defense, a.Intelligence, a.Accuracy, a.Agility, a.Stamina,
			a.Stamina*models.HealthPerStamina)
	}
	return b.String()
}

func (m model) renderState() string {
	var content string
	for i, team := range m.snap.Teams {
		title := titleStyle.Render(strings.ToUpper(team.Owner))
		if battle.Player(i) == m.snap.Current && !m.snap.Ended {
			title += " *"
		}
		content += title + "\n"
		for j, c := range team.Members {
			line := fmt.Sprintf("%d. %-7s %s %3d/%d", j+1, c.Name, healthBar(c.CurrentHealth, c.MaxHealth), c.CurrentHealth, c.MaxHealth)
			switch {
			case !c.Alive():
				line = deadStyle.Render(line)
			case c.ID == m.snap.AttackerID && battle.Player(i) == m.snap.Current,
				c.ID == m.snap.TargetID && battle.Player(i) != m.snap.Current:
				line = activeStyle.Render(line)
			}
			content += line + "\n"
		}
		content += "\n"
	}

	stateWidth := int(float64(m.width) * 0.33)
	return stateStyle.Width(stateWidth).Height(m.viewport.Height).Render(content)
}

func (m model) renderExchange(ev battle.ExchangeEvent) string {
	width := m.viewport.Width
	switch {
	case !ev.Outcome.AttackSuccess:
		return missStyle.Width(width).Render(ev.Line)
	case ev.Outcome.CriticalHit:
		return critStyle.Width(width).Render(ev.Line)
	}
	return gameStyle.Width(width).Render(ev.Line)
}

func (m model) renderLog() string {
	return m.gameLog
}

func healthBar(cur, total int) string {
	const width = 10
	filled := 0
	if total > 0 {
		filled = (cur*width + total - 1) / total
	}
	return "[" + strings.Repeat("#", filled) + strings.Repeat(".", width-filled) + "]"
}

// Run drives an interactive battle until the players quit or a winner emerges.
func Run(ctx context.Context, opts Options) error {
	p := tea.NewProgram(NewModel(ctx, opts), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

// Package battle runs the two-player turn cycle: pick an attacker, pick a
// target, resolve a round of exchanges, pass the turn.
package battle

import (
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/tatianab/arena-of-gods/internal/combat"
	"github.com/tatianab/arena-of-gods/internal/models"
	"github.com/tatianab/arena-of-gods/internal/narration"
)

// ExchangesPerRound is the length of a full round between a locked pair.
const ExchangesPerRound = 5

var (
	ErrNilProvider      = errors.New("battle needs a narration provider")
	ErrBattleEnded      = errors.New("battle has ended")
	ErrAborted          = errors.New("battle was abandoned")
	ErrWrongPhase       = errors.New("command not valid in the current phase")
	ErrUnknownCombatant = errors.New("no such combatant on that team")
	ErrDefeated         = errors.New("combatant is defeated")
)

// Player identifies one side of the battle.
type Player int

const (
	PlayerOne Player = iota
	PlayerTwo
)

// Other returns the opposing player.
func (p Player) Other() Player {
	if p == PlayerOne {
		return PlayerTwo
	}
	return PlayerOne
}

func (p Player) String() string {
	return fmt.Sprintf("player %d", int(p)+1)
}

// Phase is the session's position in the turn cycle.
type Phase int

const (
	SelectingAttacker Phase = iota
	SelectingTarget
	ResolvingExchanges
	Ended
)

func (p Phase) String() string {
	switch p {
	case SelectingAttacker:
		return "selecting attacker"
	case SelectingTarget:
		return "selecting target"
	case ResolvingExchanges:
		return "resolving exchanges"
	case Ended:
		return "ended"
	}
	return "unknown"
}

// ExchangeEvent is emitted after each exchange has been applied.
type ExchangeEvent struct {
	Turn         int
	Exchange     int // 1..ExchangesPerRound
	Player       Player
	Attacker     models.HeroSnapshot
	Target       models.HeroSnapshot // after damage
	Outcome      models.BattleOutcome
	Damage       int // health actually removed
	UsedFallback bool
	Cached       bool
	Line         string
}

// TurnEvent is emitted when the turn passes to a player.
type TurnEvent struct {
	Player Player
	Turn   int
}

// State is a read-only copy of the session.
type State struct {
	Phase       Phase
	Current     Player
	Turn        int
	AttackerID  string
	TargetID    string
	Exchange    int
	Winner      Player
	Ended       bool
	Aborted     bool
	Environment string
	Teams       [2]models.Team
}

// Session owns one battle between two teams.
type Session struct {
	mu sync.Mutex

	teams       [2]models.Team
	provider    narration.Provider
	logger      *zap.Logger
	delay       time.Duration
	environment string

	phase    Phase
	current  Player
	turn     int
	attacker *models.Combatant
	target   *models.Combatant
	exchange int
	winner   Player
	aborted  bool
	abortCh  chan struct{}
	log      []string

	onExchange []func(ExchangeEvent)
	onTurn     []func(TurnEvent)
	onEnd      []func(Player)
}

type options struct {
	first       Player
	environment string
	delay       time.Duration
	rng         combat.Source
	logger      *zap.Logger
}

// Option configures a Session.
type Option func(*options)

// WithFirstPlayer sets who opens the battle. Player one by default.
func WithFirstPlayer(p Player) Option { return func(o *options) { o.first = p } }

// WithEnvironment fixes the arena backdrop instead of picking one at random.
func WithEnvironment(env string) Option { return func(o *options) { o.environment = env } }

// WithExchangeDelay paces exchanges for display. No delay by default.
func WithExchangeDelay(d time.Duration) Option { return func(o *options) { o.delay = d } }

// WithRand sets the randomness used to pick the environment.
func WithRand(rng combat.Source) Option { return func(o *options) { o.rng = rng } }

func WithLogger(l *zap.Logger) Option { return func(o *options) { o.logger = l } }

// Start validates both teams, copies them and opens the first turn.
func Start(team1, team2 models.Team, provider narration.Provider, opts ...Option) (*Session, error) {
	if provider == nil {
		return nil, ErrNilProvider
	}
	o := options{first: PlayerOne, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.first != PlayerOne && o.first != PlayerTwo {
		return nil, fmt.Errorf("invalid first player %d", int(o.first))
	}
	if o.rng == nil {
		o.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if o.environment == "" {
		o.environment = models.Environments[o.rng.Intn(len(models.Environments))]
	}

	for i, team := range []*models.Team{&team1, &team2} {
		if err := team.Validate(); err != nil {
			return nil, fmt.Errorf("team %d: %w", i+1, err)
		}
	}

	s := &Session{
		teams:       [2]models.Team{team1.Clone(), team2.Clone()},
		provider:    provider,
		logger:      o.logger,
		delay:       o.delay,
		environment: o.environment,
		current:     o.first,
		turn:        1,
		abortCh:     make(chan struct{}),
		log:         []string{"The battle begins..."},
	}
	s.phase = SelectingAttacker
	s.logger.Info("battle started",
		zap.String("player1", s.teams[0].Owner),
		zap.String("player2", s.teams[1].Owner),
		zap.String("environment", s.environment),
		zap.Stringer("first", o.first))
	return s, nil
}

// OnExchangeResolved registers a callback for every applied exchange.
func (s *Session) OnExchangeResolved(fn func(ExchangeEvent)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onExchange = append(s.onExchange, fn)
}

// OnTurnChanged registers a callback for each turn hand-over.
func (s *Session) OnTurnChanged(fn func(TurnEvent)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onTurn = append(s.onTurn, fn)
}

// OnBattleEnded registers a callback receiving the winner.
func (s *Session) OnBattleEnded(fn func(Player)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onEnd = append(s.onEnd, fn)
}

// SelectAttacker picks one of the turn owner's living combatants.
func (s *Session) SelectAttacker(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.acceptingLocked(); err != nil {
		return err
	}
	if s.phase != SelectingAttacker {
		return fmt.Errorf("select attacker while %s: %w", s.phase, ErrWrongPhase)
	}
	c, err := s.pickLocked(s.current, id)
	if err != nil {
		return err
	}
	s.attacker = c
	s.phase = SelectingTarget
	return nil
}

// CancelAttacker releases the chosen attacker so another can be picked.
func (s *Session) CancelAttacker() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.acceptingLocked(); err != nil {
		return err
	}
	if s.phase != SelectingTarget {
		return fmt.Errorf("cancel attacker while %s: %w", s.phase, ErrWrongPhase)
	}
	s.attacker = nil
	s.phase = SelectingAttacker
	return nil
}

// Abort abandons the battle. No new exchanges start afterwards and an
// exchange already in flight is discarded when it returns.
func (s *Session) Abort() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.aborted {
		return
	}
	s.aborted = true
	close(s.abortCh)
	s.logger.Info("battle abandoned", zap.Int("turn", s.turn))
}

// Snapshot copies the current state.
func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := State{
		Phase:       s.phase,
		Current:     s.current,
		Turn:        s.turn,
		Exchange:    s.exchange,
		Winner:      s.winner,
		Ended:       s.phase == Ended,
		Aborted:     s.aborted,
		Environment: s.environment,
		Teams:       [2]models.Team{s.teams[0].Clone(), s.teams[1].Clone()},
	}
	if s.attacker != nil {
		st.AttackerID = s.attacker.ID
	}
	if s.target != nil {
		st.TargetID = s.target.ID
	}
	return st
}

// Winner reports the winning player once the battle has ended.
func (s *Session) Winner() (Player, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.winner, s.phase == Ended
}

// Log returns a copy of the battle log.
func (s *Session) Log() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.log))
	copy(out, s.log)
	return out
}

// Record summarizes the battle for persistence.
func (s *Session) Record() models.BattleRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec := models.BattleRecord{
		Teams: [2]models.Team{s.teams[0].Clone(), s.teams[1].Clone()},
		Log:   append([]string(nil), s.log...),
	}
	if s.phase == Ended {
		rec.Winner = s.teams[s.winner].Owner
	}
	return rec
}

func (s *Session) acceptingLocked() error {
	if s.aborted {
		return ErrAborted
	}
	if s.phase == Ended {
		return ErrBattleEnded
	}
	return nil
}

func (s *Session) pickLocked(side Player, id string) (*models.Combatant, error) {
	c, ok := s.teams[side].Find(id)
	if !ok {
		return nil, fmt.Errorf("%q on %s's team: %w", id, s.teams[side].Owner, ErrUnknownCombatant)
	}
	if !c.Alive() {
		return nil, fmt.Errorf("%q: %w", id, ErrDefeated)
	}
	return c, nil
}

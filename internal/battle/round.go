package battle

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/tatianab/arena-of-gods/internal/models"
)

// SelectTarget picks a living combatant of the opposing team, locks the pair
// and resolves the round before returning. Exchanges run one at a time; each
// waits for its narrated outcome before health changes.
func (s *Session) SelectTarget(ctx context.Context, id string) error {
	s.mu.Lock()
	if err := s.acceptingLocked(); err != nil {
		s.mu.Unlock()
		return err
	}
	if s.phase != SelectingTarget {
		s.mu.Unlock()
		return fmt.Errorf("select target while %s: %w", s.phase, ErrWrongPhase)
	}
	c, err := s.pickLocked(s.current.Other(), id)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	s.target = c
	s.phase = ResolvingExchanges
	s.exchange = 0
	s.logger.Info("round started",
		zap.Int("turn", s.turn),
		zap.Stringer("player", s.current),
		zap.String("attacker", s.attacker.ID),
		zap.String("target", s.target.ID))
	s.mu.Unlock()

	return s.runRound(ctx)
}

func (s *Session) runRound(ctx context.Context) error {
	for i := 1; i <= ExchangesPerRound; i++ {
		if i > 1 && s.delay > 0 {
			s.wait(ctx, s.delay)
		}

		s.mu.Lock()
		if s.haltedLocked(ctx) {
			s.mu.Unlock()
			return ErrAborted
		}
		s.exchange = i
		cc := models.CombatContext{
			Attacker:    s.attacker.Snapshot(),
			Defender:    s.target.Snapshot(),
			TurnNumber:  s.turn,
			Environment: s.environment,
		}
		s.mu.Unlock()

		res := s.provider.Resolve(ctx, cc)

		s.mu.Lock()
		if s.haltedLocked(ctx) {
			s.mu.Unlock()
			return ErrAborted
		}
		dealt := s.target.ApplyDamage(res.Outcome.EffectiveDamage())
		line := logLine(res.Outcome, dealt)
		s.log = append(s.log, line)
		ev := ExchangeEvent{
			Turn:         s.turn,
			Exchange:     i,
			Player:       s.current,
			Attacker:     s.attacker.Snapshot(),
			Target:       s.target.Snapshot(),
			Outcome:      res.Outcome,
			Damage:       dealt,
			UsedFallback: res.UsedFallback,
			Cached:       res.Cached,
			Line:         line,
		}
		handlers := append(([]func(ExchangeEvent))(nil), s.onExchange...)
		over := !s.target.Alive() || !s.attacker.Alive()
		s.mu.Unlock()

		for _, h := range handlers {
			h(ev)
		}
		if over {
			break
		}
	}

	s.finishRound()
	return nil
}

// haltedLocked reports whether the round must stop. A cancelled context
// abandons the battle like Abort does.
func (s *Session) haltedLocked(ctx context.Context) bool {
	if !s.aborted && ctx.Err() != nil {
		s.aborted = true
		close(s.abortCh)
		s.logger.Info("battle abandoned", zap.Int("turn", s.turn), zap.Error(ctx.Err()))
	}
	return s.aborted
}

func (s *Session) wait(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-s.abortCh:
	case <-t.C:
	}
}

// finishRound clears the lock, then either ends the battle or hands the turn
// to the other player.
func (s *Session) finishRound() {
	var notify []func()

	s.mu.Lock()
	s.logger.Info("round finished",
		zap.Int("turn", s.turn),
		zap.String("attacker", s.attacker.ID),
		zap.String("target", s.target.ID),
		zap.Int("target_health", s.target.CurrentHealth))
	s.attacker = nil
	s.target = nil
	s.exchange = 0

	if notify = s.checkEndLocked(); notify == nil {
		s.current = s.current.Other()
		s.turn++
		notify = s.enterSelectingAttackerLocked()
	}
	s.mu.Unlock()

	for _, fn := range notify {
		fn()
	}
}

// enterSelectingAttackerLocked opens the next turn. A turn owner with no living
// combatants loses on the spot rather than waiting for a selection that can
// never come.
func (s *Session) enterSelectingAttackerLocked() []func() {
	if !s.teams[s.current].Alive() {
		return s.endLocked(s.current.Other())
	}
	s.phase = SelectingAttacker
	ev := TurnEvent{Player: s.current, Turn: s.turn}
	var notify []func()
	for _, h := range s.onTurn {
		h := h
		notify = append(notify, func() { h(ev) })
	}
	return notify
}

// checkEndLocked ends the battle if either team is wiped out. It returns nil
// when the battle goes on.
func (s *Session) checkEndLocked() []func() {
	for _, p := range []Player{PlayerOne, PlayerTwo} {
		if !s.teams[p].Alive() {
			return s.endLocked(p.Other())
		}
	}
	return nil
}

func (s *Session) endLocked(winner Player) []func() {
	s.phase = Ended
	s.winner = winner
	s.log = append(s.log, fmt.Sprintf("%s has won the battle!", s.teams[winner].Owner))
	s.logger.Info("battle ended",
		zap.Stringer("winner", winner),
		zap.String("owner", s.teams[winner].Owner),
		zap.Int("turns", s.turn))

	notify := []func(){}
	for _, h := range s.onEnd {
		h := h
		notify = append(notify, func() { h(winner) })
	}
	return notify
}

func logLine(o models.BattleOutcome, dealt int) string {
	switch {
	case !o.AttackSuccess:
		return o.Narrative
	case o.CriticalHit:
		return fmt.Sprintf("%s (-%d, critical)", o.Narrative, dealt)
	default:
		return fmt.Sprintf("%s (-%d)", o.Narrative, dealt)
	}
}

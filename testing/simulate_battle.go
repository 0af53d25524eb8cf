package main

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"github.com/tatianab/arena-of-gods/internal/battle"
	"github.com/tatianab/arena-of-gods/internal/config"
	"github.com/tatianab/arena-of-gods/internal/logging"
	"github.com/tatianab/arena-of-gods/internal/models"
	"github.com/tatianab/arena-of-gods/internal/narration"
)

const maxTurns = 100

func main() {
	ctx := context.Background()
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New("stderr", cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	provider, closeProvider := narration.NewProvider(ctx, cfg, rng, logger)
	defer closeProvider()

	teams, err := loadTeams(cfg.TeamsFile)
	if err != nil {
		log.Fatalf("Failed to load teams: %v", err)
	}

	session, err := battle.Start(teams[0], teams[1], provider,
		battle.WithRand(rng),
		battle.WithLogger(logger.Named("battle")))
	if err != nil {
		log.Fatalf("Failed to start battle: %v", err)
	}

	var remote, cached, fallback int
	session.OnExchangeResolved(func(ev battle.ExchangeEvent) {
		switch {
		case ev.Cached:
			cached++
		case ev.UsedFallback:
			fallback++
		default:
			remote++
		}
		fmt.Printf("  [%d.%d] %s (%s %d/%d)\n", ev.Turn, ev.Exchange, ev.Line,
			ev.Target.Name, ev.Target.CurrentHealth, ev.Target.MaxHealth)
	})
	session.OnTurnChanged(func(ev battle.TurnEvent) {
		fmt.Printf("--- Turn %d: %s ---\n", ev.Turn, teams[ev.Player].Owner)
	})

	fmt.Printf("%s vs %s in the %s\n", teams[0].Owner, teams[1].Owner, session.Snapshot().Environment)
	fmt.Printf("--- Turn 1: %s ---\n", teams[session.Snapshot().Current].Owner)

	for !session.Snapshot().Ended {
		st := session.Snapshot()
		if st.Turn > maxTurns {
			fmt.Println("Turn limit reached, abandoning the battle.")
			session.Abort()
			break
		}

		attacker := pick(rng, &st.Teams[st.Current])
		target := pick(rng, &st.Teams[st.Current.Other()])
		fmt.Printf("%s sends %s against %s\n", st.Teams[st.Current].Owner, attacker.Name, target.Name)

		if err := session.SelectAttacker(attacker.ID); err != nil {
			log.Fatalf("Failed to select attacker: %v", err)
		}
		if err := session.SelectTarget(ctx, target.ID); err != nil {
			log.Fatalf("Failed to resolve round: %v", err)
		}
	}

	if winner, ok := session.Winner(); ok {
		fmt.Printf("Battle Ended: %s won after %d turns!\n", teams[winner].Owner, session.Snapshot().Turn)
	}
	fmt.Printf("Exchanges: %d narrated, %d cached, %d local\n", remote, cached, fallback)

	rec := session.Record()
	name := "simulated-" + time.Now().Format("20060102-150405")
	if err := rec.Save(cfg.SaveDir, name); err != nil {
		logger.Warn("failed to save battle record", zap.Error(err))
		return
	}
	fmt.Printf("Saved battle record as %s\n", name)
}

func loadTeams(path string) ([2]models.Team, error) {
	if path != "" {
		return models.LoadTeams(path)
	}
	var teams [2]models.Team
	for i, owner := range []string{"Player 1", "Player 2"} {
		team, err := models.DefaultTeam(owner)
		if err != nil {
			return teams, err
		}
		teams[i] = team
	}
	return teams, nil
}

// pick chooses a random living member.
func pick(rng *rand.Rand, team *models.Team) *models.Combatant {
	living := team.Living()
	return living[rng.Intn(len(living))]
}

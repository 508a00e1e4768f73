package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/coupfree/coup-server-go/internal/game"
	"github.com/coupfree/coup-server-go/internal/game/characters"
)

// A scripted two-player duel driven through the full engine, printing each
// player's redacted view after every transition. Handy for eyeballing the
// redaction contract and the turn flow without a client.
func main() {
	state, err := game.NewState(game.Config{
		PlayerCount: 2,
		PlayerNames: []string{"Alice", "Bob"},
		Enabled:     append(characters.Base(), characters.General),
		Seed:        2024,
	})
	if err != nil {
		log.Fatalf("failed to start match: %v", err)
	}

	steps := []struct {
		label string
		apply func(*game.State) (*game.State, error)
	}{
		{"Alice takes income", func(s *game.State) (*game.State, error) {
			return s.DeclareAction("player-1", characters.Income, "")
		}},
		{"Bob claims the Duke", func(s *game.State) (*game.State, error) {
			return s.DeclareAction("player-2", characters.Tax, "")
		}},
		{"Alice lets it pass", func(s *game.State) (*game.State, error) {
			return s.PassChallenge("player-1")
		}},
		{"Alice takes foreign aid", func(s *game.State) (*game.State, error) {
			return s.DeclareAction("player-1", characters.ForeignAid, "")
		}},
		{"Bob waives the block", func(s *game.State) (*game.State, error) {
			return s.PassBlock("player-2")
		}},
		{"Bob claims the Captain and steals", func(s *game.State) (*game.State, error) {
			return s.DeclareAction("player-2", characters.Steal, "player-1")
		}},
		{"Alice lets it pass", func(s *game.State) (*game.State, error) {
			return s.PassChallenge("player-1")
		}},
		{"Alice waives the block", func(s *game.State) (*game.State, error) {
			return s.PassBlock("player-1")
		}},
	}

	for _, step := range steps {
		next, err := step.apply(state)
		if err != nil {
			log.Fatalf("%s: %v", step.label, err)
		}
		state = next
		fmt.Printf("== %s ==\n", step.label)
		printView(state.View("player-1"))
	}

	fmt.Println("== final public log ==")
	for _, entry := range state.Log {
		fmt.Printf("turn %d: %s\n", entry.Turn, entry.Text)
	}
}

func printView(view game.StateView) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(view); err != nil {
		log.Fatalf("failed to encode view: %v", err)
	}
}

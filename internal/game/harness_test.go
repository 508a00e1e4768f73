package game

import (
	"testing"

	"github.com/coupfree/coup-server-go/internal/game/characters"
	"github.com/stretchr/testify/require"
)

// newTestState builds a deterministic match. Seats are player-1..player-N.
func newTestState(t *testing.T, players int, enabled ...characters.Character) *State {
	t.Helper()
	if enabled == nil {
		enabled = characters.Base()
	}
	s, err := NewState(Config{
		PlayerCount: players,
		Enabled:     enabled,
		Seed:        42,
	})
	require.NoError(t, err)
	return s
}

// withExtension appends extra characters to the base five.
func withExtension(extra ...characters.Character) []characters.Character {
	return append(characters.Base(), extra...)
}

// rigHand swaps cards between a player's hand and the court deck until the
// hand matches exactly, keeping per-character counts intact.
func rigHand(t *testing.T, s *State, playerIdx int, hand ...characters.Character) {
	t.Helper()
	p := &s.Players[playerIdx]
	require.Len(t, hand, len(p.Cards), "rigged hand size must match dealt size")
	for i, want := range hand {
		if p.Cards[i].Character == want {
			continue
		}
		found := false
		for j, ch := range s.Deck {
			if ch == want {
				s.Deck[j] = p.Cards[i].Character
				p.Cards[i].Character = want
				found = true
				break
			}
		}
		require.True(t, found, "no %s left in the deck to rig with", want)
	}
}

// setCoins overrides a player's balance.
func setCoins(s *State, playerIdx, coins int) {
	s.Players[playerIdx].Coins = coins
}

// totalCoins sums every player's balance.
func totalCoins(s *State) int {
	total := 0
	for i := range s.Players {
		total += s.Players[i].Coins
	}
	return total
}

// requireDeckConservation asserts that for every enabled character the deck,
// the unrevealed cards and the revealed cards add up to the configured depth.
func requireDeckConservation(t *testing.T, s *State) {
	t.Helper()
	counts := make(map[characters.Character]int)
	for _, ch := range s.Deck {
		counts[ch]++
	}
	for i := range s.Players {
		for _, c := range s.Players[i].Cards {
			counts[c.Character]++
		}
	}
	for _, ch := range s.Drawn {
		counts[ch]++
	}
	for _, ch := range s.Config.Enabled {
		require.Equal(t, s.Config.CardsPerCharacter, counts[ch],
			"conservation broken for %s", ch)
	}
}

// passAllChallenges passes the open action-challenge window for every
// eligible player and returns the resulting state.
func passAllChallenges(t *testing.T, s *State) *State {
	t.Helper()
	for s.Phase == PhaseAwaitingChallengeOnAction || s.Phase == PhaseAwaitingChallengeOnBlock {
		var err error
		progressed := false
		for _, id := range s.eligibleResponders() {
			if s.Responded[id] {
				continue
			}
			s, err = s.PassChallenge(id)
			require.NoError(t, err)
			progressed = true
			break
		}
		require.True(t, progressed, "challenge window stuck")
	}
	return s
}

// passAllBlocks waives the open block window for every eligible player.
func passAllBlocks(t *testing.T, s *State) *State {
	t.Helper()
	for s.Phase == PhaseAwaitingBlock {
		var err error
		progressed := false
		for _, id := range s.eligibleResponders() {
			if s.Responded[id] {
				continue
			}
			s, err = s.PassBlock(id)
			require.NoError(t, err)
			progressed = true
			break
		}
		require.True(t, progressed, "block window stuck")
	}
	return s
}

package game

import (
	"testing"

	"github.com/coupfree/coup-server-go/internal/game/characters"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// intoSelection parks the match on player-2 choosing a card to lose.
func intoSelection(t *testing.T, s *State) *State {
	t.Helper()
	setCoins(s, 0, 7)
	next, err := s.DeclareAction("player-1", characters.Coup, "player-2")
	require.NoError(t, err)
	require.Equal(t, PhaseAwaitingCardSelection, next.Phase)
	return next
}

func TestSelectCardToLoseRejections(t *testing.T) {
	s := intoSelection(t, newTestState(t, 3))

	// Only the parked loser may pick.
	_, err := s.SelectCardToLose("player-3", 0)
	require.ErrorIs(t, err, ErrIllegalTransition)

	// Out-of-range index.
	_, err = s.SelectCardToLose("player-2", 2)
	require.ErrorIs(t, err, ErrInvalidSelection)
	_, err = s.SelectCardToLose("player-2", -1)
	require.ErrorIs(t, err, ErrInvalidSelection)

	// Already-revealed card.
	s.Players[1].Cards[0].Revealed = true
	_, err = s.SelectCardToLose("player-2", 0)
	require.ErrorIs(t, err, ErrInvalidSelection)
}

func TestSelectionOutsideItsPhaseIsRejected(t *testing.T) {
	s := newTestState(t, 3)

	_, err := s.SelectCardToLose("player-1", 0)
	require.ErrorIs(t, err, ErrIllegalTransition)
	_, err = s.CompleteExchange("player-1", []int{0, 1})
	require.ErrorIs(t, err, ErrIllegalTransition)
	_, err = s.ResolveInquisitorChoice("player-1", InquisitorSelf, -1)
	require.ErrorIs(t, err, ErrIllegalTransition)
	_, err = s.ResolveExamine("player-1", true)
	require.ErrorIs(t, err, ErrIllegalTransition)
}

// intoExchange parks the match on player-1's exchange selection.
func intoExchange(t *testing.T, s *State) *State {
	t.Helper()
	next, err := s.DeclareAction("player-1", characters.Exchange, "")
	require.NoError(t, err)
	next = passAllChallenges(t, next)
	require.Equal(t, PhaseAwaitingExchangeSelection, next.Phase)
	return next
}

func TestCompleteExchangeKeepsTheChosenCards(t *testing.T) {
	fresh := newTestState(t, 3)
	deckBefore := len(fresh.Deck)
	s := intoExchange(t, fresh)

	// The pool indexes hand cards first, then the drawn ones. Keep both
	// drawn cards and send the original hand back.
	want0, want1 := s.Drawn[0], s.Drawn[1]

	s, err := s.CompleteExchange("player-1", []int{2, 3})
	require.NoError(t, err)

	actor, _ := s.PlayerByID("player-1")
	assert.Equal(t, want0, actor.Cards[0].Character)
	assert.Equal(t, want1, actor.Cards[1].Character)
	assert.Len(t, s.Deck, deckBefore, "returned cards rejoin the court deck")
	assert.Nil(t, s.Drawn)
	assert.Equal(t, PhaseAwaitingAction, s.Phase)
	requireDeckConservation(t, s)
}

func TestCompleteExchangeMayKeepTheOriginalHand(t *testing.T) {
	s := intoExchange(t, newTestState(t, 3))
	hand0 := s.Players[0].Cards[0].Character
	hand1 := s.Players[0].Cards[1].Character

	s, err := s.CompleteExchange("player-1", []int{0, 1})
	require.NoError(t, err)

	actor, _ := s.PlayerByID("player-1")
	assert.Equal(t, hand0, actor.Cards[0].Character)
	assert.Equal(t, hand1, actor.Cards[1].Character)
	requireDeckConservation(t, s)
}

func TestCompleteExchangeRejections(t *testing.T) {
	s := intoExchange(t, newTestState(t, 3))

	// Wrong keeper.
	_, err := s.CompleteExchange("player-2", []int{0, 1})
	require.ErrorIs(t, err, ErrIllegalTransition)

	// Wrong count: exactly alive-influence cards must be kept.
	_, err = s.CompleteExchange("player-1", []int{0})
	require.ErrorIs(t, err, ErrInvalidSelection)
	_, err = s.CompleteExchange("player-1", []int{0, 1, 2})
	require.ErrorIs(t, err, ErrInvalidSelection)

	// Duplicate and out-of-range indices.
	_, err = s.CompleteExchange("player-1", []int{1, 1})
	require.ErrorIs(t, err, ErrInvalidSelection)
	_, err = s.CompleteExchange("player-1", []int{0, 4})
	require.ErrorIs(t, err, ErrInvalidSelection)
}

func TestExchangeWithOneInfluenceFillsTheLiveSlot(t *testing.T) {
	base := newTestState(t, 3)
	base.Players[0].Cards[0].Revealed = true
	revealed := base.Players[0].Cards[0].Character

	s := intoExchange(t, base)
	require.Len(t, s.Drawn, 1)

	// Pool: the one unrevealed hand card, then the one drawn card.
	s, err := s.CompleteExchange("player-1", []int{1})
	require.NoError(t, err)

	actor, _ := s.PlayerByID("player-1")
	assert.Equal(t, revealed, actor.Cards[0].Character, "revealed slots never change")
	assert.True(t, actor.Cards[0].Revealed)
	assert.Equal(t, 1, actor.AliveInfluence())
	requireDeckConservation(t, s)
}

// intoInquisitorChoice parks the match on player-1's inquisitor sub-mode pick.
func intoInquisitorChoice(t *testing.T, s *State) *State {
	t.Helper()
	next, err := s.DeclareAction("player-1", characters.Inquire, "player-2")
	require.NoError(t, err)
	next = passAllChallenges(t, next)
	require.Equal(t, PhaseAwaitingInquisitorChoice, next.Phase)
	return next
}

func TestInquisitorSelfModeIsAOneCardExchange(t *testing.T) {
	s := intoInquisitorChoice(t, newTestState(t, 3, withExtension(characters.Inquisitor)...))

	s, err := s.ResolveInquisitorChoice("player-1", InquisitorSelf, -1)
	require.NoError(t, err)
	require.Equal(t, PhaseAwaitingExchangeSelection, s.Phase)
	require.Len(t, s.Drawn, 1)

	// Keep the drawn card and one original; the pool holds three.
	s, err = s.CompleteExchange("player-1", []int{0, 2})
	require.NoError(t, err)
	assert.Equal(t, PhaseAwaitingAction, s.Phase)
	requireDeckConservation(t, s)
}

func TestInquisitorExamineKeep(t *testing.T) {
	s := intoInquisitorChoice(t, newTestState(t, 3, withExtension(characters.Inquisitor)...))
	examined := s.Players[1].Cards[1].Character

	s, err := s.ResolveInquisitorChoice("player-1", InquisitorExamine, 1)
	require.NoError(t, err)
	require.Equal(t, PhaseAwaitingExamineDecision, s.Phase)
	assert.Equal(t, 1, s.Pending.ExaminedIndex)

	s, err = s.ResolveExamine("player-1", false)
	require.NoError(t, err)
	target, _ := s.PlayerByID("player-2")
	assert.Equal(t, examined, target.Cards[1].Character)
	assert.Equal(t, PhaseAwaitingAction, s.Phase)
}

func TestInquisitorExamineForceExchange(t *testing.T) {
	s := intoInquisitorChoice(t, newTestState(t, 3, withExtension(characters.Inquisitor)...))
	deckBefore := len(s.Deck)

	s, err := s.ResolveInquisitorChoice("player-1", InquisitorExamine, 0)
	require.NoError(t, err)
	s, err = s.ResolveExamine("player-1", true)
	require.NoError(t, err)

	// The examined card went back to the deck and a fresh one replaced it;
	// the target's influence count is untouched.
	target, _ := s.PlayerByID("player-2")
	assert.Equal(t, 2, target.AliveInfluence())
	assert.Len(t, s.Deck, deckBefore)
	assert.Equal(t, PhaseAwaitingAction, s.Phase)
	requireDeckConservation(t, s)
}

func TestInquisitorExamineRejections(t *testing.T) {
	s := intoInquisitorChoice(t, newTestState(t, 3, withExtension(characters.Inquisitor)...))

	// Only the actor decides.
	_, err := s.ResolveInquisitorChoice("player-2", InquisitorSelf, -1)
	require.ErrorIs(t, err, ErrIllegalTransition)

	// Out-of-range examine index.
	_, err = s.ResolveInquisitorChoice("player-1", InquisitorExamine, 5)
	require.ErrorIs(t, err, ErrInvalidSelection)

	// Revealed cards cannot be examined.
	s.Players[1].Cards[0].Revealed = true
	_, err = s.ResolveInquisitorChoice("player-1", InquisitorExamine, 0)
	require.ErrorIs(t, err, ErrInvalidSelection)
}

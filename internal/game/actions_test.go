package game

import (
	"testing"

	"github.com/coupfree/coup-server-go/internal/game/characters"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIncomeResolvesImmediately(t *testing.T) {
	s := newTestState(t, 3)

	next, err := s.DeclareAction("player-1", characters.Income, "")
	require.NoError(t, err)

	p, err := next.PlayerByID("player-1")
	require.NoError(t, err)
	assert.Equal(t, 3, p.Coins)
	assert.Equal(t, PhaseAwaitingAction, next.Phase)
	assert.Equal(t, "player-2", next.currentPlayerID())
	assert.Equal(t, 2, next.Turn)
}

func TestForeignAidWaitsForEveryPotentialBlocker(t *testing.T) {
	s := newTestState(t, 4)

	s, err := s.DeclareAction("player-1", characters.ForeignAid, "")
	require.NoError(t, err)
	assert.Equal(t, PhaseAwaitingBlock, s.Phase)

	// One waiver is not enough; the window stays open for the rest.
	s, err = s.PassBlock("player-2")
	require.NoError(t, err)
	assert.Equal(t, PhaseAwaitingBlock, s.Phase)

	s, err = s.PassBlock("player-3")
	require.NoError(t, err)
	assert.Equal(t, PhaseAwaitingBlock, s.Phase)

	s, err = s.PassBlock("player-4")
	require.NoError(t, err)

	p, err := s.PlayerByID("player-1")
	require.NoError(t, err)
	assert.Equal(t, 4, p.Coins)
	assert.Equal(t, PhaseAwaitingAction, s.Phase)
	assert.Equal(t, "player-2", s.currentPlayerID())
}

func TestTaxResolvesAfterUnanimousPass(t *testing.T) {
	s := newTestState(t, 3)

	s, err := s.DeclareAction("player-1", characters.Tax, "")
	require.NoError(t, err)
	assert.Equal(t, PhaseAwaitingChallengeOnAction, s.Phase)

	s = passAllChallenges(t, s)

	p, err := s.PlayerByID("player-1")
	require.NoError(t, err)
	assert.Equal(t, 5, p.Coins)
	assert.Equal(t, PhaseAwaitingAction, s.Phase)
}

func TestStealTransfersUpToTwoCoins(t *testing.T) {
	s := newTestState(t, 3)
	before := totalCoins(s)

	s, err := s.DeclareAction("player-1", characters.Steal, "player-2")
	require.NoError(t, err)
	s = passAllChallenges(t, s)

	// Steal is target-blockable: only player-2 may waive.
	assert.Equal(t, PhaseAwaitingBlock, s.Phase)
	assert.Equal(t, []string{"player-2"}, s.eligibleResponders())
	s, err = s.PassBlock("player-2")
	require.NoError(t, err)

	actor, _ := s.PlayerByID("player-1")
	target, _ := s.PlayerByID("player-2")
	assert.Equal(t, 4, actor.Coins)
	assert.Equal(t, 0, target.Coins)
	assert.Equal(t, before, totalCoins(s))
}

func TestStealFromPoorTargetTakesWhatIsThere(t *testing.T) {
	s := newTestState(t, 3)
	setCoins(s, 1, 1)

	s, err := s.DeclareAction("player-1", characters.Steal, "player-2")
	require.NoError(t, err)
	s = passAllChallenges(t, s)
	s, err = s.PassBlock("player-2")
	require.NoError(t, err)

	actor, _ := s.PlayerByID("player-1")
	target, _ := s.PlayerByID("player-2")
	assert.Equal(t, 3, actor.Coins)
	assert.Equal(t, 0, target.Coins)
}

func TestAssassinateCostIsPaidAtDeclaration(t *testing.T) {
	s := newTestState(t, 3)
	setCoins(s, 0, 3)

	next, err := s.DeclareAction("player-1", characters.Assassinate, "player-2")
	require.NoError(t, err)

	p, _ := next.PlayerByID("player-1")
	assert.Equal(t, 0, p.Coins, "the fee is deducted before any counter-window")
	assert.Equal(t, PhaseAwaitingChallengeOnAction, next.Phase)
}

func TestAssassinationForcesASelection(t *testing.T) {
	s := newTestState(t, 3)
	setCoins(s, 0, 3)

	s, err := s.DeclareAction("player-1", characters.Assassinate, "player-2")
	require.NoError(t, err)
	s = passAllChallenges(t, s)
	s, err = s.PassBlock("player-2")
	require.NoError(t, err)

	require.Equal(t, PhaseAwaitingCardSelection, s.Phase)
	require.NotNil(t, s.Loss)
	assert.Equal(t, "player-2", s.Loss.PlayerID)
	assert.Equal(t, ReasonActionEffect, s.Loss.Reason)

	s, err = s.SelectCardToLose("player-2", 0)
	require.NoError(t, err)
	target, _ := s.PlayerByID("player-2")
	assert.Equal(t, 1, target.AliveInfluence())
	assert.Equal(t, PhaseAwaitingAction, s.Phase)
	assert.Equal(t, "player-2", s.currentPlayerID())
}

func TestCoupWithoutGeneralIsUnstoppable(t *testing.T) {
	s := newTestState(t, 3)
	setCoins(s, 0, 7)

	s, err := s.DeclareAction("player-1", characters.Coup, "player-2")
	require.NoError(t, err)

	// No challenge, no block: straight to the target's card selection.
	require.Equal(t, PhaseAwaitingCardSelection, s.Phase)
	p, _ := s.PlayerByID("player-1")
	assert.Equal(t, 0, p.Coins)
}

func TestForcedCoupAtTenCoins(t *testing.T) {
	s := newTestState(t, 3)
	setCoins(s, 0, 10)

	assert.Equal(t, []characters.ActionType{characters.Coup}, s.AvailableActions())

	_, err := s.DeclareAction("player-1", characters.Income, "")
	require.ErrorIs(t, err, ErrIllegalTransition)

	_, err = s.DeclareAction("player-1", characters.Tax, "")
	require.ErrorIs(t, err, ErrIllegalTransition)

	next, err := s.DeclareAction("player-1", characters.Coup, "player-3")
	require.NoError(t, err)
	p, _ := next.PlayerByID("player-1")
	assert.Equal(t, 3, p.Coins)
}

func TestDeclareActionRejections(t *testing.T) {
	s := newTestState(t, 3)

	// Not the current player.
	_, err := s.DeclareAction("player-2", characters.Income, "")
	require.ErrorIs(t, err, ErrIllegalTransition)

	// Unaffordable.
	_, err = s.DeclareAction("player-1", characters.Coup, "player-2")
	require.ErrorIs(t, err, ErrIllegalTransition)

	// Missing target.
	_, err = s.DeclareAction("player-1", characters.Steal, "")
	require.ErrorIs(t, err, ErrIllegalTransition)

	// Self target.
	_, err = s.DeclareAction("player-1", characters.Steal, "player-1")
	require.ErrorIs(t, err, ErrIllegalTransition)

	// Target on an untargeted action.
	_, err = s.DeclareAction("player-1", characters.Tax, "player-2")
	require.ErrorIs(t, err, ErrIllegalTransition)

	// Claimed character not in the match's set.
	_, err = s.DeclareAction("player-1", characters.Inquire, "player-2")
	require.ErrorIs(t, err, ErrIllegalTransition)

	// Eliminated target.
	for i := range s.Players[2].Cards {
		s.Players[2].Cards[i].Revealed = true
	}
	_, err = s.DeclareAction("player-1", characters.Steal, "player-3")
	require.ErrorIs(t, err, ErrIllegalTransition)
}

func TestBureaucratTaxTipsTheTarget(t *testing.T) {
	s := newTestState(t, 3, withExtension(characters.Bureaucrat)...)

	s, err := s.DeclareAction("player-1", characters.BureaucratTax, "player-2")
	require.NoError(t, err)
	s = passAllChallenges(t, s)

	actor, _ := s.PlayerByID("player-1")
	target, _ := s.PlayerByID("player-2")
	assert.Equal(t, 4, actor.Coins)
	assert.Equal(t, 3, target.Coins)
	assert.Equal(t, PhaseAwaitingAction, s.Phase)
}

func TestRedistributeConservesCoins(t *testing.T) {
	s := newTestState(t, 4, withExtension(characters.Socialist)...)
	setCoins(s, 0, 0)
	setCoins(s, 1, 5)
	setCoins(s, 2, 0)
	setCoins(s, 3, 2)
	before := totalCoins(s)

	s, err := s.DeclareAction("player-1", characters.Redistribute, "")
	require.NoError(t, err)
	s = passAllChallenges(t, s)

	// Pool of 2 (from players 2 and 4): the actor keeps one coin, the
	// remainder deals out in seat order after the actor.
	actor, _ := s.PlayerByID("player-1")
	p2, _ := s.PlayerByID("player-2")
	p3, _ := s.PlayerByID("player-3")
	p4, _ := s.PlayerByID("player-4")
	assert.Equal(t, 1, actor.Coins)
	assert.Equal(t, 5, p2.Coins)
	assert.Equal(t, 0, p3.Coins)
	assert.Equal(t, 1, p4.Coins)
	assert.Equal(t, before, totalCoins(s))
}

func TestExchangeDrawsAliveInfluenceWorth(t *testing.T) {
	s := newTestState(t, 3)

	s, err := s.DeclareAction("player-1", characters.Exchange, "")
	require.NoError(t, err)
	s = passAllChallenges(t, s)

	require.Equal(t, PhaseAwaitingExchangeSelection, s.Phase)
	assert.Len(t, s.Drawn, 2)
	requireDeckConservation(t, s)
}

func TestExchangeWithOneInfluenceDrawsOne(t *testing.T) {
	s := newTestState(t, 3)
	s.Players[0].Cards[0].Revealed = true

	s, err := s.DeclareAction("player-1", characters.Exchange, "")
	require.NoError(t, err)
	s = passAllChallenges(t, s)

	require.Equal(t, PhaseAwaitingExchangeSelection, s.Phase)
	assert.Len(t, s.Drawn, 1)
}

func TestInquireOpensTheChoiceWindow(t *testing.T) {
	s := newTestState(t, 3, withExtension(characters.Inquisitor)...)

	s, err := s.DeclareAction("player-1", characters.Inquire, "player-2")
	require.NoError(t, err)
	s = passAllChallenges(t, s)

	// Inquire is blockable by the target claiming Diplomat, but the Diplomat
	// is not in this match's set, so the window resolves straight through.
	assert.Equal(t, PhaseAwaitingInquisitorChoice, s.Phase)
}

func TestInquireBlockWindowNeedsTheDiplomat(t *testing.T) {
	s := newTestState(t, 3, withExtension(characters.Inquisitor, characters.Diplomat)...)

	s, err := s.DeclareAction("player-1", characters.Inquire, "player-2")
	require.NoError(t, err)
	s = passAllChallenges(t, s)

	require.Equal(t, PhaseAwaitingBlock, s.Phase)
	assert.Equal(t, []string{"player-2"}, s.eligibleResponders())

	s, err = s.PassBlock("player-2")
	require.NoError(t, err)
	assert.Equal(t, PhaseAwaitingInquisitorChoice, s.Phase)
}

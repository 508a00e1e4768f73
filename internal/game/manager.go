package game

import (
	"fmt"
	"sync"
	"time"

	"github.com/coupfree/coup-server-go/internal/game/characters"
	"go.uber.org/zap"
)

// Command is one transition request in wire form. Hosts (relay, bots,
// timeout synthesizers) speak Command; the manager translates it into the
// engine's transition vocabulary.
type Command struct {
	Type     string `json:"type"`
	PlayerID string `json:"player_id"`
	Action   string `json:"action,omitempty"`
	TargetID string `json:"target_id,omitempty"`
	Claim    string `json:"claim,omitempty"`
	Index    int    `json:"index,omitempty"`
	Kept     []int  `json:"kept,omitempty"`
	Choice   string `json:"choice,omitempty"`
	Force    bool   `json:"force,omitempty"`
}

// Command types accepted by Manager.Apply.
const (
	CmdDeclareAction         = "DECLARE_ACTION"
	CmdChallengeAction       = "CHALLENGE_ACTION"
	CmdPassChallenge         = "PASS_CHALLENGE"
	CmdDeclareBlock          = "DECLARE_BLOCK"
	CmdChallengeBlock        = "CHALLENGE_BLOCK"
	CmdPassBlock             = "PASS_BLOCK"
	CmdSelectCard            = "SELECT_CARD"
	CmdCompleteExchange      = "COMPLETE_EXCHANGE"
	CmdInquisitorChoice      = "INQUISITOR_CHOICE"
	CmdResolveExamine        = "RESOLVE_EXAMINE"
	CmdDeclareRedirect       = "DECLARE_REDIRECT"
	CmdChallengeRedirect     = "CHALLENGE_REDIRECT"
	CmdPassRedirect          = "PASS_REDIRECT"
	CmdPassRedirectChallenge = "PASS_REDIRECT_CHALLENGE"
)

// MatchNotification tells registered observers that a match produced a new
// authoritative state.
type MatchNotification struct {
	MatchID   string
	Turn      int
	Phase     string
	Timestamp time.Time
}

// NotificationHandler receives match notifications. Handlers run on their
// own goroutine and may safely call back into the manager.
type NotificationHandler func(notification MatchNotification)

type matchEntry struct {
	mu      sync.Mutex
	state   *State
	history *History
}

// Manager owns the live matches of one process. It serializes transitions
// per match, which is the caller contract the pure engine requires, and
// records every successor for replay.
type Manager struct {
	logger              *zap.Logger
	mu                  sync.RWMutex
	matches             map[string]*matchEntry
	notificationHandler NotificationHandler
}

// NewManager creates a match manager.
func NewManager(logger *zap.Logger) *Manager {
	return &Manager{
		logger:  logger,
		matches: make(map[string]*matchEntry),
	}
}

// SetNotificationHandler registers the observer hook, typically the relay.
func (m *Manager) SetNotificationHandler(handler NotificationHandler) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notificationHandler = handler
}

func (m *Manager) notify(state *State, matchID string) {
	m.mu.RLock()
	handler := m.notificationHandler
	m.mu.RUnlock()

	if handler != nil {
		go handler(MatchNotification{
			MatchID:   matchID,
			Turn:      state.Turn,
			Phase:     state.Phase.String(),
			Timestamp: time.Now(),
		})
	}
}

// StartMatch constructs a new match under the given id.
func (m *Manager) StartMatch(matchID string, cfg Config) error {
	if matchID == "" {
		return fmt.Errorf("matchID is required")
	}

	state, err := NewState(cfg)
	if err != nil {
		return fmt.Errorf("failed to start match %s: %w", matchID, err)
	}

	m.mu.Lock()
	if _, exists := m.matches[matchID]; exists {
		m.mu.Unlock()
		return fmt.Errorf("match %s already exists", matchID)
	}
	entry := &matchEntry{state: state, history: NewHistory(matchID)}
	entry.history.Record(state)
	m.matches[matchID] = entry
	m.mu.Unlock()

	if m.logger != nil {
		m.logger.Info("match started",
			zap.String("match_id", matchID),
			zap.Int("players", cfg.PlayerCount),
			zap.Int64("seed", state.Config.Seed),
		)
	}
	m.notify(state, matchID)
	return nil
}

func (m *Manager) entry(matchID string) (*matchEntry, error) {
	m.mu.RLock()
	entry, exists := m.matches[matchID]
	m.mu.RUnlock()
	if !exists {
		return nil, fmt.Errorf("match %s not found", matchID)
	}
	return entry, nil
}

// Apply translates a command into a transition and installs the successor
// state. Rejected commands leave the match exactly as it was.
func (m *Manager) Apply(matchID string, cmd Command) (*State, error) {
	entry, err := m.entry(matchID)
	if err != nil {
		return nil, err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	next, err := dispatch(entry.state, cmd)
	if err != nil {
		if m.logger != nil {
			m.logger.Debug("transition rejected",
				zap.String("match_id", matchID),
				zap.String("command", cmd.Type),
				zap.String("player_id", cmd.PlayerID),
				zap.Error(err),
			)
		}
		return nil, err
	}

	entry.state = next
	entry.history.Record(next)

	if m.logger != nil {
		m.logger.Info("transition applied",
			zap.String("match_id", matchID),
			zap.String("command", cmd.Type),
			zap.String("player_id", cmd.PlayerID),
			zap.String("phase", next.Phase.String()),
			zap.Int("turn", next.Turn),
		)
	}
	m.notify(next, matchID)
	return next, nil
}

// dispatch routes a command to the engine's transition vocabulary.
func dispatch(state *State, cmd Command) (*State, error) {
	switch cmd.Type {
	case CmdDeclareAction:
		action, ok := characters.ParseActionType(cmd.Action)
		if !ok {
			return nil, fmt.Errorf("%w: unknown action %q", ErrIllegalTransition, cmd.Action)
		}
		return state.DeclareAction(cmd.PlayerID, action, cmd.TargetID)
	case CmdChallengeAction:
		return state.ChallengeAction(cmd.PlayerID)
	case CmdPassChallenge:
		return state.PassChallenge(cmd.PlayerID)
	case CmdDeclareBlock:
		claim, ok := characters.ParseCharacter(cmd.Claim)
		if !ok {
			return nil, fmt.Errorf("%w: unknown character %q", ErrIllegalTransition, cmd.Claim)
		}
		return state.DeclareBlock(cmd.PlayerID, claim)
	case CmdChallengeBlock:
		return state.ChallengeBlock(cmd.PlayerID)
	case CmdPassBlock:
		return state.PassBlock(cmd.PlayerID)
	case CmdSelectCard:
		return state.SelectCardToLose(cmd.PlayerID, cmd.Index)
	case CmdCompleteExchange:
		return state.CompleteExchange(cmd.PlayerID, cmd.Kept)
	case CmdInquisitorChoice:
		switch cmd.Choice {
		case InquisitorSelf.String():
			return state.ResolveInquisitorChoice(cmd.PlayerID, InquisitorSelf, -1)
		case InquisitorExamine.String():
			return state.ResolveInquisitorChoice(cmd.PlayerID, InquisitorExamine, cmd.Index)
		default:
			return nil, fmt.Errorf("%w: unknown inquisitor choice %q", ErrInvalidSelection, cmd.Choice)
		}
	case CmdResolveExamine:
		return state.ResolveExamine(cmd.PlayerID, cmd.Force)
	case CmdDeclareRedirect:
		return state.DeclareCoupRedirect(cmd.PlayerID, cmd.TargetID)
	case CmdChallengeRedirect:
		return state.ChallengeCoupRedirect(cmd.PlayerID)
	case CmdPassRedirect:
		return state.PassCoupRedirect(cmd.PlayerID)
	case CmdPassRedirectChallenge:
		return state.PassCoupRedirectChallenge(cmd.PlayerID)
	default:
		return nil, fmt.Errorf("unknown command type: %s", cmd.Type)
	}
}

// CurrentState returns the latest authoritative state of a match.
func (m *Manager) CurrentState(matchID string) (*State, error) {
	entry, err := m.entry(matchID)
	if err != nil {
		return nil, err
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	return entry.state, nil
}

// View returns the redacted projection of a match for one viewer.
func (m *Manager) View(matchID, viewerID string) (StateView, error) {
	state, err := m.CurrentState(matchID)
	if err != nil {
		return StateView{}, err
	}
	return state.View(viewerID), nil
}

// MatchHistory returns the recorded successor states of a match.
func (m *Manager) MatchHistory(matchID string) (*History, error) {
	entry, err := m.entry(matchID)
	if err != nil {
		return nil, err
	}
	return entry.history, nil
}

// RemoveMatch drops a finished match from the manager.
func (m *Manager) RemoveMatch(matchID string) {
	m.mu.Lock()
	delete(m.matches, matchID)
	m.mu.Unlock()

	if m.logger != nil {
		m.logger.Info("match removed", zap.String("match_id", matchID))
	}
}

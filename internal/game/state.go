package game

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/coupfree/coup-server-go/internal/game/characters"
)

// Phase names the decision the engine is waiting on. Waiting is purely a
// state label: the engine never blocks.
type Phase int

const (
	PhaseAwaitingAction Phase = iota
	PhaseAwaitingChallengeOnAction
	PhaseAwaitingBlock
	PhaseAwaitingChallengeOnBlock
	PhaseAwaitingCardSelection
	PhaseAwaitingExchangeSelection
	PhaseAwaitingExamineDecision
	PhaseAwaitingInquisitorChoice
	PhaseAwaitingCoupRedirect
	PhaseAwaitingCoupRedirectChallenge
	PhaseGameOver
)

var phaseNames = map[Phase]string{
	PhaseAwaitingAction:                "AWAITING_ACTION",
	PhaseAwaitingChallengeOnAction:     "AWAITING_CHALLENGE_ON_ACTION",
	PhaseAwaitingBlock:                 "AWAITING_BLOCK",
	PhaseAwaitingChallengeOnBlock:      "AWAITING_CHALLENGE_ON_BLOCK",
	PhaseAwaitingCardSelection:         "AWAITING_CARD_SELECTION",
	PhaseAwaitingExchangeSelection:     "AWAITING_EXCHANGE_SELECTION",
	PhaseAwaitingExamineDecision:       "AWAITING_EXAMINE_DECISION",
	PhaseAwaitingInquisitorChoice:      "AWAITING_INQUISITOR_CHOICE",
	PhaseAwaitingCoupRedirect:          "AWAITING_COUP_REDIRECT",
	PhaseAwaitingCoupRedirectChallenge: "AWAITING_COUP_REDIRECT_CHALLENGE",
	PhaseGameOver:                      "GAME_OVER",
}

func (p Phase) String() string {
	if name, ok := phaseNames[p]; ok {
		return name
	}
	return fmt.Sprintf("PHASE_%d", int(p))
}

// InfluenceCard is one influence slot of a player. The true identity becomes
// public exactly when Revealed flips true, irreversibly. Cards are never
// removed from a player; revealed cards persist as placeholders.
type InfluenceCard struct {
	Character characters.Character `json:"character"`
	Revealed  bool                 `json:"revealed"`
}

// Player is one seat in the match.
type Player struct {
	ID      string          `json:"id"`
	Name    string          `json:"name"`
	Coins   int             `json:"coins"`
	Cards   []InfluenceCard `json:"cards"`
	Faction string          `json:"faction,omitempty"`
}

// AliveInfluence returns the number of unrevealed cards the player holds.
func (p *Player) AliveInfluence() int {
	n := 0
	for _, c := range p.Cards {
		if !c.Revealed {
			n++
		}
	}
	return n
}

// Eliminated reports whether the player has lost all influence. The flag is
// derived, never stored, so it can only flip false to true.
func (p *Player) Eliminated() bool {
	return p.AliveInfluence() == 0
}

// holds reports whether the player has at least one unrevealed card of ch.
func (p *Player) holds(ch characters.Character) bool {
	return p.countUnrevealed(ch) > 0
}

func (p *Player) countUnrevealed(ch characters.Character) int {
	n := 0
	for _, c := range p.Cards {
		if !c.Revealed && c.Character == ch {
			n++
		}
	}
	return n
}

// PendingAction is the action currently under resolution.
type PendingAction struct {
	Type             characters.ActionType `json:"type"`
	SourceID         string                `json:"source_id"`
	TargetID         string                `json:"target_id,omitempty"`
	Claim            characters.Character  `json:"claim"`
	HasClaim         bool                  `json:"has_claim"`
	ExaminedIndex    int                   `json:"examined_index"`
	RedirectDeclined bool                  `json:"redirect_declined"`
}

// PendingBlock is a declared block awaiting its own challenge window.
type PendingBlock struct {
	BlockerID string               `json:"blocker_id"`
	Claim     characters.Character `json:"claim"`
}

// LossReason records why an influence loss was demanded.
type LossReason int

const (
	ReasonChallengePenalty LossReason = iota
	ReasonActionEffect
)

var lossReasonNames = map[LossReason]string{
	ReasonChallengePenalty: "CHALLENGE_PENALTY",
	ReasonActionEffect:     "ACTION_EFFECT",
}

func (r LossReason) String() string {
	if name, ok := lossReasonNames[r]; ok {
		return name
	}
	return fmt.Sprintf("REASON_%d", int(r))
}

// LossStage records which protocol window demanded the loss. Together with
// the reason and the loser's relationship to the pending action it fully
// determines the post-loss routing; routeAfterLoss is the single dispatch
// point.
type LossStage int

const (
	StageActionChallenge LossStage = iota
	StageBlockChallenge
	StageRedirectChallenge
	StageEffect
)

var lossStageNames = map[LossStage]string{
	StageActionChallenge:   "ACTION_CHALLENGE",
	StageBlockChallenge:    "BLOCK_CHALLENGE",
	StageRedirectChallenge: "REDIRECT_CHALLENGE",
	StageEffect:            "EFFECT",
}

func (s LossStage) String() string {
	if name, ok := lossStageNames[s]; ok {
		return name
	}
	return fmt.Sprintf("STAGE_%d", int(s))
}

// PendingLoss is an influence loss waiting for the loser to pick a card.
type PendingLoss struct {
	PlayerID string     `json:"player_id"`
	Reason   LossReason `json:"reason"`
	Stage    LossStage  `json:"stage"`
}

// LogEntry is one line of the per-match event log. IDs come from the state's
// own monotonic counter so observers can order and deduplicate entries
// without any shared global.
type LogEntry struct {
	ID   uint64 `json:"id"`
	Turn int    `json:"turn"`
	Text string `json:"text"`
}

// Config enumerates the knobs of a match at construction time.
type Config struct {
	// PlayerIDs and PlayerNames override generated seats; both are optional
	// but must match PlayerCount when set.
	PlayerCount int      `json:"player_count"`
	PlayerIDs   []string `json:"player_ids,omitempty"`
	PlayerNames []string `json:"player_names,omitempty"`

	// Enabled is the character set in play. It must include the base five;
	// defaults to exactly the base five.
	Enabled []characters.Character `json:"enabled"`

	// CardsPerCharacter is the court deck depth per character (default 3).
	CardsPerCharacter int `json:"cards_per_character"`

	// CardsPerPlayer is the influence dealt to each seat (default 2).
	CardsPerPlayer int `json:"cards_per_player"`

	// StartingCoins seeds every player's balance (default 2).
	StartingCoins int `json:"starting_coins"`

	// Factions assigns alternating faction tags. The tags are carried and
	// exposed but have no effect on the core rules.
	Factions bool `json:"factions"`

	// Seed drives every shuffle and draw. Zero picks a time-based seed;
	// set it explicitly for reproducible matches and replays.
	Seed int64 `json:"seed"`
}

const (
	defaultCardsPerCharacter = 3
	defaultCardsPerPlayer    = 2
	defaultStartingCoins     = 2

	// forcedCoupThreshold is the coin balance at which Coup becomes the
	// only legal declaration.
	forcedCoupThreshold = 10

	minPlayers = 2
	maxPlayers = 6
)

// State is the aggregate root of one match. Every transition consumes a
// State and returns a fresh successor; nothing mutates in place. That makes
// full-state broadcast, diffing and replay trivial: one transition, one
// authoritative successor, applied everywhere in production order.
type State struct {
	Config Config `json:"config"`

	Players []Player `json:"players"`

	// Deck is the court deck: the multiset of characters not currently held
	// unrevealed by any player.
	Deck []characters.Character `json:"deck"`

	CurrentPlayer int   `json:"current_player"`
	Phase         Phase `json:"phase"`
	Turn          int   `json:"turn"`

	Pending *PendingAction `json:"pending,omitempty"`
	Block   *PendingBlock  `json:"block,omitempty"`
	Loss    *PendingLoss   `json:"loss,omitempty"`

	// Responded collects the ids that have already passed on the current
	// challenge, block or redirect-challenge opportunity.
	Responded map[string]bool `json:"responded,omitempty"`

	// Drawn holds cards temporarily drawn during an exchange. They are
	// visible only to the acting player; views must redact them.
	Drawn []characters.Character `json:"drawn,omitempty"`

	// RedirectChain lists, for a single Coup, the original target followed
	// by one entry per redirection hop. RedirectSourceID remembers the
	// player who declared the Coup.
	RedirectChain    []string `json:"redirect_chain,omitempty"`
	RedirectSourceID string   `json:"redirect_source_id,omitempty"`

	WinnerID string `json:"winner_id,omitempty"`

	Log       []LogEntry `json:"log"`
	NextLogID uint64     `json:"next_log_id"`

	// rng is shared by a state and its successors. Transitions are applied
	// serially by the caller, so the shared source is safe and keeps a
	// seeded match fully reproducible.
	rng *rand.Rand
}

// NewState shuffles the court deck, deals influence and seeds coins.
func NewState(cfg Config) (*State, error) {
	if cfg.PlayerCount < minPlayers || cfg.PlayerCount > maxPlayers {
		return nil, fmt.Errorf("player count %d out of range [%d,%d]", cfg.PlayerCount, minPlayers, maxPlayers)
	}
	if cfg.PlayerIDs != nil && len(cfg.PlayerIDs) != cfg.PlayerCount {
		return nil, fmt.Errorf("got %d player ids for %d players", len(cfg.PlayerIDs), cfg.PlayerCount)
	}
	if cfg.PlayerNames != nil && len(cfg.PlayerNames) != cfg.PlayerCount {
		return nil, fmt.Errorf("got %d player names for %d players", len(cfg.PlayerNames), cfg.PlayerCount)
	}

	if cfg.Enabled == nil {
		cfg.Enabled = characters.Base()
	}
	seen := make(map[characters.Character]bool, len(cfg.Enabled))
	for _, ch := range cfg.Enabled {
		if !characters.Known(ch) {
			return nil, fmt.Errorf("unknown character %d in enabled set", int(ch))
		}
		if seen[ch] {
			return nil, fmt.Errorf("duplicate character %s in enabled set", ch)
		}
		seen[ch] = true
	}
	for _, ch := range characters.Base() {
		if !seen[ch] {
			return nil, fmt.Errorf("enabled set must include the base five, missing %s", ch)
		}
	}

	if cfg.CardsPerCharacter == 0 {
		cfg.CardsPerCharacter = defaultCardsPerCharacter
	}
	if cfg.CardsPerPlayer == 0 {
		cfg.CardsPerPlayer = defaultCardsPerPlayer
	}
	if cfg.StartingCoins == 0 {
		cfg.StartingCoins = defaultStartingCoins
	}
	if cfg.CardsPerCharacter < 1 || cfg.CardsPerPlayer < 1 {
		return nil, fmt.Errorf("deck depth %d and influence count %d must be positive", cfg.CardsPerCharacter, cfg.CardsPerPlayer)
	}
	total := cfg.CardsPerCharacter * len(cfg.Enabled)
	dealt := cfg.PlayerCount * cfg.CardsPerPlayer
	if dealt >= total {
		return nil, fmt.Errorf("deck of %d cards cannot deal %d and keep a court reserve", total, dealt)
	}
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}

	s := &State{
		Config:    cfg,
		Phase:     PhaseAwaitingAction,
		Turn:      1,
		Responded: make(map[string]bool),
		rng:       rand.New(rand.NewSource(cfg.Seed)),
	}

	s.Deck = make([]characters.Character, 0, total)
	for _, ch := range cfg.Enabled {
		for i := 0; i < cfg.CardsPerCharacter; i++ {
			s.Deck = append(s.Deck, ch)
		}
	}
	s.shuffleDeck()

	s.Players = make([]Player, cfg.PlayerCount)
	for i := range s.Players {
		p := &s.Players[i]
		if cfg.PlayerIDs != nil {
			p.ID = cfg.PlayerIDs[i]
		} else {
			p.ID = fmt.Sprintf("player-%d", i+1)
		}
		if cfg.PlayerNames != nil {
			p.Name = cfg.PlayerNames[i]
		} else {
			p.Name = p.ID
		}
		p.Coins = cfg.StartingCoins
		if cfg.Factions {
			if i%2 == 0 {
				p.Faction = "LOYALIST"
			} else {
				p.Faction = "REFORMIST"
			}
		}
		p.Cards = make([]InfluenceCard, 0, cfg.CardsPerPlayer)
		for j := 0; j < cfg.CardsPerPlayer; j++ {
			p.Cards = append(p.Cards, InfluenceCard{Character: s.drawCard()})
		}
	}

	s.logf("match started with %d players", cfg.PlayerCount)
	return s, nil
}

// clone returns a deep copy sharing only the random source.
func (s *State) clone() *State {
	next := &State{
		Config:           s.Config,
		Players:          make([]Player, len(s.Players)),
		Deck:             append([]characters.Character(nil), s.Deck...),
		CurrentPlayer:    s.CurrentPlayer,
		Phase:            s.Phase,
		Turn:             s.Turn,
		Responded:        make(map[string]bool, len(s.Responded)),
		Drawn:            append([]characters.Character(nil), s.Drawn...),
		RedirectChain:    append([]string(nil), s.RedirectChain...),
		RedirectSourceID: s.RedirectSourceID,
		WinnerID:         s.WinnerID,
		Log:              append([]LogEntry(nil), s.Log...),
		NextLogID:        s.NextLogID,
		rng:              s.rng,
	}
	for i := range s.Players {
		next.Players[i] = s.Players[i]
		next.Players[i].Cards = append([]InfluenceCard(nil), s.Players[i].Cards...)
	}
	for id := range s.Responded {
		next.Responded[id] = true
	}
	if s.Pending != nil {
		pending := *s.Pending
		next.Pending = &pending
	}
	if s.Block != nil {
		block := *s.Block
		next.Block = &block
	}
	if s.Loss != nil {
		loss := *s.Loss
		next.Loss = &loss
	}
	return next
}

// player returns a pointer into this state's roster.
func (s *State) player(id string) (*Player, error) {
	for i := range s.Players {
		if s.Players[i].ID == id {
			return &s.Players[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownPlayer, id)
}

func (s *State) currentPlayerID() string {
	return s.Players[s.CurrentPlayer].ID
}

func (s *State) logf(format string, args ...any) {
	s.NextLogID++
	s.Log = append(s.Log, LogEntry{
		ID:   s.NextLogID,
		Turn: s.Turn,
		Text: fmt.Sprintf(format, args...),
	})
}

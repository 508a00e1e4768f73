package table

import (
	"fmt"
	"sync"
	"time"

	"github.com/coupfree/coup-server-go/internal/game"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// TableState tracks a table through its lifecycle.
type TableState int

const (
	TableStateWaiting TableState = iota
	TableStatePlaying
	TableStateFinished
)

func (s TableState) String() string {
	switch s {
	case TableStateWaiting:
		return "WAITING"
	case TableStatePlaying:
		return "PLAYING"
	case TableStateFinished:
		return "FINISHED"
	default:
		return "UNKNOWN"
	}
}

// Seat is one player at a table.
type Seat struct {
	PlayerID   string
	PlayerName string
}

// SeatSnapshot captures seat data for external use.
type SeatSnapshot struct {
	PlayerID   string
	PlayerName string
}

// TableSnapshot captures a consistent view of a table.
type TableSnapshot struct {
	ID         string
	Name       string
	HostName   string
	State      TableState
	Private    bool
	Seats      []SeatSnapshot
	MaxPlayers int
	MatchID    string
	CreateTime time.Time
	StartTime  *time.Time
}

// Table gathers players before a match. A private table carries a bcrypt
// hash of its passcode; the plaintext is never stored.
type Table struct {
	ID           string
	Name         string
	HostName     string
	State        TableState
	passcodeHash []byte
	Seats        []Seat
	MaxPlayers   int
	MatchID      string
	CreateTime   time.Time
	StartTime    *time.Time
	mu           sync.RWMutex
}

const (
	minSeats = 2
	maxSeats = 6
)

// newTable creates a waiting table. passcode may be empty for a public table.
func newTable(name, hostName, passcode string, maxPlayers int) (*Table, error) {
	if maxPlayers < minSeats || maxPlayers > maxSeats {
		return nil, fmt.Errorf("table size %d out of range [%d,%d]", maxPlayers, minSeats, maxSeats)
	}

	t := &Table{
		ID:         uuid.New().String(),
		Name:       name,
		HostName:   hostName,
		State:      TableStateWaiting,
		Seats:      make([]Seat, 0, maxPlayers),
		MaxPlayers: maxPlayers,
		CreateTime: time.Now(),
	}
	if passcode != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(passcode), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash passcode: %w", err)
		}
		t.passcodeHash = hash
	}
	return t, nil
}

// Private reports whether joining needs a passcode.
func (t *Table) Private() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.passcodeHash != nil
}

// Join seats a player. Private tables verify the passcode against the stored
// bcrypt hash.
func (t *Table) Join(playerName, passcode string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.State != TableStateWaiting {
		return fmt.Errorf("table already started")
	}
	if len(t.Seats) >= t.MaxPlayers {
		return fmt.Errorf("table is full")
	}
	if t.passcodeHash != nil {
		if err := bcrypt.CompareHashAndPassword(t.passcodeHash, []byte(passcode)); err != nil {
			return fmt.Errorf("wrong passcode")
		}
	}
	for _, seat := range t.Seats {
		if seat.PlayerName == playerName {
			return fmt.Errorf("player already seated")
		}
	}

	t.Seats = append(t.Seats, Seat{
		PlayerID:   uuid.New().String(),
		PlayerName: playerName,
	})
	return nil
}

// Leave frees a player's seat on a waiting table.
func (t *Table) Leave(playerName string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.State != TableStateWaiting {
		return fmt.Errorf("table already started")
	}
	for i, seat := range t.Seats {
		if seat.PlayerName == playerName {
			t.Seats = append(t.Seats[:i], t.Seats[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("player not seated")
}

// SeatCount returns the number of seated players.
func (t *Table) SeatCount() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.Seats)
}

// IsHost checks whether the given player created the table.
func (t *Table) IsHost(playerName string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.HostName == playerName
}

// Snapshot returns a consistent copy of the table state.
func (t *Table) Snapshot() TableSnapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()

	seats := make([]SeatSnapshot, 0, len(t.Seats))
	for _, seat := range t.Seats {
		seats = append(seats, SeatSnapshot{
			PlayerID:   seat.PlayerID,
			PlayerName: seat.PlayerName,
		})
	}

	var start *time.Time
	if t.StartTime != nil {
		cp := *t.StartTime
		start = &cp
	}
	return TableSnapshot{
		ID:         t.ID,
		Name:       t.Name,
		HostName:   t.HostName,
		State:      t.State,
		Private:    t.passcodeHash != nil,
		Seats:      seats,
		MaxPlayers: t.MaxPlayers,
		MatchID:    t.MatchID,
		CreateTime: t.CreateTime,
		StartTime:  start,
	}
}

// Manager manages tables and starts their matches.
type Manager struct {
	tables  map[string]*Table
	mu      sync.RWMutex
	matches *game.Manager
	logger  *zap.Logger
}

// NewManager creates a table manager backed by the given match manager.
func NewManager(matches *game.Manager, logger *zap.Logger) *Manager {
	return &Manager{
		tables:  make(map[string]*Table),
		matches: matches,
		logger:  logger,
	}
}

// CreateTable opens a new waiting table. The host is seated immediately.
func (m *Manager) CreateTable(name, hostName, passcode string, maxPlayers int) (*Table, error) {
	t, err := newTable(name, hostName, passcode, maxPlayers)
	if err != nil {
		return nil, err
	}
	if err := t.Join(hostName, passcode); err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.tables[t.ID] = t
	m.mu.Unlock()

	m.logger.Info("table created",
		zap.String("table_id", t.ID),
		zap.String("name", name),
		zap.String("host", hostName),
		zap.Bool("private", t.Private()),
	)
	return t, nil
}

// GetTable retrieves a table by ID.
func (m *Manager) GetTable(tableID string) (*Table, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	t, ok := m.tables[tableID]
	return t, ok
}

// GetAllTables returns every table.
func (m *Manager) GetAllTables() []*Table {
	m.mu.RLock()
	defer m.mu.RUnlock()

	tables := make([]*Table, 0, len(m.tables))
	for _, t := range m.tables {
		tables = append(tables, t)
	}
	return tables
}

// RemoveTable drops a table.
func (m *Manager) RemoveTable(tableID string) {
	m.mu.Lock()
	delete(m.tables, tableID)
	m.mu.Unlock()

	m.logger.Info("table removed", zap.String("table_id", tableID))
}

// StartMatch starts the table's match through the match manager. Only the
// host may start, and only with enough seated players. Seat order becomes
// production order.
func (m *Manager) StartMatch(tableID, hostName string, cfg game.Config) (string, error) {
	t, ok := m.GetTable(tableID)
	if !ok {
		return "", fmt.Errorf("table %s not found", tableID)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.HostName != hostName {
		return "", fmt.Errorf("only the host may start the match")
	}
	if t.State != TableStateWaiting {
		return "", fmt.Errorf("table already started")
	}
	if len(t.Seats) < minSeats {
		return "", fmt.Errorf("need at least %d players, have %d", minSeats, len(t.Seats))
	}

	cfg.PlayerCount = len(t.Seats)
	cfg.PlayerIDs = make([]string, 0, len(t.Seats))
	cfg.PlayerNames = make([]string, 0, len(t.Seats))
	for _, seat := range t.Seats {
		cfg.PlayerIDs = append(cfg.PlayerIDs, seat.PlayerID)
		cfg.PlayerNames = append(cfg.PlayerNames, seat.PlayerName)
	}

	matchID := uuid.New().String()
	if err := m.matches.StartMatch(matchID, cfg); err != nil {
		return "", fmt.Errorf("failed to start table match: %w", err)
	}

	now := time.Now()
	t.State = TableStatePlaying
	t.MatchID = matchID
	t.StartTime = &now

	m.logger.Info("table match started",
		zap.String("table_id", t.ID),
		zap.String("match_id", matchID),
		zap.Int("players", len(t.Seats)),
	)
	return matchID, nil
}

// TableForMatch finds the table whose match carries the given id.
func (m *Manager) TableForMatch(matchID string) (*Table, bool) {
	if matchID == "" {
		return nil, false
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, t := range m.tables {
		t.mu.RLock()
		id := t.MatchID
		t.mu.RUnlock()
		if id == matchID {
			return t, true
		}
	}
	return nil, false
}

// FinishMatch marks the table finished once its match is over.
func (m *Manager) FinishMatch(tableID string) {
	t, ok := m.GetTable(tableID)
	if !ok {
		return
	}
	t.mu.Lock()
	t.State = TableStateFinished
	t.mu.Unlock()
}

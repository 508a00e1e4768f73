package game

import (
	"compress/gzip"
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// History records every authoritative successor state of one match, in the
// order the engine produced them. Replaying is just walking the record: the
// full state is the unit of synchronization, so no event re-execution is
// needed.
type History struct {
	MatchID      string
	States       []*State
	CurrentIndex int
	mu           sync.RWMutex
}

type historyMetadata struct {
	MatchID    string
	Timestamp  time.Time
	Version    int
	StateCount int
}

// NewHistory creates an empty history for a match.
func NewHistory(matchID string) *History {
	return &History{
		MatchID: matchID,
		States:  make([]*State, 0),
	}
}

// Record appends a successor state.
func (h *History) Record(state *State) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.States = append(h.States, state)
}

// Start resets playback to the beginning.
func (h *History) Start() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.CurrentIndex = 0
}

// Next moves playback forward and returns the state, or nil at the end.
func (h *History) Next() *State {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.CurrentIndex < len(h.States) {
		state := h.States[h.CurrentIndex]
		h.CurrentIndex++
		return state
	}
	return nil
}

// Previous moves playback backward and returns the state, or nil at the start.
func (h *History) Previous() *State {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.CurrentIndex > 0 {
		h.CurrentIndex--
		return h.States[h.CurrentIndex]
	}
	return nil
}

// Skip moves playback by count states in either direction, clamped to the
// recorded range.
func (h *History) Skip(count int) *State {
	h.mu.Lock()
	defer h.mu.Unlock()

	newIndex := h.CurrentIndex + count
	if newIndex >= len(h.States) {
		newIndex = len(h.States) - 1
	}
	if newIndex < 0 {
		newIndex = 0
	}

	h.CurrentIndex = newIndex
	if h.CurrentIndex < len(h.States) {
		return h.States[h.CurrentIndex]
	}
	return nil
}

// Size returns the number of recorded states.
func (h *History) Size() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.States)
}

// StateAt returns the state at a specific index, or nil out of range.
func (h *History) StateAt(index int) *State {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if index >= 0 && index < len(h.States) {
		return h.States[index]
	}
	return nil
}

// SaveToFile writes the history to <directory>/<matchID>.history as gzipped
// gob.
func (h *History) SaveToFile(directory string) error {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if err := os.MkdirAll(directory, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	filename := filepath.Join(directory, fmt.Sprintf("%s.history", h.MatchID))
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	gzipWriter := gzip.NewWriter(file)
	defer gzipWriter.Close()

	encoder := gob.NewEncoder(gzipWriter)

	metadata := historyMetadata{
		MatchID:    h.MatchID,
		Timestamp:  time.Now(),
		Version:    1,
		StateCount: len(h.States),
	}
	if err := encoder.Encode(metadata); err != nil {
		return fmt.Errorf("failed to encode metadata: %w", err)
	}
	for i, state := range h.States {
		if err := encoder.Encode(state); err != nil {
			return fmt.Errorf("failed to encode state %d: %w", i, err)
		}
	}
	return nil
}

// LoadHistoryFromFile reads a history saved by SaveToFile. Loaded states are
// playback-only: they carry no random source and must not receive further
// transitions.
func LoadHistoryFromFile(directory, matchID string) (*History, error) {
	filename := filepath.Join(directory, fmt.Sprintf("%s.history", matchID))
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	gzipReader, err := gzip.NewReader(file)
	if err != nil {
		return nil, fmt.Errorf("failed to open gzip stream: %w", err)
	}
	defer gzipReader.Close()

	decoder := gob.NewDecoder(gzipReader)

	var metadata historyMetadata
	if err := decoder.Decode(&metadata); err != nil {
		return nil, fmt.Errorf("failed to decode metadata: %w", err)
	}

	h := NewHistory(metadata.MatchID)
	h.States = make([]*State, 0, metadata.StateCount)
	for i := 0; i < metadata.StateCount; i++ {
		var state State
		if err := decoder.Decode(&state); err != nil {
			return nil, fmt.Errorf("failed to decode state %d: %w", i, err)
		}
		h.States = append(h.States, &state)
	}
	return h, nil
}

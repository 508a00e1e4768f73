package repository

import (
	"context"
	"fmt"
	"time"
)

// MatchResult is the persisted record of one finished match.
type MatchResult struct {
	MatchID    string
	TableID    string
	WinnerID   string
	WinnerName string
	Players    []string
	Turns      int
	StartedAt  time.Time
	FinishedAt time.Time
}

// MatchRepository persists finished matches.
type MatchRepository struct {
	db *DB
}

// NewMatchRepository creates a match repository.
func NewMatchRepository(db *DB) *MatchRepository {
	return &MatchRepository{db: db}
}

// SaveResult inserts a finished match.
func (r *MatchRepository) SaveResult(ctx context.Context, result MatchResult) error {
	const query = `
		INSERT INTO match_results
			(match_id, table_id, winner_id, winner_name, players, turns, started_at, finished_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (match_id) DO NOTHING`

	_, err := r.db.pool.Exec(ctx, query,
		result.MatchID, result.TableID, result.WinnerID, result.WinnerName,
		result.Players, result.Turns, result.StartedAt, result.FinishedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save match result %s: %w", result.MatchID, err)
	}
	return nil
}

// ResultsForPlayer lists the finished matches a player took part in, newest
// first.
func (r *MatchRepository) ResultsForPlayer(ctx context.Context, playerID string, limit int) ([]MatchResult, error) {
	const query = `
		SELECT match_id, table_id, winner_id, winner_name, players, turns, started_at, finished_at
		FROM match_results
		WHERE $1 = ANY(players)
		ORDER BY finished_at DESC
		LIMIT $2`

	rows, err := r.db.pool.Query(ctx, query, playerID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query match results: %w", err)
	}
	defer rows.Close()

	var results []MatchResult
	for rows.Next() {
		var m MatchResult
		if err := rows.Scan(&m.MatchID, &m.TableID, &m.WinnerID, &m.WinnerName,
			&m.Players, &m.Turns, &m.StartedAt, &m.FinishedAt); err != nil {
			return nil, fmt.Errorf("failed to scan match result: %w", err)
		}
		results = append(results, m)
	}
	return results, rows.Err()
}

// WinCount returns how many matches a player has won.
func (r *MatchRepository) WinCount(ctx context.Context, playerID string) (int, error) {
	const query = `SELECT COUNT(*) FROM match_results WHERE winner_id = $1`

	var count int
	if err := r.db.pool.QueryRow(ctx, query, playerID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count wins: %w", err)
	}
	return count, nil
}

package store

import (
	"context"
	"fmt"

	"github.com/deviceprophet/hardware-is-hard-sub000/internal/simulator"
	"github.com/deviceprophet/hardware-is-hard-sub000/internal/state"
)

// SaveInfo is the listing row of a save.
type SaveInfo struct {
	ID       string      `json:"id"`
	Label    string      `json:"label"`
	Phase    state.Phase `json:"phase"`
	Month    int         `json:"month"`
	DeviceID string      `json:"deviceId,omitempty"`
	Digest   string      `json:"digest"`
}

// BatchInfo is the listing row of a simulator batch.
type BatchInfo struct {
	ID       string             `json:"id"`
	NumGames int                `json:"numGames"`
	BaseSeed int64              `json:"baseSeed"`
	Strategy simulator.Strategy `json:"strategy"`
	WinRate  float64            `json:"winRate"`
	Score    int                `json:"score"`
}

// LoadSave returns the partial snapshot stored under id, ready for
// RESTORE_STATE. Returns an error wrapping sql.ErrNoRows if not found and
// ErrDigestMismatch if the row was altered.
func (s *Store) LoadSave(ctx context.Context, id string) (state.Partial, error) {
	var text, digest string
	err := s.db.QueryRowContext(ctx, `
		SELECT state, digest FROM saves WHERE id = ?
	`, id).Scan(&text, &digest)
	if err != nil {
		return state.Partial{}, fmt.Errorf("load save %s: %w", id, err)
	}
	p, err := unmarshalPartial(text, digest)
	if err != nil {
		return state.Partial{}, fmt.Errorf("load save %s: %w", id, err)
	}
	return p, nil
}

// ListSaves returns every save in insertion order.
// Returns an empty slice (not nil) if there are none.
func (s *Store) ListSaves(ctx context.Context) ([]SaveInfo, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, label, phase, month, device_id, digest
		FROM saves
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query saves: %w", err)
	}
	defer rows.Close()

	saves := []SaveInfo{}
	for rows.Next() {
		var info SaveInfo
		var phase string
		if err := rows.Scan(&info.ID, &info.Label, &phase, &info.Month, &info.DeviceID, &info.Digest); err != nil {
			return nil, fmt.Errorf("scan save: %w", err)
		}
		info.Phase = state.Phase(phase)
		saves = append(saves, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate saves: %w", err)
	}
	return saves, nil
}

// ListBatches returns every batch in insertion order.
func (s *Store) ListBatches(ctx context.Context) ([]BatchInfo, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, num_games, base_seed, strategy, win_rate, score
		FROM batches
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query batches: %w", err)
	}
	defer rows.Close()

	batches := []BatchInfo{}
	for rows.Next() {
		var b BatchInfo
		var strategy string
		if err := rows.Scan(&b.ID, &b.NumGames, &b.BaseSeed, &strategy, &b.WinRate, &b.Score); err != nil {
			return nil, fmt.Errorf("scan batch: %w", err)
		}
		b.Strategy = simulator.Strategy(strategy)
		batches = append(batches, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate batches: %w", err)
	}
	return batches, nil
}

// ReadBatch returns the stored report of a batch with its games attached.
// Returns an error wrapping sql.ErrNoRows if not found.
func (s *Store) ReadBatch(ctx context.Context, id string) (simulator.Report, error) {
	var text string
	err := s.db.QueryRowContext(ctx, `SELECT report FROM batches WHERE id = ?`, id).Scan(&text)
	if err != nil {
		return simulator.Report{}, fmt.Errorf("read batch %s: %w", id, err)
	}
	r, err := unmarshalReport(text)
	if err != nil {
		return simulator.Report{}, fmt.Errorf("read batch %s: %w", id, err)
	}
	r.Games, err = s.ReadGameResults(ctx, id)
	if err != nil {
		return simulator.Report{}, err
	}
	return r, nil
}

// ReadGameResults returns the games of a batch ordered by game index.
// Returns an empty slice (not nil) for an unknown batch.
func (s *Store) ReadGameResults(ctx context.Context, batchID string) ([]simulator.GameResult, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT result FROM game_results
		WHERE batch_id = ?
		ORDER BY game_index ASC
	`, batchID)
	if err != nil {
		return nil, fmt.Errorf("query game results: %w", err)
	}
	defer rows.Close()

	games := []simulator.GameResult{}
	for rows.Next() {
		var text string
		if err := rows.Scan(&text); err != nil {
			return nil, fmt.Errorf("scan game result: %w", err)
		}
		g, err := unmarshalGame(text)
		if err != nil {
			return nil, err
		}
		games = append(games, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate game results: %w", err)
	}
	return games, nil
}

// CountGameResults returns how many games of a batch used deviceID.
func (s *Store) CountGameResults(ctx context.Context, batchID, deviceID string) (total, wins int, err error) {
	err = s.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(won), 0) FROM game_results
		WHERE batch_id = ? AND device_id = ?
	`, batchID, deviceID).Scan(&total, &wins)
	if err != nil {
		return 0, 0, fmt.Errorf("count game results: %w", err)
	}
	return total, wins, nil
}

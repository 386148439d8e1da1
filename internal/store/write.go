package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/deviceprophet/hardware-is-hard-sub000/internal/simulator"
	"github.com/deviceprophet/hardware-is-hard-sub000/internal/state"
)

// ErrDigestMismatch is returned when a stored save no longer hashes to the
// digest recorded at write time.
var ErrDigestMismatch = errors.New("save digest mismatch")

// SaveSnapshot stores the restorable part of snap under a fresh id and
// returns that id.
func (s *Store) SaveSnapshot(ctx context.Context, label string, snap state.Snapshot) (string, error) {
	return s.writeSave(ctx, s.ids.Generate(), label, snap.Internal)
}

// writeSave inserts a save with an explicit id.
// Uses ON CONFLICT(id) DO NOTHING for idempotency: rewriting an existing id
// keeps the original row.
func (s *Store) writeSave(ctx context.Context, id, label string, in state.Internal) (string, error) {
	text, digest, err := marshalPartial(state.PartialOf(in))
	if err != nil {
		return "", fmt.Errorf("save snapshot: %w", err)
	}

	deviceID := ""
	if in.SelectedDevice != nil {
		deviceID = in.SelectedDevice.ID
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO saves (id, label, phase, month, device_id, digest, state)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`, id, label, string(in.Phase), in.TimelineMonth, deviceID, digest, text)
	if err != nil {
		return "", fmt.Errorf("save snapshot: %w", err)
	}
	return id, nil
}

// WriteBatch stores a simulator report and its game results in one
// transaction and returns the batch id.
func (s *Store) WriteBatch(ctx context.Context, r *simulator.Report) (string, error) {
	return s.writeBatch(ctx, s.ids.Generate(), r)
}

func (s *Store) writeBatch(ctx context.Context, id string, r *simulator.Report) (string, error) {
	if r == nil {
		return "", fmt.Errorf("write batch: nil report")
	}
	reportJSON, err := marshalReport(r)
	if err != nil {
		return "", fmt.Errorf("write batch: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("write batch: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	_, err = tx.ExecContext(ctx, `
		INSERT INTO batches (id, num_games, base_seed, strategy, win_rate, score, report)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`, id, len(r.Games), r.Options.BaseSeed, string(r.Options.Strategy), r.WinRate, r.Balance.Score, reportJSON)
	if err != nil {
		return "", fmt.Errorf("write batch: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO game_results (batch_id, game_index, device_id, seed, won, final_month, result)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(batch_id, game_index) DO NOTHING
	`)
	if err != nil {
		return "", fmt.Errorf("write batch: prepare: %w", err)
	}
	defer stmt.Close()

	for _, g := range r.Games {
		text, err := marshalGame(g)
		if err != nil {
			return "", fmt.Errorf("write batch: %w", err)
		}
		if _, err := stmt.ExecContext(ctx, id, g.Index, g.DeviceID, g.Seed, boolToInt(g.Won), g.FinalMonth, text); err != nil {
			return "", fmt.Errorf("write batch: game %d: %w", g.Index, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("write batch: commit: %w", err)
	}
	return id, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

package store

import (
	"encoding/json"
	"fmt"

	"github.com/deviceprophet/hardware-is-hard-sub000/internal/canonical"
	"github.com/deviceprophet/hardware-is-hard-sub000/internal/simulator"
	"github.com/deviceprophet/hardware-is-hard-sub000/internal/state"
)

// marshalPartial converts a partial snapshot to canonical JSON TEXT and
// returns its digest alongside.
func marshalPartial(p state.Partial) (text, digest string, err error) {
	data, err := canonical.Marshal(p)
	if err != nil {
		return "", "", fmt.Errorf("marshal save: %w", err)
	}
	digest, err = canonical.Digest(p)
	if err != nil {
		return "", "", fmt.Errorf("marshal save: %w", err)
	}
	return string(data), digest, nil
}

// unmarshalPartial parses a stored save and checks it against digest.
func unmarshalPartial(text, digest string) (state.Partial, error) {
	var p state.Partial
	if err := json.Unmarshal([]byte(text), &p); err != nil {
		return state.Partial{}, fmt.Errorf("unmarshal save: %w", err)
	}
	got, err := canonical.Digest(p)
	if err != nil {
		return state.Partial{}, fmt.Errorf("unmarshal save: %w", err)
	}
	if got != digest {
		return state.Partial{}, fmt.Errorf("%w: stored %s, computed %s", ErrDigestMismatch, digest, got)
	}
	return p, nil
}

// marshalReport stores the aggregate without the per-game rows, which live
// in game_results.
func marshalReport(r *simulator.Report) (string, error) {
	summary := *r
	summary.Games = nil
	data, err := canonical.Marshal(summary)
	if err != nil {
		return "", fmt.Errorf("marshal report: %w", err)
	}
	return string(data), nil
}

func unmarshalReport(text string) (simulator.Report, error) {
	var r simulator.Report
	if err := json.Unmarshal([]byte(text), &r); err != nil {
		return simulator.Report{}, fmt.Errorf("unmarshal report: %w", err)
	}
	return r, nil
}

func marshalGame(g simulator.GameResult) (string, error) {
	data, err := canonical.Marshal(g)
	if err != nil {
		return "", fmt.Errorf("marshal game %d: %w", g.Index, err)
	}
	return string(data), nil
}

func unmarshalGame(text string) (simulator.GameResult, error) {
	var g simulator.GameResult
	if err := json.Unmarshal([]byte(text), &g); err != nil {
		return simulator.GameResult{}, fmt.Errorf("unmarshal game: %w", err)
	}
	return g, nil
}

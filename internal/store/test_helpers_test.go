package store

import (
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/deviceprophet/hardware-is-hard-sub000/internal/engine"
	"github.com/deviceprophet/hardware-is-hard-sub000/internal/simulator"
	"github.com/deviceprophet/hardware-is-hard-sub000/internal/testutil"
)

// createTestStore opens a fresh store in a temp dir with sequential ids.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path, WithIDGenerator(testutil.NewSequentialIDGenerator("id")))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

// playedEngine returns an engine two months into a game with omni-juice.
func playedEngine(t *testing.T) *engine.Engine {
	t.Helper()
	e := engine.New(testutil.SmallCatalog(),
		engine.WithSeed(7),
		engine.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	e.Dispatch(engine.Initialize{})
	e.Dispatch(engine.GoToSetup{})
	e.Dispatch(engine.SelectDevice{DeviceID: "omni-juice"})
	e.Dispatch(engine.StartSimulation{})
	e.Dispatch(engine.AdvanceTime{DeltaMonths: 2})
	require.NoError(t, e.LastError())
	return e
}

func sampleReport() *simulator.Report {
	return &simulator.Report{
		Options: simulator.Options{NumGames: 3, BaseSeed: 42, Strategy: simulator.StrategyLowestDoom},
		Games: []simulator.GameResult{
			{Index: 0, Seed: 42, DeviceID: "omni-juice", Phase: "victory", Won: true, FinalMonth: 60, FinalBudget: 1500.5,
				Crises: []simulator.CrisisRecord{{EventID: "outage", ChoiceID: "fix", Month: 2}}},
			{Index: 1, Seed: 43, DeviceID: "tiny-sensor", Phase: "autopsy", FinalMonth: 17, FinalDoom: 100,
				Crises: []simulator.CrisisRecord{}},
			{Index: 2, Seed: 44, DeviceID: "omni-juice", Phase: "autopsy", FinalMonth: 31, FinalDoom: 100,
				Crises: []simulator.CrisisRecord{}},
		},
		WinRate:   1.0 / 3,
		AvgCrises: 1.0 / 3,
		Balance:   simulator.BalanceScore{Score: 61, Coverage: 0.5},
		Warnings:  []string{"event late-audit never triggered"},
	}
}

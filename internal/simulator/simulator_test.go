package simulator

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deviceprophet/hardware-is-hard-sub000/internal/catalog"
	"github.com/deviceprophet/hardware-is-hard-sub000/internal/config"
	"github.com/deviceprophet/hardware-is-hard-sub000/internal/random"
	"github.com/deviceprophet/hardware-is-hard-sub000/internal/state"
	"github.com/deviceprophet/hardware-is-hard-sub000/internal/testutil"
)

func newSim(t *testing.T, cat catalog.Catalog) *Simulator {
	t.Helper()
	return New(cat, WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
}

func TestSchedule(t *testing.T) {
	devices := testutil.SmallCatalog().Devices()

	games := schedule(devices, 7, 100)
	require.Len(t, games, 6, "7 games over 3 devices is 2 per device")
	wantDevices := []string{"omni-juice", "omni-juice", "tiny-sensor", "tiny-sensor", "heart-link", "heart-link"}
	for i, g := range games {
		assert.Equal(t, i, g.index)
		assert.Equal(t, int64(100+i), g.seed)
		assert.Equal(t, wantDevices[i], g.deviceID)
	}

	assert.Len(t, schedule(devices, 1, 0), 3, "every device plays at least once")
	assert.Empty(t, schedule(nil, 10, 0))
}

func TestChoose(t *testing.T) {
	choices := []catalog.Choice{
		{ID: "a", Cost: 100, DoomImpact: 5},
		{ID: "b", Cost: 0, DoomImpact: 30},
		{ID: "c", Cost: 500, DoomImpact: 5},
		{ID: "d", Cost: 0, DoomImpact: -2},
	}
	tests := []struct {
		strategy Strategy
		want     string
	}{
		{StrategyLowestDoom, "d"},
		{StrategyHighestDoom, "b"},
		{StrategyLowestCost, "b"},
		{StrategyHighestCost, "c"},
	}
	for _, tt := range tests {
		t.Run(string(tt.strategy), func(t *testing.T) {
			assert.Equal(t, tt.want, choose(tt.strategy, choices, nil).ID)
		})
	}

	rnd := testutil.NewScriptedRandom(0.6)
	assert.Equal(t, "c", choose(StrategyRandom, choices, rnd).ID)

	for _, s := range Strategies {
		assert.Equal(t, catalog.Choice{}, choose(s, nil, testutil.NewScriptedRandom(0)), string(s))
	}
}

func TestPlayOne_EventWithoutChoicesHitsCeiling(t *testing.T) {
	cat := catalog.NewMemory(
		[]catalog.Device{testutil.ReferenceDevice()},
		[]catalog.GameEvent{{ID: "blank", Title: "Blank", Probability: testutil.Prob(1)}},
	)
	sim := newSim(t, cat)

	for _, s := range Strategies {
		t.Run(string(s), func(t *testing.T) {
			g := sim.PlayOne("omni-juice", 1, Options{Strategy: s, MaxIterations: 50})
			assert.True(t, g.Truncated)
			assert.Equal(t, state.PhaseCrisis, g.Phase)
			assert.Equal(t, 50, g.Iterations)
		})
	}
}

func TestPickerSeed_DiffersFromGameSeed(t *testing.T) {
	for _, seed := range []int64{0, 1, 42, 1 << 40} {
		assert.NotEqual(t, seed, pickerSeed(seed))
		assert.NotEqual(t, random.NewSeeded(seed).Random(), random.NewSeeded(pickerSeed(seed)).Random())
	}
}

func TestOptions_Validate(t *testing.T) {
	assert.NoError(t, Options{NumGames: 1}.Validate())

	err := Options{NumGames: 0, Strategy: "yolo", Workers: -1}.Validate()
	require.Error(t, err)
	assert.ErrorContains(t, err, "numGames")
	assert.ErrorContains(t, err, "yolo")
	assert.ErrorContains(t, err, "workers")
}

func TestRun_ReproducibleAcrossWorkerCounts(t *testing.T) {
	cat, err := catalog.Default()
	require.NoError(t, err)
	sim := newSim(t, cat)

	for _, strategy := range Strategies {
		t.Run(string(strategy), func(t *testing.T) {
			base := Options{NumGames: 20, BaseSeed: 7, Strategy: strategy}

			seq := base
			seq.Workers = 1
			par := base
			par.Workers = 8

			a, err := sim.Run(context.Background(), seq)
			require.NoError(t, err)
			b, err := sim.Run(context.Background(), par)
			require.NoError(t, err)

			assert.Equal(t, a.Games, b.Games)
			assert.Equal(t, a.Events, b.Events)
			assert.Equal(t, a.Balance, b.Balance)
		})
	}
}

func TestRun_Aggregates(t *testing.T) {
	cat, err := catalog.Default()
	require.NoError(t, err)

	report, err := newSim(t, cat).Run(context.Background(), Options{NumGames: 25, BaseSeed: 1, ShipWhenSafe: true})
	require.NoError(t, err)

	require.Len(t, report.Games, 25)
	assert.Len(t, report.Devices, len(cat.Devices()))
	assert.Len(t, report.Events, len(cat.Events()))
	assert.Len(t, report.Histogram, 6)

	wins, crises, binned := 0, 0, 0
	for i, g := range report.Games {
		assert.Equal(t, i, g.Index)
		assert.False(t, g.Truncated)
		assert.Contains(t, []state.Phase{state.PhaseVictory, state.PhaseAutopsy}, g.Phase)
		if g.Won {
			wins++
		}
		crises += len(g.Crises)
	}
	for _, b := range report.Histogram {
		binned += b.Count
	}
	triggers := 0
	for _, e := range report.Events {
		triggers += e.Triggers
		picked := 0
		for _, c := range e.Choices {
			picked += c.Count
		}
		assert.Equal(t, e.Triggers, picked, e.EventID)
	}

	assert.Equal(t, 25, binned)
	assert.Equal(t, crises, triggers)
	assert.InDelta(t, float64(wins)/25, report.WinRate, 1e-9)
	assert.GreaterOrEqual(t, report.Balance.Score, 0)
	assert.LessOrEqual(t, report.Balance.Score, 100)
}

func TestRun_IterationCeiling(t *testing.T) {
	report, err := newSim(t, testutil.SmallCatalog()).Run(context.Background(), Options{NumGames: 3, MaxIterations: 5})
	require.NoError(t, err)
	for _, g := range report.Games {
		assert.True(t, g.Truncated)
		assert.Equal(t, 5, g.Iterations)
		assert.False(t, g.Won)
	}
	assert.Contains(t, report.Warnings, "3 games hit the 5 iteration ceiling")
}

func TestRun_Errors(t *testing.T) {
	sim := newSim(t, testutil.SmallCatalog())

	_, err := sim.Run(context.Background(), Options{})
	assert.ErrorContains(t, err, "numGames")

	_, err = newSim(t, catalog.NewMemory(nil, nil)).Run(context.Background(), Options{NumGames: 1})
	assert.ErrorContains(t, err, "no devices")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = sim.Run(ctx, Options{NumGames: 3})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPlayOne_MatchesBatch(t *testing.T) {
	cat := testutil.SmallCatalog()
	sim := newSim(t, cat)

	report, err := sim.Run(context.Background(), Options{NumGames: 3, BaseSeed: 50})
	require.NoError(t, err)

	single := sim.PlayOne("tiny-sensor", 51, Options{})
	single.Index = 1
	assert.Equal(t, report.Games[1], single)
}

func TestHistogram(t *testing.T) {
	b := histogram(60, []GameResult{{FinalMonth: 0}, {FinalMonth: 11}, {FinalMonth: 12}, {FinalMonth: 60}, {FinalMonth: 75}})
	require.Len(t, b, 6)
	assert.Equal(t, Bucket{From: 0, To: 11, Count: 2}, b[0])
	assert.Equal(t, Bucket{From: 12, To: 23, Count: 1}, b[1])
	assert.Equal(t, Bucket{From: 60, To: 71, Count: 2}, b[5])
}

func TestScore(t *testing.T) {
	even := []EventStats{{EventID: "a", Triggers: 5}, {EventID: "b", Triggers: 5}, {EventID: "c", Triggers: 5}, {EventID: "d", Triggers: 5}}

	perfect := score(&Report{
		WinRate: 0.5,
		Devices: []DeviceStats{{Games: 4, WinRate: 0.5}, {Games: 4, WinRate: 0.5}},
		Events:  even,
	})
	assert.Equal(t, BalanceScore{Score: 100, WinRateBand: 40, DeviceSpread: 25, Coverage: 25, Dominance: 10}, perfect)

	poor := score(&Report{
		WinRate: 0.1,
		Devices: []DeviceStats{{Games: 4, WinRate: 0.0}, {Games: 4, WinRate: 0.2}, {Games: 0, WinRate: 0.9}},
		Events:  []EventStats{{EventID: "a", Triggers: 9}, {EventID: "b", Triggers: 1}, {EventID: "c"}, {EventID: "d"}},
	})
	assert.InDelta(t, 13.333, poor.WinRateBand, 1e-3)
	assert.InDelta(t, 15.0, poor.DeviceSpread, 1e-9)
	assert.InDelta(t, 12.5, poor.Coverage, 1e-9)
	assert.Equal(t, 0.0, poor.Dominance)
	assert.Equal(t, 41, poor.Score)

	empty := score(&Report{WinRate: 1.0})
	assert.Equal(t, 0.0, empty.WinRateBand)
	assert.Equal(t, 0.0, empty.Dominance, "no triggers earns no dominance points")
}

func TestAggregate_Warnings(t *testing.T) {
	cat := testutil.SmallCatalog()
	games := []GameResult{
		{DeviceID: "omni-juice", Won: true, FinalMonth: 60, Crises: []CrisisRecord{{EventID: "outage", ChoiceID: "fix"}}},
		{DeviceID: "tiny-sensor", Won: false, FinalMonth: 10, Crises: []CrisisRecord{{EventID: "outage", ChoiceID: "ignore"}}},
	}
	r := aggregate(config.Default(), cat, Options{MaxIterations: 1000}, games)

	assert.Equal(t, 0.5, r.WinRate)
	assert.Contains(t, r.Warnings, "event cloud-shutdown never triggered")
	assert.Contains(t, r.Warnings, "event outage accounts for 100% of all triggers")
	assert.Contains(t, r.Warnings, "device win rates spread 1.00 (from 0.00 to 1.00)")
	assert.Contains(t, r.Warnings, "average 1.0 crises per game is far from the target 12")

	outage := r.Events[0]
	assert.Equal(t, 2, outage.Triggers)
	assert.Equal(t, []ChoiceCount{{ChoiceID: "fix", Count: 1}, {ChoiceID: "ignore", Count: 1}}, outage.Choices)
	assert.InDelta(t, 0.0, outage.WinCorrelation, 1e-9)
}

// Package simulator plays many independent seeded games and aggregates
// balance statistics.
//
// Seeds are assigned per device as BaseSeed + deviceIndex*gamesPerDevice + i,
// so a batch is reproducible from (BaseSeed, NumGames, Strategy) alone,
// regardless of how many workers run it.
package simulator

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/deviceprophet/hardware-is-hard-sub000/internal/catalog"
	"github.com/deviceprophet/hardware-is-hard-sub000/internal/config"
	"github.com/deviceprophet/hardware-is-hard-sub000/internal/engine"
	"github.com/deviceprophet/hardware-is-hard-sub000/internal/random"
	"github.com/deviceprophet/hardware-is-hard-sub000/internal/state"
)

// Simulator runs batches against one catalog.
type Simulator struct {
	catalog catalog.Catalog
	cfg     config.Config
	logger  *slog.Logger
}

// Option configures a Simulator.
type Option func(*Simulator)

// WithConfig sets the engine configuration used for every game.
func WithConfig(cfg config.Config) Option {
	return func(s *Simulator) { s.cfg = cfg }
}

// WithLogger sets the batch logger. Per-game engines always discard
// their logs; a batch would otherwise emit thousands of diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(s *Simulator) { s.logger = l }
}

// New creates a Simulator.
func New(cat catalog.Catalog, opts ...Option) *Simulator {
	s := &Simulator{catalog: cat, cfg: config.Default(), logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// game identifies one scheduled game.
type game struct {
	index    int
	seed     int64
	deviceID string
}

// schedule returns the games a batch will play, in result order.
func schedule(devices []catalog.Device, numGames int, baseSeed int64) []game {
	if len(devices) == 0 {
		return nil
	}
	perDevice := max(1, numGames/len(devices))
	games := make([]game, 0, perDevice*len(devices))
	for d, dev := range devices {
		for i := 0; i < perDevice; i++ {
			games = append(games, game{
				index:    len(games),
				seed:     baseSeed + int64(d*perDevice+i),
				deviceID: dev.ID,
			})
		}
	}
	return games
}

// Run plays the batch and aggregates it. Results are stored by game
// index, so any worker count produces the same report.
func (s *Simulator) Run(ctx context.Context, opts Options) (*Report, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("simulator options: %w", err)
	}
	opts = opts.withDefaults()

	devices := s.catalog.Devices()
	if len(devices) == 0 {
		return nil, fmt.Errorf("simulator: catalog has no devices")
	}
	games := schedule(devices, opts.NumGames, opts.BaseSeed)

	s.logger.Info("simulation batch starting",
		"games", len(games), "devices", len(devices), "strategy", string(opts.Strategy),
		"base_seed", opts.BaseSeed, "workers", opts.Workers)

	results := make([]GameResult, len(games))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Workers)
	for _, gm := range games {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[gm.index] = s.play(gm, opts)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("simulation batch: %w", err)
	}

	report := aggregate(s.cfg, s.catalog, opts, results)
	s.logger.Info("simulation batch finished",
		"games", len(results), "win_rate", report.WinRate, "balance_score", report.Balance.Score)
	return report, nil
}

// PlayOne plays a single game with the given seed, outside a batch.
func (s *Simulator) PlayOne(deviceID string, seed int64, opts Options) GameResult {
	return s.play(game{seed: seed, deviceID: deviceID}, opts.withDefaults())
}

func (s *Simulator) play(gm game, opts Options) GameResult {
	eng := engine.New(s.catalog,
		engine.WithConfig(s.cfg),
		engine.WithSeed(gm.seed),
		engine.WithLogger(discard))
	// Choice picks draw from their own stream so the strategy cannot
	// perturb event rolls.
	picker := random.NewSeeded(pickerSeed(gm.seed))

	res := GameResult{Index: gm.index, Seed: gm.seed, DeviceID: gm.deviceID}
	eng.Dispatch(engine.GoToSetup{PreferredID: gm.deviceID})
	eng.Dispatch(engine.SelectDevice{DeviceID: gm.deviceID})
	eng.Dispatch(engine.StartSimulation{})

	gate := s.cfg.MaxDoom / 2
	for res.Iterations < opts.MaxIterations {
		snap := eng.State()
		var cmd engine.Command
		switch snap.Phase {
		case state.PhaseCrisis:
			c := choose(opts.Strategy, snap.CurrentCrisis.Choices, picker)
			res.Crises = append(res.Crises, CrisisRecord{EventID: snap.CurrentCrisis.ID, ChoiceID: c.ID, Month: snap.TimelineMonth})
			cmd = engine.ResolveCrisis{ChoiceID: c.ID}
		case state.PhaseSimulation:
			if opts.ShipWhenSafe && snap.DoomLevel < gate {
				cmd = engine.ShipProduct{}
				res.Ships++
			} else {
				cmd = engine.Tick{}
			}
		}
		if cmd == nil {
			break
		}
		eng.Dispatch(cmd)
		res.Iterations++
	}

	final := eng.State()
	res.Phase = final.Phase
	res.Won = final.Phase == state.PhaseVictory
	res.Truncated = final.Phase == state.PhaseSimulation || final.Phase == state.PhaseCrisis
	res.FinalMonth = final.TimelineMonth
	res.FinalBudget = final.Budget
	res.FinalDoom = final.DoomLevel
	res.FinalCompliance = final.ComplianceLevel
	res.Deflections = len(final.ShieldDeflections)
	return res
}

// pickerSeed derives the choice stream's seed from a game seed.
func pickerSeed(seed int64) int64 { return seed ^ 0x9E3779B9 }

var discard = slog.New(slog.DiscardHandler)

package simulator

import (
	"fmt"
	"math"

	"github.com/deviceprophet/hardware-is-hard-sub000/internal/catalog"
	"github.com/deviceprophet/hardware-is-hard-sub000/internal/config"
	"github.com/deviceprophet/hardware-is-hard-sub000/internal/state"
)

// CrisisRecord is one resolved crisis in a simulated game.
type CrisisRecord struct {
	EventID  string `json:"eventId"`
	ChoiceID string `json:"choiceId"`
	Month    int    `json:"month"`
}

// GameResult is the outcome of one simulated game.
type GameResult struct {
	Index           int            `json:"index"`
	Seed            int64          `json:"seed"`
	DeviceID        string         `json:"deviceId"`
	Phase           state.Phase    `json:"phase"`
	Won             bool           `json:"won"`
	Truncated       bool           `json:"truncated,omitempty"`
	Iterations      int            `json:"iterations"`
	FinalMonth      int            `json:"finalMonth"`
	FinalBudget     float64        `json:"finalBudget"`
	FinalDoom       float64        `json:"finalDoom"`
	FinalCompliance float64        `json:"finalCompliance"`
	Deflections     int            `json:"deflections"`
	Ships           int            `json:"ships"`
	Crises          []CrisisRecord `json:"crises"`
}

// DeviceStats aggregates games played with one device.
type DeviceStats struct {
	DeviceID           string  `json:"deviceId"`
	Games              int     `json:"games"`
	Wins               int     `json:"wins"`
	WinRate            float64 `json:"winRate"`
	AvgFinalMonth      float64 `json:"avgFinalMonth"`
	AvgFinalBudget     float64 `json:"avgFinalBudget"`
	AvgFinalDoom       float64 `json:"avgFinalDoom"`
	AvgFinalCompliance float64 `json:"avgFinalCompliance"`
	AvgCrises          float64 `json:"avgCrises"`
}

// ChoiceCount is how often a choice was taken.
type ChoiceCount struct {
	ChoiceID string `json:"choiceId"`
	Count    int    `json:"count"`
}

// EventStats aggregates one catalog event across the batch.
type EventStats struct {
	EventID        string `json:"eventId"`
	Triggers       int    `json:"triggers"`
	GamesTriggered int    `json:"gamesTriggered"`
	// WinCorrelation is the win rate of games where the event fired
	// minus the overall win rate. Zero when it never fired.
	WinCorrelation float64       `json:"winCorrelation"`
	Choices        []ChoiceCount `json:"choices"`
}

// Bucket is one game-length histogram bin covering [From, To].
type Bucket struct {
	From  int `json:"from"`
	To    int `json:"to"`
	Count int `json:"count"`
}

// BucketMonths is the histogram bin width.
const BucketMonths = 12

// BalanceScore is the 0–100 heuristic and its components.
type BalanceScore struct {
	Score        int     `json:"score"`
	WinRateBand  float64 `json:"winRateBand"`
	DeviceSpread float64 `json:"deviceSpread"`
	Coverage     float64 `json:"coverage"`
	Dominance    float64 `json:"dominance"`
}

// Balance scoring constants.
const (
	WinRateBandLow     = 0.3
	WinRateBandHigh    = 0.7
	DominanceThreshold = 0.3

	winRateBandPoints  = 40
	deviceSpreadPoints = 25
	coveragePoints     = 25
	dominancePoints    = 10

	winRateFalloff  = 0.3
	maxDeviceSpread = 0.5
	spreadWarnAt    = 0.3
)

// Report is the aggregate of a batch.
type Report struct {
	Options   Options       `json:"options"`
	Games     []GameResult  `json:"games"`
	WinRate   float64       `json:"winRate"`
	AvgCrises float64       `json:"avgCrises"`
	Devices   []DeviceStats `json:"devices"`
	Events    []EventStats  `json:"events"`
	Histogram []Bucket      `json:"histogram"`
	Balance   BalanceScore  `json:"balance"`
	Warnings  []string      `json:"warnings"`
}

func aggregate(cfg config.Config, cat catalog.Catalog, opts Options, games []GameResult) *Report {
	r := &Report{Options: opts, Games: games, Warnings: []string{}}

	wins, crises, truncated := 0, 0, 0
	for _, g := range games {
		if g.Won {
			wins++
		}
		if g.Truncated {
			truncated++
		}
		crises += len(g.Crises)
	}
	r.WinRate = ratio(wins, len(games))
	r.AvgCrises = ratio(crises, len(games))

	r.Devices = deviceStats(cat, games)
	r.Events = eventStats(cat, games, r.WinRate)
	r.Histogram = histogram(cfg.TotalMonths, games)
	r.Balance = score(r)

	if r.WinRate < WinRateBandLow || r.WinRate > WinRateBandHigh {
		r.warn("overall win rate %.2f is outside [%.2f, %.2f]", r.WinRate, WinRateBandLow, WinRateBandHigh)
	}
	if lo, hi := winRateRange(r.Devices); hi-lo > spreadWarnAt {
		r.warn("device win rates spread %.2f (from %.2f to %.2f)", hi-lo, lo, hi)
	}
	total := 0
	for _, e := range r.Events {
		total += e.Triggers
	}
	for _, e := range r.Events {
		if e.Triggers == 0 {
			r.warn("event %s never triggered", e.EventID)
		} else if float64(e.Triggers)/float64(total) > DominanceThreshold {
			r.warn("event %s accounts for %.0f%% of all triggers", e.EventID, 100*float64(e.Triggers)/float64(total))
		}
	}
	if target := float64(cfg.EventsPerGame); target > 0 && len(games) > 0 {
		if r.AvgCrises < target/2 || r.AvgCrises > target*2 {
			r.warn("average %.1f crises per game is far from the target %d", r.AvgCrises, cfg.EventsPerGame)
		}
	}
	if truncated > 0 {
		r.warn("%d games hit the %d iteration ceiling", truncated, opts.MaxIterations)
	}
	return r
}

func (r *Report) warn(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

func ratio(n, d int) float64 {
	if d == 0 {
		return 0
	}
	return float64(n) / float64(d)
}

func deviceStats(cat catalog.Catalog, games []GameResult) []DeviceStats {
	index := map[string]int{}
	var out []DeviceStats
	for _, d := range cat.Devices() {
		index[d.ID] = len(out)
		out = append(out, DeviceStats{DeviceID: d.ID})
	}
	for _, g := range games {
		i, ok := index[g.DeviceID]
		if !ok {
			continue
		}
		ds := &out[i]
		ds.Games++
		if g.Won {
			ds.Wins++
		}
		ds.AvgFinalMonth += float64(g.FinalMonth)
		ds.AvgFinalBudget += g.FinalBudget
		ds.AvgFinalDoom += g.FinalDoom
		ds.AvgFinalCompliance += g.FinalCompliance
		ds.AvgCrises += float64(len(g.Crises))
	}
	for i := range out {
		ds := &out[i]
		if ds.Games == 0 {
			continue
		}
		n := float64(ds.Games)
		ds.WinRate = float64(ds.Wins) / n
		ds.AvgFinalMonth /= n
		ds.AvgFinalBudget /= n
		ds.AvgFinalDoom /= n
		ds.AvgFinalCompliance /= n
		ds.AvgCrises /= n
	}
	return out
}

func eventStats(cat catalog.Catalog, games []GameResult, overall float64) []EventStats {
	index := map[string]int{}
	var out []EventStats
	for _, ev := range cat.Events() {
		index[ev.ID] = len(out)
		choices := make([]ChoiceCount, len(ev.Choices))
		for i, c := range ev.Choices {
			choices[i] = ChoiceCount{ChoiceID: c.ID}
		}
		out = append(out, EventStats{EventID: ev.ID, Choices: choices})
	}

	wonWith := make([]int, len(out))
	for _, g := range games {
		seen := map[int]bool{}
		for _, c := range g.Crises {
			i, ok := index[c.EventID]
			if !ok {
				continue
			}
			es := &out[i]
			es.Triggers++
			for j := range es.Choices {
				if es.Choices[j].ChoiceID == c.ChoiceID {
					es.Choices[j].Count++
				}
			}
			if !seen[i] {
				seen[i] = true
				es.GamesTriggered++
				if g.Won {
					wonWith[i]++
				}
			}
		}
	}
	for i := range out {
		if out[i].GamesTriggered > 0 {
			out[i].WinCorrelation = ratio(wonWith[i], out[i].GamesTriggered) - overall
		}
	}
	return out
}

func histogram(totalMonths int, games []GameResult) []Bucket {
	n := totalMonths/BucketMonths + 1
	buckets := make([]Bucket, n)
	for i := range buckets {
		buckets[i] = Bucket{From: i * BucketMonths, To: (i+1)*BucketMonths - 1}
	}
	for _, g := range games {
		i := min(max(g.FinalMonth/BucketMonths, 0), n-1)
		buckets[i].Count++
	}
	return buckets
}

func winRateRange(devices []DeviceStats) (lo, hi float64) {
	first := true
	for _, d := range devices {
		if d.Games == 0 {
			continue
		}
		if first {
			lo, hi, first = d.WinRate, d.WinRate, false
			continue
		}
		lo = min(lo, d.WinRate)
		hi = max(hi, d.WinRate)
	}
	return lo, hi
}

// score combines win-rate banding, device fairness, event coverage and
// event dominance into the 0–100 balance score.
func score(r *Report) BalanceScore {
	var b BalanceScore

	switch {
	case r.WinRate < WinRateBandLow:
		b.WinRateBand = winRateBandPoints * math.Max(0, 1-(WinRateBandLow-r.WinRate)/winRateFalloff)
	case r.WinRate > WinRateBandHigh:
		b.WinRateBand = winRateBandPoints * math.Max(0, 1-(r.WinRate-WinRateBandHigh)/winRateFalloff)
	default:
		b.WinRateBand = winRateBandPoints
	}

	lo, hi := winRateRange(r.Devices)
	b.DeviceSpread = deviceSpreadPoints * math.Max(0, 1-(hi-lo)/maxDeviceSpread)

	triggered, total := 0, 0
	for _, e := range r.Events {
		total += e.Triggers
		if e.Triggers > 0 {
			triggered++
		}
	}
	b.Coverage = coveragePoints * ratio(triggered, len(r.Events))

	if total > 0 {
		b.Dominance = dominancePoints
		for _, e := range r.Events {
			if float64(e.Triggers)/float64(total) > DominanceThreshold {
				b.Dominance = 0
				break
			}
		}
	}

	b.Score = int(math.Round(b.WinRateBand + b.DeviceSpread + b.Coverage + b.Dominance))
	return b
}

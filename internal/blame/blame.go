// Package blame assigns a finished session's failure to a department.
//
// The analyzer is a pure function of the history, the catalog and a
// seed. Its tie-break uses frac(sin(seed)*10000), a deliberately weak
// generator kept separate from the engine's LCG so blame results stay
// stable when engine randomness changes.
package blame

import (
	"math"
	"strings"

	"github.com/deviceprophet/hardware-is-hard-sub000/internal/catalog"
	"github.com/deviceprophet/hardware-is-hard-sub000/internal/state"
)

// Department is a blamable part of the organisation.
type Department string

const (
	Engineering Department = "Engineering"
	Security    Department = "Security"
	Legal       Department = "Legal"
	Finance     Department = "Finance"
	Management  Department = "Management"
	Marketing   Department = "Marketing"
)

// Departments lists every department in scoring order.
var Departments = []Department{Engineering, Security, Legal, Finance, Management, Marketing}

type profile struct {
	keywords   []string
	emoji      string
	statements []string
}

var profiles = map[Department]profile{
	Engineering: {
		keywords: []string{"firmware", "crash", "legacy", "rot", "brick", "ota", "rollback", "outage"},
		emoji:    "🔧",
		statements: []string{
			"Engineering notes the crash was reproducible only in production.",
			"Engineering would like to remind everyone the rewrite was proposed in month 3.",
			"Engineering has opened a ticket to investigate the ticket backlog.",
		},
	},
	Security: {
		keywords: []string{"cve", "credential", "breach", "intrusion", "vuln", "leak", "scada"},
		emoji:    "🔓",
		statements: []string{
			"Security flagged this in a report nobody opened.",
			"Security confirms the password was, in fact, 'admin'.",
			"Security is rotating credentials, and also its staff.",
		},
	},
	Legal: {
		keywords: []string{"regulatory", "audit", "fda", "warning", "compliance", "letter"},
		emoji:    "⚖️",
		statements: []string{
			"Legal advises that no one say anything, including this.",
			"Legal has reviewed the terms of service and found them binding on the customer only.",
			"Legal is drafting a strongly worded letter to itself.",
		},
	},
	Finance: {
		keywords: []string{"budget", "supplier", "bankruptcy", "cost", "loan", "funding"},
		emoji:    "💸",
		statements: []string{
			"Finance points out the cheapest option was, technically, the cheapest.",
			"Finance has reclassified the incident as an operating expense.",
			"Finance approved the fix for next fiscal year.",
		},
	},
	Management: {
		keywords: []string{"pivot", "exec", "sunset", "deadline", "rush", "eol"},
		emoji:    "📉",
		statements: []string{
			"Management has scheduled an offsite to align on accountability.",
			"Management was not informed, despite being in the meeting.",
			"Management is excited to announce a reorganisation.",
		},
	},
	Marketing: {
		keywords: []string{"influencer", "demo", "launch", "hype", "brand"},
		emoji:    "📣",
		statements: []string{
			"Marketing is calling it a limited edition.",
			"Marketing reports record engagement on the recall announcement.",
			"Marketing promised the feature; nobody asked Engineering.",
		},
	},
}

// Heuristic weights.
const (
	keywordPoints       = 1
	freeButDoomedPoints = 2
	bigJumpPoints       = 3

	// FreeButDoomedThreshold is the doom increase at which a zero-cost
	// choice counts against Finance.
	FreeButDoomedThreshold = 15
	// BigJumpThreshold is the single doom increase that counts against
	// Management, once per session.
	BigJumpThreshold = 25
)

// Result is the assigned blame.
type Result struct {
	Department     Department         `json:"department"`
	StatementIndex int                `json:"statementIndex"`
	Statement      string             `json:"statement"`
	Emoji          string             `json:"emoji"`
	Scores         map[Department]int `json:"scores"`
	Seed           float64            `json:"seed"`
}

type options struct {
	seed    float64
	hasSeed bool
}

// Option configures Analyze.
type Option func(*options)

// WithSeed fixes the tie-break seed. Without it the seed is the sum of
// doom increases plus the number of history entries.
func WithSeed(seed float64) Option {
	return func(o *options) { o.seed, o.hasSeed = seed, true }
}

// Analyze scores departments over history and picks one.
//
// Each history entry's event id and title (when the event is in cat)
// are matched against department keywords; each matching keyword scores
// a point. A zero-cost choice that raised doom by FreeButDoomedThreshold
// or more scores Finance; any single increase of BigJumpThreshold or
// more scores Management once. Ties among the top departments, including
// the all-zero case, are broken by the seeded sine draw; a second draw
// at seed+1 picks the statement.
func Analyze(history []state.HistoryEntry, cat catalog.Catalog, opts ...Option) Result {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if !o.hasSeed {
		o.seed = DefaultSeed(history)
	}

	scores := make(map[Department]int, len(Departments))
	for _, d := range Departments {
		scores[d] = 0
	}
	bigJump := false
	for _, h := range history {
		text := strings.ToLower(h.EventID)
		if cat != nil {
			if ev, ok := cat.Event(h.EventID); ok {
				text += " " + strings.ToLower(ev.Title)
			}
		}
		for _, d := range Departments {
			for _, kw := range profiles[d].keywords {
				if strings.Contains(text, kw) {
					scores[d] += keywordPoints
				}
			}
		}
		if h.Cost == 0 && h.DoomIncrease >= FreeButDoomedThreshold {
			scores[Finance] += freeButDoomedPoints
		}
		if h.DoomIncrease >= BigJumpThreshold {
			bigJump = true
		}
	}
	if bigJump {
		scores[Management] += bigJumpPoints
	}

	top := topDepartments(scores)
	dept := top[pickIndex(o.seed, len(top))]
	p := profiles[dept]
	idx := pickIndex(o.seed+1, len(p.statements))

	return Result{
		Department:     dept,
		StatementIndex: idx,
		Statement:      p.statements[idx],
		Emoji:          p.emoji,
		Scores:         scores,
		Seed:           o.seed,
	}
}

// DefaultSeed is the sum of doom increases plus the entry count.
func DefaultSeed(history []state.HistoryEntry) float64 {
	seed := float64(len(history))
	for _, h := range history {
		seed += h.DoomIncrease
	}
	return seed
}

func topDepartments(scores map[Department]int) []Department {
	best := math.MinInt
	var top []Department
	for _, d := range Departments {
		switch s := scores[d]; {
		case s > best:
			best = s
			top = []Department{d}
		case s == best:
			top = append(top, d)
		}
	}
	return top
}

// SineRandom is frac(sin(seed) * 10000), in [0, 1).
func SineRandom(seed float64) float64 {
	x := math.Sin(seed) * 10000
	return x - math.Floor(x)
}

func pickIndex(seed float64, n int) int {
	i := int(math.Floor(SineRandom(seed) * float64(n)))
	return min(max(i, 0), n-1)
}

// Statements returns the statement templates for d.
func Statements(d Department) []string {
	return append([]string(nil), profiles[d].statements...)
}

package blame

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deviceprophet/hardware-is-hard-sub000/internal/catalog"
	"github.com/deviceprophet/hardware-is-hard-sub000/internal/state"
)

func entry(eventID string, cost, doom float64) state.HistoryEntry {
	return state.HistoryEntry{EventID: eventID, ChoiceID: "c", Cost: cost, DoomIncrease: doom}
}

func TestSineRandom(t *testing.T) {
	assert.Equal(t, 0.0, SineRandom(0))
	assert.InDelta(t, 0.7098480789645691, SineRandom(1), 1e-9)
	assert.InDelta(t, 0.20008059867222983, SineRandom(3), 1e-9)
	assert.InDelta(t, 0.7845208436629036, SineRandom(42), 1e-9)
	for s := -50.0; s < 50; s += 0.37 {
		v := SineRandom(s)
		assert.GreaterOrEqual(t, v, 0.0)
		assert.Less(t, v, 1.0)
	}
}

func TestAnalyze_EmptyHistory(t *testing.T) {
	res := Analyze(nil, nil)
	assert.Equal(t, Engineering, res.Department, "all-zero tie resolves with seed 0")
	assert.Equal(t, 2, res.StatementIndex)
	assert.Equal(t, 0.0, res.Seed)
	assert.Equal(t, "🔧", res.Emoji)
	assert.Equal(t, Statements(Engineering)[2], res.Statement)
	assert.Len(t, res.Scores, len(Departments))
}

func TestAnalyze_DefaultCatalog(t *testing.T) {
	cat, err := catalog.Default()
	require.NoError(t, err)

	tests := []struct {
		name      string
		history   []state.HistoryEntry
		want      Department
		wantIndex int
		wantSeed  float64
		scores    map[Department]int
	}{
		{
			name: "engineering keywords",
			history: []state.HistoryEntry{
				entry("firmware-crash-loop", 5000, 5),
				entry("legacy-rot", 20000, -10),
				entry("ota-brick", 0, 12),
			},
			want: Engineering, wantIndex: 0, wantSeed: 10,
			scores: map[Department]int{Engineering: 6},
		},
		{
			name: "big jump tips management over finance",
			history: []state.HistoryEntry{
				entry("cve-disclosure", 0, 20),
				entry("exec-ai-pivot", 0, 28),
			},
			want: Management, wantIndex: 0, wantSeed: 50,
			scores: map[Department]int{Security: 1, Finance: 4, Management: 5},
		},
		{
			name:    "free but doomed choice blames finance",
			history: []state.HistoryEntry{entry("mystery", 0, 15)},
			want:    Finance, wantIndex: 0, wantSeed: 16,
			scores: map[Department]int{Finance: 2},
		},
		{
			name:    "large jumps count once",
			history: []state.HistoryEntry{entry("mystery", 100, 30), entry("other", 100, 25)},
			want:    Management, wantIndex: 2, wantSeed: 57,
			scores: map[Department]int{Management: 3},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Analyze(tt.history, cat)
			assert.Equal(t, tt.want, res.Department)
			assert.Equal(t, tt.wantIndex, res.StatementIndex)
			assert.Equal(t, tt.wantSeed, res.Seed)
			for _, d := range Departments {
				assert.Equal(t, tt.scores[d], res.Scores[d], string(d))
			}
		})
	}
}

func TestAnalyze_TieBreak(t *testing.T) {
	cat := catalog.NewMemory(nil, []catalog.GameEvent{
		{ID: "leak-x", Title: "x", Choices: []catalog.Choice{{ID: "c"}}},
		{ID: "demo-y", Title: "y", Choices: []catalog.Choice{{ID: "c"}}},
	})
	history := []state.HistoryEntry{entry("leak-x", 1, 2), entry("demo-y", 1, 3)}

	res := Analyze(history, cat, WithSeed(3))
	assert.Equal(t, Security, res.Department)
	assert.Equal(t, 2, res.StatementIndex)

	res = Analyze(history, cat, WithSeed(1))
	assert.Equal(t, Marketing, res.Department)
	assert.Equal(t, 2, res.StatementIndex)

	res = Analyze(history, cat)
	assert.Equal(t, 7.0, res.Seed)
	assert.Equal(t, Marketing, res.Department)
	assert.Equal(t, 1, res.StatementIndex)
}

func TestAnalyze_Deterministic(t *testing.T) {
	cat, err := catalog.Default()
	require.NoError(t, err)
	history := []state.HistoryEntry{entry("credential-leak", 0, 18), entry("budget-cut", -20000, 8)}
	assert.Equal(t, Analyze(history, cat), Analyze(history, cat))
}

func TestDefaultSeed(t *testing.T) {
	assert.Equal(t, 0.0, DefaultSeed(nil))
	assert.Equal(t, 7.5, DefaultSeed([]state.HistoryEntry{{DoomIncrease: 10}, {DoomIncrease: -4.5}}))
}

func TestStatements_AllDepartments(t *testing.T) {
	for _, d := range Departments {
		assert.Len(t, Statements(d), 3, string(d))
	}
	s := Statements(Legal)
	s[0] = "mutated"
	assert.NotEqual(t, "mutated", Statements(Legal)[0])
}

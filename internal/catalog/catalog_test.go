package catalog

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLoader(t *testing.T) *Loader {
	t.Helper()
	l, err := NewLoader(WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	require.NoError(t, err)
	return l
}

func TestDefault_LoadsEmbeddedCatalog(t *testing.T) {
	devs, evs := DefaultYAML()
	m, report, err := quietLoader(t).Load(devs, evs)
	require.NoError(t, err)

	assert.Empty(t, report.Dropped)
	assert.Empty(t, report.Warnings)
	assert.Equal(t, 5, report.Devices)
	assert.Equal(t, 15, report.Events)
	assert.Len(t, m.Devices(), 5)
	assert.Len(t, m.Events(), 15)
}

func TestDefault_OmniJuice(t *testing.T) {
	m, err := Default(WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	require.NoError(t, err)

	d, ok := m.Device("omni-juice")
	require.True(t, ok)
	assert.Equal(t, 120000.0, d.InitialBudget)
	assert.Equal(t, 1500.0, d.MaintenanceCost)
	assert.Equal(t, 48, d.EOLMonth)
	assert.Equal(t, ArchetypeConsumer, d.Archetype)
	assert.Equal(t, []string{"cloud_dependency"}, d.InitialTags)

	assert.Equal(t, "omni-juice", m.DeviceIDs()[0], "declaration order is preserved")
}

func TestDefault_EventFields(t *testing.T) {
	m, err := Default(WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	require.NoError(t, err)

	e, ok := m.Event("cloud-sunset")
	require.True(t, ok)
	assert.Equal(t, "month > 12", e.TriggerCondition)
	assert.Equal(t, []string{"cloud_dependency"}, e.RequiredTags)
	assert.Equal(t, []string{"local_fallback"}, e.BlockingTags)
	assert.False(t, e.Repeatable)
	assert.Nil(t, e.Probability)

	c, ok := e.Choice("migrate")
	require.True(t, ok)
	assert.Equal(t, 25000.0, c.Cost)
	assert.Equal(t, []string{"local_fallback"}, c.AddTags)
	assert.Equal(t, RiskLow, c.Risk)

	crash, ok := m.Event("firmware-crash-loop")
	require.True(t, ok)
	require.NotNil(t, crash.Probability)
	assert.Equal(t, 0.35, *crash.Probability)
	assert.True(t, crash.Repeatable)

	_, ok = e.Choice("nope")
	assert.False(t, ok)
}

func TestLoad_DropsMalformedEntries(t *testing.T) {
	devices := []byte(`
devices:
  - {id: good, name: Good, archetype: consumer, difficulty: easy, initialBudget: 1000}
  - {id: bad-enum, name: Bad, archetype: spaceship, difficulty: easy, initialBudget: 1000}
  - {id: extra-field, name: Extra, archetype: consumer, difficulty: easy, initialBudget: 1000, color: red}
  - {id: good, name: Duplicate, archetype: consumer, difficulty: easy, initialBudget: 5}
  - {name: No Id, archetype: consumer, difficulty: easy, initialBudget: 1000}
  - {id: negative, name: Neg, archetype: consumer, difficulty: easy, initialBudget: -1}
`)
	events := []byte(`
events:
  - id: fine
    title: Fine
    choices:
      - {id: a, cost: 1, doomImpact: 1, risk: low}
  - id: no-choices
    title: Empty
    choices: []
  - id: bad-risk
    title: Bad risk
    choices:
      - {id: a, cost: 1, doomImpact: 1, risk: spicy}
  - id: bad-probability
    title: Too likely
    probability: 1.5
    choices:
      - {id: a, cost: 1, doomImpact: 1, risk: low}
  - id: broken-condition
    title: Broken
    triggerCondition: "month >"
    choices:
      - {id: a, cost: 1, doomImpact: 1, risk: low}
`)

	m, report, err := quietLoader(t).Load(devices, events)
	require.NoError(t, err)

	assert.Equal(t, 1, report.Devices)
	assert.Equal(t, 2, report.Events)

	dropped := map[string]string{}
	for _, d := range report.Dropped {
		dropped[d.Kind+"/"+d.ID] = d.Reason
	}
	assert.Contains(t, dropped, "device/bad-enum")
	assert.Contains(t, dropped, "device/extra-field")
	assert.Contains(t, dropped, "device/good")
	assert.Equal(t, "duplicate id", dropped["device/good"])
	assert.Contains(t, dropped, "device/")
	assert.Contains(t, dropped, "device/negative")
	assert.Contains(t, dropped, "event/no-choices")
	assert.Contains(t, dropped, "event/bad-risk")
	assert.Contains(t, dropped, "event/bad-probability")

	require.Len(t, report.Warnings, 1)
	assert.Equal(t, "broken-condition", report.Warnings[0].ID)

	d, ok := m.Device("good")
	require.True(t, ok)
	assert.Equal(t, "Good", d.Name)
	assert.Equal(t, []string{}, d.InitialTags, "schema default applies")

	_, ok = m.Event("broken-condition")
	assert.True(t, ok, "unparseable conditions are kept and fail closed at runtime")
}

func TestLoad_InvalidYAML(t *testing.T) {
	_, _, err := quietLoader(t).Load([]byte("devices: [unclosed"), []byte("events: []"))
	assert.Error(t, err)
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	devs, evs := DefaultYAML()
	require.NoError(t, os.WriteFile(filepath.Join(dir, DevicesFile), devs, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, EventsFile), evs, 0o644))

	m, report, err := LoadDir(dir, WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	require.NoError(t, err)
	assert.Equal(t, 5, report.Devices)
	assert.Len(t, m.Events(), 15)
}

func TestLoadDir_Missing(t *testing.T) {
	_, _, err := LoadDir(t.TempDir())
	assert.Error(t, err)
}

func TestNewMemory_DedupAndCopy(t *testing.T) {
	tags := []string{"a"}
	m := NewMemory(
		[]Device{{ID: "x", InitialTags: tags}, {ID: "x", Name: "dup"}, {ID: ""}},
		[]GameEvent{{ID: "e", Choices: []Choice{{ID: "c"}}}},
	)

	require.Len(t, m.Devices(), 1)
	tags[0] = "mutated"
	d, _ := m.Device("x")
	assert.Equal(t, []string{"a"}, d.InitialTags)

	_, ok := m.Device("missing")
	assert.False(t, ok)
	_, ok = m.Event("missing")
	assert.False(t, ok)
}

func TestMemory_AccessorsReturnCopies(t *testing.T) {
	m := NewMemory(
		[]Device{{ID: "x", InitialTags: []string{"a"}}},
		[]GameEvent{{ID: "e", RequiredTags: []string{"r"}, Choices: []Choice{{ID: "c", AddTags: []string{"t"}}}}},
	)

	m.Devices()[0].InitialTags[0] = "mutated"
	m.Events()[0].Choices[0].AddTags[0] = "mutated"
	m.Events()[0].RequiredTags[0] = "mutated"
	d, _ := m.Device("x")
	d.InitialTags[0] = "mutated"
	e, _ := m.Event("e")
	e.Choices[0].ID = "mutated"

	d, _ = m.Device("x")
	assert.Equal(t, []string{"a"}, d.InitialTags)
	e, _ = m.Event("e")
	assert.Equal(t, []string{"r"}, e.RequiredTags)
	assert.Equal(t, "c", e.Choices[0].ID)
	assert.Equal(t, []string{"t"}, e.Choices[0].AddTags)
}

func TestGameEvent_CloneIsDeep(t *testing.T) {
	p := 0.5
	e := GameEvent{
		ID:           "e",
		RequiredTags: []string{"a"},
		Choices:      []Choice{{ID: "c", AddTags: []string{"x"}}},
		Probability:  &p,
	}
	c := e.Clone()
	c.RequiredTags[0] = "b"
	c.Choices[0].AddTags[0] = "y"
	*c.Probability = 0.9

	assert.Equal(t, "a", e.RequiredTags[0])
	assert.Equal(t, "x", e.Choices[0].AddTags[0])
	assert.Equal(t, 0.5, *e.Probability)
}

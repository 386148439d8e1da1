package catalog

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"gopkg.in/yaml.v3"

	"github.com/deviceprophet/hardware-is-hard-sub000/internal/condition"
)

//go:embed schema.cue
var schemaCUE string

//go:embed data/devices.yaml
var defaultDevicesYAML []byte

//go:embed data/events.yaml
var defaultEventsYAML []byte

// File names looked up by LoadDir.
const (
	DevicesFile = "devices.yaml"
	EventsFile  = "events.yaml"
)

// Entry kinds used in LoadReport.
const (
	KindDevice = "device"
	KindEvent  = "event"
)

// DroppedEntry describes a raw entry rejected at the boundary.
type DroppedEntry struct {
	Kind   string `json:"kind"`
	Index  int    `json:"index"`
	ID     string `json:"id,omitempty"`
	Reason string `json:"reason"`
}

// Warning describes an accepted entry that looks suspicious, such as an
// unparseable trigger condition (which will simply never fire).
type Warning struct {
	Kind    string `json:"kind"`
	ID      string `json:"id"`
	Message string `json:"message"`
}

// LoadReport summarises a catalog load.
type LoadReport struct {
	Devices  int            `json:"devices"`
	Events   int            `json:"events"`
	Dropped  []DroppedEntry `json:"dropped,omitempty"`
	Warnings []Warning      `json:"warnings,omitempty"`
}

type rawDevices struct {
	Devices []map[string]any `yaml:"devices"`
}

type rawEvents struct {
	Events []map[string]any `yaml:"events"`
}

// Loader validates raw catalog documents against the CUE schema.
type Loader struct {
	logger    *slog.Logger
	deviceDef cue.Value
	eventDef  cue.Value
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithLogger sets the logger used for dropped-entry warnings.
func WithLogger(l *slog.Logger) LoaderOption {
	return func(ld *Loader) {
		ld.logger = l
	}
}

// NewLoader compiles the embedded schema.
func NewLoader(opts ...LoaderOption) (*Loader, error) {
	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("compile catalog schema: %w", err)
	}

	l := &Loader{
		logger:    slog.Default(),
		deviceDef: schema.LookupPath(cue.ParsePath("#Device")),
		eventDef:  schema.LookupPath(cue.ParsePath("#Event")),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// Load parses and validates the two YAML documents.
func (l *Loader) Load(devicesYAML, eventsYAML []byte) (*Memory, LoadReport, error) {
	var report LoadReport

	var rd rawDevices
	if err := yaml.Unmarshal(devicesYAML, &rd); err != nil {
		return nil, report, fmt.Errorf("parse devices: %w", err)
	}
	var re rawEvents
	if err := yaml.Unmarshal(eventsYAML, &re); err != nil {
		return nil, report, fmt.Errorf("parse events: %w", err)
	}

	seenDevices := make(map[string]bool)
	var devices []Device
	for i, raw := range rd.Devices {
		var d Device
		if err := l.decode(l.deviceDef, raw, &d); err != nil {
			report.Dropped = append(report.Dropped, l.drop(KindDevice, i, raw, err.Error()))
			continue
		}
		if seenDevices[d.ID] {
			report.Dropped = append(report.Dropped, l.drop(KindDevice, i, raw, "duplicate id"))
			continue
		}
		seenDevices[d.ID] = true
		devices = append(devices, d)
	}

	seenEvents := make(map[string]bool)
	var events []GameEvent
	for i, raw := range re.Events {
		var e GameEvent
		if err := l.decode(l.eventDef, raw, &e); err != nil {
			report.Dropped = append(report.Dropped, l.drop(KindEvent, i, raw, err.Error()))
			continue
		}
		if seenEvents[e.ID] {
			report.Dropped = append(report.Dropped, l.drop(KindEvent, i, raw, "duplicate id"))
			continue
		}
		seenEvents[e.ID] = true
		if err := condition.Check(e.TriggerCondition); err != nil {
			w := Warning{Kind: KindEvent, ID: e.ID, Message: err.Error()}
			report.Warnings = append(report.Warnings, w)
			l.logger.Warn("event trigger condition does not parse; event will never fire",
				"event_id", e.ID,
				"condition", e.TriggerCondition,
				"error", err,
			)
		}
		events = append(events, e)
	}

	report.Devices = len(devices)
	report.Events = len(events)
	return NewMemory(devices, events), report, nil
}

// decode unifies raw with def, requires a concrete result and decodes it
// into dst through its JSON form so schema defaults are applied.
func (l *Loader) decode(def cue.Value, raw map[string]any, dst any) error {
	v := def.Context().Encode(raw)
	if err := v.Err(); err != nil {
		return fmt.Errorf("encode: %s", cueerrors.Details(err, nil))
	}
	unified := def.Unify(v)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("%s", cueerrors.Details(err, nil))
	}
	data, err := unified.MarshalJSON()
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	return nil
}

func (l *Loader) drop(kind string, index int, raw map[string]any, reason string) DroppedEntry {
	id, _ := raw["id"].(string)
	l.logger.Warn("dropping malformed catalog entry",
		"kind", kind,
		"index", index,
		"id", id,
		"reason", reason,
	)
	return DroppedEntry{Kind: kind, Index: index, ID: id, Reason: reason}
}

// LoadDir reads devices.yaml and events.yaml from dir.
func LoadDir(dir string, opts ...LoaderOption) (*Memory, LoadReport, error) {
	devices, err := os.ReadFile(filepath.Join(dir, DevicesFile))
	if err != nil {
		return nil, LoadReport{}, fmt.Errorf("read devices: %w", err)
	}
	events, err := os.ReadFile(filepath.Join(dir, EventsFile))
	if err != nil {
		return nil, LoadReport{}, fmt.Errorf("read events: %w", err)
	}
	l, err := NewLoader(opts...)
	if err != nil {
		return nil, LoadReport{}, err
	}
	return l.Load(devices, events)
}

// Default loads the embedded reference catalog.
func Default(opts ...LoaderOption) (*Memory, error) {
	l, err := NewLoader(opts...)
	if err != nil {
		return nil, err
	}
	m, _, err := l.Load(defaultDevicesYAML, defaultEventsYAML)
	if err != nil {
		return nil, fmt.Errorf("load embedded catalog: %w", err)
	}
	return m, nil
}

// DefaultYAML returns the embedded catalog documents.
func DefaultYAML() (devices, events []byte) {
	return defaultDevicesYAML, defaultEventsYAML
}

package catalog

// Catalog is read-only lookup of devices and events.
type Catalog interface {
	Devices() []Device
	Events() []GameEvent
	Device(id string) (Device, bool)
	Event(id string) (GameEvent, bool)
}

// Memory is an in-memory Catalog preserving declaration order.
type Memory struct {
	devices     []Device
	events      []GameEvent
	deviceIndex map[string]int
	eventIndex  map[string]int
}

// NewMemory builds a catalog. Entries with an empty or repeated id are
// skipped; the first occurrence wins.
func NewMemory(devices []Device, events []GameEvent) *Memory {
	m := &Memory{
		deviceIndex: make(map[string]int, len(devices)),
		eventIndex:  make(map[string]int, len(events)),
	}
	for _, d := range devices {
		if d.ID == "" {
			continue
		}
		if _, dup := m.deviceIndex[d.ID]; dup {
			continue
		}
		m.deviceIndex[d.ID] = len(m.devices)
		m.devices = append(m.devices, d.Clone())
	}
	for _, e := range events {
		if e.ID == "" {
			continue
		}
		if _, dup := m.eventIndex[e.ID]; dup {
			continue
		}
		m.eventIndex[e.ID] = len(m.events)
		m.events = append(m.events, e.Clone())
	}
	return m
}

// Devices returns copies of all devices in declaration order.
func (m *Memory) Devices() []Device {
	out := make([]Device, len(m.devices))
	for i, d := range m.devices {
		out[i] = d.Clone()
	}
	return out
}

// Events returns copies of all events in declaration order.
func (m *Memory) Events() []GameEvent {
	out := make([]GameEvent, len(m.events))
	for i, e := range m.events {
		out[i] = e.Clone()
	}
	return out
}

// Device looks up a device by id.
func (m *Memory) Device(id string) (Device, bool) {
	i, ok := m.deviceIndex[id]
	if !ok {
		return Device{}, false
	}
	return m.devices[i].Clone(), true
}

// Event looks up an event by id.
func (m *Memory) Event(id string) (GameEvent, bool) {
	i, ok := m.eventIndex[id]
	if !ok {
		return GameEvent{}, false
	}
	return m.events[i].Clone(), true
}

// DeviceIDs returns device ids in declaration order.
func (m *Memory) DeviceIDs() []string {
	ids := make([]string, len(m.devices))
	for i, d := range m.devices {
		ids[i] = d.ID
	}
	return ids
}

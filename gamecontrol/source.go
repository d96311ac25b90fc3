package gamecontrol

// DeviceID identifies a connected device for as long as it stays connected.
type DeviceID int32

// EventType enumerates the device events a Source delivers.
type EventType uint8

const (
	EventDeviceAdded EventType = iota + 1
	EventDeviceRemoved
	EventButton
	EventAxis
)

// Event is one raw device event.
//
//	EventDeviceAdded:   Which is the device index to pass to Source.Open
//	EventDeviceRemoved: Which is the DeviceID
//	EventButton:        Which, Index (button), Pressed
//	EventAxis:          Which, Index (axis), Value
type Event struct {
	Type    EventType
	Which   int32
	Index   uint8
	Value   int16
	Pressed bool
}

// Device is an opened physical controller.
type Device interface {
	ID() DeviceID
	Name() string
	Close() error
}

// Source is the capability set of the underlying input-device library.
// Implementations are driven from a single goroutine.
type Source interface {
	// Init starts the device subsystem.
	Init() error
	// AddMappingsFromFile loads a controller mapping database and returns the
	// number of mappings added.
	AddMappingsFromFile(path string) (int, error)
	// Open opens the device at the index reported by EventDeviceAdded.
	Open(index int) (Device, error)
	// Poll returns the next pending event, or false when the queue is drained.
	Poll() (Event, bool)
	Close() error
}

// Settings persists the user-facing configuration. Missing keys load as the
// zero value.
type Settings interface {
	LoadBool(name string) bool
	SaveBool(name string, value bool)
	LoadString(name string) string
	SaveString(name string, value string)
}

// MemorySettings keeps settings in maps. The zero value is not usable; use
// NewMemorySettings.
type MemorySettings struct {
	bools   map[string]bool
	strings map[string]string
}

func NewMemorySettings() *MemorySettings {
	return &MemorySettings{bools: map[string]bool{}, strings: map[string]string{}}
}

func (m *MemorySettings) LoadBool(name string) bool { return m.bools[name] }
func (m *MemorySettings) SaveBool(name string, value bool) { m.bools[name] = value }
func (m *MemorySettings) LoadString(name string) string { return m.strings[name] }
func (m *MemorySettings) SaveString(name string, value string) { m.strings[name] = value }

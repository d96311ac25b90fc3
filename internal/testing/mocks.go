package testing

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Alia5/gamecontrol/gamecontrol"
)

// MockDevice is a gamecontrol.Device that records Close calls.
type MockDevice struct {
	DeviceID   gamecontrol.DeviceID
	DeviceName string

	mu     sync.Mutex
	closed int
}

func (d *MockDevice) ID() gamecontrol.DeviceID { return d.DeviceID }
func (d *MockDevice) Name() string             { return d.DeviceName }

func (d *MockDevice) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed++
	return nil
}

// Closed reports how many times Close was called.
func (d *MockDevice) Closed() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.closed
}

// MockSource is a gamecontrol.Source fed by Push. Device index i opens a
// device with id 100+i unless Devices has an entry for i.
type MockSource struct {
	InitErr    error
	MappingErr error
	Mappings   int
	Devices    map[int]*MockDevice

	mu       sync.Mutex
	queue    []gamecontrol.Event
	opened   []*MockDevice
	dbPaths  []string
	isClosed bool
}

func NewMockSource() *MockSource {
	return &MockSource{Devices: map[int]*MockDevice{}}
}

func (s *MockSource) Init() error { return s.InitErr }

func (s *MockSource) AddMappingsFromFile(path string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dbPaths = append(s.dbPaths, path)
	if s.MappingErr != nil {
		return 0, s.MappingErr
	}
	return s.Mappings, nil
}

func (s *MockSource) Open(index int) (gamecontrol.Device, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 {
		return nil, errors.New("invalid device index")
	}
	dev, ok := s.Devices[index]
	if !ok {
		dev = &MockDevice{
			DeviceID:   gamecontrol.DeviceID(100 + index),
			DeviceName: fmt.Sprintf("mock pad %d", index),
		}
		s.Devices[index] = dev
	}
	s.opened = append(s.opened, dev)
	return dev, nil
}

func (s *MockSource) Poll() (gamecontrol.Event, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.queue) == 0 {
		return gamecontrol.Event{}, false
	}
	ev := s.queue[0]
	s.queue = s.queue[1:]
	return ev, true
}

func (s *MockSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.isClosed = true
	return nil
}

// Push queues events for Poll.
func (s *MockSource) Push(events ...gamecontrol.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queue = append(s.queue, events...)
}

// Pending returns the number of queued events.
func (s *MockSource) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue)
}

// MappingPaths returns the paths passed to AddMappingsFromFile.
func (s *MockSource) MappingPaths() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.dbPaths...)
}

// IsClosed reports whether Close was called.
func (s *MockSource) IsClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isClosed
}

// Added returns a device-added event for index.
func Added(index int32) gamecontrol.Event {
	return gamecontrol.Event{Type: gamecontrol.EventDeviceAdded, Which: index}
}

// Removed returns a device-removed event for id.
func Removed(id gamecontrol.DeviceID) gamecontrol.Event {
	return gamecontrol.Event{Type: gamecontrol.EventDeviceRemoved, Which: int32(id)}
}

// Button returns a button event.
func Button(id gamecontrol.DeviceID, button uint8, pressed bool) gamecontrol.Event {
	return gamecontrol.Event{Type: gamecontrol.EventButton, Which: int32(id), Index: button, Pressed: pressed}
}

// Axis returns an axis motion event.
func Axis(id gamecontrol.DeviceID, axis uint8, value int16) gamecontrol.Event {
	return gamecontrol.Event{Type: gamecontrol.EventAxis, Which: int32(id), Index: axis, Value: value}
}

// Clock is a manually advanced time source.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

func NewClock() *Clock { return &Clock{now: time.Unix(1_700_000_000, 0)} }

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// MockSender records every state handed to Send.
type MockSender struct {
	Err error

	mu    sync.Mutex
	sent  []gamecontrol.State
	flags []uint32
}

func (s *MockSender) Send(state gamecontrol.State, actionFlags uint32) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	s.sent = append(s.sent, state)
	s.flags = append(s.flags, actionFlags)
	return nil
}

// Sent returns the states sent so far.
func (s *MockSender) Sent() []gamecontrol.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]gamecontrol.State(nil), s.sent...)
}

// Flags returns the action flags sent so far.
func (s *MockSender) Flags() []uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]uint32(nil), s.flags...)
}

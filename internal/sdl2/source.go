// Package sdl2 implements gamecontrol.Source on top of the SDL2
// GameController API. All calls must come from the goroutine that owns the
// SDL event queue, normally the locked main thread.
package sdl2

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/veandco/go-sdl2/sdl"

	"github.com/Alia5/gamecontrol/gamecontrol"
)

// Source polls SDL for controller events.
type Source struct {
	logger *slog.Logger
	inited bool
}

func New(logger *slog.Logger) *Source {
	if logger == nil {
		logger = slog.Default()
	}
	return &Source{logger: logger}
}

func (s *Source) Init() error {
	if err := sdl.InitSubSystem(sdl.INIT_GAMECONTROLLER); err != nil {
		return fmt.Errorf("init SDL game controller subsystem: %w", err)
	}
	s.inited = true
	v := sdl.Version{}
	sdl.GetVersion(&v)
	s.logger.Debug("SDL initialized", "version", fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch))
	return nil
}

func (s *Source) AddMappingsFromFile(path string) (int, error) {
	n := sdl.GameControllerAddMappingsFromFile(path)
	if n < 0 {
		return 0, fmt.Errorf("load mappings from %s: %w", path, sdl.GetError())
	}
	return n, nil
}

func (s *Source) Open(index int) (gamecontrol.Device, error) {
	c := sdl.GameControllerOpen(index)
	if c == nil {
		return nil, fmt.Errorf("open controller %d: %w", index, sdl.GetError())
	}
	return &device{c: c, id: gamecontrol.DeviceID(c.Joystick().InstanceID())}, nil
}

func (s *Source) Poll() (gamecontrol.Event, bool) {
	for {
		ev := sdl.PollEvent()
		if ev == nil {
			return gamecontrol.Event{}, false
		}
		if out, ok := convert(ev); ok {
			return out, true
		}
	}
}

func (s *Source) Close() error {
	if !s.inited {
		return errors.New("not initialized")
	}
	sdl.QuitSubSystem(sdl.INIT_GAMECONTROLLER)
	s.inited = false
	return nil
}

// convert maps controller events and skips everything else.
func convert(ev sdl.Event) (gamecontrol.Event, bool) {
	switch e := ev.(type) {
	case *sdl.ControllerDeviceEvent:
		switch e.Type {
		case sdl.CONTROLLERDEVICEADDED:
			return gamecontrol.Event{Type: gamecontrol.EventDeviceAdded, Which: int32(e.Which)}, true
		case sdl.CONTROLLERDEVICEREMOVED:
			return gamecontrol.Event{Type: gamecontrol.EventDeviceRemoved, Which: int32(e.Which)}, true
		}
	case *sdl.ControllerButtonEvent:
		return gamecontrol.Event{
			Type:    gamecontrol.EventButton,
			Which:   int32(e.Which),
			Index:   e.Button,
			Pressed: e.State == sdl.PRESSED,
		}, true
	case *sdl.ControllerAxisEvent:
		return gamecontrol.Event{
			Type:  gamecontrol.EventAxis,
			Which: int32(e.Which),
			Index: e.Axis,
			Value: e.Value,
		}, true
	}
	return gamecontrol.Event{}, false
}

type device struct {
	c  *sdl.GameController
	id gamecontrol.DeviceID
}

func (d *device) ID() gamecontrol.DeviceID { return d.id }
func (d *device) Name() string             { return d.c.Name() }

func (d *device) Close() error {
	d.c.Close()
	return nil
}

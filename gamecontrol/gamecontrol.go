package gamecontrol

import (
	"log/slog"
	"math/bits"
	"time"
)

// Settings keys.
const (
	SettingSendToServer     = "GameControlToServer"
	SettingControlAgent     = "GameControlToAgent"
	SettingTranslateActions = "AgentToGameControl"
	SettingAgentControlMode = "AgentControlMode"
	SettingAnalogMappings   = "AnalogChannelMappings"
	SettingBinaryMappings   = "BinaryChannelMappings"
	SettingFlycamMappings   = "FlycamChannelMappings"
)

// AgentControlMode selects what the controllers drive when they control the
// agent.
type AgentControlMode uint8

const (
	ControlModeAvatar AgentControlMode = iota
	ControlModeFlycam
	ControlModeNone
)

// ParseAgentControlMode converts a persisted mode. Anything other than
// "none" and "flycam" is the avatar mode.
func ParseAgentControlMode(s string) AgentControlMode {
	switch s {
	case "none":
		return ControlModeNone
	case "flycam":
		return ControlModeFlycam
	default:
		return ControlModeAvatar
	}
}

// String returns the persisted form. The avatar mode is the empty string.
func (m AgentControlMode) String() string {
	switch m {
	case ControlModeNone:
		return "none"
	case ControlModeFlycam:
		return "flycam"
	default:
		return ""
	}
}

// Options configures New.
type Options struct {
	// MappingDBPath is a controller mapping database handed to the source.
	// Optional; a load failure is only logged.
	MappingDBPath string
	// Source delivers device events. Nil runs without devices.
	Source Source
	// Settings stores flags and mappings. Nil uses an in-memory store.
	Settings Settings
	Logger   *slog.Logger
	// Now defaults to time.Now.
	Now func() time.Time
}

// GameControl is the controller input subsystem: the device collection, the
// final combined state, the resend timer and the user flags. All methods
// must be called from one goroutine.
type GameControl struct {
	source   Source
	settings Settings
	logger   *slog.Logger
	now      func() time.Time

	manager *Manager
	final   State
	resend  Resend

	sendToServer          bool
	controlAgent          bool
	translateAgentActions bool
	mode                  AgentControlMode
}

// New starts the subsystem. Failures of the device source are logged and
// leave the subsystem running without devices.
func New(opts Options) *GameControl {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	g := &GameControl{
		source:   opts.Source,
		settings: opts.Settings,
		logger:   logger,
		now:      opts.Now,
		manager:  NewManager(logger),
	}
	if g.now == nil {
		g.now = time.Now
	}
	if g.settings == nil {
		g.settings = NewMemorySettings()
	}

	if g.source != nil {
		if err := g.source.Init(); err != nil {
			logger.Warn("Error initializing the device subsystem", "error", err)
			g.source = nil
		}
	}
	if g.source != nil && opts.MappingDBPath != "" {
		count, err := g.source.AddMappingsFromFile(opts.MappingDBPath)
		if err != nil {
			logger.Warn("Error adding device mappings", "path", opts.MappingDBPath, "error", err)
		} else {
			logger.Info("Device mappings added", "path", opts.MappingDBPath, "count", count)
		}
	}

	g.LoadFromSettings()
	return g
}

// Shutdown closes all devices and the source.
func (g *GameControl) Shutdown() {
	for _, dev := range g.manager.Devices() {
		if err := dev.Close(); err != nil {
			g.logger.Warn("Failed to close device", "id", dev.ID(), "error", err)
		}
	}
	g.manager.Clear()
	if g.source != nil {
		if err := g.source.Close(); err != nil {
			g.logger.Warn("Failed to close device subsystem", "error", err)
		}
		g.source = nil
	}
}

// Manager returns the controller manager.
func (g *GameControl) Manager() *Manager { return g.manager }

// ProcessEvents drains pending device events. It must be called every frame.
// Without focus the events are discarded and every state is cleared.
func (g *GameControl) ProcessEvents(focus bool) {
	if g.source == nil {
		if !focus {
			g.manager.ClearAllStates()
		}
		return
	}
	if !focus {
		for {
			if _, ok := g.source.Poll(); !ok {
				break
			}
		}
		g.manager.ClearAllStates()
		return
	}

	for {
		ev, ok := g.source.Poll()
		if !ok {
			return
		}
		switch ev.Type {
		case EventDeviceAdded:
			g.onDeviceAdded(int(ev.Which))
		case EventDeviceRemoved:
			if dev := g.manager.RemoveController(DeviceID(ev.Which)); dev != nil {
				if err := dev.Close(); err != nil {
					g.logger.Warn("Failed to close device", "id", ev.Which, "error", err)
				}
			}
		case EventButton:
			g.manager.OnButton(DeviceID(ev.Which), ev.Index, ev.Pressed)
		case EventAxis:
			g.manager.OnAxis(DeviceID(ev.Which), ev.Index, ev.Value)
		}
	}
}

func (g *GameControl) onDeviceAdded(index int) {
	dev, err := g.source.Open(index)
	if err != nil {
		g.logger.Warn("Failed to open device", "index", index, "error", err)
		return
	}
	if !g.manager.AddController(dev.ID(), dev) {
		_ = dev.Close()
	}
}

// ComputeFinalStateAndCheckForChanges merges the accumulated input into the
// final state and reports whether it must be sent now, either because it
// changed or because a resend is due.
func (g *GameControl) ComputeFinalStateAndCheckForChanges() bool {
	if g.manager.ComputeFinalState(&g.final, g.translateAgentActions) {
		g.resend.Reset()
	}
	return g.sendToServer && g.resend.Due(g.now())
}

// UpdateResendPeriod must be called right after the final state was sent.
func (g *GameControl) UpdateResendPeriod() {
	g.resend.OnSent(g.now(), &g.final)
}

// NextResendPeriod returns the current resend period; zero means a send is
// pending.
func (g *GameControl) NextResendPeriod() time.Duration { return g.resend.NextPeriod() }

// State returns a copy of the final combined state.
func (g *GameControl) State() State {
	s := g.final
	s.device = nil
	return s
}

// ActiveInputChannel returns the first pressed button, else the first axis
// beyond half scale, else NONE.
func (g *GameControl) ActiveInputChannel() InputChannel {
	if g.final.Buttons != 0 {
		return ButtonChannel(uint8(bits.TrailingZeros32(g.final.Buttons)))
	}
	const threshold = 32767 / 2
	for i, v := range g.final.Axes {
		if v > threshold {
			return AxisChannel(uint8(i), 1)
		}
		if v < -threshold {
			return AxisChannel(uint8(i), -1)
		}
	}
	return InputChannel{}
}

// FlycamInputs returns the flycam inputs in flycam table order.
func (g *GameControl) FlycamInputs() [NumFlycamInputs]float32 {
	return g.manager.FlycamInputs()
}

func (g *GameControl) SetSendToServer(enable bool) {
	g.sendToServer = enable
	g.settings.SaveBool(SettingSendToServer, enable)
}

func (g *GameControl) SetControlAgent(enable bool) {
	g.controlAgent = enable
	g.settings.SaveBool(SettingControlAgent, enable)
}

func (g *GameControl) SetTranslateAgentActions(enable bool) {
	g.translateAgentActions = enable
	g.settings.SaveBool(SettingTranslateActions, enable)
}

func (g *GameControl) SetAgentControlMode(mode AgentControlMode) {
	g.mode = mode
	g.settings.SaveString(SettingAgentControlMode, mode.String())
}

func (g *GameControl) SendToServer() bool { return g.sendToServer }
func (g *GameControl) ControlAgent() bool { return g.controlAgent }
func (g *GameControl) TranslateAgentActions() bool { return g.translateAgentActions }
func (g *GameControl) AgentControlMode() AgentControlMode { return g.mode }

// WillControlAvatar reports whether controller input moves the avatar.
func (g *GameControl) WillControlAvatar() bool {
	return g.controlAgent && g.mode == ControlModeAvatar
}

func (g *GameControl) ActionNameType(action string) ActionNameType {
	return g.manager.ActionNameType(action)
}

func (g *GameControl) ChannelByAction(action string) InputChannel {
	return g.manager.ChannelByAction(action)
}

func (g *GameControl) UpdateActionMap(action string, channel InputChannel) bool {
	return g.manager.UpdateActionMap(action, channel)
}

// ComputeInternalActionFlags accumulates device input and returns the agent
// control flags it produces. It returns 0 unless the controllers control the
// agent.
func (g *GameControl) ComputeInternalActionFlags() uint32 {
	return g.manager.ComputeInternalActionFlags(g.controlAgent)
}

// SetExternalInput feeds agent flags and extra buttons from outside the
// controllers.
func (g *GameControl) SetExternalInput(actionFlags, buttons uint32) {
	g.manager.SetExternalInput(actionFlags, buttons, g.translateAgentActions)
}

func (g *GameControl) MappedFlags() uint32 { return g.manager.MappedFlags() }

func (g *GameControl) ClearAllStates() { g.manager.ClearAllStates() }

// InitByDefault resets the flags and mappings to their defaults without
// touching the settings.
func (g *GameControl) InitByDefault() {
	g.sendToServer = false
	g.controlAgent = false
	g.translateAgentActions = false
	g.mode = ControlModeAvatar
	g.manager.InitializeMappingsByDefault()
}

// LoadFromSettings reads flags and mappings. The default mappings are used
// when no mapping is stored or when the stored ones map nothing.
func (g *GameControl) LoadFromSettings() {
	g.sendToServer = g.settings.LoadBool(SettingSendToServer)
	g.controlAgent = g.settings.LoadBool(SettingControlAgent)
	g.translateAgentActions = g.settings.LoadBool(SettingTranslateActions)
	g.mode = ParseAgentControlMode(g.settings.LoadString(SettingAgentControlMode))

	analog := g.settings.LoadString(SettingAnalogMappings)
	binary := g.settings.LoadString(SettingBinaryMappings)
	flycam := g.settings.LoadString(SettingFlycamMappings)
	if analog == "" && binary == "" && flycam == "" {
		g.manager.InitializeMappingsByDefault()
		return
	}
	g.manager.SetAnalogMappings(analog)
	g.manager.SetBinaryMappings(binary)
	g.manager.SetFlycamMappings(flycam)
	if g.manager.MappedFlags() == 0 {
		g.logger.Info("No action mapped, using default mappings")
		g.manager.InitializeMappingsByDefault()
	}
}

// SaveToSettings writes every flag and mapping.
func (g *GameControl) SaveToSettings() {
	g.settings.SaveBool(SettingSendToServer, g.sendToServer)
	g.settings.SaveBool(SettingControlAgent, g.controlAgent)
	g.settings.SaveBool(SettingTranslateActions, g.translateAgentActions)
	g.settings.SaveString(SettingAgentControlMode, g.mode.String())
	g.settings.SaveString(SettingAnalogMappings, g.manager.AnalogMappings())
	g.settings.SaveString(SettingBinaryMappings, g.manager.BinaryMappings())
	g.settings.SaveString(SettingFlycamMappings, g.manager.FlycamMappings())
}

func (g *GameControl) AnalogMappings() string { return g.manager.AnalogMappings() }
func (g *GameControl) BinaryMappings() string { return g.manager.BinaryMappings() }
func (g *GameControl) FlycamMappings() string { return g.manager.FlycamMappings() }

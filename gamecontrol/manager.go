package gamecontrol

import (
	"log/slog"
	"slices"
)

// Manager owns the per-device states and the action mappings, and folds
// them into one combined state. It is not safe for concurrent use.
type Manager struct {
	states     []*State
	external   State
	translator *Translator
	actions    map[string]ActionNameType
	flycam     [NumFlycamInputs]InputChannel

	axesAccumulator   [NumAxes]int32
	buttonAccumulator uint32
	lastActiveFlags   uint32

	logger *slog.Logger
}

// NewManager returns a manager with the default mappings.
func NewManager(logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	m := &Manager{
		actions: buildActionTable(),
		logger:  logger,
	}
	m.translator = NewTranslator(defaultActionMasks(), m.ActionNameType, logger)
	m.InitializeMappingsByDefault()
	return m
}

// InitializeMappingsByDefault restores the default agent and flycam
// mappings.
func (m *Manager) InitializeMappingsByDefault() {
	m.translator.SetMappings(defaultAgentMappings())
	m.flycam = defaultFlycamChannels()
}

// Translator exposes the action translator.
func (m *Manager) Translator() *Translator { return m.translator }

func (m *Manager) findState(id DeviceID) int {
	return slices.IndexFunc(m.states, func(s *State) bool { return s.ID == id })
}

// AddController starts tracking a newly opened device. It returns false when
// the device is nil or id is already tracked.
func (m *Manager) AddController(id DeviceID, device Device) bool {
	m.logger.Info("Add controller", "id", id)
	if device == nil || id < 0 {
		m.logger.Warn("Invalid controller", "id", id)
		return false
	}
	if m.findState(id) >= 0 {
		m.logger.Warn("Device already added", "id", id)
		return false
	}
	m.states = append(m.states, &State{ID: id, device: device})
	m.logger.Debug("Controller added", "id", id, "name", device.Name())
	return true
}

// RemoveController stops tracking id and returns its handle, or nil when id
// was not tracked.
func (m *Manager) RemoveController(id DeviceID) Device {
	m.logger.Info("Remove controller", "id", id)
	i := m.findState(id)
	if i < 0 {
		return nil
	}
	dev := m.states[i].device
	m.states = slices.Delete(m.states, i, i+1)
	return dev
}

// Devices returns the handles of all tracked devices.
func (m *Manager) Devices() []Device {
	out := make([]Device, 0, len(m.states))
	for _, s := range m.states {
		out = append(out, s.device)
	}
	return out
}

// NumControllers returns the number of tracked devices.
func (m *Manager) NumControllers() int { return len(m.states) }

// OnAxis stores a raw axis value for id. Stick axes are inverted because
// the device reports negative values for forward and left.
func (m *Manager) OnAxis(id DeviceID, axis uint8, value int16) {
	if axis > maxAxis {
		return
	}
	i := m.findState(id)
	if i < 0 {
		return
	}
	if axis < AxisTriggerLeft {
		value = invertAxis(value)
	}
	m.logger.Debug("Axis", "id", id, "axis", axis, "value", value)
	m.states[i].Axes[axis] = value
}

// OnButton sets or clears a button for id. It reports whether the device's
// bitmask changed.
func (m *Manager) OnButton(id DeviceID, button uint8, pressed bool) bool {
	i := m.findState(id)
	if i < 0 {
		return false
	}
	changed := m.states[i].OnButton(button, pressed)
	if changed {
		m.logger.Debug("Button", "id", id, "button", button, "pressed", pressed)
	}
	return changed
}

// ClearAllStates zeroes every device and the external state.
func (m *Manager) ClearAllStates() {
	for _, s := range m.states {
		s.Clear()
	}
	m.external.Clear()
	m.lastActiveFlags = 0
}

// Clear forgets every device.
func (m *Manager) Clear() {
	m.states = nil
}

// AccumulateInternalState sums the axes and ORs the buttons of all devices.
// Sums are not clamped here.
func (m *Manager) AccumulateInternalState() {
	m.axesAccumulator = [NumAxes]int32{}
	m.buttonAccumulator = 0
	for _, s := range m.states {
		m.buttonAccumulator |= s.Buttons
		for i := 0; i < NumAxes; i++ {
			m.axesAccumulator[i] += int32(s.Axes[i])
		}
	}
}

// InternalState returns the accumulated axis sums and button bits.
func (m *Manager) InternalState() ([NumAxes]int32, uint32) {
	return m.axesAccumulator, m.buttonAccumulator
}

// ComputeFinalState merges the accumulated state (and the external state
// when translate is set) into final. It reports whether any button or axis
// changed. A changed axis first moves its old value into PrevAxes.
func (m *Manager) ComputeFinalState(final *State, translate bool) bool {
	changed := false

	buttons := m.buttonAccumulator
	if translate {
		buttons |= m.external.Buttons
	}
	if final.Buttons != buttons {
		final.Buttons = buttons
		changed = true
	}

	for i := 0; i < NumAxes; i++ {
		axis := m.axesAccumulator[i]
		if translate {
			// External state is folded into the local sum only: the
			// accumulator also drives the flycam.
			axis += int32(m.external.Axes[i])
		}
		value := clampAxis(axis)
		if final.Axes[i] != value {
			final.PrevAxes[i] = final.Axes[i]
			final.Axes[i] = value
			changed = true
		}
	}
	return changed
}

// ComputeInternalActionFlags accumulates device input and translates it to
// action flags. It returns 0 when enabled is false.
func (m *Manager) ComputeInternalActionFlags(enabled bool) uint32 {
	m.AccumulateInternalState()
	if !enabled {
		return 0
	}
	return m.translator.ComputeFlagsFromState(m.axesAccumulator, m.buttonAccumulator)
}

// SetExternalInput records input coming from outside the controllers, e.g.
// keyboard driven avatar flags. With translate set, the supported subset of
// actionFlags is turned into synthetic controller state.
func (m *Manager) SetExternalInput(actionFlags, buttons uint32, translate bool) {
	if !translate {
		m.external.Buttons = buttons
		return
	}
	actionFlags &= externalBitsOfInterest

	active := actionFlags & m.translator.MappedFlags()
	if active != m.lastActiveFlags {
		m.lastActiveFlags = active
		m.external = m.translator.ComputeStateFromFlags(actionFlags)
		m.external.Buttons |= buttons
	} else {
		m.external.Buttons = buttons
	}
}

// ExternalState returns a copy of the synthetic external state.
func (m *Manager) ExternalState() State { return m.external }

// ActionNameType classifies action.
func (m *Manager) ActionNameType(action string) ActionNameType {
	if t, ok := m.actions[action]; ok {
		return t
	}
	return ActionNameUnknown
}

// ChannelByAction returns the channel mapped to action, or NONE for unknown
// names.
func (m *Manager) ChannelByAction(action string) InputChannel {
	switch m.ActionNameType(action) {
	case ActionNameUnknown:
		return InputChannel{}
	case ActionNameFlycam:
		return m.FlycamChannelByAction(action)
	default:
		return m.translator.ChannelByAction(action)
	}
}

// FlycamChannelByAction returns the flycam channel for action, or NONE when
// action is not one of FlycamActions.
func (m *Manager) FlycamChannelByAction(action string) InputChannel {
	i := flycamIndex(action)
	if i < 0 {
		m.logger.Warn("Not a flycam action", "action", action)
		return InputChannel{}
	}
	return m.flycam[i]
}

// UpdateActionMap maps action to channel. It returns false for unknown
// action names.
func (m *Manager) UpdateActionMap(action string, channel InputChannel) bool {
	nameType := m.ActionNameType(action)
	if nameType == ActionNameUnknown {
		m.logger.Warn("Unmappable action", "action", action)
		return false
	}
	if nameType == ActionNameFlycam {
		m.updateFlycamMap(action, channel)
	} else {
		m.translator.UpdateMap(action, channel)
	}
	return true
}

func (m *Manager) updateFlycamMap(action string, channel InputChannel) {
	i := flycamIndex(action)
	if i < 0 {
		m.logger.Warn("Not a flycam action", "action", action)
		return
	}
	m.flycam[i] = channel
}

// MappedFlags returns the union of all mapped action masks.
func (m *Manager) MappedFlags() uint32 { return m.translator.MappedFlags() }

// FlycamInputs returns the accumulated input of each flycam channel in
// table order, scaled to about [-1, 1]. The two triggers are read as one
// bidirectional axis: left minus right, negated for the right trigger.
func (m *Manager) FlycamInputs() [NumFlycamInputs]float32 {
	var inputs [NumFlycamInputs]float32
	for i, channel := range m.flycam {
		if !channel.IsAxis() || channel.Index > maxAxis {
			continue
		}
		var axis int16
		if channel.Index == AxisTriggerLeft || channel.Index == AxisTriggerRight {
			total := m.axesAccumulator[AxisTriggerLeft] - m.axesAccumulator[AxisTriggerRight]
			if channel.Index == AxisTriggerRight {
				total = -total
			}
			axis = clampAxis(total)
		} else {
			axis = clampAxis(m.axesAccumulator[channel.Index])
		}
		scale := float32(32768)
		if axis > 0 {
			scale = 32767
		}
		inputs[i] = float32(axis) / scale * float32(channel.Sign)
	}
	return inputs
}

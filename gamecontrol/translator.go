package gamecontrol

import (
	"log/slog"
	"maps"
	"slices"
	"strings"
)

// Translator maps action names to agent control bitmasks and to channels,
// in both directions.
type Translator struct {
	actionToMask  map[string]uint32
	maskToChannel map[uint32]InputChannel
	// masks is the sorted key set of maskToChannel so that iteration is
	// deterministic.
	masks       []uint32
	mappedFlags uint32
	classify    func(string) ActionNameType
	logger      *slog.Logger
}

// NewTranslator builds a translator for the given action masks. classify
// reports the type of an action name.
func NewTranslator(actionMasks map[string]uint32, classify func(string) ActionNameType, logger *slog.Logger) *Translator {
	if logger == nil {
		logger = slog.Default()
	}
	t := &Translator{
		maskToChannel: map[uint32]InputChannel{},
		classify:      classify,
		logger:        logger,
	}
	t.SetAvailableActionMasks(actionMasks)
	return t
}

// SetAvailableActionMasks replaces the action->mask table and drops all
// current mappings.
func (t *Translator) SetAvailableActionMasks(actionMasks map[string]uint32) {
	t.actionToMask = maps.Clone(actionMasks)
	clear(t.maskToChannel)
	t.recompute()
}

// SetMappings replaces every mapping. Analog actions are given once by base
// name and expand to both signed entries.
func (t *Translator) SetMappings(list []NamedChannel) {
	clear(t.maskToChannel)
	for _, nc := range list {
		t.UpdateMap(nc.Action, nc.Channel)
	}
	t.recompute()
}

// UpdateMap maps one action to channel. Unknown actions, flycam actions and
// channels of the wrong type are ignored. Mapping NONE removes the entry.
func (t *Translator) UpdateMap(action string, channel InputChannel) {
	nameType := t.classify(action)
	if nameType == ActionNameUnknown || nameType == ActionNameFlycam {
		t.logger.Warn("Unmappable action", "action", action, "type", nameType)
		return
	}

	expected := ChannelAxis
	if nameType == ActionNameBinary {
		expected = ChannelButton
	}
	if !channel.IsNone() && channel.Type != expected {
		t.logger.Warn("Unmappable channel for action", "action", action, "channel", channel.LocalName(), "type", nameType)
		return
	}

	if nameType == ActionNameAnalog {
		t.updateMapInternal(action+"+", channel)
		t.updateMapInternal(action+"-", channel.Opposite())
	} else {
		t.updateMapInternal(action, channel)
	}
	t.recompute()
}

func (t *Translator) updateMapInternal(action string, channel InputChannel) {
	mask, ok := t.actionToMask[action]
	if !ok {
		return
	}
	if channel.IsNone() {
		delete(t.maskToChannel, mask)
		return
	}
	t.maskToChannel[mask] = channel
}

func (t *Translator) recompute() {
	t.masks = slices.Sorted(maps.Keys(t.maskToChannel))
	t.mappedFlags = 0
	for _, mask := range t.masks {
		t.mappedFlags |= mask
	}
}

// ChannelByAction returns the channel mapped to action, or NONE. A base
// analog name without '+' or '-' resolves to its positive half.
func (t *Translator) ChannelByAction(action string) InputChannel {
	if mask, ok := t.actionToMask[action]; ok {
		return t.maskToChannel[mask]
	}
	if action != "" && !strings.HasSuffix(action, "+") && !strings.HasSuffix(action, "-") {
		if mask, ok := t.actionToMask[action+"+"]; ok {
			return t.maskToChannel[mask]
		}
	}
	return InputChannel{}
}

// MappedFlags is the union of the masks of all mapped actions. Zero means
// nothing is mapped.
func (t *Translator) MappedFlags() uint32 { return t.mappedFlags }

// ComputeFlagsFromState turns accumulated controller input into action
// flags.
func (t *Translator) ComputeFlagsFromState(axes [NumAxes]int32, buttons uint32) uint32 {
	var flags uint32
	for _, mask := range t.masks {
		channel := t.maskToChannel[mask]
		switch channel.Type {
		case ChannelAxis:
			if channel.Index > maxAxis {
				continue
			}
			value := axes[channel.Index]
			if channel.Sign < 0 {
				if value < -axisThreshold {
					flags |= mask
				}
			} else if value > axisThreshold {
				flags |= mask
			}
		case ChannelButton:
			if channel.Index <= maxButton && buttons&(1<<channel.Index) != 0 {
				flags |= mask
			}
		}
	}
	return flags
}

// ComputeStateFromFlags builds the controller state that would have produced
// actionFlags: every action whose mask is fully present drives its channel to
// full scale.
func (t *Translator) ComputeStateFromFlags(actionFlags uint32) State {
	var state State
	for _, mask := range t.masks {
		if mask&actionFlags != mask {
			continue
		}
		channel := t.maskToChannel[mask]
		switch channel.Type {
		case ChannelAxis:
			if channel.Index > maxAxis {
				continue
			}
			if channel.Sign < 0 {
				state.Axes[channel.Index] = -32768
			} else {
				state.Axes[channel.Index] = 32767
			}
		case ChannelButton:
			if channel.Index <= maxButton {
				state.Buttons |= 1 << channel.Index
			}
		}
	}
	return state
}

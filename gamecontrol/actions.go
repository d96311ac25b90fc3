package gamecontrol

// ActionNameType classifies an action name.
type ActionNameType uint8

const (
	ActionNameUnknown ActionNameType = iota
	// ActionNameAnalog is an analog pair base name such as "push".
	ActionNameAnalog
	// ActionNameAnalogPos is the positive half of a pair, e.g. "push+".
	ActionNameAnalogPos
	// ActionNameAnalogNeg is the negative half of a pair, e.g. "push-".
	ActionNameAnalogNeg
	ActionNameBinary
	ActionNameFlycam
)

func (t ActionNameType) String() string {
	switch t {
	case ActionNameAnalog:
		return "analog"
	case ActionNameAnalogPos:
		return "analog+"
	case ActionNameAnalogNeg:
		return "analog-"
	case ActionNameBinary:
		return "binary"
	case ActionNameFlycam:
		return "flycam"
	default:
		return "unknown"
	}
}

// Action name lists. Flycam actions are in flycam table order.
var (
	AnalogActions = []string{"push", "slide", "jump", "turn", "look"}
	BinaryActions = []string{"toggle_run", "toggle_fly", "toggle_flycam", "stop"}
	FlycamActions = []string{"advance", "pan", "rise", "pitch", "yaw", "zoom"}
)

// NumFlycamInputs is the number of entries in the flycam channel table.
const NumFlycamInputs = 6

func buildActionTable() map[string]ActionNameType {
	actions := make(map[string]ActionNameType, 3*len(AnalogActions)+len(BinaryActions)+len(FlycamActions))
	for _, name := range AnalogActions {
		actions[name] = ActionNameAnalog
		actions[name+"+"] = ActionNameAnalogPos
		actions[name+"-"] = ActionNameAnalogNeg
	}
	for _, name := range BinaryActions {
		actions[name] = ActionNameBinary
	}
	for _, name := range FlycamActions {
		actions[name] = ActionNameFlycam
	}
	return actions
}

func flycamIndex(action string) int {
	for i, name := range FlycamActions {
		if name == action {
			return i
		}
	}
	return -1
}

// NamedChannel pairs an action name with a channel.
type NamedChannel struct {
	Action  string
	Channel InputChannel
}

func defaultAgentMappings() []NamedChannel {
	// Analog actions are given by base name; the translator expands them to
	// the '+' and '-' entries.
	return []NamedChannel{
		{"push", AxisChannel(AxisLeftY, 1)},
		{"slide", AxisChannel(AxisLeftX, 1)},
		{"jump", AxisChannel(AxisTriggerLeft, 1)},
		{"turn", AxisChannel(AxisRightX, 1)},
		{"look", AxisChannel(AxisRightY, 1)},
		{"toggle_run", ButtonChannel(ButtonLeftShoulder)},
		{"toggle_fly", ButtonChannel(ButtonDPadUp)},
		{"toggle_flycam", ButtonChannel(ButtonRightShoulder)},
		{"stop", ButtonChannel(ButtonLeftStick)},
	}
}

func defaultFlycamChannels() [NumFlycamInputs]InputChannel {
	return [NumFlycamInputs]InputChannel{
		AxisChannel(AxisLeftY, 1),        // advance
		AxisChannel(AxisLeftX, 1),        // pan
		AxisChannel(AxisTriggerRight, 1), // rise
		AxisChannel(AxisRightY, -1),      // pitch
		AxisChannel(AxisRightX, 1),       // yaw
		{},                               // zoom
	}
}

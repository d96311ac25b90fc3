package gamecontrol

import (
	"strconv"
	"strings"
)

// ChannelType is the kind of physical input a channel refers to.
type ChannelType uint8

const (
	ChannelNone ChannelType = iota
	ChannelAxis
	ChannelButton
)

func (t ChannelType) String() string {
	switch t {
	case ChannelAxis:
		return "axis"
	case ChannelButton:
		return "button"
	default:
		return "none"
	}
}

// InputChannel identifies one physical input source: an axis with a
// direction, or a button. The zero value is the unmapped channel.
type InputChannel struct {
	Type  ChannelType
	Index uint8
	// Sign is +1 or -1 for axes and 0 for buttons.
	Sign int8
}

// AxisChannel returns the channel for axis index in direction sign.
func AxisChannel(index uint8, sign int8) InputChannel {
	if sign < 0 {
		sign = -1
	} else {
		sign = 1
	}
	return InputChannel{Type: ChannelAxis, Index: index, Sign: sign}
}

// ButtonChannel returns the channel for button index.
func ButtonChannel(index uint8) InputChannel {
	return InputChannel{Type: ChannelButton, Index: index}
}

func (c InputChannel) IsNone() bool   { return c.Type == ChannelNone }
func (c InputChannel) IsAxis() bool   { return c.Type == ChannelAxis }
func (c InputChannel) IsButton() bool { return c.Type == ChannelButton }

// Valid reports whether the index is in range for the channel type.
func (c InputChannel) Valid() bool {
	switch c.Type {
	case ChannelAxis:
		return c.Index < NumAxes
	case ChannelButton:
		return c.Index < NumButtons
	default:
		return false
	}
}

// Opposite returns the same axis in the other direction. Buttons and NONE
// are returned unchanged.
func (c InputChannel) Opposite() InputChannel {
	if c.Type != ChannelAxis {
		return c
	}
	return InputChannel{Type: ChannelAxis, Index: c.Index, Sign: -c.Sign}
}

// LocalName renders the channel as "AXIS_<n>[+|-]" or "BUTTON_<n>".
// Unmapped or out of range channels render as "NONE".
func (c InputChannel) LocalName() string {
	switch {
	case c.Type == ChannelAxis && c.Index < NumAxes:
		name := "AXIS_" + strconv.Itoa(int(c.Index))
		if c.Sign < 0 {
			return name + "-"
		}
		if c.Sign > 0 {
			return name + "+"
		}
		return name
	case c.Type == ChannelButton && c.Index < NumButtons:
		return "BUTTON_" + strconv.Itoa(int(c.Index))
	}
	return "NONE"
}

func (c InputChannel) String() string { return c.LocalName() }

var remoteAxisNames = []string{
	"GAME_CONTROL_AXIS_LEFTX",
	"GAME_CONTROL_AXIS_LEFTY",
	"GAME_CONTROL_AXIS_RIGHTX",
	"GAME_CONTROL_AXIS_RIGHTY",
	"GAME_CONTROL_AXIS_PADDLELEFT",
	"GAME_CONTROL_AXIS_PADDLERIGHT",
}

var remoteButtonNames = []string{
	"GAME_CONTROL_BUTTON_A",
	"GAME_CONTROL_BUTTON_B",
	"GAME_CONTROL_BUTTON_X",
	"GAME_CONTROL_BUTTON_Y",
	"GAME_CONTROL_BUTTON_BACK",
	"GAME_CONTROL_BUTTON_GUIDE",
	"GAME_CONTROL_BUTTON_START",
	"GAME_CONTROL_BUTTON_LEFTSTICK",
	"GAME_CONTROL_BUTTON_RIGHTSTICK",
	"GAME_CONTROL_BUTTON_LEFTSHOULDER",
	"GAME_CONTROL_BUTTON_RIGHTSHOULDER",
	"GAME_CONTROL_BUTTON_DPAD_UP",
	"GAME_CONTROL_BUTTON_DPAD_DOWN",
	"GAME_CONTROL_BUTTON_DPAD_LEFT",
	"GAME_CONTROL_BUTTON_DPAD_RIGHT",
	"GAME_CONTROL_BUTTON_MISC1",
	"GAME_CONTROL_BUTTON_PADDLE1",
	"GAME_CONTROL_BUTTON_PADDLE2",
	"GAME_CONTROL_BUTTON_PADDLE3",
	"GAME_CONTROL_BUTTON_PADDLE4",
	"GAME_CONTROL_BUTTON_TOUCHPAD",
}

// RemoteName returns the protocol name of the channel, e.g.
// "GAME_CONTROL_AXIS_LEFTX". Channels without a protocol name render as a
// single space.
func (c InputChannel) RemoteName() string {
	switch c.Type {
	case ChannelAxis:
		if int(c.Index) < len(remoteAxisNames) {
			return remoteAxisNames[c.Index]
		}
	case ChannelButton:
		if int(c.Index) < len(remoteButtonNames) {
			return remoteButtonNames[c.Index]
		}
	}
	return " "
}

// ChannelByName parses a name produced by LocalName. Axis names take a
// single index digit and an optional '+' or '-' (positive when absent);
// button names take one or two digits. Anything else yields NONE.
func ChannelByName(name string) InputChannel {
	switch {
	case strings.HasPrefix(name, "AXIS_"):
		rest := name[len("AXIS_"):]
		if len(rest) == 0 || len(rest) > 2 || !isDigit(rest[0]) {
			return InputChannel{}
		}
		index := rest[0] - '0'
		if index > maxAxis {
			return InputChannel{}
		}
		var sign int8 = 1
		if len(rest) == 2 {
			switch rest[1] {
			case '+':
			case '-':
				sign = -1
			default:
				return InputChannel{}
			}
		}
		return InputChannel{Type: ChannelAxis, Index: index, Sign: sign}
	case strings.HasPrefix(name, "BUTTON_"):
		rest := name[len("BUTTON_"):]
		if len(rest) == 0 || len(rest) > 2 {
			return InputChannel{}
		}
		for i := 0; i < len(rest); i++ {
			if !isDigit(rest[i]) {
				return InputChannel{}
			}
		}
		index, err := strconv.Atoi(rest)
		if err != nil || index > maxButton {
			return InputChannel{}
		}
		return InputChannel{Type: ChannelButton, Index: uint8(index)}
	}
	return InputChannel{}
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

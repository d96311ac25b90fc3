package gamecontrol

import (
	"encoding/binary"
	"io"
)

// StateSize is the encoded size of a State on the wire.
const StateSize = 4 + 2*NumAxes + 2*NumAxes

// State is a snapshot of axes and buttons. It is used per device, for the
// synthetic external state and for the final combined state.
type State struct {
	ID DeviceID
	// Axes holds signed 16-bit values.
	Axes [NumAxes]int16
	// PrevAxes keeps one frame of older axis data for receivers computing
	// deltas. It is only updated when an axis changes or on a resend.
	PrevAxes [NumAxes]int16
	// Buttons has one bit per button index.
	Buttons uint32

	device Device
}

// Device returns the handle the state was created for, if any.
func (s *State) Device() Device { return s.device }

// Clear zeroes axes and buttons. PrevAxes are left alone because they are
// managed by the resend logic.
func (s *State) Clear() {
	s.Axes = [NumAxes]int16{}
	s.Buttons = 0
}

// OnButton sets or clears one button bit and reports whether the bitmask
// changed. Out of range buttons are ignored.
func (s *State) OnButton(button uint8, pressed bool) bool {
	old := s.Buttons
	if button <= maxButton {
		if pressed {
			s.Buttons |= 1 << button
		} else {
			s.Buttons &^= 1 << button
		}
	}
	return old != s.Buttons
}

// MarshalBinary encodes the state as
//
//	0-3:   Buttons (little-endian u32)
//	4-15:  Axes (6 x little-endian i16)
//	16-27: PrevAxes (6 x little-endian i16)
func (s *State) MarshalBinary() ([]byte, error) {
	b := make([]byte, StateSize)
	binary.LittleEndian.PutUint32(b[0:4], s.Buttons)
	for i := 0; i < NumAxes; i++ {
		binary.LittleEndian.PutUint16(b[4+2*i:], uint16(s.Axes[i]))
		binary.LittleEndian.PutUint16(b[4+2*NumAxes+2*i:], uint16(s.PrevAxes[i]))
	}
	return b, nil
}

// UnmarshalBinary decodes a state written by MarshalBinary.
func (s *State) UnmarshalBinary(data []byte) error {
	if len(data) < StateSize {
		return io.ErrUnexpectedEOF
	}
	s.Buttons = binary.LittleEndian.Uint32(data[0:4])
	for i := 0; i < NumAxes; i++ {
		s.Axes[i] = int16(binary.LittleEndian.Uint16(data[4+2*i:]))
		s.PrevAxes[i] = int16(binary.LittleEndian.Uint16(data[4+2*NumAxes+2*i:]))
	}
	return nil
}

// invertAxis flips the direction of a raw stick value. The 16-bit range has
// one more negative value than positive, so nonzero values take the one's
// complement (-32768 <-> 32767) and a centered stick stays at 0. -1 and 0
// both map to 0.
func invertAxis(v int16) int16 {
	if v == 0 {
		return 0
	}
	return ^v
}

func clampAxis(v int32) int16 {
	if v < -32768 {
		return -32768
	}
	if v > 32767 {
		return 32767
	}
	return int16(v)
}

package gamecontrol

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInvertAxisIsInvolutive(t *testing.T) {
	for v := math.MinInt16; v <= math.MaxInt16; v++ {
		value := int16(v)
		if value == -1 {
			continue
		}
		require.Equal(t, value, invertAxis(invertAxis(value)), "value %d", value)
	}
	assert.Equal(t, int16(32767), invertAxis(-32768))
	assert.Equal(t, int16(-32768), invertAxis(32767))
}

func TestInvertAxisKeepsCenter(t *testing.T) {
	assert.Equal(t, int16(0), invertAxis(0))
	assert.Equal(t, int16(0), invertAxis(-1))
	assert.Equal(t, int16(-1), invertAxis(1))
}

func TestInvertAxisFlipsDirection(t *testing.T) {
	for _, v := range []int16{1, 100, 20000, 32767} {
		assert.Less(t, invertAxis(v), int16(0))
		assert.Greater(t, invertAxis(-v), int16(0))
	}
}

func TestClampAxis(t *testing.T) {
	assert.Equal(t, int16(32767), clampAxis(40000))
	assert.Equal(t, int16(-32768), clampAxis(-40000))
	assert.Equal(t, int16(1234), clampAxis(1234))
}

func TestStateButtons(t *testing.T) {
	var s State
	assert.True(t, s.OnButton(3, true))
	assert.False(t, s.OnButton(3, true))
	assert.Equal(t, uint32(1<<3), s.Buttons)
	assert.False(t, s.OnButton(40, true))
	assert.True(t, s.OnButton(3, false))
	assert.Zero(t, s.Buttons)
}

func TestStateClearKeepsPrevAxes(t *testing.T) {
	s := State{Buttons: 7}
	s.Axes[1] = 100
	s.PrevAxes[1] = 50
	s.Clear()
	assert.Zero(t, s.Buttons)
	assert.Equal(t, [NumAxes]int16{}, s.Axes)
	assert.Equal(t, int16(50), s.PrevAxes[1])
}

func TestStateBinary(t *testing.T) {
	s := State{Buttons: 0x80000009}
	s.Axes = [NumAxes]int16{1, -1, 32767, -32768, 0, 42}
	s.PrevAxes = [NumAxes]int16{0, 0, 0, 0, 7, 0}

	b, err := s.MarshalBinary()
	require.NoError(t, err)
	require.Len(t, b, StateSize)
	assert.Equal(t, []byte{0x09, 0x00, 0x00, 0x80}, b[:4])
	assert.Equal(t, []byte{0x01, 0x00, 0xff, 0xff}, b[4:8])

	var out State
	require.NoError(t, out.UnmarshalBinary(b))
	assert.Equal(t, s, out)

	assert.Error(t, out.UnmarshalBinary(b[:StateSize-1]))
}

package gamecontrol_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Alia5/gamecontrol/gamecontrol"
)

func TestResendBackoff(t *testing.T) {
	var r gamecontrol.Resend
	var final gamecontrol.State
	now := time.Unix(1000, 0)

	assert.True(t, r.Due(now))

	expected := gamecontrol.FirstResendPeriod
	for n := 1; n <= 5; n++ {
		r.OnSent(now, &final)
		assert.Equal(t, expected, r.NextPeriod(), "after %d sends", n)
		assert.Equal(t, now, r.LastSend())
		expected *= gamecontrol.ResendExpansionRate
	}
}

func TestResendDue(t *testing.T) {
	var r gamecontrol.Resend
	var final gamecontrol.State
	now := time.Unix(1000, 0)

	r.OnSent(now, &final)
	assert.False(t, r.Due(now))
	assert.False(t, r.Due(now.Add(gamecontrol.FirstResendPeriod-time.Nanosecond)))
	assert.True(t, r.Due(now.Add(gamecontrol.FirstResendPeriod)))

	r.Reset()
	assert.Zero(t, r.NextPeriod())
	assert.True(t, r.Due(now), "a change is due immediately")
}

func TestResendPrevAxesSnapshot(t *testing.T) {
	var r gamecontrol.Resend
	final := gamecontrol.State{}
	final.Axes[1] = 500
	final.PrevAxes[1] = 100
	now := time.Unix(1000, 0)

	// the first send after a change keeps the old axes
	r.OnSent(now, &final)
	assert.Equal(t, int16(100), final.PrevAxes[1])

	r.OnSent(now.Add(time.Second), &final)
	assert.Equal(t, int16(500), final.PrevAxes[1])
}

func TestResendPeriodSaturates(t *testing.T) {
	var r gamecontrol.Resend
	var final gamecontrol.State
	now := time.Unix(1000, 0)
	for i := 0; i < 64; i++ {
		r.OnSent(now, &final)
	}
	assert.Positive(t, r.NextPeriod())
}

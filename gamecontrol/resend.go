package gamecontrol

import (
	"math"
	"time"
)

const (
	// FirstResendPeriod is the delay before the first resend of unchanged
	// state.
	FirstResendPeriod = 100 * time.Millisecond
	// ResendExpansionRate multiplies the period after every further resend.
	ResendExpansionRate = 10
)

// Resend decides when the final state has to go out again. A zero period
// means the state changed and must be sent right away.
type Resend struct {
	lastSend time.Time
	next     time.Duration
}

// Reset forces the next Due check to succeed.
func (r *Resend) Reset() { r.next = 0 }

// NextPeriod returns the current resend period.
func (r *Resend) NextPeriod() time.Duration { return r.next }

// LastSend returns the time of the last OnSent call.
func (r *Resend) LastSend() time.Time { return r.lastSend }

// Due reports whether the state should be sent at now.
func (r *Resend) Due(now time.Time) bool {
	return !now.Before(r.lastSend.Add(r.next))
}

// OnSent records a send at now. The first send after a change arms the
// first resend period; every later resend expands the period and copies the
// current axes into final's PrevAxes.
func (r *Resend) OnSent(now time.Time, final *State) {
	r.lastSend = now
	if r.next == 0 {
		r.next = FirstResendPeriod
		return
	}
	final.PrevAxes = final.Axes
	if r.next > math.MaxInt64/ResendExpansionRate {
		r.next = math.MaxInt64
		return
	}
	r.next *= ResendExpansionRate
}

package orders

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to Status
		want     bool
	}{
		{StatusPending, StatusConfirmed, true},
		{StatusPending, StatusCancelled, true},
		{StatusConfirmed, StatusProcessing, true},
		{StatusProcessing, StatusPacked, true},
		{StatusPacked, StatusShipped, true},
		{StatusShipped, StatusDelivered, true},
		{StatusPacked, StatusCancelled, false},
		{StatusShipped, StatusCancelled, false},
		{StatusDelivered, StatusShipped, false},
		{StatusCancelled, StatusPending, false},
		{StatusPending, StatusDelivered, false},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, CanTransition(c.from, c.to), "%s -> %s", c.from, c.to)
	}
}

func TestTerminal(t *testing.T) {
	assert.True(t, Terminal(StatusDelivered))
	assert.True(t, Terminal(StatusCancelled))
	assert.False(t, Terminal(StatusPending))
	assert.False(t, Terminal(StatusShipped))
}

func TestCancellableAt_Window(t *testing.T) {
	t0 := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	o := &Order{Status: StatusPending, CanCancel: true, CreatedAt: t0}

	assert.True(t, o.CancellableAt(t0.Add(4*time.Minute), DefaultCancelWindow), "inside window")
	assert.False(t, o.CancellableAt(t0.Add(6*time.Minute), DefaultCancelWindow), "window elapsed")
}

func TestCancellableAt_StatusBeatsWindow(t *testing.T) {
	t0 := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	// packed at t0+1min, cancel attempt at t0+2min: window still open but
	// the parcel already left the packing line
	o := &Order{Status: StatusPacked, CanCancel: false, CreatedAt: t0}
	assert.False(t, o.CancellableAt(t0.Add(2*time.Minute), DefaultCancelWindow))

	for _, s := range []Status{StatusPacked, StatusShipped, StatusDelivered, StatusCancelled} {
		o := &Order{Status: s, CanCancel: true, CreatedAt: t0}
		assert.False(t, o.CancellableAt(t0.Add(time.Minute), DefaultCancelWindow), "status %s", s)
	}
}

func TestRefreshCancellable(t *testing.T) {
	t0 := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	o := &Order{Status: StatusPending, CanCancel: true, CreatedAt: t0}

	o.RefreshCancellable(t0.Add(time.Minute), DefaultCancelWindow)
	assert.True(t, o.CanCancel)

	o.RefreshCancellable(t0.Add(10*time.Minute), DefaultCancelWindow)
	assert.False(t, o.CanCancel)
}

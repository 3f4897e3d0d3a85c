package orders

import "time"

type Status string

const (
	StatusPending    Status = "pending"
	StatusConfirmed  Status = "confirmed"
	StatusProcessing Status = "processing"
	StatusPacked     Status = "packed"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
)

// DefaultCancelWindow is how long after creation a customer may cancel.
const DefaultCancelWindow = 5 * time.Minute

func ValidStatus(s Status) bool {
	_, ok := validNext[s]
	return ok
}

// Forward fulfilment chain, with cancelled reachable from any pre-packed
// state. Admin updates deliberately bypass this table (see SetStatus).
var validNext = map[Status]map[Status]bool{
	StatusPending:    {StatusConfirmed: true, StatusCancelled: true},
	StatusConfirmed:  {StatusProcessing: true, StatusCancelled: true},
	StatusProcessing: {StatusPacked: true, StatusCancelled: true},
	StatusPacked:     {StatusShipped: true},
	StatusShipped:    {StatusDelivered: true},
	StatusDelivered:  {},
	StatusCancelled:  {},
}

func CanTransition(from, to Status) bool {
	return validNext[from][to]
}

func Terminal(s Status) bool {
	return s == StatusDelivered || s == StatusCancelled
}

// pastCancellation marks statuses where the parcel already left the packing
// line; cancellation is off regardless of the time window.
func pastCancellation(s Status) bool {
	switch s {
	case StatusPacked, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// CancellableAt is the stateless cancellation predicate: no timers, evaluated
// against the clock whenever the order is read or a cancel is attempted, so it
// holds across process restarts and multiple instances.
func (o *Order) CancellableAt(now time.Time, window time.Duration) bool {
	if pastCancellation(o.Status) {
		return false
	}
	if !o.CanCancel {
		return false
	}
	return now.Sub(o.CreatedAt) <= window
}

// RefreshCancellable recomputes the stored flag before an order leaves the
// service, so clients always see the effective value.
func (o *Order) RefreshCancellable(now time.Time, window time.Duration) {
	o.CanCancel = o.CancellableAt(now, window)
}

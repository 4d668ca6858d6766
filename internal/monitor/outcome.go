package monitor

// Outcome is the result of one tick.
type Outcome int

const (
	FetchFailed Outcome = iota
	NoSlots
	Duplicate
	Notified
	DeliveryFailed
)

func (o Outcome) String() string {
	switch o {
	case FetchFailed:
		return "fetch_failed"
	case NoSlots:
		return "no_slots"
	case Duplicate:
		return "duplicate"
	case Notified:
		return "notified"
	case DeliveryFailed:
		return "delivery_failed"
	default:
		return "unknown"
	}
}

package domain

// Slot is one of the two fixed roles a payment attachment is stored under.
type Slot string

const (
	SlotReceipt Slot = "receipt"
	SlotRequest Slot = "request"
)

// Slots lists both attachment slots.
var Slots = []Slot{SlotReceipt, SlotRequest}

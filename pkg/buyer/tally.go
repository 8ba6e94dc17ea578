package buyer

// Tally counts successful purchases. It only ever grows.
type Tally struct {
	purchased uint64
}

// Add records one successful purchase
func (t *Tally) Add() {
	t.purchased++
}

// Count returns the number of purchases recorded
func (t *Tally) Count() uint64 {
	return t.purchased
}

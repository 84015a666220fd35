package client

import (
	"errors"
	"strconv"
)

// GuestLimit is the number of generations allowed before a guest must
// authenticate.
const GuestLimit = 5

const guestCountKey = "guest_count"

// ErrGuestLimit is returned when a guest attempts a generation while the
// gate is closed. No provider call is made in that case.
var ErrGuestLimit = errors.New("guest generation limit reached, please sign in")

// Gate blocks guest generations once the persisted counter reaches
// GuestLimit. It is a UX affordance only; the server never enforces it.
type Gate struct {
	store    StateStore
	unlocked bool
}

func NewGate(store StateStore) *Gate {
	return &Gate{store: store}
}

// Count returns the persisted guest generation count. A missing or
// unparseable value counts as zero.
func (g *Gate) Count() int {
	raw, err := g.store.Read(guestCountKey)
	if err != nil {
		return 0
	}
	count, err := strconv.Atoi(raw)
	if err != nil || count < 0 {
		return 0
	}
	return count
}

// Blocked reports whether guest generation is currently gated.
// Authentication unlocks the gate for the rest of the session without
// touching the stored counter.
func (g *Gate) Blocked() bool {
	if g.unlocked {
		return false
	}
	return g.Count() >= GuestLimit
}

// Record increments the persisted counter after a successful guest
// generation. The counter is never reset.
func (g *Gate) Record() error {
	return g.store.Write(guestCountKey, strconv.Itoa(g.Count()+1))
}

// Unlock clears the gate for the remainder of the session, regardless of
// the stored counter. Called on successful login or registration.
func (g *Gate) Unlock() {
	g.unlocked = true
}

// Package cart holds the shopping cart value and its transitions.
//
// A State is never modified in place. Add and Remove return a new State and
// leave their input untouched, so callers may keep older states around.
package cart

import "github.com/shopspring/decimal"

// Entry is a catalog item as supplied by the catalog source.
type Entry struct {
	ID          int             `json:"id"`
	Title       string          `json:"title"`
	Price       decimal.Decimal `json:"price"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Image       string          `json:"image"`
}

// Line is an entry together with how many units of it are in the cart.
// Amount is at least 1 for every line held by a State.
type Line struct {
	Entry
	Amount int `json:"amount"`
}

// State is the ordered cart content, unique by entry id.
type State []Line

// Empty returns a cart with no lines. It is never nil, so it renders as [].
func Empty() State { return State{} }

// Len is the number of distinct lines.
func (s State) Len() int { return len(s) }

// IDs lists the line ids in cart order.
func (s State) IDs() []int {
	out := make([]int, 0, len(s))
	for _, l := range s {
		out = append(out, l.ID)
	}
	return out
}

// Add puts one unit of e into the cart. An existing line for e.ID gets its
// amount bumped; otherwise a new line is appended.
func Add(s State, e Entry) State {
	out := make(State, 0, len(s)+1)
	merged := false

	for _, l := range s {
		if l.ID == e.ID {
			l.Amount++
			merged = true
		}
		out = append(out, l)
	}

	if !merged {
		out = append(out, Line{Entry: e, Amount: 1})
	}
	return out
}

// Remove takes one unit of id out of the cart. A line holding a single unit
// is dropped. Removing an id that is not in the cart returns s as is.
func Remove(s State, id int) State {
	out := make(State, 0, len(s))
	found := false

	for _, l := range s {
		if l.ID == id {
			found = true
			if l.Amount <= 1 {
				continue
			}
			l.Amount--
		}
		out = append(out, l)
	}

	if !found {
		return s
	}
	return out
}

// TotalItems is the number of units across all lines.
func TotalItems(s State) int {
	n := 0
	for _, l := range s {
		n += l.Amount
	}
	return n
}

// Find returns the line holding id, if any.
func Find(s State, id int) (Line, bool) {
	for _, l := range s {
		if l.ID == id {
			return l, true
		}
	}
	return Line{}, false
}

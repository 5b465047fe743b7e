package cart_test

import (
	"encoding/json"
	"math/rand"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"Storefront/internal/cart"
)

func entry(id int, price string) cart.Entry {
	return cart.Entry{
		ID:       id,
		Title:    "item",
		Price:    decimal.RequireFromString(price),
		Category: "misc",
		Image:    "https://img.example/item.png",
	}
}

func amounts(s cart.State) map[int]int {
	out := make(map[int]int, len(s))
	for _, l := range s {
		out[l.ID] = l.Amount
	}
	return out
}

// randomState builds a state through Add only, so it always satisfies the
// cart invariants.
func randomState(rng *rand.Rand) cart.State {
	s := cart.Empty()
	for i, n := 0, rng.Intn(20); i < n; i++ {
		s = cart.Add(s, entry(1+rng.Intn(6), "1.50"))
	}
	return s
}

func TestAdd_NewEntryAppendsLine(t *testing.T) {
	s := cart.Add(cart.Empty(), entry(1, "9.99"))

	require.Len(t, s, 1)
	require.Equal(t, 1, s[0].ID)
	require.Equal(t, 1, s[0].Amount)
	require.True(t, s[0].Price.Equal(decimal.RequireFromString("9.99")))
	require.Equal(t, 1, cart.TotalItems(s))
}

func TestAdd_SameEntryMerges(t *testing.T) {
	s := cart.Add(cart.Empty(), entry(1, "9.99"))
	s = cart.Add(s, entry(2, "1.00"))
	s = cart.Add(s, entry(1, "9.99"))

	require.Equal(t, []int{1, 2}, s.IDs())
	require.Equal(t, map[int]int{1: 2, 2: 1}, amounts(s))
}

func TestAdd_DoesNotMutateInput(t *testing.T) {
	before := cart.Add(cart.Empty(), entry(1, "9.99"))
	snapshot := append(cart.State(nil), before...)

	after := cart.Add(before, entry(1, "9.99"))
	_ = cart.Add(before, entry(3, "2.00"))

	require.Equal(t, snapshot, before)
	require.Equal(t, 2, after[0].Amount)
	require.Equal(t, 1, before[0].Amount)
}

func TestRemove_DecrementsAboveOne(t *testing.T) {
	s := cart.Add(cart.Add(cart.Empty(), entry(1, "9.99")), entry(1, "9.99"))

	got := cart.Remove(s, 1)

	l, ok := cart.Find(got, 1)
	require.True(t, ok)
	require.Equal(t, 1, l.Amount)
	require.Equal(t, 2, s[0].Amount, "input state changed")
}

func TestRemove_DropsLastUnit(t *testing.T) {
	s := cart.Empty()
	s = cart.Add(s, entry(1, "1.00"))
	s = cart.Add(s, entry(2, "2.00"))
	s = cart.Add(s, entry(3, "3.00"))

	got := cart.Remove(s, 2)

	require.Equal(t, []int{1, 3}, got.IDs())
	_, ok := cart.Find(got, 2)
	require.False(t, ok)
	require.Equal(t, []int{1, 2, 3}, s.IDs())
}

func TestRemove_AbsentIsNoop(t *testing.T) {
	s := cart.Add(cart.Empty(), entry(1, "9.99"))

	once := cart.Remove(s, 99)
	twice := cart.Remove(once, 99)

	require.Equal(t, s, once)
	require.Equal(t, once, twice)
	require.Equal(t, cart.Empty(), cart.Remove(cart.Empty(), 1))
}

func TestTotalItems_Empty(t *testing.T) {
	require.Zero(t, cart.TotalItems(cart.Empty()))
	require.Zero(t, cart.TotalItems(nil))
}

func TestProperties_Randomized(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 500; i++ {
		s := randomState(rng)
		total := cart.TotalItems(s)
		id := 1 + rng.Intn(8)

		added := cart.Add(s, entry(id, "1.50"))
		require.Equal(t, total+1, cart.TotalItems(added))
		require.LessOrEqual(t, added.Len()-s.Len(), 1)

		removed := cart.Remove(s, id)
		prev, present := cart.Find(s, id)
		switch {
		case !present:
			require.Equal(t, s, removed)
		case prev.Amount > 1:
			l, ok := cart.Find(removed, id)
			require.True(t, ok)
			require.Equal(t, prev.Amount-1, l.Amount)
			require.Equal(t, total-1, cart.TotalItems(removed))
		default:
			_, ok := cart.Find(removed, id)
			require.False(t, ok)
			require.Equal(t, total-1, cart.TotalItems(removed))
		}

		for _, l := range removed {
			require.GreaterOrEqual(t, l.Amount, 1)
		}
		require.Equal(t, untouched(s.IDs(), id), untouched(removed.IDs(), id))
		require.Equal(t, s.IDs(), untouched(added.IDs(), -1)[:s.Len()])
	}
}

func untouched(ids []int, skip int) []int {
	out := make([]int, 0, len(ids))
	for _, id := range ids {
		if id != skip {
			out = append(out, id)
		}
	}
	return out
}

func TestScenario_AddAndRemove(t *testing.T) {
	s := cart.Empty()

	s = cart.Add(s, entry(1, "9.99"))
	require.Len(t, s, 1)
	require.Equal(t, 1, cart.TotalItems(s))

	s = cart.Add(s, entry(1, "9.99"))
	require.Len(t, s, 1)
	require.Equal(t, 2, s[0].Amount)
	require.Equal(t, 2, cart.TotalItems(s))

	s = cart.Add(s, entry(2, "5.00"))
	require.Equal(t, []int{1, 2}, s.IDs())
	require.Equal(t, 3, cart.TotalItems(s))

	s = cart.Remove(s, 1)
	require.Equal(t, map[int]int{1: 1, 2: 1}, amounts(s))
	require.Equal(t, 2, cart.TotalItems(s))

	s = cart.Remove(s, 1)
	require.Equal(t, []int{2}, s.IDs())
	require.Equal(t, 1, cart.TotalItems(s))

	before := s
	s = cart.Remove(s, 99)
	require.Equal(t, before, s)
	require.Equal(t, 1, cart.TotalItems(s))
}

func TestLine_JSONIsFlat(t *testing.T) {
	s := cart.Add(cart.Empty(), entry(7, "12.50"))

	raw, err := json.Marshal(s[0])
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(raw, &m))
	require.EqualValues(t, 7, m["id"])
	require.EqualValues(t, 1, m["amount"])
	require.Equal(t, "12.5", m["price"])
}

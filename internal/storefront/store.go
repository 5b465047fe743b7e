package storefront

import (
	"context"
	"errors"

	"Storefront/internal/cart"
)

// ErrConflict means a cart kept changing underneath an update until the
// retry budget ran out.
var ErrConflict = errors.New("cart update conflict")

// Store keeps the current cart of every live session. Update applies fn to
// the stored cart and saves its result; updates to one session's cart are
// applied one at a time.
type Store interface {
	Ping(ctx context.Context) error
	Load(ctx context.Context, sessionID string) (cart.State, error)
	Update(ctx context.Context, sessionID string, fn func(cart.State) cart.State) (cart.State, error)
}

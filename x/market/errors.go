package market

import "github.com/iov-one/mintgate/errors"

var (
	// ErrNotForSale is returned when a purchase or a revoke targets a
	// token with no live listing.
	ErrNotForSale = errors.Register(1200, "token not for sale")

	// ErrInsufficientDeposit is returned when a buyer attaches less than
	// the asking price.
	ErrInsufficientDeposit = errors.Register(1201, "deposit below asking price")

	// ErrSelfPurchase is returned when the listing owner tries to buy
	// their own token.
	ErrSelfPurchase = errors.Register(1202, "cannot buy own token")
)

package nft

import "github.com/iov-one/mintgate/errors"

var (
	// ErrZeroSupply is returned when a collectible is created with no
	// mintable copies.
	ErrZeroSupply = errors.Register(1100, "zero supply")

	// ErrSupplyExhausted is returned when all copies of a collectible
	// have been claimed.
	ErrSupplyExhausted = errors.Register(1101, "all tokens claimed")

	// ErrRoyaltyOutOfBounds is returned when a royalty is outside the
	// contract configured minimum/maximum range.
	ErrRoyaltyOutOfBounds = errors.Register(1102, "royalty out of bounds")

	// ErrNoOwnerShare is returned when the contract fee plus the royalty
	// reach 100%, leaving the seller nothing.
	ErrNoOwnerShare = errors.Register(1103, "fee and royalty leave no owner share")

	// ErrNotApproved is returned when an account acts on a token it has
	// no approval for.
	ErrNotApproved = errors.Register(1104, "not approved")

	// ErrApprovalMismatch is returned when a caller supplied approval id
	// does not match the live approval, meaning the caller acts on stale
	// information.
	ErrApprovalMismatch = errors.Register(1105, "approval id mismatch")

	// ErrSelfTransfer is returned when a transfer receiver is already
	// the owner.
	ErrSelfTransfer = errors.Register(1106, "receiver already owns the token")

	// ErrCollectibleNotEmpty is returned when deleting a collectible
	// that still has minted tokens.
	ErrCollectibleNotEmpty = errors.Register(1107, "collectible has minted tokens")

	// ErrMinPriceNotReached is returned when a marketplace transfers a
	// token for less than the approval's minimum price.
	ErrMinPriceNotReached = errors.Register(1108, "min price not reached")
)

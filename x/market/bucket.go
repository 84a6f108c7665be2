package market

import (
	"github.com/iov-one/mintgate"
	"github.com/iov-one/mintgate/orm"
)

// NewListingBucket returns the bucket holding live listings.
func NewListingBucket() *orm.ModelBucket {
	return orm.NewModelBucket("listing")
}

// listingKey is the primary bucket key of a listing. The registry account
// prefixes the 8 byte token id so tokens from different registries never
// collide. Account ids exclude the 0xff byte, making the concatenation
// unambiguous.
func listingKey(registry mintgate.AccountID, tokenID uint64) []byte {
	key := make([]byte, 0, len(registry)+1+8)
	key = append(key, registry...)
	key = append(key, 0xff)
	return append(key, orm.EncodeSequence(tokenID)...)
}

// listingsByOwner indexes listing keys per token owner.
func listingsByOwner(owner mintgate.AccountID) orm.IDSet {
	return orm.NewIDSet("listing", "owner", []byte(owner))
}

// listingsByGate indexes listing keys per collectible gate id.
func listingsByGate(gateID mintgate.GateID) orm.IDSet {
	return orm.NewIDSet("listing", "gate", []byte(gateID))
}

// listingsByCreator indexes listing keys per collectible creator.
func listingsByCreator(creator mintgate.AccountID) orm.IDSet {
	return orm.NewIDSet("listing", "creator", []byte(creator))
}

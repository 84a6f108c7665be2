package nft

import (
	"github.com/iov-one/mintgate"
	"github.com/iov-one/mintgate/orm"
)

// NewCollectibleBucket returns the bucket holding collectibles, keyed by
// gate id.
func NewCollectibleBucket() *orm.ModelBucket {
	return orm.NewModelBucket("collectible")
}

// NewTokenBucket returns the bucket holding tokens, keyed by their 8 byte
// big endian id.
func NewTokenBucket() *orm.ModelBucket {
	return orm.NewModelBucket("token")
}

// NewConfigBucket returns the bucket holding the contract configuration
// under a single well known key.
func NewConfigBucket() *orm.ModelBucket {
	return orm.NewModelBucket("nftconf")
}

var configKey = []byte("config")

// newTokenSeq returns the sequence assigning token ids. Ids are assigned
// once and never reused, even after a burn.
func newTokenSeq() orm.Sequence {
	return orm.NewSequence("token", "id")
}

// tokenKey is the primary bucket key of a token id.
func tokenKey(id uint64) []byte {
	return orm.EncodeSequence(id)
}

// collectibleKey is the primary bucket key of a gate id.
func collectibleKey(id mintgate.GateID) []byte {
	return []byte(id)
}

// tokensByOwner indexes token ids per owner account.
func tokensByOwner(owner mintgate.AccountID) orm.IDSet {
	return orm.NewIDSet("token", "owner", []byte(owner))
}

// collectiblesByCreator indexes gate ids per creator account.
func collectiblesByCreator(creator mintgate.AccountID) orm.IDSet {
	return orm.NewIDSet("collectible", "creator", []byte(creator))
}

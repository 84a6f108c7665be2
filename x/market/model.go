package market

import (
	"github.com/iov-one/mintgate"
	"github.com/iov-one/mintgate/errors"
	"github.com/iov-one/mintgate/orm"
)

// TokenForSale is one live listing: a token some registry approved this
// marketplace to sell. Everything here is a mirror of registry state at
// approval time; the registry re-checks ownership and the minimum price
// at settlement, so a stale listing can fail a purchase but never
// missell a token.
type TokenForSale struct {
	// RegistryID is the nft contract account that pushed the approval.
	RegistryID mintgate.AccountID `json:"nft_contract_id"`
	TokenID    uint64             `json:"token_id"`
	OwnerID    mintgate.AccountID `json:"owner_id"`
	// ApprovalID is forwarded on settlement so the registry can reject
	// a purchase built on a superseded approval.
	ApprovalID uint64           `json:"approval_id"`
	MinPrice   mintgate.Balance `json:"min_price"`

	// Collectible provenance, present when the registry provided it.
	GateID    mintgate.GateID    `json:"gate_id,omitempty"`
	CreatorID mintgate.AccountID `json:"creator_id,omitempty"`
	Royalty   *mintgate.Fraction `json:"royalty,omitempty"`
}

var _ orm.Model = (*TokenForSale)(nil)

func (t *TokenForSale) Validate() error {
	var errs error
	errs = errors.Append(errs, errors.Wrap(t.RegistryID.Validate(), "registry id"))
	errs = errors.Append(errs, errors.Wrap(t.OwnerID.Validate(), "owner id"))
	if t.GateID != "" {
		errs = errors.Append(errs, errors.Wrap(mintgate.ValidateGateID(t.GateID), "gate id"))
	}
	if t.CreatorID != "" {
		errs = errors.Append(errs, errors.Wrap(t.CreatorID.Validate(), "creator id"))
	}
	if t.Royalty != nil {
		errs = errors.Append(errs, errors.Wrap(t.Royalty.Validate(), "royalty"))
	}
	return errs
}

package nft

import (
	"github.com/iov-one/mintgate"
	"github.com/iov-one/mintgate/errors"
	"github.com/iov-one/mintgate/orm"
)

// Config is the registry deployment configuration, persisted at init and
// never modified afterwards.
type Config struct {
	// Admin may delete collectibles on behalf of creators.
	Admin mintgate.AccountID
	// FeeAccount receives the contract fee share of every sale.
	FeeAccount mintgate.AccountID
	// Fee is the fraction of every sale paid to FeeAccount.
	Fee mintgate.Fraction
	// MinRoyalty and MaxRoyalty bound the royalty a creator may fix on
	// a new collectible.
	MinRoyalty mintgate.Fraction
	MaxRoyalty mintgate.Fraction
	// Metadata describes the whole contract.
	Metadata ContractMetadata
}

var _ orm.Model = (*Config)(nil)

func (c *Config) Validate() error {
	if err := c.Admin.Validate(); err != nil {
		return errors.Wrap(err, "admin")
	}
	if err := c.FeeAccount.Validate(); err != nil {
		return errors.Wrap(err, "fee account")
	}
	if err := c.Fee.Validate(); err != nil {
		return errors.Wrap(err, "fee")
	}
	if err := c.MinRoyalty.Validate(); err != nil {
		return errors.Wrap(err, "min royalty")
	}
	if err := c.MaxRoyalty.Validate(); err != nil {
		return errors.Wrap(err, "max royalty")
	}
	if c.MinRoyalty.Compare(c.MaxRoyalty) > 0 {
		return errors.Wrap(errors.ErrState, "min royalty above max royalty")
	}
	return nil
}

// ContractMetadata describes the deployed registry contract.
type ContractMetadata struct {
	Spec      string
	Name      string
	Symbol    string
	Icon      string
	BaseURI   string
	Reference string
}

// Metadata is the write-once descriptive data of a collectible. Only
// Copies changes after creation, decremented when a token is burned.
type Metadata struct {
	Title       string
	Description string
	// Media is a URL to the associated media, preferably on
	// content-addressed storage. MediaHash is the base64 encoded sha256
	// of that content.
	Media     string
	MediaHash string
	// Copies of this collectible in existence.
	Copies uint64
	// Timestamps in nanoseconds. Zero means unset.
	IssuedAt  int64
	ExpiresAt int64
	StartsAt  int64
	UpdatedAt int64
	// Extra is anything else worth keeping on chain, usually stringified
	// JSON. Reference points to an off-chain JSON file with more info.
	Extra         string
	Reference     string
	ReferenceHash string
}

// Collectible is a mintable template. Tokens are claimed out of it until
// the supply runs out.
type Collectible struct {
	GateID    mintgate.GateID
	CreatorID mintgate.AccountID
	// CurrentSupply is how many more tokens can be claimed. It only
	// decreases.
	CurrentSupply uint64
	// MintedTokens lists the ids of the tokens claimed from this
	// collectible that still exist.
	MintedTokens []uint64
	// Royalty paid to CreatorID on every resale. Fixed at creation.
	Royalty  mintgate.Fraction
	Metadata Metadata
}

var _ orm.Model = (*Collectible)(nil)

func (c *Collectible) Validate() error {
	if err := mintgate.ValidateGateID(c.GateID); err != nil {
		return errors.Wrap(err, "gate id")
	}
	if err := c.CreatorID.Validate(); err != nil {
		return errors.Wrap(err, "creator")
	}
	if err := c.Royalty.Validate(); err != nil {
		return errors.Wrap(err, "royalty")
	}
	return nil
}

// removeMinted drops a token id from the minted list. Returns false when
// the id was not minted from this collectible.
func (c *Collectible) removeMinted(tokenID uint64) bool {
	for i, id := range c.MintedTokens {
		if id == tokenID {
			c.MintedTokens = append(c.MintedTokens[:i], c.MintedTokens[i+1:]...)
			return true
		}
	}
	return false
}

// Token is one minted, individually owned copy of a collectible.
type Token struct {
	ID     uint64
	GateID mintgate.GateID
	// OwnerID is the current owner. It changes on transfer.
	OwnerID mintgate.AccountID
	// SenderID is the previous owner, empty until the first transfer.
	SenderID mintgate.AccountID
	// CreatedAt is set at claim time and never changes. ModifiedAt
	// tracks the latest ownership change.
	CreatedAt  int64
	ModifiedAt int64
	// Approvals lists the accounts allowed to transfer this token on
	// the owner's behalf, at most one entry per account.
	Approvals []TokenApproval
	// ApprovalCounter assigns approval ids. It only grows, so an id
	// identifies one grant forever; a re-approval gets a fresh id and
	// all the stale ones stop matching.
	ApprovalCounter uint64
}

var _ orm.Model = (*Token)(nil)

func (t *Token) Validate() error {
	if err := mintgate.ValidateGateID(t.GateID); err != nil {
		return errors.Wrap(err, "gate id")
	}
	if err := t.OwnerID.Validate(); err != nil {
		return errors.Wrap(err, "owner")
	}
	for i, a := range t.Approvals {
		if err := a.AccountID.Validate(); err != nil {
			return errors.Wrapf(err, "approval %d", i)
		}
		if a.ApprovalID == 0 || a.ApprovalID > t.ApprovalCounter {
			return errors.Wrapf(errors.ErrState, "approval %d id out of range", i)
		}
	}
	return nil
}

// Approval returns the approval granted to the given account.
func (t *Token) Approval(account mintgate.AccountID) (TokenApproval, bool) {
	for _, a := range t.Approvals {
		if a.AccountID == account {
			return a, true
		}
	}
	return TokenApproval{}, false
}

// grantApproval stores a fresh approval for the account, replacing any
// previous grant it held, and returns the assigned approval id.
func (t *Token) grantApproval(account mintgate.AccountID, minPrice mintgate.Balance) uint64 {
	t.ApprovalCounter++
	approval := TokenApproval{
		AccountID:  account,
		ApprovalID: t.ApprovalCounter,
		MinPrice:   minPrice,
	}
	for i, a := range t.Approvals {
		if a.AccountID == account {
			t.Approvals[i] = approval
			return approval.ApprovalID
		}
	}
	t.Approvals = append(t.Approvals, approval)
	return approval.ApprovalID
}

// revokeApproval drops the approval granted to the account. Returns
// false when there was none.
func (t *Token) revokeApproval(account mintgate.AccountID) bool {
	for i, a := range t.Approvals {
		if a.AccountID == account {
			t.Approvals = append(t.Approvals[:i], t.Approvals[i+1:]...)
			return true
		}
	}
	return false
}

// TokenApproval is an owner granted permission for one account to
// transfer the token, no cheaper than MinPrice.
type TokenApproval struct {
	AccountID  mintgate.AccountID
	ApprovalID uint64
	MinPrice   mintgate.Balance
}

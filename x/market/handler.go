package market

import (
	"encoding/json"

	"github.com/iov-one/mintgate"
	"github.com/iov-one/mintgate/errors"
	"github.com/iov-one/mintgate/host"
	"github.com/iov-one/mintgate/orm"
)

// Marketplace is the market contract. Any registry can push approvals to
// it; listings remember which registry they came from.
type Marketplace struct {
	listings *orm.ModelBucket
}

var _ host.Contract = (*Marketplace)(nil)

// NewMarketplace returns a marketplace with empty bucket bindings.
func NewMarketplace() *Marketplace {
	return &Marketplace{listings: NewListingBucket()}
}

// OnApprove mirrors a fresh registry approval as a listing. The caller is
// trusted to be the registry holding the token, which is why the listing
// is keyed under the caller's account: a rogue caller can only pollute
// its own namespace and any such listing fails at settlement.
func (m *Marketplace) OnApprove(ctx *host.Context, db mintgate.KVStore, args *mintgate.OnApproveArgs) error {
	approveMsg, err := mintgate.ParseMarketApproveMsg(args.Msg)
	if err != nil {
		return err
	}
	return m.insertListing(db, TokenForSale{
		RegistryID: ctx.Caller(),
		TokenID:    args.TokenID,
		OwnerID:    args.OwnerID,
		ApprovalID: args.ApprovalID,
		MinPrice:   approveMsg.MinPrice,
		GateID:     approveMsg.GateID,
		CreatorID:  approveMsg.CreatorID,
		Royalty:    approveMsg.Royalty,
	})
}

// OnRevoke drops the caller's listing for the given token. A revoke for a
// token that is not listed means the two contracts disagree about state.
func (m *Marketplace) OnRevoke(ctx *host.Context, db mintgate.KVStore, args *mintgate.OnRevokeArgs) error {
	var listing TokenForSale
	key := listingKey(ctx.Caller(), args.TokenID)
	switch err := m.listings.One(db, key, &listing); {
	case errors.ErrNotFound.Is(err):
		return errors.Wrapf(errors.ErrDesync, "token %d is not listed", args.TokenID)
	case err != nil:
		return err
	}
	return m.removeListing(db, key, &listing)
}

// BatchOnApprove mirrors a batch of approvals. Items that cannot be
// listed are collected and reported while the rest take effect, matching
// the registry side of the batch protocol.
func (m *Marketplace) BatchOnApprove(ctx *host.Context, db mintgate.KVStore, args *mintgate.BatchOnApproveArgs) error {
	registry := ctx.Caller()
	var errs error
	for _, t := range args.Tokens {
		err := m.insertListing(db, TokenForSale{
			RegistryID: registry,
			TokenID:    t.TokenID,
			OwnerID:    args.OwnerID,
			ApprovalID: t.ApprovalID,
			MinPrice:   t.ApproveMsg.MinPrice,
			GateID:     t.ApproveMsg.GateID,
			CreatorID:  t.ApproveMsg.CreatorID,
			Royalty:    t.ApproveMsg.Royalty,
		})
		errs = errors.Append(errs, errors.Wrapf(err, "token %d", t.TokenID))
	}
	return errs
}

// BuyToken settles a purchase of a listed token with the attached deposit
// as the offered price. The listing is removed up front so a second buyer
// in the same block finds nothing to buy; if the registry then rejects
// the transfer, the private make_payouts continuation restores the
// listing and refunds the deposit.
func (m *Marketplace) BuyToken(ctx *host.Context, db mintgate.KVStore, msg *BuyTokenMsg) error {
	if err := msg.Validate(); err != nil {
		return err
	}
	var listing TokenForSale
	key := listingKey(msg.RegistryID, msg.TokenID)
	switch err := m.listings.One(db, key, &listing); {
	case errors.ErrNotFound.Is(err):
		return errors.Wrapf(ErrNotForSale, "token %d", msg.TokenID)
	case err != nil:
		return err
	}

	buyer := ctx.Caller()
	if buyer == listing.OwnerID {
		return errors.Wrapf(ErrSelfPurchase, "token %d", msg.TokenID)
	}
	deposit := ctx.Deposit()
	if deposit.Compare(listing.MinPrice) < 0 {
		return errors.Wrapf(ErrInsufficientDeposit, "%s below %s", deposit, listing.MinPrice)
	}

	if err := m.removeListing(db, key, &listing); err != nil {
		return err
	}

	approvalID := listing.ApprovalID
	transferArgs, err := json.Marshal(struct {
		ReceiverID mintgate.AccountID `json:"receiver_id"`
		TokenID    uint64             `json:"token_id"`
		ApprovalID *uint64            `json:"approval_id"`
		Balance    *mintgate.Balance  `json:"balance"`
	}{
		ReceiverID: buyer,
		TokenID:    listing.TokenID,
		ApprovalID: &approvalID,
		Balance:    &deposit,
	})
	if err != nil {
		return errors.Wrap(errors.ErrState, "transfer args")
	}
	resolveArgs, err := json.Marshal(MakePayoutsMsg{
		Listing: listing,
		BuyerID: buyer,
		Deposit: deposit,
	})
	if err != nil {
		return errors.Wrap(errors.ErrState, "settlement args")
	}

	p := ctx.Call(listing.RegistryID, methodNftTransferPayout, transferArgs)
	p.Then(MethodMakePayouts, resolveArgs)
	return nil
}

// MakePayouts is the private continuation of BuyToken. On a successful
// registry transfer it pays every payout entry from the deposit held in
// the contract account. On failure the sale never happened: the listing
// comes back and the buyer gets the deposit returned.
func (m *Marketplace) MakePayouts(ctx *host.Context, db mintgate.KVStore, msg *MakePayoutsMsg) error {
	if ctx.Caller() != ctx.ContractID() {
		return errors.Wrap(errors.ErrUnauthorized, "private method")
	}
	result, ok := ctx.PromiseResult()
	if !ok {
		return errors.Wrap(errors.ErrState, "not a continuation")
	}

	if !result.OK {
		if err := m.insertListing(db, msg.Listing); err != nil {
			return errors.Wrap(err, "restore listing")
		}
		ctx.Transfer(msg.BuyerID, msg.Deposit)
		return nil
	}

	var payout mintgate.Payout
	if err := json.Unmarshal(result.Data, &payout); err != nil {
		return errors.Wrap(errors.ErrInput, "registry payout")
	}
	total, err := payout.Total()
	if err != nil {
		return err
	}
	if total.Compare(msg.Deposit) != 0 {
		return errors.Wrapf(errors.ErrDesync, "payout %s, deposit %s", total, msg.Deposit)
	}
	for _, e := range payout {
		ctx.Transfer(e.Account, e.Amount)
	}
	return nil
}

func (m *Marketplace) insertListing(db mintgate.KVStore, listing TokenForSale) error {
	key := listingKey(listing.RegistryID, listing.TokenID)

	// Relisting a token replaces the previous listing together with its
	// index memberships. The owner can have changed in between.
	var prev TokenForSale
	switch err := m.listings.One(db, key, &prev); {
	case err == nil:
		if err := m.removeListing(db, key, &prev); err != nil {
			return err
		}
	case !errors.ErrNotFound.Is(err):
		return err
	}

	if err := m.listings.Put(db, key, &listing); err != nil {
		return err
	}
	if err := listingsByOwner(listing.OwnerID).Add(db, key); err != nil {
		return err
	}
	if listing.GateID != "" {
		if err := listingsByGate(listing.GateID).Add(db, key); err != nil {
			return err
		}
	}
	if listing.CreatorID != "" {
		if err := listingsByCreator(listing.CreatorID).Add(db, key); err != nil {
			return err
		}
	}
	return nil
}

func (m *Marketplace) removeListing(db mintgate.KVStore, key []byte, listing *TokenForSale) error {
	if err := m.listings.Delete(db, key); err != nil {
		return err
	}
	if err := listingsByOwner(listing.OwnerID).Remove(db, key); err != nil {
		return err
	}
	if listing.GateID != "" {
		if err := listingsByGate(listing.GateID).Remove(db, key); err != nil {
			return err
		}
	}
	if listing.CreatorID != "" {
		if err := listingsByCreator(listing.CreatorID).Remove(db, key); err != nil {
			return err
		}
	}
	return nil
}

// Views.

// GetTokensForSale returns every live listing.
func (m *Marketplace) GetTokensForSale(db mintgate.ReadOnlyKVStore) ([]TokenForSale, error) {
	out := make([]TokenForSale, 0)
	err := m.listings.Iterate(db, func(_ []byte, raw []byte) error {
		var listing TokenForSale
		if err := m.listings.Decode(raw, &listing); err != nil {
			return err
		}
		out = append(out, listing)
		return nil
	})
	return out, err
}

// GetTokensByOwner returns the live listings of one token owner.
func (m *Marketplace) GetTokensByOwner(db mintgate.ReadOnlyKVStore, owner mintgate.AccountID) ([]TokenForSale, error) {
	return m.indexed(db, listingsByOwner(owner))
}

// GetTokensByGate returns the live listings minted from one collectible.
func (m *Marketplace) GetTokensByGate(db mintgate.ReadOnlyKVStore, gateID mintgate.GateID) ([]TokenForSale, error) {
	return m.indexed(db, listingsByGate(gateID))
}

// GetTokensByCreator returns the live listings of one collectible creator.
func (m *Marketplace) GetTokensByCreator(db mintgate.ReadOnlyKVStore, creator mintgate.AccountID) ([]TokenForSale, error) {
	return m.indexed(db, listingsByCreator(creator))
}

func (m *Marketplace) indexed(db mintgate.ReadOnlyKVStore, set orm.IDSet) ([]TokenForSale, error) {
	keys, err := set.All(db)
	if err != nil {
		return nil, err
	}
	out := make([]TokenForSale, 0, len(keys))
	for _, key := range keys {
		var listing TokenForSale
		if err := m.listings.One(db, key, &listing); err != nil {
			return nil, errors.Wrap(err, "indexed listing")
		}
		out = append(out, listing)
	}
	return out, nil
}

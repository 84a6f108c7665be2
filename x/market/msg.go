package market

import (
	"github.com/iov-one/mintgate"
	"github.com/iov-one/mintgate/errors"
)

// Method names the marketplace answers to. The approval receiver methods
// (nft_on_approve, nft_on_revoke, batch_on_approve) are defined with the
// shared protocol types in the root package.
const (
	MethodBuyToken    = "buy_token"
	MethodMakePayouts = "make_payouts"

	// methodNftTransferPayout is the registry operation the marketplace
	// calls to settle a sale.
	methodNftTransferPayout = "nft_transfer_payout"

	MethodGetTokensForSale   = "get_tokens_for_sale"
	MethodGetTokensByOwner   = "get_tokens_by_owner_id"
	MethodGetTokensByGate    = "get_tokens_by_gate_id"
	MethodGetTokensByCreator = "get_tokens_by_creator_id"
)

// BuyTokenMsg purchases a listed token. The attached deposit is the
// offered price and must reach the listing's minimum.
type BuyTokenMsg struct {
	RegistryID mintgate.AccountID `json:"nft_contract_id"`
	TokenID    uint64             `json:"token_id"`
}

func (msg *BuyTokenMsg) Validate() error {
	return errors.Wrap(msg.RegistryID.Validate(), "nft contract id")
}

// MakePayoutsMsg is the private continuation of buy_token. It snapshots
// everything needed to settle either way: pay the split on success, or
// restore the listing and refund the buyer on failure.
type MakePayoutsMsg struct {
	Listing TokenForSale       `json:"listing"`
	BuyerID mintgate.AccountID `json:"buyer_id"`
	Deposit mintgate.Balance   `json:"deposit"`
}

func (msg *MakePayoutsMsg) Validate() error {
	return errors.Append(
		errors.Wrap(msg.Listing.Validate(), "listing"),
		errors.Wrap(msg.BuyerID.Validate(), "buyer id"),
	)
}

// GetTokensByOwnerMsg, GetTokensByGateMsg and GetTokensByCreatorMsg are
// the filtered view arguments.
type GetTokensByOwnerMsg struct {
	OwnerID mintgate.AccountID `json:"owner_id"`
}

type GetTokensByGateMsg struct {
	GateID mintgate.GateID `json:"gate_id"`
}

type GetTokensByCreatorMsg struct {
	CreatorID mintgate.AccountID `json:"creator_id"`
}

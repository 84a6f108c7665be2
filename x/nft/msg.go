package nft

import (
	"github.com/iov-one/mintgate"
	"github.com/iov-one/mintgate/errors"
)

// Entry point names of the registry contract.
const (
	MethodCreateCollectible      = "create_collectible"
	MethodDeleteCollectible      = "delete_collectible"
	MethodClaimToken             = "claim_token"
	MethodBurnToken              = "burn_token"
	MethodNftApprove             = "nft_approve"
	MethodNftRevoke              = "nft_revoke"
	MethodNftRevokeAll           = "nft_revoke_all"
	MethodNftTransfer            = "nft_transfer"
	MethodNftPayout              = "nft_payout"
	MethodNftTransferPayout      = "nft_transfer_payout"
	MethodBatchApprove           = "batch_approve"
	MethodResolveBatchApprove    = "resolve_batch_approve"
	MethodNftToken               = "nft_token"
	MethodNftMetadata            = "nft_metadata"
	MethodNftTotalSupply         = "nft_total_supply"
	MethodGetCollectible         = "get_collectible_by_gate_id"
	MethodGetCollectiblesCreator = "get_collectibles_by_creator"
	MethodGetTokensByOwner       = "get_tokens_by_owner"
)

// CreateCollectibleMsg registers a new collectible under a globally
// unique gate id.
type CreateCollectibleMsg struct {
	GateID      mintgate.GateID   `json:"gate_id"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Supply      uint64            `json:"supply"`
	Media       string            `json:"media,omitempty"`
	MediaHash   string            `json:"media_hash,omitempty"`
	Royalty     mintgate.Fraction `json:"royalty"`
}

func (msg *CreateCollectibleMsg) Validate() error {
	if err := mintgate.ValidateGateID(msg.GateID); err != nil {
		return errors.Wrap(err, "gate id")
	}
	if msg.Supply == 0 {
		return errors.Wrapf(ErrZeroSupply, "gate id %s", msg.GateID)
	}
	if err := msg.Royalty.Validate(); err != nil {
		return errors.Wrap(err, "royalty")
	}
	return nil
}

// DeleteCollectibleMsg removes a collectible that has no minted tokens.
// Only the creator or the admin account may do this.
type DeleteCollectibleMsg struct {
	GateID mintgate.GateID `json:"gate_id"`
}

func (msg *DeleteCollectibleMsg) Validate() error {
	return errors.Wrap(mintgate.ValidateGateID(msg.GateID), "gate id")
}

// ClaimTokenMsg mints the next copy of a collectible for the caller.
type ClaimTokenMsg struct {
	GateID mintgate.GateID `json:"gate_id"`
}

func (msg *ClaimTokenMsg) Validate() error {
	return errors.Wrap(mintgate.ValidateGateID(msg.GateID), "gate id")
}

// BurnTokenMsg destroys a token owned by the caller.
type BurnTokenMsg struct {
	TokenID uint64 `json:"token_id"`
}

func (msg *BurnTokenMsg) Validate() error {
	return nil
}

// NftApproveMsg lets the owner approve an account, typically a
// marketplace, to transfer the token. Msg is the owner supplied payload
// with the minimum price, forwarded to the approved account.
type NftApproveMsg struct {
	TokenID   uint64             `json:"token_id"`
	AccountID mintgate.AccountID `json:"account_id"`
	Msg       string             `json:"msg"`
}

func (msg *NftApproveMsg) Validate() error {
	if err := msg.AccountID.Validate(); err != nil {
		return errors.Wrap(err, "account id")
	}
	if len(msg.Msg) == 0 {
		return errors.Wrap(errors.ErrEmpty, "msg payload")
	}
	return nil
}

// NftRevokeMsg withdraws one account's approval on a token.
type NftRevokeMsg struct {
	TokenID   uint64             `json:"token_id"`
	AccountID mintgate.AccountID `json:"account_id"`
}

func (msg *NftRevokeMsg) Validate() error {
	return errors.Wrap(msg.AccountID.Validate(), "account id")
}

// NftRevokeAllMsg withdraws every approval on a token.
type NftRevokeAllMsg struct {
	TokenID uint64 `json:"token_id"`
}

func (msg *NftRevokeAllMsg) Validate() error {
	return nil
}

// NftTransferMsg moves a token to a new owner. The caller must be the
// owner or an approved account. An approved caller should pass the
// approval id it is acting on, so a stale grant is rejected instead of
// transferring under renegotiated terms.
type NftTransferMsg struct {
	ReceiverID        mintgate.AccountID `json:"receiver_id"`
	TokenID           uint64             `json:"token_id"`
	EnforceApprovalID *uint64            `json:"enforce_approval_id,omitempty"`
	Memo              string             `json:"memo,omitempty"`
}

func (msg *NftTransferMsg) Validate() error {
	return errors.Wrap(msg.ReceiverID.Validate(), "receiver id")
}

// NftPayoutMsg asks for the split of a hypothetical sale amount. It is a
// pure computation used for price previews; nothing changes.
type NftPayoutMsg struct {
	TokenID uint64           `json:"token_id"`
	Balance mintgate.Balance `json:"balance"`
}

func (msg *NftPayoutMsg) Validate() error {
	return nil
}

// NftTransferPayoutMsg composes nft_payout with nft_transfer: the payout
// is computed against the pre-transfer owner, then the token moves. The
// marketplace uses this as the upstream half of a sale settlement.
type NftTransferPayoutMsg struct {
	ReceiverID mintgate.AccountID `json:"receiver_id"`
	TokenID    uint64             `json:"token_id"`
	ApprovalID *uint64            `json:"approval_id,omitempty"`
	Memo       string             `json:"memo,omitempty"`
	Balance    *mintgate.Balance  `json:"balance,omitempty"`
}

func (msg *NftTransferPayoutMsg) Validate() error {
	return errors.Wrap(msg.ReceiverID.Validate(), "receiver id")
}

// BatchApproveMsg approves many tokens for one marketplace in a single
// call. Items that cannot be approved are collected and reported while
// the rest take effect: partial success, fully reported.
type BatchApproveMsg struct {
	Tokens    []BatchApproveItem `json:"tokens"`
	AccountID mintgate.AccountID `json:"account_id"`
}

// BatchApproveItem is a single (token, asking price) pair of a batch.
type BatchApproveItem struct {
	TokenID  uint64           `json:"token_id"`
	MinPrice mintgate.Balance `json:"min_price"`
}

func (msg *BatchApproveMsg) Validate() error {
	if len(msg.Tokens) == 0 {
		return errors.Wrap(errors.ErrEmpty, "tokens")
	}
	return errors.Wrap(msg.AccountID.Validate(), "account id")
}

// ResolveBatchApproveMsg is the private continuation of batch_approve,
// re-raising the errors collected while the successful subset stays
// committed.
type ResolveBatchApproveMsg struct {
	Errors []string `json:"errors"`
}

func (msg *ResolveBatchApproveMsg) Validate() error {
	return nil
}

// GetCollectibleMsg, GetCollectiblesByCreatorMsg, GetTokensByOwnerMsg and
// NftTokenMsg are the view arguments.
type GetCollectibleMsg struct {
	GateID mintgate.GateID `json:"gate_id"`
}

type GetCollectiblesByCreatorMsg struct {
	CreatorID mintgate.AccountID `json:"creator_id"`
}

type GetTokensByOwnerMsg struct {
	OwnerID mintgate.AccountID `json:"owner_id"`
}

type NftTokenMsg struct {
	TokenID uint64 `json:"token_id"`
}

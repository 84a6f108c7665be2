package mintgate

import (
	"encoding/json"

	"github.com/iov-one/mintgate/errors"
)

// Method names of the approvals-receiver interface a marketplace exposes
// to registries. They are part of the cross-contract protocol, so they
// live here and not in either contract package.
const (
	MethodNftOnApprove   = "nft_on_approve"
	MethodNftOnRevoke    = "nft_on_revoke"
	MethodBatchOnApprove = "batch_on_approve"
)

// OnApproveArgs is the argument set of a nft_on_approve notification.
type OnApproveArgs struct {
	TokenID    uint64    `json:"token_id"`
	OwnerID    AccountID `json:"owner_id"`
	ApprovalID uint64    `json:"approval_id"`
	// Msg is an encoded MarketApproveMsg.
	Msg string `json:"msg"`
}

// OnRevokeArgs is the argument set of a nft_on_revoke notification, sent
// both on explicit revoke and on burn.
type OnRevokeArgs struct {
	TokenID uint64 `json:"token_id"`
}

// BatchOnApproveArgs carries the successful subset of a batch approval.
type BatchOnApproveArgs struct {
	Tokens  []ApprovedToken `json:"tokens"`
	OwnerID AccountID       `json:"owner_id"`
}

// ApprovedToken pairs a token with its market notification payload.
type ApprovedToken struct {
	TokenID    uint64           `json:"token_id"`
	ApprovalID uint64           `json:"approval_id"`
	ApproveMsg MarketApproveMsg `json:"approve_msg"`
}

// NftApproveMsg is the payload an owner attaches when approving a token
// for a marketplace. It rides inside the nft_approve call as a JSON
// string.
type NftApproveMsg struct {
	// MinPrice is the minimum amount the owner asks for the token.
	MinPrice Balance `json:"min_price"`
}

// ParseNftApproveMsg decodes the owner supplied approve payload. A
// missing min_price is an error, never a silent zero.
func ParseNftApproveMsg(raw string) (*NftApproveMsg, error) {
	var probe struct {
		MinPrice *Balance `json:"min_price"`
	}
	if err := json.Unmarshal([]byte(raw), &probe); err != nil {
		return nil, errors.Wrap(errors.ErrInput, "approve payload")
	}
	if probe.MinPrice == nil {
		return nil, errors.Wrap(errors.ErrInput, "approve payload misses min_price")
	}
	return &NftApproveMsg{MinPrice: *probe.MinPrice}, nil
}

// MarketApproveMsg is the payload the registry sends to a marketplace
// when notifying about a fresh approval. The format grew over time: the
// price came first, gate and creator were added so the market can index
// listings without querying back, and the royalty fraction came last.
// Only min_price is required, everything else is optional provenance.
type MarketApproveMsg struct {
	// MinPrice is the minimum amount a buyer must attach.
	MinPrice Balance `json:"min_price"`
	// GateID of the collectible the token was minted from, if provided.
	GateID GateID `json:"gate_id,omitempty"`
	// CreatorID of the collectible, if provided.
	CreatorID AccountID `json:"creator_id,omitempty"`
	// Royalty fixed on the collectible, if provided.
	Royalty *Fraction `json:"royalty,omitempty"`
}

// ParseMarketApproveMsg decodes a market notification payload, requiring
// min_price to be present.
func ParseMarketApproveMsg(raw string) (*MarketApproveMsg, error) {
	var probe struct {
		MinPrice  *Balance  `json:"min_price"`
		GateID    GateID    `json:"gate_id"`
		CreatorID AccountID `json:"creator_id"`
		Royalty   *Fraction `json:"royalty"`
	}
	if err := json.Unmarshal([]byte(raw), &probe); err != nil {
		return nil, errors.Wrap(errors.ErrInput, "market approve payload")
	}
	if probe.MinPrice == nil {
		return nil, errors.Wrap(errors.ErrInput, "market approve payload misses min_price")
	}
	return &MarketApproveMsg{
		MinPrice:  *probe.MinPrice,
		GateID:    probe.GateID,
		CreatorID: probe.CreatorID,
		Royalty:   probe.Royalty,
	}, nil
}

// Encode serializes the payload back into its wire string form.
func (m *MarketApproveMsg) Encode() (string, error) {
	raw, err := json.Marshal(m)
	if err != nil {
		return "", errors.Wrap(errors.ErrState, "market approve payload")
	}
	return string(raw), nil
}

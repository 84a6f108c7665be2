package nft

import (
	"encoding/json"

	"github.com/iov-one/mintgate"
	"github.com/iov-one/mintgate/errors"
	"github.com/iov-one/mintgate/host"
)

// Handle routes one receipt to the matching registry operation.
func (r *Registry) Handle(ctx *host.Context, db mintgate.KVStore, method string, args []byte) ([]byte, error) {
	switch method {
	case MethodCreateCollectible:
		var msg CreateCollectibleMsg
		if err := decode(args, &msg); err != nil {
			return nil, err
		}
		return nil, r.CreateCollectible(ctx, db, &msg)

	case MethodDeleteCollectible:
		var msg DeleteCollectibleMsg
		if err := decode(args, &msg); err != nil {
			return nil, err
		}
		return nil, r.DeleteCollectible(ctx, db, &msg)

	case MethodClaimToken:
		var msg ClaimTokenMsg
		if err := decode(args, &msg); err != nil {
			return nil, err
		}
		tokenID, err := r.ClaimToken(ctx, db, &msg)
		if err != nil {
			return nil, err
		}
		return encode(tokenID)

	case MethodBurnToken:
		var msg BurnTokenMsg
		if err := decode(args, &msg); err != nil {
			return nil, err
		}
		return nil, r.BurnToken(ctx, db, &msg)

	case MethodNftApprove:
		var msg NftApproveMsg
		if err := decode(args, &msg); err != nil {
			return nil, err
		}
		approvalID, err := r.NftApprove(ctx, db, &msg)
		if err != nil {
			return nil, err
		}
		return encode(approvalID)

	case MethodNftRevoke:
		var msg NftRevokeMsg
		if err := decode(args, &msg); err != nil {
			return nil, err
		}
		return nil, r.NftRevoke(ctx, db, &msg)

	case MethodNftRevokeAll:
		var msg NftRevokeAllMsg
		if err := decode(args, &msg); err != nil {
			return nil, err
		}
		return nil, r.NftRevokeAll(ctx, db, &msg)

	case MethodNftTransfer:
		var msg NftTransferMsg
		if err := decode(args, &msg); err != nil {
			return nil, err
		}
		return nil, r.NftTransfer(ctx, db, &msg)

	case MethodNftPayout:
		var msg NftPayoutMsg
		if err := decode(args, &msg); err != nil {
			return nil, err
		}
		payout, err := r.NftPayout(db, &msg)
		if err != nil {
			return nil, err
		}
		return encode(payout)

	case MethodNftTransferPayout:
		var msg NftTransferPayoutMsg
		if err := decode(args, &msg); err != nil {
			return nil, err
		}
		payout, err := r.NftTransferPayout(ctx, db, &msg)
		if err != nil {
			return nil, err
		}
		return encode(payout)

	case MethodBatchApprove:
		var msg BatchApproveMsg
		if err := decode(args, &msg); err != nil {
			return nil, err
		}
		return nil, r.BatchApprove(ctx, db, &msg)

	case MethodResolveBatchApprove:
		var msg ResolveBatchApproveMsg
		if err := decode(args, &msg); err != nil {
			return nil, err
		}
		return nil, r.ResolveBatchApprove(ctx, &msg)

	case MethodNftToken:
		var msg NftTokenMsg
		if err := decode(args, &msg); err != nil {
			return nil, err
		}
		token, err := r.GetToken(db, msg.TokenID)
		if err != nil {
			return nil, err
		}
		return encode(token)

	case MethodNftMetadata:
		meta, err := r.NftMetadata(db)
		if err != nil {
			return nil, err
		}
		return encode(meta)

	case MethodNftTotalSupply:
		supply, err := r.TotalSupply(db)
		if err != nil {
			return nil, err
		}
		return encode(supply)

	case MethodGetCollectible:
		var msg GetCollectibleMsg
		if err := decode(args, &msg); err != nil {
			return nil, err
		}
		collectible, err := r.GetCollectible(db, msg.GateID)
		if err != nil {
			return nil, err
		}
		return encode(collectible)

	case MethodGetCollectiblesCreator:
		var msg GetCollectiblesByCreatorMsg
		if err := decode(args, &msg); err != nil {
			return nil, err
		}
		collectibles, err := r.GetCollectiblesByCreator(db, msg.CreatorID)
		if err != nil {
			return nil, err
		}
		return encode(collectibles)

	case MethodGetTokensByOwner:
		var msg GetTokensByOwnerMsg
		if err := decode(args, &msg); err != nil {
			return nil, err
		}
		tokens, err := r.GetTokensByOwner(db, msg.OwnerID)
		if err != nil {
			return nil, err
		}
		return encode(tokens)

	default:
		return nil, errors.Wrapf(errors.ErrInput, "unknown method %q", method)
	}
}

func decode(args []byte, into interface{}) error {
	if len(args) == 0 {
		args = []byte("{}")
	}
	if err := json.Unmarshal(args, into); err != nil {
		return errors.Wrapf(errors.ErrInput, "arguments: %s", err)
	}
	return nil
}

func encode(value interface{}) ([]byte, error) {
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, errors.Wrap(errors.ErrState, "response")
	}
	return raw, nil
}

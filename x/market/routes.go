package market

import (
	"encoding/json"

	"github.com/iov-one/mintgate"
	"github.com/iov-one/mintgate/errors"
	"github.com/iov-one/mintgate/host"
)

// Handle routes one receipt to the matching marketplace operation.
func (m *Marketplace) Handle(ctx *host.Context, db mintgate.KVStore, method string, args []byte) ([]byte, error) {
	switch method {
	case mintgate.MethodNftOnApprove:
		var a mintgate.OnApproveArgs
		if err := decode(args, &a); err != nil {
			return nil, err
		}
		return nil, m.OnApprove(ctx, db, &a)

	case mintgate.MethodNftOnRevoke:
		var a mintgate.OnRevokeArgs
		if err := decode(args, &a); err != nil {
			return nil, err
		}
		return nil, m.OnRevoke(ctx, db, &a)

	case mintgate.MethodBatchOnApprove:
		var a mintgate.BatchOnApproveArgs
		if err := decode(args, &a); err != nil {
			return nil, err
		}
		return nil, m.BatchOnApprove(ctx, db, &a)

	case MethodBuyToken:
		var msg BuyTokenMsg
		if err := decode(args, &msg); err != nil {
			return nil, err
		}
		return nil, m.BuyToken(ctx, db, &msg)

	case MethodMakePayouts:
		var msg MakePayoutsMsg
		if err := decode(args, &msg); err != nil {
			return nil, err
		}
		return nil, m.MakePayouts(ctx, db, &msg)

	case MethodGetTokensForSale:
		listings, err := m.GetTokensForSale(db)
		if err != nil {
			return nil, err
		}
		return encode(listings)

	case MethodGetTokensByOwner:
		var msg GetTokensByOwnerMsg
		if err := decode(args, &msg); err != nil {
			return nil, err
		}
		listings, err := m.GetTokensByOwner(db, msg.OwnerID)
		if err != nil {
			return nil, err
		}
		return encode(listings)

	case MethodGetTokensByGate:
		var msg GetTokensByGateMsg
		if err := decode(args, &msg); err != nil {
			return nil, err
		}
		listings, err := m.GetTokensByGate(db, msg.GateID)
		if err != nil {
			return nil, err
		}
		return encode(listings)

	case MethodGetTokensByCreator:
		var msg GetTokensByCreatorMsg
		if err := decode(args, &msg); err != nil {
			return nil, err
		}
		listings, err := m.GetTokensByCreator(db, msg.CreatorID)
		if err != nil {
			return nil, err
		}
		return encode(listings)

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

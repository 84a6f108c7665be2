package nft

import (
	"encoding/json"

	"github.com/iov-one/mintgate"
	"github.com/iov-one/mintgate/errors"
	"github.com/iov-one/mintgate/host"
	"github.com/iov-one/mintgate/orm"
)

// Registry is the nft contract. It owns all collectible and token state;
// marketplaces only mirror what it tells them.
type Registry struct {
	collectibles *orm.ModelBucket
	tokens       *orm.ModelBucket
	config       *orm.ModelBucket
	tokenSeq     orm.Sequence
}

var _ host.Contract = (*Registry)(nil)

// NewRegistry returns a registry with empty bucket bindings. State lives
// entirely in the KVStore passed to each call.
func NewRegistry() *Registry {
	return &Registry{
		collectibles: NewCollectibleBucket(),
		tokens:       NewTokenBucket(),
		config:       NewConfigBucket(),
		tokenSeq:     newTokenSeq(),
	}
}

// Init stores the deployment configuration. Must be called once before
// any other operation.
func (r *Registry) Init(db mintgate.KVStore, conf Config) error {
	ok, err := r.config.Has(db, configKey)
	if err != nil {
		return err
	}
	if ok {
		return errors.Wrap(errors.ErrState, "already initialized")
	}
	return r.config.Put(db, configKey, &conf)
}

func (r *Registry) loadConfig(db mintgate.ReadOnlyKVStore) (*Config, error) {
	var conf Config
	if err := r.config.One(db, configKey, &conf); err != nil {
		return nil, errors.Wrap(err, "configuration")
	}
	return &conf, nil
}

// CreateCollectible registers a new collectible with the caller as its
// creator. The royalty must sit within the configured bounds and must,
// together with the contract fee, leave the future seller a share.
func (r *Registry) CreateCollectible(ctx *host.Context, db mintgate.KVStore, msg *CreateCollectibleMsg) error {
	if err := msg.Validate(); err != nil {
		return err
	}
	conf, err := r.loadConfig(db)
	if err != nil {
		return err
	}
	if msg.Royalty.Compare(conf.MinRoyalty) < 0 || msg.Royalty.Compare(conf.MaxRoyalty) > 0 {
		return errors.Wrapf(ErrRoyaltyOutOfBounds, "%s not in [%s, %s]",
			msg.Royalty, conf.MinRoyalty, conf.MaxRoyalty)
	}
	if conf.Fee.SumExceedsOne(msg.Royalty) {
		return errors.Wrapf(ErrNoOwnerShare, "fee %s, royalty %s", conf.Fee, msg.Royalty)
	}

	key := collectibleKey(msg.GateID)
	switch ok, err := r.collectibles.Has(db, key); {
	case err != nil:
		return err
	case ok:
		return errors.Wrapf(errors.ErrDuplicate, "gate id %s", msg.GateID)
	}

	creator := ctx.Caller()
	collectible := Collectible{
		GateID:        msg.GateID,
		CreatorID:     creator,
		CurrentSupply: msg.Supply,
		Royalty:       msg.Royalty,
		Metadata: Metadata{
			Title:       msg.Title,
			Description: msg.Description,
			Media:       msg.Media,
			MediaHash:   msg.MediaHash,
			Copies:      msg.Supply,
			IssuedAt:    ctx.BlockTime(),
		},
	}
	if err := r.collectibles.Put(db, key, &collectible); err != nil {
		return err
	}
	return collectiblesByCreator(creator).Add(db, key)
}

// DeleteCollectible removes a collectible with no minted tokens. Allowed
// for the creator and for the admin account.
func (r *Registry) DeleteCollectible(ctx *host.Context, db mintgate.KVStore, msg *DeleteCollectibleMsg) error {
	if err := msg.Validate(); err != nil {
		return err
	}
	var collectible Collectible
	key := collectibleKey(msg.GateID)
	if err := r.collectibles.One(db, key, &collectible); err != nil {
		return err
	}
	conf, err := r.loadConfig(db)
	if err != nil {
		return err
	}
	if caller := ctx.Caller(); caller != collectible.CreatorID && caller != conf.Admin {
		return errors.Wrapf(errors.ErrUnauthorized, "%s is neither creator nor admin", caller)
	}
	if len(collectible.MintedTokens) != 0 {
		return errors.Wrapf(ErrCollectibleNotEmpty, "%d tokens minted", len(collectible.MintedTokens))
	}
	if err := r.collectibles.Delete(db, key); err != nil {
		return err
	}
	return collectiblesByCreator(collectible.CreatorID).Remove(db, key)
}

// ClaimToken mints the next copy of a collectible for the caller. This is
// the only minting path.
func (r *Registry) ClaimToken(ctx *host.Context, db mintgate.KVStore, msg *ClaimTokenMsg) (uint64, error) {
	if err := msg.Validate(); err != nil {
		return 0, err
	}
	var collectible Collectible
	key := collectibleKey(msg.GateID)
	if err := r.collectibles.One(db, key, &collectible); err != nil {
		return 0, err
	}
	if collectible.CurrentSupply == 0 {
		return 0, errors.Wrapf(ErrSupplyExhausted, "gate id %s", msg.GateID)
	}

	seq, err := r.tokenSeq.NextInt(db)
	if err != nil {
		return 0, err
	}
	// Ids are zero based: the first claimed token is token 0.
	tokenID := seq - 1

	owner := ctx.Caller()
	now := ctx.BlockTime()
	token := Token{
		ID:         tokenID,
		GateID:     msg.GateID,
		OwnerID:    owner,
		CreatedAt:  now,
		ModifiedAt: now,
	}
	if err := r.tokens.Put(db, tokenKey(tokenID), &token); err != nil {
		return 0, err
	}
	if err := tokensByOwner(owner).Add(db, tokenKey(tokenID)); err != nil {
		return 0, err
	}

	collectible.CurrentSupply--
	collectible.MintedTokens = append(collectible.MintedTokens, tokenID)
	if err := r.collectibles.Put(db, key, &collectible); err != nil {
		return 0, err
	}
	return tokenID, nil
}

// BurnToken destroys a token owned by the caller. Every approved account
// is notified that the token is gone; the notifications are advisory
// cleanup, the burn is committed regardless of their fate.
func (r *Registry) BurnToken(ctx *host.Context, db mintgate.KVStore, msg *BurnTokenMsg) error {
	token, err := r.getToken(db, msg.TokenID)
	if err != nil {
		return err
	}
	if caller := ctx.Caller(); caller != token.OwnerID {
		return errors.Wrapf(errors.ErrUnauthorized, "%s does not own token %d", caller, msg.TokenID)
	}

	var collectible Collectible
	collKey := collectibleKey(token.GateID)
	if err := r.collectibles.One(db, collKey, &collectible); err != nil {
		return errors.Wrap(err, "token collectible")
	}
	if !collectible.removeMinted(token.ID) {
		return errors.Wrapf(errors.ErrState, "token %d not minted from %s", token.ID, token.GateID)
	}
	if collectible.Metadata.Copies > 0 {
		collectible.Metadata.Copies--
	}
	collectible.Metadata.UpdatedAt = ctx.BlockTime()
	if err := r.collectibles.Put(db, collKey, &collectible); err != nil {
		return err
	}

	if err := r.tokens.Delete(db, tokenKey(token.ID)); err != nil {
		return err
	}
	if err := tokensByOwner(token.OwnerID).Remove(db, tokenKey(token.ID)); err != nil {
		return err
	}

	for _, approval := range token.Approvals {
		r.notifyRevoke(ctx, approval.AccountID, token.ID)
	}
	return nil
}

// NftApprove grants an account, typically a marketplace, the right to
// transfer the token and notifies it asynchronously. The registry's own
// state commits before the notification is dispatched: a failed
// notification leaves the token approved here and unlisted there, which
// the owner resolves by approving again.
func (r *Registry) NftApprove(ctx *host.Context, db mintgate.KVStore, msg *NftApproveMsg) (uint64, error) {
	if err := msg.Validate(); err != nil {
		return 0, err
	}
	approveMsg, err := mintgate.ParseNftApproveMsg(msg.Msg)
	if err != nil {
		return 0, err
	}
	token, err := r.getToken(db, msg.TokenID)
	if err != nil {
		return 0, err
	}
	owner := ctx.Caller()
	if owner != token.OwnerID {
		return 0, errors.Wrapf(errors.ErrUnauthorized, "%s does not own token %d", owner, msg.TokenID)
	}
	if msg.AccountID == owner {
		return 0, errors.Wrap(errors.ErrInput, "cannot approve the owner")
	}

	approvalID := token.grantApproval(msg.AccountID, approveMsg.MinPrice)
	if err := r.tokens.Put(db, tokenKey(token.ID), token); err != nil {
		return 0, err
	}

	var collectible Collectible
	if err := r.collectibles.One(db, collectibleKey(token.GateID), &collectible); err != nil {
		return 0, errors.Wrap(err, "token collectible")
	}
	payload := mintgate.MarketApproveMsg{
		MinPrice:  approveMsg.MinPrice,
		GateID:    token.GateID,
		CreatorID: collectible.CreatorID,
		Royalty:   &collectible.Royalty,
	}
	if err := r.notifyApprove(ctx, msg.AccountID, token, approvalID, payload); err != nil {
		return 0, err
	}
	return approvalID, nil
}

// NftRevoke withdraws one account's approval and fires the symmetric
// revoke notification.
func (r *Registry) NftRevoke(ctx *host.Context, db mintgate.KVStore, msg *NftRevokeMsg) error {
	if err := msg.Validate(); err != nil {
		return err
	}
	token, err := r.getToken(db, msg.TokenID)
	if err != nil {
		return err
	}
	if caller := ctx.Caller(); caller != token.OwnerID {
		return errors.Wrapf(errors.ErrUnauthorized, "%s does not own token %d", caller, msg.TokenID)
	}
	if !token.revokeApproval(msg.AccountID) {
		return errors.Wrapf(ErrNotApproved, "account %s", msg.AccountID)
	}
	if err := r.tokens.Put(db, tokenKey(token.ID), token); err != nil {
		return err
	}
	r.notifyRevoke(ctx, msg.AccountID, token.ID)
	return nil
}

// NftRevokeAll withdraws every approval on the token.
func (r *Registry) NftRevokeAll(ctx *host.Context, db mintgate.KVStore, msg *NftRevokeAllMsg) error {
	token, err := r.getToken(db, msg.TokenID)
	if err != nil {
		return err
	}
	if caller := ctx.Caller(); caller != token.OwnerID {
		return errors.Wrapf(errors.ErrUnauthorized, "%s does not own token %d", caller, msg.TokenID)
	}
	for _, approval := range token.Approvals {
		r.notifyRevoke(ctx, approval.AccountID, token.ID)
	}
	token.Approvals = nil
	return r.tokens.Put(db, tokenKey(token.ID), token)
}

// NftTransfer moves the token to a new owner and clears every approval:
// whatever was listed anywhere is no longer backed by an approval, so a
// transfer invalidates all outstanding listings.
func (r *Registry) NftTransfer(ctx *host.Context, db mintgate.KVStore, msg *NftTransferMsg) error {
	if err := msg.Validate(); err != nil {
		return err
	}
	token, err := r.getToken(db, msg.TokenID)
	if err != nil {
		return err
	}
	return r.transfer(ctx, db, token, msg.ReceiverID, msg.EnforceApprovalID, nil)
}

// NftPayout computes the split of a hypothetical sale: contract fee,
// creator royalty and the owner remainder. Pure and idempotent, used for
// price previews and as the first half of nft_transfer_payout.
func (r *Registry) NftPayout(db mintgate.ReadOnlyKVStore, msg *NftPayoutMsg) (mintgate.Payout, error) {
	token, err := r.getToken(db, msg.TokenID)
	if err != nil {
		return nil, err
	}
	return r.payout(db, token, msg.Balance)
}

// NftTransferPayout composes nft_payout and nft_transfer, in that order:
// the split is computed against the pre-transfer owner. This is the
// entry point a marketplace calls to settle a sale.
func (r *Registry) NftTransferPayout(ctx *host.Context, db mintgate.KVStore, msg *NftTransferPayoutMsg) (mintgate.Payout, error) {
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	token, err := r.getToken(db, msg.TokenID)
	if err != nil {
		return nil, err
	}

	var payout mintgate.Payout
	if msg.Balance != nil {
		if payout, err = r.payout(db, token, *msg.Balance); err != nil {
			return nil, err
		}
	}
	if err := r.transfer(ctx, db, token, msg.ReceiverID, msg.ApprovalID, msg.Balance); err != nil {
		return nil, err
	}
	return payout, nil
}

// BatchApprove approves many tokens for one marketplace. Tokens that
// cannot be approved are collected; the successful subset is notified and
// stays committed, then the continuation re-raises the collected errors
// so the overall transaction reports the failures.
func (r *Registry) BatchApprove(ctx *host.Context, db mintgate.KVStore, msg *BatchApproveMsg) error {
	if err := msg.Validate(); err != nil {
		return err
	}
	owner := ctx.Caller()

	var approved []mintgate.ApprovedToken
	var failures []string
	for _, item := range msg.Tokens {
		token, err := r.getToken(db, item.TokenID)
		if err != nil {
			failures = append(failures, err.Error())
			continue
		}
		if token.OwnerID != owner {
			failures = append(failures,
				errors.Wrapf(errors.ErrUnauthorized, "%s does not own token %d", owner, item.TokenID).Error())
			continue
		}
		approvalID := token.grantApproval(msg.AccountID, item.MinPrice)
		if err := r.tokens.Put(db, tokenKey(token.ID), token); err != nil {
			return err
		}

		var collectible Collectible
		if err := r.collectibles.One(db, collectibleKey(token.GateID), &collectible); err != nil {
			return errors.Wrap(err, "token collectible")
		}
		approved = append(approved, mintgate.ApprovedToken{
			TokenID:    token.ID,
			ApprovalID: approvalID,
			ApproveMsg: mintgate.MarketApproveMsg{
				MinPrice:  item.MinPrice,
				GateID:    token.GateID,
				CreatorID: collectible.CreatorID,
				Royalty:   &collectible.Royalty,
			},
		})
	}

	if len(approved) == 0 {
		// Nothing took effect, fail the whole call synchronously.
		return batchError(failures)
	}

	args, err := json.Marshal(mintgate.BatchOnApproveArgs{Tokens: approved, OwnerID: owner})
	if err != nil {
		return errors.Wrap(errors.ErrState, "batch notification args")
	}
	p := ctx.Call(msg.AccountID, mintgate.MethodBatchOnApprove, args)
	if len(failures) != 0 {
		resolveArgs, err := json.Marshal(ResolveBatchApproveMsg{Errors: failures})
		if err != nil {
			return errors.Wrap(errors.ErrState, "batch resolve args")
		}
		p.Then(MethodResolveBatchApprove, resolveArgs)
	}
	return nil
}

// ResolveBatchApprove is the private continuation of BatchApprove. It
// only re-raises the collected per-item errors; the approvals already
// committed stay in place.
func (r *Registry) ResolveBatchApprove(ctx *host.Context, msg *ResolveBatchApproveMsg) error {
	if ctx.Caller() != ctx.ContractID() {
		return errors.Wrap(errors.ErrUnauthorized, "private method")
	}
	return batchError(msg.Errors)
}

func batchError(failures []string) error {
	errs := make([]error, 0, len(failures))
	for _, f := range failures {
		errs = append(errs, errors.Wrap(errors.ErrState, f))
	}
	return errors.Wrapf(errors.Append(errs...), "%d approvals failed", len(failures))
}

// transfer moves the token to receiver after authorization checks. When
// balance is set, an approved caller's minimum price is enforced.
func (r *Registry) transfer(ctx *host.Context, db mintgate.KVStore, token *Token, receiver mintgate.AccountID, enforceApprovalID *uint64, balance *mintgate.Balance) error {
	caller := ctx.Caller()
	if caller != token.OwnerID {
		approval, ok := token.Approval(caller)
		if !ok {
			return errors.Wrapf(ErrNotApproved, "account %s", caller)
		}
		if enforceApprovalID != nil && *enforceApprovalID != approval.ApprovalID {
			return errors.Wrapf(ErrApprovalMismatch, "expected %d, live %d",
				*enforceApprovalID, approval.ApprovalID)
		}
		if balance != nil && balance.Compare(approval.MinPrice) < 0 {
			return errors.Wrapf(ErrMinPriceNotReached, "%s below %s", balance, approval.MinPrice)
		}
	} else if enforceApprovalID != nil {
		return errors.Wrap(ErrApprovalMismatch, "owner holds no approval")
	}
	if receiver == token.OwnerID {
		return errors.Wrapf(ErrSelfTransfer, "token %d", token.ID)
	}
	if err := receiver.Validate(); err != nil {
		return errors.Wrap(err, "receiver")
	}

	if err := tokensByOwner(token.OwnerID).Remove(db, tokenKey(token.ID)); err != nil {
		return err
	}
	token.SenderID = token.OwnerID
	token.OwnerID = receiver
	token.ModifiedAt = ctx.BlockTime()
	token.Approvals = nil
	if err := r.tokens.Put(db, tokenKey(token.ID), token); err != nil {
		return err
	}
	return tokensByOwner(receiver).Add(db, tokenKey(token.ID))
}

// payout computes the three way split for the given token and amount.
// The owner share is the subtraction remainder, never an independent
// multiply, so the entries always sum exactly to balance.
func (r *Registry) payout(db mintgate.ReadOnlyKVStore, token *Token, balance mintgate.Balance) (mintgate.Payout, error) {
	conf, err := r.loadConfig(db)
	if err != nil {
		return nil, err
	}
	var collectible Collectible
	if err := r.collectibles.One(db, collectibleKey(token.GateID), &collectible); err != nil {
		return nil, errors.Wrap(err, "token collectible")
	}

	fee := conf.Fee.Multiply(balance)
	royalty := collectible.Royalty.Multiply(balance)

	remainder, err := balance.Sub(fee)
	if err != nil {
		return nil, errors.Wrap(err, "fee share")
	}
	if remainder, err = remainder.Sub(royalty); err != nil {
		return nil, errors.Wrap(err, "royalty share")
	}

	payout := mintgate.Payout{}
	if payout, err = payout.Add(conf.FeeAccount, fee); err != nil {
		return nil, err
	}
	if payout, err = payout.Add(collectible.CreatorID, royalty); err != nil {
		return nil, err
	}
	if payout, err = payout.Add(token.OwnerID, remainder); err != nil {
		return nil, err
	}
	return payout, nil
}

func (r *Registry) getToken(db mintgate.ReadOnlyKVStore, id uint64) (*Token, error) {
	var token Token
	if err := r.tokens.One(db, tokenKey(id), &token); err != nil {
		return nil, errors.Wrapf(err, "token %d", id)
	}
	return &token, nil
}

func (r *Registry) notifyApprove(ctx *host.Context, market mintgate.AccountID, token *Token, approvalID uint64, payload mintgate.MarketApproveMsg) error {
	encoded, err := payload.Encode()
	if err != nil {
		return err
	}
	args, err := json.Marshal(mintgate.OnApproveArgs{
		TokenID:    token.ID,
		OwnerID:    token.OwnerID,
		ApprovalID: approvalID,
		Msg:        encoded,
	})
	if err != nil {
		return errors.Wrap(errors.ErrState, "approve notification args")
	}
	ctx.Call(market, mintgate.MethodNftOnApprove, args)
	return nil
}

func (r *Registry) notifyRevoke(ctx *host.Context, market mintgate.AccountID, tokenID uint64) {
	args, err := json.Marshal(mintgate.OnRevokeArgs{TokenID: tokenID})
	if err != nil {
		// Encoding a two field struct cannot fail; treated as
		// unreachable.
		panic(err)
	}
	ctx.Call(market, mintgate.MethodNftOnRevoke, args)
}

// Views.

// NftMetadata returns the contract level metadata set at deployment.
func (r *Registry) NftMetadata(db mintgate.ReadOnlyKVStore) (*ContractMetadata, error) {
	conf, err := r.loadConfig(db)
	if err != nil {
		return nil, err
	}
	return &conf.Metadata, nil
}

// GetToken returns the token with the given id.
func (r *Registry) GetToken(db mintgate.ReadOnlyKVStore, id uint64) (*Token, error) {
	return r.getToken(db, id)
}

// TotalSupply returns the number of existing tokens.
func (r *Registry) TotalSupply(db mintgate.ReadOnlyKVStore) (uint64, error) {
	var n uint64
	err := r.tokens.Iterate(db, func([]byte, []byte) error {
		n++
		return nil
	})
	return n, err
}

// GetCollectible returns the collectible with the given gate id.
func (r *Registry) GetCollectible(db mintgate.ReadOnlyKVStore, gateID mintgate.GateID) (*Collectible, error) {
	var collectible Collectible
	if err := r.collectibles.One(db, collectibleKey(gateID), &collectible); err != nil {
		return nil, err
	}
	return &collectible, nil
}

// GetCollectiblesByCreator returns every collectible created by the
// given account. An unknown creator yields an empty slice.
func (r *Registry) GetCollectiblesByCreator(db mintgate.ReadOnlyKVStore, creator mintgate.AccountID) ([]Collectible, error) {
	keys, err := collectiblesByCreator(creator).All(db)
	if err != nil {
		return nil, err
	}
	out := make([]Collectible, 0, len(keys))
	for _, key := range keys {
		var collectible Collectible
		if err := r.collectibles.One(db, key, &collectible); err != nil {
			return nil, errors.Wrap(err, "indexed collectible")
		}
		out = append(out, collectible)
	}
	return out, nil
}

// GetTokensByOwner returns every token owned by the given account. An
// unknown owner yields an empty slice.
func (r *Registry) GetTokensByOwner(db mintgate.ReadOnlyKVStore, owner mintgate.AccountID) ([]Token, error) {
	keys, err := tokensByOwner(owner).All(db)
	if err != nil {
		return nil, err
	}
	out := make([]Token, 0, len(keys))
	for _, key := range keys {
		var token Token
		if err := r.tokens.One(db, key, &token); err != nil {
			return nil, errors.Wrap(err, "indexed token")
		}
		out = append(out, token)
	}
	return out, nil
}

package nft_test

import (
	"encoding/json"
	"testing"

	"github.com/iov-one/mintgate"
	"github.com/iov-one/mintgate/errors"
	"github.com/iov-one/mintgate/mgtest"
	"github.com/iov-one/mintgate/x/nft"
)

func createCollectible(t testing.TB, env *mgtest.Env, creator mintgate.AccountID, gateID mintgate.GateID, supply uint64, royalty mintgate.Fraction) {
	t.Helper()
	env.MustCall(creator, mgtest.Registry, nft.MethodCreateCollectible, nft.CreateCollectibleMsg{
		GateID:  gateID,
		Title:   "test collectible",
		Supply:  supply,
		Royalty: royalty,
	})
}

func claimToken(t testing.TB, env *mgtest.Env, owner mintgate.AccountID, gateID mintgate.GateID) uint64 {
	t.Helper()
	data := env.MustCall(owner, mgtest.Registry, nft.MethodClaimToken, nft.ClaimTokenMsg{GateID: gateID})
	var id uint64
	if err := json.Unmarshal(data, &id); err != nil {
		t.Fatalf("decode token id: %v", err)
	}
	return id
}

func TestCreateCollectible(t *testing.T) {
	env := mgtest.NewEnv(t)
	createCollectible(t, env, mgtest.Alice, "g1", 10, mgtest.Frac(15, 100))

	var c nft.Collectible
	env.View(mgtest.Registry, nft.MethodGetCollectible, nft.GetCollectibleMsg{GateID: "g1"}, &c)
	if c.CreatorID != mgtest.Alice || c.CurrentSupply != 10 {
		t.Fatalf("unexpected collectible: %+v", c)
	}
	if c.Metadata.Copies != 10 {
		t.Fatalf("copies must start at supply, got %d", c.Metadata.Copies)
	}

	// Gate ids are globally unique, even across creators.
	_, err := env.Call(mgtest.Bob, mgtest.Registry, nft.MethodCreateCollectible, nft.CreateCollectibleMsg{
		GateID: "g1", Title: "imposter", Supply: 1, Royalty: mgtest.Frac(15, 100),
	})
	if !errors.ErrDuplicate.Is(err) {
		t.Fatalf("want duplicate, got %+v", err)
	}

	var list []nft.Collectible
	env.View(mgtest.Registry, nft.MethodGetCollectiblesCreator, nft.GetCollectiblesByCreatorMsg{CreatorID: mgtest.Alice}, &list)
	if len(list) != 1 || list[0].GateID != "g1" {
		t.Fatalf("creator index: %+v", list)
	}
}

func TestNftMetadata(t *testing.T) {
	env := mgtest.NewEnv(t)

	var meta nft.ContractMetadata
	env.View(mgtest.Registry, nft.MethodNftMetadata, nil, &meta)
	want := mgtest.DefaultConfig().Metadata
	if meta != want {
		t.Fatalf("want %+v, got %+v", want, meta)
	}
}

func TestCreateCollectibleRoyaltyBounds(t *testing.T) {
	env := mgtest.NewEnv(t)

	cases := map[string]struct {
		royalty mintgate.Fraction
		wantErr *errors.Error
	}{
		"below minimum":            {royalty: mgtest.Frac(4, 100), wantErr: nft.ErrRoyaltyOutOfBounds},
		"exactly minimum":          {royalty: mgtest.Frac(5, 100)},
		"minimum unreduced":        {royalty: mgtest.Frac(50, 1000)},
		"exactly maximum":          {royalty: mgtest.Frac(30, 100)},
		"above maximum":            {royalty: mgtest.Frac(31, 100), wantErr: nft.ErrRoyaltyOutOfBounds},
		"invalid zero denominator": {royalty: mgtest.Frac(1, 0), wantErr: mintgate.ErrZeroDenominator},
	}
	i := 0
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			gateID := mintgate.GateID([]string{"b1", "b2", "b3", "b4", "b5", "b6"}[i])
			i++
			_, err := env.Call(mgtest.Alice, mgtest.Registry, nft.MethodCreateCollectible, nft.CreateCollectibleMsg{
				GateID: gateID, Title: "bounds", Supply: 1, Royalty: tc.royalty,
			})
			if tc.wantErr == nil {
				if err != nil {
					t.Fatalf("unexpected error: %+v", err)
				}
				return
			}
			if !tc.wantErr.Is(err) {
				t.Fatalf("unexpected error: %+v", err)
			}
		})
	}
}

func TestCreateCollectibleOwnerShare(t *testing.T) {
	// With a 1/10 fee, a royalty of exactly 9/10 leaves the seller
	// nothing and must be rejected.
	conf := mgtest.DefaultConfig()
	conf.Fee = mgtest.Frac(1, 10)
	conf.MinRoyalty = mgtest.Frac(0, 100)
	conf.MaxRoyalty = mgtest.Frac(100, 100)
	env := mgtest.NewEnvWithConfig(t, conf)

	_, err := env.Call(mgtest.Alice, mgtest.Registry, nft.MethodCreateCollectible, nft.CreateCollectibleMsg{
		GateID: "g1", Title: "greedy", Supply: 1, Royalty: mgtest.Frac(9, 10),
	})
	if !nft.ErrNoOwnerShare.Is(err) {
		t.Fatalf("want no owner share, got %+v", err)
	}

	// One thousandth below is acceptable.
	env.MustCall(mgtest.Alice, mgtest.Registry, nft.MethodCreateCollectible, nft.CreateCollectibleMsg{
		GateID: "g2", Title: "barely", Supply: 1, Royalty: mgtest.Frac(899, 1000),
	})
}

func TestCreateCollectibleOwnerShareLargeDenominators(t *testing.T) {
	// The fee plus royalty check must stay exact when the cross
	// multiplication does not fit in 64 bits.
	conf := mgtest.DefaultConfig()
	conf.Fee = mgtest.Frac(3000000000, 4000000000)
	conf.MinRoyalty = mgtest.Frac(0, 100)
	conf.MaxRoyalty = mgtest.Frac(100, 100)
	env := mgtest.NewEnvWithConfig(t, conf)

	_, err := env.Call(mgtest.Alice, mgtest.Registry, nft.MethodCreateCollectible, nft.CreateCollectibleMsg{
		GateID: "g1", Title: "greedy", Supply: 1, Royalty: mgtest.Frac(3000000000, 4000000000),
	})
	if !nft.ErrNoOwnerShare.Is(err) {
		t.Fatalf("want no owner share, got %+v", err)
	}

	env.MustCall(mgtest.Alice, mgtest.Registry, nft.MethodCreateCollectible, nft.CreateCollectibleMsg{
		GateID: "g2", Title: "barely", Supply: 1, Royalty: mgtest.Frac(999999999, 4000000000),
	})
}

func TestClaimToken(t *testing.T) {
	env := mgtest.NewEnv(t)
	createCollectible(t, env, mgtest.Alice, "g1", 2, mgtest.Frac(15, 100))

	if id := claimToken(t, env, mgtest.Bob, "g1"); id != 0 {
		t.Fatalf("first token id must be 0, got %d", id)
	}
	if id := claimToken(t, env, mgtest.Carol, "g1"); id != 1 {
		t.Fatalf("second token id must be 1, got %d", id)
	}

	_, err := env.Call(mgtest.Bob, mgtest.Registry, nft.MethodClaimToken, nft.ClaimTokenMsg{GateID: "g1"})
	if !nft.ErrSupplyExhausted.Is(err) {
		t.Fatalf("want supply exhausted, got %+v", err)
	}

	var c nft.Collectible
	env.View(mgtest.Registry, nft.MethodGetCollectible, nft.GetCollectibleMsg{GateID: "g1"}, &c)
	if c.CurrentSupply != 0 || len(c.MintedTokens) != 2 {
		t.Fatalf("supply accounting: %+v", c)
	}

	var tokens []nft.Token
	env.View(mgtest.Registry, nft.MethodGetTokensByOwner, nft.GetTokensByOwnerMsg{OwnerID: mgtest.Bob}, &tokens)
	if len(tokens) != 1 || tokens[0].ID != 0 || tokens[0].GateID != "g1" {
		t.Fatalf("owner index: %+v", tokens)
	}

	var supply uint64
	env.View(mgtest.Registry, nft.MethodNftTotalSupply, nil, &supply)
	if supply != 2 {
		t.Fatalf("total supply: %d", supply)
	}
}

func TestTokenIDsNeverReused(t *testing.T) {
	env := mgtest.NewEnv(t)
	createCollectible(t, env, mgtest.Alice, "g1", 5, mgtest.Frac(15, 100))

	id0 := claimToken(t, env, mgtest.Bob, "g1")
	env.MustCall(mgtest.Bob, mgtest.Registry, nft.MethodBurnToken, nft.BurnTokenMsg{TokenID: id0})

	if id := claimToken(t, env, mgtest.Bob, "g1"); id != id0+1 {
		t.Fatalf("burned id must not come back, got %d", id)
	}
}

func TestBurnToken(t *testing.T) {
	env := mgtest.NewEnv(t)
	createCollectible(t, env, mgtest.Alice, "g1", 3, mgtest.Frac(15, 100))
	id := claimToken(t, env, mgtest.Bob, "g1")

	// Only the owner burns.
	_, err := env.Call(mgtest.Carol, mgtest.Registry, nft.MethodBurnToken, nft.BurnTokenMsg{TokenID: id})
	if !errors.ErrUnauthorized.Is(err) {
		t.Fatalf("want unauthorized, got %+v", err)
	}

	env.MustCall(mgtest.Bob, mgtest.Registry, nft.MethodBurnToken, nft.BurnTokenMsg{TokenID: id})

	_, err = env.Call(mgtest.Bob, mgtest.Registry, nft.MethodBurnToken, nft.BurnTokenMsg{TokenID: id})
	if !errors.ErrNotFound.Is(err) {
		t.Fatalf("want not found, got %+v", err)
	}

	var c nft.Collectible
	env.View(mgtest.Registry, nft.MethodGetCollectible, nft.GetCollectibleMsg{GateID: "g1"}, &c)
	if len(c.MintedTokens) != 0 {
		t.Fatalf("minted list must shrink on burn: %+v", c.MintedTokens)
	}
	if c.Metadata.Copies != 2 {
		t.Fatalf("copies must shrink on burn, got %d", c.Metadata.Copies)
	}

	var tokens []nft.Token
	env.View(mgtest.Registry, nft.MethodGetTokensByOwner, nft.GetTokensByOwnerMsg{OwnerID: mgtest.Bob}, &tokens)
	if len(tokens) != 0 {
		t.Fatalf("owner index must shrink on burn: %+v", tokens)
	}
}

func TestDeleteCollectible(t *testing.T) {
	env := mgtest.NewEnv(t)
	createCollectible(t, env, mgtest.Alice, "g1", 3, mgtest.Frac(15, 100))
	id := claimToken(t, env, mgtest.Bob, "g1")

	// A collectible with minted tokens is permanent.
	_, err := env.Call(mgtest.Alice, mgtest.Registry, nft.MethodDeleteCollectible, nft.DeleteCollectibleMsg{GateID: "g1"})
	if !nft.ErrCollectibleNotEmpty.Is(err) {
		t.Fatalf("want not empty, got %+v", err)
	}

	env.MustCall(mgtest.Bob, mgtest.Registry, nft.MethodBurnToken, nft.BurnTokenMsg{TokenID: id})

	// A third party may not delete, the admin may.
	_, err = env.Call(mgtest.Bob, mgtest.Registry, nft.MethodDeleteCollectible, nft.DeleteCollectibleMsg{GateID: "g1"})
	if !errors.ErrUnauthorized.Is(err) {
		t.Fatalf("want unauthorized, got %+v", err)
	}
	env.MustCall(mgtest.Admin, mgtest.Registry, nft.MethodDeleteCollectible, nft.DeleteCollectibleMsg{GateID: "g1"})

	_, err = env.Call(mgtest.Alice, mgtest.Registry, nft.MethodDeleteCollectible, nft.DeleteCollectibleMsg{GateID: "g1"})
	if !errors.ErrNotFound.Is(err) {
		t.Fatalf("want not found, got %+v", err)
	}
}

func TestTransferClearsApprovals(t *testing.T) {
	env := mgtest.NewEnv(t)
	createCollectible(t, env, mgtest.Alice, "g1", 3, mgtest.Frac(15, 100))
	id := claimToken(t, env, mgtest.Bob, "g1")

	env.MustCall(mgtest.Bob, mgtest.Registry, nft.MethodNftApprove, nft.NftApproveMsg{
		TokenID:   id,
		AccountID: mgtest.Market,
		Msg:       mgtest.ApprovePayload(mgtest.Bal(2000)),
	})
	if failures := env.Failures(); len(failures) != 0 {
		t.Fatalf("approve notification failed: %+v", failures)
	}

	env.MustCall(mgtest.Bob, mgtest.Registry, nft.MethodNftTransfer, nft.NftTransferMsg{
		ReceiverID: mgtest.Carol,
		TokenID:    id,
	})

	var token nft.Token
	env.View(mgtest.Registry, nft.MethodNftToken, nft.NftTokenMsg{TokenID: id}, &token)
	if token.OwnerID != mgtest.Carol || token.SenderID != mgtest.Bob {
		t.Fatalf("ownership after transfer: %+v", token)
	}
	if len(token.Approvals) != 0 {
		t.Fatalf("transfer must clear approvals: %+v", token.Approvals)
	}
	if token.ModifiedAt <= token.CreatedAt {
		t.Fatal("modified_at must advance on transfer")
	}

	// The old grant is dead: the market can no longer move the token.
	_, err := env.Call(mgtest.Market, mgtest.Registry, nft.MethodNftTransfer, nft.NftTransferMsg{
		ReceiverID: mgtest.Alice,
		TokenID:    id,
	})
	if !nft.ErrNotApproved.Is(err) {
		t.Fatalf("want not approved, got %+v", err)
	}
}

func TestTransferAuthorization(t *testing.T) {
	env := mgtest.NewEnv(t)
	createCollectible(t, env, mgtest.Alice, "g1", 3, mgtest.Frac(15, 100))
	id := claimToken(t, env, mgtest.Bob, "g1")

	// A stranger cannot transfer.
	_, err := env.Call(mgtest.Carol, mgtest.Registry, nft.MethodNftTransfer, nft.NftTransferMsg{
		ReceiverID: mgtest.Carol, TokenID: id,
	})
	if !nft.ErrNotApproved.Is(err) {
		t.Fatalf("want not approved, got %+v", err)
	}

	// Transfer to self is rejected.
	_, err = env.Call(mgtest.Bob, mgtest.Registry, nft.MethodNftTransfer, nft.NftTransferMsg{
		ReceiverID: mgtest.Bob, TokenID: id,
	})
	if !nft.ErrSelfTransfer.Is(err) {
		t.Fatalf("want self transfer, got %+v", err)
	}

	// An approved account acting on a stale approval id is rejected.
	env.MustCall(mgtest.Bob, mgtest.Registry, nft.MethodNftApprove, nft.NftApproveMsg{
		TokenID: id, AccountID: mgtest.Market, Msg: mgtest.ApprovePayload(mgtest.Bal(2000)),
	})
	stale := uint64(999)
	_, err = env.Call(mgtest.Market, mgtest.Registry, nft.MethodNftTransfer, nft.NftTransferMsg{
		ReceiverID: mgtest.Carol, TokenID: id, EnforceApprovalID: &stale,
	})
	if !nft.ErrApprovalMismatch.Is(err) {
		t.Fatalf("want approval mismatch, got %+v", err)
	}
}

func TestReapprovingReplacesGrant(t *testing.T) {
	env := mgtest.NewEnv(t)
	createCollectible(t, env, mgtest.Alice, "g1", 3, mgtest.Frac(15, 100))
	id := claimToken(t, env, mgtest.Bob, "g1")

	approve := func(price uint64) uint64 {
		data := env.MustCall(mgtest.Bob, mgtest.Registry, nft.MethodNftApprove, nft.NftApproveMsg{
			TokenID: id, AccountID: mgtest.Market, Msg: mgtest.ApprovePayload(mgtest.Bal(price)),
		})
		var approvalID uint64
		if err := json.Unmarshal(data, &approvalID); err != nil {
			t.Fatalf("decode approval id: %v", err)
		}
		return approvalID
	}

	first := approve(2000)
	second := approve(3000)
	if second <= first {
		t.Fatalf("re-approval must issue a fresh id: %d then %d", first, second)
	}

	var token nft.Token
	env.View(mgtest.Registry, nft.MethodNftToken, nft.NftTokenMsg{TokenID: id}, &token)
	if len(token.Approvals) != 1 {
		t.Fatalf("one account holds one approval, got %d", len(token.Approvals))
	}
	if token.Approvals[0].MinPrice.Compare(mgtest.Bal(3000)) != 0 {
		t.Fatalf("terms must be the latest: %+v", token.Approvals[0])
	}
}

func TestNftPayout(t *testing.T) {
	env := mgtest.NewEnv(t)
	createCollectible(t, env, mgtest.Alice, "g1", 3, mgtest.Frac(15, 100))
	id := claimToken(t, env, mgtest.Bob, "g1")

	var payout mintgate.Payout
	env.View(mgtest.Registry, nft.MethodNftPayout, nft.NftPayoutMsg{TokenID: id, Balance: mgtest.Bal(2000)}, &payout)

	wantShare(t, payout, mgtest.FeeAccount, 50)
	wantShare(t, payout, mgtest.Alice, 300)
	wantShare(t, payout, mgtest.Bob, 1650)
	wantTotal(t, payout, 2000)
}

func TestNftPayoutIsExact(t *testing.T) {
	// 2001 divides into neither the fee nor the royalty evenly. Both
	// shares round down and the seller picks up the crumbs.
	env := mgtest.NewEnv(t)
	createCollectible(t, env, mgtest.Alice, "g1", 3, mgtest.Frac(15, 100))
	id := claimToken(t, env, mgtest.Bob, "g1")

	var payout mintgate.Payout
	env.View(mgtest.Registry, nft.MethodNftPayout, nft.NftPayoutMsg{TokenID: id, Balance: mgtest.Bal(2001)}, &payout)

	wantShare(t, payout, mgtest.FeeAccount, 50)
	wantShare(t, payout, mgtest.Alice, 300)
	wantShare(t, payout, mgtest.Bob, 1651)
	wantTotal(t, payout, 2001)
}

func TestNftPayoutCreatorStillOwns(t *testing.T) {
	// The creator claims their own token: royalty and seller remainder
	// merge into one entry.
	env := mgtest.NewEnv(t)
	createCollectible(t, env, mgtest.Alice, "g1", 3, mgtest.Frac(15, 100))
	id := claimToken(t, env, mgtest.Alice, "g1")

	var payout mintgate.Payout
	env.View(mgtest.Registry, nft.MethodNftPayout, nft.NftPayoutMsg{TokenID: id, Balance: mgtest.Bal(2000)}, &payout)

	if len(payout) != 2 {
		t.Fatalf("want 2 entries, got %d: %+v", len(payout), payout)
	}
	wantShare(t, payout, mgtest.FeeAccount, 50)
	wantShare(t, payout, mgtest.Alice, 1950)
}

func TestBatchApprove(t *testing.T) {
	env := mgtest.NewEnv(t)
	createCollectible(t, env, mgtest.Alice, "g1", 5, mgtest.Frac(15, 100))
	id0 := claimToken(t, env, mgtest.Bob, "g1")
	id1 := claimToken(t, env, mgtest.Bob, "g1")
	foreign := claimToken(t, env, mgtest.Carol, "g1")

	// One item is not Bob's: the batch reports a failure but the two
	// owned tokens are approved regardless.
	_, err := env.Call(mgtest.Bob, mgtest.Registry, nft.MethodBatchApprove, nft.BatchApproveMsg{
		Tokens: []nft.BatchApproveItem{
			{TokenID: id0, MinPrice: mgtest.Bal(1000)},
			{TokenID: id1, MinPrice: mgtest.Bal(2000)},
			{TokenID: foreign, MinPrice: mgtest.Bal(3000)},
		},
		AccountID: mgtest.Market,
	})
	if err != nil {
		t.Fatalf("batch call itself: %+v", err)
	}
	if failures := env.Failures(); len(failures) != 1 {
		t.Fatalf("want 1 async failure, got %+v", failures)
	}

	for _, id := range []uint64{id0, id1} {
		var token nft.Token
		env.View(mgtest.Registry, nft.MethodNftToken, nft.NftTokenMsg{TokenID: id}, &token)
		if len(token.Approvals) != 1 || token.Approvals[0].AccountID != mgtest.Market {
			t.Fatalf("token %d approvals: %+v", id, token.Approvals)
		}
	}
	var token nft.Token
	env.View(mgtest.Registry, nft.MethodNftToken, nft.NftTokenMsg{TokenID: foreign}, &token)
	if len(token.Approvals) != 0 {
		t.Fatalf("foreign token must stay untouched: %+v", token.Approvals)
	}

	// A batch with no owned token at all fails synchronously.
	_, err = env.Call(mgtest.Bob, mgtest.Registry, nft.MethodBatchApprove, nft.BatchApproveMsg{
		Tokens:    []nft.BatchApproveItem{{TokenID: foreign, MinPrice: mgtest.Bal(1)}},
		AccountID: mgtest.Market,
	})
	if err == nil {
		t.Fatal("all-failed batch must fail the call")
	}
}

func wantShare(t testing.TB, payout mintgate.Payout, account mintgate.AccountID, amount uint64) {
	t.Helper()
	got, ok := payout.Amount(account)
	if !ok {
		t.Fatalf("no payout entry for %s: %+v", account, payout)
	}
	if got.Compare(mgtest.Bal(amount)) != 0 {
		t.Fatalf("share of %s: want %d, got %s", account, amount, got)
	}
}

func wantTotal(t testing.TB, payout mintgate.Payout, amount uint64) {
	t.Helper()
	total, err := payout.Total()
	if err != nil {
		t.Fatalf("total: %+v", err)
	}
	if total.Compare(mgtest.Bal(amount)) != 0 {
		t.Fatalf("total: want %d, got %s", amount, total)
	}
}

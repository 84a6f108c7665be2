package mintgate

import (
	"encoding/json"
	"sort"

	"github.com/iov-one/mintgate/errors"
)

// Payout is the computed split of a sale amount: who gets paid how many
// minimal units. It is produced by the registry's nft_payout computation
// and executed by the market's settlement callback.
//
// Entries keep insertion order so that the payment side effects are issued
// deterministically. Adding an amount for an account that is already a
// payee merges into the existing entry, which is how the royalty and the
// seller remainder collapse when the creator still owns the token.
type Payout []PayoutEntry

// PayoutEntry is a single payee of a Payout.
type PayoutEntry struct {
	Account AccountID
	Amount  Balance
}

// Add merges the given amount into this payout.
func (p Payout) Add(account AccountID, amount Balance) (Payout, error) {
	for i := range p {
		if p[i].Account == account {
			sum, err := p[i].Amount.Add(amount)
			if err != nil {
				return nil, errors.Wrapf(err, "payee %s", account)
			}
			p[i].Amount = sum
			return p, nil
		}
	}
	return append(p, PayoutEntry{Account: account, Amount: amount}), nil
}

// Amount returns the amount paid to the given account.
func (p Payout) Amount(account AccountID) (Balance, bool) {
	for _, e := range p {
		if e.Account == account {
			return e.Amount, true
		}
	}
	return Balance{}, false
}

// Total sums all the entries.
func (p Payout) Total() (Balance, error) {
	var sum Balance
	var err error
	for _, e := range p {
		if sum, err = sum.Add(e.Amount); err != nil {
			return Balance{}, err
		}
	}
	return sum, nil
}

// MarshalJSON encodes the payout as an account to amount object, the form
// the settlement protocol carries across the contract boundary.
func (p Payout) MarshalJSON() ([]byte, error) {
	obj := make(map[AccountID]Balance, len(p))
	for _, e := range p {
		obj[e.Account] = e.Amount
	}
	return json.Marshal(obj)
}

func (p *Payout) UnmarshalJSON(raw []byte) error {
	var obj map[AccountID]Balance
	if err := json.Unmarshal(raw, &obj); err != nil {
		return errors.Wrap(errors.ErrInput, "payout object")
	}
	accounts := make([]string, 0, len(obj))
	for a := range obj {
		accounts = append(accounts, string(a))
	}
	// JSON objects are unordered, restore a deterministic entry order.
	sort.Strings(accounts)
	out := make(Payout, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, PayoutEntry{Account: AccountID(a), Amount: obj[AccountID(a)]})
	}
	*p = out
	return nil
}

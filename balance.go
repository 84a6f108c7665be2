package mintgate

import (
	"github.com/holiman/uint256"
	"github.com/iov-one/mintgate/errors"
)

// Balance is an amount of native currency expressed in its minimal,
// indivisible units. It is an unsigned 128-bit integer, wide enough for
// any supply the host can represent. Balance is a value type, copied
// everywhere and never mutated in place.
type Balance struct {
	hi uint64
	lo uint64
}

// MaxBalance is the highest representable Balance. It doubles as the
// reference scale when comparing fractions.
var MaxBalance = Balance{hi: ^uint64(0), lo: ^uint64(0)}

// NewBalance returns a balance of the given amount of minimal units.
func NewBalance(amount uint64) Balance {
	return Balance{lo: amount}
}

// ParseBalance converts a decimal string into a Balance. The string must
// be a base-10 number that fits into 128 bits.
func ParseBalance(raw string) (Balance, error) {
	if len(raw) == 0 {
		return Balance{}, errors.Wrap(errors.ErrEmpty, "balance string")
	}
	i := new(uint256.Int)
	if err := i.SetFromDecimal(raw); err != nil {
		return Balance{}, errors.Wrapf(errors.ErrInput, "balance %q", raw)
	}
	b, ok := balanceFromWide(i)
	if !ok {
		return Balance{}, errors.Wrapf(errors.ErrOverflow, "balance %q", raw)
	}
	return b, nil
}

// wide returns the 256-bit representation of this balance.
func (b Balance) wide() *uint256.Int {
	return &uint256.Int{b.lo, b.hi, 0, 0}
}

func balanceFromWide(i *uint256.Int) (Balance, bool) {
	if i[2] != 0 || i[3] != 0 {
		return Balance{}, false
	}
	return Balance{hi: i[1], lo: i[0]}, true
}

// Add returns b + o. Overflow above 128 bits is an error.
func (b Balance) Add(o Balance) (Balance, error) {
	sum := new(uint256.Int).Add(b.wide(), o.wide())
	res, ok := balanceFromWide(sum)
	if !ok {
		return Balance{}, errors.Wrap(errors.ErrOverflow, "balance add")
	}
	return res, nil
}

// Sub returns b - o. Going below zero is an error.
func (b Balance) Sub(o Balance) (Balance, error) {
	if b.Compare(o) < 0 {
		return Balance{}, errors.Wrap(errors.ErrOverflow, "balance sub")
	}
	diff := new(uint256.Int).Sub(b.wide(), o.wide())
	res, _ := balanceFromWide(diff)
	return res, nil
}

// Compare returns -1, 0 or 1 when b is respectively less than, equal to
// or greater than o.
func (b Balance) Compare(o Balance) int {
	return b.wide().Cmp(o.wide())
}

// IsZero returns true if this is a zero amount.
func (b Balance) IsZero() bool {
	return b.hi == 0 && b.lo == 0
}

// String returns the decimal representation.
func (b Balance) String() string {
	return b.wide().Dec()
}

// MarshalJSON encodes the balance as a decimal string. Amounts are always
// strings on the wire because 128-bit numbers do not survive JSON number
// parsing in most clients.
func (b Balance) MarshalJSON() ([]byte, error) {
	return []byte(`"` + b.String() + `"`), nil
}

func (b *Balance) UnmarshalJSON(raw []byte) error {
	if len(raw) < 2 || raw[0] != '"' || raw[len(raw)-1] != '"' {
		return errors.Wrap(errors.ErrInput, "balance must be a string")
	}
	val, err := ParseBalance(string(raw[1 : len(raw)-1]))
	if err != nil {
		return err
	}
	*b = val
	return nil
}

// MarshalAmino encodes the balance for the state codec, reusing the
// decimal string form.
func (b Balance) MarshalAmino() (string, error) {
	return b.String(), nil
}

func (b *Balance) UnmarshalAmino(raw string) error {
	val, err := ParseBalance(raw)
	if err != nil {
		return err
	}
	*b = val
	return nil
}

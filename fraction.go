package mintgate

import (
	"encoding/json"
	"fmt"
	"math/bits"
	"strconv"
	"strings"

	"github.com/holiman/uint256"
	"github.com/iov-one/mintgate/errors"
)

var (
	// ErrZeroDenominator is returned when a fraction carries a zero
	// denominator.
	ErrZeroDenominator = errors.Register(20, "zero denominator")

	// ErrFractionAboveOne is returned when a fraction represents a value
	// greater than one.
	ErrFractionAboveOne = errors.Register(21, "fraction greater than one")
)

// Fraction is an exact rational number between 0 and 1, used as a
// percentage for fee and royalty math. There is no requirement for it to
// be reduced, 1/2 and 50/100 are equal values. Fraction is immutable and
// copied by value everywhere.
type Fraction struct {
	Num uint32
	Den uint32
}

// NewFraction returns a validated fraction.
func NewFraction(num, den uint32) (Fraction, error) {
	f := Fraction{Num: num, Den: den}
	if err := f.Validate(); err != nil {
		return Fraction{}, err
	}
	return f, nil
}

// Validate returns an error if this fraction represents an invalid value.
func (f Fraction) Validate() error {
	if f.Den == 0 {
		return errors.Wrap(ErrZeroDenominator, f.debugString())
	}
	if f.Num > f.Den {
		return errors.Wrap(ErrFractionAboveOne, f.debugString())
	}
	return nil
}

// Multiply applies this fraction to the given amount, rounding toward
// zero: floor(num * amount / den). The computation widens to 256 bits so
// it is exact for any 128-bit amount. Callers splitting one amount into
// several shares must compute the last share by subtraction, not by an
// independent Multiply, or the shares can fail to sum up to the amount.
func (f Fraction) Multiply(amount Balance) Balance {
	num := uint256.NewInt(uint64(f.Num))
	den := uint256.NewInt(uint64(f.Den))
	prod := new(uint256.Int).Mul(num, amount.wide())
	res, _ := balanceFromWide(prod.Div(prod, den))
	return res
}

// Compare orders two fractions by the effect they have on the maximum
// representable balance. Comparing scaled values instead of numerators
// makes unreduced fractions equal: 1/2 and 50/100 order the same.
func (f Fraction) Compare(o Fraction) int {
	return f.Multiply(MaxBalance).Compare(o.Multiply(MaxBalance))
}

// Equals returns true when both fractions represent the same value, even
// if expressed with different denominators.
func (f Fraction) Equals(o Fraction) bool {
	return f.Compare(o) == 0
}

// SumExceedsOne reports whether f + o is one or more. The check is exact,
// done by integer cross multiplication: num1*den2 + num2*den1 >= den1*den2.
// Each product fits in 64 bits but their sum can carry, so the addition
// must track the carry bit.
func (f Fraction) SumExceedsOne(o Fraction) bool {
	left, carry := bits.Add64(uint64(f.Num)*uint64(o.Den), uint64(o.Num)*uint64(f.Den), 0)
	return carry != 0 || left >= uint64(f.Den)*uint64(o.Den)
}

// String returns a human readable fraction representation.
func (f Fraction) String() string {
	if f.Num == 0 {
		return "0"
	}
	if f.Den == 1 {
		return fmt.Sprint(f.Num)
	}
	return f.debugString()
}

func (f Fraction) debugString() string {
	return fmt.Sprintf("%d/%d", f.Num, f.Den)
}

// ParseFractionString parses a "num/den" or "num" string into a fraction.
func ParseFractionString(raw string) (Fraction, error) {
	chunks := strings.SplitN(raw, "/", 2)
	num, err := strconv.ParseUint(chunks[0], 10, 32)
	if err != nil {
		return Fraction{}, errors.Wrap(errors.ErrInput, "invalid numerator")
	}
	den := uint64(1)
	if len(chunks) == 2 {
		den, err = strconv.ParseUint(chunks[1], 10, 32)
		if err != nil {
			return Fraction{}, errors.Wrap(errors.ErrInput, "invalid denominator")
		}
	}
	return NewFraction(uint32(num), uint32(den))
}

func (f Fraction) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Num uint32 `json:"num"`
		Den uint32 `json:"den"`
	}{Num: f.Num, Den: f.Den})
}

func (f *Fraction) UnmarshalJSON(raw []byte) error {
	// Prioritize the human readable format.
	var human string
	if err := json.Unmarshal(raw, &human); err == nil {
		frac, err := ParseFractionString(human)
		if err != nil {
			return errors.Wrap(err, "fraction string")
		}
		*f = frac
		return nil
	}

	var frac struct {
		Num uint32 `json:"num"`
		Den uint32 `json:"den"`
	}
	if err := json.Unmarshal(raw, &frac); err != nil {
		return err
	}
	f.Num = frac.Num
	f.Den = frac.Den
	return nil
}

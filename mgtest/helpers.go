package mgtest

import (
	"testing"

	"github.com/iov-one/mintgate"
)

// Frac builds a fraction from its literal parts.
func Frac(num, den uint32) mintgate.Fraction {
	return mintgate.Fraction{Num: num, Den: den}
}

// Bal builds a balance from a uint64 literal.
func Bal(amount uint64) mintgate.Balance {
	return mintgate.NewBalance(amount)
}

// MustBalance parses a decimal balance string, failing the test on
// malformed input. Use it for amounts beyond the uint64 range.
func MustBalance(t testing.TB, raw string) mintgate.Balance {
	t.Helper()
	b, err := mintgate.ParseBalance(raw)
	if err != nil {
		t.Fatalf("parse balance %q: %+v", raw, err)
	}
	return b
}

// ApprovePayload builds the owner side approve payload with the given
// asking price.
func ApprovePayload(minPrice mintgate.Balance) string {
	return `{"min_price":"` + minPrice.String() + `"}`
}

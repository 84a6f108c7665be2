package mintgate

import (
	"regexp"

	"github.com/iov-one/mintgate/errors"
)

// AccountID identifies an account on the host chain: a user, a contract
// or the special fee collector. It is an opaque, validated string. The
// core only ever compares account ids and hands them to the host as
// payment destinations.
type AccountID string

// isValidAccountID follows the host account naming rules: 2 to 64
// lowercase alphanumeric characters, with `-` and `_` separators and `.`
// for subaccounts.
var isValidAccountID = regexp.MustCompile(`^[a-z0-9]+([-_.][a-z0-9]+)*$`).MatchString

// Validate returns an error if this is not an acceptable account id.
func (a AccountID) Validate() error {
	switch n := len(a); {
	case n == 0:
		return errors.Wrap(errors.ErrEmpty, "account id")
	case n < 2 || n > 64:
		return errors.Wrapf(errors.ErrInput, "account id length %d", n)
	}
	if !isValidAccountID(string(a)) {
		return errors.Wrapf(errors.ErrInput, "account id %q", a)
	}
	return nil
}

func (a AccountID) String() string {
	return string(a)
}

// GateID identifies a collectible. A valid gate id is 1 to 32 characters
// long and limited to ASCII letters, digits, `_` and `-`.
type GateID string

// ValidateGateID returns an error if the given gate id is malformed.
func ValidateGateID(id GateID) error {
	if n := len(id); n == 0 || n > 32 {
		return errors.Wrapf(errors.ErrInput, "gate id must be 1-32 chars, got %d", n)
	}
	for _, c := range []byte(id) {
		switch {
		case c >= 'a' && c <= 'z':
		case c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9':
		case c == '_' || c == '-':
		default:
			return errors.Wrapf(errors.ErrInput, "gate id %q contains %q", id, c)
		}
	}
	return nil
}

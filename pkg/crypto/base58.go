package crypto

import (
	"github.com/mr-tron/base58/base58"
	"github.com/pkg/errors"
)

// MaxBase58String is the maximum accepted length of a base58-encoded
// input string to the fromBase58 builtin, per protocol limit.
const MaxBase58String = 100

// Base58Encode encodes b using the standard (no-padding) base58
// alphabet.
func Base58Encode(b []byte) string {
	return base58.Encode(b)
}

// Base58Decode decodes s, rejecting inputs longer than MaxBase58String
// unless noLimit is set (for contexts that pre-validate length
// themselves; the fromBase58 builtin does not set it).
func Base58Decode(s string, noLimit bool) ([]byte, error) {
	if !noLimit && len(s) > MaxBase58String {
		return nil, errors.Errorf("base58 string length %d exceeds limit %d", len(s), MaxBase58String)
	}
	b, err := base58.Decode(s)
	if err != nil {
		return nil, errors.Wrap(err, "invalid base58 string")
	}
	return b, nil
}

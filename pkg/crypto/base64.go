package crypto

import (
	"encoding/base64"

	"github.com/pkg/errors"
)

// MaxBase64Bytes is the maximum decoded length accepted by the
// fromBase64 builtin unless constructed with NoLimit.
const MaxBase64Bytes = 32 * 1024

// Base64Encode encodes b with standard padding.
func Base64Encode(b []byte) string {
	return base64.StdEncoding.EncodeToString(b)
}

// Base64Decode decodes s, enforcing MaxBase64Bytes on the decoded
// output unless noLimit is set.
func Base64Decode(s string, noLimit bool) ([]byte, error) {
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, errors.Wrap(err, "invalid base64 string")
	}
	if !noLimit && len(b) > MaxBase64Bytes {
		return nil, errors.Errorf("base64 decoded length %d exceeds limit %d", len(b), MaxBase64Bytes)
	}
	return b, nil
}

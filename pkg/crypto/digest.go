// Package crypto provides the hashing and encoding primitives the diff
// engine treats as external collaborators: blake2b digests for lease
// and asset ids, and the base58/base64 codecs used both for rendering
// and for the RIDE built-in functions.
package crypto

import (
	"github.com/pkg/errors"
	"golang.org/x/crypto/blake2b"
)

// DigestSize is the length in bytes of a Digest, matching the Waves
// protocol's blake2b-256 based ids.
const DigestSize = 32

// Digest is a 32-byte blake2b-256 hash, used for asset ids, lease ids
// and transaction ids throughout the engine.
type Digest [DigestSize]byte

// NewDigestFromBytes validates the length of b and wraps it as a Digest.
func NewDigestFromBytes(b []byte) (Digest, error) {
	var d Digest
	if len(b) != DigestSize {
		return d, errors.Errorf("invalid digest length %d, expected %d", len(b), DigestSize)
	}
	copy(d[:], b)
	return d, nil
}

// Bytes returns the digest's raw bytes.
func (d Digest) Bytes() []byte {
	out := make([]byte, DigestSize)
	copy(out, d[:])
	return out
}

func (d Digest) String() string {
	return Base58Encode(d.Bytes())
}

// SecureHash computes the blake2b-256 digest of data.
func SecureHash(data []byte) (Digest, error) {
	h, err := blake2b.New256(nil)
	if err != nil {
		return Digest{}, errors.Wrap(err, "failed to create blake2b hasher")
	}
	if _, err := h.Write(data); err != nil {
		return Digest{}, errors.Wrap(err, "failed to hash data")
	}
	var d Digest
	copy(d[:], h.Sum(nil))
	return d, nil
}

// PublicKey is an opaque 32-byte Ed25519-shaped public key. The engine
// never verifies signatures itself; it only carries the key material
// through to an injected Verifier at the boundary (see pkg/ride).
type PublicKey [32]byte

func (p PublicKey) Bytes() []byte {
	out := make([]byte, len(p))
	copy(out, p[:])
	return out
}

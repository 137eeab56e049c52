package proto

import (
	"regexp"

	"github.com/pkg/errors"

	"github.com/Nekuips1x/Waves/pkg/crypto"
)

// AddressLength is the length in bytes of a Waves address: one version
// byte, one network (chain) byte, 20 bytes of public key hash, and a
// 4-byte checksum.
const AddressLength = 26

const addressVersion = 1

// Address is a 26-byte structured account identifier with an embedded
// network byte and checksum, validated on construction.
type Address struct {
	bytes [AddressLength]byte
}

// NewAddress builds an Address from its raw 26 bytes, validating
// version, network byte and checksum.
func NewAddress(scheme byte, raw [AddressLength]byte) (Address, error) {
	a := Address{bytes: raw}
	if raw[0] != addressVersion {
		return Address{}, errors.Errorf("invalid address version %d", raw[0])
	}
	if raw[1] != scheme {
		return Address{}, errors.Errorf("invalid address network byte %d, expected %d", raw[1], scheme)
	}
	sum, err := addressChecksum(raw[:22])
	if err != nil {
		return Address{}, err
	}
	for i := 0; i < 4; i++ {
		if raw[22+i] != sum[i] {
			return Address{}, errors.New("invalid address checksum")
		}
	}
	return a, nil
}

// MustAddressFromPublicKey derives the address for the given scheme and
// public key, panicking only on an unreachable hashing failure.
func MustAddressFromPublicKey(scheme byte, pk crypto.PublicKey) Address {
	a, err := AddressFromPublicKey(scheme, pk)
	if err != nil {
		panic(err)
	}
	return a
}

// AddressFromPublicKey derives the 26-byte address for pk under scheme.
func AddressFromPublicKey(scheme byte, pk crypto.PublicKey) (Address, error) {
	digest, err := crypto.SecureHash(pk.Bytes())
	if err != nil {
		return Address{}, err
	}
	var raw [AddressLength]byte
	raw[0] = addressVersion
	raw[1] = scheme
	copy(raw[2:22], digest.Bytes()[:20])
	sum, err := addressChecksum(raw[:22])
	if err != nil {
		return Address{}, err
	}
	copy(raw[22:], sum[:])
	return Address{bytes: raw}, nil
}

func addressChecksum(prefix []byte) ([4]byte, error) {
	var out [4]byte
	d, err := crypto.SecureHash(prefix)
	if err != nil {
		return out, err
	}
	copy(out[:], d.Bytes()[:4])
	return out, nil
}

func (a Address) Bytes() []byte {
	out := make([]byte, AddressLength)
	copy(out, a.bytes[:])
	return out
}

func (a Address) String() string {
	return crypto.Base58Encode(a.Bytes())
}

func (a Address) Scheme() byte {
	return a.bytes[1]
}

var aliasCharset = regexp.MustCompile(`^[-.0-9@_a-z]{4,30}$`)

// Alias is a short UTF-8 alias name, validated against the protocol's
// allowed charset and length range (4-30 chars).
type Alias struct {
	scheme byte
	name   string
}

// NewAlias validates and constructs an Alias.
func NewAlias(scheme byte, name string) (Alias, error) {
	if !aliasCharset.MatchString(name) {
		return Alias{}, errors.Errorf("invalid alias %q: must be 4-30 chars of [-.0-9@_a-z]", name)
	}
	return Alias{scheme: scheme, name: name}, nil
}

func (a Alias) String() string {
	return "alias:" + string(a.scheme) + ":" + a.name
}

func (a Alias) Name() string { return a.name }

// Recipient is either a resolved Address or an unresolved Alias; diff
// drivers must resolve it to an Address via the Blockchain view before
// building a Portfolio diff.
type Recipient struct {
	Address *Address
	Alias   *Alias
}

func NewRecipientFromAddress(a Address) Recipient { return Recipient{Address: &a} }
func NewRecipientFromAlias(al Alias) Recipient    { return Recipient{Alias: &al} }

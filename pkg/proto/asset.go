package proto

import (
	"github.com/pkg/errors"

	"github.com/Nekuips1x/Waves/pkg/crypto"
)

// AssetID is either the native (Waves) asset, a singleton, or an
// Issued variant carrying a 32-byte ByteStr asset id.
type AssetID struct {
	issued bool
	id     ByteStr
}

// WavesAsset is the native-asset singleton value.
var WavesAsset = AssetID{}

// NewIssuedAsset wraps a 32-byte asset id as an Issued AssetID.
func NewIssuedAsset(id ByteStr) (AssetID, error) {
	if len(id) != 32 {
		return AssetID{}, errors.Errorf("invalid asset id length %d, expected 32", len(id))
	}
	return AssetID{issued: true, id: id}, nil
}

func (a AssetID) IsWaves() bool { return !a.issued }

func (a AssetID) ID() (ByteStr, bool) {
	if !a.issued {
		return nil, false
	}
	return a.id, true
}

// Key returns a comparable string key for use as a Go map key.
func (a AssetID) Key() string {
	if !a.issued {
		return ""
	}
	return string(a.id)
}

func (a AssetID) Equal(other AssetID) bool {
	return a.issued == other.issued && a.id.Equal(other.id)
}

func (a AssetID) String() string {
	if !a.issued {
		return "WAVES"
	}
	return crypto.Base58Encode(a.id.Bytes())
}

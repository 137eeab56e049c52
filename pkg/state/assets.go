package state

import (
	"github.com/pkg/errors"

	"github.com/Nekuips1x/Waves/pkg/crypto"
	"github.com/Nekuips1x/Waves/pkg/proto"
)

// AssetScript pairs a compiled asset script with its estimated
// complexity.
type AssetScript struct {
	Script     []byte
	Complexity uint64
}

// AssetDescription is the full static + mutable record of an issued
// asset. It is created whole by an Issue action and then
// updated monotonically by reissue/burn/sponsor/setAssetScript.
type AssetDescription struct {
	OriginTxID        crypto.Digest
	Issuer            crypto.PublicKey
	Name              string
	Description       string
	Decimals          byte
	Reissuable        bool
	TotalVolume       *bigUint128
	LastUpdatedHeight proto.Height
	Script            *AssetScript
	SponsorshipRate   int64
	NFT               bool
}

// InfoUpdate carries the mutable, non-volume fields of an
// AssetDescription that an update (e.g. SetAssetScript) can change.
type InfoUpdate struct {
	Script          *AssetScript
	SponsorshipRate *int64
}

// VolumeUpdate carries a reissue/burn's delta to total volume and
// reissuable flag; two volume updates combine by field-wise
// addition.
type VolumeUpdate struct {
	VolumeDelta *bigUint128
	Reissuable  *bool
}

// NewVolumeUpdate builds a VolumeUpdate from a signed quantity delta
// (negative for burn, positive for reissue) and an optional reissuable
// flag override, for use by pkg/action's reissue/burn folding (the
// bigUint128 type itself stays unexported: Diff's merge algebra is the
// only code that needs to see inside it).
func NewVolumeUpdate(delta int64, reissuable *bool) (VolumeUpdate, error) {
	d, err := newBigUint128(delta)
	if err != nil {
		return VolumeUpdate{}, err
	}
	return VolumeUpdate{VolumeDelta: d, Reissuable: reissuable}, nil
}

// NewIssuedTotalVolume builds the initial TotalVolume for a freshly
// issued asset.
func NewIssuedTotalVolume(quantity int64) (*bigUint128, error) {
	return newBigUint128(quantity)
}

// AssetUpdate is an Ior-shaped ("Left-only, Right-only, Both") value:
// either an InfoUpdate, a VolumeUpdate, or both.
type AssetUpdate struct {
	Info   *InfoUpdate
	Volume *VolumeUpdate
}

// Combine merges two AssetUpdate values: Both-and-Both combines
// volume by field-wise addition and replaces info with the newer (o
// wins on Info when both have one).
func (a AssetUpdate) Combine(o AssetUpdate) (AssetUpdate, error) {
	out := AssetUpdate{}
	switch {
	case o.Info != nil:
		out.Info = o.Info
	default:
		out.Info = a.Info
	}
	switch {
	case a.Volume != nil && o.Volume != nil:
		merged, err := mergeVolume(*a.Volume, *o.Volume)
		if err != nil {
			return AssetUpdate{}, err
		}
		out.Volume = &merged
	case o.Volume != nil:
		out.Volume = o.Volume
	default:
		out.Volume = a.Volume
	}
	return out, nil
}

func mergeVolume(a, b VolumeUpdate) (VolumeUpdate, error) {
	var delta *bigUint128
	switch {
	case a.VolumeDelta != nil && b.VolumeDelta != nil:
		sum, err := a.VolumeDelta.add(b.VolumeDelta)
		if err != nil {
			return VolumeUpdate{}, errors.Wrap(err, "asset volume update")
		}
		delta = sum
	case b.VolumeDelta != nil:
		delta = b.VolumeDelta
	default:
		delta = a.VolumeDelta
	}
	reissuable := a.Reissuable
	if b.Reissuable != nil {
		reissuable = b.Reissuable
	}
	return VolumeUpdate{VolumeDelta: delta, Reissuable: reissuable}, nil
}

// LeaseStatus tags a LeaseDetails' lifecycle state.
type LeaseStatus int

const (
	LeaseActive LeaseStatus = iota
	LeaseCancelled
)

// LeaseDetails is the full record of a lease. Active ->
// Cancelled is its only transition, and it is terminal.
type LeaseDetails struct {
	SenderPK      crypto.PublicKey
	Recipient     proto.Recipient
	Amount        int64
	Status        LeaseStatus
	CancelHeight  proto.Height
	CancelTxID    *crypto.Digest
	SourceTxID    crypto.Digest
	Height        proto.Height
}

// Cancel transitions an Active lease to Cancelled. Cancelled is
// terminal: it is an error to cancel a lease that is not Active.
func (l LeaseDetails) Cancel(atHeight proto.Height, cancelTx crypto.Digest) (LeaseDetails, error) {
	if l.Status != LeaseActive {
		return LeaseDetails{}, errors.New("lease is not active")
	}
	l.Status = LeaseCancelled
	l.CancelHeight = atHeight
	l.CancelTxID = &cancelTx
	return l, nil
}

// Sponsorship is the sponsorship map's tagged union: "no info
// recorded yet" versus an explicit rate. rate == 0 cancels
// sponsorship but is still a recorded value.
type Sponsorship struct {
	HasInfo bool
	Rate    int64
}

var SponsorshipNoInfo = Sponsorship{}

func NewSponsorshipValue(rate int64) Sponsorship {
	return Sponsorship{HasInfo: true, Rate: rate}
}

// Combine treats NoInfo as the identity; otherwise the newer value
// wins.
func (s Sponsorship) Combine(o Sponsorship) Sponsorship {
	if !o.HasInfo {
		return s
	}
	return o
}

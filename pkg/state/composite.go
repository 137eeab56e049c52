package state

import (
	"github.com/Nekuips1x/Waves/pkg/crypto"
	"github.com/Nekuips1x/Waves/pkg/proto"
)

// Blockchain is the read-only interface over a committed snapshot that
// the diff engine treats as an external collaborator.
// Its shape is deliberately narrow: only what a diff driver or the
// evaluator's environment needs to read.
type Blockchain interface {
	Height() proto.Height
	WavesBalance(addr proto.Address) (int64, error)
	AssetBalance(addr proto.Address, asset proto.AssetID) (int64, error)
	LeaseBalance(addr proto.Address) (LeaseBalance, error)
	AssetDescription(asset proto.AssetID) (*AssetDescription, bool, error)
	AssetIsSponsored(asset proto.AssetID) (bool, int64, error)
	ResolveAlias(alias proto.Alias) (proto.Address, bool, error)
	AccountData(addr proto.Address, key string) (proto.DataEntry, bool, error)
	LeaseDetails(id crypto.Digest) (*LeaseDetails, bool, error)
	AccountScript(addr proto.Address) (*ScriptInfo, bool, error)
	AssetScript(asset proto.AssetID) (*AssetScript, bool, error)
}

// CompositeView overlays an in-flight Diff on a committed Blockchain
// snapshot: every read first consults the Diff, and falls
// back to the snapshot only when the Diff carries no entry for that
// key. This is how chained actions within one invocation, and
// sequential transactions within one block/UTX batch, observe their
// own prior writes.
type CompositeView struct {
	snapshot Blockchain
	diff     Diff
}

// NewCompositeView builds a CompositeView over snapshot overlaid with
// diff.
func NewCompositeView(snapshot Blockchain, diff Diff) *CompositeView {
	return &CompositeView{snapshot: snapshot, diff: diff}
}

// WithDiff returns a new CompositeView over the same snapshot with
// an additional diff combined in; sync-call recursion passes an
// updated overlay by value at each frame. The overlay itself is
// combined, not nested, so reads stay O(1) regardless of recursion
// depth.
func (c *CompositeView) WithDiff(extra Diff) (*CompositeView, error) {
	merged, err := Combine(c.diff, extra)
	if err != nil {
		return nil, err
	}
	return &CompositeView{snapshot: c.snapshot, diff: merged}, nil
}

func (c *CompositeView) Diff() Diff { return c.diff }

func (c *CompositeView) Height() proto.Height { return c.snapshot.Height() }

func (c *CompositeView) WavesBalance(addr proto.Address) (int64, error) {
	base, err := c.snapshot.WavesBalance(addr)
	if err != nil {
		return 0, err
	}
	if p, ok := c.diff.Portfolios[addr]; ok {
		sum, err := proto.CheckedAdd(proto.Amount(base), proto.Amount(p.Balance))
		if err != nil {
			return 0, err
		}
		return int64(sum), nil
	}
	return base, nil
}

func (c *CompositeView) AssetBalance(addr proto.Address, asset proto.AssetID) (int64, error) {
	base, err := c.snapshot.AssetBalance(addr, asset)
	if err != nil {
		return 0, err
	}
	if p, ok := c.diff.Portfolios[addr]; ok {
		if delta, ok := p.Assets[asset.Key()]; ok {
			sum, err := proto.CheckedAdd(proto.Amount(base), proto.Amount(delta))
			if err != nil {
				return 0, err
			}
			return int64(sum), nil
		}
	}
	return base, nil
}

func (c *CompositeView) LeaseBalance(addr proto.Address) (LeaseBalance, error) {
	base, err := c.snapshot.LeaseBalance(addr)
	if err != nil {
		return LeaseBalance{}, err
	}
	if p, ok := c.diff.Portfolios[addr]; ok {
		return base.combine(p.Lease)
	}
	return base, nil
}

func (c *CompositeView) AssetDescription(asset proto.AssetID) (*AssetDescription, bool, error) {
	if desc, ok := c.diff.IssuedAssets[asset.Key()]; ok {
		return &desc, true, nil
	}
	base, found, err := c.snapshot.AssetDescription(asset)
	if err != nil || !found {
		return base, found, err
	}
	if upd, ok := c.diff.UpdatedAssets[asset.Key()]; ok {
		merged := *base
		if upd.Info != nil {
			if upd.Info.Script != nil {
				merged.Script = upd.Info.Script
			}
			if upd.Info.SponsorshipRate != nil {
				merged.SponsorshipRate = *upd.Info.SponsorshipRate
			}
		}
		if upd.Volume != nil {
			if merged.TotalVolume != nil && upd.Volume.VolumeDelta != nil {
				sum, err := merged.TotalVolume.add(upd.Volume.VolumeDelta)
				if err != nil {
					return nil, false, err
				}
				merged.TotalVolume = sum
			}
			if upd.Volume.Reissuable != nil {
				merged.Reissuable = *upd.Volume.Reissuable
			}
		}
		return &merged, true, nil
	}
	return base, true, nil
}

func (c *CompositeView) AssetIsSponsored(asset proto.AssetID) (bool, int64, error) {
	if s, ok := c.diff.Sponsorship[asset.Key()]; ok {
		return s.HasInfo && s.Rate != 0, s.Rate, nil
	}
	return c.snapshot.AssetIsSponsored(asset)
}

func (c *CompositeView) ResolveAlias(alias proto.Alias) (proto.Address, bool, error) {
	if addr, ok := c.diff.Aliases[alias]; ok {
		return addr, true, nil
	}
	return c.snapshot.ResolveAlias(alias)
}

func (c *CompositeView) AccountData(addr proto.Address, key string) (proto.DataEntry, bool, error) {
	if kv, ok := c.diff.AccountData[addr]; ok {
		if entry, ok := kv[key]; ok {
			if entry.IsEmpty() {
				return proto.DataEntry{}, false, nil
			}
			return entry, true, nil
		}
	}
	return c.snapshot.AccountData(addr, key)
}

func (c *CompositeView) LeaseDetails(id crypto.Digest) (*LeaseDetails, bool, error) {
	if l, ok := c.diff.LeaseState[id]; ok {
		return &l, true, nil
	}
	return c.snapshot.LeaseDetails(id)
}

func (c *CompositeView) AccountScript(addr proto.Address) (*ScriptInfo, bool, error) {
	if s, ok := c.diff.Scripts[addr]; ok {
		return s, s != nil, nil
	}
	return c.snapshot.AccountScript(addr)
}

func (c *CompositeView) AssetScript(asset proto.AssetID) (*AssetScript, bool, error) {
	if s, ok := c.diff.AssetScripts[asset.Key()]; ok {
		return s, s != nil, nil
	}
	return c.snapshot.AssetScript(asset)
}

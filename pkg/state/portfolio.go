// Package state implements the Diff data model and its merge
// algebra, the composite blockchain view, and sponsorship arithmetic.
// The diff engine is a pure function of a snapshot and a transaction,
// so nothing in this package assumes a persistent node: validation
// folds diffs in memory and hands the result to the block applier.
package state

import (
	"github.com/pkg/errors"

	"github.com/Nekuips1x/Waves/pkg/proto"
)

// LeaseBalance tracks the amount leased in and out of an account.
type LeaseBalance struct {
	In  int64
	Out int64
}

func (l LeaseBalance) combine(o LeaseBalance) (LeaseBalance, error) {
	in, err := proto.CheckedAdd(proto.Amount(l.In), proto.Amount(o.In))
	if err != nil {
		return LeaseBalance{}, errors.Wrap(err, "lease balance in")
	}
	out, err := proto.CheckedAdd(proto.Amount(l.Out), proto.Amount(o.Out))
	if err != nil {
		return LeaseBalance{}, errors.Wrap(err, "lease balance out")
	}
	return LeaseBalance{In: int64(in), Out: int64(out)}, nil
}

func (l LeaseBalance) isZero() bool { return l.In == 0 && l.Out == 0 }

// Portfolio is the per-address tuple of base-asset balance, lease
// balance, and a mapping of issued-asset balances.
type Portfolio struct {
	Balance int64
	Lease   LeaseBalance
	Assets  map[string]int64 // keyed by AssetID.Key()
}

// NewPortfolio builds a Portfolio from a single Waves-balance delta.
func NewPortfolio(balance int64) Portfolio {
	return Portfolio{Balance: balance}
}

// NewAssetPortfolio builds a Portfolio describing a single issued-asset
// balance delta.
func NewAssetPortfolio(asset proto.AssetID, amount int64) Portfolio {
	return Portfolio{Assets: map[string]int64{asset.Key(): amount}}
}

// IsEmpty reports whether every field of p sums to zero; all-zero
// portfolios are elided on merge.
func (p Portfolio) IsEmpty() bool {
	if p.Balance != 0 || !p.Lease.isZero() {
		return false
	}
	for _, v := range p.Assets {
		if v != 0 {
			return false
		}
	}
	return true
}

// Combine merges two portfolios field-wise with checked addition.
func (p Portfolio) Combine(o Portfolio) (Portfolio, error) {
	balance, err := proto.CheckedAdd(proto.Amount(p.Balance), proto.Amount(o.Balance))
	if err != nil {
		return Portfolio{}, errors.Wrap(err, "portfolio waves balance")
	}
	lease, err := p.Lease.combine(o.Lease)
	if err != nil {
		return Portfolio{}, err
	}
	assets := make(map[string]int64, len(p.Assets)+len(o.Assets))
	for k, v := range p.Assets {
		assets[k] = v
	}
	for k, v := range o.Assets {
		sum, err := proto.CheckedAdd(proto.Amount(assets[k]), proto.Amount(v))
		if err != nil {
			return Portfolio{}, errors.Wrapf(err, "portfolio asset balance %q", k)
		}
		assets[k] = int64(sum)
	}
	for k, v := range assets {
		if v == 0 {
			delete(assets, k)
		}
	}
	return Portfolio{Balance: int64(balance), Lease: lease, Assets: assets}, nil
}

package diffengine

import (
	"github.com/Nekuips1x/Waves/pkg/errs"
	"github.com/Nekuips1x/Waves/pkg/proto"
	"github.com/Nekuips1x/Waves/pkg/state"
)

// diffSponsorFee computes a SponsorFeeTx's Diff: only the
// asset's issuer may sponsor it, and Rate == 0 cancels an existing
// sponsorship rather than deleting the record: Sponsorship is a
// tagged union, NoInfo vs an explicit rate.
func (e *Engine) diffSponsorFee(view *state.CompositeView, tx proto.SponsorFeeTx) (state.Diff, error) {
	if tx.Rate < 0 {
		return state.Diff{}, errs.NewNonPositiveAmount("sponsorship rate must not be negative")
	}
	desc, found, err := view.AssetDescription(tx.Asset)
	if err != nil {
		return state.Diff{}, errs.NewGenericError(err.Error())
	}
	if !found {
		return state.Diff{}, errs.NewUnissuedAsset("sponsor fee for unknown asset " + tx.Asset.String())
	}
	senderPK, found, err := e.PubKeys.PublicKeyByAddress(tx.Sender())
	if err != nil {
		return state.Diff{}, errs.NewGenericError(err.Error())
	}
	if !found {
		return state.Diff{}, errs.NewGenericError("no public key on record for " + tx.Sender().String())
	}
	if desc.Issuer != senderPK {
		return state.Diff{}, errs.NewGenericError("only the issuer may sponsor asset " + tx.Asset.String())
	}

	d := state.Empty()
	d.Sponsorship[tx.Asset.Key()] = state.NewSponsorshipValue(tx.Rate)
	d.Portfolios[tx.Sender()] = state.NewPortfolio(-int64(tx.Fee()))

	affected := bindAffected(d, nil, nil)
	recordTx(&d, tx, affected, true, 0)
	return d, nil
}

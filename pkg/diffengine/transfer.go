package diffengine

import (
	"github.com/Nekuips1x/Waves/pkg/errs"
	"github.com/Nekuips1x/Waves/pkg/proto"
	"github.com/Nekuips1x/Waves/pkg/state"
)

// diffTransfer computes a TransferTx's Diff: a checked balance move
// from sender to recipient, with the sponsored-fee-asset restriction
// applied before any portfolio arithmetic.
func (e *Engine) diffTransfer(view *state.CompositeView, tx proto.TransferTx) (state.Diff, error) {
	if tx.Amount <= 0 {
		return state.Diff{}, errs.NewNonPositiveAmount("transfer amount must be positive")
	}
	recipient, err := resolveRecipient(view, tx.Recipient)
	if err != nil {
		return state.Diff{}, err
	}
	if !tx.Asset.IsWaves() {
		if _, found, err := view.AssetDescription(tx.Asset); err != nil {
			return state.Diff{}, errs.NewGenericError(err.Error())
		} else if !found {
			return state.Diff{}, errs.NewUnissuedAsset("transfer of unknown asset " + tx.Asset.String())
		}
	}
	if !tx.FeeAsset().IsWaves() {
		sponsored, _, err := view.AssetIsSponsored(tx.FeeAsset())
		if err != nil {
			return state.Diff{}, errs.NewGenericError(err.Error())
		}
		if !sponsored {
			return state.Diff{}, errs.NewInsufficientFee("fee asset " + tx.FeeAsset().String() + " is not sponsored")
		}
		script, found, err := view.AssetScript(tx.FeeAsset())
		if err != nil {
			return state.Diff{}, errs.NewGenericError(err.Error())
		}
		if found && script != nil {
			return state.Diff{}, errs.NewGenericError("sponsored fee asset " + tx.FeeAsset().String() + " has a script, sponsorship cannot be used to pay for transfers")
		}
	}
	// The explicit fee+amount sum overflow check is a legacy rule that
	// Ride4DApps retired; afterwards only the portfolio algebra's own
	// checked addition applies.
	if !e.Activation.Ride4DAppsActive(uint64(view.Height())) {
		if _, err := proto.CheckedAdd(tx.Amount, tx.Fee()); err != nil {
			return state.Diff{}, errs.NewOverflowError("sum of transfer amount and fee")
		}
	}

	d := state.Empty()
	senderPortfolio, err := senderSpendPortfolio(tx)
	if err != nil {
		return state.Diff{}, err
	}
	d.Portfolios[tx.Sender()] = senderPortfolio
	recvPortfolio := portfolioDelta(tx.Asset, int64(tx.Amount))
	if recipient == tx.Sender() {
		merged, err := d.Portfolios[tx.Sender()].Combine(recvPortfolio)
		if err != nil {
			return state.Diff{}, errs.NewAccountBalanceError(err.Error())
		}
		d.Portfolios[tx.Sender()] = merged
	} else {
		d.Portfolios[recipient] = recvPortfolio
	}

	affected := bindAffected(d, nil, nil)
	recordTx(&d, tx, affected, true, 0)
	return d, nil
}

// senderSpendPortfolio builds the sender's side of a transfer: the
// amount leaves in tx.Asset, the fee leaves in tx.FeeAsset(), combined
// field-wise when they coincide: fee and amount in the same asset
// sum via checked addition.
func senderSpendPortfolio(tx proto.TransferTx) (state.Portfolio, error) {
	amountSide := portfolioDelta(tx.Asset, -int64(tx.Amount))
	feeSide := portfolioDelta(tx.FeeAsset(), -int64(tx.Fee()))
	merged, err := amountSide.Combine(feeSide)
	if err != nil {
		return state.Portfolio{}, errs.NewAccountBalanceError(err.Error())
	}
	return merged, nil
}

func portfolioDelta(asset proto.AssetID, amount int64) state.Portfolio {
	if asset.IsWaves() {
		return state.NewPortfolio(amount)
	}
	return state.NewAssetPortfolio(asset, amount)
}

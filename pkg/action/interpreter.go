package action

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Nekuips1x/Waves/pkg/crypto"
	"github.com/Nekuips1x/Waves/pkg/errs"
	"github.com/Nekuips1x/Waves/pkg/proto"
	"github.com/Nekuips1x/Waves/pkg/settings"
	"github.com/Nekuips1x/Waves/pkg/state"
)

// AssetScriptRunner is the interpreter's sole dependency on pkg/ride:
// evaluating a compiled asset script against a synthetic PseudoTx and
// reporting whether the action is allowed. Kept as an interface
// rather than a direct *ride.Evaluator dependency so the fold itself
// stays free of the evaluator's own construction concerns.
type AssetScriptRunner interface {
	Run(script []byte, tx proto.PseudoTx, budget uint64) (allowed bool, consumed uint64, log []errs.LogEntry, err error)
}

// FoldContext carries everything Fold needs beyond the actions
// themselves: the identity and ambient settings of the invocation the
// actions were produced by.
type FoldContext struct {
	Caller    proto.Address
	CallerPK  crypto.PublicKey
	TxID      crypto.Digest
	Height    proto.Height
	Timestamp uint64
	Version   settings.StdLibVersion
	Activation settings.ActivationHeights
	Scripts   AssetScriptRunner

	// RemainingBudget is the complexity still available for asset-script
	// invocations this fold may trigger, shared with the rest of the
	// invocation.
	RemainingBudget uint64
}

// Interpreter folds an ordered list of Action values into a
// state.Diff.
type Interpreter struct{}

func NewInterpreter() *Interpreter { return &Interpreter{} }

// Fold left-folds actions into a Diff over view, in order, returning
// the combined complexity spent on any asset-script invocations along
// the way. On failure it returns either an errs.RejectError or an
// errs.FailedTransactionError (never a bare error) so callers can
// branch on the two-tier taxonomy without a type switch on arbitrary
// wrapped errors.
func (i *Interpreter) Fold(view *state.CompositeView, actions []Action, ctx FoldContext) (state.Diff, uint64, error) {
	if err := validateCounts(actions, ctx.Version); err != nil {
		return state.Diff{}, 0, err
	}

	acc := state.Empty()
	var spent uint64
	cancelledThisFold := map[crypto.Digest]struct{}{}
	var totalWriteSetBytes int

	for _, a := range actions {
		cur, err := view.WithDiff(acc)
		if err != nil {
			return state.Diff{}, spent, errs.NewGenericError(err.Error())
		}

		d, c, err := i.foldOne(cur, a, ctx, cancelledThisFold, &totalWriteSetBytes)
		spent += c
		if err != nil {
			return state.Diff{}, spent, err
		}
		acc, err = state.Combine(acc, d)
		if err != nil {
			return state.Diff{}, spent, wrapBalanceError(err, spent)
		}
	}

	return acc, spent, nil
}

func validateCounts(actions []Action, version settings.StdLibVersion) error {
	var nonData, data int
	for _, a := range actions {
		if a.IsDataOp() {
			data++
		} else {
			nonData++
		}
	}
	if nonData > settings.MaxCallableActions(version) {
		return errs.NewGenericError("too many callable actions in one invocation")
	}
	if data > settings.MaxWriteSetSize(version) {
		return errs.NewGenericError("too many data entries in one invocation")
	}
	return nil
}

func (i *Interpreter) foldOne(view *state.CompositeView, a Action, ctx FoldContext, cancelled map[crypto.Digest]struct{}, writeSetBytes *int) (state.Diff, uint64, error) {
	switch a.Kind {
	case AssetTransfer:
		return i.foldTransfer(view, a, ctx)
	case Data:
		return i.foldData(a, ctx, writeSetBytes)
	case Issue:
		return i.foldIssue(view, a, ctx)
	case Reissue:
		return i.foldReissue(view, a, ctx)
	case Burn:
		return i.foldBurn(view, a, ctx)
	case SponsorFee:
		return i.foldSponsorFee(view, a, ctx)
	case Lease:
		return i.foldLease(view, a, ctx)
	case LeaseCancel:
		return i.foldLeaseCancel(view, a, ctx, cancelled)
	default:
		return state.Diff{}, 0, errs.NewGenericError("unknown action kind")
	}
}

func (i *Interpreter) foldTransfer(view *state.CompositeView, a Action, ctx FoldContext) (state.Diff, uint64, error) {
	if a.Amount < 0 {
		return state.Diff{}, 0, negativeAmountError(ctx, fmt.Sprintf("Negative transfer amount = %d", a.Amount))
	}
	recipient, err := resolveRecipient(view, a.Recipient)
	if err != nil {
		return state.Diff{}, 0, err
	}

	d := state.Empty()
	d.Portfolios[ctx.Caller] = portfolioDelta(a.Asset, -a.Amount)
	d.Portfolios[recipient] = combinePortfolio(d.Portfolios[recipient], portfolioDelta(a.Asset, a.Amount))

	consumed, err := i.invokeAssetScriptIfScripted(view, a.Asset, ctx, func(txID crypto.Digest) proto.PseudoTx {
		return proto.NewPseudoTransfer(txID, ctx.Timestamp, ctx.Caller, a.Recipient, proto.Amount(a.Amount), a.Asset)
	})
	if err != nil {
		return state.Diff{}, consumed, err
	}
	return d, consumed, nil
}

func (i *Interpreter) foldData(a Action, ctx FoldContext, writeSetBytes *int) (state.Diff, uint64, error) {
	maxKey := settings.MaxKeySize(ctx.Version)
	if err := proto.ValidateKey(a.Entry.Key, maxKey, settings.EmptyKeyAllowed(ctx.Version)); err != nil {
		return state.Diff{}, 0, errs.NewGenericError("data action: " + err.Error())
	}
	*writeSetBytes += a.Entry.BinarySize()
	if ctx.Activation.TotalDataEntriesBytesCheckActive(uint64(ctx.Height)) && *writeSetBytes > settings.MaxTotalWriteSetSizeInBytes {
		msg := "total write set size exceeds the limit"
		if ctx.Activation.SyncDAppChecksActive(uint64(ctx.Height)) {
			return state.Diff{}, 0, errs.NewWriteSetTooLarge(msg)
		}
		return state.Diff{}, 0, errs.NewDAppExecutionError(msg, 0, nil)
	}
	d := state.Empty()
	d.AccountData[ctx.Caller] = map[string]proto.DataEntry{a.Entry.Key: a.Entry}
	return d, 0, nil
}

func (i *Interpreter) foldIssue(view *state.CompositeView, a Action, ctx FoldContext) (state.Diff, uint64, error) {
	if a.Quantity <= 0 {
		return state.Diff{}, 0, errs.NewNonPositiveAmount("issue quantity must be positive")
	}
	assetDigest, err := crypto.DeriveAssetID(ctx.TxID, a.Nonce)
	if err != nil {
		return state.Diff{}, 0, errs.NewGenericError(err.Error())
	}
	assetID, err := proto.NewIssuedAsset(proto.ByteStr(assetDigest.Bytes()))
	if err != nil {
		return state.Diff{}, 0, errs.NewGenericError(err.Error())
	}
	if _, found, err := view.AssetDescription(assetID); err != nil {
		return state.Diff{}, 0, errs.NewGenericError(err.Error())
	} else if found {
		msg := "asset " + assetID.String() + " is already issued"
		if ctx.Activation.SyncDAppChecksActive(uint64(ctx.Height)) {
			return state.Diff{}, 0, errs.NewAssetAlreadyExists(msg)
		}
		return state.Diff{}, 0, errs.NewDAppExecutionError(msg, 0, nil)
	}

	totalVolume, err := state.NewIssuedTotalVolume(a.Quantity)
	if err != nil {
		return state.Diff{}, 0, errs.NewGenericError(err.Error())
	}

	d := state.Empty()
	d.IssuedAssets[assetID.Key()] = state.AssetDescription{
		OriginTxID:        ctx.TxID,
		Issuer:            ctx.CallerPK,
		Name:              a.Name,
		Description:       a.Description,
		Decimals:          a.Decimals,
		Reissuable:        a.Reissuable,
		TotalVolume:       totalVolume,
		LastUpdatedHeight: ctx.Height,
		NFT:               a.Decimals == 0 && a.Quantity == 1 && !a.Reissuable,
	}
	d.Portfolios[ctx.Caller] = portfolioDelta(assetID, a.Quantity)
	return d, 0, nil
}

func (i *Interpreter) foldReissue(view *state.CompositeView, a Action, ctx FoldContext) (state.Diff, uint64, error) {
	if a.Quantity < 0 {
		return state.Diff{}, 0, negativeAmountError(ctx, fmt.Sprintf("Negative reissue quantity = %d", a.Quantity))
	}
	if a.Quantity == 0 {
		return state.Diff{}, 0, errs.NewNonPositiveAmount("reissue quantity must be positive")
	}
	desc, found, err := view.AssetDescription(a.Asset)
	if err != nil {
		return state.Diff{}, 0, errs.NewGenericError(err.Error())
	}
	if !found {
		return state.Diff{}, 0, errs.NewUnissuedAsset("reissue of unknown asset " + a.Asset.String())
	}
	if !desc.Reissuable {
		return state.Diff{}, 0, errs.NewDAppExecutionError("asset "+a.Asset.String()+" is not reissuable", 0, nil)
	}

	reissuable := a.Reissuable
	vol, err := state.NewVolumeUpdate(a.Quantity, &reissuable)
	if err != nil {
		return state.Diff{}, 0, errs.NewGenericError(err.Error())
	}
	d := state.Empty()
	d.UpdatedAssets[a.Asset.Key()] = state.AssetUpdate{Volume: &vol}
	d.Portfolios[ctx.Caller] = portfolioDelta(a.Asset, a.Quantity)

	consumed, err := i.invokeAssetScriptIfScripted(view, a.Asset, ctx, func(txID crypto.Digest) proto.PseudoTx {
		return proto.NewPseudoReissue(txID, ctx.Timestamp, ctx.Caller, a.Asset, a.Quantity, a.Reissuable)
	})
	if err != nil {
		return state.Diff{}, consumed, err
	}
	return d, consumed, nil
}

func (i *Interpreter) foldBurn(view *state.CompositeView, a Action, ctx FoldContext) (state.Diff, uint64, error) {
	if a.Quantity < 0 {
		return state.Diff{}, 0, negativeAmountError(ctx, fmt.Sprintf("Negative burn quantity = %d", a.Quantity))
	}
	if a.Quantity == 0 {
		return state.Diff{}, 0, errs.NewNonPositiveAmount("burn quantity must be positive")
	}
	_, found, err := view.AssetDescription(a.Asset)
	if err != nil {
		return state.Diff{}, 0, errs.NewGenericError(err.Error())
	}
	if !found {
		return state.Diff{}, 0, errs.NewUnissuedAsset("burn of unknown asset " + a.Asset.String())
	}

	vol, err := state.NewVolumeUpdate(-a.Quantity, nil)
	if err != nil {
		return state.Diff{}, 0, errs.NewGenericError(err.Error())
	}
	d := state.Empty()
	d.UpdatedAssets[a.Asset.Key()] = state.AssetUpdate{Volume: &vol}
	d.Portfolios[ctx.Caller] = portfolioDelta(a.Asset, -a.Quantity)

	consumed, err := i.invokeAssetScriptIfScripted(view, a.Asset, ctx, func(txID crypto.Digest) proto.PseudoTx {
		return proto.NewPseudoBurn(txID, ctx.Timestamp, ctx.Caller, a.Asset, a.Quantity)
	})
	if err != nil {
		return state.Diff{}, consumed, err
	}
	return d, consumed, nil
}

func (i *Interpreter) foldSponsorFee(view *state.CompositeView, a Action, ctx FoldContext) (state.Diff, uint64, error) {
	desc, found, err := view.AssetDescription(a.Asset)
	if err != nil {
		return state.Diff{}, 0, errs.NewGenericError(err.Error())
	}
	if !found {
		return state.Diff{}, 0, errs.NewUnissuedAsset("sponsor fee for unknown asset " + a.Asset.String())
	}
	if desc.Issuer != ctx.CallerPK {
		return state.Diff{}, 0, errs.NewDAppExecutionError("only the issuer may sponsor asset "+a.Asset.String(), 0, nil)
	}
	if a.MinSponsoredFee < 0 {
		return state.Diff{}, 0, errs.NewNonPositiveAmount("sponsor fee must not be negative")
	}

	d := state.Empty()
	d.Sponsorship[a.Asset.Key()] = state.NewSponsorshipValue(a.MinSponsoredFee)

	consumed, err := i.invokeAssetScriptIfScripted(view, a.Asset, ctx, func(txID crypto.Digest) proto.PseudoTx {
		return proto.NewPseudoSponsorFee(txID, ctx.Timestamp, ctx.Caller, a.Asset, a.MinSponsoredFee)
	})
	if err != nil {
		return state.Diff{}, consumed, err
	}
	return d, consumed, nil
}

func (i *Interpreter) foldLease(view *state.CompositeView, a Action, ctx FoldContext) (state.Diff, uint64, error) {
	if a.Amount < 0 {
		return state.Diff{}, 0, negativeAmountError(ctx, fmt.Sprintf("Negative lease amount = %d", a.Amount))
	}
	if a.Amount == 0 {
		return state.Diff{}, 0, errs.NewNonPositiveAmount("lease amount must be positive")
	}
	recipient, err := resolveRecipient(view, a.Recipient)
	if err != nil {
		return state.Diff{}, 0, err
	}
	if recipient == ctx.Caller {
		return state.Diff{}, 0, errs.NewDAppExecutionError("cannot lease to self", 0, nil)
	}

	leaseID, err := crypto.DeriveLeaseID(ctx.TxID, a.LeaseNonce, recipient.Bytes(), a.Amount)
	if err != nil {
		return state.Diff{}, 0, errs.NewGenericError(err.Error())
	}

	d := state.Empty()
	d.LeaseState[leaseID] = state.LeaseDetails{
		SenderPK:   ctx.CallerPK,
		Recipient:  a.Recipient,
		Amount:     a.Amount,
		Status:     state.LeaseActive,
		SourceTxID: ctx.TxID,
		Height:     ctx.Height,
	}
	callerPortfolio := state.Portfolio{Lease: state.LeaseBalance{Out: a.Amount}}
	recipientPortfolio := state.Portfolio{Lease: state.LeaseBalance{In: a.Amount}}
	d.Portfolios[ctx.Caller] = callerPortfolio
	d.Portfolios[recipient] = recipientPortfolio
	return d, 0, nil
}

func (i *Interpreter) foldLeaseCancel(view *state.CompositeView, a Action, ctx FoldContext, cancelled map[crypto.Digest]struct{}) (state.Diff, uint64, error) {
	if _, dup := cancelled[a.LeaseID]; dup {
		return state.Diff{}, 0, errs.NewDAppExecutionError("Duplicate LeaseCancel id(s): "+a.LeaseID.String(), 0, nil)
	}
	details, found, err := view.LeaseDetails(a.LeaseID)
	if err != nil {
		return state.Diff{}, 0, errs.NewGenericError(err.Error())
	}
	if !found {
		return state.Diff{}, 0, errs.NewGenericError("cancel of unknown lease " + a.LeaseID.String())
	}
	cancelledDetails, err := details.Cancel(ctx.Height, ctx.TxID)
	if err != nil {
		return state.Diff{}, 0, errs.NewDAppExecutionError(err.Error(), 0, nil)
	}
	cancelled[a.LeaseID] = struct{}{}

	d := state.Empty()
	d.LeaseState[a.LeaseID] = cancelledDetails

	recipient, err := resolveRecipient(view, details.Recipient)
	if err != nil {
		return state.Diff{}, 0, err
	}
	sender := proto.MustAddressFromPublicKey(ctx.Caller.Scheme(), details.SenderPK)
	d.Portfolios[sender] = state.Portfolio{Lease: state.LeaseBalance{Out: -details.Amount}}
	d.Portfolios[recipient] = combinePortfolio(d.Portfolios[recipient], state.Portfolio{Lease: state.LeaseBalance{In: -details.Amount}})
	return d, 0, nil
}

// invokeAssetScriptIfScripted runs ctx.Scripts against asset's compiled
// script, if any, against a PseudoTx built by makeTx. Returns the
// complexity it consumed; the caller charges that to the running
// total regardless of outcome, so even a rejected action's
// asset-script run is paid for.
func (i *Interpreter) invokeAssetScriptIfScripted(view *state.CompositeView, asset proto.AssetID, ctx FoldContext, makeTx func(crypto.Digest) proto.PseudoTx) (uint64, error) {
	if asset.IsWaves() {
		return 0, nil
	}
	script, found, err := view.AssetScript(asset)
	if err != nil {
		return 0, errs.NewGenericError(err.Error())
	}
	if !found || script == nil {
		return 0, nil
	}
	if ctx.Scripts == nil {
		return 0, errs.NewGenericError("asset is scripted but no asset-script runner was configured")
	}
	tx := makeTx(ctx.TxID)
	allowed, consumed, log, err := ctx.Scripts.Run(script.Script, tx, ctx.RemainingBudget)
	if err != nil {
		zap.S().Debugf("asset script %s failed for tx %s: %v", asset.String(), ctx.TxID.String(), err)
		return consumed, errs.NewAssetExecutionInActionError(err.Error(), consumed, log, asset)
	}
	if !allowed {
		zap.S().Debugf("asset script %s denied an action of tx %s", asset.String(), ctx.TxID.String())
		return consumed, errs.NewNotAllowedByAssetInActionError(consumed, log, asset)
	}
	return consumed, nil
}

func resolveRecipient(view *state.CompositeView, r proto.Recipient) (proto.Address, error) {
	if r.Address != nil {
		return *r.Address, nil
	}
	addr, found, err := view.ResolveAlias(*r.Alias)
	if err != nil {
		return proto.Address{}, errs.NewGenericError(err.Error())
	}
	if !found {
		return proto.Address{}, errs.NewAliasDoesNotExist(r.Alias.String())
	}
	return addr, nil
}

func portfolioDelta(asset proto.AssetID, amount int64) state.Portfolio {
	if asset.IsWaves() {
		return state.NewPortfolio(amount)
	}
	return state.NewAssetPortfolio(asset, amount)
}

func combinePortfolio(a, b state.Portfolio) state.Portfolio {
	merged, err := a.Combine(b)
	if err != nil {
		// Overflow here means two actions within the same fold already
		// overflow int64 before any existing balance is even consulted;
		// Fold's caller re-checks via state.Combine and surfaces
		// BalanceOverflow through the normal path, so this fallback
		// value is never observed as a committed diff.
		return a
	}
	return merged
}

// negativeAmountError branches a negative action amount on the
// transfers-check activation height: rejection since the
// height, fail-for-fee before it.
func negativeAmountError(ctx FoldContext, msg string) error {
	if ctx.Activation.SyncDAppChecksActive(uint64(ctx.Height)) {
		return errs.NewNegativeAmount(msg)
	}
	return errs.NewDAppExecutionError(msg, 0, nil)
}

func wrapBalanceError(err error, spent uint64) error {
	if fte, ok := err.(errs.FailedTransactionError); ok {
		return fte.WithAddedComplexity(spent)
	}
	return errs.NewGenericError(err.Error())
}

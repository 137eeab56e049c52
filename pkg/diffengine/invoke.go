package diffengine

import (
	"github.com/pkg/errors"

	"github.com/Nekuips1x/Waves/pkg/errs"
	"github.com/Nekuips1x/Waves/pkg/invoke"
	"github.com/Nekuips1x/Waves/pkg/proto"
	"github.com/Nekuips1x/Waves/pkg/ride"
	"github.com/Nekuips1x/Waves/pkg/settings"
	"github.com/Nekuips1x/Waves/pkg/state"
)

// diffInvoke computes an InvokeScriptTx's Diff: resolve
// the dApp and its compiled script, build the evaluator configuration
// the script's own declared StdLibVersion requires, run the callable
// through invoke.Applier (which threads a single shared complexity
// budget through every recursive call and asset-script check), then
// check the attached fee against the post-hoc minimum.
//
// A RejectError here (unresolvable dApp, no script at the dApp)
// propagates as this function's error; a FailedTransactionError,
// including a callable that cannot be resolved or is not found, is
// instead folded into an unapplied Diff
// carrying a populated InvokeScriptResult.ErrorMessage, so the
// transaction still enters the block and consumes its fee.
func (e *Engine) diffInvoke(view *state.CompositeView, tx proto.InvokeScriptTx) (state.Diff, error) {
	dApp, err := resolveRecipient(view, tx.DApp)
	if err != nil {
		return state.Diff{}, err
	}
	script, found, err := view.AccountScript(dApp)
	if err != nil {
		return state.Diff{}, errs.NewGenericError(err.Error())
	}
	if !found || script == nil {
		return state.Diff{}, errs.NewGenericError("no script at invoked dApp address " + dApp.String())
	}

	config := ride.BuiltinConfig{
		Version:             script.StdLibVersion,
		FixUnicodeFunctions: e.Features.FixUnicodeFunctions,
		UseNewPowPrecision:  e.Features.UseNewPowPrecision,
		MaxBytesLength:      32 * 1024,
		MaxStringLength:     32 * 1024,
		MaxListLength:       1000,
	}

	args, err := convertArgs(tx.Call.Args)
	if err != nil {
		return state.Diff{}, errs.NewGenericError("invoke arguments: " + err.Error())
	}
	payments, err := convertPayments(tx.Payments, config)
	if err != nil {
		return state.Diff{}, errs.NewGenericError("invoke payments: " + err.Error())
	}

	applier := invoke.NewApplier(
		view, e.Scheme, e.Resolver, e.PubKeys, e.Builtins, e.Costs, config,
		script.StdLibVersion, e.Features, e.Activation,
		tx.ID(), tx.Timestamp(), view.Height(), settings.TotalComplexityLimit,
	)

	_, consumed, log, callErr := applier.InvokeRoot(tx.Sender(), dApp, tx.Call.Name, args, payments)
	nonNftIssues := invoke.NonNftIssueCount(applier.View().Diff())
	attachedBase := invoke.ResolveAttachedFee(attachedFeeRate(view, tx))

	if callErr != nil {
		fte, ok := callErr.(errs.FailedTransactionError)
		if !ok {
			return state.Diff{}, callErr
		}
		return failForFee(tx, fte, log), nil
	}

	extraScriptInvocations := applier.ScriptRuns() - 1
	if extraScriptInvocations < 0 {
		extraScriptInvocations = 0
	}
	if feeErr := invoke.CheckMinFee(attachedBase, consumed, script.StdLibVersion, nonNftIssues, extraScriptInvocations); feeErr != nil {
		fte, ok := feeErr.(errs.FailedTransactionError)
		if !ok {
			return state.Diff{}, feeErr
		}
		return failForFee(tx, fte, log), nil
	}

	d := applier.View().Diff()
	d.ScriptsRun++
	d.ScriptsComplexity += consumed

	result := state.InvokeScriptResult{CalledAddresses: []proto.Address{dApp}}
	d.ScriptResults[tx.ID()] = result

	affected := bindAffected(d, &dApp, &result)
	recordTx(&d, tx, affected, true, consumed)
	return d, nil
}

// failForFee builds the fail-for-fee Diff: no balance change at all
// (the returned Diff does not debit the fee from the sender, and
// neither does any other part of this module), an unapplied TxRecord,
// and an InvokeScriptResult carrying the failure message for
// API/explorer surfacing.
func failForFee(tx proto.InvokeScriptTx, fte errs.FailedTransactionError, log []errs.LogEntry) state.Diff {
	d := state.Empty()
	d.ScriptsRun = 1
	d.ScriptsComplexity = fte.Complexity()
	if failedLog := failedErrorLog(fte); len(failedLog) > 0 {
		log = failedLog
	}
	result := state.InvokeScriptResult{ErrorMessage: fte.Error() + "\n" + ride.RenderLog(log)}
	d.ScriptResults[tx.ID()] = result
	affected := bindAffected(d, nil, &result)
	recordTx(&d, tx, affected, false, fte.Complexity())
	return d
}

// failedErrorLog recovers the execution log a failed-transaction
// variant carries (the failing dApp's or asset script's own bindings),
// so the rendered error message includes it alongside the caller's
// log.
func failedErrorLog(fte errs.FailedTransactionError) []errs.LogEntry {
	switch e := fte.(type) {
	case *errs.DAppExecutionError:
		return e.Log
	case *errs.AssetExecutionInActionError:
		return e.Log
	case *errs.NotAllowedByAssetInActionError:
		return e.Log
	default:
		return nil
	}
}

// attachedFeeRate reads the sponsorship rate (0 if unsponsored) for
// tx's declared fee asset, and returns (attached fee, rate) for
// invoke.ResolveAttachedFee.
func attachedFeeRate(view *state.CompositeView, tx proto.InvokeScriptTx) (int64, int64) {
	if tx.FeeAsset().IsWaves() {
		return int64(tx.Fee()), 0
	}
	sponsored, rate, err := view.AssetIsSponsored(tx.FeeAsset())
	if err != nil || !sponsored {
		return int64(tx.Fee()), 0
	}
	return int64(tx.Fee()), rate
}

// convertArgs converts an InvokeScriptTx's literal call arguments into
// evaluator Values. Parsing/compiling the invocation's bound
// expression tree is the CallableResolver's job; this is
// only the handful of primitive literal shapes the transaction's own
// wire format allows: Long, Boolean, ByteVector and String.
func convertArgs(args []interface{}) ([]ride.Value, error) {
	out := make([]ride.Value, len(args))
	for i, a := range args {
		switch v := a.(type) {
		case int64:
			out[i] = ride.NewLong(v)
		case bool:
			out[i] = ride.NewBool(v)
		case []byte:
			bv, err := ride.NewBytes(v, 1<<20)
			if err != nil {
				return nil, err
			}
			out[i] = bv
		case string:
			sv, err := ride.NewString(v, 1<<20)
			if err != nil {
				return nil, err
			}
			out[i] = sv
		default:
			return nil, errors.Errorf("unsupported invoke argument type %T", a)
		}
	}
	return out, nil
}

// convertPayments converts an InvokeScriptTx's attached payments into
// the AttachedPayment case-object values invoke.Applier expects.
func convertPayments(payments []proto.Payment, cfg ride.BuiltinConfig) ([]ride.Value, error) {
	out := make([]ride.Value, len(payments))
	for i, p := range payments {
		fields := map[string]ride.Value{"amount": ride.NewLong(int64(p.Amount))}
		if p.Asset.IsWaves() {
			fields["assetId"] = ride.NewUnit()
		} else {
			id, _ := p.Asset.ID()
			bv, err := ride.NewBytes(id.Bytes(), cfg.MaxBytesLength)
			if err != nil {
				return nil, err
			}
			fields["assetId"] = bv
		}
		out[i] = ride.NewCaseObject("AttachedPayment", fields)
	}
	return out, nil
}

// Package diffengine wires the diff algebra (pkg/state), the action
// interpreter (pkg/action), and the evaluator/invoke machinery
// (pkg/ride, pkg/invoke) into a single per-transaction-kind
// Transaction -> (Diff, error) function. DiffTransaction dispatches
// over transaction kinds to the simple balance-diff drivers
// (diffTransfer/diffData/diffLease/diffLeaseCancel/diffSponsorFee)
// and to diffInvoke's two-tier reject-vs-fail-for-fee handling. The
// package carries no long-lived node state: the engine is a pure
// function of a CompositeView and a Transaction.
package diffengine

import (
	"github.com/Nekuips1x/Waves/pkg/errs"
	"github.com/Nekuips1x/Waves/pkg/invoke"
	"github.com/Nekuips1x/Waves/pkg/proto"
	"github.com/Nekuips1x/Waves/pkg/ride"
	"github.com/Nekuips1x/Waves/pkg/settings"
	"github.com/Nekuips1x/Waves/pkg/state"
)

// Engine is the diff engine's top-level entry point: everything a
// driver needs beyond the transaction and the view it reads from.
type Engine struct {
	Scheme     byte
	Activation settings.ActivationHeights
	Features   settings.FeatureFlags
	Builtins   map[uint16]ride.Builtin
	Costs      ride.CostTable
	Resolver   invoke.CallableResolver
	PubKeys    invoke.PublicKeyLookup
}

// NewEngine constructs an Engine from its injected collaborators. None
// of Scheme/Activation/Features/Builtins/Costs/Resolver/PubKeys are
// ever read from a package-level default: every version-gated or
// environment-gated decision is made from what the caller supplies.
func NewEngine(scheme byte, activation settings.ActivationHeights, features settings.FeatureFlags, builtins map[uint16]ride.Builtin, costs ride.CostTable, resolver invoke.CallableResolver, pubkeys invoke.PublicKeyLookup) *Engine {
	return &Engine{
		Scheme:     scheme,
		Activation: activation,
		Features:   features,
		Builtins:   builtins,
		Costs:      costs,
		Resolver:   resolver,
		PubKeys:    pubkeys,
	}
}

// DiffTransaction computes tx's Diff against view. A
// returned error is always an errs.RejectError: the transaction never
// enters the block and the returned Diff is the zero value. A
// fail-for-fee outcome (errs.FailedTransactionError internally) is
// never surfaced as this function's error — it is folded into the
// returned Diff as an unapplied TxRecord plus a ScriptResult carrying
// the failure message, so that callers always merge exactly one Diff
// per accepted transaction regardless of whether it applied.
func (e *Engine) DiffTransaction(view *state.CompositeView, tx proto.Transaction) (state.Diff, error) {
	switch t := tx.(type) {
	case proto.TransferTx:
		return e.diffTransfer(view, t)
	case proto.DataTx:
		return e.diffData(view, t)
	case proto.LeaseTx:
		return e.diffLease(view, t)
	case proto.LeaseCancelTx:
		return e.diffLeaseCancel(view, t)
	case proto.SponsorFeeTx:
		return e.diffSponsorFee(view, t)
	case proto.InvokeScriptTx:
		return e.diffInvoke(view, t)
	default:
		return state.Diff{}, errs.NewGenericError("unsupported transaction type")
	}
}

// resolveRecipient turns a proto.Recipient into a concrete Address,
// failing with AliasDoesNotExist (a RejectError) when it names an
// alias with no current owner.
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

// bindAffected computes the affected-addresses set strictly after a
// driver's own diff is complete, unioning portfolio keys,
// account-data keys, and (for invoke transactions) every address an
// InvokeScriptResult recorded as called. Computing it before the
// action fold would miss addresses the fold touches.
func bindAffected(d state.Diff, dApp *proto.Address, result *state.InvokeScriptResult) map[proto.Address]struct{} {
	affected := map[proto.Address]struct{}{}
	for addr := range d.Portfolios {
		affected[addr] = struct{}{}
	}
	for addr := range d.AccountData {
		affected[addr] = struct{}{}
	}
	if dApp != nil {
		affected[*dApp] = struct{}{}
	}
	if result != nil {
		for _, addr := range result.CalledAddresses {
			affected[addr] = struct{}{}
		}
	}
	return affected
}

func recordTx(d *state.Diff, tx proto.Transaction, affected map[proto.Address]struct{}, applied bool, spentComplexity uint64) {
	id := tx.ID()
	d.Order = append(d.Order, id)
	d.Transactions[id] = state.TxRecord{
		Tx:              tx,
		Affected:        affected,
		Applied:         applied,
		SpentComplexity: spentComplexity,
	}
}

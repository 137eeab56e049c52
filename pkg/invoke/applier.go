package invoke

import (
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Nekuips1x/Waves/pkg/action"
	"github.com/Nekuips1x/Waves/pkg/crypto"
	"github.com/Nekuips1x/Waves/pkg/errs"
	"github.com/Nekuips1x/Waves/pkg/proto"
	"github.com/Nekuips1x/Waves/pkg/ride"
	"github.com/Nekuips1x/Waves/pkg/settings"
	"github.com/Nekuips1x/Waves/pkg/state"
)

// Callable is a compiled callable entry point plus its reentrancy
// flag: the header information a script declares alongside the
// compiled body the evaluator already consumes.
type Callable struct {
	Body      *ride.Expr
	Reentrant bool
}

// CallableResolver looks up a named callable on a compiled script.
// Parsing/compiling script bytes into callables is out of scope for
// the diff engine: this interface is the injected boundary, the same
// "already-compiled expression trees" contract the evaluator itself
// holds for the top-level invocation.
//
// args is forwarded so an implementation may bind it as Let-declared
// names in the returned body's scope; full Invocation-object binding
// (caller address, attached payments, transaction id) is likewise the
// resolver's responsibility, since that binding step belongs to script
// compilation rather than to the diff engine.
type CallableResolver interface {
	ResolveCallable(script []byte, functionName string, args []ride.Value) (Callable, bool, error)

	// ResolveVerifier looks up the compiled boolean-returning verifier
	// expression of an asset script, with the pseudo-transaction's
	// fields already bound into its evaluation scope.
	ResolveVerifier(script []byte, tx proto.PseudoTx) (*ride.Expr, error)
}

// PublicKeyLookup resolves an address to the public key that controls
// it, needed when a sync-called dApp itself issues an asset or
// sponsors one (those actions record the issuer's public key, not
// just its address).
type PublicKeyLookup interface {
	PublicKeyByAddress(addr proto.Address) (crypto.PublicKey, bool, error)
}

// Applier orchestrates synchronous dApp-to-dApp invocation:
// depth limiting, reentrancy gating, and folding each callee's actions
// into the shared CompositeView before control returns to the caller's
// evaluation. It implements both ride.SyncInvoker (so the evaluator can
// call back into it for a SyncInvoke node) and action.AssetScriptRunner
// (so the action interpreter can run an asset script through the same
// evaluator machinery).
type Applier struct {
	view       *state.CompositeView
	scheme     byte
	resolver   CallableResolver
	pubkeys    PublicKeyLookup
	builtins   map[uint16]ride.Builtin
	costs      ride.CostTable
	config     ride.BuiltinConfig
	version    settings.StdLibVersion
	features   settings.FeatureFlags
	activation settings.ActivationHeights
	maxDepth   int

	txID      crypto.Digest
	timestamp uint64
	height    proto.Height

	budget uint64 // remaining shared complexity pool for this transaction
	stack  []proto.Address

	// scriptRuns counts every callable evaluation and every asset-script
	// Run this Applier performs, the raw material for the fee formula's
	// "extra script invocations" term: the root callable
	// itself is not "extra", so callers subtract one from ScriptRuns().
	scriptRuns int

	interpreter *action.Interpreter
}

// ScriptRuns reports the total number of callable evaluations and
// asset-script checks performed across the whole call tree.
func (a *Applier) ScriptRuns() int { return a.scriptRuns }

// NewApplier builds an Applier bound to one invoke-script transaction's
// evaluation: the shared complexity budget and call stack live on the
// Applier itself so that every recursive Invoke call and every
// asset-script Run call draws from and charges against the same pool.
func NewApplier(
	view *state.CompositeView,
	scheme byte,
	resolver CallableResolver,
	pubkeys PublicKeyLookup,
	builtins map[uint16]ride.Builtin,
	costs ride.CostTable,
	config ride.BuiltinConfig,
	version settings.StdLibVersion,
	features settings.FeatureFlags,
	activation settings.ActivationHeights,
	txID crypto.Digest,
	timestamp uint64,
	height proto.Height,
	complexityBudget uint64,
) *Applier {
	return &Applier{
		view:        view,
		scheme:      scheme,
		resolver:    resolver,
		pubkeys:     pubkeys,
		builtins:    builtins,
		costs:       costs,
		config:      config,
		version:     version,
		features:    features,
		activation:  activation,
		maxDepth:    settings.MaxSyncDepth,
		txID:        txID,
		timestamp:   timestamp,
		height:      height,
		budget:      complexityBudget,
		interpreter: action.NewInterpreter(),
	}
}

// View returns the applier's current CompositeView, reflecting every
// action folded so far across the whole call tree.
func (a *Applier) View() *state.CompositeView { return a.view }

// RemainingBudget reports the complexity still available across the
// whole transaction.
func (a *Applier) RemainingBudget() uint64 { return a.budget }

// Invoke implements ride.SyncInvoker: evaluates functionName on dApp
// with args/payments, folds the resulting actions into the shared
// view, and returns the callable's own return value. The calling dApp
// is always the frame currently on top of the call stack: Invoke is
// only ever reached from inside that frame's own evaluation.
func (a *Applier) Invoke(dApp ride.Value, functionName string, args []ride.Value, payments []ride.Value) (ride.Value, uint64, []errs.LogEntry, error) {
	recipient, err := action.ValueToRecipient(dApp, a.scheme)
	if err != nil {
		return ride.Value{}, 0, nil, errs.NewGenericError("invoke: " + err.Error())
	}
	target, err := a.resolve(recipient)
	if err != nil {
		return ride.Value{}, 0, nil, err
	}
	if len(a.stack) == 0 {
		return ride.Value{}, 0, nil, errs.NewGenericError("synchronous invoke outside of any invocation frame")
	}
	caller := a.stack[len(a.stack)-1]
	return a.invokeAt(caller, target, functionName, args, payments)
}

// InvokeRoot drives the top-level invocation of an InvokeScriptTx: the
// same machinery as Invoke, entered directly by pkg/diffengine's
// invoke driver rather than via a SyncInvoke node: the first call in
// the chain has no caller script to recurse from.
func (a *Applier) InvokeRoot(caller proto.Address, dApp proto.Address, functionName string, args []ride.Value, payments []ride.Value) (ride.Value, uint64, []errs.LogEntry, error) {
	return a.invokeAt(caller, dApp, functionName, args, payments)
}

func (a *Applier) invokeAt(caller proto.Address, target proto.Address, functionName string, args []ride.Value, payments []ride.Value) (ride.Value, uint64, []errs.LogEntry, error) {
	if len(a.stack) >= a.maxDepth {
		zap.S().Debugf("synchronous call depth limit %d reached invoking %s at %s", a.maxDepth, functionName, target.String())
		return ride.Value{}, 0, nil, errs.NewGenericError("maximum synchronous call depth exceeded")
	}
	if len(payments) > 0 && a.features.SelfPaymentDisallowed(a.version) && caller == target {
		return ride.Value{}, 0, nil, errs.NewGenericError("self-payment is not allowed")
	}

	script, found, err := a.view.AccountScript(target)
	if err != nil {
		return ride.Value{}, 0, nil, errs.NewGenericError(err.Error())
	}
	if !found || script == nil {
		return ride.Value{}, 0, nil, errs.NewGenericError("no script at invoked dApp address " + target.String())
	}

	callable, found, err := a.resolver.ResolveCallable(script.Script, functionName, args)
	if err != nil {
		return ride.Value{}, 0, nil, errs.NewDAppExecutionError(err.Error(), 0, nil)
	}
	if !found {
		return ride.Value{}, 0, nil, errs.NewDAppExecutionError("callable "+functionName+" not found", 0, nil)
	}

	for _, onStack := range a.stack {
		if onStack == target && !callable.Reentrant {
			return ride.Value{}, 0, nil, errs.NewReentrancyDisallowed()
		}
	}

	callerPK, found, err := a.pubkeys.PublicKeyByAddress(target)
	if err != nil {
		return ride.Value{}, 0, nil, errs.NewGenericError(err.Error())
	}
	if !found {
		return ride.Value{}, 0, nil, errs.NewGenericError("no public key on record for " + target.String())
	}

	a.scriptRuns++

	var paymentConsumed uint64
	if len(payments) > 0 {
		var payDiff state.Diff
		var err error
		payDiff, paymentConsumed, err = a.buildPaymentDiff(caller, target, payments)
		if err != nil {
			return ride.Value{}, paymentConsumed, nil, err
		}
		newView, err := a.view.WithDiff(payDiff)
		if err != nil {
			return ride.Value{}, paymentConsumed, nil, errs.NewGenericError(err.Error())
		}
		a.view = newView
	}

	a.stack = append(a.stack, target)
	defer func() { a.stack = a.stack[:len(a.stack)-1] }()

	evalCtx := ride.EvaluationContext{
		Builtins:     a.builtins,
		Env:          heightEnv{height: int64(a.height)},
		Version:      a.version,
		Config:       a.config,
		Invoker:      a,
		Complete:     true,
		MaxCallDepth: 100,
	}
	budgetBefore := a.budget
	ev := ride.NewEvaluator(evalCtx, a.costs, budgetBefore)
	result := ev.Evaluate(callable.Body)
	// ConsumedComplexity already counts every nested Invoke this frame
	// made, so it replaces what those frames charged while it ran.
	a.budget = subtractBudget(budgetBefore, result.ConsumedComplexity)
	if result.Err != nil {
		if result.Err.Kind == ride.ComplexityLimitExceeded {
			zap.S().Debugf("callable %s at %s ran out of complexity budget after %d", functionName, target.String(), result.ConsumedComplexity)
		}
		return ride.Value{}, paymentConsumed + result.ConsumedComplexity, result.Log, errs.NewDAppExecutionError(result.Err.Error(), paymentConsumed+result.ConsumedComplexity, result.Log)
	}

	actions, err := action.DecodeActions(result.Value, a.scheme)
	if err != nil {
		return ride.Value{}, paymentConsumed + result.ConsumedComplexity, result.Log, errs.NewDAppExecutionError(err.Error(), paymentConsumed+result.ConsumedComplexity, result.Log)
	}

	foldCtx := action.FoldContext{
		Caller:          target,
		CallerPK:        callerPK,
		TxID:            a.txID,
		Height:          a.height,
		Timestamp:       a.timestamp,
		Version:         a.version,
		Activation:      a.activation,
		Scripts:         a,
		RemainingBudget: a.budget,
	}
	d, spent, err := a.interpreter.Fold(a.view, actions, foldCtx)
	totalConsumed := paymentConsumed + result.ConsumedComplexity + spent
	if err != nil {
		if fte, ok := err.(errs.FailedTransactionError); ok {
			return ride.Value{}, totalConsumed, result.Log, fte.WithAddedComplexity(paymentConsumed + result.ConsumedComplexity)
		}
		return ride.Value{}, totalConsumed, result.Log, err
	}

	newView, err := a.view.WithDiff(d)
	if err != nil {
		return ride.Value{}, totalConsumed, result.Log, errs.NewGenericError(err.Error())
	}
	a.view = newView

	ret := result.Value
	if ret.Kind == ride.Tuple && len(ret.TupleValues) == 2 {
		ret = ret.TupleValues[1]
	}
	return ret, totalConsumed, result.Log, nil
}

// Run implements action.AssetScriptRunner: evaluates an asset script
// against a pseudo-transaction.
func (a *Applier) Run(script []byte, tx proto.PseudoTx, budget uint64) (bool, uint64, []errs.LogEntry, error) {
	body, err := a.resolver.ResolveVerifier(script, tx)
	if err != nil {
		return false, 0, nil, err
	}

	a.scriptRuns++

	evalCtx := ride.EvaluationContext{
		Builtins:     a.builtins,
		Env:          heightEnv{height: int64(a.height)},
		Version:      a.version,
		Config:       a.config,
		Invoker:      nil, // asset scripts may not issue synchronous invokes
		Complete:     true,
		MaxCallDepth: 100,
	}
	limit := budget
	if limit > a.budget {
		limit = a.budget
	}
	ev := ride.NewEvaluator(evalCtx, a.costs, limit)
	if err := bindVerifierScope(ev, tx, a.scheme, a.config); err != nil {
		return false, 0, nil, err
	}
	result := ev.Evaluate(body)
	a.budget = subtractBudget(a.budget, result.ConsumedComplexity)
	if result.Err != nil {
		return false, result.ConsumedComplexity, result.Log, result.Err
	}
	if result.Value.Kind != ride.Bool {
		return false, result.ConsumedComplexity, result.Log, errors.New("asset script did not evaluate to a Boolean")
	}
	return result.Value.BoolValue, result.ConsumedComplexity, result.Log, nil
}

// buildPaymentDiff folds dApp-call attached payments into a portfolio
// move from caller to target, running the payment asset's verifier
// script (if any) the same way an AssetTransfer action does: the
// asset-script check for asset-touching actions applies equally to
// invoke's own attached payments.
func (a *Applier) buildPaymentDiff(caller, target proto.Address, payments []ride.Value) (state.Diff, uint64, error) {
	d := state.Empty()
	var consumed uint64
	for _, p := range payments {
		asset, amount, err := decodePayment(p)
		if err != nil {
			return state.Diff{}, consumed, errs.NewGenericError("attached payment: " + err.Error())
		}
		if amount <= 0 {
			return state.Diff{}, consumed, errs.NewNonPositiveAmount("attached payment amount must be positive")
		}
		delta := state.NewPortfolio(amount)
		if !asset.IsWaves() {
			delta = state.NewAssetPortfolio(asset, amount)
		}
		merged, err := d.Portfolios[target].Combine(delta)
		if err != nil {
			return state.Diff{}, consumed, errs.NewAccountBalanceError(err.Error())
		}
		d.Portfolios[target] = merged
		negated := state.NewPortfolio(-amount)
		if !asset.IsWaves() {
			negated = state.NewAssetPortfolio(asset, -amount)
		}
		merged, err = d.Portfolios[caller].Combine(negated)
		if err != nil {
			return state.Diff{}, consumed, errs.NewAccountBalanceError(err.Error())
		}
		d.Portfolios[caller] = merged

		if asset.IsWaves() {
			continue
		}
		script, found, err := a.view.AssetScript(asset)
		if err != nil {
			return state.Diff{}, consumed, errs.NewGenericError(err.Error())
		}
		if !found || script == nil {
			continue
		}
		tx := proto.NewPseudoTransfer(a.txID, a.timestamp, caller, proto.NewRecipientFromAddress(target), proto.Amount(amount), asset)
		allowed, spent, log, err := a.Run(script.Script, tx, a.budget)
		consumed += spent
		if err != nil {
			return state.Diff{}, consumed, errs.NewAssetExecutionInActionError(err.Error(), spent, log, asset)
		}
		if !allowed {
			return state.Diff{}, consumed, errs.NewNotAllowedByAssetInActionError(spent, log, asset)
		}
	}
	return d, consumed, nil
}

func decodePayment(v ride.Value) (proto.AssetID, int64, error) {
	if v.Kind != ride.CaseObject {
		return proto.AssetID{}, 0, errors.New("payment is not a structured AttachedPayment value")
	}
	amount := v.CaseFields["amount"].LongValue
	assetField, ok := v.CaseFields["assetId"]
	if !ok {
		return proto.WavesAsset, amount, nil
	}
	if assetField.Kind == ride.Unit {
		return proto.WavesAsset, amount, nil
	}
	if assetField.Kind != ride.Bytes {
		return proto.AssetID{}, 0, errors.New("payment assetId must be Unit or a byte string")
	}
	asset, err := proto.NewIssuedAsset(proto.ByteStr(assetField.BytesValue))
	if err != nil {
		return proto.AssetID{}, 0, err
	}
	return asset, amount, nil
}

func (a *Applier) resolve(r proto.Recipient) (proto.Address, error) {
	if r.Address != nil {
		return *r.Address, nil
	}
	addr, found, err := a.view.ResolveAlias(*r.Alias)
	if err != nil {
		return proto.Address{}, errs.NewGenericError(err.Error())
	}
	if !found {
		return proto.Address{}, errs.NewAliasDoesNotExist(r.Alias.String())
	}
	return addr, nil
}

func subtractBudget(have, spend uint64) uint64 {
	if spend >= have {
		return 0
	}
	return have - spend
}

type heightEnv struct{ height int64 }

func (h heightEnv) Height() int64 { return h.height }

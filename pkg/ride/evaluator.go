package ride

import (
	"github.com/pkg/errors"

	"github.com/Nekuips1x/Waves/pkg/errs"
	"github.com/Nekuips1x/Waves/pkg/settings"
)

// Environment is the read-only blockchain surface handed to the
// evaluator; it exposes only `height`, and builtins do not receive it.
// It is intentionally minimal and supplied by the caller (pkg/invoke) rather
// than imported from pkg/state directly, keeping the evaluator free
// of any dependency on the diff engine's own types: its public
// contract is inputs, outputs and budget only.
type Environment interface {
	Height() int64
}

// EvaluationContext is the evaluator's full input:
// built-ins bound to native implementations, a read-only environment,
// and the standard-library version.
type EvaluationContext struct {
	Builtins map[uint16]Builtin
	Env      Environment
	Version  settings.StdLibVersion
	Config   BuiltinConfig

	// Invoker resolves SyncInvoke nodes. Nil means the expression is
	// evaluated in a
	// context that disallows synchronous dApp-to-dApp calls (e.g. an
	// asset script), and any SyncInvoke node throws.
	Invoker SyncInvoker

	// Complete is carried for callers; the evaluator does not read it
	// and always evaluates to a final Value or an error.
	Complete bool

	// MaxCallDepth bounds recursive evaluation.
	MaxCallDepth int
}

// Result is the evaluator's full output: the log, the
// complexity consumed, and either a Value or an ExecutionError.
type Result struct {
	Log               []errs.LogEntry
	ConsumedComplexity uint64
	Value             Value
	Err               *ExecutionError
}

type budget struct {
	limit     uint64
	consumed  uint64
}

func (b *budget) spend(n uint64) bool {
	if b.consumed+n > b.limit {
		b.consumed = b.limit
		return false
	}
	b.consumed += n
	return true
}

// Evaluator interprets a compiled Expr tree.
type Evaluator struct {
	ctx    EvaluationContext
	costs  CostTable
	budget budget
	log    []errs.LogEntry
	depth  int
	env    map[string]Value
}

// NewEvaluator constructs an Evaluator bound to ctx, with a complexity
// limit and a native-function cost table. The budget is charged 1 for
// every evaluated node plus the table cost of each native call; the
// estimator does not count the call node itself, so a run can consume
// more than the static estimate.
func NewEvaluator(ctx EvaluationContext, costs CostTable, limit uint64) *Evaluator {
	return &Evaluator{
		ctx:    ctx,
		costs:  costs,
		budget: budget{limit: limit},
		env:    map[string]Value{},
	}
}

// Bind seeds name into the evaluation scope before Evaluate runs and
// records it in the log, the way verifier-scope constants (the network
// byte, the bound transaction record) enter an asset script's
// evaluation.
func (e *Evaluator) Bind(name string, v Value) {
	e.BindRendered(name, v, v.Render())
}

// BindRendered is Bind with an explicit rendered form for the log
// entry, used when the binding's canonical print needs a declared
// field order (Value.RenderRecord) rather than Render's sorted one.
func (e *Evaluator) BindRendered(name string, v Value, rendered string) {
	e.env[name] = v
	e.log = append(e.log, errs.LogEntry{Name: name, Value: rendered})
}

// Evaluate runs expr to completion or until the budget/call-depth/
// recursion limits trip.
func (e *Evaluator) Evaluate(expr *Expr) Result {
	v, err := e.eval(expr)
	consumed := e.budget.consumed
	if err != nil {
		var execErr *ExecutionError
		if asExec, ok := err.(*ExecutionError); ok {
			execErr = asExec
		} else {
			execErr = NewThrow(err.Error())
		}
		return Result{Log: e.log, ConsumedComplexity: consumed, Err: execErr}
	}
	return Result{Log: e.log, ConsumedComplexity: consumed, Value: v}
}

func (e *Evaluator) eval(expr *Expr) (Value, error) {
	if expr == nil {
		return NewUnit(), nil
	}
	if !e.budget.spend(1) {
		return Value{}, NewComplexityLimitExceeded("complexity limit exceeded")
	}
	switch expr.Kind {
	case ConstLong:
		return NewLong(expr.LongValue), nil
	case ConstByteStr:
		return NewBytes(expr.BytesValue, e.ctx.Config.MaxBytesLength)
	case ConstString:
		return NewString(expr.StringValue, e.ctx.Config.MaxStringLength)
	case True:
		return NewBool(true), nil
	case False:
		return NewBool(false), nil
	case Ref:
		v, ok := e.env[expr.RefName]
		if !ok {
			return Value{}, NewThrow("a definition for " + expr.RefName + " is not found")
		}
		return v, nil
	case Block:
		v, err := e.eval(expr.LetValue)
		if err != nil {
			return Value{}, err
		}
		e.log = append(e.log, errs.LogEntry{Name: expr.LetName, Value: v.Render()})
		prior, hadPrior := e.env[expr.LetName]
		e.env[expr.LetName] = v
		result, err := e.eval(expr.Body)
		if hadPrior {
			e.env[expr.LetName] = prior
		} else {
			delete(e.env, expr.LetName)
		}
		return result, err
	case If:
		cond, err := e.eval(expr.Cond)
		if err != nil {
			return Value{}, err
		}
		if cond.Kind != Bool {
			return Value{}, NewThrow("If condition did not evaluate to a Boolean")
		}
		if cond.BoolValue {
			return e.eval(expr.Then)
		}
		return e.eval(expr.Else)
	case FunctionCall:
		return e.evalCall(expr)
	case GetField:
		target, err := e.eval(expr.Target)
		if err != nil {
			return Value{}, err
		}
		if target.Kind != CaseObject {
			return Value{}, NewThrow("GetField on a non-object value")
		}
		v, ok := target.CaseFields[expr.Field]
		if !ok {
			return Value{}, NewThrow("field " + expr.Field + " not found on " + target.CaseType)
		}
		return v, nil
	case SyncInvoke:
		return e.evalSyncInvoke(expr)
	default:
		return Value{}, errors.Errorf("unknown expression kind %d", expr.Kind)
	}
}

func (e *Evaluator) evalSyncInvoke(expr *Expr) (Value, error) {
	if e.ctx.Invoker == nil {
		return Value{}, NewThrow("synchronous invoke is not available in this evaluation context")
	}
	dApp, err := e.eval(expr.InvokeDApp)
	if err != nil {
		return Value{}, err
	}
	args := make([]Value, len(expr.InvokeArgs))
	for idx, a := range expr.InvokeArgs {
		v, err := e.eval(a)
		if err != nil {
			return Value{}, err
		}
		args[idx] = v
	}
	payments := make([]Value, len(expr.InvokePayments))
	for idx, p := range expr.InvokePayments {
		v, err := e.eval(p)
		if err != nil {
			return Value{}, err
		}
		payments[idx] = v
	}
	result, consumed, log, err := e.ctx.Invoker.Invoke(dApp, expr.InvokeFunction, args, payments)
	e.log = append(e.log, log...)
	if !e.budget.spend(consumed) {
		return Value{}, NewComplexityLimitExceeded("complexity limit exceeded")
	}
	if err != nil {
		if execErr, ok := err.(*ExecutionError); ok {
			return Value{}, execErr
		}
		return Value{}, NewThrow(err.Error())
	}
	return result, nil
}

func (e *Evaluator) evalCall(expr *Expr) (Value, error) {
	e.depth++
	defer func() { e.depth-- }()
	if e.depth > e.ctx.MaxCallDepth {
		return Value{}, NewStackOverflow("maximum call depth exceeded")
	}

	args := make([]Value, len(expr.Args))
	for i, a := range expr.Args {
		v, err := e.eval(a)
		if err != nil {
			return Value{}, err
		}
		args[i] = v
	}
	if expr.Call.IsUser {
		return Value{}, NewThrow("user function " + expr.Call.User + " has no bound implementation")
	}
	cost, ok := e.costs[expr.Call.Native]
	if !ok {
		return Value{}, errors.Errorf("no documented cost for native function id %d", expr.Call.Native)
	}
	if !e.budget.spend(cost) {
		return Value{}, NewComplexityLimitExceeded("complexity limit exceeded")
	}
	fn, ok := e.ctx.Builtins[expr.Call.Native]
	if !ok {
		return Value{}, errors.Errorf("no implementation bound for native function id %d", expr.Call.Native)
	}
	return fn(e.ctx.Config, args)
}

// RenderLog produces the deterministic textual form of a log used in
// validation-error messages: one `\t<name> = <value>` line
// per entry, in evaluation order.
func RenderLog(log []errs.LogEntry) string {
	out := ""
	for _, entry := range log {
		out += "\t" + entry.Name + " = " + entry.Value + "\n"
	}
	return out
}

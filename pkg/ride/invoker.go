package ride

import "github.com/Nekuips1x/Waves/pkg/errs"

// SyncInvoker is the evaluator's sole dependency for resolving a
// SyncInvoke node: it is implemented by pkg/invoke's Applier, which
// recurses back into a fresh Evaluator for the callee. Keeping this as
// an interface here (rather than pkg/ride importing pkg/invoke)
// avoids the import cycle invoke->ride->invoke, the same boundary
// pattern pkg/action uses for AssetScriptRunner.
type SyncInvoker interface {
	Invoke(dApp Value, functionName string, args []Value, payments []Value) (Value, uint64, []errs.LogEntry, error)
}

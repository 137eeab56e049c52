package state

import (
	"github.com/pkg/errors"

	"github.com/Nekuips1x/Waves/pkg/crypto"
	"github.com/Nekuips1x/Waves/pkg/proto"
	"github.com/Nekuips1x/Waves/pkg/settings"
)

// TxRecord is one entry of Diff.transactions: the
// transaction itself, the set of addresses its effects touched,
// whether it applied (false for a fail-for-fee transaction), and the
// complexity spent evaluating it.
type TxRecord struct {
	Tx              proto.Transaction
	Affected        map[proto.Address]struct{}
	Applied         bool
	SpentComplexity uint64
}

// OrderFill accumulates an exchange order's filled volume and fee
// across one or more trades.
type OrderFill struct {
	Volume int64
	Fee    int64
}

// InvokeScriptResult is the structured record of one invoke-script
// transaction's effects, surfaced to callers (API / explorer) and
// used by sync-call bookkeeping to compute `affected`.
type InvokeScriptResult struct {
	CalledAddresses []proto.Address
	Transfers       []InvokeTransfer
	Issues          []proto.AssetID
	Reissues        []proto.AssetID
	Burns           []proto.AssetID
	SponsorFees     []proto.AssetID
	Leases          []crypto.Digest
	LeaseCancels    []crypto.Digest
	DataEntries     []proto.DataEntry
	ErrorMessage    string
}

// InvokeTransfer is one AssetTransfer action's resulting movement, as
// surfaced in InvokeScriptResult.
type InvokeTransfer struct {
	Recipient proto.Address
	Amount    int64
	Asset     proto.AssetID
}

// Diff is the immutable, composable description of every state
// mutation a transaction would cause. All maps are treated
// as immutable once a Diff is returned: combine never mutates an
// input, it always builds and returns a new Diff.
type Diff struct {
	// Transactions preserves insertion order:
	// Order is the insertion-ordered list of ids, Transactions is the
	// id -> record lookup.
	Order        []crypto.Digest
	Transactions map[crypto.Digest]TxRecord

	Portfolios map[proto.Address]Portfolio

	IssuedAssets  map[string]AssetDescription // keyed by AssetID.Key()
	UpdatedAssets map[string]AssetUpdate

	Aliases map[proto.Alias]proto.Address

	OrderFills map[crypto.Digest]OrderFill

	LeaseState map[crypto.Digest]LeaseDetails

	// Scripts: nil map value (present key, nil pointer) means "remove
	// the account script".
	Scripts map[proto.Address]*ScriptInfo

	AssetScripts map[string]*AssetScript

	AccountData map[proto.Address]map[string]proto.DataEntry

	Sponsorship map[string]Sponsorship

	ScriptsRun        uint32
	ScriptsComplexity uint64
	ScriptResults     map[crypto.Digest]InvokeScriptResult
}

// ScriptInfo pairs a compiled account script with its complexity as
// estimated under each estimator version in force and the
// standard-library version the script itself declares, which gates
// the evaluator's built-in set and limits for every invocation of
// it.
type ScriptInfo struct {
	Script              []byte
	StdLibVersion       settings.StdLibVersion
	HasVerifier         bool
	ComplexityByVersion map[int]uint64
}

// Empty is the identity element of Combine.
func Empty() Diff {
	return Diff{
		Transactions:  map[crypto.Digest]TxRecord{},
		Portfolios:    map[proto.Address]Portfolio{},
		IssuedAssets:  map[string]AssetDescription{},
		UpdatedAssets: map[string]AssetUpdate{},
		Aliases:       map[proto.Alias]proto.Address{},
		OrderFills:    map[crypto.Digest]OrderFill{},
		LeaseState:    map[crypto.Digest]LeaseDetails{},
		Scripts:       map[proto.Address]*ScriptInfo{},
		AssetScripts:  map[string]*AssetScript{},
		AccountData:   map[proto.Address]map[string]proto.DataEntry{},
		Sponsorship:   map[string]Sponsorship{},
		ScriptResults: map[crypto.Digest]InvokeScriptResult{},
	}
}

// Combine merges old and new. It fails on BalanceOverflow, bubbled up
// from the portfolio merge, or on an asset volume overflow from the
// asset-update merge; the caller
// decides whether to surface it as a RejectError (GenericError) or
// fold it into a FailedTransactionError.
func Combine(old, new Diff) (Diff, error) {
	out := Empty()

	// transactions: concatenate preserving insertion order; later
	// txid overwrites earlier.
	seen := make(map[crypto.Digest]struct{}, len(old.Order)+len(new.Order))
	for _, id := range old.Order {
		out.Order = append(out.Order, id)
		seen[id] = struct{}{}
	}
	for _, id := range new.Order {
		if _, ok := seen[id]; !ok {
			out.Order = append(out.Order, id)
			seen[id] = struct{}{}
		}
	}
	for id, rec := range old.Transactions {
		out.Transactions[id] = rec
	}
	for id, rec := range new.Transactions {
		out.Transactions[id] = rec // new replaces old on key collision
	}

	// portfolios: key-wise merge, field-wise checked addition.
	for addr, p := range old.Portfolios {
		out.Portfolios[addr] = p
	}
	for addr, p := range new.Portfolios {
		existing, ok := out.Portfolios[addr]
		if !ok {
			out.Portfolios[addr] = p
			continue
		}
		merged, err := existing.Combine(p)
		if err != nil {
			return Diff{}, errors.Wrapf(err, "combine portfolio for address %s", addr.String())
		}
		if merged.IsEmpty() {
			delete(out.Portfolios, addr)
		} else {
			out.Portfolios[addr] = merged
		}
	}

	// issued_assets, aliases, lease_state, scripts, asset_scripts: new
	// replaces old on key collision.
	for k, v := range old.IssuedAssets {
		out.IssuedAssets[k] = v
	}
	for k, v := range new.IssuedAssets {
		out.IssuedAssets[k] = v
	}
	for k, v := range old.Aliases {
		out.Aliases[k] = v
	}
	for k, v := range new.Aliases {
		out.Aliases[k] = v
	}
	for k, v := range old.LeaseState {
		out.LeaseState[k] = v
	}
	for k, v := range new.LeaseState {
		out.LeaseState[k] = v
	}
	for k, v := range old.Scripts {
		out.Scripts[k] = v
	}
	for k, v := range new.Scripts {
		out.Scripts[k] = v
	}
	for k, v := range old.AssetScripts {
		out.AssetScripts[k] = v
	}
	for k, v := range new.AssetScripts {
		out.AssetScripts[k] = v
	}

	// updated_assets: Ior-shaped merge, key-wise.
	for k, v := range old.UpdatedAssets {
		out.UpdatedAssets[k] = v
	}
	for k, v := range new.UpdatedAssets {
		existing, ok := out.UpdatedAssets[k]
		if !ok {
			out.UpdatedAssets[k] = v
			continue
		}
		merged, err := existing.Combine(v)
		if err != nil {
			return Diff{}, errors.Wrapf(err, "combine asset update for %q", k)
		}
		out.UpdatedAssets[k] = merged
	}

	// account_data: per-address, per-key last-write-wins.
	for addr, kv := range old.AccountData {
		m := make(map[string]proto.DataEntry, len(kv))
		for k, v := range kv {
			m[k] = v
		}
		out.AccountData[addr] = m
	}
	for addr, kv := range new.AccountData {
		m, ok := out.AccountData[addr]
		if !ok {
			m = make(map[string]proto.DataEntry, len(kv))
			out.AccountData[addr] = m
		}
		for k, v := range kv {
			m[k] = v
		}
	}

	// sponsorship: NoInfo is identity; otherwise new wins.
	for k, v := range old.Sponsorship {
		out.Sponsorship[k] = v
	}
	for k, v := range new.Sponsorship {
		existing := out.Sponsorship[k]
		out.Sponsorship[k] = existing.Combine(v)
	}

	// order_fills: field-wise addition (same shape as portfolio merge,
	// no overflow check needed at exchange-fill precision in scope here).
	for k, v := range old.OrderFills {
		out.OrderFills[k] = v
	}
	for k, v := range new.OrderFills {
		existing, ok := out.OrderFills[k]
		if !ok {
			out.OrderFills[k] = v
			continue
		}
		out.OrderFills[k] = OrderFill{Volume: existing.Volume + v.Volume, Fee: existing.Fee + v.Fee}
	}

	out.ScriptsRun = old.ScriptsRun + new.ScriptsRun
	out.ScriptsComplexity = old.ScriptsComplexity + new.ScriptsComplexity

	for k, v := range old.ScriptResults {
		out.ScriptResults[k] = v
	}
	for k, v := range new.ScriptResults {
		out.ScriptResults[k] = v // last-write-wins
	}

	return out, nil
}

// CombineAll left-folds Combine across diffs in order.
func CombineAll(diffs ...Diff) (Diff, error) {
	acc := Empty()
	var err error
	for _, d := range diffs {
		acc, err = Combine(acc, d)
		if err != nil {
			return Diff{}, err
		}
	}
	return acc, nil
}

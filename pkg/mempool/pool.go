// Package mempool admits pending transactions against the diff
// engine: a sequential composite-view replay of a transaction batch,
// answering "which of these would produce a diff (successful or
// fail-for-fee, never rejected) against the current snapshot" without
// assembling a block. Block assembly itself is the consumer of that
// answer and lives elsewhere.
package mempool

import (
	"sync"

	"go.uber.org/atomic"
	"go.uber.org/zap"

	"github.com/Nekuips1x/Waves/pkg/diffengine"
	"github.com/Nekuips1x/Waves/pkg/errs"
	"github.com/Nekuips1x/Waves/pkg/proto"
	"github.com/Nekuips1x/Waves/pkg/state"
)

// Source is a pending-transaction queue: Pop removes and returns the
// next candidate, or (nil, false) once exhausted.
type Source interface {
	Pop() (proto.Transaction, bool)
}

// Admission is one transaction's outcome from a batch pass: the diff
// it produced (empty for a rejected transaction, which is still listed
// with Rejected set and Reason holding the error), and whether it
// applied or only consumed its fee.
type Admission struct {
	Tx       proto.Transaction
	Diff     state.Diff
	Applied  bool
	Rejected bool
	Reason   error
}

// Admitter sequentially replays a pending-transaction batch against a
// shared composite view, so later transactions in the batch observe
// earlier ones' effects.
type Admitter struct {
	engine   *diffengine.Engine
	snapshot state.Blockchain
	source   Source

	interrupt *atomic.Bool
	mu        sync.Mutex
}

// NewAdmitter builds an Admitter bound to one diff engine, one
// read-only snapshot, and one pending-transaction source.
func NewAdmitter(engine *diffengine.Engine, snapshot state.Blockchain, source Source) *Admitter {
	return &Admitter{
		engine:    engine,
		snapshot:  snapshot,
		source:    source,
		interrupt: atomic.NewBool(false),
	}
}

// Interrupt signals the in-progress (or next) Admit call to stop
// early and discard its partial batch, mirroring
// DefaultMiner.Interrupt.
func (a *Admitter) Interrupt() {
	a.interrupt.Store(true)
}

// Admit pops up to limit transactions from the source, validating
// each sequentially against a DiffStorage-backed composite view under
// one lock. A RejectError keeps the transaction in the result marked
// Rejected, and its diff is not folded into the batch; any other error
// is a bug in the engine itself and is logged, not silently swallowed.
// If interrupted mid-batch, the whole
// batch is discarded and nil is returned: a partially-validated batch
// is not a safe thing to hand to a caller that expected either "all
// of it" or "none of it".
func (a *Admitter) Admit(limit int) []Admission {
	a.mu.Lock()
	defer a.mu.Unlock()
	defer a.interrupt.Store(false)

	storage := state.NewDiffStorage()
	admitted := make([]Admission, 0, limit)

	for i := 0; i < limit; i++ {
		tx, ok := a.source.Pop()
		if !ok {
			break
		}

		if a.interrupt.Load() {
			zap.S().Info("mempool admission interrupted, discarding partial batch")
			return nil
		}

		view := storage.View(a.snapshot)
		d, err := a.engine.DiffTransaction(view, tx)
		if err != nil {
			if _, ok := err.(errs.RejectError); ok {
				admitted = append(admitted, Admission{Tx: tx, Rejected: true, Reason: err})
				continue
			}
			zap.S().Errorf("diff engine returned an unexpected error for %s: %v", tx.ID().String(), err)
			admitted = append(admitted, Admission{Tx: tx, Rejected: true, Reason: err})
			continue
		}

		if err := storage.Save(d); err != nil {
			zap.S().Errorf("failed to fold diff for %s: %v", tx.ID().String(), err)
			admitted = append(admitted, Admission{Tx: tx, Rejected: true, Reason: err})
			continue
		}

		admitted = append(admitted, Admission{Tx: tx, Diff: d, Applied: txApplied(d, tx)})
	}

	return admitted
}

func txApplied(d state.Diff, tx proto.Transaction) bool {
	record, ok := d.Transactions[tx.ID()]
	if !ok {
		return true
	}
	return record.Applied
}

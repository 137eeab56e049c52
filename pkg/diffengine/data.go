package diffengine

import (
	"github.com/Nekuips1x/Waves/pkg/errs"
	"github.com/Nekuips1x/Waves/pkg/proto"
	"github.com/Nekuips1x/Waves/pkg/settings"
	"github.com/Nekuips1x/Waves/pkg/state"
)

// diffData computes a DataTx's Diff: validates entry count,
// per-key size, and total byte size against the pre-invoke (V3-era)
// limits, then writes every entry to the sender's account-data map,
// last-write-wins within the transaction itself.
func (e *Engine) diffData(view *state.CompositeView, tx proto.DataTx) (state.Diff, error) {
	if len(tx.Entries) == 0 {
		return state.Diff{}, errs.NewGenericError("data transaction has no entries")
	}
	if len(tx.Entries) > settings.MaxEntryCount {
		return state.Diff{}, errs.NewGenericError("too many data entries")
	}

	total := 0
	kv := make(map[string]proto.DataEntry, len(tx.Entries))
	for _, entry := range tx.Entries {
		if err := proto.ValidateKey(entry.Key, settings.MaxKeySize(settings.V3), false); err != nil {
			return state.Diff{}, errs.NewGenericError("data entry: " + err.Error())
		}
		total += entry.BinarySize()
		kv[entry.Key] = entry // last-write-wins within one transaction
	}
	if total > settings.DataTxMaxBytes {
		return state.Diff{}, errs.NewGenericError("data transaction exceeds the maximum byte size")
	}

	d := state.Empty()
	d.AccountData[tx.Sender()] = kv
	d.Portfolios[tx.Sender()] = state.NewPortfolio(-int64(tx.Fee()))

	affected := bindAffected(d, nil, nil)
	recordTx(&d, tx, affected, true, 0)
	return d, nil
}

package diffengine

import (
	"github.com/Nekuips1x/Waves/pkg/crypto"
	"github.com/Nekuips1x/Waves/pkg/errs"
	"github.com/Nekuips1x/Waves/pkg/proto"
	"github.com/Nekuips1x/Waves/pkg/state"
)

// leaseTxNonce is the fixed nonce a standalone LeaseTx derives its
// lease id with, distinct from the per-action nonce sequence a dApp's
// chained Lease actions use: a transaction-level lease always
// derives its id with nonce 0.
const leaseTxNonce = int64(0)

// diffLease computes a LeaseTx's Diff: derives the lease
// id from the transaction id itself, records it Active, and moves the
// lease balance on both ends.
func (e *Engine) diffLease(view *state.CompositeView, tx proto.LeaseTx) (state.Diff, error) {
	if tx.Amount <= 0 {
		return state.Diff{}, errs.NewNonPositiveAmount("lease amount must be positive")
	}
	recipient, err := resolveRecipient(view, tx.Recipient)
	if err != nil {
		return state.Diff{}, err
	}
	if recipient == tx.Sender() {
		return state.Diff{}, errs.NewGenericError("cannot lease to self")
	}

	leaseID, err := crypto.DeriveLeaseID(tx.ID(), leaseTxNonce, recipient.Bytes(), int64(tx.Amount))
	if err != nil {
		return state.Diff{}, errs.NewGenericError(err.Error())
	}
	senderPK, found, err := e.PubKeys.PublicKeyByAddress(tx.Sender())
	if err != nil {
		return state.Diff{}, errs.NewGenericError(err.Error())
	}
	if !found {
		return state.Diff{}, errs.NewGenericError("no public key on record for " + tx.Sender().String())
	}

	d := state.Empty()
	d.LeaseState[leaseID] = state.LeaseDetails{
		SenderPK:   senderPK,
		Recipient:  tx.Recipient,
		Amount:     int64(tx.Amount),
		Status:     state.LeaseActive,
		SourceTxID: tx.ID(),
		Height:     view.Height(),
	}
	d.Portfolios[tx.Sender()] = state.Portfolio{Balance: -int64(tx.Fee()), Lease: state.LeaseBalance{Out: int64(tx.Amount)}}
	d.Portfolios[recipient] = state.Portfolio{Lease: state.LeaseBalance{In: int64(tx.Amount)}}

	affected := bindAffected(d, nil, nil)
	recordTx(&d, tx, affected, true, 0)
	return d, nil
}

// diffLeaseCancel computes a LeaseCancelTx's Diff: only the
// original sender may cancel their own lease, and a lease may only be
// cancelled once.
func (e *Engine) diffLeaseCancel(view *state.CompositeView, tx proto.LeaseCancelTx) (state.Diff, error) {
	details, found, err := view.LeaseDetails(tx.LeaseID)
	if err != nil {
		return state.Diff{}, errs.NewGenericError(err.Error())
	}
	if !found {
		return state.Diff{}, errs.NewGenericError("cancel of unknown lease " + tx.LeaseID.String())
	}
	senderAddr := proto.MustAddressFromPublicKey(tx.Sender().Scheme(), details.SenderPK)
	if senderAddr != tx.Sender() {
		return state.Diff{}, errs.NewGenericError("only the lease's original sender may cancel it")
	}

	cancelled, err := details.Cancel(view.Height(), tx.ID())
	if err != nil {
		return state.Diff{}, errs.NewGenericError(err.Error())
	}

	recipient, err := resolveRecipient(view, details.Recipient)
	if err != nil {
		return state.Diff{}, err
	}

	d := state.Empty()
	d.LeaseState[tx.LeaseID] = cancelled
	d.Portfolios[tx.Sender()] = state.Portfolio{Balance: -int64(tx.Fee()), Lease: state.LeaseBalance{Out: -details.Amount}}
	d.Portfolios[recipient] = state.Portfolio{Lease: state.LeaseBalance{In: -details.Amount}}

	affected := bindAffected(d, nil, nil)
	recordTx(&d, tx, affected, true, 0)
	return d, nil
}

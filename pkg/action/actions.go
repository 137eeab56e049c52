// Package action implements the callable-action interpreter: folding
// the ordered list of actions a dApp's callable returns into a
// state.Diff, invoking asset scripts for asset-touching actions, and
// enforcing per-action validation plus the post-fold limits (action
// count, write-set size, key size).
package action

import (
	"github.com/Nekuips1x/Waves/pkg/crypto"
	"github.com/Nekuips1x/Waves/pkg/proto"
)

// Kind tags the variant of an Action.
type Kind int

const (
	AssetTransfer Kind = iota
	Data
	Issue
	Reissue
	Burn
	SponsorFee
	Lease
	LeaseCancel
)

// Action is one element of the ordered list a callable returns.
type Action struct {
	Kind Kind

	// AssetTransfer
	Recipient proto.Recipient
	Amount    int64
	Asset     proto.AssetID

	// Data
	Entry proto.DataEntry

	// Issue
	Name        string
	Description string
	Decimals    byte
	Quantity    int64
	Reissuable  bool
	Nonce       int64

	// Reissue/Burn reuse Asset+Quantity+Reissuable above.

	// SponsorFee
	MinSponsoredFee int64

	// Lease
	LeaseNonce int64

	// LeaseCancel
	LeaseID crypto.Digest
}

func NewAssetTransfer(recipient proto.Recipient, amount int64, asset proto.AssetID) Action {
	return Action{Kind: AssetTransfer, Recipient: recipient, Amount: amount, Asset: asset}
}

func NewDataAction(entry proto.DataEntry) Action {
	return Action{Kind: Data, Entry: entry}
}

func NewIssueAction(name, description string, decimals byte, quantity int64, reissuable bool, nonce int64) Action {
	return Action{Kind: Issue, Name: name, Description: description, Decimals: decimals, Quantity: quantity, Reissuable: reissuable, Nonce: nonce}
}

func NewReissueAction(asset proto.AssetID, quantity int64, reissuable bool) Action {
	return Action{Kind: Reissue, Asset: asset, Quantity: quantity, Reissuable: reissuable}
}

func NewBurnAction(asset proto.AssetID, quantity int64) Action {
	return Action{Kind: Burn, Asset: asset, Quantity: quantity}
}

func NewSponsorFeeAction(asset proto.AssetID, minFee int64) Action {
	return Action{Kind: SponsorFee, Asset: asset, MinSponsoredFee: minFee}
}

func NewLeaseAction(recipient proto.Recipient, amount int64, nonce int64) Action {
	return Action{Kind: Lease, Recipient: recipient, Amount: amount, LeaseNonce: nonce}
}

func NewLeaseCancelAction(leaseID crypto.Digest) Action {
	return Action{Kind: LeaseCancel, LeaseID: leaseID}
}

// IsDataOp reports whether a is counted against MaxWriteSetSize
// rather than MaxCallableActions; the callable-action cap excludes
// data ops.
func (a Action) IsDataOp() bool { return a.Kind == Data }

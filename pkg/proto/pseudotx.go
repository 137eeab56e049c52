package proto

import "github.com/Nekuips1x/Waves/pkg/crypto"

// PseudoTxKind tags the variant of a PseudoTx.
type PseudoTxKind int

const (
	PseudoTransfer PseudoTxKind = iota
	PseudoReissue
	PseudoBurn
	PseudoSponsorFee
)

// PseudoTx is the synthetic transaction record handed to an asset
// script when a dApp action touches that scripted asset. It carries
// the real invocation's transaction id and timestamp so the asset
// script's log output stays traceable to the originating invocation.
type PseudoTx struct {
	Kind      PseudoTxKind
	RealTxID  crypto.Digest
	Timestamp uint64

	// Transfer fields.
	Sender    Address
	Recipient Recipient
	Amount    Amount
	Asset     AssetID

	// Reissue/Burn fields.
	Quantity   int64
	Reissuable bool

	// SponsorFee fields.
	MinSponsoredFee int64
}

func NewPseudoTransfer(realTxID crypto.Digest, ts uint64, sender Address, recipient Recipient, amount Amount, asset AssetID) PseudoTx {
	return PseudoTx{Kind: PseudoTransfer, RealTxID: realTxID, Timestamp: ts, Sender: sender, Recipient: recipient, Amount: amount, Asset: asset}
}

func NewPseudoReissue(realTxID crypto.Digest, ts uint64, sender Address, asset AssetID, quantity int64, reissuable bool) PseudoTx {
	return PseudoTx{Kind: PseudoReissue, RealTxID: realTxID, Timestamp: ts, Sender: sender, Asset: asset, Quantity: quantity, Reissuable: reissuable}
}

func NewPseudoBurn(realTxID crypto.Digest, ts uint64, sender Address, asset AssetID, quantity int64) PseudoTx {
	return PseudoTx{Kind: PseudoBurn, RealTxID: realTxID, Timestamp: ts, Sender: sender, Asset: asset, Quantity: quantity}
}

func NewPseudoSponsorFee(realTxID crypto.Digest, ts uint64, sender Address, asset AssetID, minFee int64) PseudoTx {
	return PseudoTx{Kind: PseudoSponsorFee, RealTxID: realTxID, Timestamp: ts, Sender: sender, Asset: asset, MinSponsoredFee: minFee}
}

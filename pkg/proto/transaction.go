package proto

import "github.com/Nekuips1x/Waves/pkg/crypto"

// TransactionType enumerates the transaction kinds the diff engine
// knows about, not the full wire enumeration (block assembly, the API
// layer and the wire codec live elsewhere). Issue, Reissue, Burn and
// CreateAlias are listed but have no transaction struct or driver here.
type TransactionType int

const (
	TransferTransaction TransactionType = iota
	DataTransaction
	LeaseTransaction
	LeaseCancelTransaction
	InvokeScriptTransaction
	SponsorFeeTransaction
	IssueTransaction
	ReissueTransaction
	BurnTransaction
	CreateAliasTransaction
)

// Transaction is the minimal read surface every diff driver needs: an
// id, a sender, a fee, and its own type tag. Concrete per-kind fields
// live on the dedicated structs below (TransferTx, DataTx, ...), each
// of which implements Transaction.
type Transaction interface {
	ID() crypto.Digest
	Sender() Address
	Fee() Amount
	FeeAsset() AssetID
	Timestamp() uint64
	Type() TransactionType
}

type baseTx struct {
	id        crypto.Digest
	sender    Address
	fee       Amount
	feeAsset  AssetID
	timestamp uint64
}

func (b baseTx) ID() crypto.Digest    { return b.id }
func (b baseTx) Sender() Address      { return b.sender }
func (b baseTx) Fee() Amount          { return b.fee }
func (b baseTx) FeeAsset() AssetID    { return b.feeAsset }
func (b baseTx) Timestamp() uint64    { return b.timestamp }

// TransferTx is an asset transfer from its sender to a recipient.
type TransferTx struct {
	baseTx
	Recipient Recipient
	Amount    Amount
	Asset     AssetID
	Attachment ByteStr
}

func (t TransferTx) Type() TransactionType { return TransferTransaction }

func NewTransferTx(id crypto.Digest, sender Address, fee Amount, feeAsset AssetID, ts uint64, recipient Recipient, amount Amount, asset AssetID) TransferTx {
	return TransferTx{baseTx: baseTx{id, sender, fee, feeAsset, ts}, Recipient: recipient, Amount: amount, Asset: asset}
}

// DataTx writes a batch of DataEntry values to its sender's account.
type DataTx struct {
	baseTx
	Entries []DataEntry
}

func (t DataTx) Type() TransactionType { return DataTransaction }

func NewDataTx(id crypto.Digest, sender Address, fee Amount, ts uint64, entries []DataEntry) DataTx {
	return DataTx{baseTx: baseTx{id, sender, fee, WavesAsset, ts}, Entries: entries}
}

// LeaseTx leases Amount from its sender to Recipient.
type LeaseTx struct {
	baseTx
	Recipient Recipient
	Amount    Amount
}

func (t LeaseTx) Type() TransactionType { return LeaseTransaction }

func NewLeaseTx(id crypto.Digest, sender Address, fee Amount, ts uint64, recipient Recipient, amount Amount) LeaseTx {
	return LeaseTx{baseTx: baseTx{id, sender, fee, WavesAsset, ts}, Recipient: recipient, Amount: amount}
}

// LeaseCancelTx cancels a previously active lease by id.
type LeaseCancelTx struct {
	baseTx
	LeaseID crypto.Digest
}

func (t LeaseCancelTx) Type() TransactionType { return LeaseCancelTransaction }

func NewLeaseCancelTx(id crypto.Digest, sender Address, fee Amount, ts uint64, leaseID crypto.Digest) LeaseCancelTx {
	return LeaseCancelTx{baseTx: baseTx{id, sender, fee, WavesAsset, ts}, LeaseID: leaseID}
}

// SponsorFeeTx declares (or cancels, rate==0) a sponsorship rate for an
// issued asset.
type SponsorFeeTx struct {
	baseTx
	Asset AssetID
	Rate  int64
}

func (t SponsorFeeTx) Type() TransactionType { return SponsorFeeTransaction }

func NewSponsorFeeTx(id crypto.Digest, sender Address, fee Amount, ts uint64, asset AssetID, rate int64) SponsorFeeTx {
	return SponsorFeeTx{baseTx: baseTx{id, sender, fee, WavesAsset, ts}, Asset: asset, Rate: rate}
}

// InvokeScriptTx invokes a callable of a dApp script.
type InvokeScriptTx struct {
	baseTx
	DApp      Recipient
	Call      FunctionCall
	Payments  []Payment
}

func (t InvokeScriptTx) Type() TransactionType { return InvokeScriptTransaction }

func NewInvokeScriptTx(id crypto.Digest, sender Address, fee Amount, feeAsset AssetID, ts uint64, dApp Recipient, call FunctionCall, payments []Payment) InvokeScriptTx {
	return InvokeScriptTx{baseTx: baseTx{id, sender, fee, feeAsset, ts}, DApp: dApp, Call: call, Payments: payments}
}

// FunctionCall names the invoked callable and its literal arguments.
type FunctionCall struct {
	Name string
	Args []interface{}
}

// Payment is one attached payment of an InvokeScriptTx.
type Payment struct {
	Amount Amount
	Asset  AssetID
}

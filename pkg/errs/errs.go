// Package errs implements the diff engine's two-tier error taxonomy:
// RejectError members, which mean the transaction never enters a
// block, and FailedTransactionError members, which mean the
// transaction enters the block, consumes its fee, and applies no
// state mutation beyond the fee. One constructor per named error
// variant, plus an Extend helper used to wrap errors while walking
// back up a call chain.
package errs

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/Nekuips1x/Waves/pkg/proto"
)

// RejectError is implemented by every member of the "never enters the
// block" variant family.
type RejectError interface {
	error
	rejectError()
}

type rejectBase struct{ msg string }

func (r rejectBase) Error() string { return r.msg }
func (r rejectBase) rejectError()  {}

func NewInvalidSignature(msg string) RejectError { return rejectBase{"invalid signature: " + msg} }
func NewInvalidAddress(msg string) RejectError    { return rejectBase{"invalid address: " + msg} }
func NewOverflowError(msg string) RejectError     { return rejectBase{"overflow: " + msg} }
func NewGenericError(msg string) RejectError      { return rejectBase{msg} }
func NewInsufficientFee(msg string) RejectError   { return rejectBase{"insufficient fee: " + msg} }
func NewNonPositiveAmount(msg string) RejectError { return rejectBase{"non-positive amount: " + msg} }
func NewUnissuedAsset(msg string) RejectError      { return rejectBase{"unissued asset: " + msg} }
func NewAliasDoesNotExist(msg string) RejectError  { return rejectBase{"alias does not exist: " + msg} }
func NewAccountBalanceError(msg string) RejectError {
	return rejectBase{"account balance error: " + msg}
}
func NewReentrancyDisallowed() RejectError { return rejectBase{"reentrant invoke disallowed"} }
func NewAliasTaken(msg string) RejectError { return rejectBase{"alias already taken: " + msg} }

// Height-gated rejection variants (active only since
// syncDAppCheckTransfersHeight; before that height these conditions
// surface as FailedTransactionError instead — see package action for
// the gating call sites).
func NewNegativeAmount(msg string) RejectError      { return rejectBase{"negative amount: " + msg} }
func NewAssetAlreadyExists(msg string) RejectError  { return rejectBase{"asset already exists: " + msg} }
func NewWriteSetTooLarge(msg string) RejectError    { return rejectBase{"write set too large: " + msg} }

// FailedTransactionError is implemented by every member of the
// "enters the block, fee consumed, no mutation" variant family. Each
// variant carries the complexity spent before the failure, so that
// propagation can add subsequent local costs to the running total the
// block ultimately records.
type FailedTransactionError interface {
	error
	failedError()
	Complexity() uint64
	WithAddedComplexity(extra uint64) FailedTransactionError
}

// DAppExecutionError is a runtime error raised by the dApp's own
// callable (a `throw` or unhandled exception).
type DAppExecutionError struct {
	Msg        string
	complexity uint64
	Log        []LogEntry
}

// LogEntry is one (name, value) binding recorded by the evaluator, in
// evaluation order.
type LogEntry struct {
	Name  string
	Value string
}

func NewDAppExecutionError(msg string, complexity uint64, log []LogEntry) FailedTransactionError {
	return &DAppExecutionError{Msg: msg, complexity: complexity, Log: log}
}

func (e *DAppExecutionError) Error() string {
	return fmt.Sprintf("DApp execution failed: %s", e.Msg)
}
func (e *DAppExecutionError) failedError()        {}
func (e *DAppExecutionError) Complexity() uint64   { return e.complexity }
func (e *DAppExecutionError) WithAddedComplexity(extra uint64) FailedTransactionError {
	clone := *e
	clone.complexity += extra
	return &clone
}

// AssetExecutionInActionError is a runtime error raised inside an
// asset script invoked as part of an action (transfer/reissue/burn/
// sponsor touching a scripted asset).
type AssetExecutionInActionError struct {
	Msg        string
	complexity uint64
	Log        []LogEntry
	AssetID    proto.AssetID
}

func NewAssetExecutionInActionError(msg string, complexity uint64, log []LogEntry, asset proto.AssetID) FailedTransactionError {
	return &AssetExecutionInActionError{Msg: msg, complexity: complexity, Log: log, AssetID: asset}
}

func (e *AssetExecutionInActionError) Error() string {
	return fmt.Sprintf("asset script %s execution failed: %s", e.AssetID.String(), e.Msg)
}
func (e *AssetExecutionInActionError) failedError()      {}
func (e *AssetExecutionInActionError) Complexity() uint64 { return e.complexity }
func (e *AssetExecutionInActionError) WithAddedComplexity(extra uint64) FailedTransactionError {
	clone := *e
	clone.complexity += extra
	return &clone
}

// NotAllowedByAssetInActionError means the asset script returned
// `false` for an action (rather than throwing).
type NotAllowedByAssetInActionError struct {
	complexity uint64
	Log        []LogEntry
	AssetID    proto.AssetID
}

func NewNotAllowedByAssetInActionError(complexity uint64, log []LogEntry, asset proto.AssetID) FailedTransactionError {
	return &NotAllowedByAssetInActionError{complexity: complexity, Log: log, AssetID: asset}
}

func (e *NotAllowedByAssetInActionError) Error() string {
	return fmt.Sprintf("transaction is not allowed by asset script %s", e.AssetID.String())
}
func (e *NotAllowedByAssetInActionError) failedError()      {}
func (e *NotAllowedByAssetInActionError) Complexity() uint64 { return e.complexity }
func (e *NotAllowedByAssetInActionError) WithAddedComplexity(extra uint64) FailedTransactionError {
	clone := *e
	clone.complexity += extra
	return &clone
}

// FeeForActionsError means the attached (and, if sponsored, converted)
// fee fell below the post-hoc computed minimum fee.
type FeeForActionsError struct {
	Msg        string
	complexity uint64
	MinFee     int64
}

func NewFeeForActionsError(msg string, complexity uint64, minFee int64) FailedTransactionError {
	return &FeeForActionsError{Msg: msg, complexity: complexity, MinFee: minFee}
}

func (e *FeeForActionsError) Error() string { return fmt.Sprintf("fee for actions: %s", e.Msg) }
func (e *FeeForActionsError) failedError()      {}
func (e *FeeForActionsError) Complexity() uint64 { return e.complexity }
func (e *FeeForActionsError) WithAddedComplexity(extra uint64) FailedTransactionError {
	clone := *e
	clone.complexity += extra
	return &clone
}

// Extend wraps err with msg as context, preserving err for errors.As /
// errors.Is so that callers further up the chain can still recover the
// original RejectError/FailedTransactionError variant.
func Extend(err error, msg string) error {
	if err == nil {
		return nil
	}
	return errors.Wrap(err, msg)
}

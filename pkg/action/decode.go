package action

import (
	"github.com/pkg/errors"

	"github.com/Nekuips1x/Waves/pkg/crypto"
	"github.com/Nekuips1x/Waves/pkg/proto"
	"github.com/Nekuips1x/Waves/pkg/ride"
)

// DecodeActions converts a callable's evaluated result into an
// ordered []Action. Since V4 a callable may instead return a 2-tuple of
// (action list, arbitrary return value); only the first element is
// folded by the interpreter, the second is surfaced to the caller
// untouched (handled by pkg/invoke, not here).
//
// This is the one place the action package looks inside a ride.Value:
// the evaluator's CaseObject representation of action types
// (ScriptTransfer, Issue, Reissue, Burn, SponsorFee, Lease,
// LeaseCancel, *Entry) is itself a RIDE-language concern, not a
// diff-engine one, but decoding it into Action values is the glue
// pkg/invoke's Applier needs between "evaluator ran" and "interpreter
// folds".
func DecodeActions(result ride.Value, scheme byte) ([]Action, error) {
	var list []ride.Value
	switch result.Kind {
	case ride.List:
		list = result.ListValues
	case ride.Tuple:
		if len(result.TupleValues) == 0 || result.TupleValues[0].Kind != ride.List {
			return nil, errors.New("invoke result tuple must start with an action list")
		}
		list = result.TupleValues[0].ListValues
	default:
		return nil, errors.New("invoke result must be a list of actions or a (actions, value) tuple")
	}

	out := make([]Action, 0, len(list))
	var issueNonce, leaseNonce int64
	for _, v := range list {
		a, err := decodeOne(v, scheme, &issueNonce, &leaseNonce)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

func decodeOne(v ride.Value, scheme byte, issueNonce, leaseNonce *int64) (Action, error) {
	if v.Kind != ride.CaseObject {
		return Action{}, errors.New("action list element is not a structured action")
	}
	switch v.CaseType {
	case "ScriptTransfer":
		recipient, err := ValueToRecipient(field(v, "recipient"), scheme)
		if err != nil {
			return Action{}, errors.Wrap(err, "ScriptTransfer.recipient")
		}
		asset, err := valueToAsset(field(v, "asset"))
		if err != nil {
			return Action{}, errors.Wrap(err, "ScriptTransfer.asset")
		}
		return NewAssetTransfer(recipient, field(v, "amount").LongValue, asset), nil

	case "BooleanEntry", "IntegerEntry", "BinaryEntry", "StringEntry", "DeleteEntry":
		entry, err := valueToDataEntry(v)
		if err != nil {
			return Action{}, err
		}
		return NewDataAction(entry), nil

	case "Issue":
		nonce := *issueNonce
		*issueNonce++
		return NewIssueAction(
			field(v, "name").StringValue,
			field(v, "description").StringValue,
			byte(field(v, "decimals").LongValue),
			field(v, "quantity").LongValue,
			field(v, "isReissuable").BoolValue,
			nonce,
		), nil

	case "Reissue":
		asset, err := valueToAsset(field(v, "assetId"))
		if err != nil {
			return Action{}, errors.Wrap(err, "Reissue.assetId")
		}
		return NewReissueAction(asset, field(v, "quantity").LongValue, field(v, "isReissuable").BoolValue), nil

	case "Burn":
		asset, err := valueToAsset(field(v, "assetId"))
		if err != nil {
			return Action{}, errors.Wrap(err, "Burn.assetId")
		}
		return NewBurnAction(asset, field(v, "quantity").LongValue), nil

	case "SponsorFee":
		asset, err := valueToAsset(field(v, "assetId"))
		if err != nil {
			return Action{}, errors.Wrap(err, "SponsorFee.assetId")
		}
		fee := field(v, "minSponsoredAssetFee")
		minFee := int64(0)
		if fee.Kind != ride.Unit {
			minFee = fee.LongValue
		}
		return NewSponsorFeeAction(asset, minFee), nil

	case "Lease":
		recipient, err := ValueToRecipient(field(v, "recipient"), scheme)
		if err != nil {
			return Action{}, errors.Wrap(err, "Lease.recipient")
		}
		nonce := *leaseNonce
		*leaseNonce++
		return NewLeaseAction(recipient, field(v, "amount").LongValue, nonce), nil

	case "LeaseCancel":
		idBytes := field(v, "leaseId").BytesValue
		digest, err := crypto.NewDigestFromBytes(idBytes)
		if err != nil {
			return Action{}, errors.Wrap(err, "LeaseCancel.leaseId")
		}
		return NewLeaseCancelAction(digest), nil

	default:
		return Action{}, errors.Errorf("unknown action type %q", v.CaseType)
	}
}

func field(v ride.Value, name string) ride.Value {
	return v.CaseFields[name]
}

// ValueToRecipient converts an evaluator Address/Alias CaseObject into
// a proto.Recipient, exported so pkg/invoke's sync-call applier can
// resolve a callable invocation target the same way actions do.
func ValueToRecipient(v ride.Value, scheme byte) (proto.Recipient, error) {
	if v.Kind != ride.CaseObject {
		return proto.Recipient{}, errors.New("recipient is not a structured Address/Alias value")
	}
	switch v.CaseType {
	case "Address":
		b := field(v, "bytes")
		if b.Kind != ride.Bytes || len(b.BytesValue) != proto.AddressLength {
			return proto.Recipient{}, errors.New("Address.bytes is not a 26-byte value")
		}
		var raw [proto.AddressLength]byte
		copy(raw[:], b.BytesValue)
		addr, err := proto.NewAddress(scheme, raw)
		if err != nil {
			return proto.Recipient{}, err
		}
		return proto.NewRecipientFromAddress(addr), nil
	case "Alias":
		al, err := proto.NewAlias(scheme, field(v, "alias").StringValue)
		if err != nil {
			return proto.Recipient{}, err
		}
		return proto.NewRecipientFromAlias(al), nil
	default:
		return proto.Recipient{}, errors.Errorf("unknown recipient case type %q", v.CaseType)
	}
}

func valueToAsset(v ride.Value) (proto.AssetID, error) {
	switch v.Kind {
	case ride.Unit:
		return proto.WavesAsset, nil
	case ride.Bytes:
		return proto.NewIssuedAsset(proto.ByteStr(v.BytesValue))
	default:
		return proto.AssetID{}, errors.New("asset id must be Unit (Waves) or a byte string")
	}
}

func valueToDataEntry(v ride.Value) (proto.DataEntry, error) {
	key := field(v, "key").StringValue
	switch v.CaseType {
	case "BooleanEntry":
		return proto.NewBooleanEntry(key, field(v, "value").BoolValue), nil
	case "IntegerEntry":
		return proto.NewIntegerEntry(key, field(v, "value").LongValue), nil
	case "BinaryEntry":
		return proto.NewBinaryEntry(key, proto.ByteStr(field(v, "value").BytesValue)), nil
	case "StringEntry":
		return proto.NewStringEntry(key, field(v, "value").StringValue), nil
	case "DeleteEntry":
		return proto.NewDeleteEntry(key), nil
	default:
		return proto.DataEntry{}, errors.Errorf("unknown data entry case type %q", v.CaseType)
	}
}

package invoke

import (
	"github.com/pkg/errors"

	"github.com/Nekuips1x/Waves/pkg/proto"
	"github.com/Nekuips1x/Waves/pkg/ride"
)

// Declared field orders for pseudo-transaction records: a record
// renders its fields in a fixed declared order, never map order.
var (
	transferTxFields   = []string{"amount", "assetId", "recipient", "id", "sender", "timestamp"}
	reissueTxFields    = []string{"quantity", "assetId", "reissuable", "id", "sender", "timestamp"}
	burnTxFields       = []string{"quantity", "assetId", "id", "sender", "timestamp"}
	sponsorFeeTxFields = []string{"minSponsoredAssetFee", "assetId", "id", "sender", "timestamp"}
)

// bindVerifierScope seeds the standard asset-verifier scope into ev
// before the verifier expression runs: NETWORKBYTE (the chain byte)
// and `tx`, the pseudo-transaction record the script reads its fields
// off. Both bindings
// land in the evaluation log, so a failed verification's rendered
// log always carries them.
func bindVerifierScope(ev *ride.Evaluator, tx proto.PseudoTx, scheme byte, cfg ride.BuiltinConfig) error {
	networkByte, err := ride.NewBytes([]byte{scheme}, cfg.MaxBytesLength)
	if err != nil {
		return err
	}
	ev.Bind("NETWORKBYTE", networkByte)

	record, order, err := pseudoTxRecord(tx, cfg)
	if err != nil {
		return err
	}
	rendered, err := record.RenderRecord(order)
	if err != nil {
		return err
	}
	ev.BindRendered("tx", record, rendered)
	return nil
}

// pseudoTxRecord converts a PseudoTx into the case-object value an
// asset script observes as `tx`, together with the record's declared
// field order for rendering.
func pseudoTxRecord(tx proto.PseudoTx, cfg ride.BuiltinConfig) (ride.Value, []string, error) {
	id, err := ride.NewBytes(tx.RealTxID.Bytes(), cfg.MaxBytesLength)
	if err != nil {
		return ride.Value{}, nil, err
	}
	sender, err := addressValue(tx.Sender, cfg)
	if err != nil {
		return ride.Value{}, nil, err
	}
	asset, err := assetValue(tx.Asset, cfg)
	if err != nil {
		return ride.Value{}, nil, err
	}
	common := map[string]ride.Value{
		"id":        id,
		"sender":    sender,
		"assetId":   asset,
		"timestamp": ride.NewLong(int64(tx.Timestamp)),
	}

	switch tx.Kind {
	case proto.PseudoTransfer:
		recipient, err := recipientValue(tx.Recipient, cfg)
		if err != nil {
			return ride.Value{}, nil, err
		}
		common["amount"] = ride.NewLong(int64(tx.Amount))
		common["recipient"] = recipient
		return ride.NewCaseObject("TransferTransaction", common), transferTxFields, nil
	case proto.PseudoReissue:
		common["quantity"] = ride.NewLong(tx.Quantity)
		common["reissuable"] = ride.NewBool(tx.Reissuable)
		return ride.NewCaseObject("ReissueTransaction", common), reissueTxFields, nil
	case proto.PseudoBurn:
		common["quantity"] = ride.NewLong(tx.Quantity)
		return ride.NewCaseObject("BurnTransaction", common), burnTxFields, nil
	case proto.PseudoSponsorFee:
		common["minSponsoredAssetFee"] = ride.NewLong(tx.MinSponsoredFee)
		return ride.NewCaseObject("SponsorFeeTransaction", common), sponsorFeeTxFields, nil
	default:
		return ride.Value{}, nil, errors.Errorf("unknown pseudo-transaction kind %d", tx.Kind)
	}
}

func addressValue(addr proto.Address, cfg ride.BuiltinConfig) (ride.Value, error) {
	b, err := ride.NewBytes(addr.Bytes(), cfg.MaxBytesLength)
	if err != nil {
		return ride.Value{}, err
	}
	return ride.NewCaseObject("Address", map[string]ride.Value{"bytes": b}), nil
}

func assetValue(asset proto.AssetID, cfg ride.BuiltinConfig) (ride.Value, error) {
	if asset.IsWaves() {
		return ride.NewUnit(), nil
	}
	id, _ := asset.ID()
	return ride.NewBytes(id.Bytes(), cfg.MaxBytesLength)
}

func recipientValue(r proto.Recipient, cfg ride.BuiltinConfig) (ride.Value, error) {
	if r.Address != nil {
		return addressValue(*r.Address, cfg)
	}
	alias, err := ride.NewString(r.Alias.Name(), cfg.MaxStringLength)
	if err != nil {
		return ride.Value{}, err
	}
	return ride.NewCaseObject("Alias", map[string]ride.Value{"alias": alias}), nil
}

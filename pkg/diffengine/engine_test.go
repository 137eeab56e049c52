package diffengine

import (
	"encoding/binary"
	"math"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nekuips1x/Waves/pkg/crypto"
	"github.com/Nekuips1x/Waves/pkg/errs"
	"github.com/Nekuips1x/Waves/pkg/invoke"
	"github.com/Nekuips1x/Waves/pkg/proto"
	"github.com/Nekuips1x/Waves/pkg/ride"
	"github.com/Nekuips1x/Waves/pkg/settings"
	"github.com/Nekuips1x/Waves/pkg/state"
)

// fakeChain is an in-memory state.Blockchain snapshot for end-to-end
// driver scenarios.
type fakeChain struct {
	height       proto.Height
	balances     map[proto.Address]int64
	assets       map[string]*state.AssetDescription
	aliases      map[proto.Alias]proto.Address
	leases       map[crypto.Digest]state.LeaseDetails
	scripts      map[proto.Address]*state.ScriptInfo
	assetScripts map[string]*state.AssetScript
	sponsored    map[string]int64
}

func newFakeChain(height proto.Height) *fakeChain {
	return &fakeChain{
		height:       height,
		balances:     map[proto.Address]int64{},
		assets:       map[string]*state.AssetDescription{},
		aliases:      map[proto.Alias]proto.Address{},
		leases:       map[crypto.Digest]state.LeaseDetails{},
		scripts:      map[proto.Address]*state.ScriptInfo{},
		assetScripts: map[string]*state.AssetScript{},
		sponsored:    map[string]int64{},
	}
}

func (f *fakeChain) Height() proto.Height                           { return f.height }
func (f *fakeChain) WavesBalance(a proto.Address) (int64, error)    { return f.balances[a], nil }
func (f *fakeChain) AssetBalance(proto.Address, proto.AssetID) (int64, error) { return 0, nil }
func (f *fakeChain) LeaseBalance(proto.Address) (state.LeaseBalance, error) {
	return state.LeaseBalance{}, nil
}
func (f *fakeChain) AssetDescription(a proto.AssetID) (*state.AssetDescription, bool, error) {
	d, ok := f.assets[a.Key()]
	return d, ok, nil
}
func (f *fakeChain) AssetIsSponsored(a proto.AssetID) (bool, int64, error) {
	rate, ok := f.sponsored[a.Key()]
	return ok && rate != 0, rate, nil
}
func (f *fakeChain) ResolveAlias(al proto.Alias) (proto.Address, bool, error) {
	a, ok := f.aliases[al]
	return a, ok, nil
}
func (f *fakeChain) AccountData(proto.Address, string) (proto.DataEntry, bool, error) {
	return proto.DataEntry{}, false, nil
}
func (f *fakeChain) LeaseDetails(id crypto.Digest) (*state.LeaseDetails, bool, error) {
	d, ok := f.leases[id]
	if !ok {
		return nil, false, nil
	}
	return &d, true, nil
}
func (f *fakeChain) AccountScript(a proto.Address) (*state.ScriptInfo, bool, error) {
	s, ok := f.scripts[a]
	return s, ok, nil
}
func (f *fakeChain) AssetScript(a proto.AssetID) (*state.AssetScript, bool, error) {
	s, ok := f.assetScripts[a.Key()]
	return s, ok, nil
}

// fakeResolver hands back one callable body per function name and one
// verifier expression for every asset script.
type fakeResolver struct {
	callables map[string]invoke.Callable
	verifier  *ride.Expr
}

func (r fakeResolver) ResolveCallable(_ []byte, name string, _ []ride.Value) (invoke.Callable, bool, error) {
	c, ok := r.callables[name]
	return c, ok, nil
}

func (r fakeResolver) ResolveVerifier(_ []byte, _ proto.PseudoTx) (*ride.Expr, error) {
	return r.verifier, nil
}

type fakePubkeys struct {
	keys map[proto.Address]crypto.PublicKey
}

func (p fakePubkeys) PublicKeyByAddress(a proto.Address) (crypto.PublicKey, bool, error) {
	k, ok := p.keys[a]
	return k, ok, nil
}

const returnActionsFuncID uint16 = 59001

func keyedAddr(t *testing.T, seed byte) (proto.Address, crypto.PublicKey) {
	t.Helper()
	var pk crypto.PublicKey
	pk[0] = seed
	addr, err := proto.AddressFromPublicKey('W', pk)
	require.NoError(t, err)
	return addr, pk
}

func txDigest(b byte) crypto.Digest {
	var d crypto.Digest
	d[0] = b
	return d
}

func bytesValue(t *testing.T, b []byte) ride.Value {
	t.Helper()
	v, err := ride.NewBytes(b, 32*1024)
	require.NoError(t, err)
	return v
}

func stringValue(t *testing.T, s string) ride.Value {
	t.Helper()
	v, err := ride.NewString(s, 32*1024)
	require.NoError(t, err)
	return v
}

func addressObject(t *testing.T, a proto.Address) ride.Value {
	t.Helper()
	return ride.NewCaseObject("Address", map[string]ride.Value{"bytes": bytesValue(t, a.Bytes())})
}

func issuedAsset(t *testing.T, seed byte) proto.AssetID {
	t.Helper()
	id := txDigest(seed)
	asset, err := proto.NewIssuedAsset(proto.ByteStr(id.Bytes()))
	require.NoError(t, err)
	return asset
}

// testFixture wires an Engine whose single dApp callable returns a
// fixed action list from a native call, the same opaque-handle style
// the invoke applier tests use.
type testFixture struct {
	engine *Engine
	chain  *fakeChain
	dApp   proto.Address
	dAppPK crypto.PublicKey
	caller proto.Address
}

func newFixture(t *testing.T, height proto.Height, activation settings.ActivationHeights, actions ride.Value, verifier *ride.Expr) *testFixture {
	t.Helper()
	caller, callerPK := keyedAddr(t, 1)
	dApp, dAppPK := keyedAddr(t, 2)

	chain := newFakeChain(height)
	chain.scripts[dApp] = &state.ScriptInfo{Script: []byte("compiled-dapp"), StdLibVersion: settings.V5}

	builtins := map[uint16]ride.Builtin{
		returnActionsFuncID: func(ride.BuiltinConfig, []ride.Value) (ride.Value, error) {
			return actions, nil
		},
	}
	resolver := fakeResolver{
		callables: map[string]invoke.Callable{
			"call": {Body: &ride.Expr{Kind: ride.FunctionCall, Call: ride.NativeHeader(returnActionsFuncID)}},
		},
		verifier: verifier,
	}
	pubkeys := fakePubkeys{keys: map[proto.Address]crypto.PublicKey{
		caller: callerPK,
		dApp:   dAppPK,
	}}

	engine := NewEngine('W', activation, settings.FeatureFlags{}, builtins,
		ride.CostTable{returnActionsFuncID: 1}, resolver, pubkeys)
	return &testFixture{engine: engine, chain: chain, dApp: dApp, dAppPK: dAppPK, caller: caller}
}

func (f *testFixture) invokeTx(id byte, fee int64) proto.InvokeScriptTx {
	return proto.NewInvokeScriptTx(txDigest(id), f.caller, proto.Amount(fee), proto.WavesAsset, 1,
		proto.NewRecipientFromAddress(f.dApp), proto.FunctionCall{Name: "call"}, nil)
}

func (f *testFixture) run(tx proto.Transaction) (state.Diff, error) {
	view := state.NewCompositeView(f.chain, state.Empty())
	return f.engine.DiffTransaction(view, tx)
}

const generousFee = 100 * settings.FeeUnit

func TestInvokeNegativeBurnRejectsSinceTransfersCheckHeight(t *testing.T) {
	asset := issuedAsset(t, 40)
	actions := ride.NewList([]ride.Value{
		ride.NewCaseObject("Burn", map[string]ride.Value{
			"assetId":  bytesValue(t, mustAssetBytes(asset)),
			"quantity": ride.NewLong(-1),
		}),
	})
	fx := newFixture(t, 1000, settings.ActivationHeights{SyncDAppCheckTransfersHeight: 500}, actions, nil)
	volume, err := state.NewIssuedTotalVolume(100)
	require.NoError(t, err)
	fx.chain.assets[asset.Key()] = &state.AssetDescription{Issuer: fx.dAppPK, Reissuable: true, TotalVolume: volume}

	diff, err := fx.run(fx.invokeTx(10, generousFee))
	require.Error(t, err)
	_, isReject := err.(errs.RejectError)
	assert.True(t, isReject, "negative burn at/after the activation height must reject")
	assert.Contains(t, err.Error(), "Negative burn quantity = -1")
	assert.Empty(t, diff.UpdatedAssets, "a rejected invoke must leave no asset mutation")
	assert.Empty(t, diff.Transactions)
}

func TestInvokeNegativeBurnFailsForFeeBeforeTransfersCheckHeight(t *testing.T) {
	asset := issuedAsset(t, 41)
	// Legacy-era action sequence: a reissue side effect precedes the
	// bad burn; the whole invocation still only consumes the fee.
	actions := ride.NewList([]ride.Value{
		ride.NewCaseObject("Reissue", map[string]ride.Value{
			"assetId":      bytesValue(t, mustAssetBytes(asset)),
			"quantity":     ride.NewLong(1),
			"isReissuable": ride.NewBool(true),
		}),
		ride.NewCaseObject("Burn", map[string]ride.Value{
			"assetId":  bytesValue(t, mustAssetBytes(asset)),
			"quantity": ride.NewLong(-1),
		}),
	})
	fx := newFixture(t, 1000, settings.ActivationHeights{SyncDAppCheckTransfersHeight: 5000}, actions, nil)
	volume, err := state.NewIssuedTotalVolume(100)
	require.NoError(t, err)
	fx.chain.assets[asset.Key()] = &state.AssetDescription{Issuer: fx.dAppPK, Reissuable: true, TotalVolume: volume}

	tx := fx.invokeTx(11, generousFee)
	diff, err := fx.run(tx)
	require.NoError(t, err, "below the activation height a negative burn fails for fee, not rejects")

	rec, ok := diff.Transactions[tx.ID()]
	require.True(t, ok)
	assert.False(t, rec.Applied)
	assert.Contains(t, diff.ScriptResults[tx.ID()].ErrorMessage, "Negative burn quantity = -1")
	assert.Empty(t, diff.UpdatedAssets, "fail-for-fee applies no state mutation beyond the fee")
}

func TestInvokeNegativeLeaseRejectsSinceTransfersCheckHeight(t *testing.T) {
	callerAddr, _ := keyedAddr(t, 1)
	actions := ride.NewList([]ride.Value{
		ride.NewCaseObject("Lease", map[string]ride.Value{
			"recipient": addressObject(t, callerAddr),
			"amount":    ride.NewLong(-1),
		}),
	})
	fx := newFixture(t, 1000, settings.ActivationHeights{SyncDAppCheckTransfersHeight: 500}, actions, nil)

	_, err := fx.run(fx.invokeTx(12, generousFee))
	require.Error(t, err)
	_, isReject := err.(errs.RejectError)
	assert.True(t, isReject)
	assert.Contains(t, err.Error(), "Negative lease amount = -1")
}

func TestInvokeMinFeeShortageFailsForFee(t *testing.T) {
	actions := ride.NewList(nil)
	fx := newFixture(t, 1000, settings.ActivationHeights{SyncDAppCheckTransfersHeight: 500}, actions, nil)

	// First pass with a generous fee to learn the deterministic spent
	// complexity, from which the minimum fee follows.
	okTx := fx.invokeTx(13, generousFee)
	okDiff, err := fx.run(okTx)
	require.NoError(t, err)
	rec, ok := okDiff.Transactions[okTx.ID()]
	require.True(t, ok)
	require.True(t, rec.Applied)
	minFee := invoke.MinFee(rec.SpentComplexity, settings.V5, 0, 0)

	shortTx := fx.invokeTx(14, minFee-1)
	shortDiff, err := fx.run(shortTx)
	require.NoError(t, err, "a min-fee shortage is fail-for-fee, the tx still enters the block")
	shortRec, ok := shortDiff.Transactions[shortTx.ID()]
	require.True(t, ok)
	assert.False(t, shortRec.Applied)
	assert.Contains(t, shortDiff.ScriptResults[shortTx.ID()].ErrorMessage, "fee is less than the minimum required")

	exactTx := fx.invokeTx(15, minFee)
	exactDiff, err := fx.run(exactTx)
	require.NoError(t, err)
	assert.True(t, exactDiff.Transactions[exactTx.ID()].Applied)
}

func TestInvokeLeaseLifecycle(t *testing.T) {
	recipient, _ := keyedAddr(t, 3)
	const leaseAmount = int64(10_000 * 100_000_000)
	txID := txDigest(16)

	// Independently recompute the protocol's lease-id formula:
	// blake2b256(tx_id || u32_le(nonce) || recipient || i64_be(amount)).
	buf := append([]byte{}, txID.Bytes()...)
	buf = append(buf, make([]byte, 4)...) // nonce 0, little-endian
	buf = append(buf, recipient.Bytes()...)
	var amountBE [8]byte
	binary.BigEndian.PutUint64(amountBE[:], uint64(leaseAmount))
	buf = append(buf, amountBE[:]...)
	expectedID, err := crypto.SecureHash(buf)
	require.NoError(t, err)

	actions := ride.NewList([]ride.Value{
		ride.NewCaseObject("Lease", map[string]ride.Value{
			"recipient": addressObject(t, recipient),
			"amount":    ride.NewLong(leaseAmount),
		}),
		ride.NewCaseObject("BinaryEntry", map[string]ride.Value{
			"key":   stringValue(t, "leaseId"),
			"value": bytesValue(t, expectedID.Bytes()),
		}),
	})
	fx := newFixture(t, 1000, settings.ActivationHeights{SyncDAppCheckTransfersHeight: 500}, actions, nil)

	tx := proto.NewInvokeScriptTx(txID, fx.caller, proto.Amount(generousFee), proto.WavesAsset, 1,
		proto.NewRecipientFromAddress(fx.dApp), proto.FunctionCall{Name: "call"}, nil)
	diff, err := fx.run(tx)
	require.NoError(t, err)
	require.True(t, diff.Transactions[tx.ID()].Applied)

	lease, ok := diff.LeaseState[expectedID]
	require.True(t, ok, "lease id must equal the recomputed protocol hash")
	assert.Equal(t, state.LeaseActive, lease.Status)
	assert.Equal(t, leaseAmount, lease.Amount)
	assert.Equal(t, proto.ByteStr(expectedID.Bytes()), diff.AccountData[fx.dApp]["leaseId"].Binary)
	assert.Equal(t, leaseAmount, diff.Portfolios[fx.dApp].Lease.Out)
	assert.Equal(t, leaseAmount, diff.Portfolios[recipient].Lease.In)

	// Cancel in a follow-up invocation that observes the first diff.
	cancelActions := ride.NewList([]ride.Value{
		ride.NewCaseObject("LeaseCancel", map[string]ride.Value{
			"leaseId": bytesValue(t, expectedID.Bytes()),
		}),
	})
	// The cancel fixture derives the same caller/dApp addresses from
	// the same seeds, so the cancelling dApp is the original lessor.
	cancelFx := newFixture(t, 1000, settings.ActivationHeights{SyncDAppCheckTransfersHeight: 500}, cancelActions, nil)
	cancelFx.chain.leases[expectedID] = lease

	cancelTx := cancelFx.invokeTx(17, generousFee)
	cancelDiff, err := cancelFx.run(cancelTx)
	require.NoError(t, err)
	cancelled, ok := cancelDiff.LeaseState[expectedID]
	require.True(t, ok)
	assert.Equal(t, state.LeaseCancelled, cancelled.Status)

	combined, err := state.Combine(diff, cancelDiff)
	require.NoError(t, err)
	assert.Equal(t, state.LeaseBalance{}, combined.Portfolios[fx.dApp].Lease,
		"lease then cancel must net the dApp's lease balance to zero")
	_, stillListed := combined.Portfolios[recipient]
	assert.False(t, stillListed, "the recipient's portfolio elides to empty after cancel")
}

func TestTransferTransactionLogRendering(t *testing.T) {
	recipient, _ := keyedAddr(t, 3)
	asset := issuedAsset(t, 42)

	actions := ride.NewList([]ride.Value{
		ride.NewCaseObject("ScriptTransfer", map[string]ride.Value{
			"recipient": addressObject(t, recipient),
			"amount":    ride.NewLong(5),
			"asset":     bytesValue(t, mustAssetBytes(asset)),
		}),
	})
	// The verifier binds @p and returns it: the asset denies the
	// transfer and its log carries the binding.
	verifier := &ride.Expr{
		Kind:     ride.Block,
		LetName:  "@p",
		LetValue: &ride.Expr{Kind: ride.False},
		Body:     &ride.Expr{Kind: ride.Ref, RefName: "@p"},
	}
	fx := newFixture(t, 1000, settings.ActivationHeights{SyncDAppCheckTransfersHeight: 500}, actions, verifier)
	fx.chain.assetScripts[asset.Key()] = &state.AssetScript{Script: []byte("compiled-asset"), Complexity: 3}

	tx := fx.invokeTx(18, generousFee)
	diff, err := fx.run(tx)
	require.NoError(t, err, "an asset-script denial is fail-for-fee")

	rec, ok := diff.Transactions[tx.ID()]
	require.True(t, ok)
	assert.False(t, rec.Applied)

	rendered := diff.ScriptResults[tx.ID()].ErrorMessage
	assert.Contains(t, rendered, "not allowed by asset script")
	assert.Contains(t, rendered, "\tNETWORKBYTE = base58'2W'\n")
	assert.Contains(t, rendered, "\t@p = false\n")
	assert.Regexp(t, regexp.MustCompile(
		`\ttx = TransferTransaction\(amount = 5, assetId = base58'\w+', recipient = Address\(bytes = base58'\w+'\), id = base58'\w+', sender = Address\(bytes = base58'\w+'\), timestamp = \d+\)`),
		rendered)
}

func TestTransferRejectsScriptedSponsoredFeeAsset(t *testing.T) {
	feeAsset := issuedAsset(t, 50)
	fx := newFixture(t, 1000, settings.ActivationHeights{}, ride.NewList(nil), nil)
	fx.chain.sponsored[feeAsset.Key()] = 5
	fx.chain.assetScripts[feeAsset.Key()] = &state.AssetScript{Script: []byte("compiled-asset"), Complexity: 1}

	recipient, _ := keyedAddr(t, 3)
	tx := proto.NewTransferTx(txDigest(51), fx.caller, 100, feeAsset, 1,
		proto.NewRecipientFromAddress(recipient), 10, proto.WavesAsset)
	_, err := fx.run(tx)
	require.Error(t, err)
	_, isReject := err.(errs.RejectError)
	assert.True(t, isReject)
	assert.Contains(t, err.Error(), "has a script")
}

func TestTransferFeeAmountOverflowCheckRetiredByRide4DApps(t *testing.T) {
	asset := issuedAsset(t, 52)
	recipient, _ := keyedAddr(t, 3)

	sender, _ := keyedAddr(t, 1)
	makeTx := func(id byte) proto.TransferTx {
		return proto.NewTransferTx(txDigest(id), sender, 1, proto.WavesAsset, 1,
			proto.NewRecipientFromAddress(recipient), math.MaxInt64, asset)
	}
	register := func(fx *testFixture) {
		volume, err := state.NewIssuedTotalVolume(math.MaxInt64)
		require.NoError(t, err)
		fx.chain.assets[asset.Key()] = &state.AssetDescription{Issuer: fx.dAppPK, Reissuable: false, TotalVolume: volume}
	}

	// Before activation, amount+fee overflow is checked explicitly and
	// rejects, even across different assets.
	before := newFixture(t, 1000, settings.ActivationHeights{Ride4DAppsHeight: 5000}, ride.NewList(nil), nil)
	register(before)
	_, err := before.run(makeTx(53))
	require.Error(t, err)
	_, isReject := err.(errs.RejectError)
	assert.True(t, isReject)
	assert.Contains(t, err.Error(), "overflow")

	// After activation only the portfolio algebra's per-asset checked
	// addition applies; the same transfer goes through.
	after := newFixture(t, 1000, settings.ActivationHeights{Ride4DAppsHeight: 500}, ride.NewList(nil), nil)
	register(after)
	tx := makeTx(54)
	diff, err := after.run(tx)
	require.NoError(t, err)
	assert.True(t, diff.Transactions[tx.ID()].Applied)
	assert.Equal(t, int64(math.MaxInt64), diff.Portfolios[recipient].Assets[asset.Key()])
}

func mustAssetBytes(asset proto.AssetID) []byte {
	id, ok := asset.ID()
	if !ok {
		panic("expected an issued asset")
	}
	return id.Bytes()
}

package invoke

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nekuips1x/Waves/pkg/crypto"
	"github.com/Nekuips1x/Waves/pkg/proto"
	"github.com/Nekuips1x/Waves/pkg/ride"
	"github.com/Nekuips1x/Waves/pkg/settings"
	"github.com/Nekuips1x/Waves/pkg/state"
)

// fakeChain is a minimal state.Blockchain exposing one scripted
// address, enough to drive a single synchronous invoke.
type fakeChain struct {
	scripts map[proto.Address]*state.ScriptInfo
}

func (f *fakeChain) Height() proto.Height { return 1_000_000 }
func (f *fakeChain) WavesBalance(proto.Address) (int64, error)               { return 0, nil }
func (f *fakeChain) AssetBalance(proto.Address, proto.AssetID) (int64, error) { return 0, nil }
func (f *fakeChain) LeaseBalance(proto.Address) (state.LeaseBalance, error)   { return state.LeaseBalance{}, nil }
func (f *fakeChain) AssetDescription(proto.AssetID) (*state.AssetDescription, bool, error) {
	return nil, false, nil
}
func (f *fakeChain) AssetIsSponsored(proto.AssetID) (bool, int64, error) { return false, 0, nil }
func (f *fakeChain) ResolveAlias(proto.Alias) (proto.Address, bool, error) {
	return proto.Address{}, false, nil
}
func (f *fakeChain) AccountData(proto.Address, string) (proto.DataEntry, bool, error) {
	return proto.DataEntry{}, false, nil
}
func (f *fakeChain) LeaseDetails(crypto.Digest) (*state.LeaseDetails, bool, error) {
	return nil, false, nil
}
func (f *fakeChain) AccountScript(addr proto.Address) (*state.ScriptInfo, bool, error) {
	s, ok := f.scripts[addr]
	return s, ok, nil
}
func (f *fakeChain) AssetScript(proto.AssetID) (*state.AssetScript, bool, error) {
	return nil, false, nil
}

// fakeResolver treats "script bytes" as an opaque handle and always
// hands back the one Callable/verifier it was constructed with.
type fakeResolver struct {
	callable Callable
}

func (r fakeResolver) ResolveCallable(_ []byte, _ string, _ []ride.Value) (Callable, bool, error) {
	return r.callable, true, nil
}
func (r fakeResolver) ResolveVerifier(_ []byte, _ proto.PseudoTx) (*ride.Expr, error) {
	return nil, nil
}

type fakePubkeys struct {
	keys map[proto.Address]crypto.PublicKey
}

func (p fakePubkeys) PublicKeyByAddress(addr proto.Address) (crypto.PublicKey, bool, error) {
	k, ok := p.keys[addr]
	return k, ok, nil
}

const testReturnActionsFuncID uint16 = 59000

func keyedAddress(t *testing.T, seed byte) (proto.Address, crypto.PublicKey) {
	t.Helper()
	var pk crypto.PublicKey
	pk[0] = seed
	addr, err := proto.AddressFromPublicKey('W', pk)
	require.NoError(t, err)
	return addr, pk
}

func TestApplierInvokeFoldsTransferIntoSharedView(t *testing.T) {
	callerAddr, _ := keyedAddress(t, 1)
	calleeAddr, calleePK := keyedAddress(t, 2)

	var recipientBytes [proto.AddressLength]byte
	copy(recipientBytes[:], callerAddr.Bytes())

	returnedActions := ride.NewList([]ride.Value{
		ride.NewCaseObject("ScriptTransfer", map[string]ride.Value{
			"recipient": ride.NewCaseObject("Address", map[string]ride.Value{
				"bytes": mustBytes(recipientBytes[:]),
			}),
			"amount": ride.NewLong(100),
			"asset":  ride.NewUnit(),
		}),
	})

	builtins := map[uint16]ride.Builtin{
		testReturnActionsFuncID: func(ride.BuiltinConfig, []ride.Value) (ride.Value, error) {
			return returnedActions, nil
		},
	}

	chain := &fakeChain{scripts: map[proto.Address]*state.ScriptInfo{
		calleeAddr: {Script: []byte("compiled-script")},
	}}
	view := state.NewCompositeView(chain, state.Empty())

	resolver := fakeResolver{callable: Callable{
		Body: &ride.Expr{Kind: ride.FunctionCall, Call: ride.NativeHeader(testReturnActionsFuncID)},
	}}
	pubkeys := fakePubkeys{keys: map[proto.Address]crypto.PublicKey{calleeAddr: calleePK}}

	applier := NewApplier(
		view, 'W', resolver, pubkeys, builtins,
		ride.CostTable{testReturnActionsFuncID: 1},
		ride.BuiltinConfig{Version: settings.V5, MaxBytesLength: 32 * 1024, MaxStringLength: 32 * 1024},
		settings.V5, settings.FeatureFlags{}, settings.ActivationHeights{},
		crypto.Digest{}, 0, 1_000_000, 10_000,
	)

	_, consumed, _, err := applier.InvokeRoot(callerAddr, calleeAddr, "default", nil, nil)
	require.NoError(t, err)
	assert.Greater(t, consumed, uint64(0))

	balance, err := applier.View().WavesBalance(callerAddr)
	require.NoError(t, err)
	assert.EqualValues(t, 100, balance)

	calleeBalance, err := applier.View().WavesBalance(calleeAddr)
	require.NoError(t, err)
	assert.EqualValues(t, -100, calleeBalance)
}

const testSelfAddressFuncID uint16 = 59001

// TestApplierSyncCallDepthLimited drives a self-invoking reentrant
// callable until the settings.MaxSyncDepth frame is refused; the
// refusal must surface through the error taxonomy, never as a bare
// error.
func TestApplierSyncCallDepthLimited(t *testing.T) {
	dAppAddr, dAppPK := keyedAddress(t, 3)

	addrValue := ride.NewCaseObject("Address", map[string]ride.Value{
		"bytes": mustBytes(dAppAddr.Bytes()),
	})
	builtins := map[uint16]ride.Builtin{
		testSelfAddressFuncID: func(ride.BuiltinConfig, []ride.Value) (ride.Value, error) {
			return addrValue, nil
		},
	}
	body := &ride.Expr{
		Kind:           ride.SyncInvoke,
		InvokeDApp:     &ride.Expr{Kind: ride.FunctionCall, Call: ride.NativeHeader(testSelfAddressFuncID)},
		InvokeFunction: "loop",
	}

	chain := &fakeChain{scripts: map[proto.Address]*state.ScriptInfo{
		dAppAddr: {Script: []byte("compiled-script")},
	}}
	view := state.NewCompositeView(chain, state.Empty())
	resolver := fakeResolver{callable: Callable{Body: body, Reentrant: true}}
	pubkeys := fakePubkeys{keys: map[proto.Address]crypto.PublicKey{dAppAddr: dAppPK}}

	applier := NewApplier(
		view, 'W', resolver, pubkeys, builtins,
		ride.CostTable{testSelfAddressFuncID: 1},
		ride.BuiltinConfig{Version: settings.V5, MaxBytesLength: 32 * 1024, MaxStringLength: 32 * 1024},
		settings.V5, settings.FeatureFlags{}, settings.ActivationHeights{},
		crypto.Digest{}, 0, 1_000_000, 1_000_000,
	)

	_, _, _, err := applier.InvokeRoot(dAppAddr, dAppAddr, "loop", nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "maximum synchronous call depth exceeded")
}

func mustBytes(b []byte) ride.Value {
	v, err := ride.NewBytes(b, len(b))
	if err != nil {
		panic(err)
	}
	return v
}

func mustAddressBytes(t *testing.T, addr proto.Address) ride.Value {
	t.Helper()
	v, err := ride.NewBytes(addr.Bytes(), proto.AddressLength)
	require.NoError(t, err)
	return v
}

package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nekuips1x/Waves/pkg/crypto"
	"github.com/Nekuips1x/Waves/pkg/proto"
)

// fakeBlockchain is a minimal in-memory Blockchain used only to test
// CompositeView's overlay semantics.
type fakeBlockchain struct {
	height   proto.Height
	balances map[proto.Address]int64
}

func newFakeBlockchain() *fakeBlockchain {
	return &fakeBlockchain{height: 100, balances: map[proto.Address]int64{}}
}

func (f *fakeBlockchain) Height() proto.Height { return f.height }
func (f *fakeBlockchain) WavesBalance(addr proto.Address) (int64, error) {
	return f.balances[addr], nil
}
func (f *fakeBlockchain) AssetBalance(addr proto.Address, asset proto.AssetID) (int64, error) {
	return 0, nil
}
func (f *fakeBlockchain) LeaseBalance(addr proto.Address) (LeaseBalance, error) {
	return LeaseBalance{}, nil
}
func (f *fakeBlockchain) AssetDescription(asset proto.AssetID) (*AssetDescription, bool, error) {
	return nil, false, nil
}
func (f *fakeBlockchain) AssetIsSponsored(asset proto.AssetID) (bool, int64, error) {
	return false, 0, nil
}
func (f *fakeBlockchain) ResolveAlias(alias proto.Alias) (proto.Address, bool, error) {
	return proto.Address{}, false, nil
}
func (f *fakeBlockchain) AccountData(addr proto.Address, key string) (proto.DataEntry, bool, error) {
	return proto.DataEntry{}, false, nil
}
func (f *fakeBlockchain) LeaseDetails(id crypto.Digest) (*LeaseDetails, bool, error) {
	return nil, false, nil
}
func (f *fakeBlockchain) AccountScript(addr proto.Address) (*ScriptInfo, bool, error) {
	return nil, false, nil
}
func (f *fakeBlockchain) AssetScript(asset proto.AssetID) (*AssetScript, bool, error) {
	return nil, false, nil
}

func TestCompositeViewSeesOwnWrites(t *testing.T) {
	chain := newFakeBlockchain()
	addr := testAddress(t, 1)
	chain.balances[addr] = 1000

	d := Empty()
	d.Portfolios[addr] = Portfolio{Balance: 500}
	view := NewCompositeView(chain, d)

	got, err := view.WavesBalance(addr)
	require.NoError(t, err)
	assert.EqualValues(t, 1500, got)
}

func TestCompositeViewFallsBackToSnapshot(t *testing.T) {
	chain := newFakeBlockchain()
	addr := testAddress(t, 1)
	chain.balances[addr] = 1000

	view := NewCompositeView(chain, Empty())
	got, err := view.WavesBalance(addr)
	require.NoError(t, err)
	assert.EqualValues(t, 1000, got)
}

func TestCompositeViewWithDiffChainsSyncCallWrites(t *testing.T) {
	chain := newFakeBlockchain()
	addr := testAddress(t, 1)
	chain.balances[addr] = 0

	view := NewCompositeView(chain, Empty())
	d1 := Empty()
	d1.Portfolios[addr] = Portfolio{Balance: 10}
	view, err := view.WithDiff(d1)
	require.NoError(t, err)

	d2 := Empty()
	d2.Portfolios[addr] = Portfolio{Balance: 5}
	view, err = view.WithDiff(d2)
	require.NoError(t, err)

	got, err := view.WavesBalance(addr)
	require.NoError(t, err)
	assert.EqualValues(t, 15, got)
}

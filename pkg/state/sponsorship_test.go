package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nekuips1x/Waves/pkg/settings"
)

func TestToBaseFromBaseRoundTrip(t *testing.T) {
	rate := int64(2) // 2 asset units == FeeUnit base units, say
	assetFee := int64(10)
	base := ToBase(assetFee, rate)
	assert.EqualValues(t, assetFee*settings.FeeUnit/rate, base)

	back, err := FromBase(base, rate)
	require.NoError(t, err)
	assert.EqualValues(t, assetFee, back)
}

func TestToBaseZeroRateIsSentinel(t *testing.T) {
	assert.Equal(t, maxInt64Sentinel, ToBase(100, 0))
}

func TestFromBaseZeroRateErrors(t *testing.T) {
	_, err := FromBase(100, 0)
	assert.Error(t, err)
}

func TestToBaseFloors(t *testing.T) {
	// 3 * FeeUnit / 7 is not exact; ToBase must floor, not round.
	got := ToBase(3, 7)
	want := (3 * settings.FeeUnit) / 7
	assert.EqualValues(t, want, got)
}

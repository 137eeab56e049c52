package invoke

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nekuips1x/Waves/pkg/errs"
	"github.com/Nekuips1x/Waves/pkg/settings"
)

func TestStepsRoundsUp(t *testing.T) {
	assert.EqualValues(t, 1, Steps(1, settings.V5))
	assert.EqualValues(t, 1, Steps(settings.MaxComplexityByVersion(settings.V5), settings.V5))
	assert.EqualValues(t, 2, Steps(settings.MaxComplexityByVersion(settings.V5)+1, settings.V5))
}

func TestMinFeeBaseInvocation(t *testing.T) {
	got := MinFee(1, settings.V5, 0, 0)
	assert.EqualValues(t, settings.FeeUnit*settings.InvokeFeeBase, got)
}

func TestMinFeeWithIssueAndExtraInvocations(t *testing.T) {
	got := MinFee(1, settings.V5, 2, 3)
	want := settings.FeeUnit * (settings.InvokeFeeBase*1 + 2*settings.IssueFeeBase + 3*settings.ScriptExtraFee)
	assert.EqualValues(t, want, got)
}

func TestCheckMinFeeRejectsShortfall(t *testing.T) {
	minFee := MinFee(1, settings.V5, 0, 0)
	err := CheckMinFee(minFee-1, 1, settings.V5, 0, 0)
	assert.Error(t, err)
}

func TestCheckMinFeeCarriesComputedMinimum(t *testing.T) {
	minFee := MinFee(1, settings.V5, 1, 2)
	err := CheckMinFee(minFee-1, 1, settings.V5, 1, 2)
	require.Error(t, err)
	fee, ok := err.(*errs.FeeForActionsError)
	require.True(t, ok)
	assert.Equal(t, minFee, fee.MinFee)
	assert.EqualValues(t, 1, fee.Complexity())
}

func TestCheckMinFeeAcceptsExact(t *testing.T) {
	minFee := MinFee(1, settings.V5, 0, 0)
	err := CheckMinFee(minFee, 1, settings.V5, 0, 0)
	assert.NoError(t, err)
}

func TestResolveAttachedFeeUnsponsored(t *testing.T) {
	assert.EqualValues(t, 500_000, ResolveAttachedFee(500_000, 0))
}

func TestResolveAttachedFeeSponsored(t *testing.T) {
	// rate 2 asset-units per base-unit-equivalent: floor(100*100000/2)=5_000_000
	got := ResolveAttachedFee(100, 2)
	assert.EqualValues(t, 5_000_000, got)
}

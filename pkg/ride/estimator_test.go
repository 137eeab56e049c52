package ride

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nekuips1x/Waves/pkg/settings"
)

func TestEstimatorIfTakesWorstCaseBranch(t *testing.T) {
	est := NewEstimator(settings.Estimator3, DefaultCostTable(settings.V5))
	expr := &Expr{
		Kind: If,
		Cond: &Expr{Kind: True},
		Then: &Expr{Kind: FunctionCall, Call: NativeHeader(FuncSigVerify), Args: []*Expr{
			{Kind: ConstByteStr}, {Kind: ConstByteStr}, {Kind: ConstByteStr},
		}},
		Else: &Expr{Kind: ConstLong, LongValue: 1},
	}
	cost, err := est.Estimate(expr)
	require.NoError(t, err)
	// cond(1) + max(then, else) + 1(if) ; then = sigVerify(180)+3 args(1 each)
	assert.EqualValues(t, 1+ (180+3) +1, cost)
}

func TestEstimatorDeterministic(t *testing.T) {
	est := NewEstimator(settings.Estimator3, DefaultCostTable(settings.V5))
	expr := &Expr{Kind: FunctionCall, Call: NativeHeader(FuncToBase58), Args: []*Expr{{Kind: ConstByteStr}}}
	c1, err := est.Estimate(expr)
	require.NoError(t, err)
	c2, err := est.Estimate(expr)
	require.NoError(t, err)
	assert.Equal(t, c1, c2)
}

func TestEstimatorUnknownNativeFunctionErrors(t *testing.T) {
	est := NewEstimator(settings.Estimator3, CostTable{})
	expr := &Expr{Kind: FunctionCall, Call: NativeHeader(9999), Args: nil}
	_, err := est.Estimate(expr)
	assert.Error(t, err)
}

package ride

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nekuips1x/Waves/pkg/settings"
)

type fakeEnv struct{ height int64 }

func (f fakeEnv) Height() int64 { return f.height }

func newTestEvaluator(limit uint64) *Evaluator {
	ctx := EvaluationContext{
		Builtins:     DefaultBuiltins(fakeVerifier{}),
		Env:          fakeEnv{height: 1000},
		Version:      settings.V5,
		Config:       testConfig(),
		Complete:     true,
		MaxCallDepth: 100,
	}
	return NewEvaluator(ctx, DefaultCostTable(settings.V5), limit)
}

type fakeVerifier struct{}

func (fakeVerifier) Verify(message, signature, publicKey []byte) bool { return true }

func TestEvaluatorSimpleArithmeticLikeBlock(t *testing.T) {
	expr := &Expr{
		Kind:    Block,
		LetName: "x",
		LetValue: &Expr{Kind: ConstLong, LongValue: 42},
		Body:    &Expr{Kind: Ref, RefName: "x"},
	}
	ev := newTestEvaluator(1000)
	res := ev.Evaluate(expr)
	require.Nil(t, res.Err)
	assert.Equal(t, int64(42), res.Value.LongValue)
	require.Len(t, res.Log, 1)
	assert.Equal(t, "x", res.Log[0].Name)
	assert.Equal(t, "42", res.Log[0].Value)
}

func TestEvaluatorBudgetNeverExceeded(t *testing.T) {
	// toBase58String costs 10 in the default table; with a limit of 5
	// the call itself cannot be afforded.
	expr := &Expr{
		Kind: FunctionCall,
		Call: NativeHeader(FuncToBase58),
		Args: []*Expr{{Kind: ConstByteStr, BytesValue: []byte{1, 2, 3}}},
	}
	ev := newTestEvaluator(5)
	res := ev.Evaluate(expr)
	require.NotNil(t, res.Err)
	assert.Equal(t, ComplexityLimitExceeded, res.Err.Kind)
	assert.LessOrEqual(t, res.ConsumedComplexity, uint64(5))
}

func TestEvaluatorDeterministicRepeat(t *testing.T) {
	expr := &Expr{
		Kind: If,
		Cond: &Expr{Kind: True},
		Then: &Expr{Kind: ConstLong, LongValue: 7},
		Else: &Expr{Kind: ConstLong, LongValue: 9},
	}
	ev1 := newTestEvaluator(1000)
	r1 := ev1.Evaluate(expr)
	ev2 := newTestEvaluator(1000)
	r2 := ev2.Evaluate(expr)
	assert.Equal(t, r1.Value, r2.Value)
	assert.Equal(t, r1.ConsumedComplexity, r2.ConsumedComplexity)
}

func TestEvaluatorStackOverflow(t *testing.T) {
	// Native toBase58 FunctionCalls nested deeper than MaxCallDepth
	// must trip StackOverflow before anything else.
	inner := &Expr{Kind: ConstLong, LongValue: 1}
	for i := 0; i < 200; i++ {
		inner = &Expr{Kind: FunctionCall, Call: NativeHeader(FuncToBase58), Args: []*Expr{inner}}
	}
	ev := newTestEvaluator(1_000_000)
	res := ev.Evaluate(inner)
	require.NotNil(t, res.Err)
	assert.Equal(t, StackOverflow, res.Err.Kind)
}

package promo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestEvaluator() *Evaluator {
	return NewEvaluator(map[string]Rule{
		"DISCOUNT10": {Kind: KindPercent, Value: 10},
		"FLAT500":    {Kind: KindFlat, Value: 500},
		"zero":       {Kind: KindFlat, Value: 0},
	})
}

func TestEvaluator_PercentDiscount(t *testing.T) {
	e := newTestEvaluator()

	d, found := e.Evaluate("DISCOUNT10", 200)
	assert.True(t, found)
	assert.Equal(t, int64(20), d)
}

func TestEvaluator_FlatDiscount(t *testing.T) {
	e := newTestEvaluator()

	d, found := e.Evaluate("FLAT500", 10000)
	assert.True(t, found)
	assert.Equal(t, int64(500), d)
}

// 固定額が小計を超える場合は小計で頭打ち（合計をマイナスにしない）
func TestEvaluator_FlatDiscount_CappedAtSubtotal(t *testing.T) {
	e := newTestEvaluator()

	d, found := e.Evaluate("FLAT500", 200)
	assert.True(t, found)
	assert.Equal(t, int64(200), d)
}

// 未知のコードは (0, false)。割引0のルールとは区別する。
func TestEvaluator_UnknownCode(t *testing.T) {
	e := newTestEvaluator()

	d, found := e.Evaluate("NOPE", 1000)
	assert.False(t, found)
	assert.Equal(t, int64(0), d)
}

func TestEvaluator_ZeroValueRule_IsFound(t *testing.T) {
	e := newTestEvaluator()

	d, found := e.Evaluate("ZERO", 1000)
	assert.True(t, found)
	assert.Equal(t, int64(0), d)
}

// 登録時も評価時も同じ正規化（大文字化・trim）を通す
func TestEvaluator_CodeNormalization(t *testing.T) {
	e := newTestEvaluator()

	d, found := e.Evaluate("  discount10 ", 200)
	assert.True(t, found)
	assert.Equal(t, int64(20), d)
}

func TestEvaluator_ZeroSubtotal(t *testing.T) {
	e := newTestEvaluator()

	d, found := e.Evaluate("DISCOUNT10", 0)
	assert.True(t, found)
	assert.Equal(t, int64(0), d)
}

// 同じ入力には常に同じ結果（状態を持たない）
func TestEvaluator_Deterministic(t *testing.T) {
	e := newTestEvaluator()

	first, _ := e.Evaluate("DISCOUNT10", 12345)
	for i := 0; i < 10; i++ {
		d, found := e.Evaluate("DISCOUNT10", 12345)
		assert.True(t, found)
		assert.Equal(t, first, d)
	}
}

func TestEvaluator_PercentRounding_TruncatesTowardZero(t *testing.T) {
	e := newTestEvaluator()

	// 199 * 10 / 100 = 19.9 → 19
	d, found := e.Evaluate("DISCOUNT10", 199)
	assert.True(t, found)
	assert.Equal(t, int64(19), d)
}

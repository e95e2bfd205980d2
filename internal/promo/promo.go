package promo

import "strings"

type RuleKind string

const (
	// 小計に対する percent% 引き
	KindPercent RuleKind = "percent"
	// 固定額引き（小計を超える分は切り捨て）
	KindFlat RuleKind = "flat"
)

// コード1つ分の割引ルール。
// percent: Valueは1〜99（%）。flat: Valueは最小通貨単位の金額。
type Rule struct {
	Kind  RuleKind
	Value int64
}

// コード→ルールの評価器。テーブルは注入する（定数を埋め込まない）。
// 状態を持たない純関数なので、同じ入力には常に同じ結果を返す。
type Evaluator struct {
	rules map[string]Rule
}

// コードは大文字化して登録する（評価時も同じ正規化をする）。
func NewEvaluator(rules map[string]Rule) *Evaluator {
	normalized := make(map[string]Rule, len(rules))
	for code, r := range rules {
		normalized[normalize(code)] = r
	}
	return &Evaluator{rules: normalized}
}

// Evaluate は割引額と「コードが見つかったか」を返す。
// 未知のコードは (0, false)。割引0のルールと区別できるようにする。
// 割引額は小計を超えない（マイナスの小計を作らない）。
func (e *Evaluator) Evaluate(code string, subtotal int64) (int64, bool) {
	r, ok := e.rules[normalize(code)]
	if !ok {
		return 0, false
	}
	if subtotal <= 0 {
		return 0, true
	}

	var discount int64
	switch r.Kind {
	case KindPercent:
		discount = subtotal * r.Value / 100
	case KindFlat:
		discount = r.Value
	default:
		return 0, false
	}

	if discount > subtotal {
		discount = subtotal
	}
	if discount < 0 {
		discount = 0
	}
	return discount, true
}

// 前後の空白を取り除き大文字化する
func normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

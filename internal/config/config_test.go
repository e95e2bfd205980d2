package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParsePromoCodes_Empty(t *testing.T) {
	specs, err := parsePromoCodes("")
	assert.NoError(t, err)
	assert.Nil(t, specs)

	specs, err = parsePromoCodes("   ")
	assert.NoError(t, err)
	assert.Nil(t, specs)
}

func TestParsePromoCodes_Valid(t *testing.T) {
	specs, err := parsePromoCodes("DISCOUNT10:percent:10, flat500:FLAT:500 ,")

	assert.NoError(t, err)
	assert.Equal(t, 2, len(specs))
	// コードは大文字、kindは小文字に正規化される
	assert.Equal(t, PromoCodeSpec{Code: "DISCOUNT10", Kind: "percent", Value: 10}, specs[0])
	assert.Equal(t, PromoCodeSpec{Code: "FLAT500", Kind: "flat", Value: 500}, specs[1])
}

func TestParsePromoCodes_Invalid(t *testing.T) {
	cases := []string{
		"DISCOUNT10",                 // 区切りが足りない
		"DISCOUNT10:percent",         // 値がない
		"DISCOUNT10:bogo:10",         // 未知のkind
		"DISCOUNT10:percent:abc",     // 数値でない
		"DISCOUNT10:percent:-5",      // 負の値
		"DISCOUNT10:percent:101",     // percentは100まで
		"OK:flat:100,BAD:percent:x",  // 1件でも壊れていたら全体をエラーに
	}

	for _, raw := range cases {
		_, err := parsePromoCodes(raw)
		assert.Error(t, err, "raw=%q", raw)
	}
}

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Configはアプリ全体の設定
type Config struct {
	Port string // サーバーポート（8080）

	PostgresUser     string // DBユーザー
	PostgresPassword string // DBパスワード
	PostgresDB       string // DB名
	PostgresHost     string // DBホスト（localhost）
	PostgresPort     int    // DBポート（5433）

	JWTSecret           string // JWT署名シークレット
	AccessTokenTTLMin   int    // アクセストークン有効期限（分）
	RefreshTokenTTLDays int    // リフレッシュトークン有効期限（日）
	BcryptCost          int    // bcryptコスト

	TaxRatePercent        int64 // 税率（%）
	ShippingFee           int64 // 送料（最小通貨単位の定額）
	PaymentDeclinePercent int   // カード決済のランダム拒否率（%）

	// "CODE:kind:value" をカンマ区切りで並べる
	// 例: DISCOUNT10:percent:10,FLAT500:flat:500
	PromoCodes []PromoCodeSpec

	GoEnv     string // dev/prod
	APIDomain string // APIドメイン（cookieやCORSなどで使う）
	FEURL     string // フロントURL（CORSなどで使う）
}

// プロモコード1件ぶんの設定
type PromoCodeSpec struct {
	Code  string
	Kind  string // percent / flat
	Value int64
}

// Loadは環境変数
func Load() (Config, error) {
	pgPort, err := mustAtoi("POSTGRES_PORT")
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Port: os.Getenv("PORT"),

		PostgresUser:     os.Getenv("POSTGRES_USER"),
		PostgresPassword: os.Getenv("POSTGRES_PASSWORD"),
		PostgresDB:       os.Getenv("POSTGRES_DB"),
		PostgresHost:     os.Getenv("POSTGRES_HOST"),
		PostgresPort:     pgPort,

		JWTSecret:           os.Getenv("JWT_SECRET"),
		AccessTokenTTLMin:   atoiOrDefault("ACCESS_TOKEN_TTL_MIN", 15),
		RefreshTokenTTLDays: atoiOrDefault("REFRESH_TOKEN_TTL_DAYS", 14),
		BcryptCost:          atoiOrDefault("BCRYPT_COST", 12),

		TaxRatePercent:        int64(atoiOrDefault("TAX_RATE_PERCENT", 5)),
		ShippingFee:           int64(atoiOrDefault("SHIPPING_FEE", 5)),
		PaymentDeclinePercent: atoiOrDefault("PAYMENT_DECLINE_PERCENT", 10),

		GoEnv:     os.Getenv("GO_ENV"),
		APIDomain: os.Getenv("API_DOMAIN"),
		FEURL:     os.Getenv("FE_URL"),
	}

	promos, err := parsePromoCodes(os.Getenv("PROMO_CODES"))
	if err != nil {
		return Config{}, err
	}
	cfg.PromoCodes = promos

	//必須チェック
	if cfg.Port == "" {
		return Config{}, fmt.Errorf("PORT is required")
	}
	if cfg.PostgresUser == "" {
		return Config{}, fmt.Errorf("POSTGRES_USER is required")
	}
	if cfg.PostgresPassword == "" {
		return Config{}, fmt.Errorf("POSTGRES_PASSWORD is required")
	}
	if cfg.PostgresDB == "" {
		return Config{}, fmt.Errorf("POSTGRES_DB is required")
	}
	if cfg.PostgresHost == "" {
		return Config{}, fmt.Errorf("POSTGRES_HOST is required")
	}
	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.GoEnv == "" {
		return Config{}, fmt.Errorf("GO_ENV is required")
	}

	//値チェック
	if cfg.TaxRatePercent < 0 || cfg.TaxRatePercent > 100 {
		return Config{}, fmt.Errorf("TAX_RATE_PERCENT must be 0..100")
	}
	if cfg.ShippingFee < 0 {
		return Config{}, fmt.Errorf("SHIPPING_FEE must be >= 0")
	}
	if cfg.PaymentDeclinePercent < 0 || cfg.PaymentDeclinePercent > 100 {
		return Config{}, fmt.Errorf("PAYMENT_DECLINE_PERCENT must be 0..100")
	}

	return cfg, nil
}

// PROMO_CODESのパース。空なら空リスト（プロモなし運用）。
func parsePromoCodes(raw string) ([]PromoCodeSpec, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	var specs []PromoCodeSpec
	for _, entry := range strings.Split(raw, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		parts := strings.Split(entry, ":")
		if len(parts) != 3 {
			return nil, fmt.Errorf("PROMO_CODES entry %q must be CODE:kind:value", entry)
		}

		kind := strings.ToLower(strings.TrimSpace(parts[1]))
		if kind != "percent" && kind != "flat" {
			return nil, fmt.Errorf("PROMO_CODES entry %q: kind must be percent or flat", entry)
		}

		value, err := strconv.ParseInt(strings.TrimSpace(parts[2]), 10, 64)
		if err != nil || value < 0 {
			return nil, fmt.Errorf("PROMO_CODES entry %q: invalid value", entry)
		}
		if kind == "percent" && value > 100 {
			return nil, fmt.Errorf("PROMO_CODES entry %q: percent must be 0..100", entry)
		}

		specs = append(specs, PromoCodeSpec{
			Code:  strings.ToUpper(strings.TrimSpace(parts[0])),
			Kind:  kind,
			Value: value,
		})
	}
	return specs, nil
}

func mustAtoi(key string) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return 0, fmt.Errorf("%s is required", key)
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be number: %w", key, err)
	}
	return i, nil
}

func atoiOrDefault(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

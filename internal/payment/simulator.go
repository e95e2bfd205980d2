package payment

import (
	"fmt"
	"math/rand"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"
)

// 決済の拒否理由コード。呼び出し元はこのコードのまま返す。
const (
	CodeMissingFields     = "MISSING_FIELDS"
	CodeInvalidCardFormat = "INVALID_CARD_FORMAT"
	CodeExpiredCard       = "EXPIRED_CARD"
	CodeInvalidCVV        = "INVALID_CVV"
	CodeInvalidAmount     = "INVALID_AMOUNT"
	CodeBankDeclined      = "BANK_DECLINED"

	CodeInvalidEmail = "INVALID_EMAIL"
	CodeInvalidToken = "INVALID_TOKEN"
	CodePayPalError  = "PAYPAL_ERROR"

	CodeInvalidUPIID = "INVALID_UPI_ID"
	CodeInvalidPIN   = "INVALID_PIN"
	CodeUPITimeout   = "UPI_TIMEOUT"

	CodeInvalidMethod = "INVALID_METHOD"
)

// 決済結果。承認時のみTransactionID等が入る。
type Outcome struct {
	Approved      bool      `json:"approved"`
	Code          string    `json:"code,omitempty"`
	Message       string    `json:"message"`
	TransactionID string    `json:"transaction_id,omitempty"`
	Method        Method    `json:"method"`
	CardBrand     string    `json:"card_brand,omitempty"`
	Last4         string    `json:"last4,omitempty"`
	MaskedEmail   string    `json:"masked_email,omitempty"`
	UPIID         string    `json:"upi_id,omitempty"`
	Amount        int64     `json:"amount"`
	Timestamp     time.Time `json:"timestamp"`
}

type Clock interface {
	Now() time.Time
}

// 決済プロセッサのインプロセス・スタブ。ネットワークI/Oなし。
// 乱数と時計は注入する（テストでseed固定・時刻固定できるようにするため）。
// PayPalの処理エラー5%、UPIのタイムアウト8%は元の挙動に合わせた固定値。
type Simulator struct {
	mu                 sync.Mutex
	rng                *rand.Rand
	clock              Clock
	seq                uint64 // トランザクションID用の連番。時刻固定でも一意にする
	cardDeclinePercent int    // カードのランダム拒否率（既定10%）
}

func NewSimulator(rng *rand.Rand, clock Clock, cardDeclinePercent int) *Simulator {
	return &Simulator{
		rng:                rng,
		clock:              clock,
		cardDeclinePercent: cardDeclinePercent,
	}
}

var (
	cardNumberRe = regexp.MustCompile(`^\d{13,19}$`)
	cvvRe        = regexp.MustCompile(`^\d{3,4}$`)
	emailRe      = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	upiIDRe      = regexp.MustCompile(`^[a-zA-Z0-9._-]+@[a-zA-Z]{3,}$`)
	upiPINRe     = regexp.MustCompile(`^\d{4,6}$`)
)

// Authorize は決済手段ごとのシミュレーションに振り分ける。
func (s *Simulator) Authorize(d Details, amount int64) Outcome {
	switch d.Method {
	case MethodCard:
		if d.Card == nil {
			return declined(MethodCard, CodeMissingFields, "Missing required card information.", s.now())
		}
		return s.authorizeCard(*d.Card, amount)
	case MethodPayPal:
		if d.PayPal == nil {
			return declined(MethodPayPal, CodeMissingFields, "Missing PayPal account information.", s.now())
		}
		return s.authorizePayPal(*d.PayPal, amount)
	case MethodUPI:
		if d.UPI == nil {
			return declined(MethodUPI, CodeMissingFields, "Missing UPI information.", s.now())
		}
		return s.authorizeUPI(*d.UPI, amount)
	default:
		return declined(d.Method, CodeInvalidMethod, "Unsupported payment method.", s.now())
	}
}

// カード決済。検証は宣言順にfail fastする。
func (s *Simulator) authorizeCard(card CardDetails, amount int64) Outcome {
	now := s.now()

	if card.Number == "" || card.Expiry == "" || card.CVV == "" || card.HolderName == "" {
		return declined(MethodCard, CodeMissingFields, "Missing required card information.", now)
	}

	number := strings.ReplaceAll(card.Number, " ", "")
	if !cardNumberRe.MatchString(number) {
		return declined(MethodCard, CodeInvalidCardFormat, "Invalid card number format.", now)
	}

	if expired(card.Expiry, now) {
		return declined(MethodCard, CodeExpiredCard, "Card expired or invalid expiry date.", now)
	}

	if !cvvRe.MatchString(card.CVV) {
		return declined(MethodCard, CodeInvalidCVV, "Invalid CVV code.", now)
	}

	if amount <= 0 {
		return declined(MethodCard, CodeInvalidAmount, "Invalid payment amount.", now)
	}

	if s.roll(s.cardDeclinePercent) {
		return declined(MethodCard, CodeBankDeclined, "Payment declined by issuing bank.", now)
	}

	return Outcome{
		Approved:      true,
		Message:       "Payment successful.",
		TransactionID: s.newTransactionID("CARD", now),
		Method:        MethodCard,
		CardBrand:     BrandOf(number),
		Last4:         number[len(number)-4:],
		Amount:        amount,
		Timestamp:     now,
	}
}

func (s *Simulator) authorizePayPal(pp PayPalDetails, amount int64) Outcome {
	now := s.now()

	if pp.Email == "" || pp.Token == "" {
		return declined(MethodPayPal, CodeMissingFields, "Missing PayPal account information.", now)
	}
	if !emailRe.MatchString(pp.Email) {
		return declined(MethodPayPal, CodeInvalidEmail, "Invalid email format.", now)
	}
	if len(pp.Token) < 10 {
		return declined(MethodPayPal, CodeInvalidToken, "Invalid authentication token.", now)
	}
	if amount <= 0 {
		return declined(MethodPayPal, CodeInvalidAmount, "Invalid payment amount.", now)
	}
	if s.roll(5) {
		return declined(MethodPayPal, CodePayPalError, "PayPal processing error. Please try again.", now)
	}

	return Outcome{
		Approved:      true,
		Message:       "PayPal payment successful.",
		TransactionID: s.newTransactionID("PP", now),
		Method:        MethodPayPal,
		MaskedEmail:   maskEmail(pp.Email),
		Amount:        amount,
		Timestamp:     now,
	}
}

func (s *Simulator) authorizeUPI(upi UPIDetails, amount int64) Outcome {
	now := s.now()

	if upi.UPIID == "" || upi.PIN == "" {
		return declined(MethodUPI, CodeMissingFields, "Missing UPI information.", now)
	}
	if !upiIDRe.MatchString(upi.UPIID) {
		return declined(MethodUPI, CodeInvalidUPIID, "Invalid UPI ID format.", now)
	}
	if !upiPINRe.MatchString(upi.PIN) {
		return declined(MethodUPI, CodeInvalidPIN, "Invalid UPI PIN.", now)
	}
	if amount <= 0 {
		return declined(MethodUPI, CodeInvalidAmount, "Invalid payment amount.", now)
	}
	if s.roll(8) {
		return declined(MethodUPI, CodeUPITimeout, "UPI network timeout. Please try again.", now)
	}

	return Outcome{
		Approved:      true,
		Message:       "UPI payment successful.",
		TransactionID: s.newTransactionID("UPI", now),
		Method:        MethodUPI,
		UPIID:         upi.UPIID,
		Amount:        amount,
		Timestamp:     now,
	}
}

// BrandOf は番号の先頭からカードブランドを判定する。
func BrandOf(number string) string {
	switch {
	case strings.HasPrefix(number, "4"):
		return "Visa"
	case len(number) >= 2 && number[0] == '5' && number[1] >= '1' && number[1] <= '5':
		return "MasterCard"
	case strings.HasPrefix(number, "34") || strings.HasPrefix(number, "37"):
		return "American Express"
	case strings.HasPrefix(number, "6011") || strings.HasPrefix(number, "65"):
		return "Discover"
	default:
		return "Unknown"
	}
}

// MM/YY形式の有効期限チェック。(年,月)が現在の(年,月)より前なら期限切れ。
func expired(expiry string, now time.Time) bool {
	parts := strings.Split(expiry, "/")
	if len(parts) != 2 {
		return true
	}
	month, err1 := strconv.Atoi(strings.TrimSpace(parts[0]))
	year, err2 := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err1 != nil || err2 != nil {
		return true
	}
	if month < 1 || month > 12 {
		return true
	}

	curYear := now.Year() % 100
	curMonth := int(now.Month())

	if year < curYear {
		return true
	}
	if year == curYear && month < curMonth {
		return true
	}
	return false
}

// 乱数・IDの採番はmutexで直列化する（*rand.Randは並行安全ではない）。
func (s *Simulator) roll(percent int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Intn(100) < percent
}

// 合成トランザクションID。連番を含むので時刻が同一でも呼び出しごとに一意。
func (s *Simulator) newTransactionID(prefix string, now time.Time) string {
	s.mu.Lock()
	s.seq++
	seq := s.seq
	suffix := s.rng.Intn(1000)
	s.mu.Unlock()
	return fmt.Sprintf("%s_%d_%03d_%d", prefix, now.UnixNano(), suffix, seq)
}

func (s *Simulator) now() time.Time {
	return s.clock.Now()
}

func declined(method Method, code string, message string, now time.Time) Outcome {
	return Outcome{
		Approved:  false,
		Code:      code,
		Message:   message,
		Method:    method,
		Timestamp: now,
	}
}

// 先頭2文字だけ残してローカル部を伏せる（ab***@example.com）
func maskEmail(email string) string {
	at := strings.Index(email, "@")
	if at <= 2 {
		return email
	}
	return email[:2] + "***" + email[at:]
}

package payment

type Method string

const (
	MethodCard   Method = "card"
	MethodPayPal Method = "paypal"
	MethodUPI    Method = "upi"
)

type CardDetails struct {
	Number     string `json:"card_number"`
	Expiry     string `json:"expiry_date"` // MM/YY
	CVV        string `json:"cvv"`
	HolderName string `json:"card_holder_name"`
}

type PayPalDetails struct {
	Email string `json:"email"`
	Token string `json:"token"`
}

type UPIDetails struct {
	UPIID string `json:"upi_id"`
	PIN   string `json:"pin"`
}

// 決済手段のタグ付きバリアント。
// Methodに対応するフィールドだけが非nil。手段の追加はバリアント追加で行い、
// 任意フィールドをばら撒かない。
type Details struct {
	Method Method         `json:"method"`
	Card   *CardDetails   `json:"card,omitempty"`
	PayPal *PayPalDetails `json:"paypal,omitempty"`
	UPI    *UPIDetails    `json:"upi,omitempty"`
}

package checkout

import (
	"fmt"
	"strings"
)

// PaymentMethodCard: единственный метод, для которого обязательны поля карты
const PaymentMethodCard = "card"

// PaymentForm содержит данные платёжной формы (presentation boundary)
type PaymentForm struct {
	PaymentMethod  string `json:"payment_method"`
	CardNumber     string `json:"card_number"`
	ExpiryDate     string `json:"expiry_date"`
	CVV            string `json:"cvv"`
	NameOnCard     string `json:"name_on_card"`
	BillingAddress string `json:"billing_address"`
	City           string `json:"city"`
	PostalCode     string `json:"postal_code"`
	Country        string `json:"country"`
}

// fields связывает имя поля формы (как в JSON) с указателем на значение
func (f *PaymentForm) fields() map[string]*string {
	return map[string]*string{
		"payment_method":  &f.PaymentMethod,
		"card_number":     &f.CardNumber,
		"expiry_date":     &f.ExpiryDate,
		"cvv":             &f.CVV,
		"name_on_card":    &f.NameOnCard,
		"billing_address": &f.BillingAddress,
		"city":            &f.City,
		"postal_code":     &f.PostalCode,
		"country":         &f.Country,
	}
}

// Set устанавливает одно поле формы по имени
func (f *PaymentForm) Set(field, value string) error {
	ptr, ok := f.fields()[field]
	if !ok {
		return fmt.Errorf("%w: unknown field %q", ErrInvalidForm, field)
	}
	*ptr = normalizeField(field, value)
	return nil
}

// Merge возвращает форму, в которой непустые поля other перекрывают текущие
func (f PaymentForm) Merge(other PaymentForm) PaymentForm {
	out := f
	dst := out.fields()
	for name, src := range other.fields() {
		if v := normalizeField(name, *src); v != "" {
			*dst[name] = v
		}
	}
	return out
}

// Validate проверяет форму перед отправкой. Пустой метод оплаты считается картой.
func (f PaymentForm) Validate() error {
	method := f.PaymentMethod
	if method == "" {
		method = PaymentMethodCard
	}
	if method != PaymentMethodCard {
		return nil
	}

	digits := f.CardNumber
	if len(digits) < 12 || len(digits) > 19 || !isDigits(digits) {
		return fmt.Errorf("%w: card_number must contain 12-19 digits", ErrInvalidForm)
	}
	if !validExpiry(f.ExpiryDate) {
		return fmt.Errorf("%w: expiry_date must be MM/YY", ErrInvalidForm)
	}
	if len(f.CVV) < 3 || len(f.CVV) > 4 || !isDigits(f.CVV) {
		return fmt.Errorf("%w: cvv must contain 3-4 digits", ErrInvalidForm)
	}
	if f.NameOnCard == "" {
		return fmt.Errorf("%w: name_on_card is required", ErrInvalidForm)
	}
	return nil
}

// Masked возвращает копию для отдачи в UI: номер карты без первых цифр, без CVV
func (f PaymentForm) Masked() PaymentForm {
	out := f
	out.CVV = ""
	digits := strings.ReplaceAll(f.CardNumber, " ", "")
	if len(digits) > 4 {
		out.CardNumber = strings.Repeat("*", len(digits)-4) + digits[len(digits)-4:]
	}
	return out
}

// normalizeField обрезает пробелы; из номера карты убираются и внутренние пробелы
func normalizeField(name, value string) string {
	value = strings.TrimSpace(value)
	if name == "card_number" {
		value = strings.ReplaceAll(value, " ", "")
	}
	return value
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

func validExpiry(s string) bool {
	month, year, ok := strings.Cut(s, "/")
	if !ok || len(month) != 2 || len(year) != 2 || !isDigits(month) || !isDigits(year) {
		return false
	}
	return month >= "01" && month <= "12"
}

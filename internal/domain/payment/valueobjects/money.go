package valueobjects

import (
	"fmt"
	"strings"
)

// DefaultCurrency is the only currency the gateway settles for this product.
const DefaultCurrency = "CLP"

// Money is an amount in whole currency units. The gateway takes CLP without
// decimals, so there is no minor unit to convert to.
type Money struct {
	amount   int64
	currency string
}

func NewMoney(amount int64, currency string) (Money, error) {
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if currency == "" {
		currency = DefaultCurrency
	}
	if len(currency) != 3 {
		return Money{}, fmt.Errorf("invalid currency code %q", currency)
	}
	if amount <= 0 {
		return Money{}, fmt.Errorf("amount must be positive, got %d", amount)
	}
	return Money{amount: amount, currency: currency}, nil
}

func (m Money) Amount() int64 {
	return m.amount
}

func (m Money) Currency() string {
	return m.currency
}

func (m Money) Equals(other Money) bool {
	return m.amount == other.amount && m.currency == other.currency
}

func (m Money) String() string {
	return fmt.Sprintf("%d %s", m.amount, m.currency)
}

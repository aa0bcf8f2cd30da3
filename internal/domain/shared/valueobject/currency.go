package valueobject

// Currency represents a currency code (ISO 4217)
type Currency string

const (
	CZK Currency = "CZK" // Czech Koruna (default)
	EUR Currency = "EUR" // Euro
	USD Currency = "USD" // US Dollar
	GBP Currency = "GBP" // British Pound
	PLN Currency = "PLN" // Polish Zloty
)

// DefaultCurrency is the default currency for the system
const DefaultCurrency = CZK

// IsValid checks if the currency is one of the supported codes
func (c Currency) IsValid() bool {
	switch c {
	case CZK, EUR, USD, GBP, PLN:
		return true
	}
	return false
}

// String returns the currency code
func (c Currency) String() string {
	return string(c)
}

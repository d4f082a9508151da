package enums

// Currency is the ISO-4217 code sent to the payment provider.
type Currency string

const (
	// CurrencyPHP is the only currency the store transacts in today.
	CurrencyPHP Currency = "PHP"
)

// String implements fmt.Stringer.
func (c Currency) String() string {
	return string(c)
}

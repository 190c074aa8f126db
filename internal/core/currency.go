package core

// Currency describes one supported display currency.
type Currency struct {
	Code   string `json:"code"`
	Name   string `json:"name"`
	Symbol string `json:"symbol"`
	Flag   string `json:"flag"`
}

// Currencies is the closed set of supported currencies. The first entry
// is the default for new users.
var Currencies = []Currency{
	{Code: "EGP", Name: "Egyptian Pound", Symbol: "E£", Flag: "🇪🇬"},
	{Code: "USD", Name: "US Dollar", Symbol: "$", Flag: "🇺🇸"},
	{Code: "EUR", Name: "Euro", Symbol: "€", Flag: "🇪🇺"},
	{Code: "SAR", Name: "Saudi Riyal", Symbol: "SAR", Flag: "🇸🇦"},
	{Code: "GBP", Name: "British Pound", Symbol: "£", Flag: "🇬🇧"},
	{Code: "CAD", Name: "Canadian Dollar", Symbol: "C$", Flag: "🇨🇦"},
}

// DefaultCurrency returns the fallback currency used before any selection.
func DefaultCurrency() Currency {
	return Currencies[0]
}

// CurrencyByCode looks up a supported currency by its code.
func CurrencyByCode(code string) (Currency, bool) {
	for _, c := range Currencies {
		if c.Code == code {
			return c, true
		}
	}
	return Currency{}, false
}

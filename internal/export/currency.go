// Package export renders a subscription snapshot as CSV or XLSX and formats
// amounts in the display currency.
package export

import (
	"strings"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Currency formats amounts for one ISO 4217 code. It is display only:
// amounts are never converted.
type Currency struct {
	Code    string
	unit    currency.Unit
	known   bool
	printer *message.Printer
}

// localeForCurrency picks a "home" locale for number formatting.
var localeForCurrency = map[string]language.Tag{
	"EUR": language.French,
	"USD": language.AmericanEnglish,
	"GBP": language.BritishEnglish,
	"CHF": language.German,
	"CAD": language.CanadianFrench,
	"JPY": language.Japanese,
	"SEK": language.Swedish,
}

// GetCurrency returns the formatter for code. Unknown codes format with the
// code itself as the symbol.
func GetCurrency(code string) Currency {
	return GetCurrencyWithLocale(code, localeForCurrency[strings.ToUpper(strings.TrimSpace(code))])
}

// GetCurrencyWithLocale formats code using the number conventions of tag.
func GetCurrencyWithLocale(code string, tag language.Tag) Currency {
	code = strings.ToUpper(strings.TrimSpace(code))
	if tag == language.Und {
		tag = language.English
	}
	unit, err := currency.ParseISO(code)
	return Currency{
		Code:    code,
		unit:    unit,
		known:   err == nil,
		printer: message.NewPrinter(tag),
	}
}

func (c Currency) symbol() string {
	if !c.known {
		return c.Code
	}
	return c.printer.Sprint(currency.NarrowSymbol(c.unit))
}

// x/text does not expose CLDR symbol placement, so prefix currencies are listed.
func (c Currency) isPrefix() bool {
	switch c.Code {
	case "USD", "GBP", "JPY", "CAD", "AUD":
		return true
	default:
		return false
	}
}

// Format renders amount with two decimals and the currency symbol.
func (c Currency) Format(amount float64) string {
	formatted := c.printer.Sprint(number.Decimal(amount, number.Scale(2)))
	if c.isPrefix() {
		return c.symbol() + formatted
	}
	return formatted + " " + c.symbol()
}

package money

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Format renders an amount with locale-aware digit grouping. The shop sells
// in a single currency, so no conversion happens here; an unknown locale
// falls back to English grouping rather than failing the render.
func Format(a Amount, locale string) string {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.English
	}
	printer := message.NewPrinter(tag)
	value, _ := a.d.Round(2).Float64()
	return printer.Sprint(number.Decimal(value,
		number.MinFractionDigits(2),
		number.MaxFractionDigits(2),
	))
}

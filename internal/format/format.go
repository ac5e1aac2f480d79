// Package format holds the value formatters used by the document sections.
package format

import (
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

const (
	CurrencySymbol = "P"
	DateLayout     = "Jan 02, 2006"
)

// Formatter renders currency and dates for one locale and time zone.
type Formatter struct {
	printer *message.Printer
	loc     *time.Location
}

func New(loc *time.Location) *Formatter {
	if loc == nil {
		loc = time.UTC
	}
	return &Formatter{printer: message.NewPrinter(language.English), loc: loc}
}

func (f *Formatter) Location() *time.Location {
	return f.loc
}

// Currency renders "P 1,500". Fraction digits are kept up to the scale of
// the source value and trailing zeros are dropped.
func (f *Formatter) Currency(d decimal.Decimal) string {
	return CurrencySymbol + " " + f.Number(d)
}

// Number groups the integer digits and keeps the fraction digits of d up to
// its scale, trailing zeros dropped.
func (f *Formatter) Number(d decimal.Decimal) string {
	scale := int32(0)
	if exp := d.Exponent(); exp < 0 {
		scale = -exp
	}
	whole, frac, _ := strings.Cut(d.Abs().StringFixed(scale), ".")

	var out string
	if n := d.Abs().Truncate(0).BigInt(); n.IsInt64() {
		out = f.printer.Sprintf("%v", number.Decimal(n.Int64()))
	} else {
		out = group(whole)
	}
	if frac = strings.TrimRight(frac, "0"); frac != "" {
		out += "." + frac
	}
	if d.Sign() < 0 {
		out = "-" + out
	}
	return out
}

// group inserts thousands separators into a run of digits.
func group(digits string) string {
	head := len(digits) % 3
	if head == 0 {
		head = 3
	}
	var b strings.Builder
	b.WriteString(digits[:head])
	for i := head; i < len(digits); i += 3 {
		b.WriteByte(',')
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

// Date renders the medium date style, e.g. "Jan 05, 2024".
func (f *Formatter) Date(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.In(f.loc).Format(DateLayout)
}

// Stamp renders t as MMDDYYYY for artifact names.
func (f *Formatter) Stamp(t time.Time) string {
	return t.In(f.loc).Format("01022006")
}

package view

import (
	"errors"
	"html/template"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/finboard/finboard/internal/financial"
)

// DefaultLocale is the UI locale when none is configured.
const DefaultLocale = "fa"

// Formatter renders numbers and dates for one locale.
type Formatter struct {
	printer *message.Printer
}

// NewFormatter builds a Formatter. Unknown locales fall back to DefaultLocale.
func NewFormatter(locale string) *Formatter {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.Persian
	}
	return &Formatter{printer: message.NewPrinter(tag)}
}

// Int formats an integer with locale digits and grouping.
func (f *Formatter) Int(n int) string {
	return f.printer.Sprintf("%d", n)
}

// Decimal formats an amount with at most two fraction digits.
func (f *Formatter) Decimal(d decimal.Decimal) string {
	rounded := d.Round(2)
	if rounded.IsInteger() && rounded.Abs().LessThan(decimal.New(1, 18)) {
		return f.printer.Sprintf("%d", rounded.IntPart())
	}
	return f.printer.Sprint(number.Decimal(rounded.InexactFloat64(), number.MaxFractionDigits(2)))
}

// Date formats a calendar day.
func (f *Formatter) Date(d financial.Date) string {
	return d.String()
}

// Time formats a timestamp to the minute.
func (f *Formatter) Time(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02 15:04")
}

// FuncMap exposes the formatter to templates.
func (f *Formatter) FuncMap() template.FuncMap {
	return template.FuncMap{
		"formatNumber":  f.Int,
		"formatDecimal": f.Decimal,
		"formatDate":    f.Date,
		"formatTime":    f.Time,
		"navActive":     navActive,
		"selected": func(current, option string) bool {
			return current == option || (current == "" && option == "all")
		},
		"lower": strings.ToLower,
		"dict":  dict,
	}
}

// dict builds a map from alternating keys and values so templates can pass
// several arguments to a partial.
func dict(kv ...any) (map[string]any, error) {
	if len(kv)%2 != 0 {
		return nil, errors.New("dict: odd number of arguments")
	}
	out := make(map[string]any, len(kv)/2)
	for i := 0; i < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			return nil, errors.New("dict: keys must be strings")
		}
		out[key] = kv[i+1]
	}
	return out, nil
}

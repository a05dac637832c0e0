// Package view turns domain data into presentation models for the clients.
// Nothing here performs I/O; renderers only lay out the returned values.
package view

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// TimeLayout is the display layout for timestamps.
const TimeLayout = "02 Jan 2006, 15:04"

// Tone classifies a signed amount for colouring.
type Tone int

const (
	ToneNeutral Tone = iota
	TonePositive
	ToneNegative
)

// ToneOf returns the tone of v.
func ToneOf(v float64) Tone {
	switch {
	case v > 0:
		return TonePositive
	case v < 0:
		return ToneNegative
	default:
		return ToneNeutral
	}
}

// Currency formats v as pounds sterling with two decimals and thousands
// separators, e.g. "£1,234.56" or "-£12.00".
func Currency(v float64) string {
	d := decimal.NewFromFloat(v).Round(2)
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Abs()
	}
	whole, frac, _ := strings.Cut(d.StringFixed(2), ".")
	return sign + "£" + group(whole) + "." + frac
}

// Number formats v with thousands separators and at most two decimals,
// dropping trailing zeros: 1234.5 becomes "1,234.5".
func Number(v float64) string {
	d := decimal.NewFromFloat(v).Round(2)
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Abs()
	}
	whole, frac, _ := strings.Cut(d.String(), ".")
	out := sign + group(whole)
	if frac != "" {
		out += "." + frac
	}
	return out
}

// FormatInt formats an integer with comma separators.
func FormatInt(n int) string {
	return Number(float64(n))
}

// Percent formats a [0,1] confidence as a whole percentage, e.g. "72%".
func Percent(v float64) string {
	return decimal.NewFromFloat(v).Mul(decimal.NewFromInt(100)).Round(0).String() + "%"
}

// Time formats an RFC 3339 timestamp in local time. Empty input yields
// "n/a"; unparsable input is returned unchanged.
func Time(raw string) string {
	if raw == "" {
		return "n/a"
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return raw
	}
	return t.Local().Format(TimeLayout)
}

// group inserts comma separators into a string of digits.
func group(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	start := len(digits) % 3
	if start > 0 {
		b.WriteString(digits[:start])
	}
	for i := start; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// RupeeSign prefixes every currency amount shown in the console.
const RupeeSign = "₹"

// FormatINR renders an amount as ₹ with thousands separators and at most
// three fraction digits, e.g. 500000 -> ₹500,000.
func FormatINR(amount float64) string {
	return RupeeSign + FormatAmount(decimal.NewFromFloat(amount))
}

// FormatAmount groups the integer part of d and trims trailing fraction zeros.
func FormatAmount(d decimal.Decimal) string {
	s := d.Round(3).String()
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	intPart, frac, _ := strings.Cut(s, ".")
	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	b.WriteString(groupThousands(intPart))
	if frac = strings.TrimRight(frac, "0"); frac != "" {
		b.WriteByte('.')
		b.WriteString(frac)
	}
	return b.String()
}

func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

// FormatPercent renders a fraction as a percentage with one decimal, e.g. 0.05 -> 5.0%.
func FormatPercent(fraction float64) string {
	return decimal.NewFromFloat(fraction).Mul(decimal.NewFromInt(100)).StringFixed(1) + "%"
}

// MaskAccount hides everything but the last four characters of an account number.
func MaskAccount(account string) string {
	account = strings.TrimSpace(account)
	if len(account) <= 4 {
		return "XXXX" + account
	}
	return "XXXX" + account[len(account)-4:]
}

// FormatDate renders an ISO timestamp as a short calendar date. Unparseable
// input is returned unchanged.
func FormatDate(ts string) string {
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, ts); err == nil {
			return t.Format("02 Jan 2006")
		}
	}
	return ts
}

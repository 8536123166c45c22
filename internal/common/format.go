package common

import (
	"fmt"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// currencyOrDefault resolves a currency code, falling back to USD for
// unknown or empty codes so formatting never fails on bad reference data.
func currencyOrDefault(code string) *money.Currency {
	if cur := money.GetCurrency(strings.ToUpper(strings.TrimSpace(code))); cur != nil {
		return cur
	}
	return money.GetCurrency(money.USD)
}

// FormatMoney formats an amount using the currency's own formatter:
// symbol, thousands separators, and the currency's fraction digits.
// USD 1234.56 -> "$1,234.56".
func FormatMoney(v float64, currency string) string {
	cur := currencyOrDefault(currency)
	minor := decimal.NewFromFloat(v).Shift(int32(cur.Fraction)).Round(0).IntPart()
	return cur.Formatter().Format(minor)
}

// FormatSignedMoney formats an amount with an explicit +/- prefix.
func FormatSignedMoney(v float64, currency string) string {
	if v >= 0 {
		return "+" + FormatMoney(v, currency)
	}
	return FormatMoney(v, currency)
}

// FormatPct formats a percentage to two decimal places.
func FormatPct(v float64) string {
	return fmt.Sprintf("%.2f%%", v)
}

// FormatSignedPct formats a percentage with an explicit +/- prefix.
func FormatSignedPct(v float64) string {
	if v >= 0 {
		return fmt.Sprintf("+%.2f%%", v)
	}
	return fmt.Sprintf("%.2f%%", v)
}

// FormatMarketCap formats a market cap with an M/B suffix.
func FormatMarketCap(v float64) string {
	if v >= 1e9 {
		return fmt.Sprintf("$%.2fB", v/1e9)
	}
	return fmt.Sprintf("$%.2fM", v/1e6)
}

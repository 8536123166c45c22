package common

import "testing"

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		value    float64
		currency string
		want     string
	}{
		{1234.56, "USD", "$1,234.56"},
		{0, "USD", "$0.00"},
		{-500.00, "USD", "-$500.00"},
		{1000000.99, "USD", "$1,000,000.99"},
		{1234.56, "EUR", "€1,234.56"},
		{1234.56, "AUD", "A$1,234.56"},
	}

	for _, tt := range tests {
		got := FormatMoney(tt.value, tt.currency)
		if got != tt.want {
			t.Errorf("FormatMoney(%.2f, %s) = %q, want %q", tt.value, tt.currency, got, tt.want)
		}
	}
}

func TestFormatMoneyUnknownCurrency(t *testing.T) {
	// Bad reference data falls back to USD formatting.
	got := FormatMoney(10, "???")
	if got != "$10.00" {
		t.Errorf("FormatMoney(10, ???) = %q, want %q", got, "$10.00")
	}
	got = FormatMoney(10, "")
	if got != "$10.00" {
		t.Errorf("FormatMoney(10, \"\") = %q, want %q", got, "$10.00")
	}
}

func TestFormatSignedMoney(t *testing.T) {
	if got := FormatSignedMoney(25.5, "USD"); got != "+$25.50" {
		t.Errorf("FormatSignedMoney(25.5) = %q, want %q", got, "+$25.50")
	}
	if got := FormatSignedMoney(-25.5, "USD"); got != "-$25.50" {
		t.Errorf("FormatSignedMoney(-25.5) = %q, want %q", got, "-$25.50")
	}
}

func TestFormatSignedPct(t *testing.T) {
	if got := FormatSignedPct(3.456); got != "+3.46%" {
		t.Errorf("FormatSignedPct(3.456) = %q, want %q", got, "+3.46%")
	}
	if got := FormatSignedPct(-3.456); got != "-3.46%" {
		t.Errorf("FormatSignedPct(-3.456) = %q, want %q", got, "-3.46%")
	}
}

func TestFormatMarketCap(t *testing.T) {
	if got := FormatMarketCap(2.5e9); got != "$2.50B" {
		t.Errorf("FormatMarketCap(2.5e9) = %q, want %q", got, "$2.50B")
	}
	if got := FormatMarketCap(750e6); got != "$750.00M" {
		t.Errorf("FormatMarketCap(750e6) = %q, want %q", got, "$750.00M")
	}
}

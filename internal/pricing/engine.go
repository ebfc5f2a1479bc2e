package pricing

import (
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

// Money represents an Ariary amount. Tariffs carry no fractional part.
type Money = int64

// DefaultExchangeRate is the number of Ariary for one euro.
const DefaultExchangeRate Money = 5000

var hundred = decimal.NewFromInt(100)

// Summary aggregates computed pricing components.
type Summary struct {
	Gross         Money
	MarginPercent int
	Rate          Money
	Net           decimal.Decimal
	Secondary     decimal.Decimal
}

// Sum adds up the provided amounts.
func Sum(amounts ...Money) Money {
	var total Money
	for _, a := range amounts {
		total += a
	}
	return total
}

// ApplyMargin returns gross × (1 + margin/100) without rounding.
func ApplyMargin(gross Money, marginPercent int) decimal.Decimal {
	factor := hundred.Add(decimal.NewFromInt(int64(marginPercent)))
	return decimal.NewFromInt(gross).Mul(factor).Div(hundred)
}

// Convert expresses net in the secondary currency. A non-positive rate yields zero.
func Convert(net decimal.Decimal, rate Money) decimal.Decimal {
	if rate <= 0 {
		return decimal.Zero
	}
	return net.Div(decimal.NewFromInt(rate))
}

// Compute calculates the billed totals for a gross amount.
func Compute(gross Money, marginPercent int, rate Money) Summary {
	net := ApplyMargin(gross, marginPercent)
	return Summary{
		Gross:         gross,
		MarginPercent: marginPercent,
		Rate:          rate,
		Net:           net,
		Secondary:     Convert(net, rate),
	}
}

// NetDisplay formats the net total in Ariary with no decimals.
func (s Summary) NetDisplay() string {
	return FormatDecimal(s.Net, 0)
}

// SecondaryDisplay formats the euro equivalent with two decimals.
func (s Summary) SecondaryDisplay() string {
	return FormatDecimal(s.Secondary, 2)
}

// FormatMoney renders an Ariary amount with thousands separators.
func FormatMoney(m Money) string {
	return humanize.Comma(m)
}

// FormatDecimal renders d with thousands separators and the given number of
// decimal places, rounding half to even.
func FormatDecimal(d decimal.Decimal, places int32) string {
	fixed := d.RoundBank(places).StringFixed(places)
	sign := ""
	if strings.HasPrefix(fixed, "-") {
		sign = "-"
		fixed = fixed[1:]
	}
	intPart, frac, _ := strings.Cut(fixed, ".")
	n, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return sign + fixed
	}
	out := humanize.Comma(n)
	if places > 0 {
		out += "." + frac
	}
	if sign != "" && strings.Trim(out, "0.,") != "" {
		out = sign + out
	}
	return out
}

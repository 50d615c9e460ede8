// utils/money.go
package utils

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var coinPrinter = message.NewPrinter(language.English)

// FormatCoins renders a balance or price the way the store shows it,
// e.g. "P$ 1,250.00". The value never goes through float64.
func FormatCoins(d decimal.Decimal) string {
	whole, frac, _ := strings.Cut(d.StringFixed(2), ".")
	sign := ""
	if strings.HasPrefix(whole, "-") {
		sign, whole = "-", whole[1:]
	}
	n, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		// past int64; group by hand
		return "P$ " + sign + groupThousands(whole) + "." + frac
	}
	return coinPrinter.Sprintf("P$ %s%d.%s", sign, n, frac)
}

func groupThousands(digits string) string {
	var b strings.Builder
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return b.String()
}

package receipt

import (
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

var (
	quarter       = decimal.RequireFromString("0.25")
	priceMultiple = decimal.RequireFromString("0.2")
	windowStart   = NewTimeOfDay(14, 0)
	windowEnd     = NewTimeOfDay(16, 0)
	maxAmount     = decimal.New(1, maxIntegerDigits)
)

// Breakdown lists the contribution of each points rule
type Breakdown struct {
	RetailerName      int `json:"retailer_name"`
	RoundDollar       int `json:"round_dollar"`
	QuarterMultiple   int `json:"quarter_multiple"`
	ItemPairs         int `json:"item_pairs"`
	ItemDescriptions  int `json:"item_descriptions"`
	OddDay            int `json:"odd_day"`
	AfternoonPurchase int `json:"afternoon_purchase"`
	Total             int `json:"total"`
}

// CalculatePoints scores a normalized receipt
func CalculatePoints(r *Receipt) int {
	return ScorePoints(r).Total
}

// ScorePoints scores a normalized receipt rule by rule. Amounts that do not
// parse, or are larger than NormalizeMoney accepts, contribute nothing to the
// rules that use them.
func ScorePoints(r *Receipt) Breakdown {
	var b Breakdown

	for _, c := range r.Retailer {
		if unicode.IsLetter(c) || unicode.IsDigit(c) {
			b.RetailerName++
		}
	}

	if total, err := decimal.NewFromString(r.Total); err == nil {
		if total.Mod(decimal.NewFromInt(1)).IsZero() {
			b.RoundDollar = 50
		}
		if total.Mod(quarter).IsZero() {
			b.QuarterMultiple = 25
		}
	}

	b.ItemPairs = len(r.Items) / 2 * 5

	for _, item := range r.Items {
		if len([]rune(strings.TrimSpace(item.ShortDescription)))%3 != 0 {
			continue
		}
		price, err := decimal.NewFromString(item.Price)
		if err != nil || price.GreaterThanOrEqual(maxAmount) {
			continue
		}
		b.ItemDescriptions += int(price.Mul(priceMultiple).Ceil().IntPart())
	}

	if r.PurchaseDate.Day%2 != 0 {
		b.OddDay = 6
	}

	if r.PurchaseTime > windowStart && r.PurchaseTime < windowEnd {
		b.AfternoonPurchase = 10
	}

	b.Total = b.RetailerName + b.RoundDollar + b.QuarterMultiple + b.ItemPairs +
		b.ItemDescriptions + b.OddDay + b.AfternoonPurchase
	return b
}

package receipt

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"
)

// PricePolicy decides what happens to an item price with no parseable amount
type PricePolicy int

const (
	// PriceTolerant stores the price as empty; it scores zero
	PriceTolerant PricePolicy = iota
	// PriceStrict rejects the whole receipt
	PriceStrict
)

// maxIntegerDigits bounds accepted amounts so every rule stays within int64
const maxIntegerDigits = 15

var (
	retailerDisallowed    = regexp.MustCompile(`[^\p{L}\p{Nd}\s\p{Z}\-&]`)
	descriptionDisallowed = regexp.MustCompile(`[^\p{L}\p{Nd}\s\p{Z}\-]`)
	moneyPattern          = regexp.MustCompile(`(\d+)\.\d{2}`)
)

// NormalizeRetailerName keeps letters, digits, whitespace, hyphens and ampersands
func NormalizeRetailerName(s string) string {
	return strings.TrimSpace(retailerDisallowed.ReplaceAllString(s, ""))
}

// NormalizeDescription keeps letters, digits, whitespace and hyphens
func NormalizeDescription(s string) string {
	return strings.TrimSpace(descriptionDisallowed.ReplaceAllString(s, ""))
}

// NormalizeMoney extracts the first amount with exactly two fractional digits
func NormalizeMoney(s string) (string, error) {
	m := moneyPattern.FindStringSubmatch(s)
	if m == nil {
		return "", fmt.Errorf("no amount of the form 0.00 in %q", s)
	}
	if len(m[1]) > maxIntegerDigits {
		return "", fmt.Errorf("amount %q exceeds %d integer digits", m[0], maxIntegerDigits)
	}
	return strings.TrimSpace(m[0]), nil
}

// NormalizeReceipt rewrites the free-text and money fields of r in place
func NormalizeReceipt(r *Receipt, policy PricePolicy) error {
	r.Retailer = NormalizeRetailerName(r.Retailer)

	total, err := NormalizeMoney(r.Total)
	if err != nil {
		return validationErr("total", "%v", err)
	}
	r.Total = total

	for i := range r.Items {
		item := &r.Items[i]
		item.ShortDescription = NormalizeDescription(item.ShortDescription)

		price, err := NormalizeMoney(item.Price)
		if err != nil {
			if policy == PriceStrict {
				return validationErr(fmt.Sprintf("items[%d].price", i), "%v", err)
			}
			slog.Warn("Unparseable item price, scoring as zero", "item", i, "price", item.Price)
			price = ""
		}
		item.Price = price
	}

	return nil
}

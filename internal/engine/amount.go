package engine

import (
	"regexp"
	"sort"

	"github.com/shopspring/decimal"
)

// AmountMatch is one monetary amount found in the content.
type AmountMatch struct {
	Value    decimal.Decimal
	Currency string
	Raw      string
	pos      int
}

// amountPatterns recognize the supported currency forms. Each pattern
// carries the currency its symbol or token implies; the bare-number form is
// deliberately absent, so an amount without any symbol or token is never
// fabricated into a currency.
var amountPatterns = []struct {
	re       *regexp.Regexp
	currency string
}{
	{regexp.MustCompile(`\$\s*(\d{1,5}(?:\.\d{1,2})?)`), "USD"},
	{regexp.MustCompile(`(\d{1,5}(?:\.\d{1,2})?)\s*(?:usd|dollars)\b`), "USD"},
	{regexp.MustCompile(`€\s*(\d{1,5}(?:\.\d{1,2})?)`), "EUR"},
	{regexp.MustCompile(`(\d{1,5}(?:\.\d{1,2})?)\s*(?:eur|euros?)\b`), "EUR"},
	{regexp.MustCompile(`£\s*(\d{1,5}(?:\.\d{1,2})?)`), "GBP"},
	{regexp.MustCompile(`(\d{1,5}(?:\.\d{1,2})?)\s*gbp\b`), "GBP"},
}

var (
	amountFloor   = decimal.Zero
	amountCeiling = decimal.NewFromInt(10000)
)

// ExtractAmount finds the most plausible subscription cost in the content.
// With several distinct amounts present it prefers the statistical mode
// when a unique value repeats; otherwise it takes the median of the sorted
// distinct values. Amounts outside (0, 10000) are discarded as noise.
// A zero return with ok=false means no usable amount was found.
func ExtractAmount(content *NormalizedContent) (AmountMatch, bool) {
	var matches []AmountMatch
	seen := make(map[int]struct{})
	for _, p := range amountPatterns {
		for _, loc := range p.re.FindAllStringSubmatchIndex(content.Text, -1) {
			if _, dup := seen[loc[0]]; dup {
				continue
			}
			value, err := decimal.NewFromString(content.Text[loc[2]:loc[3]])
			if err != nil {
				continue
			}
			if value.Cmp(amountFloor) <= 0 || value.Cmp(amountCeiling) >= 0 {
				continue
			}
			seen[loc[0]] = struct{}{}
			matches = append(matches, AmountMatch{
				Value:    value,
				Currency: p.currency,
				Raw:      content.Text[loc[0]:loc[1]],
				pos:      loc[0],
			})
		}
	}
	if len(matches) == 0 {
		return AmountMatch{}, false
	}

	// Text order, so "the currency adjacent to the winning amount" is
	// well defined whatever order the patterns ran in.
	sort.Slice(matches, func(i, j int) bool { return matches[i].pos < matches[j].pos })

	winner := pickAmount(matches)
	return winner, true
}

// pickAmount applies the mode-then-median tie-break over the collected
// matches and returns the first match carrying the winning value, so the
// currency is always the one adjacent to the amount that won.
func pickAmount(matches []AmountMatch) AmountMatch {
	type bucket struct {
		value decimal.Decimal
		count int
	}

	var buckets []bucket
	for _, m := range matches {
		found := false
		for i := range buckets {
			if buckets[i].value.Equal(m.Value) {
				buckets[i].count++
				found = true
				break
			}
		}
		if !found {
			buckets = append(buckets, bucket{value: m.Value, count: 1})
		}
	}

	// Mode wins only when one value repeats strictly more than any other.
	best, unique := buckets[0], true
	for _, b := range buckets[1:] {
		switch {
		case b.count > best.count:
			best, unique = b, true
		case b.count == best.count:
			unique = false
		}
	}
	target := best.value
	if best.count < 2 || !unique {
		// Median of the sorted distinct values; even counts take the
		// lower middle so the result is always an amount that actually
		// appears in the message.
		sort.Slice(buckets, func(i, j int) bool {
			return buckets[i].value.Cmp(buckets[j].value) < 0
		})
		target = buckets[(len(buckets)-1)/2].value
	}

	for _, m := range matches {
		if m.Value.Equal(target) {
			return m
		}
	}
	return matches[0]
}

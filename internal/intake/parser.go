package intake

import (
	"strconv"
	"strings"
)

// LineItem is one parsed "SKU <quantity>" entry.
type LineItem struct {
	SKU      string `json:"sku"`
	Quantity int    `json:"quantity"`
}

// ParseLines parses free-text intake input, one "SKU <quantity>" entry per
// line. Blank lines are skipped. A line is dropped (not an error) when it has
// fewer than two whitespace-separated tokens, the second token is not an
// integer, or the integer is <= 0. Duplicate SKUs pass through as separate
// items in input order; the caller decides whether duplicates matter.
//
// The result is never nil and never contains an item with an empty SKU or a
// non-positive quantity. An all-malformed or empty input yields an empty
// slice - surfacing "nothing valid to submit" is the caller's job.
func ParseLines(text string) []LineItem {
	items := []LineItem{}

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}

		qty, err := strconv.Atoi(fields[1])
		if err != nil || qty <= 0 {
			continue
		}

		items = append(items, LineItem{SKU: fields[0], Quantity: qty})
	}

	return items
}

// SerializeLines renders items back to the line-per-entry text form accepted
// by ParseLines.
func SerializeLines(items []LineItem) string {
	var b strings.Builder
	for i, item := range items {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(item.SKU)
		b.WriteByte(' ')
		b.WriteString(strconv.Itoa(item.Quantity))
	}
	return b.String()
}

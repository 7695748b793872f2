package intake

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLines(t *testing.T) {
	items := ParseLines("ABC123 5\nXYZ789 12")

	require.Len(t, items, 2)
	assert.Equal(t, LineItem{SKU: "ABC123", Quantity: 5}, items[0])
	assert.Equal(t, LineItem{SKU: "XYZ789", Quantity: 12}, items[1])
}

func TestParseLinesDropsMalformed(t *testing.T) {
	text := "GOOD1 3\n" +
		"onlysku\n" +
		"BAD notanumber\n" +
		"ZERO 0\n" +
		"NEG -4\n" +
		"GOOD2 7"

	items := ParseLines(text)

	require.Len(t, items, 2)
	assert.Equal(t, "GOOD1", items[0].SKU)
	assert.Equal(t, "GOOD2", items[1].SKU)
}

func TestParseLinesSkipsBlankLines(t *testing.T) {
	items := ParseLines("\n  \nSKU1 2\n\n\t\nSKU2 4\n")

	require.Len(t, items, 2)
	assert.Equal(t, "SKU1", items[0].SKU)
	assert.Equal(t, "SKU2", items[1].SKU)
}

func TestParseLinesIgnoresTrailingTokens(t *testing.T) {
	// Extra tokens after the quantity are allowed and ignored
	items := ParseLines("SKU1 3 leftover note")

	require.Len(t, items, 1)
	assert.Equal(t, LineItem{SKU: "SKU1", Quantity: 3}, items[0])
}

func TestParseLinesKeepsDuplicateSKUs(t *testing.T) {
	items := ParseLines("DUP 1\nDUP 2\nDUP 3")

	require.Len(t, items, 3)
	assert.Equal(t, 1, items[0].Quantity)
	assert.Equal(t, 2, items[1].Quantity)
	assert.Equal(t, 3, items[2].Quantity)
}

func TestParseLinesEmptyInput(t *testing.T) {
	items := ParseLines("")

	require.NotNil(t, items)
	assert.Empty(t, items)
}

func TestParseLinesAllMalformed(t *testing.T) {
	items := ParseLines("x\ny z\nq 0")

	require.NotNil(t, items)
	assert.Empty(t, items)
}

func TestSerializeLinesRoundTrip(t *testing.T) {
	original := []LineItem{
		{SKU: "A1", Quantity: 10},
		{SKU: "B2", Quantity: 1},
	}

	text := SerializeLines(original)
	assert.Equal(t, "A1 10\nB2 1", text)
	assert.Equal(t, original, ParseLines(text))
}

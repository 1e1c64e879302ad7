package compare

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/reconflow/invoice-recon-service/internal/models"
)

func strp(s string) *string { return &s }

func TestFieldNumericMatchIgnoresFormatting(t *testing.T) {
	cases := []struct {
		name     string
		expected *string
		actual   *string
	}{
		{"indian digit grouping", strp("7,89,600.00"), strp("789600.00")},
		{"trailing zeros", strp("1776.60"), strp("1776.6")},
		{"rupee glyph", strp("₹ 19,740"), strp("19740")},
		{"ocr mis-rendered glyph", strp("■ 19,740"), strp("19740.00")},
		{"surrounding whitespace", strp("  23,293.2 "), strp("23293.2")},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := Field(tc.expected, tc.actual)
			assert.Equal(t, models.Match, c.Result)
		})
	}
}

func TestFieldStringMatchIsCaseInsensitive(t *testing.T) {
	c := Field(strp("Shree Ganesh Realty"), strp("SHREE GANESH REALTY"))
	assert.Equal(t, models.Match, c.Result)
}

func TestFieldBothAbsentMatch(t *testing.T) {
	// An unsupplied expected field trivially matches an unextracted one
	c := Field(nil, nil)
	assert.Equal(t, models.Match, c.Result)
	assert.Nil(t, c.Expected)
	assert.Nil(t, c.Actual)
}

func TestFieldAbsentVersusPresent(t *testing.T) {
	assert.Equal(t, models.Discrepancy, Field(nil, strp("AABCS1234F")).Result)
	assert.Equal(t, models.Discrepancy, Field(strp("AABCS1234F"), nil).Result)
}

func TestFieldDiscrepancies(t *testing.T) {
	cases := []struct {
		name     string
		expected *string
		actual   *string
	}{
		{"different numbers", strp("789600.00"), strp("789601.00")},
		{"different strings", strp("Apex Estates"), strp("Shree Ganesh Realty")},
		{"number versus string", strp("123"), strp("Apex Estates")},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := Field(tc.expected, tc.actual)
			assert.Equal(t, models.Discrepancy, c.Result)
		})
	}
}

func TestFieldRetainsOriginalValues(t *testing.T) {
	expected, actual := strp("7,89,600.00"), strp("789600.00")
	c := Field(expected, actual)

	assert.Equal(t, expected, c.Expected)
	assert.Equal(t, actual, c.Actual)
}

func TestFieldIdentifierNotCoercedToNumber(t *testing.T) {
	// A PAN is alphanumeric; the comma/currency stripping must not turn
	// identifiers into numbers
	assert.Equal(t, models.Match, Field(strp("AABCS1234F"), strp("aabcs1234f")).Result)
}

func TestFieldsBuildsFullTable(t *testing.T) {
	expected := map[string]*string{models.FieldPAN: strp("AABCS1234F")}
	actual := map[string]*string{models.FieldPAN: strp("AABCS1234F")}

	comparisons := Fields(expected, actual)

	assert.Len(t, comparisons, len(models.FieldNames))
	assert.Equal(t, models.Match, comparisons[models.FieldPAN].Result)
	// All other fields are absent on both sides and therefore MATCH
	for _, field := range models.FieldNames {
		assert.Equal(t, models.Match, comparisons[field].Result, field)
	}
}

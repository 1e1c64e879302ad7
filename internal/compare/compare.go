package compare

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/reconflow/invoice-recon-service/internal/models"
)

// currencyStripper removes thousands separators and currency glyphs before
// the numeric parse. "■" is the common OCR mis-render of the rupee sign.
var currencyStripper = strings.NewReplacer(",", "", "₹", "", "■", "")

// normalized is the canonical form of a field value: either a decimal
// amount or a lower-cased string, never both.
type normalized struct {
	num     decimal.Decimal
	str     string
	numeric bool
}

// normalize canonicalizes a value for comparison. Absent values become the
// empty string. Amounts must tolerate formatting differences (commas,
// currency symbols) while names and identifiers must tolerate case
// differences without being coerced to numbers.
func normalize(val *string) normalized {
	if val == nil {
		return normalized{str: ""}
	}
	s := strings.TrimSpace(*val)
	cleaned := strings.TrimSpace(currencyStripper.Replace(s))
	if cleaned != "" {
		if d, err := decimal.NewFromString(cleaned); err == nil {
			return normalized{num: d, numeric: true}
		}
	}
	return normalized{str: strings.ToLower(s)}
}

func (n normalized) equal(other normalized) bool {
	if n.numeric != other.numeric {
		return false
	}
	if n.numeric {
		return n.num.Equal(other.num)
	}
	return n.str == other.str
}

// Field classifies an expected/actual pair as MATCH or DISCREPANCY,
// retaining both original values for the report. Two absent values
// normalize to equal empty strings and therefore MATCH.
func Field(expected, actual *string) models.Comparison {
	result := models.Discrepancy
	if normalize(expected).equal(normalize(actual)) {
		result = models.Match
	}
	return models.Comparison{Expected: expected, Actual: actual, Result: result}
}

// Fields builds the full comparison table from caller-supplied expected
// values and extracted actuals, one entry per field name.
func Fields(expected, actual map[string]*string) map[string]models.Comparison {
	comparisons := make(map[string]models.Comparison, len(models.FieldNames))
	for _, field := range models.FieldNames {
		comparisons[field] = Field(expected[field], actual[field])
	}
	return comparisons
}

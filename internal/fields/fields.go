package fields

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/reconflow/invoice-recon-service/internal/models"
)

// Rule binds a field name to its extraction pattern. Each pattern has
// exactly one capture group; the patterns are applied case-insensitively
// against whitespace-collapsed text, so label and value are always on
// one logical line.
type Rule struct {
	Field   string
	Pattern *regexp.Regexp
}

// defaultPatterns holds the statutory field patterns. The CP_Name capture
// runs up to the next recognized label or end of text; the CGST/SGST rates
// are literal 9%, not wildcards.
var defaultPatterns = map[string]string{
	models.FieldCPName:             `Channel Partner\s*\(Bill From\)\s*[:\-]?\s*([\w\s\.\-&]+?)(?:\s+(?:PAN|GSTIN|Address|Email|Mob|Contact)|$)`,
	models.FieldPAN:                `\bPAN\s*[:\-]?\s*([A-Z]{5}[0-9]{4}[A-Z])\b`,
	models.FieldGSTIN:              `\bGSTIN\s*[:\-]?\s*([0-9]{2}[A-Z]{5}[0-9]{4}[A-Z][1-9A-Z]Z[0-9A-Z])\b`,
	models.FieldAgreementAmount:    `Agreement Value\s*(?:Amount)?\s*[:\-]?\s*[₹■]?\s*([\d,]+\.\d{2})`,
	models.FieldBrokerageAmount:    `(?:Commission|Brokerage)\s*@?\s*[\d\.]+\s*%?\s*(?:Amount|Value)?\s*[:\-]?\s*[₹■]?\s*([\d,]+(?:\.\d{1,2})?)`,
	models.FieldCGST:               `CGST\s*@?\s*9%\s*[:\-]?\s*[₹■]?\s*([\d,]+\.\d+)`,
	models.FieldSGST:               `SGST\s*@?\s*9%\s*[:\-]?\s*[₹■]?\s*([\d,]+\.\d+)`,
	models.FieldTotalInvoiceAmount: `Total Invoice Amount\s*[:\-]?\s*[:\-]?\s*[₹■]?\s*([\d,]+\.\d+)`,
	models.FieldTDS:                `TDS\s*(?:u/s\s*194H)?\s*(?:@?\s*[\d\.]+\s*%?)?\s*[:\-]?\s*[₹■]?\s*([\d,]+(?:\.\d{1,2})?)`,
}

var whitespace = regexp.MustCompile(`\s+`)

// Extractor applies the fixed ordered rule set to invoice text.
type Extractor struct {
	rules []Rule
}

// NewExtractor compiles the nine field rules. Entries in overrides replace
// the default pattern for that field; unknown field names are rejected.
func NewExtractor(overrides map[string]string) (*Extractor, error) {
	for field := range overrides {
		if _, ok := defaultPatterns[field]; !ok {
			return nil, fmt.Errorf("unknown extraction field %q", field)
		}
	}

	rules := make([]Rule, 0, len(models.FieldNames))
	for _, field := range models.FieldNames {
		pattern := defaultPatterns[field]
		if override, ok := overrides[field]; ok && override != "" {
			pattern = override
		}
		re, err := regexp.Compile("(?i)" + pattern)
		if err != nil {
			return nil, fmt.Errorf("failed to compile pattern for %s: %w", field, err)
		}
		rules = append(rules, Rule{Field: field, Pattern: re})
	}
	return &Extractor{rules: rules}, nil
}

// Extract pulls the nine fields out of raw text. Runs of whitespace are
// collapsed to single spaces first because extracted text wraps across
// lines unpredictably. A field whose pattern finds nothing maps to nil;
// that is a normal outcome, not an error.
func (e *Extractor) Extract(text string) map[string]*string {
	normalized := whitespace.ReplaceAllString(text, " ")

	extracted := make(map[string]*string, len(e.rules))
	for _, rule := range e.rules {
		m := rule.Pattern.FindStringSubmatch(normalized)
		if m == nil {
			extracted[rule.Field] = nil
			continue
		}
		value := strings.TrimSpace(m[1])
		extracted[rule.Field] = &value
	}
	return extracted
}

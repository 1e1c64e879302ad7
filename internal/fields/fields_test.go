package fields

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reconflow/invoice-recon-service/internal/models"
)

const sampleInvoice = `
Channel Partner (Bill From) Shree Ganesh Realty Baner
Address: Baner Road, Pune.
PAN: AABCS1234F
GSTIN: 27AABCS1234F1Z5
Agreement Value Amount: 7,89,600.00
Commission @ 2.5% 19,740
CGST @ 9% 1776.6
SGST @ 9% 1776.6
Total Invoice Amount: 23,293.2
TDS u/s 194H @ 10% 1974
`

func newTestExtractor(t *testing.T) *Extractor {
	t.Helper()
	e, err := NewExtractor(nil)
	require.NoError(t, err)
	return e
}

func TestExtractSampleInvoice(t *testing.T) {
	extracted := newTestExtractor(t).Extract(sampleInvoice)

	want := map[string]string{
		models.FieldCPName:             "Shree Ganesh Realty Baner",
		models.FieldPAN:                "AABCS1234F",
		models.FieldGSTIN:              "27AABCS1234F1Z5",
		models.FieldAgreementAmount:    "7,89,600.00",
		models.FieldBrokerageAmount:    "19,740",
		models.FieldCGST:               "1776.6",
		models.FieldSGST:               "1776.6",
		models.FieldTotalInvoiceAmount: "23,293.2",
		models.FieldTDS:                "1974",
	}
	for field, value := range want {
		if assert.NotNil(t, extracted[field], field) {
			assert.Equal(t, value, *extracted[field], field)
		}
	}
}

func TestExtractMissingFieldsAreNil(t *testing.T) {
	extracted := newTestExtractor(t).Extract("Just an unrelated note, nothing invoice-like.")

	assert.Len(t, extracted, len(models.FieldNames))
	for _, field := range models.FieldNames {
		assert.Nil(t, extracted[field], field)
	}
}

func TestExtractCaseInsensitive(t *testing.T) {
	extracted := newTestExtractor(t).Extract("pan: aabcs1234f gstin: 27aabcs1234f1z5")

	require.NotNil(t, extracted[models.FieldPAN])
	assert.Equal(t, "aabcs1234f", *extracted[models.FieldPAN])
	require.NotNil(t, extracted[models.FieldGSTIN])
	assert.Equal(t, "27aabcs1234f1z5", *extracted[models.FieldGSTIN])
}

func TestExtractCollapsesWhitespace(t *testing.T) {
	// Label and value split across lines must still match
	extracted := newTestExtractor(t).Extract("Total Invoice\nAmount:\n  23,293.2")

	require.NotNil(t, extracted[models.FieldTotalInvoiceAmount])
	assert.Equal(t, "23,293.2", *extracted[models.FieldTotalInvoiceAmount])
}

func TestExtractCPNameStopsAtNextLabel(t *testing.T) {
	extracted := newTestExtractor(t).Extract("Channel Partner (Bill From): Apex Estates PAN: AABCS1234F")

	require.NotNil(t, extracted[models.FieldCPName])
	assert.Equal(t, "Apex Estates", *extracted[models.FieldCPName])
}

func TestExtractCPNameRunsToEndOfText(t *testing.T) {
	extracted := newTestExtractor(t).Extract("Channel Partner (Bill From): Apex Estates")

	require.NotNil(t, extracted[models.FieldCPName])
	assert.Equal(t, "Apex Estates", *extracted[models.FieldCPName])
}

func TestExtractGSTRateIsLiteral(t *testing.T) {
	// Only the statutory 9% label matches, not other rates
	extracted := newTestExtractor(t).Extract("CGST @ 14% 2763.6 SGST @ 9% 1776.6")

	assert.Nil(t, extracted[models.FieldCGST])
	require.NotNil(t, extracted[models.FieldSGST])
	assert.Equal(t, "1776.6", *extracted[models.FieldSGST])
}

func TestExtractCurrencyGlyphs(t *testing.T) {
	for _, text := range []string{
		"Agreement Value: ₹ 7,89,600.00",
		"Agreement Value: ■ 7,89,600.00",
	} {
		extracted := newTestExtractor(t).Extract(text)
		if assert.NotNil(t, extracted[models.FieldAgreementAmount], text) {
			assert.Equal(t, "7,89,600.00", *extracted[models.FieldAgreementAmount], text)
		}
	}
}

func TestExtractIdempotent(t *testing.T) {
	e := newTestExtractor(t)
	first := e.Extract(sampleInvoice)
	second := e.Extract(sampleInvoice)

	assert.Equal(t, first, second)
}

func TestNewExtractorRejectsUnknownField(t *testing.T) {
	_, err := NewExtractor(map[string]string{"Unknown_Field": `x(\d+)`})
	assert.Error(t, err)
}

func TestNewExtractorRejectsBadPattern(t *testing.T) {
	_, err := NewExtractor(map[string]string{models.FieldPAN: `([`})
	assert.Error(t, err)
}

func TestNewExtractorPatternOverride(t *testing.T) {
	e, err := NewExtractor(map[string]string{
		models.FieldTDS: `TDS\s+amount\s+(\d+)`,
	})
	require.NoError(t, err)

	extracted := e.Extract("TDS amount 500")
	require.NotNil(t, extracted[models.FieldTDS])
	assert.Equal(t, "500", *extracted[models.FieldTDS])
}

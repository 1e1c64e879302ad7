package models

// Field names for the nine extraction slots. Every comparison and weight
// entry is keyed by one of these.
const (
	FieldCPName             = "CP_Name"
	FieldPAN                = "PAN"
	FieldGSTIN              = "GSTIN"
	FieldAgreementAmount    = "Agreement_Amount"
	FieldBrokerageAmount    = "Brokerage_Amount"
	FieldCGST               = "CGST"
	FieldSGST               = "SGST"
	FieldTotalInvoiceAmount = "Total_Invoice_Amount"
	FieldTDS                = "TDS"
)

// FieldNames lists the nine fields in extraction order.
var FieldNames = []string{
	FieldCPName,
	FieldPAN,
	FieldGSTIN,
	FieldAgreementAmount,
	FieldBrokerageAmount,
	FieldCGST,
	FieldSGST,
	FieldTotalInvoiceAmount,
	FieldTDS,
}

// Comparison pairs an expected value against an extracted one.
type Comparison struct {
	Expected *string `json:"expected"`
	Actual   *string `json:"actual"`
	Result   string  `json:"result"` // "MATCH" or "DISCREPANCY"
}

// Comparison results
const (
	Match       = "MATCH"
	Discrepancy = "DISCREPANCY"
)

// ReconcileRequest is the input for invoice reconciliation. Blob64 carries
// the document; the remaining fields are the caller's claimed values.
// PartnerID optionally names a registered channel partner whose master
// data fills in missing identifiers.
type ReconcileRequest struct {
	Blob64             string  `json:"blob_64"`
	PartnerID          string  `json:"partner_id,omitempty"`
	CPName             *string `json:"CP_Name,omitempty"`
	PAN                *string `json:"PAN,omitempty"`
	GSTIN              *string `json:"GSTIN,omitempty"`
	AgreementAmount    *string `json:"Agreement_Amount,omitempty"`
	BrokerageAmount    *string `json:"Brokerage_Amount,omitempty"`
	CGST               *string `json:"CGST,omitempty"`
	SGST               *string `json:"SGST,omitempty"`
	TotalInvoiceAmount *string `json:"Total_Invoice_Amount,omitempty"`
	TDS                *string `json:"TDS,omitempty"`
}

// Expected returns the claimed values keyed by field name.
func (r *ReconcileRequest) Expected() map[string]*string {
	return map[string]*string{
		FieldCPName:             r.CPName,
		FieldPAN:                r.PAN,
		FieldGSTIN:              r.GSTIN,
		FieldAgreementAmount:    r.AgreementAmount,
		FieldBrokerageAmount:    r.BrokerageAmount,
		FieldCGST:               r.CGST,
		FieldSGST:               r.SGST,
		FieldTotalInvoiceAmount: r.TotalInvoiceAmount,
		FieldTDS:                r.TDS,
	}
}

// ReconcileResponse is the output of invoice reconciliation.
type ReconcileResponse struct {
	Comparisons       map[string]Comparison `json:"comparisons"`
	Score             string                `json:"score"`
	Remarks           string                `json:"remarks"`
	RecommendedAction string                `json:"recommendedAction"`
	ExtractionMethod  string                `json:"extractionMethod,omitempty"`
	FileName          string                `json:"fileName,omitempty"`

	// Object path of the archived original, set only when storage is
	// configured and the upload succeeded
	ArchiveURL string `json:"archiveUrl,omitempty"`
}

// Config represents the service configuration
type Config struct {
	Port int    `yaml:"port"`
	Host string `yaml:"host"`

	// Directory for per-request temp copies of submitted documents
	InputDir string `yaml:"input_dir"`

	OCR        OCRConfig        `yaml:"ocr"`
	Extraction ExtractionConfig `yaml:"extraction"`
	Scoring    ScoringConfig    `yaml:"scoring"`
}

// OCRConfig represents OCR-specific configuration
type OCRConfig struct {
	DPI                  int    `yaml:"dpi"`                    // rasterization DPI, default 300
	Language             string `yaml:"language"`               // tesseract language, default "eng"
	ScannedTextThreshold int    `yaml:"scanned_text_threshold"` // below this many chars the text layer is ignored
	MaxPages             int    `yaml:"max_pages"`              // 0 = no limit
	TesseractBin         string `yaml:"tesseract_bin"`
	PdftoppmBin          string `yaml:"pdftoppm_bin"`
}

// ExtractionConfig allows overriding individual field patterns.
// Keys are field names; values replace the compiled-in defaults.
type ExtractionConfig struct {
	Patterns map[string]string `yaml:"patterns"`
}

// ScoringConfig holds the per-field weights and decision thresholds.
// Zero values fall back to the defaults; the weights must sum to 100.
type ScoringConfig struct {
	WeightCPName          int `yaml:"weight_cp_name"`
	WeightPAN             int `yaml:"weight_pan"`
	WeightGSTIN           int `yaml:"weight_gstin"`
	WeightAgreementAmount int `yaml:"weight_agreement_amount"`
	WeightBrokerageAmount int `yaml:"weight_brokerage_amount"`
	WeightGSTBreakup      int `yaml:"weight_gst_breakup"`
	WeightTDS             int `yaml:"weight_tds"`
	WeightTotalAmount     int `yaml:"weight_total_amount"`

	ThresholdAutoApprove int `yaml:"threshold_auto_approve"`
	ThresholdReview      int `yaml:"threshold_review"`
}

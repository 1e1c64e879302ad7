package scoring

import (
	"fmt"
	"strings"

	"github.com/reconflow/invoice-recon-service/internal/models"
)

// Decision categories
const (
	DecisionAutoApprove = "AUTO_APPROVE"
	DecisionReview      = "REVIEW"
	DecisionReject      = "REJECT"
)

// Recommended actions returned to the reconciliation workflow
const (
	ActionAutoApprove = "AUTO APPROVE"
	ActionReview      = "MANUAL REVIEW REQUIRED"
	ActionReject      = "REJECT AND RETURN TO CHANNEL PARTNER"
)

// Verdict is the outcome of scoring a comparison set. Score is the sum of
// weights awarded for matching fields; a hard stop forces REJECT no matter
// the score.
type Verdict struct {
	Score             int      `json:"score"`
	Decision          string   `json:"decision"`
	RecommendedAction string   `json:"recommendedAction"`
	Remarks           string   `json:"remarks"`
	FailedFields      []string `json:"failedFields,omitempty"`
	HardStopReasons   []string `json:"hardStopReasons,omitempty"`
}

// Policy holds the per-field weights, hard-stop set and decision
// thresholds. Weights must sum to 100.
type Policy struct {
	WeightCPName          int
	WeightPAN             int
	WeightGSTIN           int
	WeightAgreementAmount int
	WeightBrokerageAmount int
	WeightGSTBreakup      int
	WeightTDS             int
	WeightTotalAmount     int

	ThresholdAutoApprove int
	ThresholdReview      int
}

// DefaultPolicy returns the standard reconciliation policy.
func DefaultPolicy() Policy {
	return Policy{
		WeightCPName:          5,
		WeightPAN:             15,
		WeightGSTIN:           15,
		WeightAgreementAmount: 15,
		WeightBrokerageAmount: 20,
		WeightGSTBreakup:      10,
		WeightTDS:             10,
		WeightTotalAmount:     10,
		ThresholdAutoApprove:  90,
		ThresholdReview:       70,
	}
}

// PolicyFromConfig builds a Policy from configuration, falling back to the
// defaults for any value left at zero.
func PolicyFromConfig(cfg models.ScoringConfig) Policy {
	p := DefaultPolicy()
	if cfg.WeightCPName > 0 {
		p.WeightCPName = cfg.WeightCPName
	}
	if cfg.WeightPAN > 0 {
		p.WeightPAN = cfg.WeightPAN
	}
	if cfg.WeightGSTIN > 0 {
		p.WeightGSTIN = cfg.WeightGSTIN
	}
	if cfg.WeightAgreementAmount > 0 {
		p.WeightAgreementAmount = cfg.WeightAgreementAmount
	}
	if cfg.WeightBrokerageAmount > 0 {
		p.WeightBrokerageAmount = cfg.WeightBrokerageAmount
	}
	if cfg.WeightGSTBreakup > 0 {
		p.WeightGSTBreakup = cfg.WeightGSTBreakup
	}
	if cfg.WeightTDS > 0 {
		p.WeightTDS = cfg.WeightTDS
	}
	if cfg.WeightTotalAmount > 0 {
		p.WeightTotalAmount = cfg.WeightTotalAmount
	}
	if cfg.ThresholdAutoApprove > 0 {
		p.ThresholdAutoApprove = cfg.ThresholdAutoApprove
	}
	if cfg.ThresholdReview > 0 {
		p.ThresholdReview = cfg.ThresholdReview
	}
	return p
}

// Engine scores comparison sets against a fixed policy. Stateless and safe
// for concurrent use.
type Engine struct {
	policy Policy
}

// NewEngine creates a scoring engine with the given policy.
func NewEngine(policy Policy) *Engine {
	return &Engine{policy: policy}
}

// Score applies the weighted policy to a comparison set. It is a total
// function: any combination of comparisons produces a verdict, never an
// error. A DISCREPANCY on PAN, GSTIN or Agreement_Amount is a hard stop
// that forces REJECT regardless of the accumulated score. The GST breakup
// weight is awarded only when both CGST and SGST match; a single matching
// half earns nothing.
func (e *Engine) Score(comparisons map[string]models.Comparison) Verdict {
	var (
		score           int
		failedFields    []string
		hardStopReasons []string
	)

	matched := func(field string) bool {
		match := comparisons[field].Result == models.Match
		if !match {
			failedFields = append(failedFields, field)
		}
		return match
	}

	if matched(models.FieldCPName) {
		score += e.policy.WeightCPName
	}

	if matched(models.FieldPAN) {
		score += e.policy.WeightPAN
	} else {
		hardStopReasons = append(hardStopReasons, "PAN mismatch")
	}

	if matched(models.FieldGSTIN) {
		score += e.policy.WeightGSTIN
	} else {
		hardStopReasons = append(hardStopReasons, "GSTIN mismatch")
	}

	if matched(models.FieldAgreementAmount) {
		score += e.policy.WeightAgreementAmount
	} else {
		hardStopReasons = append(hardStopReasons, "Agreement Amount mismatch")
	}

	if matched(models.FieldBrokerageAmount) {
		score += e.policy.WeightBrokerageAmount
	}

	// GST breakup: no partial credit, but each mismatching half is still
	// recorded individually in the failed-fields list.
	cgstOK := matched(models.FieldCGST)
	sgstOK := matched(models.FieldSGST)
	if cgstOK && sgstOK {
		score += e.policy.WeightGSTBreakup
	}

	if matched(models.FieldTDS) {
		score += e.policy.WeightTDS
	}

	if matched(models.FieldTotalInvoiceAmount) {
		score += e.policy.WeightTotalAmount
	}

	hardStop := len(hardStopReasons) > 0

	var decision, action string
	switch {
	case hardStop:
		decision = DecisionReject
		action = ActionReject
	case score >= e.policy.ThresholdAutoApprove:
		decision = DecisionAutoApprove
		action = ActionAutoApprove
	case score >= e.policy.ThresholdReview:
		decision = DecisionReview
		action = ActionReview
	default:
		decision = DecisionReject
		action = ActionReject
	}

	return Verdict{
		Score:             score,
		Decision:          decision,
		RecommendedAction: action,
		Remarks:           e.remarks(score, hardStopReasons, failedFields),
		FailedFields:      failedFields,
		HardStopReasons:   hardStopReasons,
	}
}

// remarks generates the human-readable summary. It always states the
// numeric score; the rest depends on whether a hard stop fired and whether
// the score cleared the approval threshold.
func (e *Engine) remarks(score int, hardStopReasons, failedFields []string) string {
	parts := []string{fmt.Sprintf("Invoice validation resulted in a score of %d.", score)}

	switch {
	case len(hardStopReasons) > 0:
		parts = append(parts,
			fmt.Sprintf("Critical discrepancies were found in: %s.", strings.Join(hardStopReasons, ", ")),
			"This requires rejection as per policy.")
	case score < e.policy.ThresholdAutoApprove:
		if len(failedFields) > 0 {
			parts = append(parts, fmt.Sprintf("Discrepancies found in: %s.", strings.Join(failedFields, ", ")))
		}
		parts = append(parts, "Score is below approval threshold.")
	default:
		parts = append(parts, "All critical financial details and identifiers matched successfully.")
	}

	return strings.Join(parts, " ")
}

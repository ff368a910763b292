// internal/eligibility/decision/normalizer.go
package decision

import (
	"fmt"
	"strconv"
	"strings"
)

// Status values reported to callers.
const (
	StatusApproved = "Approved"
	StatusRejected = "Rejected"
)

// Applicant-facing result text.
const (
	ResultEligible    = "Eligible for loan"
	ResultNotEligible = "Not eligible"
)

// approvedLabels is the closed vocabulary of positive classifier labels, after normalization.
var approvedLabels = map[string]struct{}{
	"Y":        {},
	"YES":      {},
	"1":        {},
	"APPROVED": {},
	"APPROVE":  {},
}

// rejectedLabels are the negative labels the models are known to emit. Anything outside
// both sets is still rejected, but flagged as unrecognized.
var rejectedLabels = map[string]struct{}{
	"N":        {},
	"NO":       {},
	"0":        {},
	"REJECTED": {},
	"REJECT":   {},
}

// Decision is the canonical outcome of a prediction.
type Decision struct {
	Approved bool   `json:"approved"`
	Status   string `json:"status"`
}

// ResultText is the sentence shown to the applicant.
func (d Decision) ResultText() string {
	if d.Approved {
		return ResultEligible
	}
	return ResultNotEligible
}

// Normalize maps a raw classifier label to a decision. It never fails: unknown labels are rejections.
func Normalize(label interface{}) Decision {
	d, _ := Classify(label)
	return d
}

// Classify is Normalize plus a flag telling whether the label belonged to the known vocabulary.
func Classify(label interface{}) (Decision, bool) {
	key := strings.ToUpper(strings.TrimSpace(LabelText(label)))
	if _, ok := approvedLabels[key]; ok {
		return Decision{Approved: true, Status: StatusApproved}, true
	}
	_, known := rejectedLabels[key]
	return Decision{Approved: false, Status: StatusRejected}, known
}

// LabelText decodes a label into text. Byte labels are decoded as UTF-8; integral
// floats drop their fractional part so a JSON 1 reads as "1".
// A float 1.0 is therefore approved too: decoded JSON cannot tell 1 from 1.0.
func LabelText(label interface{}) string {
	switch v := label.(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	default:
		return fmt.Sprint(v)
	}
}

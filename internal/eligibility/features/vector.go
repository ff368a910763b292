// internal/eligibility/features/vector.go
package features

import "math"

// Size is the number of features the classifier was trained on.
const Size = 14

// Positions in FeatureVector. The classifier is positional, so this order never changes.
const (
	IdxCreditFlag = iota
	IdxApplicantIncomeLog
	IdxLoanAmountLog
	IdxLoanTermLog
	IdxTotalIncomeLog
	IdxIsMale
	IdxIsMarried
	IdxDependents1
	IdxDependents2
	IdxDependents3Plus
	IdxNotGraduate
	IdxSelfEmployed
	IdxAreaSemiurban
	IdxAreaUrban
)

// Names lists the feature names in vector order.
var Names = [Size]string{
	"credit_flag",
	"applicant_income_log",
	"loan_amount_log",
	"loan_term_log",
	"total_income_log",
	"is_male",
	"is_married",
	"dep_eq1",
	"dep_eq2",
	"dep_gte3",
	"not_graduate",
	"is_self_employed",
	"area_is_semiurban",
	"area_is_urban",
}

// FeatureVector is a fixed-length array, so its length cannot drift from Size.
type FeatureVector [Size]float64

// Slice returns a copy of the vector as a slice, for JSON payloads and model inputs.
func (v FeatureVector) Slice() []float64 {
	out := make([]float64, Size)
	copy(out, v[:])
	return out
}

// Named returns the vector keyed by feature name.
func (v FeatureVector) Named() map[string]float64 {
	out := make(map[string]float64, Size)
	for i, name := range Names {
		out[name] = v[i]
	}
	return out
}

// Finite reports whether every element is a real number.
func (v FeatureVector) Finite() bool {
	for _, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}

// internal/eligibility/features/encoder.go
package features

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Raw application field names, as submitted by the loan form and the JSON chat endpoint.
const (
	FieldGender            = "gender"
	FieldMarried           = "married"
	FieldDependents        = "dependents"
	FieldEducation         = "education"
	FieldEmployed          = "employed"
	FieldCredit            = "credit"
	FieldArea              = "area"
	FieldApplicantIncome   = "ApplicantIncome"
	FieldCoapplicantIncome = "CoapplicantIncome"
	FieldLoanAmount        = "LoanAmount"
	FieldLoanAmountTerm    = "Loan_Amount_Term"
)

// Credit values inside [CreditFlagMin, CreditFlagMax] set the credit flag.
const (
	CreditFlagMin = 800.0
	CreditFlagMax = 1000.0
)

// Defaults holds the value substituted for each numeric field that fails to parse.
// LoanAmount defaults to 1.0 so its log stays defined; the term defaults to 360 months.
var Defaults = map[string]float64{
	FieldApplicantIncome:   0.0,
	FieldCoapplicantIncome: 0.0,
	FieldLoanAmount:        1.0,
	FieldLoanAmountTerm:    360.0,
	FieldCredit:            0.0,
}

// RawApplication maps field names to untyped values (string, number, bool, []byte or nil).
type RawApplication map[string]interface{}

// FormDefaults are the values the loan form submits when a field is left out.
var FormDefaults = RawApplication{
	FieldGender:            "Male",
	FieldMarried:           "No",
	FieldDependents:        "0",
	FieldEducation:         "Graduate",
	FieldEmployed:          "No",
	FieldCredit:            "750",
	FieldArea:              "Urban",
	FieldApplicantIncome:   "5000",
	FieldCoapplicantIncome: "0",
	FieldLoanAmount:        "100",
	FieldLoanAmountTerm:    "360",
}

// WithDefaults returns a copy of r with every absent key taken from defaults.
// Keys present with a nil value are kept as nil.
func (r RawApplication) WithDefaults(defaults RawApplication) RawApplication {
	out := make(RawApplication, len(r)+len(defaults))
	for k, v := range defaults {
		out[k] = v
	}
	for k, v := range r {
		out[k] = v
	}
	return out
}

type matchKind int

const (
	matchExact matchKind = iota
	matchPrefix
)

type dependentRule struct {
	kind   matchKind
	values []string
	flags  [3]float64
}

// dependentRules is evaluated in order against the untrimmed string form of the value.
// "1" and "2" must match exactly while "3" matches by prefix ("3+", "3.0", "30").
var dependentRules = []dependentRule{
	{kind: matchExact, values: []string{"1", "1.0"}, flags: [3]float64{1, 0, 0}},
	{kind: matchExact, values: []string{"2", "2.0"}, flags: [3]float64{0, 1, 0}},
	{kind: matchPrefix, values: []string{"3"}, flags: [3]float64{0, 0, 1}},
}

// Encoder turns raw applications into feature vectors. The zero value is ready to use.
type Encoder struct{}

func NewEncoder() *Encoder {
	return &Encoder{}
}

// Encode is total: malformed or missing fields degrade to their defaults.
func (e *Encoder) Encode(raw RawApplication) FeatureVector {
	return Encode(raw)
}

// Encode builds the 14-element vector in training order.
func Encode(raw RawApplication) FeatureVector {
	applicantIncome := parseFloat(raw, FieldApplicantIncome)
	coapplicantIncome := parseFloat(raw, FieldCoapplicantIncome)
	loanAmount := parseFloat(raw, FieldLoanAmount)
	loanTerm := parseFloat(raw, FieldLoanAmountTerm)
	credit := parseFloat(raw, FieldCredit)

	d1, d2, d3 := encodeDependents(raw[FieldDependents])
	area := categorical(raw[FieldArea])

	var v FeatureVector
	v[IdxCreditFlag] = boolFloat(credit >= CreditFlagMin && credit <= CreditFlagMax)
	v[IdxApplicantIncomeLog] = safeLog(applicantIncome)
	v[IdxLoanAmountLog] = safeLog(loanAmount)
	v[IdxLoanTermLog] = safeLog(loanTerm)
	v[IdxTotalIncomeLog] = safeLog(applicantIncome + coapplicantIncome)
	v[IdxIsMale] = boolFloat(categorical(raw[FieldGender]) == "male")
	v[IdxIsMarried] = boolFloat(categorical(raw[FieldMarried]) == "yes")
	v[IdxDependents1] = d1
	v[IdxDependents2] = d2
	v[IdxDependents3Plus] = d3
	v[IdxNotGraduate] = boolFloat(categorical(raw[FieldEducation]) == "not graduate")
	v[IdxSelfEmployed] = boolFloat(categorical(raw[FieldEmployed]) == "yes")
	v[IdxAreaSemiurban] = boolFloat(area == "semiurban")
	v[IdxAreaUrban] = boolFloat(area == "urban")
	return v
}

func encodeDependents(value interface{}) (float64, float64, float64) {
	s := stringForm(value)
	for _, rule := range dependentRules {
		for _, candidate := range rule.values {
			if rule.kind == matchExact && s == candidate ||
				rule.kind == matchPrefix && strings.HasPrefix(s, candidate) {
				return rule.flags[0], rule.flags[1], rule.flags[2]
			}
		}
	}
	return 0, 0, 0
}

// parseFloat returns the field default when the value is absent or unparseable.
// Non-finite and overflowing text parse normally; safeLog and the credit range map them to 0.
func parseFloat(raw RawApplication, field string) float64 {
	def := Defaults[field]
	var (
		f   float64
		err error
	)
	switch v := raw[field].(type) {
	case nil:
		return def
	case float64:
		f = v
	case float32:
		f = float64(v)
	case int:
		f = float64(v)
	case int32:
		f = float64(v)
	case int64:
		f = float64(v)
	case bool:
		f = boolFloat(v)
	case string:
		f, err = strconv.ParseFloat(strings.TrimSpace(v), 64)
	case []byte:
		f, err = strconv.ParseFloat(strings.TrimSpace(string(v)), 64)
	case json.Number:
		f, err = v.Float64()
	default:
		return def
	}
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return def
	}
	return f
}

func categorical(value interface{}) string {
	return strings.ToLower(strings.TrimSpace(stringForm(value)))
}

// stringForm renders a raw value the way the form layer sees it. Integral floats
// print without a fractional part, so a JSON 2 reads as "2".
func stringForm(value interface{}) string {
	switch v := value.(type) {
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

// safeLog guards non-positive input; an overflowed income sum also maps to 0.
func safeLog(x float64) float64 {
	if x > 0 && !math.IsInf(x, 1) {
		return math.Log(x)
	}
	return 0.0
}

func boolFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

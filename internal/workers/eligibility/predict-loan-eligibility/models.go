// internal/workers/eligibility/predict-loan-eligibility/models.go
package predictloaneligibility

type Input struct {
	ApplicationID string                 `json:"applicationId"`
	Application   map[string]interface{} `json:"application"`
}

type Output struct {
	ApplicationID string             `json:"applicationId"`
	Approved      bool               `json:"approved"`
	Status        string             `json:"status"` // "Approved" or "Rejected"
	Label         string             `json:"label"`
	Recognized    bool               `json:"labelRecognized"`
	Features      []float64          `json:"features"`
	NamedFeatures map[string]float64 `json:"namedFeatures"`
	EvaluatedAt   string             `json:"evaluatedAt"` // ISO 8601
}

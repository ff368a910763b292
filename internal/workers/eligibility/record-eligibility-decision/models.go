// internal/workers/eligibility/record-eligibility-decision/models.go
package recordeligibilitydecision

type Input struct {
	ApplicationID string                 `json:"applicationId"`
	Approved      bool                   `json:"approved"`
	Status        string                 `json:"status"`
	Label         string                 `json:"label"`
	Features      []float64              `json:"features"`
	Application   map[string]interface{} `json:"application"`
}

type Output struct {
	DecisionID string `json:"decisionId"`
	RecordedAt string `json:"recordedAt"` // ISO 8601
}

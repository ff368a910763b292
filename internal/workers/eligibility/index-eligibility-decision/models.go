// internal/workers/eligibility/index-eligibility-decision/models.go
package indexeligibilitydecision

type Input struct {
	DecisionID    string             `json:"decisionId"`
	ApplicationID string             `json:"applicationId"`
	Approved      bool               `json:"approved"`
	Status        string             `json:"status"`
	Label         string             `json:"label"`
	NamedFeatures map[string]float64 `json:"namedFeatures"`
	RecordedAt    string             `json:"recordedAt"`
}

type Output struct {
	Indexed bool   `json:"indexed"`
	Index   string `json:"index"`
	Result  string `json:"result"` // created | updated
}

// decisionDocument is the search-side projection of a recorded decision.
type decisionDocument struct {
	DecisionID    string             `json:"decision_id"`
	ApplicationID string             `json:"application_id"`
	Approved      bool               `json:"approved"`
	Status        string             `json:"status"`
	Label         string             `json:"label"`
	Features      map[string]float64 `json:"features,omitempty"`
	RecordedAt    string             `json:"recorded_at"`
	IndexedAt     string             `json:"indexed_at"`
}

type indexResponse struct {
	Index  string `json:"_index"`
	ID     string `json:"_id"`
	Result string `json:"result"`
}

// internal/eligibility/classifier/remote.go
package classifier

import (
	"context"
	"errors"
	"fmt"
	"time"

	commonhttp "loan-eligibility-workers/internal/common/http"
	"loan-eligibility-workers/internal/eligibility/features"
)

// RemoteClassifier calls a model server over HTTP/JSON.
//
//	request:  {"features": [14 numbers in vector order]}
//	response: {"label": "Y"}
type RemoteClassifier struct {
	url    string
	client *commonhttp.Client
}

type remoteRequest struct {
	Features []float64 `json:"features"`
}

type remoteResponse struct {
	Label interface{} `json:"label"`
}

func NewRemoteClassifier(url string, timeout time.Duration) *RemoteClassifier {
	return &RemoteClassifier{
		url:    url,
		client: commonhttp.NewClient(timeout),
	}
}

func (c *RemoteClassifier) Predict(ctx context.Context, v features.FeatureVector) (Label, error) {
	var out remoteResponse
	err := c.client.PostJSON(ctx, c.url, remoteRequest{Features: v.Slice()}, &out)

	var statusErr *commonhttp.StatusError
	switch {
	case errors.As(err, &statusErr):
		return nil, fmt.Errorf("model server returned %d: %s", statusErr.StatusCode, statusErr.Body)
	case errors.Is(err, commonhttp.ErrDecodeResponse):
		return nil, fmt.Errorf("decode model response: %w", err)
	case err != nil:
		return nil, fmt.Errorf("call model server: %w", err)
	}

	if out.Label == nil {
		return nil, ErrMissingLabel
	}
	return out.Label, nil
}

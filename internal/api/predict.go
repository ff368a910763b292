// internal/api/predict.go
package api

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"

	apperrors "loan-eligibility-workers/internal/common/errors"
	"loan-eligibility-workers/internal/eligibility/features"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const maxBodyBytes = 64 << 10

type PredictResponse struct {
	Result     string `json:"result"`
	Approved   bool   `json:"approved"`
	Status     string `json:"status"`
	Recognized bool   `json:"labelRecognized"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	ctx, span := s.obs.StartSpan(r.Context(), "api.predict")
	defer span.End()

	raw, err := decodeApplication(w, r)
	if err != nil {
		span.SetStatus(codes.Error, "invalid request body")
		s.logger.Warn("invalid predict request", map[string]interface{}{"error": err.Error()})
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error: "invalid request body",
			Code:  string(apperrors.ErrCodeInputValidationFailed),
		})
		return
	}

	result, err := s.evaluator.Evaluate(ctx, raw.WithDefaults(features.FormDefaults))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "classification failed")
		// The cause is logged by the evaluator and never returned to the caller.
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error: "classification failed",
			Code:  string(apperrors.ErrCodeClassificationFailed),
		})
		return
	}

	span.SetAttributes(
		attribute.String("eligibility.status", result.Decision.Status),
		attribute.Bool("eligibility.label_recognized", result.Recognized),
	)

	writeJSON(w, http.StatusOK, PredictResponse{
		Result:     result.Decision.ResultText(),
		Approved:   result.Decision.Approved,
		Status:     result.Decision.Status,
		Recognized: result.Recognized,
	})
}

// decodeApplication accepts a JSON object or a url-encoded form. An empty body is an empty application.
func decodeApplication(w http.ResponseWriter, r *http.Request) (features.RawApplication, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/x-www-form-urlencoded" {
		if err := r.ParseForm(); err != nil {
			return nil, err
		}
		raw := features.RawApplication{}
		for k, v := range r.PostForm {
			if len(v) > 0 {
				raw[k] = v[0]
			}
		}
		return raw, nil
	}

	dec := json.NewDecoder(r.Body)
	dec.UseNumber()

	var body interface{}
	if err := dec.Decode(&body); err != nil {
		if errors.Is(err, io.EOF) {
			return features.RawApplication{}, nil
		}
		return nil, err
	}
	switch v := body.(type) {
	case map[string]interface{}:
		return features.RawApplication(v), nil
	case nil:
		return features.RawApplication{}, nil
	default:
		return nil, errors.New("application must be a JSON object")
	}
}

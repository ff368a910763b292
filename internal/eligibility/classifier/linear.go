// internal/eligibility/classifier/linear.go
package classifier

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"loan-eligibility-workers/internal/eligibility/features"
)

const (
	DefaultThreshold     = 0.5
	DefaultPositiveLabel = "Y"
	DefaultNegativeLabel = "N"
)

// LinearModel is a logistic regression over the feature vector, exported from training
// as a weight per feature plus an intercept.
type LinearModel struct {
	Version       string    `json:"version" yaml:"version"`
	Weights       []float64 `json:"weights" yaml:"weights"`
	Intercept     float64   `json:"intercept" yaml:"intercept"`
	Threshold     float64   `json:"threshold" yaml:"threshold"`
	PositiveLabel string    `json:"positive_label" yaml:"positive_label"`
	NegativeLabel string    `json:"negative_label" yaml:"negative_label"`
}

// LoadLinearModel reads a model artifact. Files ending in .yaml or .yml are YAML, anything else JSON.
func LoadLinearModel(path string) (*LinearModel, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model: %w", err)
	}

	var m LinearModel
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &m)
	default:
		err = json.Unmarshal(data, &m)
	}
	if err != nil {
		return nil, fmt.Errorf("decode model %s: %w", path, err)
	}

	m.applyDefaults()
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

func (m *LinearModel) applyDefaults() {
	if m.Threshold == 0 {
		m.Threshold = DefaultThreshold
	}
	if m.PositiveLabel == "" {
		m.PositiveLabel = DefaultPositiveLabel
	}
	if m.NegativeLabel == "" {
		m.NegativeLabel = DefaultNegativeLabel
	}
}

// Validate checks the weights line up with the feature vector and are usable.
func (m *LinearModel) Validate() error {
	if len(m.Weights) != features.Size {
		return fmt.Errorf("%w: model has %d weights, vector has %d features", ErrShapeMismatch, len(m.Weights), features.Size)
	}
	for i, w := range m.Weights {
		if math.IsNaN(w) || math.IsInf(w, 0) {
			return fmt.Errorf("weight %d (%s) is not finite", i, features.Names[i])
		}
	}
	if math.IsNaN(m.Intercept) || math.IsInf(m.Intercept, 0) {
		return fmt.Errorf("intercept is not finite")
	}
	if m.Threshold <= 0 || m.Threshold >= 1 {
		return fmt.Errorf("threshold %v must be inside (0, 1)", m.Threshold)
	}
	return nil
}

// Probability returns the modelled probability of approval.
func (m *LinearModel) Probability(v features.FeatureVector) (float64, error) {
	if len(m.Weights) != len(v) {
		return 0, fmt.Errorf("%w: model has %d weights, vector has %d features", ErrShapeMismatch, len(m.Weights), len(v))
	}
	z := m.Intercept
	for i, x := range v {
		z += m.Weights[i] * x
	}
	return 1 / (1 + math.Exp(-z)), nil
}

func (m *LinearModel) Predict(ctx context.Context, v features.FeatureVector) (Label, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p, err := m.Probability(v)
	if err != nil {
		return nil, err
	}
	if p >= m.Threshold {
		return m.PositiveLabel, nil
	}
	return m.NegativeLabel, nil
}

// Fingerprint hashes everything that decides a label, so two artifacts sharing a
// version string but trained differently never share cache entries.
func (m *LinearModel) Fingerprint() string {
	h := sha256.New()
	for _, w := range m.Weights {
		h.Write(strconv.AppendFloat(nil, w, 'g', -1, 64))
		h.Write([]byte{','})
	}
	h.Write([]byte{'|'})
	h.Write(strconv.AppendFloat(nil, m.Intercept, 'g', -1, 64))
	h.Write([]byte{'|'})
	h.Write(strconv.AppendFloat(nil, m.Threshold, 'g', -1, 64))
	h.Write([]byte{'|'})
	h.Write([]byte(m.PositiveLabel))
	h.Write([]byte{0})
	h.Write([]byte(m.NegativeLabel))
	return hex.EncodeToString(h.Sum(nil))[:16]
}

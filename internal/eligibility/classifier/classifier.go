// internal/eligibility/classifier/classifier.go
package classifier

import (
	"context"
	"errors"
	"fmt"

	"loan-eligibility-workers/internal/eligibility/features"
)

// Label is the raw classifier output: a string, a byte slice or a number depending on the model.
type Label interface{}

// Classifier predicts a label for an encoded application. Implementations are loaded
// once and must be safe for concurrent Predict calls.
type Classifier interface {
	Predict(ctx context.Context, v features.FeatureVector) (Label, error)
}

// Func adapts a plain function to the Classifier interface.
type Func func(ctx context.Context, v features.FeatureVector) (Label, error)

func (f Func) Predict(ctx context.Context, v features.FeatureVector) (Label, error) {
	return f(ctx, v)
}

var (
	ErrShapeMismatch = errors.New("feature shape mismatch")
	ErrMissingLabel  = errors.New("model response has no label")
)

// ClassificationError reports that the classifier could not produce a label.
type ClassificationError struct {
	Cause error
}

func NewClassificationError(cause error) *ClassificationError {
	return &ClassificationError{Cause: cause}
}

func (e *ClassificationError) Error() string {
	if e.Cause == nil {
		return "classification failed"
	}
	return fmt.Sprintf("classification failed: %v", e.Cause)
}

func (e *ClassificationError) Unwrap() error {
	return e.Cause
}

// Wrap returns err as a *ClassificationError, leaving one that already is untouched.
func Wrap(err error) error {
	if err == nil {
		return nil
	}
	var ce *ClassificationError
	if errors.As(err, &ce) {
		return err
	}
	return NewClassificationError(err)
}

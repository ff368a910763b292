// internal/eligibility/decision/normalizer_test.go
package decision

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		label    interface{}
		approved bool
	}{
		{"Y", "Y", true},
		{"bytes APPROVED", []byte("APPROVED"), true},
		{"padded lower yes", " yes ", true},
		{"one string", "1", true},
		{"approve", "Approve", true},
		{"approved lower", "approved", true},
		{"one json number", 1.0, true},
		{"one int", 1, true},
		{"bytes y with newline", []byte("y\n"), true},
		{"N", "N", false},
		{"zero", "0", false},
		{"maybe", "maybe", false},
		{"empty", "", false},
		{"nil", nil, false},
		{"one point zero string", "1.0", false},
		{"true", true, false},
		{"zero json number", 0.0, false},
		{"partial", "YE", false},
		{"inner space", "YES PLEASE", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Normalize(tt.label)
			assert.Equal(t, tt.approved, d.Approved)
			if tt.approved {
				assert.Equal(t, StatusApproved, d.Status)
			} else {
				assert.Equal(t, StatusRejected, d.Status)
			}
		})
	}
}

func TestClassify_Recognized(t *testing.T) {
	tests := []struct {
		label      interface{}
		recognized bool
	}{
		{"Y", true},
		{"n", true},
		{" No ", true},
		{0, true},
		{[]byte("REJECTED"), true},
		{"maybe", false},
		{"", false},
		{nil, false},
	}

	for _, tt := range tests {
		_, recognized := Classify(tt.label)
		assert.Equal(t, tt.recognized, recognized, "label %#v", tt.label)
	}
}

func TestNormalize_MatchesClassify(t *testing.T) {
	for _, label := range []interface{}{"Y", "N", "maybe", []byte("1"), nil} {
		d, _ := Classify(label)
		assert.Equal(t, d, Normalize(label))
	}
}

func TestLabelText(t *testing.T) {
	assert.Equal(t, "", LabelText(nil))
	assert.Equal(t, "Y", LabelText("Y"))
	assert.Equal(t, "APPROVED", LabelText([]byte("APPROVED")))
	assert.Equal(t, "1", LabelText(1.0))
	assert.Equal(t, "0.5", LabelText(0.5))
	assert.Equal(t, "1", LabelText(float32(1)))
	assert.Equal(t, "7", LabelText(int64(7)))
	assert.Equal(t, "true", LabelText(true))
}

func BenchmarkNormalize(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_ = Normalize(" yes ")
	}
}

func TestDecision_ResultText(t *testing.T) {
	assert.Equal(t, "Eligible for loan", Normalize("Y").ResultText())
	assert.Equal(t, "Not eligible", Normalize("N").ResultText())
	assert.Equal(t, "Not eligible", Normalize("unknown").ResultText())
}

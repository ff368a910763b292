package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func predictSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":     "object",
		"required": []interface{}{"applicationId", "application"},
		"properties": map[string]interface{}{
			"applicationId": map[string]interface{}{"type": "string", "minLength": 1},
			"application":   map[string]interface{}{"type": "object"},
		},
	}
}

func TestValidateInput_Valid(t *testing.T) {
	input := map[string]interface{}{
		"applicationId": "app-001",
		"application":   map[string]interface{}{"gender": "Male"},
	}

	result, err := ValidateInput(input, predictSchema())

	require.NoError(t, err)
	assert.True(t, result.Valid)
	assert.Empty(t, result.Errors)
}

func TestValidateInput_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		input map[string]interface{}
		field string
	}{
		{
			name:  "missing application",
			input: map[string]interface{}{"applicationId": "app-001"},
			field: "(root)",
		},
		{
			name:  "empty application id",
			input: map[string]interface{}{"applicationId": "", "application": map[string]interface{}{}},
			field: "applicationId",
		},
		{
			name:  "application not an object",
			input: map[string]interface{}{"applicationId": "app-001", "application": "Male"},
			field: "application",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ValidateInput(tt.input, predictSchema())
			require.NoError(t, err)
			assert.False(t, result.Valid)
			require.NotEmpty(t, result.Errors)
			assert.Equal(t, tt.field, result.Errors[0].Field)
			assert.NotEmpty(t, result.Errors[0].Code)
			assert.Contains(t, result.Error(), tt.field)
		})
	}
}

func TestValidateInput_EmptySchema(t *testing.T) {
	result, err := ValidateInput(map[string]interface{}{"anything": 1}, nil)
	require.NoError(t, err)
	assert.True(t, result.Valid)
}

func TestCompileSchema(t *testing.T) {
	assert.NoError(t, CompileSchema(predictSchema()))
	assert.Error(t, CompileSchema(map[string]interface{}{"type": 42}))
}

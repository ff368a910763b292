// cmd/eligibility-cli/cli_test.go
package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"loan-eligibility-workers/internal/eligibility/classifier"
	"loan-eligibility-workers/internal/eligibility/features"
	"loan-eligibility-workers/pkg/registry"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

func runCLI(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func shippedModel() string {
	return filepath.Join("..", "..", "configs", "model.json")
}

// ==========================
// Encode / Predict
// ==========================

func TestEncode_Stdin(t *testing.T) {
	out, err := runCLI(t, `{"credit":"820","dependents":"2","area":"Urban"}`, "encode")
	require.NoError(t, err)

	var resp struct {
		Features      []float64          `json:"features"`
		NamedFeatures map[string]float64 `json:"namedFeatures"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Len(t, resp.Features, features.Size)
	assert.Equal(t, 1.0, resp.NamedFeatures["credit_flag"])
	assert.Equal(t, 1.0, resp.NamedFeatures["dep_eq2"])
	assert.Equal(t, 1.0, resp.NamedFeatures["area_is_urban"])
}

func TestEncode_FormDefaults(t *testing.T) {
	out, err := runCLI(t, `{}`, "encode", "--form-defaults")
	require.NoError(t, err)

	var resp struct {
		Features []float64 `json:"features"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	want := features.Encode(features.RawApplication{}.WithDefaults(features.FormDefaults))
	assert.Equal(t, want.Slice(), resp.Features)
}

func TestEncode_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"gender":"Male"}`), 0644))

	out, err := runCLI(t, "", "encode", "--input", path)
	require.NoError(t, err)
	assert.Contains(t, out, `"is_male": 1`)
}

func TestEncode_InvalidInput(t *testing.T) {
	_, err := runCLI(t, `{"credit":`, "encode")
	assert.Error(t, err)

	_, err = runCLI(t, "", "encode", "--input", filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestPredict_LinearModel(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		approved bool
		result   string
	}{
		{"good credit", `{"credit":"820","married":"Yes","area":"Semiurban","ApplicantIncome":"6000","LoanAmount":"150"}`, true, "Eligible for loan"},
		{"no credit history", `{"credit":"0","married":"Yes","area":"Semiurban","ApplicantIncome":"6000","LoanAmount":"150"}`, false, "Not eligible"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := runCLI(t, tt.input, "predict", "--model", shippedModel())
			require.NoError(t, err)

			var resp map[string]interface{}
			require.NoError(t, json.Unmarshal([]byte(out), &resp))
			assert.Equal(t, tt.approved, resp["approved"])
			assert.Equal(t, tt.result, resp["result"])
			assert.Equal(t, true, resp["labelRecognized"])
		})
	}
}

func TestPredict_RequiresModel(t *testing.T) {
	_, err := runCLI(t, `{}`, "predict")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--model")
}

// ==========================
// Registry
// ==========================

func TestRegistry_AddUpdateValidate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "registry.json")

	out, err := runCLI(t, "", "registry", "add", "--path", path,
		"--id", "score-credit-bureau",
		"--display-name", "Score Credit Bureau",
		"--category", "eligibility",
		"--task-type", "score-credit-bureau",
	)
	require.NoError(t, err)
	assert.Contains(t, out, "Added activity: score-credit-bureau")

	_, err = runCLI(t, "", "registry", "update", "--path", path,
		"--id", "score-credit-bureau", "--field", "status", "--value", "completed")
	require.NoError(t, err)

	out, err = runCLI(t, "", "registry", "validate", "--path", path)
	require.NoError(t, err)
	assert.Contains(t, out, "1 activities")

	reg, err := registry.LoadRegistry(path)
	require.NoError(t, err)
	a, ok := reg.FindByID("score-credit-bureau")
	require.True(t, ok)
	assert.Equal(t, "completed", a.ImplementationStatus)
	assert.Equal(t, "10s", a.Timeout)
}

func TestRegistry_AddDuplicate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "registry.json")
	args := []string{"registry", "add", "--path", path,
		"--id", "x", "--display-name", "X", "--category", "c", "--task-type", "x"}

	_, err := runCLI(t, "", args...)
	require.NoError(t, err)

	_, err = runCLI(t, "", args...)
	assert.ErrorIs(t, err, registry.ErrActivityExists)
}

func TestRegistry_UpdateUnknown(t *testing.T) {
	path := filepath.Join(t.TempDir(), "registry.json")
	require.NoError(t, registry.New("1.0.0").Save(path))

	_, err := runCLI(t, "", "registry", "update", "--path", path,
		"--id", "nope", "--field", "status", "--value", "completed")
	assert.ErrorIs(t, err, registry.ErrActivityNotFound)
}

func TestRegistry_ValidateShipped(t *testing.T) {
	out, err := runCLI(t, "", "registry", "validate",
		"--path", filepath.Join("..", "..", "configs", "activity-registry.json"))
	require.NoError(t, err)
	assert.Contains(t, out, "Registry validation passed")
}

func TestRegistry_ValidateEmptyFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "registry.json")
	require.NoError(t, registry.New("1.0.0").Save(path))

	_, err := runCLI(t, "", "registry", "validate", "--path", path)
	assert.Error(t, err)
}

// ==========================
// Cache / Submit
// ==========================

func TestCacheFlush(t *testing.T) {
	mr := miniredis.RunT(t)
	require.NoError(t, mr.Set(classifier.CacheKeyPrefix+"v1:aaa", "Y"))
	require.NoError(t, mr.Set(classifier.CacheKeyPrefix+"v1:bbb", "N"))
	require.NoError(t, mr.Set("session:1", "keep"))

	out, err := runCLI(t, "", "cache", "flush", "--redis-addr", mr.Addr())
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted 2 cached predictions")
	assert.True(t, mr.Exists("session:1"))
	assert.False(t, mr.Exists(classifier.CacheKeyPrefix+"v1:aaa"))
}

func TestSubmitVariables(t *testing.T) {
	app := map[string]interface{}{"credit": "820"}

	vars := submitVariables("app-9", app)
	assert.Equal(t, "app-9", vars["applicationId"])
	assert.Equal(t, app, vars["application"])

	generated := submitVariables("", app)
	_, err := uuid.Parse(generated["applicationId"].(string))
	assert.NoError(t, err)
}

func TestRegistryStructs_Shipped(t *testing.T) {
	out, err := runCLI(t, "", "registry", "structs",
		"--path", filepath.Join("..", "..", "configs", "activity-registry.json"),
		"--id", "record-eligibility-decision")
	require.NoError(t, err)

	assert.Contains(t, out, "package recordeligibilitydecision")
	assert.Contains(t, out, "type Input struct {")
	assert.Contains(t, out, "\tApplicationID string `json:\"applicationId\"`")
	assert.Contains(t, out, "\tFeatures []float64 `json:\"features\"`")
	assert.Contains(t, out, "\tApplication map[string]interface{} `json:\"application\"`")
	assert.Contains(t, out, "\tDecisionID string `json:\"decisionId\"`")
}

func TestRegistryStructs_UnknownID(t *testing.T) {
	_, err := runCLI(t, "", "registry", "structs",
		"--path", filepath.Join("..", "..", "configs", "activity-registry.json"),
		"--id", "nope")
	assert.ErrorIs(t, err, registry.ErrActivityNotFound)
}

func TestGoType(t *testing.T) {
	tests := []struct {
		details map[string]interface{}
		want    string
	}{
		{map[string]interface{}{"type": "string"}, "string"},
		{map[string]interface{}{"type": "integer"}, "int"},
		{map[string]interface{}{"type": "number"}, "float64"},
		{map[string]interface{}{"type": "boolean"}, "bool"},
		{map[string]interface{}{"type": "array"}, "[]interface{}"},
		{map[string]interface{}{"type": "object", "additionalProperties": map[string]interface{}{"type": "number"}}, "map[string]float64"},
		{map[string]interface{}{}, "interface{}"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, goType(tt.details))
	}
}

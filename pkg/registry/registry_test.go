// pkg/registry/registry_test.go
package registry

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestActivity(id string) Activity {
	return Activity{
		ID:          id,
		DisplayName: "Predict Loan Eligibility",
		Category:    "eligibility",
		TaskType:    id,
		Timeout:     "10s",
		InputSchema: map[string]interface{}{
			"type":     "object",
			"required": []interface{}{"applicationId"},
		},
		ErrorCodes: []string{"CLASSIFICATION_FAILED"},
	}
}

func TestLoadRegistry_ShippedFile(t *testing.T) {
	reg, err := LoadRegistry(filepath.Join("..", "..", "configs", "activity-registry.json"))
	require.NoError(t, err)
	require.NoError(t, reg.Validate())

	for _, taskType := range []string{
		"predict-loan-eligibility",
		"record-eligibility-decision",
		"index-eligibility-decision",
		"notify-eligibility-decision",
	} {
		a, ok := reg.FindByTaskType(taskType)
		require.True(t, ok, taskType)
		assert.NotEmpty(t, a.InputSchema, taskType)
	}

	predict, _ := reg.FindByTaskType("predict-loan-eligibility")
	assert.True(t, predict.HasErrorCode("CLASSIFICATION_FAILED"))
	assert.Equal(t, 10*time.Second, predict.TimeoutDuration(time.Minute))
}

func TestLoadRegistry_Errors(t *testing.T) {
	_, err := LoadRegistry(filepath.Join(t.TempDir(), "missing.json"))
	assert.True(t, os.IsNotExist(err))

	path := filepath.Join(t.TempDir(), "broken.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"activities": [`), 0o600))
	_, err = LoadRegistry(path)
	assert.Error(t, err)
}

func TestRegistry_SaveAndReload(t *testing.T) {
	reg := New("1.0.0")
	require.NoError(t, reg.Add(createTestActivity("predict-loan-eligibility")))

	path := filepath.Join(t.TempDir(), "nested", "registry.json")
	require.NoError(t, reg.Save(path))

	loaded, err := LoadRegistry(path)
	require.NoError(t, err)
	assert.Equal(t, "1.0.0", loaded.Version)
	require.Len(t, loaded.Activities, 1)
	assert.Equal(t, "predict-loan-eligibility", loaded.Activities[0].TaskType)
}

func TestRegistry_AddDuplicate(t *testing.T) {
	reg := New("1.0.0")
	require.NoError(t, reg.Add(createTestActivity("a")))

	err := reg.Add(createTestActivity("a"))
	assert.True(t, errors.Is(err, ErrActivityExists))
}

func TestRegistry_Update(t *testing.T) {
	tests := []struct {
		field   string
		value   string
		check   func(t *testing.T, a *Activity)
		wantErr bool
	}{
		{"status", "verified", func(t *testing.T, a *Activity) { assert.Equal(t, "verified", a.ImplementationStatus) }, false},
		{"version", "1.1.0", func(t *testing.T, a *Activity) { assert.Equal(t, "1.1.0", a.Version) }, false},
		{"retries", "4", func(t *testing.T, a *Activity) { assert.Equal(t, 4, a.Retries) }, false},
		{"timeout", "15s", func(t *testing.T, a *Activity) { assert.Equal(t, "15s", a.Timeout) }, false},
		{"retries", "many", nil, true},
		{"timeout", "soon", nil, true},
		{"color", "blue", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.field+"="+tt.value, func(t *testing.T) {
			reg := New("1.0.0")
			require.NoError(t, reg.Add(createTestActivity("a")))

			err := reg.Update("a", tt.field, tt.value)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			a, _ := reg.FindByID("a")
			tt.check(t, a)
		})
	}
}

func TestRegistry_UpdateUnknownActivity(t *testing.T) {
	err := New("1.0.0").Update("missing", "status", "done")
	assert.True(t, errors.Is(err, ErrActivityNotFound))
}

func TestRegistry_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(r *ActivityRegistry)
		wantErr string
	}{
		{"valid", func(r *ActivityRegistry) {}, ""},
		{"empty", func(r *ActivityRegistry) { r.Activities = nil }, "no activities"},
		{"missing id", func(r *ActivityRegistry) { r.Activities[0].ID = "" }, "ID"},
		{"duplicate id", func(r *ActivityRegistry) {
			dup := createTestActivity("a")
			dup.TaskType = "other"
			r.Activities = append(r.Activities, dup)
		}, "duplicate activity ID"},
		{"duplicate task type", func(r *ActivityRegistry) {
			dup := createTestActivity("b")
			dup.TaskType = "a"
			r.Activities = append(r.Activities, dup)
		}, "duplicate task type"},
		{"missing display name", func(r *ActivityRegistry) { r.Activities[0].DisplayName = "" }, "DisplayName"},
		{"missing category", func(r *ActivityRegistry) { r.Activities[0].Category = "" }, "Category"},
		{"bad timeout", func(r *ActivityRegistry) { r.Activities[0].Timeout = "ten" }, "invalid timeout"},
		{"bad schema", func(r *ActivityRegistry) {
			r.Activities[0].InputSchema = map[string]interface{}{"type": 42}
		}, "invalid input schema"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := New("1.0.0")
			require.NoError(t, reg.Add(createTestActivity("a")))
			tt.mutate(reg)

			err := reg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestRegistry_InputSchema(t *testing.T) {
	reg := New("1.0.0")
	require.NoError(t, reg.Add(createTestActivity("a")))

	assert.NotNil(t, reg.InputSchema("a"))
	assert.Nil(t, reg.InputSchema("b"))
}

func TestActivity_TimeoutDuration(t *testing.T) {
	assert.Equal(t, time.Minute, Activity{}.TimeoutDuration(time.Minute))
	assert.Equal(t, time.Minute, Activity{Timeout: "bogus"}.TimeoutDuration(time.Minute))
	assert.Equal(t, time.Minute, Activity{Timeout: "-5s"}.TimeoutDuration(time.Minute))
	assert.Equal(t, 3*time.Second, Activity{Timeout: "3s"}.TimeoutDuration(time.Minute))
}

package tool

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	type withError struct {
		Error string `json:"error,omitempty"`
		Value int    `json:"value"`
	}

	tests := []struct {
		name    string
		raw     any
		failed  bool
		message string
	}{
		{"nil", nil, false, ""},
		{"plain string", `{"error":"ignored"}`, false, ""},
		{"number", 42, false, ""},
		{"object", map[string]any{"result": 4}, false, ""},
		{"truthy error string", map[string]any{"error": "x"}, true, "x"},
		{"empty error string", map[string]any{"error": ""}, false, ""},
		{"null error", map[string]any{"error": nil}, false, ""},
		{"false error", map[string]any{"error": false}, false, ""},
		{"zero error", map[string]any{"error": 0.0}, false, ""},
		{"int zero error", map[string]any{"error": 0, "result": 4}, false, ""},
		{"int64 zero error", map[string]any{"error": int64(0)}, false, ""},
		{"uint zero error", map[string]any{"error": uint8(0)}, false, ""},
		{"json number zero error", map[string]any{"error": json.Number("0")}, false, ""},
		{"int error code", map[string]any{"error": 2}, true, "2"},
		{"error object with message", map[string]any{"error": map[string]any{"message": "bad"}}, true, "bad"},
		{"error object without message", map[string]any{"error": map[string]any{"code": 7.0}}, true, `{"code":7}`},
		{"success false", map[string]any{"success": false}, true, "tool reported failure"},
		{"success false with message", map[string]any{"success": false, "message": "nope"}, true, "nope"},
		{"success true", map[string]any{"success": true}, false, ""},
		{"struct with error", withError{Error: "y"}, true, "y"},
		{"struct without error", withError{Value: 1}, false, ""},
		{"raw json", json.RawMessage(`{"error":"z"}`), true, "z"},
		{"raw json array", json.RawMessage(`[1,2]`), false, ""},
		{"bytes", []byte(`{"success":false}`), true, "tool reported failure"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := Classify(tt.raw)
			assert.Equal(t, tt.failed, out.Failed())
			assert.Equal(t, tt.message, out.Message())
			assert.Equal(t, tt.raw, out.Data)
		})
	}
}

func TestFailureNilError(t *testing.T) {
	out := Failure(nil)
	assert.True(t, out.Failed())
	assert.Equal(t, "tool failed", out.Message())
}

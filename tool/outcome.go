package tool

import (
	"encoding/json"
	"errors"
	"math"
	"reflect"
)

// Outcome is the normalized result of executing a tool: either a Success
// carrying the tool's output, or a Failure carrying an error.
type Outcome struct {
	// Data is the raw tool output. It is set for successes and for failures
	// reported through the output itself.
	Data any
	// Err is non-nil exactly when the outcome is a Failure.
	Err error
}

// Success returns a successful outcome.
func Success(data any) Outcome {
	return Outcome{Data: data}
}

// Failure returns a failed outcome. A nil err is replaced by a generic one.
func Failure(err error) Outcome {
	if err == nil {
		err = errors.New("tool failed")
	}
	return Outcome{Err: err}
}

// Failed reports whether the outcome is a Failure.
func (o Outcome) Failed() bool {
	return o.Err != nil
}

// Message returns the failure message, or "" for a Success.
func (o Outcome) Message() string {
	if o.Err == nil {
		return ""
	}
	return o.Err.Error()
}

// Classify turns a raw tool return value into an Outcome. An object with a
// truthy "error" field, or with "success" set to false, is a Failure;
// everything else is a Success. Go values are inspected through their JSON
// form, and JSON byte payloads are decoded first. Plain strings are always
// a Success.
func Classify(raw any) Outcome {
	obj, ok := asObject(raw)
	if !ok {
		return Success(raw)
	}

	if errVal, present := obj["error"]; present && truthy(errVal) {
		return Outcome{Data: raw, Err: &ReportedError{Message: messageOf(errVal)}}
	}

	if s, present := obj["success"]; present {
		if b, isBool := s.(bool); isBool && !b {
			msg := "tool reported failure"
			if m, ok := obj["message"].(string); ok && m != "" {
				msg = m
			}
			return Outcome{Data: raw, Err: &ReportedError{Message: msg}}
		}
	}

	return Success(raw)
}

func asObject(raw any) (map[string]any, bool) {
	switch v := raw.(type) {
	case nil, string:
		return nil, false
	case map[string]any:
		return v, true
	case json.RawMessage:
		return decodeObject(v)
	case []byte:
		return decodeObject(v)
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return nil, false
		}
		return decodeObject(data)
	}
}

func decodeObject(data []byte) (map[string]any, bool) {
	var obj map[string]any
	if err := json.Unmarshal(data, &obj); err != nil || obj == nil {
		return nil, false
	}
	return obj, true
}

// truthy follows JSON-ish truthiness: null, false, 0, NaN and "" are false.
func truthy(v any) bool {
	switch v := v.(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		return v != ""
	case float64:
		return v != 0 && !math.IsNaN(v)
	case float32:
		return v != 0 && !math.IsNaN(float64(v))
	case json.Number:
		f, err := v.Float64()
		return err != nil || (f != 0 && !math.IsNaN(f))
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return !rv.IsZero()
	}
	return true
}

func messageOf(v any) string {
	switch v := v.(type) {
	case string:
		return v
	case map[string]any:
		if m, ok := v["message"].(string); ok && m != "" {
			return m
		}
	}
	data, err := json.Marshal(v)
	if err != nil {
		return "tool reported an error"
	}
	return string(data)
}

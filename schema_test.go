package baton

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeSchema(t *testing.T, raw json.RawMessage) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

func TestSchemaFrom_SimpleTypes(t *testing.T) {
	type Args struct {
		Name    string  `json:"name"`
		Age     int     `json:"age"`
		Score   float64 `json:"score"`
		Active  bool    `json:"active"`
		SmallID uint8   `json:"small_id"`
	}

	result := decodeSchema(t, SchemaFrom[Args]().Build())
	assert.Equal(t, "object", result["type"])
	props := result["properties"].(map[string]any)

	assert.Equal(t, "string", props["name"].(map[string]any)["type"])
	assert.Equal(t, "integer", props["age"].(map[string]any)["type"])
	assert.Equal(t, "number", props["score"].(map[string]any)["type"])
	assert.Equal(t, "boolean", props["active"].(map[string]any)["type"])
	assert.Equal(t, "integer", props["small_id"].(map[string]any)["type"])
}

func TestSchemaFrom_Tags(t *testing.T) {
	type Args struct {
		Op   string  `json:"op" desc:"Operation to apply" enum:"add,sub" required:"true"`
		A    float64 `json:"a" required:"true"`
		Note string  `json:"note,omitempty"`
		Skip string  `json:"-"`
		priv string
	}

	result := decodeSchema(t, SchemaFrom[Args]().Build())
	props := result["properties"].(map[string]any)

	op := props["op"].(map[string]any)
	assert.Equal(t, "Operation to apply", op["description"])
	assert.Equal(t, []any{"add", "sub"}, op["enum"])
	assert.ElementsMatch(t, []any{"op", "a"}, result["required"])
	assert.Contains(t, props, "note")
	assert.NotContains(t, props, "Skip")
	assert.NotContains(t, props, "priv")
}

func TestSchemaFrom_Builder(t *testing.T) {
	type Args struct {
		Location string `json:"location"`
		Unit     string `json:"unit"`
	}

	result := decodeSchema(t, SchemaFrom[Args]().
		Desc("location", "City name").
		Enum("unit", "c", "f").
		Required("location", "location", "missing").
		Build())

	props := result["properties"].(map[string]any)
	assert.Equal(t, "City name", props["location"].(map[string]any)["description"])
	assert.Equal(t, []any{"c", "f"}, props["unit"].(map[string]any)["enum"])
	assert.Equal(t, []any{"location"}, result["required"])
}

func TestSchemaFrom_NestedAndArrays(t *testing.T) {
	type Item struct {
		ID int `json:"id" required:"true"`
	}
	type Args struct {
		Tags  []string       `json:"tags"`
		Items []Item         `json:"items"`
		Meta  map[string]any `json:"meta"`
		Ptr   *Item          `json:"ptr"`
	}

	props := decodeSchema(t, SchemaFrom[*Args]().Build())["properties"].(map[string]any)

	tags := props["tags"].(map[string]any)
	assert.Equal(t, "array", tags["type"])
	assert.Equal(t, "string", tags["items"].(map[string]any)["type"])

	items := props["items"].(map[string]any)["items"].(map[string]any)
	assert.Equal(t, "object", items["type"])
	assert.Equal(t, []any{"id"}, items["required"])

	assert.Equal(t, "object", props["meta"].(map[string]any)["type"])
	assert.Equal(t, "object", props["ptr"].(map[string]any)["type"])
}

func TestSchemaFrom_NonStruct(t *testing.T) {
	result := decodeSchema(t, SchemaFrom[string]().Build())
	assert.Equal(t, "object", result["type"])
	assert.Empty(t, result["properties"])
}

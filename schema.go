package baton

import (
	"encoding/json"
	"reflect"
	"slices"
	"strings"
)

// SchemaBuilder constructs a JSON Schema object from a Go struct type.
//
// Property names come from json tags. A `desc:"..."` tag becomes the
// property description and an `enum:"a,b"` tag restricts string values.
// Fields tagged `required:"true"` are listed as required; further fields can
// be added with Required.
type SchemaBuilder struct {
	props    map[string]map[string]any
	order    []string
	required []string
}

// SchemaFrom creates a SchemaBuilder by reflecting on T. Non-struct types
// produce an object schema with no properties.
func SchemaFrom[T any]() *SchemaBuilder {
	t := reflect.TypeFor[T]()
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	sb := &SchemaBuilder{props: make(map[string]map[string]any)}
	if t.Kind() == reflect.Struct {
		sb.addFields(t)
	}
	return sb
}

func (s *SchemaBuilder) addFields(t reflect.Type) {
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		name, skip := jsonName(field)
		if skip {
			continue
		}

		prop := propertyFor(field.Type)
		if desc := field.Tag.Get("desc"); desc != "" {
			prop["description"] = desc
		}
		if enum := field.Tag.Get("enum"); enum != "" {
			prop["enum"] = strings.Split(enum, ",")
		}
		s.props[name] = prop
		s.order = append(s.order, name)

		if field.Tag.Get("required") == "true" {
			s.required = append(s.required, name)
		}
	}
}

func jsonName(field reflect.StructField) (string, bool) {
	tag := field.Tag.Get("json")
	if tag == "-" {
		return "", true
	}
	name, _, _ := strings.Cut(tag, ",")
	if name == "" {
		name = field.Name
	}
	return name, false
}

func propertyFor(t reflect.Type) map[string]any {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	switch t.Kind() {
	case reflect.String:
		return map[string]any{"type": "string"}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return map[string]any{"type": "integer"}
	case reflect.Float32, reflect.Float64:
		return map[string]any{"type": "number"}
	case reflect.Bool:
		return map[string]any{"type": "boolean"}
	case reflect.Slice, reflect.Array:
		return map[string]any{"type": "array", "items": propertyFor(t.Elem())}
	case reflect.Struct:
		nested := &SchemaBuilder{props: make(map[string]map[string]any)}
		nested.addFields(t)
		return nested.toMap()
	case reflect.Map, reflect.Interface:
		return map[string]any{"type": "object"}
	default:
		return map[string]any{"type": "string"}
	}
}

// Desc sets the description for a field.
func (s *SchemaBuilder) Desc(field, description string) *SchemaBuilder {
	if prop, ok := s.props[field]; ok {
		prop["description"] = description
	}
	return s
}

// Required marks the specified fields as required. Unknown fields are ignored.
func (s *SchemaBuilder) Required(fields ...string) *SchemaBuilder {
	for _, field := range fields {
		if _, ok := s.props[field]; ok && !slices.Contains(s.required, field) {
			s.required = append(s.required, field)
		}
	}
	return s
}

// Enum sets the allowed values for a string field.
func (s *SchemaBuilder) Enum(field string, values ...string) *SchemaBuilder {
	if prop, ok := s.props[field]; ok {
		prop["enum"] = values
	}
	return s
}

// Build generates the JSON Schema.
func (s *SchemaBuilder) Build() json.RawMessage {
	data, err := json.Marshal(s.toMap())
	if err != nil {
		return json.RawMessage(`{"type":"object","properties":{}}`)
	}
	return data
}

func (s *SchemaBuilder) toMap() map[string]any {
	props := make(map[string]any, len(s.order))
	for _, name := range s.order {
		props[name] = s.props[name]
	}
	out := map[string]any{
		"type":       "object",
		"properties": props,
	}
	if len(s.required) > 0 {
		out["required"] = slices.Clone(s.required)
	}
	return out
}

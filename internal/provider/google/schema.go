package google

import (
	"encoding/json"
	"strings"

	"google.golang.org/genai"
)

// jsonSchema is the subset of JSON Schema that genai can express.
type jsonSchema struct {
	Ref         string                 `json:"$ref"`
	Defs        map[string]*jsonSchema `json:"$defs"`
	Definitions map[string]*jsonSchema `json:"definitions"`

	Type        schemaType             `json:"type"`
	Title       string                 `json:"title"`
	Description string                 `json:"description"`
	Format      string                 `json:"format"`
	Enum        []any                  `json:"enum"`
	Properties  map[string]*jsonSchema `json:"properties"`
	Required    []string               `json:"required"`
	Items       *jsonSchema            `json:"items"`
	AnyOf       []*jsonSchema          `json:"anyOf"`
	OneOf       []*jsonSchema          `json:"oneOf"`
	Nullable    *bool                  `json:"nullable"`
	Default     any                    `json:"default"`

	Minimum   *float64 `json:"minimum"`
	Maximum   *float64 `json:"maximum"`
	MinLength *int64   `json:"minLength"`
	MaxLength *int64   `json:"maxLength"`
	MinItems  *int64   `json:"minItems"`
	MaxItems  *int64   `json:"maxItems"`
	Pattern   string   `json:"pattern"`
}

// schemaType accepts both "string" and ["string", "null"].
type schemaType []string

func (t *schemaType) UnmarshalJSON(data []byte) error {
	var one string
	if err := json.Unmarshal(data, &one); err == nil {
		*t = schemaType{one}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return err
	}
	*t = many
	return nil
}

var genaiTypes = map[string]genai.Type{
	"string":  genai.TypeString,
	"number":  genai.TypeNumber,
	"integer": genai.TypeInteger,
	"boolean": genai.TypeBoolean,
	"array":   genai.TypeArray,
	"object":  genai.TypeObject,
}

// maxRefDepth bounds $ref expansion for recursive schemas.
const maxRefDepth = 8

// convertJSONSchema converts a JSON Schema document to a genai Schema.
// Local $ref pointers into $defs or definitions are inlined.
func convertJSONSchema(schemaJSON json.RawMessage) *genai.Schema {
	if len(schemaJSON) == 0 {
		return nil
	}
	var root jsonSchema
	if err := json.Unmarshal(schemaJSON, &root); err != nil {
		return nil
	}
	defs := root.Defs
	if defs == nil {
		defs = root.Definitions
	}
	return schemaConverter{defs: defs}.convert(&root, 0)
}

type schemaConverter struct {
	defs map[string]*jsonSchema
}

func (c schemaConverter) convert(s *jsonSchema, depth int) *genai.Schema {
	if s == nil {
		return nil
	}
	if s.Ref != "" {
		target := c.resolve(s.Ref)
		if target == nil || depth >= maxRefDepth {
			return &genai.Schema{Type: genai.TypeObject, Description: s.Description}
		}
		out := c.convert(target, depth+1)
		if s.Description != "" {
			out.Description = s.Description
		}
		return out
	}

	out := &genai.Schema{
		Title:       s.Title,
		Description: s.Description,
		Format:      s.Format,
		Default:     s.Default,
		Nullable:    s.Nullable,
		Minimum:     s.Minimum,
		Maximum:     s.Maximum,
		MinLength:   s.MinLength,
		MaxLength:   s.MaxLength,
		MinItems:    s.MinItems,
		MaxItems:    s.MaxItems,
		Pattern:     s.Pattern,
		Required:    s.Required,
	}

	for _, name := range s.Type {
		if name == "null" {
			out.Nullable = genai.Ptr(true)
			continue
		}
		if t, ok := genaiTypes[name]; ok && out.Type == "" {
			out.Type = t
		}
	}

	for _, e := range s.Enum {
		if v, ok := e.(string); ok {
			out.Enum = append(out.Enum, v)
		}
	}
	if len(out.Enum) > 0 && out.Type == "" {
		out.Type = genai.TypeString
	}

	if len(s.Properties) > 0 {
		out.Properties = make(map[string]*genai.Schema, len(s.Properties))
		for name, prop := range s.Properties {
			out.Properties[name] = c.convert(prop, depth)
		}
		if out.Type == "" {
			out.Type = genai.TypeObject
		}
	}
	if s.Items != nil {
		out.Items = c.convert(s.Items, depth)
	}

	variants := append(append([]*jsonSchema(nil), s.AnyOf...), s.OneOf...)
	for _, v := range variants {
		if len(v.Type) == 1 && v.Type[0] == "null" {
			out.Nullable = genai.Ptr(true)
			continue
		}
		out.AnyOf = append(out.AnyOf, c.convert(v, depth))
	}
	// A single non-null variant is the nullable form of that variant.
	if len(out.AnyOf) == 1 && out.Type == "" {
		only := out.AnyOf[0]
		if out.Nullable != nil {
			only.Nullable = out.Nullable
		}
		if out.Description != "" {
			only.Description = out.Description
		}
		return only
	}

	return out
}

func (c schemaConverter) resolve(ref string) *jsonSchema {
	for _, prefix := range []string{"#/$defs/", "#/definitions/"} {
		if name, ok := strings.CutPrefix(ref, prefix); ok {
			return c.defs[name]
		}
	}
	return nil
}

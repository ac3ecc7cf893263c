package agent

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

type agentsFile struct {
	Agents []Definition `yaml:"agents"`
}

// Parse reads agent definitions from YAML of the form:
//
//	agents:
//	  - name: triage
//	    system_prompt: "You route support requests."
//	    tools: [lookup_order]
//	    handoffs:
//	      - target: billing
//	        trigger: explicit_tool_call
//	        include_tool_results: [lookup_order]
//
// Unknown keys are rejected. An omitted tools or include_tool_results key
// stays nil, while an explicit empty list is kept as an empty list.
func Parse(r io.Reader) ([]Definition, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f agentsFile
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("parse agents: %w", err)
	}
	return f.Agents, nil
}

// Load parses definitions and registers them in a new registry.
func Load(data []byte) (*Registry, error) {
	defs, err := Parse(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	reg := NewRegistry()
	for _, d := range defs {
		if err := reg.Register(d); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

// LoadFile is Load on the contents of path.
func LoadFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read agents file: %w", err)
	}
	return Load(data)
}

package agent

import (
	"errors"
	"fmt"
	"slices"
	"sync"
	"text/template"

	"github.com/spetersoncode/baton/tool"
)

type registeredAgent struct {
	def    Definition
	prompt *template.Template
}

// Registry holds agent definitions. Definitions are copied on the way in
// and on the way out, so a registered definition never changes.
// It is safe for concurrent use.
type Registry struct {
	mu     sync.RWMutex
	agents map[string]registeredAgent
	order  []string
}

// NewRegistry creates an empty agent registry.
func NewRegistry() *Registry {
	return &Registry{agents: make(map[string]registeredAgent)}
}

// Register validates d on its own and adds it. Cross references (tools and
// handoff targets) are checked by Validate once everything is registered.
func (r *Registry) Register(d Definition) error {
	if err := checkDefinition(d); err != nil {
		return err
	}
	prompt, err := parsePrompt(d.Name, d.SystemPrompt)
	if err != nil {
		return &ConfigurationError{Agent: d.Name, Field: "system_prompt", Reason: err.Error()}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.agents[d.Name]; exists {
		return &ConfigurationError{Agent: d.Name, Field: "name", Reason: "already registered"}
	}
	r.agents[d.Name] = registeredAgent{def: d.Clone(), prompt: prompt}
	r.order = append(r.order, d.Name)
	return nil
}

// MustRegister is like Register but panics on error. It returns r for
// chaining.
func (r *Registry) MustRegister(defs ...Definition) *Registry {
	for _, d := range defs {
		if err := r.Register(d); err != nil {
			panic(err)
		}
	}
	return r
}

// Get returns a copy of the named definition.
func (r *Registry) Get(name string) (Definition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ra, ok := r.agents[name]
	if !ok {
		return Definition{}, false
	}
	return ra.def.Clone(), true
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.agents[name]
	return ok
}

// Names returns agent names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.order)
}

// Len returns the number of registered agents.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.agents)
}

func (r *Registry) template(name string) *template.Template {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.agents[name].prompt
}

// Validate checks every definition's cross references: handoff targets
// must be registered and tools must exist in tools. All problems are
// joined into one error.
func (r *Registry) Validate(tools *tool.Registry) error {
	var errs []error
	for _, name := range r.Names() {
		if err := r.validateAgent(name, tools); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// ValidateReachable checks name and every agent reachable from it through
// handoff rules.
func (r *Registry) ValidateReachable(name string, tools *tool.Registry) error {
	seen := map[string]bool{}
	queue := []string{name}
	var errs []error
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		if seen[n] {
			continue
		}
		seen[n] = true

		d, ok := r.Get(n)
		if !ok {
			errs = append(errs, &ConfigurationError{Agent: n, Reason: "not registered"})
			continue
		}
		if err := r.validateAgent(n, tools); err != nil {
			errs = append(errs, err)
		}
		for _, rule := range d.HandoffRules {
			queue = append(queue, rule.Target)
		}
	}
	return errors.Join(errs...)
}

func (r *Registry) validateAgent(name string, tools *tool.Registry) error {
	d, ok := r.Get(name)
	if !ok {
		return &ConfigurationError{Agent: name, Reason: "not registered"}
	}
	var errs []error
	for _, rule := range d.HandoffRules {
		if !r.Has(rule.Target) {
			errs = append(errs, &ConfigurationError{
				Agent:  name,
				Field:  "handoffs",
				Reason: fmt.Sprintf("target %q is not registered", rule.Target),
			})
		}
	}
	if tools != nil {
		if missing := tools.Missing(d.ToolNames...); len(missing) > 0 {
			errs = append(errs, &ConfigurationError{
				Agent:  name,
				Field:  "tools",
				Reason: fmt.Sprintf("unknown tools %v", missing),
			})
		}
	}
	return errors.Join(errs...)
}

func checkDefinition(d Definition) error {
	switch {
	case d.Name == "":
		return &ConfigurationError{Field: "name", Reason: "required"}
	case d.SystemPrompt == "":
		return &ConfigurationError{Agent: d.Name, Field: "system_prompt", Reason: "required"}
	case d.MaxIterations < 0:
		return &ConfigurationError{Agent: d.Name, Field: "max_iterations", Reason: "must not be negative"}
	}
	for _, rule := range d.HandoffRules {
		if rule.Target == "" {
			return &ConfigurationError{Agent: d.Name, Field: "handoffs", Reason: "target required"}
		}
		switch rule.Trigger {
		case TriggerToolCall, TriggerMaxIterations:
		default:
			return &ConfigurationError{
				Agent:  d.Name,
				Field:  "handoffs",
				Reason: fmt.Sprintf("unknown trigger %q", rule.Trigger),
			}
		}
	}
	return nil
}

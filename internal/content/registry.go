package content

import (
	"fmt"
	"sync"
)

// Spec bundles everything needed to generate one content type.
type Spec struct {
	Type        Type
	Prompt      PromptBuilder
	Constraints Constraints
}

// Registry holds the registered content type specs with thread-safe access.
type Registry struct {
	mu    sync.RWMutex
	specs map[Type]*Spec
}

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	return &Registry{
		specs: make(map[Type]*Spec),
	}
}

// Register adds a content spec to the registry. A spec with the same type
// overwrites the previous one.
func (r *Registry) Register(spec *Spec) error {
	if spec == nil {
		return fmt.Errorf("cannot register nil content spec")
	}
	if spec.Type == "" {
		return fmt.Errorf("content type cannot be empty")
	}
	if spec.Prompt == nil {
		return fmt.Errorf("content spec prompt builder cannot be nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.specs[spec.Type] = spec
	return nil
}

// Get returns the spec for a content type.
func (r *Registry) Get(t Type) (*Spec, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	spec, ok := r.specs[t]
	if !ok {
		return nil, fmt.Errorf("unsupported content type: %s", t)
	}
	return spec, nil
}

// Types returns the registered content types.
func (r *Registry) Types() []Type {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]Type, 0, len(r.specs))
	for t := range r.specs {
		types = append(types, t)
	}
	return types
}

// defaultConstraints is the shipped shape table per content type.
var defaultConstraints = map[Type]Constraints{
	TypeBlogPost:           {MinWords: 300, MaxWords: 2000, MaxTagCount: 10, MaxTitleLen: 120},
	TypeProductDescription: {MinWords: 30, MaxWords: 300, MaxTagCount: 8, RequireCTA: true, MaxTitleLen: 80},
	TypeSocialPost:         {MinWords: 5, MaxWords: 100, MaxTagCount: 5, MaxTitleLen: 80},
	TypeEmailCampaign:      {MinWords: 50, MaxWords: 500, MaxTagCount: 5, RequireCTA: true, MaxTitleLen: 60},
}

// DefaultRegistry returns a registry with every supported content type
// registered with its shipped prompts and constraints.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	for _, t := range ValidTypes() {
		// Register cannot fail here: every valid type has a prompt profile.
		_ = r.Register(&Spec{
			Type:        t,
			Prompt:      NewPromptBuilder(t),
			Constraints: defaultConstraints[t],
		})
	}
	return r
}

package brain

import (
	"fmt"
	"sort"
	"sync"
)

// Capability declares what a brain may be trusted with. Set once at
// registration; the QA validator reads it instead of guessing from names.
type Capability struct {
	// Domain is the specialist domain for SME brains
	// (e.g. "security_and_compliance", "networking"). Empty for non-SMEs.
	Domain string `json:"domain,omitempty"`

	// Trusted marks sources that earn the QA trusted-source bonus.
	Trusted bool `json:"trusted"`

	// FeedbackAnalyzer marks sources that distill execution feedback.
	FeedbackAnalyzer bool `json:"feedback_analyzer"`

	// KnowledgeIntegrator marks sources that import external knowledge,
	// which the QA validator discounts.
	KnowledgeIntegrator bool `json:"knowledge_integrator"`
}

// Registration pairs a brain with its declared capability.
type Registration struct {
	Brain      Brain
	Capability Capability
}

// Registry holds the brains available to the orchestrator, keyed by name.
// Safe for concurrent use.
type Registry struct {
	mu     sync.RWMutex
	brains map[string]Registration
}

// NewRegistry creates an empty brain registry.
func NewRegistry() *Registry {
	return &Registry{brains: make(map[string]Registration)}
}

// Register adds a brain with its capability descriptor.
func (r *Registry) Register(b Brain, capability Capability) error {
	if b == nil || b.Name() == "" {
		return fmt.Errorf("%w: missing name", ErrUnknownBrain)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.brains[b.Name()]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateBrain, b.Name())
	}
	r.brains[b.Name()] = Registration{Brain: b, Capability: capability}
	return nil
}

// Get returns the registration for a brain name.
func (r *Registry) Get(name string) (Registration, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	reg, ok := r.brains[name]
	return reg, ok
}

// ByKind returns the first registered brain of the given kind.
// Used for the mandatory intent and technical stages, which are singular.
func (r *Registry) ByKind(kind Kind) (Brain, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.brains))
	for name := range r.brains {
		names = append(names, name)
	}
	sort.Strings(names) // deterministic pick
	for _, name := range names {
		if r.brains[name].Brain.Kind() == kind {
			return r.brains[name].Brain, true
		}
	}
	return nil, false
}

// SMEByDomain returns the SME brain registered for a specialist domain.
func (r *Registry) SMEByDomain(domain string) (Brain, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, reg := range r.brains {
		if reg.Brain.Kind() == KindSME && reg.Capability.Domain == domain {
			return reg.Brain, true
		}
	}
	return nil, false
}

// DescribeSource reports the capability of a registered source.
// Implements the QA validator's source directory.
func (r *Registry) DescribeSource(name string) (Capability, bool) {
	reg, ok := r.Get(name)
	if !ok {
		return Capability{}, false
	}
	return reg.Capability, true
}

// KindOf reports the kind of a registered brain.
func (r *Registry) KindOf(name string) (Kind, bool) {
	reg, ok := r.Get(name)
	if !ok {
		return "", false
	}
	return reg.Brain.Kind(), true
}

// Names returns all registered brain names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.brains))
	for name := range r.brains {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

package prompt

import (
	"fmt"
	"sort"
	"sync"

	"proofline/internal/task"
)

// Spec is a fully assembled prompt ready for a model invocation.
type Spec struct {
	System string
	User   string
}

// Strategy frames the deliverable for one agent type. Implementations must
// be deterministic functions of the task.
type Strategy interface {
	AgentType() task.AgentType
	Deliverable(t task.Task) string
}

// Registry maintains the known prompt strategies keyed by agent type.
type Registry struct {
	mu         sync.RWMutex
	strategies map[task.AgentType]Strategy
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{strategies: map[task.AgentType]Strategy{}}
}

// Register installs a strategy. Returns an error if the agent type is
// already covered.
func (r *Registry) Register(s Strategy) error {
	if s == nil {
		return fmt.Errorf("prompt: strategy is required")
	}
	at := s.AgentType()
	if at == "" {
		return fmt.Errorf("prompt: strategy agent type is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.strategies[at]; exists {
		return fmt.Errorf("prompt: %s already registered", at)
	}
	r.strategies[at] = s
	return nil
}

// MustRegister panics if registration fails.
func (r *Registry) MustRegister(s Strategy) {
	if err := r.Register(s); err != nil {
		panic(err)
	}
}

// Resolve returns the strategy for an agent type.
func (r *Registry) Resolve(at task.AgentType) (Strategy, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.strategies[at]
	return s, ok
}

// Types returns the registered agent types in sorted order.
func (r *Registry) Types() []task.AgentType {
	r.mu.RLock()
	defer r.mu.RUnlock()
	types := make([]task.AgentType, 0, len(r.strategies))
	for at := range r.strategies {
		types = append(types, at)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}

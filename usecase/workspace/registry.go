package workspace

import (
	"sort"
	"sync"
)

// Factory builds the workspace of an agent on first use.
type Factory func(agentID string) *Workspace

// Registry holds one Workspace per agent for the lifetime of the process.
type Registry struct {
	mu      sync.Mutex
	items   map[string]*Workspace
	factory Factory
}

func NewRegistry(factory Factory) *Registry {
	return &Registry{
		items:   make(map[string]*Workspace),
		factory: factory,
	}
}

// Get returns the workspace of agentID, creating it when missing.
func (r *Registry) Get(agentID string) *Workspace {
	r.mu.Lock()
	defer r.mu.Unlock()
	if ws, ok := r.items[agentID]; ok {
		return ws
	}
	ws := r.factory(agentID)
	r.items[agentID] = ws
	return ws
}

// Lookup returns the workspace of agentID without creating one.
func (r *Registry) Lookup(agentID string) (*Workspace, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ws, ok := r.items[agentID]
	return ws, ok
}

// Agents lists the agents with an open workspace, sorted.
func (r *Registry) Agents() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.items))
	for id := range r.items {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.items)
}

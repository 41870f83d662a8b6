package command

import (
	"sort"
	"strings"
	"sync"

	"github.com/keshon/sentinel/pkg/cmd"
)

// Registry maps canonical names and aliases to command specs. Registration
// happens at startup; lookups are safe from any goroutine.
type Registry struct {
	mu       sync.RWMutex
	specs    map[string]*Spec
	aliases  map[string]string
	order    []string
	defaults []Interceptor
}

// NewRegistry returns an empty registry. defaults wrap every registered
// command, outside the command's own interceptors.
func NewRegistry(defaults ...Interceptor) *Registry {
	return &Registry{
		specs:    make(map[string]*Spec),
		aliases:  make(map[string]string),
		defaults: defaults,
	}
}

// Register inserts s, replacing any spec with the same name and rebinding
// its aliases. The interceptor chain is composed here, once.
func (r *Registry) Register(s *Spec) {
	mws := make([]Interceptor, 0, len(r.defaults)+len(s.Interceptors))
	mws = append(mws, r.defaults...)
	mws = append(mws, s.Interceptors...)
	s.chain = cmd.Chain(s.Handler, mws...)

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.specs[s.Name]; !exists {
		r.order = append(r.order, s.Name)
	}
	r.specs[s.Name] = s
	for _, a := range s.Aliases {
		r.aliases[a] = s.Name
	}
}

// MustRegister builds b and registers it, panicking on an invalid definition.
func (r *Registry) MustRegister(b *Builder) *Spec {
	s, err := b.Build()
	if err != nil {
		panic(err)
	}
	r.Register(s)
	return s
}

// Resolve looks token up as a canonical name first, then as an alias.
func (r *Registry) Resolve(token string) (*Spec, bool) {
	token = strings.ToLower(token)

	r.mu.RLock()
	defer r.mu.RUnlock()

	if s, ok := r.specs[token]; ok {
		return s, true
	}
	if name, ok := r.aliases[token]; ok {
		s, ok := r.specs[name]
		return s, ok
	}
	return nil, false
}

// All returns every spec in declaration order.
func (r *Registry) All() []*Spec {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Spec, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.specs[name])
	}
	return out
}

// ByCategory returns the specs of one category in declaration order.
func (r *Registry) ByCategory(category string) []*Spec {
	var out []*Spec
	for _, s := range r.All() {
		if s.Category == category {
			out = append(out, s)
		}
	}
	return out
}

// Categories returns the distinct categories ordered by weight, then name.
func (r *Registry) Categories(weights map[string]int) []string {
	seen := map[string]bool{}
	var cats []string
	for _, s := range r.All() {
		if !seen[s.Category] {
			seen[s.Category] = true
			cats = append(cats, s.Category)
		}
	}
	sort.SliceStable(cats, func(i, j int) bool {
		wi, wj := weights[cats[i]], weights[cats[j]]
		if wi != wj {
			return wi < wj
		}
		return cats[i] < cats[j]
	})
	return cats
}

// Len reports the number of canonical commands.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.specs)
}

// Aliases returns a copy of the alias table, alias to canonical name.
func (r *Registry) Aliases() map[string]string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]string, len(r.aliases))
	for a, n := range r.aliases {
		out[a] = n
	}
	return out
}

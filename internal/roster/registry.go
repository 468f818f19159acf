package roster

import (
	"fmt"

	"github.com/cura-agent/roster-service/internal/domain"
)

// Registry holds one Store per roster category. Stores never share entries.
type Registry struct {
	stores map[domain.Category]*Store
}

// NewRegistry builds a store for every category from seeds.
func NewRegistry(seeds Seeds, opts ...Option) *Registry {
	r := &Registry{stores: make(map[domain.Category]*Store, len(domain.Categories))}
	for _, c := range domain.Categories {
		r.stores[c] = New(c, seeds[c], opts...)
	}
	return r
}

// Store returns the store for category.
func (r *Registry) Store(category domain.Category) (*Store, error) {
	s, ok := r.stores[category]
	if !ok {
		return nil, fmt.Errorf("unknown roster category %q", category)
	}
	return s, nil
}

package mapping

import "sort"

// TransformRegistry holds declared transform definitions and provides lookup.
type TransformRegistry struct {
	transforms map[string]*TransformDef
}

// NewTransformRegistry creates a new empty transform registry.
func NewTransformRegistry() *TransformRegistry {
	return &TransformRegistry{
		transforms: make(map[string]*TransformDef),
	}
}

// BuildRegistry builds a transform registry from a MappingFile. Later
// declarations of a name replace earlier ones; Validate reports them.
func BuildRegistry(mf *MappingFile) *TransformRegistry {
	registry := NewTransformRegistry()

	for i := range mf.Transforms {
		registry.Add(&mf.Transforms[i])
	}

	return registry
}

// Add adds a transform to the registry.
func (r *TransformRegistry) Add(def *TransformDef) {
	r.transforms[def.Name] = def
}

// Get returns a transform by name, or nil if not found.
func (r *TransformRegistry) Get(name string) *TransformDef {
	return r.transforms[name]
}

// Has returns true if a transform with the given name exists.
func (r *TransformRegistry) Has(name string) bool {
	_, exists := r.transforms[name]
	return exists
}

// Names returns all transform names, sorted.
func (r *TransformRegistry) Names() []string {
	names := make([]string, 0, len(r.transforms))
	for name := range r.transforms {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

// Referenced returns the names of the transforms used by mf's field
// mappings, sorted and without duplicates.
func Referenced(mf *MappingFile) []string {
	seen := make(map[string]struct{})

	for i := range mf.TypeMappings {
		for _, fm := range mf.TypeMappings[i].Fields {
			if fm.Transform != "" {
				seen[fm.Transform] = struct{}{}
			}
		}
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

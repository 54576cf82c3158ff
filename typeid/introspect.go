package typeid

import (
	"go/token"
	"reflect"
	"sync"

	"github.com/zoobzio/sentinel"
)

// TagName is the struct tag consulted by the engine. A field tagged
// `mapper:"-"` is never picked up by the automatic fallback.
const TagName = "mapper"

func init() {
	sentinel.Tag(TagName)
}

// Property describes one exported field of a struct type.
type Property struct {
	Name  string
	Index []int
	Type  reflect.Type
	Tags  map[string]string
}

// Skipped reports whether the field opted out of implicit mapping.
func (p Property) Skipped() bool {
	return p.Tags[TagName] == "-"
}

// Introspector enumerates the mappable properties of a type.
type Introspector interface {
	// PropertyNames returns the exported field names of t in declaration
	// order. Non-struct types have no properties.
	PropertyNames(t TypeID) []string
	// Property returns the metadata of the named field of t.
	Property(t TypeID, name string) (Property, bool)
}

// Default is the process-wide introspector used when none is configured.
var Default Introspector = NewSentinelIntrospector()

// Register pre-scans T with sentinel so later lookups hit its metadata cache.
func Register[T any]() {
	sentinel.Scan[T]()
}

type typeProperties struct {
	names  []string
	byName map[string]Property
}

// SentinelIntrospector resolves properties from sentinel metadata, scanning
// unregistered types with reflect. Results are cached per type.
type SentinelIntrospector struct {
	mu    sync.RWMutex
	cache map[reflect.Type]*typeProperties
}

// NewSentinelIntrospector returns an empty introspector.
func NewSentinelIntrospector() *SentinelIntrospector {
	return &SentinelIntrospector{cache: make(map[reflect.Type]*typeProperties)}
}

// PropertyNames implements Introspector.
func (s *SentinelIntrospector) PropertyNames(t TypeID) []string {
	props := s.properties(t)
	if props == nil {
		return nil
	}

	out := make([]string, len(props.names))
	copy(out, props.names)

	return out
}

// Property implements Introspector.
func (s *SentinelIntrospector) Property(t TypeID, name string) (Property, bool) {
	props := s.properties(t)
	if props == nil {
		return Property{}, false
	}

	p, ok := props.byName[name]

	return p, ok
}

func (s *SentinelIntrospector) properties(t TypeID) *typeProperties {
	if !t.IsStruct() {
		return nil
	}

	rt := t.Type()

	s.mu.RLock()
	props, ok := s.cache[rt]
	s.mu.RUnlock()

	if ok {
		return props
	}

	md := metadataOf(rt)
	props = &typeProperties{
		names:  make([]string, 0, len(md.Fields)),
		byName: make(map[string]Property, len(md.Fields)),
	}

	for _, f := range md.Fields {
		if f.ReflectType == nil || !token.IsExported(f.Name) {
			continue
		}

		props.names = append(props.names, f.Name)
		props.byName[f.Name] = Property{
			Name:  f.Name,
			Index: append([]int(nil), f.Index...),
			Type:  f.ReflectType,
			Tags:  f.Tags,
		}
	}

	s.mu.Lock()
	if cached, ok := s.cache[rt]; ok {
		props = cached
	} else {
		s.cache[rt] = props
	}
	s.mu.Unlock()

	return props
}

// metadataOf returns sentinel metadata for rt, scanning it with reflect when
// sentinel has not seen the type.
func metadataOf(rt reflect.Type) sentinel.Metadata {
	if md, ok := sentinel.Lookup(rt.String()); ok && md.PackageName == rt.PkgPath() {
		return md
	}

	md := sentinel.Metadata{
		TypeName:    rt.Name(),
		PackageName: rt.PkgPath(),
		Fields:      make([]sentinel.FieldMetadata, 0, rt.NumField()),
	}

	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		if !sf.IsExported() {
			continue
		}

		fm := sentinel.FieldMetadata{
			Name:        sf.Name,
			Type:        sf.Type.String(),
			ReflectType: sf.Type,
			Index:       sf.Index,
			Tags:        map[string]string{},
		}

		if v, ok := sf.Tag.Lookup(TagName); ok {
			fm.Tags[TagName] = v
		}

		switch sf.Type.Kind() {
		case reflect.Struct:
			fm.Kind = sentinel.KindStruct
		case reflect.Pointer:
			fm.Kind = sentinel.KindPointer
		case reflect.Slice, reflect.Array:
			fm.Kind = sentinel.KindSlice
		case reflect.Map:
			fm.Kind = sentinel.KindMap
		case reflect.Interface:
			fm.Kind = sentinel.KindInterface
		default:
			fm.Kind = sentinel.KindScalar
		}

		md.Fields = append(md.Fields, fm)
	}

	return md
}

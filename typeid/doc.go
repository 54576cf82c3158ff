// Package typeid identifies mapping endpoints.
//
// A TypeID is an opaque, comparable identity for a concrete Go type. Two ids
// are equal iff they denote the same type; pointer types are normalized to
// their element type so that *Cat and Cat resolve the same rules. A Key is
// the ordered (source, target) pair under which a rule is registered.
//
// The package also provides the property introspection the engine needs for
// the Properties shorthand and for the automatic fallback:
//
//	names := typeid.Default.PropertyNames(typeid.Of[Cat]())
//
// Introspection is backed by sentinel metadata when a type was registered
// with Register[T], and by a reflect scan producing the same metadata shape
// otherwise.
package typeid

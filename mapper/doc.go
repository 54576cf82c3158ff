// Package mapper maps values of one struct type to another with declarative
// rules.
//
// Rules are authored in profiles and collected once into a Store:
//
//	store := mapper.NewStore()
//	err := store.CollectFromProfiles(ctx, mapper.NewProfile("cats", func(pm *mapper.ProfileMapper) error {
//		mapper.AddRule[Cat, CatDto](pm).
//			Properties("ID", "Name").
//			Fill("Coins", mapper.Value[Cat](0))
//		return nil
//	}))
//
// A Mapper executes the collected rules:
//
//	m := mapper.New(store)
//	dto, err := mapper.MapTo[Cat, CatDto](ctx, m, cat)
//
// Directive kinds:
//   - Copy: assign a source property unchanged
//   - Transform: assign a function of a source property
//   - Fill: assign a function of the whole source
//   - ByRule: map a nested struct, pointer or slice with another rule
//
// Directives run strictly in declaration order, each one finishing before
// the next starts, so the last directive writing a property wins. Blocking
// functions receive the call's context.
//
// Registration problems (unknown properties, incompatible copies, duplicate
// pairs) are reported by CollectFromProfiles. Mapping problems are reported
// per call with the typed errors of this package.
package mapper

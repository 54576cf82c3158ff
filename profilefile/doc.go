// Package profilefile turns mapping files into mapper profiles.
//
// A mapping file names types, transforms and constructors as strings. The
// Catalog binds those names to Go values:
//
//	c := profilefile.NewCatalog()
//	profilefile.Register[cats.Cat](c)
//	profilefile.Register[cats.CatDto](c)
//	_ = c.AddTransform("BadType", func(cats.CatType) cats.CatType { return cats.Bad })
//
//	p, err := profilefile.Load("cats.yaml", c)
//	...
//	err = store.CollectFromProfiles(ctx, p)
//
// Files are checked against the catalog before a profile is returned.
// Transforms are checked against the property types when the profile is
// defined. Defaults are parsed once, with the primitive literal conversions.
package profilefile

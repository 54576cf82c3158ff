// Package fixture holds the next revision of the cat types. It keeps the
// package name of its predecessor so both render with the same short names.
package fixture

import legacy "caster-mapper/internal/fixture"

// Cat wraps the previous cat record.
type Cat struct {
	Name   string
	Legacy legacy.Cat
}

// CatDto is the transport form of Cat.
type CatDto struct {
	Name   string
	Legacy legacy.CatDto
}

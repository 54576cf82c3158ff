// Package mapping provides the mapping file schema, its YAML, JSON and HCL
// parsers, structural validation, and the rule reference graph.
//
// A mapping file declares rules without code. Every entry becomes one rule
// when loaded through package profilefile.
//
// # Schema Overview
//
//	version: "1"
//	mappings:
//	  - source: cats.Cat
//	    target: cats.CatDto
//	    construct: allocate          # or constructor
//	    auto: false                  # copy same-named properties first
//	    121:                         # source: target, ordered by source
//	      ID: ID
//	    properties: [Name]           # same name on both sides
//	    fields:
//	      - target: Type
//	        source: Type
//	        transform: BadType       # named transform of the source property
//	      - target: Coins
//	        default: "0"             # literal converted to the target type
//	      - target: Payload
//	        source: Payload
//	        rule: cats.Payload->cats.PayloadDto
//	    ignore: [Age]                # excluded from auto
//	transforms:
//	  - name: BadType
//
// # Priority Order
//
// Directives run in order and the last write wins, so entries are emitted
// lowest priority first:
//  1. "auto" same-name copies (lowest)
//  2. "121" shorthand mappings
//  3. "properties" shorthand
//  4. "fields" explicit mappings (highest)
//
// # Path Syntax
//
// Field paths support:
//   - Simple fields: "Name"
//   - Nested fields: "Address.Street"
//
// Collections ("Items[]") are parsed but rejected by validation: they are
// mapped with a rule reference instead.
package mapping

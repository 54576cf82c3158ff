// Package fixture holds the domain and transport types shared by tests and
// examples: cats with nested payloads, and users and orders coming from an
// external API.
package fixture

package common

import "path"

// UnknownStr is rendered by String methods for out-of-range enum values.
const UnknownStr = "unknown"

// PkgAlias returns the package alias (last element of path) for a given package path.
// Returns empty string if pkgPath is empty.
func PkgAlias(pkgPath string) string {
	if pkgPath == "" {
		return ""
	}

	return path.Base(pkgPath)
}

// QualifiedName renders a type as alias.Name, the form used in mapping files
// and diagnostics (e.g., "cats.CatDto").
func QualifiedName(pkgPath, name string) string {
	alias := PkgAlias(pkgPath)
	if alias == "" {
		return name
	}

	return alias + "." + name
}

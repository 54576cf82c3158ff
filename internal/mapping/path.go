package mapping

import (
	"errors"
	"fmt"
	"go/token"
	"strings"
)

// ErrInvalidPath is returned by ParsePath for malformed paths.
var ErrInvalidPath = errors.New("invalid path")

// ParsePath splits a dotted property path. A segment ending in "[]" walks
// into the elements of a collection: "Name", "Address.City",
// "Items[].ProductID".
func ParsePath(path string) (FieldPath, error) {
	if path == "" {
		return FieldPath{}, fmt.Errorf("%w: empty", ErrInvalidPath)
	}

	names := strings.Split(path, ".")
	fp := FieldPath{Segments: make([]PathSegment, 0, len(names))}

	for _, name := range names {
		seg := PathSegment{Name: name}
		seg.Name, seg.IsSlice = strings.CutSuffix(name, "[]")

		if !token.IsIdentifier(seg.Name) {
			return FieldPath{}, fmt.Errorf("%w %q: bad segment %q", ErrInvalidPath, path, name)
		}

		fp.Segments = append(fp.Segments, seg)
	}

	return fp, nil
}

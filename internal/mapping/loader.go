package mapping

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"caster-mapper/internal/common"
)

// ErrUnknownFormat is returned by LoadFile for unrecognized file extensions.
var ErrUnknownFormat = errors.New("unknown mapping file format")

// LoadFile loads and parses a mapping file from the given path. The format
// is chosen by extension: .yaml/.yml, .json or .hcl.
func LoadFile(path string) (*MappingFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read mapping file %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return Parse(data)
	case ".json":
		return ParseJSON(data)
	case ".hcl":
		return ParseHCL(data, path)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, path)
	}
}

// Parse parses YAML data into a MappingFile.
func Parse(data []byte) (*MappingFile, error) {
	var mf MappingFile

	err := yaml.Unmarshal(data, &mf)
	if err != nil {
		return nil, fmt.Errorf("failed to parse mapping YAML: %w", err)
	}

	// Apply defaults and normalize
	applyDefaults(&mf)

	return &mf, nil
}

// ParseJSON parses JSON data into a MappingFile.
func ParseJSON(data []byte) (*MappingFile, error) {
	var mf MappingFile

	err := json.Unmarshal(data, &mf)
	if err != nil {
		return nil, fmt.Errorf("failed to parse mapping JSON: %w", err)
	}

	applyDefaults(&mf)

	return &mf, nil
}

// applyDefaults fills in default values for optional fields.
func applyDefaults(mf *MappingFile) {
	if mf.Version == "" {
		mf.Version = DefaultVersion
	}

	for i := range mf.TypeMappings {
		tm := &mf.TypeMappings[i]
		if tm.Construct == "" {
			tm.Construct = ConstructAllocate
		}
	}
}

// Marshal serializes a MappingFile to YAML.
func Marshal(mf *MappingFile) ([]byte, error) {
	return yaml.Marshal(mf)
}

// WriteFile writes a MappingFile to the given path as YAML.
func WriteFile(mf *MappingFile, path string) error {
	data, err := Marshal(mf)
	if err != nil {
		return fmt.Errorf("failed to marshal mapping: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write mapping file %s: %w", path, err)
	}

	return nil
}

// NormalizeTypeMapping expands the 121 and properties shorthands into Fields
// entries, keeping their priority: both go before the explicit fields, so
// that explicit fields win when they write the same target.
func NormalizeTypeMapping(tm *TypeMapping) {
	if len(tm.OneToOne) == 0 && len(tm.Properties) == 0 {
		return
	}

	expanded := make([]FieldMapping, 0, len(tm.OneToOne)+len(tm.Properties)+len(tm.Fields))

	// Map order is random; 121 entries are ordered by source name.
	for _, source := range common.SortedKeys(tm.OneToOne) {
		expanded = append(expanded, FieldMapping{
			Source: source,
			Target: StringOrArray{tm.OneToOne[source]},
		})
	}

	for _, name := range tm.Properties {
		expanded = append(expanded, FieldMapping{
			Source: name,
			Target: StringOrArray{name},
		})
	}

	tm.Fields = append(expanded, tm.Fields...)
	tm.OneToOne = nil
	tm.Properties = nil
}

// NormalizeMappingFile normalizes all type mappings in a file.
func NormalizeMappingFile(mf *MappingFile) {
	for i := range mf.TypeMappings {
		NormalizeTypeMapping(&mf.TypeMappings[i])
	}
}

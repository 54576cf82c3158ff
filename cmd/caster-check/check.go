package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/davecgh/go-spew/spew"

	"caster-mapper/internal/diagnostic"
	"caster-mapper/internal/mapping"
)

var (
	errNoFiles     = errors.New("no mapping files given")
	errOutWithMany = errors.New("-o needs exactly one input file")
)

type checker struct {
	logger *slog.Logger
	stdout io.Writer
	dump   bool
	out    string
}

// check reports the diagnostics of one file and whether it is free of errors.
func (c *checker) check(path string) bool {
	log := c.logger.With("file", path)

	mf, err := mapping.LoadFile(path)
	if err != nil {
		log.Error("Failed to load mapping file.", "error", err)

		return false
	}

	if c.dump {
		cfg := spew.ConfigState{Indent: "  ", DisablePointerAddresses: true, SortKeys: true}
		cfg.Fdump(c.stdout, mf)
	}

	res := mapping.Validate(mf, nil)
	res.Sort()

	for _, d := range res.All() {
		fmt.Fprintf(c.stdout, "%s: %s: %s\n", path, d.Severity, d)
	}

	log.Info("Checked mapping file.",
		"mappings", len(mf.TypeMappings),
		"transforms", len(mf.Transforms),
		"errors", len(res.Errors),
		"warnings", len(res.Warnings),
		"cycles", countCode(res.Infos, "rule_cycle"),
	)

	if res.HasErrors() {
		return false
	}

	if c.out != "" {
		mapping.NormalizeMappingFile(mf)

		if err := mapping.WriteFile(mf, c.out); err != nil {
			log.Error("Failed to write normalized mapping.", "error", err)

			return false
		}

		log.Debug("Wrote normalized mapping.", "out", c.out)
	}

	return true
}

func countCode(diags []diagnostic.Diagnostic, code string) int {
	n := 0

	for _, d := range diags {
		if d.Code == code {
			n++
		}
	}

	return n
}

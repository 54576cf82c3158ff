// Command caster-check validates mapping files.
//
// Each file (.yaml, .yml, .json or .hcl) is parsed and checked structurally:
// paths, transforms, rule references, duplicates and rule cycles. Type names
// are not resolved, since that needs the Go types linked into a program; use
// profilefile.Load for a full check.
//
// Usage:
//
//	caster-check [flags] file...
//
// The exit status is 1 when any file has errors, 2 on bad usage.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

type options struct {
	logLevel  string
	logFormat string
	dump      bool
	out       string
}

func parseFlags(args []string, stderr io.Writer) (options, []string, error) {
	var opts options

	fs := flag.NewFlagSet("caster-check", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.logLevel, "log-level", "info", "log level: debug, info, warn, error")
	fs.StringVar(&opts.logFormat, "log-format", "text", "log format: text or json")
	fs.BoolVar(&opts.dump, "dump", false, "dump the parsed mapping file")
	fs.StringVar(&opts.out, "o", "", "write the normalized mapping as YAML (single file only)")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "usage: caster-check [flags] file...")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return opts, nil, err
	}

	files := fs.Args()
	if len(files) == 0 {
		fs.Usage()

		return opts, nil, errNoFiles
	}

	if opts.out != "" && len(files) > 1 {
		return opts, nil, errOutWithMany
	}

	return opts, files, nil
}

func run(args []string, stdout, stderr io.Writer) int {
	opts, files, err := parseFlags(args, stderr)
	if err != nil {
		if err != flag.ErrHelp && err != errNoFiles {
			fmt.Fprintln(stderr, err)
		}

		return 2
	}

	c := &checker{
		logger: newLogger(opts.logLevel, opts.logFormat, stderr),
		stdout: stdout,
		dump:   opts.dump,
		out:    opts.out,
	}

	failed := 0

	for _, file := range files {
		if !c.check(file) {
			failed++
		}
	}

	c.logger.Debug("Check finished.", "files", len(files), "failed", failed)

	if failed > 0 {
		return 1
	}

	return 0
}

package profilefile

import (
	"context"

	"github.com/zoobzio/capitan"

	"caster-mapper/internal/diagnostic"
)

// SignalFileChecked is emitted once per Profile call with the diagnostic
// counts of the file.
var SignalFileChecked = capitan.NewSignal("profilefile.file.checked", "Mapping file validated against the catalog")

// Keys for typed event data.
var (
	KeyFile     = capitan.NewStringKey("file")
	KeyErrors   = capitan.NewIntKey("errors")
	KeyWarnings = capitan.NewIntKey("warnings")
	KeyFirst    = capitan.NewStringKey("first")
)

func emitFileChecked(ctx context.Context, file string, diags *diagnostic.Diagnostics) {
	fields := []capitan.Field{
		KeyFile.Field(file),
		KeyErrors.Field(len(diags.Errors)),
		KeyWarnings.Field(len(diags.Warnings)),
	}

	if all := diags.All(); len(all) > 0 {
		fields = append(fields, KeyFirst.Field(all[0].String()))
	}

	if diags.HasErrors() {
		capitan.Error(ctx, SignalFileChecked, fields...)

		return
	}

	capitan.Emit(ctx, SignalFileChecked, fields...)
}

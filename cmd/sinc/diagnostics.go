package main

import (
	"github.com/spf13/cobra"

	"sinc/internal/diag"
)

const (
	assemblerCategory = diag.AssemblerError
	linkerCategory    = diag.LinkerError
	vmCategory        = diag.VMError
)

// reportDiagnostic wraps err (from internal/assemble, internal/link, or
// internal/vm, none of which construct diag.Diagnostic themselves)
// into one and renders it through internal/diag.Render so every
// subcommand's failures share one colored, categorized output path.
func reportDiagnostic(cmd *cobra.Command, category diag.Category, file string, err error) error {
	bag := diag.NewBag()
	d := diag.Error(category, 0, "%v", err)
	d.File = file
	bag.Add(d)
	diag.Render(cmd.ErrOrStderr(), bag)
	return err
}

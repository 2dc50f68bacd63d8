package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"sinc/internal/isa"
	"sinc/internal/link"
	"sinc/internal/objfile"
)

var linkCmd = &cobra.Command{
	Use:   "link <file.sinc>...",
	Short: "Link one or more .sinc object files into a flat program image",
	Args:  cobra.MinimumNArgs(1),
	RunE:  linkExecution,
}

func init() {
	linkCmd.Flags().String("output", "a.sinimg", "output image path")
	linkCmd.Flags().Uint16("base", isa.PrgBottom, "load address for the first object file")
}

func linkExecution(cmd *cobra.Command, args []string) error {
	output, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}
	base, err := cmd.Flags().GetUint16("base")
	if err != nil {
		return err
	}

	files := make([]objfile.File, 0, len(args))
	for _, path := range args {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		f, err := objfile.Decode(data)
		if err != nil {
			return reportDiagnostic(cmd, linkerCategory, path, fmt.Errorf("decode object file: %w", err))
		}
		files = append(files, f)
	}

	result, err := link.Link(files, base)
	if err != nil {
		return reportDiagnostic(cmd, linkerCategory, "", err)
	}

	if err := os.WriteFile(output, link.EncodeImage(result), 0o644); err != nil {
		return fmt.Errorf("%s: %w", output, err)
	}

	printfUnlessQuiet(cmd, "linked %d object file(s) -> %s (base $%04X, entry $%04X)\n", len(files), output, result.Base, result.Entry)
	return nil
}

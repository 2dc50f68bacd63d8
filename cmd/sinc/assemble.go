package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"sinc/internal/assemble"
	"sinc/internal/isa"
	"sinc/internal/objfile"
)

var assembleCmd = &cobra.Command{
	Use:   "assemble <file.sinasm>",
	Short: "Assemble a .sinasm source file into a .sinc object file",
	Args:  cobra.ExactArgs(1),
	RunE:  assembleExecution,
}

func init() {
	assembleCmd.Flags().String("output", "", "output path (default: input path with .sinc extension)")
	assembleCmd.Flags().Uint8("word-size", isa.WordSize, "target word size in bits")
}

func assembleExecution(cmd *cobra.Command, args []string) error {
	inputPath := args[0]
	output, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}
	wordSize, err := cmd.Flags().GetUint8("word-size")
	if err != nil {
		return err
	}
	if output == "" {
		output = replaceExt(inputPath, ".sinc")
	}

	source, err := os.ReadFile(inputPath)
	if err != nil {
		return fmt.Errorf("%s: %w", inputPath, err)
	}

	file, err := assemble.Assemble(string(source), wordSize)
	if err != nil {
		return reportDiagnostic(cmd, assemblerCategory, inputPath, err)
	}

	encoded, err := objfile.Encode(file)
	if err != nil {
		return fmt.Errorf("%s: encode object file: %w", output, err)
	}
	if err := os.WriteFile(output, encoded, 0o644); err != nil {
		return fmt.Errorf("%s: %w", output, err)
	}

	printfUnlessQuiet(cmd, "assembled %s -> %s\n", inputPath, output)
	return nil
}

func replaceExt(path, ext string) string {
	for i := len(path) - 1; i >= 0 && path[i] != '/'; i-- {
		if path[i] == '.' {
			return path[:i] + ext
		}
	}
	return path + ext
}

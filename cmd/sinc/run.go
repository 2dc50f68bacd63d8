package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"sinc/internal/link"
	"sinc/internal/vm"
)

var runCmd = &cobra.Command{
	Use:   "run <image>",
	Short: "Run a linked program image on the VM",
	Args:  cobra.ExactArgs(1),
	RunE:  runExecution,
}

func runExecution(cmd *cobra.Command, args []string) error {
	path := args[0]
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	result, err := link.DecodeImage(data)
	if err != nil {
		return reportDiagnostic(cmd, vmCategory, path, err)
	}

	machine := vm.New(result.Image, result.Base, result.Entry)
	machine.Stdout = cmd.OutOrStdout()
	machine.Stdin = cmd.InOrStdin()

	if err := machine.Run(); err != nil {
		return reportDiagnostic(cmd, vmCategory, path, err)
	}

	printfUnlessQuiet(cmd, "halted, exit code %d\n", machine.ExitCode())
	return nil
}

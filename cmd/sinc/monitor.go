package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"sinc/internal/link"
	"sinc/internal/ui"
	"sinc/internal/vm"
)

var monitorCmd = &cobra.Command{
	Use:   "monitor <image>",
	Short: "Step a linked program image through an interactive register/memory monitor",
	Args:  cobra.ExactArgs(1),
	RunE:  monitorExecution,
}

func init() {
	monitorCmd.Flags().Uint16("mem", 0, "starting address for the memory dump pane")
}

func monitorExecution(cmd *cobra.Command, args []string) error {
	path := args[0]
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	result, err := link.DecodeImage(data)
	if err != nil {
		return reportDiagnostic(cmd, vmCategory, path, err)
	}

	memAddr, err := cmd.Flags().GetUint16("mem")
	if err != nil {
		return err
	}
	if memAddr == 0 {
		memAddr = result.Base
	}

	machine := vm.New(result.Image, result.Base, result.Entry)
	monitor := ui.NewMonitor(machine, memAddr)

	program := tea.NewProgram(monitor, tea.WithOutput(os.Stdout))
	_, err = program.Run()
	return err
}

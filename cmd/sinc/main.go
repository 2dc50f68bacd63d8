// Package main implements the sinc CLI.
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"sinc/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "sinc",
	Short: "sinc toolchain: assembler, linker, and 16-bit VM",
	Long:  `sinc assembles, links, and runs programs for a fixed 16-bit stack-and-accumulator virtual machine.`,
}

func main() {
	rootCmd.Version = version.Version

	rootCmd.AddCommand(assembleCmd)
	rootCmd.AddCommand(linkCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(monitorCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().Bool("quiet", false, "suppress non-essential output")

	cobra.OnInitialize(func() {
		applyColorMode(rootCmd)
	})

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// applyColorMode reads --color and forces fatih/color's global switch
// accordingly; "auto" enables color only when stdout is a terminal, as
// reported by isTerminal (golang.org/x/term).
func applyColorMode(cmd *cobra.Command) {
	mode, err := cmd.PersistentFlags().GetString("color")
	if err != nil {
		return
	}
	switch mode {
	case "on":
		color.NoColor = false
	case "off":
		color.NoColor = true
	default:
		color.NoColor = !isTerminal(os.Stdout)
	}
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

func quietFlag(cmd *cobra.Command) bool {
	quiet, _ := cmd.Root().PersistentFlags().GetBool("quiet")
	return quiet
}

func printfUnlessQuiet(cmd *cobra.Command, format string, args ...any) {
	if quietFlag(cmd) {
		return
	}
	fmt.Fprintf(cmd.OutOrStdout(), format, args...)
}

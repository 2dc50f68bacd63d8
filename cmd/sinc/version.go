package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"sinc/internal/version"
)

const versionTagline = "sixteen bits, one accumulator, no surprises"

var (
	versionShowHash bool
	versionShowDate bool
	versionShowFull bool
)

func init() {
	versionCmd.Flags().BoolVar(&versionShowHash, "hash", false, "include git commit hash")
	versionCmd.Flags().BoolVar(&versionShowDate, "date", false, "include build timestamp")
	versionCmd.Flags().BoolVar(&versionShowFull, "full", false, "show every recorded bit of build metadata")
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show sinc build fingerprints",
	RunE: func(cmd *cobra.Command, args []string) error {
		renderVersion(cmd.OutOrStdout(), versionShowHash || versionShowFull, versionShowDate || versionShowFull)
		return nil
	},
}

func renderVersion(out io.Writer, showHash, showDate bool) {
	v := strings.TrimSpace(version.Version)
	if v == "" {
		v = "dev"
	}
	fmt.Fprintf(out, "sinc %s (word size: %s bits): %s\n", v, version.WordSize, versionTagline)
	if showHash {
		fmt.Fprintf(out, "commit: %s\n", valueOrUnknown(version.GitCommit))
	}
	if showDate {
		fmt.Fprintf(out, "built:  %s\n", valueOrUnknown(version.BuildDate))
	}
}

func valueOrUnknown(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "unknown"
	}
	return s
}

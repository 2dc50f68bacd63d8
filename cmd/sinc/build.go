package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"sinc/internal/driver"
	"sinc/internal/isa"
	"sinc/internal/link"
	"sinc/internal/project"
	"sinc/internal/ui"
)

var buildCmd = &cobra.Command{
	Use:   "build [path]",
	Short: "Build a sinc project (sinc.toml) into a linked program image",
	Args:  cobra.MaximumNArgs(1),
	RunE:  buildExecution,
}

func init() {
	buildCmd.Flags().String("output", "", "output image path (default: <project name>.sinimg)")
	buildCmd.Flags().Uint16("base", isa.PrgBottom, "load address for the first unit")
	buildCmd.Flags().Int("jobs", 0, "parallel assembly jobs (default: GOMAXPROCS)")
	buildCmd.Flags().Bool("ui", true, "show interactive build progress")
	buildCmd.Flags().String("cache-dir", ".sinc-cache", "disk cache directory for assembled units")
}

type buildOutcome struct {
	result link.Result
	err    error
}

func buildExecution(cmd *cobra.Command, args []string) error {
	startDir := "."
	if len(args) == 1 {
		startDir = args[0]
	}

	manifestPath, ok, err := project.FindManifest(startDir)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("no sinc.toml found starting from %s", startDir)
	}
	manifest, err := project.Load(manifestPath)
	if err != nil {
		return reportDiagnostic(cmd, assemblerCategory, manifestPath, err)
	}

	output, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}
	if output == "" {
		name := manifest.Name
		if name == "" {
			name = "a"
		}
		output = name + ".sinimg"
	}
	base, err := cmd.Flags().GetUint16("base")
	if err != nil {
		return err
	}
	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return err
	}
	useUI, err := cmd.Flags().GetBool("ui")
	if err != nil {
		return err
	}
	cacheDir, err := cmd.Flags().GetString("cache-dir")
	if err != nil {
		return err
	}

	cache, err := driver.OpenCache(filepath.Join(filepath.Dir(manifestPath), cacheDir))
	if err != nil {
		return fmt.Errorf("cache: %w", err)
	}

	var result link.Result
	if useUI && isTerminal(os.Stdout) && !quietFlag(cmd) {
		result, err = runBuildWithUI(cmd.Context(), "sinc build", manifest, manifestPath, base, jobs, cache)
	} else {
		result, err = driver.Build(cmd.Context(), manifestPath, manifest, isa.WordSize, base, jobs, cache, nil)
	}
	if err != nil {
		return reportDiagnostic(cmd, assemblerCategory, manifestPath, err)
	}

	if err := os.WriteFile(output, link.EncodeImage(result), 0o644); err != nil {
		return fmt.Errorf("%s: %w", output, err)
	}

	printfUnlessQuiet(cmd, "built %s (base $%04X, entry $%04X)\n", output, result.Base, result.Entry)
	return nil
}

func runBuildWithUI(ctx context.Context, title string, manifest project.Manifest, manifestPath string, base uint16, jobs int, cache *driver.Cache) (link.Result, error) {
	events := make(chan driver.Event, 256)
	outcomeCh := make(chan buildOutcome, 1)

	unitNames := make([]string, len(manifest.Units))
	for i, u := range manifest.Units {
		unitNames[i] = u.Path
	}

	go func() {
		result, err := driver.Build(ctx, manifestPath, manifest, isa.WordSize, base, jobs, cache, events)
		outcomeCh <- buildOutcome{result: result, err: err}
		close(events)
	}()

	model := ui.NewProgressModel(title, unitNames, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout))
	_, uiErr := program.Run()
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.result, uiErr
	}
	return outcome.result, outcome.err
}

package main

import (
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"flowshot/internal/capture"
	"flowshot/internal/engine"
	"flowshot/internal/logging"
	"flowshot/internal/pipeline"
	"flowshot/internal/report"
	"flowshot/internal/source"
	"flowshot/internal/store"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var limitFlag int
	var noSkipExisting bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Import, capture, publish, and clean up every discovered workflow",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("limit") {
				cfg.Pipeline.BatchLimit = limitFlag
			}
			if noSkipExisting {
				cfg.Pipeline.SkipExisting = false
			}

			// Missing credentials abort before any item is touched.
			if err := cfg.ValidateCredentials(); err != nil {
				return err
			}
			if err := cfg.EnsureDirectories(); err != nil {
				return err
			}

			logger, err := logging.New(logging.Options{
				Level:  cfg.Logging.Level,
				Format: cfg.Logging.Format,
			})
			if err != nil {
				return err
			}

			lock := flock.New(cfg.Paths.LockPath)
			locked, err := lock.TryLock()
			if err != nil {
				return fmt.Errorf("acquire run lock: %w", err)
			}
			if !locked {
				return fmt.Errorf("another run is already in progress (lock %s)", cfg.Paths.LockPath)
			}
			defer lock.Unlock()

			runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			workflows, invalid, err := source.Discover(cfg.Paths.WorkflowsDir)
			if err != nil {
				return err
			}

			contentStore, err := store.New(cfg.GitHub, logger)
			if err != nil {
				return err
			}
			engineClient := engine.New(cfg.Engine, logger)
			browser := capture.New(cfg.Capture, cfg.Engine, logger)

			runner := pipeline.NewRunner(cfg, engineClient, browser, contentStore, logger)
			rep := runner.Run(runCtx, workflows, invalid)

			// The report is written regardless of how the run went.
			if writeErr := rep.Write(cfg.Paths.ReportPath); writeErr != nil {
				return writeErr
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderSummary(rep))
			if len(rep.Errors) > 0 {
				fmt.Fprintln(out, renderFailures(rep))
			}
			fmt.Fprintf(out, "Report written to %s\n", cfg.Paths.ReportPath)
			return nil
		},
	}

	cmd.Flags().IntVar(&limitFlag, "limit", 0, "Process at most this many workflows (0 = all)")
	cmd.Flags().BoolVar(&noSkipExisting, "no-skip-existing", false, "Reprocess workflows whose screenshots already exist")
	return cmd
}

func renderSummary(rep *report.RunReport) string {
	rows := [][]string{
		{"Total", strconv.Itoa(rep.Stats.Total)},
		{"Succeeded", strconv.Itoa(rep.Stats.Succeeded)},
		{"Failed", strconv.Itoa(rep.Stats.Failed)},
		{"Skipped", strconv.Itoa(rep.Stats.Skipped)},
	}
	return renderTable([]string{"Outcome", "Count"}, rows, []columnAlignment{alignLeft, alignRight})
}

func renderFailures(rep *report.RunReport) string {
	rows := make([][]string, 0, len(rep.Errors))
	for _, failure := range rep.Errors {
		rows = append(rows, []string{failure.Workflow, failure.Error})
	}
	return renderTable([]string{"Workflow", "Error"}, rows, nil)
}

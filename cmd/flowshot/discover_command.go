package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"flowshot/internal/source"
)

func newDiscoverCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "discover",
		Short: "List the workflows a run would process",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			workflows, invalid, err := source.Discover(cfg.Paths.WorkflowsDir)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(workflows) == 0 && len(invalid) == 0 {
				fmt.Fprintf(out, "No workflows found under %s\n", cfg.Paths.WorkflowsDir)
				return nil
			}

			rows := make([][]string, 0, len(workflows))
			for _, wf := range workflows {
				rows = append(rows, []string{wf.Name, wf.Category, wf.FileName, wf.Path})
			}
			fmt.Fprintln(out, renderTable([]string{"Workflow", "Category", "Artifact", "Source"}, rows, nil))

			if len(invalid) > 0 {
				rows = rows[:0]
				for _, inv := range invalid {
					rows = append(rows, []string{inv.Path, inv.Err.Error()})
				}
				fmt.Fprintln(out, renderTable([]string{"Unparseable file", "Error"}, rows, nil))
			}

			fmt.Fprintf(out, "%d workflows, %d unparseable files\n", len(workflows), len(invalid))
			return nil
		},
	}
}

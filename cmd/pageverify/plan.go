package main

import (
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"pageverify/pkg/plan"
)

// NewPlanCmd creates the plan command, which prints the built-in plan as YAML
// so it can be used as a starting point for -p.
func NewPlanCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Print the built-in verification plan as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p := plan.DefaultPlan()
			if output != "" {
				if err := plan.SavePlanToFile(afero.NewOsFs(), p, output); err != nil {
					return fmt.Errorf("failed to write plan: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Plan written to %s\n", output)
				return nil
			}

			data, err := plan.Marshal(p)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the plan to this file instead of stdout")
	return cmd
}

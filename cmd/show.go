package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// newShowCmd creates the 'show' subcommand.
func newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <task_id>",
		Short: "Show one task in full detail",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := resolveApp(cmd.Context())
			if err != nil {
				return err
			}
			t, err := a.Tasks.Get(args[0])
			if err != nil {
				return err
			}
			out, err := json.MarshalIndent(t, "", "  ")
			if err != nil {
				return fmt.Errorf("render task: %w", err)
			}
			fmt.Println(string(out))
			return nil
		},
	}
}

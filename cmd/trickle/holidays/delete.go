package holidayscmder

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/trickle/pkg/cliui"
)

const deleteShortDesc string = "Delete a holiday"

func newDeleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: deleteShortDesc,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid holiday id: %q", args[0])
			}

			client, err := newClient(cmd)
			if err != nil {
				return err
			}

			if err := client.Delete(cmd.Context(), id); err != nil {
				return fmt.Errorf("deleting holiday: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "\n  %s Deleted %s\n\n",
				cliui.SuccessMark,
				cliui.KeyStyle.Render(fmt.Sprintf("#%d", id)),
			)
			return nil
		},
	}

	return cmd
}

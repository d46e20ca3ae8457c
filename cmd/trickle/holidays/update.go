package holidayscmder

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/trickle/pkg/cliui"
)

const updateLongDesc string = `Update a holiday.

Only the fields given are changed; the rest are kept from the stored holiday.

Examples:
  trickle holidays update 3 --title "Unification Day"
  trickle holidays update 3 --date 2025-09-06`

const updateShortDesc string = "Update a holiday"

func newUpdateCmd() *cobra.Command {
	var title, date string

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: updateShortDesc,
		Long:  updateLongDesc,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid holiday id: %q", args[0])
			}
			if title == "" && date == "" {
				return fmt.Errorf("nothing to update: pass --title and/or --date")
			}

			client, err := newClient(cmd)
			if err != nil {
				return err
			}

			h, err := client.Get(cmd.Context(), id)
			if err != nil {
				return fmt.Errorf("loading holiday: %w", err)
			}
			if title != "" {
				h.Title = title
			}
			if date != "" {
				if h.Date, err = parseDate(date); err != nil {
					return err
				}
			}

			updated, err := client.Update(cmd.Context(), *h)
			if err != nil {
				return fmt.Errorf("updating holiday: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "\n  %s Holiday updated %s %s %s\n\n",
				cliui.SuccessMark,
				cliui.KeyStyle.Render(fmt.Sprintf("#%d", updated.ID)),
				cliui.DimStyle.Render(updated.Date.UTC().Format(dateLayout)),
				cliui.ValueStyle.Render(updated.Title),
			)
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "New holiday title")
	cmd.Flags().StringVar(&date, "date", "", "New holiday date (YYYY-MM-DD)")

	return cmd
}

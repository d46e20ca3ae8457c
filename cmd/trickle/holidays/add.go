package holidayscmder

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/trickle/pkg/cliui"
	"github.com/papercomputeco/trickle/pkg/holidays"
)

const addLongDesc string = `Add a holiday.

Examples:
  trickle holidays add --title "Liberation Day" --date 2025-03-03`

const addShortDesc string = "Add a holiday"

func newAddCmd() *cobra.Command {
	var title, date string

	cmd := &cobra.Command{
		Use:   "add",
		Short: addShortDesc,
		Long:  addLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, err := parseDate(date)
			if err != nil {
				return err
			}

			client, err := newClient(cmd)
			if err != nil {
				return err
			}

			h, err := client.Create(cmd.Context(), holidays.Holiday{Title: title, Date: d})
			if err != nil {
				return fmt.Errorf("adding holiday: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "\n  %s %s %s %s\n\n",
				cliui.SuccessMark,
				holidays.MessageAdded,
				cliui.KeyStyle.Render(fmt.Sprintf("#%d", h.ID)),
				cliui.ValueStyle.Render(h.Title),
			)
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "Holiday title")
	cmd.Flags().StringVar(&date, "date", "", "Holiday date (YYYY-MM-DD)")
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("date")

	return cmd
}

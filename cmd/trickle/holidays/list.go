package holidayscmder

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/trickle/pkg/cliui"
	"github.com/papercomputeco/trickle/pkg/holidays"
)

const listLongDesc string = `List holidays.

Lists the holidays of one year, the current year by default.
Pass --year 0 to list every stored holiday.

Examples:
  trickle holidays list
  trickle holidays list --year 2024`

const listShortDesc string = "List holidays"

func newListCmd() *cobra.Command {
	var year int

	cmd := &cobra.Command{
		Use:   "list",
		Short: listShortDesc,
		Long:  listLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := newClient(cmd)
			if err != nil {
				return err
			}

			list, err := client.Fetch(cmd.Context(), year)
			if err != nil {
				return fmt.Errorf("listing holidays: %w", err)
			}

			printList(cmd.OutOrStdout(), year, list)
			return nil
		},
	}

	cmd.Flags().IntVarP(&year, "year", "y", time.Now().Year(), "Year to list (0 = all years)")

	return cmd
}

func printList(w io.Writer, year int, list []holidays.Holiday) {
	if len(list) == 0 {
		if year == 0 {
			fmt.Fprintf(w, "\n  %s\n\n", cliui.DimStyle.Render("No holidays."))
		} else {
			fmt.Fprintf(w, "\n  %s\n\n", cliui.DimStyle.Render(fmt.Sprintf("No holidays in %d.", year)))
		}
		return
	}

	// Find the widest id for alignment.
	idWidth := 0
	for _, h := range list {
		if n := len(fmt.Sprint(h.ID)); n > idWidth {
			idWidth = n
		}
	}

	fmt.Fprintln(w)
	for _, h := range list {
		fmt.Fprintf(w, "  %s  %s  %s\n",
			cliui.DimStyle.Render(fmt.Sprintf("%*d", idWidth, h.ID)),
			cliui.KeyStyle.Render(h.Date.UTC().Format(dateLayout)),
			cliui.ValueStyle.Render(h.Title),
		)
	}
	fmt.Fprintln(w)
}

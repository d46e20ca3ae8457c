// Package holidayscmder provides the holidays command for managing the
// calendar entries served by a trickle relay.
package holidayscmder

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/trickle/pkg/config"
	"github.com/papercomputeco/trickle/pkg/holidays"
	"github.com/papercomputeco/trickle/pkg/logger"
)

const holidaysLongDesc string = `Manage holidays through the relay's /holidays API.

The endpoint comes from --holidays-endpoint, TRICKLE_CLIENT_HOLIDAYS_ENDPOINT
or client.holidays_endpoint in config.toml.

Use subcommands to list, add, update, or delete holidays:
  trickle holidays list [--year 2025]
  trickle holidays add --title "Liberation Day" --date 2025-03-03
  trickle holidays update <id> --title "Unification Day" --date 2025-09-06
  trickle holidays delete <id>`

const holidaysShortDesc string = "Manage holidays served by the relay"

// dateLayout is the calendar date format accepted on the command line.
const dateLayout = "2006-01-02"

func NewHolidaysCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "holidays",
		Short: holidaysShortDesc,
		Long:  holidaysLongDesc,
	}

	// Shared by every subcommand; resolved in newClient.
	def := config.Flags[config.FlagHolidaysEndpoint]
	cmd.PersistentFlags().String(def.Name, config.NewDefaultConfig().Client.HolidaysEndpoint, def.Description)

	cmd.AddCommand(newListCmd())
	cmd.AddCommand(newAddCmd())
	cmd.AddCommand(newUpdateCmd())
	cmd.AddCommand(newDeleteCmd())

	return cmd
}

// newClient resolves the endpoint through the config precedence chain and
// returns a client for it.
func newClient(cmd *cobra.Command) (*holidays.Client, error) {
	configDir, _ := cmd.Flags().GetString("config-dir")
	v, err := config.InitViper(configDir)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	config.BindRegisteredFlags(v, cmd, config.Flags, []string{config.FlagHolidaysEndpoint})

	debug, _ := cmd.Flags().GetBool("debug")
	log := logger.Nop()
	if debug {
		log = logger.New(logger.WithDebug(true), logger.WithFormat(logger.FormatPretty), logger.WithWriter(cmd.ErrOrStderr()))
	}

	return holidays.NewClient(v.GetString("client.holidays_endpoint"), log)
}

func parseDate(s string) (time.Time, error) {
	d, err := time.ParseInLocation(dateLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (want YYYY-MM-DD)", s)
	}
	return d, nil
}

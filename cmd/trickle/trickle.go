// Package tricklecmder
package tricklecmder

import (
	"github.com/spf13/cobra"

	configcmder "github.com/papercomputeco/trickle/cmd/trickle/config"
	holidayscmder "github.com/papercomputeco/trickle/cmd/trickle/holidays"
	servecmder "github.com/papercomputeco/trickle/cmd/trickle/serve"
	streamcmder "github.com/papercomputeco/trickle/cmd/trickle/stream"
	tuicmder "github.com/papercomputeco/trickle/cmd/trickle/tui"
	versioncmder "github.com/papercomputeco/trickle/cmd/version"
)

const trickleLongDesc string = `Trickle streams chat completions over Server-Sent Events and
releases them in readable fragments as they arrive.

Stream from a relay:
  trickle stream <prompt>   Print one streamed response
  trickle tui               Interactive streaming client

Run the relay:
  trickle serve             SSE producer and holidays API

Manage data and settings:
  trickle holidays          List, add, update and delete holidays
  trickle config            Get and set persistent configuration`

const trickleShortDesc string = "Trickle - incremental SSE streaming client"

func NewTrickleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "trickle",
		Short:        trickleShortDesc,
		Long:         trickleLongDesc,
		SilenceUsage: true,
	}

	// Global flags
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().String("config-dir", "", "Override path to .trickle/ config directory")

	// Add subcommands
	cmd.AddCommand(streamcmder.NewStreamCmd())
	cmd.AddCommand(tuicmder.NewTuiCmd())
	cmd.AddCommand(servecmder.NewServeCmd())
	cmd.AddCommand(holidayscmder.NewHolidaysCmd())
	cmd.AddCommand(configcmder.NewConfigCmd())
	cmd.AddCommand(versioncmder.NewVersionCmd())

	return cmd
}

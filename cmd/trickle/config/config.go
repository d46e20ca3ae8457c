// Package configcmder provides the config command for managing persistent
// trickle configuration stored in the .trickle/ directory.
package configcmder

import (
	"github.com/spf13/cobra"
)

const configLongDesc string = `Manage persistent trickle configuration.

Configuration is stored as config.toml in the .trickle/ directory and provides
default values for command flags. CLI flags and TRICKLE_* environment
variables always take precedence over config file values.

Keys use dotted notation matching the TOML section structure:
  client.endpoint, client.holidays_endpoint, client.model, client.temperature,
  client.max_tokens, client.top_p, client.prompt_suffix,
  flush.strategy, flush.threshold, flush.pace_ms,
  relay.listen, relay.upstream, relay.script, relay.sentinel, relay.token_delay_ms,
  storage.driver, storage.dsn,
  eventstream.provider, eventstream.brokers, eventstream.topic

Use subcommands to get, set, or list configuration values:
  trickle config set <key> <value>    Set a configuration value
  trickle config get <key>            Get a configuration value
  trickle config list                 List all configuration values

Examples:
  trickle config set flush.strategy once
  trickle config set client.model llama3
  trickle config get client.endpoint
  trickle config list`

const configShortDesc string = "Manage persistent trickle configuration"

func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: configShortDesc,
		Long:  configLongDesc,
	}

	cmd.AddCommand(newSetCmd())
	cmd.AddCommand(newGetCmd())
	cmd.AddCommand(newListCmd())

	return cmd
}

// Package tuicmder provides the tui command: an interactive terminal client
// that streams chat completions through a single stream session.
package tuicmder

import (
	"context"
	"fmt"
	"os"

	bubbletea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"github.com/papercomputeco/trickle/cmd/trickle/sessionopts"
	"github.com/papercomputeco/trickle/pkg/logger"
	"github.com/papercomputeco/trickle/pkg/session"
	"github.com/papercomputeco/trickle/pkg/transport"
)

func init() {
	// Force TrueColor profile to fix lipgloss color detection issue
	// See: https://github.com/charmbracelet/lipgloss/issues/439
	renderer := lipgloss.NewRenderer(os.Stdout, termenv.WithProfile(termenv.TrueColor))
	renderer.SetColorProfile(termenv.TrueColor)
	lipgloss.SetDefaultRenderer(renderer)
}

type tuiCommander struct {
	opts  sessionopts.Options
	debug bool
}

const tuiLongDesc string = `Open an interactive streaming client.

Type a prompt and press enter to stream the response. The header shows the
session state, and the footer counts emitted chunks, characters and frames.

Keys:
  enter    start streaming the prompt
  esc      stop the running stream
  ctrl+l   clear the finished session
  ctrl+c   quit

Examples:
  trickle tui
  trickle tui --strategy once -e http://localhost:8080/chat/stream/test-flux`

const tuiShortDesc string = "Interactive streaming client"

func NewTuiCmd() *cobra.Command {
	cmder := &tuiCommander{}

	cmd := &cobra.Command{
		Use:   "tui",
		Short: tuiShortDesc,
		Long:  tuiLongDesc,
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.opts.Load(cmd)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %w", err)
			}

			return cmder.run(cmd.Context())
		},
	}

	cmder.opts.AddFlags(cmd)

	return cmd
}

func (c *tuiCommander) run(ctx context.Context) error {
	// Logs go to a file while the alternate screen is active.
	log := logger.Nop()
	if c.debug {
		f, err := os.OpenFile("trickle-tui.log", os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return fmt.Errorf("opening debug log: %w", err)
		}
		defer f.Close()
		log = logger.New(logger.WithDebug(true), logger.WithWriter(f))
	}

	cfg, err := c.opts.SessionConfig()
	if err != nil {
		return err
	}

	publisher, err := c.opts.Publisher(log)
	if err != nil {
		return fmt.Errorf("creating event publisher: %w", err)
	}
	defer publisher.Close()

	sess := session.New(transport.NewHTTPOpener(transport.WithLogger(log)), cfg,
		session.WithLogger(log),
		session.WithPublisher(publisher),
	)
	defer sess.Stop()

	model := newTUIModel(ctx, sess, cfg)
	defer model.unsubscribe()

	program := bubbletea.NewProgram(model,
		bubbletea.WithContext(ctx),
		bubbletea.WithAltScreen(),
	)
	_, err = program.Run()
	return err
}

// Package streamcmder provides the stream command, which sends one prompt and
// prints the response fragments as the flush policy releases them.
package streamcmder

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/papercomputeco/trickle/cmd/trickle/sessionopts"
	"github.com/papercomputeco/trickle/pkg/cliui"
	"github.com/papercomputeco/trickle/pkg/logger"
	"github.com/papercomputeco/trickle/pkg/session"
	"github.com/papercomputeco/trickle/pkg/transport"
)

type streamCommander struct {
	opts    sessionopts.Options
	timeout time.Duration
	render  bool
	quiet   bool
	debug   bool

	out io.Writer
}

const streamLongDesc string = `Send a prompt to a streaming chat endpoint and print the response as it arrives.

Raw bytes are reassembled into lines, "data:" frames are parsed, and the
payloads are released in readable fragments by the flush policy:
  eager   flush on punctuation, list markers and every 15 buffered characters
  once    hold everything back and print one fragment at the end

Press Ctrl+C to stop the stream; the session ends aborted and the text
received so far is kept.

Examples:
  trickle stream "Tell me about the highest peaks of Bulgaria"
  trickle stream --strategy once --render "Write a haiku about rivers"
  trickle stream -e http://localhost:8080/chat/stream/test-flux --timeout 10s "hi"`

const streamShortDesc string = "Stream one chat completion to the terminal"

func NewStreamCmd() *cobra.Command {
	cmder := &streamCommander{}

	cmd := &cobra.Command{
		Use:   "stream <prompt>",
		Short: streamShortDesc,
		Long:  streamLongDesc,
		Args:  cobra.MinimumNArgs(1),
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.opts.Load(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %w", err)
			}
			cmder.out = cmd.OutOrStdout()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return cmder.run(ctx, strings.Join(args, " "))
		},
	}

	cmder.opts.AddFlags(cmd)
	cmd.Flags().DurationVar(&cmder.timeout, "timeout", 0, "Abort the stream after this long (0 = no limit)")
	cmd.Flags().BoolVar(&cmder.render, "render", false, "Re-render the completed text as markdown when stdout is a terminal")
	cmd.Flags().BoolVarP(&cmder.quiet, "quiet", "q", false, "Print only the response text, without the stats line")

	return cmd
}

// run streams prompt until the session ends. Cancelling ctx stops the
// session cooperatively, so an interrupted stream is not an error.
func (c *streamCommander) run(ctx context.Context, prompt string) error {
	// Session logs would interleave with the response on the terminal, so
	// they are only shown with --debug.
	log := logger.Nop()
	if c.debug {
		log = logger.New(
			logger.WithDebug(true),
			logger.WithFormat(logger.FormatPretty),
			logger.WithWriter(os.Stderr),
		)
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

	opener := transport.NewHTTPOpener(transport.WithLogger(log))

	sess := session.New(opener, cfg,
		session.WithLogger(log),
		session.WithPublisher(publisher),
		session.WithObserver(session.ObserverFunc(func(u session.Update) {
			if u.Fragment != "" {
				fmt.Fprint(c.out, u.Fragment)
			}
		})),
	)

	// The session context carries only the deadline. Interrupts go through
	// Stop so the session ends Aborted rather than Failed.
	sessCtx := context.Background()
	if c.timeout > 0 {
		var cancel context.CancelFunc
		sessCtx, cancel = context.WithTimeout(sessCtx, c.timeout)
		defer cancel()
	}

	if err := sess.Start(sessCtx, prompt); err != nil {
		return err
	}

	go func() {
		select {
		case <-ctx.Done():
			sess.Stop()
		case <-sess.Done():
		}
	}()

	snap, err := sess.Wait(context.Background())
	if err != nil {
		return err
	}
	fmt.Fprintln(c.out)

	if c.render && snap.Text != "" && isTerminal(c.out) {
		rendered, err := cliui.RenderMarkdown(snap.Text)
		if err != nil {
			log.Debug("markdown render failed", "error", err)
		} else {
			fmt.Fprint(c.out, rendered)
		}
	}

	if !c.quiet {
		fmt.Fprintf(c.out, "\n  %s\n", cliui.Stats(snap))
	}

	if snap.State == session.Failed {
		if snap.LastError != nil {
			return snap.LastError
		}
		return errors.New("stream failed")
	}
	return nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

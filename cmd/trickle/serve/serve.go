// Package servecmder provides the serve command, which runs the relay: the
// SSE producer trickle clients stream from, plus the holidays API.
package servecmder

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/trickle/pkg/cliui"
	"github.com/papercomputeco/trickle/pkg/config"
	"github.com/papercomputeco/trickle/pkg/holidays"
	holidaysutils "github.com/papercomputeco/trickle/pkg/holidays/utils"
	"github.com/papercomputeco/trickle/pkg/logger"
	"github.com/papercomputeco/trickle/relay"
)

type serveCommander struct {
	listen     string
	upstream   string
	script     string
	sentinel   bool
	tokenDelay uint
	dump       string
	logFile    string
	logFormat  string

	storageDriver string
	storageDSN    string

	debug  bool
	logger *slog.Logger
}

var registryKeys = []string{
	config.FlagListen,
	config.FlagUpstream,
	config.FlagScript,
	config.FlagSentinel,
	config.FlagTokenDelay,
	config.FlagLogFormat,
	config.FlagStorageDriver,
	config.FlagStorageDSN,
}

const serveLongDesc string = `Run the trickle relay server.

The relay produces the SSE streams trickle clients consume:
  POST /chat/stream/flux        word-grouped events with id and event type
  POST /chat/stream/test-flux   one bare data frame per token
  GET  /chat/stream/ticker      numbered messages (?count=20&interval=1s)

Tokens come from an OpenAI-compatible upstream when --upstream is set,
otherwise from a script: the built-in one, or the --script file, which is
reloaded whenever it changes.

The /holidays CRUD routes are served from the configured store
(memory, sqlite or postgres).

Examples:
  trickle serve
  trickle serve --upstream http://localhost:11434
  trickle serve --script ./story.txt --token-delay 50
  trickle serve --storage sqlite --dsn ./holidays.db`

const serveShortDesc string = "Run the trickle relay server"

func NewServeCmd() *cobra.Command {
	cmder := &serveCommander{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: serveShortDesc,
		Long:  serveLongDesc,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			v, err := config.InitViper(configDir)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			config.BindRegisteredFlags(v, cmd, config.Flags, registryKeys)

			cmder.listen = v.GetString("relay.listen")
			cmder.upstream = v.GetString("relay.upstream")
			cmder.script = v.GetString("relay.script")
			cmder.sentinel = v.GetBool("relay.sentinel")
			cmder.tokenDelay = v.GetUint("relay.token_delay_ms")
			cmder.logFormat = v.GetString("relay.log_format")
			cmder.storageDriver = v.GetString("storage.driver")
			cmder.storageDSN = v.GetString("storage.dsn")
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %w", err)
			}

			return cmder.run()
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagListen, &cmder.listen)
	config.AddStringFlag(cmd, config.Flags, config.FlagUpstream, &cmder.upstream)
	config.AddStringFlag(cmd, config.Flags, config.FlagScript, &cmder.script)
	config.AddBoolFlag(cmd, config.Flags, config.FlagSentinel, &cmder.sentinel)
	config.AddUintFlag(cmd, config.Flags, config.FlagTokenDelay, &cmder.tokenDelay)
	config.AddStringFlag(cmd, config.Flags, config.FlagLogFormat, &cmder.logFormat)
	config.AddStringFlag(cmd, config.Flags, config.FlagStorageDriver, &cmder.storageDriver)
	config.AddStringFlag(cmd, config.Flags, config.FlagStorageDSN, &cmder.storageDSN)
	cmd.Flags().StringVar(&cmder.dump, "dump", "", "Append raw upstream SSE bytes to this file")
	cmd.Flags().StringVar(&cmder.logFile, "log-file", "", "Also append JSON logs to this file")

	return cmd
}

func (c *serveCommander) run() error {
	closeLogger, err := c.setupLogger()
	if err != nil {
		return err
	}
	defer closeLogger()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	generator, closeGenerator, err := c.newGenerator(ctx)
	if err != nil {
		return err
	}
	defer closeGenerator()

	var store holidays.Store
	err = cliui.Step(os.Stderr, "Opening "+c.storeName()+" holiday store", func() error {
		var err error
		store, err = holidaysutils.NewStore(ctx, &holidaysutils.NewStoreOpts{
			Driver: c.storageDriver,
			DSN:    c.storageDSN,
			Logger: c.logger,
		})
		return err
	})
	if err != nil {
		return fmt.Errorf("creating holiday store: %w", err)
	}
	defer store.Close()

	srv, err := relay.New(relay.Config{
		ListenAddr: c.listen,
		Sentinel:   c.sentinel,
		Generator:  generator,
		Holidays:   store,
	}, c.logger)
	if err != nil {
		return fmt.Errorf("creating relay: %w", err)
	}
	defer srv.Close()

	c.logger.Info("holiday store ready", "driver", c.storeName())

	errChan := make(chan error, 1)
	go func() {
		if err := srv.Run(); err != nil {
			errChan <- fmt.Errorf("relay error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case err := <-errChan:
		return err
	case sig := <-sigChan:
		c.logger.Info("received signal, shutting down", "signal", sig.String())
		return nil
	}
}

// setupLogger writes records to stdout in the configured format and, with
// --log-file, appends a JSON copy of each one to the file.
func (c *serveCommander) setupLogger() (func(), error) {
	format, err := logger.ParseFormat(c.logFormat)
	if err != nil {
		return nil, err
	}
	opts := []logger.Option{logger.WithDebug(c.debug), logger.WithFormat(format)}

	closer := func() {}
	if c.logFile != "" {
		f, err := os.OpenFile(c.logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("opening log file: %w", err)
		}
		opts = append(opts, logger.WithJSONCopy(f))
		closer = func() { _ = f.Close() }
	}

	c.logger = logger.New(opts...)
	return closer, nil
}

func (c *serveCommander) storeName() string {
	if c.storageDriver == "" {
		return "memory"
	}
	return c.storageDriver
}

// newGenerator picks the token source. The returned func releases whatever
// the generator holds open.
func (c *serveCommander) newGenerator(ctx context.Context) (relay.Generator, func(), error) {
	delay := time.Duration(c.tokenDelay) * time.Millisecond

	if c.upstream != "" {
		opts := []relay.UpstreamOption{relay.WithUpstreamLogger(c.logger)}
		closer := func() {}

		if c.dump != "" {
			f, err := os.OpenFile(c.dump, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
			if err != nil {
				return nil, nil, fmt.Errorf("opening dump file: %w", err)
			}
			opts = append(opts, relay.WithDump(syncWriter{f}))
			closer = func() { _ = f.Close() }
		}

		c.logger.Info("relaying upstream tokens", "upstream", c.upstream)
		return relay.NewUpstreamGenerator(c.upstream, opts...), closer, nil
	}

	if c.script != "" {
		g, err := relay.LoadScriptGenerator(c.script, delay, c.logger)
		if err != nil {
			return nil, nil, err
		}
		go func() {
			if err := g.Watch(ctx); err != nil {
				c.logger.Warn("script watcher stopped", "error", err)
			}
		}()
		return g, func() {}, nil
	}

	c.logger.Info("replaying built-in script", "token_delay", delay)
	return relay.NewScriptGenerator(relay.DefaultScript, delay), func() {}, nil
}

// syncWriter fsyncs after every write.
type syncWriter struct {
	f *os.File
}

func (w syncWriter) Write(p []byte) (int, error) {
	n, err := w.f.Write(p)
	if err != nil {
		return n, err
	}
	return n, w.f.Sync()
}

var _ io.Writer = syncWriter{}

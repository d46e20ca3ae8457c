package relay

import (
	"context"
	"errors"
	"expvar"
	"fmt"
	"log/slog"
	"net"
	"sync"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"

	"github.com/papercomputeco/trickle/pkg/logger"
)

// Server is the relay: an SSE producer for trickle clients.
type Server struct {
	config Config
	logger *slog.Logger
	app    *fiber.App

	// ctx is cancelled by Close to end every running stream.
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// errorResponse is the JSON body of every failed request.
type errorResponse struct {
	Error string `json:"error"`
}

// New creates a relay server. The generator is required; a nil logger discards.
func New(config Config, log *slog.Logger) (*Server, error) {
	if config.Generator == nil {
		return nil, errors.New("relay generator is required")
	}
	if config.WordLimit < 1 {
		config.WordLimit = DefaultWordLimit
	}
	if log == nil {
		log = logger.Nop()
	}

	app := fiber.New(fiber.Config{
		// Disable startup message for cleaner logs
		DisableStartupMessage: true,
	})

	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		config: config,
		logger: log,
		app:    app,
		ctx:    ctx,
		cancel: cancel,
	}

	app.Get("/ping", s.handlePing)
	app.Get("/debug/vars", adaptor.HTTPHandler(expvar.Handler()))

	chat := app.Group("/chat/stream")
	chat.Post("/flux", s.handleFlux)
	chat.Post("/test-flux", s.handleTestFlux)
	chat.Get("/ticker", s.handleTicker)

	if config.Holidays != nil {
		h := app.Group("/holidays", compress.New())
		h.Get("/", s.handleListHolidays)
		h.Get("/:id", s.handleGetHoliday)
		h.Post("/", s.handleCreateHoliday)
		h.Put("/", s.handleUpdateHoliday)
		h.Delete("/", s.handleDeleteHoliday)
	}

	return s, nil
}

// App exposes the fiber app, mainly for app.Test in tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// Run starts the relay on the configured address.
func (s *Server) Run() error {
	s.logger.Info("starting relay server",
		"listen", s.config.ListenAddr,
		"sentinel", s.config.Sentinel,
		"holidays", s.config.Holidays != nil,
	)
	return s.app.Listen(s.config.ListenAddr)
}

// RunWithListener starts the relay using the provided listener.
func (s *Server) RunWithListener(listener net.Listener) error {
	s.logger.Info("starting relay server",
		"listen", listener.Addr().String(),
		"sentinel", s.config.Sentinel,
	)
	return s.app.Listener(listener)
}

// Close ends running streams, shuts the server down and waits for stream
// goroutines to exit.
func (s *Server) Close() error {
	s.cancel()
	err := s.app.Shutdown()
	s.wg.Wait()
	if err != nil {
		return fmt.Errorf("shutting down relay: %w", err)
	}
	return nil
}

func (s *Server) handlePing(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

func fail(c *fiber.Ctx, status int, err error) error {
	return c.Status(status).JSON(errorResponse{Error: err.Error()})
}

// Package relay serves the streaming chat endpoints a trickle client reads,
// plus the holidays CRUD routes, on fiber.
package relay

import (
	"time"

	"github.com/papercomputeco/trickle/pkg/holidays"
)

// Config is the relay server configuration.
type Config struct {
	// ListenAddr is the address to listen on (e.g., ":8080")
	ListenAddr string

	// Sentinel ends every stream with a data:[DONE] frame.
	Sentinel bool

	// WordLimit bounds the word buffer of the flux endpoint.
	WordLimit int

	// Generator produces completion tokens. Required.
	Generator Generator

	// Holidays backs the /holidays routes. Nil disables them.
	Holidays holidays.Store
}

const (
	defaultTickerCount    = 20
	maxTickerCount        = 1000
	defaultTickerInterval = time.Second
	minTickerInterval     = time.Millisecond

	// defaultTestPrompt is used by test-flux when the request carries no text.
	defaultTestPrompt = "Tell me in detail about the 10 highest mountains of Bulgaria, " +
		"their history, climbing routes and nature."
)

// Package header decides which client request headers the relay passes on
// to an upstream provider.
//
//	Client <--> Relay <--> Upstream LLM Provider
//
// Each leg negotiates compression, hops and framing independently, so only
// end-to-end headers such as Authorization cross over.
package header

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
)

// SessionIDHeader carries the client's stream session id.
const SessionIDHeader = "X-Session-Id"

// skipRequest is the set of request headers (client --> relay --> upstream)
// that are not forwarded.
var skipRequest = map[string]struct{}{
	// Hop-by-hop headers: only meaningful for a single transport-level connection.
	"Connection": {},
	"Keep-Alive": {},

	// Go's http.Transport sets Host from the upstream URL.
	"Host": {},

	// Stripped so Go's http.Transport negotiates gzip itself and
	// transparently decompresses.
	"Accept-Encoding": {},

	// The upstream body is re-encoded by the relay, so its framing and
	// content headers are set there.
	"Content-Length": {},
	"Content-Type":   {},
	"Accept":         {},
	"Cache-Control":  {},

	// Session tracking is between the client and the relay.
	SessionIDHeader: {},
}

// Forward returns the headers of the request in c that should reach the
// upstream. The result is a copy, safe to use after the handler returns.
func Forward(c *fiber.Ctx) http.Header {
	out := http.Header{}
	c.Request().Header.VisitAll(func(key, value []byte) {
		k := http.CanonicalHeaderKey(string(key))
		if _, skip := skipRequest[k]; !skip {
			out.Add(k, string(value))
		}
	})
	return out
}

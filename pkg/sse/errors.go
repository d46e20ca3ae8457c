package sse

import (
	"errors"
	"fmt"
)

// ErrProtocol is reserved for frame-level violations. The parser is
// permissive and currently never returns it: unknown lines are dropped.
var ErrProtocol = errors.New("sse protocol violation")

// DecodeError reports a byte sequence that is not valid UTF-8.
type DecodeError struct {
	// Offset is the position of the offending byte counted from the first
	// byte ever fed to the LineBuffer.
	Offset int64
}

func (e DecodeError) Error() string {
	return fmt.Sprintf("invalid UTF-8 sequence at byte offset %d", e.Offset)
}

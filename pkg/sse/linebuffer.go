package sse

import (
	"bytes"
	"strings"
	"unicode/utf8"
)

// LineBuffer reassembles complete text lines from a byte stream delivered in
// arbitrary slices. Bytes are decoded as UTF-8; a multi-byte sequence split
// across two Feed calls is held back until it completes.
//
// Lines end at "\n", "\r\n" or a lone "\r". Feeding a stream in one piece or
// in any number of pieces yields the same sequence of lines.
//
// A LineBuffer is not safe for concurrent use.
type LineBuffer struct {
	// undecoded holds the tail of the last chunk when it stopped in the
	// middle of a UTF-8 sequence. It is never longer than utf8.UTFMax-1.
	undecoded []byte

	// carry is the partial line waiting for its terminator.
	carry strings.Builder

	// afterCR is set when the last decoded byte was '\r'. A '\n' arriving
	// next belongs to the same terminator and must not produce an empty line.
	afterCR bool

	// fed counts every byte handed to Feed, used for DecodeError offsets.
	fed int64
}

// NewLineBuffer returns an empty LineBuffer.
func NewLineBuffer() *LineBuffer {
	return &LineBuffer{}
}

// Feed decodes chunk, appends it to the carried partial line, and returns
// every line completed by it in arrival order. The trailing segment, which
// may be empty, is retained until a later Feed or Flush.
//
// On a DecodeError the lines completed before the invalid byte are still
// returned, so the result does not depend on where the stream was sliced.
func (b *LineBuffer) Feed(chunk []byte) ([]string, error) {
	base := b.fed - int64(len(b.undecoded))
	b.fed += int64(len(chunk))

	data := chunk
	if len(b.undecoded) > 0 {
		data = make([]byte, 0, len(b.undecoded)+len(chunk))
		data = append(data, b.undecoded...)
		data = append(data, chunk...)
		b.undecoded = nil
	}

	valid, tail, err := splitValid(data, base)
	if err != nil {
		return b.split(valid), err
	}
	if len(tail) > 0 {
		b.undecoded = append([]byte(nil), tail...)
	}

	return b.split(valid), nil
}

// Flush signals the end of the stream. A non-empty carried line is returned
// as the final complete line. A multi-byte sequence left unfinished by the
// stream is reported as a DecodeError.
func (b *LineBuffer) Flush() ([]string, error) {
	if len(b.undecoded) > 0 {
		offset := b.fed - int64(len(b.undecoded))
		b.undecoded = nil
		return nil, DecodeError{Offset: offset}
	}

	b.afterCR = false
	if b.carry.Len() == 0 {
		return nil, nil
	}

	line := b.carry.String()
	b.carry.Reset()
	return []string{line}, nil
}

// Pending returns the carried partial line without consuming it.
func (b *LineBuffer) Pending() string {
	return b.carry.String()
}

// Reset discards all carried state.
func (b *LineBuffer) Reset() {
	b.undecoded = nil
	b.carry.Reset()
	b.afterCR = false
	b.fed = 0
}

// split cuts already-validated text on line terminators. Terminator bytes
// never occur inside a multi-byte UTF-8 sequence, so a byte scan is enough.
func (b *LineBuffer) split(text []byte) []string {
	var lines []string

	for len(text) > 0 {
		if b.afterCR {
			b.afterCR = false
			if text[0] == '\n' {
				text = text[1:]
				continue
			}
		}

		i := bytes.IndexAny(text, "\r\n")
		if i < 0 {
			b.carry.Write(text)
			break
		}

		b.carry.Write(text[:i])
		lines = append(lines, b.carry.String())
		b.carry.Reset()

		if text[i] == '\r' {
			b.afterCR = true
		}
		text = text[i+1:]
	}

	return lines
}

// splitValid returns the longest prefix of data made of complete UTF-8
// sequences and the incomplete tail after it. An invalid sequence is a
// DecodeError returned with the valid text before it; base is the stream
// offset of data[0].
func splitValid(data []byte, base int64) ([]byte, []byte, error) {
	i := 0
	for i < len(data) {
		c := data[i]
		if c < utf8.RuneSelf {
			i++
			continue
		}

		r, size := utf8.DecodeRune(data[i:])
		if r == utf8.RuneError && size <= 1 {
			if !utf8.FullRune(data[i:]) {
				return data[:i], data[i:], nil
			}
			return data[:i], nil, DecodeError{Offset: base + int64(i)}
		}
		i += size
	}

	return data, nil, nil
}

package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strings"
	"sync"

	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"

	"github.com/papercomputeco/trickle/pkg/logger"
	"github.com/papercomputeco/trickle/pkg/utils"
)

const (
	defaultReadSize   = 4096
	errorExcerptBytes = 512
)

// HTTPOpener opens streams over net/http.
type HTTPOpener struct {
	client   *http.Client
	readSize int
	header   http.Header
	logger   *slog.Logger
}

// Option configures an HTTPOpener.
type Option func(*HTTPOpener)

// WithHTTPClient sets a custom HTTP client. The client should not carry a
// Timeout: a deadline belongs on the context.
func WithHTTPClient(c *http.Client) Option {
	return func(o *HTTPOpener) {
		o.client = c
	}
}

// WithReadSize sets the maximum size of a single chunk.
func WithReadSize(n int) Option {
	return func(o *HTTPOpener) {
		if n > 0 {
			o.readSize = n
		}
	}
}

// WithHeader adds a header sent with every request.
func WithHeader(key, value string) Option {
	return func(o *HTTPOpener) {
		o.header.Add(key, value)
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *HTTPOpener) {
		o.logger = l
	}
}

// NewHTTPOpener returns an HTTPOpener.
func NewHTTPOpener(opts ...Option) *HTTPOpener {
	o := &HTTPOpener{
		client:   &http.Client{},
		readSize: defaultReadSize,
		header:   http.Header{},
		logger:   logger.Nop(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Open sends req and returns the response body as a Stream once a 2xx
// status has been received.
func (o *HTTPOpener) Open(ctx context.Context, req *Request) (Stream, error) {
	if ctx.Err() != nil {
		return nil, ErrCancelled
	}

	var body io.Reader
	if req.Body != nil {
		payload, err := json.Marshal(req.Body)
		if err != nil {
			return nil, &TransportError{Op: "encode", Err: err}
		}
		body = bytes.NewReader(payload)
	}

	method := req.Method
	if method == "" {
		method = http.MethodPost
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, req.URL, body)
	if err != nil {
		return nil, &TransportError{Op: "connect", Err: err}
	}
	for k, vs := range o.header {
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}
	for k, vs := range req.Header {
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}
	httpReq.Header.Set("Accept", "text/event-stream")
	httpReq.Header.Set("Cache-Control", "no-cache")
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	resp, err := o.client.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ErrCancelled
		}
		return nil, &TransportError{Op: "connect", Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		excerpt, _ := io.ReadAll(io.LimitReader(resp.Body, errorExcerptBytes))
		resp.Body.Close()
		return nil, &TransportError{
			Op:         "status",
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("%s: %s", resp.Status, utils.Truncate(strings.TrimSpace(string(excerpt)), 200)),
		}
	}

	reader, err := decodeCharset(resp)
	if err != nil {
		resp.Body.Close()
		return nil, err
	}

	o.logger.Debug("stream opened",
		"url", req.URL,
		"status", resp.StatusCode,
		"content_type", resp.Header.Get("Content-Type"),
	)

	return &httpStream{
		ctx:    ctx,
		body:   resp.Body,
		reader: reader,
		buf:    make([]byte, o.readSize),
	}, nil
}

// decodeCharset wraps the body in a UTF-8 decoder when the response
// declares another charset.
func decodeCharset(resp *http.Response) (io.Reader, error) {
	_, params, err := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if err != nil {
		return resp.Body, nil
	}

	charset := strings.ToLower(params["charset"])
	if charset == "" || charset == "utf-8" || charset == "utf8" {
		return resp.Body, nil
	}

	enc, err := htmlindex.Get(charset)
	if err != nil {
		return nil, &TransportError{Op: "charset", Err: err}
	}
	return transform.NewReader(resp.Body, enc.NewDecoder()), nil
}

type httpStream struct {
	ctx    context.Context
	body   io.ReadCloser
	reader io.Reader
	buf    []byte
	seq    uint64

	// pending is an error that arrived together with the last data.
	pending error

	closeOnce sync.Once
	closeErr  error
}

func (s *httpStream) Next(ctx context.Context) (Chunk, error) {
	if ctx.Err() != nil || s.ctx.Err() != nil {
		return Chunk{}, ErrCancelled
	}
	if s.pending != nil {
		return Chunk{}, s.readErr(ctx, s.pending)
	}

	for {
		n, err := s.reader.Read(s.buf)
		if n > 0 {
			s.pending = err
			s.seq++
			return Chunk{Seq: s.seq, Data: bytes.Clone(s.buf[:n])}, nil
		}
		if err != nil {
			s.pending = err
			return Chunk{}, s.readErr(ctx, err)
		}
	}
}

func (s *httpStream) readErr(ctx context.Context, err error) error {
	switch {
	case ctx.Err() != nil || s.ctx.Err() != nil:
		return ErrCancelled
	case errors.Is(err, io.EOF):
		return io.EOF
	default:
		return &TransportError{Op: "read", Err: err}
	}
}

func (s *httpStream) Close() error {
	s.closeOnce.Do(func() {
		s.closeErr = s.body.Close()
	})
	return s.closeErr
}

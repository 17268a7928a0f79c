package udstransport

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"path"
	"sync"
	"time"

	"github.com/sufield/edgeauth/internal/httpwire"
	"github.com/sufield/edgeauth/internal/ports"
)

// UnixTransport sends each request over its own Unix domain socket connection.
//
// Thread Safety: UnixTransport is safe for concurrent use; calls share no state.
type UnixTransport struct {
	socketPath  string
	host        string
	dialTimeout time.Duration
	logger      *slog.Logger
}

// NewUnixTransport returns a transport for the socket at socketPath.
//
// Requests without a Host header get the last element of socketPath, unless
// WithHost says otherwise.
func NewUnixTransport(socketPath string, opts ...Option) *UnixTransport {
	o := newOptions(opts)
	host := o.host
	if host == "" {
		host = path.Base(socketPath)
	}
	return &UnixTransport{
		socketPath:  socketPath,
		host:        host,
		dialTimeout: o.dialTimeout,
		logger:      o.logger,
	}
}

// RoundTrip dials the socket, writes req and parses the response.
//
// On success the caller must read resp.Body to io.EOF or close it. Until then
// ctx stays attached: cancelling it closes the connection. On any error the
// connection is closed before RoundTrip returns.
func (t *UnixTransport) RoundTrip(ctx context.Context, req *httpwire.Request) (*httpwire.Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, canceled(err)
	}

	wreq := *req
	if wreq.Host == "" {
		wreq.Host = t.host
	}
	header, err := wreq.SerializeHeader()
	if err != nil {
		return nil, err
	}

	dialer := net.Dialer{Timeout: t.dialTimeout}
	conn, err := dialer.DialContext(ctx, "unix", t.socketPath)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, canceled(ctxErr)
		}
		t.logger.DebugContext(ctx, "dial failed", slog.String("socket", t.socketPath), slog.Any("error", err))
		return nil, &ConnectionError{Op: "dial", Addr: t.socketPath, Err: err}
	}

	lr := httpwire.NewLineReader(conn)
	stop := context.AfterFunc(ctx, func() {
		_ = lr.Close()
	})
	fail := func(op string, err error) (*httpwire.Response, error) {
		stop()
		_ = lr.Close()
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, canceled(ctxErr)
		}
		t.logger.DebugContext(ctx, "round trip failed",
			slog.String("socket", t.socketPath),
			slog.String("op", op),
			slog.Any("error", err))
		if isProtocolError(err) {
			return nil, err
		}
		return nil, &ConnectionError{Op: op, Addr: t.socketPath, Err: err}
	}

	if _, err := lr.Write(header); err != nil {
		return fail("write", err)
	}
	if len(wreq.Body) > 0 {
		if _, err := lr.Write(wreq.Body); err != nil {
			return fail("write", err)
		}
	}

	resp, err := httpwire.ReadResponse(lr, &wreq)
	if err != nil {
		return fail("read", err)
	}

	t.logger.DebugContext(ctx, "workload api response",
		slog.String("method", wreq.Method),
		slog.String("target", wreq.Target),
		slog.Int("status", resp.StatusCode),
		slog.Bool("chunked", resp.Chunked))

	resp.Body = &watchedBody{body: resp.Body, ctx: ctx, stop: stop}
	return resp, nil
}

// isProtocolError reports whether err came from parsing rather than from the
// socket itself.
func isProtocolError(err error) bool {
	return errors.Is(err, httpwire.ErrMalformedResponse) ||
		errors.Is(err, httpwire.ErrTruncatedStream) ||
		errors.Is(err, httpwire.ErrLineTooLong)
}

// watchedBody keeps the cancellation watcher armed until the body is done
// and reports reads interrupted by cancellation as ErrCanceled.
type watchedBody struct {
	body io.ReadCloser
	ctx  context.Context
	stop func() bool

	once sync.Once
}

func (b *watchedBody) Read(p []byte) (int, error) {
	n, err := b.body.Read(p)
	if err == nil {
		return n, nil
	}
	b.disarm()
	if !errors.Is(err, io.EOF) {
		if ctxErr := b.ctx.Err(); ctxErr != nil {
			return n, canceled(ctxErr)
		}
	}
	return n, err
}

func (b *watchedBody) Close() error {
	b.disarm()
	return b.body.Close()
}

func (b *watchedBody) disarm() {
	b.once.Do(func() { b.stop() })
}

var _ ports.Transport = (*UnixTransport)(nil)

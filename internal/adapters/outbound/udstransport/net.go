package udstransport

import (
	"bytes"
	"context"
	"log/slog"
	"net"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/sufield/edgeauth/internal/httpwire"
	"github.com/sufield/edgeauth/internal/ports"
)

// NetTransport sends requests to an http or https endpoint through net/http.
//
// Thread Safety: NetTransport is safe for concurrent use.
type NetTransport struct {
	baseURL string
	client  *http.Client
	logger  *slog.Logger
}

// NewNetTransport returns a transport whose request targets are appended to
// baseURL (for example "https://edgelet:443").
func NewNetTransport(baseURL string, opts ...Option) *NetTransport {
	o := newOptions(opts)

	client := o.httpClient
	if client == nil {
		transport := http.DefaultTransport.(*http.Transport).Clone()
		if o.tlsConfig != nil {
			transport.TLSClientConfig = o.tlsConfig
		}
		transport.DialContext = (&net.Dialer{Timeout: o.dialTimeout, KeepAlive: 30 * time.Second}).DialContext
		client = &http.Client{Transport: transport}
	}

	return &NetTransport{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  client,
		logger:  o.logger,
	}
}

// RoundTrip performs req with net/http and converts the result.
func (t *NetTransport) RoundTrip(ctx context.Context, req *httpwire.Request) (*httpwire.Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, canceled(err)
	}

	url := t.baseURL + req.Target
	hreq, err := http.NewRequestWithContext(ctx, req.Method, url, bytes.NewReader(req.Body))
	if err != nil {
		return nil, &ConnectionError{Op: "do", Addr: url, Err: err}
	}
	hreq.ContentLength = int64(len(req.Body))
	if len(req.Body) == 0 {
		hreq.Body = http.NoBody
	}
	for _, f := range req.Header.Fields() {
		if strings.EqualFold(f.Name, "Host") {
			hreq.Host = f.Value
			continue
		}
		hreq.Header.Add(f.Name, f.Value)
	}
	hreq.Close = true

	hresp, err := t.client.Do(hreq)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, canceled(ctxErr)
		}
		t.logger.DebugContext(ctx, "request failed", slog.String("url", url), slog.Any("error", err))
		return nil, &ConnectionError{Op: "do", Addr: url, Err: err}
	}

	t.logger.DebugContext(ctx, "workload api response",
		slog.String("method", req.Method),
		slog.String("url", url),
		slog.Int("status", hresp.StatusCode))

	resp := convertResponse(hresp)
	resp.Body = &watchedBody{body: hresp.Body, ctx: ctx, stop: func() bool { return false }}
	return resp, nil
}

// convertResponse flattens hresp into an httpwire.Response. Header names are
// emitted in sorted order; values keep their order.
func convertResponse(hresp *http.Response) *httpwire.Response {
	resp := &httpwire.Response{
		StatusCode:    hresp.StatusCode,
		Reason:        strings.TrimPrefix(hresp.Status, strconv.Itoa(hresp.StatusCode)+" "),
		ProtoMajor:    hresp.ProtoMajor,
		ProtoMinor:    hresp.ProtoMinor,
		ContentLength: hresp.ContentLength,
		Chunked:       slices.Contains(hresp.TransferEncoding, "chunked"),
		Body:          hresp.Body,
	}
	if resp.Reason == hresp.Status {
		resp.Reason = http.StatusText(hresp.StatusCode)
	}

	names := make([]string, 0, len(hresp.Header))
	for name := range hresp.Header {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		for _, v := range hresp.Header[name] {
			resp.Header.Add(name, v)
		}
	}
	return resp
}

var _ ports.Transport = (*NetTransport)(nil)

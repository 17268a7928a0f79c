// Package testhelpers provides an in-process stand-in for the edge daemon's
// workload API, served over a real Unix domain socket.
//
// The daemon signs with HMAC-SHA256 under a per-daemon key and serves a
// generated trust bundle, so tests can check client output byte for byte:
//
//	func TestSign(t *testing.T) {
//	    d := testhelpers.StartWorkloadDaemon(t)
//	    client, _ := workloadapi.NewClient(d.URI(), nil)
//	    digest, _ := client.Sign(ctx, "2019-01-30", d.ModuleID, d.GenerationID, "primary", "HMACSHA256", data)
//	    assert.Equal(t, d.Digest(data), digest)
//	}
package testhelpers

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

const (
	// DefaultModuleID is the module the daemon recognizes unless configured otherwise.
	DefaultModuleID = "mymodule"

	// DefaultGenerationID is the generation the daemon recognizes unless configured otherwise.
	DefaultGenerationID = "gen1"

	// RequestIDHeader carries the id the daemon assigns to every request.
	RequestIDHeader = "X-Request-Id"

	signAlgorithm = "HMACSHA256"
)

// RecordedRequest is a request as the daemon saw it.
type RecordedRequest struct {
	ID     string
	Method string
	Target string
	Host   string
	Header http.Header
	Body   []byte
}

// WorkloadDaemon is a fake workload API listening on a Unix socket.
type WorkloadDaemon struct {
	// SocketPath is the listening socket.
	SocketPath string

	// ModuleID and GenerationID are the only identity the daemon signs for.
	ModuleID     string
	GenerationID string

	// TrustBundle is the PEM bundle returned by GET /trust-bundle.
	TrustBundle string

	keys   map[string][]byte
	logger *slog.Logger

	mu       sync.Mutex
	requests []RecordedRequest
	chunked  bool
	override *cannedResponse
	delay    time.Duration

	server   *http.Server
	listener net.Listener
	wg       sync.WaitGroup
}

type cannedResponse struct {
	status int
	body   string
}

// DaemonOption configures a WorkloadDaemon.
type DaemonOption func(*WorkloadDaemon)

// WithModule changes the module identity the daemon accepts.
func WithModule(moduleID, generationID string) DaemonOption {
	return func(d *WorkloadDaemon) {
		d.ModuleID = moduleID
		d.GenerationID = generationID
	}
}

// WithKey sets the HMAC key for keyID.
func WithKey(keyID string, key []byte) DaemonOption {
	return func(d *WorkloadDaemon) {
		d.keys[keyID] = key
	}
}

// WithTrustBundle replaces the generated trust bundle.
func WithTrustBundle(pem string) DaemonOption {
	return func(d *WorkloadDaemon) {
		d.TrustBundle = pem
	}
}

// WithChunkedResponses makes every 200 response use chunked transfer coding.
func WithChunkedResponses() DaemonOption {
	return func(d *WorkloadDaemon) {
		d.chunked = true
	}
}

// WithDaemonLogger sets the daemon's logger. A nil logger discards all output.
func WithDaemonLogger(logger *slog.Logger) DaemonOption {
	return func(d *WorkloadDaemon) {
		if logger != nil {
			d.logger = logger
		} else {
			d.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
		}
	}
}

// StartWorkloadDaemon starts a daemon and registers its shutdown with t.Cleanup.
func StartWorkloadDaemon(t testing.TB, opts ...DaemonOption) *WorkloadDaemon {
	t.Helper()

	// sun_path is limited to about 108 bytes; t.TempDir can be longer.
	dir, err := os.MkdirTemp("", "edgeauth")
	if err != nil {
		t.Fatalf("create socket dir: %v", err)
	}
	t.Cleanup(func() { _ = os.RemoveAll(dir) })

	d := &WorkloadDaemon{
		SocketPath:   filepath.Join(dir, "workload.sock"),
		ModuleID:     DefaultModuleID,
		GenerationID: DefaultGenerationID,
		keys: map[string][]byte{
			"primary":   []byte("primary-test-key"),
			"secondary": []byte("secondary-test-key"),
		},
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.TrustBundle == "" {
		d.TrustBundle = GenerateCABundle(t, 2)
	}

	listener, err := net.Listen("unix", d.SocketPath)
	if err != nil {
		t.Fatalf("listen on %s: %v", d.SocketPath, err)
	}
	d.listener = listener
	d.server = &http.Server{
		Handler:           d.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		if err := d.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			d.logger.Error("workload daemon error", "error", err, "socket", d.SocketPath)
		}
	}()

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = d.server.Shutdown(ctx)
		d.wg.Wait()
	})
	return d
}

// URI returns the daemon's endpoint as a unix:// URI.
func (d *WorkloadDaemon) URI() string {
	return "unix://" + d.SocketPath
}

// Digest returns the signature the daemon produces for data under the primary key.
func (d *WorkloadDaemon) Digest(data []byte) []byte {
	return d.DigestWithKey("primary", data)
}

// DigestWithKey returns the signature the daemon produces for data under keyID.
func (d *WorkloadDaemon) DigestWithKey(keyID string, data []byte) []byte {
	mac := hmac.New(sha256.New, d.keys[keyID])
	mac.Write(data)
	return mac.Sum(nil)
}

// Respond makes every following request return status with body verbatim.
func (d *WorkloadDaemon) Respond(status int, body string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.override = &cannedResponse{status: status, body: body}
}

// Delay holds every following response for dur before writing it.
func (d *WorkloadDaemon) Delay(dur time.Duration) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.delay = dur
}

// Requests returns a copy of the requests received so far.
func (d *WorkloadDaemon) Requests() []RecordedRequest {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]RecordedRequest(nil), d.requests...)
}

// LastRequest returns the most recent request, or the zero value.
func (d *WorkloadDaemon) LastRequest() RecordedRequest {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.requests) == 0 {
		return RecordedRequest{}
	}
	return d.requests[len(d.requests)-1]
}

func (d *WorkloadDaemon) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(d.record)
	r.Use(d.canned)
	r.Post("/modules/{moduleID}/genid/{generationID}/sign", d.handleSign)
	r.Get("/trust-bundle", d.handleTrustBundle)
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		d.writeError(w, http.StatusNotFound, "Not found")
	})
	return r
}

// record stores the request, tags it with a request id and applies the
// configured delay.
func (d *WorkloadDaemon) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		r.Body = io.NopCloser(bytes.NewReader(body))

		id := uuid.NewString()
		w.Header().Set(RequestIDHeader, id)

		d.mu.Lock()
		d.requests = append(d.requests, RecordedRequest{
			ID:     id,
			Method: r.Method,
			Target: r.RequestURI,
			Host:   r.Host,
			Header: r.Header.Clone(),
			Body:   body,
		})
		delay := d.delay
		d.mu.Unlock()

		d.logger.Debug("workload api request", "id", id, "method", r.Method, "target", r.RequestURI)

		if delay > 0 {
			select {
			case <-time.After(delay):
			case <-r.Context().Done():
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

func (d *WorkloadDaemon) canned(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		d.mu.Lock()
		override := d.override
		d.mu.Unlock()
		if override == nil {
			next.ServeHTTP(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(override.status)
		_, _ = io.WriteString(w, override.body)
	})
}

type signRequest struct {
	KeyID string `json:"keyId"`
	Algo  string `json:"algo"`
	Data  string `json:"data"`
}

func (d *WorkloadDaemon) handleSign(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("api-version") == "" {
		d.writeError(w, http.StatusBadRequest, "api-version is required")
		return
	}
	if chi.URLParam(r, "moduleID") != d.ModuleID || chi.URLParam(r, "generationID") != d.GenerationID {
		d.writeError(w, http.StatusNotFound, "Module not found")
		return
	}

	var req signRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		d.writeError(w, http.StatusBadRequest, "invalid sign request: "+err.Error())
		return
	}
	if req.Algo != signAlgorithm {
		d.writeError(w, http.StatusBadRequest, "unsupported algorithm "+req.Algo)
		return
	}
	if _, ok := d.keys[req.KeyID]; !ok {
		d.writeError(w, http.StatusNotFound, "key "+req.KeyID+" not found")
		return
	}
	data, err := base64.StdEncoding.DecodeString(req.Data)
	if err != nil {
		d.writeError(w, http.StatusBadRequest, "data is not base64")
		return
	}

	d.writeJSON(w, map[string]string{
		"digest": base64.StdEncoding.EncodeToString(d.DigestWithKey(req.KeyID, data)),
	})
}

func (d *WorkloadDaemon) handleTrustBundle(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("api-version") == "" {
		d.writeError(w, http.StatusBadRequest, "api-version is required")
		return
	}
	d.writeJSON(w, map[string]string{"certificate": d.TrustBundle})
}

// writeJSON writes a 200 response. In chunked mode the payload is flushed in
// small pieces so net/http frames it with chunked transfer coding.
func (d *WorkloadDaemon) writeJSON(w http.ResponseWriter, v any) {
	payload, err := json.Marshal(v)
	if err != nil {
		d.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/json")

	if !d.chunked {
		_, _ = w.Write(payload)
		return
	}
	w.WriteHeader(http.StatusOK)
	flusher, _ := w.(http.Flusher)
	for len(payload) > 0 {
		n := min(7, len(payload))
		_, _ = w.Write(payload[:n])
		if flusher != nil {
			flusher.Flush()
		}
		payload = payload[n:]
	}
}

func (d *WorkloadDaemon) writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"message": message})
}

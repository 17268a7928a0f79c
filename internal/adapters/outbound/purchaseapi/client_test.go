package purchaseapi_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/spiffe/go-spiffe/v2/bundle/x509bundle"
	"github.com/spiffe/go-spiffe/v2/spiffeid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sufield/edgeauth/internal/adapters/outbound/purchaseapi"
	"github.com/sufield/edgeauth/internal/adapters/outbound/udstransport"
	"github.com/sufield/edgeauth/internal/adapters/outbound/workloadapi"
	"github.com/sufield/edgeauth/internal/testhelpers"
)

const sasToken = "SharedAccessSignature sr=hub%252Fdevices%252Fdevice1&sig=abc%3D&se=1700086400"

type seenRequest struct {
	target        string
	authorization string
}

func startGateway(t *testing.T, status int, body string) (*httptest.Server, *x509bundle.Bundle, <-chan seenRequest) {
	t.Helper()

	seen := make(chan seenRequest, 1)
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen <- seenRequest{target: r.RequestURI, authorization: r.Header.Get("Authorization")}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	bundle, err := workloadapi.ParseTrustBundle("edge.local", testhelpers.CertificatePEM(srv.Certificate()))
	require.NoError(t, err)
	return srv, bundle, seen
}

func TestClient_GetPurchase(t *testing.T) {
	t.Parallel()

	srv, bundle, seen := startGateway(t, http.StatusOK, `{
		"purchaseStatus": "Complete",
		"publisherId": "contoso",
		"offerId": "filter-offer",
		"planId": "gold",
		"synchedDateTimeUtc": "2024-01-02T03:04:05Z"
	}`)

	client, err := purchaseapi.NewClient("gateway", sasToken, bundle, &purchaseapi.ClientOpts{BaseURL: srv.URL})
	require.NoError(t, err)

	info, err := client.GetPurchase(context.Background(), "device 1", "filter")
	require.NoError(t, err)
	assert.True(t, info.Purchased())
	assert.Equal(t, "contoso", info.PublisherID)
	assert.Equal(t, "filter-offer", info.OfferID)
	assert.Equal(t, "gold", info.PlanID)
	assert.Equal(t, time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC), info.SynchedDateTimeUTC)

	got := <-seen
	assert.Equal(t, "/devices/device+1/modules/filter/purchase", got.target)
	assert.Equal(t, sasToken, got.authorization)
}

func TestClient_GetPurchase_NotPurchased(t *testing.T) {
	t.Parallel()

	srv, bundle, _ := startGateway(t, http.StatusOK, `{"purchaseStatus":"NotFound"}`)
	client, err := purchaseapi.NewClient("gateway", sasToken, bundle, &purchaseapi.ClientOpts{BaseURL: srv.URL})
	require.NoError(t, err)

	info, err := client.GetPurchase(context.Background(), "device1", "filter")
	require.NoError(t, err)
	assert.Equal(t, purchaseapi.PurchaseNotFound, info.PurchaseStatus)
	assert.False(t, info.Purchased())
}

func TestClient_GetPurchase_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		status      int
		body        string
		wantErr     error
		wantMessage string
	}{
		{name: "not found", status: http.StatusNotFound, body: `{"message":"Module not found"}`, wantErr: purchaseapi.ErrServerError, wantMessage: "Module not found"},
		{name: "unauthorized without body", status: http.StatusUnauthorized, body: "", wantErr: purchaseapi.ErrServerError},
		{name: "garbage 200", status: http.StatusOK, body: "<html>", wantErr: purchaseapi.ErrInvalidResponse},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			srv, bundle, _ := startGateway(t, tt.status, tt.body)
			client, err := purchaseapi.NewClient("gateway", sasToken, bundle, &purchaseapi.ClientOpts{BaseURL: srv.URL})
			require.NoError(t, err)

			_, err = client.GetPurchase(context.Background(), "device1", "filter")
			assert.ErrorIs(t, err, tt.wantErr)

			var apiErr *purchaseapi.APIError
			if errors.As(err, &apiErr) {
				assert.Equal(t, tt.status, apiErr.StatusCode)
				assert.Equal(t, tt.wantMessage, apiErr.Message)
			}
		})
	}
}

// startRawGateway writes response verbatim on the hijacked connection and
// closes it.
func startRawGateway(t *testing.T, response string) (*httptest.Server, *x509bundle.Bundle) {
	t.Helper()

	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, buf, err := http.NewResponseController(w).Hijack()
		if err != nil {
			return
		}
		defer conn.Close()
		_, _ = buf.WriteString(response)
		_ = buf.Flush()
	}))
	t.Cleanup(srv.Close)

	bundle, err := workloadapi.ParseTrustBundle("edge.local", testhelpers.CertificatePEM(srv.Certificate()))
	require.NoError(t, err)
	return srv, bundle
}

func TestClient_GetPurchase_TruncatedBodies(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		response string
	}{
		{
			name:     "error body ends inside a chunk",
			response: "HTTP/1.1 500 Internal\r\nTransfer-Encoding: chunked\r\n\r\n1b\r\n{\"message\":\"boom\"}",
		},
		{
			name:     "error body shorter than content-length",
			response: "HTTP/1.1 404 Not Found\r\nContent-Length: 64\r\n\r\n{\"message\":\"gone\"}",
		},
		{
			name:     "ok body without last chunk",
			response: "HTTP/1.1 200 OK\r\nTransfer-Encoding: chunked\r\n\r\n1d\r\n{\"purchaseStatus\":\"Complete\"}\r\n",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			srv, bundle := startRawGateway(t, tt.response)
			client, err := purchaseapi.NewClient("gateway", sasToken, bundle, &purchaseapi.ClientOpts{BaseURL: srv.URL})
			require.NoError(t, err)

			info, err := client.GetPurchase(context.Background(), "device1", "filter")
			assert.Nil(t, info)
			assert.ErrorIs(t, err, purchaseapi.ErrRequestFailed)
			assert.ErrorIs(t, err, io.ErrUnexpectedEOF)

			var apiErr *purchaseapi.APIError
			assert.False(t, errors.As(err, &apiErr), "truncated body reported as %v", err)
		})
	}
}

func TestClient_GetPurchase_UntrustedGateway(t *testing.T) {
	t.Parallel()

	srv, _, _ := startGateway(t, http.StatusOK, `{}`)
	other, err := workloadapi.ParseTrustBundle("edge.local", testhelpers.GenerateCABundle(t, 1))
	require.NoError(t, err)

	client, err := purchaseapi.NewClient("gateway", sasToken, other, &purchaseapi.ClientOpts{BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = client.GetPurchase(context.Background(), "device1", "filter")
	assert.ErrorIs(t, err, purchaseapi.ErrRequestFailed)
	assert.ErrorIs(t, err, udstransport.ErrConnection)
}

func TestNewClient_InvalidArguments(t *testing.T) {
	t.Parallel()

	bundle := x509bundle.New(spiffeid.RequireTrustDomainFromString("edge.local"))

	_, err := purchaseapi.NewClient("gateway", "", bundle, nil)
	assert.ErrorIs(t, err, purchaseapi.ErrInvalidArgument)

	_, err = purchaseapi.NewClient("", sasToken, bundle, nil)
	assert.ErrorIs(t, err, purchaseapi.ErrInvalidArgument)

	_, err = purchaseapi.NewClient("gateway", sasToken, nil, nil)
	assert.ErrorIs(t, err, purchaseapi.ErrInvalidArgument)

	client, err := purchaseapi.NewClient("gateway", sasToken, bundle, nil)
	require.NoError(t, err)
	_, err = client.GetPurchase(context.Background(), "", "filter")
	assert.ErrorIs(t, err, purchaseapi.ErrInvalidArgument)
}

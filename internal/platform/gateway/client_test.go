package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/fatflowers/travelpay/pkg/metrics"
)

func newTestClient(t *testing.T, srv *httptest.Server, timeout time.Duration) *HTTPClient {
	t.Helper()
	m, err := metrics.NewPaymentMetrics(prometheus.NewRegistry())
	require.NoError(t, err)
	return NewHTTPClient(Options{BaseURL: srv.URL, SecretKey: "sk_test", Timeout: timeout}, m)
}

func TestInitializeTransaction_SendsPayload(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, initializePath, r.URL.Path)
		require.Equal(t, "Bearer sk_test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"status":"success","data":{"checkout_url":"https://checkout/abc"}}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv, time.Second)
	res, err := c.InitializeTransaction(context.Background(), &InitializeRequest{
		TxRef:     "b-1-abc",
		Amount:    decimal.RequireFromString("150.50"),
		Currency:  "ETB",
		Email:     "guest@example.com",
		ReturnURL: "https://app/return",
	})
	require.NoError(t, err)
	require.Equal(t, "https://checkout/abc", ParseInitialize(res).CheckoutURL)

	require.Equal(t, "b-1-abc", got["tx_ref"])
	require.Equal(t, 150.5, got["amount"])
	require.Equal(t, "https://app/return", got["return_url"])
	require.NotContains(t, got, "callback_url")
}

func TestInitializeTransaction_Non2xxIsTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"Invalid API Key"}`))
	}))
	defer srv.Close()

	_, err := newTestClient(t, srv, time.Second).InitializeTransaction(context.Background(), &InitializeRequest{TxRef: "x"})
	require.ErrorIs(t, err, ErrTransport)

	var te *TransportError
	require.True(t, errors.As(err, &te))
	require.Equal(t, http.StatusUnauthorized, te.StatusCode)
	require.Equal(t, "initialize", te.Op)
}

func TestVerifyTransaction_TimeoutIsTransportError(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	_, err := newTestClient(t, srv, 50*time.Millisecond).VerifyTransaction(context.Background(), "tx-1")
	require.ErrorIs(t, err, ErrTransport)
}

func TestVerifyTransaction_BusinessFailureIsResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, verifyPath+"tx-1", r.URL.Path)
		_, _ = w.Write([]byte(`{"status":"success","data":{"status":"failed","tx_ref":"tx-1"}}`))
	}))
	defer srv.Close()

	res, err := newTestClient(t, srv, time.Second).VerifyTransaction(context.Background(), "tx-1")
	require.NoError(t, err)
	r := ParseVerify(res)
	require.False(t, r.Success)
	require.Equal(t, "tx-1", r.TxRef)
}

func TestVerifyTransaction_InvalidJSONIsTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>gateway down</html>`))
	}))
	defer srv.Close()

	_, err := newTestClient(t, srv, time.Second).VerifyTransaction(context.Background(), "tx-1")
	require.ErrorIs(t, err, ErrTransport)
}

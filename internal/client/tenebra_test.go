package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupAddresses(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/lookup/addresses/t52xkdsr5l,tzwow91ylm", r.URL.Path)
		assert.True(t, r.URL.Query().Has("fetchNames"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"ok": true, "found": 1, "notFound": 1,
			"addresses": {
				"t52xkdsr5l": {"address": "t52xkdsr5l", "balance": 100, "firstseen": "2021-02-14T00:00:00.000Z", "names": 2},
				"tzwow91ylm": null
			}
		}`))
	}))
	defer srv.Close()

	c := NewTenebraClient(srv.URL)
	results, err := c.LookupAddresses(context.Background(), []string{"t52xkdsr5l", "tzwow91ylm"}, true)
	require.NoError(t, err)

	require.Contains(t, results, "t52xkdsr5l")
	require.Contains(t, results, "tzwow91ylm")
	found := results["t52xkdsr5l"]
	require.NotNil(t, found)
	assert.EqualValues(t, 100, found.Balance)
	require.NotNil(t, found.Names)
	assert.Equal(t, 2, *found.Names)
	assert.Nil(t, results["tzwow91ylm"])
}

func TestLookupAddressesEmpty(t *testing.T) {
	c := NewTenebraClient("http://127.0.0.1:0")
	results, err := c.LookupAddresses(context.Background(), nil, true)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestLookupStakes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/lookup/stakes/t52xkdsr5l", r.URL.Path)
		w.Write([]byte(`{"ok": true, "found": 1, "notFound": 0,
			"stakes": {"t52xkdsr5l": {"owner": "t52xkdsr5l", "stake": 50, "active": true}}}`))
	}))
	defer srv.Close()

	c := NewTenebraClient(srv.URL)
	results, err := c.LookupStakes(context.Background(), []string{"t52xkdsr5l"})
	require.NoError(t, err)
	require.NotNil(t, results["t52xkdsr5l"])
	assert.EqualValues(t, 50, results["t52xkdsr5l"].Stake)
}

func TestMakeTransaction(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/transactions", r.URL.Path)
		w.Write([]byte(`{"ok": true, "transaction":
			{"id": 1093, "from": "t52xkdsr5l", "to": "tzwow91ylm", "value": 25, "time": "2021-02-14T00:00:00.000Z", "type": "transfer"}}`))
	}))
	defer srv.Close()

	c := NewTenebraClient(srv.URL)
	tx, err := c.MakeTransaction(context.Background(), "pkey", "tzwow91ylm", 25, "")
	require.NoError(t, err)
	assert.Equal(t, 1093, tx.ID)
	assert.EqualValues(t, 25, tx.Value)
}

func TestMakeTransactionInsufficientFunds(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"ok": false, "error": "insufficient_funds"}`))
	}))
	defer srv.Close()

	c := NewTenebraClient(srv.URL)
	_, err := c.MakeTransaction(context.Background(), "pkey", "tzwow91ylm", 1e9, "")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInsufficientFunds)
	assert.False(t, IsNetworkError(err))
}

func TestInvalidParameter(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"ok": false, "error": "invalid_parameter", "parameter": "to"}`))
	}))
	defer srv.Close()

	c := NewTenebraClient(srv.URL)
	_, err := c.MakeTransaction(context.Background(), "pkey", "not-an-address", 1, "")
	require.ErrorIs(t, err, ErrInvalidParameter)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Contains(t, apiErr.Message, "to")
}

func TestNetworkError(t *testing.T) {
	// A server that is not listening produces a transport error, not an
	// APIError.
	c := NewTenebraClient("http://127.0.0.1:1")
	_, err := c.LookupAddresses(context.Background(), []string{"t52xkdsr5l"}, false)
	require.Error(t, err)
	assert.True(t, IsNetworkError(err))
}

func TestStartWebsocket(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/ws/start", r.URL.Path)
		w.Write([]byte(`{"ok": true, "url": "wss://example.com/ws/gateway/token", "expires": 30}`))
	}))
	defer srv.Close()

	c := NewTenebraClient(srv.URL)
	url, err := c.StartWebsocket(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "wss://example.com/ws/gateway/token", url)
}

func TestDeposit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/staking", r.URL.Path)
		w.Write([]byte(`{"ok": true, "stake": {"owner": "t52xkdsr5l", "stake": 75, "active": true}}`))
	}))
	defer srv.Close()

	c := NewTenebraClient(srv.URL)
	stake, err := c.Deposit(context.Background(), "pkey", 25)
	require.NoError(t, err)
	assert.EqualValues(t, 75, stake.Stake)
}

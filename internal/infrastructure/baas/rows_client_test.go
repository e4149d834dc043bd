package baas

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRowsClient_SelectAll(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/rest/v1/positions", r.URL.Path)
		assert.Equal(t, "*", r.URL.Query().Get("select"))
		assert.Equal(t, "anon-key", r.Header.Get("apikey"))
		assert.Equal(t, "Bearer anon-key", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"id": 1, "symbol": "ETH", "price_usd": 3000, "quantity": "2", "portfolio_name": "Main"},
			{"id": "2", "symbol": "SOL", "price_usd": null}
		]`))
	}))
	defer srv.Close()

	client := NewRowsClient(srv.URL, "anon-key", 5*time.Second, 100, 10, zap.NewNop())

	rows, err := client.SelectAll(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "ETH", rows[0].Symbol)
	assert.Equal(t, "Main", rows[0].PortfolioName)
	assert.Equal(t, "SOL", rows[1].Symbol)
	assert.Nil(t, rows[1].PriceUSD)
}

func TestRowsClient_DeleteByID(t *testing.T) {
	var gotMethod, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotQuery = r.URL.RawQuery
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	client := NewRowsClient(srv.URL, "anon-key", 5*time.Second, 100, 10, zap.NewNop())

	require.NoError(t, client.DeleteByID(context.Background(), "42"))
	assert.Equal(t, http.MethodDelete, gotMethod)
	assert.Equal(t, "id=eq.42", gotQuery)
}

func TestRowsClient_SurfacesProviderMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"message": "permission denied for table positions"}`))
	}))
	defer srv.Close()

	client := NewRowsClient(srv.URL, "anon-key", 5*time.Second, 100, 10, zap.NewNop())

	_, err := client.SelectAll(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "permission denied for table positions")
}

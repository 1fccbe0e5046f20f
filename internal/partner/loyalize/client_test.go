package loyalize

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransactions(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/transactions", r.URL.Path)
		assert.Equal(t, "key-1", r.Header.Get("Authorization"))
		assert.Equal(t, "2026-01-01", r.URL.Query().Get("startDate"))
		assert.Equal(t, "0", r.URL.Query().Get("page"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"content":[
			{"id":9001,"storeId":42,"storeName":"Acme","sid":"user-1","saleAmount":"120.50","shopperCommission":6.02,"status":"pending","purchaseDate":"2026-01-03T10:00:00Z"},
			{"storeId":42,"sid":"user-2","saleAmount":10,"status":"PAID"}
		],"last":false}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "key-1", time.Second)
	require.NotNil(t, c)
	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	got, more, err := c.Transactions(context.Background(), from, from.AddDate(0, 0, 30), 0)
	require.NoError(t, err)
	assert.True(t, more)
	require.Len(t, got, 1, "rows without id are dropped")
	tx := got[0]
	assert.Equal(t, "9001", tx.ID)
	assert.Equal(t, "42", tx.StoreID)
	assert.Equal(t, "user-1", tx.UserID)
	assert.Equal(t, "PENDING", tx.Status)
	assert.Equal(t, "120.5", tx.SaleAmount.String())
	assert.Equal(t, 2026, tx.Date.Year())
}

func TestStoresLastPage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"content":[{"id":"7","name":"Green Co","imageUrl":"https://img/7.png","commission":{"value":"4.5"},"active":false}],"last":true}`))
	}))
	defer srv.Close()

	got, more, err := New(srv.URL, "k", time.Second).Stores(context.Background(), 0)
	require.NoError(t, err)
	assert.False(t, more)
	require.Len(t, got, 1)
	assert.Equal(t, "Green Co", got[0].Name)
	assert.Equal(t, "4.5", got[0].CommissionRate.String())
	assert.False(t, got[0].Active)
}

func TestErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, _, err := New(srv.URL, "k", time.Second).Stores(context.Background(), 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestNewWithoutKey(t *testing.T) {
	assert.Nil(t, New("https://api.loyalize.com", "", 0))
}

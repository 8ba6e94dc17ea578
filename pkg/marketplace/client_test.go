package marketplace

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"freegrab/pkg/config"
	errs "freegrab/pkg/errors"
	"freegrab/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestClient points every base URL at an httptest server running mux
func newTestClient(t *testing.T, mux *http.ServeMux) (*Client, *logger.TestLogger) {
	t.Helper()

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	cfg := config.MarketplaceConfig{
		CatalogURL:     server.URL,
		UsersURL:       server.URL,
		InventoryURL:   server.URL,
		EconomyURL:     server.URL,
		WebURL:         server.URL,
		UserAgent:      "freegrab-test",
		RequestTimeout: 5 * time.Second,
	}

	log := logger.NewTestLogger()
	return NewClient(cfg, "secret-cookie", log), log
}

func TestAuthenticatedUser(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc(AuthenticatedUserEndpoint, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, ".ROBLOSECURITY=secret-cookie", r.Header.Get("Cookie"))
		assert.Equal(t, "freegrab-test", r.Header.Get("User-Agent"))
		w.Write([]byte(`{"id": 4242, "name": "builder"}`))
	})

	client, _ := newTestClient(t, mux)
	user, err := client.AuthenticatedUser(context.Background())

	require.NoError(t, err)
	assert.Equal(t, uint64(4242), user.ID)
	assert.Equal(t, "builder", user.Name)
}

func TestAuthenticatedUserErrors(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantType errs.ErrorType
	}{
		{"unauthorized", http.StatusUnauthorized, `{"errors":[{"code":0}]}`, errs.ErrorTypeAuth},
		{"forbidden", http.StatusForbidden, ``, errs.ErrorTypeAuth},
		{"zero id", http.StatusOK, `{"id": 0}`, errs.ErrorTypeAuth},
		{"garbage", http.StatusOK, `<html>`, errs.ErrorTypeParsing},
		{"server error", http.StatusBadGateway, ``, errs.ErrorTypeServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mux := http.NewServeMux()
			mux.HandleFunc(AuthenticatedUserEndpoint, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})

			client, _ := newTestClient(t, mux)
			_, err := client.AuthenticatedUser(context.Background())

			require.Error(t, err)
			assert.Equal(t, tt.wantType, errs.TypeOf(err))
		})
	}
}

func TestNetworkError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	client := NewClient(config.MarketplaceConfig{UsersURL: url, RequestTimeout: time.Second}, "x", logger.NewNopLogger())
	_, err := client.AuthenticatedUser(context.Background())

	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.ErrorTypeNetwork))
}

func TestSearchItems(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc(SearchEndpoint, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "Accessories", q.Get("category"))
		assert.Equal(t, "", q.Get("subcategory"))
		assert.Equal(t, "0", q.Get("maxPrice"))
		assert.Equal(t, "120", q.Get("limit"))
		assert.Equal(t, "abc", q.Get("cursor"))

		w.Write([]byte(`{
			"nextPageCursor": "def",
			"data": [
				{"id": 1, "name": "Hat", "productId": 11, "creatorType": "Group", "creatorTargetId": 7, "price": 0, "itemType": "Bundle"},
				{"id": 2, "name": "Cape", "productId": 12, "creatorType": "User", "creatorTargetId": 1, "itemType": "Bundle"}
			]
		}`))
	})

	client, _ := newTestClient(t, mux)
	page, err := client.SearchItems(context.Background(), SearchQuery{Category: "Accessories"}, "abc")

	require.NoError(t, err)
	require.NotNil(t, page.NextPageCursor)
	assert.Equal(t, "def", *page.NextPageCursor)
	require.NotNil(t, page.Data)

	items := *page.Data
	require.Len(t, items, 2)
	assert.Equal(t, uint64(11), items[0].ProductID)
	assert.True(t, items[0].HasPrice())
	assert.Equal(t, uint32(0), *items[0].Price)
	assert.False(t, items[1].HasPrice())
	assert.Equal(t, "User", items[1].CreatorType)
}

func TestSearchItemsTerminalPage(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc(SearchEndpoint, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"nextPageCursor": null}`))
	})

	client, _ := newTestClient(t, mux)
	page, err := client.SearchItems(context.Background(), SearchQuery{}, "")

	require.NoError(t, err)
	assert.Nil(t, page.NextPageCursor)
	assert.Nil(t, page.Data)
}

func TestIsOwned(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/users/99/items/3/5/is-owned", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`true`))
	})
	mux.HandleFunc("/v1/users/99/items/3/6/is-owned", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`false`))
	})
	mux.HandleFunc("/v1/users/99/items/3/7/is-owned", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"unexpected": true}`))
	})

	client, _ := newTestClient(t, mux)
	ctx := context.Background()

	owned, err := client.IsOwned(ctx, 99, 5)
	require.NoError(t, err)
	assert.True(t, owned)

	owned, err = client.IsOwned(ctx, 99, 6)
	require.NoError(t, err)
	assert.False(t, owned)

	_, err = client.IsOwned(ctx, 99, 7)
	assert.True(t, errs.Is(err, errs.ErrorTypeParsing))
}

func TestHomePage(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc(HomeEndpoint, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<html><head><meta name="csrf-token" data-token="tok"></head></html>`))
	})

	client, _ := newTestClient(t, mux)
	body, err := client.HomePage(context.Background())
	require.NoError(t, err)
	defer body.Close()

	data, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Contains(t, string(data), `data-token="tok"`)
}

func TestPurchase(t *testing.T) {
	price := uint32(0)
	item := CatalogItem{ID: 1, Name: "Hat", ProductID: 555, CreatorType: "Group", CreatorTargetID: 77, Price: &price}

	t.Run("success", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("/v1/purchases/products/555", func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "tok", r.Header.Get("X-CSRF-TOKEN"))
			assert.Equal(t, "application/json; charset=utf-8", r.Header.Get("Content-Type"))
			assert.Equal(t, ".ROBLOSECURITY=secret-cookie", r.Header.Get("Cookie"))

			var body map[string]interface{}
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.EqualValues(t, 1, body["expectedCurrency"])
			assert.EqualValues(t, 0, body["expectedPrice"])
			assert.EqualValues(t, 77, body["expectedSellerId"])

			w.Write([]byte(`{"purchased": true}`))
		})

		client, _ := newTestClient(t, mux)
		resp, err := client.Purchase(context.Background(), "tok", item)

		require.NoError(t, err)
		assert.False(t, resp.Failed())
	})

	t.Run("rejection decoded regardless of status", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("/v1/purchases/products/555", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte(`{"errors":[{"code":27,"message":"Too many requests"}]}`))
		})

		client, _ := newTestClient(t, mux)
		resp, err := client.Purchase(context.Background(), "tok", item)

		require.NoError(t, err)
		assert.True(t, resp.Failed())
		assert.True(t, resp.RateLimited())
	})

	t.Run("undecodable body", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("/v1/purchases/products/555", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`upstream unavailable`))
		})

		client, log := newTestClient(t, mux)
		_, err := client.Purchase(context.Background(), "tok", item)

		assert.True(t, errs.Is(err, errs.ErrorTypeParsing))
		assert.True(t, log.HasMessage("failed to parse JSON response"))
	})
}

func TestClientStringHidesCredential(t *testing.T) {
	client := NewClient(config.DefaultConfig().Marketplace, "very-secret", nil)
	assert.NotContains(t, client.String(), "very-secret")
}

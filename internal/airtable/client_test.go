package airtable

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nickcecere/recipewriter/internal/config"
)

func testConfig(baseURL string) config.AirtableConfig {
	return config.AirtableConfig{
		APIKey:    "pat-test",
		BaseID:    "appBASE",
		TableName: "My Recipes",
		BaseURL:   baseURL,
	}
}

// pagedServer serves the given pages in order, linking them with offset tokens.
func pagedServer(t *testing.T, pages []string, offsets *[]string) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/appBASE/My Recipes", r.URL.Path)
		assert.Equal(t, "Bearer pat-test", r.Header.Get("Authorization"))

		offset := r.URL.Query().Get("offset")
		*offsets = append(*offsets, offset)

		page := 0
		if offset != "" {
			fmt.Sscanf(offset, "itr%d", &page)
		}
		next := ""
		if page+1 < len(pages) {
			next = fmt.Sprintf("itr%d", page+1)
		}
		fmt.Fprintf(w, `{"records":[%s],"offset":%q}`, pages[page], next)
	}))
}

func TestFetchAllPaginates(t *testing.T) {
	var offsets []string
	server := pagedServer(t, []string{
		`{"id":"rec1","fields":{"Title":"Carbonara","Description":"Roman","Category":"Italian Main","Tags":["Pasta","Quick"],"URL":"https://e.com/1","Image Link":"https://e.com/1.jpg"}}`,
		`{"id":"rec2","fields":{"Title":"Chana Masala","Category":["Indian","Vegan"],"Tags":"Vegan, Spicy","URL":"https://e.com/2"}}`,
		`{"id":"rec3","fields":{"Title":"Plain"}}`,
	}, &offsets)
	defer server.Close()

	c, err := NewClient(testConfig(server.URL + "/"))
	require.NoError(t, err)

	recipes, err := c.FetchAll(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"", "itr1", "itr2"}, offsets)
	require.Len(t, recipes, 3)

	assert.Equal(t, "Carbonara", recipes[0].Title)
	assert.Equal(t, "Roman", recipes[0].Description)
	assert.Equal(t, []string{"Pasta", "Quick"}, recipes[0].Tags)
	assert.Equal(t, "https://e.com/1.jpg", recipes[0].ImageURL)

	assert.Equal(t, "Indian, Vegan", recipes[1].Category)
	assert.Equal(t, []string{"Vegan", "Spicy"}, recipes[1].Tags)
	assert.False(t, recipes[1].HasImage())

	assert.Equal(t, []string{}, recipes[2].Tags)
	assert.Empty(t, recipes[2].URL)
}

func TestFetchAllEmptyTable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"records":[]}`))
	}))
	defer server.Close()

	c, _ := NewClient(testConfig(server.URL))
	recipes, err := c.FetchAll(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, recipes)
	assert.Empty(t, recipes)
}

func TestFetchAllFailsFast(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if r.URL.Query().Get("offset") == "" {
			w.Write([]byte(`{"records":[{"id":"rec1","fields":{"Title":"A"}}],"offset":"itr1"}`))
			return
		}
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"error":{"type":"LIST_RECORDS_ITERATOR_NOT_AVAILABLE"}}`))
	}))
	defer server.Close()

	c, _ := NewClient(testConfig(server.URL))
	recipes, err := c.FetchAll(context.Background())

	assert.Nil(t, recipes)
	var fetchErr *UpstreamFetchError
	require.True(t, errors.As(err, &fetchErr))
	assert.Equal(t, 1, fetchErr.Page)
	assert.Equal(t, http.StatusUnprocessableEntity, fetchErr.StatusCode)
	assert.Contains(t, err.Error(), "LIST_RECORDS_ITERATOR_NOT_AVAILABLE")
	assert.Equal(t, 2, calls)
}

func TestFetchAllErrors(t *testing.T) {
	t.Run("unauthorized", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}))
		defer server.Close()

		c, _ := NewClient(testConfig(server.URL))
		_, err := c.FetchAll(context.Background())

		var fetchErr *UpstreamFetchError
		require.True(t, errors.As(err, &fetchErr))
		assert.Equal(t, 0, fetchErr.Page)
		assert.Contains(t, err.Error(), "Unauthorized")
	})

	t.Run("invalid JSON", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("<html>"))
		}))
		defer server.Close()

		c, _ := NewClient(testConfig(server.URL))
		_, err := c.FetchAll(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to decode response")
	})

	t.Run("connection refused", func(t *testing.T) {
		server := httptest.NewServer(http.NotFoundHandler())
		server.Close()

		c, _ := NewClient(testConfig(server.URL))
		_, err := c.FetchAll(context.Background())

		var fetchErr *UpstreamFetchError
		require.True(t, errors.As(err, &fetchErr))
		assert.Zero(t, fetchErr.StatusCode)
	})
}

func TestNewClientValidation(t *testing.T) {
	_, err := NewClient(config.AirtableConfig{BaseID: "app", TableName: "t"})
	assert.ErrorContains(t, err, "API key")

	_, err = NewClient(config.AirtableConfig{APIKey: "k", TableName: "t"})
	assert.ErrorContains(t, err, "base ID")

	_, err = NewClient(config.AirtableConfig{APIKey: "k", BaseID: "app"})
	assert.ErrorContains(t, err, "table name")

	c, err := NewClient(config.AirtableConfig{APIKey: "k", BaseID: "app", TableName: "t"})
	require.NoError(t, err)
	assert.Equal(t, config.DefaultAirtableURL, c.baseURL)
}

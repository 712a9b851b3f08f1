// Package airtable fetches recipe records from an Airtable table.
package airtable

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/nickcecere/recipewriter/internal/config"
	"github.com/nickcecere/recipewriter/internal/recipe"
)

// Client reads all records of one table.
type Client struct {
	baseURL    string
	apiKey     string
	baseID     string
	table      string
	httpClient *http.Client
}

// NewClient creates a client from the airtable configuration section.
func NewClient(cfg config.AirtableConfig) (*Client, error) {
	switch {
	case cfg.APIKey == "":
		return nil, fmt.Errorf("Airtable API key is required")
	case cfg.BaseID == "":
		return nil, fmt.Errorf("Airtable base ID is required")
	case cfg.TableName == "":
		return nil, fmt.Errorf("Airtable table name is required")
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = config.DefaultAirtableURL
	}

	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		apiKey:  cfg.APIKey,
		baseID:  cfg.BaseID,
		table:   cfg.TableName,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}, nil
}

// FetchAll reads every record in the table, following offset tokens until
// the API stops returning one. The first failed page aborts the fetch and
// nothing fetched so far is returned.
func (c *Client) FetchAll(ctx context.Context) ([]recipe.Recipe, error) {
	endpoint := fmt.Sprintf("%s/%s/%s", c.baseURL, url.PathEscape(c.baseID), url.PathEscape(c.table))
	all := []recipe.Recipe{}
	offset := ""

	for page := 0; ; page++ {
		resp, err := c.fetchPage(ctx, endpoint, offset, page)
		if err != nil {
			return nil, err
		}

		for _, rec := range resp.Records {
			all = append(all, convertRecord(rec))
		}
		log.Debug("Fetched page", "page", page, "records", len(resp.Records), "total", len(all))

		if resp.Offset == "" {
			break
		}
		offset = resp.Offset
	}

	log.Info("Fetched recipes from Airtable", "count", len(all))
	return all, nil
}

func (c *Client) fetchPage(ctx context.Context, endpoint, offset string, page int) (*listResponse, error) {
	u := endpoint
	if offset != "" {
		u += "?" + url.Values{"offset": {offset}}.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, &UpstreamFetchError{Page: page, Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &UpstreamFetchError{Page: page, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		msg := strings.TrimSpace(string(body))
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return nil, &UpstreamFetchError{Page: page, StatusCode: resp.StatusCode, Err: errors.New(msg)}
	}

	var out listResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, &UpstreamFetchError{Page: page, StatusCode: resp.StatusCode, Err: fmt.Errorf("failed to decode response: %w", err)}
	}
	return &out, nil
}

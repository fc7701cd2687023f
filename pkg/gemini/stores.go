package gemini

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

type createStoreRequest struct {
	DisplayName string `json:"displayName"`
}

type listStoresResponse struct {
	FileSearchStores []Store `json:"fileSearchStores"`
	NextPageToken    string  `json:"nextPageToken"`
}

// CreateStore creates a store. The returned Name is the identifier to use from then on.
func (c *Client) CreateStore(ctx context.Context, displayName string) (*Store, error) {
	var store Store
	err := c.doJSON(ctx, http.MethodPost, c.endpoint("fileSearchStores", nil), createStoreRequest{DisplayName: displayName}, &store)
	if err != nil {
		return nil, err
	}
	return &store, nil
}

// ListStores returns every store, following pagination.
func (c *Client) ListStores(ctx context.Context) ([]Store, error) {
	stores := make([]Store, 0)
	token := ""
	for {
		q := url.Values{"pageSize": {strconv.Itoa(pageSize)}}
		if token != "" {
			q.Set("pageToken", token)
		}
		var page listStoresResponse
		if err := c.doJSON(ctx, http.MethodGet, c.endpoint("fileSearchStores", q), nil, &page); err != nil {
			return nil, err
		}
		stores = append(stores, page.FileSearchStores...)
		if page.NextPageToken == "" {
			return stores, nil
		}
		token = page.NextPageToken
	}
}

func (c *Client) GetStore(ctx context.Context, name string) (*Store, error) {
	var store Store
	if err := c.doJSON(ctx, http.MethodGet, c.endpoint(name, nil), nil, &store); err != nil {
		return nil, err
	}
	return &store, nil
}

// DeleteStore removes the store and all of its documents.
func (c *Client) DeleteStore(ctx context.Context, name string) error {
	return c.doJSON(ctx, http.MethodDelete, c.endpoint(name, url.Values{"force": {"true"}}), nil, nil)
}

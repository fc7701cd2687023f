package gemini

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

type listDocumentsResponse struct {
	Documents     []Document `json:"documents"`
	NextPageToken string     `json:"nextPageToken"`
}

// ListDocuments returns every document in a store.
func (c *Client) ListDocuments(ctx context.Context, storeName string) ([]Document, error) {
	docs := make([]Document, 0)
	token := ""
	for {
		q := url.Values{"pageSize": {strconv.Itoa(pageSize)}}
		if token != "" {
			q.Set("pageToken", token)
		}
		var page listDocumentsResponse
		if err := c.doJSON(ctx, http.MethodGet, c.endpoint(storeName+"/documents", q), nil, &page); err != nil {
			return nil, err
		}
		docs = append(docs, page.Documents...)
		if page.NextPageToken == "" {
			return docs, nil
		}
		token = page.NextPageToken
	}
}

// ListAllDocuments lists stores and then the documents of each, in store order.
func (c *Client) ListAllDocuments(ctx context.Context) ([]Store, []Document, error) {
	stores, err := c.ListStores(ctx)
	if err != nil {
		return nil, nil, err
	}
	all := make([]Document, 0)
	for _, s := range stores {
		docs, err := c.ListDocuments(ctx, s.Name)
		if err != nil {
			return nil, nil, err
		}
		all = append(all, docs...)
	}
	return stores, all, nil
}

func (c *Client) DeleteDocument(ctx context.Context, name string) error {
	return c.doJSON(ctx, http.MethodDelete, c.endpoint(name, url.Values{"force": {"true"}}), nil, nil)
}

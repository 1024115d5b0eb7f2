// Package cms talks to the Directus instance that owns the profile data.
// The service treats it purely as a data source/sink: read a collection,
// create an item, create a junction row.
package cms

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/dmaguire/folio/backend/internal/config"
	"github.com/dmaguire/folio/backend/pkg/model/profile"
)

// ErrNotConfigured is returned when no Directus base URL was provided.
var ErrNotConfigured = errors.New("cms not configured")

// Client is a minimal Directus REST client using a static bearer token.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// NewClient builds a client from configuration. A nil-safe zero client is
// returned even when the CMS is not configured; calls then fail with
// ErrNotConfigured.
func NewClient(cfg config.CMSConfig) *Client {
	return &Client{
		baseURL: cfg.BaseURL,
		token:   cfg.Token,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

// ListItems reads every item of a collection into out, which must be a
// pointer to a slice matching the collection schema.
func (c *Client) ListItems(ctx context.Context, collection string, out any) error {
	body, err := c.do(ctx, http.MethodGet, "/items/"+collection+"?limit=-1", nil)
	if err != nil {
		return err
	}

	envelope := struct {
		Data json.RawMessage `json:"data"`
	}{}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return fmt.Errorf("cms: decode %s list: %w", collection, err)
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return fmt.Errorf("cms: decode %s items: %w", collection, err)
	}
	return nil
}

// CreateItem creates one item and returns the identifier Directus assigned.
func (c *Client) CreateItem(ctx context.Context, collection string, data map[string]any) (string, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("cms: encode %s item: %w", collection, err)
	}

	body, err := c.do(ctx, http.MethodPost, "/items/"+collection, payload)
	if err != nil {
		return "", err
	}

	envelope := struct {
		Data map[string]any `json:"data"`
	}{}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return "", fmt.Errorf("cms: decode %s create response: %w", collection, err)
	}
	id := itemID(envelope.Data["id"])
	if id == "" {
		return "", fmt.Errorf("cms: %s create response carried no id", collection)
	}
	return id, nil
}

// FetchSnapshot reads every profile collection into one snapshot.
func (c *Client) FetchSnapshot(ctx context.Context) (*profile.Snapshot, error) {
	snap := &profile.Snapshot{FetchedAt: time.Now().UTC()}

	for _, part := range []struct {
		collection string
		out        any
	}{
		{"positions", &snap.Positions},
		{"skills", &snap.Skills},
		{"technologies", &snap.Technologies},
		{"projects", &snap.Projects},
		{"education", &snap.Education},
		{"certifications", &snap.Certifications},
		{"companies", &snap.Companies},
	} {
		if err := c.ListItems(ctx, part.collection, part.out); err != nil {
			return nil, err
		}
	}
	return snap, nil
}

func (c *Client) do(ctx context.Context, method, path string, payload []byte) ([]byte, error) {
	if c.baseURL == "" {
		return nil, ErrNotConfigured
	}

	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("cms: build request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("cms: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("cms: read %s response: %w", path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("cms: %s %s: status %d", method, path, resp.StatusCode)
	}
	return body, nil
}

// itemID renders the id field Directus returns, which may be a string or a
// number depending on the collection's key type.
func itemID(v any) string {
	switch id := v.(type) {
	case string:
		return id
	case float64:
		return strconv.FormatFloat(id, 'f', -1, 64)
	default:
		return ""
	}
}

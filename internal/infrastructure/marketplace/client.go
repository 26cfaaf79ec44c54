// Package marketplace adaptador HTTP de la API de publicaciones del marketplace.
package marketplace

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	app "github.com/jhoicas/bodegas-api/internal/application/marketplace"
	"github.com/jhoicas/bodegas-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

var _ app.ListingSource = (*Client)(nil)

// Client consulta las publicaciones de un vendedor con token Bearer.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewClient construye el adaptador. timeout en segundos (0 = 15 s).
func NewClient(baseURL, token string, timeout int) *Client {
	if timeout <= 0 {
		timeout = 15
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: time.Duration(timeout) * time.Second},
	}
}

type listingsResponse struct {
	Paging struct {
		Total  int `json:"total"`
		Offset int `json:"offset"`
		Limit  int `json:"limit"`
	} `json:"paging"`
	Results []json.RawMessage `json:"results"`
}

type listingItem struct {
	ID                string          `json:"id"`
	Title             string          `json:"title"`
	Status            string          `json:"status"`
	Price             decimal.Decimal `json:"price"`
	AvailableQuantity int             `json:"available_quantity"`
	SoldQuantity      int             `json:"sold_quantity"`
	Permalink         string          `json:"permalink"`
}

type apiError struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// FetchListings GET {base}/users/{seller}/items?offset=&limit=.
func (c *Client) FetchListings(ctx context.Context, sellerID string, offset, limit int) (*app.ListingPage, error) {
	q := url.Values{}
	q.Set("offset", strconv.Itoa(offset))
	q.Set("limit", strconv.Itoa(limit))
	endpoint := fmt.Sprintf("%s/users/%s/items?%s", c.baseURL, url.PathEscape(sellerID), q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("marketplace: crear request: %w", err)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("marketplace: timeout o cancelación: %w", ctx.Err())
		}
		return nil, fmt.Errorf("marketplace: llamada HTTP fallida: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("marketplace: leer respuesta: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		var e apiError
		if json.Unmarshal(raw, &e) == nil && e.Message != "" {
			return nil, fmt.Errorf("marketplace: HTTP %d (%s): %s", resp.StatusCode, e.Error, e.Message)
		}
		return nil, fmt.Errorf("marketplace: HTTP %d", resp.StatusCode)
	}

	var body listingsResponse
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, fmt.Errorf("marketplace: deserializar respuesta: %w", err)
	}
	page := &app.ListingPage{Total: body.Paging.Total, Listings: make([]entity.Listing, 0, len(body.Results))}
	for _, r := range body.Results {
		var it listingItem
		if err := json.Unmarshal(r, &it); err != nil {
			return nil, fmt.Errorf("marketplace: publicación inválida: %w", err)
		}
		if it.ID == "" {
			continue
		}
		page.Listings = append(page.Listings, entity.Listing{
			ID:           it.ID,
			Title:        it.Title,
			Status:       it.Status,
			Price:        it.Price,
			AvailableQty: it.AvailableQuantity,
			SoldQty:      it.SoldQuantity,
			Permalink:    it.Permalink,
			Raw:          r,
		})
	}
	return page, nil
}

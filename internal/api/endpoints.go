package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

// Login exchanges credentials for session tokens. The tokens are returned at
// the top level of the response rather than inside the data envelope.
func (c *Client) Login(ctx context.Context, creds LoginRequest) (LoginResponse, error) {
	if c == nil {
		return LoginResponse{}, fmt.Errorf("client is nil")
	}
	const path = "/auth/login"
	body, err := jsonBody(creds)
	if err != nil {
		return LoginResponse{}, err
	}
	raw, err := c.send(ctx, http.MethodPost, &url.URL{Path: path}, body)
	if err != nil {
		return LoginResponse{}, err
	}
	var resp LoginResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return LoginResponse{}, decodeError(http.MethodPost, path, err)
	}
	if resp.AccessToken == "" {
		msg := strings.TrimSpace(resp.Message)
		if msg == "" {
			msg = "login returned no access token"
		}
		return LoginResponse{}, &Error{Kind: KindAPI, Method: http.MethodPost, Path: path, Message: msg}
	}
	return resp, nil
}

// CurrentUser returns the authenticated staff member.
func (c *Client) CurrentUser(ctx context.Context) (User, error) {
	var user User
	if err := c.Request(ctx, http.MethodGet, "/users/me", nil, &user); err != nil {
		return User{}, err
	}
	return user, nil
}

// ListOrders returns one page of orders matching q.
func (c *Client) ListOrders(ctx context.Context, q OrderQuery) (OrderPage, error) {
	if c == nil {
		return OrderPage{}, fmt.Errorf("client is nil")
	}
	var orders []Order
	rel := &url.URL{Path: "/orders", RawQuery: q.Values().Encode()}
	env, err := c.get(ctx, rel, &orders)
	if err != nil {
		return OrderPage{}, err
	}
	page := OrderPage{Orders: orders}
	if env.Pagination != nil {
		page.Pagination = *env.Pagination
	}
	return page, nil
}

// UpdateOrderStatus moves an order to status.
func (c *Client) UpdateOrderStatus(ctx context.Context, id int64, status OrderStatus) error {
	if !status.Valid() {
		return fmt.Errorf("invalid order status %q", status)
	}
	payload := struct {
		Status OrderStatus `json:"status"`
	}{status}
	return c.Request(ctx, http.MethodPut, "/orders/"+strconv.FormatInt(id, 10)+"/status", payload, nil)
}

// ShiftSummary returns the preparation summary for shift. An empty shift or
// "all" summarizes every shift.
func (c *Client) ShiftSummary(ctx context.Context, shift string) (ShiftSummary, error) {
	if c == nil {
		return ShiftSummary{}, fmt.Errorf("client is nil")
	}
	values := url.Values{}
	if s := strings.TrimSpace(shift); s != "" && s != "all" {
		values.Set("shift", s)
	}
	var summary ShiftSummary
	if _, err := c.get(ctx, &url.URL{Path: "/orders/shift/summary", RawQuery: values.Encode()}, &summary); err != nil {
		return ShiftSummary{}, err
	}
	return summary, nil
}

// Shifts lists the pickup time slots known to the server.
func (c *Client) Shifts(ctx context.Context) ([]string, error) {
	var shifts []string
	if err := c.Request(ctx, http.MethodGet, "/orders/shifts", nil, &shifts); err != nil {
		return nil, err
	}
	return shifts, nil
}

// ListProducts returns the full catalog.
func (c *Client) ListProducts(ctx context.Context) ([]Product, error) {
	var products []Product
	if err := c.Request(ctx, http.MethodGet, "/products", nil, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// GetProduct returns a single product.
func (c *Client) GetProduct(ctx context.Context, id int64) (Product, error) {
	var product Product
	if err := c.Request(ctx, http.MethodGet, productPath(id), nil, &product); err != nil {
		return Product{}, err
	}
	return product, nil
}

// CreateProduct uploads a new product. photo may be nil.
func (c *Client) CreateProduct(ctx context.Context, req ProductRequest, photo *Upload) error {
	if c == nil {
		return fmt.Errorf("client is nil")
	}
	req.Stock = nil
	body, err := encodeProduct(req, photo)
	if err != nil {
		return err
	}
	_, err = c.doURL(ctx, http.MethodPost, &url.URL{Path: "/products"}, body)
	return err
}

// UpdateProduct replaces product id with req. photo may be nil to keep the
// current image.
func (c *Client) UpdateProduct(ctx context.Context, id int64, req ProductRequest, photo *Upload) error {
	if c == nil {
		return fmt.Errorf("client is nil")
	}
	body, err := encodeProduct(req, photo)
	if err != nil {
		return err
	}
	_, err = c.doURL(ctx, http.MethodPut, &url.URL{Path: productPath(id)}, body)
	return err
}

// DeleteProduct removes a product.
func (c *Client) DeleteProduct(ctx context.Context, id int64) error {
	return c.Request(ctx, http.MethodDelete, productPath(id), nil, nil)
}

// ListSides returns every side dish.
func (c *Client) ListSides(ctx context.Context) ([]Side, error) {
	var sides []Side
	if err := c.Request(ctx, http.MethodGet, "/sides", nil, &sides); err != nil {
		return nil, err
	}
	return sides, nil
}

// ActiveSides returns the side dishes currently offered.
func (c *Client) ActiveSides(ctx context.Context) ([]Side, error) {
	var sides []Side
	if err := c.Request(ctx, http.MethodGet, "/sides/active", nil, &sides); err != nil {
		return nil, err
	}
	return sides, nil
}

// CreateSide adds a side dish.
func (c *Client) CreateSide(ctx context.Context, name string) (Side, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Side{}, fmt.Errorf("side name required")
	}
	payload := struct {
		Name string `json:"name"`
	}{name}
	var side Side
	if err := c.Request(ctx, http.MethodPost, "/sides", payload, &side); err != nil {
		return Side{}, err
	}
	return side, nil
}

// UpdateSide applies a partial update to a side dish.
func (c *Client) UpdateSide(ctx context.Context, id int64, update SideUpdate) (Side, error) {
	var side Side
	if err := c.Request(ctx, http.MethodPut, "/sides/"+strconv.FormatInt(id, 10), update, &side); err != nil {
		return Side{}, err
	}
	return side, nil
}

// DeleteSide removes a side dish.
func (c *Client) DeleteSide(ctx context.Context, id int64) error {
	return c.Request(ctx, http.MethodDelete, "/sides/"+strconv.FormatInt(id, 10), nil, nil)
}

// Stats returns revenue, counts and orders for the date range.
func (c *Client) Stats(ctx context.Context, q StatsQuery) (Stats, error) {
	if c == nil {
		return Stats{}, fmt.Errorf("client is nil")
	}
	values := url.Values{}
	if s := strings.TrimSpace(q.StartDate); s != "" {
		values.Set("start_date", s)
	}
	if e := strings.TrimSpace(q.EndDate); e != "" {
		values.Set("end_date", e)
	}
	var stats Stats
	if _, err := c.get(ctx, &url.URL{Path: "/stats", RawQuery: values.Encode()}, &stats); err != nil {
		return Stats{}, err
	}
	return stats, nil
}

func productPath(id int64) string {
	return "/products/" + strconv.FormatInt(id, 10)
}

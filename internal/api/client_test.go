package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
)

func TestParseBaseURL_DefaultsAndNormalizes(t *testing.T) {
	u, err := parseBaseURL("")
	if err != nil {
		t.Fatalf("parseBaseURL returned error: %v", err)
	}
	if u.String() != defaultBaseURL {
		t.Fatalf("url = %q, want %q", u.String(), defaultBaseURL)
	}

	u, err = parseBaseURL("api.example.com:8080/v1/?x=1#frag")
	if err != nil {
		t.Fatalf("parseBaseURL returned error: %v", err)
	}
	if u.Scheme != "http" || u.Path != "/v1" || u.RawQuery != "" || u.Fragment != "" {
		t.Fatalf("url not normalized: %q", u.String())
	}

	if _, err := parseBaseURL("http://"); err == nil {
		t.Fatal("expected error for missing host")
	}
}

func writeEnvelope(t *testing.T, w http.ResponseWriter, data any, extra map[string]any) {
	t.Helper()
	body := map[string]any{"success": true, "message": "ok", "data": data}
	for k, v := range extra {
		body[k] = v
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(body); err != nil {
		t.Errorf("encode response: %v", err)
	}
}

func TestClient_ListOrdersEncodesQueryAndPagination(t *testing.T) {
	t.Parallel()

	var gotQuery url.Values
	var gotAuth, gotRequestID string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/orders" {
			http.NotFound(w, r)
			return
		}
		gotQuery = r.URL.Query()
		gotAuth = r.Header.Get("Authorization")
		gotRequestID = r.Header.Get("X-Request-Id")
		writeEnvelope(t, w, []map[string]any{
			{"id": 7, "status": "PENDING", "totalPrice": 2400, "shift": "12-13", "user": map[string]any{"name": "Ana", "nationalId": "30111222"}},
		}, map[string]any{"pagination": map[string]any{"page": 2, "limit": 10, "total": 11, "totalPages": 2, "hasPrev": true}})
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL+"/api", WithTokenSource(TokenFunc(func() string { return "tok" })))
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)

	page, err := c.ListOrders(ctx, OrderQuery{Search: " ana ", Status: StatusPending, Shift: "12-13", Page: 2, Limit: 10})
	if err != nil {
		t.Fatalf("ListOrders returned error: %v", err)
	}
	if len(page.Orders) != 1 || page.Orders[0].ID != 7 || page.Orders[0].User.NationalID != "30111222" {
		t.Fatalf("orders = %#v", page.Orders)
	}
	if page.Orders[0].TotalPrice.String() != "2400" {
		t.Fatalf("total price = %s, want 2400", page.Orders[0].TotalPrice)
	}
	if page.Pagination.TotalPages != 2 || !page.Pagination.HasPrev {
		t.Fatalf("pagination = %#v", page.Pagination)
	}
	want := url.Values{"search": {"ana"}, "status": {"PENDING"}, "shift": {"12-13"}, "page": {"2"}, "limit": {"10"}}
	if gotQuery.Encode() != want.Encode() {
		t.Fatalf("query = %q, want %q", gotQuery.Encode(), want.Encode())
	}
	if gotAuth != "Bearer tok" {
		t.Fatalf("Authorization = %q, want Bearer tok", gotAuth)
	}
	if gotRequestID == "" {
		t.Fatal("X-Request-Id header missing")
	}
}

func TestClient_OmitsAuthorizationWithoutToken(t *testing.T) {
	t.Parallel()

	var sawAuth bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, sawAuth = r.Header["Authorization"]
		writeEnvelope(t, w, []string{"11-12", "12-13"}, nil)
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL, WithTokenSource(TokenFunc(func() string { return "" })))
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	shifts, err := c.Shifts(context.Background())
	if err != nil {
		t.Fatalf("Shifts returned error: %v", err)
	}
	if len(shifts) != 2 {
		t.Fatalf("shifts = %v", shifts)
	}
	if sawAuth {
		t.Fatal("Authorization header sent without a token")
	}
}

func TestClient_ErrorNormalization(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		handler  http.HandlerFunc
		wantKind Kind
		wantMsg  string
	}{
		{
			name: "server message",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusBadRequest)
				_, _ = w.Write([]byte(`{"success":false,"message":"Producto inexistente"}`))
			},
			wantKind: KindHTTP,
			wantMsg:  "Producto inexistente",
		},
		{
			name: "status fallback",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusBadGateway)
				_, _ = w.Write([]byte("<html>bad gateway</html>"))
			},
			wantKind: KindHTTP,
			wantMsg:  "request failed with status 502",
		},
		{
			name: "unauthorized",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusUnauthorized)
			},
			wantKind: KindUnauthorized,
			wantMsg:  "request failed with status 401",
		},
		{
			name: "success false",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(`{"success":false,"message":"Sin permisos"}`))
			},
			wantKind: KindAPI,
			wantMsg:  "Sin permisos",
		},
		{
			name: "undecodable",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(`{"success":true,"data":{"id":"x"}`))
			},
			wantKind: KindDecode,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			server := httptest.NewServer(tt.handler)
			t.Cleanup(server.Close)

			c, err := NewClient(server.URL)
			if err != nil {
				t.Fatalf("NewClient returned error: %v", err)
			}
			_, err = c.GetProduct(context.Background(), 1)
			if err == nil {
				t.Fatal("expected error")
			}
			var apiErr *Error
			if !errors.As(err, &apiErr) {
				t.Fatalf("error %T is not *api.Error", err)
			}
			if apiErr.Kind != tt.wantKind {
				t.Fatalf("kind = %q, want %q", apiErr.Kind, tt.wantKind)
			}
			if tt.wantMsg != "" && err.Error() != tt.wantMsg {
				t.Fatalf("message = %q, want %q", err.Error(), tt.wantMsg)
			}
			if tt.wantKind == KindUnauthorized && !IsUnauthorized(err) {
				t.Fatal("IsUnauthorized = false")
			}
		})
	}
}

func TestClient_TimeoutIsClassified(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(func() {
		close(release)
		server.Close()
	})

	c, err := NewClient(server.URL, WithTimeout(50*time.Millisecond))
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	_, err = c.ListProducts(context.Background())
	if KindOf(err) != KindTimeout {
		t.Fatalf("kind = %q (err %v), want timeout", KindOf(err), err)
	}
}

func TestClient_TransportFailure(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.NotFoundHandler())
	addr := server.URL
	server.Close()

	c, err := NewClient(addr)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	_, err = c.CurrentUser(context.Background())
	if KindOf(err) != KindTransport {
		t.Fatalf("kind = %q (err %v), want transport", KindOf(err), err)
	}
}

func TestClient_LoginReadsTopLevelTokens(t *testing.T) {
	t.Parallel()

	var got LoginRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/auth/login" {
			http.NotFound(w, r)
			return
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode login body: %v", err)
		}
		_, _ = w.Write([]byte(`{"success":true,"message":"ok","accessToken":"a","refreshToken":"r","idToken":"i","data":{"email":"ana@example.com","expiresIn":3600}}`))
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	resp, err := c.Login(context.Background(), LoginRequest{Email: "ana@example.com", Password: "secret"})
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if resp.AccessToken != "a" || resp.RefreshToken != "r" || resp.Data.ExpiresIn != 3600 {
		t.Fatalf("login response = %#v", resp)
	}
	if got.Email != "ana@example.com" || got.Password != "secret" {
		t.Fatalf("login body = %#v", got)
	}
}

func TestClient_ShiftSummaryOmitsAllShift(t *testing.T) {
	t.Parallel()

	var queries []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		queries = append(queries, r.URL.RawQuery)
		writeEnvelope(t, w, map[string]any{"shift": "12-13", "totalMainDishes": 3}, nil)
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	for _, shift := range []string{"all", "", "12-13"} {
		if _, err := c.ShiftSummary(context.Background(), shift); err != nil {
			t.Fatalf("ShiftSummary(%q) returned error: %v", shift, err)
		}
	}
	want := []string{"", "", "shift=12-13"}
	if strings.Join(queries, "|") != strings.Join(want, "|") {
		t.Fatalf("queries = %q, want %q", queries, want)
	}
}

func TestClient_UpdateOrderStatusRejectsUnknownStatus(t *testing.T) {
	c, err := NewClient("127.0.0.1:1")
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	if err := c.UpdateOrderStatus(context.Background(), 1, OrderStatus("LOST")); err == nil {
		t.Fatal("expected error for unknown status")
	}
}

func TestClient_NilReceiver(t *testing.T) {
	var c *Client
	if _, err := c.ListOrders(context.Background(), OrderQuery{}); err == nil {
		t.Fatal("expected error from nil client")
	}
	if err := c.Request(context.Background(), http.MethodGet, "/x", nil, nil); err == nil {
		t.Fatal("expected error from nil client")
	}
}

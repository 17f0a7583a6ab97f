package api

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/goccy/go-json"
	"github.com/shopspring/decimal"
)

type capturedProduct struct {
	method string
	path   string
	fields map[string]string
	photo  string
}

func captureProductServer(t *testing.T) (*httptest.Server, *capturedProduct, *int) {
	t.Helper()
	got := &capturedProduct{}
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		got.method = r.Method
		got.path = r.URL.Path
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("ParseMultipartForm: %v", err)
			return
		}
		got.fields = map[string]string{}
		for k, v := range r.MultipartForm.Value {
			got.fields[k] = v[0]
		}
		if files := r.MultipartForm.File["photo"]; len(files) == 1 {
			f, err := files[0].Open()
			if err == nil {
				data, _ := io.ReadAll(f)
				_ = f.Close()
				got.photo = files[0].Filename + ":" + string(data)
			}
		}
		_, _ = w.Write([]byte(`{"success":true,"message":"created"}`))
	}))
	t.Cleanup(server.Close)
	return server, got, &calls
}

func TestCreateProduct_MultipartFields(t *testing.T) {
	server, got, calls := captureProductServer(t)
	c, err := NewClient(server.URL)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}

	req := ProductRequest{
		Name:                 "Milanesa",
		Description:          "desc",
		Price:                decimal.RequireFromString("1200"),
		Restrictions:         RestrictionCodes([]string{"Sin gluten"}),
		AllowsClarifications: true,
		Type:                 ProductFood,
	}
	if err := c.CreateProduct(context.Background(), req, nil); err != nil {
		t.Fatalf("CreateProduct returned error: %v", err)
	}

	if *calls != 1 || got.method != http.MethodPost || got.path != "/products" {
		t.Fatalf("calls=%d method=%s path=%s", *calls, got.method, got.path)
	}
	want := map[string]string{
		"name":                 "Milanesa",
		"description":          "desc",
		"price":                "1200",
		"restrictions":         `["GLUTEN_FREE"]`,
		"sides":                "[]",
		"allowsClarifications": "true",
		"type":                 "FOOD",
	}
	if !reflect.DeepEqual(got.fields, want) {
		t.Fatalf("fields = %v, want %v", got.fields, want)
	}
	if got.photo != "" {
		t.Fatalf("unexpected photo part %q", got.photo)
	}
}

func TestUpdateProduct_SendsStockAndPhoto(t *testing.T) {
	server, got, _ := captureProductServer(t)
	c, err := NewClient(server.URL)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	photo := filepath.Join(t.TempDir(), "mila.jpg")
	if err := os.WriteFile(photo, []byte("jpeg"), 0o644); err != nil {
		t.Fatalf("write photo: %v", err)
	}

	product := Product{
		ID:           42,
		Name:         "Milanesa",
		Price:        decimal.NewFromInt(1500),
		Restrictions: []string{"GLUTEN_FREE", "Vegano"},
		Sides:        SideNames{"Puré"},
		Type:         ProductFood,
		Stock:        3,
	}
	if err := c.UpdateProduct(context.Background(), 42, RequestFromProduct(product, 9), &Upload{Path: photo}); err != nil {
		t.Fatalf("UpdateProduct returned error: %v", err)
	}
	if got.method != http.MethodPut || got.path != "/products/42" {
		t.Fatalf("method=%s path=%s", got.method, got.path)
	}
	if got.fields["stock"] != "9" {
		t.Fatalf("stock = %q, want 9", got.fields["stock"])
	}
	if got.fields["restrictions"] != `["GLUTEN_FREE","VEGAN"]` {
		t.Fatalf("restrictions = %q", got.fields["restrictions"])
	}
	if got.fields["sides"] != `["Puré"]` {
		t.Fatalf("sides = %q", got.fields["sides"])
	}
	if got.photo != "mila.jpg:jpeg" {
		t.Fatalf("photo = %q", got.photo)
	}
}

func TestRestrictionMapping(t *testing.T) {
	codes := RestrictionCodes([]string{"Sin lactosa", "SUGAR_FREE", "Picante"})
	if !reflect.DeepEqual(codes, []string{"LACTOSE_FREE", "SUGAR_FREE"}) {
		t.Fatalf("RestrictionCodes = %v", codes)
	}
	labels := RestrictionLabels([]string{"VEGAN", "Sin gluten", "UNKNOWN"})
	if !reflect.DeepEqual(labels, []string{"Vegano", "Sin gluten"}) {
		t.Fatalf("RestrictionLabels = %v", labels)
	}
}

func TestSideNames_DecodesStringsAndObjects(t *testing.T) {
	var p Product
	if err := json.Unmarshal([]byte(`{"id":1,"sides":["Puré",{"id":2,"name":"Ensalada"}],"price":"99.5"}`), &p); err != nil {
		t.Fatalf("Unmarshal returned error: %v", err)
	}
	if !reflect.DeepEqual([]string(p.Sides), []string{"Puré", "Ensalada"}) {
		t.Fatalf("sides = %v", p.Sides)
	}
	if p.Price.String() != "99.5" {
		t.Fatalf("price = %s", p.Price)
	}
}

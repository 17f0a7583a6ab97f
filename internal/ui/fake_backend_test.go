package ui

import (
	"context"
	"sync"

	"github.com/five82/comanda/internal/api"
)

// fakeBackend records calls and serves fixed data.
type fakeBackend struct {
	mu       sync.Mutex
	products []api.Product
	sides    []api.Side
	calls    map[string]int
	err      error
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{calls: make(map[string]int)}
}

func (f *fakeBackend) record(name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[name]++
	return f.err
}

func (f *fakeBackend) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeBackend) ListOrders(ctx context.Context, q api.OrderQuery) (api.OrderPage, error) {
	return api.OrderPage{Pagination: api.Pagination{Page: q.Page, Limit: q.Limit}}, f.record("ListOrders")
}

func (f *fakeBackend) ShiftSummary(ctx context.Context, shift string) (api.ShiftSummary, error) {
	return api.ShiftSummary{Shift: shift}, f.record("ShiftSummary")
}

func (f *fakeBackend) UpdateOrderStatus(ctx context.Context, id int64, status api.OrderStatus) error {
	return f.record("UpdateOrderStatus")
}

func (f *fakeBackend) ListProducts(ctx context.Context) ([]api.Product, error) {
	err := f.record("ListProducts")
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]api.Product(nil), f.products...), err
}

func (f *fakeBackend) Stats(ctx context.Context, q api.StatsQuery) (api.Stats, error) {
	return api.Stats{}, f.record("Stats")
}

func (f *fakeBackend) UpdateProduct(ctx context.Context, id int64, req api.ProductRequest, photo *api.Upload) error {
	return f.record("UpdateProduct")
}

func (f *fakeBackend) UpdateSide(ctx context.Context, id int64, update api.SideUpdate) (api.Side, error) {
	return api.Side{ID: id}, f.record("UpdateSide")
}

func (f *fakeBackend) Shifts(ctx context.Context) ([]string, error) {
	return []string{"15-16"}, f.record("Shifts")
}

func (f *fakeBackend) GetProduct(ctx context.Context, id int64) (api.Product, error) {
	return api.Product{ID: id}, f.record("GetProduct")
}

func (f *fakeBackend) CreateProduct(ctx context.Context, req api.ProductRequest, photo *api.Upload) error {
	return f.record("CreateProduct")
}

func (f *fakeBackend) DeleteProduct(ctx context.Context, id int64) error {
	return f.record("DeleteProduct")
}

func (f *fakeBackend) ListSides(ctx context.Context) ([]api.Side, error) {
	err := f.record("ListSides")
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]api.Side(nil), f.sides...), err
}

func (f *fakeBackend) ActiveSides(ctx context.Context) ([]api.Side, error) {
	return nil, f.record("ActiveSides")
}

func (f *fakeBackend) CreateSide(ctx context.Context, name string) (api.Side, error) {
	return api.Side{Name: name, IsActive: true}, f.record("CreateSide")
}

func (f *fakeBackend) DeleteSide(ctx context.Context, id int64) error {
	return f.record("DeleteSide")
}

var _ Backend = (*fakeBackend)(nil)

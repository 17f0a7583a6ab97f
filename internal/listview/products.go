package listview

import (
	"context"
	"sync"

	"github.com/five82/comanda/internal/api"
	"github.com/five82/comanda/internal/query"
)

// ProductsSource is the part of the API client the products view uses.
type ProductsSource interface {
	ListProducts(ctx context.Context) ([]api.Product, error)
}

// Products owns the catalog view's query.
type Products struct {
	mu      sync.Mutex
	cache   *query.Cache
	source  ProductsSource
	sub     *query.Subscription
	changes chan struct{}
}

// NewProducts returns an unmounted products controller.
func NewProducts(cache *query.Cache, source ProductsSource) *Products {
	return &Products{cache: cache, source: source, changes: make(chan struct{}, 1)}
}

// Mount subscribes to the product list.
func (p *Products) Mount() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.sub != nil {
		return
	}
	p.sub = p.cache.Subscribe(ProductsKey, func(ctx context.Context) (any, error) {
		return p.source.ListProducts(ctx)
	})
	go forward(p.sub, p.changes)
}

// Unmount releases the product list query.
func (p *Products) Unmount() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sub.Close()
	p.sub = nil
}

// Changes signals whenever the product list changes.
func (p *Products) Changes() <-chan struct{} { return p.changes }

// Result returns the current query result.
func (p *Products) Result() query.Result {
	p.mu.Lock()
	sub := p.sub
	p.mu.Unlock()
	if sub == nil {
		return query.Result{}
	}
	return sub.Result()
}

// Products returns the loaded catalog.
func (p *Products) Products() ([]api.Product, bool) {
	return query.Data[[]api.Product](p.Result())
}

// View derives the render state. An empty catalog invites creating the
// first product.
func (p *Products) View() View {
	return Derive(p.Result(), func(data any) bool {
		products, _ := data.([]api.Product)
		return len(products) == 0
	})
}

// Refetch reloads the catalog.
func (p *Products) Refetch() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.sub != nil {
		p.sub.Refetch()
	}
}

package modal

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestController_CloseClearsProps(t *testing.T) {
	var c Controller
	assert.False(t, c.Current().Open())

	c.Open(ProductModal, Props{ProductID: "42"})
	assert.Equal(t, Session{ID: ProductModal, Props: Props{ProductID: "42"}}, c.Current())

	c.Close()
	assert.Equal(t, Session{}, c.Current())

	c.Open(NewProductModal, Props{})
	assert.Equal(t, NewProductModal, c.Current().ID)
	assert.Equal(t, Props{}, c.Current().Props)
}

func TestController_OpenReplaces(t *testing.T) {
	var c Controller
	c.Open(ProductModal, Props{ProductID: "1"})
	c.Open(DeleteConfirmationModal, Props{ProductID: "1", ProductName: "Milanesa", Title: "¿Eliminar Producto?"})
	assert.Equal(t, DeleteConfirmationModal, c.Current().ID)
	assert.Equal(t, "Milanesa", c.Current().Props.ProductName)

	c.Open(None, Props{ProductID: "9"})
	assert.False(t, c.Current().Open())
}

func TestRegistry_ResolveAndValidate(t *testing.T) {
	r := NewRegistry[string]()
	r.Register(ProductModal, Entry[string]{Title: "Producto", Size: Large, New: func(p Props) string { return "product " + p.ProductID }})

	entry, err := r.Resolve(ProductModal)
	require.NoError(t, err)
	assert.Equal(t, Large, entry.Size)
	assert.Equal(t, "product 7", entry.New(Props{ProductID: "7"}))

	_, err = r.Resolve(OrderStatusModal)
	assert.True(t, errors.Is(err, ErrUnknownModal))
	_, err = r.Resolve(ID(99))
	assert.ErrorIs(t, err, ErrUnknownModal)

	err = r.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sides")

	for _, id := range IDs {
		r.Register(id, Entry[string]{New: func(Props) string { return id.String() }})
	}
	assert.NoError(t, r.Validate())
}

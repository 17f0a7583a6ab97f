package form

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/five82/comanda/internal/api"
)

// Choice values of the product form.
const (
	Yes   = "yes"
	No    = "no"
	Food  = "food"
	Drink = "drink"
)

// Product is the create/edit product form.
type Product struct {
	Name                 string   `form:"name" validate:"required"`
	Description          string   `form:"description" validate:"required"`
	Price                string   `form:"price" validate:"required,price"`
	Restrictions         []string `form:"restrictions"`
	Sides                []string `form:"sides"`
	AllowsClarifications string   `form:"allowsClarifications" validate:"oneof=yes no"`
	ProductType          string   `form:"productType" validate:"oneof=food drink"`
	ImagePath            string   `form:"image" validate:"omitempty,file"`
	ExistingPhoto        string   `form:"-"`
}

// NewProduct returns the blank form.
func NewProduct() Product {
	return Product{AllowsClarifications: Yes, ProductType: Food}
}

// FromProduct fills the form for editing p.
func FromProduct(p api.Product) Product {
	f := NewProduct()
	f.Name = p.Name
	f.Description = p.Description
	if !p.Price.IsZero() {
		f.Price = p.Price.String()
	}
	f.Restrictions = api.RestrictionLabels(p.Restrictions)
	f.Sides = append([]string(nil), p.Sides...)
	if !p.AllowsClarifications {
		f.AllowsClarifications = No
	}
	if p.Type == api.ProductBeverage {
		f.ProductType = Drink
	}
	f.ExistingPhoto = p.Photo
	return f
}

// Validate trims text fields and checks the form.
func (p *Product) Validate() Errors {
	p.Name = strings.TrimSpace(p.Name)
	p.Description = strings.TrimSpace(p.Description)
	p.Price = strings.TrimSpace(p.Price)
	p.ImagePath = strings.TrimSpace(p.ImagePath)
	return check(p)
}

// ToRequest validates the form and builds the API payload. stock is only set
// for updates.
func (p *Product) ToRequest(stock *int) (api.ProductRequest, *api.Upload, error) {
	if errs := p.Validate(); errs != nil {
		return api.ProductRequest{}, nil, errs
	}
	price, err := decimal.NewFromString(PriceDigits(p.Price))
	if err != nil {
		return api.ProductRequest{}, nil, fmt.Errorf("parse price: %w", err)
	}
	typ := api.ProductFood
	if p.ProductType == Drink {
		typ = api.ProductBeverage
	}
	req := api.ProductRequest{
		Name:                 p.Name,
		Description:          p.Description,
		Price:                price,
		Restrictions:         api.RestrictionCodes(p.Restrictions),
		Sides:                append([]string{}, p.Sides...),
		AllowsClarifications: p.AllowsClarifications == Yes,
		Type:                 typ,
		Stock:                stock,
	}
	var photo *api.Upload
	if p.ImagePath != "" {
		photo = &api.Upload{Path: p.ImagePath}
	}
	return req, photo, nil
}

// Toggle adds value to list or removes it when present.
func Toggle(list []string, value string) []string {
	for i, v := range list {
		if v == value {
			return append(append([]string{}, list[:i]...), list[i+1:]...)
		}
	}
	return append(append([]string{}, list...), value)
}

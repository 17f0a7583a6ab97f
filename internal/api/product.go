package api

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"github.com/shopspring/decimal"
)

// Restriction labels shown to operators, in display order.
const (
	RestrictionGlutenFree  = "Sin gluten"
	RestrictionLactoseFree = "Sin lactosa"
	RestrictionSugarFree   = "Sin azúcar"
	RestrictionVegan       = "Vegano"
)

// Restrictions lists the dietary restriction labels in display order.
var Restrictions = []string{RestrictionGlutenFree, RestrictionLactoseFree, RestrictionSugarFree, RestrictionVegan}

var restrictionCodes = map[string]string{
	RestrictionGlutenFree:  "GLUTEN_FREE",
	RestrictionLactoseFree: "LACTOSE_FREE",
	RestrictionSugarFree:   "SUGAR_FREE",
	RestrictionVegan:       "VEGAN",
}

// RestrictionCodes maps labels to the API's enum codes. Values that are
// already codes pass through; unknown values are dropped.
func RestrictionCodes(values []string) []string {
	codes := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if code, ok := restrictionCodes[v]; ok {
			codes = append(codes, code)
			continue
		}
		if restrictionLabel(v) != "" {
			codes = append(codes, v)
		}
	}
	return codes
}

// RestrictionLabels maps enum codes back to labels. Labels pass through;
// unknown values are dropped.
func RestrictionLabels(values []string) []string {
	labels := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if _, ok := restrictionCodes[v]; ok {
			labels = append(labels, v)
			continue
		}
		if label := restrictionLabel(v); label != "" {
			labels = append(labels, label)
		}
	}
	return labels
}

func restrictionLabel(code string) string {
	for label, c := range restrictionCodes {
		if c == code {
			return label
		}
	}
	return ""
}

// ProductRequest is the body of product create and update calls.
type ProductRequest struct {
	Name                 string
	Description          string
	Price                decimal.Decimal
	Restrictions         []string // enum codes
	Sides                []string // side names
	AllowsClarifications bool
	Type                 ProductType
	Stock                *int // sent only on update
}

// RequestFromProduct builds a full update payload from p with a new stock
// value. Updates replace the whole product, so every field is carried over.
func RequestFromProduct(p Product, stock int) ProductRequest {
	sides := make([]string, len(p.Sides))
	copy(sides, p.Sides)
	return ProductRequest{
		Name:                 p.Name,
		Description:          p.Description,
		Price:                p.Price,
		Restrictions:         RestrictionCodes(p.Restrictions),
		Sides:                sides,
		AllowsClarifications: p.AllowsClarifications,
		Type:                 p.Type,
		Stock:                &stock,
	}
}

// Upload is a local image sent as the product photo.
type Upload struct {
	Path string
}

func encodeProduct(req ProductRequest, photo *Upload) (*requestBody, error) {
	restrictions := req.Restrictions
	if restrictions == nil {
		restrictions = []string{}
	}
	sides := req.Sides
	if sides == nil {
		sides = []string{}
	}
	restrictionsJSON, err := json.Marshal(restrictions)
	if err != nil {
		return nil, fmt.Errorf("encode restrictions: %w", err)
	}
	sidesJSON, err := json.Marshal(sides)
	if err != nil {
		return nil, fmt.Errorf("encode sides: %w", err)
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fields := [][2]string{
		{"name", req.Name},
		{"description", req.Description},
		{"price", req.Price.String()},
		{"restrictions", string(restrictionsJSON)},
		{"sides", string(sidesJSON)},
		{"allowsClarifications", strconv.FormatBool(req.AllowsClarifications)},
		{"type", string(req.Type)},
	}
	if req.Stock != nil {
		fields = append(fields, [2]string{"stock", strconv.Itoa(*req.Stock)})
	}
	for _, f := range fields {
		if err := w.WriteField(f[0], f[1]); err != nil {
			return nil, fmt.Errorf("write field %s: %w", f[0], err)
		}
	}
	if photo != nil && photo.Path != "" {
		if err := writePhoto(w, photo.Path); err != nil {
			return nil, err
		}
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("close multipart body: %w", err)
	}
	return &requestBody{contentType: w.FormDataContentType(), data: buf.Bytes()}, nil
}

func writePhoto(w *multipart.Writer, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open photo: %w", err)
	}
	defer func() { _ = f.Close() }()
	part, err := w.CreateFormFile("photo", filepath.Base(path))
	if err != nil {
		return fmt.Errorf("create photo part: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return fmt.Errorf("copy photo: %w", err)
	}
	return nil
}

package httpapi

import (
	"context"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/acksell/catalog"
	"github.com/acksell/catalog/filter"
	"github.com/acksell/catalog/service"
	"github.com/go-chi/chi/v5"
)

// ProductService is what the product handlers need. *service.ProductService
// implements it.
type ProductService interface {
	Create(ctx context.Context, in service.CreateInput) (catalog.Product, error)
	Get(ctx context.Context, sku string) (catalog.Product, error)
	Update(ctx context.Context, sku string, patch catalog.Patch) (catalog.Product, error)
	Delete(ctx context.Context, sku string) error
	List(ctx context.Context, f catalog.Filter) (filter.Page, error)
}

type productHandler struct {
	svc    ProductService
	logger *slog.Logger
}

type createProductRequest struct {
	SKU         string  `json:"sku" validate:"required,max=100"`
	Name        string  `json:"name" validate:"required,max=100,excludes=#"`
	Category    string  `json:"category" validate:"required,max=100,excludes=#"`
	Brand       string  `json:"brand" validate:"required,max=100,excludes=#"`
	Price       float64 `json:"price" validate:"gte=0,lte=9999999999.99"`
	Stock       int     `json:"stock" validate:"gte=0"`
	Description string  `json:"description" validate:"max=1000"`
}

type updateProductRequest struct {
	Name        *string  `json:"name" validate:"omitempty,min=1,max=100,excludes=#"`
	Category    *string  `json:"category" validate:"omitempty,min=1,max=100,excludes=#"`
	Brand       *string  `json:"brand" validate:"omitempty,min=1,max=100,excludes=#"`
	Price       *float64 `json:"price" validate:"omitnil,gte=0,lte=9999999999.99"`
	Stock       *int     `json:"stock" validate:"omitnil,gte=0"`
	Description *string  `json:"description" validate:"omitnil,max=1000"`
}

type productResponse struct {
	SKU         string    `json:"sku"`
	Name        string    `json:"name"`
	Category    string    `json:"category"`
	Brand       string    `json:"brand"`
	Price       float64   `json:"price"`
	Stock       int       `json:"stock"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func toResponse(p catalog.Product) productResponse {
	return productResponse{
		SKU:         p.SKU,
		Name:        p.Name,
		Category:    p.Category,
		Brand:       p.Brand,
		Price:       p.Price,
		Stock:       p.Stock,
		Description: p.Description,
		CreatedAt:   p.Meta.Created,
		UpdatedAt:   p.Meta.Updated,
	}
}

type listResponse struct {
	Data     []productResponse `json:"data"`
	Cursor   string            `json:"cursor,omitempty"`
	Total    int               `json:"total"`
	Page     int               `json:"page"`
	PageSize int               `json:"pageSize"`
}

// list handles GET /api/v1/products.
func (h *productHandler) list(w http.ResponseWriter, r *http.Request) {
	f, err := parseFilter(r.URL.Query())
	if err != nil {
		writeBadRequest(w, r, "INVALID_PARAMETER", err.Error())
		return
	}
	page, err := h.svc.List(r.Context(), f)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	resp := listResponse{
		Data:     make([]productResponse, len(page.Products)),
		Cursor:   page.Cursor,
		Total:    page.Total,
		Page:     page.Number,
		PageSize: page.Size,
	}
	for i, p := range page.Products {
		resp.Data[i] = toResponse(p)
	}
	writeJSON(w, http.StatusOK, resp)
}

type paramError struct {
	name, reason string
}

func (e *paramError) Error() string {
	return e.name + " " + e.reason
}

// parseFilter reads a search from query parameters. A cursor overrides page
// and pageSize.
func parseFilter(q url.Values) (catalog.Filter, error) {
	f := catalog.Filter{
		Brand:       q.Get("brand"),
		Category:    q.Get("category"),
		ProductName: q.Get("productName"),
	}
	var err error
	if f.MinPrice, err = floatParam(q, "minPrice"); err != nil {
		return f, err
	}
	if f.MaxPrice, err = floatParam(q, "maxPrice"); err != nil {
		return f, err
	}
	if f.MinStock, err = intParam(q, "minStock"); err != nil {
		return f, err
	}
	if f.MaxStock, err = intParam(q, "maxStock"); err != nil {
		return f, err
	}
	if f.OrderBy, err = catalog.ParseSortField(q.Get("orderBy")); err != nil {
		return f, &paramError{"orderBy", "must be one of: name, price, stock, category, brand"}
	}
	if f.Direction, err = catalog.ParseDirection(q.Get("orderDirection")); err != nil {
		return f, &paramError{"orderDirection", "must be ASC or DESC"}
	}
	for _, p := range []struct {
		name string
		dst  *int
	}{{"page", &f.Page}, {"pageSize", &f.PageSize}} {
		v, err := intParam(q, p.name)
		if err != nil {
			return f, err
		}
		if v != nil {
			if *v < 1 {
				return f, &paramError{p.name, "must be a positive integer"}
			}
			*p.dst = *v
		}
	}
	if raw := q.Get("cursor"); raw != "" {
		c, err := filter.DecodeCursor(raw)
		if err != nil {
			return f, &paramError{"cursor", "is not a valid cursor"}
		}
		f = c.Apply(f)
	}
	return f, nil
}

func floatParam(q url.Values, name string) (*float64, error) {
	v := q.Get(name)
	if v == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, &paramError{name, "must be a finite number"}
	}
	return &f, nil
}

func intParam(q url.Values, name string) (*int, error) {
	v := q.Get(name)
	if v == "" {
		return nil, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return nil, &paramError{name, "must be an integer"}
	}
	return &i, nil
}

// get handles GET /api/v1/products/{sku}.
func (h *productHandler) get(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.Get(r.Context(), chi.URLParam(r, "sku"))
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, Response{Data: toResponse(p)})
}

// create handles POST /api/v1/products.
func (h *productHandler) create(w http.ResponseWriter, r *http.Request) {
	var req createProductRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeValidationError(w, r, err)
		return
	}
	p, err := h.svc.Create(r.Context(), service.CreateInput{
		SKU:         req.SKU,
		Name:        req.Name,
		Category:    req.Category,
		Brand:       req.Brand,
		Price:       req.Price,
		Stock:       req.Stock,
		Description: req.Description,
	})
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusCreated, Response{Data: toResponse(p)})
}

// update handles PATCH /api/v1/products/{sku}.
func (h *productHandler) update(w http.ResponseWriter, r *http.Request) {
	var req updateProductRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeValidationError(w, r, err)
		return
	}
	patch := catalog.Patch{
		Name:        req.Name,
		Category:    req.Category,
		Brand:       req.Brand,
		Price:       req.Price,
		Stock:       req.Stock,
		Description: req.Description,
	}
	if patch.IsEmpty() {
		writeBadRequest(w, r, "INVALID_INPUT", "at least one field must be supplied")
		return
	}
	p, err := h.svc.Update(r.Context(), chi.URLParam(r, "sku"), patch)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, Response{Data: toResponse(p)})
}

// remove handles DELETE /api/v1/products/{sku}.
func (h *productHandler) remove(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), chi.URLParam(r, "sku")); err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

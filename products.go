package paddle

import (
	"context"
	"iter"
	"net/http"
	"slices"

	"github.com/ccxlv/paddle-go/internal/params"
	"github.com/ccxlv/paddle-go/models"
)

const productsPath = "/products"

// ListProductsParams filters a product list.
type ListProductsParams struct {
	After       *string                 `url:"after"`
	ID          []string                `url:"id"           validate:"omitempty,dive,notblank"`
	Include     []models.ProductInclude `url:"include"      validate:"omitempty,dive,oneof=prices"`
	OrderBy     *models.ProductOrderBy  `url:"order_by"     validate:"omitnil,oneof=created_at[ASC] created_at[DESC] custom_data[ASC] custom_data[DESC] description[ASC] description[DESC] id[ASC] id[DESC] image_url[ASC] image_url[DESC] name[ASC] name[DESC] status[ASC] status[DESC] tax_category[ASC] tax_category[DESC] updated_at[ASC] updated_at[DESC]"`
	PerPage     *int                    `url:"per_page"     validate:"omitnil,min=1,max=200"`
	Status      []models.Status         `url:"status"       validate:"omitempty,dive,status"`
	TaxCategory []models.TaxCategory    `url:"tax_category" validate:"omitempty,dive,tax_category"`
	Type        *models.ProductType     `url:"type"         validate:"omitnil,oneof=custom standard"`
}

func (p *ListProductsParams) values() params.Values {
	return params.Values{
		"after":        p.After,
		"id":           p.ID,
		"include":      p.Include,
		"order_by":     p.OrderBy,
		"per_page":     perPage(p.PerPage),
		"status":       p.Status,
		"tax_category": p.TaxCategory,
		"type":         p.Type,
	}
}

// CreateProductParams creates a product. Name and TaxCategory are required.
type CreateProductParams struct {
	Name        string              `json:"name"         validate:"required,notblank"`
	TaxCategory models.TaxCategory  `json:"tax_category" validate:"required,tax_category"`
	Description *string             `json:"description"`
	Type        *models.ProductType `json:"type"         validate:"omitnil,oneof=custom standard"`
	ImageURL    *string             `json:"image_url"    validate:"omitnil,url"`
	CustomData  models.CustomData   `json:"custom_data"`
}

func (p *CreateProductParams) values() params.Values {
	return params.Values{
		"name":         p.Name,
		"tax_category": p.TaxCategory,
		"description":  p.Description,
		"type":         p.Type,
		"image_url":    p.ImageURL,
		"custom_data":  p.CustomData,
	}
}

// GetProductParams selects related entities to embed.
type GetProductParams struct {
	Include []models.ProductInclude `url:"include" validate:"omitempty,dive,oneof=prices"`
}

func (p *GetProductParams) values() params.Values {
	return params.Values{"include": p.Include}
}

// UpdateProductParams changes a product. Only set fields are sent.
type UpdateProductParams struct {
	Name        *string             `json:"name"         validate:"omitnil,notblank"`
	Description *string             `json:"description"`
	Type        *models.ProductType `json:"type"         validate:"omitnil,oneof=custom standard"`
	TaxCategory *models.TaxCategory `json:"tax_category" validate:"omitnil,tax_category"`
	ImageURL    *string             `json:"image_url"    validate:"omitnil,url"`
	CustomData  models.CustomData   `json:"custom_data"`
	Status      *models.Status      `json:"status"       validate:"omitnil,status"`
}

func (p *UpdateProductParams) values() params.Values {
	return params.Values{
		"name":         p.Name,
		"description":  p.Description,
		"type":         p.Type,
		"tax_category": p.TaxCategory,
		"image_url":    p.ImageURL,
		"custom_data":  p.CustomData,
		"status":       p.Status,
	}
}

// ProductsClient calls the /products endpoints.
type ProductsClient struct {
	c *caller
}

// List returns one page of products.
func (r *ProductsClient) List(ctx context.Context, p *ListProductsParams) (*models.ListResponse[models.Product], error) {
	if p == nil {
		p = &ListProductsParams{}
	}

	decode := decodeList[models.Product]
	if slices.Contains(p.Include, models.ProductIncludePrices) {
		decode = func(resource string, body []byte) (*models.ListResponse[models.Product], error) {
			resp, err := decodeList[models.Product](resource, body)
			if err != nil {
				return nil, err
			}

			if err := requireIncluded(resource, "prices", resp.Data, hasPrices); err != nil {
				return nil, err
			}

			return resp, nil
		}
	}

	return invoke(ctx, r.c, operation{"products", "list"},
		func() (*Request, error) {
			if err := validateParams(p); err != nil {
				return nil, err
			}

			return &Request{Method: http.MethodGet, Path: productsPath, Query: params.Query(p.values())}, nil
		},
		decode)
}

// ListAll iterates over every product matching p, fetching pages as needed.
func (r *ProductsClient) ListAll(ctx context.Context, p *ListProductsParams) iter.Seq2[models.Product, error] {
	base := ListProductsParams{}
	if p != nil {
		base = *p
	}

	return listAll(ctx, "products", base.After,
		func(ctx context.Context, after *string) (*models.ListResponse[models.Product], error) {
			page := base
			page.After = after
			return r.List(ctx, &page)
		})
}

// Create creates a product.
func (r *ProductsClient) Create(ctx context.Context, p *CreateProductParams) (*models.Response[models.Product], error) {
	if p == nil {
		p = &CreateProductParams{}
	}

	return invoke(ctx, r.c, operation{"products", "create"},
		func() (*Request, error) {
			if err := validateParams(p); err != nil {
				return nil, err
			}

			return &Request{Method: http.MethodPost, Path: productsPath, Body: params.Body(p.values())}, nil
		},
		decodeOne[models.Product])
}

// Get returns the product with the given ID.
func (r *ProductsClient) Get(ctx context.Context, productID string, p *GetProductParams) (*models.Response[models.Product], error) {
	if p == nil {
		p = &GetProductParams{}
	}

	decode := decodeOne[models.Product]
	if slices.Contains(p.Include, models.ProductIncludePrices) {
		decode = func(resource string, body []byte) (*models.Response[models.Product], error) {
			resp, err := decodeOne[models.Product](resource, body)
			if err != nil {
				return nil, err
			}

			if !hasPrices(resp.Data) {
				return nil, &DeserializationError{Resource: resource, Field: "data.prices", Reason: "is missing although it was included"}
			}

			return resp, nil
		}
	}

	return invoke(ctx, r.c, operation{"products", "get"},
		func() (*Request, error) {
			if err := validateID("product_id", productID); err != nil {
				return nil, err
			}
			if err := validateParams(p); err != nil {
				return nil, err
			}

			return &Request{
				Method: http.MethodGet,
				Path:   resourcePath(productsPath, productID),
				Query:  params.Query(p.values()),
			}, nil
		},
		decode)
}

// Update changes the product with the given ID.
func (r *ProductsClient) Update(ctx context.Context, productID string, p *UpdateProductParams) (*models.Response[models.Product], error) {
	if p == nil {
		p = &UpdateProductParams{}
	}

	return invoke(ctx, r.c, operation{"products", "update"},
		func() (*Request, error) {
			if err := validateID("product_id", productID); err != nil {
				return nil, err
			}
			if err := validateParams(p); err != nil {
				return nil, err
			}

			return &Request{Method: http.MethodPatch, Path: resourcePath(productsPath, productID), Body: params.Body(p.values())}, nil
		},
		decodeOne[models.Product])
}

func hasPrices(p models.Product) bool {
	return p.Prices != nil
}

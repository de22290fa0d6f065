package paddle

import (
	"context"
	"iter"
	"net/http"
	"slices"

	"github.com/ccxlv/paddle-go/internal/params"
	"github.com/ccxlv/paddle-go/models"
)

const pricesPath = "/prices"

// ListPricesParams filters a price list.
type ListPricesParams struct {
	After *string  `url:"after"`
	ID    []string `url:"id"      validate:"omitempty,dive,notblank"`
	// Include embeds related entities; with PriceIncludeProduct every price
	// in the response carries its product.
	Include   []models.PriceInclude `url:"include"    validate:"omitempty,dive,oneof=product"`
	OrderBy   *models.PriceOrderBy  `url:"order_by"   validate:"omitnil,oneof=billing_cycle.frequency[ASC] billing_cycle.frequency[DESC] billing_cycle.interval[ASC] billing_cycle.interval[DESC] id[ASC] id[DESC] product_id[ASC] product_id[DESC] quantity.maximum[ASC] quantity.maximum[DESC] quantity.minimum[ASC] quantity.minimum[DESC] status[ASC] status[DESC] tax_mode[ASC] tax_mode[DESC] unit_price.amount[ASC] unit_price.amount[DESC] unit_price.currency_code[ASC] unit_price.currency_code[DESC]"`
	PerPage   *int                  `url:"per_page"   validate:"omitnil,min=1,max=200"`
	ProductID []string              `url:"product_id" validate:"omitempty,dive,notblank"`
	Status    []models.Status       `url:"status"     validate:"omitempty,dive,status"`
	Recurring *bool                 `url:"recurring"`
	Type      *models.PriceType     `url:"type"       validate:"omitnil,oneof=custom standard"`
}

func (p *ListPricesParams) values() params.Values {
	return params.Values{
		"after":      p.After,
		"id":         p.ID,
		"include":    p.Include,
		"order_by":   p.OrderBy,
		"per_page":   perPage(p.PerPage),
		"product_id": p.ProductID,
		"status":     p.Status,
		"recurring":  p.Recurring,
		"type":       p.Type,
	}
}

// CreatePriceParams creates a price for a product.
type CreatePriceParams struct {
	Description        string                     `json:"description"          validate:"required,notblank"`
	ProductID          string                     `json:"product_id"           validate:"required,notblank"`
	UnitPrice          models.Money               `json:"unit_price"`
	Type               *models.PriceType          `json:"type"                 validate:"omitnil,oneof=custom standard"`
	Name               *string                    `json:"name"`
	BillingCycle       *models.BillingCycle       `json:"billing_cycle"`
	TrialPeriod        *models.BillingCycle       `json:"trial_period"`
	TaxMode            *models.TaxMode            `json:"tax_mode"             validate:"omitnil,oneof=account_setting external internal"`
	UnitPriceOverrides []models.UnitPriceOverride `json:"unit_price_overrides" validate:"omitempty,dive"`
	Quantity           *models.Quantity           `json:"quantity"`
	CustomData         models.CustomData          `json:"custom_data"`
}

func (p *CreatePriceParams) values() params.Values {
	return params.Values{
		"description":          p.Description,
		"product_id":           p.ProductID,
		"unit_price":           p.UnitPrice,
		"type":                 p.Type,
		"name":                 p.Name,
		"billing_cycle":        p.BillingCycle,
		"trial_period":         p.TrialPeriod,
		"tax_mode":             p.TaxMode,
		"unit_price_overrides": p.UnitPriceOverrides,
		"quantity":             p.Quantity,
		"custom_data":          p.CustomData,
	}
}

// UpdatePriceParams changes a price.
type UpdatePriceParams struct {
	Description *string           `json:"description" validate:"omitnil,notblank"`
	Name        *string           `json:"name"`
	UnitPrice   *models.Money     `json:"unit_price"`
	Status      *models.Status    `json:"status"      validate:"omitnil,status"`
	CustomData  models.CustomData `json:"custom_data"`
}

// PricesClient calls the /prices endpoints.
type PricesClient struct {
	c *caller
}

// List returns one page of prices.
func (r *PricesClient) List(ctx context.Context, p *ListPricesParams) (*models.ListResponse[models.Price], error) {
	if p == nil {
		p = &ListPricesParams{}
	}

	decode := decodeList[models.Price]
	if slices.Contains(p.Include, models.PriceIncludeProduct) {
		decode = func(resource string, body []byte) (*models.ListResponse[models.Price], error) {
			resp, err := decodeList[models.Price](resource, body)
			if err != nil {
				return nil, err
			}

			if err := requireIncluded(resource, "product", resp.Data, func(price models.Price) bool { return price.Product != nil }); err != nil {
				return nil, err
			}

			return resp, nil
		}
	}

	return invoke(ctx, r.c, operation{"prices", "list"},
		func() (*Request, error) {
			if err := validateParams(p); err != nil {
				return nil, err
			}

			return &Request{Method: http.MethodGet, Path: pricesPath, Query: params.Query(p.values())}, nil
		},
		decode)
}

// ListAll iterates over every price matching p, fetching pages as needed.
func (r *PricesClient) ListAll(ctx context.Context, p *ListPricesParams) iter.Seq2[models.Price, error] {
	base := ListPricesParams{}
	if p != nil {
		base = *p
	}

	return listAll(ctx, "prices", base.After,
		func(ctx context.Context, after *string) (*models.ListResponse[models.Price], error) {
			page := base
			page.After = after
			return r.List(ctx, &page)
		})
}

// Create creates a price.
func (r *PricesClient) Create(ctx context.Context, p *CreatePriceParams) (*models.Response[models.Price], error) {
	if p == nil {
		p = &CreatePriceParams{}
	}

	return invoke(ctx, r.c, operation{"prices", "create"},
		func() (*Request, error) {
			if err := validateParams(p); err != nil {
				return nil, err
			}

			return &Request{Method: http.MethodPost, Path: pricesPath, Body: params.Body(p.values())}, nil
		},
		decodeOne[models.Price])
}

// Get is not available yet and always returns a *NotImplementedError.
func (r *PricesClient) Get(ctx context.Context, priceID string) (*models.Response[models.Price], error) {
	return invoke(ctx, r.c, operation{"prices", "get"},
		func() (*Request, error) {
			return nil, &NotImplementedError{Operation: "prices.get"}
		},
		decodeOne[models.Price])
}

// Update is not available yet and always returns a *NotImplementedError.
func (r *PricesClient) Update(ctx context.Context, priceID string, p *UpdatePriceParams) (*models.Response[models.Price], error) {
	return invoke(ctx, r.c, operation{"prices", "update"},
		func() (*Request, error) {
			return nil, &NotImplementedError{Operation: "prices.update"}
		},
		decodeOne[models.Price])
}

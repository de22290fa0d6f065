package paddle

import (
	"context"
	"iter"
	"net/http"

	"github.com/ccxlv/paddle-go/internal/params"
	"github.com/ccxlv/paddle-go/models"
)

const customersPath = "/customers"

// ListCustomersParams filters a customer list. The zero value lists every
// customer, DefaultPerPage at a time.
type ListCustomersParams struct {
	After   *string                 `url:"after"`
	Email   []string                `url:"email"    validate:"omitempty,dive,notblank"`
	ID      []string                `url:"id"       validate:"omitempty,dive,notblank"`
	OrderBy *models.CustomerOrderBy `url:"order_by" validate:"omitnil,oneof=id[ASC] id[DESC] created_at[ASC] created_at[DESC] updated_at[ASC] updated_at[DESC]"`
	PerPage *int                    `url:"per_page" validate:"omitnil,min=1,max=200"`
	Search  *string                 `url:"search"`
	Status  []models.Status         `url:"status"   validate:"omitempty,dive,status"`
}

func (p *ListCustomersParams) values() params.Values {
	return params.Values{
		"after":    p.After,
		"email":    p.Email,
		"id":       p.ID,
		"order_by": p.OrderBy,
		"per_page": perPage(p.PerPage),
		"search":   p.Search,
		"status":   p.Status,
	}
}

// CreateCustomerParams creates a customer. Email is required.
type CreateCustomerParams struct {
	Email      string            `json:"email"       validate:"required,email"`
	Name       *string           `json:"name"`
	CustomData models.CustomData `json:"custom_data"`
	Locale     *string           `json:"locale"      validate:"omitnil,notblank"`
}

func (p *CreateCustomerParams) values() params.Values {
	return params.Values{
		"email":       p.Email,
		"name":        p.Name,
		"custom_data": p.CustomData,
		"locale":      p.Locale,
	}
}

// UpdateCustomerParams changes a customer. Only set fields are sent.
type UpdateCustomerParams struct {
	Name       *string           `json:"name"`
	Email      *string           `json:"email"       validate:"omitnil,email"`
	Status     *models.Status    `json:"status"      validate:"omitnil,status"`
	CustomData models.CustomData `json:"custom_data"`
	Locale     *string           `json:"locale"      validate:"omitnil,notblank"`
}

func (p *UpdateCustomerParams) values() params.Values {
	return params.Values{
		"name":        p.Name,
		"email":       p.Email,
		"status":      p.Status,
		"custom_data": p.CustomData,
		"locale":      p.Locale,
	}
}

// ListCreditBalancesParams filters credit balances by currency.
type ListCreditBalancesParams struct {
	CurrencyCode []models.CurrencyCode `url:"currency_code" validate:"omitempty,dive,currency_code"`
}

func (p *ListCreditBalancesParams) values() params.Values {
	return params.Values{"currency_code": p.CurrencyCode}
}

// CreatePortalSessionParams selects the subscriptions that get deep links.
type CreatePortalSessionParams struct {
	SubscriptionIDs []string `json:"subscription_ids" validate:"omitempty,dive,notblank"`
}

func (p *CreatePortalSessionParams) values() params.Values {
	return params.Values{"subscription_ids": p.SubscriptionIDs}
}

// CustomersClient calls the /customers endpoints.
type CustomersClient struct {
	c *caller
}

// List returns one page of customers.
func (r *CustomersClient) List(ctx context.Context, p *ListCustomersParams) (*models.ListResponse[models.Customer], error) {
	if p == nil {
		p = &ListCustomersParams{}
	}

	return invoke(ctx, r.c, operation{"customers", "list"},
		func() (*Request, error) {
			if err := validateParams(p); err != nil {
				return nil, err
			}

			return &Request{Method: http.MethodGet, Path: customersPath, Query: params.Query(p.values())}, nil
		},
		decodeList[models.Customer])
}

// ListAll iterates over every customer matching p, fetching pages as needed.
func (r *CustomersClient) ListAll(ctx context.Context, p *ListCustomersParams) iter.Seq2[models.Customer, error] {
	base := ListCustomersParams{}
	if p != nil {
		base = *p
	}

	return listAll(ctx, "customers", base.After,
		func(ctx context.Context, after *string) (*models.ListResponse[models.Customer], error) {
			page := base
			page.After = after
			return r.List(ctx, &page)
		})
}

// Create creates a customer.
func (r *CustomersClient) Create(ctx context.Context, p *CreateCustomerParams) (*models.Response[models.Customer], error) {
	if p == nil {
		p = &CreateCustomerParams{}
	}

	return invoke(ctx, r.c, operation{"customers", "create"},
		func() (*Request, error) {
			if err := validateParams(p); err != nil {
				return nil, err
			}

			return &Request{Method: http.MethodPost, Path: customersPath, Body: params.Body(p.values())}, nil
		},
		decodeOne[models.Customer])
}

// Get returns the customer with the given ID.
func (r *CustomersClient) Get(ctx context.Context, customerID string) (*models.Response[models.Customer], error) {
	return invoke(ctx, r.c, operation{"customers", "get"},
		func() (*Request, error) {
			if err := validateID("customer_id", customerID); err != nil {
				return nil, err
			}

			return &Request{Method: http.MethodGet, Path: resourcePath(customersPath, customerID)}, nil
		},
		decodeOne[models.Customer])
}

// Update changes the customer with the given ID.
func (r *CustomersClient) Update(ctx context.Context, customerID string, p *UpdateCustomerParams) (*models.Response[models.Customer], error) {
	if p == nil {
		p = &UpdateCustomerParams{}
	}

	return invoke(ctx, r.c, operation{"customers", "update"},
		func() (*Request, error) {
			if err := validateID("customer_id", customerID); err != nil {
				return nil, err
			}
			if err := validateParams(p); err != nil {
				return nil, err
			}

			return &Request{Method: http.MethodPatch, Path: resourcePath(customersPath, customerID), Body: params.Body(p.values())}, nil
		},
		decodeOne[models.Customer])
}

// ListCreditBalances returns the customer's credit balance in each currency.
func (r *CustomersClient) ListCreditBalances(ctx context.Context, customerID string, p *ListCreditBalancesParams) (*models.Response[[]models.CreditBalance], error) {
	if p == nil {
		p = &ListCreditBalancesParams{}
	}

	return invoke(ctx, r.c, operation{"customers", "list_credit_balances"},
		func() (*Request, error) {
			if err := validateID("customer_id", customerID); err != nil {
				return nil, err
			}
			if err := validateParams(p); err != nil {
				return nil, err
			}

			return &Request{
				Method: http.MethodGet,
				Path:   resourcePath(customersPath, customerID, "credit-balances"),
				Query:  params.Query(p.values()),
			}, nil
		},
		decodeOne[[]models.CreditBalance])
}

// GenerateAuthToken creates a token that authenticates the customer in Paddle.js.
func (r *CustomersClient) GenerateAuthToken(ctx context.Context, customerID string) (*models.Response[models.AuthToken], error) {
	return invoke(ctx, r.c, operation{"customers", "generate_auth_token"},
		func() (*Request, error) {
			if err := validateID("customer_id", customerID); err != nil {
				return nil, err
			}

			return &Request{Method: http.MethodPost, Path: resourcePath(customersPath, customerID, "auth-token")}, nil
		},
		decodeOne[models.AuthToken])
}

// CreatePortalSession creates authenticated customer portal links.
func (r *CustomersClient) CreatePortalSession(ctx context.Context, customerID string, p *CreatePortalSessionParams) (*models.Response[models.PortalSession], error) {
	if p == nil {
		p = &CreatePortalSessionParams{}
	}

	return invoke(ctx, r.c, operation{"customers", "create_portal_session"},
		func() (*Request, error) {
			if err := validateID("customer_id", customerID); err != nil {
				return nil, err
			}
			if err := validateParams(p); err != nil {
				return nil, err
			}

			return &Request{
				Method: http.MethodPost,
				Path:   resourcePath(customersPath, customerID, "portal-sessions"),
				Body:   params.Body(p.values()),
			}, nil
		},
		decodeOne[models.PortalSession])
}

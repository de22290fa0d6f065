package paddle

import (
	"context"
	"iter"
	"net/http"

	"github.com/ccxlv/paddle-go/internal/params"
	"github.com/ccxlv/paddle-go/models"
)

const subscriptionsPath = "/subscriptions"

// ListSubscriptionsParams filters a subscription list.
type ListSubscriptionsParams struct {
	AddressID             []string                       `url:"address_id"              validate:"omitempty,dive,notblank"`
	After                 *string                        `url:"after"`
	CollectionMode        *models.CollectionMode         `url:"collection_mode"         validate:"omitnil,oneof=automatic manual"`
	CustomerID            []string                       `url:"customer_id"             validate:"omitempty,dive,notblank"`
	ID                    []string                       `url:"id"                      validate:"omitempty,dive,notblank"`
	OrderBy               *models.SubscriptionOrderBy    `url:"order_by"                validate:"omitnil,oneof=id[ASC] id[DESC]"`
	PerPage               *int                           `url:"per_page"                validate:"omitnil,min=1,max=200"`
	PriceID               []string                       `url:"price_id"                validate:"omitempty,dive,notblank"`
	ScheduledChangeAction []models.ScheduledChangeAction `url:"scheduled_change_action" validate:"omitempty,dive,oneof=cancel pause resume"`
	Status                []models.SubscriptionStatus    `url:"status"                  validate:"omitempty,dive,oneof=active canceled past_due paused trialing"`
}

func (p *ListSubscriptionsParams) values() params.Values {
	return params.Values{
		"address_id":              p.AddressID,
		"after":                   p.After,
		"collection_mode":         p.CollectionMode,
		"customer_id":             p.CustomerID,
		"id":                      p.ID,
		"order_by":                p.OrderBy,
		"per_page":                perPage(p.PerPage),
		"price_id":                p.PriceID,
		"scheduled_change_action": p.ScheduledChangeAction,
		"status":                  p.Status,
	}
}

// GetSubscriptionParams selects related entities to embed.
type GetSubscriptionParams struct {
	Include []models.SubscriptionInclude `url:"include" validate:"omitempty,dive,oneof=next_transaction recurring_transaction_details"`
}

func (p *GetSubscriptionParams) values() params.Values {
	return params.Values{"include": p.Include}
}

// PauseSubscriptionParams pauses a subscription, optionally until ResumeAt.
type PauseSubscriptionParams struct {
	EffectiveFrom *models.EffectiveFrom `json:"effective_from" validate:"omitnil,oneof=next_billing_period immediately"`
	ResumeAt      *string               `json:"resume_at"      validate:"omitnil,notblank"`
}

func (p *PauseSubscriptionParams) values() params.Values {
	return params.Values{"effective_from": p.EffectiveFrom, "resume_at": p.ResumeAt}
}

// ResumeSubscriptionParams resumes a paused subscription.
type ResumeSubscriptionParams struct {
	EffectiveFrom *models.EffectiveFrom `json:"effective_from" validate:"omitnil,oneof=next_billing_period immediately"`
}

func (p *ResumeSubscriptionParams) values() params.Values {
	return params.Values{"effective_from": p.EffectiveFrom}
}

// CancelSubscriptionParams cancels a subscription.
type CancelSubscriptionParams struct {
	EffectiveFrom *models.EffectiveFrom `json:"effective_from" validate:"omitnil,oneof=next_billing_period immediately"`
}

func (p *CancelSubscriptionParams) values() params.Values {
	return params.Values{"effective_from": p.EffectiveFrom}
}

// SubscriptionsClient calls the /subscriptions endpoints. State changes are
// forwarded to Paddle as-is.
type SubscriptionsClient struct {
	c *caller
}

// List returns one page of subscriptions.
func (r *SubscriptionsClient) List(ctx context.Context, p *ListSubscriptionsParams) (*models.ListResponse[models.Subscription], error) {
	if p == nil {
		p = &ListSubscriptionsParams{}
	}

	return invoke(ctx, r.c, operation{"subscriptions", "list"},
		func() (*Request, error) {
			if err := validateParams(p); err != nil {
				return nil, err
			}

			return &Request{Method: http.MethodGet, Path: subscriptionsPath, Query: params.Query(p.values())}, nil
		},
		decodeList[models.Subscription])
}

// ListAll iterates over every subscription matching p, fetching pages as needed.
func (r *SubscriptionsClient) ListAll(ctx context.Context, p *ListSubscriptionsParams) iter.Seq2[models.Subscription, error] {
	base := ListSubscriptionsParams{}
	if p != nil {
		base = *p
	}

	return listAll(ctx, "subscriptions", base.After,
		func(ctx context.Context, after *string) (*models.ListResponse[models.Subscription], error) {
			page := base
			page.After = after
			return r.List(ctx, &page)
		})
}

// Get returns the subscription with the given ID.
func (r *SubscriptionsClient) Get(ctx context.Context, subscriptionID string, p *GetSubscriptionParams) (*models.Response[models.Subscription], error) {
	if p == nil {
		p = &GetSubscriptionParams{}
	}

	return invoke(ctx, r.c, operation{"subscriptions", "get"},
		func() (*Request, error) {
			if err := validateID("subscription_id", subscriptionID); err != nil {
				return nil, err
			}
			if err := validateParams(p); err != nil {
				return nil, err
			}

			return &Request{
				Method: http.MethodGet,
				Path:   resourcePath(subscriptionsPath, subscriptionID),
				Query:  params.Query(p.values()),
			}, nil
		},
		decodeOne[models.Subscription])
}

// Pause pauses the subscription with the given ID.
func (r *SubscriptionsClient) Pause(ctx context.Context, subscriptionID string, p *PauseSubscriptionParams) (*models.Response[models.Subscription], error) {
	if p == nil {
		p = &PauseSubscriptionParams{}
	}

	return r.action(ctx, "pause", subscriptionID, p, p.values())
}

// Resume resumes the paused subscription with the given ID.
func (r *SubscriptionsClient) Resume(ctx context.Context, subscriptionID string, p *ResumeSubscriptionParams) (*models.Response[models.Subscription], error) {
	if p == nil {
		p = &ResumeSubscriptionParams{}
	}

	return r.action(ctx, "resume", subscriptionID, p, p.values())
}

// Cancel cancels the subscription with the given ID.
func (r *SubscriptionsClient) Cancel(ctx context.Context, subscriptionID string, p *CancelSubscriptionParams) (*models.Response[models.Subscription], error) {
	if p == nil {
		p = &CancelSubscriptionParams{}
	}

	return r.action(ctx, "cancel", subscriptionID, p, p.values())
}

// action posts to /subscriptions/{id}/{name}.
func (r *SubscriptionsClient) action(ctx context.Context, name, subscriptionID string, p any, body params.Values) (*models.Response[models.Subscription], error) {
	return invoke(ctx, r.c, operation{"subscriptions", name},
		func() (*Request, error) {
			if err := validateID("subscription_id", subscriptionID); err != nil {
				return nil, err
			}
			if err := validateParams(p); err != nil {
				return nil, err
			}

			return &Request{
				Method: http.MethodPost,
				Path:   resourcePath(subscriptionsPath, subscriptionID, name),
				Body:   params.Body(body),
			}, nil
		},
		decodeOne[models.Subscription])
}

package paddletest

import (
	"net/http"
	"slices"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ccxlv/paddle-go/models"
)

// AddSubscription stores sub, filling unset ID, status, address, currency,
// collection mode, billing cycle, management URLs and timestamps. CustomerID
// must be set by the caller.
func (s *Server) AddSubscription(sub models.Subscription) models.Subscription {
	if sub.ID == "" {
		sub.ID = s.subscriptions.NextID()
	}
	if sub.Status == "" {
		sub.Status = models.SubscriptionStatusActive
	}
	if sub.AddressID == "" {
		sub.AddressID = "add_" + sub.ID
	}
	if sub.CurrencyCode == "" {
		sub.CurrencyCode = models.CurrencyUSD
	}
	if sub.CollectionMode == "" {
		sub.CollectionMode = models.CollectionModeAutomatic
	}
	if sub.BillingCycle == (models.BillingCycle{}) {
		sub.BillingCycle = models.BillingCycle{Frequency: 1, Interval: models.IntervalMonth}
	}
	if sub.ManagementURLs.Cancel == "" {
		sub.ManagementURLs.Cancel = "https://buyer-portal.paddle.com/subscriptions/" + sub.ID + "/cancel"
	}
	if sub.Items == nil {
		sub.Items = []models.SubscriptionItem{}
	}
	if sub.CreatedAt == "" {
		sub.CreatedAt = s.timestamp()
	}
	if sub.UpdatedAt == "" {
		sub.UpdatedAt = sub.CreatedAt
	}
	if sub.NextBilledAt == nil && sub.Status == models.SubscriptionStatusActive {
		next := s.now().AddDate(0, 1, 0).UTC().Format(time.RFC3339Nano)
		sub.NextBilledAt = &next
	}

	s.subscriptions.Set(sub.ID, sub)

	return sub
}

// Subscription returns the stored subscription with the given ID.
func (s *Server) Subscription(id string) (models.Subscription, bool) {
	return s.subscriptions.Get(id)
}

// Item builds an active recurring subscription item billing price.
func (s *Server) Item(price models.Price, product models.Product, quantity int) models.SubscriptionItem {
	now := s.timestamp()
	recurring := price.BillingCycle != nil

	return models.SubscriptionItem{
		Status:    models.ItemStatusActive,
		Quantity:  quantity,
		Recurring: &recurring,
		CreatedAt: now,
		UpdatedAt: now,
		Price:     price,
		Product:   product,
	}
}

func subscriptionID(sub models.Subscription) string { return sub.ID }

func (s *Server) listSubscriptions(c *gin.Context) {
	q, ok := bindList(c)
	if !ok {
		return
	}

	addressIDs := queryList(c, "address_id")
	modes := queryList(c, "collection_mode")
	customerIDs := queryList(c, "customer_id")
	ids := queryList(c, "id")
	priceIDs := queryList(c, "price_id")
	actions := queryList(c, "scheduled_change_action")
	statuses := queryList(c, "status")

	items := s.subscriptions.List(func(sub models.Subscription) bool {
		if !matchAny(addressIDs, sub.AddressID) || !matchAny(modes, sub.CollectionMode) ||
			!matchAny(customerIDs, sub.CustomerID) || !matchAny(ids, sub.ID) || !matchAny(statuses, sub.Status) {
			return false
		}

		if len(actions) > 0 && (sub.ScheduledChange == nil || !matchAny(actions, sub.ScheduledChange.Action)) {
			return false
		}

		return len(priceIDs) == 0 || slices.ContainsFunc(sub.Items, func(item models.SubscriptionItem) bool {
			return matchAny(priceIDs, item.Price.ID)
		})
	})

	page := paginate(ordered(items, subscriptionID, q.OrderBy), subscriptionID, q.After, q.PerPage)
	for i := range page.Data {
		page.Data[i].NextTransaction = nil
	}

	respondPage(c, page, q)
}

func (s *Server) getSubscription(c *gin.Context) {
	sub, ok := s.subscriptions.Get(c.Param("id"))
	if !ok {
		notFound(c, "subscription", c.Param("id"))
		return
	}

	if !includes(c, string(models.SubscriptionIncludeNextTransaction)) {
		sub.NextTransaction = nil
	} else if sub.NextTransaction == nil {
		sub.NextTransaction = s.previewNextTransaction(sub)
	}

	s.respond(c, http.StatusOK, sub)
}

// previewNextTransaction bills every recurring item for one more period.
func (s *Server) previewNextTransaction(sub models.Subscription) *models.NextTransaction {
	start := s.now().UTC()
	if sub.NextBilledAt != nil {
		if t, err := time.Parse(time.RFC3339Nano, *sub.NextBilledAt); err == nil {
			start = t
		}
	}

	zero := "0"

	return &models.NextTransaction{
		BillingPeriod: models.DateRange{
			StartsAt: start.Format(time.RFC3339Nano),
			EndsAt:   start.AddDate(0, 1, 0).Format(time.RFC3339Nano),
		},
		Details: models.NextTransactionDetails{
			TaxRatesUsed: []models.TaxRateUsed{},
			Totals: models.TransactionTotals{
				Totals:          models.Totals{Subtotal: zero, Discount: zero, Tax: zero, Total: zero},
				Credit:          zero,
				CreditToBalance: zero,
				Balance:         zero,
				GrandTotal:      zero,
				CurrencyCode:    sub.CurrencyCode,
			},
		},
	}
}

type pauseBody struct {
	EffectiveFrom *models.EffectiveFrom `json:"effective_from" validate:"omitnil,oneof=next_billing_period immediately"`
	ResumeAt      *string               `json:"resume_at"`
}

func (s *Server) pauseSubscription(c *gin.Context) {
	var body pauseBody
	if !bindBody(c, &body) {
		return
	}

	s.transition(c, func(sub models.Subscription) (models.Subscription, string) {
		if sub.Status != models.SubscriptionStatusActive && sub.Status != models.SubscriptionStatusTrialing {
			return sub, "subscription is " + string(sub.Status) + ", only active subscriptions can be paused"
		}

		if effective(body.EffectiveFrom, models.EffectiveFromNextBillingPeriod) == models.EffectiveFromImmediately {
			now := s.timestamp()
			sub.Status = models.SubscriptionStatusPaused
			sub.PausedAt = &now
			sub.NextBilledAt = nil
			sub.ScheduledChange = nil
			if body.ResumeAt != nil {
				sub.ScheduledChange = &models.ScheduledChange{
					Action:      models.ScheduledChangeResume,
					EffectiveAt: *body.ResumeAt,
				}
			}

			return sub, ""
		}

		sub.ScheduledChange = &models.ScheduledChange{
			Action:      models.ScheduledChangePause,
			EffectiveAt: s.periodEnd(sub),
			ResumeAt:    body.ResumeAt,
		}

		return sub, ""
	})
}

type resumeBody struct {
	EffectiveFrom *models.EffectiveFrom `json:"effective_from" validate:"omitnil,oneof=next_billing_period immediately"`
}

func (s *Server) resumeSubscription(c *gin.Context) {
	var body resumeBody
	if !bindBody(c, &body) {
		return
	}

	s.transition(c, func(sub models.Subscription) (models.Subscription, string) {
		if sub.Status != models.SubscriptionStatusPaused {
			if sub.ScheduledChange != nil && sub.ScheduledChange.Action == models.ScheduledChangePause {
				sub.ScheduledChange = nil
				return sub, ""
			}

			return sub, "subscription is " + string(sub.Status) + ", only paused subscriptions can be resumed"
		}

		if effective(body.EffectiveFrom, models.EffectiveFromImmediately) == models.EffectiveFromImmediately {
			next := s.now().AddDate(0, 1, 0).UTC().Format(time.RFC3339Nano)
			sub.Status = models.SubscriptionStatusActive
			sub.PausedAt = nil
			sub.NextBilledAt = &next
			sub.ScheduledChange = nil

			return sub, ""
		}

		sub.ScheduledChange = &models.ScheduledChange{
			Action:      models.ScheduledChangeResume,
			EffectiveAt: s.periodEnd(sub),
		}

		return sub, ""
	})
}

type cancelBody struct {
	EffectiveFrom *models.EffectiveFrom `json:"effective_from" validate:"omitnil,oneof=next_billing_period immediately"`
}

func (s *Server) cancelSubscription(c *gin.Context) {
	var body cancelBody
	if !bindBody(c, &body) {
		return
	}

	s.transition(c, func(sub models.Subscription) (models.Subscription, string) {
		if sub.Status == models.SubscriptionStatusCanceled {
			return sub, "subscription is already canceled"
		}

		if effective(body.EffectiveFrom, models.EffectiveFromNextBillingPeriod) == models.EffectiveFromImmediately {
			now := s.timestamp()
			sub.Status = models.SubscriptionStatusCanceled
			sub.CanceledAt = &now
			sub.NextBilledAt = nil
			sub.ScheduledChange = nil

			return sub, ""
		}

		sub.ScheduledChange = &models.ScheduledChange{
			Action:      models.ScheduledChangeCancel,
			EffectiveAt: s.periodEnd(sub),
		}

		return sub, ""
	})
}

// transition applies change to the subscription named in the path. A
// non-empty refusal rejects the change with a 400.
func (s *Server) transition(c *gin.Context, change func(models.Subscription) (models.Subscription, string)) {
	id := c.Param("id")

	var refusal string
	sub, ok := s.subscriptions.Update(id, func(sub models.Subscription) models.Subscription {
		updated, reason := change(sub)
		if reason != "" {
			refusal = reason
			return sub
		}

		updated.UpdatedAt = s.timestamp()

		return updated
	})

	switch {
	case !ok:
		notFound(c, "subscription", id)
	case refusal != "":
		abortWithError(c, http.StatusBadRequest, CodeInvalidOperation, refusal)
	default:
		sub.NextTransaction = nil
		s.respond(c, http.StatusOK, sub)
	}
}

// periodEnd is when the current billing period ends.
func (s *Server) periodEnd(sub models.Subscription) string {
	switch {
	case sub.CurrentBillingPeriod != nil:
		return sub.CurrentBillingPeriod.EndsAt
	case sub.NextBilledAt != nil:
		return *sub.NextBilledAt
	default:
		return s.now().AddDate(0, 1, 0).UTC().Format(time.RFC3339Nano)
	}
}

func effective(v *models.EffectiveFrom, fallback models.EffectiveFrom) models.EffectiveFrom {
	if v == nil {
		return fallback
	}

	return *v
}

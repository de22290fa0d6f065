package models

// SubscriptionStatus is the billing status of a subscription.
type SubscriptionStatus string

// SubscriptionStatus values.
const (
	SubscriptionStatusActive   SubscriptionStatus = "active"
	SubscriptionStatusCanceled SubscriptionStatus = "canceled"
	SubscriptionStatusPastDue  SubscriptionStatus = "past_due"
	SubscriptionStatusPaused   SubscriptionStatus = "paused"
	SubscriptionStatusTrialing SubscriptionStatus = "trialing"
)

// CollectionMode is how Paddle collects payment for a subscription.
type CollectionMode string

// CollectionMode values.
const (
	CollectionModeAutomatic CollectionMode = "automatic"
	CollectionModeManual    CollectionMode = "manual"
)

// ItemStatus is the status of one subscription item.
type ItemStatus string

// ItemStatus values.
const (
	ItemStatusActive   ItemStatus = "active"
	ItemStatusInactive ItemStatus = "inactive"
	ItemStatusTrialing ItemStatus = "trialing"
)

// ScheduledChangeAction is the kind of change scheduled on a subscription.
type ScheduledChangeAction string

// ScheduledChangeAction values.
const (
	ScheduledChangeCancel ScheduledChangeAction = "cancel"
	ScheduledChangePause  ScheduledChangeAction = "pause"
	ScheduledChangeResume ScheduledChangeAction = "resume"
)

// Subscription is a recurring billing relationship with a customer.
type Subscription struct {
	ID                   string             `json:"id"              validate:"required"`
	Status               SubscriptionStatus `json:"status"          validate:"required,oneof=active canceled past_due paused trialing"`
	CustomerID           string             `json:"customer_id"     validate:"required"`
	AddressID            string             `json:"address_id"      validate:"required"`
	BusinessID           *string            `json:"business_id"`
	CurrencyCode         CurrencyCode       `json:"currency_code"   validate:"required,currency_code"`
	CollectionMode       CollectionMode     `json:"collection_mode" validate:"required,oneof=automatic manual"`
	CreatedAt            string             `json:"created_at"      validate:"required"`
	UpdatedAt            string             `json:"updated_at"      validate:"required"`
	StartedAt            *string            `json:"started_at"`
	FirstBilledAt        *string            `json:"first_billed_at"`
	NextBilledAt         *string            `json:"next_billed_at"`
	PausedAt             *string            `json:"paused_at"`
	CanceledAt           *string            `json:"canceled_at"`
	Discount             *Discount          `json:"discount"`
	BillingDetails       *BillingDetails    `json:"billing_details"`
	CurrentBillingPeriod *DateRange         `json:"current_billing_period"`
	BillingCycle         BillingCycle       `json:"billing_cycle"`
	ScheduledChange      *ScheduledChange   `json:"scheduled_change"`
	ManagementURLs       ManagementURLs     `json:"management_urls"`
	Items                []SubscriptionItem `json:"items"           validate:"required,dive"`
	CustomData           CustomData         `json:"custom_data"`
	ImportMeta           *ImportMeta        `json:"import_meta"`
	NextTransaction      *NextTransaction   `json:"next_transaction,omitempty"`
}

// SubscriptionItem is a price/product pair billed on a subscription.
type SubscriptionItem struct {
	Status             ItemStatus `json:"status"     validate:"required,oneof=active inactive trialing"`
	Quantity           int        `json:"quantity"   validate:"required,min=1"`
	Recurring          *bool      `json:"recurring"  validate:"required"`
	CreatedAt          string     `json:"created_at" validate:"required"`
	UpdatedAt          string     `json:"updated_at" validate:"required"`
	PreviouslyBilledAt *string    `json:"previously_billed_at"`
	NextBilledAt       *string    `json:"next_billed_at"`
	TrialDates         *DateRange `json:"trial_dates"`
	Price              Price      `json:"price"`
	Product            Product    `json:"product"`
}

// Discount applied to a subscription.
type Discount struct {
	ID       string  `json:"id" validate:"required"`
	StartsAt *string `json:"starts_at"`
	EndsAt   *string `json:"ends_at"`
}

// BillingDetails configure invoicing for manually collected subscriptions.
type BillingDetails struct {
	PaymentTerms          BillingCycle `json:"payment_terms"`
	EnableCheckout        bool         `json:"enable_checkout"`
	PurchaseOrderNumber   string       `json:"purchase_order_number"`
	AdditionalInformation *string      `json:"additional_information"`
}

// DateRange is a closed period.
type DateRange struct {
	StartsAt string `json:"starts_at" validate:"required"`
	EndsAt   string `json:"ends_at"   validate:"required"`
}

// ScheduledChange is a change that takes effect at a later date.
type ScheduledChange struct {
	Action      ScheduledChangeAction `json:"action"       validate:"required,oneof=cancel pause resume"`
	EffectiveAt string                `json:"effective_at" validate:"required"`
	ResumeAt    *string               `json:"resume_at"`
}

// ManagementURLs are customer-facing links for a subscription.
type ManagementURLs struct {
	UpdatePaymentMethod *string `json:"update_payment_method"`
	Cancel              string  `json:"cancel" validate:"required"`
}

// Totals is a breakdown of an amount.
type Totals struct {
	Subtotal string `json:"subtotal" validate:"required"`
	Discount string `json:"discount" validate:"required"`
	Tax      string `json:"tax"      validate:"required"`
	Total    string `json:"total"    validate:"required"`
}

// TransactionTotals extends Totals with balance and payout figures.
type TransactionTotals struct {
	Totals

	Credit          string       `json:"credit"            validate:"required"`
	CreditToBalance string       `json:"credit_to_balance" validate:"required"`
	Balance         string       `json:"balance"           validate:"required"`
	GrandTotal      string       `json:"grand_total"       validate:"required"`
	Fee             *string      `json:"fee"`
	Earnings        *string      `json:"earnings"`
	CurrencyCode    CurrencyCode `json:"currency_code"     validate:"required,currency_code"`
}

// TaxRateUsed is one tax rate applied to a transaction.
type TaxRateUsed struct {
	TaxRate string `json:"tax_rate" validate:"required"`
	Totals  Totals `json:"totals"`
}

// NextTransactionDetails summarizes the next renewal.
type NextTransactionDetails struct {
	TaxRatesUsed []TaxRateUsed     `json:"tax_rates_used" validate:"dive"`
	Totals       TransactionTotals `json:"totals"`
}

// NextTransaction previews the next renewal of a subscription.
// Returned only when requested with the next_transaction include.
type NextTransaction struct {
	BillingPeriod DateRange              `json:"billing_period"`
	Details       NextTransactionDetails `json:"details"`
}

// SubscriptionOrderBy is a sort key for listing subscriptions.
type SubscriptionOrderBy string

// SubscriptionOrderBy values.
const (
	SubscriptionOrderByIDAsc  SubscriptionOrderBy = "id[ASC]"
	SubscriptionOrderByIDDesc SubscriptionOrderBy = "id[DESC]"
)

// SubscriptionInclude names an entity that can be embedded in a subscription.
type SubscriptionInclude string

// SubscriptionInclude values.
const (
	SubscriptionIncludeNextTransaction             SubscriptionInclude = "next_transaction"
	SubscriptionIncludeRecurringTransactionDetails SubscriptionInclude = "recurring_transaction_details"
)

// EffectiveFrom chooses when a subscription change applies.
type EffectiveFrom string

// EffectiveFrom values.
const (
	EffectiveFromNextBillingPeriod EffectiveFrom = "next_billing_period"
	EffectiveFromImmediately       EffectiveFrom = "immediately"
)

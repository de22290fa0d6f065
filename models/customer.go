package models

// Customer is a person or business that buys from a seller.
type Customer struct {
	ID               string      `json:"id"                validate:"required"`
	Name             *string     `json:"name"`
	Email            string      `json:"email"             validate:"required"`
	MarketingConsent *bool       `json:"marketing_consent" validate:"required"`
	Status           Status      `json:"status"            validate:"required,status"`
	CustomData       CustomData  `json:"custom_data"`
	Locale           string      `json:"locale"            validate:"required"`
	CreatedAt        string      `json:"created_at"        validate:"required"`
	UpdatedAt        string      `json:"updated_at"        validate:"required"`
	ImportMeta       *ImportMeta `json:"import_meta"`
}

// CustomerOrderBy is a sort key for listing customers.
type CustomerOrderBy string

// CustomerOrderBy values.
const (
	CustomerOrderByIDAsc         CustomerOrderBy = "id[ASC]"
	CustomerOrderByIDDesc        CustomerOrderBy = "id[DESC]"
	CustomerOrderByCreatedAtAsc  CustomerOrderBy = "created_at[ASC]"
	CustomerOrderByCreatedAtDesc CustomerOrderBy = "created_at[DESC]"
	CustomerOrderByUpdatedAtAsc  CustomerOrderBy = "updated_at[ASC]"
	CustomerOrderByUpdatedAtDesc CustomerOrderBy = "updated_at[DESC]"
)

// CreditBalance is a customer's credit in one currency.
type CreditBalance struct {
	CustomerID   string        `json:"customer_id"   validate:"required"`
	CurrencyCode CurrencyCode  `json:"currency_code" validate:"required,currency_code"`
	Balance      BalanceTotals `json:"balance"`
}

// BalanceTotals splits a credit balance by availability.
type BalanceTotals struct {
	Available string `json:"available" validate:"required"`
	Reserved  string `json:"reserved"  validate:"required"`
	Used      string `json:"used"      validate:"required"`
}

// AuthToken authenticates a customer in Paddle.js.
type AuthToken struct {
	CustomerAuthToken string `json:"customer_auth_token" validate:"required"`
	ExpiresAt         string `json:"expires_at"          validate:"required"`
}

// PortalSession holds authenticated links into the customer portal.
type PortalSession struct {
	ID         string     `json:"id"          validate:"required"`
	CustomerID string     `json:"customer_id" validate:"required"`
	URLs       PortalURLs `json:"urls"`
	CreatedAt  string     `json:"created_at"  validate:"required"`
}

// PortalURLs groups the links of a portal session.
type PortalURLs struct {
	General       PortalGeneralURLs        `json:"general"`
	Subscriptions []PortalSubscriptionURLs `json:"subscriptions" validate:"dive"`
}

// PortalGeneralURLs are links not tied to a subscription.
type PortalGeneralURLs struct {
	Overview string `json:"overview" validate:"required"`
}

// PortalSubscriptionURLs are deep links for one subscription.
type PortalSubscriptionURLs struct {
	ID                              string `json:"id"                                 validate:"required"`
	CancelSubscription              string `json:"cancel_subscription"                validate:"required"`
	UpdateSubscriptionPaymentMethod string `json:"update_subscription_payment_method" validate:"required"`
}

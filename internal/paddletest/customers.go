package paddletest

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ccxlv/paddle-go/models"
)

const defaultLocale = "en"

// AddCustomer stores c, filling unset ID, status, consent, locale and
// timestamps.
func (s *Server) AddCustomer(c models.Customer) models.Customer {
	if c.ID == "" {
		c.ID = s.customers.NextID()
	}
	if c.MarketingConsent == nil {
		noConsent := false
		c.MarketingConsent = &noConsent
	}
	if c.Status == "" {
		c.Status = models.StatusActive
	}
	if c.Locale == "" {
		c.Locale = defaultLocale
	}
	if c.CreatedAt == "" {
		c.CreatedAt = s.timestamp()
	}
	if c.UpdatedAt == "" {
		c.UpdatedAt = c.CreatedAt
	}

	s.customers.Set(c.ID, c)

	return c
}

// Customer returns the stored customer with the given ID.
func (s *Server) Customer(id string) (models.Customer, bool) {
	return s.customers.Get(id)
}

// SetCreditBalances replaces the credit balances of a customer.
func (s *Server) SetCreditBalances(customerID string, balances ...models.CreditBalance) {
	for i := range balances {
		balances[i].CustomerID = customerID
	}

	s.creditBalances.Set(customerID, balances)
}

func customerID(c models.Customer) string { return c.ID }

func (s *Server) listCustomers(c *gin.Context) {
	q, ok := bindList(c)
	if !ok {
		return
	}

	ids := queryList(c, "id")
	emails := queryList(c, "email")
	statuses := queryList(c, "status")
	search := strings.ToLower(c.Query("search"))

	items := s.customers.List(func(cust models.Customer) bool {
		if !matchAny(ids, cust.ID) || !matchAny(emails, cust.Email) || !matchAny(statuses, cust.Status) {
			return false
		}
		if search == "" {
			return true
		}

		name := ""
		if cust.Name != nil {
			name = *cust.Name
		}

		return strings.Contains(strings.ToLower(cust.Email), search) || strings.Contains(strings.ToLower(name), search)
	})

	respondPage(c, paginate(ordered(items, customerID, q.OrderBy), customerID, q.After, q.PerPage), q)
}

type createCustomerBody struct {
	Email      string            `json:"email"       validate:"required,email"`
	Name       *string           `json:"name"`
	CustomData models.CustomData `json:"custom_data"`
	Locale     *string           `json:"locale"`
}

func (s *Server) createCustomer(c *gin.Context) {
	var body createCustomerBody
	if !bindBody(c, &body) {
		return
	}

	taken := s.customers.List(func(cust models.Customer) bool { return strings.EqualFold(cust.Email, body.Email) })
	if len(taken) > 0 {
		abortWithError(c, http.StatusConflict, "customer_already_exists",
			"customer email conflicts with customer of id "+taken[0].ID)
		return
	}

	cust := models.Customer{
		Email:      body.Email,
		Name:       body.Name,
		CustomData: body.CustomData,
	}
	if body.Locale != nil {
		cust.Locale = *body.Locale
	}

	s.respond(c, http.StatusCreated, s.AddCustomer(cust))
}

func (s *Server) getCustomer(c *gin.Context) {
	cust, ok := s.customers.Get(c.Param("id"))
	if !ok {
		notFound(c, "customer", c.Param("id"))
		return
	}

	s.respond(c, http.StatusOK, cust)
}

type updateCustomerBody struct {
	Name       *string           `json:"name"`
	Email      *string           `json:"email"       validate:"omitnil,email"`
	Status     *models.Status    `json:"status"      validate:"omitnil,oneof=active archived"`
	CustomData models.CustomData `json:"custom_data"`
	Locale     *string           `json:"locale"`
}

func (s *Server) updateCustomer(c *gin.Context) {
	var body updateCustomerBody
	if !bindBody(c, &body) {
		return
	}

	cust, ok := s.customers.Update(c.Param("id"), func(cust models.Customer) models.Customer {
		if body.Name != nil {
			cust.Name = body.Name
		}
		if body.Email != nil {
			cust.Email = *body.Email
		}
		if body.Status != nil {
			cust.Status = *body.Status
		}
		if body.CustomData != nil {
			cust.CustomData = body.CustomData
		}
		if body.Locale != nil {
			cust.Locale = *body.Locale
		}
		cust.UpdatedAt = s.timestamp()

		return cust
	})
	if !ok {
		notFound(c, "customer", c.Param("id"))
		return
	}

	s.respond(c, http.StatusOK, cust)
}

func (s *Server) listCreditBalances(c *gin.Context) {
	id := c.Param("id")
	if _, ok := s.customers.Get(id); !ok {
		notFound(c, "customer", id)
		return
	}

	balances, _ := s.creditBalances.Get(id)
	currencies := queryList(c, "currency_code")

	out := make([]models.CreditBalance, 0, len(balances))
	for _, b := range balances {
		if matchAny(currencies, b.CurrencyCode) {
			out = append(out, b)
		}
	}

	s.respond(c, http.StatusOK, out)
}

func (s *Server) generateAuthToken(c *gin.Context) {
	id := c.Param("id")
	if _, ok := s.customers.Get(id); !ok {
		notFound(c, "customer", id)
		return
	}

	s.respond(c, http.StatusOK, models.AuthToken{
		CustomerAuthToken: "pca_" + strings.ReplaceAll(uuid.NewString(), "-", ""),
		ExpiresAt:         s.now().Add(30 * time.Minute).UTC().Format(time.RFC3339Nano),
	})
}

type createPortalSessionBody struct {
	SubscriptionIDs []string `json:"subscription_ids"`
}

func (s *Server) createPortalSession(c *gin.Context) {
	id := c.Param("id")
	if _, ok := s.customers.Get(id); !ok {
		notFound(c, "customer", id)
		return
	}

	var body createPortalSessionBody
	if !bindBody(c, &body) {
		return
	}

	sessionID := "cpls_" + strings.ReplaceAll(uuid.NewString(), "-", "")
	base := "https://customer-portal.paddle.com/cpl_fake"

	subs := make([]models.PortalSubscriptionURLs, 0, len(body.SubscriptionIDs))
	for _, subID := range body.SubscriptionIDs {
		sub, ok := s.subscriptions.Get(subID)
		if !ok || sub.CustomerID != id {
			abortWithError(c, http.StatusBadRequest, CodeInvalidField, "Invalid request.",
				FieldError{Field: "subscription_ids", Message: "subscription " + subID + " does not belong to customer " + id})
			return
		}

		subs = append(subs, models.PortalSubscriptionURLs{
			ID:                              subID,
			CancelSubscription:              base + "/subscriptions/" + subID + "/cancel?token=" + sessionID,
			UpdateSubscriptionPaymentMethod: base + "/subscriptions/" + subID + "/payment-method?token=" + sessionID,
		})
	}

	s.respond(c, http.StatusCreated, models.PortalSession{
		ID:         sessionID,
		CustomerID: id,
		URLs: models.PortalURLs{
			General:       models.PortalGeneralURLs{Overview: base + "/overview?token=" + sessionID},
			Subscriptions: subs,
		},
		CreatedAt: s.timestamp(),
	})
}

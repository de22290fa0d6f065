package paddle

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ccxlv/paddle-go/internal/paddletest"
	"github.com/ccxlv/paddle-go/models"
)

func TestCustomers_CreateSendsOnlySetFields(t *testing.T) {
	client, srv := newTestClient(t)

	resp, err := client.Customers().Create(context.Background(), &CreateCustomerParams{
		Email: "test@example.com",
		Name:  String("Test Customer"),
	})
	require.NoError(t, err)

	assert.Equal(t, "test@example.com", resp.Data.Email)
	assert.True(t, strings.HasPrefix(resp.Data.ID, "ctm_"))
	assert.NotEmpty(t, resp.Meta.RequestID)

	req, ok := srv.LastRequest()
	require.True(t, ok)
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "/customers", req.Path)
	assert.Equal(t, `{"email":"test@example.com","name":"Test Customer"}`, string(req.Body))
	assert.Equal(t, "Bearer "+srv.APIKey(), req.Header.Get("Authorization"))
	assert.Equal(t, "1", req.Header.Get("Paddle-Version"))
	assert.Equal(t, "paddle-go/"+Version, req.Header.Get("User-Agent"))
	assert.Equal(t, "application/json", req.Header.Get("Content-Type"))
	assert.NotEmpty(t, req.Header.Get("X-Request-ID"))
}

func TestCustomers_CreateValidation(t *testing.T) {
	client, srv := newTestClient(t)

	tests := []struct {
		name   string
		params *CreateCustomerParams
		param  string
	}{
		{name: "nil params", params: nil, param: "email"},
		{name: "missing email", params: &CreateCustomerParams{Name: String("x")}, param: "email"},
		{name: "malformed email", params: &CreateCustomerParams{Email: "not-an-email"}, param: "email"},
		{name: "blank locale", params: &CreateCustomerParams{Email: "a@example.com", Locale: String(" ")}, param: "locale"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := client.Customers().Create(context.Background(), tt.params)
			require.Error(t, err)
			assert.True(t, IsValidation(err))

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.param, verr.Param)
		})
	}

	assert.Empty(t, srv.Requests())
}

func TestCustomers_GetNotFound(t *testing.T) {
	client, _ := newTestClient(t)

	_, err := client.Customers().Get(context.Background(), "ctm_missing")
	require.Error(t, err)

	assert.True(t, IsNotFound(err))
	assert.ErrorIs(t, err, ErrAPI)

	apiErr, ok := AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, paddletest.CodeNotFound, apiErr.Code)
	assert.Equal(t, "Unable to find requested customer ctm_missing", apiErr.Message)
	assert.Equal(t, paddletest.TypeRequestError, apiErr.Type)
	assert.NotEmpty(t, apiErr.RequestID)
	assert.Contains(t, err.Error(), "Unable to find requested customer ctm_missing")
}

func TestCustomers_GetBlankID(t *testing.T) {
	client, srv := newTestClient(t)

	_, err := client.Customers().Get(context.Background(), "  ")
	require.Error(t, err)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "customer_id", verr.Param)
	assert.Empty(t, srv.Requests())
}

func TestCustomers_WrongAPIKey(t *testing.T) {
	srv := paddletest.Start(t)

	client, err := New("pdl_wrong", WithBaseURL(srv.URL()), WithLogger(discardLogger()))
	require.NoError(t, err)

	_, err = client.Customers().List(context.Background(), nil)
	require.Error(t, err)
	assert.True(t, IsAuthentication(err))

	apiErr, ok := AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, paddletest.CodeInvalidToken, apiErr.Code)
}

func TestCustomers_ResponseMissingRequiredField(t *testing.T) {
	client, srv := newTestClient(t)

	srv.Stub(http.MethodGet, "/customers/ctm_1", paddletest.Reply{Body: `{
		"data": {"id": "ctm_1", "status": "active", "locale": "en",
		         "created_at": "2024-04-12T10:00:00Z", "updated_at": "2024-04-12T10:00:00Z"},
		"meta": {"request_id": "req_1"}
	}`})

	_, err := client.Customers().Get(context.Background(), "ctm_1")
	require.Error(t, err)
	assert.True(t, IsDeserialization(err))
	assert.False(t, IsNotFound(err))

	var derr *DeserializationError
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, "customers", derr.Resource)
	assert.Equal(t, "data.email", derr.Field)
}

func TestCustomers_Update(t *testing.T) {
	client, srv := newTestClient(t)
	cust := srv.AddCustomer(models.Customer{Email: "old@example.com"})

	resp, err := client.Customers().Update(context.Background(), cust.ID, &UpdateCustomerParams{
		Email:  String("new@example.com"),
		Status: ptr(models.StatusArchived),
	})
	require.NoError(t, err)

	assert.Equal(t, "new@example.com", resp.Data.Email)
	assert.Equal(t, models.StatusArchived, resp.Data.Status)

	req, _ := srv.LastRequest()
	assert.Equal(t, http.MethodPatch, req.Method)
	assert.JSONEq(t, `{"email":"new@example.com","status":"archived"}`, string(req.Body))
}

func TestCustomers_ListSendsDefaultPerPageAndFilters(t *testing.T) {
	client, srv := newTestClient(t)
	srv.AddCustomer(models.Customer{Email: "a@example.com"})
	srv.AddCustomer(models.Customer{Email: "b@example.com"})
	srv.AddCustomer(models.Customer{Email: "c@example.com"})

	resp, err := client.Customers().List(context.Background(), &ListCustomersParams{
		Email: []string{"a@example.com", "c@example.com"},
	})
	require.NoError(t, err)

	require.Len(t, resp.Data, 2)
	assert.False(t, resp.HasMore())
	assert.Empty(t, resp.NextCursor())
	assert.Equal(t, DefaultPerPage, resp.Meta.Pagination.PerPage)

	req, _ := srv.LastRequest()
	assert.Equal(t, "50", req.Query.Get("per_page"))
	assert.Equal(t, "a@example.com,c@example.com", req.Query.Get("email"))
	assert.False(t, req.Query.Has("after"))
}

func TestCustomers_ListPerPageBounds(t *testing.T) {
	client, srv := newTestClient(t)

	for _, n := range []int{0, 201} {
		_, err := client.Customers().List(context.Background(), &ListCustomersParams{PerPage: Int(n)})
		require.Error(t, err, n)

		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "per_page", verr.Param)
	}

	_, err := client.Customers().List(context.Background(), &ListCustomersParams{PerPage: Int(200)})
	require.NoError(t, err)

	assert.Len(t, srv.Requests(), 1)
}

func TestCustomers_ListAllWalksPages(t *testing.T) {
	client, srv := newTestClient(t)
	for range 5 {
		srv.AddCustomer(models.Customer{Email: "c@example.com"})
	}

	var ids []string
	for cust, err := range client.Customers().ListAll(context.Background(), &ListCustomersParams{PerPage: Int(2)}) {
		require.NoError(t, err)
		ids = append(ids, cust.ID)
	}

	assert.Equal(t, []string{"ctm_000001", "ctm_000002", "ctm_000003", "ctm_000004", "ctm_000005"}, ids)

	requests := srv.Requests()
	require.Len(t, requests, 3)
	assert.False(t, requests[0].Query.Has("after"))
	assert.Equal(t, "ctm_000002", requests[1].Query.Get("after"))
	assert.Equal(t, "ctm_000004", requests[2].Query.Get("after"))
}

func TestCustomers_CreateConflict(t *testing.T) {
	client, srv := newTestClient(t)
	srv.AddCustomer(models.Customer{Email: "taken@example.com"})

	_, err := client.Customers().Create(context.Background(), &CreateCustomerParams{Email: "taken@example.com"})
	require.Error(t, err)
	assert.True(t, IsConflict(err))
}

func TestCustomers_ListCreditBalances(t *testing.T) {
	client, srv := newTestClient(t)
	cust := srv.AddCustomer(models.Customer{Email: "a@example.com"})
	srv.SetCreditBalances(cust.ID,
		models.CreditBalance{CurrencyCode: models.CurrencyUSD, Balance: models.BalanceTotals{Available: "100", Reserved: "0", Used: "0"}},
		models.CreditBalance{CurrencyCode: models.CurrencyEUR, Balance: models.BalanceTotals{Available: "50", Reserved: "10", Used: "5"}},
	)

	resp, err := client.Customers().ListCreditBalances(context.Background(), cust.ID, &ListCreditBalancesParams{
		CurrencyCode: []models.CurrencyCode{models.CurrencyEUR},
	})
	require.NoError(t, err)

	require.Len(t, resp.Data, 1)
	assert.Equal(t, cust.ID, resp.Data[0].CustomerID)
	assert.Equal(t, "50", resp.Data[0].Balance.Available)

	req, _ := srv.LastRequest()
	assert.Equal(t, "/customers/"+cust.ID+"/credit-balances", req.Path)
	assert.Equal(t, "EUR", req.Query.Get("currency_code"))

	_, err = client.Customers().ListCreditBalances(context.Background(), cust.ID, &ListCreditBalancesParams{
		CurrencyCode: []models.CurrencyCode{"XXX"},
	})
	assert.True(t, IsValidation(err))
}

func TestCustomers_ListCreditBalancesEmpty(t *testing.T) {
	client, srv := newTestClient(t)
	cust := srv.AddCustomer(models.Customer{Email: "a@example.com"})

	resp, err := client.Customers().ListCreditBalances(context.Background(), cust.ID, nil)
	require.NoError(t, err)
	assert.Empty(t, resp.Data)
}

func TestCustomers_GenerateAuthToken(t *testing.T) {
	client, srv := newTestClient(t)
	cust := srv.AddCustomer(models.Customer{Email: "a@example.com"})

	resp, err := client.Customers().GenerateAuthToken(context.Background(), cust.ID)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(resp.Data.CustomerAuthToken, "pca_"))
	assert.NotEmpty(t, resp.Data.ExpiresAt)

	req, _ := srv.LastRequest()
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "/customers/"+cust.ID+"/auth-token", req.Path)
	assert.Empty(t, req.Body)
}

func TestCustomers_CreatePortalSession(t *testing.T) {
	client, srv := newTestClient(t)
	cust := srv.AddCustomer(models.Customer{Email: "a@example.com"})
	sub := srv.AddSubscription(models.Subscription{CustomerID: cust.ID})

	resp, err := client.Customers().CreatePortalSession(context.Background(), cust.ID, &CreatePortalSessionParams{
		SubscriptionIDs: []string{sub.ID},
	})
	require.NoError(t, err)

	assert.Equal(t, cust.ID, resp.Data.CustomerID)
	assert.NotEmpty(t, resp.Data.URLs.General.Overview)
	require.Len(t, resp.Data.URLs.Subscriptions, 1)
	assert.Equal(t, sub.ID, resp.Data.URLs.Subscriptions[0].ID)

	req, _ := srv.LastRequest()
	assert.JSONEq(t, `{"subscription_ids":["`+sub.ID+`"]}`, string(req.Body))

	resp, err = client.Customers().CreatePortalSession(context.Background(), cust.ID, nil)
	require.NoError(t, err)
	assert.Empty(t, resp.Data.URLs.Subscriptions)
}

func TestCustomers_PathEscapesID(t *testing.T) {
	f := &fakeRequester{}
	client := newFakeClient(t, f)

	_, _ = client.Customers().Get(context.Background(), "ctm/../x")

	require.Equal(t, 1, f.calls())
	assert.Equal(t, "/customers/ctm%2F..%2Fx", f.requests[0].Path)
}

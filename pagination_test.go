package paddle

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ccxlv/paddle-go/models"
)

func customerPage(id, next string, hasMore bool) []byte {
	return fmt.Appendf(nil, `{
		"data": [{"id": %q, "email": "a@example.com", "status": "active", "locale": "en",
		          "created_at": "2024-04-12T10:00:00Z", "updated_at": "2024-04-12T10:00:00Z"}],
		"meta": {"request_id": "r", "pagination": {"per_page": 1, "next": %q, "has_more": %t, "estimated_total": 3}}
	}`, id, next, hasMore)
}

func TestListAll_FollowsCursors(t *testing.T) {
	f := &fakeRequester{bodies: [][]byte{
		customerPage("ctm_01", "https://sandbox-api.paddle.com/customers?after=ctm_01", true),
		customerPage("ctm_02", "https://sandbox-api.paddle.com/customers?after=ctm_02", true),
		customerPage("ctm_03", "https://sandbox-api.paddle.com/customers?after=ctm_03", false),
	}}
	client := newFakeClient(t, f)

	var ids []string
	for customer, err := range client.Customers().ListAll(context.Background(), &ListCustomersParams{PerPage: Int(1)}) {
		require.NoError(t, err)
		ids = append(ids, customer.ID)
	}

	assert.Equal(t, []string{"ctm_01", "ctm_02", "ctm_03"}, ids)
	require.Equal(t, 3, f.calls())
	assert.Empty(t, f.requests[0].Query.Get("after"))
	assert.Equal(t, "ctm_01", f.requests[1].Query.Get("after"))
	assert.Equal(t, "ctm_02", f.requests[2].Query.Get("after"))
	assert.Equal(t, "1", f.requests[2].Query.Get("per_page"))
}

func TestListAll_StartsFromGivenCursor(t *testing.T) {
	f := &fakeRequester{bodies: [][]byte{customerPage("ctm_09", "", false)}}
	client := newFakeClient(t, f)

	for _, err := range client.Customers().ListAll(context.Background(), &ListCustomersParams{After: String("ctm_08")}) {
		require.NoError(t, err)
	}

	require.Equal(t, 1, f.calls())
	assert.Equal(t, "ctm_08", f.requests[0].Query.Get("after"))
}

func TestListAll_StopsOnError(t *testing.T) {
	boom := &UnavailableError{Operation: "GET /customers", Err: errors.New("connection refused")}
	f := &fakeRequester{err: boom}
	client := newFakeClient(t, f)

	var errs []error
	count := 0
	for customer, err := range client.Customers().ListAll(context.Background(), nil) {
		count++
		if err != nil {
			errs = append(errs, err)
			assert.Empty(t, customer.ID)
		}
	}

	assert.Equal(t, 1, count)
	require.Len(t, errs, 1)
	assert.True(t, IsUnavailable(errs[0]))
	assert.Equal(t, 1, f.calls())
}

func TestListAll_RepeatedCursor(t *testing.T) {
	f := &fakeRequester{bodies: [][]byte{
		customerPage("ctm_01", "https://sandbox-api.paddle.com/customers?after=ctm_01", true),
	}}
	client := newFakeClient(t, f)

	var ids []string
	var last error
	for customer, err := range client.Customers().ListAll(context.Background(), nil) {
		if err != nil {
			last = err
			continue
		}
		ids = append(ids, customer.ID)
	}

	assert.Equal(t, []string{"ctm_01", "ctm_01"}, ids)

	var derr *DeserializationError
	require.ErrorAs(t, last, &derr)
	assert.Equal(t, "meta.pagination.next", derr.Field)
	assert.Equal(t, 2, f.calls())
}

func TestListAll_ValidationFailsBeforeRequest(t *testing.T) {
	f := &fakeRequester{}
	client := newFakeClient(t, f)

	for _, err := range client.Customers().ListAll(context.Background(), &ListCustomersParams{PerPage: Int(500)}) {
		assert.True(t, IsValidation(err))
	}

	assert.Zero(t, f.calls())
}

func TestPaginationNextCursor(t *testing.T) {
	tests := []struct {
		name string
		next string
		want string
	}{
		{name: "empty", next: "", want: ""},
		{name: "url", next: "https://api.paddle.com/prices?after=pri_01&per_page=50", want: "pri_01"},
		{name: "bare cursor", next: "pri_01", want: "pri_01"},
		{name: "url without after", next: "https://api.paddle.com/prices?per_page=50", want: "https://api.paddle.com/prices?per_page=50"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, models.Pagination{Next: &tt.next}.NextCursor())
		})
	}
}

func TestPerPageDefault(t *testing.T) {
	assert.Equal(t, DefaultPerPage, perPage(nil))
	assert.Equal(t, 10, perPage(Int(10)))
}

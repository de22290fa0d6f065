package validation

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type money struct {
	Amount       string `json:"amount"        validate:"required"`
	CurrencyCode string `json:"currency_code" validate:"required,oneof=USD EUR"`
}

type sample struct {
	PerPage   *int     `url:"per_page"   validate:"omitnil,min=1,max=200"`
	Status    []string `url:"status"     validate:"omitempty,dive,oneof=active archived"`
	Email     string   `json:"email"     validate:"notblank"`
	Countries []string `json:"countries" validate:"omitempty,dive,iso3166_1_alpha2"`
	Price     *money   `json:"unit_price"`
}

func intPtr(v int) *int { return &v }

func TestCheck_Valid(t *testing.T) {
	v := sample{PerPage: intPtr(50), Status: []string{"active"}, Email: "a@b.c", Countries: []string{"US"}}

	assert.Nil(t, Check(v))
}

func TestCheck_PerPageBounds(t *testing.T) {
	tests := []struct {
		name    string
		perPage *int
		rule    string
	}{
		{name: "nil is allowed", perPage: nil},
		{name: "lower bound", perPage: intPtr(1)},
		{name: "upper bound", perPage: intPtr(200)},
		{name: "zero fails", perPage: intPtr(0), rule: "min=1"},
		{name: "above max fails", perPage: intPtr(201), rule: "max=200"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			violation := Check(sample{PerPage: tt.perPage, Email: "x"})
			if tt.rule == "" {
				assert.Nil(t, violation)
				return
			}

			require.NotNil(t, violation)
			assert.Equal(t, "per_page", violation.Field)
			assert.Equal(t, tt.rule, violation.Rule)
		})
	}
}

func TestCheck_EnumList(t *testing.T) {
	violation := Check(sample{Email: "x", Status: []string{"active", "deleted"}})

	require.NotNil(t, violation)
	assert.Equal(t, "status[1]", violation.Field)
	assert.Equal(t, "oneof=active archived", violation.Rule)
	assert.Equal(t, "must be one of: active archived", violation.Message)
	assert.Equal(t, "deleted", violation.Value)
}

func TestCheck_BlankRequired(t *testing.T) {
	violation := Check(sample{Email: "   "})

	require.NotNil(t, violation)
	assert.Equal(t, "email", violation.Field)
	assert.Equal(t, "notblank", violation.Rule)
}

func TestCheck_NestedField(t *testing.T) {
	violation := Check(sample{Email: "x", Price: &money{Amount: "10", CurrencyCode: "XXX"}})

	require.NotNil(t, violation)
	assert.Equal(t, "unit_price.currency_code", violation.Field)
}

func TestCheck_CountryCode(t *testing.T) {
	violation := Check(sample{Email: "x", Countries: []string{"ZZ"}})

	require.NotNil(t, violation)
	assert.Equal(t, "iso3166_1_alpha2", violation.Rule)
}

func TestMinMaxMessage(t *testing.T) {
	assert.Equal(t, "must be at least 1", minMaxMessage("min", "1", reflect.Int))
	assert.Equal(t, "must be at most 3 characters", minMaxMessage("max", "3", reflect.String))
}

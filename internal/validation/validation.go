// Package validation wraps go-playground/validator for request parameters
// and decoded API records.
package validation

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// tagParts is the number of parts kept when splitting a url/json tag by comma.
const tagParts = 2

var (
	// validate is the singleton validator instance.
	validate     *validator.Validate
	validateOnce sync.Once
)

// Violation describes the first constraint a value failed.
type Violation struct {
	// Field is the wire name of the offending field, dotted for nested fields
	// (e.g. "unit_price.currency_code").
	Field string

	// Rule is the failed tag with its parameter, e.g. "max=200".
	Rule string

	// Message is a human-readable description of the rule.
	Message string

	// Value is the rejected value.
	Value any
}

// Validator returns the singleton validator instance.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())

		// Report wire names (url tag for query params, json tag otherwise).
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			for _, key := range []string{"url", "json"} {
				tag, ok := fld.Tag.Lookup(key)
				if !ok {
					continue
				}

				name := strings.SplitN(tag, ",", tagParts)[0]
				if name == "-" {
					return ""
				}

				return name
			}

			return fld.Name
		})

		_ = validate.RegisterValidation("notblank", validateNotBlank)

		for alias, tags := range aliases {
			validate.RegisterAlias(alias, tags)
		}
	})

	return validate
}

// Check validates v and returns the first violation, or nil if v is valid.
// A non-struct argument yields a violation on the empty field name.
func Check(v any) *Violation {
	err := Validator().Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return &Violation{Rule: "struct", Message: err.Error()}
	}

	fe := fieldErrs[0]

	return &Violation{
		Field:   fieldPath(fe.Namespace()),
		Rule:    rule(fe),
		Message: message(fe),
		Value:   fe.Value(),
	}
}

// fieldPath drops the root struct name: "CreatePriceParams.unit_price.amount"
// becomes "unit_price.amount".
func fieldPath(namespace string) string {
	_, rest, found := strings.Cut(namespace, ".")
	if !found {
		return namespace
	}

	return rest
}

func rule(fe validator.FieldError) string {
	if fe.Param() == "" {
		return fe.ActualTag()
	}

	return fe.ActualTag() + "=" + fe.Param()
}

// aliases are Paddle enumerations shared by request params and records.
var aliases = map[string]string{
	"currency_code": "oneof=USD EUR GBP JPY AUD CAD CHF HKD SGD SEK ARS BRL CNY COP CZK DKK HUF ILS INR KRW MXN NOK NZD PLN RUB THB TRY TWD UAH VND ZAR",
	"tax_category": "oneof=digital-goods ebooks implementation-services professional-services saas " +
		"software-programming-services standard training-services website-hosting",
	"status": "oneof=active archived",
}

// messages maps validation tags to message templates.
// {param} is replaced with the tag parameter.
var messages = map[string]string{
	"required":         "is required",
	"notblank":         "must not be blank",
	"oneof":            "must be one of: {param}",
	"gte":              "must be greater than or equal to {param}",
	"lte":              "must be less than or equal to {param}",
	"iso3166_1_alpha2": "must be an ISO 3166-1 alpha-2 country code",
	"email":            "must be a valid email address",
	"url":              "must be a valid URL",
	"gtefield":         "must be greater than or equal to {param}",
}

func message(fe validator.FieldError) string {
	tag := fe.ActualTag()

	if tag == "min" || tag == "max" {
		return minMaxMessage(tag, fe.Param(), fe.Kind())
	}

	if msg, ok := messages[tag]; ok {
		return strings.ReplaceAll(msg, "{param}", fe.Param())
	}

	return "failed validation: " + tag
}

// minMaxMessage is type-aware: strings count characters, slices count items.
func minMaxMessage(tag, param string, kind reflect.Kind) string {
	suffix := ""

	switch kind {
	case reflect.String:
		suffix = " characters"
	case reflect.Slice, reflect.Map:
		suffix = " items"
	}

	if tag == "min" {
		return "must be at least " + param + suffix
	}

	return "must be at most " + param + suffix
}

// validateNotBlank rejects strings that are empty after trimming whitespace.
func validateNotBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

// Package models contains the records returned by the Paddle Billing API.
//
// Records are plain values decoded once from a response envelope. Struct tags
// declare the shape each record must have: the response mapper rejects payloads
// with missing required fields or values outside an enumeration.
//
// Timestamps are kept as the RFC 3339 strings Paddle sends.
package models

import (
	"net/url"
)

// Status is the lifecycle status shared by customers, products and prices.
type Status string

// Status values.
const (
	StatusActive   Status = "active"
	StatusArchived Status = "archived"
)

// ImportedFrom names the platform an entity was imported from.
type ImportedFrom string

// ImportedFromPaddleClassic marks entities migrated from Paddle Classic.
const ImportedFromPaddleClassic ImportedFrom = "paddle_classic"

// ImportMeta is present on entities imported from another platform.
type ImportMeta struct {
	ImportedFrom ImportedFrom `json:"imported_from" validate:"required,oneof=paddle_classic"`
	ExternalID   *string      `json:"external_id,omitempty"`
}

// CustomData is free-form metadata attached to an entity.
type CustomData map[string]any

// Meta is the metadata block present on every response.
type Meta struct {
	RequestID string `json:"request_id" validate:"required"`
}

// Pagination describes the position of a list page.
// Paddle always sends every key, so a missing one is a malformed page.
type Pagination struct {
	PerPage        int     `json:"per_page"        validate:"required"`
	Next           *string `json:"next"            validate:"required"`
	HasMore        *bool   `json:"has_more"        validate:"required"`
	EstimatedTotal *int    `json:"estimated_total" validate:"required"`
}

// NextCursor returns the cursor for the page after this one.
// Paddle sends the full URL of the next page; the cursor is its "after"
// query parameter. A bare cursor is returned unchanged.
func (p Pagination) NextCursor() string {
	if p.Next == nil || *p.Next == "" {
		return ""
	}

	next := *p.Next

	u, err := url.Parse(next)
	if err != nil || u.RawQuery == "" {
		return next
	}

	if after := u.Query().Get("after"); after != "" {
		return after
	}

	return next
}

// Total returns the estimated number of records across all pages.
func (p Pagination) Total() int {
	if p.EstimatedTotal == nil {
		return 0
	}

	return *p.EstimatedTotal
}

// MetaWithPagination is the metadata block of list responses.
type MetaWithPagination struct {
	RequestID  string      `json:"request_id" validate:"required"`
	Pagination *Pagination `json:"pagination" validate:"required"`
}

// Response wraps a single record (or a fixed collection returned as one payload).
type Response[T any] struct {
	Data T
	Meta Meta
}

// ListResponse wraps a page of records.
type ListResponse[T any] struct {
	Data []T
	Meta MetaWithPagination
}

// HasMore reports whether another page follows this one.
func (r *ListResponse[T]) HasMore() bool {
	p := r.Meta.Pagination

	return p != nil && p.HasMore != nil && *p.HasMore
}

// NextCursor returns the cursor of the following page, or "" when there is none.
func (r *ListResponse[T]) NextCursor() string {
	if !r.HasMore() {
		return ""
	}

	return r.Meta.Pagination.NextCursor()
}

// BillingCycle is a recurring interval such as "every 1 month".
type BillingCycle struct {
	Frequency int      `json:"frequency" validate:"required,min=1"`
	Interval  Interval `json:"interval"  validate:"required,oneof=day week month year"`
}

// Interval is the unit of a billing cycle.
type Interval string

// Interval values.
const (
	IntervalDay   Interval = "day"
	IntervalWeek  Interval = "week"
	IntervalMonth Interval = "month"
	IntervalYear  Interval = "year"
)

// Money is an amount in the lowest denomination of a currency.
type Money struct {
	Amount       string       `json:"amount"        validate:"required"`
	CurrencyCode CurrencyCode `json:"currency_code" validate:"required,currency_code"`
}

// CurrencyCode is an ISO 4217 code supported by Paddle.
type CurrencyCode string

// Commonly used currency codes. Every code Paddle supports is accepted.
const (
	CurrencyUSD CurrencyCode = "USD"
	CurrencyEUR CurrencyCode = "EUR"
	CurrencyGBP CurrencyCode = "GBP"
	CurrencyJPY CurrencyCode = "JPY"
	CurrencyAUD CurrencyCode = "AUD"
	CurrencyCAD CurrencyCode = "CAD"
)

package models

// PriceType separates catalog prices from one-off custom prices.
type PriceType string

// PriceType values.
const (
	PriceTypeCustom   PriceType = "custom"
	PriceTypeStandard PriceType = "standard"
)

// TaxMode controls whether prices include tax.
type TaxMode string

// TaxMode values.
const (
	TaxModeAccountSetting TaxMode = "account_setting"
	TaxModeExternal       TaxMode = "external"
	TaxModeInternal       TaxMode = "internal"
)

// Price describes how much and how often a product is charged.
// Product is set only when the list request included it.
type Price struct {
	ID                 string              `json:"id"                   validate:"required"`
	ProductID          string              `json:"product_id"           validate:"required"`
	Description        string              `json:"description"          validate:"required"`
	Type               PriceType           `json:"type"                 validate:"required,oneof=custom standard"`
	Name               *string             `json:"name"`
	BillingCycle       *BillingCycle       `json:"billing_cycle"`
	TrialPeriod        *BillingCycle       `json:"trial_period"`
	TaxMode            TaxMode             `json:"tax_mode"             validate:"required,oneof=account_setting external internal"`
	UnitPrice          Money               `json:"unit_price"`
	UnitPriceOverrides []UnitPriceOverride `json:"unit_price_overrides" validate:"required,dive"`
	Quantity           Quantity            `json:"quantity"`
	Status             Status              `json:"status"               validate:"required,status"`
	CustomData         CustomData          `json:"custom_data"`
	ImportMeta         *ImportMeta         `json:"import_meta"`
	CreatedAt          string              `json:"created_at"           validate:"required"`
	UpdatedAt          string              `json:"updated_at"           validate:"required"`
	Product            *Product            `json:"product,omitempty"`
}

// UnitPriceOverride replaces the unit price for a set of countries.
type UnitPriceOverride struct {
	CountryCodes []string `json:"country_codes" validate:"required,min=1,dive,iso3166_1_alpha2"`
	UnitPrice    Money    `json:"unit_price"`
}

// Quantity bounds how many units can be bought at this price.
type Quantity struct {
	Minimum int `json:"minimum" validate:"required,min=1"`
	Maximum int `json:"maximum" validate:"required,gtefield=Minimum"`
}

// PriceOrderBy is a sort key for listing prices.
type PriceOrderBy string

// PriceOrderBy values.
const (
	PriceOrderByBillingCycleFrequencyAsc  PriceOrderBy = "billing_cycle.frequency[ASC]"
	PriceOrderByBillingCycleFrequencyDesc PriceOrderBy = "billing_cycle.frequency[DESC]"
	PriceOrderByBillingCycleIntervalAsc   PriceOrderBy = "billing_cycle.interval[ASC]"
	PriceOrderByBillingCycleIntervalDesc  PriceOrderBy = "billing_cycle.interval[DESC]"
	PriceOrderByIDAsc                     PriceOrderBy = "id[ASC]"
	PriceOrderByIDDesc                    PriceOrderBy = "id[DESC]"
	PriceOrderByProductIDAsc              PriceOrderBy = "product_id[ASC]"
	PriceOrderByProductIDDesc             PriceOrderBy = "product_id[DESC]"
	PriceOrderByQuantityMaximumAsc        PriceOrderBy = "quantity.maximum[ASC]"
	PriceOrderByQuantityMaximumDesc       PriceOrderBy = "quantity.maximum[DESC]"
	PriceOrderByQuantityMinimumAsc        PriceOrderBy = "quantity.minimum[ASC]"
	PriceOrderByQuantityMinimumDesc       PriceOrderBy = "quantity.minimum[DESC]"
	PriceOrderByStatusAsc                 PriceOrderBy = "status[ASC]"
	PriceOrderByStatusDesc                PriceOrderBy = "status[DESC]"
	PriceOrderByTaxModeAsc                PriceOrderBy = "tax_mode[ASC]"
	PriceOrderByTaxModeDesc               PriceOrderBy = "tax_mode[DESC]"
	PriceOrderByUnitPriceAmountAsc        PriceOrderBy = "unit_price.amount[ASC]"
	PriceOrderByUnitPriceAmountDesc       PriceOrderBy = "unit_price.amount[DESC]"
	PriceOrderByUnitPriceCurrencyCodeAsc  PriceOrderBy = "unit_price.currency_code[ASC]"
	PriceOrderByUnitPriceCurrencyCodeDesc PriceOrderBy = "unit_price.currency_code[DESC]"
)

// PriceInclude names an entity that can be embedded in price list results.
type PriceInclude string

// PriceIncludeProduct embeds the related product in each price.
const PriceIncludeProduct PriceInclude = "product"

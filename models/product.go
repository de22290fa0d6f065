package models

// TaxCategory is the Paddle tax category of a product.
type TaxCategory string

// TaxCategory values.
const (
	TaxCategoryDigitalGoods                TaxCategory = "digital-goods"
	TaxCategoryEbooks                      TaxCategory = "ebooks"
	TaxCategoryImplementationServices      TaxCategory = "implementation-services"
	TaxCategoryProfessionalServices        TaxCategory = "professional-services"
	TaxCategorySaaS                        TaxCategory = "saas"
	TaxCategorySoftwareProgrammingServices TaxCategory = "software-programming-services"
	TaxCategoryStandard                    TaxCategory = "standard"
	TaxCategoryTrainingServices            TaxCategory = "training-services"
	TaxCategoryWebsiteHosting              TaxCategory = "website-hosting"
)

// ProductType separates catalog products from one-off custom products.
type ProductType string

// ProductType values.
const (
	ProductTypeCustom   ProductType = "custom"
	ProductTypeStandard ProductType = "standard"
)

// Product is an item a seller sells. Prices is set only when the request
// included them.
type Product struct {
	ID          string      `json:"id"           validate:"required"`
	Name        string      `json:"name"         validate:"required"`
	TaxCategory TaxCategory `json:"tax_category" validate:"required,tax_category"`
	Type        ProductType `json:"type"         validate:"required,oneof=custom standard"`
	Status      Status      `json:"status"       validate:"required,status"`
	Description *string     `json:"description"`
	ImageURL    *string     `json:"image_url"`
	CustomData  CustomData  `json:"custom_data"`
	ImportMeta  *ImportMeta `json:"import_meta"`
	CreatedAt   string      `json:"created_at"   validate:"required"`
	UpdatedAt   string      `json:"updated_at"   validate:"required"`
	Prices      []Price     `json:"prices,omitempty" validate:"omitempty,dive"`
}

// ProductOrderBy is a sort key for listing products.
type ProductOrderBy string

// ProductOrderBy values.
const (
	ProductOrderByCreatedAtAsc    ProductOrderBy = "created_at[ASC]"
	ProductOrderByCreatedAtDesc   ProductOrderBy = "created_at[DESC]"
	ProductOrderByCustomDataAsc   ProductOrderBy = "custom_data[ASC]"
	ProductOrderByCustomDataDesc  ProductOrderBy = "custom_data[DESC]"
	ProductOrderByDescriptionAsc  ProductOrderBy = "description[ASC]"
	ProductOrderByDescriptionDesc ProductOrderBy = "description[DESC]"
	ProductOrderByIDAsc           ProductOrderBy = "id[ASC]"
	ProductOrderByIDDesc          ProductOrderBy = "id[DESC]"
	ProductOrderByImageURLAsc     ProductOrderBy = "image_url[ASC]"
	ProductOrderByImageURLDesc    ProductOrderBy = "image_url[DESC]"
	ProductOrderByNameAsc         ProductOrderBy = "name[ASC]"
	ProductOrderByNameDesc        ProductOrderBy = "name[DESC]"
	ProductOrderByStatusAsc       ProductOrderBy = "status[ASC]"
	ProductOrderByStatusDesc      ProductOrderBy = "status[DESC]"
	ProductOrderByTaxCategoryAsc  ProductOrderBy = "tax_category[ASC]"
	ProductOrderByTaxCategoryDesc ProductOrderBy = "tax_category[DESC]"
	ProductOrderByUpdatedAtAsc    ProductOrderBy = "updated_at[ASC]"
	ProductOrderByUpdatedAtDesc   ProductOrderBy = "updated_at[DESC]"
)

// ProductInclude names an entity that can be embedded in product results.
type ProductInclude string

// ProductIncludePrices embeds the product's prices.
const ProductIncludePrices ProductInclude = "prices"

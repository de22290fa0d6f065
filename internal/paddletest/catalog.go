package paddletest

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ccxlv/paddle-go/models"
)

// AddProduct stores p, filling unset ID, type, status and timestamps.
func (s *Server) AddProduct(p models.Product) models.Product {
	if p.ID == "" {
		p.ID = s.products.NextID()
	}
	if p.Type == "" {
		p.Type = models.ProductTypeStandard
	}
	if p.Status == "" {
		p.Status = models.StatusActive
	}
	if p.CreatedAt == "" {
		p.CreatedAt = s.timestamp()
	}
	if p.UpdatedAt == "" {
		p.UpdatedAt = p.CreatedAt
	}
	p.Prices = nil

	s.products.Set(p.ID, p)

	return p
}

// AddPrice stores p, filling unset ID, type, tax mode, quantity, status and
// timestamps. The product is not required to exist.
func (s *Server) AddPrice(p models.Price) models.Price {
	if p.ID == "" {
		p.ID = s.prices.NextID()
	}
	if p.Type == "" {
		p.Type = models.PriceTypeStandard
	}
	if p.TaxMode == "" {
		p.TaxMode = models.TaxModeAccountSetting
	}
	if p.Quantity == (models.Quantity{}) {
		p.Quantity = models.Quantity{Minimum: 1, Maximum: 100}
	}
	if p.UnitPriceOverrides == nil {
		p.UnitPriceOverrides = []models.UnitPriceOverride{}
	}
	if p.Status == "" {
		p.Status = models.StatusActive
	}
	if p.CreatedAt == "" {
		p.CreatedAt = s.timestamp()
	}
	if p.UpdatedAt == "" {
		p.UpdatedAt = p.CreatedAt
	}
	p.Product = nil

	s.prices.Set(p.ID, p)

	return p
}

// Product returns the stored product with the given ID.
func (s *Server) Product(id string) (models.Product, bool) {
	return s.products.Get(id)
}

// Price returns the stored price with the given ID.
func (s *Server) Price(id string) (models.Price, bool) {
	return s.prices.Get(id)
}

func productID(p models.Product) string { return p.ID }

func priceID(p models.Price) string { return p.ID }

// productWithPrices always carries a prices array, even an empty one.
type productWithPrices struct {
	models.Product

	Prices []models.Price `json:"prices"`
}

func (s *Server) withPrices(p models.Product) productWithPrices {
	prices := s.prices.List(func(price models.Price) bool { return price.ProductID == p.ID })
	return productWithPrices{Product: p, Prices: prices}
}

func (s *Server) listProducts(c *gin.Context) {
	q, ok := bindList(c)
	if !ok {
		return
	}

	ids := queryList(c, "id")
	statuses := queryList(c, "status")
	categories := queryList(c, "tax_category")
	types := queryList(c, "type")

	items := s.products.List(func(p models.Product) bool {
		return matchAny(ids, p.ID) && matchAny(statuses, p.Status) &&
			matchAny(categories, p.TaxCategory) && matchAny(types, p.Type)
	})
	page := paginate(ordered(items, productID, q.OrderBy), productID, q.After, q.PerPage)

	if !includes(c, string(models.ProductIncludePrices)) {
		respondPage(c, page, q)
		return
	}

	expanded := Page[productWithPrices]{
		Data:    make([]productWithPrices, 0, len(page.Data)),
		HasMore: page.HasMore,
		Cursor:  page.Cursor,
		Total:   page.Total,
	}
	for _, p := range page.Data {
		expanded.Data = append(expanded.Data, s.withPrices(p))
	}

	respondPage(c, expanded, q)
}

type createProductBody struct {
	Name        string              `json:"name"         validate:"required"`
	TaxCategory models.TaxCategory  `json:"tax_category" validate:"required"`
	Description *string             `json:"description"`
	Type        *models.ProductType `json:"type"         validate:"omitnil,oneof=custom standard"`
	ImageURL    *string             `json:"image_url"    validate:"omitnil,url"`
	CustomData  models.CustomData   `json:"custom_data"`
}

func (s *Server) createProduct(c *gin.Context) {
	var body createProductBody
	if !bindBody(c, &body) {
		return
	}

	p := models.Product{
		Name:        body.Name,
		TaxCategory: body.TaxCategory,
		Description: body.Description,
		ImageURL:    body.ImageURL,
		CustomData:  body.CustomData,
	}
	if body.Type != nil {
		p.Type = *body.Type
	}

	s.respond(c, http.StatusCreated, s.AddProduct(p))
}

func (s *Server) getProduct(c *gin.Context) {
	p, ok := s.products.Get(c.Param("id"))
	if !ok {
		notFound(c, "product", c.Param("id"))
		return
	}

	if includes(c, string(models.ProductIncludePrices)) {
		s.respond(c, http.StatusOK, s.withPrices(p))
		return
	}

	s.respond(c, http.StatusOK, p)
}

type updateProductBody struct {
	Name        *string             `json:"name"`
	Description *string             `json:"description"`
	Type        *models.ProductType `json:"type"         validate:"omitnil,oneof=custom standard"`
	TaxCategory *models.TaxCategory `json:"tax_category"`
	ImageURL    *string             `json:"image_url"    validate:"omitnil,url"`
	CustomData  models.CustomData   `json:"custom_data"`
	Status      *models.Status      `json:"status"       validate:"omitnil,oneof=active archived"`
}

func (s *Server) updateProduct(c *gin.Context) {
	var body updateProductBody
	if !bindBody(c, &body) {
		return
	}

	p, ok := s.products.Update(c.Param("id"), func(p models.Product) models.Product {
		if body.Name != nil {
			p.Name = *body.Name
		}
		if body.Description != nil {
			p.Description = body.Description
		}
		if body.Type != nil {
			p.Type = *body.Type
		}
		if body.TaxCategory != nil {
			p.TaxCategory = *body.TaxCategory
		}
		if body.ImageURL != nil {
			p.ImageURL = body.ImageURL
		}
		if body.CustomData != nil {
			p.CustomData = body.CustomData
		}
		if body.Status != nil {
			p.Status = *body.Status
		}
		p.UpdatedAt = s.timestamp()

		return p
	})
	if !ok {
		notFound(c, "product", c.Param("id"))
		return
	}

	s.respond(c, http.StatusOK, p)
}

func (s *Server) listPrices(c *gin.Context) {
	q, ok := bindList(c)
	if !ok {
		return
	}

	ids := queryList(c, "id")
	productIDs := queryList(c, "product_id")
	statuses := queryList(c, "status")
	types := queryList(c, "type")

	var recurring *bool
	if raw := c.Query("recurring"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, CodeInvalidField, "Invalid request.",
				FieldError{Field: "recurring", Message: "must be a boolean"})
			return
		}
		recurring = &v
	}

	items := s.prices.List(func(p models.Price) bool {
		if recurring != nil && (p.BillingCycle != nil) != *recurring {
			return false
		}

		return matchAny(ids, p.ID) && matchAny(productIDs, p.ProductID) &&
			matchAny(statuses, p.Status) && matchAny(types, p.Type)
	})
	page := paginate(ordered(items, priceID, q.OrderBy), priceID, q.After, q.PerPage)

	if includes(c, string(models.PriceIncludeProduct)) {
		for i, price := range page.Data {
			if product, ok := s.products.Get(price.ProductID); ok {
				page.Data[i].Product = &product
			}
		}
	}

	respondPage(c, page, q)
}

type createPriceBody struct {
	Description        string                     `json:"description"          validate:"required"`
	ProductID          string                     `json:"product_id"           validate:"required"`
	UnitPrice          models.Money               `json:"unit_price"`
	Type               *models.PriceType          `json:"type"                 validate:"omitnil,oneof=custom standard"`
	Name               *string                    `json:"name"`
	BillingCycle       *models.BillingCycle       `json:"billing_cycle"`
	TrialPeriod        *models.BillingCycle       `json:"trial_period"`
	TaxMode            *models.TaxMode            `json:"tax_mode"             validate:"omitnil,oneof=account_setting external internal"`
	UnitPriceOverrides []models.UnitPriceOverride `json:"unit_price_overrides"`
	Quantity           *models.Quantity           `json:"quantity"`
	CustomData         models.CustomData          `json:"custom_data"`
}

func (s *Server) createPrice(c *gin.Context) {
	var body createPriceBody
	if !bindBody(c, &body) {
		return
	}

	if _, ok := s.products.Get(body.ProductID); !ok {
		abortWithError(c, http.StatusBadRequest, CodeInvalidField, "Invalid request.",
			FieldError{Field: "product_id", Message: "product " + body.ProductID + " does not exist"})
		return
	}

	p := models.Price{
		Description:        body.Description,
		ProductID:          body.ProductID,
		UnitPrice:          body.UnitPrice,
		Name:               body.Name,
		BillingCycle:       body.BillingCycle,
		TrialPeriod:        body.TrialPeriod,
		UnitPriceOverrides: body.UnitPriceOverrides,
		CustomData:         body.CustomData,
	}
	if body.Type != nil {
		p.Type = *body.Type
	}
	if body.TaxMode != nil {
		p.TaxMode = *body.TaxMode
	}
	if body.Quantity != nil {
		p.Quantity = *body.Quantity
	}

	s.respond(c, http.StatusCreated, s.AddPrice(p))
}

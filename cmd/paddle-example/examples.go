package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	paddle "github.com/ccxlv/paddle-go"
	"github.com/ccxlv/paddle-go/internal/paddletest"
	"github.com/ccxlv/paddle-go/models"
)

// seedFake gives the fake API a subscribed customer with a credit balance.
func seedFake(fake *paddletest.Server) {
	customer := fake.AddCustomer(models.Customer{Email: "seed@example.com", Name: paddle.String("Seed Customer")})
	product := fake.AddProduct(models.Product{Name: "Starter plan", TaxCategory: models.TaxCategorySaaS})
	price := fake.AddPrice(models.Price{
		ProductID:    product.ID,
		Description:  "Starter monthly",
		UnitPrice:    models.Money{Amount: "1200", CurrencyCode: models.CurrencyUSD},
		BillingCycle: &models.BillingCycle{Frequency: 1, Interval: models.IntervalMonth},
	})

	fake.AddSubscription(models.Subscription{
		CustomerID: customer.ID,
		Items:      []models.SubscriptionItem{fake.Item(price, product, 1)},
	})
	fake.SetCreditBalances(customer.ID, models.CreditBalance{
		CustomerID:   customer.ID,
		CurrencyCode: models.CurrencyUSD,
		Balance:      models.BalanceTotals{Available: "500", Reserved: "0", Used: "0"},
	})
}

// runExamples walks through every resource the client supports.
func runExamples(ctx context.Context, client *paddle.Client, p *printer, logger *slog.Logger) error {
	customer, err := customerExamples(ctx, client, p)
	if err != nil {
		return err
	}

	product, err := catalogExamples(ctx, client, p, logger)
	if err != nil {
		return err
	}

	if err := subscriptionExamples(ctx, client, p); err != nil {
		return err
	}

	return asyncExamples(ctx, client, p, customer.ID, product.ID)
}

func customerExamples(ctx context.Context, client *paddle.Client, p *printer) (models.Customer, error) {
	customers := client.Customers()

	list, err := customers.List(ctx, &paddle.ListCustomersParams{PerPage: paddle.Int(10)})
	if err != nil {
		return models.Customer{}, fmt.Errorf("listing customers: %w", err)
	}
	if err := p.print("customers.list", list.Data); err != nil {
		return models.Customer{}, err
	}

	created, err := customers.Create(ctx, &paddle.CreateCustomerParams{
		Email: fmt.Sprintf("example-%s@example.com", uuid.NewString()[:8]),
		Name:  paddle.String("Example Customer"),
	})
	if err != nil {
		return models.Customer{}, fmt.Errorf("creating customer: %w", err)
	}
	if err := p.print("customers.create", created.Data); err != nil {
		return models.Customer{}, err
	}

	id := created.Data.ID

	got, err := customers.Get(ctx, id)
	if err != nil {
		return models.Customer{}, fmt.Errorf("getting customer: %w", err)
	}
	if err := p.print("customers.get", got.Data); err != nil {
		return models.Customer{}, err
	}

	updated, err := customers.Update(ctx, id, &paddle.UpdateCustomerParams{
		Name:       paddle.String("Updated Example Customer"),
		CustomData: models.CustomData{"source": "paddle-example"},
	})
	if err != nil {
		return models.Customer{}, fmt.Errorf("updating customer: %w", err)
	}
	if err := p.print("customers.update", updated.Data); err != nil {
		return models.Customer{}, err
	}

	balances, err := customers.ListCreditBalances(ctx, id, nil)
	if err != nil {
		return models.Customer{}, fmt.Errorf("listing credit balances: %w", err)
	}
	if err := p.print("customers.credit_balances", balances.Data); err != nil {
		return models.Customer{}, err
	}

	token, err := customers.GenerateAuthToken(ctx, id)
	if err != nil {
		return models.Customer{}, fmt.Errorf("generating auth token: %w", err)
	}
	if err := p.print("customers.auth_token", map[string]string{"expires_at": token.Data.ExpiresAt}); err != nil {
		return models.Customer{}, err
	}

	return updated.Data, nil
}

func catalogExamples(ctx context.Context, client *paddle.Client, p *printer, logger *slog.Logger) (models.Product, error) {
	product, err := client.Products().Create(ctx, &paddle.CreateProductParams{
		Name:        "Example add-on",
		TaxCategory: models.TaxCategoryStandard,
	})
	if err != nil {
		return models.Product{}, fmt.Errorf("creating product: %w", err)
	}
	if err := p.print("products.create", product.Data); err != nil {
		return models.Product{}, err
	}

	price, err := client.Prices().Create(ctx, &paddle.CreatePriceParams{
		Description:  "Example add-on monthly",
		ProductID:    product.Data.ID,
		UnitPrice:    models.Money{Amount: "500", CurrencyCode: models.CurrencyUSD},
		BillingCycle: &models.BillingCycle{Frequency: 1, Interval: models.IntervalMonth},
	})
	if err != nil {
		return models.Product{}, fmt.Errorf("creating price: %w", err)
	}
	if err := p.print("prices.create", price.Data); err != nil {
		return models.Product{}, err
	}

	prices, err := client.Prices().List(ctx, &paddle.ListPricesParams{
		ProductID: []string{product.Data.ID},
		Include:   []models.PriceInclude{models.PriceIncludeProduct},
	})
	if err != nil {
		return models.Product{}, fmt.Errorf("listing prices: %w", err)
	}
	if err := p.print("prices.list", prices.Data); err != nil {
		return models.Product{}, err
	}

	if _, err := client.Prices().Get(ctx, price.Data.ID); paddle.IsNotImplemented(err) {
		logger.InfoContext(ctx, "prices.get is not available", slog.Any("error", err))
	}

	return product.Data, nil
}

func subscriptionExamples(ctx context.Context, client *paddle.Client, p *printer) error {
	subs, err := client.Subscriptions().List(ctx, &paddle.ListSubscriptionsParams{
		Status: []models.SubscriptionStatus{models.SubscriptionStatusActive},
	})
	if err != nil {
		return fmt.Errorf("listing subscriptions: %w", err)
	}
	if err := p.print("subscriptions.list", subs.Data); err != nil {
		return err
	}
	if len(subs.Data) == 0 {
		return nil
	}

	sub, err := client.Subscriptions().Get(ctx, subs.Data[0].ID, &paddle.GetSubscriptionParams{
		Include: []models.SubscriptionInclude{models.SubscriptionIncludeNextTransaction},
	})
	if err != nil {
		return fmt.Errorf("getting subscription: %w", err)
	}

	return p.print("subscriptions.get", sub.Data)
}

// asyncExamples fetches the customer and product created above concurrently.
func asyncExamples(ctx context.Context, client *paddle.Client, p *printer, customerID, productID string) error {
	async := client.Async()

	customer := async.Customers().Get(ctx, customerID)
	product := async.Products().Get(ctx, productID, &paddle.GetProductParams{
		Include: []models.ProductInclude{models.ProductIncludePrices},
	})

	c, err := customer.Await(ctx)
	if err != nil {
		return fmt.Errorf("awaiting customer: %w", err)
	}

	pr, err := product.Await(ctx)
	if err != nil {
		return fmt.Errorf("awaiting product: %w", err)
	}

	return p.print("async", map[string]any{"customer": c.Data.ID, "product": pr.Data.Name, "prices": len(pr.Data.Prices)})
}

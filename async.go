package paddle

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"

	"golang.org/x/sync/errgroup"

	"github.com/ccxlv/paddle-go/internal/platform/logging"
	"github.com/ccxlv/paddle-go/models"
)

// Future is the pending result of an AsyncClient call.
type Future[T any] struct {
	done  chan struct{}
	value T
	err   error
}

// Await blocks until the call finishes or ctx is done, and returns what the
// blocking method would have returned. Cancelling ctx stops the wait only;
// the call itself is bound by the context it was started with.
func (f *Future[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		var zero T
		return zero, &UnavailableError{Operation: "await", Err: ctx.Err()}
	}
}

// Done is closed once the result is available.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// goFuture runs fn on its own goroutine.
func goFuture[T any](ctx context.Context, c *caller, resource string, fn func(context.Context) (T, error)) *Future[T] {
	f := &Future[T]{done: make(chan struct{})}
	finished := c.metrics.Started(resource)

	go func() {
		defer close(f.done)
		defer finished()
		defer func() {
			if r := recover(); r != nil {
				logging.FromContextOr(ctx, c.logger).ErrorContext(ctx, "paddle async operation panicked",
					slog.String("resource", resource),
					slog.Any("panic", r),
					slog.String("stack", string(debug.Stack())),
				)
				var zero T
				f.value, f.err = zero, &UnavailableError{Operation: resource, Err: fmt.Errorf("operation panicked: %v", r)}
			}
		}()

		f.value, f.err = fn(ctx)
	}()

	return f
}

// AwaitAll waits for every future and returns their results in order.
// The first failure is returned and stops the remaining waits.
func AwaitAll[T any](ctx context.Context, futures ...*Future[T]) ([]T, error) {
	g, ctx := errgroup.WithContext(ctx)
	results := make([]T, len(futures))

	for i, f := range futures {
		g.Go(func() error {
			value, err := f.Await(ctx)
			if err != nil {
				return err
			}

			results[i] = value

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}

// AsyncClient is the non-blocking twin of Client. Every method starts the call
// on a new goroutine and returns a Future immediately.
type AsyncClient struct {
	client *Client

	customers     *AsyncCustomersClient
	prices        *AsyncPricesClient
	products      *AsyncProductsClient
	subscriptions *AsyncSubscriptionsClient
}

// NewAsync creates an AsyncClient authenticated with apiKey.
func NewAsync(apiKey string, opts ...Option) (*AsyncClient, error) {
	client, err := New(apiKey, opts...)
	if err != nil {
		return nil, err
	}

	return client.Async(), nil
}

// Async returns a non-blocking view of c sharing its transport.
func (c *Client) Async() *AsyncClient {
	return &AsyncClient{
		client:        c,
		customers:     &AsyncCustomersClient{r: c.customers},
		prices:        &AsyncPricesClient{r: c.prices},
		products:      &AsyncProductsClient{r: c.products},
		subscriptions: &AsyncSubscriptionsClient{r: c.subscriptions},
	}
}

// Customers returns the customers resource.
func (c *AsyncClient) Customers() *AsyncCustomersClient { return c.customers }

// Prices returns the prices resource.
func (c *AsyncClient) Prices() *AsyncPricesClient { return c.prices }

// Products returns the products resource.
func (c *AsyncClient) Products() *AsyncProductsClient { return c.products }

// Subscriptions returns the subscriptions resource.
func (c *AsyncClient) Subscriptions() *AsyncSubscriptionsClient { return c.subscriptions }

// Close releases idle connections. It is safe to call more than once.
func (c *AsyncClient) Close() error {
	return c.client.Close()
}

// AsyncCustomersClient is the non-blocking twin of CustomersClient.
type AsyncCustomersClient struct {
	r *CustomersClient
}

// List starts CustomersClient.List.
func (a *AsyncCustomersClient) List(ctx context.Context, p *ListCustomersParams) *Future[*models.ListResponse[models.Customer]] {
	return goFuture(ctx, a.r.c, "customers", func(ctx context.Context) (*models.ListResponse[models.Customer], error) {
		return a.r.List(ctx, p)
	})
}

// Create starts CustomersClient.Create.
func (a *AsyncCustomersClient) Create(ctx context.Context, p *CreateCustomerParams) *Future[*models.Response[models.Customer]] {
	return goFuture(ctx, a.r.c, "customers", func(ctx context.Context) (*models.Response[models.Customer], error) {
		return a.r.Create(ctx, p)
	})
}

// Get starts CustomersClient.Get.
func (a *AsyncCustomersClient) Get(ctx context.Context, customerID string) *Future[*models.Response[models.Customer]] {
	return goFuture(ctx, a.r.c, "customers", func(ctx context.Context) (*models.Response[models.Customer], error) {
		return a.r.Get(ctx, customerID)
	})
}

// Update starts CustomersClient.Update.
func (a *AsyncCustomersClient) Update(ctx context.Context, customerID string, p *UpdateCustomerParams) *Future[*models.Response[models.Customer]] {
	return goFuture(ctx, a.r.c, "customers", func(ctx context.Context) (*models.Response[models.Customer], error) {
		return a.r.Update(ctx, customerID, p)
	})
}

// ListCreditBalances starts CustomersClient.ListCreditBalances.
func (a *AsyncCustomersClient) ListCreditBalances(ctx context.Context, customerID string, p *ListCreditBalancesParams) *Future[*models.Response[[]models.CreditBalance]] {
	return goFuture(ctx, a.r.c, "customers", func(ctx context.Context) (*models.Response[[]models.CreditBalance], error) {
		return a.r.ListCreditBalances(ctx, customerID, p)
	})
}

// GenerateAuthToken starts CustomersClient.GenerateAuthToken.
func (a *AsyncCustomersClient) GenerateAuthToken(ctx context.Context, customerID string) *Future[*models.Response[models.AuthToken]] {
	return goFuture(ctx, a.r.c, "customers", func(ctx context.Context) (*models.Response[models.AuthToken], error) {
		return a.r.GenerateAuthToken(ctx, customerID)
	})
}

// CreatePortalSession starts CustomersClient.CreatePortalSession.
func (a *AsyncCustomersClient) CreatePortalSession(ctx context.Context, customerID string, p *CreatePortalSessionParams) *Future[*models.Response[models.PortalSession]] {
	return goFuture(ctx, a.r.c, "customers", func(ctx context.Context) (*models.Response[models.PortalSession], error) {
		return a.r.CreatePortalSession(ctx, customerID, p)
	})
}

// AsyncPricesClient is the non-blocking twin of PricesClient.
type AsyncPricesClient struct {
	r *PricesClient
}

// List starts PricesClient.List.
func (a *AsyncPricesClient) List(ctx context.Context, p *ListPricesParams) *Future[*models.ListResponse[models.Price]] {
	return goFuture(ctx, a.r.c, "prices", func(ctx context.Context) (*models.ListResponse[models.Price], error) {
		return a.r.List(ctx, p)
	})
}

// Create starts PricesClient.Create.
func (a *AsyncPricesClient) Create(ctx context.Context, p *CreatePriceParams) *Future[*models.Response[models.Price]] {
	return goFuture(ctx, a.r.c, "prices", func(ctx context.Context) (*models.Response[models.Price], error) {
		return a.r.Create(ctx, p)
	})
}

// Get starts PricesClient.Get, which is not implemented.
func (a *AsyncPricesClient) Get(ctx context.Context, priceID string) *Future[*models.Response[models.Price]] {
	return goFuture(ctx, a.r.c, "prices", func(ctx context.Context) (*models.Response[models.Price], error) {
		return a.r.Get(ctx, priceID)
	})
}

// Update starts PricesClient.Update, which is not implemented.
func (a *AsyncPricesClient) Update(ctx context.Context, priceID string, p *UpdatePriceParams) *Future[*models.Response[models.Price]] {
	return goFuture(ctx, a.r.c, "prices", func(ctx context.Context) (*models.Response[models.Price], error) {
		return a.r.Update(ctx, priceID, p)
	})
}

// AsyncProductsClient is the non-blocking twin of ProductsClient.
type AsyncProductsClient struct {
	r *ProductsClient
}

// List starts ProductsClient.List.
func (a *AsyncProductsClient) List(ctx context.Context, p *ListProductsParams) *Future[*models.ListResponse[models.Product]] {
	return goFuture(ctx, a.r.c, "products", func(ctx context.Context) (*models.ListResponse[models.Product], error) {
		return a.r.List(ctx, p)
	})
}

// Create starts ProductsClient.Create.
func (a *AsyncProductsClient) Create(ctx context.Context, p *CreateProductParams) *Future[*models.Response[models.Product]] {
	return goFuture(ctx, a.r.c, "products", func(ctx context.Context) (*models.Response[models.Product], error) {
		return a.r.Create(ctx, p)
	})
}

// Get starts ProductsClient.Get.
func (a *AsyncProductsClient) Get(ctx context.Context, productID string, p *GetProductParams) *Future[*models.Response[models.Product]] {
	return goFuture(ctx, a.r.c, "products", func(ctx context.Context) (*models.Response[models.Product], error) {
		return a.r.Get(ctx, productID, p)
	})
}

// Update starts ProductsClient.Update.
func (a *AsyncProductsClient) Update(ctx context.Context, productID string, p *UpdateProductParams) *Future[*models.Response[models.Product]] {
	return goFuture(ctx, a.r.c, "products", func(ctx context.Context) (*models.Response[models.Product], error) {
		return a.r.Update(ctx, productID, p)
	})
}

// AsyncSubscriptionsClient is the non-blocking twin of SubscriptionsClient.
type AsyncSubscriptionsClient struct {
	r *SubscriptionsClient
}

// List starts SubscriptionsClient.List.
func (a *AsyncSubscriptionsClient) List(ctx context.Context, p *ListSubscriptionsParams) *Future[*models.ListResponse[models.Subscription]] {
	return goFuture(ctx, a.r.c, "subscriptions", func(ctx context.Context) (*models.ListResponse[models.Subscription], error) {
		return a.r.List(ctx, p)
	})
}

// Get starts SubscriptionsClient.Get.
func (a *AsyncSubscriptionsClient) Get(ctx context.Context, subscriptionID string, p *GetSubscriptionParams) *Future[*models.Response[models.Subscription]] {
	return goFuture(ctx, a.r.c, "subscriptions", func(ctx context.Context) (*models.Response[models.Subscription], error) {
		return a.r.Get(ctx, subscriptionID, p)
	})
}

// Pause starts SubscriptionsClient.Pause.
func (a *AsyncSubscriptionsClient) Pause(ctx context.Context, subscriptionID string, p *PauseSubscriptionParams) *Future[*models.Response[models.Subscription]] {
	return goFuture(ctx, a.r.c, "subscriptions", func(ctx context.Context) (*models.Response[models.Subscription], error) {
		return a.r.Pause(ctx, subscriptionID, p)
	})
}

// Resume starts SubscriptionsClient.Resume.
func (a *AsyncSubscriptionsClient) Resume(ctx context.Context, subscriptionID string, p *ResumeSubscriptionParams) *Future[*models.Response[models.Subscription]] {
	return goFuture(ctx, a.r.c, "subscriptions", func(ctx context.Context) (*models.Response[models.Subscription], error) {
		return a.r.Resume(ctx, subscriptionID, p)
	})
}

// Cancel starts SubscriptionsClient.Cancel.
func (a *AsyncSubscriptionsClient) Cancel(ctx context.Context, subscriptionID string, p *CancelSubscriptionParams) *Future[*models.Response[models.Subscription]] {
	return goFuture(ctx, a.r.c, "subscriptions", func(ctx context.Context) (*models.Response[models.Subscription], error) {
		return a.r.Cancel(ctx, subscriptionID, p)
	})
}

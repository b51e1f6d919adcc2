package postgres_test

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jhoicas/Tienda-api/internal/application/order"
	"github.com/jhoicas/Tienda-api/internal/domain"
	"github.com/jhoicas/Tienda-api/internal/domain/entity"
	"github.com/jhoicas/Tienda-api/internal/infrastructure/postgres"
	"github.com/jhoicas/Tienda-api/pkg/logger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// pool compartido por todos los tests del paquete; nil si no hay Docker o se corre con -short.
var pool *pgxpool.Pool

func TestMain(m *testing.M) {
	flag.Parse()
	var container *tcpostgres.PostgresContainer
	if !testing.Short() {
		ctx := context.Background()
		var err error
		container, err = tcpostgres.RunContainer(ctx,
			testcontainers.WithImage("postgres:16-alpine"),
			tcpostgres.WithDatabase("tienda_test"),
			tcpostgres.WithUsername("tienda"),
			tcpostgres.WithPassword("tienda"),
			testcontainers.WithWaitStrategy(
				wait.ForLog("database system is ready to accept connections").
					WithOccurrence(2).
					WithStartupTimeout(60*time.Second),
			),
		)
		if err != nil {
			fmt.Fprintf(os.Stderr, "postgres container no disponible: %v\n", err)
		} else {
			pool, err = setup(ctx, container)
			if err != nil {
				fmt.Fprintf(os.Stderr, "setup postgres: %v\n", err)
			}
		}
	}

	code := m.Run()

	if pool != nil {
		pool.Close()
	}
	if container != nil {
		_ = container.Terminate(context.Background())
	}
	os.Exit(code)
}

func setup(ctx context.Context, c *tcpostgres.PostgresContainer) (*pgxpool.Pool, error) {
	dsn, err := c.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		return nil, err
	}
	p, err := postgres.NewPoolFromDSN(ctx, dsn)
	if err != nil {
		return nil, err
	}
	if err := postgres.Migrate(ctx, p); err != nil {
		p.Close()
		return nil, err
	}
	return p, nil
}

// requireDB salta el test sin base de datos y deja las tablas vacías.
func requireDB(t *testing.T) context.Context {
	t.Helper()
	if pool == nil {
		t.Skip("requiere Docker (postgres)")
	}
	ctx := context.Background()
	_, err := pool.Exec(ctx,
		`TRUNCATE order_items, orders, cart_items, carts, product_images, products, users RESTART IDENTITY CASCADE`)
	require.NoError(t, err)
	return ctx
}

func seedUser(t *testing.T, ctx context.Context, email string) *entity.User {
	t.Helper()
	u := &entity.User{Name: "Ann", Email: email, PasswordHash: "x", Role: entity.RoleUser}
	require.NoError(t, postgres.NewUserRepository(pool).Create(ctx, u))
	return u
}

func seedProduct(t *testing.T, ctx context.Context, name, price string, inventory int) *entity.Product {
	t.Helper()
	p := &entity.Product{
		Name:      name,
		Price:     decimal.RequireFromString(price),
		Inventory: inventory,
		Category:  "general",
		Images:    []string{"https://img.example.com/" + name + "-1.png", "https://img.example.com/" + name + "-2.png"},
	}
	require.NoError(t, postgres.NewProductRepository(pool).Create(ctx, p))
	return p
}

func inventoryOf(t *testing.T, ctx context.Context, id int64) int {
	t.Helper()
	p, err := postgres.NewProductRepository(pool).GetByID(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, p)
	return p.Inventory
}

func addToCart(t *testing.T, ctx context.Context, userID, productID int64, qty int) {
	t.Helper()
	carts := postgres.NewCartRepository(pool)
	cart, err := carts.GetOrCreate(ctx, userID)
	require.NoError(t, err)
	require.NoError(t, carts.UpsertItem(ctx, cart.ID, productID, qty))
}

func TestUserRepo_DuplicateEmail(t *testing.T) {
	ctx := requireDB(t)
	seedUser(t, ctx, "ann@example.com")

	err := postgres.NewUserRepository(pool).Create(ctx, &entity.User{
		Name: "Otra", Email: "ann@example.com", PasswordHash: "x", Role: entity.RoleUser,
	})
	assert.ErrorIs(t, err, domain.ErrEmailAlreadyExists)

	got, err := postgres.NewUserRepository(pool).GetByEmail(ctx, "nadie@example.com")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestProductRepo_ImagesAndFilters(t *testing.T) {
	ctx := requireDB(t)
	repo := postgres.NewProductRepository(pool)
	mug := seedProduct(t, ctx, "mug", "9.99", 5)
	seedProduct(t, ctx, "lamp", "45.00", 2)

	got, err := repo.GetByID(ctx, mug.ID)
	require.NoError(t, err)
	assert.Len(t, got.Images, 2)
	assert.True(t, got.Price.Equal(decimal.RequireFromString("9.99")))

	minPrice := decimal.RequireFromString("10")
	list, total, err := repo.List(ctx, entity.ProductFilter{MinPrice: &minPrice, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, list, 1)
	assert.Equal(t, "lamp", list[0].Name)

	list, total, err = repo.List(ctx, entity.ProductFilter{Name: "MU", Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, mug.ID, list[0].ID)

	require.NoError(t, repo.Update(ctx, mug.ID, entity.ProductChanges{Images: []string{"https://img.example.com/nueva.png"}}))
	got, err = repo.GetByID(ctx, mug.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://img.example.com/nueva.png"}, got.Images)
	assert.Equal(t, "mug", got.Name, "los campos ausentes se conservan")

	assert.ErrorIs(t, repo.Update(ctx, 9999, entity.ProductChanges{}), domain.ErrNotFound)

	assert.ErrorIs(t, repo.Delete(ctx, 9999), domain.ErrNotFound)
}

func TestProductRepo_UpdateParcialConservaInventario(t *testing.T) {
	ctx := requireDB(t)
	repo := postgres.NewProductRepository(pool)
	p := seedProduct(t, ctx, "mug", "9.99", 3)

	ok, err := postgres.NewInventoryLedger(pool).Decrement(ctx, p.ID, 2)
	require.NoError(t, err)
	require.True(t, ok)

	name := "mug grande"
	price := decimal.RequireFromString("12.00")
	require.NoError(t, repo.Update(ctx, p.ID, entity.ProductChanges{Name: &name, Price: &price}))
	got, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "mug grande", got.Name)
	assert.True(t, got.Price.Equal(price))
	assert.Equal(t, 1, got.Inventory, "el descuento del ledger se conserva")
	assert.Len(t, got.Images, 2, "sin Images no se tocan las imágenes")

	stock := 8
	require.NoError(t, repo.Update(ctx, p.ID, entity.ProductChanges{Inventory: &stock}))
	assert.Equal(t, 8, inventoryOf(t, ctx, p.ID))
}

func TestInventoryLedger_ConditionalDecrement(t *testing.T) {
	ctx := requireDB(t)
	p := seedProduct(t, ctx, "mug", "9.99", 5)
	ledger := postgres.NewInventoryLedger(pool)

	ok, err := ledger.Decrement(ctx, p.ID, 3)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = ledger.Decrement(ctx, p.ID, 3)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 2, inventoryOf(t, ctx, p.ID))
}

func TestInventoryLedger_ConcurrentNeverNegative(t *testing.T) {
	ctx := requireDB(t)
	p := seedProduct(t, ctx, "mug", "9.99", 3)
	ledger := postgres.NewInventoryLedger(pool)

	var wg sync.WaitGroup
	var granted atomic.Int32
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := ledger.Decrement(ctx, p.ID, 1)
			if err == nil && ok {
				granted.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(3), granted.Load())
	assert.Equal(t, 0, inventoryOf(t, ctx, p.ID))
}

func TestCartRepo_OwnershipAndUpsert(t *testing.T) {
	ctx := requireDB(t)
	ann := seedUser(t, ctx, "ann@example.com")
	bob := seedUser(t, ctx, "bob@example.com")
	p := seedProduct(t, ctx, "mug", "9.99", 5)
	carts := postgres.NewCartRepository(pool)

	addToCart(t, ctx, ann.ID, p.ID, 1)
	addToCart(t, ctx, ann.ID, p.ID, 2)

	cart, err := carts.GetOrCreate(ctx, ann.ID)
	require.NoError(t, err)
	items, err := carts.ListItems(ctx, cart.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 3, items[0].Quantity)
	assert.Equal(t, "https://img.example.com/mug-1.png", items[0].Image)

	ok, err := carts.SetItemQuantity(ctx, bob.ID, items[0].ID, 9)
	require.NoError(t, err)
	assert.False(t, ok)
	ok, err = carts.DeleteItem(ctx, bob.ID, items[0].ID)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = carts.SetItemQuantity(ctx, ann.ID, items[0].ID, 1)
	require.NoError(t, err)
	assert.True(t, ok)

	assert.ErrorIs(t, carts.UpsertItem(ctx, cart.ID, 9999, 1), domain.ErrNotFound)
}

func TestCheckout_CommitsAtomically(t *testing.T) {
	ctx := requireDB(t)
	ann := seedUser(t, ctx, "ann@example.com")
	mug := seedProduct(t, ctx, "mug", "9.99", 5)
	addToCart(t, ctx, ann.ID, mug.ID, 2)

	uc := order.NewCheckoutUseCase(postgres.NewTxRunner(pool), logger.Nop())
	intent := "pi_123"
	out, err := uc.Checkout(ctx, ann.ID, &intent)
	require.NoError(t, err)
	assert.Equal(t, "19.98", out.Total.StringFixed(2))
	assert.Equal(t, 3, inventoryOf(t, ctx, mug.ID))

	orders := postgres.NewOrderRepository(pool)
	o, err := orders.GetByPaymentIntent(ctx, intent)
	require.NoError(t, err)
	require.NotNil(t, o)
	assert.Equal(t, entity.OrderPending, o.Status)
	assert.Equal(t, "ann@example.com", o.UserEmail)
	require.Len(t, o.Items, 1)
	assert.Equal(t, "mug", o.Items[0].ProductName)

	cart, err := postgres.NewCartRepository(pool).GetOrCreate(ctx, ann.ID)
	require.NoError(t, err)
	items, err := postgres.NewCartRepository(pool).ListItems(ctx, cart.ID)
	require.NoError(t, err)
	assert.Empty(t, items)

	// El producto ya figura en un pedido.
	assert.ErrorIs(t, postgres.NewProductRepository(pool).Delete(ctx, mug.ID), domain.ErrConflict)
}

func TestCheckout_RollsBackOnInsufficientInventory(t *testing.T) {
	ctx := requireDB(t)
	ann := seedUser(t, ctx, "ann@example.com")
	mug := seedProduct(t, ctx, "mug", "9.99", 5)
	lamp := seedProduct(t, ctx, "lamp", "45.00", 1)
	addToCart(t, ctx, ann.ID, mug.ID, 2)
	addToCart(t, ctx, ann.ID, lamp.ID, 2)

	uc := order.NewCheckoutUseCase(postgres.NewTxRunner(pool), logger.Nop())
	_, err := uc.Checkout(ctx, ann.ID, nil)

	var inv *domain.InsufficientInventoryError
	require.True(t, errors.As(err, &inv))
	assert.Equal(t, lamp.ID, inv.ProductID)
	assert.Equal(t, 5, inventoryOf(t, ctx, mug.ID))
	assert.Equal(t, 1, inventoryOf(t, ctx, lamp.ID))

	mine, err := postgres.NewOrderRepository(pool).ListByUser(ctx, ann.ID)
	require.NoError(t, err)
	assert.Empty(t, mine)

	cart, err := postgres.NewCartRepository(pool).GetOrCreate(ctx, ann.ID)
	require.NoError(t, err)
	items, err := postgres.NewCartRepository(pool).ListItems(ctx, cart.ID)
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestCheckout_ConcurrentBuyersLastUnit(t *testing.T) {
	ctx := requireDB(t)
	mug := seedProduct(t, ctx, "mug", "9.99", 1)
	users := make([]*entity.User, 4)
	for i := range users {
		users[i] = seedUser(t, ctx, fmt.Sprintf("u%d@example.com", i))
		addToCart(t, ctx, users[i].ID, mug.ID, 1)
	}

	uc := order.NewCheckoutUseCase(postgres.NewTxRunner(pool), logger.Nop())
	var wg sync.WaitGroup
	var ok, short atomic.Int32
	for _, u := range users {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			_, err := uc.Checkout(ctx, id, nil)
			switch {
			case err == nil:
				ok.Add(1)
			case errors.Is(err, domain.ErrInsufficientStock):
				short.Add(1)
			}
		}(u.ID)
	}
	wg.Wait()

	assert.Equal(t, int32(1), ok.Load())
	assert.Equal(t, int32(3), short.Load())
	assert.Equal(t, 0, inventoryOf(t, ctx, mug.ID))
}

func TestOrderRepo_StatusAndAdminList(t *testing.T) {
	ctx := requireDB(t)
	ann := seedUser(t, ctx, "ann@example.com")
	mug := seedProduct(t, ctx, "mug", "9.99", 10)
	uc := order.NewCheckoutUseCase(postgres.NewTxRunner(pool), logger.Nop())
	for i := 0; i < 2; i++ {
		addToCart(t, ctx, ann.ID, mug.ID, 1)
		_, err := uc.Checkout(ctx, ann.ID, nil)
		require.NoError(t, err)
	}

	orders := postgres.NewOrderRepository(pool)
	list, total, err := orders.List(ctx, entity.OrderFilter{Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, list, 2)
	assert.Greater(t, list[0].ID, list[1].ID)

	require.NoError(t, orders.UpdateStatus(ctx, list[0].ID, entity.OrderShipped))
	list, total, err = orders.List(ctx, entity.OrderFilter{Status: entity.OrderShipped, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Len(t, list[0].Items, 1)

	assert.ErrorIs(t, orders.UpdateStatus(ctx, 9999, entity.OrderShipped), domain.ErrNotFound)
}

func TestAnalyticsRepo_SalesAndTopProducts(t *testing.T) {
	ctx := requireDB(t)
	ann := seedUser(t, ctx, "ann@example.com")
	mug := seedProduct(t, ctx, "mug", "9.99", 10)
	lamp := seedProduct(t, ctx, "lamp", "45.00", 10)
	uc := order.NewCheckoutUseCase(postgres.NewTxRunner(pool), logger.Nop())

	addToCart(t, ctx, ann.ID, mug.ID, 3)
	_, err := uc.Checkout(ctx, ann.ID, nil)
	require.NoError(t, err)

	addToCart(t, ctx, ann.ID, lamp.ID, 1)
	cancelled, err := uc.Checkout(ctx, ann.ID, nil)
	require.NoError(t, err)
	require.NoError(t, postgres.NewOrderRepository(pool).UpdateStatus(ctx, cancelled.ID, entity.OrderCancelled))

	repo := postgres.NewAnalyticsRepository(pool)
	total, err := repo.TotalSales(ctx)
	require.NoError(t, err)
	assert.Equal(t, "29.97", total.StringFixed(2))

	low, err := repo.CountLowInventory(ctx, entity.LowInventoryThreshold)
	require.NoError(t, err)
	assert.Equal(t, 2, low)

	from := time.Now().UTC().Add(-24 * time.Hour)
	to := time.Now().UTC().Add(24 * time.Hour)
	points, err := repo.SalesByPeriod(ctx, entity.PeriodYearly, from, to)
	require.NoError(t, err)
	require.NotEmpty(t, points)
	var orders int
	for _, p := range points {
		orders += p.OrderCount
	}
	assert.Equal(t, 1, orders)

	top, err := repo.TopProducts(ctx, from, to, 10)
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, mug.ID, top[0].ProductID)
	assert.Equal(t, 3, top[0].UnitsSold)

	_, err = repo.SalesByPeriod(ctx, "hourly", from, to)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

package store

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Champagnepapi06/olas-nigerian-kitchen/internal/models"
	"github.com/Champagnepapi06/olas-nigerian-kitchen/internal/money"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.Migrate(os.DirFS("../../migrations")))
	return s
}

func seedUser(t *testing.T, s *Store, id, email string) {
	t.Helper()
	err := s.CreateUser(context.Background(),
		&models.User{ID: id, Email: email, PasswordHash: "hash"},
		&models.Profile{FullName: "Ada Obi", Email: email})
	require.NoError(t, err)
}

func jollof() *models.Dish {
	return &models.Dish{
		ID:          "1",
		Name:        "Jollof Rice",
		Description: "Smoky party jollof",
		Price:       2500,
		Image:       "/static/images/jollof.jpg",
		Category:    models.CategoryRice,
		Ingredients: []string{"Rice", "Tomatoes", "Peppers"},
		Popular:     true,
		InStock:     true,
	}
}

func TestMigrateIsIdempotent(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Migrate(os.DirFS("../../migrations")))

	var n int
	require.NoError(t, s.DB.QueryRow(`SELECT COUNT(*) FROM schema_migrations`).Scan(&n))
	assert.Equal(t, 2, n)
}

func TestDishRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateDish(ctx, jollof()))

	got, err := s.GetDish(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "Jollof Rice", got.Name)
	assert.Equal(t, money.Amount(2500), got.Price)
	assert.Equal(t, models.CategoryRice, got.Category)
	assert.Equal(t, []string{"Rice", "Tomatoes", "Peppers"}, got.Ingredients)
	assert.True(t, got.Popular)
	assert.True(t, got.InStock)

	_, err = s.GetDish(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, s.CreateDish(ctx, jollof()), ErrDuplicate)
}

func TestListDishesPutsPopularFirstAndHidesOutOfStock(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	dishes := []models.Dish{
		{ID: "1", Name: "Puff Puff", Price: 500, Category: models.CategorySnack, InStock: true},
		{ID: "2", Name: "Egusi Soup", Price: 3000, Category: models.CategorySoup, Popular: true, InStock: true},
		{ID: "3", Name: "Moi Moi", Price: 800, Category: models.CategorySnack, InStock: false},
	}
	for i := range dishes {
		require.NoError(t, s.CreateDish(ctx, &dishes[i]))
	}

	menu, err := s.ListDishes(ctx)
	require.NoError(t, err)
	require.Len(t, menu, 2)
	assert.Equal(t, "2", menu[0].ID)
	assert.Equal(t, "1", menu[1].ID)

	all, err := s.ListAllDishes(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	popular, err := s.PopularDishes(ctx, 6)
	require.NoError(t, err)
	require.Len(t, popular, 1)
	assert.Equal(t, "Egusi Soup", popular[0].Name)
}

func TestDishUpdates(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.CreateDish(ctx, jollof()))

	require.NoError(t, s.SetDishPrice(ctx, "1", 2800))
	require.NoError(t, s.UpdateDishImage(ctx, "1", "/static/uploads/new.jpg"))

	d, err := s.GetDish(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, money.Amount(2800), d.Price)
	assert.Equal(t, "/static/uploads/new.jpg", d.Image)

	d.Name = "Party Jollof"
	d.InStock = false
	require.NoError(t, s.UpdateDish(ctx, &d))
	d, err = s.GetDish(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "Party Jollof", d.Name)
	assert.False(t, d.InStock)

	up := jollof()
	up.Price = 2600
	require.NoError(t, s.UpsertDish(ctx, up))
	d, err = s.GetDish(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, money.Amount(2600), d.Price)
	assert.Equal(t, "Jollof Rice", d.Name)

	assert.ErrorIs(t, s.SetDishPrice(ctx, "missing", 100), ErrNotFound)
	require.NoError(t, s.DeleteDish(ctx, "1"))
	assert.ErrorIs(t, s.DeleteDish(ctx, "1"), ErrNotFound)
}

func TestUsersAndProfiles(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedUser(t, s, "u1", "ada@example.com")

	u, err := s.GetUserByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, "u1", u.ID)

	u, err = s.GetUserByEmail(ctx, "nobody@example.com")
	require.NoError(t, err)
	assert.Nil(t, u)

	p, err := s.GetProfile(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "Ada Obi", p.FullName)

	err = s.CreateUser(ctx,
		&models.User{ID: "u2", Email: "ada@example.com", PasswordHash: "hash"},
		&models.Profile{FullName: "Someone Else", Email: "ada@example.com"})
	assert.ErrorIs(t, err, ErrDuplicate)

	_, err = s.GetProfile(ctx, "u2")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRevokedTokens(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	revoked, err := s.IsTokenRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, s.RevokeToken(ctx, "jti-1", time.Now().Add(time.Hour)))
	require.NoError(t, s.RevokeToken(ctx, "jti-1", time.Now().Add(time.Hour)))

	revoked, err = s.IsTokenRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)
}

func TestStaff(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateStaff(ctx, "chef", "hashed"))
	assert.ErrorIs(t, s.CreateStaff(ctx, "chef", "hashed"), ErrDuplicate)

	st, err := s.GetStaffByUsername(ctx, "chef")
	require.NoError(t, err)
	require.NotNil(t, st)
	assert.Equal(t, "hashed", st.Password)

	st, err = s.GetStaffByUsername(ctx, "nobody")
	require.NoError(t, err)
	assert.Nil(t, st)
}

func TestCreateOrderWithLines(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedUser(t, s, "u1", "ada@example.com")

	order := &models.Order{
		ID:              "0f8fad5b-d9cb-469f-a165-70867728950e",
		UserID:          "u1",
		TotalAmount:     3000,
		DeliveryFee:     500,
		ContactName:     "Ada Obi",
		ContactEmail:    "ada@example.com",
		DeliveryAddress: "12 Allen Avenue, Ikeja",
		DeliveryCity:    "Lagos",
		DeliveryPhone:   "+234 801 234 5678",
	}
	lines := []models.OrderLine{{DishID: "1", DishName: "Jollof Rice", Quantity: 1, UnitPrice: 2500}}
	require.NoError(t, s.CreateOrder(ctx, order, lines))
	assert.NotZero(t, lines[0].ID)
	assert.Equal(t, order.ID, lines[0].OrderID)

	got, err := s.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, got.Status)
	assert.Equal(t, money.Amount(3000), got.TotalAmount)
	assert.Equal(t, "0f8fad5b", got.ShortID())

	byOrder, err := s.ListOrderLines(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, byOrder[order.ID], 1)
	assert.Equal(t, money.Amount(2500), byOrder[order.ID][0].Subtotal())

	require.NoError(t, s.UpdateOrderStatus(ctx, order.ID, models.StatusPreparing))
	got, err = s.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPreparing, got.Status)

	assert.ErrorIs(t, s.UpdateOrderStatus(ctx, "missing", models.StatusReady), ErrNotFound)
	_, err = s.GetOrder(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateOrderIsAtomic(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedUser(t, s, "u1", "ada@example.com")

	order := &models.Order{ID: "o1", UserID: "u1", TotalAmount: 500, DeliveryFee: 500}
	lines := []models.OrderLine{
		{DishID: "1", DishName: "Jollof Rice", Quantity: 1, UnitPrice: 2500},
		{DishID: "2", DishName: "Egusi Soup", Quantity: 0, UnitPrice: 3000},
	}
	require.Error(t, s.CreateOrder(ctx, order, lines))

	n, err := s.CountOrders(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	byOrder, err := s.ListOrderLines(ctx, "o1")
	require.NoError(t, err)
	assert.Empty(t, byOrder["o1"])
}

func TestListOrdersNewestFirst(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedUser(t, s, "u1", "ada@example.com")
	seedUser(t, s, "u2", "bola@example.com")

	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	for i, id := range []string{"a", "b", "c"} {
		o := &models.Order{ID: id, UserID: "u1", TotalAmount: 1000, CreatedAt: base.Add(time.Duration(i) * time.Hour)}
		require.NoError(t, s.CreateOrder(ctx, o, nil))
	}
	require.NoError(t, s.CreateOrder(ctx, &models.Order{ID: "d", UserID: "u2", TotalAmount: 1000, CreatedAt: base}, nil))

	orders, err := s.ListOrders(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, orders, 3)
	assert.Equal(t, []string{"c", "b", "a"}, []string{orders[0].ID, orders[1].ID, orders[2].ID})

	page, err := s.ListAllOrders(ctx, 2, 0)
	require.NoError(t, err)
	assert.Len(t, page, 2)

	total, err := s.CountOrders(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, total)
}

func TestKitchenStats(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedUser(t, s, "u1", "ada@example.com")
	require.NoError(t, s.CreateDish(ctx, jollof()))

	require.NoError(t, s.CreateOrder(ctx, &models.Order{ID: "o1", UserID: "u1", TotalAmount: 5500},
		[]models.OrderLine{{DishID: "1", DishName: "Jollof Rice", Quantity: 2, UnitPrice: 2500}}))
	require.NoError(t, s.CreateOrder(ctx, &models.Order{ID: "o2", UserID: "u1", TotalAmount: 3000, Status: models.StatusCancelled},
		[]models.OrderLine{{DishID: "1", DishName: "Jollof Rice", Quantity: 1, UnitPrice: 2500}}))

	stats, err := s.KitchenStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalDishes)
	assert.Equal(t, 2, stats.TotalOrders)
	assert.Equal(t, money.Amount(5500), stats.Revenue)
	assert.Equal(t, 1, stats.OrdersByStatus[models.StatusPending])
	assert.Equal(t, 1, stats.OrdersByStatus[models.StatusCancelled])
	require.Len(t, stats.DishOrderCount, 1)
	assert.Equal(t, 3, stats.DishOrderCount[0].Quantity)
}

//go:build e2e

package storefront_test

import (
	"context"
	"errors"
	"net/http"
	"os"
	"strings"
	"testing"
	"time"

	"lumiere/internal/domain/model"
	"lumiere/pkg/storefront"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 起動済みのAPIに対して流す。
//   BASE_URL=http://localhost:8080 ADMIN_EMAIL=... ADMIN_PASSWORD=... go test -tags e2e ./pkg/storefront/

func e2eClient(t *testing.T) *storefront.Client {
	t.Helper()

	baseURL := os.Getenv("BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}
	return storefront.NewClient(baseURL, &http.Client{Timeout: 10 * time.Second})
}

func adminToken(t *testing.T, c *storefront.Client, ctx context.Context) string {
	t.Helper()

	email, password := os.Getenv("ADMIN_EMAIL"), os.Getenv("ADMIN_PASSWORD")
	if email == "" || password == "" {
		t.Skip("ADMIN_EMAIL / ADMIN_PASSWORD not set")
	}

	res, err := c.Login(ctx, email, password)
	require.NoError(t, err)
	require.True(t, res.User.IsAdmin)
	require.NotEmpty(t, strings.TrimSpace(res.Token.AccessToken))
	return res.Token.AccessToken
}

// 毎回新しいユーザーを作ってログインする
func newShopper(t *testing.T, c *storefront.Client, ctx context.Context) string {
	t.Helper()

	email := "e2e-" + uuid.NewString()[:8] + "@example.com"
	_, err := c.Register(ctx, email, "CorrectHorse9", "E2E Shopper")
	require.NoError(t, err)

	res, err := c.Login(ctx, email, "CorrectHorse9")
	require.NoError(t, err)
	assert.False(t, res.User.IsAdmin)
	return res.Token.AccessToken
}

func TestE2E_RegisterLoginLogout(t *testing.T) {
	ctx := context.Background()
	c := e2eClient(t)

	token := newShopper(t, c, ctx)

	me, err := c.Me(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "E2E Shopper", me.Name)

	isAdmin, err := c.AdminProfile(ctx, token)
	require.NoError(t, err)
	assert.False(t, isAdmin)

	// ログアウト後は同じトークンが使えない
	require.NoError(t, c.Logout(ctx, token))
	_, err = c.Me(ctx, token)
	assert.ErrorIs(t, err, storefront.ErrUnauthorized)
}

func TestE2E_WrongPassword(t *testing.T) {
	ctx := context.Background()
	c := e2eClient(t)

	_, err := c.Login(ctx, "nobody-"+uuid.NewString()[:8]+"@example.com", "CorrectHorse9")
	assert.ErrorIs(t, err, storefront.ErrUnauthorized)
}

func TestE2E_AdminProductLifecycle(t *testing.T) {
	ctx := context.Background()
	c := e2eClient(t)
	admin := adminToken(t, c, ctx)

	name := "E2E Ring " + uuid.NewString()[:6]
	p, err := c.CreateProduct(ctx, admin, storefront.ProductInput{
		Name:     name,
		Price:    decimal.RequireFromString("120.50"),
		Category: model.CategoryRings,
		Stock:    2,
	})
	require.NoError(t, err)
	require.NotEmpty(t, p.ID)

	found, err := c.Search(ctx, name)
	require.NoError(t, err)
	require.NotEmpty(t, found)
	assert.Equal(t, p.ID, found[0].ID)

	// 一般ユーザーは商品を作れない
	shopper := newShopper(t, c, ctx)
	_, err = c.CreateProduct(ctx, shopper, storefront.ProductInput{Name: "nope", Category: model.CategoryRings})
	var apiErr *storefront.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusForbidden, apiErr.Status)

	require.NoError(t, c.DeleteProduct(ctx, admin, p.ID))
}

func TestE2E_PlaceOrderUsesCatalogPrice(t *testing.T) {
	ctx := context.Background()
	c := e2eClient(t)
	admin := adminToken(t, c, ctx)

	p, err := c.CreateProduct(ctx, admin, storefront.ProductInput{
		Name:     "E2E Necklace " + uuid.NewString()[:6],
		Price:    decimal.NewFromInt(80),
		Category: model.CategoryNecklaces,
		Stock:    5,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.DeleteProduct(context.Background(), admin, p.ID) })

	shopper := newShopper(t, c, ctx)
	order, err := c.CreateOrder(ctx, shopper, storefront.CreateOrderRequest{
		Items: []storefront.LineItem{{ID: p.ID, Quantity: 2}},
		Total: decimal.NewFromInt(1),
	})
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusPending, order.Status)
	assert.True(t, order.Total.Equal(decimal.NewFromInt(160)))

	orders, err := c.Orders(ctx, shopper)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, order.ID, orders[0].ID)
}

func TestE2E_CheckoutWithUnknownProductIsStale(t *testing.T) {
	ctx := context.Background()
	c := e2eClient(t)
	shopper := newShopper(t, c, ctx)

	_, err := c.Checkout(ctx, shopper, storefront.CheckoutRequest{
		Items: []storefront.LineItem{{ID: uuid.NewString(), Quantity: 1}},
	})

	var apiErr *storefront.APIError
	require.True(t, errors.As(err, &apiErr))
	if apiErr.Status == http.StatusInternalServerError {
		t.Skip("payment gateway not configured on this server")
	}
	assert.ErrorIs(t, err, storefront.ErrStaleCart)
}

package gateway

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"orderflow/internal/broadcast"
	"orderflow/internal/database/dbtest"
	"orderflow/internal/database/models"
	"orderflow/internal/services/analytics"
	"orderflow/internal/services/menu"
	"orderflow/internal/services/orders"
	"orderflow/internal/services/promo"
	"orderflow/internal/services/reviews"
	"orderflow/internal/services/users"
	"orderflow/internal/utils"
)

type RouterTestSuite struct {
	suite.Suite
	db         *gorm.DB
	router     *gin.Engine
	jwt        *utils.JWTManager
	adminToken string
	userToken  string
	pizza      models.MenuItem
}

func TestRouter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	suite.Run(t, new(RouterTestSuite))
}

func (suite *RouterTestSuite) SetupTest() {
	log := zerolog.Nop()
	suite.db = dbtest.Open(suite.T())
	suite.jwt = utils.NewJWTManager("router-test", time.Hour)

	hub := broadcast.NewHub(nil, log)
	suite.T().Cleanup(hub.Close)
	menuCache := menu.NewCache(nil, log)

	mr := miniredis.RunT(suite.T())
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	suite.T().Cleanup(func() { redisClient.Close() })
	tokens := users.NewTokenDenylist(redisClient, log)

	deps := Dependencies{
		DB:         suite.db,
		Hub:        hub,
		JWT:        suite.jwt,
		Orders:     orders.NewService(orders.NewRepository(suite.db), hub, menuCache, nil, orders.Config{}, log),
		Menu:       menu.NewService(suite.db, menuCache, log),
		Promo:      promo.NewService(suite.db, log),
		Reviews:    reviews.NewService(suite.db, menuCache, log),
		Users:      users.NewService(suite.db, suite.jwt, tokens, log),
		Analytics:  analytics.NewService(suite.db),
		Tokens:     tokens,
		CORSOrigin: "*",
		Log:        log,
	}
	router, err := NewRouter(deps)
	require.NoError(suite.T(), err)
	suite.router = router

	suite.pizza = dbtest.CreateMenuItem(suite.T(), suite.db, "pizza", 1299)

	suite.adminToken, _, err = suite.jwt.GenerateToken(1, "admin@orderflow.com", models.RoleAdmin)
	require.NoError(suite.T(), err)
	suite.userToken, _, err = suite.jwt.GenerateToken(2, "user@orderflow.com", models.RoleCustomer)
	require.NoError(suite.T(), err)
}

func (suite *RouterTestSuite) do(method, path string, body interface{}, token string) (*httptest.ResponseRecorder, map[string]interface{}) {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(suite.T(), json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	var decoded map[string]interface{}
	_ = json.Unmarshal(w.Body.Bytes(), &decoded)
	return w, decoded
}

func (suite *RouterTestSuite) orderBody(quantity int) map[string]interface{} {
	return map[string]interface{}{
		"customerName":  "Jane Doe",
		"address":       "456 Elm St",
		"phone":         "0987654321",
		"paymentMethod": "cash",
		"items": []map[string]interface{}{
			{"menuItemId": suite.pizza.ID, "quantity": quantity},
		},
	}
}

func (suite *RouterTestSuite) createOrder() int64 {
	w, body := suite.do(http.MethodPost, "/api/orders", suite.orderBody(2), "")
	require.Equal(suite.T(), http.StatusCreated, w.Code, w.Body.String())
	return int64(body["id"].(float64))
}

func (suite *RouterTestSuite) TestCreateAndGetOrder() {
	w, body := suite.do(http.MethodPost, "/api/orders", suite.orderBody(2), "")
	suite.Equal(http.StatusCreated, w.Code)
	suite.Equal("received", body["status"])
	suite.Equal(float64(2598), body["totalAmount"])
	suite.Equal(true, body["canCancel"])
	suite.Len(body["items"], 1)

	id := int64(body["id"].(float64))
	w, body = suite.do(http.MethodGet, fmt.Sprintf("/api/orders/%d", id), nil, "")
	suite.Equal(http.StatusOK, w.Code)
	suite.Equal(float64(2598), body["finalAmount"])

	w, body = suite.do(http.MethodGet, "/api/orders/9999", nil, "")
	suite.Equal(http.StatusNotFound, w.Code)
	suite.Equal("Order not found", body["message"])
	suite.Equal(false, body["success"])

	w, _ = suite.do(http.MethodGet, "/api/orders/abc", nil, "")
	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *RouterTestSuite) TestCreateOrder_Validation() {
	req := suite.orderBody(0)
	delete(req, "customerName")
	w, body := suite.do(http.MethodPost, "/api/orders", req, "")
	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Equal("Validation Error", body["message"])

	errs, ok := body["errors"].([]interface{})
	require.True(suite.T(), ok)
	fields := map[string]bool{}
	for _, e := range errs {
		fields[e.(map[string]interface{})["field"].(string)] = true
	}
	suite.True(fields["customerName"])
	suite.True(fields["items[0].quantity"])

	req = suite.orderBody(1)
	req["items"] = []map[string]interface{}{{"menuItemId": 999, "quantity": 1}}
	w, body = suite.do(http.MethodPost, "/api/orders", req, "")
	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Equal("Menu item 999 not found", body["message"])
}

func (suite *RouterTestSuite) TestCreateOrder_AttachesUser() {
	w, body := suite.do(http.MethodPost, "/api/orders", suite.orderBody(1), suite.userToken)
	require.Equal(suite.T(), http.StatusCreated, w.Code)
	suite.Equal(float64(2), body["userId"])

	req := httptest.NewRequest(http.MethodGet, "/api/orders/me", nil)
	req.Header.Set("Authorization", "Bearer "+suite.userToken)
	rec := httptest.NewRecorder()
	suite.router.ServeHTTP(rec, req)
	suite.Equal(http.StatusOK, rec.Code)

	var mine []models.Order
	require.NoError(suite.T(), json.Unmarshal(rec.Body.Bytes(), &mine))
	suite.Len(mine, 1)
}

func (suite *RouterTestSuite) TestCancelOrder() {
	id := suite.createOrder()
	path := fmt.Sprintf("/api/orders/%d/cancel", id)

	w, body := suite.do(http.MethodPost, path, nil, "")
	suite.Equal(http.StatusOK, w.Code)
	suite.Equal("Order cancelled successfully", body["message"])

	w, body = suite.do(http.MethodPost, path, nil, "")
	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Equal("Order cannot be cancelled", body["message"])

	w, _ = suite.do(http.MethodPost, "/api/orders/9999/cancel", nil, "")
	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *RouterTestSuite) TestUpdateOrderStatus() {
	id := suite.createOrder()
	path := fmt.Sprintf("/api/orders/%d/status", id)
	preparing := map[string]string{"status": "preparing"}

	w, _ := suite.do(http.MethodPut, path, preparing, "")
	suite.Equal(http.StatusUnauthorized, w.Code)

	w, _ = suite.do(http.MethodPut, path, preparing, suite.userToken)
	suite.Equal(http.StatusForbidden, w.Code)

	w, body := suite.do(http.MethodPut, path, preparing, suite.adminToken)
	suite.Equal(http.StatusOK, w.Code)
	suite.Equal("preparing", body["status"])
	suite.Equal(false, body["canCancel"])

	w, _ = suite.do(http.MethodPut, path, map[string]string{"status": "received"}, suite.adminToken)
	suite.Equal(http.StatusBadRequest, w.Code)

	w, body = suite.do(http.MethodPut, path, map[string]string{"status": "teleported"}, suite.adminToken)
	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Equal("Invalid order status", body["message"])

	w, body = suite.do(http.MethodPost, fmt.Sprintf("/api/orders/%d/cancel", id), nil, "")
	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Equal("Order cannot be cancelled", body["message"])

	req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/orders/%d/history", id), nil)
	rec := httptest.NewRecorder()
	suite.router.ServeHTTP(rec, req)
	suite.Equal(http.StatusOK, rec.Code)
	var history []models.OrderStatusLog
	require.NoError(suite.T(), json.Unmarshal(rec.Body.Bytes(), &history))
	suite.Len(history, 2)
}

func (suite *RouterTestSuite) TestPromoCodes() {
	w, body := suite.do(http.MethodPost, "/api/promo-codes", map[string]interface{}{
		"code":          "save3",
		"discountType":  "fixed",
		"discountValue": 300,
	}, suite.adminToken)
	suite.Equal(http.StatusCreated, w.Code)
	suite.Equal("SAVE3", body["code"])

	for i := 0; i < 3; i++ {
		w, body = suite.do(http.MethodPost, "/api/promo-codes/validate", map[string]interface{}{
			"code":       "SAVE3",
			"orderTotal": 2598,
		}, "")
		suite.Equal(http.StatusOK, w.Code)
		suite.Equal(true, body["valid"])
		suite.Equal(float64(300), body["discount"])
	}

	w, body = suite.do(http.MethodPost, "/api/promo-codes/validate", map[string]interface{}{
		"code":       "MISSING",
		"orderTotal": 2598,
	}, "")
	suite.Equal(http.StatusOK, w.Code)
	suite.Equal(false, body["valid"])
	suite.Equal("Invalid promo code", body["message"])
	suite.NotContains(body, "discount")

	req := suite.orderBody(2)
	req["promoCode"] = "save3"
	w, body = suite.do(http.MethodPost, "/api/orders", req, "")
	suite.Equal(http.StatusCreated, w.Code)
	suite.Equal(float64(2298), body["finalAmount"])

	var promoRow models.PromoCode
	require.NoError(suite.T(), suite.db.Where("code = ?", "SAVE3").First(&promoRow).Error)
	suite.Equal(int64(1), promoRow.UsedCount)

	w, _ = suite.do(http.MethodGet, "/api/promo-codes", nil, suite.userToken)
	suite.Equal(http.StatusForbidden, w.Code)
}

func (suite *RouterTestSuite) TestAuthFlow() {
	w, body := suite.do(http.MethodPost, "/api/auth/register", map[string]string{
		"email":    "new@orderflow.com",
		"password": "secret1",
		"name":     "New User",
	}, "")
	require.Equal(suite.T(), http.StatusCreated, w.Code, w.Body.String())
	suite.Equal("Registration successful", body["message"])
	token := body["token"].(string)
	user := body["user"].(map[string]interface{})
	suite.NotContains(user, "password")

	w, body = suite.do(http.MethodPost, "/api/auth/register", map[string]string{
		"email":    "new@orderflow.com",
		"password": "secret1",
		"name":     "Again",
	}, "")
	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Equal("Email already registered", body["message"])

	w, body = suite.do(http.MethodPost, "/api/auth/login", map[string]string{
		"email":    "new@orderflow.com",
		"password": "wrong-password",
	}, "")
	suite.Equal(http.StatusUnauthorized, w.Code)
	suite.Equal("Invalid email or password", body["message"])

	w, body = suite.do(http.MethodGet, "/api/auth/me", nil, token)
	suite.Equal(http.StatusOK, w.Code)
	suite.Equal("new@orderflow.com", body["user"].(map[string]interface{})["email"])

	w, _ = suite.do(http.MethodGet, "/api/auth/me", nil, "")
	suite.Equal(http.StatusUnauthorized, w.Code)
}

func (suite *RouterTestSuite) TestLogoutRevokesToken() {
	w, body := suite.do(http.MethodPost, "/api/auth/register", map[string]string{
		"email":    "leaving@orderflow.com",
		"password": "secret1",
		"name":     "Leaving User",
	}, "")
	require.Equal(suite.T(), http.StatusCreated, w.Code, w.Body.String())
	token := body["token"].(string)

	w, _ = suite.do(http.MethodGet, "/api/auth/me", nil, token)
	suite.Equal(http.StatusOK, w.Code)

	w, _ = suite.do(http.MethodPost, "/api/auth/logout", nil, "")
	suite.Equal(http.StatusUnauthorized, w.Code)

	w, body = suite.do(http.MethodPost, "/api/auth/logout", nil, token)
	suite.Equal(http.StatusOK, w.Code)
	suite.Equal("Logout successful", body["message"])

	w, body = suite.do(http.MethodGet, "/api/auth/me", nil, token)
	suite.Equal(http.StatusUnauthorized, w.Code)
	suite.Equal("Invalid or expired token", body["message"])

	// A revoked token on a public route is treated as anonymous.
	w, body = suite.do(http.MethodPost, "/api/orders", suite.orderBody(1), token)
	suite.Equal(http.StatusCreated, w.Code)
	suite.Nil(body["userId"])

	w, body = suite.do(http.MethodPost, "/api/auth/login", map[string]string{
		"email":    "leaving@orderflow.com",
		"password": "secret1",
	}, "")
	suite.Equal(http.StatusOK, w.Code)
	w, _ = suite.do(http.MethodGet, "/api/auth/me", nil, body["token"].(string))
	suite.Equal(http.StatusOK, w.Code)
}

func (suite *RouterTestSuite) TestMenuAndReviews() {
	w, _ := suite.do(http.MethodGet, "/api/menu?category=Test", nil, "")
	suite.Equal(http.StatusOK, w.Code)

	path := fmt.Sprintf("/api/menu/%d", suite.pizza.ID)
	w, body := suite.do(http.MethodGet, path, nil, "")
	suite.Equal(http.StatusOK, w.Code)
	suite.Equal("pizza", body["name"])

	w, _ = suite.do(http.MethodPost, "/api/reviews", map[string]interface{}{
		"menuItemId": suite.pizza.ID,
		"rating":     9,
	}, "")
	suite.Equal(http.StatusBadRequest, w.Code)

	w, _ = suite.do(http.MethodPost, "/api/reviews", map[string]interface{}{
		"menuItemId": suite.pizza.ID,
		"rating":     4,
		"comment":    "Great crust",
	}, "")
	suite.Equal(http.StatusCreated, w.Code)

	w, body = suite.do(http.MethodGet, path, nil, "")
	suite.Equal(http.StatusOK, w.Code)
	suite.Equal(float64(1), body["totalReviews"])

	w, _ = suite.do(http.MethodDelete, path, nil, suite.userToken)
	suite.Equal(http.StatusForbidden, w.Code)

	w, body = suite.do(http.MethodDelete, path, nil, suite.adminToken)
	suite.Equal(http.StatusOK, w.Code)
	suite.Equal("Menu item deleted", body["message"])

	w, _ = suite.do(http.MethodGet, path, nil, "")
	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *RouterTestSuite) TestAnalyticsAndHealth() {
	suite.createOrder()

	w, body := suite.do(http.MethodGet, "/api/analytics/dashboard", nil, suite.adminToken)
	suite.Equal(http.StatusOK, w.Code)
	suite.Equal(float64(1), body["totalOrders"])
	suite.Equal(float64(2598), body["totalRevenue"])

	w, body = suite.do(http.MethodGet, "/health", nil, "")
	suite.Equal(http.StatusOK, w.Code)
	suite.Equal("healthy", body["status"])
}

func (suite *RouterTestSuite) TestRateLimitedRouter() {
	log := zerolog.Nop()
	hub := broadcast.NewHub(nil, log)
	defer hub.Close()

	_, err := NewRouter(Dependencies{
		DB:        suite.db,
		Hub:       hub,
		JWT:       suite.jwt,
		RateLimit: "not-a-rate",
		Log:       log,
	})
	suite.Error(err)
}

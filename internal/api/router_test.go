package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rmtsolutions/logisticsapi/internal/api"
	"github.com/rmtsolutions/logisticsapi/internal/api/middleware"
	"github.com/rmtsolutions/logisticsapi/internal/config"
	"github.com/rmtsolutions/logisticsapi/internal/domain"
	"github.com/rmtsolutions/logisticsapi/internal/repository"
	"github.com/rmtsolutions/logisticsapi/internal/repository/memory"
)

func setupRouter(t *testing.T) (*gin.Engine, *repository.Repositories) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repos := memory.NewRepositories()
	cfg := &config.Config{Port: "8080", Environment: "test"}
	router := api.NewRouter(cfg, repos, nil, nil, zap.NewNop())
	return router, repos
}

// seedUser creates a user and returns their bearer token
func seedUser(t *testing.T, repos *repository.Repositories, role domain.Role) (*domain.User, string) {
	t.Helper()

	token, err := middleware.GenerateToken()
	require.NoError(t, err)

	user := &domain.User{
		ID:          uuid.New(),
		Email:       uuid.NewString() + "@example.com",
		Name:        "Test User",
		Role:        role,
		Active:      true,
		TokenLookup: middleware.HashTokenLookup(token),
		TokenHash:   middleware.HashToken(token),
		CreatedAt:   time.Now(),
	}
	require.NoError(t, repos.User.Create(context.Background(), user))
	return user, token
}

func doJSON(router *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	router, _ := setupRouter(t)

	w := doJSON(router, http.MethodGet, "/health", "", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ok")
}

func TestTrackingUnknownReference(t *testing.T) {
	router, _ := setupRouter(t)

	w := doJSON(router, http.MethodGet, "/track/RMT-000000", "", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestTrackingResponseIsMasked(t *testing.T) {
	router, repos := setupRouter(t)

	delivery := &domain.Delivery{
		ID:              uuid.New(),
		ReferenceNumber: "RMT-483920",
		CustomerName:    "Maria Santos",
		CustomerPhone:   "09171234567",
		Address:         domain.Address{Street: "123 Ayala Ave", City: "Makati"},
		Status:          domain.DeliveryStatusInTransit,
		AssignedDriver:  &domain.DriverSnapshot{ID: uuid.New(), Name: "Juan Cruz", Phone: "09998887777"},
		CreatedAt:       time.Now(),
		UpdatedAt:       time.Now(),
	}
	require.NoError(t, repos.Delivery.Create(context.Background(), delivery))

	w := doJSON(router, http.MethodGet, "/track/RMT-483920", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := w.Body.String()
	assert.Contains(t, body, "091****4567")
	assert.Contains(t, body, "Juan Cruz")
	// no raw phone and no internal identifiers in the public projection
	assert.NotContains(t, body, "09171234567")
	assert.NotContains(t, body, "09998887777")
	assert.NotContains(t, body, delivery.ID.String())
	assert.NotContains(t, body, delivery.AssignedDriver.ID.String())
}

func TestAuthRequired(t *testing.T) {
	router, _ := setupRouter(t)

	w := doJSON(router, http.MethodGet, "/orders", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(router, http.MethodGet, "/orders", "deadbeef", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestInactiveUserIsRejected(t *testing.T) {
	router, repos := setupRouter(t)
	user, token := seedUser(t, repos, domain.RoleCustomer)

	require.NoError(t, repos.User.SetActive(context.Background(), user.ID, false))

	w := doJSON(router, http.MethodGet, "/orders", token, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdminRoutesRejectCustomers(t *testing.T) {
	router, repos := setupRouter(t)
	_, token := seedUser(t, repos, domain.RoleCustomer)

	w := doJSON(router, http.MethodPost, "/orders/"+uuid.NewString()+"/update-status", token,
		map[string]string{"status": "approved"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(router, http.MethodGet, "/users", token, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestDriverRoutesRejectAdmins(t *testing.T) {
	router, repos := setupRouter(t)
	_, token := seedUser(t, repos, domain.RoleAdmin)

	w := doJSON(router, http.MethodPatch, "/orders/"+uuid.NewString()+"/status", token,
		map[string]string{"status": "in-transit"})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestSignupAndMe(t *testing.T) {
	router, _ := setupRouter(t)

	w := doJSON(router, http.MethodPost, "/auth/signup", "", map[string]string{
		"email": "ana@example.com",
		"name":  "Ana Reyes",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var signup struct {
		Token string `json:"token"`
		User  struct {
			Role string `json:"role"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &signup))
	require.NotEmpty(t, signup.Token)
	assert.Equal(t, "customer", signup.User.Role)

	w = doJSON(router, http.MethodGet, "/auth/me", signup.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ana@example.com")
}

func TestSignupDuplicateEmail(t *testing.T) {
	router, _ := setupRouter(t)

	payload := map[string]string{"email": "dup@example.com", "name": "Dup"}
	w := doJSON(router, http.MethodPost, "/auth/signup", "", payload)
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(router, http.MethodPost, "/auth/signup", "", payload)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestOrderFlowOverHTTP(t *testing.T) {
	router, repos := setupRouter(t)
	_, customerToken := seedUser(t, repos, domain.RoleCustomer)
	_, adminToken := seedUser(t, repos, domain.RoleAdmin)

	w := doJSON(router, http.MethodPost, "/orders", customerToken, map[string]interface{}{
		"items": []map[string]interface{}{
			{"productId": "prod-001", "name": "Office Paper A4 (500 sheets)", "price": 250, "quantity": 2},
		},
		"deliveryInfo": map[string]string{
			"name":   "Ana Reyes",
			"phone":  "09171234567",
			"street": "123 Ayala Ave",
			"city":   "Makati",
		},
		"paymentMethod": "cod",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var created struct {
		Order struct {
			ID    string  `json:"ID"`
			Total float64 `json:"Total"`
		} `json:"order"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	require.NotEmpty(t, created.Order.ID)
	assert.Equal(t, 500.0, created.Order.Total)

	w = doJSON(router, http.MethodPost, "/orders/"+created.Order.ID+"/update-status", adminToken,
		map[string]string{"status": "packed"})
	require.Equal(t, http.StatusOK, w.Code)

	var updated struct {
		Order struct {
			Status     string             `json:"Status"`
			Milestones []domain.Milestone `json:"Milestones"`
		} `json:"order"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
	assert.Equal(t, "packed", updated.Order.Status)
	assert.Len(t, updated.Order.Milestones, 3)
}

func TestValidationErrorsAre422(t *testing.T) {
	router, repos := setupRouter(t)
	_, token := seedUser(t, repos, domain.RoleCustomer)

	w := doJSON(router, http.MethodPost, "/orders", token, map[string]interface{}{
		"items":         []map[string]interface{}{},
		"paymentMethod": "cod",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestSupplierListAndReorder(t *testing.T) {
	router, repos := setupRouter(t)
	_, token := seedUser(t, repos, domain.RoleAdmin)

	supplier := &domain.Supplier{
		ID:       "sup-001",
		Name:     "Paper Plus Corp",
		Contact:  "+63 917 111 2233",
		Email:    "orders@paperplus.ph",
		Products: []string{"prod-001", "prod-005"},
	}
	require.NoError(t, repos.Supplier.Create(context.Background(), supplier))

	w := doJSON(router, http.MethodGet, "/suppliers", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(router, http.MethodGet, "/suppliers", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Paper Plus Corp")

	w = doJSON(router, http.MethodPost, "/suppliers/sup-001/reorder", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Reorder request sent to Paper Plus Corp")

	w = doJSON(router, http.MethodPost, "/suppliers/sup-999/reorder", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

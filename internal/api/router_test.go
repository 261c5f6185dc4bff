package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/jodolyekim/Dotori/config"
	"github.com/jodolyekim/Dotori/internal/api/handler"
	"github.com/jodolyekim/Dotori/internal/model"
	"github.com/jodolyekim/Dotori/internal/pkg/metrics"
	"github.com/jodolyekim/Dotori/internal/pkg/response"
	"github.com/jodolyekim/Dotori/internal/pkg/ws"
	"github.com/jodolyekim/Dotori/internal/repository"
	"github.com/jodolyekim/Dotori/internal/service"
	"github.com/jodolyekim/Dotori/internal/testutil"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func setupEngine(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()

	db := testutil.SetupTestDB(t)
	t.Cleanup(func() { testutil.CleanupTestDB(t, db) })

	cfg := &config.Config{
		Server: config.ServerConfig{Mode: "debug"},
		JWT:    config.JWTConfig{Secret: "router-test-secret", ExpireHours: 1},
		CORS: config.CORSConfig{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET", "POST"},
		},
	}
	kst := time.FixedZone("KST", 9*60*60)
	clock := service.NewClock(kst, time.Now)
	m := metrics.New(prometheus.NewRegistry())

	planRepo := repository.NewPlanRepository(db)
	membershipRepo := repository.NewMembershipRepository(db)
	usageRepo := repository.NewUsageRepository(db)
	walletRepo := repository.NewWalletRepository(db)
	pointTxRepo := repository.NewPointTransactionRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	userRepo := repository.NewUserRepository(db)

	planService := service.NewPlanService(planRepo)
	membershipService := service.NewMembershipService(membershipRepo, planService, clock)
	usageService := service.NewUsageService(db, usageRepo, walletRepo, membershipService, clock, nil, m)
	pointService := service.NewPointService(db, usageRepo, walletRepo, pointTxRepo, membershipService, clock, nil, m)
	subscribeService := service.NewSubscribeService(db, planService, membershipService, pointService,
		membershipRepo, paymentRepo, walletRepo, clock, nil, m)
	authService := service.NewAuthService(userRepo, membershipService, cfg)
	adminService := service.NewAdminService(userRepo, membershipRepo, paymentRepo, usageRepo, pointService, clock)

	router := NewRouter(
		handler.NewAuthHandler(authService),
		handler.NewMembershipHandler(planService, membershipService, subscribeService),
		handler.NewPointHandler(pointService),
		handler.NewUsageHandler(usageService, 7),
		handler.NewWebSocketHandler(ws.NewHub(), cfg.JWT.Secret),
		handler.NewHealthHandler(db),
		handler.NewAdminHandler(adminService),
		usageService,
		adminService,
		m,
		zap.NewNop(),
		cfg,
	)
	return router.Setup(), db
}

func do(t *testing.T, engine http.Handler, method, path, token string, body interface{}) response.Response {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp response.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestRouter_MembershipFlow(t *testing.T) {
	engine, _ := setupEngine(t)

	resp := do(t, engine, "POST", "/api/v1/auth/register", "", map[string]string{
		"username": "dotori",
		"email":    "dotori@example.com",
		"password": "password123",
	})
	require.Equal(t, response.CodeSuccess, resp.Code)

	resp = do(t, engine, "POST", "/api/v1/auth/login", "", map[string]string{
		"email":    "dotori@example.com",
		"password": "password123",
	})
	require.Equal(t, response.CodeSuccess, resp.Code)
	token := resp.Data.(map[string]interface{})["token"].(string)

	resp = do(t, engine, "GET", "/api/v1/memberships/me", token, nil)
	require.Equal(t, response.CodeSuccess, resp.Code)

	resp = do(t, engine, "POST", "/api/v1/memberships/consume/summary", token, nil)
	require.Equal(t, response.CodeSuccess, resp.Code)
	assert.Equal(t, float64(9), resp.Data.(map[string]interface{})["remaining"])

	resp = do(t, engine, "POST", "/api/v1/memberships/consume/image", token, nil)
	assert.Equal(t, response.CodeQuotaExceeded, resp.Code)

	resp = do(t, engine, "POST", "/api/v1/memberships/subscribe", token, map[string]string{"plan_code": "PREMIUM"})
	require.Equal(t, response.CodeSuccess, resp.Code)

	resp = do(t, engine, "POST", "/api/v1/memberships/consume/image", token, nil)
	require.Equal(t, response.CodeSuccess, resp.Code)
	assert.Equal(t, float64(19), resp.Data.(map[string]interface{})["remaining"])
}

func TestRouter_RequiresAuth(t *testing.T) {
	engine, _ := setupEngine(t)

	resp := do(t, engine, "GET", "/api/v1/memberships/plans", "", nil)
	assert.Equal(t, response.CodeAuthFailed, resp.Code)
}

func TestRouter_HealthAndMetrics(t *testing.T) {
	engine, _ := setupEngine(t)

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest("GET", "/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest("GET", "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), "dotori_http_requests_total"))
}

// registerAndLogin 注册并登录，返回令牌
func registerAndLogin(t *testing.T, engine http.Handler, username string) string {
	t.Helper()

	email := username + "@example.com"
	resp := do(t, engine, "POST", "/api/v1/auth/register", "", map[string]string{
		"username": username,
		"email":    email,
		"password": "password123",
	})
	require.Equal(t, response.CodeSuccess, resp.Code)

	resp = do(t, engine, "POST", "/api/v1/auth/login", "", map[string]string{
		"email":    email,
		"password": "password123",
	})
	require.Equal(t, response.CodeSuccess, resp.Code)
	return resp.Data.(map[string]interface{})["token"].(string)
}

func TestRouter_AdminGroup(t *testing.T) {
	engine, db := setupEngine(t)
	operatorToken := registerAndLogin(t, engine, "operator")
	memberToken := registerAndLogin(t, engine, "member")

	resp := do(t, engine, "GET", "/api/v1/admin/analytics", "", nil)
	assert.Equal(t, response.CodeAuthFailed, resp.Code)

	resp = do(t, engine, "GET", "/api/v1/admin/analytics", operatorToken, nil)
	assert.Equal(t, response.CodeForbidden, resp.Code)

	require.NoError(t, db.Model(&model.User{}).Where("username = ?", "operator").Update("is_admin", true).Error)

	resp = do(t, engine, "GET", "/api/v1/admin/analytics", operatorToken, nil)
	require.Equal(t, response.CodeSuccess, resp.Code)
	membership := resp.Data.(map[string]interface{})["membership"].(map[string]interface{})
	plans := membership["plans"].([]interface{})
	require.Len(t, plans, 1)
	assert.Equal(t, "BASIC", plans[0].(map[string]interface{})["plan_code"])
	assert.Equal(t, float64(2), plans[0].(map[string]interface{})["count"])

	var member model.User
	require.NoError(t, db.Where("username = ?", "member").First(&member).Error)

	resp = do(t, engine, "POST", "/api/v1/admin/points/adjust", operatorToken, map[string]interface{}{
		"user_id": member.ID,
		"delta":   300,
	})
	require.Equal(t, response.CodeSuccess, resp.Code)
	assert.Equal(t, float64(300), resp.Data.(map[string]interface{})["balance"])

	resp = do(t, engine, "GET", "/api/v1/memberships/points", memberToken, nil)
	require.Equal(t, response.CodeSuccess, resp.Code)
	assert.Equal(t, float64(300), resp.Data.(map[string]interface{})["balance"])

	resp = do(t, engine, "POST", "/api/v1/admin/points/adjust", memberToken, map[string]interface{}{
		"user_id": member.ID,
		"delta":   1000,
	})
	assert.Equal(t, response.CodeForbidden, resp.Code)
}

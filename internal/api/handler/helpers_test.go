package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/jodolyekim/Dotori/config"
	"github.com/jodolyekim/Dotori/internal/api/middleware"
	"github.com/jodolyekim/Dotori/internal/pkg/response"
	"github.com/jodolyekim/Dotori/internal/repository"
	"github.com/jodolyekim/Dotori/internal/service"
	"github.com/jodolyekim/Dotori/internal/testutil"
)

const testJWTSecret = "test-secret-key"

var kst = time.FixedZone("KST", 9*60*60)

func init() {
	gin.SetMode(gin.TestMode)
}

type handlerEnv struct {
	db           *gorm.DB
	plans        *service.PlanService
	memberships  *service.MembershipService
	usage        *service.UsageService
	points       *service.PointService
	subscription *service.SubscribeService
	auth         *service.AuthService
	admin        *service.AdminService
}

func setupHandlerEnv(t *testing.T) *handlerEnv {
	t.Helper()

	db := testutil.SetupTestDB(t)
	t.Cleanup(func() { testutil.CleanupTestDB(t, db) })

	clock := service.NewClock(kst, testutil.FixedClock(time.Date(2025, 3, 10, 9, 0, 0, 0, kst)))

	planRepo := repository.NewPlanRepository(db)
	membershipRepo := repository.NewMembershipRepository(db)
	usageRepo := repository.NewUsageRepository(db)
	walletRepo := repository.NewWalletRepository(db)
	pointTxRepo := repository.NewPointTransactionRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	userRepo := repository.NewUserRepository(db)

	env := &handlerEnv{db: db}
	env.plans = service.NewPlanService(planRepo)
	env.memberships = service.NewMembershipService(membershipRepo, env.plans, clock)
	env.usage = service.NewUsageService(db, usageRepo, walletRepo, env.memberships, clock, nil, nil)
	env.points = service.NewPointService(db, usageRepo, walletRepo, pointTxRepo, env.memberships, clock, nil, nil)
	env.subscription = service.NewSubscribeService(db, env.plans, env.memberships, env.points,
		membershipRepo, paymentRepo, walletRepo, clock, nil, nil)
	env.admin = service.NewAdminService(userRepo, membershipRepo, paymentRepo, usageRepo, env.points, clock)
	env.auth = service.NewAuthService(userRepo, env.memberships, &config.Config{
		JWT: config.JWTConfig{
			Secret:      testJWTSecret,
			ExpireHours: 24,
		},
	})

	return env
}

// asUser 模拟 Auth 中间件
func asUser(userID int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.UserIDKey, userID)
		c.Next()
	}
}

func performRequest(r http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer
	if body != nil {
		jsonBytes, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(jsonBytes)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func parseResponse(t *testing.T, w *httptest.ResponseRecorder) response.Response {
	var resp response.Response
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)
	return resp
}

// dataMap 把 Data 解成 map 方便断言
func dataMap(t *testing.T, resp response.Response) map[string]interface{} {
	t.Helper()
	m, ok := resp.Data.(map[string]interface{})
	require.True(t, ok, "data is %T", resp.Data)
	return m
}

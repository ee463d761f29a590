package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/qs3c/prv_line_server/config"
	"github.com/qs3c/prv_line_server/internal/api/handler"
	"github.com/qs3c/prv_line_server/internal/model"
	"github.com/qs3c/prv_line_server/internal/pkg/jwt"
	"github.com/qs3c/prv_line_server/internal/pkg/oauth"
	"github.com/qs3c/prv_line_server/internal/pkg/otp"
	"github.com/qs3c/prv_line_server/internal/pkg/queue"
	"github.com/qs3c/prv_line_server/internal/pkg/response"
	"github.com/qs3c/prv_line_server/internal/pkg/ws"
	"github.com/qs3c/prv_line_server/internal/repository"
	"github.com/qs3c/prv_line_server/internal/service"
	"github.com/qs3c/prv_line_server/internal/testutil"
)

const (
	testSecret   = "router-test-secret"
	testAdminKey = "router-admin-key"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func setupEngine(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()

	db := testutil.SetupTestDB(t)
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	cfg := &config.Config{
		JWT:   config.JWTConfig{Secret: testSecret, ExpireHours: 1},
		Admin: config.AdminConfig{APIKey: testAdminKey},
	}

	userRepo := repository.NewUserRepository(db)
	expenseRepo := repository.NewExpenseRepository(db)
	ledger := service.NewLedger(db, nil, nil, nil)

	userService := service.NewUserService(userRepo)
	privilegeService := service.NewPrivilegeService(ledger, userRepo, repository.NewPrivilegeRepository(db), expenseRepo)
	expenseService := service.NewExpenseService(ledger, userRepo, expenseRepo, true)
	rewardService := service.NewRewardService(ledger, privilegeService,
		repository.NewProductRepository(db), repository.NewRedemptionRepository(db), nil, cfg.Upload)
	otpService := service.NewOTPService(userRepo,
		otp.NewStore(rdb, 10*time.Minute, time.Minute, 3), queue.NewQueue(rdb, "mail_queue_test"), nil, 6)

	router := NewRouter(
		handler.NewAuthHandler(service.NewAuthService(userRepo, cfg, oauth.NewStateStore(rdb))),
		handler.NewUserHandler(userService, service.NewPdpaService(userRepo, repository.NewPdpaRepository(db)), otpService),
		handler.NewPrivilegeHandler(privilegeService),
		handler.NewRewardHandler(rewardService),
		handler.NewAdminHandler(expenseService, privilegeService, rewardService),
		handler.NewWebSocketHandler(ws.NewHub(), cfg.JWT.Secret),
		userService,
		cfg,
	)
	return router.Setup(), db
}

func doRequest(t *testing.T, engine *gin.Engine, method, path string, body interface{}, headers map[string]string) response.Response {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp response.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func bearer(t *testing.T, userID int64) map[string]string {
	t.Helper()
	token, err := jwt.GenerateToken(userID, testSecret, 1)
	require.NoError(t, err)
	return map[string]string{"Authorization": "Bearer " + token}
}

func TestRouter_AdminRequiresKey(t *testing.T) {
	engine, db := setupEngine(t)
	user := testutil.TestUser(t, db)
	body := map[string]interface{}{"user_id": user.ID, "expense_amount": 1000, "transaction_date": "2026-05-01"}

	resp := doRequest(t, engine, "POST", "/api/v1/admin/expenses", body, nil)
	assert.Equal(t, response.CodePermissionDenied, resp.Code)

	resp = doRequest(t, engine, "POST", "/api/v1/admin/expenses", body, map[string]string{"X-Admin-Key": "nope"})
	assert.Equal(t, response.CodePermissionDenied, resp.Code)

	resp = doRequest(t, engine, "POST", "/api/v1/admin/expenses", body, map[string]string{"X-Admin-Key": testAdminKey})
	assert.Equal(t, response.CodeSuccess, resp.Code, resp.Message)
}

func TestRouter_MemberRoutesRequireVerification(t *testing.T) {
	engine, db := setupEngine(t)
	pending := testutil.TestUser(t, db, testutil.WithBasicInfo(), testutil.WithStatus(model.StatusPdpaAccepted))
	verified := testutil.TestUser(t, db, testutil.WithBasicInfo(), testutil.WithStatus(model.StatusVerified))

	resp := doRequest(t, engine, "GET", "/api/v1/privilege", nil, nil)
	assert.Equal(t, response.CodeAuthFailed, resp.Code)

	resp = doRequest(t, engine, "GET", "/api/v1/privilege", nil, bearer(t, pending.ID))
	assert.Equal(t, response.CodePermissionDenied, resp.Code)

	resp = doRequest(t, engine, "GET", "/api/v1/rewards", nil, bearer(t, pending.ID))
	assert.Equal(t, response.CodePermissionDenied, resp.Code)

	// 注册流程接口不受限制
	resp = doRequest(t, engine, "GET", "/api/v1/user/status", nil, bearer(t, pending.ID))
	assert.Equal(t, response.CodeSuccess, resp.Code)

	resp = doRequest(t, engine, "GET", "/api/v1/privilege", nil, bearer(t, verified.ID))
	assert.Equal(t, response.CodeSuccess, resp.Code, resp.Message)
}

func TestRouter_Metrics(t *testing.T) {
	engine, _ := setupEngine(t)

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest("GET", "/metrics", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "go_goroutines")
}

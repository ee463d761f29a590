package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/qs3c/prv_line_server/config"
	"github.com/qs3c/prv_line_server/internal/api/middleware"
	"github.com/qs3c/prv_line_server/internal/pkg/response"
	"github.com/qs3c/prv_line_server/internal/repository"
	"github.com/qs3c/prv_line_server/internal/service"
	"github.com/qs3c/prv_line_server/internal/testutil"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// testContext 本地测试上下文
type testContext struct {
	DB        *gorm.DB
	Redis     *redis.Client
	Privilege *service.PrivilegeService
	Expense   *service.ExpenseService
	Reward    *service.RewardService
}

// setupServices 使用 SQLite 和 miniredis 组装服务，不带分布式锁
func setupServices(t *testing.T, storage service.ImageStorage) *testContext {
	t.Helper()

	db := testutil.SetupTestDB(t)
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	userRepo := repository.NewUserRepository(db)
	expenseRepo := repository.NewExpenseRepository(db)

	ledger := service.NewLedger(db, nil, nil, nil)
	privilegeService := service.NewPrivilegeService(ledger, userRepo, repository.NewPrivilegeRepository(db), expenseRepo)
	expenseService := service.NewExpenseService(ledger, userRepo, expenseRepo, true)
	rewardService := service.NewRewardService(
		ledger,
		privilegeService,
		repository.NewProductRepository(db),
		repository.NewRedemptionRepository(db),
		storage,
		config.UploadConfig{MaxSize: 1024, AllowedExtensions: []string{".png", ".jpg"}},
	)

	return &testContext{
		DB:        db,
		Redis:     rdb,
		Privilege: privilegeService,
		Expense:   expenseService,
		Reward:    rewardService,
	}
}

// mockAuth 模拟认证中间件
func mockAuth(userID int64) gin.HandlerFunc {
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

// decodeData 将 data 字段解析到目标结构
func decodeData(t *testing.T, resp response.Response, out interface{}) {
	t.Helper()
	raw, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, out))
}

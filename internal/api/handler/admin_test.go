package handler

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qs3c/prv_line_server/internal/model"
	"github.com/qs3c/prv_line_server/internal/model/dto"
	"github.com/qs3c/prv_line_server/internal/pkg/privilege"
	"github.com/qs3c/prv_line_server/internal/pkg/response"
	"github.com/qs3c/prv_line_server/internal/testutil"
)

type memStorage struct {
	objects map[string][]byte
}

func (m *memStorage) UploadProductImage(productID int64, data []byte, ext string) (string, error) {
	if m.objects == nil {
		m.objects = map[string][]byte{}
	}
	key := fmt.Sprintf("products/%d/image%s", productID, ext)
	m.objects[key] = data
	return "https://cdn.example.com/" + key, nil
}

func (m *memStorage) Delete(objectKey string) error {
	delete(m.objects, objectKey)
	return nil
}

func (m *memStorage) ExtractObjectKey(url string) string {
	return strings.TrimPrefix(url, "https://cdn.example.com/")
}

func setupAdminRouter(t *testing.T, ctx *testContext) *gin.Engine {
	t.Helper()

	handler := NewAdminHandler(ctx.Expense, ctx.Privilege, ctx.Reward)

	router := gin.New()
	router.POST("/admin/expenses", handler.AddExpense)
	router.DELETE("/admin/expenses/:id", handler.DeleteExpense)
	router.POST("/admin/licenses", handler.GrantLicense)
	router.POST("/admin/products", handler.AddProducts)
	router.DELETE("/admin/products/:id", handler.DeleteProduct)
	router.POST("/admin/products/:id/image", handler.UploadProductImage)
	return router
}

func TestAdminHandler_AddExpense(t *testing.T) {
	ctx := setupServices(t, nil)
	router := setupAdminRouter(t, ctx)
	user := testutil.TestUser(t, ctx.DB)

	resp := parseResponse(t, performRequest(router, "POST", "/admin/expenses", dto.AddExpenseRequest{
		UserID:          user.ID,
		ExpenseAmount:   60000,
		TransactionDate: "2026-05-20",
	}))
	require.Equal(t, response.CodeSuccess, resp.Code, resp.Message)

	var result dto.AddExpenseResponse
	decodeData(t, resp, &result)
	assert.Equal(t, string(privilege.TierGold), result.Privilege.Tier)
	assert.Equal(t, int64(461), result.Privilege.CurrentPoint)
	assert.Equal(t, int64(70), result.Privilege.CurrentAmount)
	assert.Equal(t, int64(60000), result.Privilege.TotalAmountPerYear)
	assert.Equal(t, int64(461), result.Expense.PointsEarned)
	assert.Equal(t, string(privilege.TierGold), result.Expense.TierAtTime)
}

func TestAdminHandler_AddExpense_Errors(t *testing.T) {
	ctx := setupServices(t, nil)
	router := setupAdminRouter(t, ctx)
	user := testutil.TestUser(t, ctx.DB)

	tests := []struct {
		name     string
		req      dto.AddExpenseRequest
		wantCode int
	}{
		{"zero amount", dto.AddExpenseRequest{UserID: user.ID, ExpenseAmount: 0, TransactionDate: "2026-05-20"}, response.CodeParamError},
		{"negative amount", dto.AddExpenseRequest{UserID: user.ID, ExpenseAmount: -5, TransactionDate: "2026-05-20"}, response.CodeParamError},
		{"bad date", dto.AddExpenseRequest{UserID: user.ID, ExpenseAmount: 100, TransactionDate: "20/05/2026"}, response.CodeParamError},
		{"missing date", dto.AddExpenseRequest{UserID: user.ID, ExpenseAmount: 100}, response.CodeParamError},
		{"missing user", dto.AddExpenseRequest{ExpenseAmount: 100, TransactionDate: "2026-05-20"}, response.CodeParamError},
		{"unknown user", dto.AddExpenseRequest{UserID: 99999, ExpenseAmount: 100, TransactionDate: "2026-05-20"}, response.CodeResourceNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := parseResponse(t, performRequest(router, "POST", "/admin/expenses", tt.req))
			assert.Equal(t, tt.wantCode, resp.Code, resp.Message)
		})
	}

	var count int64
	ctx.DB.Model(&model.Expense{}).Count(&count)
	assert.Zero(t, count)
}

func TestAdminHandler_DeleteExpense(t *testing.T) {
	ctx := setupServices(t, nil)
	router := setupAdminRouter(t, ctx)
	user := testutil.TestUser(t, ctx.DB)

	resp := parseResponse(t, performRequest(router, "POST", "/admin/expenses", dto.AddExpenseRequest{
		UserID: user.ID, ExpenseAmount: 1000, TransactionDate: "2026-05-20",
	}))
	require.Equal(t, response.CodeSuccess, resp.Code, resp.Message)
	var added dto.AddExpenseResponse
	decodeData(t, resp, &added)

	resp = parseResponse(t, performRequest(router, "DELETE", fmt.Sprintf("/admin/expenses/%d", added.Expense.ID), nil))
	require.Equal(t, response.CodeSuccess, resp.Code, resp.Message)

	var p model.Privilege
	require.NoError(t, ctx.DB.Where("user_id = ?", user.ID).First(&p).Error)
	assert.Zero(t, p.CurrentPoint)
	assert.Zero(t, p.TotalAmountPerYear)

	resp = parseResponse(t, performRequest(router, "DELETE", fmt.Sprintf("/admin/expenses/%d", added.Expense.ID), nil))
	assert.Equal(t, response.CodeResourceNotFound, resp.Code)

	resp = parseResponse(t, performRequest(router, "DELETE", "/admin/expenses/abc", nil))
	assert.Equal(t, response.CodeParamError, resp.Code)
}

func TestAdminHandler_GrantLicense(t *testing.T) {
	ctx := setupServices(t, nil)
	router := setupAdminRouter(t, ctx)
	user := testutil.TestUser(t, ctx.DB)

	resp := parseResponse(t, performRequest(router, "POST", "/admin/licenses", dto.PurchaseLicenseRequest{UserID: user.ID}))
	require.Equal(t, response.CodeSuccess, resp.Code, resp.Message)

	var license dto.LicenseResponse
	decodeData(t, resp, &license)
	assert.Equal(t, string(privilege.TierDiamond), license.Tier)
	assert.Equal(t, int64(1), license.LicenseID)

	resp = parseResponse(t, performRequest(router, "POST", "/admin/licenses", dto.PurchaseLicenseRequest{UserID: user.ID}))
	assert.Equal(t, response.CodeDuplicateAction, resp.Code)

	resp = parseResponse(t, performRequest(router, "POST", "/admin/licenses", dto.PurchaseLicenseRequest{UserID: 99999}))
	assert.Equal(t, response.CodeResourceNotFound, resp.Code)
}

func TestAdminHandler_Products(t *testing.T) {
	ctx := setupServices(t, nil)
	router := setupAdminRouter(t, ctx)
	testutil.TestProduct(t, ctx.DB, 100, testutil.WithProductName("Coffee voucher"))

	resp := parseResponse(t, performRequest(router, "POST", "/admin/products", dto.AddProductsRequest{
		Products: []dto.ProductInput{
			{ProductName: "Coffee voucher", Point: 100},
			{ProductName: "Movie ticket", Point: 300},
			{ProductName: "Tote bag", Point: 50},
		},
	}))
	require.Equal(t, response.CodeSuccess, resp.Code, resp.Message)

	var created dto.AddProductsResponse
	decodeData(t, resp, &created)
	assert.Equal(t, int64(2), created.CreatedCount)

	resp = parseResponse(t, performRequest(router, "POST", "/admin/products", dto.AddProductsRequest{
		Products: []dto.ProductInput{{ProductName: "Free point", Point: 0}},
	}))
	assert.Equal(t, response.CodeParamError, resp.Code)

	var bag model.Product
	require.NoError(t, ctx.DB.Where("product_name = ?", "Tote bag").First(&bag).Error)

	resp = parseResponse(t, performRequest(router, "DELETE", fmt.Sprintf("/admin/products/%d", bag.ID), nil))
	assert.Equal(t, response.CodeSuccess, resp.Code)

	resp = parseResponse(t, performRequest(router, "DELETE", fmt.Sprintf("/admin/products/%d", bag.ID), nil))
	assert.Equal(t, response.CodeResourceNotFound, resp.Code)
}

func createMultipartFileRequest(t *testing.T, path, fileName string, content []byte) *http.Request {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", fileName)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, path, body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func TestAdminHandler_UploadProductImage(t *testing.T) {
	storage := &memStorage{}
	ctx := setupServices(t, storage)
	router := setupAdminRouter(t, ctx)
	product := testutil.TestProduct(t, ctx.DB, 100)
	path := fmt.Sprintf("/admin/products/%d/image", product.ID)

	t.Run("success", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, createMultipartFileRequest(t, path, "voucher.PNG", []byte("png-bytes")))
		resp := parseResponse(t, w)
		require.Equal(t, response.CodeSuccess, resp.Code, resp.Message)

		var uploaded dto.ImageUploadResponse
		decodeData(t, resp, &uploaded)
		assert.Equal(t, fmt.Sprintf("https://cdn.example.com/products/%d/image.png", product.ID), uploaded.URL)
		assert.Len(t, storage.objects, 1)
	})

	t.Run("wrong type", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, createMultipartFileRequest(t, path, "voucher.exe", []byte("MZ")))
		assert.Equal(t, response.CodeParamError, parseResponse(t, w).Code)
	})

	t.Run("too large", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, createMultipartFileRequest(t, path, "voucher.png", bytes.Repeat([]byte("x"), 2048)))
		assert.Equal(t, response.CodeParamError, parseResponse(t, w).Code)
	})

	t.Run("no file", func(t *testing.T) {
		resp := parseResponse(t, performRequest(router, "POST", path, nil))
		assert.Equal(t, response.CodeParamError, resp.Code)
	})

	t.Run("unknown product", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, createMultipartFileRequest(t, "/admin/products/99999/image", "voucher.png", []byte("png")))
		assert.Equal(t, response.CodeResourceNotFound, parseResponse(t, w).Code)
	})
}

func TestAdminHandler_UploadProductImage_NoStorage(t *testing.T) {
	ctx := setupServices(t, nil)
	router := setupAdminRouter(t, ctx)
	product := testutil.TestProduct(t, ctx.DB, 100)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, createMultipartFileRequest(t, fmt.Sprintf("/admin/products/%d/image", product.ID), "a.png", []byte("png")))
	assert.Equal(t, response.CodeServerError, parseResponse(t, w).Code)
}

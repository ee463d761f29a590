package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/qs3c/prv_line_server/internal/model/dto"
	"github.com/qs3c/prv_line_server/internal/pkg/response"
	"github.com/qs3c/prv_line_server/internal/service"
)

// AdminHandler 后台接口：消费录入、License、商品管理
type AdminHandler struct {
	expenseService   *service.ExpenseService
	privilegeService *service.PrivilegeService
	rewardService    *service.RewardService
}

func NewAdminHandler(
	expenseService *service.ExpenseService,
	privilegeService *service.PrivilegeService,
	rewardService *service.RewardService,
) *AdminHandler {
	return &AdminHandler{
		expenseService:   expenseService,
		privilegeService: privilegeService,
		rewardService:    rewardService,
	}
}

// AddExpense 录入消费
// POST /api/v1/admin/expenses
func (h *AdminHandler) AddExpense(c *gin.Context) {
	var req dto.AddExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	transactionDate, err := service.ParseTransactionDate(req.TransactionDate)
	if err != nil {
		respondError(c, err)
		return
	}

	resp, err := h.expenseService.AddExpense(c.Request.Context(), req.UserID, req.ExpenseAmount, transactionDate)
	if err != nil {
		respondError(c, err)
		return
	}

	response.SuccessWithMessage(c, "录入成功", resp)
}

// DeleteExpense 删除消费并回退积分
// DELETE /api/v1/admin/expenses/:id
func (h *AdminHandler) DeleteExpense(c *gin.Context) {
	expenseID, ok := paramID(c, "id")
	if !ok {
		return
	}

	resp, err := h.expenseService.DeleteExpense(c.Request.Context(), expenseID)
	if err != nil {
		respondError(c, err)
		return
	}

	response.SuccessWithMessage(c, "删除成功", resp)
}

// GrantLicense 购买 License，直接升级为 Diamond
// POST /api/v1/admin/licenses
func (h *AdminHandler) GrantLicense(c *gin.Context) {
	var req dto.PurchaseLicenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	resp, err := h.privilegeService.GrantLicense(c.Request.Context(), req.UserID)
	if err != nil {
		respondError(c, err)
		return
	}

	response.SuccessWithMessage(c, "License 已发放", resp)
}

// AddProducts 批量新增商品，同名商品跳过
// POST /api/v1/admin/products
func (h *AdminHandler) AddProducts(c *gin.Context) {
	var req dto.AddProductsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	resp, err := h.rewardService.AddProducts(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, resp)
}

// DeleteProduct 删除商品
// DELETE /api/v1/admin/products/:id
func (h *AdminHandler) DeleteProduct(c *gin.Context) {
	productID, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := h.rewardService.DeleteProduct(c.Request.Context(), productID); err != nil {
		respondError(c, err)
		return
	}

	response.SuccessWithMessage(c, "删除成功", nil)
}

// UploadProductImage 上传商品图片
// POST /api/v1/admin/products/:id/image
func (h *AdminHandler) UploadProductImage(c *gin.Context) {
	productID, ok := paramID(c, "id")
	if !ok {
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		response.ParamError(c, "请选择文件")
		return
	}

	f, err := file.Open()
	if err != nil {
		response.ServerError(c, "文件读取失败")
		return
	}
	defer f.Close()

	resp, err := h.rewardService.UploadImage(c.Request.Context(), productID, f, file.Filename, file.Size)
	if err != nil {
		if errors.Is(err, service.ErrStorageNotReady) {
			response.ServerError(c, err.Error())
			return
		}
		respondError(c, err)
		return
	}

	response.SuccessWithMessage(c, "上传成功", resp)
}

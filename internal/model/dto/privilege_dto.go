package dto

// AddExpenseRequest 录入消费
type AddExpenseRequest struct {
	UserID          int64  `json:"user_id"`
	ExpenseAmount   int64  `json:"expense_amount"`
	TransactionDate string `json:"transaction_date"` // RFC3339 或 YYYY-MM-DD
}

// PurchaseLicenseRequest 购买 License
type PurchaseLicenseRequest struct {
	UserID int64 `json:"user_id"`
}

// ExpenseItem 消费记录
type ExpenseItem struct {
	ID              int64  `json:"id"`
	UserID          int64  `json:"user_id"`
	Amount          int64  `json:"amount"`
	TransactionDate string `json:"transaction_date"`
	TierAtTime      string `json:"tier_at_time"`
	PointsEarned    int64  `json:"points_earned"`
	CreatedAt       string `json:"created_at"`
}

// PrivilegeInfo 会员账户
type PrivilegeInfo struct {
	UserID             int64  `json:"user_id"`
	Tier               string `json:"tier"`
	CurrentPoint       int64  `json:"current_point"`
	CurrentAmount      int64  `json:"current_amount"`
	TotalAmountPerYear int64  `json:"total_amount_per_year"`
	LicenseID          *int64 `json:"license_id,omitempty"`
	ExpiryDate         string `json:"expiry_date"`
}

// AddExpenseResponse 录入消费结果
type AddExpenseResponse struct {
	Expense   *ExpenseItem   `json:"expense"`
	Privilege *PrivilegeInfo `json:"privilege"`
}

// DeleteExpenseResponse 删除消费结果
type DeleteExpenseResponse struct {
	Expense *ExpenseItem `json:"expense"`
}

// LicenseResponse License 购买结果
type LicenseResponse struct {
	UserID     int64  `json:"user_id"`
	LicenseID  int64  `json:"license_id"`
	Tier       string `json:"tier"`
	ExpiryDate string `json:"expiry_date"`
}

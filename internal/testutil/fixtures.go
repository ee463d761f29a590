package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/qs3c/prv_line_server/internal/model"
	"github.com/qs3c/prv_line_server/internal/pkg/privilege"
)

var seq int64

func nextSeq() int64 {
	return atomic.AddInt64(&seq, 1)
}

// TestUser 创建测试用户
func TestUser(t *testing.T, db *gorm.DB, opts ...func(*model.User)) *model.User {
	t.Helper()

	n := nextSeq()
	user := &model.User{
		LineUserID:  fmt.Sprintf("U%032d", n),
		DisplayName: fmt.Sprintf("tester_%d", n),
		Status:      model.StatusNew,
	}

	for _, opt := range opts {
		opt(user)
	}

	if err := db.Create(user).Error; err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}

	return user
}

// WithLineUserID 设置 LINE 用户 ID
func WithLineUserID(lineUserID string) func(*model.User) {
	return func(u *model.User) {
		u.LineUserID = lineUserID
	}
}

// WithEmail 设置邮箱
func WithEmail(email string) func(*model.User) {
	return func(u *model.User) {
		u.Email = &email
	}
}

// WithBasicInfo 填写姓名、手机号和邮箱
func WithBasicInfo() func(*model.User) {
	return func(u *model.User) {
		n := nextSeq()
		email := fmt.Sprintf("test_%d@example.com", n)
		u.Firstname = "Somchai"
		u.Lastname = "Jaidee"
		u.Mobile = fmt.Sprintf("08%08d", n)
		u.Email = &email
		if u.Status < model.StatusProfileSaved {
			u.Status = model.StatusProfileSaved
		}
	}
}

// WithStatus 设置注册流程状态
func WithStatus(status int) func(*model.User) {
	return func(u *model.User) {
		u.Status = status
		if status >= model.StatusVerified {
			u.IsVerified = true
		}
	}
}

// TestPrivilege 创建测试会员账户，默认 Silver、一年后到期
func TestPrivilege(t *testing.T, db *gorm.DB, userID int64, opts ...func(*model.Privilege)) *model.Privilege {
	t.Helper()

	p := &model.Privilege{
		UserID:     userID,
		Tier:       string(privilege.TierSilver),
		ExpiryDate: privilege.ExpiryFrom(time.Now().UTC()),
	}

	for _, opt := range opts {
		opt(p)
	}

	if err := db.Create(p).Error; err != nil {
		t.Fatalf("Failed to create test privilege: %v", err)
	}

	return p
}

// WithTier 设置等级
func WithTier(tier privilege.Tier) func(*model.Privilege) {
	return func(p *model.Privilege) {
		p.Tier = string(tier)
	}
}

// WithBalance 设置余额与积分
func WithBalance(currentAmount, totalAmountPerYear, currentPoint int64) func(*model.Privilege) {
	return func(p *model.Privilege) {
		p.CurrentAmount = currentAmount
		p.TotalAmountPerYear = totalAmountPerYear
		p.CurrentPoint = currentPoint
	}
}

// WithExpiry 设置到期时间
func WithExpiry(expiry time.Time) func(*model.Privilege) {
	return func(p *model.Privilege) {
		p.ExpiryDate = expiry
	}
}

// WithLicense 设置 License 编号
func WithLicense(licenseID int64) func(*model.Privilege) {
	return func(p *model.Privilege) {
		p.LicenseID = &licenseID
	}
}

// TestExpense 创建测试消费记录
func TestExpense(t *testing.T, db *gorm.DB, userID, amount int64, tier privilege.Tier, pointsEarned int64) *model.Expense {
	t.Helper()

	e := &model.Expense{
		UserID:          userID,
		Amount:          amount,
		TransactionDate: time.Now().UTC(),
		TierAtTime:      string(tier),
		PointsEarned:    pointsEarned,
	}

	if err := db.Create(e).Error; err != nil {
		t.Fatalf("Failed to create test expense: %v", err)
	}

	return e
}

// TestProduct 创建测试商品
func TestProduct(t *testing.T, db *gorm.DB, point int64, opts ...func(*model.Product)) *model.Product {
	t.Helper()

	p := &model.Product{
		ProductName: fmt.Sprintf("Reward %d", nextSeq()),
		Point:       point,
		Active:      true,
	}

	for _, opt := range opts {
		opt(p)
	}

	if err := db.Create(p).Error; err != nil {
		t.Fatalf("Failed to create test product: %v", err)
	}

	return p
}

// WithProductName 设置商品名称
func WithProductName(name string) func(*model.Product) {
	return func(p *model.Product) {
		p.ProductName = name
	}
}

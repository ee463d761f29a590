package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/qs3c/prv_line_server/internal/model"
	"github.com/qs3c/prv_line_server/internal/model/dto"
	"github.com/qs3c/prv_line_server/internal/pkg/privilege"
	"github.com/qs3c/prv_line_server/internal/pkg/pubsub"
	"github.com/qs3c/prv_line_server/internal/repository"
)

type ExpenseService struct {
	ledger         *Ledger
	userRepo       *repository.UserRepository
	expenseRepo    *repository.ExpenseRepository
	legacyReversal bool
}

// NewExpenseService legacyReversal 为 true 时删除消费按固定 150 回退余额
func NewExpenseService(
	ledger *Ledger,
	userRepo *repository.UserRepository,
	expenseRepo *repository.ExpenseRepository,
	legacyReversal bool,
) *ExpenseService {
	return &ExpenseService{
		ledger:         ledger,
		userRepo:       userRepo,
		expenseRepo:    expenseRepo,
		legacyReversal: legacyReversal,
	}
}

// AddExpense 录入一笔消费：累计年度消费、重新定级，再按新等级换算积分。
// 有效期不变；账户不存在时自动创建。
func (s *ExpenseService) AddExpense(ctx context.Context, userID, amount int64, transactionDate time.Time) (*dto.AddExpenseResponse, error) {
	start := time.Now()

	if userID <= 0 {
		return nil, ErrInvalidUserID
	}
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if transactionDate.IsZero() {
		return nil, ErrInvalidTransaction
	}

	exists, err := s.userRepo.Exists(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrUserNotFound
	}

	var (
		p        *model.Privilege
		expense  *model.Expense
		fromTier string
	)
	err = s.ledger.Run(ctx, userID, func(tx *gorm.DB) error {
		var err error
		p, err = s.ledger.lockOrCreate(ctx, tx, userID)
		if err != nil {
			return err
		}
		fromTier = p.Tier

		newTotal := p.TotalAmountPerYear + amount
		tier := privilege.ComputeTier(privilege.Tier(p.Tier), newTotal, s.ledger.Now(), p.ExpiryDate)
		points, remainder := privilege.Accrue(p.CurrentAmount, amount, tier)

		expense = &model.Expense{
			UserID:          userID,
			Amount:          amount,
			TransactionDate: transactionDate.UTC(),
			TierAtTime:      string(tier),
			PointsEarned:    points,
		}
		if err := repository.NewExpenseRepository(tx).Create(ctx, expense); err != nil {
			return err
		}

		p.TotalAmountPerYear = newTotal
		p.Tier = string(tier)
		p.CurrentAmount = remainder
		p.CurrentPoint += points

		return repository.NewPrivilegeRepository(tx).Save(ctx, p)
	})
	s.observe("add", err, start)
	if err != nil {
		return nil, err
	}

	slog.Info("expense added",
		"user_id", userID,
		"expense_id", expense.ID,
		"amount", amount,
		"tier", p.Tier,
		"points_earned", expense.PointsEarned,
	)
	if m := s.ledger.metrics; m != nil {
		m.ExpenseAmount.WithLabelValues(p.Tier).Add(float64(amount))
		m.PointsEarnedTotal.WithLabelValues(p.Tier).Add(float64(expense.PointsEarned))
	}
	s.ledger.observeTierChange(fromTier, p.Tier)
	s.ledger.notify(ctx, pubsub.EventPrivilegeUpdated, "expense_added", p)

	return &dto.AddExpenseResponse{
		Expense:   buildExpenseItem(expense),
		Privilege: buildPrivilegeInfo(p),
	}, nil
}

// DeleteExpense 删除一笔消费并回退其对账户的影响。
// 年度消费减去金额，余额与积分回退后不小于 0；等级保持不变。
func (s *ExpenseService) DeleteExpense(ctx context.Context, expenseID int64) (*dto.DeleteExpenseResponse, error) {
	start := time.Now()

	if expenseID <= 0 {
		return nil, ErrInvalidExpenseID
	}

	// 先取出 user_id 用于加锁
	found, err := s.expenseRepo.GetByID(ctx, expenseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrExpenseNotFound
		}
		return nil, err
	}

	var (
		p       *model.Privilege
		expense *model.Expense
	)
	err = s.ledger.Run(ctx, found.UserID, func(tx *gorm.DB) error {
		expenseRepo := repository.NewExpenseRepository(tx)
		privilegeRepo := repository.NewPrivilegeRepository(tx)

		var err error
		expense, err = expenseRepo.GetByID(ctx, expenseID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrExpenseNotFound
			}
			return err
		}

		p, err = privilegeRepo.GetByUserIDForUpdate(ctx, expense.UserID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPrivilegeNotFound
			}
			return err
		}

		b := privilege.Reverse(
			privilege.Balance{
				CurrentAmount:      p.CurrentAmount,
				TotalAmountPerYear: p.TotalAmountPerYear,
				CurrentPoint:       p.CurrentPoint,
			},
			privilege.Reversal{
				Amount:       expense.Amount,
				PointsEarned: expense.PointsEarned,
				TierAtTime:   privilege.Tier(expense.TierAtTime),
			},
			s.legacyReversal,
		)
		p.CurrentAmount = b.CurrentAmount
		p.TotalAmountPerYear = b.TotalAmountPerYear
		p.CurrentPoint = b.CurrentPoint

		if err := privilegeRepo.Save(ctx, p); err != nil {
			return err
		}
		if err := expenseRepo.Delete(ctx, expenseID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrExpenseNotFound
			}
			return err
		}
		return nil
	})
	s.observe("delete", err, start)
	if err != nil {
		return nil, err
	}

	slog.Info("expense deleted",
		"user_id", expense.UserID,
		"expense_id", expense.ID,
		"amount", expense.Amount,
		"points_reversed", expense.PointsEarned,
	)
	s.ledger.notify(ctx, pubsub.EventPrivilegeUpdated, "expense_deleted", p)

	return &dto.DeleteExpenseResponse{Expense: buildExpenseItem(expense)}, nil
}

func (s *ExpenseService) observe(op string, err error, start time.Time) {
	m := s.ledger.metrics
	if m == nil {
		return
	}

	result := "success"
	if err != nil {
		result = "failed"
	}
	m.ExpenseTotal.WithLabelValues(op, result).Inc()
	m.ExpenseDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

// ParseTransactionDate 支持 RFC3339 和 YYYY-MM-DD，空字符串返回零值
func ParseTransactionDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, ErrInvalidTransaction
	}
	return t, nil
}

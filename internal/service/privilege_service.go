package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"github.com/qs3c/prv_line_server/internal/model"
	"github.com/qs3c/prv_line_server/internal/model/dto"
	"github.com/qs3c/prv_line_server/internal/pkg/privilege"
	"github.com/qs3c/prv_line_server/internal/pkg/pubsub"
	"github.com/qs3c/prv_line_server/internal/repository"
)

const sweepBatchSize = 200

type PrivilegeService struct {
	ledger        *Ledger
	userRepo      *repository.UserRepository
	privilegeRepo *repository.PrivilegeRepository
	expenseRepo   *repository.ExpenseRepository
}

func NewPrivilegeService(
	ledger *Ledger,
	userRepo *repository.UserRepository,
	privilegeRepo *repository.PrivilegeRepository,
	expenseRepo *repository.ExpenseRepository,
) *PrivilegeService {
	return &PrivilegeService{
		ledger:        ledger,
		userRepo:      userRepo,
		privilegeRepo: privilegeRepo,
		expenseRepo:   expenseRepo,
	}
}

// GetOrCreate 获取用户会员账户。
// 账户不存在时创建默认账户：Silver、余额和积分为 0、有效期为创建时间起一年。
// 用户不存在返回 ErrUserNotFound。
func (s *PrivilegeService) GetOrCreate(ctx context.Context, userID int64) (*model.Privilege, error) {
	if userID <= 0 {
		return nil, ErrInvalidUserID
	}
	if err := s.ensureUser(ctx, userID); err != nil {
		return nil, err
	}

	p, err := s.privilegeRepo.GetByUserID(ctx, userID)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	err = s.ledger.Run(ctx, userID, func(tx *gorm.DB) error {
		p, err = s.ledger.lockOrCreate(ctx, tx, userID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// GetCard 会员卡信息
func (s *PrivilegeService) GetCard(ctx context.Context, userID int64) (*dto.PrivilegeInfo, error) {
	p, err := s.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	return buildPrivilegeInfo(p), nil
}

// GrantLicense 购买 License：发放新的 License 编号，等级设为 Diamond，有效期重置为一年。
// 每个用户只能购买一次，重复购买返回 ErrLicenseAlreadyGranted 且账户不变。
func (s *PrivilegeService) GrantLicense(ctx context.Context, userID int64) (*dto.LicenseResponse, error) {
	if userID <= 0 {
		return nil, ErrInvalidUserID
	}
	if err := s.ensureUser(ctx, userID); err != nil {
		return nil, err
	}

	var (
		p        *model.Privilege
		fromTier string
	)
	err := s.ledger.Run(ctx, userID, func(tx *gorm.DB) error {
		var err error
		p, err = s.ledger.lockOrCreate(ctx, tx, userID)
		if err != nil {
			return err
		}
		if p.LicenseID != nil {
			return ErrLicenseAlreadyGranted
		}

		licenseID, err := repository.NewLicenseRepository(tx).NextLicenseID(ctx)
		if err != nil {
			return err
		}

		fromTier = p.Tier
		p.LicenseID = &licenseID
		p.Tier = string(privilege.TierDiamond)
		p.ExpiryDate = privilege.ExpiryFrom(s.ledger.Now())

		return repository.NewPrivilegeRepository(tx).Save(ctx, p)
	})
	if err != nil {
		return nil, err
	}

	slog.Info("license granted", "user_id", userID, "license_id", *p.LicenseID)
	if m := s.ledger.metrics; m != nil {
		m.LicenseIssuedTotal.Inc()
	}
	s.ledger.observeTierChange(fromTier, p.Tier)
	s.ledger.notify(ctx, pubsub.EventPrivilegeUpdated, "license", p)

	return &dto.LicenseResponse{
		UserID:     userID,
		LicenseID:  *p.LicenseID,
		Tier:       p.Tier,
		ExpiryDate: p.ExpiryDate.Format(time.RFC3339),
	}, nil
}

// ListExpenses 分页获取消费记录
func (s *PrivilegeService) ListExpenses(ctx context.Context, userID int64, page, pageSize int) ([]*dto.ExpenseItem, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	expenses, total, err := s.expenseRepo.ListByUser(ctx, userID, page, pageSize)
	if err != nil {
		return nil, 0, err
	}

	items := make([]*dto.ExpenseItem, 0, len(expenses))
	for i := range expenses {
		items = append(items, buildExpenseItem(&expenses[i]))
	}
	return items, total, nil
}

// SweepExpiredDiamonds 将已过期的 Diamond 账户按年度消费重新定级，返回处理数量
func (s *PrivilegeService) SweepExpiredDiamonds(ctx context.Context) (int64, error) {
	var swept int64

	for {
		ids, err := s.privilegeRepo.ListExpiredDiamondUserIDs(ctx, s.ledger.Now(), sweepBatchSize)
		if err != nil {
			return swept, err
		}

		for _, userID := range ids {
			if err := ctx.Err(); err != nil {
				return swept, err
			}
			if err := s.expireDiamond(ctx, userID); err != nil {
				return swept, err
			}
			swept++
		}

		if len(ids) < sweepBatchSize {
			return swept, nil
		}
	}
}

func (s *PrivilegeService) expireDiamond(ctx context.Context, userID int64) error {
	var (
		p       *model.Privilege
		changed bool
	)
	err := s.ledger.Run(ctx, userID, func(tx *gorm.DB) error {
		repo := repository.NewPrivilegeRepository(tx)

		var err error
		p, err = repo.GetByUserIDForUpdate(ctx, userID)
		if err != nil {
			return err
		}

		tier := privilege.ComputeTier(privilege.Tier(p.Tier), p.TotalAmountPerYear, s.ledger.Now(), p.ExpiryDate)
		if string(tier) == p.Tier {
			return nil
		}
		p.Tier = string(tier)
		changed = true
		return repo.Save(ctx, p)
	})
	if err != nil || !changed {
		return err
	}

	slog.Info("diamond expired", "user_id", userID, "tier", p.Tier)
	if m := s.ledger.metrics; m != nil {
		m.DiamondExpiredTotal.Inc()
	}
	s.ledger.observeTierChange(string(privilege.TierDiamond), p.Tier)
	s.ledger.notify(ctx, pubsub.EventPrivilegeUpdated, "diamond_expired", p)
	return nil
}

func (s *PrivilegeService) ensureUser(ctx context.Context, userID int64) error {
	exists, err := s.userRepo.Exists(ctx, userID)
	if err != nil {
		return err
	}
	if !exists {
		return ErrUserNotFound
	}
	return nil
}

func buildPrivilegeInfo(p *model.Privilege) *dto.PrivilegeInfo {
	return &dto.PrivilegeInfo{
		UserID:             p.UserID,
		Tier:               p.Tier,
		CurrentPoint:       p.CurrentPoint,
		CurrentAmount:      p.CurrentAmount,
		TotalAmountPerYear: p.TotalAmountPerYear,
		LicenseID:          p.LicenseID,
		ExpiryDate:         p.ExpiryDate.Format(time.RFC3339),
	}
}

func buildExpenseItem(e *model.Expense) *dto.ExpenseItem {
	return &dto.ExpenseItem{
		ID:              e.ID,
		UserID:          e.UserID,
		Amount:          e.Amount,
		TransactionDate: e.TransactionDate.Format(time.RFC3339),
		TierAtTime:      e.TierAtTime,
		PointsEarned:    e.PointsEarned,
		CreatedAt:       e.CreatedAt.Format(time.RFC3339),
	}
}

package service

import (
	"context"
	"time"

	"github.com/qs3c/prv_line_server/internal/model"
	"github.com/qs3c/prv_line_server/internal/model/dto"
	"github.com/qs3c/prv_line_server/internal/repository"
)

type PdpaService struct {
	userRepo *repository.UserRepository
	pdpaRepo *repository.PdpaRepository
}

func NewPdpaService(userRepo *repository.UserRepository, pdpaRepo *repository.PdpaRepository) *PdpaService {
	return &PdpaService{
		userRepo: userRepo,
		pdpaRepo: pdpaRepo,
	}
}

// Accept 保存 PDPA 同意状态，需先填写基本信息
func (s *PdpaService) Accept(ctx context.Context, userID int64, req *dto.PdpaRequest) (*dto.PdpaInfo, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, mapUserErr(err)
	}
	if !user.HasBasicInfo() {
		return nil, ErrProfileIncomplete
	}

	consent := &model.PdpaConsent{
		UserID:    userID,
		Checkbox1: req.Checkbox1,
		Checkbox2: req.Checkbox2,
	}
	if err := s.pdpaRepo.Upsert(ctx, consent); err != nil {
		return nil, err
	}

	if user.Status < model.StatusPdpaAccepted {
		err := s.userRepo.UpdateFields(ctx, userID, map[string]interface{}{
			"status": model.StatusPdpaAccepted,
		})
		if err != nil {
			return nil, err
		}
	}

	return s.Get(ctx, userID)
}

// Get 获取 PDPA 同意状态，没有记录时创建默认记录
func (s *PdpaService) Get(ctx context.Context, userID int64) (*dto.PdpaInfo, error) {
	consent, err := s.pdpaRepo.GetOrCreateDefault(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &dto.PdpaInfo{
		UserID:    consent.UserID,
		Checkbox1: consent.Checkbox1,
		Checkbox2: consent.Checkbox2,
		UpdatedAt: consent.UpdatedAt.Format(time.RFC3339),
	}, nil
}

package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"gorm.io/gorm"

	"github.com/qs3c/prv_line_server/internal/model"
	"github.com/qs3c/prv_line_server/internal/model/dto"
	"github.com/qs3c/prv_line_server/internal/pkg/otp"
	"github.com/qs3c/prv_line_server/internal/pkg/pubsub"
	"github.com/qs3c/prv_line_server/internal/pkg/queue"
	"github.com/qs3c/prv_line_server/internal/repository"
)

type OTPService struct {
	userRepo  *repository.UserRepository
	store     *otp.Store
	mailQueue *queue.Queue
	publisher *pubsub.Publisher
	length    int
}

// NewOTPService publisher 可为 nil
func NewOTPService(
	userRepo *repository.UserRepository,
	store *otp.Store,
	mailQueue *queue.Queue,
	publisher *pubsub.Publisher,
	length int,
) *OTPService {
	return &OTPService{
		userRepo:  userRepo,
		store:     store,
		mailQueue: mailQueue,
		publisher: publisher,
		length:    length,
	}
}

// SendEmailOTP 生成验证码并放入邮件队列
func (s *OTPService) SendEmailOTP(ctx context.Context, userID int64) (*dto.OTPSentResponse, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, mapUserErr(err)
	}
	if user.Email == nil || *user.Email == "" {
		return nil, ErrEmailMissing
	}
	email := *user.Email

	code, err := otp.Generate(s.length)
	if err != nil {
		return nil, err
	}

	if err := s.store.Save(ctx, userID, email, code); err != nil {
		if errors.Is(err, otp.ErrCooldown) {
			return nil, ErrOTPCooldown
		}
		return nil, err
	}

	expiresIn := int(s.store.TTL().Minutes())
	err = s.mailQueue.Push(ctx, &queue.MailMessage{
		Type:      queue.MailTypeOTP,
		UserID:    userID,
		To:        email,
		Code:      code,
		ExpiresIn: expiresIn,
	})
	if err != nil {
		return nil, err
	}

	slog.Info("email otp queued", "user_id", userID)
	return &dto.OTPSentResponse{
		Email:       email,
		ExpiresIn:   int(s.store.TTL().Seconds()),
		ResendAfter: int(s.store.Cooldown().Seconds()),
	}, nil
}

// VerifyEmailOTP 校验验证码，成功后邮箱标记为已验证，注册流程完成
func (s *OTPService) VerifyEmailOTP(ctx context.Context, userID int64, code string) (*dto.StatusInfo, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, mapUserErr(err)
	}

	email, err := s.store.Verify(ctx, userID, strings.TrimSpace(code))
	if err != nil {
		switch {
		case errors.Is(err, otp.ErrExpired), errors.Is(err, otp.ErrMismatch):
			return nil, ErrOTPInvalid
		case errors.Is(err, otp.ErrTooManyAttempts):
			return nil, ErrOTPTooManyAttempts
		}
		return nil, err
	}

	// 申请验证码之后又改了邮箱
	if user.Email == nil || *user.Email != email {
		return nil, ErrOTPInvalid
	}

	err = s.userRepo.UpdateFields(ctx, userID, map[string]interface{}{
		"is_verified": true,
		"status":      model.StatusVerified,
	})
	if err != nil {
		return nil, err
	}

	slog.Info("email verified", "user_id", userID)
	if s.publisher != nil {
		evt := &pubsub.PrivilegeEvent{Type: pubsub.EventEmailVerified, UserID: userID}
		if err := s.publisher.Publish(ctx, evt); err != nil {
			slog.Warn("publish email verified failed", "user_id", userID, "error", err)
		}
	}

	return &dto.StatusInfo{Status: model.StatusVerified, IsVerified: true}, nil
}

func mapUserErr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrUserNotFound
	}
	return err
}

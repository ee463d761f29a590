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
	"github.com/qs3c/prv_line_server/internal/repository"
)

const dateLayout = "2006-01-02"

type UserService struct {
	userRepo *repository.UserRepository
}

func NewUserService(userRepo *repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// GetProfile 获取用户详情
func (s *UserService) GetProfile(ctx context.Context, userID int64) (*dto.UserInfo, error) {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return buildUserInfo(user), nil
}

// SaveProfile 填写基本信息。更换邮箱后需要重新验证。
func (s *UserService) SaveProfile(ctx context.Context, userID int64, req *dto.SaveProfileRequest) (*dto.UserInfo, error) {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	taken, err := s.userRepo.ExistsByEmail(ctx, email, userID)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrEmailTaken
	}

	if req.Birthday != "" {
		birthday, err := parseDate(req.Birthday)
		if err != nil {
			return nil, err
		}
		user.Birthday = &birthday
	}

	if user.Email == nil || *user.Email != email {
		user.Email = &email
		user.IsVerified = false
		if user.Status > model.StatusPdpaAccepted {
			user.Status = model.StatusPdpaAccepted
		}
	}

	user.Firstname = strings.TrimSpace(req.Firstname)
	user.Lastname = strings.TrimSpace(req.Lastname)
	user.Mobile = strings.TrimSpace(req.Mobile)
	if user.Status < model.StatusProfileSaved {
		user.Status = model.StatusProfileSaved
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	slog.Info("profile saved", "user_id", userID, "status", user.Status)
	return buildUserInfo(user), nil
}

// GetCardProfile 会员卡页面资料
func (s *UserService) GetCardProfile(ctx context.Context, userID int64) (*dto.CardProfile, error) {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return buildCardProfile(user), nil
}

// UpdateCardProfile fullname 按第一个空格拆分为名和姓
func (s *UserService) UpdateCardProfile(ctx context.Context, userID int64, req *dto.UpdateCardProfileRequest) (*dto.CardProfile, error) {
	firstname, lastname, ok := strings.Cut(strings.TrimSpace(req.Fullname), " ")
	lastname = strings.TrimSpace(lastname)
	if !ok || firstname == "" || lastname == "" {
		return nil, ErrInvalidFullname
	}

	birthday, err := parseDate(req.Birthday)
	if err != nil {
		return nil, err
	}

	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	err = s.userRepo.UpdateFields(ctx, userID, map[string]interface{}{
		"firstname": firstname,
		"lastname":  lastname,
		"birthday":  birthday,
	})
	if err != nil {
		return nil, err
	}

	user.Firstname = firstname
	user.Lastname = lastname
	user.Birthday = &birthday
	return buildCardProfile(user), nil
}

// GetStatus 注册流程状态
func (s *UserService) GetStatus(ctx context.Context, userID int64) (*dto.StatusInfo, error) {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &dto.StatusInfo{Status: user.Status, IsVerified: user.IsVerified}, nil
}

func (s *UserService) getUser(ctx context.Context, userID int64) (*model.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func buildCardProfile(user *model.User) *dto.CardProfile {
	card := &dto.CardProfile{
		Fullname: strings.TrimSpace(user.Firstname + " " + user.Lastname),
		Mobile:   user.Mobile,
	}
	if user.Email != nil {
		card.Email = *user.Email
	}
	if user.Birthday != nil {
		card.Birthday = user.Birthday.Format(dateLayout)
	}
	return card
}

func parseDate(s string) (time.Time, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, ErrInvalidBirthday
	}
	return t, nil
}

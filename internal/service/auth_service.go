package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/oauth2"

	"github.com/qs3c/prv_line_server/config"
	"github.com/qs3c/prv_line_server/internal/model"
	"github.com/qs3c/prv_line_server/internal/model/dto"
	"github.com/qs3c/prv_line_server/internal/pkg/jwt"
	"github.com/qs3c/prv_line_server/internal/pkg/oauth"
	"github.com/qs3c/prv_line_server/internal/repository"
)

// LineProvider LINE Login 授权码流程
type LineProvider interface {
	GetAuthURL(state string) string
	Exchange(ctx context.Context, code string) (*oauth2.Token, error)
	GetProfile(ctx context.Context, token *oauth2.Token) (*oauth.LineProfile, error)
}

type AuthService struct {
	userRepo *repository.UserRepository
	cfg      *config.Config
	line     LineProvider
	states   *oauth.StateStore
}

func NewAuthService(userRepo *repository.UserRepository, cfg *config.Config, states *oauth.StateStore) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		cfg:      cfg,
		line: oauth.NewLineOAuth(
			cfg.Line.ChannelID,
			cfg.Line.ChannelSecret,
			cfg.Line.RedirectURI,
		),
		states: states,
	}
}

// LineLogin LIFF 登录：按 LINE 用户 ID 查找或创建用户并签发 token
func (s *AuthService) LineLogin(ctx context.Context, req *dto.LineLoginRequest) (*dto.LoginResponse, error) {
	return s.login(ctx, &oauth.LineProfile{
		UserID:      req.LineUserID,
		DisplayName: req.DisplayName,
		PictureURL:  req.PictureURL,
	})
}

// GetLineAuthURL 生成 state 并返回 LINE 授权地址
func (s *AuthService) GetLineAuthURL(ctx context.Context, redirectURI string) (string, error) {
	state, err := s.states.GenerateState(ctx, redirectURI)
	if err != nil {
		return "", err
	}
	return s.line.GetAuthURL(state), nil
}

// LineCallback 处理 LINE OAuth 回调，返回登录结果和前端跳转地址
func (s *AuthService) LineCallback(ctx context.Context, code, state string) (*dto.LoginResponse, string, error) {
	redirectURI, err := s.states.ValidateState(ctx, state)
	if err != nil {
		if errors.Is(err, oauth.ErrInvalidState) {
			return nil, "", ErrInvalidState
		}
		return nil, "", err
	}

	token, err := s.line.Exchange(ctx, code)
	if err != nil {
		return nil, "", fmt.Errorf("failed to exchange code: %w", err)
	}

	profile, err := s.line.GetProfile(ctx, token)
	if err != nil {
		return nil, "", fmt.Errorf("failed to get line profile: %w", err)
	}

	resp, err := s.login(ctx, profile)
	if err != nil {
		return nil, "", err
	}
	return resp, redirectURI, nil
}

func (s *AuthService) login(ctx context.Context, profile *oauth.LineProfile) (*dto.LoginResponse, error) {
	user, created, err := s.userRepo.FindOrCreateByLineUserID(ctx, &model.User{
		LineUserID:  profile.UserID,
		DisplayName: profile.DisplayName,
		PictureURL:  profile.PictureURL,
		Status:      model.StatusNew,
	})
	if err != nil {
		return nil, err
	}

	if created {
		slog.Info("line user registered", "user_id", user.ID, "line_user_id", user.LineUserID)
	} else if s.profileChanged(user, profile) {
		// LINE 昵称和头像以最新登录为准
		fields := map[string]interface{}{}
		if profile.DisplayName != "" {
			fields["display_name"] = profile.DisplayName
			user.DisplayName = profile.DisplayName
		}
		if profile.PictureURL != "" {
			fields["picture_url"] = profile.PictureURL
			user.PictureURL = profile.PictureURL
		}
		if err := s.userRepo.UpdateFields(ctx, user.ID, fields); err != nil {
			return nil, err
		}
	}

	token, err := jwt.GenerateToken(user.ID, s.cfg.JWT.Secret, s.cfg.JWT.ExpireHours)
	if err != nil {
		return nil, err
	}

	return &dto.LoginResponse{
		Token: token,
		User:  buildUserInfo(user),
	}, nil
}

func (s *AuthService) profileChanged(user *model.User, profile *oauth.LineProfile) bool {
	return (profile.DisplayName != "" && profile.DisplayName != user.DisplayName) ||
		(profile.PictureURL != "" && profile.PictureURL != user.PictureURL)
}

// GetUserByID 根据 ID 获取用户
func (s *AuthService) GetUserByID(ctx context.Context, id int64) (*model.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

func buildUserInfo(user *model.User) *dto.UserInfo {
	info := &dto.UserInfo{
		ID:          user.ID,
		LineUserID:  user.LineUserID,
		DisplayName: user.DisplayName,
		PictureURL:  user.PictureURL,
		Firstname:   user.Firstname,
		Lastname:    user.Lastname,
		Mobile:      user.Mobile,
		IsVerified:  user.IsVerified,
		Status:      user.Status,
	}

	if user.Email != nil {
		info.Email = *user.Email
	}
	if user.Birthday != nil {
		info.Birthday = user.Birthday.Format(dateLayout)
	}
	if !user.CreatedAt.IsZero() {
		info.CreatedAt = user.CreatedAt.Format(time.RFC3339)
	}

	return info
}

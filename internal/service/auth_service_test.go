package service

import (
	"context"
	"errors"
	"net/url"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
	"gorm.io/gorm"

	"github.com/qs3c/prv_line_server/config"
	"github.com/qs3c/prv_line_server/internal/model/dto"
	"github.com/qs3c/prv_line_server/internal/pkg/jwt"
	"github.com/qs3c/prv_line_server/internal/pkg/oauth"
	"github.com/qs3c/prv_line_server/internal/repository"
	"github.com/qs3c/prv_line_server/internal/testutil"
)

type fakeLine struct {
	profile     *oauth.LineProfile
	exchangeErr error
}

func (f *fakeLine) GetAuthURL(state string) string {
	return "https://access.line.me/oauth2/v2.1/authorize?state=" + state
}

func (f *fakeLine) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	if f.exchangeErr != nil {
		return nil, f.exchangeErr
	}
	return &oauth2.Token{AccessToken: "token-" + code}, nil
}

func (f *fakeLine) GetProfile(ctx context.Context, token *oauth2.Token) (*oauth.LineProfile, error) {
	return f.profile, nil
}

func setupAuth(t *testing.T) (*AuthService, *gorm.DB, *fakeLine) {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	db := testutil.SetupTestDB(t)
	cfg := &config.Config{
		JWT: config.JWTConfig{Secret: "test-secret", ExpireHours: 1},
	}

	svc := NewAuthService(repository.NewUserRepository(db), cfg, oauth.NewStateStore(rdb))
	line := &fakeLine{profile: &oauth.LineProfile{UserID: "Uline123", DisplayName: "Nok", PictureURL: "https://profile.line-scdn.net/a"}}
	svc.line = line
	return svc, db, line
}

func TestAuthService_LineLogin(t *testing.T) {
	svc, _, _ := setupAuth(t)
	ctx := context.Background()

	resp, err := svc.LineLogin(ctx, &dto.LineLoginRequest{LineUserID: "Uliff01", DisplayName: "Ploy"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "Uliff01", resp.User.LineUserID)
	assert.Equal(t, 0, resp.User.Status)

	claims, err := jwt.ParseToken(resp.Token, "test-secret")
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, claims.UserID)

	// 再次登录返回同一用户并更新昵称
	again, err := svc.LineLogin(ctx, &dto.LineLoginRequest{LineUserID: "Uliff01", DisplayName: "Ploy2"})
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, again.User.ID)
	assert.Equal(t, "Ploy2", again.User.DisplayName)

	user, err := svc.GetUserByID(ctx, resp.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ploy2", user.DisplayName)
}

func TestAuthService_LineOAuthFlow(t *testing.T) {
	svc, _, _ := setupAuth(t)
	ctx := context.Background()

	authURL, err := svc.GetLineAuthURL(ctx, "http://localhost:5173/card")
	require.NoError(t, err)

	u, err := url.Parse(authURL)
	require.NoError(t, err)
	state := u.Query().Get("state")
	require.Len(t, state, 64)

	resp, redirect, err := svc.LineCallback(ctx, "auth-code", state)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:5173/card", redirect)
	assert.Equal(t, "Uline123", resp.User.LineUserID)
	assert.Equal(t, "Nok", resp.User.DisplayName)

	// state 只能使用一次
	_, _, err = svc.LineCallback(ctx, "auth-code", state)
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestAuthService_LineCallback_ExchangeFailed(t *testing.T) {
	svc, _, line := setupAuth(t)
	ctx := context.Background()
	line.exchangeErr = errors.New("invalid_grant")

	authURL, err := svc.GetLineAuthURL(ctx, "")
	require.NoError(t, err)
	u, _ := url.Parse(authURL)

	_, _, err = svc.LineCallback(ctx, "bad", u.Query().Get("state"))
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidArgument)
}

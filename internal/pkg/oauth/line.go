package oauth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"golang.org/x/oauth2"
)

const lineProfileURL = "https://api.line.me/v2/profile"

// LineEndpoint LINE Login v2.1
var LineEndpoint = oauth2.Endpoint{
	AuthURL:   "https://access.line.me/oauth2/v2.1/authorize",
	TokenURL:  "https://api.line.me/oauth2/v2.1/token",
	AuthStyle: oauth2.AuthStyleInParams,
}

// LineProfile LINE 用户资料
type LineProfile struct {
	UserID        string `json:"userId"`
	DisplayName   string `json:"displayName"`
	PictureURL    string `json:"pictureUrl"`
	StatusMessage string `json:"statusMessage"`
}

type LineOAuth struct {
	config     *oauth2.Config
	profileURL string
}

func NewLineOAuth(channelID, channelSecret, redirectURI string) *LineOAuth {
	return &LineOAuth{
		config: &oauth2.Config{
			ClientID:     channelID,
			ClientSecret: channelSecret,
			RedirectURL:  redirectURI,
			Scopes:       []string{"profile", "openid"},
			Endpoint:     LineEndpoint,
		},
		profileURL: lineProfileURL,
	}
}

// GetAuthURL 获取 LINE 授权 URL
func (l *LineOAuth) GetAuthURL(state string) string {
	return l.config.AuthCodeURL(state)
}

// Exchange 用授权码换取 access token
func (l *LineOAuth) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	return l.config.Exchange(ctx, code)
}

// GetProfile 获取 LINE 用户资料
func (l *LineOAuth) GetProfile(ctx context.Context, token *oauth2.Token) (*LineProfile, error) {
	client := l.config.Client(ctx, token)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.profileURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to get line profile: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("line api error: %s", string(body))
	}

	var profile LineProfile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, fmt.Errorf("failed to decode line profile: %w", err)
	}
	if profile.UserID == "" {
		return nil, fmt.Errorf("line profile missing userId")
	}

	return &profile, nil
}

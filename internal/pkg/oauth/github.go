package oauth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
)

const defaultAPIBase = "https://api.github.com"

// GithubUser 自动注册所需的资料子集。
// Email 可能为空（用户设为私密），由 auth service 兜底生成 noreply 地址。
type GithubUser struct {
	ID        int64  `json:"id"`
	Login     string `json:"login"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatar_url"`
}

type GithubOAuth struct {
	config  *oauth2.Config
	apiBase string
}

func NewGithubOAuth(clientID, clientSecret, redirectURI string) *GithubOAuth {
	return &GithubOAuth{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURI,
			Scopes:       []string{"user:email"},
			Endpoint:     github.Endpoint,
		},
		apiBase: defaultAPIBase,
	}
}

// GetAuthURL 获取 GitHub 授权 URL，state 由 StateStore 生成
func (g *GithubOAuth) GetAuthURL(state string) string {
	return g.config.AuthCodeURL(state)
}

// Exchange 用授权码换取 access token
func (g *GithubOAuth) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	return g.config.Exchange(ctx, code)
}

// GetUser 拉取注册 VeriFake 账号所需的 GitHub 资料。
// /user 拿不到邮箱时再查一次邮箱列表，取主邮箱。
func (g *GithubOAuth) GetUser(ctx context.Context, token *oauth2.Token) (*GithubUser, error) {
	client := g.config.Client(ctx, token)

	var user GithubUser
	if err := g.getJSON(client, "/user", &user); err != nil {
		return nil, fmt.Errorf("failed to get user info: %w", err)
	}

	if user.Email == "" {
		if email, err := g.primaryEmail(client); err == nil {
			user.Email = email
		}
	}

	return &user, nil
}

func (g *GithubOAuth) primaryEmail(client *http.Client) (string, error) {
	var emails []struct {
		Email   string `json:"email"`
		Primary bool   `json:"primary"`
	}
	if err := g.getJSON(client, "/user/emails", &emails); err != nil {
		return "", err
	}

	for _, e := range emails {
		if e.Primary {
			return e.Email, nil
		}
	}
	if len(emails) > 0 {
		return emails[0].Email, nil
	}
	return "", fmt.Errorf("no email on account")
}

func (g *GithubOAuth) getJSON(client *http.Client, path string, out interface{}) error {
	resp, err := client.Get(g.apiBase + path)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("github api error: %s", string(body))
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

// Package oauth 封装 Epic Games OAuth2 授权码流程的出站调用
package oauth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"LockerLink/internal/conf"
	"LockerLink/pkg/oauth/util"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/tidwall/gjson"
	"golang.org/x/oauth2"
)

// maxErrorBody 上游错误响应体最多保留的字节数
const maxErrorBody = 4096

// ExchangeError 令牌端点返回非成功状态，或请求未能送达（StatusCode 为 0）
type ExchangeError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *ExchangeError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("token exchange failed: %v", e.Err)
	}
	return fmt.Sprintf("token exchange failed (HTTP %d): %s", e.StatusCode, e.Body)
}

func (e *ExchangeError) Unwrap() error { return e.Err }

// AccountIdentity 身份端点返回的账户信息
type AccountIdentity struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	Email       string `json:"email,omitempty"`
}

// Token 授权码交换或刷新后得到的令牌
type Token struct {
	AccessToken      string
	TokenType        string
	RefreshToken     string
	ExpiresAt        time.Time
	RefreshExpiresAt time.Time
	AccountID        string
	DisplayName      string
	Scope            string
}

// Client Epic OAuth 客户端
// 凭据以表单参数方式提交（AuthStyleInParams）
type Client struct {
	config     *oauth2.Config
	accountURL string
	httpClient *http.Client
	log        *log.Helper
}

// NewClient 根据配置创建 OAuth 客户端，proxy_url 非空时所有出站请求走代理
func NewClient(c *conf.OAuth, logger log.Logger) (*Client, error) {
	if c == nil {
		return nil, errors.New("oauth config is nil")
	}
	httpClient, err := util.CreateHTTPClient(c.ProxyURL, c.Timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to create oauth http client: %w", err)
	}
	return &Client{
		config: &oauth2.Config{
			ClientID:     c.ClientID,
			ClientSecret: c.ClientSecret,
			RedirectURL:  c.RedirectURI,
			Scopes:       c.Scopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:   c.AuthURL,
				TokenURL:  c.TokenURL,
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		accountURL: c.AccountURL,
		httpClient: httpClient,
		log:        log.NewHelper(log.With(logger, "module", "pkg/oauth")),
	}, nil
}

func (c *Client) withHTTPClient(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
}

// AuthCodeURL 构建授权地址
// authorize?client_id&redirect_uri&response_type=code&scope&state
func (c *Client) AuthCodeURL(state string) string {
	return c.config.AuthCodeURL(state)
}

// Exchange 用授权码换取令牌，不做重试
func (c *Client) Exchange(ctx context.Context, code string) (*Token, error) {
	tok, err := c.config.Exchange(c.withHTTPClient(ctx), code)
	if err != nil {
		return nil, toExchangeError(err)
	}
	return fromOAuth2(tok), nil
}

// Refresh 使用 refresh token 获取新的访问令牌
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*Token, error) {
	src := c.config.TokenSource(c.withHTTPClient(ctx), &oauth2.Token{
		RefreshToken: refreshToken,
		// 强制立即刷新
		Expiry: time.Unix(1, 0),
	})
	tok, err := src.Token()
	if err != nil {
		return nil, toExchangeError(err)
	}
	out := fromOAuth2(tok)
	if out.RefreshToken == "" {
		out.RefreshToken = refreshToken
	}
	return out, nil
}

// FetchAccount 查询访问令牌所属的账户
// 非 2xx 返回 (nil, nil)：令牌大概率已失效，需要重新绑定
func (c *Client) FetchAccount(ctx context.Context, accessToken string) (*AccountIdentity, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.accountURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.log.Warnw("msg", "account lookup rejected", "status", resp.StatusCode)
		return nil, nil
	}

	return parseAccount(body)
}

// parseAccount 兼容对象与数组两种响应（批量查询接口返回数组）
func parseAccount(body []byte) (*AccountIdentity, error) {
	if !gjson.ValidBytes(body) {
		return nil, errors.New("account response is not valid JSON")
	}
	node := gjson.ParseBytes(body)
	if node.IsArray() {
		node = node.Get("0")
	}
	if !node.IsObject() {
		return nil, errors.New("account response has no account object")
	}
	return &AccountIdentity{
		ID:          firstString(node, "id", "accountId", "account_id"),
		DisplayName: firstString(node, "displayName", "display_name", "name"),
		Email:       node.Get("email").String(),
	}, nil
}

func firstString(node gjson.Result, paths ...string) string {
	for _, p := range paths {
		if v := node.Get(p); v.Exists() && v.String() != "" {
			return v.String()
		}
	}
	return ""
}

func fromOAuth2(tok *oauth2.Token) *Token {
	out := &Token{
		AccessToken:  tok.AccessToken,
		TokenType:    tok.TokenType,
		RefreshToken: tok.RefreshToken,
		ExpiresAt:    tok.Expiry,
	}
	if v, ok := tok.Extra("account_id").(string); ok {
		out.AccountID = v
	}
	if v, ok := tok.Extra("displayName").(string); ok {
		out.DisplayName = v
	}
	if v, ok := tok.Extra("scope").(string); ok {
		out.Scope = v
	}
	if v, ok := tok.Extra("refresh_expires_at").(string); ok {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			out.RefreshExpiresAt = t
		}
	} else if secs, ok := tok.Extra("refresh_expires").(float64); ok && secs > 0 {
		out.RefreshExpiresAt = time.Now().Add(time.Duration(secs) * time.Second)
	}
	return out
}

func toExchangeError(err error) error {
	var re *oauth2.RetrieveError
	if errors.As(err, &re) {
		status := 0
		if re.Response != nil {
			status = re.Response.StatusCode
		}
		body := strings.TrimSpace(string(re.Body))
		if len(body) > maxErrorBody {
			body = body[:maxErrorBody]
		}
		return &ExchangeError{StatusCode: status, Body: body, Err: err}
	}
	return &ExchangeError{Err: err}
}

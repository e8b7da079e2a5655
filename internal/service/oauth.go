package service

import (
	"context"

	"LockerLink/internal/biz"
	"LockerLink/internal/conf"
	pkglog "LockerLink/pkg/log"

	"github.com/go-kratos/kratos/v2/log"
)

// LoginRequest 携带发起绑定的 Discord 用户 ID
type LoginRequest struct {
	DiscordID string `json:"discordId"`
}

// LoginReply 授权地址
type LoginReply struct {
	URL string `json:"url"`
}

// CallbackRequest OAuth 回调参数
type CallbackRequest struct {
	Code  string `json:"code"`
	State string `json:"state"`
}

// CallbackReply 绑定结果
type CallbackReply struct {
	AccountID   string `json:"account_id,omitempty"`
	DisplayName string `json:"display_name,omitempty"`
}

// DebugTokensRequest 查询的用户 ID
type DebugTokensRequest struct {
	ID string `json:"id"`
}

// OAuthService implements the web boundary of the link flow.
type OAuthService struct {
	link   *biz.LinkUsecase
	debug  bool
	logger *pkglog.LogHelper
}

// NewOAuthService creates a new OAuthService instance.
func NewOAuthService(c *conf.Debug, link *biz.LinkUsecase, logger log.Logger) *OAuthService {
	return &OAuthService{
		link:   link,
		debug:  c != nil && c.Tokens,
		logger: pkglog.NewLogHelper(log.With(logger, "module", "service/oauth")),
	}
}

// Login issues an authorization URL for the given Discord user.
func (s *OAuthService) Login(ctx context.Context, req *LoginRequest) (*LoginReply, error) {
	if req.DiscordID == "" {
		return nil, biz.ErrMissingOwner
	}
	url, err := s.link.IssueAuthorizationURL(ctx, req.DiscordID)
	if err != nil {
		s.logger.Errorw("msg", "failed to issue authorization url", "owner_id", req.DiscordID, "error", err)
		return nil, err
	}
	return &LoginReply{URL: url}, nil
}

// Callback redeems the authorization code.
func (s *OAuthService) Callback(ctx context.Context, req *CallbackRequest) (*CallbackReply, error) {
	cred, err := s.link.Redeem(ctx, req.Code, req.State)
	if err != nil {
		return nil, err
	}
	return &CallbackReply{AccountID: cred.AccountID, DisplayName: cred.DisplayName}, nil
}

// DebugTokens returns the stored credential, or an empty object when none exists.
// Closed unless debug.tokens is enabled.
func (s *OAuthService) DebugTokens(ctx context.Context, req *DebugTokensRequest) (interface{}, error) {
	if !s.debug {
		s.logger.Security("debug token endpoint called while disabled", "id", req.ID)
		return nil, biz.ErrDebugDisabled
	}
	if cred := s.link.Credential(ctx, req.ID); cred != nil {
		return cred, nil
	}
	return struct{}{}, nil
}

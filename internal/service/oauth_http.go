package service

import (
	"bytes"
	"context"
	"html/template"
	nethttp "net/http"

	"LockerLink/internal/biz"

	"github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/transport/http"
)

// Operation names, reported by the logging middleware.
const (
	OperationOAuthRoot        = "/lockerlink.OAuth/Root"
	OperationOAuthLogin       = "/lockerlink.OAuth/Login"
	OperationOAuthStart       = "/lockerlink.OAuth/Start"
	OperationOAuthCallback    = "/lockerlink.OAuth/Callback"
	OperationOAuthDebugTokens = "/lockerlink.OAuth/DebugTokens"
)

// RegisterOAuthHTTPServer registers the link flow routes on s.
func RegisterOAuthHTTPServer(s *http.Server, srv *OAuthService) {
	r := s.Route("/")
	r.GET("/", oauthRootHandler())
	r.GET("/login", oauthLoginHandler(srv))
	r.GET("/auth/start", oauthStartHandler(srv))
	r.GET("/auth/callback", oauthCallbackHandler(srv))
	r.GET("/debug/tokens/{id}", oauthDebugTokensHandler(srv))
}

func oauthRootHandler() func(ctx http.Context) error {
	return func(ctx http.Context) error {
		return ctx.String(nethttp.StatusOK, "LockerLink server running.")
	}
}

func oauthLoginHandler(srv *OAuthService) func(ctx http.Context) error {
	return func(ctx http.Context) error {
		in := LoginRequest{DiscordID: ctx.Query().Get("discordId")}
		http.SetOperation(ctx, OperationOAuthLogin)
		h := ctx.Middleware(func(ctx context.Context, req interface{}) (interface{}, error) {
			return srv.Login(ctx, req.(*LoginRequest))
		})
		out, err := h(ctx, &in)
		if err != nil {
			return err
		}
		return ctx.Result(nethttp.StatusOK, out.(*LoginReply))
	}
}

func oauthStartHandler(srv *OAuthService) func(ctx http.Context) error {
	return func(ctx http.Context) error {
		in := LoginRequest{DiscordID: ctx.Query().Get("discordId")}
		http.SetOperation(ctx, OperationOAuthStart)
		h := ctx.Middleware(func(ctx context.Context, req interface{}) (interface{}, error) {
			return srv.Login(ctx, req.(*LoginRequest))
		})
		out, err := h(ctx, &in)
		if err != nil {
			return err
		}
		nethttp.Redirect(ctx.Response(), ctx.Request(), out.(*LoginReply).URL, nethttp.StatusFound)
		return nil
	}
}

func oauthCallbackHandler(srv *OAuthService) func(ctx http.Context) error {
	return func(ctx http.Context) error {
		q := ctx.Query()
		in := CallbackRequest{Code: q.Get("code"), State: q.Get("state")}
		http.SetOperation(ctx, OperationOAuthCallback)
		h := ctx.Middleware(func(ctx context.Context, req interface{}) (interface{}, error) {
			return srv.Callback(ctx, req.(*CallbackRequest))
		})
		if _, err := h(ctx, &in); err != nil {
			return renderCallback(ctx, errors.Code(err), callbackFailureText(err))
		}
		return renderCallback(ctx, nethttp.StatusOK, "")
	}
}

func oauthDebugTokensHandler(srv *OAuthService) func(ctx http.Context) error {
	return func(ctx http.Context) error {
		in := DebugTokensRequest{ID: ctx.Vars().Get("id")}
		http.SetOperation(ctx, OperationOAuthDebugTokens)
		h := ctx.Middleware(func(ctx context.Context, req interface{}) (interface{}, error) {
			return srv.DebugTokens(ctx, req.(*DebugTokensRequest))
		})
		out, err := h(ctx, &in)
		if err != nil {
			return err
		}
		return ctx.Result(nethttp.StatusOK, out)
	}
}

var callbackPage = template.Must(template.New("callback").Parse(`<html>
<body style="font-family: sans-serif;">
{{- if .Failure }}
  <h2>Epic Login Failed</h2>
  <p>{{ .Failure }}</p>
{{- else }}
  <h2>Epic Login Complete ✔️</h2>
  <p>You may now return to Discord.</p>
{{- end }}
</body>
</html>
`))

func renderCallback(ctx http.Context, status int, failure string) error {
	var buf bytes.Buffer
	if err := callbackPage.Execute(&buf, struct{ Failure string }{failure}); err != nil {
		return err
	}
	return ctx.Blob(status, "text/html; charset=utf-8", buf.Bytes())
}

func callbackFailureText(err error) string {
	switch errors.Reason(err) {
	case biz.ReasonMissingParameters:
		return "Missing data."
	case biz.ReasonUnknownOrExpiredState:
		return "Invalid or expired state."
	case biz.ReasonTokenExchangeFailed:
		return "Token exchange failed."
	}
	return "Something went wrong."
}

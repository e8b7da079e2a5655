package service

import (
	"context"
	"encoding/json"
	nethttp "net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"LockerLink/internal/biz"
	"LockerLink/internal/conf"
	"LockerLink/internal/data"
	"LockerLink/pkg/catalog"
	"LockerLink/pkg/oauth"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-kratos/kratos/v2/transport/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newUpstream fakes the token, identity and catalog endpoints.
func newUpstream(t *testing.T) *httptest.Server {
	t.Helper()
	mux := nethttp.NewServeMux()
	mux.HandleFunc("/token", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		_ = r.ParseForm()
		if r.PostForm.Get("code") == "bad" {
			w.WriteHeader(nethttp.StatusBadRequest)
			_, _ = w.Write([]byte(`{"errorCode":"invalid_grant"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"eg1~a","token_type":"bearer","expires_in":7200,"account_id":"acc-1","displayName":"Jonesy"}`))
	})
	mux.HandleFunc("/account", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if r.Header.Get("Authorization") != "Bearer eg1~a" {
			w.WriteHeader(nethttp.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`{"id":"acc-1","displayName":"Jonesy"}`))
	})
	mux.HandleFunc("/cosmetics/acc-1", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		_, _ = w.Write([]byte(`{"accountName":"Jonesy","skins":[
			{"name":"Zeta","rarity":"legendary"},
			{"name":"apple","rarity":"common","icon":"a.png"},
			{"name":"Mango","rarity":"epic"}]}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

type testStack struct {
	oauth     *OAuthService
	bot       *BotService
	paginator *biz.LockerPaginator
	http      *http.Server
}

func setupTestStack(t *testing.T, debug bool) *testStack {
	t.Helper()
	logger := log.DefaultLogger
	up := newUpstream(t)

	oc, err := oauth.NewClient(&conf.OAuth{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		RedirectURI:  "https://lockerlink.test/auth/callback",
		AuthURL:      "https://www.epicgames.com/id/authorize",
		TokenURL:     up.URL + "/token",
		AccountURL:   up.URL + "/account",
		Scopes:       []string{"basic_profile"},
		Timeout:      5 * time.Second,
	}, logger)
	require.NoError(t, err)
	cc, err := catalog.NewClient(&conf.Catalog{URLTemplate: up.URL + "/cosmetics/{accountId}", Timeout: 5 * time.Second}, logger)
	require.NoError(t, err)

	d, cleanup, err := data.NewData(&conf.Discord{}, logger)
	require.NoError(t, err)
	t.Cleanup(cleanup)

	link := biz.NewLinkUsecase(data.NewCredentialRepo(), data.NewPendingAuthorizationRepo(&conf.OAuth{}), oc, nil, logger)
	paginator := biz.NewLockerPaginator(&conf.Locker{}, data.NewLockerSessionRepo(), data.NewDiscordSurface(d), nil, logger)
	locker := biz.NewLockerUsecase(link, cc, paginator, nil, logger)

	st := &testStack{
		oauth:     NewOAuthService(&conf.Debug{Tokens: debug}, link, logger),
		bot:       NewBotService(link, locker, paginator, logger),
		paginator: paginator,
		http:      http.NewServer(),
	}
	RegisterOAuthHTTPServer(st.http, st.oauth)
	return st
}

func (st *testStack) get(path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	st.http.ServeHTTP(rec, httptest.NewRequest(nethttp.MethodGet, path, nil))
	return rec
}

func stateFrom(t *testing.T, rawURL string) string {
	t.Helper()
	u, err := url.Parse(rawURL)
	require.NoError(t, err)
	return u.Query().Get("state")
}

func TestOAuthHTTP_Routes(t *testing.T) {
	st := setupTestStack(t, false)

	rec := st.get("/")
	assert.Equal(t, nethttp.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "running")

	rec = st.get("/login")
	assert.Equal(t, nethttp.StatusBadRequest, rec.Code)

	rec = st.get("/login?discordId=42")
	require.Equal(t, nethttp.StatusOK, rec.Code)
	var reply LoginReply
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &reply))
	assert.Len(t, stateFrom(t, reply.URL), 64)

	rec = st.get("/auth/start?discordId=42")
	assert.Equal(t, nethttp.StatusFound, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Header().Get("Location"), "https://www.epicgames.com/id/authorize?"))

	rec = st.get("/auth/start")
	assert.Equal(t, nethttp.StatusBadRequest, rec.Code)
}

func TestOAuthHTTP_Callback(t *testing.T) {
	st := setupTestStack(t, false)
	ctx := context.Background()

	rec := st.get("/auth/callback?code=abc")
	assert.Equal(t, nethttp.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Missing data.")

	rec = st.get("/auth/callback?code=abc&state=forged")
	assert.Equal(t, nethttp.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid or expired state.")

	login, err := st.oauth.Login(ctx, &LoginRequest{DiscordID: "42"})
	require.NoError(t, err)
	state := stateFrom(t, login.URL)

	rec = st.get("/auth/callback?code=abc&state=" + state)
	assert.Equal(t, nethttp.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Epic Login Complete")
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))

	// 重放
	rec = st.get("/auth/callback?code=abc&state=" + state)
	assert.Equal(t, nethttp.StatusBadRequest, rec.Code)

	login, err = st.oauth.Login(ctx, &LoginRequest{DiscordID: "43"})
	require.NoError(t, err)
	rec = st.get("/auth/callback?code=bad&state=" + stateFrom(t, login.URL))
	assert.Equal(t, nethttp.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "Token exchange failed.")
}

func TestOAuthHTTP_DebugTokens(t *testing.T) {
	closed := setupTestStack(t, false)
	rec := closed.get("/debug/tokens/42")
	assert.Equal(t, nethttp.StatusForbidden, rec.Code)

	open := setupTestStack(t, true)
	rec = open.get("/debug/tokens/42")
	require.Equal(t, nethttp.StatusOK, rec.Code)
	assert.JSONEq(t, `{}`, rec.Body.String())

	ctx := context.Background()
	login, err := open.oauth.Login(ctx, &LoginRequest{DiscordID: "42"})
	require.NoError(t, err)
	_, err = open.oauth.Callback(ctx, &CallbackRequest{Code: "abc", State: stateFrom(t, login.URL)})
	require.NoError(t, err)

	rec = open.get("/debug/tokens/42")
	require.Equal(t, nethttp.StatusOK, rec.Code)
	var cred data.Credential
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cred))
	assert.Equal(t, "eg1~a", cred.AccessToken)
	assert.Equal(t, "acc-1", cred.AccountID)
}

func TestBotService_Commands(t *testing.T) {
	st := setupTestStack(t, false)

	var names []string
	for _, def := range st.bot.Commands() {
		names = append(names, def.Name)
		assert.NotEmpty(t, def.Description)
	}
	assert.Equal(t, []string{"link", "locker", "login", "unlink"}, names)
	assert.True(t, st.bot.Deferred("locker"))
	assert.False(t, st.bot.Deferred("link"))
	assert.False(t, st.bot.Deferred("nope"))

	assert.Nil(t, st.bot.Execute(context.Background(), "nope", &Invocation{OwnerID: "42"}))
}

func TestBotService_LinkAndLogin(t *testing.T) {
	st := setupTestStack(t, false)
	ctx := context.Background()

	reply := st.bot.Execute(ctx, "link", &Invocation{OwnerID: "42"})
	require.NotNil(t, reply)
	assert.True(t, reply.Ephemeral)
	require.Len(t, reply.Buttons, 1)
	assert.Len(t, stateFrom(t, reply.Buttons[0].URL), 64)
	assert.Empty(t, reply.Buttons[0].CustomID)

	reply = st.bot.Execute(ctx, "login", &Invocation{OwnerID: "42"})
	require.Len(t, reply.Embeds, 1)
	assert.Contains(t, reply.Embeds[0].Description, "https://www.epicgames.com/id/authorize?")
}

func TestBotService_Unlink(t *testing.T) {
	st := setupTestStack(t, false)
	ctx := context.Background()

	reply := st.bot.Execute(ctx, "unlink", &Invocation{OwnerID: "42"})
	assert.Contains(t, reply.Content, "do not have a linked")

	login, err := st.oauth.Login(ctx, &LoginRequest{DiscordID: "42"})
	require.NoError(t, err)
	_, err = st.oauth.Callback(ctx, &CallbackRequest{Code: "abc", State: stateFrom(t, login.URL)})
	require.NoError(t, err)

	reply = st.bot.Execute(ctx, "unlink", &Invocation{OwnerID: "42"})
	assert.Contains(t, reply.Content, "successfully **unlinked**")
}

func TestBotService_LockerEndToEnd(t *testing.T) {
	st := setupTestStack(t, false)
	ctx := context.Background()

	reply := st.bot.Execute(ctx, "locker", &Invocation{OwnerID: "42", Surface: "tok"})
	assert.Equal(t, reasonText[biz.ReasonNotLinked], reply.Content)

	link := st.bot.Execute(ctx, "link", &Invocation{OwnerID: "42"})
	_, err := st.oauth.Callback(ctx, &CallbackRequest{Code: "abc", State: stateFrom(t, link.Buttons[0].URL)})
	require.NoError(t, err)

	reply = st.bot.Execute(ctx, "locker", &Invocation{OwnerID: "42", Surface: "tok"})
	require.Len(t, reply.Embeds, 1)
	embed := reply.Embeds[0]
	assert.Equal(t, "Jonesy's Locker", embed.Title)
	assert.Equal(t, "apple", embed.Fields[0].Value)
	assert.Equal(t, "Skin 1 / 3", embed.Footer)
	assert.Equal(t, 0xaaaaaa, embed.Color)
	assert.Equal(t, "a.png", embed.ImageURL)
	require.Len(t, reply.Buttons, 2)
	assert.True(t, reply.Buttons[0].Disabled)
	assert.False(t, reply.Buttons[1].Disabled)

	next := reply.Buttons[1].CustomID
	assert.True(t, strings.HasPrefix(next, "locker:next:"))

	nav := st.bot.Navigate(ctx, next, "42")
	require.NotNil(t, nav)
	assert.True(t, nav.Update)
	assert.Equal(t, "Mango", nav.Embeds[0].Fields[0].Value)
	assert.Equal(t, "Skin 2 / 3", nav.Embeds[0].Footer)

	denied := st.bot.Navigate(ctx, next, "99")
	assert.False(t, denied.Update)
	assert.True(t, denied.Ephemeral)
	assert.Equal(t, reasonText[biz.ReasonNotSessionOwner], denied.Content)

	_, sessionID, ok := ParseLockerCustomID(next)
	require.True(t, ok)
	assert.True(t, st.paginator.Retire(ctx, sessionID))

	retired := st.bot.Navigate(ctx, next, "42")
	assert.True(t, retired.Update)
	assert.True(t, retired.ClearControls)
	assert.Equal(t, reasonText[biz.ReasonSessionRetired], retired.Content)

	assert.Nil(t, st.bot.Navigate(ctx, "other:thing", "42"))
}

func TestParseLockerCustomID(t *testing.T) {
	tests := []struct {
		in      string
		dir     biz.Direction
		session string
		ok      bool
	}{
		{in: "locker:next:abc", dir: biz.Next, session: "abc", ok: true},
		{in: "locker:prev:a:b", dir: biz.Previous, session: "a:b", ok: true},
		{in: "locker:up:abc"},
		{in: "locker:next:"},
		{in: "prev"},
		{in: "shop:next:abc"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			dir, session, ok := ParseLockerCustomID(tt.in)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.dir, dir)
				assert.Equal(t, tt.session, session)
			}
		})
	}
	assert.Equal(t, "locker:prev:s1", LockerCustomID(biz.Previous, "s1"))
}

func TestErrorText(t *testing.T) {
	text, mapped := errorText(biz.ErrEmptyCatalog)
	assert.True(t, mapped)
	assert.Contains(t, text, "No skins")

	text, mapped = errorText(assert.AnError)
	assert.False(t, mapped)
	assert.Equal(t, genericFailure, text)
}

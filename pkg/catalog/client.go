// Package catalog 拉取已绑定账户的外观物品（locker）
//
// 上游响应形态不统一，这里用 gjson 在边界处归一化成 Item 列表：
//
//	{"accountName": "...", "skins": [{"name": "...", "rarity": "epic", "icon": "...", "image": "..."}]}
//	{"displayName": "...", "items": [{"id": "...", "name": "...", "rarity": {"value": "epic"}, "images": {"icon": "..."}}]}
//	{"data": {"items": [...]}}
package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"LockerLink/internal/conf"
	"LockerLink/pkg/oauth/util"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/tidwall/gjson"
)

// URL 模板中的占位符
const (
	PlaceholderAccountID = "{accountId}"
	PlaceholderOwnerID   = "{discordId}"
)

// Item 单个外观物品
type Item struct {
	ID       string
	Name     string
	Rarity   string
	IconURL  string
	ImageURL string
}

// Locker 一次拉取的结果
type Locker struct {
	AccountName string
	Items       []Item
}

// StatusError 上游返回非 2xx
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("catalog request failed (HTTP %d): %s", e.StatusCode, e.Body)
}

// Request 拉取参数
type Request struct {
	OwnerID     string
	AccountID   string
	AccessToken string
}

// Client 外观目录客户端
type Client struct {
	urlTemplate string
	httpClient  *http.Client
	log         *log.Helper
}

// NewClient 创建目录客户端
func NewClient(c *conf.Catalog, logger log.Logger) (*Client, error) {
	if c == nil {
		return nil, errors.New("catalog config is nil")
	}
	httpClient, err := util.CreateHTTPClient(c.ProxyURL, c.Timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to create catalog http client: %w", err)
	}
	return &Client{
		urlTemplate: c.URLTemplate,
		httpClient:  httpClient,
		log:         log.NewHelper(log.With(logger, "module", "pkg/catalog")),
	}, nil
}

// BuildURL 展开 URL 模板
func (c *Client) BuildURL(req *Request) string {
	r := strings.NewReplacer(
		PlaceholderAccountID, url.PathEscape(req.AccountID),
		PlaceholderOwnerID, url.PathEscape(req.OwnerID),
	)
	return r.Replace(c.urlTemplate)
}

// FetchLocker 拉取并归一化物品列表，不做重试
func (c *Client) FetchLocker(ctx context.Context, req *Request) (*Locker, error) {
	endpoint := c.BuildURL(req)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	if req.AccessToken != "" {
		httpReq.Header.Set("Authorization", "Bearer "+req.AccessToken)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet := string(body)
		if len(snippet) > 512 {
			snippet = snippet[:512]
		}
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: snippet}
	}

	locker, err := Parse(body)
	if err != nil {
		return nil, err
	}
	c.log.Debugw("msg", "catalog fetched", "owner_id", req.OwnerID, "items", len(locker.Items))
	return locker, nil
}

// Parse 把上游 JSON 归一化成 Locker
func Parse(body []byte) (*Locker, error) {
	if !gjson.ValidBytes(body) {
		return nil, errors.New("catalog response is not valid JSON")
	}
	root := gjson.ParseBytes(body)

	locker := &Locker{
		AccountName: firstString(root, "accountName", "displayName", "account.displayName"),
	}

	list := firstArray(root, "skins", "items", "data.items", "data")
	for _, raw := range list {
		if !raw.IsObject() {
			continue
		}
		icon := firstString(raw, "icon", "images.icon", "images.smallIcon")
		item := Item{
			ID:      firstString(raw, "id", "templateId"),
			Name:    firstString(raw, "name"),
			Rarity:  rarityOf(raw),
			IconURL: icon,
		}
		item.ImageURL = firstString(raw, "image", "images.featured", "images.large")
		if item.ImageURL == "" {
			item.ImageURL = icon
		}
		locker.Items = append(locker.Items, item)
	}
	return locker, nil
}

func rarityOf(raw gjson.Result) string {
	r := raw.Get("rarity")
	switch {
	case r.Type == gjson.String:
		return r.String()
	case r.IsObject():
		return firstString(r, "value", "displayValue", "id")
	}
	return ""
}

func firstArray(node gjson.Result, paths ...string) []gjson.Result {
	for _, p := range paths {
		if v := node.Get(p); v.IsArray() {
			return v.Array()
		}
	}
	return nil
}

func firstString(node gjson.Result, paths ...string) string {
	for _, p := range paths {
		if v := node.Get(p); v.Exists() && v.Type == gjson.String && v.String() != "" {
			return v.String()
		}
	}
	return ""
}

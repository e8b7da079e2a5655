package catalog

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"LockerLink/internal/conf"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantName string
		want     []Item
	}{
		{
			name:     "skins shape",
			body:     `{"accountName":"Jonesy","skins":[{"name":"Renegade Raider","rarity":"rare","icon":"i.png","image":"f.png"}]}`,
			wantName: "Jonesy",
			want:     []Item{{Name: "Renegade Raider", Rarity: "rare", IconURL: "i.png", ImageURL: "f.png"}},
		},
		{
			name:     "items shape with nested rarity and images",
			body:     `{"displayName":"Peely","items":[{"id":"CID_1","name":"Peely","rarity":{"value":"epic","displayValue":"Epic"},"images":{"icon":"p.png"}}]}`,
			wantName: "Peely",
			want:     []Item{{ID: "CID_1", Name: "Peely", Rarity: "epic", IconURL: "p.png", ImageURL: "p.png"}},
		},
		{
			name: "data wrapper",
			body: `{"data":{"items":[{"name":"Midas"},42]}}`,
			want: []Item{{Name: "Midas"}},
		},
		{
			name:     "empty",
			body:     `{"accountName":"Nobody","skins":[]}`,
			wantName: "Nobody",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			locker, err := Parse([]byte(tt.body))
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, locker.AccountName)
			assert.Equal(t, tt.want, locker.Items)
		})
	}

	_, err := Parse([]byte("<html>"))
	assert.Error(t, err)
}

func TestClient_FetchLocker(t *testing.T) {
	var gotPath, gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		gotAuth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`{"accountName":"Jonesy","skins":[{"name":"A"},{"name":"B"}]}`))
	}))
	defer srv.Close()

	c, err := NewClient(&conf.Catalog{URLTemplate: srv.URL + "/api/cosmetics/{accountId}", Timeout: time.Second}, log.DefaultLogger)
	require.NoError(t, err)

	locker, err := c.FetchLocker(context.Background(), &Request{OwnerID: "42", AccountID: "acc/1", AccessToken: "tok"})
	require.NoError(t, err)
	assert.Len(t, locker.Items, 2)
	assert.Equal(t, "/api/cosmetics/acc%2F1", gotPath)
	assert.Equal(t, "Bearer tok", gotAuth)
}

func TestClient_FetchLockerStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream down"))
	}))
	defer srv.Close()

	c, err := NewClient(&conf.Catalog{URLTemplate: srv.URL + "/api/cosmetics/{discordId}", Timeout: time.Second}, log.DefaultLogger)
	require.NoError(t, err)

	_, err = c.FetchLocker(context.Background(), &Request{OwnerID: "42"})
	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusBadGateway, se.StatusCode)
	assert.Equal(t, "upstream down", se.Body)
}

func TestClient_BuildURL(t *testing.T) {
	c, err := NewClient(&conf.Catalog{URLTemplate: "https://x.test/{discordId}/{accountId}"}, log.DefaultLogger)
	require.NoError(t, err)
	assert.Equal(t, "https://x.test/42/acc-1", c.BuildURL(&Request{OwnerID: "42", AccountID: "acc-1"}))
}

package middleware

import (
	"bytes"
	"context"
	nethttp "net/http"
	"testing"

	pkglog "LockerLink/pkg/log"

	"github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogging_InjectsRequestContext(t *testing.T) {
	var buf bytes.Buffer
	helper := pkglog.NewLogHelper(log.NewStdLogger(&buf))

	var seen string
	h := Logging(helper)(func(ctx context.Context, req interface{}) (interface{}, error) {
		seen = pkglog.GetRequestID(ctx)
		return "ok", nil
	})

	reply, err := h(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "ok", reply)
	assert.Len(t, seen, 10)
	assert.Contains(t, buf.String(), "RequestID: "+seen)
	assert.Contains(t, buf.String(), "- 200")
}

func TestLogging_ErrorStatus(t *testing.T) {
	var buf bytes.Buffer
	helper := pkglog.NewLogHelper(log.NewStdLogger(&buf))

	h := Logging(helper)(func(ctx context.Context, req interface{}) (interface{}, error) {
		return nil, errors.BadRequest("UNKNOWN_OR_EXPIRED_STATE", "state")
	})

	_, err := h(context.Background(), nil)
	assert.Error(t, err)
	assert.Contains(t, buf.String(), "- 400")
}

func TestExtractHTTPStatus(t *testing.T) {
	assert.Equal(t, 200, extractHTTPStatus(nil))
	assert.Equal(t, 403, extractHTTPStatus(errors.Forbidden("DEBUG_DISABLED", "closed")))
	assert.Equal(t, 500, extractHTTPStatus(assert.AnError))
}

func TestExtractClientIP(t *testing.T) {
	tests := []struct {
		name   string
		header map[string]string
		want   string
	}{
		{name: "real ip", header: map[string]string{"X-Real-IP": "10.0.0.1", "X-Forwarded-For": "10.0.0.2"}, want: "10.0.0.1"},
		{name: "forwarded", header: map[string]string{"X-Forwarded-For": "10.0.0.2, 10.0.0.3"}, want: "10.0.0.2"},
		{name: "remote addr", want: "192.0.2.1:1234"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := nethttp.NewRequest(nethttp.MethodGet, "/", nil)
			require.NoError(t, err)
			req.RemoteAddr = "192.0.2.1:1234"
			for k, v := range tt.header {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, extractClientIP(req))
		})
	}
}

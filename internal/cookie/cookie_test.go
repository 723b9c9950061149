package cookie

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/mehmetcc/ppdb/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRead(t *testing.T) {
	tests := []struct {
		name   string
		header string
		key    string
		want   string
		found  bool
	}{
		{name: "second pair", header: "a=1; b=2", key: "b", want: "2", found: true},
		{name: "first pair", header: "a=1; b=2", key: "a", want: "1", found: true},
		{name: "absent", header: "a=1; b=2", key: "c", found: false},
		{name: "irregular spacing", header: "a=1;  b=2", key: "b", want: "2", found: true},
		{name: "no spacing", header: "a=1;b=2", key: "b", want: "2", found: true},
		{name: "tabs and trailing", header: "\ta=1 ;\t b=2 ; ", key: "b", want: "2", found: true},
		{name: "prefix is not a match", header: "auth_token_old=x; auth_tokenx=y", key: "auth_token", found: false},
		{name: "suffix is not a match", header: "xauth_token=x", key: "auth_token", found: false},
		{name: "value with equals", header: "t=abc.def==", key: "t", want: "abc.def==", found: true},
		{name: "empty value", header: "t=; u=1", key: "t", want: "", found: true},
		{name: "percent encoded", header: "name=Siti%20Rahma", key: "name", want: "Siti Rahma", found: true},
		{name: "quoted", header: `q="v1"`, key: "q", want: "v1", found: true},
		{name: "empty header", header: "", key: "a", found: false},
		{name: "bare token", header: "a; b=2", key: "a", found: false},
		{name: "empty name", header: "=1", key: "", found: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Read(tt.header, tt.key)
			assert.Equal(t, tt.found, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestReadFirst_PriorityOrder(t *testing.T) {
	header := "token_dashboard=staff; auth_token=applicant"

	v, name, ok := ReadFirst(header, "auth_token", "token_dashboard")
	require.True(t, ok)
	assert.Equal(t, "applicant", v)
	assert.Equal(t, "auth_token", name)

	v, name, ok = ReadFirst("token_dashboard=staff", "auth_token", "token_dashboard")
	require.True(t, ok)
	assert.Equal(t, "staff", v)
	assert.Equal(t, "token_dashboard", name)

	_, _, ok = ReadFirst("other=1", "auth_token", "token_dashboard")
	assert.False(t, ok)
}

func testCookieConfig() *config.CookieConfig {
	return &config.CookieConfig{Secure: true, SameSite: http.SameSiteLaxMode}
}

func TestSet(t *testing.T) {
	rec := httptest.NewRecorder()
	Set(rec, testCookieConfig(), "auth_token", "tok", time.Now().Add(time.Hour))

	res := rec.Result()
	require.Len(t, res.Cookies(), 1)
	c := res.Cookies()[0]
	assert.Equal(t, "auth_token", c.Name)
	assert.Equal(t, "tok", c.Value)
	assert.Equal(t, "/", c.Path)
	assert.True(t, c.HttpOnly)
	assert.True(t, c.Secure)
	assert.InDelta(t, 3600, c.MaxAge, 2)
}

func TestClear_IsIdempotent(t *testing.T) {
	rec := httptest.NewRecorder()
	cfg := testCookieConfig()
	Clear(rec, cfg, "auth_token")
	Clear(rec, cfg, "auth_token")

	headers := rec.Result().Header.Values("Set-Cookie")
	require.Len(t, headers, 2)
	for _, h := range headers {
		assert.Contains(t, h, "auth_token=;")
		assert.Contains(t, h, "Max-Age=0")
		assert.Contains(t, h, "Path=/")
		assert.True(t, strings.Contains(h, "HttpOnly"))
	}
}

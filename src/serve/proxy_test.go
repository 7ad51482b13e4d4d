package serve

import (
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadProxyConfig(t *testing.T) {
	p := filepath.Join(t.TempDir(), "proxy.conf.json")
	require.NoError(t, os.WriteFile(p, []byte(`{
  "/api": {"target": "http://localhost:3000", "secure": false},
  "/api/v2": {"target": "http://localhost:3001", "pathRewrite": {"^/api/v2": ""}}
}`), 0o644))

	rules, err := LoadProxyConfig(p)
	require.NoError(t, err)
	require.Len(t, rules, 2)
	require.Equal(t, "/api/v2", rules[0].Context)
	require.Equal(t, map[string]string{"^/api/v2": ""}, rules[0].PathRewrite)
	require.Equal(t, "/api", rules[1].Context)
	require.NotNil(t, rules[1].Secure)
	require.False(t, *rules[1].Secure)
}

func TestLoadProxyConfigRequiresTarget(t *testing.T) {
	p := filepath.Join(t.TempDir(), "proxy.yml")
	require.NoError(t, os.WriteFile(p, []byte("/api:\n  secure: true\n"), 0o644))
	_, err := LoadProxyConfig(p)
	require.ErrorContains(t, err, "has no target")
}

func TestProxyHandlerRewritesPath(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, r.URL.Path)
	}))
	defer backend.Close()

	h, err := proxyHandler(ProxyRule{
		Context:      "/api",
		Target:       backend.URL,
		ChangeOrigin: true,
		PathRewrite:  map[string]string{"^/api": "/v1"},
	})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/users", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "/v1/users", rec.Body.String())
}

func TestMatchesContext(t *testing.T) {
	require.True(t, matchesContext("/api", "/api"))
	require.True(t, matchesContext("/api/x", "/api"))
	require.True(t, matchesContext("/api/x", "/api/"))
	require.False(t, matchesContext("/apix", "/api"))
}

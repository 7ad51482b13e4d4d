package serve

import (
	"net"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sofmeright/packwright/src/build"
	"github.com/sofmeright/packwright/src/config"
)

func testPlan(root string) *build.BuildPlan {
	return &build.BuildPlan{
		ProjectRoot: root,
		Platform:    config.PlatformBrowser,
		Options:     build.Options{OutputPath: filepath.Join(root, "dist")},
	}
}

func TestPreflight(t *testing.T) {
	root := t.TempDir()

	require.NoError(t, Preflight(testPlan(root), Options{Host: "127.0.0.1", Port: 0}))

	atRoot := testPlan(root)
	atRoot.Options.OutputPath = root
	require.ErrorIs(t, Preflight(atRoot, Options{}), build.ErrInvalidConfiguration)

	server := testPlan(root)
	server.Platform = config.PlatformServer
	require.ErrorIs(t, Preflight(server, Options{}), build.ErrInvalidConfiguration)

	require.ErrorIs(t, Preflight(testPlan(root), Options{ProxyConfig: "proxy.conf.yml"}), build.ErrMissingDependency)

	require.ErrorIs(t, Preflight(testPlan(root), Options{SSL: true, SSLCert: "cert.pem"}), build.ErrInvalidConfiguration)
	require.NoError(t, os.WriteFile(filepath.Join(root, "key.pem"), nil, 0o600))
	require.ErrorIs(t, Preflight(testPlan(root), Options{SSL: true, SSLKey: "key.pem", SSLCert: "cert.pem"}), build.ErrMissingDependency)
}

func TestCheckPort(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()
	port := ln.Addr().(*net.TCPAddr).Port

	require.ErrorIs(t, CheckPort("127.0.0.1", port), ErrPortInUse)
	require.NoError(t, CheckPort("127.0.0.1", 0))
}

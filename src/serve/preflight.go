package serve

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"syscall"

	"github.com/sofmeright/packwright/src/build"
	"github.com/sofmeright/packwright/src/config"
)

// ErrPortInUse is returned by CheckPort when the port is taken.
var ErrPortInUse = errors.New("port is already in use")

// Preflight rejects configurations the dev server cannot run with. It runs
// before any build work.
func Preflight(plan *build.BuildPlan, opts Options) error {
	if filepath.Clean(plan.Options.OutputPath) == filepath.Clean(plan.ProjectRoot) {
		return &build.InvalidConfigurationError{Violations: []string{"output path must not be the project root"}}
	}
	if plan.Platform == config.PlatformServer {
		return &build.InvalidConfigurationError{Violations: []string{"serving apps with platform server is not supported"}}
	}
	if opts.ProxyConfig != "" {
		p := resolve(plan.ProjectRoot, opts.ProxyConfig)
		if _, err := os.Stat(p); err != nil {
			return &build.MissingDependencyError{Kind: "proxy config", Name: p, Detail: "file does not exist"}
		}
	}
	if opts.SSL {
		for _, f := range []string{opts.SSLKey, opts.SSLCert} {
			if f == "" {
				return &build.InvalidConfigurationError{Violations: []string{"ssl requires both ssl_key and ssl_cert"}}
			}
			p := resolve(plan.ProjectRoot, f)
			if _, err := os.Stat(p); err != nil {
				return &build.MissingDependencyError{Kind: "ssl file", Name: p, Detail: "file does not exist"}
			}
		}
	}
	return CheckPort(opts.Host, opts.Port)
}

// CheckPort verifies host:port can be bound. Port 0 always passes.
func CheckPort(host string, port int) error {
	if port == 0 {
		return nil
	}
	ln, err := net.Listen("tcp", net.JoinHostPort(host, strconv.Itoa(port)))
	if err != nil {
		if errors.Is(err, syscall.EADDRINUSE) {
			return fmt.Errorf("%w: port %d; use --port to specify a different port", ErrPortInUse, port)
		}
		return fmt.Errorf("checking port %d: %w", port, err)
	}
	return ln.Close()
}

func resolve(root, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(root, p)
}

package serve

import (
	"crypto/tls"
	"fmt"
	"net/http"
	"net/http/httputil"
	"net/url"
	"os"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// ProxyRule forwards requests under Context to Target.
type ProxyRule struct {
	Context      string            `yaml:"-"`
	Target       string            `yaml:"target"`
	Secure       *bool             `yaml:"secure"`
	ChangeOrigin bool              `yaml:"changeOrigin"`
	PathRewrite  map[string]string `yaml:"pathRewrite"`
}

// LoadProxyConfig reads a proxy file keyed by path prefix. JSON and YAML are
// both accepted. Rules are returned longest prefix first.
func LoadProxyConfig(path string) ([]ProxyRule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading proxy config: %w", err)
	}
	var raw map[string]ProxyRule
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing proxy config %s: %w", path, err)
	}

	rules := make([]ProxyRule, 0, len(raw))
	for ctx, r := range raw {
		if r.Target == "" {
			return nil, fmt.Errorf("proxy config %s: %q has no target", path, ctx)
		}
		if _, err := url.Parse(r.Target); err != nil {
			return nil, fmt.Errorf("proxy config %s: %q: %w", path, ctx, err)
		}
		r.Context = ctx
		rules = append(rules, r)
	}
	sort.Slice(rules, func(i, j int) bool {
		if len(rules[i].Context) != len(rules[j].Context) {
			return len(rules[i].Context) > len(rules[j].Context)
		}
		return rules[i].Context < rules[j].Context
	})
	return rules, nil
}

// proxyHandler builds the reverse proxy for one rule.
func proxyHandler(r ProxyRule) (http.Handler, error) {
	target, err := url.Parse(r.Target)
	if err != nil {
		return nil, err
	}

	type rewrite struct {
		re   *regexp.Regexp
		repl string
	}
	var rewrites []rewrite
	for _, pattern := range sortedStringKeys(r.PathRewrite) {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("proxy %s: pathRewrite %q: %w", r.Context, pattern, err)
		}
		rewrites = append(rewrites, rewrite{re: re, repl: r.PathRewrite[pattern]})
	}

	rp := &httputil.ReverseProxy{
		Rewrite: func(pr *httputil.ProxyRequest) {
			p := pr.In.URL.Path
			for _, rw := range rewrites {
				p = rw.re.ReplaceAllString(p, rw.repl)
			}
			pr.Out.URL.Path = p
			pr.Out.URL.RawPath = ""
			pr.SetURL(target)
			pr.SetXForwarded()
			if !r.ChangeOrigin {
				pr.Out.Host = pr.In.Host
			}
		},
	}
	if r.Secure != nil && !*r.Secure {
		rp.Transport = &http.Transport{
			Proxy:           http.ProxyFromEnvironment,
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true}, //nolint:gosec
		}
	}
	return rp, nil
}

func matchesContext(path, ctx string) bool {
	return path == ctx || strings.HasPrefix(path, strings.TrimSuffix(ctx, "/")+"/")
}

func sortedStringKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Package serve runs a development server over a build's output with watch
// rebuilds and live reload.
package serve

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httputil"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/evanw/esbuild/pkg/api"
	"github.com/klauspost/compress/gzhttp"
	"github.com/rs/cors"
	"github.com/rs/zerolog"

	"github.com/sofmeright/packwright/src/build"
	"github.com/sofmeright/packwright/src/build/engines"
	"github.com/sofmeright/packwright/src/output"
)

// Options configures the development server.
type Options struct {
	Host             string
	Port             int
	LiveReload       bool
	HMR              bool
	SSL              bool
	SSLKey           string
	SSLCert          string
	ProxyConfig      string
	ServePath        *string // nil derives it from base href and deploy URL
	PublicHost       string
	DisableHostCheck bool

	// Warning toggles from the project defaults.
	HMRWarning       bool
	ServePathWarning bool
}

// Server serves one app's plan.
type Server struct {
	Plan    *build.BuildPlan
	Options Options
	Out     io.Writer
	Color   bool
}

// Run builds the app once, starts the watcher and serves until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	logger := zerolog.Ctx(ctx).With().Str("app", s.Plan.App).Logger()
	o := s.Options
	plan := s.Plan

	if err := Preflight(plan, o); err != nil {
		return err
	}

	servePath, ok := ResolveServePath(o.ServePath, plan.Options.BaseHref, plan.Options.DeployURL)
	if !ok && o.ServePathWarning {
		fmt.Fprintf(s.Out, "%s deploy_url and/or base_href contain unsupported values for serve. Default serve path of '/' used. Use --serve-path to override.\n", warn("WARNING", s.Color))
	}
	s.notices()

	var proxies []proxyRoute
	if o.ProxyConfig != "" {
		rules, err := LoadProxyConfig(resolve(plan.ProjectRoot, o.ProxyConfig))
		if err != nil {
			return err
		}
		for _, r := range rules {
			h, err := proxyHandler(r)
			if err != nil {
				return err
			}
			proxies = append(proxies, proxyRoute{context: r.Context, handler: h})
		}
	}

	engine, err := build.Get(plan.Engine)
	if err != nil {
		return err
	}
	unhashEntries(plan)
	if _, err := engine.Execute(ctx, plan); err != nil {
		return fmt.Errorf("initial build: %w", err)
	}

	bctx, cerr := api.Context(watchOptions(plan, servePath, o.LiveReload))
	if cerr != nil {
		return fmt.Errorf("creating watch context: %s", contextErrorText(cerr))
	}
	defer bctx.Dispose()

	if err := bctx.Watch(api.WatchOptions{}); err != nil {
		return fmt.Errorf("starting watcher: %w", err)
	}
	res, err := bctx.Serve(api.ServeOptions{Servedir: plan.Options.OutputPath, Host: "127.0.0.1"})
	if err != nil {
		return fmt.Errorf("starting bundler server: %w", err)
	}
	upstream, err := url.Parse(fmt.Sprintf("http://127.0.0.1:%v", res.Port))
	if err != nil {
		return err
	}
	logger.Debug().Str("upstream", upstream.String()).Msg("bundler server started")

	srv := &http.Server{
		Addr:              net.JoinHostPort(o.Host, strconv.Itoa(o.Port)),
		Handler:           s.handler(upstream, servePath, proxies),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if o.SSL {
			errCh <- srv.ListenAndServeTLS(resolve(plan.ProjectRoot, o.SSLCert), resolve(plan.ProjectRoot, o.SSLKey))
			return
		}
		errCh <- srv.ListenAndServe()
	}()

	fmt.Fprintf(s.Out, "\n    ** Live development server is listening on %s, open your browser on %s **\n\n",
		srv.Addr, s.address(servePath))

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// unhashEntries drops the hash from entry bundle names. The index page is
// rendered once, so watch rebuilds must keep writing to the names it links.
func unhashEntries(plan *build.BuildPlan) {
	plan.Hashing.Chunk = false
	plan.Hashing.Extract = false
}

// watchOptions derives the watcher's esbuild options from a plan that has
// already been built once.
func watchOptions(plan *build.BuildPlan, servePath string, liveReload bool) api.BuildOptions {
	// Rebuilds must not wipe copied assets.
	plan.Options.DeleteOutputPath = false
	opts := engines.BuildOptions(plan)
	if liveReload {
		opts.Banner = map[string]string{"js": liveReloadSnippet(servePath)}
	}
	return opts
}

// notices prints the warnings the chosen options call for.
func (s *Server) notices() {
	o := s.Options
	if o.DisableHostCheck {
		fmt.Fprintf(s.Out, "%s Running a server with --disable-host-check is a security risk.\n", warn("WARNING", s.Color))
	}
	if o.HMR {
		if !o.LiveReload {
			fmt.Fprintln(s.Out, warn("Live reload is disabled. HMR option ignored.", s.Color))
		} else {
			fmt.Fprintf(s.Out, "%s Hot Module Replacement (HMR) is not available with this bundler; full page live reload is used.\n", warn("NOTICE", s.Color))
			if o.HMRWarning {
				fmt.Fprintln(s.Out, "  Set defaults.warnings.hmr_warning to false to hide this notice.")
			}
		}
	}
	if s.Plan.Options.Target == build.TargetProduction {
		fmt.Fprintln(s.Out, warn(productionWarning, s.Color))
	}
}

const productionWarning = `****************************************************************************************
This is a simple server for use in testing or debugging applications locally.
It hasn't been reviewed for security issues.

DON'T USE IT FOR PRODUCTION!
****************************************************************************************`

func (s *Server) address(servePath string) string {
	scheme := "http"
	if s.Options.SSL {
		scheme = "https"
	}
	servePath = strings.TrimSuffix(servePath, "/")
	if ph := s.Options.PublicHost; ph != "" {
		if strings.Contains(ph, "://") {
			return strings.TrimSuffix(ph, "/") + servePath + "/"
		}
		return fmt.Sprintf("%s://%s%s/", scheme, ph, servePath)
	}
	host := s.Options.Host
	if host == "0.0.0.0" || host == "" {
		host = "localhost"
	}
	return fmt.Sprintf("%s://%s%s/", scheme, net.JoinHostPort(host, strconv.Itoa(s.Options.Port)), servePath)
}

type proxyRoute struct {
	context string
	handler http.Handler
}

// handler routes requests: host check, proxy rules, then the app under
// servePath with index fallback for page navigations. Responses allow any
// origin and are gzipped when the client accepts it, except event streams.
func (s *Server) handler(upstream *url.URL, servePath string, proxies []proxyRoute) http.Handler {
	// The proxy flushes text/event-stream responses as they arrive, which
	// keeps the live reload channel open.
	app := httputil.NewSingleHostReverseProxy(upstream)
	prefix := strings.TrimSuffix(servePath, "/")
	outDir := s.Plan.Options.OutputPath
	index := "index.html"
	if s.Plan.Index != "" {
		index = filepath.Base(s.Plan.Index)
	}

	routes := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for _, p := range proxies {
			if matchesContext(r.URL.Path, p.context) {
				p.handler.ServeHTTP(w, r)
				return
			}
		}

		rel := r.URL.Path
		if prefix != "" {
			if rel != prefix && !strings.HasPrefix(rel, prefix+"/") {
				http.NotFound(w, r)
				return
			}
			rel = strings.TrimPrefix(rel, prefix)
		}
		if rel == "" {
			rel = "/"
		}
		if wantsPage(r) && !fileExists(filepath.Join(outDir, filepath.FromSlash(path.Clean(rel)))) {
			rel = "/" + index
		}

		out := r.Clone(r.Context())
		out.URL.Path = rel
		out.URL.RawPath = ""
		app.ServeHTTP(w, out)
	})

	var h http.Handler = routes
	if gz, err := gzhttp.NewWrapper(gzhttp.ExceptContentTypes([]string{"text/event-stream"})); err == nil {
		h = gz(h)
	}
	h = cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{
			http.MethodGet, http.MethodHead, http.MethodPost, http.MethodPut,
			http.MethodPatch, http.MethodDelete,
		},
		AllowedHeaders: []string{"*"},
	}).Handler(h)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.Options.DisableHostCheck && !s.allowedHost(r.Host) {
			http.Error(w, "Invalid Host header", http.StatusForbidden)
			return
		}
		h.ServeHTTP(w, r)
	})
}

// allowedHost accepts loopback names, IP literals, the bind host and the
// public host.
func (s *Server) allowedHost(hostport string) bool {
	host := hostport
	if h, _, err := net.SplitHostPort(hostport); err == nil {
		host = h
	}
	host = strings.Trim(host, "[]")
	if host == "localhost" || host == s.Options.Host || net.ParseIP(host) != nil {
		return true
	}
	if ph := s.Options.PublicHost; ph != "" {
		if !strings.Contains(ph, "://") {
			ph = "http://" + ph
		}
		if u, err := url.Parse(ph); err == nil && u.Hostname() == host {
			return true
		}
	}
	return false
}

// wantsPage reports whether r is a browser navigation rather than an asset
// request.
func wantsPage(r *http.Request) bool {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		return false
	}
	accept := r.Header.Get("Accept")
	return strings.Contains(accept, "text/html") || strings.Contains(accept, "application/xhtml+xml")
}

func fileExists(p string) bool {
	fi, err := os.Stat(p)
	return err == nil && !fi.IsDir()
}

// liveReloadSnippet reloads the page when the bundler reports a rebuild.
// Split chunks each carry it, so only the first one subscribes.
func liveReloadSnippet(servePath string) string {
	endpoint := strings.TrimSuffix(servePath, "/") + "/esbuild"
	return fmt.Sprintf(`if(typeof window!=="undefined"&&!window.__packwrightReload){window.__packwrightReload=new EventSource(%q);window.__packwrightReload.addEventListener("change",function(){location.reload()})}`, endpoint)
}

func contextErrorText(cerr *api.ContextError) string {
	if len(cerr.Errors) == 0 {
		return "unknown error"
	}
	return cerr.Errors[0].Text
}

func warn(text string, color bool) string {
	return output.Colorize(text, output.ColorYellow, color)
}

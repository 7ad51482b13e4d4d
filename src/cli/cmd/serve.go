package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sofmeright/packwright/src/output"
	"github.com/sofmeright/packwright/src/serve"
)

var (
	serveOpts buildFlags
	serveApp  string

	serveHost             string
	servePort             int
	serveLiveReload       bool
	serveHMR              bool
	serveSSL              bool
	serveSSLKey           string
	serveSSLCert          string
	serveProxyConfig      string
	servePath             string
	servePublicHost       string
	serveDisableHostCheck bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Build an app and serve it with live reload",
	Long: `Build an app, watch its sources and serve the output.

The serve path defaults to a combination of base href and deploy URL when
both are compatible, and to / otherwise. Proxy rules are read from the
--proxy-config YAML file.`,
	RunE: runServe,
}

func init() {
	serveOpts.register(serveCmd.Flags())
	f := serveCmd.Flags()
	f.StringVarP(&serveApp, "app", "a", "", "app to serve (default: the first app)")
	f.StringVarP(&serveHost, "host", "H", "", "host to listen on (default: defaults.serve.host)")
	f.IntVarP(&servePort, "port", "p", 0, "port to listen on (default: defaults.serve.port)")
	f.BoolVar(&serveLiveReload, "live-reload", true, "reload the page after each rebuild")
	f.BoolVar(&serveHMR, "hmr", false, "request hot module replacement")
	f.BoolVar(&serveSSL, "ssl", false, "serve over https")
	f.StringVar(&serveSSLKey, "ssl-key", "", "TLS key file")
	f.StringVar(&serveSSLCert, "ssl-cert", "", "TLS certificate file")
	f.StringVar(&serveProxyConfig, "proxy-config", "", "proxy rules file")
	f.StringVar(&servePath, "serve-path", "", "path the app is served under")
	f.StringVar(&servePublicHost, "public-host", "", "URL the browser client should use")
	f.BoolVar(&serveDisableHostCheck, "disable-host-check", false, "accept any Host header")

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	apps, err := cfg.SelectApps(optionalName(serveApp))
	if err != nil {
		return err
	}
	// One server serves one app.
	apps = apps[:1]
	plans, _, err := planApps(ctx, cmd, &serveOpts, apps)
	if err != nil {
		return err
	}

	opts := serve.Options{
		Host:             cfg.Defaults.Serve.Host,
		Port:             cfg.Defaults.Serve.Port,
		LiveReload:       serveLiveReload,
		HMR:              serveHMR,
		SSL:              serveSSL,
		SSLKey:           serveSSLKey,
		SSLCert:          serveSSLCert,
		ProxyConfig:      serveProxyConfig,
		PublicHost:       servePublicHost,
		DisableHostCheck: serveDisableHostCheck,
		HMRWarning:       cfg.GetBool("defaults.warnings.hmr_warning", true),
		ServePathWarning: cfg.GetBool("defaults.warnings.serve_path_default", true),
	}
	if cmd.Flags().Changed("host") {
		opts.Host = serveHost
	}
	if cmd.Flags().Changed("port") {
		opts.Port = servePort
	}
	if cmd.Flags().Changed("serve-path") {
		opts.ServePath = &servePath
	}

	color := output.UseColor()
	if verbose {
		output.PlanSection(os.Stdout, plans[0], color)
	}

	srv := &serve.Server{Plan: plans[0], Options: opts, Out: os.Stdout, Color: color}
	return srv.Run(ctx)
}

package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/yaklabco/goscramble/internal/configloader"
	"github.com/yaklabco/goscramble/internal/logging"
	"github.com/yaklabco/goscramble/internal/ui/pretty"
	"github.com/yaklabco/goscramble/pkg/config"
	"github.com/yaklabco/goscramble/pkg/fetch"
	"github.com/yaklabco/goscramble/pkg/proxy"
)

// shutdownTimeout bounds how long in-flight requests may run after a
// termination signal.
const shutdownTimeout = 10 * time.Second

// errFailedConfig marks configuration loading failures for exit code
// mapping.
var errFailedConfig = errors.New("failed to load configuration")

type serveFlags struct {
	listen      string
	defaultURL  string
	allowlist   []string
	honeypot    bool
	keepScripts bool
	mixed       bool
	timeout     time.Duration
}

func newServeCommand() *cobra.Command {
	flags := &serveFlags{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the scrambling proxy server",
		Long: `Run an HTTP server that fetches pages and serves them scrambled.

The server answers requests of the form /?url=<target>. Links in served
pages are rewritten to route back through the proxy, so browsing stays
scrambled. Only the default URL, the serving host, and allowlisted hosts
may be scrambled.

Examples:
  goscramble serve                                 # Listen on :8000
  goscramble serve --listen :9000
  goscramble serve --default-url https://en.wikipedia.org/
  goscramble serve --allow en.wikipedia.org --allow example.org
  goscramble serve --honeypot                      # Trap mode`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, flags)
		},
	}

	cmd.Flags().StringVar(&flags.listen, "listen", "", "address to listen on (default :8000)")
	cmd.Flags().StringVar(&flags.defaultURL, "default-url", "", "page scrambled when a request names no url")
	cmd.Flags().StringSliceVar(&flags.allowlist, "allow", nil, "hostname that may be scrambled (repeatable)")
	cmd.Flags().BoolVar(&flags.honeypot, "honeypot", false, "confine browsing to this server and block unscrambleable content")
	cmd.Flags().BoolVar(&flags.keepScripts, "keep-scripts", false, "leave JavaScript in scrambled pages")
	cmd.Flags().BoolVar(&flags.mixed, "mixed-letters", false, "shuffle consonants and vowels together")
	cmd.Flags().DurationVar(&flags.timeout, "timeout", 0, "upstream fetch timeout (default 30s)")

	return cmd
}

func runServe(cmd *cobra.Command, flags *serveFlags) error {
	cfg, err := loadConfig(cmd, &config.Config{
		Listen:     flags.listen,
		DefaultURL: flags.defaultURL,
		Allowlist:  flags.allowlist,
		Honeypot:   flags.honeypot,
		Timeout:    config.Duration(flags.timeout),
	})
	if err != nil {
		return err
	}

	// Booleans whose interesting override is "off" cannot ride the
	// merge; apply them only when the flag was given.
	if cmd.Flags().Changed("keep-scripts") {
		cfg.SuppressScripts = !flags.keepScripts
	}
	if cmd.Flags().Changed("mixed-letters") {
		cfg.MixedLetters = flags.mixed
	}

	logging.SetLevel(cfg.LogLevel)
	logger := logging.Default()

	fetcher := fetch.New(
		fetch.WithTimeout(cfg.Timeout.Std()),
		fetch.WithMaxBodyBytes(cfg.MaxBodyBytes),
	)
	handler := proxy.NewHandler(cfg, fetcher)

	server := &http.Server{
		Addr:        cfg.Listen,
		Handler:     handler,
		ReadTimeout: 30 * time.Second,
		BaseContext: func(net.Listener) context.Context {
			return logging.WithLogger(context.Background(), logger)
		},
	}

	colorMode, _ := cmd.Flags().GetString("color")
	banner := pretty.NewServeBanner(pretty.IsColorEnabled(colorMode, os.Stdout))
	fmt.Fprintln(cmd.OutOrStdout(), banner.Render(cfg))

	logger.Info("listening",
		logging.FieldListen, cfg.Listen,
		logging.FieldHoneypot, cfg.Honeypot,
		logging.FieldSuppressScripts, cfg.EffectiveSuppressScripts(),
	)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// loadConfig resolves the final configuration for a command, honoring
// the persistent --config flag and the CLI overrides in cliCfg.
func loadConfig(cmd *cobra.Command, cliCfg *config.Config) (*config.Config, error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, fmt.Errorf("get config flag: %w", err)
	}

	workDir, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("get working directory: %w", err)
	}

	loadResult, err := configloader.Load(ctx, configloader.LoadOptions{
		WorkingDir:   workDir,
		ExplicitPath: configPath,
		CLIConfig:    cliCfg,
	})
	if err != nil {
		return nil, errors.Join(errFailedConfig, err)
	}

	if len(loadResult.LoadedFrom) > 0 {
		logging.Default().Debug("loaded configuration from",
			logging.FieldConfig, loadResult.LoadedFrom)
	}

	return loadResult.Config, nil
}

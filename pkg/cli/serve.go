package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/lwalder/veille/pkg/cli/config"
	httpctrl "github.com/lwalder/veille/pkg/controller/http"
	"github.com/lwalder/veille/pkg/registry"
	"github.com/lwalder/veille/pkg/service/ratelimit"
	"github.com/lwalder/veille/pkg/service/source"
	"github.com/lwalder/veille/pkg/usecase"
	"github.com/lwalder/veille/pkg/utils/logging"
)

// buildAdapters instantiates the adapter for each cataloged source. The
// adapter set is closed at compile time; a cataloged name without an
// implementation here stays dispatchable but always fails with a
// per-source error.
func buildAdapters(reg *registry.Registry) []source.Adapter {
	var adapters []source.Adapter
	for _, cfg := range reg.AllSources() {
		switch cfg.Name {
		case "twitter":
			adapters = append(adapters, source.NewTwitter(cfg))
		case "newsapi":
			adapters = append(adapters, source.NewNewsAPI(cfg))
		case "pressrss":
			adapters = append(adapters, source.NewRSS(cfg))
		default:
			logging.Default().Warn("no adapter implementation for source",
				"source", cfg.Name)
		}
	}
	return adapters
}

func cmdServe(version string) *cli.Command {
	var addr string
	var devMode bool
	var authCfg config.Auth
	var sourcesCfg config.Sources
	var transitCfg config.Transit
	var feedCfg config.Feed

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "HTTP server address",
			Value:       ":8080",
			Sources:     cli.EnvVars("VEILLE_ADDR"),
			Destination: &addr,
		},
		&cli.BoolFlag{
			Name:        "dev",
			Usage:       "Expose internal error messages in responses (development only)",
			Sources:     cli.EnvVars("VEILLE_DEV"),
			Destination: &devMode,
		},
	}

	// Add shared config flags
	flags = append(flags, authCfg.Flags()...)
	flags = append(flags, sourcesCfg.Flags()...)
	flags = append(flags, transitCfg.Flags()...)
	flags = append(flags, feedCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start HTTP server",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			if !authCfg.IsConfigured() {
				return goerr.New("at least one role API key is required: set --admin-api-key, --internal-api-key or --readonly-api-key")
			}

			reg, err := sourcesCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to load source catalog")
			}
			logging.Default().Info("source catalog loaded",
				"total", reg.Len(), "active", reg.ActiveNames(), "auth", authCfg)

			limiter := ratelimit.New()
			runner := source.NewRunner(limiter, buildAdapters(reg))
			uc := usecase.New(reg, runner, authCfg.Secrets(), limiter)

			httpOpts := []httpctrl.Options{
				httpctrl.WithDevMode(devMode),
				httpctrl.WithVersion(version),
			}
			if devMode {
				logging.Default().Warn("Running in dev mode, internal errors are exposed to clients")
			}

			if transitCfg.IsConfigured() {
				httpOpts = append(httpOpts, httpctrl.WithTransit(transitCfg.Configure()))
				logging.Default().Info("transit proxy enabled", "transit", transitCfg)
			} else {
				logging.Default().Info("transit API key not configured, departures endpoint disabled")
			}

			if feedCfg.IsConfigured() {
				httpOpts = append(httpOpts, httpctrl.WithFeed(feedCfg.Configure()))
				logging.Default().Info("feed proxy enabled", "feed", feedCfg)
			} else {
				logging.Default().Info("feed token not configured, feed endpoint disabled")
			}

			server := &http.Server{
				Addr:              addr,
				Handler:           httpctrl.New(uc, reg, httpOpts...),
				ReadHeaderTimeout: 30 * time.Second,
			}

			// Setup signal handling for graceful shutdown
			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

			errCh := make(chan error, 1)
			go func() {
				logging.Default().Info("Starting HTTP server", "addr", addr, "dev", devMode)
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					errCh <- goerr.Wrap(err, "failed to start server")
				}
			}()

			select {
			case err := <-errCh:
				return err
			case sig := <-sigCh:
				logging.Default().Info("Received shutdown signal", "signal", sig)

				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()

				if err := server.Shutdown(shutdownCtx); err != nil {
					return goerr.Wrap(err, "failed to shutdown server gracefully")
				}

				logging.Default().Info("Server shutdown completed")
				return nil
			}
		},
	}
}

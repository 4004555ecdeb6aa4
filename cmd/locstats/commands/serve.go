package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/locstats/pkg/dataset"
	"github.com/Sumatoshi-tech/locstats/pkg/observability"
	"github.com/Sumatoshi-tech/locstats/pkg/server"
)

type serveCommand struct {
	host  string
	port  int
	watch bool
}

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	sc := &serveCommand{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the JSON API, the WebSocket slider and the live report",
		Long: `Start an HTTP server exposing:
  GET /                 HTML report (?progress=0..100, ?theme=dark|light)
  GET /api/summary      headline statistics and languages
  GET /api/commits      every commit in chronological order
  GET /api/files        largest files (?limit=N)
  GET /api/window       history as of ?cutoff=, ?progress= or ?step=
  GET /api/selection    commits inside ?x0&y0&x1&y1 on a ?width x ?height chart
  GET /ws/window        WebSocket answering each slider position
  GET /metrics          Prometheus metrics
  GET /healthz          readiness`,
		Args: cobra.NoArgs,
		RunE: sc.run,
	}

	cmd.Flags().StringVar(&sc.host, "host", "", "Listen host (default: server.host)")
	cmd.Flags().IntVarP(&sc.port, "port", "p", 0, "Listen port (default: server.port)")
	cmd.Flags().BoolVarP(&sc.watch, "watch", "w", false, "Reload when the line log changes (default: watch.enabled)")

	return cmd
}

func (sc *serveCommand) run(cmd *cobra.Command, _ []string) error {
	env, err := loadEnvironment(cmd, observability.ModeServe)
	if err != nil {
		return err
	}

	if cmd.Flags().Changed("host") {
		env.cfg.Server.Host = sc.host
	}

	if cmd.Flags().Changed("port") {
		env.cfg.Server.Port = sc.port
	}

	if cmd.Flags().Changed("watch") {
		env.cfg.Watch.Enabled = sc.watch
	}

	validateErr := env.cfg.Validate()
	if validateErr != nil {
		return validateErr
	}

	obsCfg, err := observabilityConfig(env.cfg, observability.ModeServe, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	providers, err := observability.Init(obsCfg)
	if err != nil {
		return err
	}

	defer func() {
		shutdownErr := providers.Shutdown(context.Background())
		if shutdownErr != nil {
			providers.Logger.Warn("observability shutdown failed", "error", shutdownErr)
		}
	}()

	env.logger = providers.Logger

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	loader := env.loader()

	if env.cfg.Watch.Enabled {
		watchErr := loader.Watch(ctx, dataset.WatchOptions{
			Debounce: env.cfg.Watch.Debounce,
			OnInvalidate: func() {
				env.logger.InfoContext(ctx, "line log changed, reloading", "path", env.cfg.Input.Path)

				_, loadErr := loader.Initialize(ctx)
				if loadErr != nil && ctx.Err() == nil {
					env.logger.WarnContext(ctx, "reload failed", "error", loadErr)
				}
			},
		})
		if watchErr != nil {
			return watchErr
		}
	}

	opts, err := reportOptions(env.cfg)
	if err != nil {
		return err
	}

	srv, err := server.New(loader, server.Options{
		Config: env.cfg.Server,
		Report: opts,
		Logger: env.logger,
		Tracer: providers.Tracer,
	})
	if err != nil {
		return err
	}

	return srv.Run(ctx)
}

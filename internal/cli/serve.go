package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/matzehuels/impred/pkg/observability"
	"github.com/matzehuels/impred/pkg/server"
	"github.com/matzehuels/impred/pkg/store"
)

const defaultAddr = ":8080"

type serveFlags struct {
	addr     string
	mongoURI string
	mongoDB  string
	maxNodes int
	timeout  time.Duration
	cache    cacheOptions
}

// serveCommand creates the serve command, which runs the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var flags serveFlags

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the layout API over HTTP",
		Long: `Serve the layout API over HTTP.

Runs are kept in memory unless --mongo names a MongoDB deployment. Metrics
for the engine, cache and HTTP layer are exported at /metrics.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), flags)
		},
	}

	cmd.Flags().StringVar(&flags.addr, "addr", defaultAddr, "listen address")
	cmd.Flags().StringVar(&flags.mongoURI, "mongo", "", "MongoDB URI for run storage (default: in memory)")
	cmd.Flags().StringVar(&flags.mongoDB, "mongo-db", store.DefaultDatabase, "MongoDB database")
	cmd.Flags().IntVar(&flags.maxNodes, "max-nodes", server.DefaultMaxNodes, "largest accepted graph")
	cmd.Flags().DurationVar(&flags.timeout, "timeout", server.DefaultRequestTimeout, "per-request layout timeout")
	flags.cache.register(cmd)

	return cmd
}

func (c *CLI) runServe(ctx context.Context, flags serveFlags) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	registerHooks(observability.NewPrometheus(reg))
	defer observability.Reset()

	runner, err := c.newRunner(ctx, flags.cache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	st, err := c.newStore(ctx, flags)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := st.Close(closeCtx); err != nil {
			c.Logger.Warn("close store", "error", err)
		}
	}()

	srv := server.New(server.Options{
		Runner:         runner,
		Store:          st,
		Logger:         c.Logger,
		Gatherer:       reg,
		MaxNodes:       flags.maxNodes,
		RequestTimeout: flags.timeout,
	})
	printInfo("Serving on %s", StyleValue.Render(flags.addr))
	printKeyValue("store", storeKind(flags))
	printKeyValue("cache", cacheKind(flags.cache))
	printKeyValue("metrics", flags.addr+"/metrics")
	return srv.ListenAndServe(ctx, flags.addr)
}

func (c *CLI) newStore(ctx context.Context, flags serveFlags) (store.Store, error) {
	if flags.mongoURI == "" {
		return store.NewMemoryStore(), nil
	}
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	st, err := store.NewMongoStore(connectCtx, store.MongoConfig{
		URI:      flags.mongoURI,
		Database: flags.mongoDB,
	})
	if err != nil {
		return nil, fmt.Errorf("open run store: %w", err)
	}
	c.Logger.Debug("using mongo store", "database", flags.mongoDB)
	return st, nil
}

// registerHooks installs p for every observability hook.
func registerHooks(p *observability.Prometheus) {
	observability.SetEngineHooks(p)
	observability.SetPipelineHooks(p)
	observability.SetCacheHooks(p)
	observability.SetHTTPHooks(p)
}

func storeKind(flags serveFlags) string {
	if flags.mongoURI == "" {
		return "memory"
	}
	return "mongo (" + flags.mongoDB + ")"
}

func cacheKind(opts cacheOptions) string {
	var kind string
	switch {
	case opts.disabled:
		return "disabled"
	case opts.redisAddr != "":
		kind = "redis (" + opts.redisAddr + ")"
	default:
		kind = "file"
	}
	if opts.scope != "" {
		kind += ", scope " + opts.scope
	}
	return kind
}

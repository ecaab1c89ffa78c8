package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"distress/internal/api"
	"distress/internal/config"
	"distress/internal/controller"
	"distress/internal/dom"
	"distress/internal/helpers"
	"distress/internal/logging"
	"distress/internal/progress"
	"distress/internal/trace"
)

// client is everything one command needs, wired from config.
type client struct {
	cfg     *config.Config
	logger  *slog.Logger
	tracing *trace.Provider
	api     *api.Client
	doc     *dom.Document
	ctrl    *controller.SessionUI
	events  chan progress.Event // nil unless requested
}

type wireOptions struct {
	logOut  io.Writer
	docOpts []dom.Option
	events  bool
}

// loadConfig reads .env and the environment, then applies flags set on cmd.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(flags.envFile)
	if err != nil {
		return nil, err
	}
	f := cmd.Flags()
	if f.Changed("server") {
		cfg.ServerURL = flags.server
	}
	if f.Changed("lat") || f.Changed("lng") {
		if err := cfg.SetLocation(flags.latitude, flags.longitude); err != nil {
			return nil, err
		}
	}
	if f.Changed("recipient") {
		cfg.Recipient = flags.recipient
	}
	if f.Changed("nearest-helper") {
		cfg.HelperLookup = flags.helpers
	}
	if f.Changed("log-level") {
		cfg.LogLevel = flags.logLevel
	}
	return cfg, cfg.Validate()
}

func wire(ctx context.Context, cfg *config.Config, o wireOptions) (*client, error) {
	logger, err := logging.New(o.logOut, cfg.LogFormat, cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	tp, err := trace.NewProvider(ctx, trace.Config{
		Endpoint:    cfg.OTLPEndpoint,
		ServiceName: cfg.ServiceName,
		Insecure:    true,
	})
	if err != nil {
		return nil, fmt.Errorf("tracing: %w", err)
	}

	ac, err := api.New(cfg.ServerURL,
		api.WithTracerProvider(tp.TracerProvider()),
		api.WithLogger(logger),
	)
	if err != nil {
		return nil, err
	}

	var dir helpers.Directory = helpers.Static(cfg.Recipient)
	if cfg.HelperLookup {
		dir = &helpers.Nearest{
			Lister:   ac,
			RadiusKM: cfg.HelperRadiusKM,
			Fallback: helpers.Static(cfg.Recipient),
			Logger:   logger,
		}
	}

	c := &client{cfg: cfg, logger: logger, tracing: tp, api: ac, doc: dom.NewDocument(o.docOpts...)}
	opts := []controller.Option{
		controller.WithLocator(cfg.Locator()),
		controller.WithDirectory(dir),
		controller.WithLogger(logger),
	}
	if o.events {
		c.events = make(chan progress.Event, 64)
		opts = append(opts, controller.WithEmitter(&progress.ChanEmitter{Ch: c.events}))
	}
	c.ctrl = controller.New(ac, c.doc, opts...)

	logger.Info("client ready",
		"server", cfg.ServerURL,
		"location", cfg.HasLocation,
		"nearest_helper", cfg.HelperLookup,
		"tracing", tp.Enabled(),
	)
	return c, nil
}

func (c *client) close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := c.tracing.Shutdown(ctx); err != nil {
		c.logger.Warn("trace shutdown", "error", err)
	}
}

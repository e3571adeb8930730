package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sghaida/manufactory/diag"
	"github.com/sghaida/manufactory/internal/config"
	"github.com/sghaida/manufactory/internal/logging"
	"github.com/sghaida/manufactory/manufactory"
)

const shutdownTimeout = 10 * time.Second

var errInvalid = errors.New("manifest is invalid")

// Flags hold their parsed value, so every command gets fresh instances.

func manifestFlag() cli.Flag {
	return &cli.StringFlag{
		Name:     "manifest",
		Aliases:  []string{"m"},
		Required: true,
		Usage:    "Path to the YAML wiring manifest",
	}
}

func formatFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"f"},
		Value:   "text",
		Usage:   "Output format: text, yaml or json",
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp().Run(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:  "mfcheck",
		Usage: "Validate, explain and serve manufactory wiring manifests",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "env-file",
				Value: ".env",
				Usage: "Optional .env file with MANUFACTORY_* settings",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Overrides MANUFACTORY_LOG_LEVEL (debug, info, warn, error)",
			},
		},
		Commands: []*cli.Command{
			validateCmd(),
			explainCmd(),
			serveCmd(),
		},
	}
}

func validateCmd() *cli.Command {
	return &cli.Command{
		Name:  "validate",
		Usage: "Check a manifest and build a manufactory from it",
		Description: `Loads the manifest, registers every type as a named producer, seals the
component against its declared exports and imports, and, when the component
has no imports left, creates a manufactory (running primary and required
productions). Exits non-zero when any step fails.`,
		Flags: []cli.Flag{manifestFlag(), formatFlag()},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			report, _, err := runAnalysis(cmd)
			if err != nil {
				return err
			}
			if err := writeReport(cmd.Root().Writer, report, cmd.String("format")); err != nil {
				return err
			}
			if !report.OK() {
				return errInvalid
			}
			return nil
		},
	}
}

func explainCmd() *cli.Command {
	return &cli.Command{
		Name:  "explain",
		Usage: "Print the types, construction order and problems of a manifest",
		Flags: []cli.Flag{manifestFlag(), formatFlag()},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			report, _, err := runAnalysis(cmd)
			if err != nil {
				return err
			}
			return writeReport(cmd.Root().Writer, report, cmd.String("format"))
		},
	}
}

func serveCmd() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Create the manufactory and serve its diagnostics over HTTP",
		Flags: []cli.Flag{
			manifestFlag(),
			&cli.StringFlag{
				Name:  "addr",
				Usage: "Listen address; defaults to MANUFACTORY_DIAG_ADDR",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, log, err := setup(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			m, err := loadManifest(cmd.String("manifest"))
			if err != nil {
				return err
			}

			metrics := manufactory.NewMetrics(cfg.MetricsNamespace)
			report, mf := analyze(m, manufactory.WithLogger(log), manufactory.WithMetrics(metrics))
			if mf == nil {
				_ = writeReport(cmd.Root().ErrWriter, report, "text")
				return errInvalid
			}

			addr := cmd.String("addr")
			if addr == "" {
				addr = cfg.DiagAddr
			}
			srv := &http.Server{
				Addr:              addr,
				Handler:           diag.NewHandler(mf, diag.WithLogger(log), diag.WithMetrics(metrics)).Routes(),
				ReadHeaderTimeout: 5 * time.Second,
			}
			return serve(ctx, srv, log)
		},
	}
}

// serve runs srv until ctx is done, then shuts it down gracefully.
func serve(ctx context.Context, srv *http.Server, log *zap.Logger) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("serving diagnostics", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		log.Info("shutting down diagnostics")
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func runAnalysis(cmd *cli.Command) (*Report, *manufactory.Manufactory, error) {
	_, log, err := setup(cmd)
	if err != nil {
		return nil, nil, err
	}
	defer func() { _ = log.Sync() }()

	m, err := loadManifest(cmd.String("manifest"))
	if err != nil {
		return nil, nil, err
	}
	report, mf := analyze(m, manufactory.WithLogger(log))
	return report, mf, nil
}

func setup(cmd *cli.Command) (*config.Config, *zap.Logger, error) {
	cfg := config.Load(cmd.String("env-file"))
	if lvl := cmd.String("log-level"); lvl != "" {
		cfg.LogLevel = lvl
	}
	log, err := logging.New(cfg)
	if err != nil {
		return nil, nil, err
	}
	return cfg, log, nil
}

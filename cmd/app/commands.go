package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"Cephu/internal/di"
	"Cephu/internal/domain/models"
	"Cephu/pkg/config"
	applogger "Cephu/pkg/logger"
	"Cephu/pkg/server"
	"Cephu/pkg/tracing"
	"Cephu/pkg/ux"
)

const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

// Global flags shared by every command.
type globalFlags struct {
	configPath string
	out        string
	format     string
	refresh    int
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	g := &globalFlags{}
	root := &cobra.Command{
		Use:           "cephu",
		Short:         "Futures basis and technical analysis charts from Yahoo Finance data",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return fmt.Errorf("%w: %v", models.ErrInvalidInput, err)
	})

	pf := root.PersistentFlags()
	pf.StringVar(&g.configPath, "config", "config/config.yaml", "config file path")
	pf.StringVar(&g.out, "out", "", "output file; a directory part overrides output.dir")
	pf.StringVar(&g.format, "format", "", "artifact format: html or png (overrides output.format)")
	pf.IntVar(&g.refresh, "refresh", -1, "meta refresh seconds for HTML pages, 0 disables")

	root.AddCommand(
		newBasisCmd(g),
		newAnalysisCmd(g),
		newServeCmd(g),
	)
	return root
}

// execute runs the CLI and maps the outcome to a process exit code.
func execute(args []string, stdout, stderr io.Writer) int {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	root := newRootCmd(stdout, stderr)
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	if err != nil {
		ux.Failure(stderr, err)
	}
	return exitCode(err)
}

func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, models.ErrInvalidInput):
		return exitUsage
	default:
		return exitFailure
	}
}

// loadConfig reads the config file and applies the global flag overrides.
func (g *globalFlags) loadConfig() (*config.Config, error) {
	cfg, err := config.LoadWithEnv(g.configPath)
	if err != nil {
		return nil, err
	}
	if dir := filepath.Dir(g.out); g.out != "" && dir != "." {
		cfg.Output.Dir = dir
	}
	switch {
	case g.format != "":
		cfg.Output.Format = g.format
	case strings.EqualFold(filepath.Ext(g.out), ".png"):
		cfg.Output.Format = string(models.FormatPNG)
	}
	if g.refresh >= 0 {
		cfg.Output.RefreshSeconds = g.refresh
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrInvalidInput, err)
	}
	return cfg, nil
}

// fileName is the --out base name, empty when the config default applies.
func (g *globalFlags) fileName() string {
	if g.out == "" {
		return ""
	}
	return filepath.Base(g.out)
}

// session is one initialized application plus everything that must be torn down after it.
type session struct {
	app     *server.App
	cleanup func()
	tracing func(context.Context) error
}

func (g *globalFlags) open(ctx context.Context, stderr io.Writer) (*session, error) {
	cfg, err := g.loadConfig()
	if err != nil {
		return nil, err
	}
	shutdown, err := tracing.Init(ctx, tracing.Config{
		ServiceName: cfg.Tracing.ServiceName,
		Environment: cfg.Environment,
		Exporter:    cfg.Tracing.Exporter,
		Writer:      stderr,
	})
	if err != nil {
		return nil, fmt.Errorf("tracing: %w", err)
	}
	app, cleanup, err := di.InitializeApp(cfg)
	if err != nil {
		_ = shutdown(ctx)
		return nil, fmt.Errorf("initialize: %w", err)
	}
	return &session{app: app, cleanup: cleanup, tracing: shutdown}, nil
}

func (s *session) close() {
	if err := s.app.Close(); err != nil {
		s.app.Logger().Warn("app close", applogger.Error(err))
	}
	s.cleanup()
	_ = s.tracing(context.Background())
}

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/spf13/cobra"
	"github.com/stewi1014/glstress/config"
	"go.uber.org/zap"
)

func init() {
	// GLFW and OpenGL calls must come from the main thread.
	runtime.LockOSThread()
}

func main() {
	if err := execute(context.Background(), newRootCommand(), os.Stderr); err != nil {
		os.Exit(1)
	}
}

// execute runs cmd, printing any error it returns to stderr.
func execute(ctx context.Context, cmd *cobra.Command, stderr io.Writer) error {
	cmd.SetErr(stderr)
	err := cmd.ExecuteContext(ctx)
	if err != nil {
		fmt.Fprintln(stderr, "Error:", err)
	}
	return err
}

func newRootCommand() *cobra.Command {
	var configFile string

	cmd := &cobra.Command{
		Use:   "glstress",
		Short: "Max out CPU, GPU and RAM until 'q' is pressed",
		Long: "glstress opens a window and, on any key press, loads every logical core with\n" +
			"arithmetic, continuously rewrites a large memory buffer and renders a fractal\n" +
			"shader every frame. Press 'q' in the window to stop.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, configFile)
			if err != nil {
				return err
			}

			log, err := newLogger(cfg.Debug)
			if err != nil {
				return err
			}
			defer log.Sync()

			printBanner(cmd.OutOrStdout())
			return run(cmd.Context(), cfg, log)
		},
	}

	cmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (yaml, toml or json)")
	config.AddFlags(cmd.Flags())
	cmd.AddCommand(newRenderCommand())

	return cmd
}

func loadConfig(cmd *cobra.Command, file string) (config.Config, error) {
	v, err := config.New(cmd.Flags(), file)
	if err != nil {
		return config.Config{}, err
	}
	return config.Load(v)
}

func newLogger(debug bool) (*zap.SugaredLogger, error) {
	cfg := zap.NewProductionConfig()
	if debug {
		cfg = zap.NewDevelopmentConfig()
	}

	log, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("building logger failed: %w", err)
	}
	return log.Sugar(), nil
}

func run(ctx context.Context, cfg config.Config, log *zap.SugaredLogger) error {
	mainContext, mainQuit := context.WithCancelCause(ctx)
	defer mainQuit(nil)

	app, err := NewApplication(mainContext, cfg, log)
	if err != nil {
		log.Errorw("startup failed", "err", err)
		if !cfg.NoDialog {
			NewErrorDialog(log, err)
		}
		return err
	}
	defer app.Destroy()

	if cfg.MetricsAddr != "" {
		go serveMetrics(mainContext, mainQuit, cfg.MetricsAddr, app, log)
	}
	go app.stats.Report(mainContext, log, cfg.ReportInterval, app.Stressing)

	app.Run(mainQuit)

	<-mainContext.Done()
	if err := context.Cause(mainContext); err != nil && !errors.Is(err, context.Canceled) {
		log.Errorw("exiting", "err", err)
		return err
	}
	return nil
}

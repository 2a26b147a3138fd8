package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"kbshell/app"
	"kbshell/hal"
	"kbshell/internal/buildinfo"
	"kbshell/internal/config"
	"kbshell/internal/log"

	"github.com/alecthomas/kong"
	kongtoml "github.com/alecthomas/kong-toml"
	kongyaml "github.com/alecthomas/kong-yaml"
)

type CLI struct {
	ConfigFile string           `name:"config" help:"Config file (json, yaml or toml)" env:"KBSHELL_CONFIG"`
	Version    kong.VersionFlag `help:"Print the version and exit"`
	Log        config.Log       `embed:"" prefix:"log."`

	Run    RunCmd         `cmd:"" default:"withargs" help:"Start the shell (default)"`
	Config config.Command `cmd:"" help:"Configuration helpers"`
}

// RunCmd boots the OS on the selected host backend.
type RunCmd struct {
	config.Shell `embed:""`
}

func (r *RunCmd) Run(logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	cfg := app.Config{Prompt: r.Prompt, Banner: r.Banner, StepBudget: r.StepBudget}
	err := hal.Run(ctx, func(h hal.HAL) func() error {
		return app.New(h, cfg)
	}, hal.RunConfig{
		Backend: hal.Backend(r.Backend),
		Hz:      r.Hz,
		Ticks:   r.Ticks,
		Logger:  logger,
	})
	// The runner has already restored the terminal; kong exits with the
	// fault's status.
	var fault *app.FaultError
	if errors.As(err, &fault) {
		logger.Error("task fault", "task", fault.Info.TaskID, "tick", fault.Info.Tick, "value", fault.Info.Value)
		return err
	}
	if ctx.Err() != nil {
		logger.Info("shutting down", "cause", context.Cause(ctx))
		return nil
	}
	return err
}

func main() {
	userCfg := config.FindUserConfig(os.Args[1:])
	jsonPaths, yamlPaths, tomlPaths := config.ConfigCandidatePaths(userCfg)

	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("kbshell"),
		kong.Description("Line-editing console on a cooperative kernel"),
		kong.UsageOnError(),
		kong.Vars{"version": buildinfo.String()},
		// Load configuration from JSON/YAML/TOML in priority order; flags/env override config values.
		kong.Configuration(kong.JSON, jsonPaths...),
		kong.Configuration(kongyaml.Loader, yamlPaths...),
		kong.Configuration(kongtoml.Loader, tomlPaths...),
	)

	logger, closeFiles, err := log.SetupLogger(cli.Log.Level, cli.Log.File, logConsole(hal.Backend(cli.Run.Backend)))
	if err != nil {
		_, _ = os.Stderr.WriteString("failed to setup logger: " + err.Error() + "\n")
		os.Exit(2)
	}
	slog.SetDefault(logger)

	ctx.Bind(logger)
	err = ctx.Run()
	for _, c := range closeFiles {
		_ = c.Close()
	}
	ctx.FatalIfErrorf(err)
}

// logConsole keeps the terminal free of log lines when a backend draws on it.
func logConsole(b hal.Backend) log.Console {
	switch b {
	case hal.BackendTTY, hal.BackendScreen:
		return log.Console{}
	case hal.BackendHeadless:
		return log.Console{Out: os.Stderr, Err: os.Stderr}
	default:
		return log.StdConsole
	}
}

package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	flag "github.com/spf13/pflag"
	"go.uber.org/automaxprocs/maxprocs"

	mdpress "github.com/inkforge/mdpress"
	"github.com/inkforge/mdpress/internal/config"
	"github.com/inkforge/mdpress/internal/themes"
)

// Version is set at build time via ldflags.
var Version = "dev"

func main() {
	os.Exit(realMain(os.Args[1:], DefaultEnv()))
}

// realMain runs the CLI and returns the process exit code.
func realMain(args []string, env *Environment) int {
	flags, inputs, err := parseFlags(args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return ExitSuccess
		}
		fmt.Fprintln(env.Stderr, err)
		return ExitUsage
	}

	if flags.version {
		fmt.Fprintf(env.Stdout, "mdpress %s\n", Version)
		return ExitSuccess
	}
	if flags.listThemes {
		for _, name := range themes.Themes() {
			fmt.Fprintln(env.Stdout, name)
		}
		return ExitSuccess
	}

	cfg, err := config.Load(flags.common.config)
	if err != nil {
		fmt.Fprintf(env.Stderr, "%v%s\n", err, hintFor(err))
		return exitCodeFor(err)
	}

	log := setupLogging(cfg.Log, flags.common.quiet, flags.common.verbose)

	// Align GOMAXPROCS with the container CPU quota. Error ignored:
	// maxprocs.Set only fails on an invalid GOMAXPROCS env value, in which
	// case runtime defaults apply and the program continues safely.
	_, _ = maxprocs.Set(maxprocs.Logger(log.Debugf))

	if len(inputs) == 0 {
		fmt.Fprintln(env.Stderr, ErrNoInput)
		printUsage(env.Stderr)
		return ExitIO
	}

	ctx, stop := notifyContext(context.Background())
	defer stop()

	pool := mdpress.NewPool(mdpress.PoolConfig{
		Workers:           mdpress.ResolveWorkers(pickInt(flags.pool.workers, cfg.Pool.Workers)),
		SurfacesPerWorker: pickInt(flags.pool.surfaces, cfg.Pool.SurfacesPerWorker),
	}, poolOptions(cfg, log)...)
	defer func() {
		if cerr := pool.Close(); cerr != nil {
			log.WithError(cerr).Warn("pool shutdown reported errors")
		}
	}()

	conv := mdpress.NewConverter(pool, mdpress.WithLogger(log))

	if err := runConvert(ctx, inputs, flags, cfg, conv, pool.Capacity(), env); err != nil {
		fmt.Fprintf(env.Stderr, "%v%s\n", err, hintFor(err))
		return exitCodeFor(err)
	}
	return ExitSuccess
}

// poolOptions maps browser config to pool options.
func poolOptions(cfg *config.Config, log *logrus.Logger) []mdpress.PoolOption {
	opts := []mdpress.PoolOption{mdpress.WithPoolLogger(log)}
	if cfg.Browser.Bin != "" {
		opts = append(opts, mdpress.WithBrowserBin(cfg.Browser.Bin))
	}
	if cfg.Browser.NoSandbox {
		opts = append(opts, mdpress.WithNoSandbox(true))
	}
	return opts
}

// pickInt returns the flag value when set, the config value otherwise.
func pickInt(flagVal, cfgVal int) int {
	if flagVal > 0 {
		return flagVal
	}
	return cfgVal
}

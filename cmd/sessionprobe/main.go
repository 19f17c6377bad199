// Command sessionprobe builds a session for every configured upstream and
// probes each one concurrently. It exits non-zero if any probe fails.
//
//	sessionprobe --config ./config.yml --path /health --timeout 5s
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/pflag"

	"github.com/juniofirstpay/httpsessions/bootstrap"
	"github.com/juniofirstpay/httpsessions/config"
	"github.com/juniofirstpay/httpsessions/session"
	"github.com/juniofirstpay/httpsessions/version"
)

const serviceName = "sessionprobe"

func main() {
	os.Exit(run(context.Background(), os.Args[1:]))
}

type options struct {
	configFile  string
	envFile     string
	path        string
	timeout     time.Duration
	concurrency int
	version     bool
}

func parseFlags(args []string) (options, error) {
	var o options
	flags := pflag.NewFlagSet(serviceName, pflag.ContinueOnError)
	flags.StringVarP(&o.configFile, "config", "c", "", "path to config.yml (searched for when empty)")
	flags.StringVar(&o.envFile, "env-file", "", "path to a .env file (searched for when empty)")
	flags.StringVarP(&o.path, "path", "p", "/health", "path requested on every origin")
	flags.DurationVarP(&o.timeout, "timeout", "t", 10*time.Second, "per-probe timeout")
	flags.IntVar(&o.concurrency, "concurrency", 8, "maximum probes in flight")
	flags.BoolVar(&o.version, "version", false, "print version and exit")
	if err := flags.Parse(args); err != nil {
		return o, err
	}
	if o.concurrency < 1 {
		return o, fmt.Errorf("--concurrency must be at least 1")
	}
	return o, nil
}

func run(ctx context.Context, args []string) int {
	opts, err := parseFlags(args)
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	if opts.version {
		fmt.Println(serviceName, version.Get())
		return 0
	}

	var loaderOpts []config.LoaderOption
	if opts.configFile != "" {
		loaderOpts = append(loaderOpts, config.WithConfigFile(opts.configFile))
	}
	if opts.envFile != "" {
		loaderOpts = append(loaderOpts, config.WithEnvFile(opts.envFile))
	}

	var cfg probeConfig
	if err := config.Load(serviceName, &cfg, loaderOpts...); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", serviceName, err)
		return 1
	}

	if cfg.Version == "" {
		cfg.Version = version.Get().Version
	}
	app, err := bootstrap.NewApp(&cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", serviceName, err)
		return 1
	}

	registry, err := newRegistry(app, cfg.Sessions)
	if err != nil {
		app.Logger.Error("Session setup failed", map[string]any{"error": err.Error()})
		return 1
	}

	prober := &prober{
		registry:    registry,
		log:         app.Logger.WithComponent("probe"),
		path:        opts.path,
		timeout:     opts.timeout,
		concurrency: opts.concurrency,
	}
	err = app.RunTask(ctx, func(ctx context.Context) error {
		_, err := prober.probeAll(ctx)
		return err
	})
	if err != nil {
		app.Logger.Error("Probe run failed", map[string]any{"error": err.Error()})
		return 1
	}
	return 0
}

func newRegistry(app *bootstrap.App[*probeConfig], sessions []session.Config) (*session.Registry, error) {
	registry := session.NewRegistry(session.WithLogger(app.Logger.WithComponent("sessions")))
	for _, sc := range sessions {
		if err := registry.Add(sc); err != nil {
			return nil, err
		}
	}
	if err := app.RegisterComponent(registry); err != nil {
		return nil, err
	}
	return registry, nil
}

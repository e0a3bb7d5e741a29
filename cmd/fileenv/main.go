package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kingpin/v2"
	"go.uber.org/zap"

	"github.com/eugenenazirov/fileenv/internal/application"
	"github.com/eugenenazirov/fileenv/internal/config"
	"github.com/eugenenazirov/fileenv/internal/logging"
)

var signalNotify = signal.Notify

func main() {
	kingpinApp := kingpin.New("fileenv", "Resolve environment configuration with file indirection - variables bearing the configured suffix name files whose contents become the value")
	configFile := kingpinApp.Flag("config", "Path to YAML configuration file").String()
	prefix := kingpinApp.Flag("prefix", "Environment variable prefix to select and strip").String()
	suffix := kingpinApp.Flag("suffix", "Suffix marking variables whose value is a file path").String()
	profile := kingpinApp.Flag("profile", "Profile tag attached to the resolved mapping").String()
	onlyStr := kingpinApp.Flag("only", "Comma-separated logical keys to keep (suffixed variants included)").String()
	ignoreStr := kingpinApp.Flag("ignore", "Comma-separated logical keys to drop (suffixed variants included)").String()
	format := kingpinApp.Flag("format", "Output format: yaml or json").String()
	allowMissing := kingpinApp.Flag("allow-missing", "Skip pointer entries whose file does not exist").Bool()
	watch := kingpinApp.Flag("watch", "Keep running and re-print when a referenced file changes").Bool()
	minInterval := kingpinApp.Flag("min-interval", "Minimum delay between re-resolutions in watch mode").Duration()
	verbose := kingpinApp.Flag("verbose", "Enable debug logging").Short('v').Bool()

	kingpin.MustParse(kingpinApp.Parse(os.Args[1:]))

	overrides := &config.CLIOverrides{
		ConfigFile: *configFile,
	}

	if *prefix != "" {
		overrides.Prefix = prefix
	}

	if *suffix != "" {
		overrides.Suffix = suffix
	}

	if *profile != "" {
		overrides.Profile = profile
	}

	if *onlyStr != "" {
		overrides.OnlyStr = onlyStr
	}

	if *ignoreStr != "" {
		overrides.IgnoreStr = ignoreStr
	}

	if *format != "" {
		overrides.Format = format
	}

	if *allowMissing {
		overrides.AllowMissing = allowMissing
	}

	if *watch {
		overrides.Watch = watch
	}

	if *minInterval > 0 {
		overrides.MinInterval = minInterval
	}

	if *verbose {
		overrides.Verbose = verbose
	}

	cfg, err := config.Load(overrides)
	if err != nil {
		panic(fmt.Sprintf("failed to load configuration: %v", err))
	}

	logger, err := logging.NewConsole(cfg.Verbose)
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer func() {
		_ = logger.Sync()
	}()

	app := application.New(cfg, logger, os.Stdout)

	if cfg.Watch {
		ctx, cancel := watchContext(context.Background())
		defer cancel()
		if err := app.RunWatch(ctx); err != nil {
			logger.Fatal("watch failed", zap.Error(err))
		}
		return
	}

	if err := app.RunOnce(); err != nil {
		logger.Fatal("resolution failed", zap.Error(err))
	}
}

// watchContext returns a context cancelled on SIGINT/SIGTERM.
func watchContext(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)

	quit := make(chan os.Signal, 1)
	signalNotify(quit, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case <-quit:
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}

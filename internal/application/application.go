package application

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/eugenenazirov/fileenv"
	"github.com/eugenenazirov/fileenv/internal/config"
)

// App encapsulates the resolver built from the tool configuration and the
// output destination.
type App struct {
	cfg      config.Config
	resolver fileenv.Resolvable
	logger   *zap.Logger
	out      io.Writer
}

// document is the rendered shape of a resolved mapping.
type document struct {
	Profile string            `yaml:"profile" json:"profile"`
	Values  map[string]string `yaml:"values" json:"values"`
}

// New wires a resolver over the process environment from the provided
// configuration.
func New(cfg config.Config, logger *zap.Logger, out io.Writer) *App {
	return &App{
		cfg:      cfg,
		resolver: buildResolver(cfg, logger),
		logger:   logger,
		out:      out,
	}
}

// buildResolver assembles source, suffix, and restrictions in the order the
// library requires: the suffix must be fixed before Only/Ignore derive their
// suffixed key sets from it.
func buildResolver(cfg config.Config, logger *zap.Logger) fileenv.Resolvable {
	src := fileenv.Env(cfg.Prefix)
	if cfg.Profile != "" {
		src = src.WithProfile(cfg.Profile)
	}

	resolver := fileenv.New(src).
		WithSuffix(cfg.Suffix).
		WithLogger(logger)
	if cfg.AllowMissing {
		resolver = resolver.AllowMissing()
	}

	if len(cfg.Only) == 0 && len(cfg.Ignore) == 0 {
		return resolver
	}

	var restricted fileenv.Restricted
	switch {
	case len(cfg.Only) > 0:
		restricted = resolver.Only(cfg.Only...)
		if len(cfg.Ignore) > 0 {
			restricted = restricted.Ignore(cfg.Ignore...)
		}
	default:
		restricted = resolver.Ignore(cfg.Ignore...)
	}
	return restricted
}

// RunOnce resolves the environment a single time and renders the mapping.
func (a *App) RunOnce() error {
	mapping, err := a.resolver.Resolve()
	if err != nil {
		return fmt.Errorf("resolve environment: %w", err)
	}
	return a.render(mapping)
}

// RunWatch renders the initial mapping, then re-renders whenever a referenced
// file changes, until the context is cancelled.
func (a *App) RunWatch(ctx context.Context) error {
	watcher, err := fileenv.Watch(a.resolver,
		func(mapping fileenv.Mapping) {
			if err := a.render(mapping); err != nil {
				a.logger.Error("failed to render mapping", zap.Error(err))
			}
		},
		fileenv.WithWatchLogger(a.logger),
		fileenv.WithMinInterval(a.cfg.MinInterval),
	)
	if err != nil {
		return fmt.Errorf("start watching: %w", err)
	}
	defer func() {
		if closeErr := watcher.Close(); closeErr != nil {
			a.logger.Warn("failed to close watcher", zap.Error(closeErr))
		}
	}()

	if err := a.render(watcher.Mapping()); err != nil {
		return err
	}

	a.logger.Info("watching for file changes",
		zap.Duration("min_interval", a.cfg.MinInterval))
	<-ctx.Done()
	return nil
}

// render writes the mapping to the output in the configured format.
func (a *App) render(mapping fileenv.Mapping) error {
	doc := document{Profile: mapping.Profile, Values: mapping.Values}

	switch a.cfg.Format {
	case config.FormatJSON:
		enc := json.NewEncoder(a.out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("encode JSON: %w", err)
		}
	default:
		data, err := yaml.Marshal(doc)
		if err != nil {
			return fmt.Errorf("encode YAML: %w", err)
		}
		if _, err := a.out.Write(data); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
	}
	return nil
}

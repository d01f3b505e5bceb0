package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/unkn0wn-root/cachepolicy"
	"github.com/unkn0wn-root/cachepolicy/codec"
	"github.com/unkn0wn-root/cachepolicy/config"
	zapadapter "github.com/unkn0wn-root/cachepolicy/log/zap"
)

type app struct {
	cfg    *config.Config
	zl     *zap.Logger
	log    cachepolicy.Logger
	client *cachepolicy.Client
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "cachepolicy",
		Short:         "Inspect and exercise cache policies",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			a.cfg = cfg
			zl, err := newZap(cfg.LogLevel)
			if err != nil {
				return err
			}
			a.zl = zl
			a.log = zapadapter.New(zl)
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			if a.client != nil {
				if err := a.client.Stop(cmd.Context()); err != nil {
					a.log.Warn("stop failed", cachepolicy.Fields{"err": err})
				}
			}
			if a.zl != nil {
				_ = a.zl.Sync()
			}
			return nil
		},
	}
	root.AddCommand(newRuleCmd(a), newGetCmd(a), newBenchCmd(a))
	return root
}

func newZap(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	zc := zap.NewDevelopmentConfig()
	zc.Level = zap.NewAtomicLevelAt(lvl)
	return zc.Build()
}

// policy opens the configured client (once) and binds a string policy to the
// configured segment.
func (a *app) policy(ctx context.Context, hooks cachepolicy.Hooks) (*cachepolicy.Policy[string], error) {
	if a.client == nil && a.cfg.HasCache() {
		cl, err := a.cfg.OpenClient(ctx, cachepolicy.ClientOptions{Logger: a.log, Hooks: hooks})
		if err != nil {
			return nil, err
		}
		a.client = cl
	}
	return cachepolicy.NewPolicy[string](cachepolicy.PolicyOptions[string]{
		Rule:    a.cfg.Rule,
		Client:  a.client,
		Segment: a.cfg.Segment,
		Codec:   codec.String{},
		Logger:  a.log,
	})
}

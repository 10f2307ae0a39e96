package main

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"testimonials/internal/app"
	"testimonials/pkg/logging"
	"testimonials/pkg/utils"
)

type rootOptions struct {
	configPath string
	driver     string
	path       string
	verbose    bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "testimonials",
		Short:         "Manage the testimonials collection",
		Long:          `testimonials reads and writes the stored review collection directly, using the same store configuration as the servers.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (default ./testimonials.yaml)")
	root.PersistentFlags().StringVar(&opts.driver, "driver", "", "override store.driver (memory, file, sqlite, postgres, s3)")
	root.PersistentFlags().StringVar(&opts.path, "path", "", "override store.path")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(
		newListCmd(opts),
		newSubmitCmd(opts),
		newReplyCmd(opts),
		newImportCmd(opts),
		newExportCmd(opts),
		newSeedCmd(opts),
	)
	return root
}

func (o *rootOptions) overrides(v *viper.Viper) {
	if o.driver != "" {
		v.Set("store.driver", o.driver)
	}
	if o.path != "" {
		v.Set("store.path", o.path)
	}
}

// openApp loads config and opens the store. The caller closes the app and
// syncs the logger.
func (o *rootOptions) openApp(ctx context.Context) (*app.App, *zap.Logger, error) {
	cfg, err := utils.LoadConfig(o.configPath, o.overrides)
	if err != nil {
		return nil, nil, err
	}

	level := cfg.Log.Level
	if o.verbose {
		level = "debug"
	} else if level == "" || level == "info" {
		level = "warn"
	}
	logger, err := logging.New(level, cfg.Log.JSON)
	if err != nil {
		return nil, nil, err
	}

	a, err := app.New(ctx, cfg, logger, nil)
	if err != nil {
		_ = logger.Sync()
		return nil, nil, err
	}
	return a, logger, nil
}

func withApp(o *rootOptions, fn func(cmd *cobra.Command, a *app.App, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, logger, err := o.openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer logger.Sync()
		defer a.Close()
		return fn(cmd, a, args)
	}
}

// Package app provides the commands of the gitlab-desk command line tool.
package app

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/vilaca/gitlab-desk/internal/api/gitlab"
	"github.com/vilaca/gitlab-desk/internal/config"
	"github.com/vilaca/gitlab-desk/internal/logging"
	"github.com/vilaca/gitlab-desk/internal/registry"
	"github.com/vilaca/gitlab-desk/internal/service"
)

// cli holds the dependencies shared by every command. They are built once
// per invocation in buildDeps.
type cli struct {
	v          *viper.Viper
	cfg        *config.Config
	logger     *zap.Logger
	registry   *registry.Registry
	dispatcher *service.Dispatcher
	out        io.Writer
	output     string
}

// NewRootCmd creates the root command with all subcommands attached.
func NewRootCmd() *cobra.Command {
	c := &cli{v: viper.New()}

	rootCmd := &cobra.Command{
		Use:   "gitlab-desk",
		Short: "Manage GitLab packages and CI/CD variables across instances",
		Long: `gitlab-desk uploads files to the GitLab generic package registry and manages
project CI/CD variables on any number of configured GitLab instances.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.buildDeps(cmd)
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			if c.logger != nil {
				_ = c.logger.Sync()
			}
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.String("config-dir", "", "Directory holding instances.yaml and config.yaml")
	flags.String("log-level", "", "Log level (debug, info, warn, error)")
	flags.Duration("timeout", 0, "Request timeout (default 30s)")
	flags.Bool("use-keyring", false, "Store instance tokens in the OS keyring")
	flags.StringVarP(&c.output, "output", "o", "table", "Output format (table, json)")

	bindings := map[string]string{
		config.KeyConfigDir:      "config-dir",
		config.KeyLogLevel:       "log-level",
		config.KeyRequestTimeout: "timeout",
		config.KeyUseKeyring:     "use-keyring",
	}
	for key, flag := range bindings {
		if err := c.v.BindPFlag(key, flags.Lookup(flag)); err != nil {
			panic(fmt.Sprintf("failed to bind flag %s: %v", flag, err))
		}
	}

	rootCmd.AddCommand(
		newInstanceCmd(c),
		newProjectCmd(c),
		newUploadCmd(c),
		newVariableCmd(c),
		newVersionCmd(c),
	)
	return rootCmd
}

// buildDeps wires all dependencies from the loaded configuration.
func (c *cli) buildDeps(cmd *cobra.Command) error {
	c.out = cmd.OutOrStdout()
	if c.output != "table" && c.output != "json" {
		return fmt.Errorf("invalid output format %q (want table or json)", c.output)
	}

	cfg, err := config.Load(c.v)
	if err != nil {
		return err
	}
	c.cfg = cfg

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		return err
	}
	c.logger = logger
	sugar := logger.Sugar()

	var opts []registry.Option
	opts = append(opts, registry.WithLogger(sugar))
	if cfg.UseKeyring {
		opts = append(opts, registry.WithSecrets(registry.NewKeyringSecrets()))
	}
	c.registry = registry.New(registry.NewFileStore(cfg.RegistryPath(), sugar), opts...)

	factory := gitlab.NewFactory(
		gitlab.NewHTTPClient(cfg.RequestTimeout),
		gitlab.WithLogger(sugar),
		gitlab.WithUserAgent(cfg.UserAgent),
	)
	c.dispatcher = service.NewDispatcher(c.registry, factory, sugar)

	sugar.Debugw("Loaded configuration", "config_dir", cfg.ConfigDir, "timeout", cfg.RequestTimeout, "keyring", cfg.UseKeyring)
	return nil
}

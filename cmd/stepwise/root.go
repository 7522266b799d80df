package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/stepwise/internal/cli"
	"github.com/aretw0/stepwise/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	v       = viper.New()
	cfg     *config.Config
	logger  *slog.Logger
	cfgFile string
)

var rootCmd = &cobra.Command{
	Use:   "stepwise",
	Short: "Stepwise runs resumable multi-step wizards",
	Long: `Stepwise drives a wizard defined in YAML step by step. Answers are validated
per step, stored per session and can be resumed from the terminal, the HTTP API
or an MCP client.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Init(v, cfgFile); err != nil {
			return err
		}
		loaded, err := config.Load(v)
		if err != nil {
			return err
		}
		l, err := cli.NewLogger(os.Stderr, loaded.Log)
		if err != nil {
			return err
		}
		cfg, logger = loaded, l
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&cfgFile, "config", "c", "", "config file (default is ./"+config.FileName+" or "+config.ConfigDir()+"/"+config.FileName+")")
	flags.StringP("file", "f", "", "wizard definition (YAML)")
	flags.String("log-level", "", "log level: debug, info, warn, error")
	flags.String("log-format", "", "log format: text or json")

	bindFlag(rootCmd, "file", "file", true)
	bindFlag(rootCmd, "log.level", "log-level", true)
	bindFlag(rootCmd, "log.format", "log-format", true)
}

// bindFlag ties a config key to a flag so an explicit flag wins over file and env.
func bindFlag(cmd *cobra.Command, key, name string, persistent bool) {
	fs := cmd.Flags()
	if persistent {
		fs = cmd.PersistentFlags()
	}
	_ = v.BindPFlag(key, fs.Lookup(name))
}

// openApp wires the engine for commands that need the loaded wizard.
func openApp() (*cli.App, error) {
	return cli.NewApp(cfg, logger)
}

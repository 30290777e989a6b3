package main

import (
	"encoding/json"
	"strings"
	"sync"

	"github.com/spf13/cobra"
	"github.com/swdee/go-facetrack/config"
	"github.com/swdee/go-facetrack/logger"
)

type commandContext struct {
	configFlag *string
	logLevel   *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag, logLevel *string) *commandContext {
	return &commandContext{
		configFlag: configFlag,
		logLevel:   logLevel,
	}
}

// ensureConfig loads the configuration once and installs the logger it
// describes
func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, err := config.Load(strings.TrimSpace(*c.configFlag))
		if err != nil {
			c.configErr = err
			return
		}

		if *c.logLevel != "" {
			cfg.Logging.Level = *c.logLevel
		}

		if err := logger.Init(cfg.LoggerOptions()); err != nil {
			c.configErr = err
			return
		}

		c.config = cfg
	})
	return c.config, c.configErr
}

func newRootCommand() *cobra.Command {
	var configFlag string
	var logLevel string

	ctx := newCommandContext(&configFlag, &logLevel)

	rootCmd := &cobra.Command{
		Use:           "facetrack",
		Short:         "Track faces across video clips",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path (.yaml, .yml or .toml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Override the configured log level")

	rootCmd.AddCommand(newAnalyzeCommand(ctx))
	rootCmd.AddCommand(newCropCommand(ctx))

	return rootCmd
}

// writeJSON encodes v as indented JSON to the command's stdout.
func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

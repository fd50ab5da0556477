package main

import (
	"fmt"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/esimov/gesture/config"
	"github.com/esimov/gesture/logger"
	"github.com/esimov/gesture/utils"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const banner = `
┌─┐┌─┐┌─┐┌┬┐┬ ┬┬─┐┌─┐
│ ┬├┤ └─┐ │ │ │├┬┘├┤
└─┘└─┘└─┘ ┴ └─┘┴└─└─┘

Facial gesture recognition.
    Version: %s

`

// Version indicates the current build version.
var Version string

// cli holds the state shared by the commands.
type cli struct {
	v          *viper.Viper
	cfg        *config.Config
	configFile string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%sError: %v%s\n", utils.ErrorColor, err, utils.DefaultColor)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	c := &cli{v: config.New()}

	root := &cobra.Command{
		Use:           "gesture",
		Short:         "Recognize facial gestures from face detector output",
		Long:          fmt.Sprintf(banner, Version),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			logger.Cleanup()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&c.configFile, "config", "c", "", "Configuration file (TOML)")
	flags.Bool("json-log", false, "Log in JSON format")
	flags.String("log-level", "info", "Log level: debug|info|warn|error")
	flags.String("log-file", "", "Also write logs into this rotated file")
	_ = c.v.BindPFlag("log.json", flags.Lookup("json-log"))
	_ = c.v.BindPFlag("log.level", flags.Lookup("log-level"))
	_ = c.v.BindPFlag("log.file", flags.Lookup("log-file"))

	root.AddCommand(
		newClassifyCmd(c),
		newServeCmd(c),
		newVersionCmd(),
	)
	return root
}

// setup reads the configuration file and sets up the logger.
func (c *cli) setup() error {
	if c.configFile != "" {
		c.v.SetConfigFile(c.configFile)
		c.v.SetConfigType("toml")
		if err := c.v.ReadInConfig(); err != nil {
			return errors.Wrapf(err, "failed to read config file %s", c.configFile)
		}
	}
	cfg, err := config.FromViper(c.v)
	if err != nil {
		return err
	}
	c.cfg = cfg

	return logger.Initialize(logger.Options{
		JSON:  cfg.Log.JSON,
		Level: cfg.Log.Level,
		File:  cfg.Log.File,
	})
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "gesture %s\n", Version)
		},
	}
}

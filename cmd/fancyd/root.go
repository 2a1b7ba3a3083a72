package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/neuronlabs/fancy/config"
	"github.com/neuronlabs/fancy/errors"
	"github.com/neuronlabs/fancy/log"
)

var (
	configPath string
	cfg        *config.Config
)

// rootCmd represents the base command when called without any sub commands
var rootCmd = &cobra.Command{
	Use:               "fancyd",
	Short:             "Bookshelf service with the fancy view sets.",
	Long:              `It serves the bookshelf collections filtered by the query string parameters with the nested writes support.`,
	PersistentPreRunE: rootPreRun,
	SilenceUsage:      true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to the config file (default: fancyd.yml in the working or 'configs' directory)")
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootPreRun(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = readConfig(configPath)
	if err != nil {
		return err
	}
	log.Default()
	if err = log.SetLevel(log.ParseLevel(cfg.LogLevel)); err != nil {
		return err
	}
	log.Debugf("Config loaded with the repository driver: '%s'", cfg.Repository.Driver)
	return nil
}

// readConfig reads the config file at 'path'. With no path the 'fancyd' named config is used
// and if not found, the default config.
func readConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.ReadConfigFile(path)
	}
	c, err := config.ReadNamedConfig("fancyd")
	if err == nil {
		return c, nil
	}
	if !errors.IsClass(err, config.ClassConfigRead) {
		return nil, err
	}
	c = config.ReadDefaultConfig()
	if err = c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Copyright 2026 The Swarm Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ethersphere/treehash/pkg/logging"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	optionNameDevices          = "devices"
	optionNameKernelsPerDevice = "kernels-per-device"
	optionNamePoolCap          = "pool-cap"
	optionNameHashRetries      = "hash-retries"
	optionNameRetryBackoff     = "retry-backoff"
	optionNameCPUWorkers       = "cpu-workers"
	optionNameStrength         = "strength"
	optionNameVerbosity        = "verbosity"
)

// legacyEnv maps options to the environment names used by earlier
// deployments of the hasher.
var legacyEnv = map[string]string{
	optionNameDevices:          "GPU_COUNT",
	optionNameKernelsPerDevice: "KERNEL_PER_GPU",
	optionNameHashRetries:      "P2_RETRY",
}

func init() {
	cobra.EnableCommandSorting = false
}

type command struct {
	root    *cobra.Command
	config  *viper.Viper
	fs      afero.Fs
	cfgFile string
	homeDir string
}

type option func(*command)

func newCommand(opts ...option) (c *command, err error) {
	c = &command{
		root: &cobra.Command{
			Use:           "treehash",
			Short:         "Pooled Poseidon column tree hasher",
			SilenceErrors: true,
			SilenceUsage:  true,
			PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
				return c.initConfig()
			},
		},
		config: viper.New(),
	}

	for _, o := range opts {
		o(c)
	}
	if c.fs == nil {
		c.fs = afero.NewOsFs()
	}

	// Find home directory.
	if err := c.setHomeDir(); err != nil {
		return nil, err
	}

	c.initGlobalFlags()

	if err := c.initBenchCmd(); err != nil {
		return nil, err
	}

	c.initVersionCmd()

	return c, nil
}

func (c *command) Execute() (err error) {
	return c.root.Execute()
}

// Execute parses command line arguments and runs appropriate functions.
func Execute() (err error) {
	c, err := newCommand()
	if err != nil {
		return err
	}
	return c.Execute()
}

func (c *command) initGlobalFlags() {
	globalFlags := c.root.PersistentFlags()
	globalFlags.StringVar(&c.cfgFile, "config", "", "config file (default is $HOME/.treehash.yaml)")
}

func (c *command) initConfig() (err error) {
	configName := ".treehash"
	if c.cfgFile != "" {
		// Use config file from the flag.
		c.config.SetConfigFile(c.cfgFile)
	} else {
		// Search config in home directory with name ".treehash" (without extension).
		c.config.AddConfigPath(c.homeDir)
		c.config.SetConfigName(configName)
	}

	// Environment
	c.config.SetEnvPrefix("treehash")
	c.config.AutomaticEnv() // read in environment variables that match
	c.config.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	for name, legacy := range legacyEnv {
		env := "TREEHASH_" + strings.ToUpper(strings.ReplaceAll(name, "-", "_"))
		if err := c.config.BindEnv(name, env, legacy); err != nil {
			return fmt.Errorf("bind %s environment: %w", name, err)
		}
	}

	if c.homeDir != "" && c.cfgFile == "" {
		c.cfgFile = filepath.Join(c.homeDir, configName+".yaml")
	}

	// If a config file is found, read it in.
	if err := c.config.ReadInConfig(); err != nil {
		var e viper.ConfigFileNotFoundError
		if !errors.As(err, &e) {
			return err
		}
	}
	return nil
}

func (c *command) setHomeDir() (err error) {
	if c.homeDir != "" {
		return
	}
	dir, err := os.UserHomeDir()
	if err != nil {
		return err
	}
	c.homeDir = dir
	return nil
}

func (c *command) setPoolFlags(cmd *cobra.Command) {
	cmd.Flags().Int(optionNameDevices, 1, "number of devices to open contexts on")
	cmd.Flags().Int(optionNameKernelsPerDevice, 4, "number of contexts per device")
	cmd.Flags().Int(optionNamePoolCap, 32, "maximum number of contexts")
	cmd.Flags().Int(optionNameHashRetries, 3600, "attempts of a failing hash call before giving up")
	cmd.Flags().Duration(optionNameRetryBackoff, 5*time.Second, "wait between attempts of a failing hash call")
	cmd.Flags().Int(optionNameCPUWorkers, 0, "goroutines per context batch, 0 for GOMAXPROCS")
	cmd.Flags().String(optionNameStrength, "standard", "hash strength, standard or strengthened")
	cmd.Flags().String(optionNameVerbosity, "info", "log verbosity level 0=silent, 1=error, 2=warn, 3=info, 4=debug, 5=trace")
}

func newLogger(cmd *cobra.Command, verbosity string) (logging.Logger, error) {
	var logger logging.Logger
	switch verbosity {
	case "0", "silent":
		logger = logging.New(io.Discard, 0)
	case "1", "error":
		logger = logging.New(cmd.OutOrStdout(), logrus.ErrorLevel)
	case "2", "warn":
		logger = logging.New(cmd.OutOrStdout(), logrus.WarnLevel)
	case "3", "info":
		logger = logging.New(cmd.OutOrStdout(), logrus.InfoLevel)
	case "4", "debug":
		logger = logging.New(cmd.OutOrStdout(), logrus.DebugLevel)
	case "5", "trace":
		logger = logging.New(cmd.OutOrStdout(), logrus.TraceLevel)
	default:
		return nil, fmt.Errorf("unknown verbosity level %q", verbosity)
	}
	return logger, nil
}

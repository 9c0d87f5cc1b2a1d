// Package config resolves the pokerd CLI surface: flags, environment
// variables, and an optional YAML file, layered flag > env > file >
// default. Grounded on Seednode-partybox's main.go/config.go (cobra +
// pflag + viper wiring) and original_source/backend/src/cli.rs (the
// flag surface itself: addr, limit, log level).
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/lindqvist/pokerd/internal/admission"
	"github.com/lindqvist/pokerd/internal/logging"
)

const envPrefix = "POKERD"

// Config is the fully resolved set of server parameters, matching
// spec.md §6's CLI surface exactly: addr, limit, log level.
type Config struct {
	Addr       string
	Limit      int
	Log        logging.Level
	ConfigFile string

	logLevelText string
}

func (c *Config) validate() error {
	if c.Limit < 1 {
		return fmt.Errorf("invalid session limit (must be positive): %d", c.Limit)
	}

	return nil
}

// fileConfig is the shape of the optional --config YAML file. Fields
// are pointers so an absent key leaves the flag/env/default value in
// place rather than overwriting it with a zero value.
type fileConfig struct {
	Addr  *string `yaml:"addr"`
	Limit *int    `yaml:"limit"`
	Log   *string `yaml:"log"`
}

// NewCommand builds the pokerd root command. run is invoked with the
// fully resolved, validated Config.
func NewCommand(cfg *Config, run func(*cobra.Command, *Config) error) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "pokerd [addr]",
		Short:         "Realtime Planning Poker coordinator",
		Args:          cobra.MaximumNArgs(1),
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				cfg.Addr = args[0]
			}

			level, err := logging.ParseLevel(cfg.logLevelText)
			if err != nil {
				return err
			}

			cfg.Log = level

			if err := cfg.validate(); err != nil {
				return err
			}

			return run(cmd, cfg)
		},
	}

	fs := cmd.Flags()

	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	fs.StringVarP(&cfg.Addr, "addr", "a", "127.0.0.1:8080", "address to bind to (env: POKERD_ADDR)")
	fs.IntVarP(&cfg.Limit, "limit", "l", admission.DefaultMax, "maximum concurrent sessions (env: POKERD_LIMIT)")
	fs.StringVar(&cfg.logLevelText, "log", logging.LevelInfo.String(),
		"log level: error|warn|info|debug|trace (env: POKERD_LOG)")
	fs.StringVar(&cfg.ConfigFile, "config", "", "optional YAML config file, layered beneath flags and environment")

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
	})

	cmd.PreRunE = func(*cobra.Command, []string) error {
		return layerConfigFile(cfg, fs, v)
	}

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})

	return cmd
}

// layerConfigFile applies, in order, environment variables and then
// the optional YAML file to any flag the user did not set explicitly
// on the command line — producing the flag > env > file > default
// precedence spec.md's ambient config stack calls for. Env is applied
// first so that a value present in both the environment and the file
// resolves to the environment's value, not the file's: fs.Set marks a
// flag Changed as a side effect, so the file pass below skips whatever
// the env pass already touched.
func layerConfigFile(cfg *Config, fs *pflag.FlagSet, v *viper.Viper) error {
	fs.VisitAll(func(f *pflag.Flag) {
		if f.Changed {
			return
		}

		if v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})

	if cfg.ConfigFile != "" {
		fc, err := readFileConfig(cfg.ConfigFile)
		if err != nil {
			return err
		}

		applyFileValue(fs, "addr", fc.Addr)
		applyFileValue(fs, "limit", intPtrToString(fc.Limit))
		applyFileValue(fs, "log", fc.Log)
	}

	return nil
}

func readFileConfig(path string) (fileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return fileConfig{}, fmt.Errorf("reading config file: %w", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fileConfig{}, fmt.Errorf("parsing config file: %w", err)
	}

	return fc, nil
}

func applyFileValue(fs *pflag.FlagSet, name string, value *string) {
	if value == nil {
		return
	}

	f := fs.Lookup(name)
	if f == nil || f.Changed {
		return
	}

	_ = fs.Set(name, *value)
}

func intPtrToString(n *int) *string {
	if n == nil {
		return nil
	}

	s := fmt.Sprintf("%d", *n)

	return &s
}

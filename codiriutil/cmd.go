package codiriutil

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/lnashier/viper"
	"github.com/spf13/cobra"
)

// Cfg holds configuration information for the codiri command line,
// mirroring inmaputil.Cfg's embedded *viper.Viper + cobra command tree
// shape, trimmed from InMAP's dozens of flags to codiri's three.
type Cfg struct {
	*viper.Viper

	Root *cobra.Command
}

// options are the configuration options available to codiri. Each is
// bound both as a cobra flag and as a viper key, so it can be set from
// the command line, a TOML config file, or a CODIRI_-prefixed
// environment variable.
var options = []struct {
	name, usage, shorthand string
	defaultVal             string
}{
	{
		name:       "input",
		shorthand:  "i",
		usage:      "input specifies the path to the input JSON configuration file.",
		defaultVal: "",
	},
	{
		name:       "output",
		shorthand:  "o",
		usage:      "output specifies the path to the report output directory.",
		defaultVal: "",
	},
	{
		name:       "config",
		shorthand:  "c",
		usage:      "config specifies an optional TOML file of defaults for the other flags.",
		defaultVal: "",
	},
}

// InitializeConfig builds the codiri command tree and binds its flags
// to a fresh viper instance, following inmaputil.InitializeConfig's
// declarative options-slice pattern.
func InitializeConfig() *Cfg {
	cfg := &Cfg{Viper: viper.New()}
	cfg.SetEnvPrefix("CODIRI")
	cfg.AutomaticEnv()

	cfg.Root = &cobra.Command{
		Use:   "codiri",
		Short: "Compute shoreline-resuspension dose fields.",
		Long: `codiri computes spatial fields of effective radiation dose to the
population resulting from wind resuspension of radionuclides deposited
on the shorelines of surface water bodies.

Configuration can be supplied via the --input flag, via a TOML file
referenced with --config, or via CODIRI_-prefixed environment
variables.`,
		DisableAutoGenTag: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return setConfig(cfg)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			inputPath := cfg.GetString("input")
			if inputPath == "" {
				return fmt.Errorf("codiriutil: --input is required")
			}
			outputDir, err := checkOutputDir(cfg.GetString("output"))
			if err != nil {
				return err
			}
			return Run(cmd, inputPath, outputDir)
		},
	}

	set := cfg.Root.PersistentFlags()
	for _, option := range options {
		if option.shorthand == "" {
			set.String(option.name, option.defaultVal, option.usage)
		} else {
			set.StringP(option.name, option.shorthand, option.defaultVal, option.usage)
		}
		cfg.BindPFlag(option.name, set.Lookup(option.name))
	}

	return cfg
}

// setConfig reads in the TOML configuration file named by --config, if
// any, mirroring inmaputil's setConfig.
func setConfig(cfg *Cfg) error {
	if cfgpath := cfg.GetString("config"); cfgpath != "" {
		cfg.SetConfigFile(cfgpath)
		if err := cfg.ReadInConfig(); err != nil {
			return fmt.Errorf("codiriutil: problem reading configuration file: %v", err)
		}
	}
	return nil
}

// checkOutputDir fills in a timestamped default report directory when
// --output is unset and ensures the parent directory exists, mirroring
// inmaputil's checkOutputFile.
func checkOutputDir(dir string) (string, error) {
	if dir == "" {
		dir = filepath.Join(".", "codiri-report-"+time.Now().Format("20060102-150405"))
	}
	dir = os.ExpandEnv(dir)
	parent := filepath.Dir(dir)
	if parent != "." {
		if _, err := os.Stat(parent); err != nil {
			return dir, fmt.Errorf("codiriutil: output directory's parent doesn't exist: %v", err)
		}
	}
	return dir, nil
}

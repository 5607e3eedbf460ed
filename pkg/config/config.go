package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/fulmenhq/catmigrate/pkg/category"
	"github.com/fulmenhq/catmigrate/pkg/rewrite"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix for environment overrides, e.g. CATMIGRATE_ROOT.
const EnvPrefix = "CATMIGRATE"

// Config holds all configuration for catmigrate
type Config struct {
	Root       string        `mapstructure:"root" json:"root"`
	FileGlob   string        `mapstructure:"file_glob" json:"file_glob"`
	MaxDepth   int           `mapstructure:"max_depth" json:"max_depth"`
	ImportPath string        `mapstructure:"import_path" json:"import_path"`
	Namespace  string        `mapstructure:"namespace" json:"namespace"`
	Kinds      []KindConfig  `mapstructure:"kinds" json:"kinds"`
	Groups     []GroupConfig `mapstructure:"groups" json:"groups"`
	Exclude    []string      `mapstructure:"exclude" json:"exclude"`
	NoIgnore   bool          `mapstructure:"no_ignore" json:"no_ignore"`
}

// KindConfig declares one category kind and its summary label
type KindConfig struct {
	Tag   string `mapstructure:"tag" json:"tag"`
	Label string `mapstructure:"label" json:"label,omitempty"`
}

// GroupConfig maps a subdirectory of the root to a fixed kind, or to a
// classification order when the directory mixes kinds.
type GroupConfig struct {
	Name     string   `mapstructure:"name" json:"name"`
	Dir      string   `mapstructure:"dir" json:"dir"`
	Kind     string   `mapstructure:"kind" json:"kind,omitempty"`
	Classify []string `mapstructure:"classify" json:"classify,omitempty"`
}

// Ambiguous reports whether files in the group must be classified by content.
func (g GroupConfig) Ambiguous() bool {
	return g.Kind == "" && len(g.Classify) > 0
}

// ClassifyKinds returns the classification order as kinds.
func (g GroupConfig) ClassifyKinds() []category.Kind {
	out := make([]category.Kind, len(g.Classify))
	for i, c := range g.Classify {
		out[i] = category.Kind(c)
	}
	return out
}

var defaultKinds = []map[string]interface{}{
	{"tag": "consumable", "label": "Consumables"},
	{"tag": "equipment", "label": "Equipment"},
	{"tag": "resource", "label": "Resources"},
}

var defaultGroups = []map[string]interface{}{
	{"name": "consumables", "dir": "consumables", "kind": "consumable"},
	{"name": "equipment", "dir": "equipment", "kind": "equipment"},
	{"name": "resources", "dir": "resources", "classify": []string{"consumable", "resource"}},
}

// flagKeys maps command-line flag names to config keys.
var flagKeys = map[string]string{
	"root":        "root",
	"file-glob":   "file_glob",
	"max-depth":   "max_depth",
	"import-path": "import_path",
	"namespace":   "namespace",
	"exclude":     "exclude",
	"no-ignore":   "no_ignore",
}

// LoadOptions controls where Load looks for configuration
type LoadOptions struct {
	// ConfigFile, when set, must exist and be readable.
	ConfigFile string
	// Flags overrides file and env values for the flags the user set.
	Flags *pflag.FlagSet
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("root", ".")
	v.SetDefault("file_glob", "*.ts")
	v.SetDefault("max_depth", 0)
	v.SetDefault("import_path", rewrite.DefaultImportPath)
	v.SetDefault("namespace", category.DefaultNamespace)
	v.SetDefault("kinds", defaultKinds)
	v.SetDefault("groups", defaultGroups)
	v.SetDefault("exclude", []string{})
	v.SetDefault("no_ignore", false)
}

// BindFlags binds the known flags present in fs to v.
func BindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	if fs == nil {
		return nil
	}
	for name, key := range flagKeys {
		f := fs.Lookup(name)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("failed to bind flag --%s: %w", name, err)
		}
	}
	return nil
}

// Load resolves configuration from defaults, the config file, CATMIGRATE_*
// environment variables, and flags, in increasing precedence. The result is
// validated before it is returned.
func Load(opts LoadOptions) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
	} else {
		v.SetConfigName(".catmigrate")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if err := BindFlags(v, opts.Flags); err != nil {
		return nil, err
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if opts.ConfigFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	// UnmarshalExact rejects misspelled keys in the config file.
	var cfg Config
	if err := v.UnmarshalExact(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the built-in configuration without consulting files or env.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		// static input
		panic(err)
	}
	return &cfg
}

// Table builds the immutable kind table described by the configuration.
func (c *Config) Table() (category.Table, error) {
	specs := make([]category.Spec, len(c.Kinds))
	for i, k := range c.Kinds {
		specs[i] = category.Spec{Tag: k.Tag, Label: k.Label}
	}
	return category.NewTable(c.Namespace, specs...)
}

// Validate checks the configuration against the embedded schema and
// cross-checks group kinds against the kind table.
func (c *Config) Validate() error {
	if err := ValidateSchema(c); err != nil {
		return err
	}

	table, err := c.Table()
	if err != nil {
		return fmt.Errorf("invalid kinds: %w", err)
	}
	seen := make(map[string]bool, len(c.Groups))
	for _, g := range c.Groups {
		if seen[g.Name] {
			return fmt.Errorf("duplicate group %q", g.Name)
		}
		seen[g.Name] = true

		if g.Kind != "" && !table.Has(category.Kind(g.Kind)) {
			return fmt.Errorf("group %q: unknown kind %q", g.Name, g.Kind)
		}
		for _, k := range g.Classify {
			if !table.Has(category.Kind(k)) {
				return fmt.Errorf("group %q: unknown kind %q in classify", g.Name, k)
			}
		}
	}
	return nil
}

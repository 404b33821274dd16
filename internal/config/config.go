// Package config loads the optional envcap config file. The file extends
// the built-in shell dialects with custom interpreters and tunes the
// consumer-side skip list; a missing file just means defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"envcap/internal/dialect"
)

// Quote styles accepted in a shell definition.
const (
	QuotePosix      = "posix"
	QuotePowerShell = "powershell"
)

// Config is the top-level structure of config.toml.
type Config struct {
	// DefaultShell names the dialect used when --shell is not given.
	DefaultShell string `toml:"default_shell"`

	// SkipVars extends the conventional skip list applied when emitting
	// export statements.
	SkipVars []string `toml:"skip_vars"`

	// Shells defines custom interpreters, keyed by dialect name. A name
	// matching a built-in dialect overrides it.
	Shells map[string]ShellDef `toml:"shells"`
}

// ShellDef describes a custom interpreter.
type ShellDef struct {
	// Path is the interpreter executable. Defaults to the dialect name.
	Path string `toml:"path"`

	// Args are passed before the script; the script itself is appended
	// as the final argument. Defaults to ["-c"].
	Args []string `toml:"args"`

	// Quote selects the token quoting style: "posix" (default) or
	// "powershell".
	Quote string `toml:"quote"`

	// Noop overrides the fixed epilogue command.
	Noop []string `toml:"noop"`
}

// DefaultPath returns the default config location
// (~/.config/envcap/config.toml).
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".config", "envcap", "config.toml")
	}
	return filepath.Join(home, ".config", "envcap", "config.toml")
}

// ResolvePath returns the explicit path if given, else the ENVCAP_CONFIG
// environment variable, else the default location.
func ResolvePath(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if fromEnv := os.Getenv("ENVCAP_CONFIG"); fromEnv != "" {
		return fromEnv
	}
	return DefaultPath()
}

// Load parses the config file at path. A missing file yields an empty
// config with defaults applied, not an error.
func Load(path string) (*Config, error) {
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		if os.IsNotExist(err) {
			cfg.applyDefaults()
			return &cfg, nil
		}
		return nil, fmt.Errorf("config.Load: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.DefaultShell == "" {
		c.DefaultShell = "sh"
	}
}

func (c *Config) validate() error {
	for name, def := range c.Shells {
		switch def.Quote {
		case "", QuotePosix, QuotePowerShell:
		default:
			return fmt.Errorf("config.Load: shell %q: unknown quote style %q", name, def.Quote)
		}
	}
	return nil
}

// Dialects returns the built-in dialects merged with the configured custom
// shells.
func (c *Config) Dialects() map[string]dialect.Dialect {
	all := dialect.Builtins()
	for name, def := range c.Shells {
		all[name] = def.Dialect(name)
	}
	return all
}

// Dialect converts the definition into a usable dialect.
func (d ShellDef) Dialect(name string) dialect.Dialect {
	path := d.Path
	if path == "" {
		path = name
	}

	out := dialect.Dialect{
		Name: name,
		Path: path,
		Noop: d.Noop,
	}

	if len(d.Args) > 0 {
		fixed := append([]string(nil), d.Args...)
		out.Args = func(script string) []string {
			return append(append([]string(nil), fixed...), script)
		}
	}
	if d.Quote == QuotePowerShell {
		out.Compose = dialect.PowerShellCompose
	}

	return out.WithDefaults()
}

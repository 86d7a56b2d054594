package config

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
)

// Flags holds parsed command-line flags.
type Flags struct {
	// Commands
	Help    bool
	Version bool

	// Core
	DataDir     string
	Config      string
	FallbackURI string

	// Logging
	LogLevel string
	LogFile  string
	LogJSON  bool

	// Remaining args
	Args []string

	// Explicitly-set bool flags (for true/false overrides).
	SetLogJSON bool
}

// ParseFlags parses command-line flags.
func ParseFlags() *Flags {
	f := &Flags{}
	fs := flag.NewFlagSet("multiasset", flag.ContinueOnError)

	// Commands
	fs.BoolVar(&f.Help, "help", false, "Show help message")
	fs.BoolVar(&f.Help, "h", false, "Show help message (shorthand)")
	fs.BoolVar(&f.Version, "version", false, "Show version information")
	fs.BoolVar(&f.Version, "v", false, "Show version (shorthand)")

	// Core
	fs.StringVar(&f.DataDir, "datadir", "", "Data directory path")
	fs.StringVar(&f.Config, "config", "", "Config file path")
	fs.StringVar(&f.Config, "c", "", "Config file path (shorthand)")
	fs.StringVar(&f.FallbackURI, "fallback-uri", "", "URI returned when resolution finds no match")

	// Logging
	fs.StringVar(&f.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	fs.StringVar(&f.LogFile, "log-file", "", "Log file path")
	fs.BoolVar(&f.LogJSON, "log-json", false, "Output logs as JSON")

	fs.Usage = func() {
		printUsage()
	}

	if err := fs.Parse(os.Args[1:]); err != nil {
		if err == flag.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	f.SetLogJSON = isFlagSet(fs, "log-json")
	f.Args = fs.Args()

	return f
}

// ApplyFlags applies command-line flags to a Config struct.
func ApplyFlags(cfg *Config, f *Flags) {
	if f.DataDir != "" {
		cfg.DataDir = f.DataDir
	}
	if f.FallbackURI != "" {
		cfg.FallbackURI = f.FallbackURI
	}
	if f.LogLevel != "" {
		cfg.Log.Level = f.LogLevel
	}
	if f.LogFile != "" {
		cfg.Log.File = f.LogFile
	}
	if f.SetLogJSON {
		cfg.Log.JSON = f.LogJSON
	}
}

// isFlagSet checks if a flag was explicitly set.
func isFlagSet(fs *flag.FlagSet, name string) bool {
	found := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}

func printUsage() {
	usage := `Multiasset Registry - multi-resource token registry tooling

Usage:
  multiasset [options] <command> [args]
  multiasset --help

Commands:
  resources              List catalog entries
  token <id>             Show pending and active resources for a token
  resolve <id> [index]   Resolve a token's metadata URI

Core Options:
  --datadir        Data directory (default: ~/.multiasset)
  --config, -c     Config file path (default: <datadir>/multiasset.conf)
  --fallback-uri   URI returned when resolution finds no match

Logging Options:
  --log-level      Log level: debug, info, warn, error (default: info)
  --log-file       Log file path (default: stdout)
  --log-json       Output logs as JSON
`
	fmt.Print(usage)
}

// ConfigFile returns the path of the config file inside the data directory.
func (c *Config) ConfigFile() string {
	return filepath.Join(c.DataDir, "multiasset.conf")
}

// EnsureDataDir creates the data directory if it does not already exist.
// Idempotent.
func EnsureDataDir(cfg *Config) error {
	return os.MkdirAll(cfg.DataDir, 0755)
}

// Load loads configuration with the following precedence:
// 1. Default values
// 2. Config file
// 3. Command-line flags
func Load() (*Config, *Flags, error) {
	flags := ParseFlags()

	if flags.Help {
		printUsage()
		os.Exit(0)
	}
	if flags.Version {
		fmt.Println("multiasset version 0.1.0")
		os.Exit(0)
	}

	cfg := Default()

	if flags.DataDir != "" {
		cfg.DataDir = flags.DataDir
	}
	if err := EnsureDataDir(cfg); err != nil {
		return nil, nil, fmt.Errorf("ensuring data dir: %w", err)
	}

	configPath := flags.Config
	if configPath == "" {
		configPath = cfg.ConfigFile()
	}

	fileValues, err := LoadFile(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("loading config file: %w", err)
	}
	if err := ApplyFileConfig(cfg, fileValues); err != nil {
		return nil, nil, fmt.Errorf("applying config file: %w", err)
	}

	ApplyFlags(cfg, flags)

	return cfg, flags, nil
}

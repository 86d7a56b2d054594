package config

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// LoadFile loads configuration from a .conf file.
// Format: key = value (one per line, # for comments)
func LoadFile(path string) (map[string]string, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return make(map[string]string), nil
		}
		return nil, err
	}
	defer file.Close()

	values := make(map[string]string)
	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("line %d: invalid format (expected key = value)", lineNum)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		// Remove quotes if present
		if len(value) >= 2 {
			if (value[0] == '"' && value[len(value)-1] == '"') ||
				(value[0] == '\'' && value[len(value)-1] == '\'') {
				value = value[1 : len(value)-1]
			}
		}

		values[key] = value
	}

	return values, scanner.Err()
}

// ApplyFileConfig applies file configuration to a Config struct.
func ApplyFileConfig(cfg *Config, values map[string]string) error {
	for key, value := range values {
		switch key {
		case "datadir":
			cfg.DataDir = value
		case "fallback_uri":
			cfg.FallbackURI = value
		case "log.level":
			switch value {
			case "debug", "info", "warn", "error":
				cfg.Log.Level = value
			default:
				return fmt.Errorf("log.level: unknown level %q", value)
			}
		case "log.json":
			b, err := strconv.ParseBool(value)
			if err != nil {
				return fmt.Errorf("log.json: %w", err)
			}
			cfg.Log.JSON = b
		case "log.file":
			cfg.Log.File = value
		default:
			return fmt.Errorf("unknown configuration key %q", key)
		}
	}
	return nil
}

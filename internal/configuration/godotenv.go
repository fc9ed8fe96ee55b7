package configuration

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// KeyPrefix is shared by every key of the application configuration.
const KeyPrefix = "SWUPD_"

// GodotenvProvider reads env-style files with godotenv. Only keys starting
// with [KeyPrefix] are kept, so a file can be shared with other tools. If
// Environment is set, [KeyPrefix] variables of the process environment take
// precedence over the files, and missing files are not an error.
type GodotenvProvider struct {
	Environment bool

	environ func() []string
}

// Read returns the [KeyPrefix] keys of the files and, if enabled, of the
// process environment.
func (p *GodotenvProvider) Read(filenames ...string) (map[string]string, error) {
	data, err := godotenv.Read(filenames...)
	if err != nil {
		if !p.Environment || !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("(config-godotenv) %w", err)
		}
		data = nil
	}

	envMap := make(map[string]string, len(data))

	for key, value := range data {
		if !strings.HasPrefix(key, KeyPrefix) {
			slog.Debug("Ignored configuration key:", "key", key)

			continue
		}
		envMap[key] = value
	}

	if !p.Environment {
		return envMap, nil
	}

	environ := p.environ
	if environ == nil {
		environ = os.Environ
	}

	for _, kv := range environ() {
		key, value, ok := strings.Cut(kv, "=")
		if ok && strings.HasPrefix(key, KeyPrefix) {
			envMap[key] = value
		}
	}

	return envMap, nil
}

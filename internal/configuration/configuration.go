// Package configuration reads the application configuration from env-style
// files through an injected reader.
package configuration

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
)

type genericConfigProvider interface {
	Read(filenames ...string) (envMap map[string]string, err error)
}

// Handler reads configuration files with a generic reader and maps their
// keys to typed values.
type Handler struct {
	GenericConfigReader genericConfigProvider
}

// NewHandler returns a pointer to a new [Handler].
func NewHandler(reader genericConfigProvider) *Handler {
	return &Handler{
		GenericConfigReader: reader,
	}
}

func (c *Handler) ReadGeneric(filenames ...string) (map[string]string, error) {
	return c.GenericConfigReader.Read(filenames...)
}

func (c *Handler) MapKeyToString(envMap map[string]string, key string) string {
	if value, exists := envMap[key]; exists {
		return value
	}

	return ""
}

// MapKeyToBool returns the boolean of a key, or def if the key is absent or
// empty. The usual spellings "yes", "true", "1" and "no", "false", "0" are
// understood.
func (c *Handler) MapKeyToBool(envMap map[string]string, key string, def bool) (bool, error) {
	switch strings.ToLower(c.MapKeyToString(envMap, key)) {
	case "":
		return def, nil
	case "yes", "true", "1", "on":
		return true, nil
	case "no", "false", "0", "off":
		return false, nil
	default:
		return def, fmt.Errorf("(config) %w: %s", ErrInvalidBool, key)
	}
}

// Load reads the [AppConfig] from path. A missing file yields the defaults
// of [NewAppConfig].
func (c *Handler) Load(path string) (*AppConfig, error) {
	cfg := NewAppConfig()

	envMap, err := c.ReadGeneric(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	} else if err != nil {
		return nil, fmt.Errorf("(config) failed to read %s: %w", path, err)
	}

	cfg.Platform = c.MapKeyToString(envMap, KeyPlatform)
	cfg.RemoteRoot = c.MapKeyToString(envMap, KeyRemoteRoot)
	cfg.StagingDir = c.MapKeyToString(envMap, KeyStagingDir)

	if v := c.MapKeyToString(envMap, KeyTargetRoot); v != "" {
		cfg.TargetRoot = v
	}

	if cfg.VerifyCopies, err = c.MapKeyToBool(envMap, KeyVerifyCopies, cfg.VerifyCopies); err != nil {
		return nil, err
	}

	if cfg.Rollback, err = ParseRollback(c.MapKeyToString(envMap, KeyRollback)); err != nil {
		return nil, err
	}

	return cfg, nil
}

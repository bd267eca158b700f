package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/circlepack/pkg/errors"
)

// Env names the variables that override file values. They hold secrets
// that do not belong in a checked-in config file.
const (
	EnvRedisURL = "CIRCLEPACK_REDIS_URL"
	EnvMongoURI = "CIRCLEPACK_MONGO_URI"
)

// decoder decodes one file format strictly into target.
type decoder func(data []byte, target *Config) error

var decoders = map[string]decoder{
	".toml": decodeTOML,
	".yaml": decodeYAML,
	".yml":  decodeYAML,
	".json": decodeJSON,
}

// Extensions lists the supported config file extensions.
func Extensions() []string {
	exts := make([]string, 0, len(decoders))
	for ext := range decoders {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// Load reads path on top of [Default], applies environment overrides and
// validates the result.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read config %s", path)
	}
	return Decode(filepath.Ext(path), data)
}

// Decode parses data in the format named by ext (".toml", ".yaml", ".yml"
// or ".json") on top of [Default].
func Decode(ext string, data []byte) (Config, error) {
	dec, ok := decoders[strings.ToLower(ext)]
	if !ok {
		return Config{}, errors.New(errors.ErrCodeInvalidConfig,
			"unsupported config format %q (want one of %s)", ext, strings.Join(Extensions(), ", "))
	}
	cfg := Default()
	if err := dec(data, &cfg); err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s config", strings.TrimPrefix(ext, "."))
	}
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvRedisURL); v != "" {
		c.Cache.RedisURL = v
	}
	if v := os.Getenv(EnvMongoURI); v != "" {
		c.Store.MongoURI = v
	}
}

func decodeTOML(data []byte, target *Config) error {
	md, err := toml.Decode(string(data), target)
	if err != nil {
		return err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
	}
	return nil
}

func decodeYAML(data []byte, target *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(target); err != nil && err != io.EOF {
		return err
	}
	return nil
}

func decodeJSON(data []byte, target *Config) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	return dec.Decode(target)
}

// Write encodes c as TOML, the format of the generated sample config.
func Write(w io.Writer, c Config) error {
	return toml.NewEncoder(w).Encode(c)
}

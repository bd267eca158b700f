package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/circlepack/pkg/errors"
	"github.com/matzehuels/circlepack/pkg/packing"
)

const tomlConfig = `
n = 7
backend = "baron"
strategy = "grid"
seed = 3
time_limit = "90s"

[domain]
x_min = -1
x_max = 4
y_min = 0
y_max = 2.5

[cache]
kind = "redis"
redis_url = "redis://localhost:6379/0"

[store]
kind = "mongo"
mongo_uri = "mongodb://localhost:27017"
`

const yamlConfig = `
n: 7
backend: baron
strategy: grid
seed: 3
time_limit: 90s
domain:
  x_min: -1
  x_max: 4
  y_min: 0
  y_max: 2.5
cache:
  kind: redis
  redis_url: redis://localhost:6379/0
store:
  kind: mongo
  mongo_uri: mongodb://localhost:27017
`

const jsonConfig = `{
  "n": 7,
  "backend": "baron",
  "strategy": "grid",
  "seed": 3,
  "time_limit": "90s",
  "domain": {"x_min": -1, "x_max": 4, "y_min": 0, "y_max": 2.5},
  "cache": {"kind": "redis", "redis_url": "redis://localhost:6379/0"},
  "store": {"kind": "mongo", "mongo_uri": "mongodb://localhost:27017"}
}`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFormatsAgree(t *testing.T) {
	files := map[string]string{
		"circlepack.toml": tomlConfig,
		"circlepack.yaml": yamlConfig,
		"circlepack.yml":  yamlConfig,
		"circlepack.json": jsonConfig,
	}
	var first *Config
	for name, content := range files {
		t.Run(name, func(t *testing.T) {
			cfg, err := Load(writeFile(t, name, content))
			require.NoError(t, err)

			opts := cfg.Options()
			assert.Equal(t, packing.Domain{XMin: -1, XMax: 4, YMin: 0, YMax: 2.5}, opts.Domain)
			assert.Equal(t, 7, opts.N)
			assert.Equal(t, "baron", opts.Backend)
			assert.Equal(t, "grid", opts.Strategy)
			assert.Equal(t, uint64(3), opts.Seed)
			assert.Equal(t, 90*time.Second, opts.TimeLimit)
			assert.Equal(t, packing.DefaultTolerance, opts.Tolerance, "unset keys keep defaults")
			assert.Equal(t, CacheRedis, cfg.Cache.Kind)
			assert.Equal(t, StoreMongo, cfg.Store.Kind)

			if first == nil {
				first = &cfg
			} else {
				assert.Equal(t, *first, cfg)
			}
		})
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	opts := cfg.Options()
	assert.Equal(t, packing.DefaultDomain, opts.Domain)
	assert.Equal(t, 5, opts.N)
	assert.Equal(t, "octeract", opts.Backend)
	assert.Empty(t, opts.Strategy)
	assert.Zero(t, opts.TimeLimit)
}

func TestDecodeEmptyKeepsDefaults(t *testing.T) {
	for _, ext := range []string{".toml", ".yaml", ".json"} {
		data := ""
		if ext == ".json" {
			data = "{}"
		}
		cfg, err := Decode(ext, []byte(data))
		require.NoError(t, err, ext)
		assert.Equal(t, Default(), cfg, ext)
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		ext  string
		data string
		msg  string
	}{
		{"unknown format", ".ini", "", "unsupported config format"},
		{"toml unknown key", ".toml", "colour = 1\n", "colour"},
		{"yaml unknown key", ".yaml", "colour: 1\n", "colour"},
		{"json unknown key", ".json", `{"colour": 1}`, "colour"},
		{"toml syntax", ".toml", "n = \n", "parse toml"},
		{"bad duration", ".toml", "time_limit = \"soon\"\n", "soon"},
		{"bad strategy", ".yaml", "strategy: hex\n", `unknown initial-guess strategy "hex"`},
		{"bad backend", ".toml", "backend = \"gurobi\"\n", "gurobi"},
		{"empty backend", ".json", `{"backend": ""}`, "backend is required"},
		{"negative tolerance", ".toml", "tolerance = -1.0\n", "tolerance must be at least 0"},
		{"redis without url", ".toml", "[cache]\nkind = \"redis\"\n", "cache.redis_url is required"},
		{"mongo without uri", ".yaml", "store:\n  kind: mongo\n", "store.mongo_uri is required"},
		{"bad cache kind", ".toml", "[cache]\nkind = \"memcached\"\n", "cache.kind must be one of"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.ext, []byte(tt.data))
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrCodeInvalidConfig), "%v", err)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestStrategySpellingMatchesPipeline(t *testing.T) {
	for _, name := range []string{"grid", "Grid", " RANDOM ", "zero"} {
		cfg, err := Decode(".toml", []byte(fmt.Sprintf("strategy = %q\n", name)))
		require.NoError(t, err, "strategy %q", name)
		opts := cfg.Options()
		assert.NoError(t, opts.ValidateAndSetDefaults(), "strategy %q", name)
	}
}

func TestModelChecksAreLeftToThePipeline(t *testing.T) {
	cfg, err := Decode(".toml", []byte("n = 0\n[domain]\nx_min = 3\nx_max = 3\n"))
	require.NoError(t, err)
	assert.Equal(t, 0, cfg.Options().N)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv(EnvRedisURL, "redis://cache:6379/1")
	t.Setenv(EnvMongoURI, "mongodb://db:27017")

	cfg, err := Decode(".toml", []byte("[cache]\nkind = \"redis\"\n[store]\nkind = \"mongo\"\n"))
	require.NoError(t, err)
	assert.Equal(t, "redis://cache:6379/1", cfg.Cache.RedisURL)
	assert.Equal(t, "mongodb://db:27017", cfg.Store.MongoURI)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidConfig))
}

func TestWriteRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Strategy = "random"
	cfg.TimeLimit = Duration(2 * time.Minute)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, cfg))
	assert.Contains(t, buf.String(), `time_limit = "2m0s"`)

	got, err := Decode(".toml", buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}

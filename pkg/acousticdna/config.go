package acousticdna

import (
	"github.com/landmarkfp/acousticdna/pkg/acousticdna/fingerprint"
	"github.com/landmarkfp/acousticdna/pkg/acousticdna/index"
)

// Config holds configuration for NewService. There is no global singleton:
// every dependency a service needs is either supplied via an Option or
// given a documented default, per spec.md §9's "explicit configuration,
// no global state" design note.
type Config struct {
	// DBPath is the path to the SQLite index file. Ignored if Index is set.
	// Empty means use an in-memory index instead of a durable one.
	DBPath string

	// TempDir is the directory for transcoded/downloaded audio files.
	TempDir string

	// Params controls the fingerprinting pipeline (sample rate, FFT size,
	// peak radius, fan-out, etc).
	Params fingerprint.Params

	// Logger receives the service's log output. If nil, a default logger
	// is created.
	Logger Logger

	// Index is the hash index backend to use. If nil, one is created from
	// DBPath (SQLite if set, in-memory otherwise).
	Index index.Index
}

// Option is a functional option for configuring a Service.
type Option func(*Config)

// WithDBPath selects a durable SQLite-backed index at path.
func WithDBPath(path string) Option {
	return func(c *Config) { c.DBPath = path }
}

// WithTempDir sets the directory used for transcoded/downloaded audio.
func WithTempDir(dir string) Option {
	return func(c *Config) { c.TempDir = dir }
}

// WithParams overrides the fingerprinting parameters.
func WithParams(p fingerprint.Params) Option {
	return func(c *Config) { c.Params = p }
}

// WithLogger sets a custom logger.
func WithLogger(log Logger) Option {
	return func(c *Config) { c.Logger = log }
}

// WithIndex injects a pre-built index.Index, bypassing DBPath entirely.
// Useful for tests (index.NewMemIndex()) or a caller-managed SQLite handle.
func WithIndex(idx index.Index) Option {
	return func(c *Config) { c.Index = idx }
}

func defaultConfig() *Config {
	return &Config{
		DBPath:  "",
		TempDir: "/tmp",
		Params:  fingerprint.DefaultParams(),
		Logger:  nil,
		Index:   nil,
	}
}

package alsparse

// DefaultTempo is the fallback BPM when a set carries no readable tempo.
const DefaultTempo = 120.0

type Config struct {
	DBPath        string
	DefaultTempo  float64
	StrictVersion bool
	Shortcuts     map[string]string
	Logger        Logger
	Storage       Storage
}

type Option func(*Config)

// WithDBPath sets the sqlite catalog location.
func WithDBPath(path string) Option {
	return func(c *Config) {
		c.DBPath = path
	}
}

// WithDefaultTempo overrides the tempo used when a set has none.
func WithDefaultTempo(bpm float64) Option {
	return func(c *Config) {
		c.DefaultTempo = bpm
	}
}

// WithStrictVersion makes a missing or garbled version header fatal
// instead of a Diagnostic.
func WithStrictVersion() Option {
	return func(c *Config) {
		c.StrictVersion = true
	}
}

// WithTargetShortcuts replaces the automation target rewrite table.
// Keys are dotted path prefixes, values their readable replacements.
func WithTargetShortcuts(shortcuts map[string]string) Option {
	return func(c *Config) {
		c.Shortcuts = shortcuts
	}
}

func WithLogger(log Logger) Option {
	return func(c *Config) {
		c.Logger = log
	}
}

func WithStorage(storage Storage) Option {
	return func(c *Config) {
		c.Storage = storage
	}
}

func defaultConfig() *Config {
	return &Config{
		DBPath:       "alsparse.sqlite3",
		DefaultTempo: DefaultTempo,
		Shortcuts:    defaultShortcuts(),
	}
}

// nopLogger is the default when no logger is configured; the library stays
// silent unless a caller opts in.
type nopLogger struct{}

func (nopLogger) Infof(string, ...any)  {}
func (nopLogger) Warnf(string, ...any)  {}
func (nopLogger) Errorf(string, ...any) {}
func (nopLogger) Debugf(string, ...any) {}

package replication

import "time"

// Config holds configuration for dataset replication.
type Config struct {
	// Enabled turns replication on. When false Sync is a no-op failure.
	Enabled bool `mapstructure:"enabled" default:"true"`
	// DataPath is where the dataset is written in the versioned store.
	DataPath string `mapstructure:"data_path" default:"data/family.json"`
	// ShortDelay is the retry wait below the failure threshold.
	ShortDelay time.Duration `mapstructure:"short_delay" default:"5m"`
	// LongDelay is the retry wait at or above the failure threshold.
	LongDelay time.Duration `mapstructure:"long_delay" default:"60m"`
	// FailureThreshold is the failure count that switches to LongDelay.
	FailureThreshold int `mapstructure:"failure_threshold" default:"3"`
	// MaxAttempts caps the pushes made for one operation.
	MaxAttempts int `mapstructure:"max_attempts" default:"5"`
	// ConnectionTTL is how long a successful check counts as connected.
	ConnectionTTL time.Duration `mapstructure:"connection_ttl" default:"10m"`
	// LogSize is how many log entries are kept for the status surface.
	LogSize int `mapstructure:"log_size" default:"20"`
}

// DefaultConfig returns the replication settings used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		Enabled:          true,
		DataPath:         "data/family.json",
		ShortDelay:       5 * time.Minute,
		LongDelay:        60 * time.Minute,
		FailureThreshold: 3,
		MaxAttempts:      5,
		ConnectionTTL:    10 * time.Minute,
		LogSize:          20,
	}
}

// withDefaults fills zero values from DefaultConfig.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.DataPath == "" {
		c.DataPath = d.DataPath
	}
	if c.ShortDelay <= 0 {
		c.ShortDelay = d.ShortDelay
	}
	if c.LongDelay <= 0 {
		c.LongDelay = d.LongDelay
	}
	if c.FailureThreshold <= 0 {
		c.FailureThreshold = d.FailureThreshold
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = d.MaxAttempts
	}
	if c.ConnectionTTL <= 0 {
		c.ConnectionTTL = d.ConnectionTTL
	}
	if c.LogSize <= 0 {
		c.LogSize = d.LogSize
	}
	return c
}

package backup

// Config holds configuration for backup snapshots.
type Config struct {
	// Prefix is the directory backups are written under.
	Prefix string `mapstructure:"prefix" default:"backups"`
	// KeepAutoBulk is how many auto-bulk backups survive cleanup.
	KeepAutoBulk int `mapstructure:"keep_auto_bulk" default:"5"`
	// KeepPreRestore is how many pre-restore backups survive cleanup.
	KeepPreRestore int `mapstructure:"keep_pre_restore" default:"3"`
}

// DefaultConfig returns the retention limits used when nothing is configured.
func DefaultConfig() Config {
	return Config{Prefix: "backups", KeepAutoBulk: 5, KeepPreRestore: 3}
}

// Keep returns the retention limit for a trigger. Zero means the trigger is
// never pruned.
func (c Config) Keep(trigger Trigger) int {
	switch trigger {
	case TriggerAutoBulk:
		return c.KeepAutoBulk
	case TriggerPreRestore:
		return c.KeepPreRestore
	default:
		return 0
	}
}

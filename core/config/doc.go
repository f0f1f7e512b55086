// Package config provides configuration management for the heritage service.
//
// Settings come from environment variables, optionally seeded from a .env
// file. Defaults live on the struct tags of each section.
//
// # Configuration Structure
//
//   - Server: HTTP port, API key and deployment mode
//   - Database: record database driver and connection details
//   - Storage: MinIO endpoint, credentials and bucket for the mirror
//   - Log: logging level and format
//   - Sync: replication target path and retry policy
//   - Backup: snapshot prefix and retention limits
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Sync.ShortDelay)
package config

// Package database handles the record database connection and schema
// inspection.
//
// Connect wraps GORM and selects the dialect from the configuration:
// MySQL for deployments, SQLite for local use and tests.
//
// # Schema Inspection
//
// GetTableColumns and MissingColumns report what a table actually looks
// like, so feature packages can log schema drift before migrating.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    log.Fatal("Database connection failed", err)
//	}
//
//	missing, err := database.MissingColumns(db, "persons", []string{"monarchs"})
package database

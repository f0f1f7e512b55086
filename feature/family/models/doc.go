// Package models defines the GORM models of the family database.
//
// Person holds one family member; Reign holds one entry of the reign
// reference list. List and map columns are stored as JSON text so the
// schema stays portable between MySQL and SQLite.
package models

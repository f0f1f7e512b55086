package database

import (
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// ColumnInfo is one column of a table, as reported by the database.
type ColumnInfo struct {
	Field   string
	Type    string
	Null    string
	Key     string
	Default *string
	Extra   string
}

// GetTableColumns retrieves the column definitions for a table. Field and
// Type are lowercased. A missing table yields no columns and no error.
func GetTableColumns(db *gorm.DB, tableName string) ([]ColumnInfo, error) {
	if db.Dialector.Name() == "sqlite" {
		return sqliteColumns(db, tableName)
	}

	var columns []ColumnInfo
	if !db.Migrator().HasTable(tableName) {
		return columns, nil
	}
	if err := db.Raw(fmt.Sprintf("SHOW COLUMNS FROM `%s`", tableName)).Scan(&columns).Error; err != nil {
		return nil, fmt.Errorf("failed to get columns for table %s: %w", tableName, err)
	}
	for i := range columns {
		columns[i].Type = strings.ToLower(columns[i].Type)
		columns[i].Field = strings.ToLower(columns[i].Field)
	}
	return columns, nil
}

func sqliteColumns(db *gorm.DB, tableName string) ([]ColumnInfo, error) {
	type pragmaColumn struct {
		Cid        int
		Name       string
		Type       string
		Notnull    int
		DefaultVal *string `gorm:"column:dflt_value"`
		Pk         int
	}

	var rows []pragmaColumn
	if err := db.Raw(fmt.Sprintf("PRAGMA table_info('%s')", tableName)).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to get columns for table %s: %w", tableName, err)
	}

	columns := make([]ColumnInfo, 0, len(rows))
	for _, col := range rows {
		info := ColumnInfo{
			Field:   strings.ToLower(col.Name),
			Type:    strings.ToLower(col.Type),
			Null:    "YES",
			Default: col.DefaultVal,
		}
		if col.Notnull == 1 {
			info.Null = "NO"
		}
		if col.Pk > 0 {
			info.Key = "PRI"
		}
		columns = append(columns, info)
	}
	return columns, nil
}

// MissingColumns returns the names in want that tableName lacks. A missing
// table reports every name.
func MissingColumns(db *gorm.DB, tableName string, want []string) ([]string, error) {
	columns, err := GetTableColumns(db, tableName)
	if err != nil {
		return nil, err
	}

	have := make(map[string]struct{}, len(columns))
	for _, c := range columns {
		have[c.Field] = struct{}{}
	}

	var missing []string
	for _, name := range want {
		if _, ok := have[strings.ToLower(name)]; !ok {
			missing = append(missing, name)
		}
	}
	return missing, nil
}

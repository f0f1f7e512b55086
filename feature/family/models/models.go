package models

import (
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/goccy/go-json"
)

// Person is a row of the persons table.
type Person struct {
	ID         uint       `gorm:"column:id;primaryKey;autoIncrement"`
	ExternalID string     `gorm:"column:external_id;size:64;uniqueIndex;not null"`
	Name       string     `gorm:"column:name;size:255"`
	Born       *int       `gorm:"column:born"`
	Died       *int       `gorm:"column:died"`
	Monarchs   StringList `gorm:"column:monarchs;type:text"`
	Payload    JSONMap    `gorm:"column:payload;type:text"`
	Position   int        `gorm:"column:position;index"`
	CreatedAt  time.Time  `gorm:"column:created_at"`
	UpdatedAt  time.Time  `gorm:"column:updated_at"`
}

// TableName overrides the table name.
func (Person) TableName() string {
	return "persons"
}

// Reign is a row of the reigns table.
type Reign struct {
	ID        string     `gorm:"column:id;primaryKey;size:64"`
	Name      string     `gorm:"column:name;size:255"`
	ReignFrom time.Time  `gorm:"column:reign_from"`
	ReignTo   *time.Time `gorm:"column:reign_to"`
	Position  int        `gorm:"column:position;index"`
}

// TableName overrides the table name.
func (Reign) TableName() string {
	return "reigns"
}

// StringList is stored as a JSON array.
type StringList []string

// Value implements driver.Valuer.
func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(l))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (l *StringList) Scan(src any) error {
	raw, err := rawBytes(src)
	if err != nil || len(raw) == 0 {
		*l = StringList{}
		return err
	}
	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("invalid string list: %w", err)
	}
	*l = out
	return nil
}

// JSONMap is stored as a JSON object.
type JSONMap map[string]any

// Value implements driver.Valuer.
func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	b, err := json.Marshal(map[string]any(m))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (m *JSONMap) Scan(src any) error {
	raw, err := rawBytes(src)
	if err != nil || len(raw) == 0 {
		*m = nil
		return err
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("invalid payload: %w", err)
	}
	*m = out
	return nil
}

func rawBytes(src any) ([]byte, error) {
	switch v := src.(type) {
	case nil:
		return nil, nil
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	default:
		return nil, fmt.Errorf("unsupported column type %T", src)
	}
}

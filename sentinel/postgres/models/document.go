// File: document.go
package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// JSONDoc is a semi-structured metadata document stored in a single JSON
// column. Ingestion jobs and workers write arbitrary nested keys into it;
// this engine only reads and mutates the audit sub-structure (see AlertAction).
type JSONDoc map[string]interface{}

// Value implements driver.Valuer.
func (d JSONDoc) Value() (driver.Value, error) {
	if d == nil {
		return nil, nil
	}
	return json.Marshal(d)
}

// Scan implements sql.Scanner.
func (d *JSONDoc) Scan(value interface{}) error {
	if value == nil {
		*d = nil
		return nil
	}
	raw, err := jsonBytes(value)
	if err != nil {
		return err
	}
	if len(raw) == 0 {
		*d = nil
		return nil
	}
	return json.Unmarshal(raw, d)
}

// GormDataType declares the schema-level data type so the schema parser can
// place the column before any dialect is known.
func (JSONDoc) GormDataType() string {
	return "json"
}

// GormDBDataType resolves the column type once per dialect at migration time:
// native jsonb on PostgreSQL, plain json everywhere else (sqlite in tests).
func (JSONDoc) GormDBDataType(db *gorm.DB, field *schema.Field) string {
	if db.Dialector.Name() == "postgres" {
		return "jsonb"
	}
	return "json"
}

// StringList is a list of free-form strings stored as a JSON array column.
type StringList []string

// Value implements driver.Valuer.
func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return nil, nil
	}
	return json.Marshal(l)
}

// Scan implements sql.Scanner.
func (l *StringList) Scan(value interface{}) error {
	if value == nil {
		*l = nil
		return nil
	}
	raw, err := jsonBytes(value)
	if err != nil {
		return err
	}
	if len(raw) == 0 {
		*l = nil
		return nil
	}
	return json.Unmarshal(raw, l)
}

// GormDataType declares the schema-level data type the same way JSONDoc does.
func (StringList) GormDataType() string {
	return "json"
}

// GormDBDataType resolves the column type the same way JSONDoc does.
func (StringList) GormDBDataType(db *gorm.DB, field *schema.Field) string {
	if db.Dialector.Name() == "postgres" {
		return "jsonb"
	}
	return "json"
}

func jsonBytes(value interface{}) ([]byte, error) {
	switch v := value.(type) {
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	default:
		return nil, fmt.Errorf("unsupported JSON column value of type %T", value)
	}
}

package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Metadata is a string key-value bag stored as JSONB (audit log details,
// provider references).
type Metadata map[string]string

// Scan implements sql.Scanner; a NULL column scans to an empty map.
func (m *Metadata) Scan(value interface{}) error {
	if value == nil {
		*m = make(Metadata)
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("metadata column is not a JSONB byte slice: %v", value)
	}

	result := make(Metadata)
	if err := json.Unmarshal(bytes, &result); err != nil {
		return err
	}
	*m = result
	return nil
}

// Value implements driver.Valuer; nil maps are stored as an empty object so
// the column is never NULL.
func (m Metadata) Value() (driver.Value, error) {
	if m == nil {
		return json.Marshal(make(Metadata))
	}
	return json.Marshal(m)
}

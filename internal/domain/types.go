package domain

import (
	"database/sql/driver"
	"encoding/json"
	"strings"
)

// StringSlice stores an ordered list of strings as a JSON array in a TEXT column.
type StringSlice []string

func (s StringSlice) Value() (driver.Value, error) {
	if len(s) == 0 {
		return "[]", nil
	}
	return json.Marshal(s)
}

func (s *StringSlice) Scan(value interface{}) error {
	if value == nil {
		*s = nil
		return nil
	}

	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return nil
	}

	if len(data) == 0 || string(data) == "null" {
		*s = nil
		return nil
	}

	return json.Unmarshal(data, s)
}

// StringMap stores string key/value pairs as a JSON object in a TEXT column.
type StringMap map[string]string

func (m StringMap) Value() (driver.Value, error) {
	if len(m) == 0 {
		return "{}", nil
	}
	return json.Marshal(m)
}

func (m *StringMap) Scan(value interface{}) error {
	if value == nil {
		*m = nil
		return nil
	}

	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return nil
	}

	if len(data) == 0 || string(data) == "null" {
		*m = nil
		return nil
	}

	return json.Unmarshal(data, m)
}

// SplitList turns a comma-delimited form value into an ordered list.
// Blank input yields an empty list, never a single empty entry.
func SplitList(input string) StringSlice {
	if strings.TrimSpace(input) == "" {
		return StringSlice{}
	}
	parts := strings.Split(input, ",")
	out := make(StringSlice, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

package models

import (
	"database/sql/driver"
	"strings"

	"github.com/lib/pq"
)

// StringArray is a custom type for handling TEXT[] columns in PostgreSQL
// (hotel amenities, image URLs)
type StringArray []string

// Value implements the driver.Valuer interface
func (a StringArray) Value() (driver.Value, error) {
	if a == nil {
		return "{}", nil
	}
	return pq.Array([]string(a)).Value()
}

// Scan implements the sql.Scanner interface
func (a *StringArray) Scan(src interface{}) error {
	if src == nil {
		*a = StringArray{}
		return nil
	}
	slice := (*[]string)(a)
	return pq.Array(slice).Scan(src)
}

// Contains reports whether the array holds s
func (a StringArray) Contains(s string) bool {
	for _, v := range a {
		if v == s {
			return true
		}
	}
	return false
}

// NormalizeTags trims, drops empties and de-duplicates case-insensitively,
// keeping the first spelling seen. Amenities are an unordered set of tags.
func NormalizeTags(tags []string) StringArray {
	seen := make(map[string]struct{}, len(tags))
	out := make(StringArray, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		key := strings.ToLower(t)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, t)
	}
	return out
}

// Int64Array is a custom type for handling BIGINT[] query arguments
type Int64Array []int64

// Value implements the driver.Valuer interface
func (a Int64Array) Value() (driver.Value, error) {
	if a == nil {
		return "{}", nil
	}
	return pq.Array([]int64(a)).Value()
}

// Scan implements the sql.Scanner interface
func (a *Int64Array) Scan(src interface{}) error {
	if src == nil {
		*a = nil
		return nil
	}
	slice := (*[]int64)(a)
	return pq.Array(slice).Scan(src)
}

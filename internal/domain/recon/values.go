package recon

import "time"

// NullTime is a timestamp that may be absent. Absent timestamps sort after
// present ones and never equality-match anything.
type NullTime struct {
	Time  time.Time
	Valid bool
}

// TimeOf wraps a present timestamp.
func TimeOf(t time.Time) NullTime {
	return NullTime{Time: t, Valid: true}
}

// Before reports whether v sorts ahead of other. A present timestamp always
// sorts ahead of an absent one; two absent timestamps are order-equal.
func (v NullTime) Before(other NullTime) bool {
	if v.Valid && other.Valid {
		return v.Time.Before(other.Time)
	}
	return v.Valid && !other.Valid
}

// NullString is a text value that may be absent. Absent is distinct from the
// empty string: a query-only row has no treasury name at all, while a matched
// row can carry a present-but-blank one.
type NullString struct {
	String string
	Valid  bool
}

// StringOf wraps a present text value.
func StringOf(s string) NullString {
	return NullString{String: s, Valid: true}
}

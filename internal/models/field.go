package models

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Field is one optional scalar lifted from the loaded document. The zero
// value is an absent field.
type Field struct {
	// Set reports that the key was present with a non-null value.
	Set bool
	// Text is the display form of the value: numbers without trailing zeros,
	// booleans as true/false, nested values as compact JSON.
	Text  string
	Num   float64
	IsNum bool
	// Truthy is false for absent, null, false, 0 and "".
	Truthy bool

	raw any
}

// FieldOf converts a decoded JSON value into a Field.
func FieldOf(v any) Field {
	switch t := v.(type) {
	case nil:
		return Field{}
	case string:
		return Field{Set: true, Text: t, Truthy: t != "", raw: t}
	case float64:
		return Field{Set: true, Text: formatNumber(t), Num: t, IsNum: true, Truthy: t != 0, raw: t}
	case bool:
		return Field{Set: true, Text: strconv.FormatBool(t), Truthy: t, raw: t}
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return Field{}
		}
		return Field{Set: true, Text: string(b), Truthy: true, raw: t}
	}
}

// Text returns a set string field.
func Text(s string) Field { return FieldOf(s) }

// Number returns a set numeric field.
func Number(n float64) Field { return FieldOf(n) }

// Or returns the field text, or fallback when the field is absent or null.
func (f Field) Or(fallback string) string {
	if !f.Set {
		return fallback
	}
	return f.Text
}

// TruthyOr returns the field text, or fallback when the field is falsy.
func (f Field) TruthyOr(fallback string) string {
	if !f.Truthy {
		return fallback
	}
	return f.Text
}

// Blank reports whether the field carries no visible text.
func (f Field) Blank() bool {
	return !f.Set || strings.TrimSpace(f.Text) == ""
}

// MarshalJSON writes the original value back out.
func (f Field) MarshalJSON() ([]byte, error) {
	if !f.Set {
		return []byte("null"), nil
	}
	return json.Marshal(f.raw)
}

// UnmarshalJSON accepts any JSON value.
func (f *Field) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*f = FieldOf(v)
	return nil
}

func formatNumber(n float64) string {
	if n == float64(int64(n)) && n < 1e21 && n > -1e21 {
		return strconv.FormatInt(int64(n), 10)
	}
	return strconv.FormatFloat(n, 'f', -1, 64)
}

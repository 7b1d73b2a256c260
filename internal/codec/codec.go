// Package codec implements the flat-record JSON codec used by the catalog
// files. Records are JSON objects whose values are only strings, numbers,
// or booleans; nesting is out of scope. Encoding is hand-assembled so the
// on-disk byte format stays stable: fixed key order per record type, a
// fixed escape set, and two-decimal rendering for currency. Decoding of
// well-formed fragments goes through goccy/go-json.
//
// The codec never returns errors for malformed input. Absence and
// malformed values surface as empty strings (ExtractField) or empty
// sequences (SplitTopLevelArray); callers treat those as "skip this
// record".
package codec

import (
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
)

// Fixed2 is a float64 that marshals as fixed two-decimal JSON text, e.g.
// 99.9 renders as 99.90. Used for prices and average ratings so envelopes
// and files agree on currency rendering.
type Fixed2 float64

// MarshalJSON renders the value with exactly two decimal places.
func (f Fixed2) MarshalJSON() ([]byte, error) {
	return strconv.AppendFloat(nil, float64(f), 'f', 2, 64), nil
}

// UnmarshalJSON parses a plain JSON number.
func (f *Fixed2) UnmarshalJSON(data []byte) error {
	v, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return err
	}
	*f = Fixed2(v)
	return nil
}

// EscapeString escapes the characters that the file format guards
// against: double quote, backslash, newline, carriage return, and tab.
// Other control characters pass through unescaped; that is a known
// limitation of the format, not an oversight here.
func EscapeString(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// unescapeString reverses EscapeString. Unknown escape pairs are kept
// verbatim.
func unescapeString(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			switch s[i+1] {
			case '"':
				b.WriteByte('"')
			case '\\':
				b.WriteByte('\\')
			case 'n':
				b.WriteByte('\n')
			case 'r':
				b.WriteByte('\r')
			case 't':
				b.WriteByte('\t')
			default:
				b.WriteByte(s[i])
				b.WriteByte(s[i+1])
			}
			i++
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

// Field is one key/value pair of an encoded record. The value is held as
// already-rendered JSON text so EncodeObject can emit fields in the exact
// order it was given them.
type Field struct {
	Key string
	Raw string
}

// Str renders a string field with the codec escape set applied.
func Str(key, v string) Field {
	return Field{Key: key, Raw: `"` + EscapeString(v) + `"`}
}

// Int renders an integer field as plain decimal text.
func Int(key string, v int) Field {
	return Field{Key: key, Raw: strconv.Itoa(v)}
}

// Money renders a currency field with fixed two-decimal precision.
func Money(key string, v float64) Field {
	return Field{Key: key, Raw: strconv.FormatFloat(v, 'f', 2, 64)}
}

// Bool renders a boolean field.
func Bool(key string, v bool) Field {
	return Field{Key: key, Raw: strconv.FormatBool(v)}
}

// EncodeObject assembles a flat JSON object from fields, preserving the
// order they are passed in.
func EncodeObject(fields ...Field) string {
	var b strings.Builder
	b.WriteByte('{')
	for i, f := range fields {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteByte('"')
		b.WriteString(f.Key)
		b.WriteString(`":`)
		b.WriteString(f.Raw)
	}
	b.WriteByte('}')
	return b.String()
}

// SplitTopLevelArray splits a JSON array of flat objects into the text of
// each element. The scan tracks brace depth only: it does not know about
// strings, so a brace or comma inside a quoted value mis-splits that
// element (the broken fragments then fail decoding and are skipped by the
// loader). Preserved, documented behavior.
//
// Malformed or non-array input yields an empty slice, never an error.
func SplitTopLevelArray(text string) []string {
	trimmed := strings.TrimSpace(text)
	if len(trimmed) < 2 || trimmed[0] != '[' || trimmed[len(trimmed)-1] != ']' {
		return nil
	}
	content := trimmed[1 : len(trimmed)-1]

	var items []string
	start := 0
	depth := 0
	for i := 0; i < len(content); i++ {
		switch content[i] {
		case '{':
			depth++
		case '}':
			depth--
		case ',':
			if depth == 0 {
				items = append(items, content[start:i])
				start = i + 1
			}
		}
	}
	if start < len(content) {
		items = append(items, content[start:])
	}

	out := items[:0]
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" || !strings.Contains(item, "{") {
			continue
		}
		out = append(out, item)
	}
	return out
}

// ExtractField pulls a single field's value out of a flat JSON object's
// text. Quoted values are read up to the next unescaped quote and
// unescaped; bare tokens (numbers, booleans) are read up to the next
// whitespace, comma, or closing brace. A missing key, or any shape the
// scan cannot follow, yields the empty string.
func ExtractField(objectText, key string) string {
	search := `"` + key + `":`
	start := strings.Index(objectText, search)
	if start < 0 {
		return ""
	}
	start += len(search)

	for start < len(objectText) && isSpace(objectText[start]) {
		start++
	}
	if start >= len(objectText) {
		return ""
	}

	if objectText[start] == '"' {
		start++
		for i := start; i < len(objectText); i++ {
			switch objectText[i] {
			case '\\':
				i++
			case '"':
				return unescapeString(objectText[start:i])
			}
		}
		return ""
	}

	end := strings.IndexAny(objectText[start:], " \t\n\r,}")
	if end < 0 {
		return ""
	}
	return objectText[start : start+end]
}

// DecodeRecord decodes one object-text fragment into v. Loaders use
// pointer-typed destination fields so a missing value is distinguishable
// from a zero and the fragment can be skipped.
func DecodeRecord(fragment string, v any) error {
	return json.Unmarshal([]byte(fragment), v)
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

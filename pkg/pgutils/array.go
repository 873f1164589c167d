package pgutils

import "strings"

// FormatTextArray converts a string slice to PostgreSQL text[] literal format.
// Example: []string{"grief", "lost love"} -> `{"grief","lost love"}`
func FormatTextArray(elems []string) string {
	if len(elems) == 0 {
		return "{}"
	}

	var buf strings.Builder
	buf.WriteByte('{')
	for i, e := range elems {
		if i > 0 {
			buf.WriteByte(',')
		}
		e = strings.ReplaceAll(e, `\`, `\\`)
		e = strings.ReplaceAll(e, `"`, `\"`)
		buf.WriteByte('"')
		buf.WriteString(e)
		buf.WriteByte('"')
	}
	buf.WriteByte('}')
	return buf.String()
}

// ParseTextArray parses a PostgreSQL text[] literal such as
// {grief,"star-crossed love"} into its elements. Empty and NULL arrays
// return nil.
func ParseTextArray(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" || s == "{}" {
		return nil
	}
	if !strings.HasPrefix(s, "{") || !strings.HasSuffix(s, "}") {
		return nil
	}
	s = s[1 : len(s)-1]

	var (
		out     []string
		elem    strings.Builder
		quoted  bool
		escaped bool
	)

	flush := func() {
		v := elem.String()
		elem.Reset()
		if v == "NULL" && !quoted {
			return
		}
		out = append(out, v)
	}

	inQuotes := false
	for _, r := range s {
		switch {
		case escaped:
			elem.WriteRune(r)
			escaped = false
		case r == '\\':
			escaped = true
		case r == '"':
			inQuotes = !inQuotes
			quoted = true
		case r == ',' && !inQuotes:
			flush()
			quoted = false
		default:
			elem.WriteRune(r)
		}
	}
	flush()

	return out
}

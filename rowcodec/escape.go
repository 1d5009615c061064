package rowcodec

import (
	"fmt"
	"strings"
)

// EscapeName escapes a field name for use as one segment of a dotted
// column path: '.' becomes `\.` and '\' becomes `\\`. Names containing
// neither character are returned unchanged.
func EscapeName(name string) string {
	if !strings.ContainsAny(name, `.\`) {
		return name
	}
	var b strings.Builder
	b.Grow(len(name) + 2)
	for i := 0; i < len(name); i++ {
		if name[i] == '.' || name[i] == '\\' {
			b.WriteByte('\\')
		}
		b.WriteByte(name[i])
	}
	return b.String()
}

// UnescapeName inverts EscapeName. A trailing backslash or an escape other
// than `\.` and `\\` is an error.
func UnescapeName(s string) (string, error) {
	if !strings.ContainsRune(s, '\\') {
		return s, nil
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] != '\\' {
			b.WriteByte(s[i])
			continue
		}
		i++
		if i == len(s) {
			return "", fmt.Errorf("rowcodec: trailing backslash in name %q", s)
		}
		if s[i] != '.' && s[i] != '\\' {
			return "", fmt.Errorf("rowcodec: invalid escape %q in name %q", s[i-1:i+1], s)
		}
		b.WriteByte(s[i])
	}
	return b.String(), nil
}

// SplitPath splits a dotted column path into unescaped segments. Dots
// inside a segment must be escaped with EscapeName.
func SplitPath(path string) ([]string, error) {
	var segs []string
	var b strings.Builder
	for i := 0; i < len(path); i++ {
		switch path[i] {
		case '\\':
			i++
			if i == len(path) {
				return nil, fmt.Errorf("rowcodec: trailing backslash in path %q", path)
			}
			if path[i] != '.' && path[i] != '\\' {
				return nil, fmt.Errorf("rowcodec: invalid escape %q in path %q", path[i-1:i+1], path)
			}
			b.WriteByte(path[i])
		case '.':
			segs = append(segs, b.String())
			b.Reset()
		default:
			b.WriteByte(path[i])
		}
	}
	return append(segs, b.String()), nil
}

// JoinPath joins already-unescaped segments into a dotted column path,
// escaping each segment.
func JoinPath(segments ...string) string {
	escaped := make([]string, len(segments))
	for i, s := range segments {
		escaped[i] = EscapeName(s)
	}
	return strings.Join(escaped, ".")
}

package definefile

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind tells which of the two value shapes a declaration holds.
type Kind int

const (
	KindString Kind = iota + 1
	KindIntList
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindIntList:
		return "int list"
	default:
		return "unknown"
	}
}

// Value is the value of one declaration: a string or an ordered list of ints.
// The zero Value has no kind and is what Get returns for absent names.
type Value struct {
	kind Kind
	text string
	ints []int
}

// String wraps s as a string value.
func String(s string) Value {
	return Value{kind: KindString, text: s}
}

// IntList wraps ints as a list value. The slice is copied.
func IntList(ints ...int) Value {
	cp := make([]int, len(ints))
	copy(cp, ints)
	return Value{kind: KindIntList, ints: cp}
}

func (v Value) Kind() Kind { return v.kind }

// Text returns the string value. It is empty for list values.
func (v Value) Text() string { return v.text }

// Ints returns a copy of the list value. It is nil for string values.
func (v Value) Ints() []int {
	if v.kind != KindIntList {
		return nil
	}
	cp := make([]int, len(v.ints))
	copy(cp, v.ints)
	return cp
}

// String renders the value for display: the plain string, or the list
// joined by commas.
func (v Value) String() string {
	if v.kind == KindIntList {
		return joinInts(v.ints)
	}
	return v.text
}

// literal renders the value the way it is written inside a declaration.
func (v Value) literal() string {
	if v.kind == KindIntList {
		return "[" + joinInts(v.ints) + "]"
	}
	return `"` + escape(v.text) + `"`
}

func joinInts(ints []int) string {
	parts := make([]string, len(ints))
	for i, n := range ints {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ",")
}

// ParseIntList parses a comma-separated list of integers such as "5, 10,15".
// Elements are trimmed. An empty or blank input is an empty list. A single
// trailing comma is accepted. Any other element that is not an integer fails
// the whole parse with ErrParse.
func ParseIntList(s string) ([]int, error) {
	if strings.TrimSpace(s) == "" {
		return []int{}, nil
	}
	parts := strings.Split(s, ",")
	if len(parts) > 1 && strings.TrimSpace(parts[len(parts)-1]) == "" {
		parts = parts[:len(parts)-1]
	}
	out := make([]int, 0, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("%w: element %d is %q", ErrParse, i, strings.TrimSpace(p))
		}
		out = append(out, n)
	}
	return out, nil
}

// escape backslash-escapes backslashes and double quotes. Nothing else is
// touched: inside a PHP double-quoted string \' keeps its backslash, so a
// single quote is written as is.
func escape(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '\\', '"':
			b.WriteByte('\\')
			b.WriteByte(c)
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// unescape reverses C-style backslash escapes: the named control characters,
// \xHH, octal \NNN, and any other escaped byte stands for itself.
func unescape(s string) string {
	if !strings.ContainsRune(s, '\\') {
		return s
	}
	b := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' {
			b = append(b, c)
			continue
		}
		i++
		if i >= len(s) {
			break
		}
		switch c = s[i]; c {
		case 'n':
			b = append(b, '\n')
		case 't':
			b = append(b, '\t')
		case 'r':
			b = append(b, '\r')
		case 'a':
			b = append(b, '\a')
		case 'v':
			b = append(b, '\v')
		case 'b':
			b = append(b, '\b')
		case 'f':
			b = append(b, '\f')
		case 'x':
			n, width := 0, 0
			for width < 2 && i+1 < len(s) && isHex(s[i+1]) {
				i++
				n = n*16 + hexVal(s[i])
				width++
			}
			if width == 0 {
				b = append(b, 'x')
			} else {
				b = append(b, byte(n))
			}
		default:
			if isOctal(c) {
				n := int(c - '0')
				for width := 1; width < 3 && i+1 < len(s) && isOctal(s[i+1]); width++ {
					i++
					n = n*8 + int(s[i]-'0')
				}
				b = append(b, byte(n))
			} else {
				b = append(b, c)
			}
		}
	}
	return string(b)
}

func isOctal(c byte) bool { return c >= '0' && c <= '7' }

func isHex(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func hexVal(c byte) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'a' && c <= 'f':
		return int(c-'a') + 10
	default:
		return int(c-'A') + 10
	}
}

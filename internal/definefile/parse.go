package definefile

import "strings"

const declPrefix = `define("`

// segment is a span of the file: either literal text kept verbatim or one
// recognized declaration.
type segment struct {
	text string

	isDecl bool
	name   string
	kind   Kind
	raw    string // value literal including its quotes or brackets
}

// parse splits content into literal and declaration segments. Concatenating
// the text of all segments yields content unchanged.
func parse(content string) []segment {
	var segs []segment
	litStart := 0
	pos := 0
	for {
		idx := strings.Index(content[pos:], declPrefix)
		if idx < 0 {
			break
		}
		start := pos + idx
		seg, end, ok := scanDeclaration(content, start)
		if !ok {
			pos = start + 1
			continue
		}
		if start > litStart {
			segs = append(segs, segment{text: content[litStart:start]})
		}
		segs = append(segs, seg)
		litStart = end
		pos = end
	}
	if litStart < len(content) {
		segs = append(segs, segment{text: content[litStart:]})
	}
	return segs
}

// scanDeclaration matches define("NAME",<space>VALUE); starting at start.
// VALUE is a [..] list ending at the first ']' or a double-quoted string in
// which backslash escapes the next byte.
func scanDeclaration(s string, start int) (segment, int, bool) {
	i := start + len(declPrefix)
	nameEnd := strings.IndexByte(s[i:], '"')
	if nameEnd <= 0 {
		return segment{}, 0, false
	}
	name := s[i : i+nameEnd]
	if strings.ContainsAny(name, "\\\r\n") {
		return segment{}, 0, false
	}
	i += nameEnd + 1
	if i >= len(s) || s[i] != ',' {
		return segment{}, 0, false
	}
	i++
	for i < len(s) && isSpace(s[i]) {
		i++
	}
	if i >= len(s) {
		return segment{}, 0, false
	}

	valStart := i
	var kind Kind
	switch s[i] {
	case '[':
		end := strings.IndexByte(s[i:], ']')
		if end < 0 {
			return segment{}, 0, false
		}
		i += end + 1
		kind = KindIntList
	case '"':
		i++
		for i < len(s) && s[i] != '"' {
			if s[i] == '\\' {
				i++
			}
			i++
		}
		if i >= len(s) {
			return segment{}, 0, false
		}
		i++
		kind = KindString
	default:
		return segment{}, 0, false
	}
	raw := s[valStart:i]

	if !strings.HasPrefix(s[i:], ");") {
		return segment{}, 0, false
	}
	i += 2

	return segment{
		text:   s[start:i],
		isDecl: true,
		name:   name,
		kind:   kind,
		raw:    raw,
	}, i, true
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '\f', '\v':
		return true
	}
	return false
}

// decode turns a declaration's raw literal into a Value.
func decode(seg segment) (Value, error) {
	if seg.kind == KindIntList {
		ints, err := ParseIntList(seg.raw[1 : len(seg.raw)-1])
		if err != nil {
			return Value{}, err
		}
		return Value{kind: KindIntList, ints: ints}, nil
	}
	return String(unescape(seg.raw[1 : len(seg.raw)-1])), nil
}

func render(name string, v Value) string {
	return declPrefix + name + `", ` + v.literal() + ");"
}

package keypath

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrSyntax is wrapped by all address parse errors.
var ErrSyntax = errors.New("malformed address syntax")

// KeyVal is one key field and its display value in an identity segment
// such as [id=a] or [a=1,b=x].
type KeyVal struct {
	Field string
	Value string
}

// Segment is one path segment.  Exactly one of Field, Index, Keys, Wild,
// Any discriminates the segment kind:
//
//   - Field: object field access, rendered "name" or "'quoted name'"
//   - Index: array access by position, rendered "[3]"
//   - Keys: array access by identity key value(s), rendered "[id=a]",
//     "[a=1,b=x]" or with an occurrence counter "[id=a::2]"
//   - Wild: glob pattern segment "*", matching any one segment
//   - Any: array pattern segment "[]", standing for any array access
type Segment struct {
	Field *string
	Index *int
	Keys  []KeyVal
	Occur int
	Wild  bool
	Any   bool
}

func fieldSeg(name string) Segment {
	return Segment{Field: &name}
}

func indexSeg(i int) Segment {
	return Segment{Index: &i}
}

func (s *Segment) isBracket() bool {
	return s.Index != nil || len(s.Keys) > 0 || s.Any
}

// String returns the canonical rendering of this single segment.
func (s *Segment) String() string {
	buf := bytes.NewBuffer(nil)
	s.append(buf)
	return buf.String()
}

func (s *Segment) append(buf *bytes.Buffer) {
	switch {
	case s.Wild:
		buf.WriteByte('*')
	case s.Any:
		buf.WriteString("[]")
	case s.Field != nil:
		buf.WriteString(quoteField(*s.Field))
	case s.Index != nil:
		fmt.Fprintf(buf, "[%d]", *s.Index)
	case len(s.Keys) > 0:
		buf.WriteByte('[')
		for i, kv := range s.Keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			buf.WriteString(quoteField(kv.Field))
			buf.WriteByte('=')
			buf.WriteString(quoteValue(kv.Value))
		}
		if s.Occur > 0 {
			buf.WriteString("::")
			buf.WriteString(strconv.Itoa(s.Occur))
		}
		buf.WriteByte(']')
	}
}

func segmentsString(segs []Segment, subtree bool) string {
	buf := bytes.NewBuffer(nil)
	for i := range segs {
		s := &segs[i]
		if i > 0 && !s.isBracket() {
			buf.WriteByte('.')
		}
		s.append(buf)
	}
	if subtree {
		buf.WriteByte('*')
	}
	return buf.String()
}

func needQuote(f string) bool {
	return f == "" || strings.ContainsAny(f, "'.*[]{}=,: \t\n")
}

func quoteField(f string) string {
	if !needQuote(f) {
		return f
	}
	return "'" + strings.Replace(f, "'", "\\'", -1) + "'"
}

func quoteValue(v string) string {
	if !needQuote(v) {
		return v
	}
	return "'" + strings.Replace(v, "'", "\\'", -1) + "'"
}

// parseSegments scans a path into segments.  With pattern set, "*" is
// accepted as a wildcard segment and a trailing "*" glued to the last
// segment is returned as subtree.  With anySeg set, the empty bracket "[]"
// is accepted.
func parseSegments(p string, pattern, anySeg bool) (segs []Segment, subtree bool, err error) {
	rest := p
	first := true
	for rest != "" {
		switch rest[0] {
		case '.':
			if first {
				return nil, false, fmt.Errorf("%w: %q begins with '.'", ErrSyntax, p)
			}
			rest = rest[1:]
			if rest == "" {
				return nil, false, fmt.Errorf("%w: %q ends with '.'", ErrSyntax, p)
			}
			if rest[0] == '[' {
				return nil, false, fmt.Errorf("%w: '.' before '[' in %q", ErrSyntax, p)
			}
			var seg Segment
			seg, rest, err = parseFieldSegment(rest, pattern)
			if err != nil {
				return nil, false, err
			}
			segs = append(segs, seg)
		case '[':
			i := bracketEnd(rest)
			if i == -1 {
				return nil, false, fmt.Errorf("%w: unclosed '[' in %q", ErrSyntax, p)
			}
			seg, err := parseBracket(rest[1:i], anySeg)
			if err != nil {
				return nil, false, fmt.Errorf("%w: %v in %q", ErrSyntax, err, p)
			}
			segs = append(segs, seg)
			rest = rest[i+1:]
		case '*':
			if !pattern {
				return nil, false, fmt.Errorf("%w: '*' in %q", ErrSyntax, p)
			}
			if !first {
				// a bare '*' after a segment (no '.') is the subtree marker
				if len(rest) != 1 {
					return nil, false, fmt.Errorf("%w: trailing '*' must end %q", ErrSyntax, p)
				}
				return segs, true, nil
			}
			if len(rest) > 1 && rest[1] != '.' && rest[1] != '[' {
				return nil, false, fmt.Errorf("%w: unexpected %q after '*'", ErrSyntax, rest[1:])
			}
			segs = append(segs, Segment{Wild: true})
			rest = rest[1:]
		default:
			if !first {
				return nil, false, fmt.Errorf("%w: expected '.', '[' or end in %q", ErrSyntax, p)
			}
			var seg Segment
			seg, rest, err = parseFieldSegment(rest, pattern)
			if err != nil {
				return nil, false, err
			}
			segs = append(segs, seg)
		}
		first = false
	}
	return segs, false, nil
}

func parseFieldSegment(frag string, pattern bool) (Segment, string, error) {
	if frag[0] == '\'' {
		f, rest, err := parseQuoted(frag)
		if err != nil {
			return Segment{}, "", err
		}
		return fieldSeg(f), rest, nil
	}
	stop := ".["
	if pattern {
		stop = ".[*"
	}
	i := strings.IndexAny(frag, stop)
	var f, rest string
	if i == -1 {
		f, rest = frag, ""
	} else {
		f, rest = frag[:i], frag[i:]
	}
	if pattern && f == "" && rest != "" && rest[0] == '*' {
		// bare '*' segment, handled by the caller via Wild
		return Segment{Wild: true}, rest[1:], nil
	}
	if f == "" {
		return Segment{}, "", fmt.Errorf("%w: empty field in %q", ErrSyntax, frag)
	}
	if f == "*" {
		if !pattern {
			return Segment{}, "", fmt.Errorf("%w: '*' outside pattern", ErrSyntax)
		}
		return Segment{Wild: true}, rest, nil
	}
	if !pattern && strings.ContainsRune(f, '*') {
		return Segment{}, "", fmt.Errorf("%w: '*' outside pattern in %q", ErrSyntax, frag)
	}
	return fieldSeg(f), rest, nil
}

func parseQuoted(frag string) (string, string, error) {
	escaped := false
	res := make([]byte, 0, len(frag))
	for i := 1; i < len(frag); i++ {
		c := frag[i]
		switch c {
		case '\\':
			if escaped {
				res = append(res, c)
				escaped = false
				continue
			}
			escaped = true
		case '\'':
			if !escaped {
				return string(res), frag[i+1:], nil
			}
			fallthrough
		default:
			escaped = false
			res = append(res, c)
		}
	}
	return "", "", fmt.Errorf("%w: unterminated quote in %q", ErrSyntax, frag)
}

// bracketEnd finds the index of the ']' closing the '[' at position 0,
// skipping over quoted values.
func bracketEnd(s string) int {
	inQuote := false
	escaped := false
	for i := 1; i < len(s); i++ {
		c := s[i]
		if inQuote {
			switch c {
			case '\\':
				escaped = !escaped
			case '\'':
				if !escaped {
					inQuote = false
				}
				escaped = false
			default:
				escaped = false
			}
			continue
		}
		switch c {
		case '\'':
			inQuote = true
		case ']':
			return i
		}
	}
	return -1
}

func parseBracket(content string, anySeg bool) (Segment, error) {
	if content == "" {
		if !anySeg {
			return Segment{}, fmt.Errorf("empty brackets")
		}
		return Segment{Any: true}, nil
	}
	if !strings.ContainsAny(content, "=") {
		u, err := strconv.ParseUint(content, 10, 63)
		if err != nil {
			return Segment{}, fmt.Errorf("invalid array index %q", content)
		}
		i := int(u)
		return indexSeg(i), nil
	}
	return parseKeysBracket(content)
}

func parseKeysBracket(content string) (Segment, error) {
	seg := Segment{}
	rest := content
	for {
		var (
			field string
			err   error
		)
		if rest != "" && rest[0] == '\'' {
			field, rest, err = parseQuoted(rest)
			if err != nil {
				return Segment{}, err
			}
			if rest == "" || rest[0] != '=' {
				return Segment{}, fmt.Errorf("expected '=' after key field")
			}
			rest = rest[1:]
		} else {
			i := strings.IndexByte(rest, '=')
			if i <= 0 {
				return Segment{}, fmt.Errorf("expected <field>=<value>")
			}
			field, rest = rest[:i], rest[i+1:]
		}
		var value string
		if rest != "" && rest[0] == '\'' {
			value, rest, err = parseQuoted(rest)
			if err != nil {
				return Segment{}, err
			}
		} else {
			end := len(rest)
			if i := strings.IndexByte(rest, ','); i != -1 {
				end = i
			}
			if i := strings.Index(rest, "::"); i != -1 && i < end {
				end = i
			}
			value, rest = rest[:end], rest[end:]
		}
		seg.Keys = append(seg.Keys, KeyVal{Field: field, Value: value})
		if rest == "" {
			return seg, nil
		}
		switch {
		case rest[0] == ',':
			rest = rest[1:]
			continue
		case strings.HasPrefix(rest, "::"):
			n, err := strconv.Atoi(rest[2:])
			if err != nil || n < 0 {
				return Segment{}, fmt.Errorf("invalid occurrence %q", rest[2:])
			}
			seg.Occur = n
			return seg, nil
		default:
			return Segment{}, fmt.Errorf("unexpected %q after key value", rest)
		}
	}
}
